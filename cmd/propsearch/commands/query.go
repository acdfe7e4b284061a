package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"propsearch/internal/model"

	"github.com/spf13/cobra"
)

type queryOptions struct {
	topK    int
	gemini  bool
	jsonOut bool
}

func newQueryCmd(root *rootOptions) *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Run one natural-language search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := root.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			topK := opts.topK
			if !cmd.Flags().Changed("top-k") {
				topK = app.Config.Search.DefaultLimit
			}
			resp, err := app.Search.Search(cmd.Context(), strings.Join(args, " "), topK, opts.gemini)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			printResponse(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 10, "maximum number of results")
	cmd.Flags().BoolVar(&opts.gemini, "gemini", false, "use the model-backed filter extractor")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the full response as JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResponse(w io.Writer, resp *model.SearchResponse) {
	fmt.Fprintln(w, resp.Summary)
	for i, card := range resp.Cards {
		fmt.Fprintf(w, "%2d. %s | %s | %s | %s | score %.1f\n",
			i+1, card.ProjectName, card.Title, card.CityLocality, card.Price, card.RelevanceScore)
	}
}
