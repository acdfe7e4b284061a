package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"propsearch/internal/model"
	"propsearch/internal/service"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/spf13/cobra"
)

type batchOptions struct {
	file    string
	workers int
	topK    int
	jsonOut bool
}

// batchResult is one line of batch output.
type batchResult struct {
	Query    string                `json:"query"`
	Response *model.SearchResponse `json:"response,omitempty"`
	Error    string                `json:"error,omitempty"`
}

func newBatchCmd(root *rootOptions) *cobra.Command {
	opts := &batchOptions{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Run every query in a file (one per line) concurrently",
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, err := readQueries(opts.file)
			if err != nil {
				return err
			}
			app, err := root.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.Close()

			results, err := runBatch(cmd.Context(), app.Search, queries, opts.topK, opts.workers)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			out := cmd.OutOrStdout()
			for _, r := range results {
				fmt.Fprintf(out, "> %s\n", r.Query)
				if r.Error != "" {
					fmt.Fprintf(out, "error: %s\n", r.Error)
					continue
				}
				printResponse(out, r.Response)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "file with one query per line (required)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 4, "concurrent searches")
	cmd.Flags().IntVarP(&opts.topK, "top-k", "k", 5, "maximum number of results per query")
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print results as JSON")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// readQueries returns the non-blank lines of path; lines starting with # are skipped.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	return queries, errors.Wrapf(scanner.Err(), "read %s", path)
}

// runBatch searches every query on a bounded worker pool. Results keep input order.
func runBatch(ctx context.Context, svc *service.SearchService, queries []string, topK, workers int) ([]batchResult, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, errors.Wrap(err, "create worker pool")
	}
	defer pool.Release()

	results := make([]batchResult, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		i, q := i, q
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			results[i] = batchResult{Query: q}
			resp, err := svc.Search(ctx, q, topK, false)
			if err != nil {
				results[i].Error = err.Error()
				return
			}
			results[i].Response = resp
		}); err != nil {
			wg.Done()
			results[i] = batchResult{Query: q, Error: err.Error()}
		}
	}
	wg.Wait()
	return results, nil
}
