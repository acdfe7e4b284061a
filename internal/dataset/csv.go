package dataset

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"propsearch/internal/logger"
	"propsearch/internal/model"

	"github.com/cockroachdb/errors"
)

// Column aliases accepted by CSVSource, in order of preference.
var (
	idColumns         = []string{"project_id", "id", "projectid"}
	nameColumns       = []string{"project_name", "projectname", "name"}
	cityColumns       = []string{"city_norm", "city"}
	localityColumns   = []string{"locality_norm", "locality"}
	bhkColumns        = []string{"bhk", "custombhk", "custom_bhk", "type"}
	priceColumns      = []string{"price_lakhs", "price", "amount"}
	possessionColumns = []string{"possession_norm", "possession", "status"}
)

// CSVSource reads one denormalized listings CSV.
type CSVSource struct {
	Path string
}

// NewCSVSource creates a source for the CSV at path.
func NewCSVSource(path string) *CSVSource {
	return &CSVSource{Path: path}
}

// Load reads every row of the file as a listing. Rows without an id column
// value get a synthetic id from their row number.
func (s *CSVSource) Load(ctx context.Context) ([]model.Listing, error) {
	table, err := readTable(s.Path)
	if err != nil {
		return nil, err
	}
	if table.column(idColumns...) < 0 && table.column(nameColumns...) < 0 {
		return nil, errors.WithHintf(errors.Newf("%s: no id or project name column", s.Path),
			"expected a header row with one of %v", append(idColumns, nameColumns...))
	}

	listings := make([]model.Listing, 0, len(table.rows))
	for i, row := range table.rows {
		if i%1000 == 0 && ctx.Err() != nil {
			return nil, ctx.Err()
		}
		l := model.Listing{
			ID:         table.get(row, idColumns...),
			Name:       table.get(row, nameColumns...),
			City:       table.get(row, cityColumns...),
			Locality:   table.get(row, localityColumns...),
			BHK:        NormalizeBHK(table.get(row, bhkColumns...)),
			Price:      ParsePriceToLakhs(table.get(row, priceColumns...)),
			Possession: model.Possession(table.get(row, possessionColumns...)),
		}
		if isBlank(l.ID) {
			l.ID = "row-" + itoa(i+1)
		}
		listings = append(listings, l)
	}
	return listings, nil
}

// csvTable is a parsed CSV with lower-cased, trimmed headers.
type csvTable struct {
	header map[string]int
	rows   [][]string
}

func readTable(path string) (*csvTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer f.Close()
	return parseTable(f, path)
}

func parseTable(r io.Reader, name string) (*csvTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	head, err := reader.Read()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read header of %s", name)
	}
	t := &csvTable{header: make(map[string]int, len(head))}
	for i, h := range head {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))
		if _, dup := t.header[h]; !dup {
			t.header[h] = i
		}
	}

	skipped := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, errors.Wrapf(err, "failed to read %s", name)
			}
			skipped++
			continue
		}
		t.rows = append(t.rows, row)
	}
	if skipped > 0 {
		logger.Logger.Warnf("Skipped %d malformed rows in %s", skipped, name)
	}
	return t, nil
}

// column returns the index of the first alias present in the header, or -1.
func (t *csvTable) column(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := t.header[a]; ok {
			return i
		}
	}
	return -1
}

// get returns the trimmed value of the first alias present, or "".
func (t *csvTable) get(row []string, aliases ...string) string {
	i := t.column(aliases...)
	if i < 0 || i >= len(row) {
		return ""
	}
	v := strings.TrimSpace(row[i])
	if isBlank(v) {
		return ""
	}
	return v
}
