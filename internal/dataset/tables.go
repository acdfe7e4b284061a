package dataset

import (
	"context"
	"os"
	"path/filepath"
	"strconv"

	"propsearch/internal/logger"
	"propsearch/internal/model"

	"github.com/cockroachdb/errors"
)

// Source table file names inside a TableSource directory.
const (
	ProjectFile       = "project.csv"
	AddressFile       = "ProjectAddress.csv"
	ConfigurationFile = "ProjectConfiguration.csv"
	VariantFile       = "ProjectConfigurationVariant.csv"
)

// TableSource joins the four raw listing tables into one listing per
// project configuration variant. Projects without configurations, and
// configurations without variants, still produce a listing with the
// missing fields absent.
type TableSource struct {
	Dir string
}

// NewTableSource creates a source reading the tables in dir.
func NewTableSource(dir string) *TableSource {
	return &TableSource{Dir: dir}
}

type configRow struct {
	id  string
	bhk *int
}

type variantRow struct {
	id    string
	price *float64
}

// Load reads and joins the tables. Only project.csv is required.
func (s *TableSource) Load(ctx context.Context) ([]model.Listing, error) {
	projects, err := readTable(filepath.Join(s.Dir, ProjectFile))
	if err != nil {
		return nil, errors.WithHint(err, "DATASET_DIR must contain "+ProjectFile)
	}
	addresses, err := s.optional(AddressFile)
	if err != nil {
		return nil, err
	}
	configs, err := s.optional(ConfigurationFile)
	if err != nil {
		return nil, err
	}
	variants, err := s.optional(VariantFile)
	if err != nil {
		return nil, err
	}

	// projectId -> full address (first wins)
	addressByProject := map[string]string{}
	for _, row := range addresses.rows {
		pid := addresses.get(row, "projectid", "project_id")
		if pid == "" {
			continue
		}
		if _, ok := addressByProject[pid]; !ok {
			addressByProject[pid] = addresses.get(row, "fulladdress", "full_address", "address", "fulladdressline")
		}
	}

	configsByProject := map[string][]configRow{}
	for _, row := range configs.rows {
		pid := configs.get(row, "projectid", "project_id")
		if pid == "" {
			continue
		}
		configsByProject[pid] = append(configsByProject[pid], configRow{
			id:  configs.get(row, "id"),
			bhk: NormalizeBHK(configs.get(row, "custombhk", "custom_bhk", "bhk", "type")),
		})
	}

	variantsByConfig := map[string][]variantRow{}
	for _, row := range variants.rows {
		cid := variants.get(row, "configurationid", "configuration_id")
		if cid == "" {
			continue
		}
		variantsByConfig[cid] = append(variantsByConfig[cid], variantRow{
			id:    variants.get(row, "id"),
			price: ParsePriceToLakhs(variants.get(row, "price", "price_lakhs", "amount")),
		})
	}

	var listings []model.Listing
	seen := map[string]bool{}
	for i, row := range projects.rows {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		pid := projects.get(row, "id", "projectid", "project_id")
		if pid == "" {
			pid = "row-" + itoa(i+1)
		}
		city, locality := SplitAddress(addressByProject[pid])
		base := model.Listing{
			Name:       projects.get(row, "projectname", "project_name", "name"),
			City:       city,
			Locality:   locality,
			Possession: NormalizePossession(projects.get(row, "status", "possession")),
		}

		emit := func(id string, bhk *int, price *float64) {
			if seen[id] {
				return
			}
			seen[id] = true
			l := base
			l.ID, l.BHK, l.Price = id, bhk, price
			listings = append(listings, l)
		}

		cfgs := configsByProject[pid]
		if len(cfgs) == 0 {
			emit(pid, nil, nil)
			continue
		}
		for ci, cfg := range cfgs {
			cid := cfg.id
			if cid == "" {
				cid = itoa(ci + 1)
			}
			vars := variantsByConfig[cfg.id]
			if len(vars) == 0 || cfg.id == "" {
				emit(pid+":"+cid, cfg.bhk, nil)
				continue
			}
			for vi, v := range vars {
				vid := v.id
				if vid == "" {
					vid = itoa(vi + 1)
				}
				emit(pid+":"+cid+":"+vid, cfg.bhk, v.price)
			}
		}
	}
	return listings, nil
}

// optional reads a table that may be missing; a missing file yields an empty table.
func (s *TableSource) optional(name string) (*csvTable, error) {
	path := filepath.Join(s.Dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Logger.Warnf("%s not found, continuing without it", path)
		return &csvTable{header: map[string]int{}}, nil
	}
	return readTable(path)
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
