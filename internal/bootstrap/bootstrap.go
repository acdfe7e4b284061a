// Package bootstrap assembles the search pipeline from configuration.
package bootstrap

import (
	"context"

	"propsearch/internal/cache"
	"propsearch/internal/config"
	"propsearch/internal/dataset"
	"propsearch/internal/logger"
	"propsearch/internal/repository"
	"propsearch/internal/service"

	"github.com/cockroachdb/errors"
)

// App holds the wired collaborators shared by the server and the CLI.
type App struct {
	Config  *config.Config
	Data    *dataset.Handle
	Search  *service.SearchService
	Repo    *repository.Repository // nil without DATABASE_URL
	closers []func() error
}

// New connects optional backends and builds the search service.
// Redis being unreachable only disables caching.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.Named("bootstrap")
	app := &App{Config: cfg}

	if cfg.DatabaseEnabled() {
		repo, err := repository.NewRepository(cfg.Database.Driver, cfg.Database.DSN,
			cfg.Database.MaxConnections, cfg.Database.MaxIdleConnections)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, repo.Close)
		if err := repo.EnsureSchema(ctx); err != nil {
			app.Close()
			return nil, err
		}
		app.Repo = repo
		log.Infof("✅ Connected to %s database", cfg.Database.Driver)
	}

	source, err := NewSource(cfg, app.Repo)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Data = dataset.NewHandle(source)

	rules := service.NewRuleExtractor()
	enriched, err := service.NewEnrichedExtractor(&cfg.Enrichment, rules)
	if err != nil {
		app.Close()
		return nil, err
	}
	if enriched.IsEnabled() {
		log.Infof("✅ Enrichment enabled: model %s", cfg.Enrichment.Model)
	} else {
		log.Debug("Enrichment disabled, use_gemini requests fall back to rule-based extraction")
	}

	opts := []service.Option{service.WithEnrichment(enriched)}
	if cfg.Cache.Enabled {
		rc, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
			Prefix:   cfg.Cache.Prefix,
		})
		if err != nil {
			log.Warnf("⚠️  Redis unavailable, caching disabled: %v", err)
		} else {
			app.closers = append(app.closers, rc.Close)
			opts = append(opts, service.WithCache(rc, cfg.Cache.TTL))
			log.Infof("✅ Response cache: redis %s (ttl %s)", cfg.Cache.Addr, cfg.Cache.TTL)
		}
	}
	if app.Repo != nil {
		opts = append(opts, service.WithSearchLog(app.Repo))
	}

	ranker := service.NewRanker(service.Weights{
		ProjectName: cfg.Ranking.WeightProjectName,
		Locality:    cfg.Ranking.WeightLocality,
		Soft:        cfg.Ranking.WeightSoft,
		Budget:      cfg.Ranking.WeightBudget,
	})
	app.Search = service.NewSearchService(app.Data, ranker, opts...)
	return app, nil
}

// NewSource selects the dataset source named by DATASET_SOURCE.
func NewSource(cfg *config.Config, repo *repository.Repository) (dataset.Source, error) {
	switch cfg.Dataset.Source {
	case config.SourceCSV:
		return dataset.NewCSVSource(cfg.Dataset.Path), nil
	case config.SourceTables:
		return dataset.NewTableSource(cfg.Dataset.Dir), nil
	case config.SourceDatabase:
		if repo == nil {
			return nil, errors.New("DATASET_SOURCE=database requires DATABASE_URL")
		}
		return repo, nil
	}
	return nil, errors.Newf("unknown dataset source %q", cfg.Dataset.Source)
}

// Close waits for pending search logs, then releases backends in reverse order.
func (a *App) Close() {
	if a.Search != nil {
		a.Search.Wait()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Logger.Warnf("close: %v", err)
		}
	}
	a.closers = nil
}
