package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"propsearch/internal/cache"
	"propsearch/internal/dataset"
	"propsearch/internal/logger"
	"propsearch/internal/model"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// ErrSearchLogDisabled is returned by LogFeedback when no log store is configured.
var ErrSearchLogDisabled = errors.New("search log is not configured")

// SearchLogStore records searches and click feedback.
type SearchLogStore interface {
	LogSearch(ctx context.Context, entry model.SearchLogEntry) error
	LogFeedback(ctx context.Context, searchID, listingID, action string) error
}

// SearchEventCallback is called for streaming search events
type SearchEventCallback func(event string, data any) error

// SearchService runs the query pipeline: extract filters, rank, summarize.
type SearchService struct {
	data     *dataset.Handle
	rules    FilterExtractor
	enriched *EnrichedExtractor
	ranker   *Ranker
	cache    cache.Client
	cacheTTL time.Duration
	logStore SearchLogStore
	pending  sync.WaitGroup
}

// Option configures optional SearchService collaborators.
type Option func(*SearchService)

// WithEnrichment enables the model-backed extractor for requests that ask for it.
func WithEnrichment(e *EnrichedExtractor) Option {
	return func(s *SearchService) { s.enriched = e }
}

// WithCache caches rule-based responses for ttl.
func WithCache(c cache.Client, ttl time.Duration) Option {
	return func(s *SearchService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithSearchLog records every search in store.
func WithSearchLog(store SearchLogStore) Option {
	return func(s *SearchService) { s.logStore = store }
}

// NewSearchService creates a new search service
func NewSearchService(data *dataset.Handle, ranker *Ranker, opts ...Option) *SearchService {
	s := &SearchService{
		data:   data,
		rules:  NewRuleExtractor(),
		ranker: ranker,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnrichmentAvailable reports whether use_gemini requests can reach a model.
func (s *SearchService) EnrichmentAvailable() bool {
	return s.enriched.IsEnabled()
}

// Search runs the full pipeline. It only fails when the dataset cannot be loaded.
func (s *SearchService) Search(ctx context.Context, query string, topK int, useEnrichment bool) (*model.SearchResponse, error) {
	return s.run(ctx, query, topK, useEnrichment, nil)
}

// SearchStream runs the pipeline and reports progress through callback:
// "parsing", "content" (model output, enrichment only), "filters" and "searching".
func (s *SearchService) SearchStream(ctx context.Context, query string, topK int, useEnrichment bool, callback SearchEventCallback) (*model.SearchResponse, error) {
	return s.run(ctx, query, topK, useEnrichment, callback)
}

func (s *SearchService) run(ctx context.Context, query string, topK int, useEnrichment bool, callback SearchEventCallback) (*model.SearchResponse, error) {
	startTime := time.Now()
	emit := func(event string, data any) error {
		if callback == nil {
			return nil
		}
		return callback(event, data)
	}

	listings, err := s.data.Listings(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "dataset unavailable")
	}

	if err := emit("parsing", map[string]any{"status": "Parsing your query..."}); err != nil {
		return nil, err
	}

	cacheable := s.cache != nil && !useEnrichment
	if cacheable {
		if resp, ok := s.cached(ctx, query, topK); ok {
			resp.SearchID = uuid.NewString()
			resp.Query = query
			resp.Took = time.Since(startTime).Milliseconds()
			if err := emit("filters", resp.Filters); err != nil {
				return nil, err
			}
			if err := emit("searching", map[string]any{"status": "Ranking listings..."}); err != nil {
				return nil, err
			}
			s.logAsync(resp)
			return resp, nil
		}
	}

	filters, enriched, err := s.extract(ctx, query, listings, useEnrichment, callback)
	if err != nil {
		return nil, err
	}
	if err := emit("filters", filters); err != nil {
		return nil, err
	}

	if err := emit("searching", map[string]any{"status": "Ranking listings..."}); err != nil {
		return nil, err
	}
	results := s.ranker.Rank(filters, listings, topK)

	resp := &model.SearchResponse{
		SearchID: uuid.NewString(),
		Query:    query,
		Filters:  filters,
		Summary:  BuildSummary(results),
		Cards:    BuildCards(results),
		Results:  results,
		Enriched: enriched,
	}
	resp.Took = time.Since(startTime).Milliseconds()

	if cacheable {
		s.store(ctx, query, topK, resp)
	}
	s.logAsync(resp)
	return resp, nil
}

func (s *SearchService) extract(ctx context.Context, query string, listings []model.Listing, useEnrichment bool, callback SearchEventCallback) (model.FilterSet, bool, error) {
	if !useEnrichment || !s.enriched.IsEnabled() {
		return s.rules.Extract(ctx, query, listings), false, nil
	}

	var onChunk ChunkCallback
	var streamErr error
	if callback != nil {
		onChunk = func(content string) error {
			if err := callback("content", map[string]any{"content": content}); err != nil {
				streamErr = err
				return err
			}
			return nil
		}
	}

	filters, enriched := s.enriched.ExtractStream(ctx, query, listings, onChunk)
	if streamErr != nil {
		// the client went away mid-stream
		return model.FilterSet{}, false, streamErr
	}
	return filters, enriched, nil
}

func (s *SearchService) cached(ctx context.Context, query string, topK int) (*model.SearchResponse, bool) {
	data, err := s.cache.Get(ctx, cache.SearchKey(query, topK))
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.Logger.Warnw("Cache read failed", "error", err)
		}
		return nil, false
	}
	var resp model.SearchResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		logger.Logger.Warnw("Discarding undecodable cache entry", "error", err)
		return nil, false
	}
	return &resp, true
}

func (s *SearchService) store(ctx context.Context, query string, topK int, resp *model.SearchResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, cache.SearchKey(query, topK), data, s.cacheTTL); err != nil {
		logger.Logger.Warnw("Cache write failed", "error", err)
	}
}

// logAsync records the search without blocking the response.
func (s *SearchService) logAsync(resp *model.SearchResponse) {
	if s.logStore == nil {
		return
	}
	entry := model.SearchLogEntry{
		SearchID:       resp.SearchID,
		Query:          resp.Query,
		Filters:        resp.Filters,
		ResultCount:    len(resp.Results),
		ListingIDs:     make([]string, len(resp.Results)),
		ResponseTimeMs: resp.Took,
	}
	for i, r := range resp.Results {
		entry.ListingIDs[i] = r.ID
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.logStore.LogSearch(ctx, entry); err != nil {
			logger.Logger.Warnw("Failed to log search", "search_id", entry.SearchID, "error", err)
		}
	}()
}

// Wait blocks until pending search log writes finish.
func (s *SearchService) Wait() {
	s.pending.Wait()
}

// GetListing retrieves a single listing by ID
func (s *SearchService) GetListing(ctx context.Context, id string) (*model.Listing, bool, error) {
	return s.data.Get(ctx, id)
}

// LogFeedback logs user feedback/action
func (s *SearchService) LogFeedback(ctx context.Context, req *model.FeedbackRequest) error {
	if s.logStore == nil {
		return ErrSearchLogDisabled
	}
	return s.logStore.LogFeedback(ctx, req.SearchID, req.ListingID, req.Action)
}
