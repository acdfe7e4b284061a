package dataset

import (
	"context"
	"sync"
	"sync/atomic"

	"propsearch/internal/logger"
	"propsearch/internal/model"

	"github.com/cockroachdb/errors"
)

// Source loads the full listing dataset.
type Source interface {
	Load(ctx context.Context) ([]model.Listing, error)
}

// Static is a Source over an in-memory slice.
type Static []model.Listing

// Load returns a copy of the listings.
func (s Static) Load(context.Context) ([]model.Listing, error) {
	out := make([]model.Listing, len(s))
	copy(out, s)
	return out, nil
}

// Handle loads a Source on first use and serves the normalized result for
// the life of the process. A failed load is not cached; the next caller
// retries. Published slices are never mutated, so readers need no lock.
type Handle struct {
	source Source
	mu     sync.Mutex
	data   atomic.Pointer[snapshot]
}

type snapshot struct {
	listings []model.Listing
	byID     map[string]int
}

// NewHandle creates a handle over source. Nothing is loaded until Listings is called.
func NewHandle(source Source) *Handle {
	return &Handle{source: source}
}

// Listings returns the cached dataset, loading it if needed.
func (h *Handle) Listings(ctx context.Context) ([]model.Listing, error) {
	if s := h.data.Load(); s != nil {
		return s.listings, nil
	}
	s, err := h.load(ctx)
	if err != nil {
		return nil, err
	}
	return s.listings, nil
}

// Get returns the listing with the given id.
func (h *Handle) Get(ctx context.Context, id string) (*model.Listing, bool, error) {
	s := h.data.Load()
	if s == nil {
		var err error
		if s, err = h.load(ctx); err != nil {
			return nil, false, err
		}
	}
	i, ok := s.byID[id]
	if !ok {
		return nil, false, nil
	}
	l := s.listings[i]
	return &l, true, nil
}

// Loaded reports whether the dataset has been published.
func (h *Handle) Loaded() bool {
	return h.data.Load() != nil
}

func (h *Handle) load(ctx context.Context) (*snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if s := h.data.Load(); s != nil {
		return s, nil
	}

	raw, err := h.source.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dataset")
	}
	if len(raw) == 0 {
		logger.Logger.Warn("Dataset source returned no listings")
	}

	s := &snapshot{listings: make([]model.Listing, 0, len(raw)), byID: make(map[string]int, len(raw))}
	for _, l := range raw {
		NormalizeListing(&l)
		if _, dup := s.byID[l.ID]; dup || l.ID == "" {
			continue
		}
		s.byID[l.ID] = len(s.listings)
		s.listings = append(s.listings, l)
	}
	if skipped := len(raw) - len(s.listings); skipped > 0 {
		logger.Logger.Warnf("Skipped %d listings with empty or duplicate ids", skipped)
	}

	h.data.Store(s)
	logger.Logger.Infof("Dataset loaded: %d listings", len(s.listings))
	return s, nil
}
