// Package reviewlist shapes a fetched review list into what a list screen
// shows: a filtered, paginated slice plus global statistics.
//
// All state transitions of a Pipeline are serialized. Store calls happen
// outside the lock, and their results re-enter under it. When loads
// overlap, the most recently issued one wins; older completions are
// dropped with ErrSuperseded.
package reviewlist

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"festival_reviews/internal/domain"
)

// ErrSuperseded is returned by a load whose result was dropped because a
// newer load was issued after it.
var ErrSuperseded = errors.New("reviewlist: load superseded by a newer load")

// ErrReloadFailed marks a DeleteReview whose delete went through but whose
// follow-up reload did not. The reload's TransportError stays in the chain.
var ErrReloadFailed = errors.New("reviewlist: review deleted but reload failed")

// Store is the subset of the review store the pipeline needs.
type Store interface {
	FetchAll(ctx context.Context) ([]domain.Review, error)
	DeleteByID(ctx context.Context, id string) error
}

// Pipeline holds the snapshot of one list screen and derives its view.
type Pipeline struct {
	store Store
	log   zerolog.Logger

	mu       sync.Mutex
	all      []domain.Review
	filtered []domain.Review
	paged    []domain.Review
	filter   Filter
	page     PageState
	loading  bool
	err      error
	gen      uint64
}

// New returns an empty pipeline on the first page at the default size.
func New(store Store, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		store: store,
		log:   log.With().Str("component", "reviewlist").Logger(),
		page:  PageState{Index: 0, Size: DefaultPageSize},
	}
}

// Load replaces the snapshot with the store's full list. On failure the
// snapshot is left as it was and the error is also kept in Err.
func (p *Pipeline) Load(ctx context.Context) error {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.loading = true
	p.mu.Unlock()

	reviews, err := p.store.FetchAll(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		p.log.Debug().Uint64("gen", gen).Uint64("latest", p.gen).Msg("dropping superseded load")
		return ErrSuperseded
	}
	p.loading = false
	if err != nil {
		p.err = asTransport("fetchAll", err)
		p.log.Warn().Err(p.err).Msg("load reviews failed")
		return p.err
	}
	p.all = slices.Clone(reviews)
	p.err = nil
	p.page.Index = 0
	p.refilter()
	p.log.Debug().Int("total", len(p.all)).Int("filtered", len(p.filtered)).Msg("reviews loaded")
	return nil
}

// ApplyFilter re-derives the filtered list from the snapshot and returns
// to the first page.
func (p *Pipeline) ApplyFilter(f Filter) error {
	if err := f.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = f.clone()
	p.page.Index = 0
	p.refilter()
	return nil
}

func (p *Pipeline) ClearFilter() {
	_ = p.ApplyFilter(Filter{})
}

// SetPage moves within the current filtered list without re-filtering.
func (p *Pipeline) SetPage(index, size int) error {
	ps := PageState{Index: index, Size: size}
	if err := ps.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.page = ps
	p.paged = p.page.Slice(p.filtered)
	return nil
}

// DeleteReview deletes id in the store and then reloads everything, so the
// snapshot reflects other clients' changes too. A failed reload is reported
// as ErrReloadFailed wrapping the reload error; Err holds the reload error.
func (p *Pipeline) DeleteReview(ctx context.Context, id string) error {
	if err := p.store.DeleteByID(ctx, id); err != nil {
		terr := asTransport("deleteById", err)
		p.mu.Lock()
		p.err = terr
		p.mu.Unlock()
		p.log.Warn().Err(terr).Str("id", id).Msg("delete review failed")
		return terr
	}
	p.log.Info().Str("id", id).Msg("review deleted")
	err := p.Load(ctx)
	if err == nil || errors.Is(err, ErrSuperseded) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrReloadFailed, err)
}

// Statistics aggregates the whole snapshot, ignoring the current filter.
func (p *Pipeline) Statistics() Statistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Summarize(p.all)
}

// View is a consistent copy of everything a list screen renders.
type View struct {
	Items     []domain.Review
	Filtered  int
	Total     int
	PageIndex int
	PageSize  int
	PageCount int
	Filter    Filter
	Loading   bool
	Err       error
}

func (p *Pipeline) View() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return View{
		Items:     slices.Clone(p.paged),
		Filtered:  len(p.filtered),
		Total:     len(p.all),
		PageIndex: p.page.Index,
		PageSize:  p.page.Size,
		PageCount: p.page.PageCount(len(p.filtered)),
		Filter:    p.filter.clone(),
		Loading:   p.loading,
		Err:       p.err,
	}
}

func (p *Pipeline) All() []domain.Review {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.all)
}

func (p *Pipeline) Filtered() []domain.Review {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.filtered)
}

func (p *Pipeline) Paged() []domain.Review {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.paged)
}

func (p *Pipeline) Page() PageState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

func (p *Pipeline) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Pipeline) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// refilter must be called with mu held.
func (p *Pipeline) refilter() {
	p.filtered = p.filter.Apply(p.all)
	p.paged = p.page.Slice(p.filtered)
}

func asTransport(op string, err error) error {
	var te *domain.TransportError
	if errors.As(err, &te) {
		return err
	}
	return &domain.TransportError{Op: op, Err: err}
}
