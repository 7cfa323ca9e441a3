package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"sync"

	"festival_reviews/internal/domain"
)

// ---- fakes ----

type fakeRepo struct {
	mu      sync.Mutex
	rows    map[string]domain.Review
	lists   int
	stats   domain.SubjectStats
	failAll error
}

func newFakeRepo(rs ...domain.Review) *fakeRepo {
	f := &fakeRepo{rows: map[string]domain.Review{}}
	for _, r := range rs {
		f.rows[r.ID] = r
	}
	return f
}

func (f *fakeRepo) CreateReview(ctx context.Context, r domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll != nil {
		return f.failAll
	}
	f.rows[r.ID] = r
	return nil
}

func (f *fakeRepo) UpdateReview(ctx context.Context, r domain.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[r.ID]; !ok {
		return domain.ErrNotFound
	}
	f.rows[r.ID] = r
	return nil
}

func (f *fakeRepo) DeleteReview(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeRepo) GetReview(ctx context.Context, id string) (domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rows[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}

func (f *fakeRepo) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []domain.Review
	for _, r := range f.rows {
		if q.SubjectType != "" && r.SubjectType != q.SubjectType {
			continue
		}
		if q.MinRating > 0 && r.Rating < q.MinRating {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) SubjectStats(ctx context.Context, subjectID string, t domain.SubjectType) (domain.SubjectStats, error) {
	return f.stats, nil
}

// fakeCache stores JSON so reads never alias the written value.
type fakeCache struct {
	store map[string][]byte
	dels  []string
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
		c.dels = append(c.dels, k)
	}
	return nil
}

type fakeSubjects struct {
	known map[string]bool
	err   error
	calls int
}

func (s *fakeSubjects) SubjectExists(ctx context.Context, id string, t domain.SubjectType) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	return s.known[string(t)+"/"+id], nil
}

var errBoom = errors.New("boom")
