package app

import (
	"context"
	"fmt"
	"math"
	"slices"
	"time"

	"festival_reviews/internal/domain"
)

const allReviewsKey = "reviews:all"

func statsKey(t domain.SubjectType, subjectID string) string {
	return fmt.Sprintf("reviews:stats:%s:%s", t, subjectID)
}

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetReview(ctx context.Context, id string) (domain.Review, error) {
	return s.repo.GetReview(ctx, id)
}

// ListReviews serves the unfiltered listing from cache; narrowed queries
// always go to the repository.
func (s *QueryService) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	if !q.IsZero() || s.cache == nil {
		return s.repo.ListReviews(ctx, q)
	}

	var out []domain.Review
	if ok, err := s.cache.Get(ctx, allReviewsKey, &out); ok && err == nil {
		return out, nil
	}
	rs, err := s.repo.ListReviews(ctx, q)
	if err != nil {
		return nil, err
	}
	// copy so later edits by the caller never reach the cached value
	out = slices.Clone(rs)
	if out == nil {
		out = []domain.Review{}
	}
	_ = s.cache.Set(ctx, allReviewsKey, out, int(s.cacheTTL.Seconds()))
	return out, nil
}

// SubjectStats returns the average rounded to two decimals, as served to clients.
func (s *QueryService) SubjectStats(ctx context.Context, t domain.SubjectType, subjectID string) (domain.SubjectStats, error) {
	key := statsKey(t, subjectID)
	var st domain.SubjectStats
	if s.cache != nil {
		if ok, err := s.cache.Get(ctx, key, &st); ok && err == nil {
			return st, nil
		}
	}
	st, err := s.repo.SubjectStats(ctx, subjectID, t)
	if err != nil {
		return domain.SubjectStats{}, err
	}
	st.SubjectID, st.SubjectType = subjectID, t
	st.AverageRating = math.Round(st.AverageRating*100) / 100
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, st, int(s.cacheTTL.Seconds()))
	}
	return st, nil
}
