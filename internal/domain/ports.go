package domain

import "context"

type ReviewRepository interface {
	// Write paths
	CreateReview(ctx context.Context, r Review) error
	UpdateReview(ctx context.Context, r Review) error
	DeleteReview(ctx context.Context, id string) error

	// Read paths
	GetReview(ctx context.Context, id string) (Review, error)
	ListReviews(ctx context.Context, q ReviewQuery) ([]Review, error)
	SubjectStats(ctx context.Context, subjectID string, t SubjectType) (SubjectStats, error)
}

// SubjectChecker answers whether a subject exists in the festival application.
type SubjectChecker interface {
	SubjectExists(ctx context.Context, subjectID string, t SubjectType) (bool, error)
}

// SubjectCatalog lists the festival's reviewable subjects.
type SubjectCatalog interface {
	FetchSubjects(ctx context.Context) ([]Subject, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, keys ...string) error
}

// ReviewQuery narrows a review listing. Zero values mean "no constraint".
type ReviewQuery struct {
	SubjectID    string
	SubjectType  SubjectType
	ReviewerName string
	Rating       int
	MinRating    int
}

func (q ReviewQuery) IsZero() bool { return q == ReviewQuery{} }
