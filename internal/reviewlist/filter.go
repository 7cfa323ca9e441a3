package reviewlist

import (
	"errors"
	"fmt"

	"festival_reviews/internal/domain"
)

var ErrInvalidFilter = errors.New("reviewlist: invalid filter")

// Filter selects reviews by subject type and a minimum rating.
// An empty SubjectType and a nil MinRating match everything.
type Filter struct {
	SubjectType domain.SubjectType
	MinRating   *int
}

// MinRatingOf is a convenience for building a Filter literal.
func MinRatingOf(n int) *int { return &n }

func (f Filter) Validate() error {
	if f.SubjectType != "" && !f.SubjectType.Valid() {
		return fmt.Errorf("%w: unknown subject type %q", ErrInvalidFilter, f.SubjectType)
	}
	if f.MinRating != nil && (*f.MinRating < domain.MinRating || *f.MinRating > domain.MaxRating) {
		return fmt.Errorf("%w: min rating %d outside %d..%d", ErrInvalidFilter, *f.MinRating, domain.MinRating, domain.MaxRating)
	}
	return nil
}

func (f Filter) Match(r domain.Review) bool {
	if f.SubjectType != "" && r.SubjectType != f.SubjectType {
		return false
	}
	if f.MinRating != nil && r.Rating < *f.MinRating {
		return false
	}
	return true
}

func (f Filter) IsZero() bool { return f.SubjectType == "" && f.MinRating == nil }

func (f Filter) clone() Filter {
	if f.MinRating != nil {
		f.MinRating = MinRatingOf(*f.MinRating)
	}
	return f
}

// Apply returns the order-preserving subsequence of in that matches f.
// in is never modified.
func (f Filter) Apply(in []domain.Review) []domain.Review {
	out := make([]domain.Review, 0, len(in))
	for _, r := range in {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
