package reviewlist

import (
	"errors"
	"fmt"
	"slices"

	"festival_reviews/internal/domain"
)

var ErrInvalidPage = errors.New("reviewlist: invalid page")

// PageSizes are the page sizes a caller may choose from.
var PageSizes = []int{5, 10, 25, 50}

const DefaultPageSize = 10

type PageState struct {
	Index int
	Size  int
}

func (p PageState) Validate() error {
	if p.Index < 0 {
		return fmt.Errorf("%w: index %d is negative", ErrInvalidPage, p.Index)
	}
	if !slices.Contains(PageSizes, p.Size) {
		return fmt.Errorf("%w: size %d not in %v", ErrInvalidPage, p.Size, PageSizes)
	}
	return nil
}

// Slice returns in[Index*Size : Index*Size+Size] clipped to len(in).
// A page past the end is empty, not an error.
func (p PageState) Slice(in []domain.Review) []domain.Review {
	start := p.Index * p.Size
	if start >= len(in) || p.Size <= 0 {
		return []domain.Review{}
	}
	end := min(start+p.Size, len(in))
	return slices.Clone(in[start:end])
}

// PageCount is the number of pages needed to show n items.
func (p PageState) PageCount(n int) int {
	if p.Size <= 0 || n <= 0 {
		return 0
	}
	return (n + p.Size - 1) / p.Size
}
