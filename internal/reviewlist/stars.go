package reviewlist

import "festival_reviews/internal/domain"

const starCount = domain.MaxRating

type StarState int

const (
	StarEmpty StarState = iota
	StarHalf
	StarFilled
)

func (s StarState) String() string {
	switch s {
	case StarFilled:
		return "filled"
	case StarHalf:
		return "half"
	default:
		return "empty"
	}
}

// Stars reports, for positions 1..5, whether the star is filled at rating.
func Stars(rating int) [starCount]bool {
	var out [starCount]bool
	for i := range out {
		out[i] = rating >= i+1
	}
	return out
}

// StarStates resolves each position against a possibly fractional rating.
// Position i is half when rating >= i-0.5 and rating < i.
func StarStates(rating float64) [starCount]StarState {
	var out [starCount]StarState
	for i := range out {
		pos := float64(i + 1)
		switch {
		case rating >= pos:
			out[i] = StarFilled
		case rating >= pos-0.5:
			out[i] = StarHalf
		}
	}
	return out
}

// RatingInput is the state behind an interactive star selector. The hover
// value only affects display and is never reported as the rating.
type RatingInput struct {
	rating   int
	hover    int
	readonly bool
}

func NewRatingInput(rating int, readonly bool) *RatingInput {
	return &RatingInput{rating: clampRating(rating), readonly: readonly}
}

func (in *RatingInput) Rating() int    { return in.rating }
func (in *RatingInput) ReadOnly() bool { return in.readonly }

// Click selects n stars and reports whether the click was accepted.
// Readonly widgets and out-of-range positions ignore it.
func (in *RatingInput) Click(n int) bool {
	if in.readonly || n < domain.MinRating || n > domain.MaxRating {
		return false
	}
	in.rating = n
	return true
}

func (in *RatingInput) Hover(n int) {
	if in.readonly || n < domain.MinRating || n > domain.MaxRating {
		return
	}
	in.hover = n
}

func (in *RatingInput) Leave() { in.hover = 0 }

// Display is the value the stars are drawn from: the hover preview when
// present, the committed rating otherwise.
func (in *RatingInput) Display() int {
	if in.hover != 0 {
		return in.hover
	}
	return in.rating
}

func (in *RatingInput) States() [starCount]StarState {
	return StarStates(float64(in.Display()))
}

// Highlighted reports whether position (1-based) is inside the hover preview.
func (in *RatingInput) Highlighted(position int) bool {
	return in.hover != 0 && position <= in.hover
}

func clampRating(r int) int {
	if r < 0 {
		return 0
	}
	if r > domain.MaxRating {
		return domain.MaxRating
	}
	return r
}
