package reviewlist

import "festival_reviews/internal/domain"

// Statistics aggregates a whole snapshot.
type Statistics struct {
	Total   int
	Average float64
	ByType  map[domain.SubjectType]int
	// Distribution[n] counts reviews rated n stars; index 0 is unused.
	Distribution [domain.MaxRating + 1]int
}

func (s Statistics) CountByType(t domain.SubjectType) int { return s.ByType[t] }

// Summarize computes Statistics in one pass. The average is left unrounded.
func Summarize(reviews []domain.Review) Statistics {
	st := Statistics{
		Total:  len(reviews),
		ByType: make(map[domain.SubjectType]int, len(domain.SubjectTypes)),
	}
	for _, t := range domain.SubjectTypes {
		st.ByType[t] = 0
	}
	if st.Total == 0 {
		return st
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
		st.ByType[r.SubjectType]++
		if r.Rating >= domain.MinRating && r.Rating <= domain.MaxRating {
			st.Distribution[r.Rating]++
		}
	}
	st.Average = float64(sum) / float64(st.Total)
	return st
}
