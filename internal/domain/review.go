package domain

import (
	"strings"
	"time"
)

// SubjectType is the kind of entity a review is about.
type SubjectType string

const (
	SubjectDJ          SubjectType = "DJ"
	SubjectPerformance SubjectType = "PERFORMANCE"
	SubjectEvent       SubjectType = "EVENT"
)

// SubjectTypes lists every valid subject type in display order.
var SubjectTypes = []SubjectType{SubjectDJ, SubjectPerformance, SubjectEvent}

const (
	MinRating = 1
	MaxRating = 5
)

func (t SubjectType) Valid() bool {
	switch t {
	case SubjectDJ, SubjectPerformance, SubjectEvent:
		return true
	}
	return false
}

// ParseSubjectType accepts any casing ("dj", "Performance").
func ParseSubjectType(s string) (SubjectType, bool) {
	t := SubjectType(strings.ToUpper(strings.TrimSpace(s)))
	return t, t.Valid()
}

type Review struct {
	ID           string      `json:"id"`
	SubjectID    string      `json:"subjectId"`
	SubjectType  SubjectType `json:"subjectType"`
	ReviewerName string      `json:"reviewerName"`
	Rating       int         `json:"rating"`
	Comment      string      `json:"comment"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// ReviewInput is the writable part of a review (create and update bodies).
type ReviewInput struct {
	SubjectID    string      `json:"subjectId" validate:"required"`
	SubjectType  SubjectType `json:"subjectType" validate:"required,oneof=DJ PERFORMANCE EVENT"`
	ReviewerName string      `json:"reviewerName" validate:"required,min=2,max=100"`
	Rating       int         `json:"rating" validate:"required,min=1,max=5"`
	Comment      string      `json:"comment" validate:"max=1000"`
}

// SubjectStats is the per-subject aggregate served by the review service.
type SubjectStats struct {
	SubjectID     string      `json:"subjectId"`
	SubjectType   SubjectType `json:"subjectType"`
	AverageRating float64     `json:"averageRating"`
	ReviewCount   int64       `json:"reviewCount"`
}
