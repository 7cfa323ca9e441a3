package reviewlist

import (
	"context"
	"fmt"

	"festival_reviews/internal/domain"
)

// SubjectIndex is a read-only (type, id) -> subject lookup over a catalog
// snapshot. DJ and performance ids live in separate namespaces.
type SubjectIndex struct {
	byKey map[subjectKey]domain.Subject
}

type subjectKey struct {
	t  domain.SubjectType
	id string
}

// NewSubjectIndex indexes subjects by type and ID; a repeated pair keeps the
// last entry.
func NewSubjectIndex(subjects []domain.Subject) *SubjectIndex {
	m := make(map[subjectKey]domain.Subject, len(subjects))
	for _, s := range subjects {
		m[subjectKey{s.Type, s.ID}] = s
	}
	return &SubjectIndex{byKey: m}
}

// LoadSubjects fetches a catalog snapshot and indexes it.
func LoadSubjects(ctx context.Context, c domain.SubjectCatalog) (*SubjectIndex, error) {
	subjects, err := c.FetchSubjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}
	return NewSubjectIndex(subjects), nil
}

func (x *SubjectIndex) Len() int {
	if x == nil {
		return 0
	}
	return len(x.byKey)
}

func (x *SubjectIndex) Lookup(t domain.SubjectType, id string) (domain.Subject, bool) {
	if x == nil {
		return domain.Subject{}, false
	}
	s, ok := x.byKey[subjectKey{t, id}]
	return s, ok
}

// Label names the subject of r, falling back to its raw ID.
func (x *SubjectIndex) Label(r domain.Review) string {
	if s, ok := x.Lookup(r.SubjectType, r.SubjectID); ok && s.Name != "" {
		return s.Name
	}
	return r.SubjectID
}
