package domain

// Subject is a reviewable festival entity (a DJ, a performance or an event).
type Subject struct {
	ID   string
	Type SubjectType
	Name string
}
