package reviewapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/sync/errgroup"

	"festival_reviews/internal/domain"
)

// FestivalClient reads DJs and performances from the festival application.
type FestivalClient struct{ c *Client }

func NewFestival(base string, rps int) (*FestivalClient, error) {
	c, err := newClient("festival-api", base, rps)
	if err != nil {
		return nil, err
	}
	return &FestivalClient{c: c}, nil
}

type djDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Genre string `json:"genre"`
}

type performanceDTO struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	DjID  string `json:"djId"`
}

func subjectPath(t domain.SubjectType, id string) (string, bool) {
	switch t {
	case domain.SubjectDJ:
		return "/api/djs/" + url.PathEscape(id), true
	case domain.SubjectPerformance:
		return "/api/performances/" + url.PathEscape(id), true
	}
	return "", false
}

// SubjectExists asks the festival application about one subject. A 404 is a
// plain "no". Events are not tracked there and always exist.
func (f *FestivalClient) SubjectExists(ctx context.Context, subjectID string, t domain.SubjectType) (bool, error) {
	if t == domain.SubjectEvent {
		return true, nil
	}
	p, ok := subjectPath(t, subjectID)
	if !ok {
		return false, fmt.Errorf("invalid subject type %q", t)
	}
	err := f.c.do(ctx, http.MethodGet, p, "subject", nil, nil)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// FetchSubjects loads DJs and performances concurrently.
func (f *FestivalClient) FetchSubjects(ctx context.Context) ([]domain.Subject, error) {
	var (
		djs   []djDTO
		perfs []performanceDTO
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return f.c.do(gctx, http.MethodGet, "/api/djs", "djs", nil, &djs) })
	g.Go(func() error { return f.c.do(gctx, http.MethodGet, "/api/performances", "performances", nil, &perfs) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.Subject, 0, len(djs)+len(perfs))
	for _, d := range djs {
		out = append(out, domain.Subject{ID: d.ID, Type: domain.SubjectDJ, Name: d.Name})
	}
	for _, p := range perfs {
		out = append(out, domain.Subject{ID: p.ID, Type: domain.SubjectPerformance, Name: p.Title})
	}
	return out, nil
}
