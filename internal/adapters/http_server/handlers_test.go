package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	server "festival_reviews/internal/adapters/http_server"
	redisad "festival_reviews/internal/adapters/redis"
	"festival_reviews/internal/app"
	"festival_reviews/internal/domain"
)

// memRepo is an in-memory ReviewRepository.
type memRepo struct {
	mu   sync.Mutex
	rows map[string]domain.Review
}

func (m *memRepo) CreateReview(ctx context.Context, r domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[r.ID] = r
	return nil
}

func (m *memRepo) UpdateReview(ctx context.Context, r domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[r.ID]; !ok {
		return domain.ErrNotFound
	}
	m.rows[r.ID] = r
	return nil
}

func (m *memRepo) DeleteReview(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rows[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memRepo) GetReview(ctx context.Context, id string) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return domain.Review{}, domain.ErrNotFound
	}
	return r, nil
}

func (m *memRepo) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Review{}
	for _, r := range m.rows {
		switch {
		case q.SubjectType != "" && r.SubjectType != q.SubjectType,
			q.SubjectID != "" && r.SubjectID != q.SubjectID,
			q.ReviewerName != "" && r.ReviewerName != q.ReviewerName,
			q.Rating != 0 && r.Rating != q.Rating,
			q.MinRating != 0 && r.Rating < q.MinRating:
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memRepo) SubjectStats(ctx context.Context, id string, t domain.SubjectType) (domain.SubjectStats, error) {
	rs, _ := m.ListReviews(ctx, domain.ReviewQuery{SubjectID: id, SubjectType: t})
	st := domain.SubjectStats{ReviewCount: int64(len(rs))}
	for _, r := range rs {
		st.AverageRating += float64(r.Rating)
	}
	if len(rs) > 0 {
		st.AverageRating /= float64(len(rs))
	}
	return st, nil
}

type knownSubjects map[string]bool

func (k knownSubjects) SubjectExists(ctx context.Context, id string, t domain.SubjectType) (bool, error) {
	return k[string(t)+"/"+id], nil
}

func newTestServer(t *testing.T, seed ...domain.Review) *httptest.Server {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redisad.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test:")

	repo := &memRepo{rows: map[string]domain.Review{}}
	for _, r := range seed {
		repo.rows[r.ID] = r
	}
	subjects := knownSubjects{"DJ/dj-1": true, "PERFORMANCE/pf-1": true}

	srv := server.New(zerolog.Nop(), 5*time.Second)
	srv.MountHandlers(&server.Handlers{
		Q: app.NewQueryService(repo, cache, time.Minute),
		C: app.NewCommandService(repo, subjects, cache, zerolog.Nop()),
	})
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string, hdr ...string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = res.Body.Close() })
	return res
}

func decode[T any](t *testing.T, res *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(res.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

var seedReviews = []domain.Review{
	{ID: "r1", SubjectID: "dj-1", SubjectType: domain.SubjectDJ, ReviewerName: "Ana", Rating: 5},
	{ID: "r2", SubjectID: "dj-1", SubjectType: domain.SubjectDJ, ReviewerName: "Bob", Rating: 4},
	{ID: "r3", SubjectID: "pf-1", SubjectType: domain.SubjectPerformance, ReviewerName: "Ana", Rating: 2},
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	res := do(t, http.MethodGet, ts.URL+"/api/reviews/health", "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	got := decode[map[string]string](t, res)
	if got["status"] != "UP" || got["service"] != "Review Service" {
		t.Fatalf("unexpected health body: %v", got)
	}
}

func TestCreate_ThenGet(t *testing.T) {
	ts := newTestServer(t)
	res := do(t, http.MethodPost, ts.URL+"/api/reviews",
		`{"subjectId":"dj-1","subjectType":"dj","reviewerName":"Ana","rating":5,"comment":"great"}`)
	if res.StatusCode != http.StatusCreated {
		t.Fatalf("create status %d", res.StatusCode)
	}
	rv := decode[domain.Review](t, res)
	if rv.ID == "" || rv.SubjectType != domain.SubjectDJ {
		t.Fatalf("unexpected created review: %+v", rv)
	}
	if loc := res.Header.Get("Location"); loc != "/api/reviews/"+rv.ID {
		t.Fatalf("unexpected Location %q", loc)
	}

	res = do(t, http.MethodGet, ts.URL+"/api/reviews/"+rv.ID, "")
	if res.StatusCode != http.StatusOK {
		t.Fatalf("get status %d", res.StatusCode)
	}
	if got := decode[domain.Review](t, res); got.Comment != "great" {
		t.Fatalf("unexpected review: %+v", got)
	}
}

func TestCreate_ValidationProblem(t *testing.T) {
	ts := newTestServer(t)
	res := do(t, http.MethodPost, ts.URL+"/api/reviews",
		`{"subjectId":"dj-1","subjectType":"VENUE","reviewerName":"A","rating":9}`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("status %d", res.StatusCode)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("content type %q", ct)
	}
	p := decode[struct {
		Status int               `json:"status"`
		Errors map[string]string `json:"errors"`
	}](t, res)
	for _, f := range []string{"subjectType", "reviewerName", "rating"} {
		if _, ok := p.Errors[f]; !ok {
			t.Fatalf("missing field %q in %v", f, p.Errors)
		}
	}
}

func TestCreate_UnknownSubject(t *testing.T) {
	ts := newTestServer(t)
	res := do(t, http.MethodPost, ts.URL+"/api/reviews",
		`{"subjectId":"dj-404","subjectType":"DJ","reviewerName":"Ana","rating":3}`)
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown subject, got %d", res.StatusCode)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	ts := newTestServer(t)
	if res := do(t, http.MethodPost, ts.URL+"/api/reviews", `{"rating":`); res.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
}

func TestGet_NotFound(t *testing.T) {
	ts := newTestServer(t)
	if res := do(t, http.MethodGet, ts.URL+"/api/reviews/missing", ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestList_Queries(t *testing.T) {
	ts := newTestServer(t, seedReviews...)

	cases := []struct {
		path string
		want []string
	}{
		{"/api/reviews", []string{"r1", "r2", "r3"}},
		{"/api/reviews/subject/dj/dj-1", []string{"r1", "r2"}},
		{"/api/reviews/type/PERFORMANCE", []string{"r3"}},
		{"/api/reviews/reviewer/Ana", []string{"r1", "r3"}},
		{"/api/reviews/rating/4", []string{"r2"}},
		{"/api/reviews/rating/min/4", []string{"r1", "r2"}},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			res := do(t, http.MethodGet, ts.URL+tc.path, "")
			if res.StatusCode != http.StatusOK {
				t.Fatalf("status %d", res.StatusCode)
			}
			got := decode[[]domain.Review](t, res)
			ids := make([]string, 0, len(got))
			for _, r := range got {
				ids = append(ids, r.ID)
			}
			if strings.Join(ids, ",") != strings.Join(tc.want, ",") {
				t.Fatalf("got %v want %v", ids, tc.want)
			}
		})
	}
}

func TestList_BadParams(t *testing.T) {
	ts := newTestServer(t)
	for _, p := range []string{"/api/reviews/type/VENUE", "/api/reviews/rating/0", "/api/reviews/rating/min/six"} {
		if res := do(t, http.MethodGet, ts.URL+p, ""); res.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", p, res.StatusCode)
		}
	}
}

func TestStats_Rounded(t *testing.T) {
	ts := newTestServer(t,
		domain.Review{ID: "a", SubjectID: "dj-1", SubjectType: domain.SubjectDJ, ReviewerName: "Ana", Rating: 5},
		domain.Review{ID: "b", SubjectID: "dj-1", SubjectType: domain.SubjectDJ, ReviewerName: "Bob", Rating: 4},
		domain.Review{ID: "c", SubjectID: "dj-1", SubjectType: domain.SubjectDJ, ReviewerName: "Cy", Rating: 4},
	)
	res := do(t, http.MethodGet, ts.URL+"/api/reviews/stats/DJ/dj-1", "")
	st := decode[domain.SubjectStats](t, res)
	if st.AverageRating != 4.33 || st.ReviewCount != 3 || st.SubjectID != "dj-1" {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestList_ETagNotModified(t *testing.T) {
	ts := newTestServer(t, seedReviews...)
	res := do(t, http.MethodGet, ts.URL+"/api/reviews", "")
	etag := res.Header.Get("ETag")
	if !strings.HasPrefix(etag, `W/"`) {
		t.Fatalf("expected weak etag, got %q", etag)
	}
	res = do(t, http.MethodGet, ts.URL+"/api/reviews", "", "If-None-Match", etag)
	if res.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", res.StatusCode)
	}
}

func TestDelete_InvalidatesListCache(t *testing.T) {
	ts := newTestServer(t, seedReviews...)

	if got := decode[[]domain.Review](t, do(t, http.MethodGet, ts.URL+"/api/reviews", "")); len(got) != 3 {
		t.Fatalf("warm: %d reviews", len(got))
	}
	if res := do(t, http.MethodDelete, ts.URL+"/api/reviews/r1", ""); res.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status %d", res.StatusCode)
	}
	if got := decode[[]domain.Review](t, do(t, http.MethodGet, ts.URL+"/api/reviews", "")); len(got) != 2 {
		t.Fatalf("list still cached after delete: %d reviews", len(got))
	}
	if res := do(t, http.MethodDelete, ts.URL+"/api/reviews/r1", ""); res.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete: expected 404, got %d", res.StatusCode)
	}
}

func TestUpdate(t *testing.T) {
	ts := newTestServer(t, seedReviews...)
	res := do(t, http.MethodPut, ts.URL+"/api/reviews/r2",
		`{"subjectId":"dj-1","subjectType":"DJ","reviewerName":"Bob","rating":1,"comment":"changed my mind"}`)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("status %d", res.StatusCode)
	}
	if got := decode[domain.Review](t, res); got.Rating != 1 || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected update: %+v", got)
	}
}
