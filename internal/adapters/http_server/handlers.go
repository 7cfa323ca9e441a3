// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"festival_reviews/internal/app"
	"festival_reviews/internal/domain"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
}

type problem struct {
	Type   string            `json:"type"`
	Title  string            `json:"title"`
	Status int               `json:"status"`
	Detail string            `json:"detail,omitempty"`
	Errors map[string]string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/api/reviews", func(r chi.Router) {
		r.Get("/health", h.health)
		r.Get("/", h.listAll)
		r.Post("/", h.create)
		r.Get("/subject/{type}/{id}", h.listBySubject)
		r.Get("/type/{type}", h.listByType)
		r.Get("/reviewer/{name}", h.listByReviewer)
		r.Get("/rating/min/{minRating}", h.listByMinRating)
		r.Get("/rating/{rating}", h.listByRating)
		r.Get("/stats/{type}/{id}", h.stats)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemDoc(w, problem{Type: "about:blank", Title: title, Status: status, Detail: detail})
}

func writeProblemDoc(w http.ResponseWriter, p problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps service errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.As(err, &ve):
		writeProblemDoc(w, problem{
			Type: "about:blank", Title: "Validation Failed", Status: http.StatusBadRequest,
			Detail: "request body has invalid fields", Errors: ve.Fields,
		})
	case errors.Is(err, domain.ErrSubjectNotFound):
		writeProblem(w, http.StatusBadRequest, "Unknown Subject", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "review not found")
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCached answers a GET with a weak ETag and honours If-None-Match.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

func decodeInput(w http.ResponseWriter, r *http.Request) (domain.ReviewInput, bool) {
	var in domain.ReviewInput
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return domain.ReviewInput{}, false
	}
	return in, true
}

func subjectTypeParam(w http.ResponseWriter, r *http.Request) (domain.SubjectType, bool) {
	t, ok := domain.ParseSubjectType(chi.URLParam(r, "type"))
	if !ok {
		writeProblem(w, http.StatusBadRequest, "Invalid Subject Type", "type must be one of DJ, PERFORMANCE, EVENT")
		return "", false
	}
	return t, true
}

func ratingParam(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	n, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || n < domain.MinRating || n > domain.MaxRating {
		writeProblem(w, http.StatusBadRequest, "Invalid Rating", name+" must be an integer between 1 and 5")
		return 0, false
	}
	return n, true
}

func (h *Handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "UP", "service": "Review Service"})
}

func (h *Handlers) list(w http.ResponseWriter, r *http.Request, q domain.ReviewQuery) {
	out, err := h.Q.ListReviews(r.Context(), q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, out)
}

func (h *Handlers) listAll(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.ReviewQuery{})
}

func (h *Handlers) listBySubject(w http.ResponseWriter, r *http.Request) {
	t, ok := subjectTypeParam(w, r)
	if !ok {
		return
	}
	h.list(w, r, domain.ReviewQuery{SubjectType: t, SubjectID: chi.URLParam(r, "id")})
}

func (h *Handlers) listByType(w http.ResponseWriter, r *http.Request) {
	t, ok := subjectTypeParam(w, r)
	if !ok {
		return
	}
	h.list(w, r, domain.ReviewQuery{SubjectType: t})
}

func (h *Handlers) listByReviewer(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, domain.ReviewQuery{ReviewerName: chi.URLParam(r, "name")})
}

func (h *Handlers) listByRating(w http.ResponseWriter, r *http.Request) {
	n, ok := ratingParam(w, r, "rating")
	if !ok {
		return
	}
	h.list(w, r, domain.ReviewQuery{Rating: n})
}

func (h *Handlers) listByMinRating(w http.ResponseWriter, r *http.Request) {
	n, ok := ratingParam(w, r, "minRating")
	if !ok {
		return
	}
	h.list(w, r, domain.ReviewQuery{MinRating: n})
}

func (h *Handlers) stats(w http.ResponseWriter, r *http.Request) {
	t, ok := subjectTypeParam(w, r)
	if !ok {
		return
	}
	st, err := h.Q.SubjectStats(r.Context(), t, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, st)
}

func (h *Handlers) get(w http.ResponseWriter, r *http.Request) {
	rv, err := h.Q.GetReview(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeCached(w, r, rv)
}

func (h *Handlers) create(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	rv, err := h.C.CreateReview(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Location", "/api/reviews/"+rv.ID)
	writeJSON(w, http.StatusCreated, rv)
}

func (h *Handlers) update(w http.ResponseWriter, r *http.Request) {
	in, ok := decodeInput(w, r)
	if !ok {
		return
	}
	rv, err := h.C.UpdateReview(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rv)
}

func (h *Handlers) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.C.DeleteReview(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
