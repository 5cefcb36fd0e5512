// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"dealership_api/internal/app"
	"dealership_api/internal/domain"
)

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
	// Ping reports store health for /healthz; nil means always healthy.
	Ping func(ctx context.Context) error
}

type problem struct {
	Type   string   `json:"type"`
	Title  string   `json:"title"`
	Status int      `json:"status"`
	Detail string   `json:"detail,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)

	s.mux.Get("/reviews", h.list(domain.Reviews))
	s.mux.Post("/reviews", h.create(domain.Reviews))

	s.mux.Get("/dealerships", h.list(domain.Dealerships))
	s.mux.Post("/dealerships", h.create(domain.Dealerships))
	s.mux.Get("/dealerships/{id}", h.getDealership)

	s.mux.Get("/cars/{dealer_id}", h.listCars)
	s.mux.Post("/cars", h.create(domain.Cars))
}

func writeProblem(w http.ResponseWriter, status int, title, detail string, errs []string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail, Errors: errs}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps the domain error kinds to status codes. Only validation
// problems are echoed back; other error text stays in the logs.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch domain.Kind(err) {
	case domain.ErrNotFound:
		writeProblem(w, http.StatusNotFound, "Not Found", "not found", nil)
	case domain.ErrValidation:
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			writeProblem(w, http.StatusBadRequest, "Validation Failed", "request is invalid", verr.Problems)
			return
		}
		writeProblem(w, http.StatusBadRequest, "Validation Failed", "request is invalid", nil)
	case domain.ErrStorageUnavailable:
		log.Error().Err(err).Str("route", routeOf(r)).Msg("storage unavailable")
		writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "storage unavailable", nil)
	default:
		log.Error().Err(err).Str("route", routeOf(r)).Msg("internal error")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "internal error", nil)
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body, nil
}

// writeCacheable sends v as JSON with an ETag, or 304 when the client
// already holds that version.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body, err := calcETagAndBody(v)
	if err != nil {
		writeError(w, r, errors.Join(err, domain.ErrInternal))
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag) // include ETag on 304
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeBody(w, body)
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, errors.Join(err, domain.ErrInternal))
		return
	}
	writeBody(w, body)
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write response body")
	}
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	if h.Ping != nil {
		if err := h.Ping(r.Context()); err != nil {
			log.Warn().Err(err).Msg("health check failed")
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handlers) list(c domain.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		docs, err := h.Q.List(r.Context(), c)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeCacheable(w, r, docs)
	}
}

func (h *Handlers) listCars(w http.ResponseWriter, r *http.Request) {
	// chi routes on RawPath when it is set, leaving the segment escaped.
	// Otherwise the segment is already decoded and must be used as is.
	dealerID := chi.URLParam(r, "dealer_id")
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(dealerID); err == nil {
			dealerID = unescaped
		}
	}
	cars, err := h.Q.ListCarsByDealer(r.Context(), dealerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, cars)
}

func (h *Handlers) getDealership(w http.ResponseWriter, r *http.Request) {
	d, err := h.Q.GetDealership(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeCacheable(w, r, d)
}

func (h *Handlers) create(c domain.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, domain.MaxBodyBytes))
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, r, domain.Invalid(fmt.Sprintf("body exceeds %d bytes", domain.MaxBodyBytes)))
				return
			}
			writeError(w, r, domain.Invalid("could not read body"))
			return
		}
		saved, err := h.C.Create(r.Context(), c, body)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, r, saved)
	}
}
