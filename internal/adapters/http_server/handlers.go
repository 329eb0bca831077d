// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"hotelmap/internal/app"
	"hotelmap/internal/domain"
)

type Handlers struct{ Maps *app.MapService }

type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/api/hotels/map-markers", h.mapMarkers)
}

// parseLimit clamps to [1, MaxLimit]; missing or unparsable values use the default.
func parseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return domain.DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return domain.DefaultLimit
	}
	if n < 1 {
		return 1
	}
	return domain.ClampLimit(n)
}

func writeError(w http.ResponseWriter, status int, msg, code, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Success: false, Error: msg, Code: code, Details: details}); err != nil {
		log.Error().Err(err).Msg("write JSON error response failed")
	}
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrMissingEnv):
		return "missing_env"
	case errors.Is(err, domain.ErrHotelsQueryFailed):
		return "hotels_query_failed"
	}
	return "internal"
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

func (h *Handlers) mapMarkers(w http.ResponseWriter, r *http.Request) {
	dest := strings.TrimSpace(r.URL.Query().Get("destination"))
	if dest == "" {
		dest = "all"
	}
	q := domain.DestinationQuery{Destination: dest, Limit: parseLimit(r.URL.Query().Get("limit"))}

	out, err := h.Maps.MapMarkers(r.Context(), q)
	annotate(r.Context(), func(af *accessFields) {
		af.destination, af.limit, af.markers = dest, q.Limit, out.Count
		af.code = errorCode(err)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrMissingEnv):
			log.Error().Err(err).Msg("map markers: configuration missing")
			writeError(w, http.StatusInternalServerError, "geocoding is not configured", errorCode(err), "")
		case errors.Is(err, domain.ErrHotelsQueryFailed):
			log.Error().Err(err).Str("destination", dest).Msg("map markers: hotel queries failed")
			writeError(w, http.StatusInternalServerError, "failed to load hotels", errorCode(err), err.Error())
		default:
			log.Error().Err(err).Str("destination", dest).Msg("map markers: unexpected error")
			writeError(w, http.StatusInternalServerError, "internal server error", "", "")
		}
		return
	}

	etag, body := calcETagAndBody(envelope{Success: true, Data: out})
	if body == nil {
		writeError(w, http.StatusInternalServerError, "internal server error", "", "")
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write mapMarkers body")
	}
}
