package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"hotelmap/internal/adapters/observability"
)

// accessFields is filled in by handlers and emitted on the access log line.
// It is written on the request goroutine; chimw.Timeout does not spawn another.
type accessFields struct {
	destination string
	limit       int
	markers     int
	code        string
	mapped      bool
}

type accessKey struct{}

func withAccessFields(ctx context.Context) (context.Context, *accessFields) {
	af := &accessFields{}
	return context.WithValue(ctx, accessKey{}, af), af
}

// annotate records map-markers details for the access log; a no-op outside Logger.
func annotate(ctx context.Context, fn func(*accessFields)) {
	if af, ok := ctx.Value(accessKey{}).(*accessFields); ok {
		fn(af)
		af.mapped = true
	}
}

func routeOf(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func statusOf(ww chimw.WrapResponseWriter) int {
	if s := ww.Status(); s != 0 {
		return s
	}
	return http.StatusOK
}

// Metrics counts every request by route pattern, method and final status.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		observability.ObserveHTTP(routeOf(r), r.Method, statusOf(ww), time.Since(start))
	})
}

// Logger writes one access line per request. Map-markers requests also carry the
// destination, effective limit and marker count (or error code) set by the handler.
func Logger(l zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, af := withAccessFields(r.Context())
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			r = r.WithContext(ctx)
			next.ServeHTTP(ww, r)

			status := statusOf(ww)
			ev := l.Info()
			if status >= 500 {
				ev = l.Error()
			}
			ev = ev.
				Str("request_id", chimw.GetReqID(ctx)).
				Str("route", routeOf(r)).
				Str("method", r.Method).
				Int("status", status).
				Int("bytes", ww.BytesWritten()).
				Dur("duration", time.Since(start)).
				Str("remote", clientHost(r))
			if af.mapped {
				ev = ev.
					Str("destination", af.destination).
					Int("limit", af.limit)
				if af.code != "" {
					ev = ev.Str("code", af.code)
				} else {
					ev = ev.Int("markers", af.markers)
				}
			}
			ev.Msg("http_request")
		})
	}
}

// clientHost strips the port; chimw.RealIP has already applied forwarding headers.
func clientHost(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}
