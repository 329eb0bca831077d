// internal/adapters/geocode/client.go
package geocode

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"hotelmap/internal/adapters/observability"
	"hotelmap/internal/domain"
)

const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

var ErrMissingKey = errors.New("geocode: API key is required")

type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

// New builds a provider client. timeout bounds every single HTTP call.
func New(base, key string, rps int, timeout time.Duration) (*Client, error) {
	if key == "" {
		return nil, ErrMissingKey
	}
	if base == "" {
		base = DefaultBaseURL
	}
	if rps <= 0 {
		rps = 10
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: timeout},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// ---- Public API ----

// Geocode resolves a free-text address. Every failure mode (network, status,
// malformed body, empty result set) comes back as ok=false; it never errors.
func (c *Client) Geocode(ctx context.Context, query string) (domain.Location, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.Location{}, false
	}

	body, err := c.get(ctx, c.endpoint(query))
	if err != nil {
		observability.ObserveGeocode("error")
		log.Debug().Err(err).Str("query", query).Msg("geocode request failed")
		return domain.Location{}, false
	}

	loc, ok := parseLocation(body)
	if !ok {
		observability.ObserveGeocode("empty")
		log.Debug().Str("query", query).Msg("geocode returned no usable result")
		return domain.Location{}, false
	}
	observability.ObserveGeocode("ok")
	return loc, true
}

// ---- Internals ----

type response struct {
	Status  string `json:"status"`
	Results []struct {
		Geometry struct {
			Location *struct {
				Lat *float64 `json:"lat"`
				Lng *float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// parseLocation reads results[0].geometry.location; anything else is "no result".
func parseLocation(body []byte) (domain.Location, bool) {
	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return domain.Location{}, false
	}
	if len(r.Results) == 0 {
		return domain.Location{}, false
	}
	l := r.Results[0].Geometry.Location
	if l == nil || l.Lat == nil || l.Lng == nil {
		return domain.Location{}, false
	}
	if *l.Lat < -90 || *l.Lat > 90 || *l.Lng < -180 || *l.Lng > 180 {
		return domain.Location{}, false
	}
	return domain.Location{Lat: *l.Lat, Lng: *l.Lng}, true
}

func (c *Client) endpoint(query string) string {
	v := url.Values{}
	v.Set("address", query)
	v.Set("key", c.key)
	sep := "?"
	if strings.Contains(c.base, "?") {
		sep = "&"
	}
	return c.base + sep + v.Encode()
}

// get performs a GET with client-side rate limiting and a single retry on
// network errors, 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, err
	}

	const attempts = 2
	var lastErr error
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "hotelmap/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("geocode", "geocode", 0, time.Since(start))
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			lastErr = err
			if i < attempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return nil, lastErr
		}
		observability.ObserveExternal("geocode", "geocode", resp.StatusCode, time.Since(start))

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
			resp.Body.Close()
			return b, err

		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("remote %d", resp.StatusCode)
			if i < attempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return nil, lastErr
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
// Waits are capped so one slow provider answer cannot stall the request.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	var d time.Duration
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	} else if t, err := http.ParseTime(h); err == nil {
		d = time.Until(t)
	}
	if d < 0 {
		return 0
	}
	if d > 2*time.Second {
		d = 2 * time.Second
	}
	return d
}

// backoff returns 200ms doubled per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	return base + time.Duration(0.5*f*float64(base))
}
