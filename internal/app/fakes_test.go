package app_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"hotelmap/internal/domain"
)

// ---- fakes ----

type filterKey struct {
	col   string
	op    domain.MatchOp
	value string
}

func keyOf(f domain.HotelFilter) filterKey { return filterKey{col: f.Column, op: f.Op, value: f.Value} }

type fakeRepo struct {
	mu       sync.Mutex
	hotels   map[filterKey][]domain.HotelRecord
	errs     map[filterKey]error
	calls    []domain.HotelFilter
	images   map[string]string
	areas    map[string][]domain.AreaDescriptor
	areasErr error
	observed []domain.AreaPair
	obsCalls []domain.HotelFilter

	// delay holds each SelectHotels call open so concurrent stages overlap
	delay    time.Duration
	inFlight atomic.Int64
	peak     atomic.Int64
}

func (f *fakeRepo) SelectHotels(ctx context.Context, flt domain.HotelFilter) ([]domain.HotelRecord, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, flt)
	k := keyOf(flt)
	if err := f.errs[k]; err != nil {
		return nil, err
	}
	return f.hotels[k], nil
}

func (f *fakeRepo) FirstHotelImage(ctx context.Context, sabreID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.images[sabreID]
	return u, ok, nil
}

func (f *fakeRepo) SelectAreas(ctx context.Context, cityCode string) ([]domain.AreaDescriptor, error) {
	if f.areasErr != nil {
		return nil, f.areasErr
	}
	return f.areas[cityCode], nil
}

func (f *fakeRepo) ObservedAreas(ctx context.Context, flt domain.HotelFilter) ([]domain.AreaPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.obsCalls = append(f.obsCalls, flt)
	return f.observed, nil
}

func (f *fakeRepo) selectCalls() []domain.HotelFilter {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.HotelFilter(nil), f.calls...)
}

// fakeGeocoder answers from locs; unknown queries get a fixed point unless listed in fail.
type fakeGeocoder struct {
	locs  map[string]domain.Location
	fail  map[string]bool
	delay time.Duration

	calls       atomic.Int64
	inFlight    atomic.Int64
	maxInFlight atomic.Int64

	mu      sync.Mutex
	queries []string
}

func (g *fakeGeocoder) Geocode(ctx context.Context, query string) (domain.Location, bool) {
	g.calls.Add(1)
	n := g.inFlight.Add(1)
	defer g.inFlight.Add(-1)
	for {
		m := g.maxInFlight.Load()
		if n <= m || g.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	g.mu.Lock()
	g.queries = append(g.queries, query)
	g.mu.Unlock()

	if g.delay > 0 {
		t := time.NewTimer(g.delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return domain.Location{}, false
		case <-t.C:
		}
	}
	if g.fail[query] {
		return domain.Location{}, false
	}
	if l, ok := g.locs[query]; ok {
		return l, true
	}
	return domain.Location{Lat: 1, Lng: 2}, true
}

type fakeCache struct {
	mu    sync.Mutex
	store map[string]domain.Location
	ttls  map[string]int
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.Location); ok {
		*d = v
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]domain.Location{}
		c.ttls = map[string]int{}
	}
	c.store[key] = v.(domain.Location)
	c.ttls[key] = ttlSec
	return nil
}

func (c *fakeCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

func (c *fakeCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

type fakeClassifier map[string]domain.Resolution

func (f fakeClassifier) Classify(token string) (domain.Resolution, bool) {
	r, ok := f[token]
	return r, ok
}

type fakeMedia struct{}

func (fakeMedia) ObjectURL(slug, file string) string {
	return "https://media.test/" + slug + "/" + file
}

/********** tiny helpers **********/

func ptr[T any](v T) *T { return &v }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func hotel(id, addr string) domain.HotelRecord {
	h := domain.HotelRecord{SabreID: id, PropertyNameEn: ptr("Hotel " + id)}
	if addr != "" {
		h.PropertyAddress = ptr(addr)
	}
	return h
}
