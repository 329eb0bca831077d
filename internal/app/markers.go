package app

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"hotelmap/internal/domain"
)

type MarkerAssembler struct {
	repo     domain.HotelRepository
	geo      domain.Geocoder
	cache    domain.Cache
	cacheTTL time.Duration
	media    domain.MediaURLBuilder
	workers  int
}

func NewMarkerAssembler(r domain.HotelRepository, g domain.Geocoder, c domain.Cache, ttl time.Duration, m domain.MediaURLBuilder, workers int) *MarkerAssembler {
	if workers <= 0 {
		workers = 5
	}
	return &MarkerAssembler{repo: r, geo: g, cache: c, cacheTTL: ttl, media: m, workers: workers}
}

// geoCounters tracks coordinate cache use for a single request.
type geoCounters struct {
	hits, misses atomic.Int64
}

func (c *geoCounters) stats() domain.CacheStats {
	h, m := int(c.hits.Load()), int(c.misses.Load())
	st := domain.CacheStats{Hits: h, Misses: m}
	if h+m > 0 {
		st.HitRate = float64(h) / float64(h+m)
	}
	return st
}

// Assemble turns hotels into markers, hotel by hotel through the bounded runner.
// Hotels without an address or without coordinates are dropped, never reported.
func (a *MarkerAssembler) Assemble(ctx context.Context, hotels []domain.HotelRecord, res domain.Resolution) ([]domain.Marker, domain.CacheStats) {
	var counters geoCounters
	results := WithBoundedConcurrency(ctx, hotels, a.workers, func(ctx context.Context, h domain.HotelRecord) *domain.Marker {
		return a.assembleOne(ctx, h, res, &counters)
	})

	markers := make([]domain.Marker, 0, len(results))
	for _, m := range results {
		if m != nil {
			markers = append(markers, *m)
		}
	}
	return markers, counters.stats()
}

func (a *MarkerAssembler) assembleOne(ctx context.Context, h domain.HotelRecord, res domain.Resolution, c *geoCounters) *domain.Marker {
	addr := strings.TrimSpace(deref(h.PropertyAddress))
	if addr == "" {
		return nil
	}

	loc, ok := a.locate(ctx, GeocodeQuery(h, res), c)
	if !ok {
		log.Debug().Str("sabre_id", h.SabreID).Msg("no coordinates, marker dropped")
		return nil
	}

	m := &domain.Marker{
		SabreID:         strings.TrimSpace(h.SabreID),
		Slug:            h.Slug,
		PropertyNameKo:  h.PropertyNameKo,
		PropertyNameEn:  h.PropertyNameEn,
		PropertyAddress: addr,
		Location:        loc,
		Benefits:        h.Benefits,
		Image:           a.imageFor(ctx, h),
		CityKo:          h.CityKo,
		CityEn:          h.CityEn,
		AreaKo:          h.AreaKo,
		AreaEn:          h.AreaEn,
		CountryKo:       h.CountryKo,
		CountryEn:       h.CountryEn,
	}
	if b := strings.TrimSpace(deref(h.Badge)); b != "" {
		m.Badges = []string{b}
	}
	return m
}

// GeocodeQuery joins the address with the hotel's country, falling back to the
// resolution's country label. The country is not appended twice.
func GeocodeQuery(h domain.HotelRecord, res domain.Resolution) string {
	addr := strings.TrimSpace(deref(h.PropertyAddress))
	country := firstNonBlank(deref(h.CountryEn), deref(h.CountryKo), res.CountryLabel)
	if country == "" || strings.Contains(strings.ToLower(addr), strings.ToLower(country)) {
		return addr
	}
	return addr + ", " + country
}

// locate is cache-aside over the geocoder. Only successful lookups are cached.
func (a *MarkerAssembler) locate(ctx context.Context, query string, c *geoCounters) (domain.Location, bool) {
	key := geoCacheKey(query)
	if a.cache != nil {
		var cached domain.Location
		ok, err := a.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("coordinate cache read failed")
		}
		if ok && err == nil {
			c.hits.Add(1)
			return cached, true
		}
	}

	c.misses.Add(1)
	loc, ok := a.geo.Geocode(ctx, query)
	if !ok {
		return domain.Location{}, false
	}
	if a.cache != nil {
		if err := a.cache.Set(ctx, key, loc, int(a.cacheTTL.Seconds())); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("coordinate cache write failed")
		}
	}
	return loc, true
}

// imageFor prefers the first media row, then the record's own image field.
func (a *MarkerAssembler) imageFor(ctx context.Context, h domain.HotelRecord) *string {
	if a.repo != nil {
		u, found, err := a.repo.FirstHotelImage(ctx, h.SabreID)
		if err != nil {
			log.Debug().Err(err).Str("sabre_id", h.SabreID).Msg("media lookup failed")
		}
		if found && strings.TrimSpace(u) != "" {
			u = strings.TrimSpace(u)
			return &u
		}
	}

	img := strings.TrimSpace(deref(h.Image))
	if img == "" {
		return nil
	}
	if isAbsoluteURL(img) {
		return &img
	}
	if slug := strings.TrimSpace(deref(h.Slug)); slug != "" && a.media != nil {
		u := a.media.ObjectURL(slug, img)
		return &u
	}
	return &img
}

func geoCacheKey(query string) string {
	return "geo:" + strings.Join(strings.Fields(strings.ToLower(query)), " ")
}

func isAbsoluteURL(s string) bool {
	l := strings.ToLower(s)
	return strings.HasPrefix(l, "https://") || strings.HasPrefix(l, "http://")
}

/********** tiny helpers **********/

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func firstNonBlank(vals ...string) string {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
