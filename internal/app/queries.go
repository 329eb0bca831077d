package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotelmap/internal/domain"
)

type Options struct {
	GeocodeWorkers int
	QueryWorkers   int
	CacheTTL       time.Duration
	// Deadline bounds the geocoding stage; markers finished by then are returned.
	Deadline time.Duration
}

type MapService struct {
	repo      domain.HotelRepository
	geo       domain.Geocoder
	resolver  *Resolver
	hotels    *HotelQueryEngine
	assembler *MarkerAssembler
	deadline  time.Duration
}

// NewMapService wires the marker pipeline. geo may be nil when the provider key is
// not configured; MapMarkers then fails with domain.ErrMissingEnv.
func NewMapService(r domain.HotelRepository, geo domain.Geocoder, c domain.Cache, res *Resolver, media domain.MediaURLBuilder, opt Options) *MapService {
	return &MapService{
		repo:      r,
		geo:       geo,
		resolver:  res,
		hotels:    NewHotelQueryEngine(r, opt.QueryWorkers),
		assembler: NewMarkerAssembler(r, geo, c, opt.CacheTTL, media, opt.GeocodeWorkers),
		deadline:  opt.Deadline,
	}
}

func (s *MapService) MapMarkers(ctx context.Context, q domain.DestinationQuery) (domain.MapMarkers, error) {
	if s.geo == nil {
		return domain.MapMarkers{}, fmt.Errorf("%w: GEOCODE_API_KEY", domain.ErrMissingEnv)
	}
	limit := domain.ClampLimit(q.Limit)
	dest := q.Destination
	if dest == "" {
		dest = "all"
	}

	res := s.resolver.Resolve(dest)
	found, err := s.hotels.Fetch(ctx, res, limit)
	if err != nil {
		return domain.MapMarkers{}, err
	}

	var (
		markers []domain.Marker
		stats   domain.CacheStats
		areas   = []domain.AreaDescriptor{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		geoCtx := gctx
		if s.deadline > 0 {
			var cancel context.CancelFunc
			geoCtx, cancel = context.WithTimeout(gctx, s.deadline)
			defer cancel()
		}
		markers, stats = s.assembler.Assemble(geoCtx, found.Hotels, res)
		if geoCtx.Err() != nil {
			log.Warn().
				Str("destination", dest).
				Int("hotels", len(found.Hotels)).
				Int("markers", len(markers)).
				Msg("geocoding deadline reached, returning partial markers")
		}
		return nil
	})
	if res.CityScoped() {
		g.Go(func() error {
			a, err := s.Areas(gctx, res)
			if err != nil {
				log.Error().Err(err).Str("destination", dest).Msg("area reconciliation failed")
				return nil
			}
			areas = a
			return nil
		})
	}
	_ = g.Wait()

	return domain.MapMarkers{
		Destination: dest,
		Resolved:    res,
		Center:      center(markers, res),
		Count:       len(markers),
		Requested:   limit,
		Markers:     markers,
		Areas:       areas,
		Cache:       stats,
	}, nil
}

// Areas reconciles curated regions of a city-scoped resolution with areas seen on its hotels.
func (s *MapService) Areas(ctx context.Context, res domain.Resolution) ([]domain.AreaDescriptor, error) {
	if !res.CityScoped() {
		return []domain.AreaDescriptor{}, nil
	}
	var curated []domain.AreaDescriptor
	if res.CityCode != "" {
		c, err := s.repo.SelectAreas(ctx, res.CityCode)
		if err != nil {
			return nil, fmt.Errorf("select areas for %s: %w", res.CityCode, err)
		}
		curated = c
	}
	observed, err := s.repo.ObservedAreas(ctx, CityFilter(res, 0))
	if err != nil {
		// curated areas alone are still useful
		log.Warn().Err(err).Str("city_code", res.CityCode).Msg("observed areas query failed")
		observed = nil
	}
	return Reconcile(curated, observed), nil
}

// WarmCoordinates geocodes one hotel into the coordinate cache.
// It reports whether the hotel now has cached coordinates.
func (s *MapService) WarmCoordinates(ctx context.Context, h domain.HotelRecord) (bool, error) {
	if s.geo == nil {
		return false, fmt.Errorf("%w: GEOCODE_API_KEY", domain.ErrMissingEnv)
	}
	if strings.TrimSpace(deref(h.PropertyAddress)) == "" {
		return false, nil
	}
	var c geoCounters
	_, ok := s.assembler.locate(ctx, GeocodeQuery(h, domain.Resolution{}), &c)
	return ok, nil
}

// PublishedHotels lists every visible hotel, for batch jobs.
func (s *MapService) PublishedHotels(ctx context.Context, limit int) ([]domain.HotelRecord, error) {
	hs, err := s.repo.SelectHotels(ctx, domain.HotelFilter{Op: domain.MatchAll, Limit: limit})
	if err != nil {
		return nil, err
	}
	return MergeHotels(0, hs), nil
}

func center(markers []domain.Marker, res domain.Resolution) *domain.Location {
	if len(markers) == 0 {
		return res.Center
	}
	var lat, lng float64
	for _, m := range markers {
		lat += m.Location.Lat
		lng += m.Location.Lng
	}
	n := float64(len(markers))
	return &domain.Location{Lat: lat / n, Lng: lng / n}
}
