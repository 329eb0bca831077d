package domain

import "context"

type HotelRepository interface {
	// Read paths
	SelectHotels(ctx context.Context, f HotelFilter) ([]HotelRecord, error)
	FirstHotelImage(ctx context.Context, sabreID string) (string, bool, error)
	SelectAreas(ctx context.Context, cityCode string) ([]AreaDescriptor, error)
	ObservedAreas(ctx context.Context, f HotelFilter) ([]AreaPair, error)
}

// Geocoder never fails loudly: any failure is reported as ok=false.
type Geocoder interface {
	Geocode(ctx context.Context, query string) (Location, bool)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// RegionClassifier reads a token against a fixed gazetteer.
type RegionClassifier interface {
	Classify(token string) (Resolution, bool)
}

type MediaURLBuilder interface {
	ObjectURL(slug, file string) string
}

// Queries

type MatchOp int

const (
	MatchAll MatchOp = iota
	MatchEq
	MatchContains
)

// HotelFilter is one predicate against select_hotels. Unpublished rows are always excluded.
type HotelFilter struct {
	Column string
	Op     MatchOp
	Value  string
	Limit  int
}

type DestinationQuery struct {
	Destination string
	Limit       int
}

const (
	DefaultLimit = 200
	MaxLimit     = 500
)

// ClampLimit maps any requested limit into [1, MaxLimit]; zero means the default.
func ClampLimit(n int) int {
	switch {
	case n == 0:
		return DefaultLimit
	case n < 1:
		return 1
	case n > MaxLimit:
		return MaxLimit
	}
	return n
}

// Read models

type CacheStats struct {
	Hits    int     `json:"hits"`
	Misses  int     `json:"misses"`
	HitRate float64 `json:"hitRate"`
}

type MapMarkers struct {
	Destination string           `json:"destination"`
	Resolved    Resolution       `json:"resolved"`
	Center      *Location        `json:"center"`
	Count       int              `json:"count"`
	Requested   int              `json:"requested"`
	Markers     []Marker         `json:"markers"`
	Areas       []AreaDescriptor `json:"areas"`
	Cache       CacheStats       `json:"cache"`
}
