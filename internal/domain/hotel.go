package domain

// HotelRecord is the read-only projection of one select_hotels row.
type HotelRecord struct {
	SabreID         string
	Slug            *string
	PropertyNameKo  *string
	PropertyNameEn  *string
	PropertyAddress *string
	CityCode        *string
	CityKo          *string
	CityEn          *string
	CitySlug        *string
	AreaKo          *string
	AreaEn          *string
	CountryCode     *string
	CountryKo       *string
	CountryEn       *string
	Publish         *bool // nil and true are both visible
	Badge           *string
	Image           *string
	Benefits        []string
}

// Visible reports whether the record may be shown on the map.
func (h HotelRecord) Visible() bool {
	return h.Publish == nil || *h.Publish
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Marker is one hotel pin. It only exists for hotels whose address geocoded.
type Marker struct {
	SabreID         string   `json:"sabre_id"`
	Slug            *string  `json:"slug,omitempty"`
	PropertyNameKo  *string  `json:"property_name_ko,omitempty"`
	PropertyNameEn  *string  `json:"property_name_en,omitempty"`
	PropertyAddress string   `json:"property_address"`
	Location        Location `json:"location"`
	Benefits        []string `json:"benefits,omitempty"`
	Badges          []string `json:"badges,omitempty"`
	Image           *string  `json:"image,omitempty"`
	CityKo          *string  `json:"city_ko,omitempty"`
	CityEn          *string  `json:"city_en,omitempty"`
	AreaKo          *string  `json:"area_ko,omitempty"`
	AreaEn          *string  `json:"area_en,omitempty"`
	CountryKo       *string  `json:"country_ko,omitempty"`
	CountryEn       *string  `json:"country_en,omitempty"`
}

// AreaDescriptor feeds the sub-region filter of a destination.
// ID is opaque: a curated region id, or "ext-<area_ko>" for areas only seen on hotels.
type AreaDescriptor struct {
	ID     string `json:"id"`
	AreaKo string `json:"area_ko"`
	AreaEn string `json:"area_en"`
}

// AreaPair is an (area_ko, area_en) combination observed on hotel rows.
type AreaPair struct {
	AreaKo string
	AreaEn *string
}
