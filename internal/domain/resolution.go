package domain

type ResolutionKind string

const (
	KindCity    ResolutionKind = "city"
	KindCountry ResolutionKind = "country"
	KindUnknown ResolutionKind = "unknown"
)

// AllLabel is the label used when the caller asked for every destination.
const AllLabel = "전체"

// Resolution is the structured reading of a destination token.
// It is produced once per request and never mutated afterwards.
type Resolution struct {
	Kind         ResolutionKind `json:"kind"`
	Label        string         `json:"label"`
	QueryText    string         `json:"queryText"`
	CityCode     string         `json:"city_code,omitempty"`
	CountryCode  string         `json:"country_code,omitempty"`
	CountryLabel string         `json:"country_label,omitempty"`

	// All marks the unfiltered "every published hotel" request.
	All bool `json:"-"`
	// Match pins the hotel filter for aliases whose rows are keyed differently.
	Match *FieldMatch `json:"-"`
	// Center is the gazetteer map center, when known.
	Center *Location `json:"-"`
}

// CityScoped reports whether area reconciliation applies.
func (r Resolution) CityScoped() bool {
	return r.Kind == KindCity && (r.CityCode != "" || r.Match != nil)
}

type FieldMatch struct {
	Column string
	Value  string
}
