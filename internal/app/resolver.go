package app

import (
	"strings"

	"hotelmap/internal/domain"
)

/********** destination aliases (consulted before the gazetteer) **********/

// DefaultAliases holds tokens whose hotel rows are keyed differently from what the
// gazetteer would produce. Bali hotels carry city_ko=발리 but no stable city code.
var DefaultAliases = map[string]domain.Resolution{
	"bali": {
		Kind:         domain.KindCity,
		Label:        "발리",
		CityCode:     "BALI",
		CountryCode:  "ID",
		CountryLabel: "인도네시아",
		Match:        &domain.FieldMatch{Column: "city_ko", Value: "발리"},
		Center:       &domain.Location{Lat: -8.4095, Lng: 115.1889},
	},
}

type Resolver struct {
	classifier domain.RegionClassifier
	aliases    map[string]domain.Resolution
}

func NewResolver(c domain.RegionClassifier, aliases map[string]domain.Resolution) *Resolver {
	if aliases == nil {
		aliases = DefaultAliases
	}
	norm := make(map[string]domain.Resolution, len(aliases))
	for k, v := range aliases {
		norm[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &Resolver{classifier: c, aliases: norm}
}

// Resolve never fails: a token nothing recognises comes back as an unknown
// resolution labelled with the token itself, and the query engine falls back
// to its matching cascade.
func (r *Resolver) Resolve(token string) domain.Resolution {
	t := strings.TrimSpace(token)
	if t == "" || t == "all" {
		return domain.Resolution{Kind: domain.KindUnknown, Label: domain.AllLabel, QueryText: t, All: true}
	}

	if res, ok := r.aliases[strings.ToLower(t)]; ok {
		res.QueryText = t
		return res
	}

	if r.classifier != nil {
		if res, ok := r.classifier.Classify(t); ok && res.Kind != domain.KindUnknown {
			res.QueryText = t
			return res
		}
	}

	return domain.Resolution{Kind: domain.KindUnknown, Label: t, QueryText: t}
}
