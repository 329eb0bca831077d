package app

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"hotelmap/internal/domain"
)

// Reconcile merges curated areas with areas observed on hotel rows.
// Curated entries win on area_ko collisions; observed-only areas get an "ext-" id.
// The result is sorted by area_ko under Korean collation.
func Reconcile(curated []domain.AreaDescriptor, observed []domain.AreaPair) []domain.AreaDescriptor {
	byKo := make(map[string]domain.AreaDescriptor, len(curated)+len(observed))
	for _, a := range curated {
		ko := strings.TrimSpace(a.AreaKo)
		if ko == "" {
			continue
		}
		if _, ok := byKo[ko]; ok {
			continue
		}
		a.AreaKo = ko
		byKo[ko] = a
	}
	for _, p := range observed {
		ko := strings.TrimSpace(p.AreaKo)
		if ko == "" {
			continue
		}
		if _, ok := byKo[ko]; ok {
			continue
		}
		en := ""
		if p.AreaEn != nil {
			en = strings.TrimSpace(*p.AreaEn)
		}
		byKo[ko] = domain.AreaDescriptor{ID: "ext-" + ko, AreaKo: ko, AreaEn: en}
	}

	out := make([]domain.AreaDescriptor, 0, len(byKo))
	for _, a := range byKo {
		out = append(out, a)
	}
	col := collate.New(language.Korean)
	sort.SliceStable(out, func(i, j int) bool {
		return col.CompareString(out[i].AreaKo, out[j].AreaKo) < 0
	})
	return out
}
