package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"hotelmap/internal/domain"
)

// Columns probed by the fallback cascade when a token classifies as nothing.
var (
	fallbackExactColumns    = []string{"city_ko", "city_slug", "area_ko", "area_en", "country_en"}
	fallbackContainsColumns = []string{"city_ko", "city_en", "city_slug", "area_ko", "area_en", "country_en"}
)

// HotelQueryResult is the merged output of every stage that ran for one resolution.
type HotelQueryResult struct {
	Hotels []domain.HotelRecord
	// Errors are real query failures; missing-column failures are not included.
	Errors         []error
	MissingColumns []string
	Stages         int
}

type HotelQueryEngine struct {
	repo    domain.HotelRepository
	workers int
}

func NewHotelQueryEngine(r domain.HotelRepository, workers int) *HotelQueryEngine {
	if workers <= 0 {
		workers = 4
	}
	return &HotelQueryEngine{repo: r, workers: workers}
}

// Plan lists the filters to run for res, in merge order.
func Plan(res domain.Resolution, limit int) []domain.HotelFilter {
	switch {
	case res.All:
		return []domain.HotelFilter{{Op: domain.MatchAll, Limit: limit}}
	case res.Kind == domain.KindCity:
		return []domain.HotelFilter{CityFilter(res, limit)}
	case res.Kind == domain.KindCountry && res.CountryCode != "":
		return []domain.HotelFilter{{Column: "country_code", Op: domain.MatchEq, Value: res.CountryCode, Limit: limit}}
	}
	return fallbackPlan(res.Label, limit)
}

// CityFilter picks the most stable key available for a city resolution:
// an explicit alias match, then the city code, then the localized name.
func CityFilter(res domain.Resolution, limit int) domain.HotelFilter {
	switch {
	case res.Match != nil:
		return domain.HotelFilter{Column: res.Match.Column, Op: domain.MatchEq, Value: res.Match.Value, Limit: limit}
	case res.CityCode != "":
		return domain.HotelFilter{Column: "city_code", Op: domain.MatchEq, Value: res.CityCode, Limit: limit}
	}
	return domain.HotelFilter{Column: "city_ko", Op: domain.MatchEq, Value: res.Label, Limit: limit}
}

func fallbackPlan(label string, limit int) []domain.HotelFilter {
	label = strings.TrimSpace(label)
	if label == "" {
		return []domain.HotelFilter{{Op: domain.MatchAll, Limit: limit}}
	}
	var out []domain.HotelFilter
	for _, col := range fallbackExactColumns {
		out = append(out, domain.HotelFilter{Column: col, Op: domain.MatchEq, Value: label, Limit: limit})
	}
	for _, v := range caseVariants(label) {
		out = append(out, domain.HotelFilter{Column: "city_en", Op: domain.MatchEq, Value: v, Limit: limit})
	}
	for _, col := range fallbackContainsColumns {
		out = append(out, domain.HotelFilter{Column: col, Op: domain.MatchContains, Value: label, Limit: limit})
	}
	return out
}

// caseVariants returns the original, lower-cased and capitalized spellings, deduplicated in that order.
func caseVariants(s string) []string {
	lower := cases.Lower(language.Und).String(s)
	capitalized := lower
	if _, size := utf8.DecodeRuneInString(lower); size > 0 {
		capitalized = cases.Upper(language.Und).String(lower[:size]) + lower[size:]
	}
	seen := make(map[string]struct{}, 3)
	out := make([]string, 0, 3)
	for _, v := range []string{s, lower, capitalized} {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type stageOutcome struct {
	filter domain.HotelFilter
	hotels []domain.HotelRecord
	err    error
	ran    bool
}

// Fetch runs the plan for res and merges the stage results. Stages run through the
// bounded runner; a failing stage never cancels its siblings. The call only fails when
// nothing was found and at least one stage failed for a reason other than a missing column.
func (e *HotelQueryEngine) Fetch(ctx context.Context, res domain.Resolution, limit int) (HotelQueryResult, error) {
	limit = domain.ClampLimit(limit)
	plan := Plan(res, limit)

	outcomes := WithBoundedConcurrency(ctx, plan, e.workers, func(ctx context.Context, f domain.HotelFilter) stageOutcome {
		hs, err := e.repo.SelectHotels(ctx, f)
		return stageOutcome{filter: f, hotels: hs, err: err, ran: true}
	})

	out := HotelQueryResult{Stages: len(plan)}
	var sets [][]domain.HotelRecord
	for i, o := range outcomes {
		if !o.ran {
			// never claimed: the request context ended first
			out.Errors = append(out.Errors, fmt.Errorf("stage %s: %w", stageName(plan[i]), context.Cause(ctx)))
			continue
		}
		if o.err != nil {
			if errors.Is(o.err, domain.ErrColumnMissing) {
				log.Warn().Err(o.err).
					Str("stage", stageName(o.filter)).
					Msg("hotel query skipped: column missing")
				out.MissingColumns = append(out.MissingColumns, o.filter.Column)
				continue
			}
			log.Error().Err(o.err).
				Str("stage", stageName(o.filter)).
				Str("value", o.filter.Value).
				Msg("hotel query failed")
			out.Errors = append(out.Errors, fmt.Errorf("stage %s: %w", stageName(o.filter), o.err))
			continue
		}
		sets = append(sets, o.hotels)
	}

	out.Hotels = MergeHotels(limit, sets...)
	if len(out.Hotels) == 0 && len(out.Errors) > 0 {
		return out, fmt.Errorf("%w: %w", domain.ErrHotelsQueryFailed, errors.Join(out.Errors...))
	}
	return out, nil
}

// MergeHotels concatenates the sets, drops unpublished rows, keeps the first record
// per sabre_id and truncates to limit.
func MergeHotels(limit int, sets ...[]domain.HotelRecord) []domain.HotelRecord {
	seen := make(map[string]struct{})
	out := make([]domain.HotelRecord, 0)
	for _, set := range sets {
		for _, h := range set {
			if !h.Visible() {
				continue
			}
			id := strings.TrimSpace(h.SabreID)
			if id == "" {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, h)
			if limit > 0 && len(out) == limit {
				return out
			}
		}
	}
	return out
}

func stageName(f domain.HotelFilter) string {
	switch f.Op {
	case domain.MatchEq:
		return f.Column + ":eq"
	case domain.MatchContains:
		return f.Column + ":contains"
	}
	return "all"
}
