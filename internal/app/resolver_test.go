package app_test

import (
	"testing"

	"hotelmap/internal/app"
	"hotelmap/internal/domain"
)

func TestResolve_AllAndEmpty(t *testing.T) {
	r := app.NewResolver(nil, nil)
	for _, tok := range []string{"", "  ", "all", " all "} {
		res := r.Resolve(tok)
		if !res.All || res.Label != domain.AllLabel || res.Kind != domain.KindUnknown {
			t.Fatalf("Resolve(%q) = %+v, want the all resolution", tok, res)
		}
	}
}

func TestResolve_AllSentinelIsCaseSensitive(t *testing.T) {
	r := app.NewResolver(fakeClassifier{}, nil)
	for _, tok := range []string{"ALL", "All"} {
		res := r.Resolve(tok)
		if res.All || res.Label != tok || res.Kind != domain.KindUnknown {
			t.Fatalf("Resolve(%q) = %+v, want an unknown labelled token", tok, res)
		}
	}
}

func TestResolve_BaliAlias(t *testing.T) {
	cls := fakeClassifier{"Bali": {Kind: domain.KindCountry, Label: "wrong"}}
	res := app.NewResolver(cls, nil).Resolve("Bali")

	if res.Kind != domain.KindCity || res.Label != "발리" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.Match == nil || res.Match.Column != "city_ko" || res.Match.Value != "발리" {
		t.Fatalf("expected city_ko match, got %+v", res.Match)
	}
	if res.QueryText != "Bali" {
		t.Fatalf("queryText = %q, want Bali", res.QueryText)
	}
	if res.CountryLabel != "인도네시아" {
		t.Fatalf("countryLabel = %q", res.CountryLabel)
	}
}

func TestResolve_Classifier(t *testing.T) {
	cls := fakeClassifier{
		"도쿄": {Kind: domain.KindCity, Label: "도쿄", CityCode: "TYO", CountryCode: "JP"},
		"일본": {Kind: domain.KindCountry, Label: "일본", CountryCode: "JP"},
		"??": {Kind: domain.KindUnknown, Label: "??"},
	}
	r := app.NewResolver(cls, map[string]domain.Resolution{})

	if res := r.Resolve("도쿄"); res.Kind != domain.KindCity || res.CityCode != "TYO" || res.QueryText != "도쿄" {
		t.Fatalf("city: %+v", res)
	}
	if res := r.Resolve("일본"); res.Kind != domain.KindCountry || res.CountryCode != "JP" {
		t.Fatalf("country: %+v", res)
	}
	// classifier answering "unknown" is treated as no answer
	if res := r.Resolve("??"); res.Kind != domain.KindUnknown || res.Label != "??" || res.All {
		t.Fatalf("unknown kind: %+v", res)
	}
}

func TestResolve_UnknownKeepsToken(t *testing.T) {
	res := app.NewResolver(fakeClassifier{}, nil).Resolve(" Atlantis ")
	if res.Kind != domain.KindUnknown || res.Label != "Atlantis" || res.QueryText != "Atlantis" {
		t.Fatalf("unexpected resolution: %+v", res)
	}
	if res.All || res.Match != nil {
		t.Fatalf("unknown token must not be all or matched: %+v", res)
	}
}

func TestNewResolver_AliasKeysNormalised(t *testing.T) {
	r := app.NewResolver(nil, map[string]domain.Resolution{
		" Jeju ": {Kind: domain.KindCity, Label: "제주", CityCode: "CJU"},
	})
	if res := r.Resolve("JEJU"); res.CityCode != "CJU" {
		t.Fatalf("alias lookup should ignore case and padding: %+v", res)
	}
}
