package app_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"hotelmap/internal/app"
	"hotelmap/internal/domain"
)

func TestAssemble_SkipsBlankAddressesAndBoundsGeocoding(t *testing.T) {
	var hotels []domain.HotelRecord
	for i := 0; i < 10; i++ {
		hotels = append(hotels, hotel(fmt.Sprint(i), fmt.Sprintf("%d Main St", i)))
	}
	blank := hotel("b1", "")
	spaces := hotel("b2", "")
	spaces.PropertyAddress = ptr("   ")
	hotels = append(hotels[:3], append([]domain.HotelRecord{blank, spaces}, hotels[3:]...)...)

	geo := &fakeGeocoder{delay: 5 * time.Millisecond}
	a := app.NewMarkerAssembler(&fakeRepo{}, geo, nil, 0, nil, 5)

	markers, _ := a.Assemble(context.Background(), hotels, domain.Resolution{})
	if got := geo.calls.Load(); got != 10 {
		t.Fatalf("geocode calls = %d, want 10", got)
	}
	if peak := geo.maxInFlight.Load(); peak > 5 {
		t.Fatalf("peak in-flight geocodes = %d, want <= 5", peak)
	}
	if len(markers) != 10 {
		t.Fatalf("markers = %d, want 10", len(markers))
	}
	for i, m := range markers {
		if m.SabreID != fmt.Sprint(i) {
			t.Fatalf("marker %d has sabre_id %s; input order must be kept", i, m.SabreID)
		}
	}
}

func TestAssemble_DropsHotelsWithoutCoordinates(t *testing.T) {
	var hotels []domain.HotelRecord
	for i := 0; i < 10; i++ {
		hotels = append(hotels, hotel(fmt.Sprint(i), fmt.Sprintf("addr %d", i)))
	}
	geo := &fakeGeocoder{fail: map[string]bool{"addr 4": true}}
	markers, _ := app.NewMarkerAssembler(nil, geo, nil, 0, nil, 3).Assemble(context.Background(), hotels, domain.Resolution{})

	if len(markers) != 9 {
		t.Fatalf("markers = %d, want 9", len(markers))
	}
	for _, m := range markers {
		if m.SabreID == "4" {
			t.Fatalf("hotel without coordinates must not produce a marker")
		}
	}
}

func TestAssemble_MarkerFields(t *testing.T) {
	h := hotel("77", " 1-1 Chome ")
	h.Slug = ptr("grand-77")
	h.Badge = ptr(" 신규 ")
	h.Benefits = []string{"breakfast", "late checkout"}
	h.CityKo = ptr("도쿄")
	h.CountryEn = ptr("Japan")

	geo := &fakeGeocoder{locs: map[string]domain.Location{"1-1 Chome, Japan": {Lat: 35.6, Lng: 139.7}}}
	markers, _ := app.NewMarkerAssembler(&fakeRepo{}, geo, nil, 0, nil, 1).
		Assemble(context.Background(), []domain.HotelRecord{h}, domain.Resolution{})

	if len(markers) != 1 {
		t.Fatalf("want 1 marker, got %d", len(markers))
	}
	m := markers[0]
	if m.Location.Lat != 35.6 || m.Location.Lng != 139.7 {
		t.Fatalf("location = %+v", m.Location)
	}
	if m.PropertyAddress != "1-1 Chome" {
		t.Fatalf("address = %q", m.PropertyAddress)
	}
	if len(m.Badges) != 1 || m.Badges[0] != "신규" {
		t.Fatalf("badges = %v", m.Badges)
	}
	if len(m.Benefits) != 2 || deref(m.CityKo) != "도쿄" || deref(m.Slug) != "grand-77" {
		t.Fatalf("unexpected marker: %+v", m)
	}
	if m.Image != nil {
		t.Fatalf("no image sources, got %q", *m.Image)
	}
}

func TestAssemble_ImagePrecedence(t *testing.T) {
	withMedia := hotel("1", "a")
	withMedia.Image = ptr("https://cdn.test/ignored.jpg")

	absolute := hotel("2", "b")
	absolute.Image = ptr("https://cdn.test/two.jpg")

	relative := hotel("3", "c")
	relative.Slug = ptr("three")
	relative.Image = ptr("cover.jpg")

	noSlug := hotel("4", "d")
	noSlug.Image = ptr("raw.jpg")

	repo := &fakeRepo{images: map[string]string{"1": "https://media.test/first.jpg"}}
	markers, _ := app.NewMarkerAssembler(repo, &fakeGeocoder{}, nil, 0, fakeMedia{}, 2).
		Assemble(context.Background(), []domain.HotelRecord{withMedia, absolute, relative, noSlug}, domain.Resolution{})

	want := []string{
		"https://media.test/first.jpg",
		"https://cdn.test/two.jpg",
		"https://media.test/three/cover.jpg",
		"raw.jpg",
	}
	if len(markers) != len(want) {
		t.Fatalf("markers = %d", len(markers))
	}
	for i, w := range want {
		if got := deref(markers[i].Image); got != w {
			t.Fatalf("marker %d image = %q, want %q", i, got, w)
		}
	}
}

func TestAssemble_CoordinateCache(t *testing.T) {
	hotels := []domain.HotelRecord{hotel("1", "A St"), hotel("2", "B St"), hotel("3", "Nowhere")}
	geo := &fakeGeocoder{fail: map[string]bool{"Nowhere": true}}
	cache := &fakeCache{}
	a := app.NewMarkerAssembler(nil, geo, cache, time.Hour, nil, 2)

	_, first := a.Assemble(context.Background(), hotels, domain.Resolution{})
	if first.Hits != 0 || first.Misses != 3 || first.HitRate != 0 {
		t.Fatalf("first pass stats = %+v", first)
	}
	if cache.len() != 2 {
		t.Fatalf("only successful lookups are cached, got %d entries", cache.len())
	}
	for k, ttl := range cache.ttls {
		if ttl != 3600 {
			t.Fatalf("ttl for %s = %d, want 3600", k, ttl)
		}
	}

	markers, second := a.Assemble(context.Background(), hotels, domain.Resolution{})
	if second.Hits != 2 || second.Misses != 1 {
		t.Fatalf("second pass stats = %+v", second)
	}
	if second.HitRate < 0.66 || second.HitRate > 0.67 {
		t.Fatalf("hit rate = %v", second.HitRate)
	}
	if len(markers) != 2 {
		t.Fatalf("markers = %d", len(markers))
	}
	// the failed address is retried; the cached ones are not
	if got := geo.calls.Load(); got != 4 {
		t.Fatalf("geocode calls = %d, want 4", got)
	}
}

func TestGeocodeQuery(t *testing.T) {
	h := hotel("1", "Jl. Pantai Kuta")
	if got := app.GeocodeQuery(h, domain.Resolution{CountryLabel: "인도네시아"}); got != "Jl. Pantai Kuta, 인도네시아" {
		t.Fatalf("resolution country fallback: %q", got)
	}

	h.CountryKo = ptr("인도네시아")
	h.CountryEn = ptr("Indonesia")
	if got := app.GeocodeQuery(h, domain.Resolution{}); got != "Jl. Pantai Kuta, Indonesia" {
		t.Fatalf("hotel country preferred: %q", got)
	}

	h.PropertyAddress = ptr("Jl. Pantai Kuta, Bali, INDONESIA")
	if got := app.GeocodeQuery(h, domain.Resolution{}); got != "Jl. Pantai Kuta, Bali, INDONESIA" {
		t.Fatalf("country must not be appended twice: %q", got)
	}

	if got := app.GeocodeQuery(hotel("2", "Somewhere 1"), domain.Resolution{}); got != "Somewhere 1" {
		t.Fatalf("no country known: %q", got)
	}
}
