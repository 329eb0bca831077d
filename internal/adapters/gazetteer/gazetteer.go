// Package gazetteer classifies destination tokens against a fixed list of
// cities and countries served by the concierge.
package gazetteer

import (
	"strings"

	"hotelmap/internal/domain"
)

type Place struct {
	Kind         domain.ResolutionKind
	Code         string // city or country code
	Slug         string
	LabelKo      string
	LabelEn      string
	CountryCode  string
	CountryLabel string
	Lat, Lng     float64
	Aliases      []string
}

var DefaultPlaces = []Place{
	// countries
	{Kind: domain.KindCountry, Code: "KR", LabelKo: "대한민국", LabelEn: "South Korea", CountryCode: "KR", CountryLabel: "대한민국", Lat: 36.5, Lng: 127.9, Aliases: []string{"korea", "한국"}},
	{Kind: domain.KindCountry, Code: "JP", LabelKo: "일본", LabelEn: "Japan", CountryCode: "JP", CountryLabel: "일본", Lat: 36.2, Lng: 138.25},
	{Kind: domain.KindCountry, Code: "US", LabelKo: "미국", LabelEn: "United States", CountryCode: "US", CountryLabel: "미국", Lat: 39.8, Lng: -98.6, Aliases: []string{"usa"}},
	{Kind: domain.KindCountry, Code: "FR", LabelKo: "프랑스", LabelEn: "France", CountryCode: "FR", CountryLabel: "프랑스", Lat: 46.2, Lng: 2.2},
	{Kind: domain.KindCountry, Code: "IT", LabelKo: "이탈리아", LabelEn: "Italy", CountryCode: "IT", CountryLabel: "이탈리아", Lat: 41.9, Lng: 12.6},
	{Kind: domain.KindCountry, Code: "TH", LabelKo: "태국", LabelEn: "Thailand", CountryCode: "TH", CountryLabel: "태국", Lat: 15.9, Lng: 100.99},
	{Kind: domain.KindCountry, Code: "VN", LabelKo: "베트남", LabelEn: "Vietnam", CountryCode: "VN", CountryLabel: "베트남", Lat: 14.06, Lng: 108.28},
	{Kind: domain.KindCountry, Code: "SG", LabelKo: "싱가포르", LabelEn: "Singapore", CountryCode: "SG", CountryLabel: "싱가포르", Lat: 1.35, Lng: 103.82},
	{Kind: domain.KindCountry, Code: "ID", LabelKo: "인도네시아", LabelEn: "Indonesia", CountryCode: "ID", CountryLabel: "인도네시아", Lat: -0.79, Lng: 113.92},
	{Kind: domain.KindCountry, Code: "AE", LabelKo: "아랍에미리트", LabelEn: "United Arab Emirates", CountryCode: "AE", CountryLabel: "아랍에미리트", Lat: 23.42, Lng: 53.85, Aliases: []string{"uae"}},

	// cities
	{Kind: domain.KindCity, Code: "SEL", Slug: "seoul", LabelKo: "서울", LabelEn: "Seoul", CountryCode: "KR", CountryLabel: "대한민국", Lat: 37.5665, Lng: 126.978},
	{Kind: domain.KindCity, Code: "PUS", Slug: "busan", LabelKo: "부산", LabelEn: "Busan", CountryCode: "KR", CountryLabel: "대한민국", Lat: 35.1796, Lng: 129.0756},
	{Kind: domain.KindCity, Code: "CJU", Slug: "jeju", LabelKo: "제주", LabelEn: "Jeju", CountryCode: "KR", CountryLabel: "대한민국", Lat: 33.4996, Lng: 126.5312, Aliases: []string{"제주도"}},
	{Kind: domain.KindCity, Code: "TYO", Slug: "tokyo", LabelKo: "도쿄", LabelEn: "Tokyo", CountryCode: "JP", CountryLabel: "일본", Lat: 35.6762, Lng: 139.6503},
	{Kind: domain.KindCity, Code: "OSA", Slug: "osaka", LabelKo: "오사카", LabelEn: "Osaka", CountryCode: "JP", CountryLabel: "일본", Lat: 34.6937, Lng: 135.5023},
	{Kind: domain.KindCity, Code: "KYO", Slug: "kyoto", LabelKo: "교토", LabelEn: "Kyoto", CountryCode: "JP", CountryLabel: "일본", Lat: 35.0116, Lng: 135.7681},
	{Kind: domain.KindCity, Code: "NYC", Slug: "new-york", LabelKo: "뉴욕", LabelEn: "New York", CountryCode: "US", CountryLabel: "미국", Lat: 40.7128, Lng: -74.006},
	{Kind: domain.KindCity, Code: "HNL", Slug: "honolulu", LabelKo: "호놀룰루", LabelEn: "Honolulu", CountryCode: "US", CountryLabel: "미국", Lat: 21.3069, Lng: -157.8583, Aliases: []string{"하와이", "hawaii"}},
	{Kind: domain.KindCity, Code: "PAR", Slug: "paris", LabelKo: "파리", LabelEn: "Paris", CountryCode: "FR", CountryLabel: "프랑스", Lat: 48.8566, Lng: 2.3522},
	{Kind: domain.KindCity, Code: "ROM", Slug: "rome", LabelKo: "로마", LabelEn: "Rome", CountryCode: "IT", CountryLabel: "이탈리아", Lat: 41.9028, Lng: 12.4964},
	{Kind: domain.KindCity, Code: "BKK", Slug: "bangkok", LabelKo: "방콕", LabelEn: "Bangkok", CountryCode: "TH", CountryLabel: "태국", Lat: 13.7563, Lng: 100.5018},
	{Kind: domain.KindCity, Code: "DAD", Slug: "da-nang", LabelKo: "다낭", LabelEn: "Da Nang", CountryCode: "VN", CountryLabel: "베트남", Lat: 16.0544, Lng: 108.2022, Aliases: []string{"danang"}},
	{Kind: domain.KindCity, Code: "SIN", Slug: "singapore", LabelKo: "싱가포르", LabelEn: "Singapore", CountryCode: "SG", CountryLabel: "싱가포르", Lat: 1.3521, Lng: 103.8198},
	{Kind: domain.KindCity, Code: "DXB", Slug: "dubai", LabelKo: "두바이", LabelEn: "Dubai", CountryCode: "AE", CountryLabel: "아랍에미리트", Lat: 25.2048, Lng: 55.2708},
}

type Gazetteer struct {
	index map[string]Place
}

// New indexes places by normalized label, slug, code and alias.
// Cities are indexed last so a shared name (Singapore) resolves to the city.
func New(places []Place) *Gazetteer {
	g := &Gazetteer{index: make(map[string]Place, len(places)*4)}
	for _, kind := range []domain.ResolutionKind{domain.KindCountry, domain.KindCity} {
		for _, p := range places {
			if p.Kind != kind {
				continue
			}
			for _, k := range append([]string{p.LabelKo, p.LabelEn, p.Slug, p.Code}, p.Aliases...) {
				if k = normalize(k); k != "" {
					g.index[k] = p
				}
			}
		}
	}
	return g
}

func (g *Gazetteer) Classify(token string) (domain.Resolution, bool) {
	p, ok := g.index[normalize(token)]
	if !ok {
		return domain.Resolution{Kind: domain.KindUnknown, Label: token}, false
	}
	res := domain.Resolution{
		Kind:         p.Kind,
		Label:        p.LabelKo,
		CountryCode:  p.CountryCode,
		CountryLabel: p.CountryLabel,
		Center:       &domain.Location{Lat: p.Lat, Lng: p.Lng},
	}
	if p.Kind == domain.KindCity {
		res.CityCode = p.Code
	}
	return res, true
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	return strings.Join(strings.Fields(s), " ")
}
