package mysql

import sq "github.com/Masterminds/squirrel"

const (
	hotelsTable  = "select_hotels"
	mediaTable   = "select_hotel_media"
	regionsTable = "select_regions"
)

// hotelColumns is the projection scanned into domain.HotelRecord; keep scanHotel in sync.
var hotelColumns = []string{
	"sabre_id",
	"slug",
	"property_name_ko",
	"property_name_en",
	"property_address",
	"city_code",
	"city_ko",
	"city_en",
	"city_slug",
	"area_ko",
	"area_en",
	"country_code",
	"country_ko",
	"country_en",
	"publish",
	"badge",
	"image",
	"benefits",
}

// filterable whitelists the columns a HotelFilter may reference; values are bound, columns are not.
var filterable = map[string]struct{}{
	"city_code":    {},
	"city_ko":      {},
	"city_en":      {},
	"city_slug":    {},
	"area_ko":      {},
	"area_en":      {},
	"country_code": {},
	"country_ko":   {},
	"country_en":   {},
	"slug":         {},
}

// published excludes rows explicitly hidden; NULL counts as visible.
var published = sq.Or{sq.Eq{"publish": nil}, sq.NotEq{"publish": false}}

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// First media row per hotel by display sequence.
const firstImageSQL = `
SELECT public_url
FROM select_hotel_media
WHERE sabre_id = ?
  AND public_url IS NOT NULL
  AND public_url <> ''
ORDER BY image_seq ASC, id ASC
LIMIT 1
`

// Curated areas of a city; rows without a status are treated as active.
const selectAreasSQL = `
SELECT id, area_ko, COALESCE(area_en, '')
FROM select_regions
WHERE region_type = 'area'
  AND city_code = ?
  AND (status IS NULL OR status = 'active')
  AND area_ko IS NOT NULL
  AND area_ko <> ''
ORDER BY area_ko
`
