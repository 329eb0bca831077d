package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sq "github.com/Masterminds/squirrel"
	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"hotelmap/internal/adapters/observability"
	"hotelmap/internal/domain"
)

// ER_BAD_FIELD_ERROR: unknown column in a statement.
const errBadField = 1054

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SelectHotels(ctx context.Context, f domain.HotelFilter) ([]domain.HotelRecord, error) {
	q, err := hotelQuery(f, hotelColumns...)
	if err != nil {
		return nil, err
	}
	q = q.OrderBy("property_name_en ASC", "sabre_id ASC")
	if f.Limit > 0 {
		q = q.Limit(uint64(f.Limit))
	}
	sqlStr, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify(stage(f), err)
	}
	defer rows.Close()

	var out []domain.HotelRecord
	for rows.Next() {
		h, err := scanHotel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(stage(f), err)
	}
	return out, nil
}

func (r *Repo) FirstHotelImage(ctx context.Context, sabreID string) (string, bool, error) {
	var u sql.NullString
	err := r.db.QueryRowContext(ctx, firstImageSQL, sabreID).Scan(&u)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, classify("media", err)
	}
	if !u.Valid || strings.TrimSpace(u.String) == "" {
		return "", false, nil
	}
	return u.String, true, nil
}

func (r *Repo) SelectAreas(ctx context.Context, cityCode string) ([]domain.AreaDescriptor, error) {
	rows, err := r.db.QueryContext(ctx, selectAreasSQL, cityCode)
	if err != nil {
		return nil, classify("regions", err)
	}
	defer rows.Close()

	var out []domain.AreaDescriptor
	for rows.Next() {
		var (
			id     int64
			ko, en string
		)
		if err := rows.Scan(&id, &ko, &en); err != nil {
			return nil, err
		}
		out = append(out, domain.AreaDescriptor{ID: strconv.FormatInt(id, 10), AreaKo: ko, AreaEn: en})
	}
	return out, rows.Err()
}

func (r *Repo) ObservedAreas(ctx context.Context, f domain.HotelFilter) ([]domain.AreaPair, error) {
	q, err := hotelQuery(f, "area_ko", "area_en")
	if err != nil {
		return nil, err
	}
	sqlStr, args, err := q.Distinct().
		Where(sq.And{sq.NotEq{"area_ko": nil}, sq.NotEq{"area_ko": ""}}).
		OrderBy("area_ko").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, classify("areas:"+stage(f), err)
	}
	defer rows.Close()

	var out []domain.AreaPair
	for rows.Next() {
		var ko string
		var en sql.NullString
		if err := rows.Scan(&ko, &en); err != nil {
			return nil, err
		}
		p := domain.AreaPair{AreaKo: ko}
		if en.Valid {
			s := en.String
			p.AreaEn = &s
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ---- query building ----

// hotelQuery selects cols from select_hotels restricted to published rows matching f.
func hotelQuery(f domain.HotelFilter, cols ...string) (sq.SelectBuilder, error) {
	q := sq.Select(cols...).From(hotelsTable).Where(published)
	switch f.Op {
	case domain.MatchAll:
		return q, nil
	case domain.MatchEq, domain.MatchContains:
		if _, ok := filterable[f.Column]; !ok {
			observability.ObserveQueryError(stage(f), "column_missing")
			return q, fmt.Errorf("filter on %q: %w", f.Column, domain.ErrColumnMissing)
		}
	default:
		return q, fmt.Errorf("unsupported match op %d", f.Op)
	}
	if f.Op == domain.MatchEq {
		return q.Where(sq.Eq{f.Column: f.Value}), nil
	}
	pattern := "%" + escapeLike(strings.ToLower(f.Value)) + "%"
	return q.Where(sq.Like{"LOWER(" + f.Column + ")": pattern}), nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func stage(f domain.HotelFilter) string {
	switch f.Op {
	case domain.MatchEq:
		return f.Column + ":eq"
	case domain.MatchContains:
		return f.Column + ":contains"
	}
	return "all"
}

// classify maps driver errors onto domain errors and records the failure.
func classify(stage string, err error) error {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) && me.Number == errBadField {
		observability.ObserveQueryError(stage, "column_missing")
		return fmt.Errorf("%w: %s", domain.ErrColumnMissing, me.Message)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	observability.ObserveQueryError(stage, "query")
	log.Debug().Err(err).Str("stage", stage).Str("err_type", observability.LabelErr(err)).Msg("mysql query error")
	return err
}

// ---- scanning ----

type scanner interface{ Scan(dest ...any) error }

func scanHotel(s scanner) (domain.HotelRecord, error) {
	var (
		h                                           domain.HotelRecord
		slug, nameKo, nameEn, addr                  sql.NullString
		cityCode, cityKo, cityEn, citySlug          sql.NullString
		areaKo, areaEn, countryCode, countryKo, cEn sql.NullString
		publish                                     sql.NullBool
		badge, image                                sql.NullString
		benefits                                    []byte
	)
	if err := s.Scan(
		&h.SabreID,
		&slug, &nameKo, &nameEn, &addr,
		&cityCode, &cityKo, &cityEn, &citySlug,
		&areaKo, &areaEn,
		&countryCode, &countryKo, &cEn,
		&publish,
		&badge, &image,
		&benefits,
	); err != nil {
		return domain.HotelRecord{}, err
	}

	h.Slug = nullStr(slug)
	h.PropertyNameKo = nullStr(nameKo)
	h.PropertyNameEn = nullStr(nameEn)
	h.PropertyAddress = nullStr(addr)
	h.CityCode = nullStr(cityCode)
	h.CityKo = nullStr(cityKo)
	h.CityEn = nullStr(cityEn)
	h.CitySlug = nullStr(citySlug)
	h.AreaKo = nullStr(areaKo)
	h.AreaEn = nullStr(areaEn)
	h.CountryCode = nullStr(countryCode)
	h.CountryKo = nullStr(countryKo)
	h.CountryEn = nullStr(cEn)
	if publish.Valid {
		p := publish.Bool
		h.Publish = &p
	}
	h.Badge = nullStr(badge)
	h.Image = nullStr(image)
	if len(benefits) > 0 {
		// benefits is a JSON array; anything else is ignored
		_ = json.Unmarshal(benefits, &h.Benefits)
	}
	return h, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}
