package postgres

// search.go holds the read-side queries the HTTP API serves. They run on the
// pool outside of ingestion transactions and only ever see committed data.

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/stringauthority/registry/internal/catalog"
)

func arg(n int) string { return "$" + strconv.Itoa(n) }

const maxPageSize = 200

// Page bounds a search result set.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) clamp() Page {
	if p.Limit <= 0 || p.Limit > maxPageSize {
		p.Limit = 50
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ListManufacturers returns manufacturers filtered by optional status and
// name substring.
func (db *DB) ListManufacturers(ctx context.Context, status, name string, page Page) ([]catalog.ManufacturerRecord, error) {
	page = page.clamp()

	var conds []string
	var args []any
	if status != "" {
		args = append(args, status)
		conds = append(conds, "status = $1")
	}
	if name != "" {
		args = append(args, "%"+name+"%")
		conds = append(conds, "name ILIKE "+arg(len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, page.Limit, page.Offset)

	sql := `SELECT ` + manufacturerColumns + ` FROM manufacturers` + where +
		` ORDER BY name LIMIT ` + arg(len(args)-1) + ` OFFSET ` + arg(len(args))

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.ManufacturerRecord
	for rows.Next() {
		rec, err := scanManufacturer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ModelSearchRow is a model joined with its manufacturer's name.
type ModelSearchRow struct {
	catalog.ModelRecord
	ManufacturerName string
}

// SearchModels finds models whose name matches the query substring,
// optionally narrowed to one manufacturer and year.
func (db *DB) SearchModels(ctx context.Context, query, manufacturer string, year *int, page Page) ([]ModelSearchRow, error) {
	page = page.clamp()

	conds := []string{"m.name ILIKE $1"}
	args := []any{"%" + query + "%"}
	if manufacturer != "" {
		args = append(args, manufacturer)
		conds = append(conds, "lower(mf.name) = lower("+arg(len(args))+")")
	}
	if year != nil {
		args = append(args, *year)
		conds = append(conds, "m.year = "+arg(len(args)))
	}
	args = append(args, page.Limit, page.Offset)

	sql := `SELECT m.id, m.manufacturer_id, m.product_line_id, m.name, m.year,
			m.production_type, m.production_start_date, m.production_end_date,
			m.estimated_production_quantity, m.msrp_original, m.currency, m.description,
			mf.name
		 FROM models m
		 JOIN manufacturers mf ON mf.id = m.manufacturer_id
		 WHERE ` + strings.Join(conds, " AND ") +
		` ORDER BY mf.name, m.name, m.year
		 LIMIT ` + arg(len(args)-1) + ` OFFSET ` + arg(len(args))

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ModelSearchRow
	for rows.Next() {
		var row ModelSearchRow
		var productLineID pgtype.UUID
		var startDate, endDate pgtype.Date
		err := rows.Scan(&row.ID, &row.ManufacturerID, &productLineID, &row.Name, &row.Year,
			&row.ProductionType, &startDate, &endDate, &row.EstimatedProductionQuantity,
			&row.MSRPOriginal, &row.Currency, &row.Description, &row.ManufacturerName)
		if err != nil {
			return nil, err
		}
		row.ProductLineID = fromPgUUID(productLineID)
		row.ProductionStartDate = fromPgDate(startDate)
		row.ProductionEndDate = fromPgDate(endDate)
		out = append(out, row)
	}
	return out, rows.Err()
}

// GuitarSearchRow is an individual guitar joined with its resolved model and
// manufacturer names when they exist.
type GuitarSearchRow struct {
	catalog.GuitarRecord
	ModelName        *string
	ManufacturerName *string
}

// SearchGuitars finds individual guitars by serial number, nickname, or
// fallback text. Serial queries are normalized the same way stored serials
// are, so "9-0824" finds a unit recorded as "090824".
func (db *DB) SearchGuitars(ctx context.Context, query string, page Page) ([]GuitarSearchRow, error) {
	page = page.clamp()

	like := "%" + query + "%"
	serialKey := catalog.NormalizeSerial(query)
	args := []any{like, serialKey, page.Limit, page.Offset}

	sql := `SELECT g.id, g.model_id, g.manufacturer_name_fallback, g.model_name_fallback,
			g.year_estimate, g.description, g.nickname, g.serial_number,
			g.serial_number_normalized, g.production_date, g.production_number,
			g.significance_level, g.significance_notes, g.current_estimated_value,
			g.last_valuation_date, g.condition_rating, g.modifications, g.provenance_notes,
			m.name, mf.name
		 FROM individual_guitars g
		 LEFT JOIN models m ON m.id = g.model_id
		 LEFT JOIN manufacturers mf ON mf.id = m.manufacturer_id
		 WHERE g.nickname ILIKE $1
			OR g.model_name_fallback ILIKE $1
			OR g.manufacturer_name_fallback ILIKE $1
			OR g.serial_number_normalized = $2
		 ORDER BY g.created_at DESC
		 LIMIT $3 OFFSET $4`

	rows, err := db.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GuitarSearchRow
	for rows.Next() {
		var row GuitarSearchRow
		var modelID pgtype.UUID
		var productionDate, valuationDate pgtype.Date
		err := rows.Scan(&row.ID, &modelID, &row.ManufacturerNameFallback, &row.ModelNameFallback,
			&row.YearEstimate, &row.Description, &row.Nickname, &row.SerialNumber, &row.SerialKey,
			&productionDate, &row.ProductionNumber, &row.SignificanceLevel, &row.SignificanceNotes,
			&row.CurrentEstimatedValue, &valuationDate, &row.ConditionRating, &row.Modifications,
			&row.ProvenanceNotes, &row.ModelName, &row.ManufacturerName)
		if err != nil {
			return nil, err
		}
		row.ModelID = fromPgUUID(modelID)
		row.ProductionDate = fromPgDate(productionDate)
		row.LastValuationDate = fromPgDate(valuationDate)
		out = append(out, row)
	}
	return out, rows.Err()
}
