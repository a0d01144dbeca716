package postgres

// store.go implements the catalog storage contract with hand-written
// parameterized SQL. Name lookups are case-insensitive via lower() indexes.
// Updates are assembled dynamically from the non-nil fields of the update
// struct, which is how partial merges avoid touching existing data.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/stringauthority/registry/internal/catalog"
)

// queries serves the catalog.Store interface over any DBTX.
type queries struct {
	db DBTX
}

type rowScanner interface {
	Scan(dest ...any) error
}

const manufacturerColumns = `id, name, display_name, country, founded_year, website, status, notes`

func scanManufacturer(row rowScanner) (catalog.ManufacturerRecord, error) {
	var rec catalog.ManufacturerRecord
	err := row.Scan(&rec.ID, &rec.Name, &rec.DisplayName, &rec.Country,
		&rec.FoundedYear, &rec.Website, &rec.Status, &rec.Notes)
	return rec, err
}

func (q queries) ListActiveManufacturers(ctx context.Context) ([]catalog.ManufacturerRecord, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+manufacturerColumns+` FROM manufacturers WHERE status <> 'defunct'`)
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

func (q queries) FindManufacturerByName(ctx context.Context, name string) (*catalog.ManufacturerRecord, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+manufacturerColumns+` FROM manufacturers WHERE lower(name) = lower($1)`, name)
	rec, err := scanManufacturer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (q queries) InsertManufacturer(ctx context.Context, p catalog.InsertManufacturerParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx,
		`INSERT INTO manufacturers (name, display_name, country, founded_year, website, status, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		p.Name, p.DisplayName, p.Country, p.FoundedYear, p.Website, p.Status, p.Notes,
	).Scan(&id)
	return id, err
}

func (q queries) UpdateManufacturer(ctx context.Context, id uuid.UUID, upd catalog.ManufacturerUpdate) error {
	b := newUpdateBuilder()
	b.setPtr("display_name", upd.DisplayName)
	b.setPtr("country", upd.Country)
	b.setPtr("founded_year", upd.FoundedYear)
	b.setPtr("website", upd.Website)
	b.setPtr("status", upd.Status)
	b.setPtr("notes", upd.Notes)
	return b.exec(ctx, q.db, "manufacturers", id)
}

func (q queries) FindProductLine(ctx context.Context, manufacturerID uuid.UUID, name string) (*catalog.ProductLineRecord, error) {
	var rec catalog.ProductLineRecord
	err := q.db.QueryRow(ctx,
		`SELECT id, manufacturer_id, name FROM product_lines
		 WHERE manufacturer_id = $1 AND lower(name) = lower($2)`,
		manufacturerID, name,
	).Scan(&rec.ID, &rec.ManufacturerID, &rec.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (q queries) InsertProductLine(ctx context.Context, manufacturerID uuid.UUID, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx,
		`INSERT INTO product_lines (manufacturer_id, name) VALUES ($1, $2) RETURNING id`,
		manufacturerID, name,
	).Scan(&id)
	return id, err
}

const modelColumns = `id, manufacturer_id, product_line_id, name, year, production_type,
	production_start_date, production_end_date, estimated_production_quantity,
	msrp_original, currency, description`

func scanModel(row rowScanner) (catalog.ModelRecord, error) {
	var rec catalog.ModelRecord
	var productLineID pgtype.UUID
	var startDate, endDate pgtype.Date
	err := row.Scan(&rec.ID, &rec.ManufacturerID, &productLineID, &rec.Name, &rec.Year,
		&rec.ProductionType, &startDate, &endDate, &rec.EstimatedProductionQuantity,
		&rec.MSRPOriginal, &rec.Currency, &rec.Description)
	if err != nil {
		return rec, err
	}
	rec.ProductLineID = fromPgUUID(productLineID)
	rec.ProductionStartDate = fromPgDate(startDate)
	rec.ProductionEndDate = fromPgDate(endDate)
	return rec, nil
}

func (q queries) ListModelsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) ([]catalog.ModelRecord, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+modelColumns+` FROM models WHERE manufacturer_id = $1`, manufacturerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.ModelRecord
	for rows.Next() {
		rec, err := scanModel(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (q queries) FindModel(ctx context.Context, manufacturerName, modelName string, year int) (*catalog.ModelRecord, error) {
	row := q.db.QueryRow(ctx,
		`SELECT m.id, m.manufacturer_id, m.product_line_id, m.name, m.year, m.production_type,
			m.production_start_date, m.production_end_date, m.estimated_production_quantity,
			m.msrp_original, m.currency, m.description
		 FROM models m
		 JOIN manufacturers mf ON mf.id = m.manufacturer_id
		 WHERE lower(mf.name) = lower($1) AND lower(m.name) = lower($2) AND m.year = $3`,
		manufacturerName, modelName, year)
	rec, err := scanModel(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (q queries) InsertModel(ctx context.Context, p catalog.InsertModelParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx,
		`INSERT INTO models (manufacturer_id, product_line_id, name, year, production_type,
			production_start_date, production_end_date, estimated_production_quantity,
			msrp_original, currency, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id`,
		p.ManufacturerID, toPgUUID(p.ProductLineID), p.Name, p.Year, p.ProductionType,
		toPgDate(p.ProductionStartDate), toPgDate(p.ProductionEndDate),
		p.EstimatedProductionQuantity, p.MSRPOriginal, p.Currency, p.Description,
	).Scan(&id)
	return id, err
}

func (q queries) UpdateModel(ctx context.Context, id uuid.UUID, upd catalog.ModelUpdate) error {
	b := newUpdateBuilder()
	b.setDate("production_start_date", upd.ProductionStartDate)
	b.setDate("production_end_date", upd.ProductionEndDate)
	b.setPtr("estimated_production_quantity", upd.EstimatedProductionQuantity)
	b.setPtr("msrp_original", upd.MSRPOriginal)
	b.setPtr("currency", upd.Currency)
	b.setPtr("description", upd.Description)
	return b.exec(ctx, q.db, "models", id)
}

const guitarColumns = `id, model_id, manufacturer_name_fallback, model_name_fallback,
	year_estimate, description, nickname, serial_number, serial_number_normalized,
	production_date, production_number, significance_level, significance_notes,
	current_estimated_value, last_valuation_date, condition_rating, modifications,
	provenance_notes`

func scanGuitar(row rowScanner) (catalog.GuitarRecord, error) {
	var rec catalog.GuitarRecord
	var modelID pgtype.UUID
	var productionDate, valuationDate pgtype.Date
	err := row.Scan(&rec.ID, &modelID, &rec.ManufacturerNameFallback, &rec.ModelNameFallback,
		&rec.YearEstimate, &rec.Description, &rec.Nickname, &rec.SerialNumber, &rec.SerialKey,
		&productionDate, &rec.ProductionNumber, &rec.SignificanceLevel, &rec.SignificanceNotes,
		&rec.CurrentEstimatedValue, &valuationDate, &rec.ConditionRating, &rec.Modifications,
		&rec.ProvenanceNotes)
	if err != nil {
		return rec, err
	}
	rec.ModelID = fromPgUUID(modelID)
	rec.ProductionDate = fromPgDate(productionDate)
	rec.LastValuationDate = fromPgDate(valuationDate)
	return rec, nil
}

func (q queries) FindGuitarBySerialKey(ctx context.Context, serialKey string) (*catalog.GuitarRecord, error) {
	row := q.db.QueryRow(ctx,
		`SELECT `+guitarColumns+` FROM individual_guitars WHERE serial_number_normalized = $1`,
		serialKey)
	rec, err := scanGuitar(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (q queries) ListGuitarsByModel(ctx context.Context, modelID uuid.UUID) ([]catalog.GuitarRecord, error) {
	return q.listGuitars(ctx,
		`SELECT `+guitarColumns+` FROM individual_guitars WHERE model_id = $1`, modelID)
}

func (q queries) ListGuitarsByFallback(ctx context.Context, fq catalog.FallbackQuery) ([]catalog.GuitarRecord, error) {
	sql := `SELECT ` + guitarColumns + ` FROM individual_guitars
		 WHERE lower(manufacturer_name_fallback) = lower($1)`
	args := []any{fq.ManufacturerName}
	if fq.ModelName != nil {
		args = append(args, *fq.ModelName)
		sql += ` AND lower(model_name_fallback) = lower(` + arg(len(args)) + `)`
	}
	if fq.YearEstimate != nil {
		args = append(args, *fq.YearEstimate)
		sql += ` AND year_estimate = ` + arg(len(args))
	}
	return q.listGuitars(ctx, sql, args...)
}

func (q queries) listGuitars(ctx context.Context, sql string, args ...any) ([]catalog.GuitarRecord, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []catalog.GuitarRecord
	for rows.Next() {
		rec, err := scanGuitar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (q queries) InsertGuitar(ctx context.Context, p catalog.InsertGuitarParams) (uuid.UUID, error) {
	var id uuid.UUID
	err := q.db.QueryRow(ctx,
		`INSERT INTO individual_guitars (model_id, manufacturer_name_fallback,
			model_name_fallback, year_estimate, description, nickname, serial_number,
			serial_number_normalized, production_date, production_number,
			significance_level, significance_notes, current_estimated_value,
			last_valuation_date, condition_rating, modifications, provenance_notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING id`,
		toPgUUID(p.ModelID), p.ManufacturerNameFallback, p.ModelNameFallback,
		p.YearEstimate, p.Description, p.Nickname, p.SerialNumber, p.SerialKey,
		toPgDate(p.ProductionDate), p.ProductionNumber, p.SignificanceLevel,
		p.SignificanceNotes, p.CurrentEstimatedValue, toPgDate(p.LastValuationDate),
		p.ConditionRating, p.Modifications, p.ProvenanceNotes,
	).Scan(&id)
	return id, err
}

func (q queries) UpdateGuitar(ctx context.Context, id uuid.UUID, upd catalog.GuitarUpdate) error {
	b := newUpdateBuilder()
	if upd.ModelID != nil {
		b.set("model_id", *upd.ModelID)
	}
	b.setPtr("manufacturer_name_fallback", upd.ManufacturerNameFallback)
	b.setPtr("model_name_fallback", upd.ModelNameFallback)
	b.setPtr("year_estimate", upd.YearEstimate)
	b.setPtr("description", upd.Description)
	b.setPtr("nickname", upd.Nickname)
	b.setDate("production_date", upd.ProductionDate)
	b.setPtr("production_number", upd.ProductionNumber)
	b.setPtr("significance_notes", upd.SignificanceNotes)
	b.setPtr("current_estimated_value", upd.CurrentEstimatedValue)
	b.setPtr("condition_rating", upd.ConditionRating)
	b.setPtr("modifications", upd.Modifications)
	b.setPtr("provenance_notes", upd.ProvenanceNotes)
	return b.exec(ctx, q.db, "individual_guitars", id)
}

func (q queries) InsertSpecification(ctx context.Context, p catalog.InsertSpecificationParams) (uuid.UUID, error) {
	var id uuid.UUID
	s := p.Spec
	err := q.db.QueryRow(ctx,
		`INSERT INTO specifications (model_id, individual_guitar_id, body_wood, neck_wood,
			fingerboard_wood, scale_length_inches, num_frets, nut_width_inches,
			neck_profile, bridge_type, pickup_configuration, electronics_description,
			hardware_finish, body_finish, weight_lbs, case_included, case_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		 RETURNING id`,
		toPgUUID(p.ModelID), toPgUUID(p.IndividualGuitarID), s.BodyWood, s.NeckWood,
		s.FingerboardWood, s.ScaleLengthInches, s.NumFrets, s.NutWidthInches,
		s.NeckProfile, s.BridgeType, s.PickupConfiguration, s.ElectronicsDescription,
		s.HardwareFinish, s.BodyFinish, s.WeightLbs, s.CaseIncluded, s.CaseType,
	).Scan(&id)
	return id, err
}

// updateBuilder assembles an UPDATE statement from the non-nil fields of an
// update struct.
type updateBuilder struct {
	sets []string
	args []any
}

func newUpdateBuilder() *updateBuilder {
	return &updateBuilder{sets: []string{"updated_at = now()"}}
}

func (b *updateBuilder) set(column string, val any) {
	b.args = append(b.args, val)
	b.sets = append(b.sets, fmt.Sprintf("%s = $%d", column, len(b.args)))
}

func (b *updateBuilder) setPtr(column string, val any) {
	if !isNilPtr(val) {
		b.set(column, val)
	}
}

func (b *updateBuilder) setDate(column string, val *string) {
	if val != nil {
		b.set(column, toPgDate(val))
	}
}

func (b *updateBuilder) exec(ctx context.Context, db DBTX, table string, id uuid.UUID) error {
	if len(b.args) == 0 {
		return nil
	}
	b.args = append(b.args, id)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		table, strings.Join(b.sets, ", "), len(b.args))
	_, err := db.Exec(ctx, sql, b.args...)
	return err
}

func isNilPtr(val any) bool {
	switch v := val.(type) {
	case *string:
		return v == nil
	case *int:
		return v == nil
	case *float64:
		return v == nil
	default:
		return val == nil
	}
}
