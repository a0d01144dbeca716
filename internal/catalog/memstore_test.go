package catalog

// memstore_test.go holds an in-memory Store used by the engine tests. It
// mirrors the transactional contract of the postgres implementation: Begin
// snapshots the state, Commit publishes the snapshot to the parent, and
// Rollback discards it. Nested Begin gives savepoint semantics.

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type memState struct {
	manufacturers []ManufacturerRecord
	productLines  []ProductLineRecord
	models        []ModelRecord
	guitars       []GuitarRecord
	specs         []InsertSpecificationParams
}

func (s *memState) clone() *memState {
	return &memState{
		manufacturers: append([]ManufacturerRecord(nil), s.manufacturers...),
		productLines:  append([]ProductLineRecord(nil), s.productLines...),
		models:        append([]ModelRecord(nil), s.models...),
		guitars:       append([]GuitarRecord(nil), s.guitars...),
		specs:         append([]InsertSpecificationParams(nil), s.specs...),
	}
}

type memDB struct {
	state memState
}

func newMemDB() *memDB { return &memDB{} }

func (db *memDB) Begin(ctx context.Context) (Tx, error) {
	return &memTx{state: db.state.clone(), db: db}, nil
}

// memTx is one transaction scope. db is set only on the outermost scope;
// parent on nested ones.
type memTx struct {
	state  *memState
	db     *memDB
	parent *memTx
	done   bool
}

func (t *memTx) Begin(ctx context.Context) (Tx, error) {
	return &memTx{state: t.state.clone(), parent: t}, nil
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return nil
	}
	t.done = true
	if t.parent != nil {
		t.parent.state = t.state
	} else {
		t.db.state = *t.state
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.done = true
	return nil
}

func (t *memTx) ListActiveManufacturers(ctx context.Context) ([]ManufacturerRecord, error) {
	var out []ManufacturerRecord
	for _, m := range t.state.manufacturers {
		if m.Status != "defunct" {
			out = append(out, m)
		}
	}
	return out, nil
}

func (t *memTx) FindManufacturerByName(ctx context.Context, name string) (*ManufacturerRecord, error) {
	for i, m := range t.state.manufacturers {
		if strings.EqualFold(m.Name, name) {
			return &t.state.manufacturers[i], nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertManufacturer(ctx context.Context, p InsertManufacturerParams) (uuid.UUID, error) {
	id := uuid.New()
	t.state.manufacturers = append(t.state.manufacturers, ManufacturerRecord{
		ID:          id,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Country:     p.Country,
		FoundedYear: p.FoundedYear,
		Website:     p.Website,
		Status:      p.Status,
		Notes:       p.Notes,
	})
	return id, nil
}

func (t *memTx) UpdateManufacturer(ctx context.Context, id uuid.UUID, upd ManufacturerUpdate) error {
	for i := range t.state.manufacturers {
		m := &t.state.manufacturers[i]
		if m.ID != id {
			continue
		}
		if upd.DisplayName != nil {
			m.DisplayName = upd.DisplayName
		}
		if upd.Country != nil {
			m.Country = upd.Country
		}
		if upd.FoundedYear != nil {
			m.FoundedYear = upd.FoundedYear
		}
		if upd.Website != nil {
			m.Website = upd.Website
		}
		if upd.Status != nil {
			m.Status = *upd.Status
		}
		if upd.Notes != nil {
			m.Notes = upd.Notes
		}
		return nil
	}
	return nil
}

func (t *memTx) FindProductLine(ctx context.Context, manufacturerID uuid.UUID, name string) (*ProductLineRecord, error) {
	for i, pl := range t.state.productLines {
		if pl.ManufacturerID == manufacturerID && strings.EqualFold(pl.Name, name) {
			return &t.state.productLines[i], nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertProductLine(ctx context.Context, manufacturerID uuid.UUID, name string) (uuid.UUID, error) {
	id := uuid.New()
	t.state.productLines = append(t.state.productLines, ProductLineRecord{
		ID:             id,
		ManufacturerID: manufacturerID,
		Name:           name,
	})
	return id, nil
}

func (t *memTx) ListModelsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) ([]ModelRecord, error) {
	var out []ModelRecord
	for _, m := range t.state.models {
		if m.ManufacturerID == manufacturerID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (t *memTx) FindModel(ctx context.Context, manufacturerName, modelName string, year int) (*ModelRecord, error) {
	mfr, err := t.FindManufacturerByName(ctx, manufacturerName)
	if err != nil || mfr == nil {
		return nil, err
	}
	for i, m := range t.state.models {
		if m.ManufacturerID == mfr.ID && strings.EqualFold(m.Name, modelName) && m.Year == year {
			return &t.state.models[i], nil
		}
	}
	return nil, nil
}

func (t *memTx) InsertModel(ctx context.Context, p InsertModelParams) (uuid.UUID, error) {
	id := uuid.New()
	t.state.models = append(t.state.models, ModelRecord{
		ID:                          id,
		ManufacturerID:              p.ManufacturerID,
		ProductLineID:               p.ProductLineID,
		Name:                        p.Name,
		Year:                        p.Year,
		ProductionType:              p.ProductionType,
		ProductionStartDate:         p.ProductionStartDate,
		ProductionEndDate:           p.ProductionEndDate,
		EstimatedProductionQuantity: p.EstimatedProductionQuantity,
		MSRPOriginal:                p.MSRPOriginal,
		Currency:                    p.Currency,
		Description:                 p.Description,
	})
	return id, nil
}

func (t *memTx) UpdateModel(ctx context.Context, id uuid.UUID, upd ModelUpdate) error {
	for i := range t.state.models {
		m := &t.state.models[i]
		if m.ID != id {
			continue
		}
		if upd.ProductionStartDate != nil {
			m.ProductionStartDate = upd.ProductionStartDate
		}
		if upd.ProductionEndDate != nil {
			m.ProductionEndDate = upd.ProductionEndDate
		}
		if upd.EstimatedProductionQuantity != nil {
			m.EstimatedProductionQuantity = upd.EstimatedProductionQuantity
		}
		if upd.MSRPOriginal != nil {
			m.MSRPOriginal = upd.MSRPOriginal
		}
		if upd.Currency != nil {
			m.Currency = *upd.Currency
		}
		if upd.Description != nil {
			m.Description = upd.Description
		}
		return nil
	}
	return nil
}

func (t *memTx) FindGuitarBySerialKey(ctx context.Context, serialKey string) (*GuitarRecord, error) {
	for i, g := range t.state.guitars {
		if g.SerialKey != nil && *g.SerialKey == serialKey {
			return &t.state.guitars[i], nil
		}
	}
	return nil, nil
}

func (t *memTx) ListGuitarsByModel(ctx context.Context, modelID uuid.UUID) ([]GuitarRecord, error) {
	var out []GuitarRecord
	for _, g := range t.state.guitars {
		if g.ModelID != nil && *g.ModelID == modelID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (t *memTx) ListGuitarsByFallback(ctx context.Context, q FallbackQuery) ([]GuitarRecord, error) {
	var out []GuitarRecord
	for _, g := range t.state.guitars {
		if g.ManufacturerNameFallback == nil || !strings.EqualFold(*g.ManufacturerNameFallback, q.ManufacturerName) {
			continue
		}
		if q.ModelName != nil && !equalFoldPtr(q.ModelName, g.ModelNameFallback) {
			continue
		}
		if q.YearEstimate != nil && !equalPtr(q.YearEstimate, g.YearEstimate) {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (t *memTx) InsertGuitar(ctx context.Context, p InsertGuitarParams) (uuid.UUID, error) {
	id := uuid.New()
	t.state.guitars = append(t.state.guitars, GuitarRecord{
		ID:                       id,
		ModelID:                  p.ModelID,
		ManufacturerNameFallback: p.ManufacturerNameFallback,
		ModelNameFallback:        p.ModelNameFallback,
		YearEstimate:             p.YearEstimate,
		Description:              p.Description,
		Nickname:                 p.Nickname,
		SerialNumber:             p.SerialNumber,
		SerialKey:                p.SerialKey,
		ProductionDate:           p.ProductionDate,
		ProductionNumber:         p.ProductionNumber,
		SignificanceLevel:        p.SignificanceLevel,
		SignificanceNotes:        p.SignificanceNotes,
		CurrentEstimatedValue:    p.CurrentEstimatedValue,
		LastValuationDate:        p.LastValuationDate,
		ConditionRating:          p.ConditionRating,
		Modifications:            p.Modifications,
		ProvenanceNotes:          p.ProvenanceNotes,
	})
	return id, nil
}

func (t *memTx) UpdateGuitar(ctx context.Context, id uuid.UUID, upd GuitarUpdate) error {
	for i := range t.state.guitars {
		g := &t.state.guitars[i]
		if g.ID != id {
			continue
		}
		if upd.ModelID != nil {
			g.ModelID = upd.ModelID
		}
		if upd.ManufacturerNameFallback != nil {
			g.ManufacturerNameFallback = upd.ManufacturerNameFallback
		}
		if upd.ModelNameFallback != nil {
			g.ModelNameFallback = upd.ModelNameFallback
		}
		if upd.YearEstimate != nil {
			g.YearEstimate = upd.YearEstimate
		}
		if upd.Description != nil {
			g.Description = upd.Description
		}
		if upd.Nickname != nil {
			g.Nickname = upd.Nickname
		}
		if upd.ProductionDate != nil {
			g.ProductionDate = upd.ProductionDate
		}
		if upd.ProductionNumber != nil {
			g.ProductionNumber = upd.ProductionNumber
		}
		if upd.SignificanceNotes != nil {
			g.SignificanceNotes = upd.SignificanceNotes
		}
		if upd.CurrentEstimatedValue != nil {
			g.CurrentEstimatedValue = upd.CurrentEstimatedValue
		}
		if upd.ConditionRating != nil {
			g.ConditionRating = upd.ConditionRating
		}
		if upd.Modifications != nil {
			g.Modifications = upd.Modifications
		}
		if upd.ProvenanceNotes != nil {
			g.ProvenanceNotes = upd.ProvenanceNotes
		}
		return nil
	}
	return nil
}

func (t *memTx) InsertSpecification(ctx context.Context, p InsertSpecificationParams) (uuid.UUID, error) {
	t.state.specs = append(t.state.specs, p)
	return uuid.New(), nil
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
