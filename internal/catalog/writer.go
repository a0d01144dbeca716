package catalog

// writer.go applies resolved decisions to the store. Inserts fill in schema
// defaults; updates are built only from fields the payload actually carried,
// so existing data is never overwritten with absence.

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

func insertManufacturer(ctx context.Context, st Store, in *ManufacturerPayload) (uuid.UUID, error) {
	return st.InsertManufacturer(ctx, InsertManufacturerParams{
		Name:        in.Name,
		DisplayName: in.DisplayName,
		Country:     in.Country,
		FoundedYear: in.FoundedYear,
		Website:     in.Website,
		Status:      valueOr(in.Status, DefaultManufacturerStatus),
		Notes:       in.Notes,
	})
}

func updateManufacturer(ctx context.Context, st Store, id uuid.UUID, in *ManufacturerPayload) error {
	upd := ManufacturerUpdate{
		DisplayName: in.DisplayName,
		Country:     in.Country,
		FoundedYear: in.FoundedYear,
		Website:     in.Website,
		Status:      in.Status,
		Notes:       in.Notes,
	}
	if upd.Empty() {
		return nil
	}
	return st.UpdateManufacturer(ctx, id, upd)
}

// resolveManufacturerID turns a manufacturer name into an identifier. The
// lookup sees rows inserted earlier in the same transaction, so a batch can
// introduce a manufacturer and reference it from later submissions.
func resolveManufacturerID(ctx context.Context, st Store, kind EntityKind, name string) (uuid.UUID, error) {
	rec, err := st.FindManufacturerByName(ctx, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find manufacturer %q: %w", name, err)
	}
	if rec == nil {
		return uuid.Nil, &MissingDependencyError{
			Kind:    kind,
			Message: fmt.Sprintf("manufacturer %q not found", name),
		}
	}
	return rec.ID, nil
}

// ensureProductLine finds or creates a product line under a manufacturer.
func ensureProductLine(ctx context.Context, st Store, manufacturerID uuid.UUID, name string) (uuid.UUID, error) {
	rec, err := st.FindProductLine(ctx, manufacturerID, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("find product line %q: %w", name, err)
	}
	if rec != nil {
		return rec.ID, nil
	}
	return st.InsertProductLine(ctx, manufacturerID, name)
}

func insertModel(ctx context.Context, st Store, manufacturerID uuid.UUID, in *ModelPayload) (uuid.UUID, error) {
	var productLineID *uuid.UUID
	if in.ProductLineName != nil {
		id, err := ensureProductLine(ctx, st, manufacturerID, *in.ProductLineName)
		if err != nil {
			return uuid.Nil, err
		}
		productLineID = &id
	}

	id, err := st.InsertModel(ctx, InsertModelParams{
		ManufacturerID:              manufacturerID,
		ProductLineID:               productLineID,
		Name:                        in.Name,
		Year:                        in.Year,
		ProductionType:              valueOr(in.ProductionType, DefaultProductionType),
		ProductionStartDate:         in.ProductionStartDate,
		ProductionEndDate:           in.ProductionEndDate,
		EstimatedProductionQuantity: in.EstimatedProductionQuantity,
		MSRPOriginal:                in.MSRPOriginal,
		Currency:                    valueOr(in.Currency, DefaultCurrency),
		Description:                 in.Description,
	})
	if err != nil {
		return uuid.Nil, err
	}

	for _, spec := range in.Specifications {
		if _, err := st.InsertSpecification(ctx, InsertSpecificationParams{
			ModelID: &id,
			Spec:    spec,
		}); err != nil {
			return uuid.Nil, fmt.Errorf("insert model specification: %w", err)
		}
	}
	return id, nil
}

func updateModel(ctx context.Context, st Store, id uuid.UUID, in *ModelPayload) error {
	upd := ModelUpdate{
		ProductionStartDate:         in.ProductionStartDate,
		ProductionEndDate:           in.ProductionEndDate,
		EstimatedProductionQuantity: in.EstimatedProductionQuantity,
		MSRPOriginal:                in.MSRPOriginal,
		Currency:                    in.Currency,
		Description:                 in.Description,
	}
	if upd.Empty() {
		return nil
	}
	return st.UpdateModel(ctx, id, upd)
}

// resolveModelReference resolves a structured model reference to an
// identifier. A dangling reference is only fatal when the payload has no
// fallback manufacturer text to fall back on.
func resolveModelReference(ctx context.Context, st Store, in *GuitarPayload) (*uuid.UUID, error) {
	if in.ModelReference == nil {
		return nil, nil
	}
	ref := in.ModelReference
	rec, err := st.FindModel(ctx, ref.ManufacturerName, ref.ModelName, ref.Year)
	if err != nil {
		return nil, fmt.Errorf("find model %q %q %d: %w", ref.ManufacturerName, ref.ModelName, ref.Year, err)
	}
	if rec != nil {
		return &rec.ID, nil
	}
	if in.ManufacturerNameFallback == nil {
		return nil, &MissingDependencyError{
			Kind: KindIndividualGuitar,
			Message: fmt.Sprintf("model %s %s (%d) not found and no fallback identification given",
				ref.ManufacturerName, ref.ModelName, ref.Year),
		}
	}
	return nil, nil
}

func insertGuitar(ctx context.Context, st Store, modelID *uuid.UUID, in *GuitarPayload) (uuid.UUID, error) {
	id, err := st.InsertGuitar(ctx, InsertGuitarParams{
		ModelID:                  modelID,
		ManufacturerNameFallback: in.ManufacturerNameFallback,
		ModelNameFallback:        in.ModelNameFallback,
		YearEstimate:             in.YearEstimate,
		Description:              in.Description,
		Nickname:                 in.Nickname,
		SerialNumber:             in.SerialNumber,
		SerialKey:                serialKey(in.SerialNumber),
		ProductionDate:           in.ProductionDate,
		ProductionNumber:         in.ProductionNumber,
		SignificanceLevel:        valueOr(in.SignificanceLevel, DefaultSignificanceLevel),
		SignificanceNotes:        in.SignificanceNotes,
		CurrentEstimatedValue:    in.CurrentEstimatedValue,
		LastValuationDate:        in.LastValuationDate,
		ConditionRating:          in.ConditionRating,
		Modifications:            in.Modifications,
		ProvenanceNotes:          in.ProvenanceNotes,
	})
	if err != nil {
		return uuid.Nil, err
	}

	for _, spec := range in.Specifications {
		if _, err := st.InsertSpecification(ctx, InsertSpecificationParams{
			IndividualGuitarID: &id,
			Spec:               spec,
		}); err != nil {
			return uuid.Nil, fmt.Errorf("insert guitar specification: %w", err)
		}
	}
	return id, nil
}

// updateGuitar merges the payload into an existing unit. A resolved model
// identifier upgrades a fallback-only record to a proper model link; the
// serial number itself is never rewritten.
func updateGuitar(ctx context.Context, st Store, id uuid.UUID, modelID *uuid.UUID, in *GuitarPayload) error {
	upd := GuitarUpdate{
		ModelID:                  modelID,
		ManufacturerNameFallback: in.ManufacturerNameFallback,
		ModelNameFallback:        in.ModelNameFallback,
		YearEstimate:             in.YearEstimate,
		Description:              in.Description,
		Nickname:                 in.Nickname,
		ProductionDate:           in.ProductionDate,
		ProductionNumber:         in.ProductionNumber,
		SignificanceNotes:        in.SignificanceNotes,
		CurrentEstimatedValue:    in.CurrentEstimatedValue,
		ConditionRating:          in.ConditionRating,
		Modifications:            in.Modifications,
		ProvenanceNotes:          in.ProvenanceNotes,
	}
	if upd.Empty() {
		return nil
	}
	return st.UpdateGuitar(ctx, id, upd)
}

// serialKey derives the normalized match key, or nil when there is no
// usable serial.
func serialKey(serial *string) *string {
	if serial == nil {
		return nil
	}
	key := NormalizeSerial(*serial)
	if key == "" {
		return nil
	}
	return &key
}

func valueOr(p *string, def string) string {
	if p != nil {
		return *p
	}
	return def
}
