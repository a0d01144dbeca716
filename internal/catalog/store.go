package catalog

// store.go declares the storage contract the engine is written against.
// The postgres package provides the production implementation; tests use an
// in-memory fake with the same savepoint semantics. All name lookups are
// case-insensitive and all inserts return the generated identifier.

import (
	"context"

	"github.com/google/uuid"
)

// ManufacturerRecord is a stored manufacturer row.
type ManufacturerRecord struct {
	ID          uuid.UUID
	Name        string
	DisplayName *string
	Country     *string
	FoundedYear *int
	Website     *string
	Status      string
	Notes       *string
}

// ProductLineRecord is a stored product line row, scoped to one manufacturer.
type ProductLineRecord struct {
	ID             uuid.UUID
	ManufacturerID uuid.UUID
	Name           string
}

// ModelRecord is a stored model row. Dates are ISO YYYY-MM-DD strings.
type ModelRecord struct {
	ID                          uuid.UUID
	ManufacturerID              uuid.UUID
	ProductLineID               *uuid.UUID
	Name                        string
	Year                        int
	ProductionType              string
	ProductionStartDate         *string
	ProductionEndDate           *string
	EstimatedProductionQuantity *int
	MSRPOriginal                *float64
	Currency                    string
	Description                 *string
}

// GuitarRecord is a stored individual guitar row. SerialKey holds the
// normalized serial number used as the match key; it is nil when the unit
// has no serial number.
type GuitarRecord struct {
	ID                       uuid.UUID
	ModelID                  *uuid.UUID
	ManufacturerNameFallback *string
	ModelNameFallback        *string
	YearEstimate             *string
	Description              *string
	Nickname                 *string
	SerialNumber             *string
	SerialKey                *string
	ProductionDate           *string
	ProductionNumber         *int
	SignificanceLevel        string
	SignificanceNotes        *string
	CurrentEstimatedValue    *float64
	LastValuationDate        *string
	ConditionRating          *string
	Modifications            *string
	ProvenanceNotes          *string
}

// InsertManufacturerParams carries a fully resolved manufacturer insert.
type InsertManufacturerParams struct {
	Name        string
	DisplayName *string
	Country     *string
	FoundedYear *int
	Website     *string
	Status      string
	Notes       *string
}

// ManufacturerUpdate is a partial update. Nil fields are left untouched,
// which is what makes merges monotonic.
type ManufacturerUpdate struct {
	DisplayName *string
	Country     *string
	FoundedYear *int
	Website     *string
	Status      *string
	Notes       *string
}

// Empty reports whether the update would change nothing.
func (u ManufacturerUpdate) Empty() bool {
	return u.DisplayName == nil && u.Country == nil && u.FoundedYear == nil &&
		u.Website == nil && u.Status == nil && u.Notes == nil
}

// InsertModelParams carries a fully resolved model insert.
type InsertModelParams struct {
	ManufacturerID              uuid.UUID
	ProductLineID               *uuid.UUID
	Name                        string
	Year                        int
	ProductionType              string
	ProductionStartDate         *string
	ProductionEndDate           *string
	EstimatedProductionQuantity *int
	MSRPOriginal                *float64
	Currency                    string
	Description                 *string
}

// ModelUpdate is a partial model update; nil fields are left untouched.
type ModelUpdate struct {
	ProductionStartDate         *string
	ProductionEndDate           *string
	EstimatedProductionQuantity *int
	MSRPOriginal                *float64
	Currency                    *string
	Description                 *string
}

// Empty reports whether the update would change nothing.
func (u ModelUpdate) Empty() bool {
	return u.ProductionStartDate == nil && u.ProductionEndDate == nil &&
		u.EstimatedProductionQuantity == nil && u.MSRPOriginal == nil &&
		u.Currency == nil && u.Description == nil
}

// InsertGuitarParams carries a fully resolved individual-guitar insert.
type InsertGuitarParams struct {
	ModelID                  *uuid.UUID
	ManufacturerNameFallback *string
	ModelNameFallback        *string
	YearEstimate             *string
	Description              *string
	Nickname                 *string
	SerialNumber             *string
	SerialKey                *string
	ProductionDate           *string
	ProductionNumber         *int
	SignificanceLevel        string
	SignificanceNotes        *string
	CurrentEstimatedValue    *float64
	LastValuationDate        *string
	ConditionRating          *string
	Modifications            *string
	ProvenanceNotes          *string
}

// GuitarUpdate is a partial guitar update; nil fields are left untouched.
// A non-nil ModelID upgrades a fallback-only unit to a resolved model link.
type GuitarUpdate struct {
	ModelID                  *uuid.UUID
	ManufacturerNameFallback *string
	ModelNameFallback        *string
	YearEstimate             *string
	Description              *string
	Nickname                 *string
	ProductionDate           *string
	ProductionNumber         *int
	SignificanceNotes        *string
	CurrentEstimatedValue    *float64
	ConditionRating          *string
	Modifications            *string
	ProvenanceNotes          *string
}

// Empty reports whether the update would change nothing.
func (u GuitarUpdate) Empty() bool {
	return u.ModelID == nil && u.ManufacturerNameFallback == nil &&
		u.ModelNameFallback == nil && u.YearEstimate == nil &&
		u.Description == nil && u.Nickname == nil && u.ProductionDate == nil &&
		u.ProductionNumber == nil && u.SignificanceNotes == nil &&
		u.CurrentEstimatedValue == nil && u.ConditionRating == nil &&
		u.Modifications == nil && u.ProvenanceNotes == nil
}

// InsertSpecificationParams carries one specification child row. Exactly one
// of ModelID and IndividualGuitarID must be set.
type InsertSpecificationParams struct {
	ModelID            *uuid.UUID
	IndividualGuitarID *uuid.UUID
	Spec               SpecificationPayload
}

// FallbackQuery narrows the fallback-mode guitar candidate search.
// ManufacturerName is required; the optional fields tighten the match.
type FallbackQuery struct {
	ManufacturerName string
	ModelName        *string
	YearEstimate     *string
}

// Store is the set of catalog operations the engine needs. Implementations
// must make writes from earlier calls visible to later reads within the same
// transaction scope, which is what enables intra-batch deduplication.
type Store interface {
	ListActiveManufacturers(ctx context.Context) ([]ManufacturerRecord, error)
	FindManufacturerByName(ctx context.Context, name string) (*ManufacturerRecord, error)
	InsertManufacturer(ctx context.Context, params InsertManufacturerParams) (uuid.UUID, error)
	UpdateManufacturer(ctx context.Context, id uuid.UUID, upd ManufacturerUpdate) error

	FindProductLine(ctx context.Context, manufacturerID uuid.UUID, name string) (*ProductLineRecord, error)
	InsertProductLine(ctx context.Context, manufacturerID uuid.UUID, name string) (uuid.UUID, error)

	ListModelsByManufacturer(ctx context.Context, manufacturerID uuid.UUID) ([]ModelRecord, error)
	FindModel(ctx context.Context, manufacturerName, modelName string, year int) (*ModelRecord, error)
	InsertModel(ctx context.Context, params InsertModelParams) (uuid.UUID, error)
	UpdateModel(ctx context.Context, id uuid.UUID, upd ModelUpdate) error

	FindGuitarBySerialKey(ctx context.Context, serialKey string) (*GuitarRecord, error)
	ListGuitarsByModel(ctx context.Context, modelID uuid.UUID) ([]GuitarRecord, error)
	ListGuitarsByFallback(ctx context.Context, q FallbackQuery) ([]GuitarRecord, error)
	InsertGuitar(ctx context.Context, params InsertGuitarParams) (uuid.UUID, error)
	UpdateGuitar(ctx context.Context, id uuid.UUID, upd GuitarUpdate) error

	InsertSpecification(ctx context.Context, params InsertSpecificationParams) (uuid.UUID, error)
}

// Tx is a transaction scope over the store. Begin opens a nested transaction
// (a savepoint) so one submission can be rolled back without discarding the
// rest of the batch.
type Tx interface {
	Store
	Begin(ctx context.Context) (Tx, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TxBeginner opens the transaction that scopes a whole batch.
type TxBeginner interface {
	Begin(ctx context.Context) (Tx, error)
}

// BatchRecorder persists batch outcomes for the ingestion history. Recording
// is best-effort; failures are logged, never surfaced to the submitter.
type BatchRecorder interface {
	RecordBatch(ctx context.Context, result *BatchResult) error
}
