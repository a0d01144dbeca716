// Package catalog implements the uniqueness-resolution and batch-ingestion
// engine for the guitar registry. Submitted records are validated, matched
// against existing catalog entities with a confidence score, and then
// inserted, merged, or flagged for manual review. Batches run inside a single
// transaction with a commit/rollback decision made once per batch.
//
// The package has no HTTP or CLI dependencies and talks to storage only
// through the Store interface, so the whole engine can be exercised against
// an in-memory fake.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// EntityKind identifies one of the three resolvable entity kinds.
type EntityKind string

const (
	KindManufacturer     EntityKind = "manufacturer"
	KindModel            EntityKind = "model"
	KindIndividualGuitar EntityKind = "individual_guitar"
)

// Action is the resolution outcome for a single entity payload.
type Action string

const (
	ActionInsert Action = "insert"
	ActionUpdate Action = "update"
	ActionReview Action = "manual_review"
)

// ManufacturerPayload is a submitted manufacturer record.
// Optional fields are pointers; nil means "not provided" and is never
// merged over existing data.
type ManufacturerPayload struct {
	Name        string  `json:"name"`
	DisplayName *string `json:"display_name,omitempty"`
	Country     *string `json:"country,omitempty"`
	FoundedYear *int    `json:"founded_year,omitempty"`
	Website     *string `json:"website,omitempty"`
	Status      *string `json:"status,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// SpecificationPayload is a free-form physical/material description attached
// to either a model or an individual guitar.
type SpecificationPayload struct {
	BodyWood               *string  `json:"body_wood,omitempty"`
	NeckWood               *string  `json:"neck_wood,omitempty"`
	FingerboardWood        *string  `json:"fingerboard_wood,omitempty"`
	ScaleLengthInches      *float64 `json:"scale_length_inches,omitempty"`
	NumFrets               *int     `json:"num_frets,omitempty"`
	NutWidthInches         *float64 `json:"nut_width_inches,omitempty"`
	NeckProfile            *string  `json:"neck_profile,omitempty"`
	BridgeType             *string  `json:"bridge_type,omitempty"`
	PickupConfiguration    *string  `json:"pickup_configuration,omitempty"`
	ElectronicsDescription *string  `json:"electronics_description,omitempty"`
	HardwareFinish         *string  `json:"hardware_finish,omitempty"`
	BodyFinish             *string  `json:"body_finish,omitempty"`
	WeightLbs              *float64 `json:"weight_lbs,omitempty"`
	CaseIncluded           *bool    `json:"case_included,omitempty"`
	CaseType               *string  `json:"case_type,omitempty"`
}

// SpecificationList accepts either a single specification object or an array
// of them, matching the wire format submitters already use.
type SpecificationList []SpecificationPayload

// UnmarshalJSON implements the object-or-array decoding.
func (l *SpecificationList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*l = nil
		return nil
	}
	if trimmed[0] == '[' {
		var many []SpecificationPayload
		if err := json.Unmarshal(data, &many); err != nil {
			return err
		}
		*l = many
		return nil
	}
	var one SpecificationPayload
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = SpecificationList{one}
	return nil
}

// ModelPayload is a submitted model record. The manufacturer is named by
// text and resolved to an identifier at write time.
type ModelPayload struct {
	ManufacturerName            string            `json:"manufacturer_name"`
	ProductLineName             *string           `json:"product_line_name,omitempty"`
	Name                        string            `json:"name"`
	Year                        int               `json:"year"`
	ProductionType              *string           `json:"production_type,omitempty"`
	ProductionStartDate         *string           `json:"production_start_date,omitempty"`
	ProductionEndDate           *string           `json:"production_end_date,omitempty"`
	EstimatedProductionQuantity *int              `json:"estimated_production_quantity,omitempty"`
	MSRPOriginal                *float64          `json:"msrp_original,omitempty"`
	Currency                    *string           `json:"currency,omitempty"`
	Description                 *string           `json:"description,omitempty"`
	Specifications              SpecificationList `json:"specifications,omitempty"`
}

// ModelReference names a catalogued model by manufacturer, model name, and
// year. All three are required for a reference to resolve.
type ModelReference struct {
	ManufacturerName string `json:"manufacturer_name"`
	ModelName        string `json:"model_name"`
	Year             int    `json:"year"`
}

// GuitarPayload is a submitted individual-guitar record. It carries a dual
// identity: a structured ModelReference when the unit can be tied to a
// catalogued model, or free-text fallback fields when it cannot.
type GuitarPayload struct {
	ModelReference *ModelReference `json:"model_reference,omitempty"`

	ManufacturerNameFallback *string `json:"manufacturer_name_fallback,omitempty"`
	ModelNameFallback        *string `json:"model_name_fallback,omitempty"`
	YearEstimate             *string `json:"year_estimate,omitempty"`
	Description              *string `json:"description,omitempty"`

	Nickname              *string           `json:"nickname,omitempty"`
	SerialNumber          *string           `json:"serial_number,omitempty"`
	ProductionDate        *string           `json:"production_date,omitempty"`
	ProductionNumber      *int              `json:"production_number,omitempty"`
	SignificanceLevel     *string           `json:"significance_level,omitempty"`
	SignificanceNotes     *string           `json:"significance_notes,omitempty"`
	CurrentEstimatedValue *float64          `json:"current_estimated_value,omitempty"`
	LastValuationDate     *string           `json:"last_valuation_date,omitempty"`
	ConditionRating       *string           `json:"condition_rating,omitempty"`
	Modifications         *string           `json:"modifications,omitempty"`
	ProvenanceNotes       *string           `json:"provenance_notes,omitempty"`
	Specifications        SpecificationList `json:"specifications,omitempty"`
}

// Submission bundles up to three entity payloads. Within a submission they
// are always processed manufacturer -> model -> guitar, because later
// payloads name earlier entities by text.
type Submission struct {
	Manufacturer     *ManufacturerPayload `json:"manufacturer,omitempty"`
	Model            *ModelPayload        `json:"model,omitempty"`
	IndividualGuitar *GuitarPayload       `json:"individual_guitar,omitempty"`
}

// Empty reports whether the submission carries no payload at all.
func (s Submission) Empty() bool {
	return s.Manufacturer == nil && s.Model == nil && s.IndividualGuitar == nil
}

// ParseSubmissions decodes a request body that is either a single submission
// object or an ordered array of them. The second return value reports whether
// the input was a batch.
func ParseSubmissions(data []byte) ([]Submission, bool, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty submission body")
	}
	if trimmed[0] == '[' {
		var subs []Submission
		if err := json.Unmarshal(trimmed, &subs); err != nil {
			return nil, true, fmt.Errorf("decode submission batch: %w", err)
		}
		return subs, true, nil
	}
	var sub Submission
	if err := json.Unmarshal(trimmed, &sub); err != nil {
		return nil, false, fmt.Errorf("decode submission: %w", err)
	}
	return []Submission{sub}, false, nil
}

// SubmissionResult is the per-item outcome returned to callers.
type SubmissionResult struct {
	Index              int            `json:"index"`
	Success            bool           `json:"success"`
	ActionsTaken       []string       `json:"actions_taken"`
	Conflicts          []string       `json:"conflicts"`
	IDsCreated         map[string]any `json:"ids_created"`
	ManualReviewNeeded bool           `json:"manual_review_needed"`
	Error              string         `json:"error,omitempty"`
}

// ActionCounts aggregates write actions across a batch.
type ActionCounts struct {
	ManufacturersInserted int `json:"manufacturers_inserted"`
	ManufacturersUpdated  int `json:"manufacturers_updated"`
	ModelsInserted        int `json:"models_inserted"`
	ModelsUpdated         int `json:"models_updated"`
	GuitarsInserted       int `json:"guitars_inserted"`
	GuitarsUpdated        int `json:"guitars_updated"`
}

func (c *ActionCounts) add(other ActionCounts) {
	c.ManufacturersInserted += other.ManufacturersInserted
	c.ManufacturersUpdated += other.ManufacturersUpdated
	c.ModelsInserted += other.ModelsInserted
	c.ModelsUpdated += other.ModelsUpdated
	c.GuitarsInserted += other.GuitarsInserted
	c.GuitarsUpdated += other.GuitarsUpdated
}

// BatchSummary aggregates per-item outcomes for a batch.
type BatchSummary struct {
	Successful         int          `json:"successful"`
	Failed             int          `json:"failed"`
	ManualReviewNeeded int          `json:"manual_review_needed"`
	ActionsTaken       ActionCounts `json:"actions_taken"`
}

// BatchResult is the aggregate outcome of a batch call. ProcessedCount
// counts submissions attempted, successful or not. RolledBack and
// PartialSuccess describe the commit decision: when RolledBack is true no
// writes from the batch survived.
type BatchResult struct {
	Success        bool               `json:"success"`
	ProcessedCount int                `json:"processed_count"`
	TotalCount     int                `json:"total_count"`
	Results        []SubmissionResult `json:"results"`
	Summary        BatchSummary       `json:"summary"`
	RolledBack     bool               `json:"rolled_back,omitempty"`
	RollbackReason string             `json:"rollback_reason,omitempty"`
	PartialSuccess bool               `json:"partial_success,omitempty"`
	Error          string             `json:"error,omitempty"`
}
