package catalog

// policy.go centralizes every matching threshold and score bonus as a named
// field, so the cutoffs can be tuned and tested independently of the scoring
// formulas in match.go.

import "github.com/google/uuid"

// Policy holds the confidence thresholds and score bonuses used by candidate
// matching and action resolution.
type Policy struct {
	// Candidate floors: candidates scoring below these are discarded.
	ManufacturerFloor float64
	ModelFloor        float64
	GuitarFloor       float64

	// Action thresholds for manufacturers and models. Scores at or above
	// UpdateThreshold merge into the best candidate; scores in
	// [ReviewThreshold, UpdateThreshold) suspend the submission for manual
	// review; anything lower inserts a new entity.
	UpdateThreshold float64
	ReviewThreshold float64

	// Score bonuses.
	CountryBonus        float64 // manufacturer: incoming country equals candidate's
	FoundedYearBonus    float64 // manufacturer: incoming founding year equals candidate's
	ModelYearBonus      float64 // model: years match exactly
	ProductionDateBonus float64 // guitar: production dates match exactly
	FallbackBaseBonus   float64 // guitar fallback mode: manufacturer name matched
	FallbackModelBonus  float64 // guitar fallback mode: model names match case-insensitively
	FallbackYearBonus   float64 // guitar fallback mode: year estimates match exactly
}

// DefaultPolicy returns the tuned production thresholds.
func DefaultPolicy() Policy {
	return Policy{
		ManufacturerFloor:   0.7,
		ModelFloor:          0.8,
		GuitarFloor:         0.5,
		UpdateThreshold:     0.95,
		ReviewThreshold:     0.85,
		CountryBonus:        0.1,
		FoundedYearBonus:    0.1,
		ModelYearBonus:      0.3,
		ProductionDateBonus: 0.5,
		FallbackBaseBonus:   0.3,
		FallbackModelBonus:  0.4,
		FallbackYearBonus:   0.3,
	}
}

// Candidate is one existing entity a payload might resolve to, with the
// confidence that they are the same real-world entity.
type Candidate struct {
	ID          uuid.UUID
	Confidence  float64
	Summary     string // human-readable identification for conflict notes
	SerialMatch bool   // guitars only: matched on normalized serial number
}

// Decision is the resolved action for one payload.
type Decision struct {
	Action     Action
	TargetID   uuid.UUID // set for ActionUpdate and ActionReview
	Confidence float64
	Conflict   string // set for ActionReview
}

// Resolve maps an entity kind and its best candidate to an action. It is a
// pure function: no candidate always means insert, and individual guitars
// only ever auto-merge on an exact serial-number match — fallback-text
// similarity alone is deliberately never grounds for a merge.
func (p Policy) Resolve(kind EntityKind, best *Candidate) Decision {
	if best == nil {
		return Decision{Action: ActionInsert, Confidence: 1.0}
	}

	if kind == KindIndividualGuitar {
		if best.SerialMatch {
			return Decision{Action: ActionUpdate, TargetID: best.ID, Confidence: best.Confidence}
		}
		return Decision{Action: ActionInsert, Confidence: 1.0}
	}

	switch {
	case best.Confidence >= p.UpdateThreshold:
		return Decision{Action: ActionUpdate, TargetID: best.ID, Confidence: best.Confidence}
	case best.Confidence >= p.ReviewThreshold:
		return Decision{
			Action:     ActionReview,
			TargetID:   best.ID,
			Confidence: best.Confidence,
			Conflict:   best.Summary,
		}
	default:
		return Decision{Action: ActionInsert, Confidence: 1.0}
	}
}

// clampScore caps additive scores at 1.0 so the serial-number exact match
// stays the only way to reach full confidence.
func clampScore(s float64) float64 {
	if s > 1.0 {
		return 1.0
	}
	return s
}
