package catalog

// match.go finds existing entities a payload might refer to. Each finder
// returns candidates sorted by descending confidence; the policy in
// policy.go turns the best candidate into an action.

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// FindManufacturerMatches scores the incoming manufacturer against every
// non-defunct manufacturer on record. The score is name similarity plus the
// country and founding-year bonuses; the floor applies to the bonused score,
// so corroborating fields can lift a weak name match into contention. The
// bonuses apply only when the field is present on both sides and equal.
func FindManufacturerMatches(ctx context.Context, st Store, pol Policy, in *ManufacturerPayload) ([]Candidate, error) {
	existing, err := st.ListActiveManufacturers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list manufacturers: %w", err)
	}

	var out []Candidate
	for _, rec := range existing {
		score := NameSimilarity(in.Name, rec.Name)
		if equalFoldPtr(in.Country, rec.Country) {
			score += pol.CountryBonus
		}
		if in.FoundedYear != nil && rec.FoundedYear != nil && *in.FoundedYear == *rec.FoundedYear {
			score += pol.FoundedYearBonus
		}
		if score < pol.ManufacturerFloor {
			continue
		}
		out = append(out, Candidate{
			ID:         rec.ID,
			Confidence: clampScore(score),
			Summary:    manufacturerSummary(rec),
		})
	}
	sortCandidates(out)
	return out, nil
}

// FindModelMatches scores the incoming model against the models of one
// manufacturer. The year is a hard filter: a candidate from a different year
// is never the same model, no matter how similar the names are. Surviving
// candidates score name similarity plus the year bonus, and the floor applies
// to the bonused score.
func FindModelMatches(ctx context.Context, st Store, pol Policy, manufacturerID uuid.UUID, in *ModelPayload) ([]Candidate, error) {
	existing, err := st.ListModelsByManufacturer(ctx, manufacturerID)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}

	var out []Candidate
	for _, rec := range existing {
		if rec.Year != in.Year {
			continue
		}
		score := NameSimilarity(in.Name, rec.Name) + pol.ModelYearBonus
		if score < pol.ModelFloor {
			continue
		}
		out = append(out, Candidate{
			ID:         rec.ID,
			Confidence: clampScore(score),
			Summary:    fmt.Sprintf("%s (%d)", rec.Name, rec.Year),
		})
	}
	sortCandidates(out)
	return out, nil
}

// FindGuitarMatches scores the incoming guitar against existing units. An
// exact normalized serial-number match short-circuits at full confidence.
// Without a serial the search runs in one of two modes: scoped to the
// resolved model when the payload carries one, or over units sharing the
// same fallback manufacturer text when it does not, narrowed by fallback
// model name and year estimate when those are present.
func FindGuitarMatches(ctx context.Context, st Store, pol Policy, modelID *uuid.UUID, in *GuitarPayload) ([]Candidate, error) {
	if in.SerialNumber != nil {
		if key := NormalizeSerial(*in.SerialNumber); key != "" {
			rec, err := st.FindGuitarBySerialKey(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("find guitar by serial: %w", err)
			}
			if rec != nil {
				return []Candidate{{
					ID:          rec.ID,
					Confidence:  1.0,
					Summary:     guitarSummary(*rec),
					SerialMatch: true,
				}}, nil
			}
		}
	}

	if modelID != nil {
		return matchGuitarsByModel(ctx, st, pol, *modelID, in)
	}
	if in.ManufacturerNameFallback != nil {
		return matchGuitarsByFallback(ctx, st, pol, in)
	}
	return nil, nil
}

func matchGuitarsByModel(ctx context.Context, st Store, pol Policy, modelID uuid.UUID, in *GuitarPayload) ([]Candidate, error) {
	existing, err := st.ListGuitarsByModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("list guitars by model: %w", err)
	}

	var out []Candidate
	for _, rec := range existing {
		var score float64
		if equalPtr(in.ProductionDate, rec.ProductionDate) {
			score += pol.ProductionDateBonus
		}
		if score < pol.GuitarFloor {
			continue
		}
		out = append(out, Candidate{
			ID:         rec.ID,
			Confidence: clampScore(score),
			Summary:    guitarSummary(rec),
		})
	}
	sortCandidates(out)
	return out, nil
}

func matchGuitarsByFallback(ctx context.Context, st Store, pol Policy, in *GuitarPayload) ([]Candidate, error) {
	existing, err := st.ListGuitarsByFallback(ctx, FallbackQuery{
		ManufacturerName: *in.ManufacturerNameFallback,
		ModelName:        in.ModelNameFallback,
		YearEstimate:     in.YearEstimate,
	})
	if err != nil {
		return nil, fmt.Errorf("list guitars by fallback: %w", err)
	}

	var out []Candidate
	for _, rec := range existing {
		if !equalFoldPtr(in.ManufacturerNameFallback, rec.ManufacturerNameFallback) {
			continue
		}
		score := pol.FallbackBaseBonus
		if equalFoldPtr(in.ModelNameFallback, rec.ModelNameFallback) {
			score += pol.FallbackModelBonus
		}
		if equalPtr(in.YearEstimate, rec.YearEstimate) {
			score += pol.FallbackYearBonus
		}
		if score < pol.GuitarFloor {
			continue
		}
		out = append(out, Candidate{
			ID:         rec.ID,
			Confidence: clampScore(score),
			Summary:    guitarSummary(rec),
		})
	}
	sortCandidates(out)
	return out, nil
}

func sortCandidates(cs []Candidate) {
	sort.SliceStable(cs, func(i, j int) bool {
		return cs[i].Confidence > cs[j].Confidence
	})
}

func manufacturerSummary(rec ManufacturerRecord) string {
	if rec.Country != nil {
		return fmt.Sprintf("%s (%s)", rec.Name, *rec.Country)
	}
	return rec.Name
}

func guitarSummary(rec GuitarRecord) string {
	switch {
	case rec.SerialNumber != nil:
		return fmt.Sprintf("serial %s", *rec.SerialNumber)
	case rec.Nickname != nil:
		return fmt.Sprintf("%q", *rec.Nickname)
	case rec.Description != nil:
		return *rec.Description
	default:
		return rec.ID.String()
	}
}
