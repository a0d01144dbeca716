package catalog

import (
	"testing"

	"github.com/google/uuid"
)

func TestResolveManufacturer(t *testing.T) {
	pol := DefaultPolicy()
	target := uuid.New()

	tests := []struct {
		name string
		best *Candidate
		want Action
	}{
		{"no candidate", nil, ActionInsert},
		{"confident match", &Candidate{ID: target, Confidence: 0.97}, ActionUpdate},
		{"at update threshold", &Candidate{ID: target, Confidence: 0.95}, ActionUpdate},
		{"ambiguous match", &Candidate{ID: target, Confidence: 0.9}, ActionReview},
		{"at review threshold", &Candidate{ID: target, Confidence: 0.85}, ActionReview},
		{"weak match", &Candidate{ID: target, Confidence: 0.8}, ActionInsert},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := pol.Resolve(KindManufacturer, tt.best)
			if dec.Action != tt.want {
				t.Errorf("got %s, want %s", dec.Action, tt.want)
			}
			if tt.want != ActionInsert && dec.TargetID != target {
				t.Errorf("target id not carried through")
			}
		})
	}
}

func TestResolveGuitarMergesOnlyOnSerial(t *testing.T) {
	pol := DefaultPolicy()
	target := uuid.New()

	dec := pol.Resolve(KindIndividualGuitar, &Candidate{ID: target, Confidence: 1.0, SerialMatch: true})
	if dec.Action != ActionUpdate {
		t.Fatalf("serial match should update, got %s", dec.Action)
	}

	// Even a full-confidence fallback score is not grounds for a merge.
	dec = pol.Resolve(KindIndividualGuitar, &Candidate{ID: target, Confidence: 1.0})
	if dec.Action != ActionInsert {
		t.Fatalf("non-serial match should insert, got %s", dec.Action)
	}

	dec = pol.Resolve(KindIndividualGuitar, nil)
	if dec.Action != ActionInsert {
		t.Fatalf("no candidate should insert, got %s", dec.Action)
	}
}

func TestClampScore(t *testing.T) {
	if got := clampScore(1.2); got != 1.0 {
		t.Errorf("clampScore(1.2) = %v, want 1.0", got)
	}
	if got := clampScore(0.7); got != 0.7 {
		t.Errorf("clampScore(0.7) = %v, want 0.7", got)
	}
}
