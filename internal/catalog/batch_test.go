package catalog

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func newTestProcessor(db *memDB) *Processor {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProcessor(db, DefaultPolicy(), log, nil)
}

func mfrSub(name string) Submission {
	return Submission{Manufacturer: &ManufacturerPayload{Name: name}}
}

func TestProcessOneFullSubmission(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)

	res := p.ProcessOne(context.Background(), Submission{
		Manufacturer: &ManufacturerPayload{
			Name:        "Gibson",
			Country:     strPtr("USA"),
			FoundedYear: intPtr(1902),
		},
		Model: &ModelPayload{
			ManufacturerName: "Gibson",
			ProductLineName:  strPtr("Les Paul"),
			Name:             "Les Paul Standard",
			Year:             1959,
		},
		IndividualGuitar: &GuitarPayload{
			ModelReference: &ModelReference{ManufacturerName: "Gibson", ModelName: "Les Paul Standard", Year: 1959},
			SerialNumber:   strPtr("9-0824"),
			Nickname:       strPtr("The Burst"),
		},
	})

	if !res.Success {
		t.Fatalf("submission failed: %s", res.Error)
	}
	for _, key := range []string{"manufacturer_id", "model_id", "individual_guitar_id"} {
		if _, ok := res.IDsCreated[key]; !ok {
			t.Errorf("missing created id %q in %v", key, res.IDsCreated)
		}
	}
	if len(db.state.manufacturers) != 1 || len(db.state.models) != 1 || len(db.state.guitars) != 1 {
		t.Fatalf("unexpected row counts: %d/%d/%d",
			len(db.state.manufacturers), len(db.state.models), len(db.state.guitars))
	}
	if len(db.state.productLines) != 1 {
		t.Errorf("product line was not created")
	}

	g := db.state.guitars[0]
	if g.ModelID == nil {
		t.Error("guitar not linked to its model")
	}
	if g.SerialKey == nil || *g.SerialKey != "90824" {
		t.Errorf("serial key not normalized: %v", g.SerialKey)
	}
	if g.SignificanceLevel != "notable" {
		t.Errorf("default significance not applied: %q", g.SignificanceLevel)
	}
}

func TestMergeNeverOverwritesWithAbsence(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	p.ProcessOne(ctx, Submission{Manufacturer: &ManufacturerPayload{
		Name:    "Gibson",
		Country: strPtr("USA"),
	}})

	res := p.ProcessOne(ctx, Submission{Manufacturer: &ManufacturerPayload{
		Name:    "Gibson",
		Website: strPtr("https://gibson.com"),
	}})
	if !res.Success {
		t.Fatalf("second submission failed: %s", res.Error)
	}

	if len(db.state.manufacturers) != 1 {
		t.Fatalf("expected a merge, got %d manufacturers", len(db.state.manufacturers))
	}
	m := db.state.manufacturers[0]
	if m.Country == nil || *m.Country != "USA" {
		t.Errorf("absent country overwrote existing value: %v", m.Country)
	}
	if m.Website == nil || *m.Website != "https://gibson.com" {
		t.Errorf("website not merged in: %v", m.Website)
	}
}

func TestBatchRollsBackOnMajorityFailure(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)

	result := p.ProcessBatch(context.Background(), []Submission{
		mfrSub("Gibson"),
		mfrSub(""), // schema violation
		mfrSub(""),
		mfrSub(""),
		mfrSub("Fender"),
	})

	if !result.RolledBack {
		t.Fatal("batch with 60% failures must roll back")
	}
	if result.Success || result.PartialSuccess {
		t.Errorf("rolled-back batch reported success: %+v", result)
	}
	if result.ProcessedCount != 5 {
		t.Errorf("ProcessedCount = %d, want all 5 attempted", result.ProcessedCount)
	}
	if result.RollbackReason == "" {
		t.Error("rollback reason missing")
	}
	if len(db.state.manufacturers) != 0 {
		t.Fatalf("rollback left %d rows behind", len(db.state.manufacturers))
	}
	if got := result.Summary.ActionsTaken; got != (ActionCounts{}) {
		t.Errorf("summary reports actions that were rolled back: %+v", got)
	}
}

func TestBatchCommitsPartialSuccess(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)

	result := p.ProcessBatch(context.Background(), []Submission{
		mfrSub("Gibson"),
		mfrSub("Fender"),
		mfrSub(""),
		mfrSub(""),
		mfrSub("Martin"),
	})

	if result.RolledBack {
		t.Fatal("batch with 40% failures must commit")
	}
	if result.Success || !result.PartialSuccess {
		t.Errorf("want partial success, got %+v", result)
	}
	if result.ProcessedCount != 5 {
		t.Errorf("ProcessedCount = %d, want all 5 attempted", result.ProcessedCount)
	}
	if result.Summary.Failed != 2 || result.Summary.Successful != 3 {
		t.Errorf("summary counts wrong: %+v", result.Summary)
	}
	if len(db.state.manufacturers) != 3 {
		t.Fatalf("expected 3 committed manufacturers, got %d", len(db.state.manufacturers))
	}
}

func TestFailedSubmissionContributesNoRows(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)

	// The first submission's manufacturer insert succeeds, then its model
	// fails validation. The whole submission must be discarded while the
	// second one survives.
	result := p.ProcessBatch(context.Background(), []Submission{
		{
			Manufacturer: &ManufacturerPayload{Name: "Gibson"},
			Model:        &ModelPayload{ManufacturerName: "Gibson", Name: "Les Paul", Year: 1850},
		},
		mfrSub("Fender"),
	})

	if result.RolledBack {
		t.Fatal("half failed is not a majority; batch must commit")
	}
	if len(db.state.manufacturers) != 1 {
		t.Fatalf("expected only Fender, got %d manufacturers", len(db.state.manufacturers))
	}
	if db.state.manufacturers[0].Name != "Fender" {
		t.Errorf("wrong survivor: %q", db.state.manufacturers[0].Name)
	}
	if result.Summary.ActionsTaken.ManufacturersInserted != 1 {
		t.Errorf("summary counted rolled-back inserts: %+v", result.Summary.ActionsTaken)
	}
}

func TestBatchDeduplicatesWithinItself(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)

	result := p.ProcessBatch(context.Background(), []Submission{
		{Manufacturer: &ManufacturerPayload{Name: "Gibson", Country: strPtr("USA")}},
		{Manufacturer: &ManufacturerPayload{Name: "Gibson", Website: strPtr("https://gibson.com")}},
		{Model: &ModelPayload{ManufacturerName: "Gibson", Name: "SG Standard", Year: 1961}},
	})

	if !result.Success {
		t.Fatalf("batch failed: %+v", result)
	}
	if len(db.state.manufacturers) != 1 {
		t.Fatalf("duplicate manufacturer inserted: %d rows", len(db.state.manufacturers))
	}
	got := result.Summary.ActionsTaken
	if got.ManufacturersInserted != 1 || got.ManufacturersUpdated != 1 {
		t.Errorf("want 1 insert + 1 update, got %+v", got)
	}
	// The model submission saw the manufacturer inserted earlier in the
	// same batch.
	if got.ModelsInserted != 1 {
		t.Errorf("model referencing in-batch manufacturer failed: %+v", result.Results[2])
	}
}

func TestNearDuplicateModelMergesInsteadOfInserting(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	seed := p.ProcessOne(ctx, Submission{
		Manufacturer: &ManufacturerPayload{Name: "Gibson"},
		Model:        &ModelPayload{ManufacturerName: "Gibson", Name: "Les Paul Special", Year: 1959},
	})
	if !seed.Success {
		t.Fatalf("seed submission failed: %s", seed.Error)
	}

	// A truncated name in the same year resolves to the existing row.
	res := p.ProcessOne(ctx, Submission{Model: &ModelPayload{
		ManufacturerName: "Gibson",
		Name:             "Les Paul",
		Year:             1959,
		Description:      strPtr("dealer listing"),
	}})
	if !res.Success {
		t.Fatalf("merge submission failed: %s", res.Error)
	}
	if len(db.state.models) != 1 {
		t.Fatalf("near-duplicate model inserted a second row: %d models", len(db.state.models))
	}
	if len(res.ActionsTaken) != 1 || !strings.Contains(res.ActionsTaken[0], "updated model") {
		t.Errorf("want a model update, got %v", res.ActionsTaken)
	}
	if db.state.models[0].Description == nil {
		t.Error("merge did not apply the description")
	}
}

func TestCorroboratedManufacturerVariantGoesToReview(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	p.ProcessOne(ctx, Submission{Manufacturer: &ManufacturerPayload{
		Name:        "Gretsch Company",
		Country:     strPtr("USA"),
		FoundedYear: intPtr(1883),
	}})

	// The name alone is under the floor, but matching country and founding
	// year push the score into the review band.
	res := p.ProcessOne(ctx, Submission{Manufacturer: &ManufacturerPayload{
		Name:        "Gretsch Mfg",
		Country:     strPtr("USA"),
		FoundedYear: intPtr(1883),
	}})
	if res.Success {
		t.Fatal("corroborated name variant must not be applied")
	}
	if !res.ManualReviewNeeded {
		t.Fatalf("want manual review, got error %q", res.Error)
	}
	if len(db.state.manufacturers) != 1 {
		t.Fatalf("review-flagged submission wrote rows: %d", len(db.state.manufacturers))
	}
}

func TestSchemaViolationsListedAsConflicts(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)

	res := p.ProcessOne(context.Background(), Submission{Manufacturer: &ManufacturerPayload{
		Name:        "",
		FoundedYear: intPtr(1700),
	}})

	if res.Success {
		t.Fatal("invalid submission must fail")
	}
	joined := strings.Join(res.Conflicts, "; ")
	for _, want := range []string{"name:", "founded_year:"} {
		if !strings.Contains(joined, want) {
			t.Errorf("conflicts missing %q violation: %v", want, res.Conflicts)
		}
	}
}

func TestAmbiguousMatchGoesToManualReview(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	p.ProcessOne(ctx, mfrSub("Gretsch Guitars"))

	res := p.ProcessOne(ctx, mfrSub("Gretsch Guitar Co"))
	if res.Success {
		t.Fatal("ambiguous match must not be applied")
	}
	if !res.ManualReviewNeeded {
		t.Fatalf("want manual review, got error %q", res.Error)
	}
	if len(res.Conflicts) == 0 {
		t.Error("conflict description missing")
	}
	if len(db.state.manufacturers) != 1 {
		t.Fatalf("review-flagged submission wrote rows: %d", len(db.state.manufacturers))
	}
}

func TestManualReviewCountsAsFailed(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	p.ProcessOne(ctx, mfrSub("Gretsch Guitars"))

	result := p.ProcessBatch(ctx, []Submission{
		mfrSub("Fender"),
		mfrSub("Gretsch Guitar Co"),
		mfrSub("Martin"),
	})

	if result.Summary.ManualReviewNeeded != 1 {
		t.Errorf("manual review count = %d, want 1", result.Summary.ManualReviewNeeded)
	}
	if result.Summary.Failed != 1 {
		t.Errorf("review item must count as failed, summary: %+v", result.Summary)
	}
	if !result.PartialSuccess {
		t.Errorf("want partial success, got %+v", result)
	}
}

func TestSerialVariantsMergeToOneUnit(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	first := p.ProcessOne(ctx, Submission{IndividualGuitar: &GuitarPayload{
		ManufacturerNameFallback: strPtr("Gibson"),
		Description:              strPtr("1959 sunburst, single owner"),
		SerialNumber:             strPtr("9-0824"),
	}})
	if !first.Success {
		t.Fatalf("seed submission failed: %s", first.Error)
	}

	second := p.ProcessOne(ctx, Submission{IndividualGuitar: &GuitarPayload{
		ManufacturerNameFallback: strPtr("Gibson"),
		Description:              strPtr("seen at auction"),
		SerialNumber:             strPtr("090824"),
		Nickname:                 strPtr("The Burst"),
	}})
	if !second.Success {
		t.Fatalf("merge submission failed: %s", second.Error)
	}

	if len(db.state.guitars) != 1 {
		t.Fatalf("serial variants created %d units, want 1", len(db.state.guitars))
	}
	g := db.state.guitars[0]
	if g.Nickname == nil || *g.Nickname != "The Burst" {
		t.Errorf("merge did not apply nickname: %v", g.Nickname)
	}
	if g.SerialNumber == nil || *g.SerialNumber != "9-0824" {
		t.Errorf("original serial was rewritten: %v", g.SerialNumber)
	}
}

func TestModelWithUnknownManufacturerFails(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)

	res := p.ProcessOne(context.Background(), Submission{Model: &ModelPayload{
		ManufacturerName: "Nonexistent Guitars",
		Name:             "Phantom",
		Year:             1970,
	}})

	if res.Success {
		t.Fatal("model with unknown manufacturer must fail")
	}
	if !strings.Contains(res.Error, "not found") {
		t.Errorf("error does not name the missing dependency: %q", res.Error)
	}
	if len(db.state.models) != 0 {
		t.Errorf("failed submission wrote %d models", len(db.state.models))
	}
}

func TestUnresolvableReferenceFallsBackWhenPossible(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	// Reference resolves to nothing, but the fallback identity carries
	// the record.
	res := p.ProcessOne(ctx, Submission{IndividualGuitar: &GuitarPayload{
		ModelReference:           &ModelReference{ManufacturerName: "Gibson", ModelName: "Moderne", Year: 1957},
		ManufacturerNameFallback: strPtr("Gibson"),
		Description:              strPtr("prototype, provenance unclear"),
	}})
	if !res.Success {
		t.Fatalf("fallback path failed: %s", res.Error)
	}
	if db.state.guitars[0].ModelID != nil {
		t.Error("unresolved reference must leave the model link empty")
	}

	// Without fallback identification the dangling reference is fatal.
	res = p.ProcessOne(ctx, Submission{IndividualGuitar: &GuitarPayload{
		ModelReference: &ModelReference{ManufacturerName: "Gibson", ModelName: "Moderne", Year: 1957},
	}})
	if res.Success {
		t.Fatal("dangling reference without fallback must fail")
	}
	if !strings.Contains(res.Error, "not found") {
		t.Errorf("unexpected error: %q", res.Error)
	}
}

func TestEmptySubmissionAndEmptyBatch(t *testing.T) {
	db := newMemDB()
	p := newTestProcessor(db)
	ctx := context.Background()

	res := p.ProcessOne(ctx, Submission{})
	if res.Success {
		t.Fatal("empty submission must fail")
	}

	result := p.ProcessBatch(ctx, nil)
	if result.Error == "" {
		t.Fatal("empty batch must be an error")
	}
}
