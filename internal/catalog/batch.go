package catalog

// batch.go coordinates submission processing. A batch runs inside one outer
// transaction; each submission gets a nested transaction so its writes can
// be discarded individually while keeping earlier successes visible to later
// submissions. The commit decision is made once, after every submission has
// been attempted: a batch with more than half of its submissions failed is
// rolled back wholesale.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Processor runs submissions against the catalog.
type Processor struct {
	db       TxBeginner
	policy   Policy
	log      *slog.Logger
	recorder BatchRecorder
}

// NewProcessor builds a Processor. recorder may be nil to disable batch
// history recording.
func NewProcessor(db TxBeginner, policy Policy, log *slog.Logger, recorder BatchRecorder) *Processor {
	if log == nil {
		log = slog.Default()
	}
	return &Processor{db: db, policy: policy, log: log, recorder: recorder}
}

// ProcessOne runs a single submission in its own transaction. A failed
// submission leaves no rows behind.
func (p *Processor) ProcessOne(ctx context.Context, sub Submission) SubmissionResult {
	batch := p.ProcessBatch(ctx, []Submission{sub})
	if len(batch.Results) == 1 {
		return batch.Results[0]
	}
	return SubmissionResult{
		Index:        0,
		ActionsTaken: []string{},
		Conflicts:    []string{},
		IDsCreated:   map[string]any{},
		Error:        batch.Error,
	}
}

// ProcessBatch runs an ordered batch of submissions and returns the
// aggregate outcome. It never returns an error to the caller; transaction
// and infrastructure failures are reported through BatchResult.Error.
func (p *Processor) ProcessBatch(ctx context.Context, subs []Submission) *BatchResult {
	result := p.run(ctx, subs)
	if p.recorder != nil {
		if err := p.recorder.RecordBatch(ctx, result); err != nil {
			p.log.Warn("failed to record batch history", "error", err)
		}
	}
	return result
}

func (p *Processor) run(ctx context.Context, subs []Submission) (result *BatchResult) {
	result = &BatchResult{
		TotalCount: len(subs),
		Results:    []SubmissionResult{},
	}
	if len(subs) == 0 {
		result.Error = "empty batch"
		return result
	}

	tx, err := p.db.Begin(ctx)
	if err != nil {
		result.Error = fmt.Sprintf("begin transaction: %v", err)
		return result
	}

	// A panic in submission processing must not leave the outer
	// transaction open or commit partial work.
	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback(ctx)
			p.log.Error("batch processing panicked", "panic", r)
			result.Success = false
			result.RolledBack = true
			result.RollbackReason = fmt.Sprintf("internal error: %v", r)
			result.Error = result.RollbackReason
		}
	}()

	p.log.Info("processing batch", "submissions", len(subs))

	for i, sub := range subs {
		res := p.processSubmission(ctx, tx, i, sub)
		result.Results = append(result.Results, res.SubmissionResult)
		result.ProcessedCount++

		if res.Success {
			result.Summary.Successful++
			result.Summary.ActionsTaken.add(res.tally)
		} else {
			result.Summary.Failed++
			if res.ManualReviewNeeded {
				result.Summary.ManualReviewNeeded++
			}
			p.log.Warn("submission failed", "index", i, "error", res.Error)
		}
	}

	if result.Summary.Failed*2 > result.TotalCount {
		reason := fmt.Sprintf("%d of %d submissions failed", result.Summary.Failed, result.TotalCount)
		if err := tx.Rollback(ctx); err != nil {
			p.log.Error("batch rollback failed", "error", err)
		}
		result.Success = false
		result.RolledBack = true
		result.RollbackReason = reason
		result.Summary.ActionsTaken = ActionCounts{}
		p.log.Warn("batch rolled back", "reason", reason)
		return result
	}

	if err := tx.Commit(ctx); err != nil {
		result.Success = false
		result.Error = fmt.Sprintf("commit batch: %v", err)
		return result
	}

	result.Success = result.Summary.Failed == 0
	result.PartialSuccess = !result.Success
	p.log.Info("batch committed",
		"successful", result.Summary.Successful,
		"failed", result.Summary.Failed,
		"manual_review", result.Summary.ManualReviewNeeded)
	return result
}

// submissionOutcome pairs the externally visible result with the typed
// action tally used for the batch summary.
type submissionOutcome struct {
	SubmissionResult
	tally ActionCounts
}

// processSubmission runs one submission inside a nested transaction. On any
// failure the nested transaction is rolled back, so a failed submission
// contributes zero rows even when the batch later commits.
func (p *Processor) processSubmission(ctx context.Context, outer Tx, index int, sub Submission) submissionOutcome {
	out := submissionOutcome{SubmissionResult: SubmissionResult{
		Index:        index,
		ActionsTaken: []string{},
		Conflicts:    []string{},
		IDsCreated:   map[string]any{},
	}}

	if sub.Empty() {
		out.Error = "submission carries no payloads"
		return out
	}

	nested, err := outer.Begin(ctx)
	if err != nil {
		out.Error = fmt.Sprintf("begin nested transaction: %v", err)
		return out
	}

	if err := p.applySubmission(ctx, nested, sub, &out); err != nil {
		_ = nested.Rollback(ctx)
		p.classifyFailure(&out, err)
		return out
	}
	if err := nested.Commit(ctx); err != nil {
		out.Error = fmt.Sprintf("commit nested transaction: %v", err)
		out.tally = ActionCounts{}
		return out
	}
	out.Success = true
	return out
}

// applySubmission runs the manufacturer -> model -> guitar pipeline. The
// order matters: later payloads name earlier entities by text and must see
// them, including ones inserted by this very submission.
func (p *Processor) applySubmission(ctx context.Context, st Store, sub Submission, out *submissionOutcome) error {
	if sub.Manufacturer != nil {
		if err := p.applyManufacturer(ctx, st, sub.Manufacturer, out); err != nil {
			return err
		}
	}
	if sub.Model != nil {
		if err := p.applyModel(ctx, st, sub.Model, out); err != nil {
			return err
		}
	}
	if sub.IndividualGuitar != nil {
		if err := p.applyGuitar(ctx, st, sub.IndividualGuitar, out); err != nil {
			return err
		}
	}
	return nil
}

func (p *Processor) applyManufacturer(ctx context.Context, st Store, in *ManufacturerPayload, out *submissionOutcome) error {
	if err := ValidateManufacturer(in); err != nil {
		return err
	}
	cands, err := FindManufacturerMatches(ctx, st, p.policy, in)
	if err != nil {
		return &ProcessingError{Stage: "manufacturer matching", Err: err}
	}

	switch dec := p.policy.Resolve(KindManufacturer, bestOf(cands)); dec.Action {
	case ActionInsert:
		id, err := insertManufacturer(ctx, st, in)
		if err != nil {
			return &ProcessingError{Stage: "manufacturer insert", Err: err}
		}
		out.IDsCreated["manufacturer_id"] = id.String()
		out.ActionsTaken = append(out.ActionsTaken, fmt.Sprintf("inserted manufacturer %q", in.Name))
		out.tally.ManufacturersInserted++
	case ActionUpdate:
		if err := updateManufacturer(ctx, st, dec.TargetID, in); err != nil {
			return &ProcessingError{Stage: "manufacturer update", Err: err}
		}
		out.ActionsTaken = append(out.ActionsTaken, fmt.Sprintf("updated manufacturer %q", in.Name))
		out.tally.ManufacturersUpdated++
	case ActionReview:
		return &ManualReviewError{
			Kind:       KindManufacturer,
			TargetID:   dec.TargetID,
			Confidence: dec.Confidence,
			Detail:     fmt.Sprintf("%q resembles existing %s", in.Name, dec.Conflict),
		}
	}
	return nil
}

func (p *Processor) applyModel(ctx context.Context, st Store, in *ModelPayload, out *submissionOutcome) error {
	if err := ValidateModel(in); err != nil {
		return err
	}
	manufacturerID, err := resolveManufacturerID(ctx, st, KindModel, in.ManufacturerName)
	if err != nil {
		return err
	}
	cands, err := FindModelMatches(ctx, st, p.policy, manufacturerID, in)
	if err != nil {
		return &ProcessingError{Stage: "model matching", Err: err}
	}

	switch dec := p.policy.Resolve(KindModel, bestOf(cands)); dec.Action {
	case ActionInsert:
		id, err := insertModel(ctx, st, manufacturerID, in)
		if err != nil {
			return &ProcessingError{Stage: "model insert", Err: err}
		}
		out.IDsCreated["model_id"] = id.String()
		out.ActionsTaken = append(out.ActionsTaken, fmt.Sprintf("inserted model %q (%d)", in.Name, in.Year))
		out.tally.ModelsInserted++
	case ActionUpdate:
		if err := updateModel(ctx, st, dec.TargetID, in); err != nil {
			return &ProcessingError{Stage: "model update", Err: err}
		}
		out.ActionsTaken = append(out.ActionsTaken, fmt.Sprintf("updated model %q (%d)", in.Name, in.Year))
		out.tally.ModelsUpdated++
	case ActionReview:
		return &ManualReviewError{
			Kind:       KindModel,
			TargetID:   dec.TargetID,
			Confidence: dec.Confidence,
			Detail:     fmt.Sprintf("%q (%d) resembles existing %s", in.Name, in.Year, dec.Conflict),
		}
	}
	return nil
}

func (p *Processor) applyGuitar(ctx context.Context, st Store, in *GuitarPayload, out *submissionOutcome) error {
	if err := ValidateGuitar(in); err != nil {
		return err
	}
	modelID, err := resolveModelReference(ctx, st, in)
	if err != nil {
		return err
	}
	cands, err := FindGuitarMatches(ctx, st, p.policy, modelID, in)
	if err != nil {
		return &ProcessingError{Stage: "guitar matching", Err: err}
	}

	switch dec := p.policy.Resolve(KindIndividualGuitar, bestOf(cands)); dec.Action {
	case ActionInsert:
		id, err := insertGuitar(ctx, st, modelID, in)
		if err != nil {
			return &ProcessingError{Stage: "guitar insert", Err: err}
		}
		out.IDsCreated["individual_guitar_id"] = id.String()
		out.ActionsTaken = append(out.ActionsTaken, fmt.Sprintf("inserted guitar %s", describeGuitar(in)))
		out.tally.GuitarsInserted++
	case ActionUpdate:
		if err := updateGuitar(ctx, st, dec.TargetID, modelID, in); err != nil {
			return &ProcessingError{Stage: "guitar update", Err: err}
		}
		out.ActionsTaken = append(out.ActionsTaken, fmt.Sprintf("updated guitar %s", describeGuitar(in)))
		out.tally.GuitarsUpdated++
	}
	return nil
}

// classifyFailure fills the result fields from the failure taxonomy.
func (p *Processor) classifyFailure(out *submissionOutcome, err error) {
	out.Success = false
	out.tally = ActionCounts{}
	out.Error = err.Error()

	var review *ManualReviewError
	if errors.As(err, &review) {
		out.ManualReviewNeeded = true
		out.Conflicts = append(out.Conflicts, review.Detail)
	}

	var schema *SchemaViolationError
	if errors.As(err, &schema) {
		for _, v := range schema.Violations {
			out.Conflicts = append(out.Conflicts, v.String())
		}
	}
}

func bestOf(cands []Candidate) *Candidate {
	if len(cands) == 0 {
		return nil
	}
	return &cands[0]
}

func describeGuitar(in *GuitarPayload) string {
	switch {
	case in.SerialNumber != nil:
		return fmt.Sprintf("serial %s", *in.SerialNumber)
	case in.Nickname != nil:
		return fmt.Sprintf("%q", *in.Nickname)
	default:
		return "(unserialized)"
	}
}
