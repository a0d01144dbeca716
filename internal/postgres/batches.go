package postgres

// batches.go records batch outcomes in ingestion_batches. Recording runs on
// the pool, outside the batch transaction, so the history survives even when
// the batch itself is rolled back.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/stringauthority/registry/internal/catalog"
)

// BatchRow is one row of the ingestion history.
type BatchRow struct {
	ID             uuid.UUID `json:"id"`
	SubmittedAt    time.Time `json:"submitted_at"`
	TotalCount     int       `json:"total_count"`
	ProcessedCount int       `json:"processed_count"`
	Successful     int       `json:"successful"`
	Failed         int       `json:"failed"`
	ManualReview   int       `json:"manual_review"`
	RolledBack     bool      `json:"rolled_back"`
	PartialSuccess bool      `json:"partial_success"`
	RollbackReason *string   `json:"rollback_reason,omitempty"`
}

// RecordBatch persists one batch outcome. The full per-item results go into
// the detail column for later inspection.
func (db *DB) RecordBatch(ctx context.Context, result *catalog.BatchResult) error {
	detail, err := json.Marshal(result.Results)
	if err != nil {
		return fmt.Errorf("marshal batch detail: %w", err)
	}

	var reason *string
	if result.RollbackReason != "" {
		reason = &result.RollbackReason
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO ingestion_batches (total_count, processed_count, successful, failed,
			manual_review, rolled_back, partial_success, rollback_reason, detail)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		result.TotalCount, result.ProcessedCount, result.Summary.Successful,
		result.Summary.Failed, result.Summary.ManualReviewNeeded,
		result.RolledBack, result.PartialSuccess, reason, detail)
	return err
}

// ListBatches returns the most recent batch outcomes.
func (db *DB) ListBatches(ctx context.Context, page Page) ([]BatchRow, error) {
	page = page.clamp()

	rows, err := db.pool.Query(ctx,
		`SELECT id, submitted_at, total_count, processed_count, successful, failed,
			manual_review, rolled_back, partial_success, rollback_reason
		 FROM ingestion_batches
		 ORDER BY submitted_at DESC
		 LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchRow
	for rows.Next() {
		var row BatchRow
		err := rows.Scan(&row.ID, &row.SubmittedAt, &row.TotalCount, &row.ProcessedCount,
			&row.Successful, &row.Failed, &row.ManualReview, &row.RolledBack,
			&row.PartialSuccess, &row.RollbackReason)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
