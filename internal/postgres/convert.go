package postgres

// convert.go bridges the pointer-based catalog records and pgtype. Dates
// cross the boundary as ISO strings because the engine compares them as
// opaque values; the database stores proper DATE columns.

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const dateLayout = "2006-01-02"

// toPgDate converts an ISO date string to pgtype.Date. Nil or unparseable
// input becomes NULL; the engine validates formats before writes, so an
// unparseable value here never comes from a submission.
func toPgDate(s *string) pgtype.Date {
	if s == nil {
		return pgtype.Date{}
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// fromPgDate converts a scanned date back to an ISO string pointer.
func fromPgDate(d pgtype.Date) *string {
	if !d.Valid {
		return nil
	}
	s := d.Time.Format(dateLayout)
	return &s
}

// toPgUUID converts an optional uuid to pgtype.UUID.
func toPgUUID(id *uuid.UUID) pgtype.UUID {
	if id == nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: *id, Valid: true}
}

// fromPgUUID converts a scanned nullable uuid back to a pointer.
func fromPgUUID(u pgtype.UUID) *uuid.UUID {
	if !u.Valid {
		return nil
	}
	id := uuid.UUID(u.Bytes)
	return &id
}
