package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// GetAttendance returns the entry's attendance record.  A missing row
// means the entry id itself is stale.
func (r *Repo) GetAttendance(ctx context.Context, entryID uint64) (*model.AttendanceRecord, error) {
	const q = `SELECT entry_id, state, checked_in_at, updated_at FROM attendance_records WHERE entry_id = ?`
	var rec model.AttendanceRecord
	var state string
	var checkedIn sql.NullTime
	err := r.db.QueryRowContext(ctx, q, entryID).Scan(&rec.EntryID, &state, &checkedIn, &rec.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	rec.State = model.AttendanceState(state)
	if checkedIn.Valid {
		t := checkedIn.Time
		rec.CheckedInAt = &t
	}
	return &rec, nil
}

// SetAttendance overwrites the state and check-in timestamp.
func (r *Repo) SetAttendance(ctx context.Context, entryID uint64, state model.AttendanceState, checkedInAt *time.Time) error {
	const q = `UPDATE attendance_records SET state = ?, checked_in_at = ?, updated_at = NOW() WHERE entry_id = ?`
	res, err := r.db.ExecContext(ctx, q, string(state), nullTime(checkedInAt), entryID)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrEntryNotFound)
}
