package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// Attendance runs the per-entry check-in state machine.  Transitions
// touch only the single entry involved, so they are safe to run fully
// in parallel across entries.
type Attendance struct {
	store store.Store
	log   zerolog.Logger
}

// NewAttendance constructs an Attendance service.
func NewAttendance(st store.Store, log zerolog.Logger) *Attendance {
	return &Attendance{store: st, log: log}
}

// CheckIn marks the entry attended at the given time.  Cancelled
// entries cannot check in.
func (a *Attendance) CheckIn(ctx context.Context, entryID uint64, at time.Time) error {
	entry, err := a.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if entry.Cancelled() {
		return store.ErrEntryCancelled
	}
	t := at.UTC()
	if err := a.store.SetAttendance(ctx, entryID, model.AttendanceAttended, &t); err != nil {
		return err
	}
	a.log.Info().Uint64("entry_id", entryID).Time("at", t).Msg("checked in")
	return nil
}

// CheckOut reverts the entry to not_checked_in and clears the
// timestamp.  An issued certificate is deliberately left intact: a
// clerical check-in mistake must not silently destroy a credential,
// and revocation remains an explicit admin act.
func (a *Attendance) CheckOut(ctx context.Context, entryID uint64) error {
	if _, err := a.store.GetAttendance(ctx, entryID); err != nil {
		return err
	}
	if err := a.store.SetAttendance(ctx, entryID, model.AttendanceNotCheckedIn, nil); err != nil {
		return err
	}
	a.log.Info().Uint64("entry_id", entryID).Msg("check-in undone")
	return nil
}

// Get returns the entry's attendance record.
func (a *Attendance) Get(ctx context.Context, entryID uint64) (*model.AttendanceRecord, error) {
	return a.store.GetAttendance(ctx, entryID)
}
