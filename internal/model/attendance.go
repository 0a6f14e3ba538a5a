package model

import "time"

// AttendanceState is the per-entry check-in state.  There is no
// recorded "absent" state; an entry that never checks in simply stays
// not_checked_in after the event.
type AttendanceState string

const (
	AttendanceNotCheckedIn AttendanceState = "not_checked_in"
	AttendanceAttended     AttendanceState = "attended"
)

// AttendanceRecord exists one-to-one with a ledger entry and is
// created alongside it in the not_checked_in state.  Checking out
// clears the timestamp but never touches an issued certificate.
//
// Fields:
//
//	EntryID     – owning ledger entry.
//	State       – not_checked_in or attended.
//	CheckedInAt – when the entry was checked in (nil otherwise).
//	UpdatedAt   – last transition timestamp.
type AttendanceRecord struct {
	EntryID     uint64          `json:"entry_id"`                // attendance_records.entry_id
	State       AttendanceState `json:"state"`                   // attendance_records.state
	CheckedInAt *time.Time      `json:"checked_in_at,omitempty"` // attendance_records.checked_in_at (nullable)
	UpdatedAt   time.Time       `json:"updated_at"`              // attendance_records.updated_at
}
