// Package policy holds the pure business rules shared by every other
// component: the lead-time check applied when events are created and
// the commission split applied to every paid registration.  Both are
// deliberately free of dependencies so reporting, registration and
// validation all consume the same arithmetic instead of re-deriving
// it locally.
package policy

import (
	"fmt"
	"time"
)

const (
	// LeadTimeDays is the minimum number of calendar days between an
	// event's creation and its start (the "H-3" rule).
	LeadTimeDays = 3

	// CommissionBasisPoints is the platform's share of a paid
	// registration, expressed in basis points (1000 = 10%).
	CommissionBasisPoints = 1000
)

// LeadTimeError reports an event start that is too close to its
// creation date.  DaysShort carries how many more calendar days the
// organizer would need, so callers can render an actionable message.
type LeadTimeError struct {
	DaysShort int
}

func (e *LeadTimeError) Error() string {
	return fmt.Sprintf("event must be created at least %d days before it starts (%d day(s) short)", LeadTimeDays, e.DaysShort)
}

// ValidateLeadTime rejects start times fewer than LeadTimeDays
// calendar days after now.  Day counting uses calendar dates, not
// elapsed hours: an event at 23:59 two calendar days out and one at
// 00:01 the same calendar distance are treated identically.
func ValidateLeadTime(now, start time.Time) error {
	days := calendarDays(now, start)
	if days < LeadTimeDays {
		return &LeadTimeError{DaysShort: LeadTimeDays - days}
	}
	return nil
}

// calendarDays returns the number of whole calendar days between the
// two instants' dates, evaluated in UTC.
func calendarDays(now, start time.Time) int {
	n := now.UTC()
	s := start.UTC()
	nd := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	sd := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	return int(sd.Sub(nd) / (24 * time.Hour))
}

// Split divides a total price into the platform commission and the
// organizer's net.  The commission is 10% rounded half up on the
// smallest currency unit; the net is the remainder, so
// commission + net == total holds exactly for every input.  This is
// the single source of truth for the 10%/90% split shown in reports.
func Split(totalCents int64) (commissionCents, netCents int64) {
	commissionCents = (totalCents*CommissionBasisPoints + 5000) / 10000
	netCents = totalCents - commissionCents
	return commissionCents, netCents
}
