// Package store declares the persistence contract shared by the MySQL
// repository and the in-memory backend.  Services depend on these
// interfaces only, so the domain rules are exercised identically in
// tests and in production.  Sentinel errors defined here let handlers
// distinguish expected contention outcomes (sold out, capacity
// reached) from caller bugs (stale ids) and from storage failures.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ErrEventNotFound is returned when an event id resolves to nothing.
var ErrEventNotFound = errors.New("event not found")

// ErrTierNotFound is returned when a tier id resolves to nothing.
var ErrTierNotFound = errors.New("ticket tier not found")

// ErrEntryNotFound is returned when a ledger entry id or reference
// resolves to nothing.  Handlers log this as a caller bug.
var ErrEntryNotFound = errors.New("ledger entry not found")

// ErrOutOfStock is returned by Reserve when the tier's remaining
// quota cannot cover the requested quantity.  This is an expected,
// user-facing outcome of contention, not a failure.
var ErrOutOfStock = errors.New("tier out of stock")

// ErrCapacityExceeded is returned when the event's overall capacity
// across all tiers cannot cover the requested quantity.
var ErrCapacityExceeded = errors.New("event capacity exceeded")

// ErrQuotaBelowSold is returned when an edit attempts to lower a
// tier's quota below the quantity already sold.  Such edits are
// rejected outright, never clamped.
var ErrQuotaBelowSold = errors.New("quota below sold count")

// ErrTierRetired is returned by Reserve when the tier has been closed
// to new sales.
var ErrTierRetired = errors.New("tier retired")

// ErrEntryCancelled is returned when an operation targets an entry
// that has already been cancelled.
var ErrEntryCancelled = errors.New("ledger entry cancelled")

// ErrAlreadyIssued is returned when a certificate already exists for
// the entry.  A second issue call is an error, not a silent no-op, so
// callers can detect double submissions.
var ErrAlreadyIssued = errors.New("certificate already issued")

// ErrNotIssued is returned by revoke and lookups when no certificate
// exists for the entry or serial.
var ErrNotIssued = errors.New("certificate not issued")

// EventStore persists events.  Soft removal sets deleted_at; rows are
// never physically deleted while ledger entries reference them.
type EventStore interface {
	CreateEvent(ctx context.Context, ev *model.Event) error
	GetEvent(ctx context.Context, id uint64) (*model.Event, error)
	ListEvents(ctx context.Context, includeDeleted bool) ([]model.Event, error)
	UpdateEvent(ctx context.Context, ev *model.Event) error
	SoftDeleteEvent(ctx context.Context, id uint64, at time.Time) error
}

// TierStore persists ticket tiers and owns the sold counter.  Reserve
// and Release are the only mutators of sold; Reserve is the single
// linearization point that prevents overselling and must perform its
// check and increment atomically.
type TierStore interface {
	CreateTier(ctx context.Context, t *model.TicketTier) error
	GetTier(ctx context.Context, id uint64) (*model.TicketTier, error)
	ListTiers(ctx context.Context, eventID uint64) ([]model.TicketTier, error)
	// UpdateTier persists name, price and retired flag.  Quota changes
	// go through SetQuota so the sold comparison stays atomic.
	UpdateTier(ctx context.Context, t *model.TicketTier) error
	// SetQuota changes the tier's quota.  Lowering it below the
	// current sold count fails with ErrQuotaBelowSold; nil lifts the
	// limit entirely.
	SetQuota(ctx context.Context, tierID uint64, quota *int64) error
	// Reserve atomically checks sold+qty <= quota and increments sold.
	// Unlimited tiers always succeed.  Retired tiers fail with
	// ErrTierRetired, exhausted ones with ErrOutOfStock.
	Reserve(ctx context.Context, tierID uint64, qty int64) error
	// Release is the compensating decrement for a reservation whose
	// ledger entry was never persisted, and for cancellations.
	Release(ctx context.Context, tierID uint64, qty int64) error
	// SoldForEvent sums sold across all tiers of an event, for the
	// event-level capacity check.
	SoldForEvent(ctx context.Context, eventID uint64) (int64, error)
}

// LedgerStore persists registrations and their attendance records.
// CreateEntry writes the entry and its not_checked_in attendance
// record in one transaction; the financial snapshot columns are never
// updated after insert.
type LedgerStore interface {
	CreateEntry(ctx context.Context, e *model.Registration) error
	GetEntry(ctx context.Context, id uint64) (*model.Registration, error)
	GetEntryByReference(ctx context.Context, ref string) (*model.Registration, error)
	// ListEntriesByEvent returns entries for one event, newest first.
	// Cancelled entries are included only when includeCancelled is set.
	ListEntriesByEvent(ctx context.Context, eventID uint64, includeCancelled bool) ([]model.Registration, error)
	// ListAllEntries returns every non-cancelled entry across events.
	// Revenue projections are computed from these rows and nothing
	// else, so per-event and cross-event views can never disagree.
	ListAllEntries(ctx context.Context) ([]model.Registration, error)
	SetVerification(ctx context.Context, entryID uint64, status model.VerificationStatus) error
	// CancelEntry marks the entry cancelled.  A second cancel fails
	// with ErrEntryCancelled so the caller releases quota only once.
	CancelEntry(ctx context.Context, entryID uint64, at time.Time) error
}

// AttendanceStore reads and transitions the per-entry attendance
// state machine.  Records exist one-to-one with ledger entries.
type AttendanceStore interface {
	GetAttendance(ctx context.Context, entryID uint64) (*model.AttendanceRecord, error)
	SetAttendance(ctx context.Context, entryID uint64, state model.AttendanceState, checkedInAt *time.Time) error
}

// CertificateStore persists certificates and allocates their serial
// sequence.  NextSerial uses a per-year counter row with an atomic
// increment, the same discipline as the tier sold counter.
type CertificateStore interface {
	NextSerial(ctx context.Context, year int) (int64, error)
	CreateCertificate(ctx context.Context, c *model.Certificate) error
	GetCertificateByEntry(ctx context.Context, entryID uint64) (*model.Certificate, error)
	GetCertificateBySerial(ctx context.Context, serial string) (*model.Certificate, error)
	// DeleteCertificate removes the row outright; revocation is not a
	// soft flag.
	DeleteCertificate(ctx context.Context, entryID uint64) error
}

// Store aggregates every persistence concern the services need.  Both
// the MySQL repository and the in-memory backend satisfy it.
type Store interface {
	EventStore
	TierStore
	LedgerStore
	AttendanceStore
	CertificateStore
}
