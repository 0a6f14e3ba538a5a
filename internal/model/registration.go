package model

import "time"

// VerificationStatus tracks whether an admin has confirmed a
// registration's payment or eligibility.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
)

// Valid reports whether the status is a known value.
func (s VerificationStatus) Valid() bool {
	return s == VerificationPending || s == VerificationVerified
}

// Registration is one ledger entry: a participant (or team) buying
// Quantity tickets of one tier.  The financial columns are a snapshot
// taken at registration time and are never mutated afterwards, which
// is what lets revenue reports reconcile against history even after
// the tier's price changes.  Cancelling an entry sets CancelledAt and
// releases its quantity back to the tier; the row stays for audit.
//
// Fields:
//
//	ID              – primary key identifier.
//	Reference       – opaque public lookup code handed to the registrant.
//	EventID         – event being registered for.
//	TierID          – tier the tickets belong to (nil for simple free
//	                  events without tiers).
//	Quantity        – number of tickets (>= 1).
//	UnitPriceCents  – tier price at registration time.
//	TotalPriceCents – Quantity * UnitPriceCents.
//	CommissionCents – platform share of the total (10%, round half up).
//	NetCents        – organizer share; always Total - Commission.
//	Status          – verification status (pending, verified).
//	Participant     – individual-or-team payload.
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
//	CancelledAt     – cancellation timestamp (nil while active).
type Registration struct {
	ID              uint64             `json:"id"`                     // ledger_entries.id
	Reference       string             `json:"reference"`              // ledger_entries.reference
	EventID         uint64             `json:"event_id"`               // ledger_entries.event_id
	TierID          *uint64            `json:"tier_id,omitempty"`      // ledger_entries.tier_id (nullable)
	Quantity        int64              `json:"quantity"`               // ledger_entries.quantity
	UnitPriceCents  int64              `json:"unit_price_cents"`       // ledger_entries.unit_price_cents
	TotalPriceCents int64              `json:"total_price_cents"`      // ledger_entries.total_price_cents
	CommissionCents int64              `json:"commission_cents"`       // ledger_entries.commission_cents
	NetCents        int64              `json:"net_cents"`              // ledger_entries.net_cents
	Status          VerificationStatus `json:"verification_status"`    // ledger_entries.verification_status
	Participant     Participant        `json:"participant"`            // ledger_entries.participant (JSON)
	CreatedAt       time.Time          `json:"created_at"`             // ledger_entries.created_at
	UpdatedAt       time.Time          `json:"updated_at"`             // ledger_entries.updated_at
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"` // ledger_entries.cancelled_at (nullable)
}

// Cancelled reports whether the entry has been cancelled.
func (r *Registration) Cancelled() bool { return r.CancelledAt != nil }
