package model

import "time"

// TicketTier is a named class of ticket belonging to exactly one
// event.  The Sold counter is the sum of quantities over all
// non-cancelled ledger entries referencing the tier and must never
// exceed Quota.  The counter lives on the tier row so reserving
// capacity is a single conditional update.
//
// Fields:
//
//	ID         – primary key identifier.
//	EventID    – owning event.
//	Name       – tier label shown to participants.
//	PriceCents – unit price in minor currency units (zero for free).
//	Quota      – maximum sellable quantity (nil when unlimited).
//	Sold       – quantity reserved by non-cancelled entries.
//	Retired    – true once the tier is closed to new sales.  History
//	             referencing a retired tier is preserved.
//	CreatedAt  – creation timestamp.
//	UpdatedAt  – last update timestamp.
type TicketTier struct {
	ID         uint64    `json:"id"`              // ticket_tiers.id
	EventID    uint64    `json:"event_id"`        // ticket_tiers.event_id
	Name       string    `json:"name"`            // ticket_tiers.name
	PriceCents int64     `json:"price_cents"`     // ticket_tiers.price_cents
	Quota      *int64    `json:"quota,omitempty"` // ticket_tiers.quota (nullable)
	Sold       int64     `json:"sold"`            // ticket_tiers.sold
	Retired    bool      `json:"retired"`         // ticket_tiers.retired
	CreatedAt  time.Time `json:"created_at"`      // ticket_tiers.created_at
	UpdatedAt  time.Time `json:"updated_at"`      // ticket_tiers.updated_at
}

// Remaining returns how many tickets can still be reserved, or -1
// when the tier has no quota.
func (t *TicketTier) Remaining() int64 {
	if t.Quota == nil {
		return -1
	}
	return *t.Quota - t.Sold
}
