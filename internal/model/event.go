package model

import "time"

// ParticipantMode distinguishes events where people register on their
// own from events where a whole team registers under one entry.
type ParticipantMode string

const (
	ModeIndividual ParticipantMode = "individual" // one person per ledger entry
	ModeTeam       ParticipantMode = "team"       // leader plus members per ledger entry
)

// Valid reports whether the mode is one of the two known values.
func (m ParticipantMode) Valid() bool {
	return m == ModeIndividual || m == ModeTeam
}

// Event is an organizer-created happening that participants register
// for.  An event owns its ticket tiers and is referenced by ledger
// entries.  Events are never physically deleted while entries still
// reference them; removal sets DeletedAt instead.
//
// Fields:
//
//	ID        – primary key identifier.
//	Title     – display title of the event.
//	StartsAt  – when the event begins.  Must satisfy the three day
//	            lead-time rule at creation.
//	EndsAt    – when the event ends (optional).
//	IsFree    – true when every tier of the event is priced at zero.
//	Capacity  – overall participant cap across all tiers (nil when
//	            unlimited).
//	Mode      – individual or team registration.
//	FlyerURL  – opaque reference into the media store (optional).
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
//	DeletedAt – soft-removal timestamp (nil while active).
type Event struct {
	ID        uint64          `json:"id"`                  // events.id
	Title     string          `json:"title"`               // events.title
	StartsAt  time.Time       `json:"starts_at"`           // events.starts_at
	EndsAt    *time.Time      `json:"ends_at,omitempty"`   // events.ends_at (nullable)
	IsFree    bool            `json:"is_free"`             // events.is_free
	Capacity  *int64          `json:"capacity,omitempty"`  // events.capacity (nullable)
	Mode      ParticipantMode `json:"participant_mode"`    // events.participant_mode
	FlyerURL  *string         `json:"flyer_url,omitempty"` // events.flyer_url (nullable)
	CreatedAt time.Time       `json:"created_at"`          // events.created_at
	UpdatedAt time.Time       `json:"updated_at"`          // events.updated_at
	DeletedAt *time.Time      `json:"-"`                   // events.deleted_at (nullable)
}
