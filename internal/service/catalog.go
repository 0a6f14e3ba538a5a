// Package service implements the domain operations of the ticketing
// core: catalog management, the registration ledger, attendance
// transitions, certificate issuance and revenue projections.  Each
// service works against the store interfaces so the same rules hold
// over MySQL and over the in-memory backend used by tests.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/policy"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// Catalog owns events and their ticket tiers.  It applies the
// lead-time rule on creation, validates tier shapes once at the
// boundary, and funnels every quota change through the store's atomic
// operations so the sold invariant can never be bypassed.
type Catalog struct {
	store store.Store
	log   zerolog.Logger
}

// NewCatalog constructs a Catalog service.
func NewCatalog(st store.Store, log zerolog.Logger) *Catalog {
	return &Catalog{store: st, log: log}
}

// TierInput is the normalized tier shape accepted at event creation
// and when adding tiers later.  Callers must normalize whatever wire
// format they receive into this before the core sees it.
type TierInput struct {
	Name       string
	PriceCents int64
	Quota      *int64
}

// CreateEventInput carries everything needed to create an event with
// its initial tiers in one operation.
type CreateEventInput struct {
	Title    string
	StartsAt time.Time
	EndsAt   *time.Time
	Capacity *int64
	Mode     model.ParticipantMode
	FlyerURL *string
	Tiers    []TierInput
}

func validateTierInput(in TierInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return invalid("tier name is required")
	}
	if in.PriceCents < 0 {
		return invalid("tier price must not be negative")
	}
	if in.Quota != nil && *in.Quota < 1 {
		return invalid("tier quota must be at least 1")
	}
	return nil
}

// CreateEvent validates the lead-time rule and all tier shapes, then
// persists the event and its tiers.  The event's free flag is derived
// from the tiers: it is free exactly when no tier carries a price.
func (c *Catalog) CreateEvent(ctx context.Context, now time.Time, in CreateEventInput) (*model.Event, []model.TicketTier, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, invalid("event title is required")
	}
	if !in.Mode.Valid() {
		return nil, nil, invalid("participant_mode must be individual or team")
	}
	if in.Capacity != nil && *in.Capacity < 1 {
		return nil, nil, invalid("capacity must be at least 1")
	}
	if in.EndsAt != nil && !in.EndsAt.After(in.StartsAt) {
		return nil, nil, invalid("end_time must be after start_time")
	}
	if err := policy.ValidateLeadTime(now, in.StartsAt); err != nil {
		return nil, nil, err
	}
	free := true
	for _, t := range in.Tiers {
		if err := validateTierInput(t); err != nil {
			return nil, nil, err
		}
		if t.PriceCents > 0 {
			free = false
		}
	}

	ev := &model.Event{
		Title:     strings.TrimSpace(in.Title),
		StartsAt:  in.StartsAt.UTC(),
		EndsAt:    in.EndsAt,
		IsFree:    free,
		Capacity:  in.Capacity,
		Mode:      in.Mode,
		FlyerURL:  in.FlyerURL,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	if err := c.store.CreateEvent(ctx, ev); err != nil {
		return nil, nil, err
	}
	tiers := make([]model.TicketTier, 0, len(in.Tiers))
	for _, t := range in.Tiers {
		tier := model.TicketTier{
			EventID:    ev.ID,
			Name:       strings.TrimSpace(t.Name),
			PriceCents: t.PriceCents,
			Quota:      t.Quota,
			CreatedAt:  now.UTC(),
			UpdatedAt:  now.UTC(),
		}
		if err := c.store.CreateTier(ctx, &tier); err != nil {
			return nil, nil, err
		}
		tiers = append(tiers, tier)
	}
	c.log.Info().Uint64("event_id", ev.ID).Str("title", ev.Title).Int("tiers", len(tiers)).Msg("event created")
	return ev, tiers, nil
}

// GetEvent returns an active event with its tiers.
func (c *Catalog) GetEvent(ctx context.Context, id uint64) (*model.Event, []model.TicketTier, error) {
	ev, err := c.store.GetEvent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if ev.DeletedAt != nil {
		return nil, nil, store.ErrEventNotFound
	}
	tiers, err := c.store.ListTiers(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	return ev, tiers, nil
}

// ListEvents returns all active events.
func (c *Catalog) ListEvents(ctx context.Context) ([]model.Event, error) {
	return c.store.ListEvents(ctx, false)
}

// UpdateEventInput is a partial patch; nil fields are left unchanged.
type UpdateEventInput struct {
	Title         *string
	StartsAt      *time.Time
	EndsAt        *time.Time
	Capacity      *int64
	ClearCapacity bool
	FlyerURL      *string
}

// UpdateEvent applies a partial edit.  Moving the start re-applies the
// lead-time rule, and the capacity may never be lowered below what
// non-cancelled registrations already hold.
func (c *Catalog) UpdateEvent(ctx context.Context, now time.Time, id uint64, in UpdateEventInput) (*model.Event, error) {
	ev, err := c.store.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if ev.DeletedAt != nil {
		return nil, store.ErrEventNotFound
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, invalid("event title is required")
		}
		ev.Title = strings.TrimSpace(*in.Title)
	}
	if in.StartsAt != nil {
		if err := policy.ValidateLeadTime(now, *in.StartsAt); err != nil {
			return nil, err
		}
		ev.StartsAt = in.StartsAt.UTC()
	}
	if in.EndsAt != nil {
		if !in.EndsAt.After(ev.StartsAt) {
			return nil, invalid("end_time must be after start_time")
		}
		ev.EndsAt = in.EndsAt
	}
	if in.ClearCapacity {
		ev.Capacity = nil
	} else if in.Capacity != nil {
		if *in.Capacity < 1 {
			return nil, invalid("capacity must be at least 1")
		}
		sold, err := c.store.SoldForEvent(ctx, id)
		if err != nil {
			return nil, err
		}
		if *in.Capacity < sold {
			return nil, store.ErrQuotaBelowSold
		}
		ev.Capacity = in.Capacity
	}
	if in.FlyerURL != nil {
		ev.FlyerURL = in.FlyerURL
	}
	ev.UpdatedAt = now.UTC()
	if err := c.store.UpdateEvent(ctx, ev); err != nil {
		return nil, err
	}
	return ev, nil
}

// DeleteEvent soft-removes the event.  Rows are never physically
// deleted: ledger entries keep referencing the event for audit and
// reporting.
func (c *Catalog) DeleteEvent(ctx context.Context, now time.Time, id uint64) error {
	return c.store.SoftDeleteEvent(ctx, id, now.UTC())
}

// AddTier appends a tier to an existing event.  Adding a paid tier to
// a previously free event flips its free flag.
func (c *Catalog) AddTier(ctx context.Context, now time.Time, eventID uint64, in TierInput) (*model.TicketTier, error) {
	if err := validateTierInput(in); err != nil {
		return nil, err
	}
	ev, err := c.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.DeletedAt != nil {
		return nil, store.ErrEventNotFound
	}
	tier := &model.TicketTier{
		EventID:    eventID,
		Name:       strings.TrimSpace(in.Name),
		PriceCents: in.PriceCents,
		Quota:      in.Quota,
		CreatedAt:  now.UTC(),
		UpdatedAt:  now.UTC(),
	}
	if err := c.store.CreateTier(ctx, tier); err != nil {
		return nil, err
	}
	if in.PriceCents > 0 && ev.IsFree {
		ev.IsFree = false
		ev.UpdatedAt = now.UTC()
		if err := c.store.UpdateEvent(ctx, ev); err != nil {
			return nil, err
		}
	}
	return tier, nil
}

// EditTierInput is a partial tier patch.  ClearQuota lifts the quota
// entirely; otherwise a non-nil Quota replaces it, subject to the
// sold invariant.
type EditTierInput struct {
	Name       *string
	PriceCents *int64
	Quota      *int64
	ClearQuota bool
}

// EditTier patches a tier.  Quota changes go through the store's
// atomic SetQuota so lowering below sold is rejected, never clamped.
// The quota change is applied before the name/price columns are
// touched: a rejected quota leaves the whole edit unapplied instead
// of half of it.  Price edits apply to future reservations only:
// issued ledger entries keep their snapshot.
func (c *Catalog) EditTier(ctx context.Context, now time.Time, tierID uint64, in EditTierInput) (*model.TicketTier, error) {
	tier, err := c.store.GetTier(ctx, tierID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, invalid("tier name is required")
		}
		tier.Name = strings.TrimSpace(*in.Name)
	}
	if in.PriceCents != nil {
		if *in.PriceCents < 0 {
			return nil, invalid("tier price must not be negative")
		}
		tier.PriceCents = *in.PriceCents
	}
	if in.ClearQuota {
		if err := c.store.SetQuota(ctx, tierID, nil); err != nil {
			return nil, err
		}
	} else if in.Quota != nil {
		if *in.Quota < 1 {
			return nil, invalid("tier quota must be at least 1")
		}
		if err := c.store.SetQuota(ctx, tierID, in.Quota); err != nil {
			return nil, err
		}
	}
	tier.UpdatedAt = now.UTC()
	if err := c.store.UpdateTier(ctx, tier); err != nil {
		return nil, err
	}
	return c.store.GetTier(ctx, tierID)
}

// RetireTier closes the tier to new sales while preserving every
// ledger entry that references it.
func (c *Catalog) RetireTier(ctx context.Context, now time.Time, tierID uint64) error {
	tier, err := c.store.GetTier(ctx, tierID)
	if err != nil {
		return err
	}
	tier.Retired = true
	tier.UpdatedAt = now.UTC()
	return c.store.UpdateTier(ctx, tier)
}
