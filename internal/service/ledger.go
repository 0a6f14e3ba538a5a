package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/policy"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// Ledger records registrations.  Register is the one multi-step write
// in the system: quota is reserved first and every later failure
// releases it again before the error propagates, so no partially
// applied registration is ever observable.
type Ledger struct {
	store store.Store
	pub   Publisher
	log   zerolog.Logger
}

// NewLedger constructs a Ledger service.  pub may be nil, in which
// case no broker events are emitted.
func NewLedger(st store.Store, pub Publisher, log zerolog.Logger) *Ledger {
	return &Ledger{store: st, pub: pub, log: log}
}

// RegisterInput carries a registration request after boundary
// normalization.  TierID is nil only for tierless free events.
type RegisterInput struct {
	EventID     uint64
	TierID      *uint64
	Quantity    int64
	Participant model.Participant
}

// Register performs the all-or-nothing registration flow: capacity
// check, quota reservation, price snapshot, commission split, entry
// persistence (which also creates the attendance record).  Any
// failure after the reservation triggers the compensating release
// before the error returns.
func (l *Ledger) Register(ctx context.Context, now time.Time, in RegisterInput) (*model.Registration, error) {
	if in.Quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	ev, err := l.store.GetEvent(ctx, in.EventID)
	if err != nil {
		return nil, err
	}
	if ev.DeletedAt != nil {
		return nil, store.ErrEventNotFound
	}
	if in.Participant.Mode != ev.Mode {
		return nil, invalid("participant mode does not match event mode")
	}
	if reason, ok := in.Participant.Validate(); !ok {
		return nil, invalid(reason)
	}

	var tier *model.TicketTier
	if in.TierID != nil {
		tier, err = l.store.GetTier(ctx, *in.TierID)
		if err != nil {
			return nil, err
		}
		if tier.EventID != ev.ID {
			return nil, invalid("tier does not belong to event")
		}
	} else {
		tiers, err := l.store.ListTiers(ctx, ev.ID)
		if err != nil {
			return nil, err
		}
		if len(tiers) > 0 {
			return nil, invalid("tier_id is required for this event")
		}
		if !ev.IsFree {
			return nil, invalid("tierless registration is only allowed for free events")
		}
	}

	if ev.Capacity != nil {
		reserved, err := l.reservedForEvent(ctx, ev.ID)
		if err != nil {
			return nil, err
		}
		if reserved+in.Quantity > *ev.Capacity {
			return nil, store.ErrCapacityExceeded
		}
	}

	var unitPrice int64
	if tier != nil {
		if err := l.store.Reserve(ctx, tier.ID, in.Quantity); err != nil {
			return nil, err
		}
		unitPrice = tier.PriceCents
	}

	total := in.Quantity * unitPrice
	commission, net := policy.Split(total)
	entry := &model.Registration{
		Reference:       uuid.NewString(),
		EventID:         ev.ID,
		TierID:          in.TierID,
		Quantity:        in.Quantity,
		UnitPriceCents:  unitPrice,
		TotalPriceCents: total,
		CommissionCents: commission,
		NetCents:        net,
		Status:          model.VerificationPending,
		Participant:     in.Participant,
		CreatedAt:       now.UTC(),
		UpdatedAt:       now.UTC(),
	}
	if err := l.store.CreateEntry(ctx, entry); err != nil {
		if tier != nil {
			l.compensate(ctx, tier.ID, in.Quantity)
		}
		return nil, err
	}

	if l.pub != nil {
		tierName := ""
		if tier != nil {
			tierName = tier.Name
		}
		_ = l.pub.PublishRegistrationConfirmed(ctx, queue.RegistrationConfirmedEvent{
			EntryID:         entry.ID,
			Reference:       entry.Reference,
			EventID:         ev.ID,
			EventTitle:      ev.Title,
			TierName:        tierName,
			Quantity:        entry.Quantity,
			TotalCents:      entry.TotalPriceCents,
			CommissionCents: entry.CommissionCents,
			NetCents:        entry.NetCents,
			Mode:            string(ev.Mode),
			RegisteredAt:    entry.CreatedAt.Format(time.RFC3339),
		})
	}
	l.log.Info().
		Uint64("entry_id", entry.ID).
		Uint64("event_id", ev.ID).
		Int64("quantity", entry.Quantity).
		Int64("total_cents", entry.TotalPriceCents).
		Msg("registration recorded")
	return entry, nil
}

// reservedForEvent returns the quantity held by all tiers plus
// tierless entries, for the event-wide capacity check.  That check is
// read-then-reserve: only the per-tier quota is enforced atomically,
// so two registrations racing on the last of Event.Capacity can both
// pass and overshoot it slightly.  Tier quotas stay hard either way,
// and organizers set the event cap as a planning figure, so the
// window is accepted rather than paid for with a cross-tier lock.
func (l *Ledger) reservedForEvent(ctx context.Context, eventID uint64) (int64, error) {
	sold, err := l.store.SoldForEvent(ctx, eventID)
	if err != nil {
		return 0, err
	}
	entries, err := l.store.ListEntriesByEvent(ctx, eventID, false)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.TierID == nil {
			sold += e.Quantity
		}
	}
	return sold, nil
}

// compensate releases a reservation whose ledger entry could not be
// persisted.  A lost release silently shrinks sellable capacity,
// which is worse than an oversell because nobody notices, so the
// release is retried once and a failure after that is logged loudly.
func (l *Ledger) compensate(ctx context.Context, tierID uint64, qty int64) {
	if err := l.store.Release(ctx, tierID, qty); err != nil {
		if err = l.store.Release(ctx, tierID, qty); err != nil {
			l.log.Error().
				Err(err).
				Uint64("tier_id", tierID).
				Int64("quantity", qty).
				Msg("reservation release failed twice; tier capacity leaked")
		}
	}
}

// GetEntry loads one ledger entry by id.
func (l *Ledger) GetEntry(ctx context.Context, id uint64) (*model.Registration, error) {
	return l.store.GetEntry(ctx, id)
}

// GetEntryByReference resolves the public lookup code handed to the
// registrant.
func (l *Ledger) GetEntryByReference(ctx context.Context, ref string) (*model.Registration, error) {
	return l.store.GetEntryByReference(ctx, ref)
}

// SetVerification transitions the administrative verification status.
// It has no effect on the financial snapshot.
func (l *Ledger) SetVerification(ctx context.Context, entryID uint64, status model.VerificationStatus) error {
	if !status.Valid() {
		return invalid("verification status must be pending or verified")
	}
	return l.store.SetVerification(ctx, entryID, status)
}

// Cancel marks the entry cancelled and releases its quantity back to
// the tier.  The entry row survives for audit; only the quota effect
// is undone.  The store rejects a second cancel, so the release runs
// exactly once even under concurrent requests.
func (l *Ledger) Cancel(ctx context.Context, now time.Time, entryID uint64) error {
	entry, err := l.store.GetEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if err := l.store.CancelEntry(ctx, entryID, now.UTC()); err != nil {
		return err
	}
	if entry.TierID != nil {
		l.compensate(ctx, *entry.TierID, entry.Quantity)
	}
	l.log.Info().Uint64("entry_id", entryID).Msg("registration cancelled")
	return nil
}
