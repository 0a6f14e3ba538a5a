package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/policy"
	"github.com/iliyamo/event-ticketing/internal/store"
)

func TestCreateEventLeadTime(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, _, err := e.catalog.CreateEvent(ctx, testNow, CreateEventInput{
		Title:    "Too Soon",
		StartsAt: testNow.AddDate(0, 0, 2),
		Mode:     model.ModeIndividual,
	})
	var lt *policy.LeadTimeError
	require.ErrorAs(t, err, &lt)
	require.Equal(t, 1, lt.DaysShort)

	// Moving an existing event's start re-applies the same rule.
	ev, _ := e.createEvent(t, model.ModeIndividual, nil)
	tooSoon := testNow.AddDate(0, 0, 1)
	_, err = e.catalog.UpdateEvent(ctx, testNow, ev.ID, UpdateEventInput{StartsAt: &tooSoon})
	require.ErrorAs(t, err, &lt)
}

func TestCreateEventDerivesFreeFlag(t *testing.T) {
	e := newEnv(t)

	ev, _ := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Entry", PriceCents: 0},
		TierInput{Name: "Donor", PriceCents: 5_000})
	require.False(t, ev.IsFree)

	free, _ := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Entry", PriceCents: 0})
	require.True(t, free.IsFree)

	// Adding a paid tier later flips the flag.
	_, err := e.catalog.AddTier(context.Background(), testNow, free.ID,
		TierInput{Name: "VIP", PriceCents: 10_000})
	require.NoError(t, err)
	stored, _, err := e.catalog.GetEvent(context.Background(), free.ID)
	require.NoError(t, err)
	require.False(t, stored.IsFree)
}

// Shrinking a quota below what is already sold must fail outright.
// Clamping would silently rewrite history.
func TestEditTierQuotaBelowSold(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000, Quota: ptr(int64(10))})
	ctx := context.Background()

	e.register(t, tiers[0].EventID, &tiers[0].ID, 4)

	_, err := e.catalog.EditTier(ctx, testNow, tiers[0].ID, EditTierInput{Quota: ptr(int64(3))})
	require.ErrorIs(t, err, store.ErrQuotaBelowSold)

	// The stored quota must be unchanged, not clamped to sold.
	tier, err := e.store.GetTier(ctx, tiers[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(10), *tier.Quota)

	// A combined edit whose quota part is rejected must not apply
	// its price part either.
	_, err = e.catalog.EditTier(ctx, testNow, tiers[0].ID, EditTierInput{
		PriceCents: ptr(int64(9_999)),
		Quota:      ptr(int64(2)),
	})
	require.ErrorIs(t, err, store.ErrQuotaBelowSold)
	tier, err = e.store.GetTier(ctx, tiers[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(1_000), tier.PriceCents)

	// Shrinking down to exactly sold is allowed.
	_, err = e.catalog.EditTier(ctx, testNow, tiers[0].ID, EditTierInput{Quota: ptr(int64(4))})
	require.NoError(t, err)

	// And lifting the quota makes the tier unlimited.
	tier, err = e.catalog.EditTier(ctx, testNow, tiers[0].ID, EditTierInput{ClearQuota: true})
	require.NoError(t, err)
	require.Nil(t, tier.Quota)
}

func TestUpdateEventCapacityBelowSold(t *testing.T) {
	e := newEnv(t)
	ev, tiers := e.createEvent(t, model.ModeIndividual, ptr(int64(10)),
		TierInput{Name: "Standard", PriceCents: 1_000})
	ctx := context.Background()

	e.register(t, ev.ID, &tiers[0].ID, 5)

	_, err := e.catalog.UpdateEvent(ctx, testNow, ev.ID, UpdateEventInput{Capacity: ptr(int64(4))})
	require.ErrorIs(t, err, store.ErrQuotaBelowSold)

	_, err = e.catalog.UpdateEvent(ctx, testNow, ev.ID, UpdateEventInput{Capacity: ptr(int64(5))})
	require.NoError(t, err)
}

func TestRetireTierStopsSales(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Early Bird", PriceCents: 1_000, Quota: ptr(int64(10))})
	ctx := context.Background()

	e.register(t, tiers[0].EventID, &tiers[0].ID, 2)
	require.NoError(t, e.catalog.RetireTier(ctx, testNow, tiers[0].ID))

	_, err := e.ledger.Register(ctx, testNow, RegisterInput{
		EventID: tiers[0].EventID, TierID: &tiers[0].ID, Quantity: 1, Participant: individual("late"),
	})
	require.ErrorIs(t, err, store.ErrTierRetired)

	// The sold count survives retirement for reporting.
	tier, err := e.store.GetTier(ctx, tiers[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), tier.Sold)
}

func TestDeleteEventHidesItButKeepsLedger(t *testing.T) {
	e := newEnv(t)
	ev, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})
	ctx := context.Background()

	reg := e.register(t, ev.ID, &tiers[0].ID, 1)
	require.NoError(t, e.catalog.DeleteEvent(ctx, testNow, ev.ID))

	_, _, err := e.catalog.GetEvent(ctx, ev.ID)
	require.ErrorIs(t, err, store.ErrEventNotFound)

	events, err := e.catalog.ListEvents(ctx)
	require.NoError(t, err)
	require.Empty(t, events)

	// Registration against a removed event is rejected.
	_, err = e.ledger.Register(ctx, testNow, RegisterInput{
		EventID: ev.ID, TierID: &tiers[0].ID, Quantity: 1, Participant: individual("ghost"),
	})
	require.ErrorIs(t, err, store.ErrEventNotFound)

	// The ledger entry is still readable for audit.
	_, err = e.ledger.GetEntry(ctx, reg.ID)
	require.NoError(t, err)
}
