package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

func TestRegisterSnapshotsFinances(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 50_000, Quota: ptr(int64(10))})

	reg := e.register(t, tiers[0].EventID, &tiers[0].ID, 2)
	require.Equal(t, int64(50_000), reg.UnitPriceCents)
	require.Equal(t, int64(100_000), reg.TotalPriceCents)
	require.Equal(t, int64(10_000), reg.CommissionCents)
	require.Equal(t, int64(90_000), reg.NetCents)
	require.Equal(t, model.VerificationPending, reg.Status)
	require.NotEmpty(t, reg.Reference)

	// The attendance record is born alongside the entry.
	att, err := e.attendance.Get(context.Background(), reg.ID)
	require.NoError(t, err)
	require.Equal(t, model.AttendanceNotCheckedIn, att.State)
}

// Raising the tier price afterwards must not alter what any existing
// entry owes; only later registrations see the new price.
func TestRegisterSnapshotImmuneToPriceEdit(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 50_000})
	before := e.register(t, tiers[0].EventID, &tiers[0].ID, 1)

	_, err := e.catalog.EditTier(context.Background(), testNow, tiers[0].ID, EditTierInput{
		PriceCents: ptr(int64(75_000)),
	})
	require.NoError(t, err)

	stored, err := e.ledger.GetEntry(context.Background(), before.ID)
	require.NoError(t, err)
	require.Equal(t, int64(50_000), stored.TotalPriceCents)
	require.Equal(t, int64(5_000), stored.CommissionCents)

	after := e.register(t, tiers[0].EventID, &tiers[0].ID, 1)
	require.Equal(t, int64(75_000), after.TotalPriceCents)
}

// Many registrations race for a small quota; the winners must never
// exceed it and every loser must see the sold-out error.
func TestRegisterNeverOversells(t *testing.T) {
	e := newEnv(t)
	const quota, attempts = 5, 40
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Limited", PriceCents: 1_000, Quota: ptr(int64(quota))})

	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.ledger.Register(context.Background(), testNow, RegisterInput{
				EventID:     tiers[0].EventID,
				TierID:      &tiers[0].ID,
				Quantity:    1,
				Participant: individual("racer"),
			})
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
		} else {
			require.ErrorIs(t, err, store.ErrOutOfStock)
		}
	}
	require.Equal(t, quota, won)

	tier, err := e.store.GetTier(context.Background(), tiers[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(quota), tier.Sold)
}

func TestRegisterEventCapacity(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, ptr(int64(3)),
		TierInput{Name: "Standard", PriceCents: 0, Quota: ptr(int64(10))})

	e.register(t, tiers[0].EventID, &tiers[0].ID, 2)
	_, err := e.ledger.Register(context.Background(), testNow, RegisterInput{
		EventID:     tiers[0].EventID,
		TierID:      &tiers[0].ID,
		Quantity:    2,
		Participant: individual("bob"),
	})
	require.ErrorIs(t, err, store.ErrCapacityExceeded)

	// The failed attempt must not have consumed tier quota.
	tier, err := e.store.GetTier(context.Background(), tiers[0].ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), tier.Sold)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	ev, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})
	ctx := context.Background()

	var ve *ValidationError

	_, err := e.ledger.Register(ctx, testNow, RegisterInput{
		EventID: ev.ID, TierID: &tiers[0].ID, Quantity: 0, Participant: individual("a"),
	})
	require.ErrorAs(t, err, &ve)

	// Team payload on an individual event.
	_, err = e.ledger.Register(ctx, testNow, RegisterInput{
		EventID: ev.ID, TierID: &tiers[0].ID, Quantity: 1,
		Participant: model.Participant{
			Mode: model.ModeTeam,
			Team: &model.Team{Name: "Gophers", Leader: model.Individual{FullName: "a", Email: "a@b"}},
		},
	})
	require.ErrorAs(t, err, &ve)

	// Missing contact email.
	_, err = e.ledger.Register(ctx, testNow, RegisterInput{
		EventID: ev.ID, TierID: &tiers[0].ID, Quantity: 1,
		Participant: model.Participant{
			Mode:       model.ModeIndividual,
			Individual: &model.Individual{FullName: "no-mail"},
		},
	})
	require.ErrorAs(t, err, &ve)

	// A paid event never accepts a tierless registration.
	_, err = e.ledger.Register(ctx, testNow, RegisterInput{
		EventID: ev.ID, Quantity: 1, Participant: individual("c"),
	})
	require.ErrorAs(t, err, &ve)
}

func TestRegisterTierlessFreeEvent(t *testing.T) {
	e := newEnv(t)
	ev, _ := e.createEvent(t, model.ModeIndividual, ptr(int64(100)))

	reg := e.register(t, ev.ID, nil, 3)
	require.Nil(t, reg.TierID)
	require.Zero(t, reg.TotalPriceCents)
	require.Zero(t, reg.CommissionCents)
}

func TestCancelReleasesCapacityOnce(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Limited", PriceCents: 1_000, Quota: ptr(int64(2))})
	ctx := context.Background()

	reg := e.register(t, tiers[0].EventID, &tiers[0].ID, 2)

	// Sold out now.
	_, err := e.ledger.Register(ctx, testNow, RegisterInput{
		EventID: tiers[0].EventID, TierID: &tiers[0].ID, Quantity: 1, Participant: individual("late"),
	})
	require.ErrorIs(t, err, store.ErrOutOfStock)

	require.NoError(t, e.ledger.Cancel(ctx, testNow, reg.ID))
	tier, err := e.store.GetTier(ctx, tiers[0].ID)
	require.NoError(t, err)
	require.Zero(t, tier.Sold)

	// A second cancel is rejected and must not release again.
	require.ErrorIs(t, e.ledger.Cancel(ctx, testNow, reg.ID), store.ErrEntryCancelled)
	tier, err = e.store.GetTier(ctx, tiers[0].ID)
	require.NoError(t, err)
	require.Zero(t, tier.Sold)

	// The freed capacity is sellable again.
	e.register(t, tiers[0].EventID, &tiers[0].ID, 1)

	// The entry survives as an audit row with its snapshot intact.
	stored, err := e.ledger.GetEntry(ctx, reg.ID)
	require.NoError(t, err)
	require.True(t, stored.Cancelled())
	require.Equal(t, int64(2_000), stored.TotalPriceCents)
}

func TestSetVerification(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})
	ctx := context.Background()

	reg := e.register(t, tiers[0].EventID, &tiers[0].ID, 1)
	require.NoError(t, e.ledger.SetVerification(ctx, reg.ID, model.VerificationVerified))

	stored, err := e.ledger.GetEntry(ctx, reg.ID)
	require.NoError(t, err)
	require.Equal(t, model.VerificationVerified, stored.Status)

	// Cancelled entries refuse further verification changes.
	require.NoError(t, e.ledger.Cancel(ctx, testNow, reg.ID))
	require.ErrorIs(t, e.ledger.SetVerification(ctx, reg.ID, model.VerificationPending), store.ErrEntryCancelled)
}

func TestRegisterLookupByReference(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})

	reg := e.register(t, tiers[0].EventID, &tiers[0].ID, 1)
	found, err := e.ledger.GetEntryByReference(context.Background(), reg.Reference)
	require.NoError(t, err)
	require.Equal(t, reg.ID, found.ID)

	_, err = e.ledger.GetEntryByReference(context.Background(), "no-such-ref")
	require.ErrorIs(t, err, store.ErrEntryNotFound)
}
