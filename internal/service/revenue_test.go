package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func TestPerEventReconcilesWithLedger(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 10_000},
		TierInput{Name: "VIP", PriceCents: 25_000})
	ctx := context.Background()
	eventID := tiers[0].EventID

	r1 := e.register(t, eventID, &tiers[0].ID, 2) // 20_000 pending
	r2 := e.register(t, eventID, &tiers[1].ID, 1) // 25_000, verified below
	cancelled := e.register(t, eventID, &tiers[0].ID, 1)

	require.NoError(t, e.ledger.SetVerification(ctx, r2.ID, model.VerificationVerified))
	require.NoError(t, e.ledger.Cancel(ctx, testNow, cancelled.ID))

	rev, err := e.revenue.PerEvent(ctx, eventID, FilterAll)
	require.NoError(t, err)
	require.Equal(t, int64(25_000), rev.VerifiedCents)
	require.Equal(t, int64(20_000), rev.PendingCents)
	require.Equal(t, 1, rev.CountVerified)
	require.Equal(t, 1, rev.CountPending)

	// Commission and net must sum from the entry snapshots and
	// reconcile with the grand total.
	require.Equal(t, r1.CommissionCents+r2.CommissionCents, rev.CommissionCents)
	require.Equal(t, r1.NetCents+r2.NetCents, rev.NetCents)
	require.Equal(t, rev.VerifiedCents+rev.PendingCents, rev.CommissionCents+rev.NetCents)

	// Tier breakdown, alphabetical by name.
	require.Len(t, rev.PerTier, 2)
	require.Equal(t, "Standard", rev.PerTier[0].TierName)
	require.Equal(t, int64(20_000), rev.PerTier[0].PendingCents)
	require.Equal(t, "VIP", rev.PerTier[1].TierName)
	require.Equal(t, int64(25_000), rev.PerTier[1].VerifiedCents)
}

func TestPerEventFilters(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 10_000})
	ctx := context.Background()
	eventID := tiers[0].EventID

	verified := e.register(t, eventID, &tiers[0].ID, 1)
	e.register(t, eventID, &tiers[0].ID, 1)
	require.NoError(t, e.ledger.SetVerification(ctx, verified.ID, model.VerificationVerified))

	rev, err := e.revenue.PerEvent(ctx, eventID, FilterVerified)
	require.NoError(t, err)
	require.Equal(t, int64(10_000), rev.VerifiedCents)
	require.Zero(t, rev.PendingCents)
	require.Zero(t, rev.CountPending)

	rev, err = e.revenue.PerEvent(ctx, eventID, FilterPending)
	require.NoError(t, err)
	require.Zero(t, rev.VerifiedCents)
	require.Equal(t, int64(10_000), rev.PendingCents)
}

func TestPerEventTierlessUnderGeneral(t *testing.T) {
	e := newEnv(t)
	ev, _ := e.createEvent(t, model.ModeIndividual, nil)

	e.register(t, ev.ID, nil, 2)
	rev, err := e.revenue.PerEvent(context.Background(), ev.ID, FilterAll)
	require.NoError(t, err)
	require.Len(t, rev.PerTier, 1)
	require.Equal(t, "general", rev.PerTier[0].TierName)
	require.Equal(t, 1, rev.PerTier[0].CountPending)
}

func TestCrossEventLeaderboard(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, lowTiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 5_000})
	_, highTiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 30_000})
	_, midTiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 10_000})

	e.register(t, lowTiers[0].EventID, &lowTiers[0].ID, 1)   // 5_000
	e.register(t, highTiers[0].EventID, &highTiers[0].ID, 1) // 30_000
	e.register(t, midTiers[0].EventID, &midTiers[0].ID, 2)   // 20_000

	rows, err := e.revenue.CrossEvent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, int64(30_000), rows[0].TotalCents)
	require.Equal(t, int64(20_000), rows[1].TotalCents)
	require.Equal(t, int64(5_000), rows[2].TotalCents)

	top, err := e.revenue.CrossEvent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, rows[0].EventID, top[0].EventID)

	// The leaderboard totals must agree with the per-event view,
	// since both are computed from the same ledger rows.
	per, err := e.revenue.PerEvent(ctx, rows[0].EventID, FilterAll)
	require.NoError(t, err)
	require.Equal(t, rows[0].TotalCents, per.VerifiedCents+per.PendingCents)
}

func TestRosterIncludesCancelled(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})
	ctx := context.Background()
	eventID := tiers[0].EventID

	active := e.register(t, eventID, &tiers[0].ID, 1)
	gone := e.register(t, eventID, &tiers[0].ID, 1)
	require.NoError(t, e.ledger.Cancel(ctx, testNow, gone.ID))
	require.NoError(t, e.attendance.CheckIn(ctx, active.ID, testNow))

	rows, err := e.revenue.AttendanceRoster(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := make(map[uint64]RosterRow, len(rows))
	for _, r := range rows {
		byID[r.EntryID] = r
	}
	require.Equal(t, "cancelled", byID[gone.ID].Status)
	require.Equal(t, string(model.AttendanceAttended), byID[active.ID].Attendance)
	require.NotNil(t, byID[active.ID].CheckedInAt)
	require.Equal(t, "alice", byID[active.ID].Name)
}
