package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// newTier seeds an event and one tier under it, since tiers may not
// exist without their event.
func newTier(t *testing.T, s *Store, quota *int64) *model.TicketTier {
	t.Helper()
	ctx := context.Background()
	ev := &model.Event{Title: "Meetup", StartsAt: time.Date(2026, time.July, 1, 9, 0, 0, 0, time.UTC), Mode: model.ModeIndividual}
	require.NoError(t, s.CreateEvent(ctx, ev))
	tier := &model.TicketTier{EventID: ev.ID, Name: "Limited", Quota: quota}
	require.NoError(t, s.CreateTier(ctx, tier))
	return tier
}

func TestReserveIsAtomic(t *testing.T) {
	s := New()
	ctx := context.Background()
	quota := int64(10)
	tier := newTier(t, s, &quota)

	var wg sync.WaitGroup
	var mu sync.Mutex
	won := 0
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Reserve(ctx, tier.ID, 1); err == nil {
				mu.Lock()
				won++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 10, won)

	got, err := s.GetTier(ctx, tier.ID)
	require.NoError(t, err)
	require.Equal(t, quota, got.Sold)
}

func TestSetQuotaGuardsSold(t *testing.T) {
	s := New()
	ctx := context.Background()
	tier := newTier(t, s, nil)
	require.NoError(t, s.Reserve(ctx, tier.ID, 7))

	low := int64(6)
	require.ErrorIs(t, s.SetQuota(ctx, tier.ID, &low), store.ErrQuotaBelowSold)

	exact := int64(7)
	require.NoError(t, s.SetQuota(ctx, tier.ID, &exact))

	// A full tier rejects the next reservation.
	require.ErrorIs(t, s.Reserve(ctx, tier.ID, 1), store.ErrOutOfStock)
}

// Status and attendance mutations must stamp updated_at from the
// store clock, so tests can pin it.
func TestMutationsUseStoreClock(t *testing.T) {
	s := New()
	ctx := context.Background()
	fixed := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	tier := newTier(t, s, nil)
	entry := &model.Registration{Reference: "ref-1", EventID: tier.EventID, Quantity: 1, Status: model.VerificationPending, CreatedAt: fixed, UpdatedAt: fixed}
	require.NoError(t, s.CreateEntry(ctx, entry))

	require.NoError(t, s.SetVerification(ctx, entry.ID, model.VerificationVerified))
	got, err := s.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, fixed, got.UpdatedAt)

	require.NoError(t, s.SetAttendance(ctx, entry.ID, model.AttendanceAttended, &fixed))
	att, err := s.GetAttendance(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, fixed, att.UpdatedAt)
}

func TestNextSerialIsSequentialPerYear(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	seen := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n, err := s.NextSerial(ctx, 2026)
			require.NoError(t, err)
			seen <- n
		}()
	}
	wg.Wait()
	close(seen)

	got := make(map[int64]bool, 50)
	for n := range seen {
		require.False(t, got[n], "serial %d handed out twice", n)
		got[n] = true
	}
	require.Len(t, got, 50)

	// A different year starts its own sequence.
	n, err := s.NextSerial(ctx, 2027)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
