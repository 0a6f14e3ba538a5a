package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// attendee registers one participant and checks them in.
func (e *env) attendee(t *testing.T) *model.Registration {
	t.Helper()
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})
	reg := e.register(t, tiers[0].EventID, &tiers[0].ID, 1)
	require.NoError(t, e.attendance.CheckIn(context.Background(), reg.ID, testNow))
	return reg
}

func TestIssueRequiresAttendance(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})
	reg := e.register(t, tiers[0].EventID, &tiers[0].ID, 1)
	ctx := context.Background()

	_, err := e.certs.Issue(ctx, testNow, reg.ID)
	require.ErrorIs(t, err, ErrNotAttended)

	require.NoError(t, e.attendance.CheckIn(ctx, reg.ID, testNow))
	cert, err := e.certs.Issue(ctx, testNow, reg.ID)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("CERT-%d-001", testNow.Year()), cert.SerialNumber)
}

func TestIssueIsOncePerEntry(t *testing.T) {
	e := newEnv(t)
	reg := e.attendee(t)
	ctx := context.Background()

	_, err := e.certs.Issue(ctx, testNow, reg.ID)
	require.NoError(t, err)

	// A duplicate submission is an error, not an idempotent success.
	_, err = e.certs.Issue(ctx, testNow, reg.ID)
	require.ErrorIs(t, err, store.ErrAlreadyIssued)
}

func TestSerialsIncrementWithinYear(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	first := e.attendee(t)
	second := e.attendee(t)

	c1, err := e.certs.Issue(ctx, testNow, first.ID)
	require.NoError(t, err)
	c2, err := e.certs.Issue(ctx, testNow, second.ID)
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("CERT-%d-001", testNow.Year()), c1.SerialNumber)
	require.Equal(t, fmt.Sprintf("CERT-%d-002", testNow.Year()), c2.SerialNumber)

	// Serial lookup resolves to the owning entry.
	found, err := e.certs.LookupSerial(ctx, c2.SerialNumber)
	require.NoError(t, err)
	require.Equal(t, second.ID, found.EntryID)
}

// Undoing a check-in leaves an already issued certificate in place;
// taking it back requires an explicit revocation.
func TestCheckOutLeavesCertificate(t *testing.T) {
	e := newEnv(t)
	reg := e.attendee(t)
	ctx := context.Background()

	cert, err := e.certs.Issue(ctx, testNow, reg.ID)
	require.NoError(t, err)

	require.NoError(t, e.attendance.CheckOut(ctx, reg.ID))
	still, err := e.certs.GetByEntry(ctx, reg.ID)
	require.NoError(t, err)
	require.Equal(t, cert.SerialNumber, still.SerialNumber)

	// But a fresh issue now fails: the entry is no longer attended.
	require.NoError(t, e.certs.Revoke(ctx, reg.ID))
	_, err = e.certs.Issue(ctx, testNow, reg.ID)
	require.ErrorIs(t, err, ErrNotAttended)
}

func TestRevokeThenReissueAllocatesNewSerial(t *testing.T) {
	e := newEnv(t)
	reg := e.attendee(t)
	ctx := context.Background()

	c1, err := e.certs.Issue(ctx, testNow, reg.ID)
	require.NoError(t, err)
	require.NoError(t, e.certs.Revoke(ctx, reg.ID))

	// The old serial no longer resolves.
	_, err = e.certs.LookupSerial(ctx, c1.SerialNumber)
	require.ErrorIs(t, err, store.ErrNotIssued)

	c2, err := e.certs.Issue(ctx, testNow, reg.ID)
	require.NoError(t, err)
	require.NotEqual(t, c1.SerialNumber, c2.SerialNumber)
}

func TestRevokeWithoutCertificate(t *testing.T) {
	e := newEnv(t)
	reg := e.attendee(t)
	require.ErrorIs(t, e.certs.Revoke(context.Background(), reg.ID), store.ErrNotIssued)
}

func TestSerialNumberPadsAndWidens(t *testing.T) {
	require.Equal(t, "CERT-2026-001", serialNumber(2026, 1))
	require.Equal(t, "CERT-2026-042", serialNumber(2026, 42))
	require.Equal(t, "CERT-2026-999", serialNumber(2026, 999))
	// Past 999 the sequence widens rather than wrapping or clipping.
	require.Equal(t, "CERT-2026-1000", serialNumber(2026, 1000))
}

func TestCheckInRejectsCancelledEntry(t *testing.T) {
	e := newEnv(t)
	_, tiers := e.createEvent(t, model.ModeIndividual, nil,
		TierInput{Name: "Standard", PriceCents: 1_000})
	reg := e.register(t, tiers[0].EventID, &tiers[0].ID, 1)
	ctx := context.Background()

	require.NoError(t, e.ledger.Cancel(ctx, testNow, reg.ID))
	require.ErrorIs(t, e.attendance.CheckIn(ctx, reg.ID, testNow), store.ErrEntryCancelled)
}
