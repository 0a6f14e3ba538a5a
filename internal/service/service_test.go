package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store/memstore"
)

// testNow is the fixed clock used across service tests; fixtures
// schedule their events far enough past it to satisfy the lead-time
// rule.
var testNow = time.Date(2026, time.June, 1, 12, 0, 0, 0, time.UTC)

// env bundles the services over a fresh in-memory store.
type env struct {
	store      *memstore.Store
	catalog    *Catalog
	ledger     *Ledger
	attendance *Attendance
	certs      *Certificates
	revenue    *Revenue
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memstore.New()
	log := zerolog.Nop()
	return &env{
		store:      st,
		catalog:    NewCatalog(st, log),
		ledger:     NewLedger(st, nil, log),
		attendance: NewAttendance(st, log),
		certs:      NewCertificates(st, nil, log),
		revenue:    NewRevenue(st),
	}
}

func ptr[T any](v T) *T { return &v }

// createEvent makes a valid event ten days out with the given tiers.
func (e *env) createEvent(t *testing.T, mode model.ParticipantMode, capacity *int64, tiers ...TierInput) (*model.Event, []model.TicketTier) {
	t.Helper()
	ev, created, err := e.catalog.CreateEvent(context.Background(), testNow, CreateEventInput{
		Title:    "Go Conference",
		StartsAt: testNow.AddDate(0, 0, 10),
		Capacity: capacity,
		Mode:     mode,
		Tiers:    tiers,
	})
	require.NoError(t, err)
	return ev, created
}

func individual(name string) model.Participant {
	return model.Participant{
		Mode:       model.ModeIndividual,
		Individual: &model.Individual{FullName: name, Email: name + "@example.com"},
	}
}

// register is a shorthand for a one-seat individual registration.
func (e *env) register(t *testing.T, eventID uint64, tierID *uint64, qty int64) *model.Registration {
	t.Helper()
	reg, err := e.ledger.Register(context.Background(), testNow, RegisterInput{
		EventID:     eventID,
		TierID:      tierID,
		Quantity:    qty,
		Participant: individual("alice"),
	})
	require.NoError(t, err)
	return reg
}
