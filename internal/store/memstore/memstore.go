// Package memstore is an in-memory implementation of store.Store.  It
// backs the unit and property tests and doubles as a storage backend
// for local development without MySQL.  A single mutex guards all
// maps; in particular the quota check and sold increment inside
// Reserve happen under the lock, mirroring the conditional single-row
// update the MySQL repository performs.
package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// Store holds all state behind one mutex.  Values are stored by copy
// and returned by copy so callers can never mutate persisted state
// without going through a method.
type Store struct {
	mu sync.Mutex

	// now stamps updated_at where the MySQL backend uses NOW().
	// Tests override it to pin timestamps.
	now func() time.Time

	nextEventID uint64
	nextTierID  uint64
	nextEntryID uint64

	events      map[uint64]model.Event
	tiers       map[uint64]model.TicketTier
	entries     map[uint64]model.Registration
	entryByRef  map[string]uint64
	attendance  map[uint64]model.AttendanceRecord
	certs       map[uint64]model.Certificate
	certSerials map[string]uint64 // serial -> entry id
	serialSeq   map[int]int64     // year -> last allocated sequence
}

// New returns an empty store.
func New() *Store {
	return &Store{
		now:         func() time.Time { return time.Now().UTC() },
		events:      make(map[uint64]model.Event),
		tiers:       make(map[uint64]model.TicketTier),
		entries:     make(map[uint64]model.Registration),
		entryByRef:  make(map[string]uint64),
		attendance:  make(map[uint64]model.AttendanceRecord),
		certs:       make(map[uint64]model.Certificate),
		certSerials: make(map[string]uint64),
		serialSeq:   make(map[int]int64),
	}
}

var _ store.Store = (*Store)(nil)

// CreateEvent assigns an id and stores the event.
func (s *Store) CreateEvent(_ context.Context, ev *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEventID++
	ev.ID = s.nextEventID
	s.events[ev.ID] = *ev
	return nil
}

// GetEvent returns a copy of the event or store.ErrEventNotFound.
func (s *Store) GetEvent(_ context.Context, id uint64) (*model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return nil, store.ErrEventNotFound
	}
	out := ev
	return &out, nil
}

// ListEvents returns all events, optionally including soft-removed
// ones.  Order follows ascending id.
func (s *Store) ListEvents(_ context.Context, includeDeleted bool) ([]model.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Event, 0, len(s.events))
	for id := uint64(1); id <= s.nextEventID; id++ {
		ev, ok := s.events[id]
		if !ok {
			continue
		}
		if !includeDeleted && ev.DeletedAt != nil {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// UpdateEvent overwrites the stored event.
func (s *Store) UpdateEvent(_ context.Context, ev *model.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[ev.ID]; !ok {
		return store.ErrEventNotFound
	}
	s.events[ev.ID] = *ev
	return nil
}

// SoftDeleteEvent stamps deleted_at without removing the row.
func (s *Store) SoftDeleteEvent(_ context.Context, id uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ev, ok := s.events[id]
	if !ok {
		return store.ErrEventNotFound
	}
	ev.DeletedAt = &at
	ev.UpdatedAt = at
	s.events[id] = ev
	return nil
}

// CreateTier assigns an id and stores the tier.
func (s *Store) CreateTier(_ context.Context, t *model.TicketTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[t.EventID]; !ok {
		return store.ErrEventNotFound
	}
	s.nextTierID++
	t.ID = s.nextTierID
	s.tiers[t.ID] = *t
	return nil
}

// GetTier returns a copy of the tier or store.ErrTierNotFound.
func (s *Store) GetTier(_ context.Context, id uint64) (*model.TicketTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[id]
	if !ok {
		return nil, store.ErrTierNotFound
	}
	out := t
	return &out, nil
}

// ListTiers returns all tiers of one event in ascending id order.
func (s *Store) ListTiers(_ context.Context, eventID uint64) ([]model.TicketTier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.TicketTier, 0)
	for id := uint64(1); id <= s.nextTierID; id++ {
		t, ok := s.tiers[id]
		if ok && t.EventID == eventID {
			out = append(out, t)
		}
	}
	return out, nil
}

// UpdateTier persists name, price and retired flag.  Quota and sold
// are deliberately left untouched; see SetQuota and Reserve.
func (s *Store) UpdateTier(_ context.Context, t *model.TicketTier) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.tiers[t.ID]
	if !ok {
		return store.ErrTierNotFound
	}
	cur.Name = t.Name
	cur.PriceCents = t.PriceCents
	cur.Retired = t.Retired
	cur.UpdatedAt = t.UpdatedAt
	s.tiers[t.ID] = cur
	return nil
}

// SetQuota changes the quota, rejecting values below the current sold
// count.  The comparison happens under the store lock.
func (s *Store) SetQuota(_ context.Context, tierID uint64, quota *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[tierID]
	if !ok {
		return store.ErrTierNotFound
	}
	if quota != nil && *quota < t.Sold {
		return store.ErrQuotaBelowSold
	}
	t.Quota = quota
	s.tiers[tierID] = t
	return nil
}

// Reserve checks and increments the sold counter in one critical
// section.  This is the linearization point that makes overselling
// impossible regardless of how many registrations race.
func (s *Store) Reserve(_ context.Context, tierID uint64, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[tierID]
	if !ok {
		return store.ErrTierNotFound
	}
	if t.Retired {
		return store.ErrTierRetired
	}
	if t.Quota != nil && t.Sold+qty > *t.Quota {
		return store.ErrOutOfStock
	}
	t.Sold += qty
	s.tiers[tierID] = t
	return nil
}

// Release decrements the sold counter, flooring at zero.
func (s *Store) Release(_ context.Context, tierID uint64, qty int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tiers[tierID]
	if !ok {
		return store.ErrTierNotFound
	}
	t.Sold -= qty
	if t.Sold < 0 {
		t.Sold = 0
	}
	s.tiers[tierID] = t
	return nil
}

// SoldForEvent sums sold across all tiers of the event.
func (s *Store) SoldForEvent(_ context.Context, eventID uint64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int64
	for _, t := range s.tiers {
		if t.EventID == eventID {
			total += t.Sold
		}
	}
	return total, nil
}

// CreateEntry stores the ledger entry and its initial attendance
// record together, mirroring the single transaction the MySQL
// repository uses.
func (s *Store) CreateEntry(_ context.Context, e *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEntryID++
	e.ID = s.nextEntryID
	s.entries[e.ID] = *e
	s.entryByRef[e.Reference] = e.ID
	s.attendance[e.ID] = model.AttendanceRecord{
		EntryID:   e.ID,
		State:     model.AttendanceNotCheckedIn,
		UpdatedAt: e.CreatedAt,
	}
	return nil
}

// GetEntry returns a copy of the entry or store.ErrEntryNotFound.
func (s *Store) GetEntry(_ context.Context, id uint64) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, store.ErrEntryNotFound
	}
	out := e
	return &out, nil
}

// GetEntryByReference resolves the public lookup code.
func (s *Store) GetEntryByReference(_ context.Context, ref string) (*model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.entryByRef[ref]
	if !ok {
		return nil, store.ErrEntryNotFound
	}
	e := s.entries[id]
	return &e, nil
}

// ListEntriesByEvent returns entries of one event in descending id
// order (newest first) to match the repository's ORDER BY.
func (s *Store) ListEntriesByEvent(_ context.Context, eventID uint64, includeCancelled bool) ([]model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Registration, 0)
	for id := s.nextEntryID; id >= 1; id-- {
		e, ok := s.entries[id]
		if !ok || e.EventID != eventID {
			continue
		}
		if !includeCancelled && e.CancelledAt != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// ListAllEntries returns every non-cancelled entry across all events.
func (s *Store) ListAllEntries(_ context.Context) ([]model.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Registration, 0, len(s.entries))
	for id := uint64(1); id <= s.nextEntryID; id++ {
		e, ok := s.entries[id]
		if ok && e.CancelledAt == nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// SetVerification updates the verification status only; the financial
// snapshot stays untouched.
func (s *Store) SetVerification(_ context.Context, entryID uint64, status model.VerificationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok {
		return store.ErrEntryNotFound
	}
	if e.CancelledAt != nil {
		return store.ErrEntryCancelled
	}
	e.Status = status
	e.UpdatedAt = s.now()
	s.entries[entryID] = e
	return nil
}

// CancelEntry stamps cancelled_at; a second cancel fails so the
// caller releases the tier quota exactly once.
func (s *Store) CancelEntry(_ context.Context, entryID uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok {
		return store.ErrEntryNotFound
	}
	if e.CancelledAt != nil {
		return store.ErrEntryCancelled
	}
	e.CancelledAt = &at
	e.UpdatedAt = at
	s.entries[entryID] = e
	return nil
}

// GetAttendance returns the entry's attendance record.
func (s *Store) GetAttendance(_ context.Context, entryID uint64) (*model.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.attendance[entryID]
	if !ok {
		return nil, store.ErrEntryNotFound
	}
	out := rec
	return &out, nil
}

// SetAttendance overwrites the record's state and timestamp.
func (s *Store) SetAttendance(_ context.Context, entryID uint64, state model.AttendanceState, checkedInAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.attendance[entryID]
	if !ok {
		return store.ErrEntryNotFound
	}
	rec.State = state
	rec.CheckedInAt = checkedInAt
	rec.UpdatedAt = s.now()
	s.attendance[entryID] = rec
	return nil
}

// NextSerial allocates the next sequence number for the year under
// the store lock, so two concurrent issuances can never share one.
func (s *Store) NextSerial(_ context.Context, year int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serialSeq[year]++
	return s.serialSeq[year], nil
}

// CreateCertificate stores the certificate, enforcing at most one per
// entry.
func (s *Store) CreateCertificate(_ context.Context, c *model.Certificate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.certs[c.EntryID]; ok {
		return store.ErrAlreadyIssued
	}
	s.certs[c.EntryID] = *c
	s.certSerials[c.SerialNumber] = c.EntryID
	return nil
}

// GetCertificateByEntry returns the entry's certificate, if any.
func (s *Store) GetCertificateByEntry(_ context.Context, entryID uint64) (*model.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[entryID]
	if !ok {
		return nil, store.ErrNotIssued
	}
	out := c
	return &out, nil
}

// GetCertificateBySerial resolves a serial number.
func (s *Store) GetCertificateBySerial(_ context.Context, serial string) (*model.Certificate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.certSerials[serial]
	if !ok {
		return nil, store.ErrNotIssued
	}
	c := s.certs[id]
	return &c, nil
}

// DeleteCertificate removes the certificate row entirely.
func (s *Store) DeleteCertificate(_ context.Context, entryID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.certs[entryID]
	if !ok {
		return store.ErrNotIssued
	}
	delete(s.certs, entryID)
	delete(s.certSerials, c.SerialNumber)
	return nil
}
