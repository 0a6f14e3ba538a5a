package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

const entryColumns = `id, reference, event_id, tier_id, quantity, unit_price_cents, total_price_cents,
                      commission_cents, net_cents, verification_status, participant, created_at, updated_at, cancelled_at`

// CreateEntry inserts the ledger entry and its initial attendance
// record in a single transaction, so a registration and its check-in
// state can never exist without each other.  The financial columns
// written here are never updated by any other statement in this
// package.
func (r *Repo) CreateEntry(ctx context.Context, e *model.Registration) error {
	payload, err := json.Marshal(e.Participant)
	if err != nil {
		return fmt.Errorf("marshal participant: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	const q = `INSERT INTO ledger_entries
               (reference, event_id, tier_id, quantity, unit_price_cents, total_price_cents, commission_cents, net_cents, verification_status, participant)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q,
		e.Reference, e.EventID, nullUint(e.TierID), e.Quantity, e.UnitPriceCents, e.TotalPriceCents,
		e.CommissionCents, e.NetCents, string(e.Status), payload,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	const attQ = `INSERT INTO attendance_records (entry_id, state) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, attQ, e.ID, string(model.AttendanceNotCheckedIn)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	got, err := r.GetEntry(ctx, e.ID)
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// GetEntry returns one ledger entry by id.
func (r *Repo) GetEntry(ctx context.Context, id uint64) (*model.Registration, error) {
	const q = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrEntryNotFound
	}
	return e, err
}

// GetEntryByReference resolves the public lookup code.
func (r *Repo) GetEntryByReference(ctx context.Context, ref string) (*model.Registration, error) {
	const q = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE reference = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, ref))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrEntryNotFound
	}
	return e, err
}

// ListEntriesByEvent returns the event's entries newest first.
func (r *Repo) ListEntriesByEvent(ctx context.Context, eventID uint64, includeCancelled bool) ([]model.Registration, error) {
	q := `SELECT ` + entryColumns + ` FROM ledger_entries WHERE event_id = ?`
	if !includeCancelled {
		q += ` AND cancelled_at IS NULL`
	}
	q += ` ORDER BY id DESC`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListAllEntries returns every non-cancelled entry across events,
// ascending by id.  Revenue projections consume exactly these rows.
func (r *Repo) ListAllEntries(ctx context.Context) ([]model.Registration, error) {
	const q = `SELECT ` + entryColumns + ` FROM ledger_entries WHERE cancelled_at IS NULL ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectEntries(rows)
}

// SetVerification updates the status column only; cancelled entries
// are rejected.
func (r *Repo) SetVerification(ctx context.Context, entryID uint64, status model.VerificationStatus) error {
	const q = `UPDATE ledger_entries SET verification_status = ?, updated_at = NOW() WHERE id = ? AND cancelled_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, string(status), entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetEntry(ctx, entryID); err != nil {
			return err
		}
		return store.ErrEntryCancelled
	}
	return nil
}

// CancelEntry stamps cancelled_at conditionally so a second cancel
// affects zero rows; the caller then releases quota exactly once.
func (r *Repo) CancelEntry(ctx context.Context, entryID uint64, at time.Time) error {
	const q = `UPDATE ledger_entries SET cancelled_at = ?, updated_at = ? WHERE id = ? AND cancelled_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, at.UTC(), at.UTC(), entryID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetEntry(ctx, entryID); err != nil {
			return err
		}
		return store.ErrEntryCancelled
	}
	return nil
}

func collectEntries(rows *sql.Rows) ([]model.Registration, error) {
	out := make([]model.Registration, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, rows.Err()
}

func scanEntry(s rowScanner) (*model.Registration, error) {
	var e model.Registration
	var tierID sql.NullInt64
	var status string
	var payload []byte
	var cancelledAt sql.NullTime
	if err := s.Scan(
		&e.ID, &e.Reference, &e.EventID, &tierID, &e.Quantity, &e.UnitPriceCents, &e.TotalPriceCents,
		&e.CommissionCents, &e.NetCents, &status, &payload, &e.CreatedAt, &e.UpdatedAt, &cancelledAt,
	); err != nil {
		return nil, err
	}
	e.Status = model.VerificationStatus(status)
	if tierID.Valid {
		id := uint64(tierID.Int64)
		e.TierID = &id
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		e.CancelledAt = &t
	}
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &e.Participant); err != nil {
			return nil, fmt.Errorf("unmarshal participant: %w", err)
		}
	}
	return &e, nil
}

func nullUint(n *uint64) any {
	if n == nil {
		return nil
	}
	return *n
}
