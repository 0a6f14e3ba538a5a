package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

const tierColumns = `id, event_id, name, price_cents, quota, sold, retired, created_at, updated_at`

// CreateTier inserts the tier and populates its generated ID.
func (r *Repo) CreateTier(ctx context.Context, t *model.TicketTier) error {
	const q = `INSERT INTO ticket_tiers (event_id, name, price_cents, quota, sold, retired)
               VALUES (?, ?, ?, ?, 0, 0)`
	res, err := r.db.ExecContext(ctx, q, t.EventID, t.Name, t.PriceCents, nullInt(t.Quota))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	got, err := r.GetTier(ctx, t.ID)
	if err != nil {
		return err
	}
	*t = *got
	return nil
}

// GetTier returns the tier row including its current sold counter.
func (r *Repo) GetTier(ctx context.Context, id uint64) (*model.TicketTier, error) {
	const q = `SELECT ` + tierColumns + ` FROM ticket_tiers WHERE id = ?`
	t, err := scanTier(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrTierNotFound
	}
	return t, err
}

// ListTiers returns the event's tiers ascending by id.
func (r *Repo) ListTiers(ctx context.Context, eventID uint64) ([]model.TicketTier, error) {
	const q = `SELECT ` + tierColumns + ` FROM ticket_tiers WHERE event_id = ? ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.TicketTier, 0)
	for rows.Next() {
		t, err := scanTier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// UpdateTier persists name, price and retired flag.  Quota and sold
// are deliberately excluded; they change only through SetQuota,
// Reserve and Release.
func (r *Repo) UpdateTier(ctx context.Context, t *model.TicketTier) error {
	const q = `UPDATE ticket_tiers SET name = ?, price_cents = ?, retired = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, t.Name, t.PriceCents, t.Retired, t.UpdatedAt.UTC(), t.ID)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrTierNotFound)
}

// SetQuota changes the quota in one conditional statement so the
// comparison against sold cannot race with reservations.  Lowering
// below sold affects zero rows and is reported as ErrQuotaBelowSold.
func (r *Repo) SetQuota(ctx context.Context, tierID uint64, quota *int64) error {
	if quota == nil {
		const q = `UPDATE ticket_tiers SET quota = NULL WHERE id = ?`
		res, err := r.db.ExecContext(ctx, q, tierID)
		if err != nil {
			return err
		}
		return requireRow(res, store.ErrTierNotFound)
	}
	const q = `UPDATE ticket_tiers SET quota = ? WHERE id = ? AND sold <= ?`
	res, err := r.db.ExecContext(ctx, q, *quota, tierID, *quota)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetTier(ctx, tierID); err != nil {
			return err
		}
		return store.ErrQuotaBelowSold
	}
	return nil
}

// Reserve is the single linearization point preventing oversell: the
// quota check and the sold increment happen in one conditional UPDATE
// on the tier row.  Two racing registrations can never both pass a
// stale check because the condition is re-evaluated under the row
// lock the statement takes.
func (r *Repo) Reserve(ctx context.Context, tierID uint64, qty int64) error {
	const q = `UPDATE ticket_tiers
               SET sold = sold + ?
               WHERE id = ? AND retired = 0 AND (quota IS NULL OR sold + ? <= quota)`
	res, err := r.db.ExecContext(ctx, q, qty, tierID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// Zero rows: tell the caller which condition failed.
	t, err := r.GetTier(ctx, tierID)
	if err != nil {
		return err
	}
	if t.Retired {
		return store.ErrTierRetired
	}
	return store.ErrOutOfStock
}

// Release is the compensating decrement, floored at zero.
func (r *Repo) Release(ctx context.Context, tierID uint64, qty int64) error {
	const q = `UPDATE ticket_tiers SET sold = GREATEST(sold - ?, 0) WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, qty, tierID)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrTierNotFound)
}

// SoldForEvent sums the sold counters of every tier of the event.
func (r *Repo) SoldForEvent(ctx context.Context, eventID uint64) (int64, error) {
	const q = `SELECT COALESCE(SUM(sold), 0) FROM ticket_tiers WHERE event_id = ?`
	var total int64
	if err := r.db.QueryRowContext(ctx, q, eventID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func scanTier(s rowScanner) (*model.TicketTier, error) {
	var t model.TicketTier
	var quota sql.NullInt64
	if err := s.Scan(
		&t.ID, &t.EventID, &t.Name, &t.PriceCents, &quota, &t.Sold, &t.Retired, &t.CreatedAt, &t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if quota.Valid {
		n := quota.Int64
		t.Quota = &n
	}
	return &t, nil
}
