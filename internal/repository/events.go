package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

const eventColumns = `id, title, starts_at, ends_at, is_free, capacity, participant_mode, flyer_url, created_at, updated_at, deleted_at`

// CreateEvent inserts the event and populates its generated ID and
// timestamps from the stored row.
func (r *Repo) CreateEvent(ctx context.Context, ev *model.Event) error {
	const q = `INSERT INTO events (title, starts_at, ends_at, is_free, capacity, participant_mode, flyer_url)
               VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.StartsAt.UTC(), nullTime(ev.EndsAt), ev.IsFree, nullInt(ev.Capacity), string(ev.Mode), nullStr(ev.FlyerURL),
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	ev.ID = uint64(id)
	got, err := r.GetEvent(ctx, ev.ID)
	if err != nil {
		return err
	}
	*ev = *got
	return nil
}

// GetEvent returns the event row, soft-removed or not; callers decide
// how to treat DeletedAt.
func (r *Repo) GetEvent(ctx context.Context, id uint64) (*model.Event, error) {
	const q = `SELECT ` + eventColumns + ` FROM events WHERE id = ?`
	ev, err := scanEvent(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrEventNotFound
	}
	return ev, err
}

// ListEvents returns events ascending by id.
func (r *Repo) ListEvents(ctx context.Context, includeDeleted bool) ([]model.Event, error) {
	q := `SELECT ` + eventColumns + ` FROM events`
	if !includeDeleted {
		q += ` WHERE deleted_at IS NULL`
	}
	q += ` ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Event, 0)
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

// UpdateEvent persists the mutable columns of the event.
func (r *Repo) UpdateEvent(ctx context.Context, ev *model.Event) error {
	const q = `UPDATE events
               SET title = ?, starts_at = ?, ends_at = ?, is_free = ?, capacity = ?, flyer_url = ?, updated_at = ?
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q,
		ev.Title, ev.StartsAt.UTC(), nullTime(ev.EndsAt), ev.IsFree, nullInt(ev.Capacity), nullStr(ev.FlyerURL), ev.UpdatedAt.UTC(), ev.ID,
	)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrEventNotFound)
}

// SoftDeleteEvent stamps deleted_at; the row and its dependents stay.
func (r *Repo) SoftDeleteEvent(ctx context.Context, id uint64, at time.Time) error {
	const q = `UPDATE events SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, at.UTC(), at.UTC(), id)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrEventNotFound)
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(s rowScanner) (*model.Event, error) {
	var ev model.Event
	var endsAt, deletedAt sql.NullTime
	var capacity sql.NullInt64
	var flyer sql.NullString
	var mode string
	if err := s.Scan(
		&ev.ID, &ev.Title, &ev.StartsAt, &endsAt, &ev.IsFree, &capacity, &mode, &flyer, &ev.CreatedAt, &ev.UpdatedAt, &deletedAt,
	); err != nil {
		return nil, err
	}
	ev.Mode = model.ParticipantMode(mode)
	if endsAt.Valid {
		t := endsAt.Time
		ev.EndsAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		ev.DeletedAt = &t
	}
	if capacity.Valid {
		n := capacity.Int64
		ev.Capacity = &n
	}
	if flyer.Valid {
		f := flyer.String
		ev.FlyerURL = &f
	}
	return &ev, nil
}

// requireRow converts a zero-row update into the given sentinel.
func requireRow(res sql.Result, sentinel error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sentinel
	}
	return nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func nullInt(n *int64) any {
	if n == nil {
		return nil
	}
	return *n
}

func nullStr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
