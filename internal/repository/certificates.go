package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// NextSerial allocates the next certificate sequence for the year
// with a single upsert.  The LAST_INSERT_ID trick makes the increment
// and the read one atomic statement, so concurrent issuances can
// never be handed the same sequence.
func (r *Repo) NextSerial(ctx context.Context, year int) (int64, error) {
	const q = `INSERT INTO certificate_serials (year, seq) VALUES (?, LAST_INSERT_ID(1))
               ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)`
	res, err := r.db.ExecContext(ctx, q, year)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// CreateCertificate inserts the certificate.  The unique key on
// entry_id turns a double issue into ErrAlreadyIssued.
func (r *Repo) CreateCertificate(ctx context.Context, c *model.Certificate) error {
	const q = `INSERT INTO certificates (entry_id, serial_number, issued_at) VALUES (?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, c.EntryID, c.SerialNumber, c.IssuedAt.UTC()); err != nil {
		if isDuplicate(err) {
			return store.ErrAlreadyIssued
		}
		return err
	}
	return nil
}

// GetCertificateByEntry returns the entry's certificate, if any.
func (r *Repo) GetCertificateByEntry(ctx context.Context, entryID uint64) (*model.Certificate, error) {
	const q = `SELECT entry_id, serial_number, issued_at FROM certificates WHERE entry_id = ?`
	return r.scanCertificate(r.db.QueryRowContext(ctx, q, entryID))
}

// GetCertificateBySerial resolves a serial number.
func (r *Repo) GetCertificateBySerial(ctx context.Context, serial string) (*model.Certificate, error) {
	const q = `SELECT entry_id, serial_number, issued_at FROM certificates WHERE serial_number = ?`
	return r.scanCertificate(r.db.QueryRowContext(ctx, q, serial))
}

// DeleteCertificate removes the row outright; existence of the row is
// the one and only signal that an entry holds a certificate.
func (r *Repo) DeleteCertificate(ctx context.Context, entryID uint64) error {
	const q = `DELETE FROM certificates WHERE entry_id = ?`
	res, err := r.db.ExecContext(ctx, q, entryID)
	if err != nil {
		return err
	}
	return requireRow(res, store.ErrNotIssued)
}

func (r *Repo) scanCertificate(row *sql.Row) (*model.Certificate, error) {
	var c model.Certificate
	err := row.Scan(&c.EntryID, &c.SerialNumber, &c.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotIssued
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// isDuplicate recognizes MySQL duplicate-key errors (1062).
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
