package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// Certificates gates credential issuance on attendance.  Serials are
// CERT-<year>-<sequence>, with the sequence allocated atomically per
// year by the store.
type Certificates struct {
	store store.Store
	pub   Publisher
	log   zerolog.Logger
}

// NewCertificates constructs a Certificates service.  pub may be nil.
func NewCertificates(st store.Store, pub Publisher, log zerolog.Logger) *Certificates {
	return &Certificates{store: st, pub: pub, log: log}
}

// Issue creates the certificate for an attended entry.  A second call
// for the same entry fails with store.ErrAlreadyIssued rather than
// returning the existing certificate, so double submissions surface
// as errors on the caller side.
func (s *Certificates) Issue(ctx context.Context, now time.Time, entryID uint64) (*model.Certificate, error) {
	att, err := s.store.GetAttendance(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if att.State != model.AttendanceAttended {
		return nil, ErrNotAttended
	}
	if _, err := s.store.GetCertificateByEntry(ctx, entryID); err == nil {
		return nil, store.ErrAlreadyIssued
	}
	year := now.UTC().Year()
	seq, err := s.store.NextSerial(ctx, year)
	if err != nil {
		return nil, err
	}
	cert := &model.Certificate{
		EntryID:      entryID,
		SerialNumber: serialNumber(year, seq),
		IssuedAt:     now.UTC(),
	}
	if err := s.store.CreateCertificate(ctx, cert); err != nil {
		return nil, err
	}
	if s.pub != nil {
		entry, eerr := s.store.GetEntry(ctx, entryID)
		if eerr == nil {
			_ = s.pub.PublishCertificateIssued(ctx, queue.CertificateIssuedEvent{
				EntryID:      entryID,
				EventID:      entry.EventID,
				SerialNumber: cert.SerialNumber,
				IssuedAt:     cert.IssuedAt.Format(time.RFC3339),
			})
		}
	}
	s.log.Info().Uint64("entry_id", entryID).Str("serial", cert.SerialNumber).Msg("certificate issued")
	return cert, nil
}

// serialNumber renders CERT-<year>-<seq>.  The sequence is padded to
// three digits and widens naturally past 999; serials stay unique and
// ordered either way, the padding is cosmetic.
func serialNumber(year int, seq int64) string {
	return fmt.Sprintf("CERT-%d-%03d", year, seq)
}

// Revoke deletes the certificate outright.  Afterwards the entry can
// be issued a fresh certificate again if it is still attended.
func (s *Certificates) Revoke(ctx context.Context, entryID uint64) error {
	if err := s.store.DeleteCertificate(ctx, entryID); err != nil {
		return err
	}
	s.log.Info().Uint64("entry_id", entryID).Msg("certificate revoked")
	return nil
}

// GetByEntry returns the entry's certificate, if one exists.
func (s *Certificates) GetByEntry(ctx context.Context, entryID uint64) (*model.Certificate, error) {
	return s.store.GetCertificateByEntry(ctx, entryID)
}

// LookupSerial resolves a serial number for external verification.
func (s *Certificates) LookupSerial(ctx context.Context, serial string) (*model.Certificate, error) {
	return s.store.GetCertificateBySerial(ctx, serial)
}
