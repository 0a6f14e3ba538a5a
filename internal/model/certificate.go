package model

import "time"

// Certificate is issued at most once per ledger entry, and only while
// the entry's attendance record is attended.  Revocation deletes the
// row outright so "has a certificate" is simply "row exists".
//
// Fields:
//
//	EntryID      – owning ledger entry.
//	SerialNumber – unique credential code, CERT-<year>-<sequence>.
//	IssuedAt     – issuance timestamp.
type Certificate struct {
	EntryID      uint64    `json:"entry_id"`      // certificates.entry_id
	SerialNumber string    `json:"serial_number"` // certificates.serial_number
	IssuedAt     time.Time `json:"issued_at"`     // certificates.issued_at
}
