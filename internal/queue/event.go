// Package queue defines message payloads exchanged over the message broker.
package queue

// Queue names shared by the publisher and the consumer.
const (
	RegistrationQueue = "registration.confirmed"
	CertificateQueue  = "certificate.issued"
)

// RegistrationConfirmedEvent is published after a ledger entry is
// durably created.  It contains enough information for downstream
// consumers to notify, export or run analytics without querying the
// primary database.
type RegistrationConfirmedEvent struct {
	EntryID         uint64 `json:"entry_id"`
	Reference       string `json:"reference"`
	EventID         uint64 `json:"event_id"`
	EventTitle      string `json:"event_title"`
	TierName        string `json:"tier_name,omitempty"`
	Quantity        int64  `json:"quantity"`
	TotalCents      int64  `json:"total_cents"`
	CommissionCents int64  `json:"commission_cents"`
	NetCents        int64  `json:"net_cents"`
	Mode            string `json:"participant_mode"`
	RegisteredAt    string `json:"registered_at"`
}

// CertificateIssuedEvent is published when a certificate is issued so
// the notification sink can deliver the credential reference to the
// participant.
type CertificateIssuedEvent struct {
	EntryID      uint64 `json:"entry_id"`
	EventID      uint64 `json:"event_id"`
	SerialNumber string `json:"serial_number"`
	IssuedAt     string `json:"issued_at"`
}
