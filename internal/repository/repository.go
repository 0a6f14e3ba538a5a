// Package repository is the MySQL implementation of store.Store.  It
// follows the same row-mapping conventions throughout: all timestamps
// are stored and scanned in UTC, nullable columns map to pointer
// fields, and the participant payload is serialized as JSON.  The one
// concurrency-sensitive write, the tier sold counter, is always a
// single conditional UPDATE so overselling is impossible regardless
// of how many registrations race.
package repository

import (
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/store"
)

// Repo bundles every table's operations behind one handle.  It
// satisfies store.Store.
type Repo struct {
	db *sql.DB
}

// New returns a Repo bound to the given database.
func New(db *sql.DB) *Repo { return &Repo{db: db} }

var _ store.Store = (*Repo)(nil)

// DB exposes the underlying handle for health checks.
func (r *Repo) DB() *sql.DB { return r.db }
