package service

import (
	"context"
	"sort"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// RevenueFilter narrows a per-event summary to one verification
// status.  The zero value means both.
type RevenueFilter string

const (
	FilterAll      RevenueFilter = "all"
	FilterVerified RevenueFilter = "verified"
	FilterPending  RevenueFilter = "pending"
)

// Valid reports whether the filter is a known value.
func (f RevenueFilter) Valid() bool {
	return f == FilterAll || f == FilterVerified || f == FilterPending
}

// TierRevenue groups one event's sums by tier name.  Tierless entries
// appear under the name "general".
type TierRevenue struct {
	TierName      string `json:"tier_name"`
	VerifiedCents int64  `json:"verified_total_cents"`
	PendingCents  int64  `json:"pending_total_cents"`
	CountVerified int    `json:"count_verified"`
	CountPending  int    `json:"count_pending"`
}

// EventRevenue is the per-event summary shown to admins.  Every
// number is a pure function of the non-cancelled ledger entries.
type EventRevenue struct {
	EventID         uint64        `json:"event_id"`
	VerifiedCents   int64         `json:"verified_total_cents"`
	PendingCents    int64         `json:"pending_total_cents"`
	CommissionCents int64         `json:"commission_total_cents"`
	NetCents        int64         `json:"net_total_cents"`
	CountVerified   int           `json:"count_verified"`
	CountPending    int           `json:"count_pending"`
	PerTier         []TierRevenue `json:"per_tier"`
}

// LeaderboardRow is one line of the cross-event dashboard overview.
type LeaderboardRow struct {
	EventID       uint64 `json:"event_id"`
	Title         string `json:"title"`
	VerifiedCents int64  `json:"verified_total_cents"`
	PendingCents  int64  `json:"pending_total_cents"`
	TotalCents    int64  `json:"total_cents"`
}

// RosterRow is one attendance line handed to export tooling.  The
// core produces rows only; CSV/Excel formatting is the caller's job.
type RosterRow struct {
	EntryID     uint64  `json:"entry_id"`
	Reference   string  `json:"reference"`
	Name        string  `json:"name"`
	TierName    string  `json:"tier_name"`
	Quantity    int64   `json:"quantity"`
	Status      string  `json:"verification_status"`
	Attendance  string  `json:"attendance"`
	CheckedInAt *string `json:"checked_in_at,omitempty"`
}

// Revenue is a read-only projection over the registration ledger.  It
// holds no caches and takes no locks: every call recomputes from the
// same ledger rows, which is what guarantees that the per-event and
// cross-event views can never disagree.
type Revenue struct {
	store store.Store
}

// NewRevenue constructs a Revenue projection.
func NewRevenue(st store.Store) *Revenue {
	return &Revenue{store: st}
}

// PerEvent sums total_price over the event's non-cancelled entries,
// split by verification status and grouped by tier name.
func (r *Revenue) PerEvent(ctx context.Context, eventID uint64, filter RevenueFilter) (*EventRevenue, error) {
	if _, err := r.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	entries, err := r.store.ListEntriesByEvent(ctx, eventID, false)
	if err != nil {
		return nil, err
	}
	tiers, err := r.store.ListTiers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tierNames := make(map[uint64]string, len(tiers))
	for _, t := range tiers {
		tierNames[t.ID] = t.Name
	}

	out := &EventRevenue{EventID: eventID}
	byTier := make(map[string]*TierRevenue)
	order := make([]string, 0)
	for _, e := range entries {
		verified := e.Status == model.VerificationVerified
		if filter == FilterVerified && !verified {
			continue
		}
		if filter == FilterPending && verified {
			continue
		}
		name := "general"
		if e.TierID != nil {
			if n, ok := tierNames[*e.TierID]; ok {
				name = n
			}
		}
		tr, ok := byTier[name]
		if !ok {
			tr = &TierRevenue{TierName: name}
			byTier[name] = tr
			order = append(order, name)
		}
		if verified {
			out.VerifiedCents += e.TotalPriceCents
			out.CountVerified++
			tr.VerifiedCents += e.TotalPriceCents
			tr.CountVerified++
		} else {
			out.PendingCents += e.TotalPriceCents
			out.CountPending++
			tr.PendingCents += e.TotalPriceCents
			tr.CountPending++
		}
		out.CommissionCents += e.CommissionCents
		out.NetCents += e.NetCents
	}
	sort.Strings(order)
	out.PerTier = make([]TierRevenue, 0, len(order))
	for _, name := range order {
		out.PerTier = append(out.PerTier, *byTier[name])
	}
	return out, nil
}

// CrossEvent builds the dashboard leaderboard, descending by total.
// It reads the same ledger rows as PerEvent; there are no separate
// counters to drift out of sync.  topN <= 0 returns every event.
func (r *Revenue) CrossEvent(ctx context.Context, topN int) ([]LeaderboardRow, error) {
	entries, err := r.store.ListAllEntries(ctx)
	if err != nil {
		return nil, err
	}
	events, err := r.store.ListEvents(ctx, true)
	if err != nil {
		return nil, err
	}
	titles := make(map[uint64]string, len(events))
	for _, ev := range events {
		titles[ev.ID] = ev.Title
	}
	byEvent := make(map[uint64]*LeaderboardRow)
	for _, e := range entries {
		row, ok := byEvent[e.EventID]
		if !ok {
			row = &LeaderboardRow{EventID: e.EventID, Title: titles[e.EventID]}
			byEvent[e.EventID] = row
		}
		if e.Status == model.VerificationVerified {
			row.VerifiedCents += e.TotalPriceCents
		} else {
			row.PendingCents += e.TotalPriceCents
		}
		row.TotalCents += e.TotalPriceCents
	}
	rows := make([]LeaderboardRow, 0, len(byEvent))
	for _, row := range byEvent {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].TotalCents != rows[j].TotalCents {
			return rows[i].TotalCents > rows[j].TotalCents
		}
		return rows[i].EventID < rows[j].EventID
	})
	if topN > 0 && len(rows) > topN {
		rows = rows[:topN]
	}
	return rows, nil
}

// AttendanceRoster returns export rows for one event, including
// cancelled entries so the roster doubles as an audit view.
func (r *Revenue) AttendanceRoster(ctx context.Context, eventID uint64) ([]RosterRow, error) {
	if _, err := r.store.GetEvent(ctx, eventID); err != nil {
		return nil, err
	}
	entries, err := r.store.ListEntriesByEvent(ctx, eventID, true)
	if err != nil {
		return nil, err
	}
	tiers, err := r.store.ListTiers(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tierNames := make(map[uint64]string, len(tiers))
	for _, t := range tiers {
		tierNames[t.ID] = t.Name
	}
	rows := make([]RosterRow, 0, len(entries))
	for _, e := range entries {
		name := ""
		switch e.Participant.Mode {
		case model.ModeIndividual:
			if e.Participant.Individual != nil {
				name = e.Participant.Individual.FullName
			}
		case model.ModeTeam:
			if e.Participant.Team != nil {
				name = e.Participant.Team.Name
			}
		}
		tierName := "general"
		if e.TierID != nil {
			if n, ok := tierNames[*e.TierID]; ok {
				tierName = n
			}
		}
		row := RosterRow{
			EntryID:   e.ID,
			Reference: e.Reference,
			Name:      name,
			TierName:  tierName,
			Quantity:  e.Quantity,
			Status:    string(e.Status),
		}
		if e.Cancelled() {
			row.Status = "cancelled"
		}
		att, aerr := r.store.GetAttendance(ctx, e.ID)
		if aerr == nil {
			row.Attendance = string(att.State)
			if att.CheckedInAt != nil {
				iso := att.CheckedInAt.Format(time.RFC3339)
				row.CheckedInAt = &iso
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
