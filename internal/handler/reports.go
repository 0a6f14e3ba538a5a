package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/service"
)

// ReportsHandler serves the revenue projections.  Every figure it
// returns is recomputed from the ledger rows on each request, so the
// breakdowns always reconcile with the per-entry snapshots.
type ReportsHandler struct {
	Revenue *service.Revenue
	Log     zerolog.Logger
}

// NewReportsHandler wires the report surface to the revenue service.
func NewReportsHandler(rev *service.Revenue, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{Revenue: rev, Log: log}
}

// EventRevenue handles GET /v1/events/:id/revenue.  The optional
// filter query narrows the projection to verified or pending entries.
func (h *ReportsHandler) EventRevenue(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	filter := service.RevenueFilter(c.QueryParam("filter"))
	if filter == "" {
		filter = service.FilterAll
	}
	if !filter.Valid() {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "filter must be all, verified or pending"})
	}
	rev, err := h.Revenue.PerEvent(c.Request().Context(), id, filter)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"revenue": rev})
}

// Leaderboard handles GET /v1/reports/revenue?top=N, the cross-event
// ranking by collected revenue.  Responses sit behind the Redis
// response cache, so a short staleness window is expected.
func (h *ReportsHandler) Leaderboard(c echo.Context) error {
	topN := 0
	if raw := c.QueryParam("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "top must be a positive number"})
		}
		topN = n
	}
	rows, err := h.Revenue.CrossEvent(c.Request().Context(), topN)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"events": rows})
}

// Roster handles GET /v1/events/:id/roster and returns the check-in
// sheet for an event, cancelled entries included and marked.
func (h *ReportsHandler) Roster(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	rows, err := h.Revenue.AttendanceRoster(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"roster": rows})
}
