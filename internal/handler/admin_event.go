package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// AdminHandler groups the organizer-facing operations: catalog
// management, ledger adjustments, attendance and certificates.  All
// routes behind it require an authenticated staff role.
type AdminHandler struct {
	Catalog    *service.Catalog
	Ledger     *service.Ledger
	Attendance *service.Attendance
	Certs      *service.Certificates
	Log        zerolog.Logger
}

// NewAdminHandler wires the admin surface to its services.
func NewAdminHandler(cat *service.Catalog, led *service.Ledger, att *service.Attendance, certs *service.Certificates, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{Catalog: cat, Ledger: led, Attendance: att, Certs: certs, Log: log}
}

// tierBody is the wire shape of a tier at event creation time.
type tierBody struct {
	Name       string `json:"name" validate:"required"`
	PriceCents int64  `json:"price_cents" validate:"gte=0"`
	Quota      *int64 `json:"quota,omitempty"`
}

// createEventBody is the POST /v1/events payload.
type createEventBody struct {
	Title    string     `json:"title" validate:"required"`
	StartsAt time.Time  `json:"starts_at" validate:"required"`
	EndsAt   *time.Time `json:"ends_at,omitempty"`
	Capacity *int64     `json:"capacity,omitempty"`
	Mode     string     `json:"participant_mode" validate:"required,oneof=individual team"`
	FlyerURL *string    `json:"flyer_url,omitempty"`
	Tiers    []tierBody `json:"tiers" validate:"dive"`
}

// CreateEvent handles POST /v1/events.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var body createEventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	in := service.CreateEventInput{
		Title:    body.Title,
		StartsAt: body.StartsAt,
		EndsAt:   body.EndsAt,
		Capacity: body.Capacity,
		Mode:     model.ParticipantMode(body.Mode),
		FlyerURL: body.FlyerURL,
		Tiers:    make([]service.TierInput, 0, len(body.Tiers)),
	}
	for _, t := range body.Tiers {
		in.Tiers = append(in.Tiers, service.TierInput{Name: t.Name, PriceCents: t.PriceCents, Quota: t.Quota})
	}
	ev, tiers, err := h.Catalog.CreateEvent(c.Request().Context(), time.Now(), in)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"event": ev, "tiers": tiers})
}

// updateEventBody is the PATCH /v1/events/:id payload; absent fields
// are left unchanged, and capacity may be lifted with clear_capacity.
type updateEventBody struct {
	Title         *string    `json:"title,omitempty"`
	StartsAt      *time.Time `json:"starts_at,omitempty"`
	EndsAt        *time.Time `json:"ends_at,omitempty"`
	Capacity      *int64     `json:"capacity,omitempty"`
	ClearCapacity bool       `json:"clear_capacity,omitempty"`
	FlyerURL      *string    `json:"flyer_url,omitempty"`
}

// UpdateEvent handles PATCH /v1/events/:id.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body updateEventBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ev, err := h.Catalog.UpdateEvent(c.Request().Context(), time.Now(), id, service.UpdateEventInput{
		Title:         body.Title,
		StartsAt:      body.StartsAt,
		EndsAt:        body.EndsAt,
		Capacity:      body.Capacity,
		ClearCapacity: body.ClearCapacity,
		FlyerURL:      body.FlyerURL,
	})
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev})
}

// DeleteEvent handles DELETE /v1/events/:id (soft removal; the
// ledger history underneath stays intact).
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Catalog.DeleteEvent(c.Request().Context(), time.Now(), id); err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "event removed"})
}

// AddTier handles POST /v1/events/:id/tiers.
func (h *AdminHandler) AddTier(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body tierBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	tier, err := h.Catalog.AddTier(c.Request().Context(), time.Now(), id, service.TierInput{
		Name:       body.Name,
		PriceCents: body.PriceCents,
		Quota:      body.Quota,
	})
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"tier": tier})
}

// editTierBody is the PATCH /v1/events/:id/tiers/:tier_id payload.
// Price edits only affect future registrations; existing entries
// keep their snapshot.
type editTierBody struct {
	Name       *string `json:"name,omitempty"`
	PriceCents *int64  `json:"price_cents,omitempty"`
	Quota      *int64  `json:"quota,omitempty"`
	ClearQuota bool    `json:"clear_quota,omitempty"`
}

// EditTier handles PATCH /v1/events/:id/tiers/:tier_id.
func (h *AdminHandler) EditTier(c echo.Context) error {
	id, ok := pathID(c, "tier_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier id"})
	}
	var body editTierBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tier, err := h.Catalog.EditTier(c.Request().Context(), time.Now(), id, service.EditTierInput{
		Name:       body.Name,
		PriceCents: body.PriceCents,
		Quota:      body.Quota,
		ClearQuota: body.ClearQuota,
	})
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tier": tier})
}

// RetireTier handles POST /v1/events/:id/tiers/:tier_id/retire.  A
// retired tier stops accepting registrations but keeps its sold
// count for reporting.
func (h *AdminHandler) RetireTier(c echo.Context) error {
	id, ok := pathID(c, "tier_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tier id"})
	}
	if err := h.Catalog.RetireTier(c.Request().Context(), time.Now(), id); err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "tier retired"})
}
