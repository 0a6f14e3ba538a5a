package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

// PublicHandler serves the unauthenticated surface: browsing events,
// registering, and looking up registrations and certificates.
type PublicHandler struct {
	Catalog *service.Catalog
	Ledger  *service.Ledger
	Certs   *service.Certificates
	Log     zerolog.Logger
}

// NewPublicHandler wires the public surface to its services.
func NewPublicHandler(cat *service.Catalog, led *service.Ledger, certs *service.Certificates, log zerolog.Logger) *PublicHandler {
	return &PublicHandler{Catalog: cat, Ledger: led, Certs: certs, Log: log}
}

// ListEvents handles GET /v1/events.
func (h *PublicHandler) ListEvents(c echo.Context) error {
	events, err := h.Catalog.ListEvents(c.Request().Context())
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// GetEvent handles GET /v1/events/:id and returns the event together
// with its active tiers and remaining seats per tier.
func (h *PublicHandler) GetEvent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ev, tiers, err := h.Catalog.GetEvent(c.Request().Context(), id)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	type tierView struct {
		model.TicketTier
		Remaining *int64 `json:"remaining,omitempty"`
	}
	views := make([]tierView, 0, len(tiers))
	for i := range tiers {
		v := tierView{TicketTier: tiers[i]}
		if tiers[i].Quota != nil {
			rem := tiers[i].Remaining()
			v.Remaining = &rem
		}
		views = append(views, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"event": ev, "tiers": views})
}

// registerBody is the POST /v1/events/:id/register payload.  Exactly
// one of individual or team must be present, matching the event's
// participant mode.
type registerBody struct {
	TierID     *uint64           `json:"tier_id,omitempty"`
	Quantity   int64             `json:"quantity" validate:"gte=1"`
	Individual *model.Individual `json:"individual,omitempty"`
	Team       *model.Team       `json:"team,omitempty"`
}

// Register handles POST /v1/events/:id/register.  The whole flow is
// all-or-nothing: either a ledger entry with its financial snapshot
// comes back, or nothing was reserved.
func (h *PublicHandler) Register(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body registerBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&body); err != nil {
		return err
	}
	part := model.Participant{Individual: body.Individual, Team: body.Team}
	switch {
	case body.Individual != nil:
		part.Mode = model.ModeIndividual
	case body.Team != nil:
		part.Mode = model.ModeTeam
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "individual or team payload is required"})
	}
	reg, err := h.Ledger.Register(c.Request().Context(), time.Now(), service.RegisterInput{
		EventID:     id,
		TierID:      body.TierID,
		Quantity:    body.Quantity,
		Participant: part,
	})
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"registration": reg})
}

// GetRegistration handles GET /v1/registrations/:ref, the lookup a
// registrant uses with the reference from their confirmation.
func (h *PublicHandler) GetRegistration(c echo.Context) error {
	ref := c.Param("ref")
	if ref == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reference"})
	}
	reg, err := h.Ledger.GetEntryByReference(c.Request().Context(), ref)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"registration": reg})
}

// GetCertificate handles GET /v1/certificates/:serial so a printed
// serial can be verified by anyone.
func (h *PublicHandler) GetCertificate(c echo.Context) error {
	serial := c.Param("serial")
	if serial == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid serial"})
	}
	cert, err := h.Certs.LookupSerial(c.Request().Context(), serial)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"certificate": cert})
}
