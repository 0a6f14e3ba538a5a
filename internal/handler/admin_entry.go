package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// VerifyEntry handles POST /v1/entries/:id/verify and marks a ledger
// entry's payment as confirmed by staff.
func (h *AdminHandler) VerifyEntry(c echo.Context) error {
	return h.setVerification(c, model.VerificationVerified)
}

// UnverifyEntry handles POST /v1/entries/:id/unverify and returns an
// entry to the pending state.  The financial snapshot is untouched.
func (h *AdminHandler) UnverifyEntry(c echo.Context) error {
	return h.setVerification(c, model.VerificationPending)
}

func (h *AdminHandler) setVerification(c echo.Context, status model.VerificationStatus) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	if err := h.Ledger.SetVerification(c.Request().Context(), id, status); err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": string(status)})
}

// CheckIn handles POST /v1/entries/:id/checkin.
func (h *AdminHandler) CheckIn(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	if err := h.Attendance.CheckIn(c.Request().Context(), id, time.Now()); err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"state": string(model.AttendanceAttended)})
}

// CheckOut handles POST /v1/entries/:id/checkout.  Undoing a check-in
// never touches a certificate that was already issued; revocation is
// a separate, deliberate action.
func (h *AdminHandler) CheckOut(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	if err := h.Attendance.CheckOut(c.Request().Context(), id); err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"state": string(model.AttendanceNotCheckedIn)})
}

// CancelEntry handles POST /v1/entries/:id/cancel.  Cancelling
// releases the tier capacity exactly once; the entry itself stays in
// the ledger for the audit trail.
func (h *AdminHandler) CancelEntry(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	if err := h.Ledger.Cancel(c.Request().Context(), time.Now(), id); err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "entry cancelled"})
}

// IssueCertificate handles POST /v1/entries/:id/certificate.  Issuing
// requires the entry to be checked in; each entry gets at most one
// certificate at a time.
func (h *AdminHandler) IssueCertificate(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	cert, err := h.Certs.Issue(c.Request().Context(), time.Now(), id)
	if err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"certificate": cert})
}

// RevokeCertificate handles DELETE /v1/entries/:id/certificate.
func (h *AdminHandler) RevokeCertificate(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid entry id"})
	}
	if err := h.Certs.Revoke(c.Request().Context(), id); err != nil {
		return respondDomainError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "certificate revoked"})
}
