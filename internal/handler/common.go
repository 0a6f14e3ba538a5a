package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/iliyamo/event-ticketing/internal/policy"
	"github.com/iliyamo/event-ticketing/internal/service"
	"github.com/iliyamo/event-ticketing/internal/store"
)

// Validator adapts go-playground/validator to Echo's Validator hook
// so request DTO tags are checked on every Bind+Validate.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds the shared request validator.
func NewValidator() *Validator {
	return &Validator{v: validator.New()}
}

// Validate implements echo.Validator.
func (cv *Validator) Validate(i interface{}) error {
	if err := cv.v.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// pathID parses a positive uint64 path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// respondDomainError translates domain errors into HTTP responses.
// Sold-out and capacity outcomes map to 409 with machine-readable
// codes so the UI can show "sold out" instead of a generic failure;
// stale ids map to 404 and are logged as caller bugs; anything
// unrecognized is a storage failure and becomes a 500.
func respondDomainError(c echo.Context, log zerolog.Logger, err error) error {
	var ve *service.ValidationError
	var lt *policy.LeadTimeError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "validation_error", "message": ve.Reason})
	case errors.As(err, &lt):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{
			"error":      "lead_time_violation",
			"message":    lt.Error(),
			"days_short": lt.DaysShort,
		})
	case errors.Is(err, store.ErrOutOfStock):
		return c.JSON(http.StatusConflict, echo.Map{"error": "out_of_stock"})
	case errors.Is(err, store.ErrCapacityExceeded):
		return c.JSON(http.StatusConflict, echo.Map{"error": "capacity_exceeded"})
	case errors.Is(err, store.ErrQuotaBelowSold):
		return c.JSON(http.StatusConflict, echo.Map{"error": "quota_below_sold"})
	case errors.Is(err, store.ErrTierRetired):
		return c.JSON(http.StatusConflict, echo.Map{"error": "tier_retired"})
	case errors.Is(err, store.ErrEntryCancelled):
		return c.JSON(http.StatusConflict, echo.Map{"error": "entry_cancelled"})
	case errors.Is(err, store.ErrAlreadyIssued):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already_issued"})
	case errors.Is(err, service.ErrNotAttended):
		return c.JSON(http.StatusConflict, echo.Map{"error": "not_attended"})
	case errors.Is(err, store.ErrNotIssued):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "certificate_not_found"})
	case errors.Is(err, store.ErrEventNotFound),
		errors.Is(err, store.ErrTierNotFound),
		errors.Is(err, store.ErrEntryNotFound):
		// A stale id is a caller bug, not expected contention.
		log.Warn().Err(err).Str("path", c.Path()).Msg("stale reference from caller")
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	default:
		log.Error().Err(err).Str("path", c.Path()).Msg("storage failure")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
