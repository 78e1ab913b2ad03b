package http

import (
	"errors"
	"net/http"

	"github.com/vogiaan1904/ticketbottle-museum/internal/booking"
	"github.com/vogiaan1904/ticketbottle-museum/internal/service"
	pkgErrors "github.com/vogiaan1904/ticketbottle-museum/pkg/errors"
)

const (
	ErrCodeInvalidRequest = 10001 + iota
	ErrCodeIncompleteSelection
	ErrCodeUnknownTicketType
	ErrCodeUnknownTimeSlot
	ErrCodeSlotSoldOut
	ErrCodeUnknownLockerDuration
	ErrCodeLockersNotSelected
	ErrCodeLockerChoiceRequired
	ErrCodeMissingFields
	ErrCodeSuperseded
	ErrCodePaymentFailed
	ErrCodeRedirect
	ErrCodeUnknownPaymentMethod
	ErrCodeInvalidTransition
)

const ErrCodeUnauthorized = 10401

var (
	errInvalidRequest        = pkgErrors.NewHTTPError(ErrCodeInvalidRequest, "Invalid request body").WithStatus(http.StatusBadRequest)
	errIncompleteSelection   = pkgErrors.NewHTTPError(ErrCodeIncompleteSelection, "Select a date, a time slot and at least one ticket").WithStatus(http.StatusUnprocessableEntity)
	errUnknownTicketType     = pkgErrors.NewHTTPError(ErrCodeUnknownTicketType, "Unknown ticket type").WithStatus(http.StatusUnprocessableEntity)
	errUnknownTimeSlot       = pkgErrors.NewHTTPError(ErrCodeUnknownTimeSlot, "Unknown time slot").WithStatus(http.StatusUnprocessableEntity)
	errSlotSoldOut           = pkgErrors.NewHTTPError(ErrCodeSlotSoldOut, "Time slot is sold out").WithStatus(http.StatusConflict)
	errUnknownLockerDuration = pkgErrors.NewHTTPError(ErrCodeUnknownLockerDuration, "Unknown locker duration").WithStatus(http.StatusUnprocessableEntity)
	errLockersNotSelected    = pkgErrors.NewHTTPError(ErrCodeLockersNotSelected, "Add lockers first").WithStatus(http.StatusConflict)
	errLockerChoiceRequired  = pkgErrors.NewHTTPError(ErrCodeLockerChoiceRequired, "Choose whether to add lockers").WithStatus(http.StatusUnprocessableEntity)
	errMissingFields         = pkgErrors.NewHTTPError(ErrCodeMissingFields, "Please fill in all required fields").WithStatus(http.StatusUnprocessableEntity)
	errSuperseded            = pkgErrors.NewHTTPError(ErrCodeSuperseded, "Superseded by a newer submission").WithStatus(http.StatusConflict)
	errPaymentFailed         = pkgErrors.NewHTTPError(ErrCodePaymentFailed, booking.PaymentFailedNotice).WithStatus(http.StatusPaymentRequired)
	errRedirect              = pkgErrors.NewHTTPError(ErrCodeRedirect, "Previous step is incomplete").WithStatus(http.StatusConflict)
	errUnknownPaymentMethod  = pkgErrors.NewHTTPError(ErrCodeUnknownPaymentMethod, "Unknown payment method").WithStatus(http.StatusUnprocessableEntity)
	errInvalidTransition     = pkgErrors.NewHTTPError(ErrCodeInvalidTransition, "Checkout is busy").WithStatus(http.StatusConflict)
	errUnauthorized          = pkgErrors.NewHTTPError(ErrCodeUnauthorized, "Missing or invalid session token").WithStatus(http.StatusUnauthorized)
)

// mapHTTPError translates domain errors. ok is false for errors it does
// not know, which render as 500.
func mapHTTPError(err error) (mapped error, ok bool) {
	var verr *booking.ValidationError
	if errors.As(err, &verr) {
		return errMissingFields.WithDetails(verr.Fields), true
	}

	var perr *booking.PaymentError
	if errors.As(err, &perr) {
		return errPaymentFailed, true
	}

	switch {
	case errors.Is(err, booking.ErrIncompleteSelection):
		return errIncompleteSelection, true
	case errors.Is(err, booking.ErrUnknownTicketType):
		return errUnknownTicketType, true
	case errors.Is(err, booking.ErrUnknownTimeSlot):
		return errUnknownTimeSlot, true
	case errors.Is(err, booking.ErrSlotSoldOut):
		return errSlotSoldOut, true
	case errors.Is(err, booking.ErrUnknownLockerDuration):
		return errUnknownLockerDuration, true
	case errors.Is(err, booking.ErrLockersNotSelected):
		return errLockersNotSelected, true
	case errors.Is(err, booking.ErrLockerChoiceRequired):
		return errLockerChoiceRequired, true
	case errors.Is(err, booking.ErrSuperseded):
		return errSuperseded, true
	case errors.Is(err, booking.ErrUnknownPaymentMethod):
		return errUnknownPaymentMethod, true
	case errors.Is(err, booking.ErrInvalidTransition):
		return errInvalidTransition, true
	case service.IsTokenError(err):
		return errUnauthorized, true
	}

	return err, false
}
