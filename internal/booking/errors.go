package booking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

var (
	ErrIncompleteSelection   = errors.New("select a date, a time slot and at least one ticket")
	ErrUnknownTicketType     = errors.New("unknown ticket type")
	ErrUnknownTimeSlot       = errors.New("unknown time slot")
	ErrSlotSoldOut           = errors.New("time slot is sold out")
	ErrUnknownLockerDuration = errors.New("unknown locker duration")
	ErrLockersNotSelected    = errors.New("lockers have not been added")
	ErrLockerChoiceRequired  = errors.New("choose whether to add lockers")
	ErrUnknownPaymentMethod  = errors.New("unknown payment method")
	ErrSuperseded            = errors.New("request superseded by a newer one")
	ErrInvalidTransition     = errors.New("invalid checkout transition")
)

// ValidationError lists the checkout fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Redirect reports that a step was entered without the state it depends on.
// To is the earliest step that produces the missing state.
type Redirect struct {
	To      models.Route
	Missing Key
}

func (r *Redirect) Error() string {
	return fmt.Sprintf("%s is missing, redirect to %s", r.Missing, r.To)
}

// PaymentError is a typed payment failure. The visitor may retry.
type PaymentError struct {
	Reason string
}

func (e *PaymentError) Error() string {
	return "payment failed: " + e.Reason
}
