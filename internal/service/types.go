package service

import (
	"time"

	"github.com/vogiaan1904/ticketbottle-museum/internal/booking"
	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

type CreateSessionOutput struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LockerOptionOutput struct {
	models.LockerOption
	PricePerLocker int64 `json:"price_per_locker"`
}

type CatalogOutput struct {
	TicketTypes   []models.TicketType  `json:"ticket_types"`
	TimeSlots     []models.TimeSlot    `json:"time_slots"`
	LockerOptions []LockerOptionOutput `json:"locker_options"`
	LockerZones   []models.LockerZone  `json:"locker_zones"`
	TaxRatePct    int64                `json:"tax_rate_pct"`
}

type TicketsOutput struct {
	Date          string         `json:"date"`
	FormattedDate string         `json:"formatted_date"`
	TimeSlot      string         `json:"time_slot,omitempty"`
	Tickets       map[string]int `json:"tickets"`
	TotalTickets  int            `json:"total_tickets"`
	Total         int64          `json:"total"`
	CanContinue   bool           `json:"can_continue"`
	MinDate       string         `json:"min_date"`
	MaxDate       string         `json:"max_date"`
}

type ContinueOutput struct {
	Next models.Route `json:"next"`
}

type LockersOutput struct {
	Tickets          models.TicketSelection   `json:"tickets"`
	WantsLockers     *bool                    `json:"wants_lockers"`
	Count            int                      `json:"count"`
	Duration         string                   `json:"duration"`
	AssignmentStatus booking.AssignmentStatus `json:"assignment_status"`
	Assignment       *models.LockerAssignment `json:"assignment,omitempty"`
	Notice           string                   `json:"notice,omitempty"`
	LockerPrice      int64                    `json:"locker_price"`
	Total            int64                    `json:"total"`
	Options          []LockerOptionOutput     `json:"options"`
}

type SummaryOutput struct {
	Booking       models.BookingAggregate `json:"booking"`
	LineItems     []booking.LineItem      `json:"line_items"`
	FormattedDate string                  `json:"formatted_date"`
	SlotLabel     string                  `json:"slot_label"`
	PremiumSlot   bool                    `json:"premium_slot"`
	Totals        models.Totals           `json:"totals"`
}

type CheckoutOutput struct {
	Booking models.BookingAggregate `json:"booking"`
	Totals  models.Totals           `json:"totals"`
	State   booking.CheckoutState   `json:"state"`
}

type SubmitCheckoutOutput struct {
	Next         models.Route              `json:"next"`
	Confirmation models.ConfirmationRecord `json:"confirmation"`
	Totals       models.Totals             `json:"totals"`
}

type ConfirmationOutput struct {
	Confirmation  models.ConfirmationRecord `json:"confirmation"`
	FormattedDate string                    `json:"formatted_date"`
	SlotLabel     string                    `json:"slot_label"`
	Totals        models.Totals             `json:"totals"`
}

type MyBookingsOutput struct {
	Bookings []booking.BookingView `json:"bookings"`
}
