package models

import "time"

// TicketSelection is the output of the ticket step. Date is a YYYY-MM-DD
// calendar date in the museum time zone.
type TicketSelection struct {
	Date     string         `json:"date"`
	TimeSlot string         `json:"time_slot"`
	Tickets  map[string]int `json:"tickets"`
	Total    int64          `json:"total"`
}

func (s TicketSelection) Count() int {
	n := 0
	for _, q := range s.Tickets {
		n += q
	}
	return n
}

type LockerAssignment struct {
	Section         string `json:"section"`
	LockerNumbers   []int  `json:"locker_numbers"`
	Location        string `json:"location"`
	NearestEntrance string `json:"nearest_entrance"`
}

type LockerSelection struct {
	Count            int               `json:"count"`
	Duration         string            `json:"duration"`
	Hours            float64           `json:"hours"`
	Price            int64             `json:"price"`
	Assignment       *LockerAssignment `json:"assignment,omitempty"`
	AssignmentNotice string            `json:"assignment_notice,omitempty"`
}

// BookingAggregate is what checkout charges for. Total is the pre-tax
// ticket plus locker amount.
type BookingAggregate struct {
	Tickets TicketSelection  `json:"tickets"`
	Lockers *LockerSelection `json:"lockers"`
	Total   int64            `json:"total"`
}

func (b BookingAggregate) LockerTotal() int64 {
	if b.Lockers == nil {
		return 0
	}
	return b.Lockers.Price
}

type Totals struct {
	Subtotal   int64 `json:"subtotal"`
	Tax        int64 `json:"tax"`
	GrandTotal int64 `json:"grand_total"`
}

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodUPI    PaymentMethod = "upi"
	PaymentMethodWallet PaymentMethod = "wallet"
)

func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodUPI, PaymentMethodWallet:
		return true
	}
	return false
}

// CustomerInfo is what is kept of the checkout form. Card data is reduced
// to the last four digits.
type CustomerInfo struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone,omitempty"`
	CardLast4  string `json:"card_last4,omitempty"`
	BillingZip string `json:"billing_zip,omitempty"`
}

type ConfirmationRecord struct {
	BookingID     string           `json:"booking_id"`
	Booking       BookingAggregate `json:"booking"`
	Customer      CustomerInfo     `json:"customer"`
	PaymentMethod PaymentMethod    `json:"payment_method"`
	ConfirmedAt   time.Time        `json:"confirmed_at"`
}

type BookingStatus string

const (
	BookingStatusUpcoming  BookingStatus = "upcoming"
	BookingStatusActive    BookingStatus = "active"
	BookingStatusCompleted BookingStatus = "completed"
)
