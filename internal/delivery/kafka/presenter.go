package kafka

import "time"

// Events published by the booking service

type BookingConfirmedEvent struct {
	BookingID     string    `json:"booking_id"`
	SessionID     string    `json:"session_id"`
	Email         string    `json:"email"`
	VisitDate     string    `json:"visit_date"`
	TimeSlot      string    `json:"time_slot"`
	TicketCount   int       `json:"ticket_count"`
	LockerCount   int       `json:"locker_count"`
	Subtotal      int64     `json:"subtotal"`
	Tax           int64     `json:"tax"`
	GrandTotal    int64     `json:"grand_total"`
	PaymentMethod string    `json:"payment_method"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
	Timestamp     time.Time `json:"timestamp"`
}

type PaymentFailedEvent struct {
	SessionID     string    `json:"session_id"`
	PaymentMethod string    `json:"payment_method"`
	Reason        string    `json:"reason"`
	Timestamp     time.Time `json:"timestamp"`
}
