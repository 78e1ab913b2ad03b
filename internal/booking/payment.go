package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

type PaymentRequest struct {
	Booking  models.BookingAggregate
	Customer models.CustomerInfo
	Method   models.PaymentMethod
	Amount   int64
}

type PaymentReceipt struct {
	Reference string
}

// PaymentProvider charges a booking. A declined charge is a *PaymentError.
type PaymentProvider interface {
	Charge(ctx context.Context, req PaymentRequest) (PaymentReceipt, error)
}

// SimulatedPayment approves every charge after a fixed delay.
type SimulatedPayment struct {
	delay time.Duration
}

func NewSimulatedPayment(delay time.Duration) *SimulatedPayment {
	return &SimulatedPayment{delay: delay}
}

func (p *SimulatedPayment) Charge(ctx context.Context, req PaymentRequest) (PaymentReceipt, error) {
	if !req.Method.IsValid() {
		return PaymentReceipt{}, &PaymentError{Reason: "unsupported payment method"}
	}
	if req.Amount <= 0 {
		return PaymentReceipt{}, &PaymentError{Reason: "nothing to charge"}
	}

	t := time.NewTimer(p.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return PaymentReceipt{}, ctx.Err()
	case <-t.C:
	}

	return PaymentReceipt{Reference: uuid.NewString()}, nil
}
