package booking

import (
	"context"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

// RequireTicketSelection guards the locker step.
func RequireTicketSelection(ctx context.Context, b *Bridge) (models.TicketSelection, error) {
	return requireKey[models.TicketSelection](ctx, b, KeyTicketSelection, models.RouteTickets)
}

// RequireBooking guards summary and checkout.
func RequireBooking(ctx context.Context, b *Bridge) (models.BookingAggregate, error) {
	return requireKey[models.BookingAggregate](ctx, b, KeyBookingData, models.RouteTickets)
}

// RequireConfirmation guards the confirmation step.
func RequireConfirmation(ctx context.Context, b *Bridge) (models.ConfirmationRecord, error) {
	return requireKey[models.ConfirmationRecord](ctx, b, KeyConfirmationData, models.RouteHome)
}

func requireKey[T any](ctx context.Context, b *Bridge, key Key, to models.Route) (T, error) {
	v, ok, err := Load[T](ctx, b, key)
	if err != nil {
		return v, err
	}
	if !ok {
		return v, &Redirect{To: to, Missing: key}
	}
	return v, nil
}
