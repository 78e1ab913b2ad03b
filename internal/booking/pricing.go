package booking

import (
	"fmt"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

// RoundRatio returns num/den rounded half away from zero. den must be positive.
func RoundRatio(num, den int64) int64 {
	if num < 0 {
		return -((-2*num + den) / (2 * den))
	}
	return (2*num + den) / (2 * den)
}

// TicketTotal is Σ(price × qty) + surcharge × ticket count.
func TicketTotal(quantities map[string]int, slot models.TimeSlot) (int64, error) {
	var total int64
	count := 0
	for id, qty := range quantities {
		if qty <= 0 {
			continue
		}
		tt, ok := models.FindTicketType(id)
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownTicketType, id)
		}
		total += tt.Price * int64(qty)
		count += qty
	}
	return total + slot.Surcharge*int64(count), nil
}

// PerLockerPrice is the price of one locker for the option.
func PerLockerPrice(option models.LockerOption) int64 {
	return LockerPrice(option, 1)
}

// LockerPrice is round(base × multiplier × count).
func LockerPrice(option models.LockerOption, count int) int64 {
	return RoundRatio(models.BaseLockerPrice*option.MultiplierPct*int64(count), 100)
}

// ComputeTotals adds lockers to tickets and applies tax on the subtotal.
func ComputeTotals(ticketTotal int64, lockers *models.LockerSelection) models.Totals {
	subtotal := ticketTotal
	if lockers != nil {
		subtotal += lockers.Price
	}
	tax := RoundRatio(subtotal*models.TaxRatePct, 100)
	return models.Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal + tax,
	}
}

// AggregateTotals is the single source of the amounts shown at summary,
// checkout and confirmation.
func AggregateTotals(b models.BookingAggregate) models.Totals {
	return ComputeTotals(b.Tickets.Total, b.Lockers)
}

// LineItem is one ticket type row of a summary.
type LineItem struct {
	TicketType string `json:"ticket_type"`
	Label      string `json:"label"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int64  `json:"unit_price"`
	Amount     int64  `json:"amount"`
}

// LineItems lists the selected ticket types in catalog order, skipping
// zero quantities. Slot surcharges are not itemised.
func LineItems(tickets map[string]int) []LineItem {
	items := make([]LineItem, 0, len(tickets))
	for _, tt := range models.TicketTypes() {
		qty := tickets[tt.ID]
		if qty <= 0 {
			continue
		}
		items = append(items, LineItem{
			TicketType: tt.ID,
			Label:      tt.Name,
			Quantity:   qty,
			UnitPrice:  tt.Price,
			Amount:     tt.Price * int64(qty),
		})
	}
	return items
}
