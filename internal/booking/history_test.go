package booking

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

func testRecord(id, date string, lockers *models.LockerSelection) models.ConfirmationRecord {
	agg := models.BookingAggregate{
		Tickets: models.TicketSelection{
			Date:     date,
			TimeSlot: "12:00",
			Tickets:  map[string]int{"child": 1, "adult": 2, "senior": 0},
			Total:    77,
		},
		Lockers: lockers,
	}
	agg.Total = agg.Tickets.Total + agg.LockerTotal()
	return models.ConfirmationRecord{BookingID: id, Booking: agg}
}

func TestAppendHistory(t *testing.T) {
	var h []models.ConfirmationRecord
	for i := range MaxHistory + 5 {
		h = AppendHistory(h, models.ConfirmationRecord{BookingID: fmt.Sprintf("HCM%d", i)})
	}

	require.Len(t, h, MaxHistory)
	assert.Equal(t, fmt.Sprintf("HCM%d", MaxHistory+4), h[0].BookingID)
	assert.Equal(t, "HCM5", h[MaxHistory-1].BookingID)

	h = AppendHistory(h, models.ConfirmationRecord{BookingID: "HCM10"})
	assert.Equal(t, "HCM10", h[0].BookingID)
	assert.Len(t, h, MaxHistory)
}

func TestVisitStatus(t *testing.T) {
	today := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, models.BookingStatusCompleted, VisitStatus(today.AddDate(0, 0, -1), testNow))
	assert.Equal(t, models.BookingStatusActive, VisitStatus(today, testNow))
	assert.Equal(t, models.BookingStatusUpcoming, VisitStatus(today.AddDate(0, 0, 1), testNow))
}

func TestTimeRemaining(t *testing.T) {
	now := testNow
	assert.Equal(t, "2h 5m remaining", TimeRemaining(now.Add(2*time.Hour+5*time.Minute+30*time.Second), now))
	assert.Equal(t, "45m remaining", TimeRemaining(now.Add(45*time.Minute), now))
	assert.Equal(t, "0m remaining", TimeRemaining(now.Add(20*time.Second), now))
	assert.Equal(t, "Expired", TimeRemaining(now, now))
	assert.Equal(t, "Expired", TimeRemaining(now.Add(-time.Minute), now))
}

func TestTicketSummary(t *testing.T) {
	assert.Equal(t, "2x Adult, 1x Child", TicketSummary(map[string]int{"child": 1, "adult": 2, "senior": 0}))
	assert.Equal(t, "1x Family", TicketSummary(map[string]int{"family": 1}))
	assert.Empty(t, TicketSummary(nil))
}

func TestViewHistory(t *testing.T) {
	lockers := &models.LockerSelection{
		Count:    2,
		Duration: "4 hours",
		Hours:    4,
		Price:    51,
		Assignment: &models.LockerAssignment{
			Section:       "A",
			LockerNumbers: []int{3, 4},
			Location:      "Section A - Main Hall",
		},
	}
	history := []models.ConfirmationRecord{
		testRecord("HCM3", "2026-10-14", lockers),
		testRecord("HCM2", "2026-11-02", nil),
		testRecord("HCM1", "2026-10-01", lockers),
	}

	views := ViewHistory(history, testNow, time.UTC)
	require.Len(t, views, 3)

	active := views[0]
	assert.Equal(t, models.BookingStatusActive, active.Status)
	assert.Equal(t, "Wednesday, October 14, 2026", active.FormattedDate)
	assert.Equal(t, "12:00 PM", active.TimeSlot)
	assert.Equal(t, "2x Adult, 1x Child", active.TicketSummary)
	assert.Equal(t, 3, active.TicketCount)
	require.NotNil(t, active.Lockers)
	// 12:00 + 4h = 16:00, now is 15:30.
	assert.Equal(t, "30m remaining", active.Lockers.Remaining)
	assert.Equal(t, []int{3, 4}, active.Lockers.LockerNumbers)
	assert.Equal(t, models.Totals{Subtotal: 128, Tax: 10, GrandTotal: 138}, active.Totals)

	assert.Equal(t, models.BookingStatusUpcoming, views[1].Status)
	assert.Nil(t, views[1].Lockers)

	assert.Equal(t, models.BookingStatusCompleted, views[2].Status)
	require.NotNil(t, views[2].Lockers)
	assert.Empty(t, views[2].Lockers.Remaining)
}
