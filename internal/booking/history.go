package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/util"
)

const MaxHistory = 20

// AppendHistory puts rec first and keeps at most MaxHistory records.
func AppendHistory(history []models.ConfirmationRecord, rec models.ConfirmationRecord) []models.ConfirmationRecord {
	out := make([]models.ConfirmationRecord, 0, min(len(history)+1, MaxHistory))
	out = append(out, rec)
	for _, h := range history {
		if len(out) == MaxHistory {
			break
		}
		if h.BookingID == rec.BookingID {
			continue
		}
		out = append(out, h)
	}
	return out
}

type LockerView struct {
	Count         int    `json:"count"`
	Duration      string `json:"duration"`
	Section       string `json:"section,omitempty"`
	LockerNumbers []int  `json:"locker_numbers,omitempty"`
	Location      string `json:"location,omitempty"`
	Remaining     string `json:"remaining,omitempty"`
}

type BookingView struct {
	BookingID     string               `json:"booking_id"`
	Status        models.BookingStatus `json:"status"`
	VisitDate     string               `json:"visit_date"`
	FormattedDate string               `json:"formatted_date"`
	TimeSlot      string               `json:"time_slot"`
	TicketSummary string               `json:"ticket_summary"`
	TicketCount   int                  `json:"ticket_count"`
	Lockers       *LockerView          `json:"lockers,omitempty"`
	Totals        models.Totals        `json:"totals"`
	ConfirmedAt   time.Time            `json:"confirmed_at"`
}

// ViewHistory renders history as seen at now in the museum time zone.
func ViewHistory(history []models.ConfirmationRecord, now time.Time, loc *time.Location) []BookingView {
	views := make([]BookingView, 0, len(history))
	for _, rec := range history {
		views = append(views, viewBooking(rec, now, loc))
	}
	return views
}

func viewBooking(rec models.ConfirmationRecord, now time.Time, loc *time.Location) BookingView {
	tickets := rec.Booking.Tickets
	v := BookingView{
		BookingID:     rec.BookingID,
		Status:        models.BookingStatusUpcoming,
		VisitDate:     tickets.Date,
		TimeSlot:      tickets.TimeSlot,
		TicketSummary: TicketSummary(tickets.Tickets),
		TicketCount:   tickets.Count(),
		Totals:        AggregateTotals(rec.Booking),
		ConfirmedAt:   rec.ConfirmedAt,
	}
	if slot, ok := models.FindTimeSlot(tickets.TimeSlot); ok {
		v.TimeSlot = slot.Label
	}

	visit, err := util.ParseDate(tickets.Date, loc)
	if err == nil {
		v.FormattedDate = util.FormatLongDate(visit)
		v.Status = VisitStatus(visit, now)
	}

	if l := rec.Booking.Lockers; l != nil {
		lv := &LockerView{Count: l.Count, Duration: l.Duration}
		if a := l.Assignment; a != nil {
			lv.Section = a.Section
			lv.LockerNumbers = append([]int(nil), a.LockerNumbers...)
			lv.Location = a.Location
		}
		if v.Status == models.BookingStatusActive {
			if start, ok := slotStart(visit, tickets.TimeSlot); ok {
				expires := start.Add(time.Duration(l.Hours * float64(time.Hour)))
				lv.Remaining = TimeRemaining(expires, now)
			}
		}
		v.Lockers = lv
	}

	return v
}

// VisitStatus compares the visit day with today in visit's location.
func VisitStatus(visit, now time.Time) models.BookingStatus {
	switch {
	case util.SameDay(visit, now):
		return models.BookingStatusActive
	case util.StartOfDay(visit).Before(util.StartOfDay(now.In(visit.Location()))):
		return models.BookingStatusCompleted
	default:
		return models.BookingStatusUpcoming
	}
}

// TimeRemaining renders "2h 5m remaining", "45m remaining" or "Expired".
func TimeRemaining(expires, now time.Time) string {
	diff := expires.Sub(now)
	if diff <= 0 {
		return "Expired"
	}
	hours := int(diff / time.Hour)
	minutes := int(diff % time.Hour / time.Minute)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm remaining", hours, minutes)
	}
	return fmt.Sprintf("%dm remaining", minutes)
}

// TicketSummary renders quantities as "2x Adult, 1x Child" in catalog order.
func TicketSummary(tickets map[string]int) string {
	parts := make([]string, 0, len(tickets))
	for _, t := range models.TicketTypes() {
		if qty := tickets[t.ID]; qty > 0 {
			parts = append(parts, fmt.Sprintf("%dx %s", qty, strings.ToUpper(t.ID[:1])+t.ID[1:]))
		}
	}
	return strings.Join(parts, ", ")
}

func slotStart(day time.Time, slotID string) (time.Time, bool) {
	t, err := time.Parse("15:04", slotID)
	if err != nil {
		return time.Time{}, false
	}
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location()), true
}
