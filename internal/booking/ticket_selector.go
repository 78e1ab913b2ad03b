package booking

import (
	"fmt"
	"time"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/util"
)

// DateWindow is the range of bookable visit days, [today, today+months].
type DateWindow struct {
	today  time.Time
	months int
}

func NewDateWindow(now time.Time, loc *time.Location, months int) DateWindow {
	return DateWindow{
		today:  util.StartOfDay(now.In(loc)),
		months: months,
	}
}

func (w DateWindow) Today() time.Time {
	return w.today
}

func (w DateWindow) Last() time.Time {
	return w.today.AddDate(0, w.months, 0)
}

func (w DateWindow) Location() *time.Location {
	return w.today.Location()
}

func (w DateWindow) Contains(day time.Time) bool {
	day = util.StartOfDay(day.In(w.Location()))
	return !day.Before(w.today) && !day.After(w.Last())
}

// Parse reads a YYYY-MM-DD date and reports whether it is bookable.
func (w DateWindow) Parse(date string) (time.Time, bool) {
	day, err := util.ParseDate(date, w.Location())
	if err != nil {
		return time.Time{}, false
	}
	return day, w.Contains(day)
}

// TicketDraft is the in-progress ticket step, persisted between requests.
type TicketDraft struct {
	Date       string         `json:"date"`
	TimeSlot   string         `json:"time_slot,omitempty"`
	Quantities map[string]int `json:"quantities"`
}

type TicketSelector struct {
	window DateWindow
	draft  TicketDraft
}

// NewTicketSelector resumes draft, or starts on today's date when draft is
// nil. A resumed date that has left the window falls back to today.
func NewTicketSelector(window DateWindow, draft *TicketDraft) *TicketSelector {
	s := &TicketSelector{window: window}
	if draft != nil {
		s.draft = *draft
		s.draft.Quantities = make(map[string]int, len(draft.Quantities))
		for id, q := range draft.Quantities {
			if q > 0 {
				s.draft.Quantities[id] = q
			}
		}
	} else {
		s.draft.Quantities = map[string]int{}
	}
	if _, ok := window.Parse(s.draft.Date); !ok {
		s.draft.Date = util.FormatDate(window.Today())
	}
	return s
}

// SelectDate switches the visit day. Dates outside the window are ignored
// and false is returned.
func (s *TicketSelector) SelectDate(date string) bool {
	day, ok := s.window.Parse(date)
	if !ok {
		return false
	}
	s.draft.Date = util.FormatDate(day)
	return true
}

func (s *TicketSelector) SelectSlot(id string) error {
	slot, ok := models.FindTimeSlot(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTimeSlot, id)
	}
	if slot.Available <= 0 {
		return fmt.Errorf("%w: %s", ErrSlotSoldOut, id)
	}
	s.draft.TimeSlot = slot.ID
	return nil
}

func (s *TicketSelector) Increment(ticketType string) error {
	return s.adjust(ticketType, 1)
}

// Decrement lowers a quantity; at zero it is a no-op.
func (s *TicketSelector) Decrement(ticketType string) error {
	return s.adjust(ticketType, -1)
}

func (s *TicketSelector) adjust(ticketType string, delta int) error {
	if _, ok := models.FindTicketType(ticketType); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTicketType, ticketType)
	}
	q := max(0, s.draft.Quantities[ticketType]+delta)
	if q == 0 {
		delete(s.draft.Quantities, ticketType)
		return nil
	}
	s.draft.Quantities[ticketType] = q
	return nil
}

func (s *TicketSelector) TotalTickets() int {
	n := 0
	for _, q := range s.draft.Quantities {
		n += q
	}
	return n
}

// Total prices the draft. Without a slot the surcharge is zero.
func (s *TicketSelector) Total() int64 {
	slot, _ := models.FindTimeSlot(s.draft.TimeSlot)
	total, _ := TicketTotal(s.draft.Quantities, slot)
	return total
}

func (s *TicketSelector) Draft() TicketDraft {
	d := s.draft
	d.Quantities = make(map[string]int, len(s.draft.Quantities))
	for id, q := range s.draft.Quantities {
		d.Quantities[id] = q
	}
	return d
}

// CanContinue reports whether a date, a slot and at least one ticket are chosen.
func (s *TicketSelector) CanContinue() bool {
	return s.draft.Date != "" && s.draft.TimeSlot != "" && s.TotalTickets() >= 1
}

// Selection is the continue guard. It fails with ErrIncompleteSelection
// until CanContinue holds.
func (s *TicketSelector) Selection() (models.TicketSelection, error) {
	if !s.CanContinue() {
		return models.TicketSelection{}, ErrIncompleteSelection
	}
	d := s.Draft()
	return models.TicketSelection{
		Date:     d.Date,
		TimeSlot: d.TimeSlot,
		Tickets:  d.Quantities,
		Total:    s.Total(),
	}, nil
}

type SlotAvailability struct {
	Date       string            `json:"date"`
	Selectable bool              `json:"selectable"`
	Slots      []models.TimeSlot `json:"slots"`
}

// AvailableSlots lists the slots for a date. Outside the window the date
// is reported as not selectable rather than as an error.
func AvailableSlots(window DateWindow, date string) SlotAvailability {
	_, ok := window.Parse(date)
	return SlotAvailability{
		Date:       date,
		Selectable: ok,
		Slots:      models.TimeSlots(),
	}
}
