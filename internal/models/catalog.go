package models

// TicketType is one admission category. Price is in whole dollars.
type TicketType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	AgeGroup    string `json:"age_group,omitempty"`
}

// TimeSlot is an entry time. Surcharge applies per ticket.
type TimeSlot struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Available int    `json:"available"`
	Surcharge int64  `json:"surcharge"`
}

func (s TimeSlot) IsPremium() bool {
	return s.Surcharge > 0
}

// LockerOption is a rental duration. MultiplierPct is the price multiplier
// in hundredths (1.8 is 180) so pricing stays in integer arithmetic.
type LockerOption struct {
	Duration      string  `json:"duration"`
	Hours         float64 `json:"hours"`
	MultiplierPct int64   `json:"multiplier_pct"`
	Popular       bool    `json:"popular,omitempty"`
}

// LockerZone is a physical locker bank.
type LockerZone struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Total           int    `json:"total"`
	NearestEntrance string `json:"nearest_entrance"`
}

const (
	BaseLockerPrice int64 = 8
	TaxRatePct      int64 = 8

	MinLockerCount = 1
	MaxLockerCount = 6

	DefaultLockerDuration = "1 hour"
)

var ticketTypes = []TicketType{
	{ID: "adult", Name: "Adult", Price: 25, Description: "Ages 18-64", AgeGroup: "18-64 years"},
	{ID: "senior", Name: "Senior", Price: 20, Description: "Ages 65+", AgeGroup: "65+ years"},
	{ID: "student", Name: "Student", Price: 18, Description: "With valid ID", AgeGroup: "With student ID"},
	{ID: "child", Name: "Child", Price: 12, Description: "Ages 5-17", AgeGroup: "5-17 years"},
	{ID: "family", Name: "Family Pass", Price: 65, Description: "2 Adults + 2 Children"},
}

var timeSlots = []TimeSlot{
	{ID: "09:00", Label: "9:00 AM", Available: 45, Surcharge: 0},
	{ID: "10:30", Label: "10:30 AM", Available: 32, Surcharge: 0},
	{ID: "12:00", Label: "12:00 PM", Available: 28, Surcharge: 5},
	{ID: "13:30", Label: "1:30 PM", Available: 38, Surcharge: 5},
	{ID: "15:00", Label: "3:00 PM", Available: 42, Surcharge: 0},
	{ID: "16:30", Label: "4:30 PM", Available: 15, Surcharge: 0},
}

var lockerOptions = []LockerOption{
	{Duration: "30 minutes", Hours: 0.5, MultiplierPct: 50},
	{Duration: "1 hour", Hours: 1, MultiplierPct: 100, Popular: true},
	{Duration: "2 hours", Hours: 2, MultiplierPct: 180},
	{Duration: "4 hours", Hours: 4, MultiplierPct: 320},
	{Duration: "Full day (8 hours)", Hours: 8, MultiplierPct: 500},
}

var lockerZones = []LockerZone{
	{ID: "A", Name: "Section A - Main Hall", Total: 48, NearestEntrance: "Main Entrance"},
	{ID: "B", Name: "Section B - East Wing", Total: 36, NearestEntrance: "East Entrance"},
	{ID: "C", Name: "Section C - West Wing", Total: 42, NearestEntrance: "West Entrance"},
	{ID: "D", Name: "Section D - North Gallery", Total: 30, NearestEntrance: "North Entrance"},
}

// Catalog accessors return copies; the package-level tables are immutable.

func TicketTypes() []TicketType {
	return append([]TicketType(nil), ticketTypes...)
}

func TimeSlots() []TimeSlot {
	return append([]TimeSlot(nil), timeSlots...)
}

func LockerOptions() []LockerOption {
	return append([]LockerOption(nil), lockerOptions...)
}

func LockerZones() []LockerZone {
	return append([]LockerZone(nil), lockerZones...)
}

func FindTicketType(id string) (TicketType, bool) {
	for _, t := range ticketTypes {
		if t.ID == id {
			return t, true
		}
	}
	return TicketType{}, false
}

func FindTimeSlot(id string) (TimeSlot, bool) {
	for _, s := range timeSlots {
		if s.ID == id {
			return s, true
		}
	}
	return TimeSlot{}, false
}

func FindLockerOption(duration string) (LockerOption, bool) {
	for _, o := range lockerOptions {
		if o.Duration == duration {
			return o, true
		}
	}
	return LockerOption{}, false
}

// TicketLabel maps a ticket type id to its display name, falling back to the id.
func TicketLabel(id string) string {
	if t, ok := FindTicketType(id); ok {
		return t.Name
	}
	return id
}
