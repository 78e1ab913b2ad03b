package booking

import (
	"fmt"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

const AlternativeLockersNotice = "alternative lockers reserved"

type AssignmentStatus string

const (
	AssignmentNone     AssignmentStatus = "none"
	AssignmentPending  AssignmentStatus = "pending"
	AssignmentAssigned AssignmentStatus = "assigned"
	AssignmentFailed   AssignmentStatus = "failed"
)

// LockerDraft is the in-progress locker step. Generation identifies the
// latest assignment request; results for older generations are dropped.
type LockerDraft struct {
	WantsLockers     *bool                    `json:"wants_lockers"`
	Count            int                      `json:"count"`
	Duration         string                   `json:"duration"`
	Generation       uint64                   `json:"generation"`
	AssignmentStatus AssignmentStatus         `json:"assignment_status"`
	Assignment       *models.LockerAssignment `json:"assignment,omitempty"`
	Notice           string                   `json:"notice,omitempty"`
}

// AssignmentRequest asks for a block of Count lockers on behalf of
// generation Generation.
type AssignmentRequest struct {
	Generation uint64
	Count      int
}

type LockerSelector struct {
	tickets models.TicketSelection
	draft   LockerDraft
	gens    *Generations
}

func NewLockerSelector(tickets models.TicketSelection, draft *LockerDraft) *LockerSelector {
	s := &LockerSelector{tickets: tickets}
	if draft != nil {
		s.draft = *draft
	}
	s.draft.Count = clampLockerCount(s.draft.Count)
	if _, ok := models.FindLockerOption(s.draft.Duration); !ok {
		s.draft.Duration = models.DefaultLockerDuration
	}
	if s.draft.AssignmentStatus == "" {
		s.draft.AssignmentStatus = AssignmentNone
	}
	return s
}

// WithGenerations draws request tokens from gens instead of the draft's own
// counter, which restarts whenever the draft is cleared.
func (s *LockerSelector) WithGenerations(gens *Generations) *LockerSelector {
	s.gens = gens
	return s
}

func (s *LockerSelector) nextGeneration() {
	if s.gens != nil {
		s.draft.Generation = s.gens.Next()
		return
	}
	s.draft.Generation++
}

func clampLockerCount(n int) int {
	return min(max(n, models.MinLockerCount), models.MaxLockerCount)
}

func (s *LockerSelector) Draft() LockerDraft {
	return s.draft
}

func (s *LockerSelector) OptedIn() bool {
	return s.draft.WantsLockers != nil && *s.draft.WantsLockers
}

func (s *LockerSelector) Decided() bool {
	return s.draft.WantsLockers != nil
}

// OptIn adds lockers and starts a fresh assignment.
func (s *LockerSelector) OptIn() AssignmentRequest {
	yes := true
	s.draft.WantsLockers = &yes
	return s.newRequest()
}

// OptOut drops lockers. Any in-flight assignment becomes stale.
func (s *LockerSelector) OptOut() {
	no := false
	s.draft.WantsLockers = &no
	s.nextGeneration()
	s.draft.AssignmentStatus = AssignmentNone
	s.draft.Assignment = nil
	s.draft.Notice = ""
}

// IncrementCount adds a locker. At the maximum it is a no-op and ok is false.
func (s *LockerSelector) IncrementCount() (req AssignmentRequest, ok bool, err error) {
	return s.changeCount(1)
}

// DecrementCount removes a locker. At the minimum it is a no-op and ok is false.
func (s *LockerSelector) DecrementCount() (req AssignmentRequest, ok bool, err error) {
	return s.changeCount(-1)
}

func (s *LockerSelector) changeCount(delta int) (AssignmentRequest, bool, error) {
	if !s.OptedIn() {
		return AssignmentRequest{}, false, ErrLockersNotSelected
	}
	next := clampLockerCount(s.draft.Count + delta)
	if next == s.draft.Count {
		return AssignmentRequest{}, false, nil
	}
	s.draft.Count = next
	return s.newRequest(), true, nil
}

func (s *LockerSelector) newRequest() AssignmentRequest {
	s.nextGeneration()
	s.draft.AssignmentStatus = AssignmentPending
	s.draft.Assignment = nil
	s.draft.Notice = ""
	return AssignmentRequest{Generation: s.draft.Generation, Count: s.draft.Count}
}

func (s *LockerSelector) SelectDuration(duration string) error {
	if !s.OptedIn() {
		return ErrLockersNotSelected
	}
	if _, ok := models.FindLockerOption(duration); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownLockerDuration, duration)
	}
	s.draft.Duration = duration
	return nil
}

// ApplyAssignment records the outcome of req. It returns false, leaving the
// draft untouched, when req is no longer the latest request. A failure
// records a fallback notice instead of an assignment.
func (s *LockerSelector) ApplyAssignment(req AssignmentRequest, assignment models.LockerAssignment, assignErr error) bool {
	if req.Generation != s.draft.Generation || !s.OptedIn() {
		return false
	}
	if assignErr != nil {
		s.draft.AssignmentStatus = AssignmentFailed
		s.draft.Assignment = nil
		s.draft.Notice = AlternativeLockersNotice
		return true
	}
	s.draft.AssignmentStatus = AssignmentAssigned
	s.draft.Assignment = &assignment
	s.draft.Notice = ""
	return true
}

func (s *LockerSelector) option() models.LockerOption {
	opt, _ := models.FindLockerOption(s.draft.Duration)
	return opt
}

// Price is the locker amount, zero when lockers are not added.
func (s *LockerSelector) Price() int64 {
	if !s.OptedIn() {
		return 0
	}
	return LockerPrice(s.option(), s.draft.Count)
}

// Total is tickets plus lockers, before tax.
func (s *LockerSelector) Total() int64 {
	return s.tickets.Total + s.Price()
}

// Selection is nil when lockers are not added.
func (s *LockerSelector) Selection() *models.LockerSelection {
	if !s.OptedIn() {
		return nil
	}
	opt := s.option()
	sel := &models.LockerSelection{
		Count:    s.draft.Count,
		Duration: opt.Duration,
		Hours:    opt.Hours,
		Price:    s.Price(),
	}
	if s.draft.Assignment != nil {
		a := *s.draft.Assignment
		a.LockerNumbers = append([]int(nil), a.LockerNumbers...)
		sel.Assignment = &a
	}
	if s.draft.AssignmentStatus == AssignmentFailed {
		sel.AssignmentNotice = s.draft.Notice
	}
	return sel
}

// Aggregate is the continue step. A pending or failed assignment never
// blocks it; only the opt-in decision is required.
func (s *LockerSelector) Aggregate() (models.BookingAggregate, error) {
	if !s.Decided() {
		return models.BookingAggregate{}, ErrLockerChoiceRequired
	}
	return models.BookingAggregate{
		Tickets: s.tickets,
		Lockers: s.Selection(),
		Total:   s.Total(),
	}, nil
}
