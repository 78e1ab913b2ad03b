package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vogiaan1904/ticketbottle-museum/config"
	"github.com/vogiaan1904/ticketbottle-museum/internal/booking"
	kafka "github.com/vogiaan1904/ticketbottle-museum/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-museum/internal/delivery/kafka/producer"
	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
	"github.com/vogiaan1904/ticketbottle-museum/internal/repository"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/util"
)

type BookingService interface {
	Catalog(ctx context.Context) CatalogOutput
	ResetSession(ctx context.Context, sessionID string) error

	AvailableSlots(ctx context.Context, date string) booking.SlotAvailability
	GetTickets(ctx context.Context, sessionID string) (TicketsOutput, error)
	SelectDate(ctx context.Context, sessionID, date string) (TicketsOutput, error)
	SelectSlot(ctx context.Context, sessionID, slotID string) (TicketsOutput, error)
	IncrementTicket(ctx context.Context, sessionID, ticketType string) (TicketsOutput, error)
	DecrementTicket(ctx context.Context, sessionID, ticketType string) (TicketsOutput, error)
	ContinueTickets(ctx context.Context, sessionID string) (ContinueOutput, error)

	GetLockers(ctx context.Context, sessionID string) (LockersOutput, error)
	OptInLockers(ctx context.Context, sessionID string) (LockersOutput, error)
	OptOutLockers(ctx context.Context, sessionID string) (LockersOutput, error)
	IncrementLockers(ctx context.Context, sessionID string) (LockersOutput, error)
	DecrementLockers(ctx context.Context, sessionID string) (LockersOutput, error)
	SelectLockerDuration(ctx context.Context, sessionID, duration string) (LockersOutput, error)
	ContinueLockers(ctx context.Context, sessionID string) (ContinueOutput, error)

	GetSummary(ctx context.Context, sessionID string) (SummaryOutput, error)
	GetCheckout(ctx context.Context, sessionID string) (CheckoutOutput, error)
	SubmitCheckout(ctx context.Context, sessionID string, form booking.CheckoutForm) (SubmitCheckoutOutput, error)
	GetConfirmation(ctx context.Context, sessionID string) (ConfirmationOutput, error)
	MyBookings(ctx context.Context, sessionID string) (MyBookingsOutput, error)

	// Close cancels in-flight assignments and waits for them to return.
	Close()
}

type bookingService struct {
	store    repository.SessionStore
	assigner booking.AssignmentProvider
	payment  booking.PaymentProvider
	prod     producer.Producer
	ids      *booking.IDGenerator
	gens     *booking.Generations
	museum   config.MuseumConfig
	timeout  time.Duration
	payTTL   time.Duration
	now      func() time.Time
	l        logger.Logger

	locks *keyedMutex

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

type BookingServiceDeps struct {
	Store    repository.SessionStore
	Assigner booking.AssignmentProvider
	Payment  booking.PaymentProvider
	Producer producer.Producer
	Museum   config.MuseumConfig
	// AssignmentTimeout bounds one background locker assignment.
	AssignmentTimeout time.Duration
	// PaymentTimeout bounds one charge. The charge is not tied to the caller.
	PaymentTimeout    time.Duration
	Now               func() time.Time
}

func NewBookingService(deps BookingServiceDeps, l logger.Logger) BookingService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	prod := deps.Producer
	if prod == nil {
		prod = producer.NewNopProducer()
	}
	timeout := deps.AssignmentTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	payTTL := deps.PaymentTimeout
	if payTTL <= 0 {
		payTTL = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &bookingService{
		store:    deps.Store,
		assigner: deps.Assigner,
		payment:  deps.Payment,
		prod:     prod,
		ids:      booking.NewIDGenerator(now),
		gens:     booking.NewGenerations(uint64(now().UnixNano())),
		museum:   deps.Museum,
		timeout:  timeout,
		payTTL:   payTTL,
		now:      now,
		l:        l,
		locks:    newKeyedMutex(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *bookingService) bridge(sessionID string) *booking.Bridge {
	return booking.NewBridge(s.store, sessionID)
}

func (s *bookingService) window() booking.DateWindow {
	return booking.NewDateWindow(s.now(), s.museum.Location(), s.museum.WindowMonths)
}

func lockerOptions() []LockerOptionOutput {
	opts := models.LockerOptions()
	out := make([]LockerOptionOutput, 0, len(opts))
	for _, o := range opts {
		out = append(out, LockerOptionOutput{LockerOption: o, PricePerLocker: booking.PerLockerPrice(o)})
	}
	return out
}

func (s *bookingService) Catalog(_ context.Context) CatalogOutput {
	return CatalogOutput{
		TicketTypes:   models.TicketTypes(),
		TimeSlots:     models.TimeSlots(),
		LockerOptions: lockerOptions(),
		LockerZones:   models.LockerZones(),
		TaxRatePct:    models.TaxRatePct,
	}
}

func (s *bookingService) ResetSession(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.bridge(sessionID).Clear(ctx); err != nil {
		s.l.Errorf(ctx, "bookingService.ResetSession: %v", err)
		return err
	}

	s.l.Infof(ctx, "Session reset: %s", sessionID)
	return nil
}

// Tickets

func (s *bookingService) AvailableSlots(_ context.Context, date string) booking.SlotAvailability {
	return booking.AvailableSlots(s.window(), date)
}

func (s *bookingService) loadTickets(ctx context.Context, b *booking.Bridge) (*booking.TicketSelector, error) {
	draft, ok, err := booking.Load[booking.TicketDraft](ctx, b, booking.KeyTicketDraft)
	if err != nil {
		return nil, err
	}
	if !ok {
		return booking.NewTicketSelector(s.window(), nil), nil
	}
	return booking.NewTicketSelector(s.window(), &draft), nil
}

func (s *bookingService) ticketsOutput(sel *booking.TicketSelector) TicketsOutput {
	w := s.window()
	d := sel.Draft()
	out := TicketsOutput{
		Date:         d.Date,
		TimeSlot:     d.TimeSlot,
		Tickets:      d.Quantities,
		TotalTickets: sel.TotalTickets(),
		Total:        sel.Total(),
		CanContinue:  sel.CanContinue(),
		MinDate:      util.FormatDate(w.Today()),
		MaxDate:      util.FormatDate(w.Last()),
	}
	if day, ok := w.Parse(d.Date); ok {
		out.FormattedDate = util.FormatLongDate(day)
	}
	return out
}

func (s *bookingService) GetTickets(ctx context.Context, sessionID string) (TicketsOutput, error) {
	sel, err := s.loadTickets(ctx, s.bridge(sessionID))
	if err != nil {
		s.l.Errorf(ctx, "bookingService.GetTickets: %v", err)
		return TicketsOutput{}, err
	}
	return s.ticketsOutput(sel), nil
}

// mutateTickets runs fn on the session's ticket draft and saves it.
func (s *bookingService) mutateTickets(ctx context.Context, sessionID string, fn func(*booking.TicketSelector) error) (TicketsOutput, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	b := s.bridge(sessionID)
	sel, err := s.loadTickets(ctx, b)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.mutateTickets: %v", err)
		return TicketsOutput{}, err
	}

	if err := fn(sel); err != nil {
		return TicketsOutput{}, err
	}

	if err := booking.Save(ctx, b, booking.KeyTicketDraft, sel.Draft()); err != nil {
		s.l.Errorf(ctx, "bookingService.mutateTickets.Save: %v", err)
		return TicketsOutput{}, err
	}

	return s.ticketsOutput(sel), nil
}

// SelectDate ignores dates outside the booking window.
func (s *bookingService) SelectDate(ctx context.Context, sessionID, date string) (TicketsOutput, error) {
	return s.mutateTickets(ctx, sessionID, func(sel *booking.TicketSelector) error {
		if !sel.SelectDate(date) {
			s.l.Debugf(ctx, "Ignored date outside window: %q", date)
		}
		return nil
	})
}

func (s *bookingService) SelectSlot(ctx context.Context, sessionID, slotID string) (TicketsOutput, error) {
	return s.mutateTickets(ctx, sessionID, func(sel *booking.TicketSelector) error {
		return sel.SelectSlot(slotID)
	})
}

func (s *bookingService) IncrementTicket(ctx context.Context, sessionID, ticketType string) (TicketsOutput, error) {
	return s.mutateTickets(ctx, sessionID, func(sel *booking.TicketSelector) error {
		return sel.Increment(ticketType)
	})
}

func (s *bookingService) DecrementTicket(ctx context.Context, sessionID, ticketType string) (TicketsOutput, error) {
	return s.mutateTickets(ctx, sessionID, func(sel *booking.TicketSelector) error {
		return sel.Decrement(ticketType)
	})
}

// ContinueTickets overwrites ticketSelection only. A bookingData saved
// from an earlier selection is left as is until lockers are continued.
func (s *bookingService) ContinueTickets(ctx context.Context, sessionID string) (ContinueOutput, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	b := s.bridge(sessionID)
	sel, err := s.loadTickets(ctx, b)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.ContinueTickets: %v", err)
		return ContinueOutput{}, err
	}

	selection, err := sel.Selection()
	if err != nil {
		return ContinueOutput{}, err
	}

	if err := booking.Save(ctx, b, booking.KeyTicketSelection, selection); err != nil {
		s.l.Errorf(ctx, "bookingService.ContinueTickets.Save: %v", err)
		return ContinueOutput{}, err
	}

	s.l.Infof(ctx, "Tickets selected: date=%s slot=%s count=%d total=%d",
		selection.Date, selection.TimeSlot, selection.Count(), selection.Total)

	return ContinueOutput{Next: models.RouteLockers}, nil
}

// Lockers

func (s *bookingService) loadLockers(ctx context.Context, b *booking.Bridge) (*booking.LockerSelector, models.TicketSelection, error) {
	tickets, err := booking.RequireTicketSelection(ctx, b)
	if err != nil {
		return nil, tickets, err
	}

	draft, ok, err := booking.Load[booking.LockerDraft](ctx, b, booking.KeyLockerDraft)
	if err != nil {
		return nil, tickets, err
	}
	if !ok {
		return booking.NewLockerSelector(tickets, nil).WithGenerations(s.gens), tickets, nil
	}
	return booking.NewLockerSelector(tickets, &draft).WithGenerations(s.gens), tickets, nil
}

func lockersOutput(sel *booking.LockerSelector, tickets models.TicketSelection) LockersOutput {
	d := sel.Draft()
	return LockersOutput{
		Tickets:          tickets,
		WantsLockers:     d.WantsLockers,
		Count:            d.Count,
		Duration:         d.Duration,
		AssignmentStatus: d.AssignmentStatus,
		Assignment:       d.Assignment,
		Notice:           d.Notice,
		LockerPrice:      sel.Price(),
		Total:            sel.Total(),
		Options:          lockerOptions(),
	}
}

func (s *bookingService) GetLockers(ctx context.Context, sessionID string) (LockersOutput, error) {
	sel, tickets, err := s.loadLockers(ctx, s.bridge(sessionID))
	if err != nil {
		return LockersOutput{}, err
	}
	return lockersOutput(sel, tickets), nil
}

// mutateLockers runs fn on the locker draft, saves it and dispatches the
// assignment request fn returns, if any.
func (s *bookingService) mutateLockers(ctx context.Context, sessionID string, fn func(*booking.LockerSelector) (*booking.AssignmentRequest, error)) (LockersOutput, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	b := s.bridge(sessionID)
	sel, tickets, err := s.loadLockers(ctx, b)
	if err != nil {
		return LockersOutput{}, err
	}

	req, err := fn(sel)
	if err != nil {
		return LockersOutput{}, err
	}

	if err := booking.Save(ctx, b, booking.KeyLockerDraft, sel.Draft()); err != nil {
		s.l.Errorf(ctx, "bookingService.mutateLockers.Save: %v", err)
		return LockersOutput{}, err
	}

	if req != nil {
		s.startAssignment(ctx, sessionID, *req)
	}

	return lockersOutput(sel, tickets), nil
}

func (s *bookingService) OptInLockers(ctx context.Context, sessionID string) (LockersOutput, error) {
	return s.mutateLockers(ctx, sessionID, func(sel *booking.LockerSelector) (*booking.AssignmentRequest, error) {
		req := sel.OptIn()
		return &req, nil
	})
}

func (s *bookingService) OptOutLockers(ctx context.Context, sessionID string) (LockersOutput, error) {
	return s.mutateLockers(ctx, sessionID, func(sel *booking.LockerSelector) (*booking.AssignmentRequest, error) {
		sel.OptOut()
		return nil, nil
	})
}

func (s *bookingService) IncrementLockers(ctx context.Context, sessionID string) (LockersOutput, error) {
	return s.mutateLockers(ctx, sessionID, func(sel *booking.LockerSelector) (*booking.AssignmentRequest, error) {
		return changed(sel.IncrementCount())
	})
}

func (s *bookingService) DecrementLockers(ctx context.Context, sessionID string) (LockersOutput, error) {
	return s.mutateLockers(ctx, sessionID, func(sel *booking.LockerSelector) (*booking.AssignmentRequest, error) {
		return changed(sel.DecrementCount())
	})
}

func changed(req booking.AssignmentRequest, ok bool, err error) (*booking.AssignmentRequest, error) {
	if err != nil || !ok {
		return nil, err
	}
	return &req, nil
}

func (s *bookingService) SelectLockerDuration(ctx context.Context, sessionID, duration string) (LockersOutput, error) {
	return s.mutateLockers(ctx, sessionID, func(sel *booking.LockerSelector) (*booking.AssignmentRequest, error) {
		return nil, sel.SelectDuration(duration)
	})
}

// startAssignment runs req in the background. The result is applied only
// if req is still the latest request when it lands.
func (s *bookingService) startAssignment(ctx context.Context, sessionID string, req booking.AssignmentRequest) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.l.Warnf(ctx, "bookingService.startAssignment: service closed, dropping generation %d", req.Generation)
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	logCtx := s.l.WithFields(context.Background(), "session_id", sessionID, "generation", req.Generation)

	go func() {
		defer s.wg.Done()

		actx, cancel := context.WithTimeout(s.ctx, s.timeout)
		defer cancel()

		assignment, err := s.assigner.Assign(actx, req.Count)
		if s.ctx.Err() != nil {
			return
		}
		s.applyAssignment(logCtx, sessionID, req, assignment, err)
	}()
}

func (s *bookingService) applyAssignment(ctx context.Context, sessionID string, req booking.AssignmentRequest, assignment models.LockerAssignment, assignErr error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	b := s.bridge(sessionID)
	draft, ok, err := booking.Load[booking.LockerDraft](ctx, b, booking.KeyLockerDraft)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.applyAssignment: %v", err)
		return
	}
	if !ok {
		return
	}

	sel := booking.NewLockerSelector(models.TicketSelection{}, &draft)
	if !sel.ApplyAssignment(req, assignment, assignErr) {
		s.l.Debugf(ctx, "Dropped stale locker assignment")
		return
	}

	if err := booking.Save(ctx, b, booking.KeyLockerDraft, sel.Draft()); err != nil {
		if !errors.Is(err, repository.ErrSessionNotFound) {
			s.l.Errorf(ctx, "bookingService.applyAssignment.Save: %v", err)
		}
		return
	}

	if assignErr != nil {
		s.l.Warnf(ctx, "Locker assignment failed, alternative lockers reserved: %v", assignErr)
		return
	}
	s.l.Infof(ctx, "Lockers assigned: section=%s numbers=%v", assignment.Section, assignment.LockerNumbers)
}

// ContinueLockers persists bookingData. It does not wait for a pending
// assignment; one that lands later only updates the locker draft.
func (s *bookingService) ContinueLockers(ctx context.Context, sessionID string) (ContinueOutput, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	b := s.bridge(sessionID)
	sel, _, err := s.loadLockers(ctx, b)
	if err != nil {
		return ContinueOutput{}, err
	}

	agg, err := sel.Aggregate()
	if err != nil {
		return ContinueOutput{}, err
	}

	if err := booking.Save(ctx, b, booking.KeyBookingData, agg); err != nil {
		s.l.Errorf(ctx, "bookingService.ContinueLockers.Save: %v", err)
		return ContinueOutput{}, err
	}

	return ContinueOutput{Next: models.RouteSummary}, nil
}

// Summary, checkout and confirmation

func describeVisit(tickets models.TicketSelection, loc *time.Location) (formatted, slotLabel string) {
	if day, err := util.ParseDate(tickets.Date, loc); err == nil {
		formatted = util.FormatLongDate(day)
	}
	slotLabel = tickets.TimeSlot
	if slot, ok := models.FindTimeSlot(tickets.TimeSlot); ok {
		slotLabel = slot.Label
	}
	return formatted, slotLabel
}

func (s *bookingService) GetSummary(ctx context.Context, sessionID string) (SummaryOutput, error) {
	agg, err := booking.RequireBooking(ctx, s.bridge(sessionID))
	if err != nil {
		return SummaryOutput{}, err
	}

	formatted, slotLabel := describeVisit(agg.Tickets, s.museum.Location())
	slot, _ := models.FindTimeSlot(agg.Tickets.TimeSlot)
	return SummaryOutput{
		Booking:       agg,
		LineItems:     booking.LineItems(agg.Tickets.Tickets),
		FormattedDate: formatted,
		SlotLabel:     slotLabel,
		PremiumSlot:   slot.IsPremium(),
		Totals:        booking.AggregateTotals(agg),
	}, nil
}

func (s *bookingService) loadCheckout(ctx context.Context, b *booking.Bridge) (*booking.Checkout, error) {
	state, ok, err := booking.Load[booking.CheckoutState](ctx, b, booking.KeyCheckoutState)
	if err != nil {
		return nil, err
	}
	if !ok {
		return booking.NewCheckout(nil, s.ids, s.now).WithGenerations(s.gens), nil
	}
	return booking.NewCheckout(&state, s.ids, s.now).WithGenerations(s.gens), nil
}

func (s *bookingService) GetCheckout(ctx context.Context, sessionID string) (CheckoutOutput, error) {
	b := s.bridge(sessionID)
	agg, err := booking.RequireBooking(ctx, b)
	if err != nil {
		return CheckoutOutput{}, err
	}

	c, err := s.loadCheckout(ctx, b)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.GetCheckout: %v", err)
		return CheckoutOutput{}, err
	}

	return CheckoutOutput{
		Booking: agg,
		Totals:  booking.AggregateTotals(agg),
		State:   c.State(),
	}, nil
}

// SubmitCheckout validates and charges under two short critical sections.
// The charge itself runs unlocked so a newer submission can supersede it.
func (s *bookingService) SubmitCheckout(ctx context.Context, sessionID string, form booking.CheckoutForm) (SubmitCheckoutOutput, error) {
	b := s.bridge(sessionID)

	agg, sub, err := s.beginCheckout(ctx, b, form)
	if err != nil {
		return SubmitCheckoutOutput{}, err
	}

	// The charge and its outcome outlive the caller. A dropped connection
	// is not a declined payment.
	ctx = context.WithoutCancel(ctx)

	totals := booking.AggregateTotals(agg)
	chargeCtx, cancel := context.WithTimeout(ctx, s.payTTL)
	receipt, chargeErr := s.payment.Charge(chargeCtx, booking.PaymentRequest{
		Booking:  agg,
		Customer: sub.Customer,
		Method:   sub.Method,
		Amount:   totals.GrandTotal,
	})
	cancel()

	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c, err := s.loadCheckout(ctx, b)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.SubmitCheckout.loadCheckout: %v", err)
		return SubmitCheckoutOutput{}, err
	}

	rec, resolveErr := c.Resolve(sub, agg, chargeErr)
	if errors.Is(resolveErr, booking.ErrSuperseded) {
		s.l.Infof(ctx, "Checkout generation %d superseded", sub.Generation)
		return SubmitCheckoutOutput{}, booking.ErrSuperseded
	}

	if err := booking.Save(ctx, b, booking.KeyCheckoutState, c.State()); err != nil {
		s.l.Errorf(ctx, "bookingService.SubmitCheckout.SaveState: %v", err)
		return SubmitCheckoutOutput{}, err
	}

	if resolveErr != nil {
		return SubmitCheckoutOutput{}, s.paymentFailed(ctx, sessionID, sub, resolveErr)
	}

	if err := s.confirm(ctx, b, rec); err != nil {
		return SubmitCheckoutOutput{}, err
	}

	s.l.Infof(ctx, "Booking confirmed: id=%s ref=%s grand_total=%d", rec.BookingID, receipt.Reference, totals.GrandTotal)

	if err := s.prod.PublishBookingConfirmed(ctx, confirmedEvent(sessionID, rec, totals)); err != nil {
		s.l.Warnf(ctx, "bookingService.SubmitCheckout.PublishBookingConfirmed: %v", err)
	}

	return SubmitCheckoutOutput{
		Next:         models.RouteConfirmation,
		Confirmation: rec,
		Totals:       totals,
	}, nil
}

func (s *bookingService) beginCheckout(ctx context.Context, b *booking.Bridge, form booking.CheckoutForm) (models.BookingAggregate, booking.Submission, error) {
	unlock := s.locks.Lock(b.SessionID())
	defer unlock()

	agg, err := booking.RequireBooking(ctx, b)
	if err != nil {
		return models.BookingAggregate{}, booking.Submission{}, err
	}

	c, err := s.loadCheckout(ctx, b)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.beginCheckout: %v", err)
		return models.BookingAggregate{}, booking.Submission{}, err
	}

	sub, submitErr := c.Submit(form)

	// Saved either way: a rejected form still supersedes older submissions.
	if err := booking.Save(ctx, b, booking.KeyCheckoutState, c.State()); err != nil {
		s.l.Errorf(ctx, "bookingService.beginCheckout.Save: %v", err)
		return models.BookingAggregate{}, booking.Submission{}, err
	}

	if submitErr != nil {
		return models.BookingAggregate{}, booking.Submission{}, submitErr
	}

	return agg, sub, nil
}

func (s *bookingService) paymentFailed(ctx context.Context, sessionID string, sub booking.Submission, err error) error {
	var perr *booking.PaymentError
	if !errors.As(err, &perr) {
		perr = &booking.PaymentError{Reason: err.Error()}
	}

	s.l.Warnf(ctx, "Payment failed: method=%s: %v", sub.Method, err)

	if pubErr := s.prod.PublishPaymentFailed(ctx, kafka.PaymentFailedEvent{
		SessionID:     sessionID,
		PaymentMethod: string(sub.Method),
		Reason:        perr.Reason,
	}); pubErr != nil {
		s.l.Warnf(ctx, "bookingService.PublishPaymentFailed: %v", pubErr)
	}

	return perr
}

func (s *bookingService) confirm(ctx context.Context, b *booking.Bridge, rec models.ConfirmationRecord) error {
	if err := booking.Save(ctx, b, booking.KeyConfirmationData, rec); err != nil {
		s.l.Errorf(ctx, "bookingService.confirm.SaveConfirmation: %v", err)
		return err
	}

	history, _, err := booking.Load[[]models.ConfirmationRecord](ctx, b, booking.KeyBookingHistory)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.confirm.LoadHistory: %v", err)
		return err
	}

	if err := booking.Save(ctx, b, booking.KeyBookingHistory, booking.AppendHistory(history, rec)); err != nil {
		s.l.Errorf(ctx, "bookingService.confirm.SaveHistory: %v", err)
		return err
	}

	return nil
}

func confirmedEvent(sessionID string, rec models.ConfirmationRecord, totals models.Totals) kafka.BookingConfirmedEvent {
	lockers := 0
	if rec.Booking.Lockers != nil {
		lockers = rec.Booking.Lockers.Count
	}
	return kafka.BookingConfirmedEvent{
		BookingID:     rec.BookingID,
		SessionID:     sessionID,
		Email:         rec.Customer.Email,
		VisitDate:     rec.Booking.Tickets.Date,
		TimeSlot:      rec.Booking.Tickets.TimeSlot,
		TicketCount:   rec.Booking.Tickets.Count(),
		LockerCount:   lockers,
		Subtotal:      totals.Subtotal,
		Tax:           totals.Tax,
		GrandTotal:    totals.GrandTotal,
		PaymentMethod: string(rec.PaymentMethod),
		ConfirmedAt:   rec.ConfirmedAt,
	}
}

func (s *bookingService) GetConfirmation(ctx context.Context, sessionID string) (ConfirmationOutput, error) {
	rec, err := booking.RequireConfirmation(ctx, s.bridge(sessionID))
	if err != nil {
		return ConfirmationOutput{}, err
	}

	formatted, slotLabel := describeVisit(rec.Booking.Tickets, s.museum.Location())
	return ConfirmationOutput{
		Confirmation:  rec,
		FormattedDate: formatted,
		SlotLabel:     slotLabel,
		Totals:        booking.AggregateTotals(rec.Booking),
	}, nil
}

func (s *bookingService) MyBookings(ctx context.Context, sessionID string) (MyBookingsOutput, error) {
	history, _, err := booking.Load[[]models.ConfirmationRecord](ctx, s.bridge(sessionID), booking.KeyBookingHistory)
	if err != nil {
		s.l.Errorf(ctx, "bookingService.MyBookings: %v", err)
		return MyBookingsOutput{}, err
	}

	return MyBookingsOutput{
		Bookings: booking.ViewHistory(history, s.now(), s.museum.Location()),
	}, nil
}

// wait blocks until in-flight assignments have been applied.
func (s *bookingService) wait() {
	s.wg.Wait()
}

func (s *bookingService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
