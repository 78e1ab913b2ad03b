package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vogiaan1904/ticketbottle-museum/config"
	"github.com/vogiaan1904/ticketbottle-museum/internal/booking"
	kafka "github.com/vogiaan1904/ticketbottle-museum/internal/delivery/kafka"
	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
	"github.com/vogiaan1904/ticketbottle-museum/internal/repository"
	"github.com/vogiaan1904/ticketbottle-museum/internal/repository/memory"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

// stubAssigner answers each Assign call with the next queued result.
type stubAssigner struct {
	mu      sync.Mutex
	calls   []int
	results []error
	gate    chan struct{}
}

func (a *stubAssigner) Assign(ctx context.Context, count int) (models.LockerAssignment, error) {
	a.mu.Lock()
	a.calls = append(a.calls, count)
	var err error
	if len(a.results) > 0 {
		err, a.results = a.results[0], a.results[1:]
	}
	gate := a.gate
	a.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.LockerAssignment{}, ctx.Err()
		}
	}
	if err != nil {
		return models.LockerAssignment{}, err
	}

	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = 20 + i
	}
	return models.LockerAssignment{Section: "A", LockerNumbers: numbers, Location: "Section A - Main Hall"}, nil
}

func (a *stubAssigner) Calls() []int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]int(nil), a.calls...)
}

// gatedAssigner holds every Assign call until it is released by index.
// Locker numbers start at 100×(index+1) so results are traceable.
type gatedAssigner struct {
	mu    sync.Mutex
	gates []chan struct{}
}

func (a *gatedAssigner) Assign(ctx context.Context, count int) (models.LockerAssignment, error) {
	gate := make(chan struct{})
	a.mu.Lock()
	idx := len(a.gates)
	a.gates = append(a.gates, gate)
	a.mu.Unlock()

	select {
	case <-gate:
	case <-ctx.Done():
		return models.LockerAssignment{}, ctx.Err()
	}

	numbers := make([]int, count)
	for i := range numbers {
		numbers[i] = 100*(idx+1) + i
	}
	return models.LockerAssignment{Section: "Z", LockerNumbers: numbers}, nil
}

// started waits until n Assign calls are parked.
func (a *gatedAssigner) started(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return len(a.gates) == n
	}, time.Second, time.Millisecond)
}

func (a *gatedAssigner) release(idx ...int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, i := range idx {
		close(a.gates[i])
	}
}

type stubPayment struct {
	mu        sync.Mutex
	reqs      []booking.PaymentRequest
	deadlines []bool
	err       error
	hook      func()
}

func (p *stubPayment) Charge(ctx context.Context, req booking.PaymentRequest) (booking.PaymentReceipt, error) {
	_, hasDeadline := ctx.Deadline()

	p.mu.Lock()
	p.reqs = append(p.reqs, req)
	p.deadlines = append(p.deadlines, hasDeadline)
	err, hook := p.err, p.hook
	p.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return booking.PaymentReceipt{}, err
	}
	if ctx.Err() != nil {
		return booking.PaymentReceipt{}, ctx.Err()
	}
	return booking.PaymentReceipt{Reference: "ref-1"}, nil
}

type recordingProducer struct {
	mu        sync.Mutex
	confirmed []kafka.BookingConfirmedEvent
	failed    []kafka.PaymentFailedEvent
	err       error
}

func (p *recordingProducer) PublishBookingConfirmed(_ context.Context, ev kafka.BookingConfirmedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.confirmed = append(p.confirmed, ev)
	return p.err
}

func (p *recordingProducer) PublishPaymentFailed(_ context.Context, ev kafka.PaymentFailedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed = append(p.failed, ev)
	return p.err
}

func (p *recordingProducer) Close() error { return nil }

type fixture struct {
	svc      *bookingService
	store    repository.SessionStore
	assigner *stubAssigner
	payment  *stubPayment
	prod     *recordingProducer
	sid      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithAssigner(t, nil)
}

// newFixtureWithAssigner builds the service around assigner, or around the
// fixture's stubAssigner when assigner is nil.
func newFixtureWithAssigner(t *testing.T, assigner booking.AssignmentProvider) *fixture {
	t.Helper()

	store := memory.NewSessionStore()
	f := &fixture{
		store:    store,
		assigner: &stubAssigner{},
		payment:  &stubPayment{},
		prod:     &recordingProducer{},
		sid:      "s1",
	}
	require.NoError(t, store.Create(context.Background(), f.sid, time.Hour))
	if assigner == nil {
		assigner = f.assigner
	}

	f.svc = NewBookingService(BookingServiceDeps{
		Store:             store,
		Assigner:          assigner,
		Payment:           f.payment,
		Producer:          f.prod,
		Museum:            config.MuseumConfig{Timezone: "UTC", WindowMonths: 3},
		AssignmentTimeout: time.Second,
		Now:               func() time.Time { return testNow },
	}, logger.NewNop()).(*bookingService)
	t.Cleanup(f.svc.Close)

	return f
}

// selectTickets walks the ticket step: 2 adults and 1 child at 12:00.
func (f *fixture) selectTickets(t *testing.T, date string) {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.SelectDate(ctx, f.sid, date)
	require.NoError(t, err)
	_, err = f.svc.SelectSlot(ctx, f.sid, "12:00")
	require.NoError(t, err)
	for _, tt := range []string{"adult", "adult", "child"} {
		_, err = f.svc.IncrementTicket(ctx, f.sid, tt)
		require.NoError(t, err)
	}
	out, err := f.svc.ContinueTickets(ctx, f.sid)
	require.NoError(t, err)
	require.Equal(t, models.RouteLockers, out.Next)
}

func validForm() booking.CheckoutForm {
	return booking.CheckoutForm{
		PaymentMethod: "card",
		Email:         "ada@example.com",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		CardNumber:    "4242424242429876",
		CardExpiry:    "12/28",
		CVV:           "123",
	}
}

func TestBookingService_TicketStep(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	out, err := f.svc.GetTickets(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", out.Date)
	assert.Equal(t, "2027-01-14", out.MaxDate)
	assert.False(t, out.CanContinue)

	out, err = f.svc.SelectDate(ctx, f.sid, "2027-02-01")
	require.NoError(t, err)
	assert.Equal(t, "2026-10-14", out.Date, "dates outside the window are ignored")

	_, err = f.svc.ContinueTickets(ctx, f.sid)
	assert.ErrorIs(t, err, booking.ErrIncompleteSelection)

	_, err = f.svc.DecrementTicket(ctx, f.sid, "adult")
	require.NoError(t, err)
	_, err = f.svc.IncrementTicket(ctx, f.sid, "pensioner")
	assert.ErrorIs(t, err, booking.ErrUnknownTicketType)

	f.selectTickets(t, "2026-10-20")

	sel, ok, err := booking.Load[models.TicketSelection](ctx, booking.NewBridge(f.store, f.sid), booking.KeyTicketSelection)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, int64(77), sel.Total)
	assert.Equal(t, map[string]int{"adult": 2, "child": 1}, sel.Tickets)
}

func TestBookingService_RecontinueTicketsLeavesBookingStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := booking.NewBridge(f.store, f.sid)

	f.selectTickets(t, "2026-10-20")
	_, err := f.svc.OptOutLockers(ctx, f.sid)
	require.NoError(t, err)
	_, err = f.svc.ContinueLockers(ctx, f.sid)
	require.NoError(t, err)

	// Back on the ticket step: 2 adults + 1 child become 1 senior at 09:00.
	_, err = f.svc.SelectSlot(ctx, f.sid, "09:00")
	require.NoError(t, err)
	for _, step := range []struct {
		fn func(context.Context, string, string) (TicketsOutput, error)
		tt string
	}{
		{f.svc.DecrementTicket, "adult"},
		{f.svc.DecrementTicket, "adult"},
		{f.svc.DecrementTicket, "child"},
		{f.svc.IncrementTicket, "senior"},
	} {
		_, err = step.fn(ctx, f.sid, step.tt)
		require.NoError(t, err)
	}
	_, err = f.svc.ContinueTickets(ctx, f.sid)
	require.NoError(t, err)

	sel, ok, err := booking.Load[models.TicketSelection](ctx, b, booking.KeyTicketSelection)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.TicketSelection{
		Date:     "2026-10-20",
		TimeSlot: "09:00",
		Tickets:  map[string]int{"senior": 1},
		Total:    20,
	}, sel)

	agg, err := booking.RequireBooking(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "12:00", agg.Tickets.TimeSlot)
	assert.Equal(t, map[string]int{"adult": 2, "child": 1}, agg.Tickets.Tickets)
	assert.Equal(t, int64(77), agg.Total)

	sum, err := f.svc.GetSummary(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, int64(77), sum.Totals.Subtotal, "summary keeps the earlier booking until lockers are continued")
}

func TestBookingService_LockerGuard(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.GetLockers(ctx, f.sid)
	var redirect *booking.Redirect
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, models.RouteTickets, redirect.To)

	_, err = f.svc.OptInLockers(ctx, f.sid)
	require.ErrorAs(t, err, &redirect)
	assert.Empty(t, f.assigner.Calls())
}

func TestBookingService_LockerAssignment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.selectTickets(t, "2026-10-20")

	out, err := f.svc.OptInLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.AssignmentPending, out.AssignmentStatus)
	assert.Equal(t, int64(85), out.Total)

	f.svc.wait()

	out, err = f.svc.GetLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.AssignmentAssigned, out.AssignmentStatus)
	require.NotNil(t, out.Assignment)
	assert.Equal(t, []int{20}, out.Assignment.LockerNumbers)
}

func TestBookingService_LatestAssignmentWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.selectTickets(t, "2026-10-20")

	gate := make(chan struct{})
	f.assigner.gate = gate

	_, err := f.svc.OptInLockers(ctx, f.sid)
	require.NoError(t, err)
	_, err = f.svc.IncrementLockers(ctx, f.sid)
	require.NoError(t, err)
	_, err = f.svc.IncrementLockers(ctx, f.sid)
	require.NoError(t, err)

	close(gate)
	f.svc.wait()

	assert.ElementsMatch(t, []int{1, 2, 3}, f.assigner.Calls())

	out, err := f.svc.GetLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, 3, out.Count)
	require.NotNil(t, out.Assignment)
	assert.Equal(t, []int{20, 21, 22}, out.Assignment.LockerNumbers)
}

func TestBookingService_AssignmentFailureDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.selectTickets(t, "2026-10-20")
	f.assigner.results = []error{errors.New("zone offline")}

	_, err := f.svc.OptInLockers(ctx, f.sid)
	require.NoError(t, err)
	f.svc.wait()

	out, err := f.svc.GetLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.AssignmentFailed, out.AssignmentStatus)
	assert.Equal(t, booking.AlternativeLockersNotice, out.Notice)

	next, err := f.svc.ContinueLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, models.RouteSummary, next.Next)
}

func TestBookingService_CountNoOpIssuesNoRequest(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.selectTickets(t, "2026-10-20")

	_, err := f.svc.OptInLockers(ctx, f.sid)
	require.NoError(t, err)
	out, err := f.svc.DecrementLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)

	f.svc.wait()
	assert.Equal(t, []int{1}, f.assigner.Calls())
}

func TestBookingService_ContinueLockersRequiresChoice(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.selectTickets(t, "2026-10-20")

	_, err := f.svc.ContinueLockers(ctx, f.sid)
	assert.ErrorIs(t, err, booking.ErrLockerChoiceRequired)

	_, err = f.svc.OptOutLockers(ctx, f.sid)
	require.NoError(t, err)
	_, err = f.svc.ContinueLockers(ctx, f.sid)
	require.NoError(t, err)

	sum, err := f.svc.GetSummary(ctx, f.sid)
	require.NoError(t, err)
	assert.Nil(t, sum.Booking.Lockers)
	assert.Equal(t, models.Totals{Subtotal: 77, Tax: 6, GrandTotal: 83}, sum.Totals)
	assert.Equal(t, "Tuesday, October 20, 2026", sum.FormattedDate)
	assert.Equal(t, "12:00 PM", sum.SlotLabel)
	assert.True(t, sum.PremiumSlot)
	require.Len(t, sum.LineItems, 2)
	assert.Equal(t, "adult", sum.LineItems[0].TicketType)
}

func TestBookingService_SummaryAndCheckoutGuards(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var redirect *booking.Redirect

	_, err := f.svc.GetSummary(ctx, f.sid)
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, models.RouteTickets, redirect.To)

	_, err = f.svc.GetCheckout(ctx, f.sid)
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, models.RouteTickets, redirect.To)

	_, err = f.svc.SubmitCheckout(ctx, f.sid, validForm())
	require.ErrorAs(t, err, &redirect)

	_, err = f.svc.GetConfirmation(ctx, f.sid)
	require.ErrorAs(t, err, &redirect)
	assert.Equal(t, models.RouteHome, redirect.To)
}

func bookWithLockers(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()

	f.selectTickets(t, "2026-10-14")
	_, err := f.svc.OptInLockers(ctx, f.sid)
	require.NoError(t, err)
	f.svc.wait()
	_, err = f.svc.SelectLockerDuration(ctx, f.sid, "2 hours")
	require.NoError(t, err)
	_, err = f.svc.ContinueLockers(ctx, f.sid)
	require.NoError(t, err)
}

func TestBookingService_CheckoutSuccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookWithLockers(t, f)

	out, err := f.svc.SubmitCheckout(ctx, f.sid, validForm())
	require.NoError(t, err)

	assert.Equal(t, models.RouteConfirmation, out.Next)
	assert.Regexp(t, `^HCM[0-9A-Z]+$`, out.Confirmation.BookingID)
	// 77 tickets + 14 lockers, tax 7.
	assert.Equal(t, models.Totals{Subtotal: 91, Tax: 7, GrandTotal: 98}, out.Totals)
	assert.Equal(t, "9876", out.Confirmation.Customer.CardLast4)

	require.Len(t, f.payment.reqs, 1)
	assert.Equal(t, int64(98), f.payment.reqs[0].Amount)

	conf, err := f.svc.GetConfirmation(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, out.Confirmation.BookingID, conf.Confirmation.BookingID)
	assert.Equal(t, out.Totals, conf.Totals)

	co, err := f.svc.GetCheckout(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.CheckoutSucceeded, co.State.Status)

	require.Len(t, f.prod.confirmed, 1)
	ev := f.prod.confirmed[0]
	assert.Equal(t, out.Confirmation.BookingID, ev.BookingID)
	assert.Equal(t, 3, ev.TicketCount)
	assert.Equal(t, 1, ev.LockerCount)
	assert.Equal(t, int64(98), ev.GrandTotal)

	mine, err := f.svc.MyBookings(ctx, f.sid)
	require.NoError(t, err)
	require.Len(t, mine.Bookings, 1)
	assert.Equal(t, models.BookingStatusActive, mine.Bookings[0].Status)
	require.NotNil(t, mine.Bookings[0].Lockers)
	// 12:00 + 2h = 14:00, now is 15:30.
	assert.Equal(t, "Expired", mine.Bookings[0].Lockers.Remaining)
}

func TestBookingService_CheckoutValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookWithLockers(t, f)

	form := validForm()
	form.Email = "  "
	form.CVV = ""

	_, err := f.svc.SubmitCheckout(ctx, f.sid, form)
	var verr *booking.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"email", "cvv"}, verr.Fields)
	assert.Empty(t, f.payment.reqs, "no payment call on invalid input")

	co, err := f.svc.GetCheckout(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.CheckoutIdle, co.State.Status)
}

func TestBookingService_CheckoutPaymentFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookWithLockers(t, f)
	f.payment.err = &booking.PaymentError{Reason: "card declined"}

	_, err := f.svc.SubmitCheckout(ctx, f.sid, validForm())
	var perr *booking.PaymentError
	require.ErrorAs(t, err, &perr)

	co, err := f.svc.GetCheckout(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.CheckoutIdle, co.State.Status)
	assert.Equal(t, booking.PaymentFailedNotice, co.State.Notice)

	_, err = f.svc.GetConfirmation(ctx, f.sid)
	var redirect *booking.Redirect
	assert.ErrorAs(t, err, &redirect)

	require.Len(t, f.prod.failed, 1)
	assert.Equal(t, "card declined", f.prod.failed[0].Reason)

	f.payment.err = nil
	_, err = f.svc.SubmitCheckout(ctx, f.sid, validForm())
	require.NoError(t, err)
}

func TestBookingService_CheckoutSuperseded(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookWithLockers(t, f)

	var (
		charges int
		second  SubmitCheckoutOutput
		errB    error
	)
	// The first charge is overtaken by a second submission before it returns.
	f.payment.hook = func() {
		charges++
		if charges == 1 {
			second, errB = f.svc.SubmitCheckout(ctx, f.sid, validForm())
		}
	}

	_, errA := f.svc.SubmitCheckout(ctx, f.sid, validForm())
	assert.ErrorIs(t, errA, booking.ErrSuperseded)
	require.NoError(t, errB)

	conf, err := f.svc.GetConfirmation(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, second.Confirmation.BookingID, conf.Confirmation.BookingID)
	assert.Len(t, f.prod.confirmed, 1)
}

func TestBookingService_CallerGoneDoesNotFailPayment(t *testing.T) {
	f := newFixture(t)
	bookWithLockers(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.payment.hook = cancel

	out, err := f.svc.SubmitCheckout(ctx, f.sid, validForm())
	require.NoError(t, err)
	assert.Equal(t, []bool{true}, f.payment.deadlines, "charge is bounded by its own timeout")

	assert.Empty(t, f.prod.failed)
	require.Len(t, f.prod.confirmed, 1)

	conf, err := f.svc.GetConfirmation(context.Background(), f.sid)
	require.NoError(t, err)
	assert.Equal(t, out.Confirmation.BookingID, conf.Confirmation.BookingID)
}

func TestBookingService_PublishErrorDoesNotFailCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookWithLockers(t, f)
	f.prod.err = errors.New("broker down")

	_, err := f.svc.SubmitCheckout(ctx, f.sid, validForm())
	assert.NoError(t, err)
}

func TestBookingService_ResetSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.selectTickets(t, "2026-10-20")

	require.NoError(t, f.svc.ResetSession(ctx, f.sid))

	_, err := f.svc.GetLockers(ctx, f.sid)
	var redirect *booking.Redirect
	assert.ErrorAs(t, err, &redirect)

	out, err := f.svc.GetTickets(ctx, f.sid)
	require.NoError(t, err)
	assert.Zero(t, out.TotalTickets)
}

func TestBookingService_ResetDropsInFlightAssignments(t *testing.T) {
	ctx := context.Background()
	gated := &gatedAssigner{}
	f := newFixtureWithAssigner(t, gated)

	// step runs one locker change and waits for its Assign call, so call
	// indexes follow request order.
	calls := 0
	step := func(fn func(context.Context, string) (LockersOutput, error)) {
		_, err := fn(ctx, f.sid)
		require.NoError(t, err)
		calls++
		gated.started(t, calls)
	}

	f.selectTickets(t, "2026-10-20")
	step(f.svc.OptInLockers)     // call 0, count 1
	step(f.svc.IncrementLockers) // call 1, count 2
	step(f.svc.IncrementLockers) // call 2, count 3

	require.NoError(t, f.svc.ResetSession(ctx, f.sid))

	f.selectTickets(t, "2026-10-20")
	step(f.svc.OptInLockers)     // call 3, count 1
	step(f.svc.IncrementLockers) // call 4, count 2
	step(f.svc.DecrementLockers) // call 5, count 1

	gated.release(5)
	require.Eventually(t, func() bool {
		out, err := f.svc.GetLockers(ctx, f.sid)
		return err == nil && out.AssignmentStatus == booking.AssignmentAssigned
	}, time.Second, time.Millisecond)

	gated.release(0, 1, 2, 3, 4)
	f.svc.wait()

	out, err := f.svc.GetLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Count)
	require.NotNil(t, out.Assignment)
	assert.Equal(t, []int{600}, out.Assignment.LockerNumbers)

	_, err = f.svc.ContinueLockers(ctx, f.sid)
	require.NoError(t, err)

	agg, err := booking.RequireBooking(ctx, booking.NewBridge(f.store, f.sid))
	require.NoError(t, err)
	require.NotNil(t, agg.Lockers)
	require.NotNil(t, agg.Lockers.Assignment)
	assert.Equal(t, []int{600}, agg.Lockers.Assignment.LockerNumbers)
}

func TestBookingService_ResetSupersedesInFlightCheckout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	bookWithLockers(t, f)

	var (
		charges int
		current booking.Submission
	)
	// While the first charge runs the session is cleared and a new
	// submission reaches submitting before the first one returns.
	f.payment.hook = func() {
		charges++
		if charges > 1 {
			return
		}
		require.NoError(t, f.svc.ResetSession(ctx, f.sid))
		bookWithLockers(t, f)

		var err error
		_, current, err = f.svc.beginCheckout(ctx, booking.NewBridge(f.store, f.sid), validForm())
		require.NoError(t, err)
	}

	_, err := f.svc.SubmitCheckout(ctx, f.sid, validForm())
	assert.ErrorIs(t, err, booking.ErrSuperseded)

	co, err := f.svc.GetCheckout(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.CheckoutSubmitting, co.State.Status)
	assert.Equal(t, current.Generation, co.State.Generation)
	assert.Empty(t, f.prod.confirmed)

	_, err = f.svc.GetConfirmation(ctx, f.sid)
	var redirect *booking.Redirect
	assert.ErrorAs(t, err, &redirect)
}

func TestBookingService_CloseCancelsAssignments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.selectTickets(t, "2026-10-20")
	f.assigner.gate = make(chan struct{})

	_, err := f.svc.OptInLockers(ctx, f.sid)
	require.NoError(t, err)

	f.svc.Close()

	out, err := f.svc.GetLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Equal(t, booking.AssignmentPending, out.AssignmentStatus)

	_, err = f.svc.IncrementLockers(ctx, f.sid)
	require.NoError(t, err)
	assert.Len(t, f.assigner.Calls(), 1, "no assignment starts after Close")
}

func TestBookingService_Catalog(t *testing.T) {
	f := newFixture(t)
	cat := f.svc.Catalog(context.Background())

	assert.Len(t, cat.TicketTypes, 5)
	assert.Len(t, cat.TimeSlots, 6)
	assert.Len(t, cat.LockerZones, 4)
	require.Len(t, cat.LockerOptions, 5)
	assert.Equal(t, int64(4), cat.LockerOptions[0].PricePerLocker)
	assert.Equal(t, int64(40), cat.LockerOptions[4].PricePerLocker)
}
