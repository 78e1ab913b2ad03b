package booking

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/vogiaan1904/ticketbottle-museum/internal/models"
)

const PaymentFailedNotice = "Payment couldn't be processed. Try again or use another method."

type CheckoutStatus string

const (
	CheckoutIdle       CheckoutStatus = "idle"
	CheckoutValidating CheckoutStatus = "validating"
	CheckoutSubmitting CheckoutStatus = "submitting"
	CheckoutSucceeded  CheckoutStatus = "succeeded"
	CheckoutFailed     CheckoutStatus = "failed"
)

// A new submission may start from any state but validating. Starting one
// while another is submitting supersedes it.
var checkoutTransitions = map[CheckoutStatus][]CheckoutStatus{
	CheckoutIdle:       {CheckoutValidating},
	CheckoutValidating: {CheckoutIdle, CheckoutSubmitting},
	CheckoutSubmitting: {CheckoutSucceeded, CheckoutFailed, CheckoutValidating},
	CheckoutFailed:     {CheckoutIdle},
	CheckoutSucceeded:  {CheckoutValidating},
}

type CheckoutState struct {
	Status     CheckoutStatus `json:"status"`
	Generation uint64         `json:"generation"`
	Notice     string         `json:"notice,omitempty"`
	BookingID  string         `json:"booking_id,omitempty"`
}

// CheckoutForm is the raw visitor input. Card details are only required
// when paying by card.
type CheckoutForm struct {
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card upi wallet"`
	Email         string `json:"email" validate:"required"`
	FirstName     string `json:"first_name" validate:"required"`
	LastName      string `json:"last_name" validate:"required"`
	Phone         string `json:"phone"`
	CardNumber    string `json:"card_number" validate:"required_if=PaymentMethod card"`
	CardExpiry    string `json:"card_expiry" validate:"required_if=PaymentMethod card"`
	CVV           string `json:"cvv" validate:"required_if=PaymentMethod card"`
	BillingZip    string `json:"billing_zip"`
}

func (f CheckoutForm) normalized() CheckoutForm {
	f.PaymentMethod = strings.ToLower(strings.TrimSpace(f.PaymentMethod))
	if f.PaymentMethod == "" {
		f.PaymentMethod = string(models.PaymentMethodCard)
	}
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Phone = strings.TrimSpace(f.Phone)
	f.CardNumber = strings.TrimSpace(f.CardNumber)
	f.CardExpiry = strings.TrimSpace(f.CardExpiry)
	f.CVV = strings.TrimSpace(f.CVV)
	f.BillingZip = strings.TrimSpace(f.BillingZip)
	return f
}

// Customer keeps what may be stored. Expiry and CVV are dropped.
func (f CheckoutForm) Customer() models.CustomerInfo {
	info := models.CustomerInfo{
		Email:      f.Email,
		FirstName:  f.FirstName,
		LastName:   f.LastName,
		Phone:      f.Phone,
		BillingZip: f.BillingZip,
	}
	if models.PaymentMethod(f.PaymentMethod) == models.PaymentMethodCard {
		info.CardLast4 = lastDigits(f.CardNumber, 4)
	}
	return info
}

func lastDigits(s string, n int) string {
	digits := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsDigit(r) {
			digits = append(digits, r)
		}
	}
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return string(digits)
}

var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Submission is a validated checkout attempt.
type Submission struct {
	Generation uint64
	Method     models.PaymentMethod
	Customer   models.CustomerInfo
}

type Checkout struct {
	state CheckoutState
	ids   *IDGenerator
	gens  *Generations
	now   func() time.Time
}

func NewCheckout(state *CheckoutState, ids *IDGenerator, now func() time.Time) *Checkout {
	c := &Checkout{ids: ids, now: now}
	if state != nil {
		c.state = *state
	}
	if c.state.Status == "" {
		c.state.Status = CheckoutIdle
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// WithGenerations draws submission tokens from gens.
func (c *Checkout) WithGenerations(gens *Generations) *Checkout {
	c.gens = gens
	return c
}

func (c *Checkout) State() CheckoutState {
	return c.state
}

func (c *Checkout) transition(to CheckoutStatus) error {
	if !slices.Contains(checkoutTransitions[c.state.Status], to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, c.state.Status, to)
	}
	c.state.Status = to
	return nil
}

// Submit validates form and, when it is complete, moves to submitting.
// Every call supersedes any submission still in flight. An incomplete form
// returns a *ValidationError and leaves the machine idle.
func (c *Checkout) Submit(form CheckoutForm) (Submission, error) {
	if err := c.transition(CheckoutValidating); err != nil {
		return Submission{}, err
	}
	if c.gens != nil {
		c.state.Generation = c.gens.Next()
	} else {
		c.state.Generation++
	}
	c.state.Notice = ""
	c.state.BookingID = ""

	form = form.normalized()
	if !models.PaymentMethod(form.PaymentMethod).IsValid() {
		c.state.Status = CheckoutIdle
		return Submission{}, fmt.Errorf("%w: %s", ErrUnknownPaymentMethod, form.PaymentMethod)
	}

	if err := formValidator.Struct(form); err != nil {
		c.state.Status = CheckoutIdle
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			return Submission{}, &ValidationError{Fields: fields}
		}
		return Submission{}, err
	}

	if err := c.transition(CheckoutSubmitting); err != nil {
		return Submission{}, err
	}

	return Submission{
		Generation: c.state.Generation,
		Method:     models.PaymentMethod(form.PaymentMethod),
		Customer:   form.Customer(),
	}, nil
}

// Resolve applies the payment outcome of sub. It returns ErrSuperseded when
// a newer submission has started since. A payment failure returns the
// machine to idle with a retry notice and is passed back to the caller.
func (c *Checkout) Resolve(sub Submission, booking models.BookingAggregate, chargeErr error) (models.ConfirmationRecord, error) {
	if sub.Generation != c.state.Generation || c.state.Status != CheckoutSubmitting {
		return models.ConfirmationRecord{}, ErrSuperseded
	}

	if chargeErr != nil {
		if err := c.transition(CheckoutFailed); err != nil {
			return models.ConfirmationRecord{}, err
		}
		if err := c.transition(CheckoutIdle); err != nil {
			return models.ConfirmationRecord{}, err
		}
		c.state.Notice = PaymentFailedNotice
		return models.ConfirmationRecord{}, chargeErr
	}

	if err := c.transition(CheckoutSucceeded); err != nil {
		return models.ConfirmationRecord{}, err
	}

	record := models.ConfirmationRecord{
		BookingID:     c.ids.Next(),
		Booking:       booking,
		Customer:      sub.Customer,
		PaymentMethod: sub.Method,
		ConfirmedAt:   c.now().UTC(),
	}
	c.state.BookingID = record.BookingID

	return record, nil
}
