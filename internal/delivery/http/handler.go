package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/vogiaan1904/ticketbottle-museum/internal/booking"
	"github.com/vogiaan1904/ticketbottle-museum/internal/service"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/logger"
	"github.com/vogiaan1904/ticketbottle-museum/pkg/response"
)

type HTTPHandler struct {
	bookingSvc service.BookingService
	sessionSvc service.SessionService
	l          logger.Logger
	validator  *validator.Validate
}

func NewHTTPHandler(bookingSvc service.BookingService, sessionSvc service.SessionService, l logger.Logger) *HTTPHandler {
	return &HTTPHandler{
		bookingSvc: bookingSvc,
		sessionSvc: sessionSvc,
		l:          l,
		validator:  validator.New(),
	}
}

// HealthCheck handles liveness probes.
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.OK(w, healthResponse{Status: "healthy", Service: "museum-booking"})
}

func (h *HTTPHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	out, err := h.sessionSvc.CreateSession(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.Created(w, out)
}

func (h *HTTPHandler) ResetSession(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingSvc.ResetSession(r.Context(), SessionID(r.Context())); err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, nil)
}

func (h *HTTPHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.bookingSvc.Catalog(r.Context()))
}

// Tickets

func (h *HTTPHandler) AvailableSlots(w http.ResponseWriter, r *http.Request) {
	response.OK(w, h.bookingSvc.AvailableSlots(r.Context(), r.URL.Query().Get("date")))
}

func (h *HTTPHandler) GetTickets(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.GetTickets(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) SelectDate(w http.ResponseWriter, r *http.Request) {
	var req selectDateRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.bookingSvc.SelectDate(r.Context(), SessionID(r.Context()), req.Date)
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) SelectSlot(w http.ResponseWriter, r *http.Request) {
	var req selectSlotRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.bookingSvc.SelectSlot(r.Context(), SessionID(r.Context()), req.TimeSlot)
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) IncrementTicket(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.IncrementTicket(r.Context(), SessionID(r.Context()), chi.URLParam(r, "ticketType"))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) DecrementTicket(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.DecrementTicket(r.Context(), SessionID(r.Context()), chi.URLParam(r, "ticketType"))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) ContinueTickets(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.ContinueTickets(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

// Lockers

func (h *HTTPHandler) GetLockers(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.GetLockers(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) OptInLockers(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.OptInLockers(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) OptOutLockers(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.OptOutLockers(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) IncrementLockers(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.IncrementLockers(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) DecrementLockers(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.DecrementLockers(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) SelectLockerDuration(w http.ResponseWriter, r *http.Request) {
	var req selectDurationRequest
	if !h.decode(w, r, &req) {
		return
	}
	out, err := h.bookingSvc.SelectLockerDuration(r.Context(), SessionID(r.Context()), req.Duration)
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) ContinueLockers(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.ContinueLockers(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

// Summary, checkout and confirmation

func (h *HTTPHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.GetSummary(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.GetCheckout(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) SubmitCheckout(w http.ResponseWriter, r *http.Request) {
	var form booking.CheckoutForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		h.l.Debugf(r.Context(), "http.SubmitCheckout: %v", err)
		response.Error(w, errInvalidRequest)
		return
	}
	out, err := h.bookingSvc.SubmitCheckout(r.Context(), SessionID(r.Context()), form)
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) GetConfirmation(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.GetConfirmation(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

func (h *HTTPHandler) MyBookings(w http.ResponseWriter, r *http.Request) {
	out, err := h.bookingSvc.MyBookings(r.Context(), SessionID(r.Context()))
	h.respond(w, r, out, err)
}

// Helper functions

// decode reads and validates a JSON body, writing the error response itself.
func (h *HTTPHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.l.Debugf(r.Context(), "http.decode: %v", err)
		response.Error(w, errInvalidRequest)
		return false
	}

	if err := h.validator.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Field())
			}
			response.Error(w, errInvalidRequest.WithDetails(fields))
			return false
		}
		response.Error(w, errInvalidRequest)
		return false
	}

	return true
}

func (h *HTTPHandler) respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	response.OK(w, data)
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var redirect *booking.Redirect
	if errors.As(err, &redirect) {
		response.ErrorWithData(w, errRedirect, redirectResponse{
			RedirectTo: redirect.To,
			Missing:    string(redirect.Missing),
		})
		return
	}

	mapped, ok := mapHTTPError(err)
	if !ok {
		h.l.Errorf(r.Context(), "http.respondError: %v", err)
	}
	response.Error(w, mapped)
}
