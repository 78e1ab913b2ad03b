package http

import "github.com/vogiaan1904/ticketbottle-museum/internal/models"

type selectDateRequest struct {
	Date string `json:"date" validate:"required"`
}

type selectSlotRequest struct {
	TimeSlot string `json:"time_slot" validate:"required"`
}

type selectDurationRequest struct {
	Duration string `json:"duration" validate:"required"`
}

type redirectResponse struct {
	RedirectTo models.Route `json:"redirect_to"`
	Missing    string       `json:"missing"`
}

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
