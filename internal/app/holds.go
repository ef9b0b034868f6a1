package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netcinema/booking/api"
	"github.com/netcinema/booking/internal/domain"
)

func (app *application) CreateHoldHandler(w http.ResponseWriter, r *http.Request) {
	screeningID := chi.URLParam(r, "screeningID")

	var req api.CreateHoldRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	seats := make([]domain.Seat, 0, len(req.Seats))
	for _, s := range req.Seats {
		seats = append(seats, domain.Seat{Row: s.Row, Number: s.Number})
	}

	contact := domain.Contact{Name: req.ContactName, Email: req.ContactEmail}

	reservation, err := app.engine.CreateHold(r.Context(), screeningID, app.requesterToken(r), contact, seats)
	if err != nil {
		var seatConflict domain.SeatConflictError

		switch {
		case errors.As(err, &seatConflict):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrEmptySeatSelection):
			app.badRequestResponse(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := api.ReservationResponse{
		Reservation: app.toApiReservation(reservation),
	}

	err = app.writeJSON(w, http.StatusCreated, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
