package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netcinema/booking/api"
	"github.com/netcinema/booking/internal/domain"
)

func (app *application) GetReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")

	reservation, err := app.engine.GetReservation(r.Context(), reservationID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, err)
		} else {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeReservation(w, r, http.StatusOK, reservation)
}

func (app *application) GetReservationByCodeHandler(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	reservation, err := app.engine.GetReservationByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, err)
		} else {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeReservation(w, r, http.StatusOK, reservation)
}

func (app *application) ListReservationsHandler(w http.ResponseWriter, r *http.Request) {
	reservations, err := app.engine.ByRequester(r.Context(), app.requesterToken(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.ReservationListResponse{
		Reservations: make([]api.Reservation, 0, len(reservations)),
	}

	for _, reservation := range reservations {
		resp.Reservations = append(resp.Reservations, app.toApiReservation(reservation))
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ConfirmReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")

	var req api.ConfirmReservationRequest

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

	reservation, err := app.engine.Confirm(r.Context(), reservationID, req.PaymentMethod)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrAlreadyProcessed):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrInvalidTransition):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrHoldExpired):
			app.goneResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.sendConfirmationEmail(r, reservation)

	app.writeReservation(w, r, http.StatusOK, reservation)
}

func (app *application) CancelReservationHandler(w http.ResponseWriter, r *http.Request) {
	reservationID := chi.URLParam(r, "reservationID")

	reservation, err := app.engine.Cancel(r.Context(), reservationID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrAlreadyProcessed):
			app.editConflictResponseWithErr(w, r, err)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.writeReservation(w, r, http.StatusOK, reservation)
}

// sendConfirmationEmail delivers the ticket email off the request path.
// Mail failures are logged, never surfaced: the reservation is already
// confirmed.
func (app *application) sendConfirmationEmail(r *http.Request, reservation *domain.Reservation) {
	logger := contextGetLogger(r.Context())

	movieTitle := ""
	screening, err := app.engine.GetScreening(r.Context(), reservation.ScreeningID)
	if err != nil {
		logger.Error("failed to load screening for confirmation email", "error", err)
	} else {
		movieTitle = screening.MovieTitle
	}

	seats := make([]string, 0, len(reservation.Seats))
	for _, seat := range reservation.Seats {
		seats = append(seats, seat.Label())
	}

	data := map[string]any{
		"Code":       reservation.Code,
		"Name":       reservation.Contact.Name,
		"MovieTitle": movieTitle,
		"Seats":      seats,
		"Total":      reservation.Total,
	}

	recipient := reservation.Contact.Email

	app.background(logger, func() error {
		return app.mailer.Send(recipient, "reservation_confirmed.tmpl", data)
	})
}

func (app *application) writeReservation(w http.ResponseWriter, r *http.Request, status int, reservation *domain.Reservation) {
	resp := api.ReservationResponse{
		Reservation: app.toApiReservation(reservation),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) toApiReservation(reservation *domain.Reservation) api.Reservation {
	seats := make([]api.ReservationSeat, 0, len(reservation.Seats))
	for _, seat := range reservation.Seats {
		seats = append(seats, api.ReservationSeat{
			Row:    seat.Row,
			Number: seat.Number,
			Label:  seat.Label(),
		})
	}

	var remaining int64
	if reservation.Status == domain.ReservationPending {
		remaining = reservation.RemainingSeconds(app.clock.Now())
	}

	return api.Reservation{
		Id:               reservation.ID,
		Code:             reservation.Code,
		ScreeningId:      reservation.ScreeningID,
		Status:           string(reservation.Status),
		Seats:            seats,
		ContactName:      reservation.Contact.Name,
		ContactEmail:     reservation.Contact.Email,
		Total:            reservation.Total,
		PaymentMethod:    reservation.PaymentMethod,
		CreatedAt:        reservation.CreatedAt,
		ExpiresAt:        reservation.ExpiresAt,
		RemainingSeconds: remaining,
	}
}
