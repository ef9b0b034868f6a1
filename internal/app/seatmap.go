package app

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netcinema/booking/api"
	"github.com/netcinema/booking/internal/domain"
)

func (app *application) GetSeatMapByScreening(w http.ResponseWriter, r *http.Request) {
	screeningID := chi.URLParam(r, "screeningID")

	screening, availability, err := app.engine.Availability(r.Context(), screeningID)
	if err != nil {
		if errors.Is(err, domain.ErrRecordNotFound) {
			app.notFoundResponseWithErr(w, r, err)
		} else {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := api.SeatMapResponse{
		ScreeningId: screening.ID,
		MovieTitle:  screening.MovieTitle,
		RoomId:      screening.RoomID,
		StartTime:   screening.StartTime,
		BasePrice:   screening.BasePrice,
		SeatRows:    toSeatRows(availability),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// toSeatRows groups the flat availability snapshot by row, preserving the
// row-major order the engine returns.
func toSeatRows(availability []domain.SeatAvailability) []api.SeatRow {
	rows := make([]api.SeatRow, 0)

	for _, entry := range availability {
		seat := api.Seat{
			Row:       entry.Seat.Row,
			Number:    entry.Seat.Number,
			Label:     entry.Seat.Label(),
			Available: entry.Available,
		}

		if n := len(rows); n > 0 && rows[n-1].Row == entry.Seat.Row {
			rows[n-1].Seats = append(rows[n-1].Seats, seat)
			continue
		}

		rows = append(rows, api.SeatRow{Row: entry.Seat.Row, Seats: []api.Seat{seat}})
	}

	return rows
}
