package app

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/netcinema/booking/api"
)

func TestGetSeatMapByScreening(t *testing.T) {
	fixture := newTestFixture()

	// Hold A2 so the snapshot shows a mix of free and taken seats.
	body := api.CreateHoldRequest{
		Seats:        []api.SeatSelection{{Row: "A", Number: 2}},
		ContactName:  "Ana Torres",
		ContactEmail: "ana@example.com",
	}

	w, r := executeRequest(t, http.MethodPost, "/screenings/"+testScreeningID+"/holds", body)
	r = withSession(t, fixture.app, r)
	r = withURLParams(r, map[string]string{"screeningID": testScreeningID})
	fixture.app.CreateHoldHandler(w, r)
	require.Equal(t, http.StatusCreated, w.Code)

	w, r = executeRequest(t, http.MethodGet, "/screenings/"+testScreeningID+"/seats", nil)
	r = withURLParams(r, map[string]string{"screeningID": testScreeningID})
	fixture.app.GetSeatMapByScreening(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.SeatMapResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))

	want := []api.SeatRow{
		{
			Row: "A",
			Seats: []api.Seat{
				{Row: "A", Number: 1, Label: "A1", Available: true},
				{Row: "A", Number: 2, Label: "A2", Available: false},
				{Row: "A", Number: 3, Label: "A3", Available: true},
			},
		},
		{
			Row: "B",
			Seats: []api.Seat{
				{Row: "B", Number: 1, Label: "B1", Available: true},
				{Row: "B", Number: 2, Label: "B2", Available: true},
				{Row: "B", Number: 3, Label: "B3", Available: true},
			},
		},
	}

	require.Equal(t, testScreeningID, resp.ScreeningId)
	require.Equal(t, "The Last Reel", resp.MovieTitle)

	diff := cmp.Diff(want, resp.SeatRows)
	require.Empty(t, diff, "Seat rows mismatch (-want +got):\n%s", diff)
}

func TestGetSeatMapByScreening_UnknownScreening(t *testing.T) {
	fixture := newTestFixture()

	w, r := executeRequest(t, http.MethodGet, "/screenings/scr-missing/seats", nil)
	r = withURLParams(r, map[string]string{"screeningID": "scr-missing"})
	fixture.app.GetSeatMapByScreening(w, r)

	require.Equal(t, http.StatusNotFound, w.Code)
	checkErrorMessage(t, w, ErrNotFound)
}

func TestGetHealth(t *testing.T) {
	fixture := newTestFixture()
	fixture.app.config.env = "test"

	w, r := executeRequest(t, http.MethodGet, "/health", nil)
	fixture.app.GetHealth(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.HealthcheckResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "available", resp.Status)
	require.Equal(t, "test", resp.SystemInfo.Environment)
}
