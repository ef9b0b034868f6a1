package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/netcinema/booking/api"
	"github.com/netcinema/booking/internal/booking"
	"github.com/netcinema/booking/internal/domain"
	"github.com/netcinema/booking/internal/mailer"
	"github.com/netcinema/booking/internal/mocks"
	"github.com/netcinema/booking/internal/validator"
)

const testScreeningID = "scr-1"

var testStart = time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)

type testFixture struct {
	app      *application
	store    *mocks.InMemoryReservationStore
	recorder *mocks.EventRecorder
	clock    *mocks.Clock
	mailer   *mailer.MockMailer
}

func newTestFixture() *testFixture {
	store := mocks.NewInMemoryReservationStore()
	recorder := mocks.NewEventRecorder()
	clock := mocks.NewClock(testStart)
	mockMailer := mailer.NewMockMailer()

	screenings := &mocks.MockScreeningRepo{
		GetByIdFunc: func(ctx context.Context, id string) (*domain.Screening, error) {
			if id != testScreeningID {
				return nil, domain.ErrRecordNotFound
			}
			return testScreening(), nil
		},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := booking.NewEngine(store, screenings, recorder, clock, logger, 10*time.Minute)

	app := &application{
		logger:         logger,
		validator:      validator.NewValidator(),
		mailer:         mockMailer,
		sessionManager: scs.New(),
		engine:         engine,
		clock:          clock,
	}

	return &testFixture{
		app:      app,
		store:    store,
		recorder: recorder,
		clock:    clock,
		mailer:   mockMailer,
	}
}

func testScreening() *domain.Screening {
	layout := make([]domain.Seat, 0, 6)
	for _, row := range []string{"A", "B"} {
		for number := 1; number <= 3; number++ {
			layout = append(layout, domain.Seat{Row: row, Number: number})
		}
	}

	return &domain.Screening{
		ID:         testScreeningID,
		MovieTitle: "The Last Reel",
		RoomID:     "room-1",
		StartTime:  testStart.Add(2 * time.Hour),
		Duration:   2 * time.Hour,
		BasePrice:  decimal.NewFromFloat(8.50),
		Layout:     layout,
	}
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

// withURLParams injects chi route parameters for handlers invoked outside the
// router.
func withURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}

	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// withSession loads an empty session so handlers that read the requester
// token can run without the full middleware chain.
func withSession(t *testing.T, app *application, r *http.Request) *http.Request {
	t.Helper()

	ctx, err := app.sessionManager.Load(r.Context(), "")
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}

	return r.WithContext(ctx)
}

func decodeReservation(t *testing.T, w *httptest.ResponseRecorder) api.Reservation {
	t.Helper()

	var resp api.ReservationResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode reservation response: %v", err)
	}

	return resp.Reservation
}

func checkErrorMessage(t *testing.T, w *httptest.ResponseRecorder, want string) {
	t.Helper()

	if want == "" {
		return
	}

	var errResp api.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}

	if errResp.Message != want {
		t.Errorf("Expected error message %q, got %q", want, errResp.Message)
	}
}
