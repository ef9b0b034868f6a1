package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/netcinema/booking/api"
	"github.com/netcinema/booking/internal/domain"
)

type ReservationsTestSuite struct {
	suite.Suite
	fixture *testFixture
}

func (s *ReservationsTestSuite) SetupTest() {
	s.fixture = newTestFixture()
}

func TestReservationsSuite(t *testing.T) {
	suite.Run(t, new(ReservationsTestSuite))
}

func (s *ReservationsTestSuite) createHold() *api.Reservation {
	body := api.CreateHoldRequest{
		Seats:        []api.SeatSelection{{Row: "A", Number: 1}},
		ContactName:  "Ana Torres",
		ContactEmail: "ana@example.com",
	}

	w, r := executeRequest(s.T(), http.MethodPost, "/screenings/"+testScreeningID+"/holds", body)
	r = withSession(s.T(), s.fixture.app, r)
	r = withURLParams(r, map[string]string{"screeningID": testScreeningID})

	s.fixture.app.CreateHoldHandler(w, r)
	s.Require().Equal(http.StatusCreated, w.Code, "unexpected response: %s", w.Body.String())

	res := decodeReservation(s.T(), w)
	return &res
}

func (s *ReservationsTestSuite) confirm(reservationID string) *httptest.ResponseRecorder {
	body := api.ConfirmReservationRequest{PaymentMethod: "CARD"}

	w, r := executeRequest(s.T(), http.MethodPost, "/reservations/"+reservationID+"/confirmation", body)
	r = withSession(s.T(), s.fixture.app, r)
	r = withURLParams(r, map[string]string{"reservationID": reservationID})

	s.fixture.app.ConfirmReservationHandler(w, r)

	return w
}

func (s *ReservationsTestSuite) TestGetReservation() {
	held := s.createHold()

	w, r := executeRequest(s.T(), http.MethodGet, "/reservations/"+held.Id, nil)
	r = withURLParams(r, map[string]string{"reservationID": held.Id})

	s.fixture.app.GetReservationHandler(w, r)

	s.Require().Equal(http.StatusOK, w.Code)

	res := decodeReservation(s.T(), w)
	s.Equal(held.Id, res.Id)
	s.Equal(held.Code, res.Code)
	s.Equal(int64(600), res.RemainingSeconds)
}

func (s *ReservationsTestSuite) TestGetReservation_NotFound() {
	w, r := executeRequest(s.T(), http.MethodGet, "/reservations/missing", nil)
	r = withURLParams(r, map[string]string{"reservationID": "missing"})

	s.fixture.app.GetReservationHandler(w, r)

	s.Equal(http.StatusNotFound, w.Code)
	checkErrorMessage(s.T(), w, ErrNotFound)
}

func (s *ReservationsTestSuite) TestGetReservationByCode() {
	held := s.createHold()

	w, r := executeRequest(s.T(), http.MethodGet, "/reservations/code/"+held.Code, nil)
	r = withURLParams(r, map[string]string{"code": held.Code})

	s.fixture.app.GetReservationByCodeHandler(w, r)

	s.Require().Equal(http.StatusOK, w.Code)

	res := decodeReservation(s.T(), w)
	s.Equal(held.Id, res.Id)
}

func (s *ReservationsTestSuite) TestConfirmReservation() {
	held := s.createHold()

	w := s.confirm(held.Id)
	s.Require().Equal(http.StatusOK, w.Code, "unexpected response: %s", w.Body.String())

	res := decodeReservation(s.T(), w)
	s.Equal(string(domain.ReservationConfirmed), res.Status)
	s.Equal("CARD", res.PaymentMethod)
	s.Zero(res.RemainingSeconds)

	s.Len(s.fixture.recorder.EventsOfType(domain.EventReservationConfirmed), 1)

	// The confirmation email goes out in the background.
	s.fixture.app.wg.Wait()

	emails := s.fixture.mailer.GetSentEmails()
	s.Require().Len(emails, 1)
	s.Equal("ana@example.com", emails[0].Recipient)
	s.Equal("reservation_confirmed.tmpl", emails[0].TemplateFile)
}

func (s *ReservationsTestSuite) TestConfirmReservation_AfterDeadline() {
	held := s.createHold()

	s.fixture.clock.Advance(11 * time.Minute)

	w := s.confirm(held.Id)
	s.Equal(http.StatusGone, w.Code)

	stored, err := s.fixture.store.GetById(context.Background(), held.Id)
	s.Require().NoError(err)
	s.Equal(domain.ReservationExpired, stored.Status)

	s.Empty(s.fixture.mailer.GetSentEmails())
}

func (s *ReservationsTestSuite) TestConfirmReservation_Twice() {
	held := s.createHold()

	w := s.confirm(held.Id)
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.confirm(held.Id)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *ReservationsTestSuite) TestConfirmReservation_InvalidPaymentMethod() {
	held := s.createHold()

	body := api.ConfirmReservationRequest{PaymentMethod: "BARTER"}

	w, r := executeRequest(s.T(), http.MethodPost, "/reservations/"+held.Id+"/confirmation", body)
	r = withSession(s.T(), s.fixture.app, r)
	r = withURLParams(r, map[string]string{"reservationID": held.Id})

	s.fixture.app.ConfirmReservationHandler(w, r)

	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *ReservationsTestSuite) TestCancelReservation() {
	held := s.createHold()

	w, r := executeRequest(s.T(), http.MethodDelete, "/reservations/"+held.Id, nil)
	r = withURLParams(r, map[string]string{"reservationID": held.Id})

	s.fixture.app.CancelReservationHandler(w, r)

	s.Require().Equal(http.StatusOK, w.Code)

	res := decodeReservation(s.T(), w)
	s.Equal(string(domain.ReservationCancelled), res.Status)

	// Cancelling again is rejected.
	w, r = executeRequest(s.T(), http.MethodDelete, "/reservations/"+held.Id, nil)
	r = withURLParams(r, map[string]string{"reservationID": held.Id})

	s.fixture.app.CancelReservationHandler(w, r)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *ReservationsTestSuite) TestListReservations() {
	s.createHold()

	// A reservation from someone else's session must not leak into the list.
	other := domain.NewReservation(testScreeningID, "other-session", domain.Contact{Name: "B", Email: "b@example.com"},
		[]domain.Seat{{Row: "B", Number: 1}}, testScreening().BasePrice, testStart, 10*time.Minute)
	s.Require().NoError(s.fixture.store.Create(context.Background(), other))

	w, r := executeRequest(s.T(), http.MethodGet, "/reservations", nil)
	r = withSession(s.T(), s.fixture.app, r)

	s.fixture.app.ListReservationsHandler(w, r)

	s.Require().Equal(http.StatusOK, w.Code)

	var resp api.ReservationListResponse
	s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
	s.Len(resp.Reservations, 1)
}
