// Package api defines the request and response types of the HTTP surface.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId,omitempty"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SeatSelection struct {
	Row    string `json:"row" validate:"required,seat_row"`
	Number int    `json:"number" validate:"required,gte=1"`
}

type CreateHoldRequest struct {
	Seats        []SeatSelection `json:"seats" validate:"required,min=1,max=10,dive"`
	ContactName  string          `json:"contactName" validate:"required,max=100"`
	ContactEmail string          `json:"contactEmail" validate:"required,email"`
}

type ConfirmReservationRequest struct {
	PaymentMethod string `json:"paymentMethod" validate:"required,payment_method"`
}

type ReservationSeat struct {
	Row    string `json:"row"`
	Number int    `json:"number"`
	Label  string `json:"label"`
}

type Reservation struct {
	Id               string            `json:"id"`
	Code             string            `json:"code"`
	ScreeningId      string            `json:"screeningId"`
	Status           string            `json:"status"`
	Seats            []ReservationSeat `json:"seats"`
	ContactName      string            `json:"contactName"`
	ContactEmail     string            `json:"contactEmail"`
	Total            decimal.Decimal   `json:"total"`
	PaymentMethod    string            `json:"paymentMethod,omitempty"`
	CreatedAt        time.Time         `json:"createdAt"`
	ExpiresAt        time.Time         `json:"expiresAt"`
	RemainingSeconds int64             `json:"remainingSeconds"`
}

type ReservationResponse struct {
	Reservation Reservation `json:"reservation"`
}

type ReservationListResponse struct {
	Reservations []Reservation `json:"reservations"`
}

type Seat struct {
	Row       string `json:"row"`
	Number    int    `json:"number"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

type SeatRow struct {
	Row   string `json:"row"`
	Seats []Seat `json:"seats"`
}

type SeatMapResponse struct {
	ScreeningId string          `json:"screeningId"`
	MovieTitle  string          `json:"movieTitle"`
	RoomId      string          `json:"roomId"`
	StartTime   time.Time       `json:"startTime"`
	BasePrice   decimal.Decimal `json:"basePrice"`
	SeatRows    []SeatRow       `json:"seatRows"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
