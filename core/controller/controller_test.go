package controller

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"venue-booking/core/errors"

	"github.com/labstack/echo/v4"
)

func TestStatusFor(t *testing.T) {
	cases := map[errors.ErrorCode]int{
		errors.ErrInvalidInput:       http.StatusBadRequest,
		errors.ErrLimitExceeded:      http.StatusUnprocessableEntity,
		errors.ErrStateConflict:      http.StatusConflict,
		errors.ErrReservationExpired: http.StatusGone,
		errors.ErrNotFound:           http.StatusNotFound,
		errors.ErrAlreadyExists:      http.StatusConflict,
		errors.ErrNoAvailability:     http.StatusNotFound,
		errors.ErrUnauthorized:       http.StatusUnauthorized,
		errors.ErrForbidden:          http.StatusForbidden,
		errors.ErrInternalServer:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		if got := StatusFor(code); got != want {
			t.Errorf("StatusFor(%s) = %d, want %d", code, got, want)
		}
	}
}

func TestErrorResponse(t *testing.T) {
	base := NewBaseController()
	cases := []struct {
		name   string
		err    error
		status int
		code   errors.ErrorCode
	}{
		{"wrapped conflict", fmt.Errorf("convert: %w", errors.NewStateConflict("taken")), http.StatusConflict, errors.ErrStateConflict},
		{"expired", errors.NewAppError(errors.ErrReservationExpired, "closed", nil), http.StatusGone, errors.ErrReservationExpired},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, errors.ErrInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			if err := base.ErrorResponse(c, tc.err); err != nil {
				t.Fatalf("ErrorResponse() error = %v", err)
			}
			if rec.Code != tc.status {
				t.Errorf("status = %d, want %d", rec.Code, tc.status)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Code != tc.code {
				t.Errorf("code = %s, want %s", body.Code, tc.code)
			}
		})
	}
}

func TestErrorResponseCarriesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	err := errors.NewAppError(errors.ErrLimitExceeded, "Maximum 2 bookings per day exceeded", nil).
		WithDetails(map[string]int{"risk_score": 55})
	_ = NewBaseController().ErrorResponse(c, err)

	var body struct {
		Details map[string]int `json:"details"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Details["risk_score"] != 55 {
		t.Errorf("details = %v, want risk_score 55", body.Details)
	}
}
