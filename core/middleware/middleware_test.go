package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venue-booking/core/constants"
	"venue-booking/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const secret = "test-secret"

func newTestServer(mw *Middleware) *echo.Echo {
	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		id, ok := CustomerID(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.String(http.StatusOK, id.String())
	}, mw.AuthMiddleware())
	e.GET("/admin", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	}, mw.AuthMiddleware(), mw.AdminMiddleware())
	return e
}

func token(t *testing.T, customerID uuid.UUID, role string, ttl time.Duration) string {
	t.Helper()
	tok, err := utils.GenerateToken(secret, "venue-booking", customerID, role, ttl)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	e := newTestServer(NewMiddleware(secret))
	customer := uuid.New()

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad signature", "Bearer " + func() string {
			tok, _ := utils.GenerateToken("other", "x", customer, "", time.Hour)
			return tok
		}(), http.StatusUnauthorized},
		{"expired", "Bearer " + token(t, customer, "", -time.Minute), http.StatusUnauthorized},
		{"valid", "Bearer " + token(t, customer, "", time.Hour), http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tc.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == http.StatusOK && rec.Body.String() != customer.String() {
				t.Errorf("customer = %s, want %s", rec.Body.String(), customer)
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	e := newTestServer(NewMiddleware(secret))

	for role, want := range map[string]int{
		"":                  http.StatusForbidden,
		constants.RoleAdmin: http.StatusNoContent,
	} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token(t, uuid.New(), role, time.Hour))
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != want {
			t.Errorf("role %q: status = %d, want %d", role, rec.Code, want)
		}
	}
}
