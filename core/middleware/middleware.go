package middleware

import (
	"time"

	"venue-booking/core/constants"
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/core/logger"
	"venue-booking/core/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type Middleware struct {
	jwtSecret string
	base      controller.BaseController
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{
		jwtSecret: jwtSecret,
		base:      controller.NewBaseController(),
	}
}

// AuthMiddleware requires a bearer token and stores the customer id on the context.
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrMissingAuthorizationHeader, "Missing authorization header", nil))
			}

			token := utils.BearerToken(header)
			if token == "" {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrInvalidTokenFormat, "Invalid authorization header", nil))
			}

			data, err := utils.ValidateAndParseToken(m.jwtSecret, token)
			if err != nil {
				return m.base.ErrorResponse(c, err)
			}

			c.Set(constants.ContextCustomerID, data.CustomerID)
			c.Set(constants.ContextRole, data.Role)
			return next(c)
		}
	}
}

// AdminMiddleware must run after AuthMiddleware.
func (m *Middleware) AdminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(constants.ContextRole).(string)
			if role != constants.RoleAdmin {
				return m.base.ErrorResponse(c, errors.NewAppError(errors.ErrForbidden, "Admin role required", nil))
			}
			return next(c)
		}
	}
}

func (m *Middleware) RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			logger.Info("HTTP",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return nil
		}
	}
}

// CustomerID returns the authenticated customer id.
func CustomerID(c echo.Context) (uuid.UUID, bool) {
	id, ok := c.Get(constants.ContextCustomerID).(uuid.UUID)
	return id, ok
}
