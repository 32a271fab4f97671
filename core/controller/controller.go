package controller

import (
	"net/http"
	"time"

	"venue-booking/core/errors"
	"venue-booking/core/logger"

	"github.com/labstack/echo/v4"
)

type (
	SuccessResponse struct {
		Status    int       `json:"status"`
		Message   string    `json:"message"`
		Data      any       `json:"data,omitempty"`
		Timestamp time.Time `json:"timestamp"`
	}

	// ErrorResponse is the body of every failed request. Details carries
	// structured context such as risk violations.
	ErrorResponse struct {
		Status    string           `json:"status"`
		Code      errors.ErrorCode `json:"code"`
		Message   string           `json:"message"`
		Details   any              `json:"details,omitempty"`
		Timestamp time.Time        `json:"timestamp"`
	}
)

type BaseController interface {
	BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError
	SuccessResponse(c echo.Context, data any, message string) error
	CreatedResponse(c echo.Context, data any, message string) error
	ErrorResponse(c echo.Context, err error) error
}

type responseHandler struct{}

func NewBaseController() BaseController {
	return &responseHandler{}
}

func newSuccessResponse(status int, data any, message string) *SuccessResponse {
	return &SuccessResponse{
		Status:    status,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func newErrorBody(code errors.ErrorCode, message string, details any) *ErrorResponse {
	return &ErrorResponse{
		Status:    "error",
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now(),
	}
}

// NewHTTPError wraps an error body for handlers that fail before reaching a service.
func NewHTTPError(status int, code errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	var detail any
	if len(details) > 0 {
		detail = details[0]
	}
	return echo.NewHTTPError(status, newErrorBody(code, message, detail))
}

func (h *responseHandler) BadRequest(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewHTTPError(http.StatusBadRequest, appErrCode, message, details...)
}

func (h *responseHandler) Unauthorized(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewHTTPError(http.StatusUnauthorized, appErrCode, message, details...)
}

func (h *responseHandler) InternalServerError(appErrCode errors.ErrorCode, message string, details ...any) *echo.HTTPError {
	return NewHTTPError(http.StatusInternalServerError, appErrCode, message, details...)
}

func (h *responseHandler) SuccessResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusOK, newSuccessResponse(http.StatusOK, data, message))
}

func (h *responseHandler) CreatedResponse(c echo.Context, data any, message string) error {
	return c.JSON(http.StatusCreated, newSuccessResponse(http.StatusCreated, data, message))
}

// StatusFor maps an application error code to its HTTP status.
func StatusFor(code errors.ErrorCode) int {
	switch code {
	case errors.ErrInvalidInput, errors.ErrInvalidRequestData:
		return http.StatusBadRequest
	case errors.ErrUnauthorized, errors.ErrTokenExpired, errors.ErrInvalidTokenFormat, errors.ErrMissingAuthorizationHeader:
		return http.StatusUnauthorized
	case errors.ErrForbidden:
		return http.StatusForbidden
	case errors.ErrNotFound, errors.ErrNoAvailability:
		return http.StatusNotFound
	case errors.ErrAlreadyExists, errors.ErrStateConflict:
		return http.StatusConflict
	case errors.ErrReservationExpired:
		return http.StatusGone
	case errors.ErrLimitExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *responseHandler) ErrorResponse(c echo.Context, err error) error {
	httpStatus := http.StatusInternalServerError
	appCode := errors.ErrInternalServer
	msg := "internal server error"
	var details any

	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return c.JSON(he.Code, he.Message)
		}
		if ae, ok := errors.AsAppError(err); ok {
			appCode = ae.Code
			if ae.Message != "" {
				msg = ae.Message
			}
			details = ae.Details
			httpStatus = StatusFor(appCode)
		}
	}

	if httpStatus >= http.StatusInternalServerError {
		logger.Error("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"message", msg,
			"error", err,
		)
	} else {
		logger.Warn("BaseController:ErrorResponse",
			"status", httpStatus,
			"code", appCode,
			"message", msg,
		)
	}

	return c.JSON(httpStatus, newErrorBody(appCode, msg, details))
}
