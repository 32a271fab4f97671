package controller

import (
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/core/middleware"
	"venue-booking/modules/booking/dto"
	"venue-booking/modules/booking/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type BookingController struct {
	service *service.BookingService
	controller.BaseController
}

func NewBookingController(service *service.BookingService) *BookingController {
	return &BookingController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Create books a table directly
// @Summary Book a table
// @Tags Booking
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 404 {object} controller.ErrorResponse "No availability, join the waitlist"
// @Failure 422 {object} controller.ErrorResponse
// @Router /private/bookings [post]
func (c *BookingController) Create(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.CreateBookingRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	booking, err := c.service.Book(ctx.Request().Context(), customerID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.CreatedResponse(ctx, booking, "Booking confirmed")
}

// Get
// @Summary Get one of my bookings
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Router /private/bookings/{id} [get]
func (c *BookingController) Get(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking id")
	}

	booking, err := c.service.Get(ctx.Request().Context(), id, customerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, booking, "Booking retrieved successfully")
}

// @Router /private/bookings [get]
func (c *BookingController) ListMine(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	bookings, err := c.service.ListMine(ctx.Request().Context(), customerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, bookings, "Bookings retrieved successfully")
}

// Cancel frees the tables and offers them to the waitlist
// @Summary Cancel a booking
// @Tags Booking
// @Security BearerAuth
// @Produce json
// @Param id path string true "Booking ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 404 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Router /private/bookings/{id}/cancel [post]
func (c *BookingController) Cancel(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid booking id")
	}

	booking, err := c.service.Cancel(ctx.Request().Context(), id, customerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, booking, "Booking cancelled")
}
