package controller

import (
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/core/middleware"
	"venue-booking/modules/conversion/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ConversionController struct {
	coordinator *service.Coordinator
	controller.BaseController
}

func NewConversionController(coordinator *service.Coordinator) *ConversionController {
	return &ConversionController{
		coordinator:    coordinator,
		BaseController: controller.NewBaseController(),
	}
}

func (c *ConversionController) params(ctx echo.Context) (uuid.UUID, uuid.UUID, error) {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return uuid.Nil, uuid.Nil, c.BadRequest(errors.ErrInvalidInput, "Invalid waitlist entry id")
	}
	return id, customerID, nil
}

// Convert accepts an offered table
// @Summary Confirm a waitlist offer
// @Tags Waitlist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 409 {object} controller.ErrorResponse
// @Failure 410 {object} controller.ErrorResponse "Reservation window closed"
// @Router /private/waitlist/{id}/convert [post]
func (c *ConversionController) Convert(ctx echo.Context) error {
	id, customerID, err := c.params(ctx)
	if err != nil {
		return err
	}

	booking, err := c.coordinator.Convert(ctx.Request().Context(), id, customerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, booking, "Booking confirmed")
}

// Cancel leaves the waitlist
// @Summary Cancel a waitlist entry
// @Tags Waitlist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Entry ID"
// @Router /private/waitlist/{id}/cancel [post]
func (c *ConversionController) Cancel(ctx echo.Context) error {
	id, customerID, err := c.params(ctx)
	if err != nil {
		return err
	}

	entry, err := c.coordinator.Cancel(ctx.Request().Context(), id, customerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, entry, "Waitlist entry cancelled")
}
