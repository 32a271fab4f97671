package controller

import (
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/core/middleware"
	"venue-booking/modules/waitlist/dto"
	"venue-booking/modules/waitlist/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type WaitlistController struct {
	service *service.WaitlistService
	controller.BaseController
}

func NewWaitlistController(service *service.WaitlistService) *WaitlistController {
	return &WaitlistController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// Enroll joins the waitlist for a date
// @Summary Join waitlist
// @Tags Waitlist
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.EnrollRequest true "Preferences"
// @Success 201 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Failure 409 {object} controller.ErrorResponse
// @Failure 422 {object} controller.ErrorResponse
// @Router /private/waitlist [post]
func (c *WaitlistController) Enroll(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.EnrollRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	entry, err := c.service.Enroll(ctx.Request().Context(), customerID, req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	position, err := c.service.Position(ctx.Request().Context(), entry)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.CreatedResponse(ctx, dto.EntryResponse{WaitlistEntry: entry, Position: position}, "Joined waitlist")
}

// GetEntry
// @Summary Get waitlist entry with queue position
// @Tags Waitlist
// @Security BearerAuth
// @Produce json
// @Param id path string true "Entry ID"
// @Success 200 {object} controller.SuccessResponse
// @Failure 404 {object} controller.ErrorResponse
// @Router /private/waitlist/{id} [get]
func (c *WaitlistController) GetEntry(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid waitlist entry id")
	}

	entry, err := c.service.GetForCustomer(ctx.Request().Context(), id, customerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	position, err := c.service.Position(ctx.Request().Context(), entry)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, dto.EntryResponse{WaitlistEntry: entry, Position: position}, "Waitlist entry retrieved successfully")
}

// ListMine
// @Summary List my waitlist entries
// @Tags Waitlist
// @Security BearerAuth
// @Produce json
// @Router /private/waitlist [get]
func (c *WaitlistController) ListMine(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	entries, err := c.service.ListMine(ctx.Request().Context(), customerID)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, entries, "Waitlist entries retrieved successfully")
}
