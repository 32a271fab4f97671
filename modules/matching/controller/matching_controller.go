package controller

import (
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/modules/matching/dto"
	"venue-booking/modules/matching/service"

	"github.com/labstack/echo/v4"
)

type MatchingController struct {
	engine *service.Engine
	controller.BaseController
}

func NewMatchingController(engine *service.Engine) *MatchingController {
	return &MatchingController{
		engine:         engine,
		BaseController: controller.NewBaseController(),
	}
}

// SlotFreed runs a matching pass for tables released outside the booking flow
// @Summary Offer a freed slot to the waitlist
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.SlotFreedRequest true "Slot"
// @Success 200 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Router /admin/slots/freed [post]
func (c *MatchingController) SlotFreed(ctx echo.Context) error {
	req := new(dto.SlotFreedRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	notified, err := c.engine.OnSlotFreed(ctx.Request().Context(), service.FreedSlot{
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
		TableIDs: req.TableIDs,
	})
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	if notified == nil {
		return c.SuccessResponse(ctx, map[string]any{"matched": false}, "No waitlist entry matched")
	}
	return c.SuccessResponse(ctx, map[string]any{"matched": true, "entry": notified}, "Waitlist entry notified")
}
