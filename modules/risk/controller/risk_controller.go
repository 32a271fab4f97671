package controller

import (
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/core/middleware"
	"venue-booking/core/utils"
	customerService "venue-booking/modules/customer/service"
	"venue-booking/modules/risk/dto"
	"venue-booking/modules/risk/service"

	"github.com/labstack/echo/v4"
)

type RiskController struct {
	validator *service.Validator
	customers *customerService.CustomerService
	controller.BaseController
}

func NewRiskController(validator *service.Validator, customers *customerService.CustomerService) *RiskController {
	return &RiskController{
		validator:      validator,
		customers:      customers,
		BaseController: controller.NewBaseController(),
	}
}

// ValidateLimits scores a prospective booking for the signed-in customer
// @Summary Validate booking limits
// @Tags Risk
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.ValidateLimitsRequest true "Request"
// @Success 200 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Router /private/risk/validate [post]
func (c *RiskController) ValidateLimits(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.ValidateLimitsRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}
	if err := utils.ValidateDate(req.Date); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	record, err := c.customers.LimitRecord(ctx.Request().Context(), customerID, req.Date)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	assessment, err := c.validator.ValidateLimits(ctx.Request().Context(), service.ValidateInput{
		Record:          *record,
		RequestedTables: req.RequestedTables,
		RequestedGuests: req.RequestedGuests,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, assessment, "Limits validated")
}
