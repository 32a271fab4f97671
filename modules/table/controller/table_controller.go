package controller

import (
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/modules/table/dto"
	"venue-booking/modules/table/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type TableController struct {
	service *service.TableService
	controller.BaseController
}

func NewTableController(service *service.TableService) *TableController {
	return &TableController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetAvailability lists slots that seat the party
// @Summary Check table availability
// @Tags Availability
// @Produce json
// @Param date query string true "YYYY-MM-DD"
// @Param time query string true "HH:MM"
// @Param party_size query int true "Guests"
// @Param floor query string false "upstairs | downstairs"
// @Success 200 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Router /public/availability [get]
func (c *TableController) GetAvailability(ctx echo.Context) error {
	req := new(dto.AvailabilityRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid query parameters", nil)
	}

	slots, err := c.service.ResolveAvailability(ctx.Request().Context(), *req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, map[string]any{
		"slots":             slots,
		"waitlist_eligible": len(slots) == 0,
	}, "Availability retrieved successfully")
}

// CreateTable registers a physical table
// @Summary Create table
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateTableRequest true "Table"
// @Success 201 {object} controller.SuccessResponse
// @Router /admin/tables [post]
func (c *TableController) CreateTable(ctx echo.Context) error {
	req := new(dto.CreateTableRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	table, err := c.service.CreateTable(ctx.Request().Context(), req)
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.CreatedResponse(ctx, table, "Table created successfully")
}

// ListTables
// @Summary List tables
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Router /admin/tables [get]
func (c *TableController) ListTables(ctx echo.Context) error {
	tables, err := c.service.ListTables(ctx.Request().Context())
	if err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, tables, "Tables retrieved successfully")
}

// UpdateStatus sets a table status, e.g. maintenance
// @Summary Update table status
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Param id path string true "Table ID"
// @Param request body dto.UpdateTableStatusRequest true "Status"
// @Router /admin/tables/{id}/status [put]
func (c *TableController) UpdateStatus(ctx echo.Context) error {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		return c.BadRequest(errors.ErrInvalidInput, "Invalid table id", nil)
	}

	req := new(dto.UpdateTableStatusRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body", nil)
	}

	if err := c.service.SetStatus(ctx.Request().Context(), id, req.Status); err != nil {
		return c.ErrorResponse(ctx, err)
	}
	return c.SuccessResponse(ctx, nil, "Table status updated")
}
