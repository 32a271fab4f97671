package controller

import (
	"venue-booking/core/controller"
	"venue-booking/core/errors"
	"venue-booking/core/middleware"
	"venue-booking/core/params"
	"venue-booking/modules/notification/dto"
	"venue-booking/modules/notification/service"

	"github.com/labstack/echo/v4"
)

type NotificationController struct {
	service *service.NotificationService
	controller.BaseController
}

func NewNotificationController(service *service.NotificationService) *NotificationController {
	return &NotificationController{
		service:        service,
		BaseController: controller.NewBaseController(),
	}
}

// GetMyNotifications retrieves the customer's inbox
// @Summary List notifications
// @Description Returns the in-app notifications of the signed-in customer, newest first
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} controller.SuccessResponse
// @Failure 401 {object} controller.ErrorResponse
// @Router /private/notifications [get]
func (c *NotificationController) GetMyNotifications(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	queryParams := params.NewQueryParams(ctx)
	result, err := c.service.GetMyNotifications(ctx.Request().Context(), customerID, *queryParams)
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to get notifications")
	}

	return c.SuccessResponse(ctx, result, "Notifications retrieved successfully")
}

// MarkAsRead marks specific notifications as read
// @Summary Mark notifications read
// @Tags Notification
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.MarkAsReadRequest true "Notification IDs"
// @Success 200 {object} controller.SuccessResponse
// @Failure 400 {object} controller.ErrorResponse
// @Router /private/notifications/mark-read [put]
func (c *NotificationController) MarkAsRead(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	req := new(dto.MarkAsReadRequest)
	if err := ctx.Bind(req); err != nil {
		return c.BadRequest(errors.ErrInvalidRequestData, "Invalid request body")
	}

	if err := c.service.MarkAsRead(ctx.Request().Context(), customerID, req.IDs); err != nil {
		return c.ErrorResponse(ctx, err)
	}

	return c.SuccessResponse(ctx, nil, "Marked as read successfully")
}

// MarkAllAsRead
// @Summary Mark all notifications read
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse
// @Router /private/notifications/mark-all-read [put]
func (c *NotificationController) MarkAllAsRead(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	if err := c.service.MarkAllAsRead(ctx.Request().Context(), customerID); err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to mark all as read")
	}

	return c.SuccessResponse(ctx, nil, "Marked all as read successfully")
}

// CountUnread
// @Summary Count unread notifications
// @Tags Notification
// @Security BearerAuth
// @Produce json
// @Success 200 {object} controller.SuccessResponse
// @Router /private/notifications/unread-count [get]
func (c *NotificationController) CountUnread(ctx echo.Context) error {
	customerID, ok := middleware.CustomerID(ctx)
	if !ok {
		return c.Unauthorized(errors.ErrUnauthorized, "Unauthorized")
	}

	count, err := c.service.CountUnread(ctx.Request().Context(), customerID)
	if err != nil {
		return c.InternalServerError(errors.ErrInternalServer, "Failed to count unread")
	}

	return c.SuccessResponse(ctx, map[string]int{"count": count}, "Unread count retrieved")
}
