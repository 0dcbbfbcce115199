package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/core/models"
)

// ListAlerts godoc
// @Summary List alerts
// @Description Get raised alerts, newest first. Acknowledged alerts are excluded unless include_acked is set.
// @Tags alerts
// @Accept json
// @Produce json
// @Param include_acked query bool false "Include acknowledged alerts"
// @Param limit query int false "Maximum number of alerts" default(100)
// @Success 200 {object} models.AlertListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /alerts [get]
func ListAlerts(c *fiber.Ctx, svc gateway.GatewayService) error {
	includeAcked := c.QueryBool("include_acked")
	limit := c.QueryInt("limit", 100)

	alerts, err := svc.Alerts(c.UserContext(), includeAcked, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.AlertListResponse{
		Alerts: alerts,
	})
}

// AckAlert godoc
// @Summary Acknowledge an alert
// @Description Acknowledge one alert by id. Acknowledging an already acknowledged alert is a no-op.
// @Tags alerts
// @Accept json
// @Produce json
// @Param id path string true "Alert id"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Alert not found"
// @Router /alerts/{id}/ack [post]
func AckAlert(c *fiber.Ctx, svc gateway.GatewayService) error {
	if err := svc.AckAlert(c.UserContext(), c.Params("id")); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Alert acknowledged",
	})
}
