package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/gateway"
)

// GetOverview godoc
// @Summary Get the gateway overview
// @Description Retrieve the gateway-wide snapshot: build details, connection health, queue totals, operation metrics
// @Tags overview
// @Accept json
// @Produce json
// @Success 200 {object} models.Overview
// @Failure 500 {object} models.ErrorResponse
// @Router /overview [get]
func GetOverview(c *fiber.Ctx, svc gateway.GatewayService) error {
	overview, err := svc.Statistics(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(overview)
}
