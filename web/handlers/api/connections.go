package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/core/models"
)

// GetStatus godoc
// @Summary Get connection status
// @Description Get the connection health snapshot: state, active backend, endpoint, retry settings, last activity
// @Tags connection
// @Accept json
// @Produce json
// @Success 200 {object} transport.Health
// @Router /status [get]
func GetStatus(c *fiber.Ctx, svc gateway.GatewayService) error {
	return c.Status(fiber.StatusOK).JSON(svc.Status())
}

// Connect godoc
// @Summary Connect to the broker
// @Description Open the backend connection using the configured backend mode
// @Tags connection
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 503 {object} models.ErrorResponse "Broker unreachable"
// @Router /connect [post]
func Connect(c *fiber.Ctx, svc gateway.GatewayService) error {
	if err := svc.Connect(c.UserContext()); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Connected to broker",
	})
}

// Disconnect godoc
// @Summary Disconnect from the broker
// @Description Close the backend connection. Operations after this reconnect on demand.
// @Tags connection
// @Accept json
// @Produce json
// @Success 200 {object} models.SuccessResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /disconnect [post]
func Disconnect(c *fiber.Ctx, svc gateway.GatewayService) error {
	if err := svc.Disconnect(); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Disconnected from broker",
	})
}
