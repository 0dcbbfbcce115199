package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/core/models"
)

// GetJournal godoc
// @Summary List journaled messages
// @Description Get journaled message envelopes, newest first. Bodies are never journaled, only their size.
// @Tags journal
// @Accept json
// @Produce json
// @Param queue query string false "Filter by queue pathname"
// @Param direction query string false "Filter by direction" Enums(SENT, RECEIVED)
// @Param limit query int false "Maximum number of entries" default(100)
// @Success 200 {object} models.JournalListResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /journal [get]
func GetJournal(c *fiber.Ctx, svc gateway.GatewayService) error {
	queue := c.Query("queue")
	direction := c.Query("direction")
	limit := c.QueryInt("limit", 100)

	entries, err := svc.Journal(c.UserContext(), queue, direction, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.JournalListResponse{
		Entries: entries,
	})
}
