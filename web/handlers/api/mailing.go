package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/core/models"
)

// ListMailingLists godoc
// @Summary List mailing lists
// @Description Get the notification mailing lists with their recipients
// @Tags mailing-lists
// @Accept json
// @Produce json
// @Success 200 {object} models.MailingListListResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /mailing-lists [get]
func ListMailingLists(c *fiber.Ctx, svc gateway.GatewayService) error {
	lists, err := svc.MailingLists(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.MailingListListResponse{
		MailingLists: lists,
	})
}

// CreateMailingList godoc
// @Summary Create a mailing list
// @Description Register a mailing list subscribed to one alert purpose. List names are unique.
// @Tags mailing-lists
// @Accept json
// @Produce json
// @Param list body models.CreateMailingListRequest true "Mailing list to create"
// @Success 201 {object} models.MailingListDTO
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Name already taken"
// @Router /mailing-lists [post]
func CreateMailingList(c *fiber.Ctx, svc gateway.GatewayService) error {
	var request models.CreateMailingListRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	list, err := svc.CreateMailingList(c.UserContext(), models.MailingListDTO{
		Name:       request.Name,
		Purpose:    request.Purpose,
		Enabled:    true,
		Recipients: request.Recipients,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(*list)
}
