package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/transport"
)

// ListQueues godoc
// @Summary List all queues
// @Description Get a list of all queues on the active backend. When the backend is unreachable and the cache holds rows, the listing is served stale.
// @Tags queues
// @Accept json
// @Produce json
// @Success 200 {object} models.QueueListResponse
// @Failure 500 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse "Backend unreachable and cache cold"
// @Router /queues [get]
func ListQueues(c *fiber.Ctx, svc gateway.GatewayService) error {
	queues, stale, err := svc.ListQueues(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.QueueListResponse{
		Queues: queues,
		Stale:  stale,
	})
}

// GetQueue godoc
// @Summary Get a queue
// @Description Get one queue by pathname (percent-encoded). Any accepted pathname form works.
// @Tags queues
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Success 200 {object} models.QueueDTO
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name} [get]
func GetQueue(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	queue, _, err := svc.GetQueue(c.UserContext(), name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(*queue)
}

// CreateQueue godoc
// @Summary Create a new queue
// @Description Create a queue with the given pathname and attributes
// @Tags queues
// @Accept json
// @Produce json
// @Param queue body models.CreateQueueRequest true "Queue to create"
// @Success 201 {object} models.QueueDTO
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Queue already exists"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues [post]
func CreateQueue(c *fiber.Ctx, svc gateway.GatewayService) error {
	var request models.CreateQueueRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}
	if request.Name == "" {
		return badRequest(c, "queue name is required")
	}

	queue, err := svc.CreateQueue(c.UserContext(), request.Name, transport.CreateOptions{
		Label:         request.Label,
		MaxSizeKB:     request.MaxSizeKB,
		Transactional: request.Transactional,
		Journal:       request.Journal,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(*queue)
}

// UpdateQueue godoc
// @Summary Update a queue
// @Description Change the mutable attributes of an existing queue. Omitted fields stay untouched.
// @Tags queues
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Param queue body models.UpdateQueueRequest true "Attributes to change"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name} [put]
func UpdateQueue(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	var request models.UpdateQueueRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	err := svc.UpdateQueue(c.UserContext(), name, transport.UpdateOptions{
		Label:     request.Label,
		MaxSizeKB: request.MaxSizeKB,
		Journal:   request.Journal,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Queue updated successfully",
	})
}

// DeleteQueue godoc
// @Summary Delete a queue
// @Description Delete a queue and everything in it
// @Tags queues
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Success 204 {object} nil
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name} [delete]
func DeleteQueue(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	if err := svc.DeleteQueue(c.UserContext(), name); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusNoContent).Send(nil)
}

// QueueExists godoc
// @Summary Check whether a queue exists
// @Description Report whether the queue exists on the active backend
// @Tags queues
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Success 200 {object} models.ExistsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name}/exists [get]
func QueueExists(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	exists, err := svc.QueueExists(c.UserContext(), name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.ExistsResponse{
		Queue:  name,
		Exists: exists,
	})
}

// GetQueueCount godoc
// @Summary Count messages in a queue
// @Description Get the number of messages waiting in the queue
// @Tags queues
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Success 200 {object} models.CountResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name}/count [get]
func GetQueueCount(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	count, err := svc.MessageCount(c.UserContext(), name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.CountResponse{
		Queue: name,
		Count: count,
	})
}

// GetQueueStats godoc
// @Summary Get queue statistics
// @Description Get the per-queue activity snapshot
// @Tags queues
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Success 200 {object} models.QueueStatsDTO
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name}/stats [get]
func GetQueueStats(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	stats, err := svc.QueueStats(c.UserContext(), name)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(*stats)
}

// PurgeQueue godoc
// @Summary Purge a queue
// @Description Discard every message in the queue while keeping the queue itself
// @Tags queues
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Success 200 {object} models.SuccessResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name}/messages [delete]
func PurgeQueue(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	if err := svc.PurgeQueue(c.UserContext(), name); err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.SuccessResponse{
		Message: "Queue purged successfully",
	})
}
