package api

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/gateway"
	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
	"github.com/quegate/quegate/internal/core/transport"
)

// SendMessage godoc
// @Summary Send a message to a queue
// @Description Send a message to the queue. XML bodies are negotiated into a broker-acceptable form first; the destination queue is created when it does not exist yet.
// @Tags messages
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Param message body models.SendMessageRequest true "Message to send"
// @Success 201 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Queue is full"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name}/messages [post]
func SendMessage(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	var request models.SendMessageRequest
	if err := c.BodyParser(&request); err != nil {
		return badRequest(c, "invalid request body: "+err.Error())
	}

	msg, err := svc.Send(c.UserContext(), transport.SendOptions{
		Queue:         name,
		Body:          []byte(request.Body),
		Label:         request.Label,
		Priority:      request.Priority,
		CorrelationID: request.CorrelationID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.MessageResponse{
		Message: msg,
	})
}

// ReceiveMessage godoc
// @Summary Receive a message from a queue
// @Description Remove and return the front message, waiting up to the requested timeout. An empty queue answers 204.
// @Tags messages
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Param options body models.ReceiveMessageRequest false "Receive options"
// @Success 200 {object} models.MessageResponse
// @Success 204 {object} nil "No message available"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name}/receive [post]
func ReceiveMessage(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	timeout := svc.DefaultReceiveTimeout()
	if len(c.Body()) > 0 {
		var request models.ReceiveMessageRequest
		if err := c.BodyParser(&request); err != nil {
			return badRequest(c, "invalid request body: "+err.Error())
		}
		if request.TimeoutMS != nil {
			timeout = time.Duration(*request.TimeoutMS) * time.Millisecond
		}
	}

	msg, err := svc.Receive(c.UserContext(), name, timeout)
	if err != nil {
		if qerrors.IsNoMessage(err) {
			return c.Status(fiber.StatusNoContent).Send(nil)
		}
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{
		Message: msg,
	})
}

// PeekMessage godoc
// @Summary Peek at the front message
// @Description Return the front message without removing it. An empty queue answers 204.
// @Tags messages
// @Accept json
// @Produce json
// @Param name path string true "Queue pathname, percent-encoded"
// @Param timeout_ms query int false "How long to wait for a message, in milliseconds"
// @Success 200 {object} models.MessageResponse
// @Success 204 {object} nil "No message available"
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse "Queue not found"
// @Failure 503 {object} models.ErrorResponse
// @Router /queues/{name}/peek [get]
func PeekMessage(c *fiber.Ctx, svc gateway.GatewayService) error {
	name := queueParam(c)
	if name == "" {
		return badRequest(c, "queue name is required")
	}
	timeout := svc.DefaultReceiveTimeout()
	if raw := c.Query("timeout_ms"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return badRequest(c, "timeout_ms must be an integer")
		}
		timeout = time.Duration(ms) * time.Millisecond
	}

	msg, err := svc.Peek(c.UserContext(), name, timeout)
	if err != nil {
		if qerrors.IsNoMessage(err) {
			return c.Status(fiber.StatusNoContent).Send(nil)
		}
		return fail(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(models.MessageResponse{
		Message: msg,
	})
}
