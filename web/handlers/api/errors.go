package api

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/quegate/quegate/internal/core/models"
	"github.com/quegate/quegate/internal/core/qerrors"
)

// fail writes the error envelope for err with the status its classification
// implies. Foreign errors fall through as 500 without a code.
func fail(c *fiber.Ctx, err error) error {
	var qe *qerrors.Error
	if !errors.As(err, &qe) {
		return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: err.Error(),
		})
	}
	msg := qe.Msg
	if qe.Err != nil {
		if msg != "" {
			msg += ": " + qe.Err.Error()
		} else {
			msg = qe.Err.Error()
		}
	}
	if msg == "" {
		msg = qe.Error()
	}
	return c.Status(statusFor(qe)).JSON(models.ErrorResponse{
		Error: msg,
		Code:  qe.Code,
		Kind:  qe.Kind.String(),
		Queue: qe.Queue,
	})
}

// statusFor maps the error classification onto an HTTP status: validation
// 400, connection 503, business 404 or 409, everything else 500.
func statusFor(qe *qerrors.Error) int {
	switch qe.Kind {
	case qerrors.KindValidation:
		return fiber.StatusBadRequest
	case qerrors.KindConnection:
		return fiber.StatusServiceUnavailable
	case qerrors.KindBusiness:
		switch qe.Code {
		case qerrors.CodeQueueExists, qerrors.CodeListExists, qerrors.CodeCapacity:
			return fiber.StatusConflict
		default:
			return fiber.StatusNotFound
		}
	default:
		return fiber.StatusInternalServerError
	}
}

// badRequest writes a 400 validation envelope for request-shape problems the
// gateway never sees.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
		Error: msg,
		Code:  qerrors.CodeInvalidRequest,
		Kind:  qerrors.KindValidation.String(),
	})
}

// queueParam returns the :name route parameter percent-decoded, so path
// forms like `.%5Cprivate$%5Corders` arrive as `.\private$\orders`.
func queueParam(c *fiber.Ctx) string {
	name := c.Params("name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	return name
}
