package response

import (
	"github.com/gofiber/fiber/v2"
)

func Success(c *fiber.Ctx, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"message": message,
		"data":    data,
	})
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": message,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message)
}

func ServerError(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, message)
}

func Unauthorized(c *fiber.Ctx) error {
	return Error(c, fiber.StatusUnauthorized, "Unauthorized")
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, message)
}

// Codes of the {code, message, data} envelope consumed by the storefront
// script and the admin app. Zero is success.
const (
	CodeOK          = 0
	CodeInvalid     = 1
	CodeUnavailable = 2
	CodeServerError = 500
)

// Envelope writes {code, message, data} with HTTP 200; clients branch on code.
func Envelope(c *fiber.Ctx, code int, message string, data interface{}) error {
	return c.JSON(fiber.Map{
		"code":    code,
		"message": message,
		"data":    data,
	})
}

func OK(c *fiber.Ctx, data interface{}) error {
	return Envelope(c, CodeOK, "success", data)
}

// Fail writes the envelope with an explicit HTTP status.
func Fail(c *fiber.Ctx, status, code int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"code":    code,
		"message": message,
		"data":    nil,
	})
}
