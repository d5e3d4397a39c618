package controllers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/randevuhq/randevu/internal/pkg/subscription"
)

// All endpoints answer with the same envelope:
// {success, statusCode, data|error, message}.

func respondOK(c *fiber.Ctx, data interface{}) error {
	return respond(c, fiber.StatusOK, data, "")
}

func respondCreated(c *fiber.Ctx, data interface{}) error {
	return respond(c, fiber.StatusCreated, data, "")
}

func respond(c *fiber.Ctx, status int, data interface{}, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success":    true,
		"statusCode": status,
		"data":       data,
		"message":    message,
	})
}

func respondError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success":    false,
		"statusCode": status,
		"error":      code,
		"message":    message,
	})
}

// respondDomainError maps a service error to the envelope. Domain errors carry
// their own status and stable code; anything else is a system error that gets
// logged and answered with a generic message.
func respondDomainError(c *fiber.Ctx, err error) error {
	var domainErr *subscription.Error
	if errors.As(err, &domainErr) {
		return respondError(c, domainErr.Status, domainErr.Code, domainErr.Message)
	}
	log.Errorf("[API] %s %s: %v", c.Method(), c.Path(), err)
	return respondError(c, fiber.StatusInternalServerError, "internal_server_error", "An internal error occurred")
}

// parseUintParam reads a positive integer route parameter.
func parseUintParam(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || v == 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return uint(v), nil
}
