package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/randevuhq/randevu/internal/pkg/limits"
)

// UsageController exposes the quota checks of the usage limit validator.
type UsageController struct {
	validator *limits.Validator
}

// NewUsageController creates a usage controller with an injected validator.
func NewUsageController(validator *limits.Validator) *UsageController {
	return &UsageController{validator: validator}
}

func (uc *UsageController) respondCheck(c *fiber.Ctx, result *limits.CheckResult, err error) error {
	if err != nil {
		if errors.Is(err, limits.ErrNoSubscription) {
			return respondError(c, fiber.StatusNotFound, "subscription_not_found", "Business has no current subscription")
		}
		return respondDomainError(c, err)
	}
	return respondOK(c, result)
}

// HandleUsageSummary handles GET /usage/business/:businessID.
func (uc *UsageController) HandleUsageSummary(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	summary, err := uc.validator.GetUsageSummary(businessID)
	if err != nil {
		if errors.Is(err, limits.ErrNoSubscription) {
			return respondError(c, fiber.StatusNotFound, "subscription_not_found", "Business has no current subscription")
		}
		return respondDomainError(c, err)
	}
	return respondOK(c, summary)
}

// HandleCanAddStaff handles GET /usage/business/:businessID/staff.
func (uc *UsageController) HandleCanAddStaff(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	result, err := uc.validator.CanAddStaffMember(businessID)
	return uc.respondCheck(c, result, err)
}

// HandleCanAddService handles GET /usage/business/:businessID/services.
func (uc *UsageController) HandleCanAddService(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	result, err := uc.validator.CanAddServiceOffering(businessID)
	return uc.respondCheck(c, result, err)
}

// HandleCanAddCustomer handles GET /usage/business/:businessID/customers.
func (uc *UsageController) HandleCanAddCustomer(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	result, err := uc.validator.CanAddCustomer(businessID)
	return uc.respondCheck(c, result, err)
}

// HandleCanSendSms handles GET /usage/business/:businessID/sms.
func (uc *UsageController) HandleCanSendSms(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	result, err := uc.validator.CanSendSms(businessID)
	return uc.respondCheck(c, result, err)
}
