package controllers

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/subscription"
)

// SubscriptionController exposes the subscription lifecycle over REST.
type SubscriptionController struct {
	svc      *subscription.Service
	validate *validator.Validate
}

// NewSubscriptionController creates a subscription controller with an injected
// lifecycle service.
func NewSubscriptionController(svc *subscription.Service) *SubscriptionController {
	return &SubscriptionController{
		svc:      svc,
		validate: validator.New(),
	}
}

// CreateSubscriptionRequest is the sign-up payload.
type CreateSubscriptionRequest struct {
	BusinessID      uint  `json:"business_id" validate:"required"`
	PlanID          uint  `json:"plan_id" validate:"required"`
	PaymentMethodID *uint `json:"payment_method_id"`
	StartTrial      bool  `json:"start_trial"`
}

// ChangePlanRequest is the payload for plan changes.
type ChangePlanRequest struct {
	PlanID uint `json:"plan_id" validate:"required"`
}

// ConvertTrialRequest is the payload for trial conversion.
type ConvertTrialRequest struct {
	PaymentMethodID uint `json:"payment_method_id" validate:"required"`
}

// CancelRequest is the payload for cancellation.
type CancelRequest struct {
	CancelAtPeriodEnd bool `json:"cancel_at_period_end"`
}

func (sc *SubscriptionController) parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", "Malformed request body")
	}
	if err := sc.validate.Struct(out); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	return nil
}

// HandleCreateSubscription handles POST /subscriptions.
func (sc *SubscriptionController) HandleCreateSubscription(c *fiber.Ctx) error {
	var req CreateSubscriptionRequest
	if err := sc.parseBody(c, &req); err != nil {
		return nil
	}

	sub, err := sc.svc.CreateSubscription(c.Context(), subscription.CreateSubscriptionInput{
		BusinessID:      req.BusinessID,
		PlanID:          req.PlanID,
		PaymentMethodID: req.PaymentMethodID,
		StartTrial:      req.StartTrial,
	})
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondCreated(c, sub)
}

// HandleListSubscriptions handles GET /subscriptions with optional status and
// plan filters.
func (sc *SubscriptionController) HandleListSubscriptions(c *fiber.Ctx) error {
	filter := repository.SubscriptionFilter{Status: c.Query("status")}
	if raw := c.Query("plan_id"); raw != "" {
		planID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "validation_error", "plan_id must be a positive integer")
		}
		filter.PlanID = uint(planID)
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)

	subs, total, err := sc.svc.ListSubscriptions(filter, offset, limit)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, fiber.Map{
		"subscriptions": subs,
		"total":         total,
	})
}

// HandleGetSubscription handles GET /subscriptions/business/:businessID.
func (sc *SubscriptionController) HandleGetSubscription(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	sub, err := sc.svc.GetCurrentSubscription(businessID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, sub)
}

// HandleConvertTrial handles POST /subscriptions/business/:businessID/convert-trial.
func (sc *SubscriptionController) HandleConvertTrial(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	var req ConvertTrialRequest
	if err := sc.parseBody(c, &req); err != nil {
		return nil
	}

	sub, err := sc.svc.ConvertTrialToActive(c.Context(), businessID, req.PaymentMethodID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, sub)
}

// HandleChangePlan handles POST /subscriptions/business/:businessID/change-plan.
func (sc *SubscriptionController) HandleChangePlan(c *fiber.Ctx) error {
	return sc.handlePlanChange(c, sc.svc.ChangeSubscriptionPlan)
}

// HandleUpgradePlan handles POST /subscriptions/business/:businessID/upgrade.
func (sc *SubscriptionController) HandleUpgradePlan(c *fiber.Ctx) error {
	return sc.handlePlanChange(c, sc.svc.UpgradePlan)
}

// HandleDowngradePlan handles POST /subscriptions/business/:businessID/downgrade.
func (sc *SubscriptionController) HandleDowngradePlan(c *fiber.Ctx) error {
	return sc.handlePlanChange(c, sc.svc.DowngradePlan)
}

func (sc *SubscriptionController) handlePlanChange(
	c *fiber.Ctx,
	change func(ctx context.Context, businessID, planID uint) (*subscription.PlanChangeResult, error),
) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	var req ChangePlanRequest
	if err := sc.parseBody(c, &req); err != nil {
		return nil
	}

	result, err := change(c.Context(), businessID, req.PlanID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, result)
}

// HandleCancel handles POST /subscriptions/business/:businessID/cancel.
func (sc *SubscriptionController) HandleCancel(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}
	var req CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", "Malformed request body")
	}

	sub, err := sc.svc.CancelSubscription(c.Context(), businessID, req.CancelAtPeriodEnd)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, sub)
}

// HandleReactivate handles POST /subscriptions/business/:businessID/reactivate.
func (sc *SubscriptionController) HandleReactivate(c *fiber.Ctx) error {
	businessID, err := parseUintParam(c, "businessID")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	sub, err := sc.svc.ReactivateSubscription(c.Context(), businessID)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, sub)
}
