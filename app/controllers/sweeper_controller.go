package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/randevuhq/randevu/internal/pkg/subscription"
)

// SweeperController exposes the batch sweeps for external cron triggering.
// These routes live under the internal API group, not the public v1 surface.
type SweeperController struct {
	svc *subscription.Service
}

// NewSweeperController creates a sweeper controller with an injected lifecycle
// service.
func NewSweeperController(svc *subscription.Service) *SweeperController {
	return &SweeperController{svc: svc}
}

// HandleProcessRenewals handles POST /internal/sweeper/renewals.
func (sw *SweeperController) HandleProcessRenewals(c *fiber.Ctx) error {
	result, err := sw.svc.ProcessSubscriptionRenewals(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, result)
}

// HandleProcessExpirations handles POST /internal/sweeper/expirations.
func (sw *SweeperController) HandleProcessExpirations(c *fiber.Ctx) error {
	result, err := sw.svc.ProcessExpiredSubscriptions(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, result)
}

// HandleNotifyTrials handles POST /internal/sweeper/trial-notices.
func (sw *SweeperController) HandleNotifyTrials(c *fiber.Ctx) error {
	count, err := sw.svc.NotifyTrialsEnding(c.Context())
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, fiber.Map{"queued": count})
}
