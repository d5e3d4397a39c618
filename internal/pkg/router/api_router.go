package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/randevuhq/randevu/app/controllers"
)

// ApiRouter mounts the public v1 API and the internal sweep triggers.
type ApiRouter struct {
	plans         *controllers.PlanController
	subscriptions *controllers.SubscriptionController
	usage         *controllers.UsageController
	sweeper       *controllers.SweeperController
}

// NewApiRouter creates an API router over injected controllers.
func NewApiRouter(
	plans *controllers.PlanController,
	subscriptions *controllers.SubscriptionController,
	usage *controllers.UsageController,
	sweeper *controllers.SweeperController,
) *ApiRouter {
	return &ApiRouter{
		plans:         plans,
		subscriptions: subscriptions,
		usage:         usage,
		sweeper:       sweeper,
	}
}

func (h *ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	v1.Get("/plans", h.plans.HandleGetPlans)
	v1.Get("/plans/:id", h.plans.HandleGetPlan)

	v1.Post("/subscriptions", h.subscriptions.HandleCreateSubscription)
	v1.Get("/subscriptions", h.subscriptions.HandleListSubscriptions)
	v1.Get("/subscriptions/business/:businessID", h.subscriptions.HandleGetSubscription)
	v1.Post("/subscriptions/business/:businessID/convert-trial", h.subscriptions.HandleConvertTrial)
	v1.Post("/subscriptions/business/:businessID/change-plan", h.subscriptions.HandleChangePlan)
	v1.Post("/subscriptions/business/:businessID/upgrade", h.subscriptions.HandleUpgradePlan)
	v1.Post("/subscriptions/business/:businessID/downgrade", h.subscriptions.HandleDowngradePlan)
	v1.Post("/subscriptions/business/:businessID/cancel", h.subscriptions.HandleCancel)
	v1.Post("/subscriptions/business/:businessID/reactivate", h.subscriptions.HandleReactivate)

	v1.Get("/usage/business/:businessID", h.usage.HandleUsageSummary)
	v1.Get("/usage/business/:businessID/staff", h.usage.HandleCanAddStaff)
	v1.Get("/usage/business/:businessID/services", h.usage.HandleCanAddService)
	v1.Get("/usage/business/:businessID/customers", h.usage.HandleCanAddCustomer)
	v1.Get("/usage/business/:businessID/sms", h.usage.HandleCanSendSms)

	// External cron triggers; expected to be fenced off at the proxy.
	internal := api.Group("/internal")
	internal.Post("/sweeper/renewals", h.sweeper.HandleProcessRenewals)
	internal.Post("/sweeper/expirations", h.sweeper.HandleProcessExpirations)
	internal.Post("/sweeper/trial-notices", h.sweeper.HandleNotifyTrials)
}
