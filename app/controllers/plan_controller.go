package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/randevuhq/randevu/internal/pkg/plancatalog"
)

// PlanController serves the read-only plan catalog.
type PlanController struct {
	catalog *plancatalog.Catalog
}

// NewPlanController creates a plan controller with an injected catalog.
func NewPlanController(catalog *plancatalog.Catalog) *PlanController {
	return &PlanController{catalog: catalog}
}

func locationHintFromRequest(c *fiber.Ctx) plancatalog.LocationHint {
	return plancatalog.LocationHint{
		City:    c.Query("city"),
		State:   c.Query("state"),
		Country: c.Query("country"),
		IP:      c.IP(),
	}
}

// HandleGetPlans returns all active plans, or only those with the requested
// billing interval, priced for the caller's region.
func (pc *PlanController) HandleGetPlans(c *fiber.Ctx) error {
	hint := locationHintFromRequest(c)

	if interval := c.Query("interval"); interval != "" {
		plans, err := pc.catalog.GetPlansByBillingInterval(c.Context(), interval, hint)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
		}
		return respondOK(c, plans)
	}

	plans, err := pc.catalog.GetAllPlans(c.Context(), hint)
	if err != nil {
		return respondDomainError(c, err)
	}
	return respondOK(c, plans)
}

// HandleGetPlan returns a single plan by ID, priced for the caller's region.
func (pc *PlanController) HandleGetPlan(c *fiber.Ctx) error {
	id, err := parseUintParam(c, "id")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "validation_error", err.Error())
	}

	plan, err := pc.catalog.GetPlanByID(c.Context(), id, locationHintFromRequest(c))
	if err != nil {
		if err == plancatalog.ErrPlanNotFound {
			return respondError(c, fiber.StatusNotFound, "plan_not_found", "Plan not found")
		}
		return respondDomainError(c, err)
	}
	return respondOK(c, plan)
}
