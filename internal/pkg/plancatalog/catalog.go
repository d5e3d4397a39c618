package plancatalog

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
	"github.com/randevuhq/randevu/app/repository"
	"github.com/randevuhq/randevu/internal/pkg/geoip"
)

// ErrPlanNotFound is returned when a plan ID does not resolve to a plan.
var ErrPlanNotFound = errors.New("plan not found")

// LocationHint carries whatever the caller knows about the requester's region.
// An IP is only consulted when no explicit city/country is given.
type LocationHint struct {
	City    string
	State   string
	Country string
	IP      string
}

// Resolver resolves an IP to a coarse location.
type Resolver interface {
	Lookup(ctx context.Context, ip string) geoip.Location
}

// Catalog is the read-only plan lookup with location-based price overrides.
type Catalog struct {
	plans    repository.PlanRepository
	resolver Resolver
}

// NewCatalog creates a plan catalog from an injected repository and resolver.
func NewCatalog(plans repository.PlanRepository, resolver Resolver) *Catalog {
	return &Catalog{plans: plans, resolver: resolver}
}

// GetAllPlans returns all active plans with region pricing applied.
func (c *Catalog) GetAllPlans(ctx context.Context, hint LocationHint) ([]models.Plan, error) {
	plans, err := c.plans.GetAllActive()
	if err != nil {
		return nil, err
	}
	loc := c.resolveLocation(ctx, hint)
	for i := range plans {
		c.applyOverride(&plans[i], loc)
	}
	return plans, nil
}

// GetPlanByID returns a single plan with region pricing applied.
func (c *Catalog) GetPlanByID(ctx context.Context, id uint, hint LocationHint) (*models.Plan, error) {
	plan, err := c.plans.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	loc := c.resolveLocation(ctx, hint)
	c.applyOverride(plan, loc)
	return plan, nil
}

// GetPlansByBillingInterval returns active plans billed at the given interval.
func (c *Catalog) GetPlansByBillingInterval(ctx context.Context, interval string, hint LocationHint) ([]models.Plan, error) {
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval != models.BillingIntervalMonth && interval != models.BillingIntervalYear {
		return nil, errors.New("billing interval must be month or year")
	}
	plans, err := c.plans.GetByBillingInterval(interval)
	if err != nil {
		return nil, err
	}
	loc := c.resolveLocation(ctx, hint)
	for i := range plans {
		c.applyOverride(&plans[i], loc)
	}
	return plans, nil
}

func (c *Catalog) resolveLocation(ctx context.Context, hint LocationHint) geoip.Location {
	if strings.TrimSpace(hint.City) != "" || strings.TrimSpace(hint.Country) != "" {
		loc := geoip.Location{
			City:    strings.TrimSpace(hint.City),
			State:   strings.TrimSpace(hint.State),
			Country: strings.TrimSpace(hint.Country),
		}
		if loc.Country == "" {
			loc.Country = geoip.DefaultCountry
		}
		return loc
	}
	if c.resolver != nil && strings.TrimSpace(hint.IP) != "" {
		return c.resolver.Lookup(ctx, hint.IP)
	}
	return geoip.DefaultLocation()
}

func (c *Catalog) applyOverride(plan *models.Plan, loc geoip.Location) {
	override, err := c.plans.GetPriceOverride(plan.ID, loc.City, loc.State, loc.Country)
	if err != nil {
		// No override for the region; the base price stands.
		return
	}
	plan.PriceCents = override.PriceCents
	if override.Currency != "" {
		plan.Currency = override.Currency
	}
}
