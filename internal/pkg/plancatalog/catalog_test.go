package plancatalog

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/randevuhq/randevu/app/models"
	"github.com/randevuhq/randevu/internal/pkg/geoip"
)

type stubPlanRepo struct {
	plans     map[uint]*models.Plan
	overrides map[string]*models.PlanPriceOverride
}

func overrideKey(planID uint, city, country string) string {
	return fmt.Sprintf("%d|%s|%s", planID, city, country)
}

func newStubPlanRepo(plans ...*models.Plan) *stubPlanRepo {
	r := &stubPlanRepo{
		plans:     make(map[uint]*models.Plan),
		overrides: make(map[string]*models.PlanPriceOverride),
	}
	for _, p := range plans {
		r.plans[p.ID] = p
	}
	return r
}

func (r *stubPlanRepo) addOverride(planID uint, city, country string, price int64) {
	r.overrides[overrideKey(planID, city, country)] = &models.PlanPriceOverride{
		PlanID: planID, City: city, Country: country, PriceCents: price, Currency: "TRY", IsActive: true,
	}
}

func (r *stubPlanRepo) GetByID(id uint) (*models.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubPlanRepo) GetAllActive() ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPlanRepo) GetByBillingInterval(interval string) ([]models.Plan, error) {
	var out []models.Plan
	for _, p := range r.plans {
		if p.IsActive && p.BillingInterval == interval {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPlanRepo) GetPriceOverride(planID uint, city, state, country string) (*models.PlanPriceOverride, error) {
	if o, ok := r.overrides[overrideKey(planID, city, country)]; ok {
		return o, nil
	}
	if o, ok := r.overrides[overrideKey(planID, "", country)]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubPlanRepo) Create(plan *models.Plan) error { r.plans[plan.ID] = plan; return nil }
func (r *stubPlanRepo) Count() (int64, error)          { return int64(len(r.plans)), nil }

type stubResolver struct {
	loc geoip.Location
}

func (s *stubResolver) Lookup(ctx context.Context, ip string) geoip.Location { return s.loc }

func testPlan(id uint, price int64, interval string) *models.Plan {
	return &models.Plan{
		ID:              id,
		Name:            "Plan",
		Slug:            "plan",
		PriceCents:      price,
		Currency:        "TRY",
		BillingInterval: interval,
		IsActive:        true,
	}
}

func TestGetPlanByIDAppliesCityOverride(t *testing.T) {
	repo := newStubPlanRepo(testPlan(1, 29900, models.BillingIntervalMonth))
	repo.addOverride(1, "Ankara", "Turkey", 24900)
	catalog := NewCatalog(repo, nil)

	plan, err := catalog.GetPlanByID(context.Background(), 1, LocationHint{City: "Ankara", Country: "Turkey"})
	require.NoError(t, err)
	assert.Equal(t, int64(24900), plan.PriceCents)

	// A city with no override keeps the base price.
	plan, err = catalog.GetPlanByID(context.Background(), 1, LocationHint{City: "Izmir", Country: "Turkey"})
	require.NoError(t, err)
	assert.Equal(t, int64(29900), plan.PriceCents)
}

func TestGetPlanByIDCountryOverrideFallback(t *testing.T) {
	repo := newStubPlanRepo(testPlan(1, 29900, models.BillingIntervalMonth))
	repo.addOverride(1, "", "Germany", 49900)
	catalog := NewCatalog(repo, nil)

	plan, err := catalog.GetPlanByID(context.Background(), 1, LocationHint{City: "Berlin", Country: "Germany"})
	require.NoError(t, err)
	assert.Equal(t, int64(49900), plan.PriceCents)
}

func TestGetPlanByIDUnknownPlan(t *testing.T) {
	catalog := NewCatalog(newStubPlanRepo(), nil)

	_, err := catalog.GetPlanByID(context.Background(), 42, LocationHint{})
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestGetAllPlansDefaultsToIstanbul(t *testing.T) {
	repo := newStubPlanRepo(testPlan(1, 29900, models.BillingIntervalMonth))
	repo.addOverride(1, geoip.DefaultCity, geoip.DefaultCountry, 19900)
	catalog := NewCatalog(repo, nil)

	plans, err := catalog.GetAllPlans(context.Background(), LocationHint{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(19900), plans[0].PriceCents)
}

func TestGetAllPlansResolvesIP(t *testing.T) {
	repo := newStubPlanRepo(testPlan(1, 29900, models.BillingIntervalMonth))
	repo.addOverride(1, "Ankara", "Turkey", 24900)
	resolver := &stubResolver{loc: geoip.Location{City: "Ankara", Country: "Turkey"}}
	catalog := NewCatalog(repo, resolver)

	plans, err := catalog.GetAllPlans(context.Background(), LocationHint{IP: "78.160.0.1"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(24900), plans[0].PriceCents)
}

func TestExplicitHintBeatsIP(t *testing.T) {
	repo := newStubPlanRepo(testPlan(1, 29900, models.BillingIntervalMonth))
	repo.addOverride(1, "Ankara", "Turkey", 24900)
	resolver := &stubResolver{loc: geoip.Location{City: "Izmir", Country: "Turkey"}}
	catalog := NewCatalog(repo, resolver)

	plans, err := catalog.GetAllPlans(context.Background(), LocationHint{City: "Ankara", Country: "Turkey", IP: "78.160.0.1"})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, int64(24900), plans[0].PriceCents, "an explicit city hint must win over the IP lookup")
}

func TestGetPlansByBillingInterval(t *testing.T) {
	repo := newStubPlanRepo(
		testPlan(1, 29900, models.BillingIntervalMonth),
		testPlan(2, 299000, models.BillingIntervalYear),
	)
	catalog := NewCatalog(repo, nil)

	plans, err := catalog.GetPlansByBillingInterval(context.Background(), "year", LocationHint{})
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, uint(2), plans[0].ID)

	_, err = catalog.GetPlansByBillingInterval(context.Background(), "weekly", LocationHint{})
	assert.Error(t, err)
}
