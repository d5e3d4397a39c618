package database

import (
	"github.com/gofiber/fiber/v2/log"

	"github.com/randevuhq/randevu/app/models"
)

// SeedDefaultPlans inserts the default plan catalog if no plans exist yet.
// Existing catalogs are never touched; pricing changes ship as new plan rows.
func SeedDefaultPlans() {
	var count int64
	if err := DB.Model(&models.Plan{}).Count(&count).Error; err != nil {
		log.Errorf("plan seed: count failed: %v", err)
		return
	}
	if count > 0 {
		return
	}

	plans := []models.Plan{
		{
			Name:            "Free",
			Slug:            "free",
			PriceCents:      0,
			Currency:        "TRY",
			BillingInterval: models.BillingIntervalMonth,
			TrialDays:       0,
			MaxStaff:        1,
			MaxServices:     3,
			MaxCustomers:    50,
			SmsQuotaPerDay:  0,
			IsActive:        true,
		},
		{
			Name:            "Essential",
			Slug:            "essential-monthly",
			PriceCents:      29900,
			Currency:        "TRY",
			BillingInterval: models.BillingIntervalMonth,
			TrialDays:       14,
			MaxStaff:        5,
			MaxServices:     25,
			MaxCustomers:    1000,
			SmsQuotaPerDay:  50,
			IsActive:        true,
		},
		{
			Name:            "Essential",
			Slug:            "essential-yearly",
			PriceCents:      299000,
			Currency:        "TRY",
			BillingInterval: models.BillingIntervalYear,
			TrialDays:       14,
			MaxStaff:        5,
			MaxServices:     25,
			MaxCustomers:    1000,
			SmsQuotaPerDay:  50,
			IsActive:        true,
		},
		{
			Name:            "Professional",
			Slug:            "professional-monthly",
			PriceCents:      59900,
			Currency:        "TRY",
			BillingInterval: models.BillingIntervalMonth,
			TrialDays:       14,
			MaxStaff:        models.UnlimitedQuota,
			MaxServices:     models.UnlimitedQuota,
			MaxCustomers:    models.UnlimitedQuota,
			SmsQuotaPerDay:  500,
			IsActive:        true,
		},
		{
			Name:            "Professional",
			Slug:            "professional-yearly",
			PriceCents:      599000,
			Currency:        "TRY",
			BillingInterval: models.BillingIntervalYear,
			TrialDays:       14,
			MaxStaff:        models.UnlimitedQuota,
			MaxServices:     models.UnlimitedQuota,
			MaxCustomers:    models.UnlimitedQuota,
			SmsQuotaPerDay:  500,
			IsActive:        true,
		},
	}

	if err := DB.Create(&plans).Error; err != nil {
		log.Errorf("plan seed: insert failed: %v", err)
		return
	}
	log.Infof("plan seed: created %d default plans", len(plans))
}
