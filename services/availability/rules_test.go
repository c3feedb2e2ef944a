package availability

import (
	"testing"

	"schedly/models"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestResolveBookingRulesDefaults(t *testing.T) {
	biz := &models.Business{}
	cfg := ResolveBookingRules(biz, nil, 0)

	if cfg.ServiceDuration != 60 {
		t.Errorf("ServiceDuration = %d, want 60", cfg.ServiceDuration)
	}
	if cfg.BufferTime != 0 {
		t.Errorf("BufferTime = %d, want 0", cfg.BufferTime)
	}
	if cfg.SlotInterval != 30 {
		t.Errorf("SlotInterval = %d, want 30", cfg.SlotInterval)
	}
	if cfg.AdvanceBookingDays != 30 {
		t.Errorf("AdvanceBookingDays = %d, want 30", cfg.AdvanceBookingDays)
	}
}

func TestResolveBookingRulesBusinessSettings(t *testing.T) {
	biz := &models.Business{Settings: models.BusinessSettings{
		BufferTimeMinutes:   15,
		SlotIntervalMinutes: 20,
		AdvanceBookingDays:  60,
		SameDayBooking:      true,
		SameDayLeadTime:     120,
		RequireApproval:     true,
	}}
	cfg := ResolveBookingRules(biz, nil, 45)

	if cfg.ServiceDuration != 45 {
		t.Errorf("ServiceDuration = %d, want fallback 45", cfg.ServiceDuration)
	}
	if cfg.BufferTime != 15 || cfg.SlotInterval != 20 || cfg.AdvanceBookingDays != 60 {
		t.Errorf("settings not applied: %+v", cfg)
	}
	if !cfg.SameDayBooking || cfg.SameDayLeadTime != 120 || !cfg.RequireApproval {
		t.Errorf("same-day/approval settings not applied: %+v", cfg)
	}
}

func TestResolveBookingRulesServiceOverrides(t *testing.T) {
	biz := &models.Business{Settings: models.BusinessSettings{
		BufferTimeMinutes:  15,
		AdvanceBookingDays: 60,
		RequireApproval:    true,
	}}
	svc := &models.Service{
		DurationMinutes: 90,
		BufferMinutes:   intPtr(0), // explicit zero override beats the business buffer
		RequireApproval: boolPtr(false),
		MaxAdvanceDays:  intPtr(14),
		RequireDeposit:  true,
	}
	cfg := ResolveBookingRules(biz, svc, 45)

	if cfg.ServiceDuration != 90 {
		t.Errorf("ServiceDuration = %d, want 90", cfg.ServiceDuration)
	}
	if cfg.BufferTime != 0 {
		t.Errorf("BufferTime = %d, want explicit 0 override", cfg.BufferTime)
	}
	if cfg.RequireApproval {
		t.Error("service override should disable approval")
	}
	if cfg.AdvanceBookingDays != 14 {
		t.Errorf("AdvanceBookingDays = %d, want capped to 14", cfg.AdvanceBookingDays)
	}
	if !cfg.RequireDeposit {
		t.Error("RequireDeposit not carried from service")
	}
}

func TestResolveBookingRulesMaxAdvanceOnlyCaps(t *testing.T) {
	biz := &models.Business{Settings: models.BusinessSettings{AdvanceBookingDays: 10}}
	svc := &models.Service{DurationMinutes: 30, MaxAdvanceDays: intPtr(45)}

	cfg := ResolveBookingRules(biz, svc, 0)
	if cfg.AdvanceBookingDays != 10 {
		t.Errorf("AdvanceBookingDays = %d, want 10: a looser service cap must not extend the window", cfg.AdvanceBookingDays)
	}
}
