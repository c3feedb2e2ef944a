package availability

import "schedly/models"

// Hard-coded fallback configuration. Business settings and service
// overrides are merged on top; the merge is total, so every field of the
// resulting SlotGenerationConfig always holds a concrete value.
const (
	defaultDuration     = 60
	defaultBuffer       = 0
	defaultSlotInterval = 30
	defaultAdvanceDays  = 30
)

// ResolveBookingRules merges, in increasing priority, hard-coded defaults,
// the business settings blob and per-service overrides into one effective
// configuration. svc may be nil (availability queried with an explicit
// fallback duration instead of a service); fallbackDuration is only
// consulted in that case.
func ResolveBookingRules(biz *models.Business, svc *models.Service, fallbackDuration int) models.SlotGenerationConfig {
	cfg := models.SlotGenerationConfig{
		ServiceDuration:    defaultDuration,
		BufferTime:         defaultBuffer,
		SlotInterval:       defaultSlotInterval,
		AdvanceBookingDays: defaultAdvanceDays,
		SameDayBooking:     true,
		SameDayLeadTime:    0,
		RequireApproval:    false,
		RequireDeposit:     false,
	}

	s := biz.Settings
	if s.BufferTimeMinutes > 0 {
		cfg.BufferTime = s.BufferTimeMinutes
	}
	if s.SlotIntervalMinutes > 0 {
		cfg.SlotInterval = s.SlotIntervalMinutes
	}
	if s.AdvanceBookingDays > 0 {
		cfg.AdvanceBookingDays = s.AdvanceBookingDays
	}
	cfg.SameDayBooking = s.SameDayBooking
	if s.SameDayLeadTime > 0 {
		cfg.SameDayLeadTime = s.SameDayLeadTime
	}
	cfg.RequireApproval = s.RequireApproval

	if svc == nil {
		if fallbackDuration > 0 {
			cfg.ServiceDuration = fallbackDuration
		}
		return cfg
	}

	if svc.DurationMinutes > 0 {
		cfg.ServiceDuration = svc.DurationMinutes
	}
	if svc.BufferMinutes != nil {
		cfg.BufferTime = *svc.BufferMinutes
	}
	if svc.RequireApproval != nil {
		cfg.RequireApproval = *svc.RequireApproval
	}
	cfg.RequireDeposit = svc.RequireDeposit
	if svc.MaxAdvanceDays != nil && *svc.MaxAdvanceDays < cfg.AdvanceBookingDays {
		cfg.AdvanceBookingDays = *svc.MaxAdvanceDays
	}
	return cfg
}
