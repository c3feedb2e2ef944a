package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	appointmentRepo "schedly/database/repository/appointment"
	businessRepo "schedly/database/repository/business"
	"schedly/models"
	"schedly/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

var (
	ErrBusinessNotFound = errors.New("business not found")
	ErrServiceNotFound  = errors.New("service not found")
)

// QueryRequest describes one availability query. Exactly one of Date,
// StartDate+EndDate, or Days selects the range.
type QueryRequest struct {
	BusinessKey string // id or slug
	ServiceID   string
	Date        string
	StartDate   string
	EndDate     string
	Days        int

	// FallbackDuration is used when no service is given.
	FallbackDuration int

	IncludeSlots     bool
	IncludeSummary   bool
	IncludeRules     bool
	IncludeHeatmap   bool
	IncludePeakHours bool
	FindNext         bool
	PreferredTime    string // "HH:MM", for FindNext
	PeakTopK         int
}

// QueryResult is the assembled availability response.
type QueryResult struct {
	BusinessID    string                      `json:"businessId"`
	Timezone      string                      `json:"timezone"`
	Days          []models.DayAvailability    `json:"days,omitempty"`
	Summary       *models.AvailabilitySummary `json:"summary,omitempty"`
	Rules         *models.SlotGenerationConfig `json:"rules,omitempty"`
	Heatmap       map[string]int              `json:"heatmap,omitempty"`
	PeakHours     []models.HourCount          `json:"peakHours,omitempty"`
	NextAvailable *models.NextAvailableSlot   `json:"nextAvailable,omitempty"`
	BookingWindow models.BookingWindow        `json:"bookingWindow"`
}

// Service answers availability queries against the store, caching computed
// day grids briefly in Redis. Cache staleness between viewing a slot and
// booking it is tolerated; the booking write path re-checks atomically.
type Service struct {
	Businesses   businessRepo.BusinessRepository
	Appointments appointmentRepo.AppointmentRepository
	Calc         *Calculator

	Cache    *redis.Client
	CacheTTL time.Duration
}

// resolveBusiness loads a business by id, then by slug.
func (s *Service) resolveBusiness(ctx context.Context, key string) (*models.Business, error) {
	biz, err := s.Businesses.GetByID(ctx, key)
	if err != nil {
		return nil, err
	}
	if biz == nil {
		biz, err = s.Businesses.GetBySlug(ctx, key)
		if err != nil {
			return nil, err
		}
	}
	if biz == nil {
		return nil, ErrBusinessNotFound
	}
	return biz, nil
}

// resolveRange normalizes the three range forms to [start, end].
func (s *Service) resolveRange(biz *models.Business, req QueryRequest) (string, string, error) {
	switch {
	case req.Date != "":
		return req.Date, req.Date, nil
	case req.StartDate != "" && req.EndDate != "":
		return req.StartDate, req.EndDate, nil
	case req.Days > 0:
		if req.Days > MaxRangeDays {
			return "", "", ErrRangeTooLong
		}
		today, err := TodayInTimezone(biz.Timezone, s.Calc.now())
		if err != nil {
			return "", "", err
		}
		d, _ := ParseDate(today)
		return today, d.AddDate(0, 0, req.Days-1).Format(DateLayout), nil
	default:
		return "", "", fmt.Errorf("a date, a start/end range or a day count is required")
	}
}

// GetAvailability computes per-day availability plus the requested
// aggregates for one business over a range.
func (s *Service) GetAvailability(ctx context.Context, req QueryRequest) (*QueryResult, error) {
	biz, err := s.resolveBusiness(ctx, req.BusinessKey)
	if err != nil {
		return nil, err
	}

	var svc *models.Service
	if req.ServiceID != "" {
		svc, err = s.Businesses.GetService(ctx, biz.ID, req.ServiceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, ErrServiceNotFound
		}
	}
	cfg := ResolveBookingRules(biz, svc, req.FallbackDuration)

	startDate, endDate, err := s.resolveRange(biz, req)
	if err != nil {
		return nil, err
	}

	days, err := s.rangeCached(ctx, biz, req.ServiceID, startDate, endDate, cfg)
	if err != nil {
		return nil, err
	}

	window, err := s.Calc.BookingWindowFor(biz, cfg)
	if err != nil {
		return nil, err
	}
	result := &QueryResult{
		BusinessID:    biz.ID,
		Timezone:      biz.Timezone,
		BookingWindow: window,
	}
	if req.IncludeSlots {
		result.Days = days
	} else {
		// Strip the grids but keep the per-day open/closed shape.
		trimmed := make([]models.DayAvailability, len(days))
		for i, day := range days {
			day.Slots = nil
			trimmed[i] = day
		}
		result.Days = trimmed
	}
	if req.IncludeSummary {
		summary := Summarize(days)
		result.Summary = &summary
	}
	if req.IncludeRules {
		rules := cfg
		result.Rules = &rules
	}
	if req.IncludeHeatmap {
		result.Heatmap = Heatmap(days)
	}
	if req.IncludePeakHours {
		appts, err := s.Appointments.ListByBusinessRange(ctx, biz.ID, startDate, endDate)
		if err != nil {
			return nil, err
		}
		histogram := PeakHours(appts)
		if req.PeakTopK > 0 && len(histogram) > req.PeakTopK {
			histogram = histogram[:req.PeakTopK]
		}
		result.PeakHours = histogram
	}
	if req.FindNext {
		result.NextAvailable = NextAvailable(days, req.PreferredTime)
	}
	return result, nil
}

// rangeCached serves the computed day grids from Redis when possible.
func (s *Service) rangeCached(ctx context.Context, biz *models.Business, serviceID, startDate, endDate string, cfg models.SlotGenerationConfig) ([]models.DayAvailability, error) {
	if s.Cache == nil {
		return s.Calc.RangeAvailability(ctx, biz, startDate, endDate, cfg)
	}

	// Serviceless queries are keyed by their effective duration instead,
	// so two different fallback durations never share an entry.
	if serviceID == "" {
		serviceID = fmt.Sprintf("d%d", cfg.ServiceDuration)
	}
	key := utils.AvailabilityCacheKey(biz.ID, serviceID, startDate, endDate)
	if cached, err := s.Cache.Get(ctx, key).Result(); err == nil {
		var days []models.DayAvailability
		if err := json.Unmarshal([]byte(cached), &days); err == nil {
			return days, nil
		}
	}

	days, err := s.Calc.RangeAvailability(ctx, biz, startDate, endDate, cfg)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(days); err == nil {
		if err := s.Cache.Set(ctx, key, data, s.CacheTTL).Err(); err != nil {
			utils.GetLogger().Warn("failed to cache availability",
				zap.String("key", key), zap.Error(err))
		}
	}
	return days, nil
}

// CheckSlot answers a targeted "is this exact slot free" query.
func (s *Service) CheckSlot(ctx context.Context, businessKey, serviceID, date, startTime string, duration int) (*SlotCheck, error) {
	biz, err := s.resolveBusiness(ctx, businessKey)
	if err != nil {
		return nil, err
	}
	var svc *models.Service
	if serviceID != "" {
		svc, err = s.Businesses.GetService(ctx, biz.ID, serviceID)
		if err != nil {
			return nil, err
		}
		if svc == nil {
			return nil, ErrServiceNotFound
		}
	}
	cfg := ResolveBookingRules(biz, svc, duration)

	startMinutes, err := TimeToMinutes(startTime)
	if err != nil {
		return nil, err
	}
	return s.Calc.CheckSlot(ctx, biz, date, startMinutes, cfg.ServiceDuration, cfg, "")
}
