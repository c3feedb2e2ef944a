package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	appointmentRepo "schedly/database/repository/appointment"
	"schedly/models"
	"schedly/services/availability"
	"schedly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func minutesDuration(m int) time.Duration {
	return time.Duration(m) * time.Minute
}

// ExpandPattern turns a declarative recurrence pattern into the concrete,
// ascending list of "YYYY-MM-DD" dates it covers, starting at startDate.
//
// For weekly patterns, weeks are anchored to the calendar week containing
// startDate (weeks start on Sunday); a requested weekday that falls before
// startDate in week zero is not emitted, only occurrences on or after the
// start date count.
func ExpandPattern(startDate string, pattern models.RecurrencePattern) ([]string, error) {
	if err := pattern.Validate(); err != nil {
		return nil, err
	}
	start, err := availability.ParseDate(startDate)
	if err != nil {
		return nil, err
	}

	var dates []string
	switch pattern.Type {
	case models.PatternConsecutive:
		for i := 0; i < pattern.Days; i++ {
			dates = append(dates, start.AddDate(0, 0, i).Format(availability.DateLayout))
		}

	case models.PatternWeekly:
		weekStart := start.AddDate(0, 0, -int(start.Weekday())) // Sunday of week zero
		for week := 0; week < pattern.Weeks; week++ {
			for _, wd := range pattern.Weekdays {
				d := weekStart.AddDate(0, 0, week*7+wd)
				if d.Before(start) {
					continue
				}
				dates = append(dates, d.Format(availability.DateLayout))
			}
		}
		sort.Strings(dates)

	case models.PatternCustom:
		seen := make(map[string]bool, len(pattern.Dates))
		for _, date := range pattern.Dates {
			if _, err := availability.ParseDate(date); err != nil {
				return nil, err
			}
			if seen[date] {
				continue
			}
			seen[date] = true
			dates = append(dates, date)
		}
		sort.Strings(dates)
	}
	return dates, nil
}

// CreateSeries expands the pattern, validates every generated date
// independently, and creates the whole series as one atomic unit. If any
// date is unavailable, no appointment is created at all.
func (s *DefaultBookingService) CreateSeries(ctx context.Context, req SeriesRequest) ([]SeriesMember, error) {
	if req.BusinessID == "" || req.ServiceID == "" || req.StartDate == "" || req.StartTime == "" {
		return nil, newError(CodeValidation, "businessId, serviceId, startDate and startTime are required")
	}
	if req.CustomerName == "" || req.CustomerEmail == "" {
		return nil, newError(CodeValidation, "customerName and customerEmail are required")
	}

	biz, err := s.loadBusiness(ctx, req.BusinessID)
	if err != nil {
		return nil, err
	}
	svc, err := s.Businesses.GetService(ctx, biz.ID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, newError(CodeNotFound, "service %q not found", req.ServiceID)
	}

	cfg := availability.ResolveBookingRules(biz, svc, 0)
	startMinutes, err := availability.TimeToMinutes(req.StartTime)
	if err != nil {
		return nil, newError(CodeValidation, "%v", err)
	}

	dates, err := ExpandPattern(req.StartDate, req.Pattern)
	if err != nil {
		return nil, newError(CodeValidation, "%v", err)
	}
	// A weekly pattern whose requested weekdays all fall before the start
	// date in week zero can expand to nothing.
	if len(dates) == 0 {
		return nil, newError(CodeValidation, "recurrence pattern produces no dates on or after %s", req.StartDate)
	}
	if err := s.checkAdvanceWindow(biz, dates[0], cfg); err != nil {
		return nil, err
	}
	if err := s.checkAdvanceWindow(biz, dates[len(dates)-1], cfg); err != nil {
		return nil, err
	}

	// Every date is checked independently against that day's hours,
	// overrides and bookings; one unavailable date fails the whole series.
	var failed []models.ConflictInfo
	for _, date := range dates {
		check, err := s.Availability.CheckSlot(ctx, biz, date, startMinutes, cfg.ServiceDuration, cfg, "")
		if err != nil {
			return nil, err
		}
		if check.Available {
			continue
		}
		info := models.ConflictInfo{
			Date:   date,
			Start:  availability.MinutesToTime(startMinutes),
			End:    availability.MinutesToTime(startMinutes + cfg.ServiceDuration),
			Reason: check.Reason,
		}
		if check.Conflict != nil {
			info.AppointmentID = check.Conflict.AppointmentID
		}
		failed = append(failed, info)
	}
	if len(failed) > 0 {
		e := newError(CodeSeriesUnavailable, "%d of %d dates in the series are unavailable", len(failed), len(dates))
		e.Conflicts = failed
		return nil, e
	}

	appts, err := s.buildSeries(biz, svc, req, dates, startMinutes, cfg)
	if err != nil {
		return nil, err
	}

	if err := s.Appointments.CreateSeriesTransactionally(ctx, appts, cfg.BufferTime); err != nil {
		var confErr *appointmentRepo.ConflictError
		if errors.As(err, &confErr) {
			e := conflictErrorFrom(confErr)
			e.Code = CodeSeriesUnavailable
			return nil, e
		}
		return nil, err
	}

	ids := make([]string, len(appts))
	for i := range appts {
		ids[i] = appts[i].ID
	}
	customerID := s.recordCustomer(ctx, biz.ID, req.CustomerName, req.CustomerEmail, req.CustomerPhone, ids, len(appts))
	for i := range appts {
		appts[i].CustomerID = customerID
	}
	s.afterWrite(ctx, biz.ID)

	members := make([]SeriesMember, len(appts))
	for i := range appts {
		s.scheduleReminder(&appts[i])
		members[i] = SeriesMember{
			AppointmentID: appts[i].ID,
			Date:          appts[i].Date,
			StartTime:     availability.MinutesToTime(appts[i].StartMinutes),
		}
	}

	utils.GetLogger().Info("series created",
		zap.String("seriesID", appts[0].SeriesID),
		zap.String("businessID", biz.ID),
		zap.Int("appointments", len(appts)))
	return members, nil
}

// buildSeries materializes the appointments of a series. The first
// occurrence is the parent: it shares its id as the series id and alone
// carries the recurrence pattern and the series end date.
func (s *DefaultBookingService) buildSeries(biz *models.Business, svc *models.Service, req SeriesRequest, dates []string, startMinutes int, cfg models.SlotGenerationConfig) ([]models.Appointment, error) {
	parentID := uuid.New().String()
	status := models.StatusConfirmed
	if cfg.RequireApproval {
		status = models.StatusPending
	}

	appts := make([]models.Appointment, 0, len(dates))
	for i, date := range dates {
		start, err := availability.AbsoluteTime(date, startMinutes, biz.Timezone)
		if err != nil {
			return nil, err
		}
		appt := models.Appointment{
			ID:            uuid.New().String(),
			BusinessID:    biz.ID,
			ServiceID:     svc.ID,
			Date:          date,
			StartMinutes:  startMinutes,
			EndMinutes:    startMinutes + cfg.ServiceDuration,
			Start:         start,
			End:           start.Add(minutesDuration(cfg.ServiceDuration)),
			Duration:      cfg.ServiceDuration,
			Timezone:      biz.Timezone,
			Status:        status,
			CustomerName:  req.CustomerName,
			CustomerEmail: req.CustomerEmail,
			CustomerPhone: req.CustomerPhone,
			Notes:         req.Notes,
			SeriesID:      parentID,
		}
		if i == 0 {
			appt.ID = parentID
			pattern := req.Pattern
			appt.Recurrence = &pattern
		}
		appts = append(appts, appt)
	}

	lastEnd := appts[len(appts)-1].End
	appts[0].SeriesEndDate = &lastEnd
	return appts, nil
}

// CancelSeries resolves the series any member belongs to and cancels every
// non-terminal appointment in it as one bulk operation. A repeated call
// cancels zero and is not an error.
func (s *DefaultBookingService) CancelSeries(ctx context.Context, appointmentID, reason string, source models.CancelSource) (int64, error) {
	appt, err := s.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return 0, err
	}
	if appt == nil {
		return 0, newError(CodeNotFound, "appointment %q not found", appointmentID)
	}
	if appt.SeriesID == "" {
		return 0, newError(CodeValidation, "appointment %q is not part of a series", appointmentID)
	}
	if source == "" {
		source = models.CancelByCustomer
	}

	count, err := s.Appointments.CancelSeries(ctx, appt.SeriesID, reason, source, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.afterWrite(ctx, appt.BusinessID)
	}

	utils.GetLogger().Info("series cancelled",
		zap.String("seriesID", appt.SeriesID),
		zap.Int64("cancelled", count))
	return count, nil
}
