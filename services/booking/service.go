package booking

import (
	"context"
	"errors"
	"fmt"

	appointmentRepo "schedly/database/repository/appointment"
	"schedly/models"
	"schedly/services/availability"
	"schedly/services/tasks"
	"schedly/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// loadBusiness resolves a business by id first, then by slug.
func (s *DefaultBookingService) loadBusiness(ctx context.Context, key string) (*models.Business, error) {
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
		return nil, newError(CodeNotFound, "business %q not found", key)
	}
	return biz, nil
}

// checkAdvanceWindow rejects dates outside [today, today+advanceDays] in
// the business timezone.
func (s *DefaultBookingService) checkAdvanceWindow(biz *models.Business, date string, cfg models.SlotGenerationConfig) error {
	today, err := availability.TodayInTimezone(biz.Timezone, s.now())
	if err != nil {
		return newError(CodeValidation, "%v", err)
	}
	if date < today {
		return newError(CodePastTime, "date %s is in the past", date)
	}
	t, _ := availability.ParseDate(today)
	latest := t.AddDate(0, 0, cfg.AdvanceBookingDays).Format(availability.DateLayout)
	if date > latest {
		return newError(CodeAdvanceWindow, "date %s exceeds the %d-day booking window", date, cfg.AdvanceBookingDays)
	}
	return nil
}

// rejectionFor maps an unavailable slot check to the structured error the
// caller sees.
func rejectionFor(date string, check *availability.SlotCheck) *Error {
	switch check.Reason {
	case models.ReasonSpecialDate, models.ReasonNoHours, models.ReasonRegularClose:
		e := newError(CodeClosedDay, "business is closed on %s", date)
		if check.SpecialDateName != "" {
			e.Message = fmt.Sprintf("business is closed on %s (%s)", date, check.SpecialDateName)
		}
		return e
	case models.ReasonClosed:
		return newError(CodeOutOfHours, "requested time falls outside opening hours (%s-%s)", check.Open, check.Close)
	case models.ReasonPast:
		return newError(CodePastTime, "requested time on %s is no longer bookable", date)
	case models.ReasonBooked, models.ReasonBuffer:
		e := newError(CodeConflict, "requested time conflicts with an existing appointment")
		if check.Conflict != nil {
			e.Conflicts = []models.ConflictInfo{*check.Conflict}
		}
		return e
	default:
		return newError(CodeValidation, "slot unavailable on %s", date)
	}
}

// conflictErrorFrom converts the repository's transactional conflict into
// the structured booking error.
func conflictErrorFrom(confErr *appointmentRepo.ConflictError) *Error {
	e := newError(CodeConflict, "requested time conflicts with an existing appointment")
	e.Conflicts = []models.ConflictInfo{{
		AppointmentID: confErr.Appointment.ID,
		Date:          confErr.Appointment.Date,
		Start:         availability.MinutesToTime(confErr.Appointment.StartMinutes),
		End:           availability.MinutesToTime(confErr.Appointment.EndMinutes),
		Reason:        confErr.Reason,
	}}
	return e
}

// afterWrite invalidates cached availability for the business. Failures are
// logged only; the booking itself already succeeded.
func (s *DefaultBookingService) afterWrite(ctx context.Context, businessID string) {
	if s.Cache == nil {
		return
	}
	if err := utils.InvalidateAvailability(ctx, s.Cache, businessID); err != nil {
		utils.GetLogger().Warn("failed to invalidate availability cache",
			zap.String("businessID", businessID), zap.Error(err))
	}
}

// scheduleReminder enqueues the appointment reminder task. Best effort.
func (s *DefaultBookingService) scheduleReminder(appt *models.Appointment) {
	if s.TaskClient == nil || s.ReminderLead <= 0 {
		return
	}
	fireAt := appt.Start.Add(-s.ReminderLead)
	if !fireAt.After(s.now()) {
		return
	}
	task, opts, err := tasks.NewReminderTask(appt.ID, fireAt)
	if err == nil {
		_, err = s.TaskClient.Enqueue(task, opts...)
	}
	if err != nil {
		utils.GetLogger().Warn("failed to schedule reminder",
			zap.String("appointmentID", appt.ID), zap.Error(err))
	}
}

// CreateAppointment validates the requested slot against business rules,
// runs the conflict check and insert inside one transaction, and records
// the customer.
func (s *DefaultBookingService) CreateAppointment(ctx context.Context, req CreateRequest) (*models.Appointment, error) {
	if req.BusinessID == "" || req.ServiceID == "" || req.Date == "" || req.StartTime == "" {
		return nil, newError(CodeValidation, "businessId, serviceId, date and startTime are required")
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
	if _, err := availability.ParseDate(req.Date); err != nil {
		return nil, newError(CodeValidation, "%v", err)
	}
	if err := s.checkAdvanceWindow(biz, req.Date, cfg); err != nil {
		return nil, err
	}

	check, err := s.Availability.CheckSlot(ctx, biz, req.Date, startMinutes, cfg.ServiceDuration, cfg, "")
	if err != nil {
		return nil, err
	}
	if !check.Available {
		return nil, rejectionFor(req.Date, check)
	}

	appt, err := s.buildAppointment(biz, svc, req, startMinutes, cfg)
	if err != nil {
		return nil, err
	}

	if err := s.Appointments.CreateWithConflictCheck(ctx, appt, cfg.BufferTime); err != nil {
		var confErr *appointmentRepo.ConflictError
		if errors.As(err, &confErr) {
			return nil, conflictErrorFrom(confErr)
		}
		return nil, err
	}

	appt.CustomerID = s.recordCustomer(ctx, biz.ID, req.CustomerName, req.CustomerEmail, req.CustomerPhone, []string{appt.ID}, 1)
	s.afterWrite(ctx, biz.ID)
	s.scheduleReminder(appt)

	utils.GetLogger().Info("appointment created",
		zap.String("appointmentID", appt.ID),
		zap.String("businessID", biz.ID),
		zap.String("date", appt.Date),
		zap.String("status", string(appt.Status)))
	return appt, nil
}

// recordCustomer upserts the customer record once the booking write has
// committed to the store, links the new appointments to it and bumps the
// booking counter. The appointments already carry the full contact
// snapshot, so customer-side failures are logged only.
func (s *DefaultBookingService) recordCustomer(ctx context.Context, businessID, name, email, phone string, appointmentIDs []string, count int) string {
	customer, err := s.Customers.Upsert(ctx, businessID, name, email, phone)
	if err != nil {
		utils.GetLogger().Warn("failed to record customer",
			zap.String("businessID", businessID), zap.Error(err))
		return ""
	}
	if err := s.Appointments.SetCustomer(ctx, appointmentIDs, customer.ID); err != nil {
		utils.GetLogger().Warn("failed to link customer to appointments",
			zap.String("customerID", customer.ID), zap.Error(err))
	}
	if err := s.Customers.IncrementBookings(ctx, customer.ID, count); err != nil {
		utils.GetLogger().Warn("failed to increment customer bookings",
			zap.String("customerID", customer.ID), zap.Error(err))
	}
	return customer.ID
}

func (s *DefaultBookingService) buildAppointment(biz *models.Business, svc *models.Service, req CreateRequest, startMinutes int, cfg models.SlotGenerationConfig) (*models.Appointment, error) {
	endMinutes := startMinutes + cfg.ServiceDuration
	start, err := availability.AbsoluteTime(req.Date, startMinutes, biz.Timezone)
	if err != nil {
		return nil, err
	}

	status := models.StatusConfirmed
	if cfg.RequireApproval {
		status = models.StatusPending
	}
	return &models.Appointment{
		ID:            uuid.New().String(),
		BusinessID:    biz.ID,
		ServiceID:     svc.ID,
		Date:          req.Date,
		StartMinutes:  startMinutes,
		EndMinutes:    endMinutes,
		Start:         start,
		End:           start.Add(minutesDuration(cfg.ServiceDuration)),
		Duration:      cfg.ServiceDuration,
		Timezone:      biz.Timezone,
		Status:        status,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
	}, nil
}

// RescheduleAppointment moves a non-terminal appointment to a new interval,
// forcing its status to CONFIRMED and preserving the original instant in
// the audit fields.
func (s *DefaultBookingService) RescheduleAppointment(ctx context.Context, req RescheduleRequest) (*models.Appointment, error) {
	if req.AppointmentID == "" || req.Date == "" || req.StartTime == "" {
		return nil, newError(CodeValidation, "appointmentId, date and startTime are required")
	}

	appt, err := s.Appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, newError(CodeNotFound, "appointment %q not found", req.AppointmentID)
	}
	if appt.Status.Terminal() {
		return nil, newError(CodeInvalidTransition, "cannot reschedule a %s appointment", appt.Status)
	}

	biz, err := s.loadBusiness(ctx, appt.BusinessID)
	if err != nil {
		return nil, err
	}
	svc, err := s.Businesses.GetService(ctx, biz.ID, appt.ServiceID)
	if err != nil {
		return nil, err
	}
	cfg := availability.ResolveBookingRules(biz, svc, appt.Duration)

	startMinutes, err := availability.TimeToMinutes(req.StartTime)
	if err != nil {
		return nil, newError(CodeValidation, "%v", err)
	}
	if _, err := availability.ParseDate(req.Date); err != nil {
		return nil, newError(CodeValidation, "%v", err)
	}
	if err := s.checkAdvanceWindow(biz, req.Date, cfg); err != nil {
		return nil, err
	}

	// The appointment's own current record is excluded from the scan.
	check, err := s.Availability.CheckSlot(ctx, biz, req.Date, startMinutes, appt.Duration, cfg, appt.ID)
	if err != nil {
		return nil, err
	}
	if !check.Available {
		return nil, rejectionFor(req.Date, check)
	}

	start, err := availability.AbsoluteTime(req.Date, startMinutes, biz.Timezone)
	if err != nil {
		return nil, err
	}
	now := s.now()
	previousStart := appt.Start

	appt.PreviousStatus = appt.Status
	appt.Date = req.Date
	appt.StartMinutes = startMinutes
	appt.EndMinutes = startMinutes + appt.Duration
	appt.Start = start
	appt.End = start.Add(minutesDuration(appt.Duration))
	appt.Status = models.StatusConfirmed
	appt.RescheduledFrom = &previousStart
	appt.RescheduleReason = req.Reason
	appt.RescheduledAt = &now

	if err := s.Appointments.RescheduleWithConflictCheck(ctx, appt, cfg.BufferTime); err != nil {
		var confErr *appointmentRepo.ConflictError
		if errors.As(err, &confErr) {
			return nil, conflictErrorFrom(confErr)
		}
		return nil, err
	}
	s.afterWrite(ctx, biz.ID)

	utils.GetLogger().Info("appointment rescheduled",
		zap.String("appointmentID", appt.ID),
		zap.String("date", appt.Date))
	return appt, nil
}

// CancelAppointment transitions a non-terminal appointment to CANCELLED and
// records who cancelled it and why.
func (s *DefaultBookingService) CancelAppointment(ctx context.Context, req CancelRequest) (*models.Appointment, error) {
	if req.AppointmentID == "" {
		return nil, newError(CodeValidation, "appointmentId is required")
	}

	appt, err := s.Appointments.GetByID(ctx, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, newError(CodeNotFound, "appointment %q not found", req.AppointmentID)
	}
	if appt.Status.Terminal() {
		return nil, newError(CodeInvalidTransition, "cannot cancel a %s appointment", appt.Status)
	}

	source := req.Source
	if source == "" {
		source = models.CancelByCustomer
	}
	now := s.now()
	if err := s.Appointments.Cancel(ctx, appt.ID, appt.Status, req.Reason, source, now); err != nil {
		return nil, err
	}
	if appt.CustomerID != "" {
		if err := s.Customers.IncrementCancelled(ctx, appt.CustomerID); err != nil {
			utils.GetLogger().Warn("failed to increment customer cancellations",
				zap.String("customerID", appt.CustomerID), zap.Error(err))
		}
	}
	s.afterWrite(ctx, appt.BusinessID)

	appt.PreviousStatus = appt.Status
	appt.Status = models.StatusCancelled
	appt.CancelReason = req.Reason
	appt.CancelSource = source
	appt.CancelledAt = &now

	utils.GetLogger().Info("appointment cancelled",
		zap.String("appointmentID", appt.ID),
		zap.String("source", string(source)))
	return appt, nil
}
