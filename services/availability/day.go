package availability

import (
	"context"
	"fmt"
	"time"

	"schedly/models"
)

// AppointmentSource supplies the booked appointments the calculator scans
// for conflicts. The mongo appointment repository satisfies it; tests use
// an in-memory fake.
type AppointmentSource interface {
	// ListByBusinessDate returns all non-cancelled appointments of a
	// business on a "YYYY-MM-DD" date.
	ListByBusinessDate(ctx context.Context, businessID, date string) ([]models.Appointment, error)
}

// Calculator computes slot-level availability for a business. It is
// stateless per invocation; Now is injectable for tests and defaults to
// time.Now.
type Calculator struct {
	Appointments AppointmentSource
	Now          func() time.Time
}

func (c *Calculator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// dayHours is the resolved effective opening of a single date.
type dayHours struct {
	isOpen      bool
	open, close int // minutes from midnight, valid when isOpen
	reason      models.SlotReason
	specialName string
}

// resolveDayHours applies the precedence rules for one date: a special-date
// override always wins, then recurring weekly hours, then closed.
func resolveDayHours(biz *models.Business, date string) (dayHours, error) {
	d, err := ParseDate(date)
	if err != nil {
		return dayHours{}, err
	}

	if sd := biz.SpecialDateFor(date); sd != nil {
		if sd.Closed {
			return dayHours{isOpen: false, reason: models.ReasonSpecialDate, specialName: sd.Name}, nil
		}
		if sd.Open != "" && sd.Close != "" {
			open, err := TimeToMinutes(sd.Open)
			if err != nil {
				return dayHours{}, fmt.Errorf("special date %s: %w", date, err)
			}
			close, err := TimeToMinutes(sd.Close)
			if err != nil {
				return dayHours{}, fmt.Errorf("special date %s: %w", date, err)
			}
			return dayHours{isOpen: true, open: open, close: close, specialName: sd.Name}, nil
		}
		// Override present but without explicit hours: fall through to the
		// weekly schedule for this weekday, keeping the name for display.
	}

	hours := biz.HoursFor(int(d.Weekday()))
	if hours == nil {
		return dayHours{isOpen: false, reason: models.ReasonNoHours}, nil
	}
	if hours.Closed {
		return dayHours{isOpen: false, reason: models.ReasonRegularClose}, nil
	}
	open, err := TimeToMinutes(hours.Open)
	if err != nil {
		return dayHours{}, fmt.Errorf("business hours weekday %d: %w", hours.Weekday, err)
	}
	close, err := TimeToMinutes(hours.Close)
	if err != nil {
		return dayHours{}, fmt.Errorf("business hours weekday %d: %w", hours.Weekday, err)
	}
	return dayHours{isOpen: true, open: open, close: close}, nil
}

// DayAvailability resolves one date's effective hours and generates its
// full slot grid, ascending by start time.
func (c *Calculator) DayAvailability(ctx context.Context, biz *models.Business, date string, cfg models.SlotGenerationConfig) (*models.DayAvailability, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	day := &models.DayAvailability{
		Date:    date,
		Weekday: int(d.Weekday()),
		Slots:   []models.TimeSlot{},
	}

	hours, err := resolveDayHours(biz, date)
	if err != nil {
		return nil, err
	}
	day.SpecialDateName = hours.specialName
	if !hours.isOpen {
		day.IsOpen = false
		day.Reason = hours.reason
		return day, nil
	}
	day.IsOpen = true
	day.Open = MinutesToTime(hours.open)
	day.Close = MinutesToTime(hours.close)

	appointments, err := c.Appointments.ListByBusinessDate(ctx, biz.ID, date)
	if err != nil {
		return nil, fmt.Errorf("fetching appointments for %s: %w", date, err)
	}

	today, err := TodayInTimezone(biz.Timezone, c.now())
	if err != nil {
		return nil, err
	}
	nowMinutes := 0
	if date == today {
		nowMinutes, err = CurrentMinutesInTimezone(biz.Timezone, c.now())
		if err != nil {
			return nil, err
		}
	}

	for start := hours.open; start+cfg.ServiceDuration <= hours.close; start += cfg.SlotInterval {
		end := start + cfg.ServiceDuration
		slot := models.TimeSlot{
			Start:     MinutesToTime(start),
			End:       MinutesToTime(end),
			Available: true,
		}

		switch {
		case date < today:
			slot.Available = false
			slot.Reason = models.ReasonPast
		case date == today && (!cfg.SameDayBooking || start < nowMinutes+cfg.SameDayLeadTime):
			slot.Available = false
			slot.Reason = models.ReasonPast
		default:
			if check := DetectConflict(start, end, cfg.BufferTime, appointments); check.HasConflict {
				slot.Available = false
				slot.Reason = check.Reason
			}
		}
		day.Slots = append(day.Slots, slot)
	}

	return day, nil
}

// SlotCheck is the result of a targeted single-slot availability test.
type SlotCheck struct {
	Available       bool                 `json:"available"`
	Reason          models.SlotReason    `json:"reason,omitempty"`
	Conflict        *models.ConflictInfo `json:"conflict,omitempty"`
	Open            string               `json:"open,omitempty"`
	Close           string               `json:"close,omitempty"`
	SpecialDateName string               `json:"specialDateName,omitempty"`
}

// CheckSlot tests a single candidate interval directly, without building
// the whole grid. excludeID removes one appointment from the conflict scan,
// which reschedule uses to ignore the appointment's own current record.
func (c *Calculator) CheckSlot(ctx context.Context, biz *models.Business, date string, startMinutes, duration int, cfg models.SlotGenerationConfig, excludeID string) (*SlotCheck, error) {
	hours, err := resolveDayHours(biz, date)
	if err != nil {
		return nil, err
	}
	if !hours.isOpen {
		return &SlotCheck{Available: false, Reason: hours.reason, SpecialDateName: hours.specialName}, nil
	}

	check := &SlotCheck{
		Open:            MinutesToTime(hours.open),
		Close:           MinutesToTime(hours.close),
		SpecialDateName: hours.specialName,
	}
	end := startMinutes + duration
	if startMinutes < hours.open || end > hours.close {
		check.Reason = models.ReasonClosed
		return check, nil
	}

	today, err := TodayInTimezone(biz.Timezone, c.now())
	if err != nil {
		return nil, err
	}
	if date < today {
		check.Reason = models.ReasonPast
		return check, nil
	}
	if date == today {
		nowMinutes, err := CurrentMinutesInTimezone(biz.Timezone, c.now())
		if err != nil {
			return nil, err
		}
		if !cfg.SameDayBooking || startMinutes < nowMinutes+cfg.SameDayLeadTime {
			check.Reason = models.ReasonPast
			return check, nil
		}
	}

	appointments, err := c.Appointments.ListByBusinessDate(ctx, biz.ID, date)
	if err != nil {
		return nil, fmt.Errorf("fetching appointments for %s: %w", date, err)
	}
	if excludeID != "" {
		kept := appointments[:0]
		for _, a := range appointments {
			if a.ID != excludeID {
				kept = append(kept, a)
			}
		}
		appointments = kept
	}

	if conflict := DetectConflict(startMinutes, end, cfg.BufferTime, appointments); conflict.HasConflict {
		check.Reason = conflict.Reason
		check.Conflict = &models.ConflictInfo{
			AppointmentID: conflict.With.ID,
			Date:          date,
			Start:         MinutesToTime(conflict.With.StartMinutes),
			End:           MinutesToTime(conflict.With.EndMinutes),
			Reason:        conflict.Reason,
		}
		return check, nil
	}

	check.Available = true
	return check, nil
}

// BookingWindowFor resolves the earliest and latest bookable date for a
// business under the given effective configuration.
func (c *Calculator) BookingWindowFor(biz *models.Business, cfg models.SlotGenerationConfig) (models.BookingWindow, error) {
	today, err := TodayInTimezone(biz.Timezone, c.now())
	if err != nil {
		return models.BookingWindow{}, err
	}
	d, _ := ParseDate(today)
	earliest := d
	if !cfg.SameDayBooking {
		earliest = d.AddDate(0, 0, 1)
	}
	latest := d.AddDate(0, 0, cfg.AdvanceBookingDays)
	return models.BookingWindow{
		EarliestDate: earliest.Format(DateLayout),
		LatestDate:   latest.Format(DateLayout),
	}, nil
}
