package availability

import (
	"context"
	"fmt"

	"schedly/models"
)

// MaxRangeDays caps availability range queries. The cap is a policy guard
// against unbounded scans, not a computed invariant.
const MaxRangeDays = 90

// ErrRangeTooLong is returned when a range query exceeds MaxRangeDays.
var ErrRangeTooLong = fmt.Errorf("date range exceeds %d days", MaxRangeDays)

// RangeAvailability expands the day calculator over [startDate, endDate]
// inclusive, in date order.
func (c *Calculator) RangeAvailability(ctx context.Context, biz *models.Business, startDate, endDate string, cfg models.SlotGenerationConfig) ([]models.DayAvailability, error) {
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, err
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %s precedes start date %s", endDate, startDate)
	}
	if int(end.Sub(start).Hours()/24) >= MaxRangeDays {
		return nil, ErrRangeTooLong
	}

	var days []models.DayAvailability
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day, err := c.DayAvailability(ctx, biz, d.Format(DateLayout), cfg)
		if err != nil {
			return nil, err
		}
		days = append(days, *day)
	}
	return days, nil
}
