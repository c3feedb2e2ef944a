package availability

import (
	"context"
	"errors"
	"testing"
)

func TestRangeAvailabilityInclusive(t *testing.T) {
	calc := testCalc(nil, farPast)
	days, err := calc.RangeAvailability(context.Background(), weekdayBusiness(), "2026-03-02", "2026-03-04", hourlyConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("got %d days, want 3", len(days))
	}
	if days[0].Date != "2026-03-02" || days[2].Date != "2026-03-04" {
		t.Errorf("range edges = %s..%s", days[0].Date, days[2].Date)
	}
}

func TestRangeAvailabilitySingleDay(t *testing.T) {
	calc := testCalc(nil, farPast)
	days, err := calc.RangeAvailability(context.Background(), weekdayBusiness(), "2026-03-02", "2026-03-02", hourlyConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("got %d days, want 1", len(days))
	}
}

func TestRangeAvailabilityTooLong(t *testing.T) {
	calc := testCalc(nil, farPast)

	// 90 days inclusive is the last accepted span.
	if _, err := calc.RangeAvailability(context.Background(), weekdayBusiness(), "2026-03-01", "2026-05-29", hourlyConfig()); err != nil {
		t.Errorf("90-day range rejected: %v", err)
	}
	_, err := calc.RangeAvailability(context.Background(), weekdayBusiness(), "2026-03-01", "2026-05-30", hourlyConfig())
	if !errors.Is(err, ErrRangeTooLong) {
		t.Errorf("91-day range: got %v, want ErrRangeTooLong", err)
	}
}

func TestRangeAvailabilityInvertedRange(t *testing.T) {
	calc := testCalc(nil, farPast)
	if _, err := calc.RangeAvailability(context.Background(), weekdayBusiness(), "2026-03-04", "2026-03-02", hourlyConfig()); err == nil {
		t.Error("expected error for end before start")
	}
}
