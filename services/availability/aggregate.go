package availability

import (
	"math"
	"sort"

	"schedly/models"
)

// Summarize aggregates slot counts across a list of computed days.
func Summarize(days []models.DayAvailability) models.AvailabilitySummary {
	var summary models.AvailabilitySummary
	for _, day := range days {
		for _, slot := range day.Slots {
			summary.TotalSlots++
			if slot.Available {
				summary.AvailableSlots++
			} else if slot.Reason == models.ReasonBooked || slot.Reason == models.ReasonBuffer {
				summary.BookedSlots++
			}
		}
	}
	if summary.TotalSlots > 0 {
		pct := float64(summary.AvailableSlots) / float64(summary.TotalSlots) * 100
		summary.PercentAvailable = math.Round(pct*10) / 10
	}
	return summary
}

// Heatmap maps each date to its booked-slot count, for utilization views.
func Heatmap(days []models.DayAvailability) map[string]int {
	heat := make(map[string]int, len(days))
	for _, day := range days {
		count := 0
		for _, slot := range day.Slots {
			if !slot.Available && (slot.Reason == models.ReasonBooked || slot.Reason == models.ReasonBuffer) {
				count++
			}
		}
		heat[day.Date] = count
	}
	return heat
}

// PeakHours aggregates appointment start hours into a histogram sorted by
// descending count; callers take the top K they want to display.
func PeakHours(appointments []models.Appointment) []models.HourCount {
	counts := make(map[int]int)
	for _, appt := range appointments {
		if appt.Status == models.StatusCancelled {
			continue
		}
		counts[appt.StartMinutes/60]++
	}
	histogram := make([]models.HourCount, 0, len(counts))
	for hour, count := range counts {
		histogram = append(histogram, models.HourCount{Hour: hour, Count: count})
	}
	sort.Slice(histogram, func(i, j int) bool {
		if histogram[i].Count != histogram[j].Count {
			return histogram[i].Count > histogram[j].Count
		}
		return histogram[i].Hour < histogram[j].Hour
	})
	return histogram
}

// NextAvailable scans computed days in date order and returns the first
// available slot. When preferredTime ("HH:MM") is given, the first
// available slot at or after that time within a day is preferred, falling
// back to the day's first available slot. Returns nil when no day in the
// range has an open slot.
func NextAvailable(days []models.DayAvailability, preferredTime string) *models.NextAvailableSlot {
	for _, day := range days {
		if !day.IsOpen {
			continue
		}
		var first *models.TimeSlot
		var preferred *models.TimeSlot
		for i := range day.Slots {
			slot := &day.Slots[i]
			if !slot.Available {
				continue
			}
			if first == nil {
				first = slot
			}
			if preferredTime != "" && slot.Start >= preferredTime {
				preferred = slot
				break
			}
		}
		pick := first
		if preferred != nil {
			pick = preferred
		}
		if pick != nil {
			return &models.NextAvailableSlot{Date: day.Date, Start: pick.Start, End: pick.End}
		}
	}
	return nil
}
