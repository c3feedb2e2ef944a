package availability

import "schedly/models"

// ConflictCheck is the result of testing a candidate interval against the
// existing appointments of one calendar day.
type ConflictCheck struct {
	HasConflict bool
	Reason      models.SlotReason // ReasonBooked or ReasonBuffer
	With        *models.Appointment
}

// DetectConflict tests the half-open candidate interval [start, end) in
// minutes-from-midnight against appointments already booked that day.
//
// Direct overlap is checked first. If the candidate clears every
// appointment directly, the buffer is applied: it extends outward from each
// existing appointment's edges only, never from the candidate, so a
// candidate is rejected when the gap between it and a neighboring
// appointment is smaller than the buffer even if the candidate itself
// carries no buffer. The first conflict found wins; callers surface its
// reason on the slot.
func DetectConflict(start, end, buffer int, appointments []models.Appointment) ConflictCheck {
	for i := range appointments {
		appt := &appointments[i]
		if appt.Status == models.StatusCancelled {
			continue
		}
		if start < appt.EndMinutes && appt.StartMinutes < end {
			return ConflictCheck{HasConflict: true, Reason: models.ReasonBooked, With: appt}
		}
	}
	if buffer <= 0 {
		return ConflictCheck{}
	}
	for i := range appointments {
		appt := &appointments[i]
		if appt.Status == models.StatusCancelled {
			continue
		}
		if start < appt.EndMinutes+buffer && appt.StartMinutes-buffer < end {
			return ConflictCheck{HasConflict: true, Reason: models.ReasonBuffer, With: appt}
		}
	}
	return ConflictCheck{}
}
