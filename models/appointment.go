package models

import "time"

// AppointmentStatus enumerates the appointment state machine.
type AppointmentStatus string

const (
	StatusPending     AppointmentStatus = "PENDING"
	StatusConfirmed   AppointmentStatus = "CONFIRMED"
	StatusCompleted   AppointmentStatus = "COMPLETED"
	StatusCancelled   AppointmentStatus = "CANCELLED"
	StatusNoShow      AppointmentStatus = "NO_SHOW"
	StatusRescheduled AppointmentStatus = "RESCHEDULED"
)

// Terminal reports whether the status blocks further reschedule/cancel.
func (s AppointmentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CancelSource identifies who initiated a cancellation.
type CancelSource string

const (
	CancelByCustomer CancelSource = "CUSTOMER"
	CancelByBusiness CancelSource = "BUSINESS"
	CancelBySystem   CancelSource = "SYSTEM"
)

// Appointment is a confirmed or pending reservation of one slot.
//
// Start/End are absolute instants; Date plus StartMinutes/EndMinutes are the
// same interval denormalized into the business timezone so that one-day
// conflict scans stay a single indexed query.
type Appointment struct {
	ID         string `bson:"id" json:"id"`
	BusinessID string `bson:"businessId" json:"businessId"`
	ServiceID  string `bson:"serviceId" json:"serviceId"`
	CustomerID string `bson:"customerId" json:"customerId"`

	Date         string    `bson:"date" json:"date"` // "YYYY-MM-DD" in business timezone
	StartMinutes int       `bson:"startMinutes" json:"startMinutes"`
	EndMinutes   int       `bson:"endMinutes" json:"endMinutes"`
	Start        time.Time `bson:"start" json:"start"`
	End          time.Time `bson:"end" json:"end"`
	Duration     int       `bson:"duration" json:"duration"` // minutes
	Timezone     string    `bson:"timezone" json:"timezone"` // snapshot of the business timezone

	Status AppointmentStatus `bson:"status" json:"status"`

	// Customer contact snapshot at booking time.
	CustomerName  string `bson:"customerName" json:"customerName"`
	CustomerEmail string `bson:"customerEmail" json:"customerEmail"`
	CustomerPhone string `bson:"customerPhone,omitempty" json:"customerPhone,omitempty"`
	Notes         string `bson:"notes,omitempty" json:"notes,omitempty"`

	// Multi-day series fields. Every member shares SeriesID (the parent's
	// appointment id); only the parent carries Recurrence and SeriesEndDate.
	SeriesID      string             `bson:"seriesId,omitempty" json:"seriesId,omitempty"`
	Recurrence    *RecurrencePattern `bson:"recurrence,omitempty" json:"recurrence,omitempty"`
	SeriesEndDate *time.Time         `bson:"seriesEndDate,omitempty" json:"seriesEndDate,omitempty"`

	// Audit trail.
	PreviousStatus   AppointmentStatus `bson:"previousStatus,omitempty" json:"previousStatus,omitempty"`
	CancelReason     string            `bson:"cancelReason,omitempty" json:"cancelReason,omitempty"`
	CancelSource     CancelSource      `bson:"cancelSource,omitempty" json:"cancelSource,omitempty"`
	CancelledAt      *time.Time        `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
	RescheduledFrom  *time.Time        `bson:"rescheduledFrom,omitempty" json:"rescheduledFrom,omitempty"`
	RescheduleReason string            `bson:"rescheduleReason,omitempty" json:"rescheduleReason,omitempty"`
	RescheduledAt    *time.Time        `bson:"rescheduledAt,omitempty" json:"rescheduledAt,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsSeriesParent reports whether this appointment anchors a multi-day series.
func (a *Appointment) IsSeriesParent() bool {
	return a.SeriesID != "" && a.SeriesID == a.ID
}
