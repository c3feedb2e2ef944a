package models

// SlotReason explains why a slot (or a whole day) is not bookable.
type SlotReason string

const (
	ReasonClosed       SlotReason = "closed"
	ReasonSpecialDate  SlotReason = "special_date"
	ReasonBooked       SlotReason = "booked"
	ReasonBuffer       SlotReason = "buffer"
	ReasonPast         SlotReason = "past"
	ReasonBreak        SlotReason = "break"
	ReasonNoHours      SlotReason = "no_hours_configured"
	ReasonRegularClose SlotReason = "regular_closed"
)

// TimeSlot is one candidate bookable interval in a day's slot grid.
type TimeSlot struct {
	Start     string     `json:"start"` // "HH:MM"
	End       string     `json:"end"`
	Available bool       `json:"available"`
	Reason    SlotReason `json:"reason,omitempty"` // set when Available is false
}

// DayAvailability is the computed availability of one calendar date.
// Slots are always sorted ascending by start time; the next-available
// search and earliest-first display rely on that order.
type DayAvailability struct {
	Date            string     `json:"date"`
	Weekday         int        `json:"weekday"`
	IsOpen          bool       `json:"isOpen"`
	Reason          SlotReason `json:"reason,omitempty"`
	SpecialDateName string     `json:"specialDateName,omitempty"`
	Open            string     `json:"open,omitempty"`
	Close           string     `json:"close,omitempty"`
	Slots           []TimeSlot `json:"slots"`
}

// SlotGenerationConfig is the effective booking configuration for one
// (business, service) pair after the rules resolver has merged defaults,
// business settings and service overrides. Every field is concrete.
type SlotGenerationConfig struct {
	ServiceDuration    int  `json:"serviceDuration"` // minutes
	BufferTime         int  `json:"bufferTime"`      // minutes
	SlotInterval       int  `json:"slotInterval"`    // minutes
	AdvanceBookingDays int  `json:"advanceBookingDays"`
	SameDayBooking     bool `json:"sameDayBooking"`
	SameDayLeadTime    int  `json:"sameDayLeadTime"` // minutes
	RequireApproval    bool `json:"requireApproval"`
	RequireDeposit     bool `json:"requireDeposit"`
}

// AvailabilitySummary aggregates slot counts across a set of days.
type AvailabilitySummary struct {
	TotalSlots       int     `json:"totalSlots"`
	AvailableSlots   int     `json:"availableSlots"`
	BookedSlots      int     `json:"bookedSlots"`
	PercentAvailable float64 `json:"percentAvailable"`
}

// HourCount is one bucket of the peak-hours histogram.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// NextAvailableSlot is the result of a next-available search.
type NextAvailableSlot struct {
	Date  string `json:"date"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// ConflictInfo identifies the appointment interval that blocked a candidate.
type ConflictInfo struct {
	AppointmentID string     `json:"appointmentId,omitempty"`
	Date          string     `json:"date,omitempty"`
	Start         string     `json:"start"`
	End           string     `json:"end"`
	Reason        SlotReason `json:"reason"`
}

// BookingWindow is the resolved earliest/latest bookable date for a query.
type BookingWindow struct {
	EarliestDate string `json:"earliestDate"`
	LatestDate   string `json:"latestDate"`
}
