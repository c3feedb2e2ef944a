package models

import "time"

// BusinessHours is the recurring weekly schedule entry for one weekday.
// At most one record exists per weekday; a missing record means hours were
// never configured for that day, which is distinct from a closed day.
type BusinessHours struct {
	Weekday int    `bson:"weekday" json:"weekday"`        // 0=Sunday .. 6=Saturday
	Open    string `bson:"open,omitempty" json:"open"`    // "HH:MM"
	Close   string `bson:"close,omitempty" json:"close"`  // "HH:MM"
	Closed  bool   `bson:"closed" json:"closed"`
}

// SpecialDate overrides the recurring hours for one concrete calendar date.
// It always wins over BusinessHours for its date.
type SpecialDate struct {
	Date      string `bson:"date" json:"date"` // "YYYY-MM-DD"
	Name      string `bson:"name,omitempty" json:"name,omitempty"`
	Closed    bool   `bson:"closed" json:"closed"`
	Open      string `bson:"open,omitempty" json:"open,omitempty"`
	Close     string `bson:"close,omitempty" json:"close,omitempty"`
	Recurring bool   `bson:"recurring,omitempty" json:"recurring,omitempty"` // repeats yearly (month/day match)
}

// BusinessSettings is the business-level default booking configuration.
// Per-service overrides are merged on top by the rules resolver.
type BusinessSettings struct {
	BufferTimeMinutes   int  `bson:"bufferTimeMinutes" json:"bufferTimeMinutes"`
	SlotIntervalMinutes int  `bson:"slotIntervalMinutes" json:"slotIntervalMinutes"`
	AdvanceBookingDays  int  `bson:"advanceBookingDays" json:"advanceBookingDays"`
	SameDayBooking      bool `bson:"sameDayBooking" json:"sameDayBooking"`
	SameDayLeadTime     int  `bson:"sameDayLeadTime" json:"sameDayLeadTime"` // minutes
	RequireApproval     bool `bson:"requireApproval" json:"requireApproval"`
}

// Business is the bookable entity: its timezone is authoritative for every
// "what day/time is it now" decision made by the engine.
type Business struct {
	ID           string           `bson:"id" json:"id"`
	Name         string           `bson:"name" json:"name"`
	Slug         string           `bson:"slug" json:"slug"`
	Timezone     string           `bson:"timezone" json:"timezone"` // IANA name, e.g. "America/New_York"
	Hours        []BusinessHours  `bson:"hours,omitempty" json:"hours"`
	SpecialDates []SpecialDate    `bson:"specialDates,omitempty" json:"specialDates,omitempty"`
	Settings     BusinessSettings `bson:"settings" json:"settings"`
	CreatedAt    time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time        `bson:"updatedAt" json:"updatedAt"`
}

// HoursFor returns the configured hours for a weekday, or nil when the
// weekday was never configured.
func (b *Business) HoursFor(weekday int) *BusinessHours {
	for i := range b.Hours {
		if b.Hours[i].Weekday == weekday {
			return &b.Hours[i]
		}
	}
	return nil
}

// SpecialDateFor returns the override applying to a "YYYY-MM-DD" date, if
// any. Yearly-recurring overrides match on month and day.
func (b *Business) SpecialDateFor(date string) *SpecialDate {
	for i := range b.SpecialDates {
		sd := &b.SpecialDates[i]
		if sd.Date == date {
			return sd
		}
		if sd.Recurring && len(sd.Date) == 10 && len(date) == 10 && sd.Date[5:] == date[5:] {
			return sd
		}
	}
	return nil
}
