package models

import "fmt"

// PatternType tags the recurrence pattern union.
type PatternType string

const (
	PatternConsecutive PatternType = "consecutive"
	PatternWeekly      PatternType = "weekly"
	PatternCustom      PatternType = "custom"
)

// RecurrencePattern describes how a multi-day series expands into dates.
// Exactly the fields of the tagged variant are consulted:
//
//	consecutive: Days
//	weekly:      Weekdays, Weeks
//	custom:      Dates
type RecurrencePattern struct {
	Type     PatternType `bson:"type" json:"type"`
	Days     int         `bson:"days,omitempty" json:"days,omitempty"`
	Weekdays []int       `bson:"weekdays,omitempty" json:"weekdays,omitempty"` // 0=Sunday .. 6=Saturday
	Weeks    int         `bson:"weeks,omitempty" json:"weeks,omitempty"`
	Dates    []string    `bson:"dates,omitempty" json:"dates,omitempty"` // "YYYY-MM-DD"
}

// Validate checks the pattern at the boundary so internal logic never sees a
// malformed variant.
func (p RecurrencePattern) Validate() error {
	switch p.Type {
	case PatternConsecutive:
		if p.Days < 1 {
			return fmt.Errorf("consecutive pattern requires days >= 1")
		}
	case PatternWeekly:
		if len(p.Weekdays) == 0 {
			return fmt.Errorf("weekly pattern requires at least one weekday")
		}
		for _, wd := range p.Weekdays {
			if wd < 0 || wd > 6 {
				return fmt.Errorf("weekday %d out of range 0..6", wd)
			}
		}
		if p.Weeks < 1 {
			return fmt.Errorf("weekly pattern requires weeks >= 1")
		}
	case PatternCustom:
		if len(p.Dates) == 0 {
			return fmt.Errorf("custom pattern requires at least one date")
		}
	default:
		return fmt.Errorf("unknown pattern type %q", p.Type)
	}
	return nil
}
