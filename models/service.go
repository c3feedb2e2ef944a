package models

import "time"

// Service is one bookable offering of a business. Optional fields are
// pointers: nil means "no override, fall back to the business default".
type Service struct {
	ID              string    `bson:"id" json:"id"`
	BusinessID      string    `bson:"businessId" json:"businessId"`
	Name            string    `bson:"name" json:"name"`
	DurationMinutes int       `bson:"durationMinutes" json:"durationMinutes"`
	BufferMinutes   *int      `bson:"bufferMinutes,omitempty" json:"bufferMinutes,omitempty"`
	RequireApproval *bool     `bson:"requireApproval,omitempty" json:"requireApproval,omitempty"`
	RequireDeposit  bool      `bson:"requireDeposit" json:"requireDeposit"`
	DepositAmount   float64   `bson:"depositAmount,omitempty" json:"depositAmount,omitempty"`
	MaxAdvanceDays  *int      `bson:"maxAdvanceDays,omitempty" json:"maxAdvanceDays,omitempty"`
	Active          bool      `bson:"active" json:"active"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}
