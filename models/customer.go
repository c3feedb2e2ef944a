package models

import "time"

// Customer is a booking contact, scoped to one business and matched by email.
type Customer struct {
	ID                string    `bson:"id" json:"id"`
	BusinessID        string    `bson:"businessId" json:"businessId"`
	Name              string    `bson:"name" json:"name"`
	Email             string    `bson:"email" json:"email"`
	Phone             string    `bson:"phone,omitempty" json:"phone,omitempty"`
	TotalBookings     int       `bson:"totalBookings" json:"totalBookings"`
	CancelledBookings int       `bson:"cancelledBookings" json:"cancelledBookings"`
	CreatedAt         time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time `bson:"updatedAt" json:"updatedAt"`
}
