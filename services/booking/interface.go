package booking

import (
	"context"
	"time"

	appointmentRepo "schedly/database/repository/appointment"
	businessRepo "schedly/database/repository/business"
	customerRepo "schedly/database/repository/customer"
	"schedly/models"
	"schedly/services/availability"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// CreateRequest carries the inputs of a single-appointment create.
type CreateRequest struct {
	BusinessID    string `json:"businessId"`
	ServiceID     string `json:"serviceId"`
	Date          string `json:"date"`      // "YYYY-MM-DD"
	StartTime     string `json:"startTime"` // "HH:MM"
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// RescheduleRequest moves an existing appointment to a new interval.
type RescheduleRequest struct {
	AppointmentID string `json:"appointmentId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
	Reason        string `json:"reason,omitempty"`
}

// CancelRequest cancels a single appointment.
type CancelRequest struct {
	AppointmentID string              `json:"appointmentId"`
	Reason        string              `json:"reason,omitempty"`
	Source        models.CancelSource `json:"source,omitempty"`
}

// SeriesRequest creates a multi-day series from a declarative pattern.
type SeriesRequest struct {
	BusinessID    string                   `json:"businessId"`
	ServiceID     string                   `json:"serviceId"`
	StartDate     string                   `json:"startDate"`
	StartTime     string                   `json:"startTime"`
	Pattern       models.RecurrencePattern `json:"pattern"`
	CustomerName  string                   `json:"customerName"`
	CustomerEmail string                   `json:"customerEmail"`
	CustomerPhone string                   `json:"customerPhone,omitempty"`
	Notes         string                   `json:"notes,omitempty"`
}

// SeriesMember is one created occurrence of a series.
type SeriesMember struct {
	AppointmentID string `json:"appointmentId"`
	Date          string `json:"date"`
	StartTime     string `json:"startTime"`
}

// BookingService is the appointment lifecycle manager. Business-rule
// rejections are returned as *Error values; only infrastructure failures
// surface as plain errors.
type BookingService interface {
	CreateAppointment(ctx context.Context, req CreateRequest) (*models.Appointment, error)
	RescheduleAppointment(ctx context.Context, req RescheduleRequest) (*models.Appointment, error)
	CancelAppointment(ctx context.Context, req CancelRequest) (*models.Appointment, error)
	CreateSeries(ctx context.Context, req SeriesRequest) ([]SeriesMember, error)
	CancelSeries(ctx context.Context, appointmentID, reason string, source models.CancelSource) (int64, error)
}

// DefaultBookingService implements BookingService.
type DefaultBookingService struct {
	Businesses   businessRepo.BusinessRepository
	Appointments appointmentRepo.AppointmentRepository
	Customers    customerRepo.CustomerRepository
	Availability *availability.Calculator

	// Optional collaborators: nil disables caching / reminder scheduling.
	Cache      *redis.Client
	TaskClient *asynq.Client

	ReminderLead time.Duration
	Now          func() time.Time
}

func (s *DefaultBookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
