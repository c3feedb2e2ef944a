// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"schedly/database"
	"schedly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// ConflictError is returned by the transactional write paths when the
// in-transaction conflict re-check finds an overlapping appointment. It
// carries the blocking record so callers can report which interval failed.
type ConflictError struct {
	Appointment models.Appointment
	Reason      models.SlotReason
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("interval conflicts with appointment %s (%s)", e.Appointment.ID, e.Reason)
}

// AppointmentRepository persists appointments. The write paths that depend
// on a prior read (create, reschedule, series create) run the conflict
// check and the write inside a single mongo transaction so two concurrent
// conflicting requests cannot both succeed.
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	ListByBusinessDate(ctx context.Context, businessID, date string) ([]models.Appointment, error)
	ListByBusinessRange(ctx context.Context, businessID, startDate, endDate string) ([]models.Appointment, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error)
	GetSeries(ctx context.Context, seriesID string) ([]models.Appointment, error)

	CreateWithConflictCheck(ctx context.Context, appt *models.Appointment, buffer int) error
	RescheduleWithConflictCheck(ctx context.Context, appt *models.Appointment, buffer int) error
	CreateSeriesTransactionally(ctx context.Context, appts []models.Appointment, buffer int) error

	SetCustomer(ctx context.Context, ids []string, customerID string) error
	Cancel(ctx context.Context, id string, previous models.AppointmentStatus, reason string, source models.CancelSource, at time.Time) error
	CancelSeries(ctx context.Context, seriesID, reason string, source models.CancelSource, at time.Time) (int64, error)
	CompletePast(ctx context.Context, before time.Time) (int64, error)

	EnsureIndexes(ctx context.Context) error
}

type mongoAppointmentRepo struct {
	coll *mongo.Collection
}

// NewMongoAppointmentRepo constructs a new MongoDB AppointmentRepository.
func NewMongoAppointmentRepo() AppointmentRepository {
	return &mongoAppointmentRepo{
		coll: database.DB().Collection("appointments"),
	}
}
