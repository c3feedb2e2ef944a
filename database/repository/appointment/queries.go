// File: database/repository/appointment/queries.go
package appointmentRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schedly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const repoTimeout = 5 * time.Second

func (r *mongoAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var appt models.Appointment
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&appt)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appointment: %w", err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) ListByBusinessDate(ctx context.Context, businessID, date string) ([]models.Appointment, error) {
	filter := bson.M{
		"businessId": businessID,
		"date":       date,
		"status":     bson.M{"$ne": models.StatusCancelled},
	}
	return r.list(ctx, filter)
}

func (r *mongoAppointmentRepo) ListByBusinessRange(ctx context.Context, businessID, startDate, endDate string) ([]models.Appointment, error) {
	filter := bson.M{
		"businessId": businessID,
		"date":       bson.M{"$gte": startDate, "$lte": endDate},
		"status":     bson.M{"$ne": models.StatusCancelled},
	}
	return r.list(ctx, filter)
}

func (r *mongoAppointmentRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Appointment, error) {
	return r.list(ctx, bson.M{"customerId": customerID})
}

func (r *mongoAppointmentRepo) GetSeries(ctx context.Context, seriesID string) ([]models.Appointment, error) {
	return r.list(ctx, bson.M{"seriesId": seriesID})
}

func (r *mongoAppointmentRepo) list(ctx context.Context, filter bson.M) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "startMinutes", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, err
	}
	return appts, nil
}

// findOverlapping returns the first non-cancelled appointment whose
// buffer-extended interval overlaps the half-open candidate [start, end) on
// the given business day, optionally excluding one appointment id. The
// buffer extends outward from existing appointments only.
func (r *mongoAppointmentRepo) findOverlapping(ctx context.Context, businessID, date string, start, end, buffer int, excludeID string) (*models.Appointment, models.SlotReason, error) {
	filter := bson.M{
		"businessId":   businessID,
		"date":         date,
		"status":       bson.M{"$ne": models.StatusCancelled},
		"startMinutes": bson.M{"$lt": end + buffer},
		"endMinutes":   bson.M{"$gt": start - buffer},
	}
	if excludeID != "" {
		filter["id"] = bson.M{"$ne": excludeID}
	}

	opts := options.Find().SetSort(bson.D{{Key: "startMinutes", Value: 1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan for overlaps: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []models.Appointment
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, "", err
	}

	// Direct overlaps take precedence over buffer overlaps for reporting.
	for i := range candidates {
		if start < candidates[i].EndMinutes && candidates[i].StartMinutes < end {
			return &candidates[i], models.ReasonBooked, nil
		}
	}
	if len(candidates) > 0 {
		return &candidates[0], models.ReasonBuffer, nil
	}
	return nil, "", nil
}
