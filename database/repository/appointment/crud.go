// File: database/repository/appointment/crud.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"schedly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Cancel transitions one appointment to CANCELLED with its audit fields.
// The filter excludes terminal statuses, making a repeated cancel a no-op
// at the store level; callers are expected to have checked the status and
// treat MatchedCount == 0 as an invalid transition.
func (r *mongoAppointmentRepo) Cancel(ctx context.Context, id string, previous models.AppointmentStatus, reason string, source models.CancelSource, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	filter := bson.M{
		"id":     id,
		"status": bson.M{"$nin": []models.AppointmentStatus{models.StatusCancelled, models.StatusCompleted}},
	}
	update := bson.M{"$set": bson.M{
		"status":         models.StatusCancelled,
		"previousStatus": previous,
		"cancelReason":   reason,
		"cancelSource":   source,
		"cancelledAt":    at,
		"updatedAt":      time.Now(),
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("cancel update failed: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// CancelSeries bulk-cancels every non-terminal appointment sharing a series
// id and returns how many were transitioned.
func (r *mongoAppointmentRepo) CancelSeries(ctx context.Context, seriesID, reason string, source models.CancelSource, at time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	filter := bson.M{
		"seriesId": seriesID,
		"status":   bson.M{"$nin": []models.AppointmentStatus{models.StatusCancelled, models.StatusCompleted}},
	}
	// Pipeline update so each member snapshots its own status into
	// previousStatus before it is overwritten. The caller-supplied reason
	// goes through $literal to keep it out of expression context.
	update := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"previousStatus": "$status",
			"status":         models.StatusCancelled,
			"cancelReason":   bson.M{"$literal": reason},
			"cancelSource":   source,
			"cancelledAt":    at,
			"updatedAt":      time.Now(),
		}}},
	}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("series cancel failed: %w", err)
	}
	return res.ModifiedCount, nil
}

// SetCustomer links appointments to their customer record. Runs after the
// booking write has committed, so the customer id is filled in a separate
// step from the insert.
func (r *mongoAppointmentRepo) SetCustomer(ctx context.Context, ids []string, customerID string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	filter := bson.M{"id": bson.M{"$in": ids}}
	update := bson.M{"$set": bson.M{
		"customerId": customerID,
		"updatedAt":  time.Now(),
	}}
	if _, err := r.coll.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("customer link failed: %w", err)
	}
	return nil
}

// CompletePast transitions CONFIRMED appointments whose end instant has
// passed to COMPLETED. Used by the background sweep.
func (r *mongoAppointmentRepo) CompletePast(ctx context.Context, before time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	filter := bson.M{
		"status": models.StatusConfirmed,
		"end":    bson.M{"$lt": before},
	}
	update := bson.M{"$set": bson.M{
		"status":         models.StatusCompleted,
		"previousStatus": models.StatusConfirmed,
		"updatedAt":      time.Now(),
	}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("complete sweep failed: %w", err)
	}
	return res.ModifiedCount, nil
}
