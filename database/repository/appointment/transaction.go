// File: database/repository/appointment/transaction.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"schedly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// withTransaction runs fn inside a mongo session transaction.
func (r *mongoAppointmentRepo) withTransaction(ctx context.Context, fn func(sc mongo.SessionContext) error) error {
	client := r.coll.Database().Client()
	sess, err := client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	return mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := fn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	})
}

// CreateWithConflictCheck re-runs the overlap scan and inserts the
// appointment in one transaction, so a concurrent conflicting create cannot
// slip between the read and the write.
func (r *mongoAppointmentRepo) CreateWithConflictCheck(ctx context.Context, appt *models.Appointment, buffer int) error {
	appt.CreatedAt = time.Now()
	appt.UpdatedAt = appt.CreatedAt

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		blocking, reason, err := r.findOverlapping(sc, appt.BusinessID, appt.Date, appt.StartMinutes, appt.EndMinutes, buffer, "")
		if err != nil {
			return err
		}
		if blocking != nil {
			return &ConflictError{Appointment: *blocking, Reason: reason}
		}
		if _, err := r.coll.InsertOne(sc, appt); err != nil {
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	})
}

// RescheduleWithConflictCheck validates the new interval (excluding the
// appointment's own record from the scan) and overwrites it in one
// transaction. The status is forced to CONFIRMED; audit fields on appt are
// persisted as given.
func (r *mongoAppointmentRepo) RescheduleWithConflictCheck(ctx context.Context, appt *models.Appointment, buffer int) error {
	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		blocking, reason, err := r.findOverlapping(sc, appt.BusinessID, appt.Date, appt.StartMinutes, appt.EndMinutes, buffer, appt.ID)
		if err != nil {
			return err
		}
		if blocking != nil {
			return &ConflictError{Appointment: *blocking, Reason: reason}
		}

		update := bson.M{"$set": bson.M{
			"date":             appt.Date,
			"startMinutes":     appt.StartMinutes,
			"endMinutes":       appt.EndMinutes,
			"start":            appt.Start,
			"end":              appt.End,
			"status":           models.StatusConfirmed,
			"previousStatus":   appt.PreviousStatus,
			"rescheduledFrom":  appt.RescheduledFrom,
			"rescheduleReason": appt.RescheduleReason,
			"rescheduledAt":    appt.RescheduledAt,
			"updatedAt":        time.Now(),
		}}
		res, err := r.coll.UpdateOne(sc, bson.M{"id": appt.ID}, update)
		if err != nil {
			return fmt.Errorf("reschedule update failed: %w", err)
		}
		if res.MatchedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})
}

// CreateSeriesTransactionally inserts every appointment of a multi-day
// series as one all-or-nothing transaction, re-checking each date's
// interval inside the transaction. Any conflict aborts the whole series.
func (r *mongoAppointmentRepo) CreateSeriesTransactionally(ctx context.Context, appts []models.Appointment, buffer int) error {
	now := time.Now()
	docs := make([]interface{}, len(appts))
	for i := range appts {
		appts[i].CreatedAt = now
		appts[i].UpdatedAt = now
		docs[i] = appts[i]
	}

	return r.withTransaction(ctx, func(sc mongo.SessionContext) error {
		for i := range appts {
			a := &appts[i]
			blocking, reason, err := r.findOverlapping(sc, a.BusinessID, a.Date, a.StartMinutes, a.EndMinutes, buffer, "")
			if err != nil {
				return err
			}
			if blocking != nil {
				return &ConflictError{Appointment: *blocking, Reason: reason}
			}
		}
		if _, err := r.coll.InsertMany(sc, docs); err != nil {
			return fmt.Errorf("series insert failed: %w", err)
		}
		return nil
	})
}
