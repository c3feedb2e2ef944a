// File: database/repository/customer/customer_mongo.go
package customerRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"schedly/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const repoTimeout = 5 * time.Second

func (r *mongoCustomerRepo) Upsert(ctx context.Context, businessID, name, email, phone string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now()
	filter := bson.M{"businessId": businessID, "email": email}
	update := bson.M{
		"$set": bson.M{
			"name":      name,
			"phone":     phone,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"id":         uuid.New().String(),
			"businessId": businessID,
			"email":      email,
			"createdAt":  now,
		},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var customer models.Customer
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&customer); err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}
	return &customer, nil
}

func (r *mongoCustomerRepo) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var customer models.Customer
	err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&customer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}
	return &customer, nil
}

func (r *mongoCustomerRepo) IncrementBookings(ctx context.Context, id string, count int) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"totalBookings": count},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to increment bookings: %w", err)
	}
	return nil
}

func (r *mongoCustomerRepo) IncrementCancelled(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	update := bson.M{
		"$inc": bson.M{"cancelledBookings": 1},
		"$set": bson.M{"updatedAt": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update); err != nil {
		return fmt.Errorf("failed to increment cancellations: %w", err)
	}
	return nil
}
