// File: database/repository/customer/interface.go
package customerRepo

import (
	"context"

	"schedly/database"
	"schedly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// CustomerRepository persists booking contacts, matched by business+email.
type CustomerRepository interface {
	// Upsert finds or creates the customer for a business+email pair and
	// refreshes the contact snapshot.
	Upsert(ctx context.Context, businessID, name, email, phone string) (*models.Customer, error)
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	IncrementBookings(ctx context.Context, id string, count int) error
	IncrementCancelled(ctx context.Context, id string) error
}

type mongoCustomerRepo struct {
	coll *mongo.Collection
}

// NewMongoCustomerRepo constructs a new MongoDB CustomerRepository.
func NewMongoCustomerRepo() CustomerRepository {
	return &mongoCustomerRepo{
		coll: database.DB().Collection("customers"),
	}
}
