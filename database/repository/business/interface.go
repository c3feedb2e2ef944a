// File: database/repository/business/interface.go
package businessRepo

import (
	"context"

	"schedly/database"
	"schedly/models"

	"go.mongodb.org/mongo-driver/mongo"
)

// BusinessRepository persists businesses, their schedule configuration and
// their services. Lookups return (nil, nil) when no document matches.
type BusinessRepository interface {
	Create(ctx context.Context, biz *models.Business) error
	GetByID(ctx context.Context, id string) (*models.Business, error)
	GetBySlug(ctx context.Context, slug string) (*models.Business, error)
	UpdateSettings(ctx context.Context, businessID string, settings models.BusinessSettings) error
	SetHours(ctx context.Context, businessID string, hours []models.BusinessHours) error
	AddSpecialDate(ctx context.Context, businessID string, sd models.SpecialDate) error
	RemoveSpecialDate(ctx context.Context, businessID, date string) error

	CreateService(ctx context.Context, svc *models.Service) error
	UpdateService(ctx context.Context, svc *models.Service) error
	GetService(ctx context.Context, businessID, serviceID string) (*models.Service, error)
	ListServices(ctx context.Context, businessID string) ([]models.Service, error)
}

type mongoBusinessRepo struct {
	businessColl *mongo.Collection
	serviceColl  *mongo.Collection
}

// NewMongoBusinessRepo constructs a new MongoDB BusinessRepository.
func NewMongoBusinessRepo() BusinessRepository {
	db := database.DB()
	return &mongoBusinessRepo{
		businessColl: db.Collection("businesses"),
		serviceColl:  db.Collection("services"),
	}
}
