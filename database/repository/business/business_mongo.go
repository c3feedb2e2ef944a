// File: database/repository/business/business_mongo.go
package businessRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"schedly/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const repoTimeout = 5 * time.Second

func (r *mongoBusinessRepo) Create(ctx context.Context, biz *models.Business) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	biz.CreatedAt = time.Now()
	biz.UpdatedAt = biz.CreatedAt
	if _, err := r.businessColl.InsertOne(ctx, biz); err != nil {
		return fmt.Errorf("failed to insert business: %w", err)
	}
	return nil
}

func (r *mongoBusinessRepo) GetByID(ctx context.Context, id string) (*models.Business, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *mongoBusinessRepo) GetBySlug(ctx context.Context, slug string) (*models.Business, error) {
	return r.findOne(ctx, bson.M{"slug": slug})
}

func (r *mongoBusinessRepo) findOne(ctx context.Context, filter bson.M) (*models.Business, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var biz models.Business
	err := r.businessColl.FindOne(ctx, filter).Decode(&biz)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch business: %w", err)
	}
	return &biz, nil
}

func (r *mongoBusinessRepo) UpdateSettings(ctx context.Context, businessID string, settings models.BusinessSettings) error {
	return r.updateBusiness(ctx, businessID, bson.M{"settings": settings})
}

func (r *mongoBusinessRepo) SetHours(ctx context.Context, businessID string, hours []models.BusinessHours) error {
	return r.updateBusiness(ctx, businessID, bson.M{"hours": hours})
}

func (r *mongoBusinessRepo) updateBusiness(ctx context.Context, businessID string, fields bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	fields["updatedAt"] = time.Now()
	res, err := r.businessColl.UpdateOne(ctx, bson.M{"id": businessID}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update business: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoBusinessRepo) AddSpecialDate(ctx context.Context, businessID string, sd models.SpecialDate) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	// Replace any existing override for the same date, then append.
	filter := bson.M{"id": businessID}
	pull := bson.M{
		"$pull": bson.M{"specialDates": bson.M{"date": sd.Date}},
	}
	if _, err := r.businessColl.UpdateOne(ctx, filter, pull); err != nil {
		return fmt.Errorf("failed to clear existing special date: %w", err)
	}
	push := bson.M{
		"$push": bson.M{"specialDates": sd},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.businessColl.UpdateOne(ctx, filter, push)
	if err != nil {
		return fmt.Errorf("failed to add special date: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoBusinessRepo) RemoveSpecialDate(ctx context.Context, businessID, date string) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"specialDates": bson.M{"date": date}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	res, err := r.businessColl.UpdateOne(ctx, bson.M{"id": businessID}, update)
	if err != nil {
		return fmt.Errorf("failed to remove special date: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoBusinessRepo) CreateService(ctx context.Context, svc *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	svc.CreatedAt = time.Now()
	svc.UpdatedAt = svc.CreatedAt
	if _, err := r.serviceColl.InsertOne(ctx, svc); err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	return nil
}

func (r *mongoBusinessRepo) UpdateService(ctx context.Context, svc *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	svc.UpdatedAt = time.Now()
	filter := bson.M{"id": svc.ID, "businessId": svc.BusinessID}
	res, err := r.serviceColl.ReplaceOne(ctx, filter, svc)
	if err != nil {
		return fmt.Errorf("failed to update service: %w", err)
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *mongoBusinessRepo) GetService(ctx context.Context, businessID, serviceID string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	var svc models.Service
	err := r.serviceColl.FindOne(ctx, bson.M{"id": serviceID, "businessId": businessID}).Decode(&svc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch service: %w", err)
	}
	return &svc, nil
}

func (r *mongoBusinessRepo) ListServices(ctx context.Context, businessID string) ([]models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	cursor, err := r.serviceColl.Find(ctx, bson.M{"businessId": businessID, "active": true})
	if err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	defer cursor.Close(ctx)

	var services []models.Service
	if err := cursor.All(ctx, &services); err != nil {
		return nil, err
	}
	return services, nil
}
