package availability

import (
	"context"
	"errors"
	"testing"

	"schedly/models"
)

type fakeBusinessStore struct {
	biz      *models.Business
	services map[string]*models.Service
}

func (f *fakeBusinessStore) Create(_ context.Context, biz *models.Business) error {
	f.biz = biz
	return nil
}

func (f *fakeBusinessStore) GetByID(_ context.Context, id string) (*models.Business, error) {
	if f.biz != nil && f.biz.ID == id {
		return f.biz, nil
	}
	return nil, nil
}

func (f *fakeBusinessStore) GetBySlug(_ context.Context, slug string) (*models.Business, error) {
	if f.biz != nil && f.biz.Slug == slug {
		return f.biz, nil
	}
	return nil, nil
}

func (f *fakeBusinessStore) UpdateSettings(_ context.Context, _ string, settings models.BusinessSettings) error {
	f.biz.Settings = settings
	return nil
}

func (f *fakeBusinessStore) SetHours(_ context.Context, _ string, hours []models.BusinessHours) error {
	f.biz.Hours = hours
	return nil
}

func (f *fakeBusinessStore) AddSpecialDate(_ context.Context, _ string, sd models.SpecialDate) error {
	f.biz.SpecialDates = append(f.biz.SpecialDates, sd)
	return nil
}

func (f *fakeBusinessStore) RemoveSpecialDate(_ context.Context, _, _ string) error { return nil }

func (f *fakeBusinessStore) CreateService(_ context.Context, svc *models.Service) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeBusinessStore) UpdateService(_ context.Context, svc *models.Service) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeBusinessStore) GetService(_ context.Context, _, serviceID string) (*models.Service, error) {
	return f.services[serviceID], nil
}

func (f *fakeBusinessStore) ListServices(_ context.Context, _ string) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range f.services {
		out = append(out, *svc)
	}
	return out, nil
}

func newQueryService(byDate map[string][]models.Appointment) (*Service, *fakeBusinessStore) {
	biz := weekdayBusiness()
	biz.Slug = "test-salon"
	store := &fakeBusinessStore{biz: biz, services: map[string]*models.Service{
		"svc-1": {ID: "svc-1", BusinessID: biz.ID, Name: "Haircut", DurationMinutes: 60, Active: true},
	}}
	calc := testCalc(byDate, farPast)
	return &Service{Businesses: store, Calc: calc}, store
}

func TestGetAvailabilityByDate(t *testing.T) {
	svc, _ := newQueryService(nil)

	result, err := svc.GetAvailability(context.Background(), QueryRequest{
		BusinessKey:  "biz-1",
		ServiceID:    "svc-1",
		Date:         "2026-03-02",
		IncludeSlots: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Days) != 1 || result.Days[0].Date != "2026-03-02" {
		t.Fatalf("days = %+v", result.Days)
	}
	if len(result.Days[0].Slots) == 0 {
		t.Error("slots missing with IncludeSlots")
	}
	if result.Timezone != "UTC" {
		t.Errorf("timezone = %q", result.Timezone)
	}
	if result.BookingWindow.EarliestDate == "" {
		t.Error("booking window missing")
	}
}

func TestGetAvailabilityDaysShorthand(t *testing.T) {
	svc, _ := newQueryService(nil)

	result, err := svc.GetAvailability(context.Background(), QueryRequest{
		BusinessKey: "test-salon", // by slug
		Days:        7,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Days) != 7 {
		t.Fatalf("got %d days, want 7", len(result.Days))
	}
	// Without IncludeSlots the day shape survives but the grids are dropped.
	for _, day := range result.Days {
		if day.Slots != nil {
			t.Errorf("day %s kept its slot grid", day.Date)
		}
	}
	// The shorthand starts at today in the business timezone.
	if result.Days[0].Date != "2026-02-01" {
		t.Errorf("first day = %s, want 2026-02-01", result.Days[0].Date)
	}
}

func TestGetAvailabilityAggregates(t *testing.T) {
	byDate := map[string][]models.Appointment{
		"2026-03-02": {{
			ID: "a1", Status: models.StatusConfirmed,
			Date: "2026-03-02", StartMinutes: 600, EndMinutes: 660,
		}},
	}
	svc, _ := newQueryService(byDate)

	result, err := svc.GetAvailability(context.Background(), QueryRequest{
		BusinessKey:    "biz-1",
		ServiceID:      "svc-1",
		Date:           "2026-03-02",
		IncludeSummary: true,
		IncludeHeatmap: true,
		IncludeRules:   true,
		FindNext:       true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Summary == nil || result.Summary.BookedSlots != 1 {
		t.Errorf("summary = %+v", result.Summary)
	}
	if result.Heatmap["2026-03-02"] != 1 {
		t.Errorf("heatmap = %+v", result.Heatmap)
	}
	if result.Rules == nil || result.Rules.ServiceDuration != 60 {
		t.Errorf("rules = %+v", result.Rules)
	}
	if result.NextAvailable == nil || result.NextAvailable.Start != "09:00" {
		t.Errorf("nextAvailable = %+v", result.NextAvailable)
	}
}

func TestGetAvailabilityErrors(t *testing.T) {
	svc, _ := newQueryService(nil)

	_, err := svc.GetAvailability(context.Background(), QueryRequest{BusinessKey: "nope", Date: "2026-03-02"})
	if !errors.Is(err, ErrBusinessNotFound) {
		t.Errorf("unknown business: %v", err)
	}

	_, err = svc.GetAvailability(context.Background(), QueryRequest{BusinessKey: "biz-1", ServiceID: "nope", Date: "2026-03-02"})
	if !errors.Is(err, ErrServiceNotFound) {
		t.Errorf("unknown service: %v", err)
	}

	_, err = svc.GetAvailability(context.Background(), QueryRequest{BusinessKey: "biz-1", Days: 365})
	if !errors.Is(err, ErrRangeTooLong) {
		t.Errorf("oversized range: %v", err)
	}

	_, err = svc.GetAvailability(context.Background(), QueryRequest{BusinessKey: "biz-1"})
	if err == nil {
		t.Error("missing range accepted")
	}
}

func TestServiceCheckSlot(t *testing.T) {
	svc, store := newQueryService(nil)
	buffer := 30
	store.services["svc-1"].BufferMinutes = &buffer

	check, err := svc.CheckSlot(context.Background(), "biz-1", "svc-1", "2026-03-02", "10:00", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !check.Available {
		t.Errorf("check = %+v", check)
	}

	if _, err := svc.CheckSlot(context.Background(), "biz-1", "svc-1", "2026-03-02", "25:00", 0); err == nil {
		t.Error("bad time accepted")
	}
}
