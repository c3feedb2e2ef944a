package booking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	appointmentRepo "schedly/database/repository/appointment"
	"schedly/models"
	"schedly/services/availability"
)

// In-memory fakes implementing the repository interfaces. The appointment
// fake mirrors the transactional semantics of the mongo implementation:
// the conflict re-check and the write are a single step, and series inserts
// are all-or-nothing.

type fakeBusinessRepo struct {
	businesses map[string]*models.Business
	services   map[string]*models.Service
}

func newFakeBusinessRepo() *fakeBusinessRepo {
	return &fakeBusinessRepo{
		businesses: map[string]*models.Business{},
		services:   map[string]*models.Service{},
	}
}

func (f *fakeBusinessRepo) Create(_ context.Context, biz *models.Business) error {
	f.businesses[biz.ID] = biz
	return nil
}

func (f *fakeBusinessRepo) GetByID(_ context.Context, id string) (*models.Business, error) {
	return f.businesses[id], nil
}

func (f *fakeBusinessRepo) GetBySlug(_ context.Context, slug string) (*models.Business, error) {
	for _, biz := range f.businesses {
		if biz.Slug == slug {
			return biz, nil
		}
	}
	return nil, nil
}

func (f *fakeBusinessRepo) UpdateSettings(_ context.Context, businessID string, settings models.BusinessSettings) error {
	f.businesses[businessID].Settings = settings
	return nil
}

func (f *fakeBusinessRepo) SetHours(_ context.Context, businessID string, hours []models.BusinessHours) error {
	f.businesses[businessID].Hours = hours
	return nil
}

func (f *fakeBusinessRepo) AddSpecialDate(_ context.Context, businessID string, sd models.SpecialDate) error {
	biz := f.businesses[businessID]
	biz.SpecialDates = append(biz.SpecialDates, sd)
	return nil
}

func (f *fakeBusinessRepo) RemoveSpecialDate(_ context.Context, businessID, date string) error {
	return nil
}

func (f *fakeBusinessRepo) CreateService(_ context.Context, svc *models.Service) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeBusinessRepo) UpdateService(_ context.Context, svc *models.Service) error {
	f.services[svc.ID] = svc
	return nil
}

func (f *fakeBusinessRepo) GetService(_ context.Context, businessID, serviceID string) (*models.Service, error) {
	svc := f.services[serviceID]
	if svc == nil || svc.BusinessID != businessID {
		return nil, nil
	}
	return svc, nil
}

func (f *fakeBusinessRepo) ListServices(_ context.Context, businessID string) ([]models.Service, error) {
	var out []models.Service
	for _, svc := range f.services {
		if svc.BusinessID == businessID {
			out = append(out, *svc)
		}
	}
	return out, nil
}

type fakeAppointmentRepo struct {
	appts map[string]*models.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appts: map[string]*models.Appointment{}}
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*models.Appointment, error) {
	appt := f.appts[id]
	if appt == nil {
		return nil, nil
	}
	copied := *appt
	return &copied, nil
}

func (f *fakeAppointmentRepo) ListByBusinessDate(_ context.Context, businessID, date string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appt := range f.appts {
		if appt.BusinessID == businessID && appt.Date == date && appt.Status != models.StatusCancelled {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartMinutes < out[j].StartMinutes })
	return out, nil
}

func (f *fakeAppointmentRepo) ListByBusinessRange(_ context.Context, businessID, startDate, endDate string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appt := range f.appts {
		if appt.BusinessID == businessID && appt.Date >= startDate && appt.Date <= endDate {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByCustomer(_ context.Context, customerID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appt := range f.appts {
		if appt.CustomerID == customerID {
			out = append(out, *appt)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) GetSeries(_ context.Context, seriesID string) ([]models.Appointment, error) {
	var out []models.Appointment
	for _, appt := range f.appts {
		if appt.SeriesID == seriesID {
			out = append(out, *appt)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeAppointmentRepo) conflictOn(appt *models.Appointment, buffer int, excludeID string) error {
	for _, other := range f.appts {
		if other.ID == excludeID || other.BusinessID != appt.BusinessID || other.Date != appt.Date {
			continue
		}
		check := availability.DetectConflict(appt.StartMinutes, appt.EndMinutes, buffer,
			[]models.Appointment{*other})
		if check.HasConflict {
			return &appointmentRepo.ConflictError{Appointment: *other, Reason: check.Reason}
		}
	}
	return nil
}

func (f *fakeAppointmentRepo) CreateWithConflictCheck(_ context.Context, appt *models.Appointment, buffer int) error {
	if err := f.conflictOn(appt, buffer, ""); err != nil {
		return err
	}
	copied := *appt
	f.appts[appt.ID] = &copied
	return nil
}

func (f *fakeAppointmentRepo) RescheduleWithConflictCheck(_ context.Context, appt *models.Appointment, buffer int) error {
	if err := f.conflictOn(appt, buffer, appt.ID); err != nil {
		return err
	}
	copied := *appt
	f.appts[appt.ID] = &copied
	return nil
}

func (f *fakeAppointmentRepo) CreateSeriesTransactionally(_ context.Context, appts []models.Appointment, buffer int) error {
	for i := range appts {
		if err := f.conflictOn(&appts[i], buffer, ""); err != nil {
			return err
		}
	}
	for i := range appts {
		copied := appts[i]
		f.appts[copied.ID] = &copied
	}
	return nil
}

func (f *fakeAppointmentRepo) SetCustomer(_ context.Context, ids []string, customerID string) error {
	for _, id := range ids {
		if appt := f.appts[id]; appt != nil {
			appt.CustomerID = customerID
		}
	}
	return nil
}

func (f *fakeAppointmentRepo) Cancel(_ context.Context, id string, previous models.AppointmentStatus, reason string, source models.CancelSource, at time.Time) error {
	appt := f.appts[id]
	if appt == nil || appt.Status.Terminal() {
		return fmt.Errorf("appointment %s not cancellable", id)
	}
	appt.PreviousStatus = previous
	appt.Status = models.StatusCancelled
	appt.CancelReason = reason
	appt.CancelSource = source
	appt.CancelledAt = &at
	return nil
}

func (f *fakeAppointmentRepo) CancelSeries(_ context.Context, seriesID, reason string, source models.CancelSource, at time.Time) (int64, error) {
	var count int64
	for _, appt := range f.appts {
		if appt.SeriesID != seriesID || appt.Status.Terminal() {
			continue
		}
		appt.PreviousStatus = appt.Status
		appt.Status = models.StatusCancelled
		appt.CancelReason = reason
		appt.CancelSource = source
		appt.CancelledAt = &at
		count++
	}
	return count, nil
}

func (f *fakeAppointmentRepo) CompletePast(_ context.Context, before time.Time) (int64, error) {
	var count int64
	for _, appt := range f.appts {
		if appt.Status == models.StatusConfirmed && appt.End.Before(before) {
			appt.Status = models.StatusCompleted
			count++
		}
	}
	return count, nil
}

func (f *fakeAppointmentRepo) EnsureIndexes(_ context.Context) error { return nil }

type fakeCustomerRepo struct {
	customers map[string]*models.Customer // keyed by business+email
	byID      map[string]*models.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{
		customers: map[string]*models.Customer{},
		byID:      map[string]*models.Customer{},
	}
}

func (f *fakeCustomerRepo) Upsert(_ context.Context, businessID, name, email, phone string) (*models.Customer, error) {
	key := businessID + "/" + email
	if existing, ok := f.customers[key]; ok {
		existing.Name = name
		existing.Phone = phone
		return existing, nil
	}
	customer := &models.Customer{
		ID:         fmt.Sprintf("cust-%d", len(f.byID)+1),
		BusinessID: businessID,
		Name:       name,
		Email:      email,
		Phone:      phone,
	}
	f.customers[key] = customer
	f.byID[customer.ID] = customer
	return customer, nil
}

func (f *fakeCustomerRepo) GetByID(_ context.Context, id string) (*models.Customer, error) {
	return f.byID[id], nil
}

func (f *fakeCustomerRepo) IncrementBookings(_ context.Context, id string, count int) error {
	f.byID[id].TotalBookings += count
	return nil
}

func (f *fakeCustomerRepo) IncrementCancelled(_ context.Context, id string) error {
	f.byID[id].CancelledBookings++
	return nil
}

// Test fixture: a UTC business open 09:00-17:00 Monday through Friday with
// one 60-minute service, and a clock fixed at 2026-03-01 08:00 UTC
// (a Sunday, so every weekday test date lies ahead of it).

var fixedNow = time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *DefaultBookingService
	appts     *fakeAppointmentRepo
	customers *fakeCustomerRepo
	business  *models.Business
	service   *models.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	bizRepo := newFakeBusinessRepo()
	apptRepo := newFakeAppointmentRepo()
	custRepo := newFakeCustomerRepo()

	biz := &models.Business{
		ID:       "biz-1",
		Name:     "Test Salon",
		Slug:     "test-salon",
		Timezone: "UTC",
		Settings: models.BusinessSettings{
			SlotIntervalMinutes: 60,
			AdvanceBookingDays:  30,
			SameDayBooking:      true,
		},
	}
	for wd := 1; wd <= 5; wd++ {
		biz.Hours = append(biz.Hours, models.BusinessHours{Weekday: wd, Open: "09:00", Close: "17:00"})
	}
	if err := bizRepo.Create(context.Background(), biz); err != nil {
		t.Fatal(err)
	}

	service := &models.Service{
		ID:              "svc-1",
		BusinessID:      biz.ID,
		Name:            "Haircut",
		DurationMinutes: 60,
		Active:          true,
	}
	if err := bizRepo.CreateService(context.Background(), service); err != nil {
		t.Fatal(err)
	}

	clock := func() time.Time { return fixedNow }
	return &fixture{
		svc: &DefaultBookingService{
			Businesses:   bizRepo,
			Appointments: apptRepo,
			Customers:    custRepo,
			Availability: &availability.Calculator{Appointments: apptRepo, Now: clock},
			Now:          clock,
		},
		appts:     apptRepo,
		customers: custRepo,
		business:  biz,
		service:   service,
	}
}

func createReq(date, start string) CreateRequest {
	return CreateRequest{
		BusinessID:    "biz-1",
		ServiceID:     "svc-1",
		Date:          date,
		StartTime:     start,
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
	}
}

func bookingErr(t *testing.T, err error) *Error {
	t.Helper()
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *booking.Error, got %T: %v", err, err)
	}
	return e
}

func TestCreateAppointment(t *testing.T) {
	fix := newFixture(t)

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want %s", appt.Status, models.StatusConfirmed)
	}
	if appt.StartMinutes != 600 || appt.EndMinutes != 660 {
		t.Errorf("interval = %d-%d, want 600-660", appt.StartMinutes, appt.EndMinutes)
	}
	wantStart := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !appt.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", appt.Start, wantStart)
	}
	if appt.Timezone != "UTC" {
		t.Errorf("Timezone = %q", appt.Timezone)
	}

	stored, _ := fix.appts.GetByID(context.Background(), appt.ID)
	if stored == nil {
		t.Fatal("appointment not persisted")
	}
	customer, _ := fix.customers.GetByID(context.Background(), appt.CustomerID)
	if customer == nil || customer.TotalBookings != 1 {
		t.Errorf("customer = %+v, want TotalBookings 1", customer)
	}
}

func TestCreateAppointmentBySlug(t *testing.T) {
	fix := newFixture(t)

	req := createReq("2026-03-02", "10:00")
	req.BusinessID = "test-salon"
	if _, err := fix.svc.CreateAppointment(context.Background(), req); err != nil {
		t.Fatalf("slug lookup failed: %v", err)
	}
}

func TestCreateAppointmentRejectedLeavesNoCustomer(t *testing.T) {
	fix := newFixture(t)

	if _, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00")); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	req := createReq("2026-03-02", "10:30")
	req.CustomerName = "Grace Hopper"
	req.CustomerEmail = "grace@example.com"
	_, err := fix.svc.CreateAppointment(context.Background(), req)
	if e := bookingErr(t, err); e.Code != CodeConflict {
		t.Fatalf("code = %s, want %s", e.Code, CodeConflict)
	}
	if _, ok := fix.customers.customers["biz-1/grace@example.com"]; ok {
		t.Error("rejected booking still created a customer record")
	}
}

func TestCreateAppointmentRequireApproval(t *testing.T) {
	fix := newFixture(t)
	fix.business.Settings.RequireApproval = true

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appt.Status != models.StatusPending {
		t.Errorf("status = %s, want %s", appt.Status, models.StatusPending)
	}
}

func TestCreateAppointmentRejections(t *testing.T) {
	fix := newFixture(t)

	// Existing appointment 10:00-11:00 on the Monday.
	if _, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00")); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	tests := []struct {
		name     string
		req      CreateRequest
		wantCode ErrorCode
	}{
		{name: "conflict", req: createReq("2026-03-02", "10:30"), wantCode: CodeConflict},
		{name: "out of hours", req: createReq("2026-03-02", "08:00"), wantCode: CodeOutOfHours},
		{name: "runs past close", req: createReq("2026-03-02", "16:30"), wantCode: CodeOutOfHours},
		{name: "closed weekday", req: createReq("2026-03-08", "10:00"), wantCode: CodeClosedDay},
		{name: "past date", req: createReq("2026-02-20", "10:00"), wantCode: CodePastTime},
		{name: "beyond advance window", req: createReq("2026-04-15", "10:00"), wantCode: CodeAdvanceWindow},
		{name: "unknown business", req: func() CreateRequest {
			r := createReq("2026-03-02", "10:00")
			r.BusinessID = "nope"
			return r
		}(), wantCode: CodeNotFound},
		{name: "unknown service", req: func() CreateRequest {
			r := createReq("2026-03-02", "10:00")
			r.ServiceID = "nope"
			return r
		}(), wantCode: CodeNotFound},
		{name: "bad time", req: createReq("2026-03-02", "ten"), wantCode: CodeValidation},
		{name: "missing customer", req: func() CreateRequest {
			r := createReq("2026-03-02", "11:00")
			r.CustomerEmail = ""
			return r
		}(), wantCode: CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fix.svc.CreateAppointment(context.Background(), tc.req)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := bookingErr(t, err).Code; got != tc.wantCode {
				t.Errorf("code = %s, want %s", got, tc.wantCode)
			}
		})
	}
}

func TestCreateAppointmentConflictDetails(t *testing.T) {
	fix := newFixture(t)

	seed, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	_, err = fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	e := bookingErr(t, err)
	if e.Code != CodeConflict {
		t.Fatalf("code = %s", e.Code)
	}
	if len(e.Conflicts) != 1 || e.Conflicts[0].AppointmentID != seed.ID || e.Conflicts[0].Start != "10:00" {
		t.Errorf("conflicts = %+v", e.Conflicts)
	}
}

func TestCreateAppointmentBufferRejection(t *testing.T) {
	fix := newFixture(t)
	fix.business.Settings.BufferTimeMinutes = 30

	if _, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00")); err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// 11:00 starts inside the 30-minute trailing buffer.
	_, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "11:00"))
	if e := bookingErr(t, err); e.Code != CodeConflict {
		t.Errorf("code = %s, want %s", e.Code, CodeConflict)
	}

	// 12:00 clears it.
	if _, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "12:00")); err != nil {
		t.Errorf("slot past the buffer rejected: %v", err)
	}
}

func TestRescheduleAppointment(t *testing.T) {
	fix := newFixture(t)
	fix.business.Settings.RequireApproval = true

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	moved, err := fix.svc.RescheduleAppointment(context.Background(), RescheduleRequest{
		AppointmentID: appt.ID,
		Date:          "2026-03-03",
		StartTime:     "14:00",
		Reason:        "customer request",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if moved.Date != "2026-03-03" || moved.StartMinutes != 840 {
		t.Errorf("moved to %s %d, want 2026-03-03 840", moved.Date, moved.StartMinutes)
	}
	// Reschedule always lands on CONFIRMED, even from PENDING.
	if moved.Status != models.StatusConfirmed {
		t.Errorf("status = %s, want %s", moved.Status, models.StatusConfirmed)
	}
	if moved.PreviousStatus != models.StatusPending {
		t.Errorf("PreviousStatus = %s, want %s", moved.PreviousStatus, models.StatusPending)
	}
	if moved.RescheduledFrom == nil || !moved.RescheduledFrom.Equal(appt.Start) {
		t.Errorf("RescheduledFrom = %v, want %v", moved.RescheduledFrom, appt.Start)
	}
	if moved.RescheduleReason != "customer request" {
		t.Errorf("RescheduleReason = %q", moved.RescheduleReason)
	}
}

func TestRescheduleExcludesOwnSlot(t *testing.T) {
	fix := newFixture(t)

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	// Shifting by 30 minutes overlaps the appointment's own current slot;
	// that must not count as a conflict.
	moved, err := fix.svc.RescheduleAppointment(context.Background(), RescheduleRequest{
		AppointmentID: appt.ID,
		Date:          "2026-03-02",
		StartTime:     "10:30",
	})
	if err != nil {
		t.Fatalf("self-overlap rejected: %v", err)
	}
	if moved.StartMinutes != 630 {
		t.Errorf("StartMinutes = %d, want 630", moved.StartMinutes)
	}
}

func TestRescheduleTerminalRejected(t *testing.T) {
	fix := newFixture(t)

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	if _, err := fix.svc.CancelAppointment(context.Background(), CancelRequest{AppointmentID: appt.ID}); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	_, err = fix.svc.RescheduleAppointment(context.Background(), RescheduleRequest{
		AppointmentID: appt.ID,
		Date:          "2026-03-03",
		StartTime:     "14:00",
	})
	if e := bookingErr(t, err); e.Code != CodeInvalidTransition {
		t.Errorf("code = %s, want %s", e.Code, CodeInvalidTransition)
	}
}

func TestCancelAppointment(t *testing.T) {
	fix := newFixture(t)

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	cancelled, err := fix.svc.CancelAppointment(context.Background(), CancelRequest{
		AppointmentID: appt.ID,
		Reason:        "sick",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("status = %s", cancelled.Status)
	}
	if cancelled.CancelSource != models.CancelByCustomer {
		t.Errorf("source = %s, want default %s", cancelled.CancelSource, models.CancelByCustomer)
	}
	if cancelled.CancelReason != "sick" || cancelled.CancelledAt == nil {
		t.Errorf("audit fields = %q %v", cancelled.CancelReason, cancelled.CancelledAt)
	}

	customer, _ := fix.customers.GetByID(context.Background(), appt.CustomerID)
	if customer.CancelledBookings != 1 {
		t.Errorf("CancelledBookings = %d, want 1", customer.CancelledBookings)
	}

	// The freed slot is bookable again.
	if _, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00")); err != nil {
		t.Errorf("freed slot rejected: %v", err)
	}

	// A second cancel hits the terminal guard.
	_, err = fix.svc.CancelAppointment(context.Background(), CancelRequest{AppointmentID: appt.ID})
	if e := bookingErr(t, err); e.Code != CodeInvalidTransition {
		t.Errorf("code = %s, want %s", e.Code, CodeInvalidTransition)
	}
}

func TestCancelAppointmentBySource(t *testing.T) {
	fix := newFixture(t)

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}
	cancelled, err := fix.svc.CancelAppointment(context.Background(), CancelRequest{
		AppointmentID: appt.ID,
		Source:        models.CancelByBusiness,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cancelled.CancelSource != models.CancelByBusiness {
		t.Errorf("source = %s", cancelled.CancelSource)
	}
}

func TestCompletePastSweep(t *testing.T) {
	fix := newFixture(t)

	appt, err := fix.svc.CreateAppointment(context.Background(), createReq("2026-03-02", "10:00"))
	if err != nil {
		t.Fatalf("seed booking failed: %v", err)
	}

	count, err := fix.appts.CompletePast(context.Background(), appt.End.Add(time.Hour))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("completed %d, want 1", count)
	}
	stored, _ := fix.appts.GetByID(context.Background(), appt.ID)
	if stored.Status != models.StatusCompleted {
		t.Errorf("status = %s, want %s", stored.Status, models.StatusCompleted)
	}
}
