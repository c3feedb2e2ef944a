package handlers

import (
	"errors"
	"net/http"

	appointmentRepo "schedly/database/repository/appointment"
	"schedly/models"
	"schedly/services/booking"

	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	svc          booking.BookingService
	appointments appointmentRepo.AppointmentRepository
}

func NewBookingHandler(svc booking.BookingService, appointments appointmentRepo.AppointmentRepository) *BookingHandler {
	return &BookingHandler{svc: svc, appointments: appointments}
}

// statusFor maps a booking error code to an HTTP status.
func statusFor(code booking.ErrorCode) int {
	switch code {
	case booking.CodeNotFound:
		return http.StatusNotFound
	case booking.CodeConflict, booking.CodeSeriesUnavailable, booking.CodeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusUnprocessableEntity
	}
}

func respondBookingError(c *gin.Context, err error) {
	var bookErr *booking.Error
	if errors.As(err, &bookErr) {
		resp := gin.H{"success": false, "error": gin.H{
			"code":    bookErr.Code,
			"message": bookErr.Message,
		}}
		if len(bookErr.Conflicts) > 0 {
			resp["conflicts"] = bookErr.Conflicts
		}
		c.JSON(statusFor(bookErr.Code), resp)
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
}

// CreateAppointment handles POST /api/appointments.
func (h *BookingHandler) CreateAppointment(c *gin.Context) {
	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	appt, err := h.svc.CreateAppointment(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": appt})
}

// GetAppointment handles GET /api/appointments/:id.
func (h *BookingHandler) GetAppointment(c *gin.Context) {
	appt, err := h.appointments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if appt == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "appointment not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": appt})
}

// ListAppointments handles GET /api/appointments. Filters by business and
// date or date range; ?customerId= lists a customer's history instead.
func (h *BookingHandler) ListAppointments(c *gin.Context) {
	ctx := c.Request.Context()

	if customerID := c.Query("customerId"); customerID != "" {
		appts, err := h.appointments.ListByCustomer(ctx, customerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": appts})
		return
	}

	businessID := c.Query("businessId")
	if businessID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "businessId or customerId is required"})
		return
	}

	var (
		appts []models.Appointment
		err   error
	)
	switch {
	case c.Query("date") != "":
		appts, err = h.appointments.ListByBusinessDate(ctx, businessID, c.Query("date"))
	case c.Query("startDate") != "" && c.Query("endDate") != "":
		appts, err = h.appointments.ListByBusinessRange(ctx, businessID, c.Query("startDate"), c.Query("endDate"))
	default:
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "date or startDate/endDate is required"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": appts})
}

// RescheduleAppointment handles PUT /api/appointments/:id/reschedule.
func (h *BookingHandler) RescheduleAppointment(c *gin.Context) {
	var req booking.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	req.AppointmentID = c.Param("id")

	appt, err := h.svc.RescheduleAppointment(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": appt})
}

// CancelAppointment handles PUT /api/appointments/:id/cancel.
func (h *BookingHandler) CancelAppointment(c *gin.Context) {
	var req booking.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	req.AppointmentID = c.Param("id")

	appt, err := h.svc.CancelAppointment(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": appt})
}

// CreateSeries handles POST /api/appointments/series.
func (h *BookingHandler) CreateSeries(c *gin.Context) {
	var req booking.SeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	members, err := h.svc.CreateSeries(c.Request.Context(), req)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": gin.H{
		"seriesId":     members[0].AppointmentID,
		"count":        len(members),
		"appointments": members,
	}})
}

// GetSeries handles GET /api/appointments/:id/series.
func (h *BookingHandler) GetSeries(c *gin.Context) {
	appt, err := h.appointments.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if appt == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "appointment not found"})
		return
	}
	if appt.SeriesID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "appointment is not part of a series"})
		return
	}
	members, err := h.appointments.GetSeries(c.Request.Context(), appt.SeriesID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": members})
}

// CancelSeries handles PUT /api/appointments/:id/series/cancel. Cancels
// every remaining non-terminal member of the series.
func (h *BookingHandler) CancelSeries(c *gin.Context) {
	var req booking.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}

	cancelled, err := h.svc.CancelSeries(c.Request.Context(), c.Param("id"), req.Reason, req.Source)
	if err != nil {
		respondBookingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"cancelled": cancelled}})
}
