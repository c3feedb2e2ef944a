package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"schedly/services/availability"

	"github.com/gin-gonic/gin"
)

type AvailabilityHandler struct {
	svc *availability.Service
}

func NewAvailabilityHandler(svc *availability.Service) *AvailabilityHandler {
	return &AvailabilityHandler{svc: svc}
}

// boolQuery reads a query flag, defaulting when absent.
func boolQuery(c *gin.Context, name string, def bool) bool {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def
	}
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return val
}

func intQuery(c *gin.Context, name string, def int) int {
	raw, ok := c.GetQuery(name)
	if !ok {
		return def
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return val
}

// GetAvailability handles GET /api/availability/:businessId.
// The range is selected by ?date=, ?startDate=&endDate= or ?days=.
func (h *AvailabilityHandler) GetAvailability(c *gin.Context) {
	req := availability.QueryRequest{
		BusinessKey:      c.Param("businessId"),
		ServiceID:        c.Query("serviceId"),
		Date:             c.Query("date"),
		StartDate:        c.Query("startDate"),
		EndDate:          c.Query("endDate"),
		Days:             intQuery(c, "days", 0),
		FallbackDuration: intQuery(c, "duration", 0),
		IncludeSlots:     boolQuery(c, "slots", true),
		IncludeSummary:   boolQuery(c, "summary", false),
		IncludeRules:     boolQuery(c, "rules", false),
		IncludeHeatmap:   boolQuery(c, "heatmap", false),
		IncludePeakHours: boolQuery(c, "peakHours", false),
		FindNext:         boolQuery(c, "nextAvailable", false),
		PreferredTime:    c.Query("preferredTime"),
		PeakTopK:         intQuery(c, "peakTopK", 0),
	}

	result, err := h.svc.GetAvailability(c.Request.Context(), req)
	if err != nil {
		respondAvailabilityError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": result})
}

// CheckSlot handles GET /api/availability/:businessId/check.
func (h *AvailabilityHandler) CheckSlot(c *gin.Context) {
	date := c.Query("date")
	start := c.Query("start")
	if date == "" || start == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "date and start are required"})
		return
	}

	check, err := h.svc.CheckSlot(
		c.Request.Context(),
		c.Param("businessId"),
		c.Query("serviceId"),
		date,
		start,
		intQuery(c, "duration", 0),
	)
	if err != nil {
		respondAvailabilityError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": check})
}

func respondAvailabilityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, availability.ErrBusinessNotFound),
		errors.Is(err, availability.ErrServiceNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, availability.ErrRangeTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
	}
}
