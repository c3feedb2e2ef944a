package handlers

import (
	"net/http"
	"strings"
	"time"

	businessRepo "schedly/database/repository/business"
	"schedly/models"
	"schedly/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BusinessHandler struct {
	repo  businessRepo.BusinessRepository
	cache *redis.Client
}

func NewBusinessHandler(repo businessRepo.BusinessRepository, cache *redis.Client) *BusinessHandler {
	return &BusinessHandler{repo: repo, cache: cache}
}

// invalidate drops cached availability after any schedule-affecting write.
func (h *BusinessHandler) invalidate(c *gin.Context, businessID string) {
	if h.cache == nil {
		return
	}
	if err := utils.InvalidateAvailability(c.Request.Context(), h.cache, businessID); err != nil {
		utils.GetLogger().Warn("failed to invalidate availability cache",
			zap.String("businessId", businessID), zap.Error(err))
	}
}

func (h *BusinessHandler) load(c *gin.Context) *models.Business {
	key := c.Param("businessId")
	biz, err := h.repo.GetByID(c.Request.Context(), key)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return nil
	}
	if biz == nil {
		biz, err = h.repo.GetBySlug(c.Request.Context(), key)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
			return nil
		}
	}
	if biz == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "business not found"})
		return nil
	}
	return biz
}

// CreateBusiness handles POST /api/businesses.
func (h *BusinessHandler) CreateBusiness(c *gin.Context) {
	var input struct {
		Name     string                  `json:"name" binding:"required"`
		Slug     string                  `json:"slug"`
		Timezone string                  `json:"timezone" binding:"required"`
		Hours    []models.BusinessHours  `json:"hours"`
		Settings models.BusinessSettings `json:"settings"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	if _, err := time.LoadLocation(input.Timezone); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown timezone: " + input.Timezone})
		return
	}
	slug := input.Slug
	if slug == "" {
		slug = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(input.Name), " ", "-"))
	}

	now := time.Now().UTC()
	biz := models.Business{
		ID:        uuid.New().String(),
		Name:      input.Name,
		Slug:      slug,
		Timezone:  input.Timezone,
		Hours:     input.Hours,
		Settings:  input.Settings,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Create(c.Request.Context(), &biz); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": biz})
}

// GetBusiness handles GET /api/businesses/:businessId.
func (h *BusinessHandler) GetBusiness(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": biz})
}

// SetHours handles PUT /api/businesses/:businessId/hours, replacing the
// full weekly schedule.
func (h *BusinessHandler) SetHours(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	var hours []models.BusinessHours
	if err := c.ShouldBindJSON(&hours); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	for _, entry := range hours {
		if entry.Weekday < 0 || entry.Weekday > 6 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "weekday must be 0..6"})
			return
		}
		if !entry.Closed && entry.Open >= entry.Close {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "open must be before close"})
			return
		}
	}
	if err := h.repo.SetHours(c.Request.Context(), biz.ID, hours); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.invalidate(c, biz.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddSpecialDate handles POST /api/businesses/:businessId/special-dates.
func (h *BusinessHandler) AddSpecialDate(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	var sd models.SpecialDate
	if err := c.ShouldBindJSON(&sd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	if _, err := time.Parse("2006-01-02", sd.Date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "date must be YYYY-MM-DD"})
		return
	}
	if !sd.Closed && (sd.Open == "" || sd.Close == "" || sd.Open >= sd.Close) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "an open special date needs valid open/close hours"})
		return
	}
	if err := h.repo.AddSpecialDate(c.Request.Context(), biz.ID, sd); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.invalidate(c, biz.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": sd})
}

// RemoveSpecialDate handles DELETE /api/businesses/:businessId/special-dates/:date.
func (h *BusinessHandler) RemoveSpecialDate(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	if err := h.repo.RemoveSpecialDate(c.Request.Context(), biz.ID, c.Param("date")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.invalidate(c, biz.ID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateSettings handles PUT /api/businesses/:businessId/settings.
func (h *BusinessHandler) UpdateSettings(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	var settings models.BusinessSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	if settings.BufferTimeMinutes < 0 || settings.SlotIntervalMinutes < 0 || settings.AdvanceBookingDays < 0 || settings.SameDayLeadTime < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "settings values must not be negative"})
		return
	}
	if err := h.repo.UpdateSettings(c.Request.Context(), biz.ID, settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.invalidate(c, biz.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": settings})
}

// CreateService handles POST /api/businesses/:businessId/services.
func (h *BusinessHandler) CreateService(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	if svc.Name == "" || svc.DurationMinutes <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "name and a positive durationMinutes are required"})
		return
	}

	now := time.Now().UTC()
	svc.ID = uuid.New().String()
	svc.BusinessID = biz.ID
	svc.Active = true
	svc.CreatedAt = now
	svc.UpdatedAt = now
	if err := h.repo.CreateService(c.Request.Context(), &svc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": svc})
}

// UpdateService handles PUT /api/businesses/:businessId/services/:serviceId.
func (h *BusinessHandler) UpdateService(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	existing, err := h.repo.GetService(c.Request.Context(), biz.ID, c.Param("serviceId"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "service not found"})
		return
	}

	var svc models.Service
	if err := c.ShouldBindJSON(&svc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid input", "details": err.Error()})
		return
	}
	svc.ID = existing.ID
	svc.BusinessID = biz.ID
	svc.CreatedAt = existing.CreatedAt
	svc.UpdatedAt = time.Now().UTC()
	if err := h.repo.UpdateService(c.Request.Context(), &svc); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	h.invalidate(c, biz.ID)
	c.JSON(http.StatusOK, gin.H{"success": true, "data": svc})
}

// ListServices handles GET /api/businesses/:businessId/services.
func (h *BusinessHandler) ListServices(c *gin.Context) {
	biz := h.load(c)
	if biz == nil {
		return
	}
	services, err := h.repo.ListServices(c.Request.Context(), biz.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": services})
}
