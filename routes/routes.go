package routes

import (
	"net/http"
	"time"

	"schedly/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBusinessRoutes registers business and schedule configuration
// endpoints.
func RegisterBusinessRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/businesses")
	{
		api.POST("", hb.Business.CreateBusiness)
		api.GET("/:businessId", hb.Business.GetBusiness)
		api.PUT("/:businessId/hours", hb.Business.SetHours)
		api.POST("/:businessId/special-dates", hb.Business.AddSpecialDate)
		api.DELETE("/:businessId/special-dates/:date", hb.Business.RemoveSpecialDate)
		api.PUT("/:businessId/settings", hb.Business.UpdateSettings)

		api.POST("/:businessId/services", hb.Business.CreateService)
		api.GET("/:businessId/services", hb.Business.ListServices)
		api.PUT("/:businessId/services/:serviceId", hb.Business.UpdateService)
	}
}

// RegisterAvailabilityRoutes registers the read-side slot endpoints.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.GET("/:businessId", hb.Availability.GetAvailability)
		api.GET("/:businessId/check", hb.Availability.CheckSlot)
	}
}

// RegisterAppointmentRoutes registers the booking lifecycle endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.POST("", hb.Booking.CreateAppointment)
		api.GET("", hb.Booking.ListAppointments)
		api.POST("/series", hb.Booking.CreateSeries)
		api.GET("/:id", hb.Booking.GetAppointment)
		api.PUT("/:id/reschedule", hb.Booking.RescheduleAppointment)
		api.PUT("/:id/cancel", hb.Booking.CancelAppointment)
		api.GET("/:id/series", hb.Booking.GetSeries)
		api.PUT("/:id/series/cancel", hb.Booking.CancelSeries)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterBusinessRoutes(r, hb)
	RegisterAvailabilityRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
}
