package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedly/config"
	"schedly/cron"
	"schedly/database"
	appointmentRepo "schedly/database/repository/appointment"
	businessRepo "schedly/database/repository/business"
	customerRepo "schedly/database/repository/customer"
	"schedly/handlers"
	"schedly/middleware"
	"schedly/routes"
	"schedly/services/availability"
	"schedly/services/booking"
	"schedly/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bizRepo := businessRepo.NewMongoBusinessRepo()
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	custRepo := customerRepo.NewMongoCustomerRepo()

	{
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := apptRepo.EnsureIndexes(ctx); err != nil {
			logger.Sugar().Fatalf("main: failed to ensure appointment indexes: %v", err)
		}
		cancel()
	}

	cacheClient := utils.GetCacheClient()
	taskClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer taskClient.Close()

	// services.
	calc := &availability.Calculator{Appointments: apptRepo}
	availabilitySvc := &availability.Service{
		Businesses:   bizRepo,
		Appointments: apptRepo,
		Calc:         calc,
		Cache:        cacheClient,
		CacheTTL:     time.Duration(config.AppConfig.AvailabilityCacheTTL) * time.Second,
	}
	bookingSvc := &booking.DefaultBookingService{
		Businesses:   bizRepo,
		Appointments: apptRepo,
		Customers:    custRepo,
		Availability: calc,
		Cache:        cacheClient,
		TaskClient:   taskClient,
		ReminderLead: time.Duration(config.AppConfig.ReminderLeadHours) * time.Hour,
	}

	// Background worker: reminders and the completion sweep.
	cron.InitWorker(apptRepo)

	handlerBundle := &handlers.HandlerBundle{
		Business:     handlers.NewBusinessHandler(bizRepo, cacheClient),
		Availability: handlers.NewAvailabilityHandler(availabilitySvc),
		Booking:      handlers.NewBookingHandler(bookingSvc, apptRepo),
	}
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
