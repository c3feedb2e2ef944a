package cron

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"schedly/config"
	appointmentRepo "schedly/database/repository/appointment"
	"schedly/models"
	"schedly/services/tasks"
	"schedly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// InitWorker starts the async worker and the periodic sweep scheduler in
// the background.
func InitWorker(appointments appointmentRepo.AppointmentRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeAppointmentReminder, handleReminderTask(appointments))
	mux.HandleFunc(tasks.TypeCompletionSweep, handleSweepTask(appointments))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("@every 1h", tasks.NewCompletionSweepTask()); err != nil {
		log.Fatalf("[Worker] failed to register completion sweep: %v", err)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[Worker] scheduler stopped: %v", err)
		}
	}()

	go func() {
		log.Println("[Worker] starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Worker] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Worker] max retry attempts reached, exiting")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()
}

// handleReminderTask dispatches a due appointment reminder. Delivery is an
// external concern; the engine's responsibility ends at dispatch, and
// reminders for appointments that are no longer upcoming are dropped.
func handleReminderTask(appointments appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		logger := utils.GetLogger()

		var p tasks.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("reminder: invalid payload", zap.Error(err))
			return err
		}

		appt, err := appointments.GetByID(ctx, p.AppointmentID)
		if err != nil {
			return err
		}
		if appt == nil || (appt.Status != models.StatusConfirmed && appt.Status != models.StatusPending) {
			logger.Debug("reminder: appointment no longer upcoming, dropping",
				zap.String("appointmentID", p.AppointmentID))
			return nil
		}

		logger.Info("reminder due",
			zap.String("appointmentID", appt.ID),
			zap.String("customerEmail", appt.CustomerEmail),
			zap.String("date", appt.Date),
			zap.Time("start", appt.Start))
		return nil
	}
}

// handleSweepTask moves past CONFIRMED appointments to COMPLETED.
func handleSweepTask(appointments appointmentRepo.AppointmentRepository) asynq.HandlerFunc {
	return func(ctx context.Context, _ *asynq.Task) error {
		count, err := appointments.CompletePast(ctx, time.Now())
		if err != nil {
			return err
		}
		if count > 0 {
			utils.GetLogger().Info("completion sweep", zap.Int64("completed", count))
		}
		return nil
	}
}
