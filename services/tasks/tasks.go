package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	TypeAppointmentReminder = "appointment:reminder"
	TypeCompletionSweep     = "appointment:sweep"
)

// ReminderPayload identifies the appointment a reminder fires for.
type ReminderPayload struct {
	AppointmentID string `json:"appointmentId"`
}

// NewReminderTask builds the reminder task scheduled at fireAt.
func NewReminderTask(appointmentID string, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(ReminderPayload{AppointmentID: appointmentID})
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeAppointmentReminder, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// NewCompletionSweepTask builds the periodic sweep that moves past
// CONFIRMED appointments to COMPLETED.
func NewCompletionSweepTask() *asynq.Task {
	return asynq.NewTask(TypeCompletionSweep, nil)
}
