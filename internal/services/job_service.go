package services

import (
	"context"
	"time"

	"github.com/counselflow/counselflow-api/internal/jobs"
	"github.com/counselflow/counselflow-api/pkg/logger"
)

// Scheduled job names
const (
	JobExpiryReminders = "expiry-reminders"
	JobWorkerHeartbeat = "worker-heartbeat"
)

type JobService struct {
	worker    *jobs.Worker
	reminders *ReminderService
}

func NewJobService(worker *jobs.Worker, reminders *ReminderService) *JobService {
	return &JobService{
		worker:    worker,
		reminders: reminders,
	}
}

// RegisterSchedules starts the recurring jobs
func (s *JobService) RegisterSchedules(reminderHour int) {
	s.worker.ScheduleDaily(JobExpiryReminders, reminderHour, 0, s.runReminders)
	s.worker.ScheduleEvery(JobWorkerHeartbeat, 15*time.Minute, func(ctx context.Context) error {
		stats := s.worker.GetStats()
		logger.Debug("worker heartbeat", "active", stats.ActiveJobs, "completed", stats.CompletedJobs, "failed", stats.FailedJobs)
		return nil
	})
}

// TriggerReminders queues an out-of-schedule reminder run
func (s *JobService) TriggerReminders() {
	s.worker.Enqueue(JobExpiryReminders, s.runReminders)
}

func (s *JobService) runReminders(ctx context.Context) error {
	_, err := s.reminders.SendExpiryReminders(ctx)
	return err
}

func (s *JobService) GetStatus() jobs.WorkerStats {
	return s.worker.GetStats()
}
