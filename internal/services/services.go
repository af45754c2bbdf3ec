package services

import (
	"github.com/counselflow/counselflow-api/internal/config"
	"github.com/counselflow/counselflow-api/internal/jobs"
	"github.com/counselflow/counselflow-api/internal/repository"
)

// Services holds all service instances
type Services struct {
	Contract *ContractService
	Stats    *ContractStatsService
	Export   *ExportService
	Audit    *AuditService
	Email    *EmailService
	Reminder *ReminderService
	Job      *JobService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, worker *jobs.Worker, cfg *config.Config) *Services {
	auditSvc := NewAuditService(repos.Audit, worker)
	emailSvc := NewEmailService(cfg)
	reminderSvc := NewReminderService(repos.Contract, emailSvc, cfg.ExpiryReminderDays)

	return &Services{
		Contract: NewContractService(repos.Contract, repos.Client, repos.User, auditSvc),
		Stats:    NewContractStatsService(repos.Contract),
		Export:   NewExportService(repos.Contract),
		Audit:    auditSvc,
		Email:    emailSvc,
		Reminder: reminderSvc,
		Job:      NewJobService(worker, reminderSvc),
	}
}
