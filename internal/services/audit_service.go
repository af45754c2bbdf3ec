package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/counselflow/counselflow-api/internal/jobs"
	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/query"
	"github.com/counselflow/counselflow-api/internal/repository"
	"github.com/counselflow/counselflow-api/pkg/logger"
)

// JobRunner runs work in the background
type JobRunner interface {
	EnqueueAsync(name string, job jobs.Job)
}

type AuditService struct {
	repo   repository.AuditRepository
	runner JobRunner
}

func NewAuditService(repo repository.AuditRepository, runner JobRunner) *AuditService {
	return &AuditService{repo: repo, runner: runner}
}

// Log records an audit entry synchronously
func (s *AuditService) Log(ctx context.Context, caller policy.Caller, action, entity, entityID string, details any) error {
	entry := &models.AuditLog{
		UserID:    caller.UserID,
		Action:    action,
		Entity:    entity,
		EntityID:  entityID,
		Details:   encodeDetails(details),
		IPAddress: caller.IPAddress,
		UserAgent: truncate(caller.UserAgent, 255),
	}
	return s.repo.Create(ctx, entry)
}

// Record writes the entry in the background; failures are logged, never returned
func (s *AuditService) Record(ctx context.Context, caller policy.Caller, action, entity, entityID string, details any) {
	log := logger.WithContext(ctx)
	s.runner.EnqueueAsync("audit:"+action, func(jobCtx context.Context) error {
		if err := s.Log(jobCtx, caller, action, entity, entityID, details); err != nil {
			log.Error("failed to write audit entry", "action", action, "entity_id", entityID, "error", err)
			return err
		}
		return nil
	})
}

// List retrieves audit logs with filters
func (s *AuditService) List(ctx context.Context, filter repository.AuditFilter, page, limit int) ([]models.AuditLog, query.Pagination, error) {
	logs, total, err := s.repo.List(ctx, filter, query.Page{Number: page, Size: limit})
	if err != nil {
		return nil, query.Pagination{}, fmt.Errorf("failed to fetch audit logs: %w", err)
	}
	return logs, query.NewPagination(page, limit, total), nil
}

func encodeDetails(details any) string {
	switch d := details.(type) {
	case nil:
		return ""
	case string:
		return d
	}
	b, err := json.Marshal(details)
	if err != nil {
		return fmt.Sprintf("%v", details)
	}
	return string(b)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
