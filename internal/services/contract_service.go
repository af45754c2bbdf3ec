package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/query"
	"github.com/counselflow/counselflow-api/internal/repository"
	"github.com/counselflow/counselflow-api/internal/statemachine"
	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/counselflow/counselflow-api/pkg/logger"
	"gorm.io/gorm"
)

type ContractService struct {
	repo       repository.ContractRepository
	clientRepo repository.ClientRepository
	userRepo   repository.UserRepository
	auditSvc   *AuditService
	now        func() time.Time
}

func NewContractService(
	repo repository.ContractRepository,
	clientRepo repository.ClientRepository,
	userRepo repository.UserRepository,
	auditSvc *AuditService,
) *ContractService {
	return &ContractService{
		repo:       repo,
		clientRepo: clientRepo,
		userRepo:   userRepo,
		auditSvc:   auditSvc,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// List returns one page of the contracts visible to caller
func (s *ContractService) List(ctx context.Context, caller policy.Caller, q *validation.ContractQuery) ([]models.Contract, query.Pagination, error) {
	contracts, total, err := s.repo.List(ctx, query.ContractList(caller, q))
	if err != nil {
		return nil, query.Pagination{}, fmt.Errorf("failed to fetch contracts: %w", err)
	}
	return contracts, query.NewPagination(q.Page, q.Limit, total), nil
}

// Search returns up to q.Limit visible contracts matching q.Q, newest first
func (s *ContractService) Search(ctx context.Context, caller policy.Caller, q *validation.SearchQuery) ([]models.Contract, error) {
	contracts, err := s.repo.Find(ctx, query.ContractSearch(caller, q))
	if err != nil {
		return nil, fmt.Errorf("failed to search contracts: %w", err)
	}
	return contracts, nil
}

// Get loads a contract with its detail projection. Invisible contracts are reported as not found.
func (s *ContractService) Get(ctx context.Context, caller policy.Caller, id string) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !policy.CanAccess(caller, contract.AssignedLawyerID) {
		return nil, ErrNotFound
	}
	return contract, nil
}

// Create stores a new DRAFT contract assigned to the caller
func (s *ContractService) Create(ctx context.Context, caller policy.Caller, req *validation.CreateContractRequest) (*models.Contract, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.checkClient(ctx, caller, req.ClientID); err != nil {
		return nil, err
	}

	contract := req.ToModel(caller.UserID)
	if err := s.repo.Create(ctx, contract); err != nil {
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return nil, ErrClientNotVisible
		}
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	logger.WithContext(ctx).Info("contract created", "contract_id", contract.ID, "client_id", contract.ClientID)
	s.auditSvc.Record(ctx, caller, models.AuditActionCreate, models.AuditEntityContract, contract.ID,
		map[string]any{"title": contract.Title, "clientId": contract.ClientID})

	return s.reload(ctx, contract.ID)
}

// Update applies a partial patch. Status changes go through the state machine.
func (s *ContractService) Update(ctx context.Context, caller policy.Caller, id string, req *validation.UpdateContractRequest) (*models.Contract, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	contract, err := s.findVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if req.IsEmpty() {
		return s.reload(ctx, id)
	}

	if req.ClientID != nil && *req.ClientID != contract.ClientID {
		if err := s.checkClient(ctx, caller, *req.ClientID); err != nil {
			return nil, err
		}
	}
	if req.AssignedLawyerID != nil && *req.AssignedLawyerID != contract.AssignedLawyerID {
		if _, err := s.userRepo.FindByID(ctx, *req.AssignedLawyerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				verr := &validation.Error{}
				verr.Add("assignedLawyerId", ErrLawyerNotFound.Error())
				return nil, verr
			}
			return nil, fmt.Errorf("failed to load lawyer: %w", err)
		}
	}

	patch := *req
	patch.Status = nil
	patch.ApplyTo(contract)

	if contract.EndDate != nil && contract.EndDate.Before(contract.StartDate) {
		verr := &validation.Error{}
		verr.Add("endDate", "must not be before startDate")
		return nil, verr
	}

	var transition *statemachine.Transition
	if req.Status != nil {
		transition, err = statemachine.NewContractFSM(contract).TransitionTo(ctx, *req.Status)
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		if errors.Is(err, repository.ErrReferenceNotFound) {
			return nil, ErrClientNotVisible
		}
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	details := map[string]any{"fields": changedFields(req)}
	if transition != nil {
		details["from"] = transition.From
		details["to"] = transition.To
	}
	s.auditSvc.Record(ctx, caller, models.AuditActionUpdate, models.AuditEntityContract, id, details)

	return s.reload(ctx, id)
}

// UpdateStatus moves the contract to status; setting the current status is a no-op
func (s *ContractService) UpdateStatus(ctx context.Context, caller policy.Caller, id string, req *validation.StatusUpdateRequest) (*models.Contract, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	contract, err := s.findVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	transition, err := statemachine.NewContractFSM(contract).TransitionTo(ctx, req.Status)
	if err != nil {
		return nil, err
	}
	if transition == nil {
		return s.reload(ctx, id)
	}

	if err := s.repo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract status: %w", err)
	}

	logger.WithContext(ctx).Info("contract status changed", "contract_id", id, "from", transition.From, "to", transition.To)
	s.auditSvc.Record(ctx, caller, models.AuditActionStatus, models.AuditEntityContract, id,
		map[string]any{"from": transition.From, "to": transition.To})

	return s.reload(ctx, id)
}

// Delete removes a visible contract
func (s *ContractService) Delete(ctx context.Context, caller policy.Caller, id string) error {
	contract, err := s.findVisible(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete contract: %w", err)
	}

	logger.WithContext(ctx).Info("contract deleted", "contract_id", id)
	s.auditSvc.Record(ctx, caller, models.AuditActionDelete, models.AuditEntityContract, id,
		map[string]any{"title": contract.Title})
	return nil
}

// Duplicate copies a visible contract as a new DRAFT starting now.
// The read and the insert are not atomic.
func (s *ContractService) Duplicate(ctx context.Context, caller policy.Caller, id string) (*models.Contract, error) {
	source, err := s.findVisible(ctx, caller, id)
	if err != nil {
		return nil, err
	}

	copied := source.Duplicate(s.now())
	if err := s.repo.Create(ctx, copied); err != nil {
		return nil, fmt.Errorf("failed to duplicate contract: %w", err)
	}

	s.auditSvc.Record(ctx, caller, models.AuditActionDuplicate, models.AuditEntityContract, copied.ID,
		map[string]any{"sourceId": source.ID})

	return s.reload(ctx, copied.ID)
}

func (s *ContractService) findVisible(ctx context.Context, caller policy.Caller, id string) (*models.Contract, error) {
	contract, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	if !policy.CanAccess(caller, contract.AssignedLawyerID) {
		return nil, ErrNotFound
	}
	return contract, nil
}

// checkClient requires the client to exist and be visible to caller
func (s *ContractService) checkClient(ctx context.Context, caller policy.Caller, clientID string) error {
	client, err := s.clientRepo.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotVisible
		}
		return fmt.Errorf("failed to load client: %w", err)
	}
	if !policy.CanAccess(caller, client.AssignedLawyerID) {
		return ErrClientNotVisible
	}
	return nil
}

func (s *ContractService) reload(ctx context.Context, id string) (*models.Contract, error) {
	contract, err := s.repo.FindByIDWithDetails(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return contract, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to fetch contract: %w", err)
}

func changedFields(req *validation.UpdateContractRequest) []string {
	var fields []string
	add := func(present bool, name string) {
		if present {
			fields = append(fields, name)
		}
	}
	add(req.Title != nil, "title")
	add(req.Description != nil, "description")
	add(req.Type != nil, "type")
	add(req.Status != nil, "status")
	add(req.Value != nil, "value")
	add(req.Currency != nil, "currency")
	add(req.StartDate != nil, "startDate")
	add(req.EndDate != nil, "endDate")
	add(req.RenewalTerms != nil, "renewalTerms")
	add(req.Tags != nil, "tags")
	add(req.RiskLevel != nil, "riskLevel")
	add(req.Priority != nil, "priority")
	add(req.ClientID != nil, "clientId")
	add(req.AssignedLawyerID != nil, "assignedLawyerId")
	return fields
}
