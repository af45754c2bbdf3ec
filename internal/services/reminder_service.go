package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/repository"
	"github.com/counselflow/counselflow-api/pkg/logger"
)

// digestSender delivers one lawyer's expiring-contract digest
type digestSender interface {
	Enabled() bool
	SendExpiringDigest(ctx context.Context, lawyer *models.User, contracts []models.Contract, now time.Time) error
}

// ReminderResult summarizes one reminder run
type ReminderResult struct {
	Contracts int `json:"contracts"`
	Lawyers   int `json:"lawyers"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

// ReminderService notifies lawyers about contracts approaching their end date
type ReminderService struct {
	repo   repository.ContractRepository
	sender digestSender
	window time.Duration
	now    func() time.Time
}

func NewReminderService(repo repository.ContractRepository, sender digestSender, days int) *ReminderService {
	return &ReminderService{
		repo:   repo,
		sender: sender,
		window: time.Duration(days) * 24 * time.Hour,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SendExpiryReminders mails every active lawyer a digest of their live contracts
// ending within the reminder window. One failed digest does not stop the others.
func (s *ReminderService) SendExpiryReminders(ctx context.Context) (ReminderResult, error) {
	var result ReminderResult
	log := logger.WithContext(ctx)

	if !s.sender.Enabled() {
		log.Debug("expiry reminders skipped, email disabled")
		return result, nil
	}

	now := s.now()
	contracts, err := s.repo.FindExpiring(ctx, now, now.Add(s.window))
	if err != nil {
		return result, fmt.Errorf("failed to load expiring contracts: %w", err)
	}
	result.Contracts = len(contracts)

	// Group by lawyer keeping the soonest-first order
	var order []string
	byLawyer := make(map[string][]models.Contract)
	for _, c := range contracts {
		if _, seen := byLawyer[c.AssignedLawyerID]; !seen {
			order = append(order, c.AssignedLawyerID)
		}
		byLawyer[c.AssignedLawyerID] = append(byLawyer[c.AssignedLawyerID], c)
	}

	var errs []error
	for _, lawyerID := range order {
		group := byLawyer[lawyerID]
		lawyer := group[0].AssignedLawyer
		if lawyer.ID == "" || !lawyer.IsActive() {
			continue
		}
		result.Lawyers++

		if err := s.sender.SendExpiringDigest(ctx, &lawyer, group, now); err != nil {
			result.Failed++
			errs = append(errs, fmt.Errorf("digest for %s: %w", lawyer.Email, err))
			continue
		}
		result.Sent++
	}

	log.Info("expiry reminders processed",
		"contracts", result.Contracts, "lawyers", result.Lawyers, "sent", result.Sent, "failed", result.Failed)
	return result, errors.Join(errs...)
}
