package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/query"
	"github.com/counselflow/counselflow-api/internal/repository"
	"github.com/counselflow/counselflow-api/internal/validation"
	"golang.org/x/sync/errgroup"
)

// ExpiringWindow is how far ahead a contract counts as expiring
const ExpiringWindow = 30 * 24 * time.Hour

// Window is an inclusive time range
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// PeriodStats aggregates the contracts created within one window
type PeriodStats struct {
	Total      int64   `json:"total"`
	Active     int64   `json:"active"`
	TotalValue float64 `json:"totalValue"`
	Expiring   int64   `json:"expiring"`
}

// PeriodChanges holds the formatted percent change of each PeriodStats figure
type PeriodChanges struct {
	Total      string `json:"total"`
	Active     string `json:"active"`
	TotalValue string `json:"totalValue"`
	Expiring   string `json:"expiring"`
}

// OverviewStats aggregates every visible contract regardless of window
type OverviewStats struct {
	Total        int64            `json:"total"`
	Active       int64            `json:"active"`
	TotalValue   float64          `json:"totalValue"`
	ExpiringSoon int64            `json:"expiringSoon"`
	ByType       map[string]int64 `json:"byType"`
	ByStatus     map[string]int64 `json:"byStatus"`
}

// ContractStats is the response of the statistics endpoint
type ContractStats struct {
	CurrentPeriod    Window        `json:"currentPeriod"`
	ComparisonPeriod Window        `json:"comparisonPeriod"`
	Current          PeriodStats   `json:"current"`
	Previous         PeriodStats   `json:"previous"`
	Changes          PeriodChanges `json:"changes"`
	Overview         OverviewStats `json:"overview"`
}

type ContractStatsService struct {
	repo repository.ContractRepository
	now  func() time.Time
}

func NewContractStatsService(repo repository.ContractRepository) *ContractStatsService {
	return &ContractStatsService{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Compute runs every aggregation concurrently and derives the period-over-period changes
func (s *ContractStatsService) Compute(ctx context.Context, caller policy.Caller, q *validation.StatsQuery) (*ContractStats, error) {
	now := s.now()
	current, comparison := ResolveWindows(q, now)
	visible := query.Visibility(caller)

	stats := &ContractStats{
		CurrentPeriod:    current,
		ComparisonPeriod: comparison,
	}

	g, gctx := errgroup.WithContext(ctx)
	s.period(gctx, g, visible, current, now, &stats.Current)
	s.period(gctx, g, visible, comparison, now, &stats.Previous)
	s.overview(gctx, g, visible, now, &stats.Overview)

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute contract statistics: %w", err)
	}

	stats.Changes = PeriodChanges{
		Total:      FormatPercentChange(float64(stats.Current.Total), float64(stats.Previous.Total)),
		Active:     FormatPercentChange(float64(stats.Current.Active), float64(stats.Previous.Active)),
		TotalValue: FormatPercentChange(stats.Current.TotalValue, stats.Previous.TotalValue),
		Expiring:   FormatPercentChange(float64(stats.Current.Expiring), float64(stats.Previous.Expiring)),
	}
	return stats, nil
}

func (s *ContractStatsService) period(ctx context.Context, g *errgroup.Group, visible query.Filter, w Window, now time.Time, out *PeriodStats) {
	inWindow := visible.And(query.Between(query.ColCreatedAt, w.Start, w.End))

	g.Go(func() (err error) {
		out.Total, err = s.repo.Count(ctx, inWindow)
		return err
	})
	g.Go(func() (err error) {
		out.Active, err = s.repo.Count(ctx, inWindow.And(query.In(query.ColStatus, models.ActiveContractStatuses)))
		return err
	})
	g.Go(func() (err error) {
		out.TotalValue, err = s.repo.SumValue(ctx, inWindow)
		return err
	})
	g.Go(func() (err error) {
		out.Expiring, err = s.repo.Count(ctx, inWindow.And(
			query.NotNull(query.ColEndDate),
			query.Lte(query.ColEndDate, now.Add(ExpiringWindow)),
		))
		return err
	})
}

func (s *ContractStatsService) overview(ctx context.Context, g *errgroup.Group, visible query.Filter, now time.Time, out *OverviewStats) {
	g.Go(func() (err error) {
		out.Total, err = s.repo.Count(ctx, visible)
		return err
	})
	g.Go(func() (err error) {
		out.Active, err = s.repo.Count(ctx, visible.And(query.In(query.ColStatus, models.ActiveContractStatuses)))
		return err
	})
	g.Go(func() (err error) {
		out.TotalValue, err = s.repo.SumValue(ctx, visible)
		return err
	})
	g.Go(func() (err error) {
		out.ExpiringSoon, err = s.repo.Count(ctx, visible.And(
			query.Between(query.ColEndDate, now, now.Add(ExpiringWindow)),
		))
		return err
	})
	g.Go(func() (err error) {
		out.ByType, err = s.repo.CountBy(ctx, visible, query.ColType)
		return err
	})
	g.Go(func() (err error) {
		out.ByStatus, err = s.repo.CountBy(ctx, visible, query.ColStatus)
		return err
	})
}

// ResolveWindows picks the current and comparison windows.
// Without dates the current window is this month to date and the comparison is the previous
// calendar month. A current window without a comparison is compared with the period of equal
// length that ends just before it starts.
func ResolveWindows(q *validation.StatsQuery, now time.Time) (current, comparison Window) {
	now = now.UTC()
	if q != nil && q.StartDate != nil && q.EndDate != nil {
		current = Window{Start: *q.StartDate, End: *q.EndDate}
	} else {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		current = Window{Start: monthStart, End: now}
	}

	switch {
	case q != nil && q.CompareStartDate != nil && q.CompareEndDate != nil:
		comparison = Window{Start: *q.CompareStartDate, End: *q.CompareEndDate}
	case q != nil && q.StartDate != nil && q.EndDate != nil:
		comparison = PreviousPeriod(current)
	default:
		thisMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		comparison = Window{Start: thisMonth.AddDate(0, -1, 0), End: thisMonth.Add(-time.Nanosecond)}
	}
	return current, comparison
}

// PreviousPeriod returns the window of equal length ending immediately before w starts
func PreviousPeriod(w Window) Window {
	duration := w.End.Sub(w.Start)
	end := w.Start.Add(-time.Nanosecond)
	return Window{Start: end.Add(-duration), End: end}
}

// FormatPercentChange renders (current-previous)/previous as a signed whole percentage.
// A rise from zero is "+100%" and no movement from zero is "0%".
func FormatPercentChange(current, previous float64) string {
	if previous == 0 {
		if current > 0 {
			return "+100%"
		}
		return "0%"
	}
	change := math.Floor((current-previous)/previous*100 + 0.5)
	if change >= 0 {
		return fmt.Sprintf("+%.0f%%", change)
	}
	return fmt.Sprintf("%.0f%%", change)
}
