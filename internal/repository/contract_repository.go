package repository

import (
	"context"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/query"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ContractRepository defines the interface for contract data access
type ContractRepository interface {
	FindByID(ctx context.Context, id string) (*models.Contract, error)
	FindByIDWithDetails(ctx context.Context, id string) (*models.Contract, error)
	Create(ctx context.Context, contract *models.Contract) error
	Update(ctx context.Context, contract *models.Contract) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, spec query.Spec) ([]models.Contract, int64, error)
	Find(ctx context.Context, spec query.Spec) ([]models.Contract, error)
	Count(ctx context.Context, where query.Filter) (int64, error)
	SumValue(ctx context.Context, where query.Filter) (float64, error)
	CountBy(ctx context.Context, where query.Filter, column string) (map[string]int64, error)
	FindExpiring(ctx context.Context, from, to time.Time) ([]models.Contract, error)
}

type contractRepository struct {
	db *gorm.DB
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *gorm.DB) ContractRepository {
	return &contractRepository{db: db}
}

func (r *contractRepository) FindByID(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// FindByIDWithDetails loads the contract with its client, assigned lawyer and dependent record counts
func (r *contractRepository) FindByIDWithDetails(ctx context.Context, id string) (*models.Contract, error) {
	var contract models.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("AssignedLawyer").
		Where("contracts.id = ?", id).
		First(&contract).Error
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&models.Document{}).
			Where("contract_id = ?", id).
			Count(&contract.DocumentCount).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&models.ContractAnalysis{}).
			Where("contract_id = ?", id).
			Count(&contract.AnalysisCount).Error
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *contractRepository) Create(ctx context.Context, contract *models.Contract) error {
	if err := r.db.WithContext(ctx).Create(contract).Error; err != nil {
		return translateError(err)
	}
	return nil
}

// Update writes every column of contract (last write wins)
func (r *contractRepository) Update(ctx context.Context, contract *models.Contract) error {
	err := r.db.WithContext(ctx).
		Omit("Client", "AssignedLawyer", "Documents", "Analyses").
		Save(contract).Error
	if err != nil {
		return translateError(err)
	}
	return nil
}

// Delete removes the contract; documents and analyses go with it through the FK cascade
func (r *contractRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Contract{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// List returns one page of contracts matching spec plus the total match count.
// The row fetch and the count run concurrently.
func (r *contractRepository) List(ctx context.Context, spec query.Spec) ([]models.Contract, int64, error) {
	var contracts []models.Contract
	var total int64

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		contracts, err = r.find(gctx, spec)
		return err
	})
	g.Go(func() error {
		return r.filtered(gctx, spec.Joins, spec.Where).Count(&total).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	return contracts, total, nil
}

// Find returns the rows matching spec without counting
func (r *contractRepository) Find(ctx context.Context, spec query.Spec) ([]models.Contract, error) {
	return r.find(ctx, spec)
}

func (r *contractRepository) Count(ctx context.Context, where query.Filter) (int64, error) {
	var total int64
	err := r.filtered(ctx, nil, where).Count(&total).Error
	return total, err
}

// SumValue sums contract value over the matching rows; contracts without a value count as 0
func (r *contractRepository) SumValue(ctx context.Context, where query.Filter) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.filtered(ctx, nil, where).
		Select("COALESCE(SUM(" + query.ColValue + "), 0) AS total").
		Scan(&result).Error
	return result.Total, err
}

// CountBy groups the matching rows by column and counts each group
func (r *contractRepository) CountBy(ctx context.Context, where query.Filter, column string) (map[string]int64, error) {
	var rows []struct {
		Grp   string
		Total int64
	}
	err := r.filtered(ctx, nil, where).
		Select(column + " AS grp, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Grp] = row.Total
	}
	return counts, nil
}

// FindExpiring returns live contracts whose end date falls within [from, to], soonest first
func (r *contractRepository) FindExpiring(ctx context.Context, from, to time.Time) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("AssignedLawyer").
		Where("end_date >= ? AND end_date <= ?", from, to).
		Where("status NOT IN ?", []string{models.ContractStatusTerminated, models.ContractStatusExpired}).
		Order("end_date ASC").
		Find(&contracts).Error
	return contracts, err
}

func (r *contractRepository) find(ctx context.Context, spec query.Spec) ([]models.Contract, error) {
	var contracts []models.Contract

	db := r.filtered(ctx, spec.Joins, spec.Where).Select("contracts.*")
	if order := spec.Sort.String(); order != "" {
		db = db.Order(order)
	}
	if spec.Page.Size > 0 {
		db = db.Offset(spec.Page.Offset()).Limit(spec.Page.Limit())
	}

	err := db.
		Preload("Client").
		Preload("AssignedLawyer").
		Find(&contracts).Error
	return contracts, err
}

// filtered starts a fresh statement so concurrent callers never share query state
func (r *contractRepository) filtered(ctx context.Context, joins []string, where query.Filter) *gorm.DB {
	db := r.db.WithContext(ctx).Model(&models.Contract{})
	for _, j := range joins {
		db = db.Joins(j)
	}
	if c := where.Clause(); !c.IsZero() {
		db = db.Where(c.SQL, c.Args...)
	}
	return db
}
