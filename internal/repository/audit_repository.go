package repository

import (
	"context"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/query"
	"gorm.io/gorm"
)

// AuditFilter narrows an audit log listing
type AuditFilter struct {
	EntityID string
	UserID   string
	Action   string
}

// AuditRepository defines the interface for audit trail access
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditFilter, page query.Page) ([]models.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Omit("User").Create(entry).Error
}

// List returns audit entries newest first
func (r *auditRepository) List(ctx context.Context, filter AuditFilter, page query.Page) ([]models.AuditLog, int64, error) {
	var logs []models.AuditLog
	var total int64

	db := r.db.WithContext(ctx).Model(&models.AuditLog{})
	if filter.EntityID != "" {
		db = db.Where("entity_id = ?", filter.EntityID)
	}
	if filter.UserID != "" {
		db = db.Where("user_id = ?", filter.UserID)
	}
	if filter.Action != "" {
		db = db.Where("action = ?", filter.Action)
	}

	// Count total using a separate session so the main query is not altered by Count()
	if err := db.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("User").
		Order("created_at DESC").
		Order("id DESC").
		Offset(page.Offset()).
		Limit(page.Limit()).
		Find(&logs).Error
	return logs, total, err
}
