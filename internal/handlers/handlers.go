package handlers

import (
	"github.com/counselflow/counselflow-api/internal/services"
	"gorm.io/gorm"
)

// Handlers holds all handler instances
type Handlers struct {
	Health   *HealthHandler
	Contract *ContractHandler
	Audit    *AuditHandler
	Job      *JobHandler
}

// NewHandlers creates all handler instances
func NewHandlers(svcs *services.Services, db *gorm.DB) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(db),
		Contract: NewContractHandler(svcs.Contract, svcs.Stats, svcs.Export),
		Audit:    NewAuditHandler(svcs.Audit),
		Job:      NewJobHandler(svcs.Job),
	}
}
