package repository

import (
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User     UserRepository
	Client   ClientRepository
	Contract ContractRepository
	Audit    AuditRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:     NewUserRepository(db),
		Client:   NewClientRepository(db),
		Contract: NewContractRepository(db),
		Audit:    NewAuditRepository(db),
	}
}
