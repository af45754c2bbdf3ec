package models

import (
	"time"

	"gorm.io/gorm"
)

// Document is a file attached to a contract. Uploads are handled by a separate service;
// this API only counts documents and relies on the FK cascade when a contract is deleted.
type Document struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ContractID   string    `gorm:"type:varchar(36);not null;index" json:"contractId"`
	Name         string    `gorm:"not null" json:"name"`
	MimeType     string    `gorm:"size:100" json:"mimeType"`
	SizeBytes    int64     `json:"sizeBytes"`
	StoragePath  string    `json:"-"`
	UploadedByID string    `gorm:"type:varchar(36)" json:"uploadedById"`
	CreatedAt    time.Time `json:"createdAt"`

	Contract *Contract `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Document) TableName() string {
	return "documents"
}

func (d *Document) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	return nil
}

// ContractAnalysis stores the outcome of an AI review of a contract
type ContractAnalysis struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	ContractID string    `gorm:"type:varchar(36);not null;index" json:"contractId"`
	Provider   string    `gorm:"size:40;not null" json:"provider"`
	Model      string    `gorm:"size:80" json:"model"`
	Summary    string    `gorm:"type:text" json:"summary"`
	RiskScore  *float64  `json:"riskScore"`
	TokensUsed int       `json:"tokensUsed"`
	CostUSD    float64   `gorm:"type:decimal(10,4)" json:"costUsd"`
	CreatedAt  time.Time `json:"createdAt"`

	Contract *Contract `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ContractAnalysis) TableName() string {
	return "contract_analyses"
}

func (a *ContractAnalysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = NewID()
	}
	return nil
}
