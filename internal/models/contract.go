package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Contract represents a legal agreement under management
type Contract struct {
	ID               string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Title            string     `gorm:"not null" json:"title"`
	Description      *string    `gorm:"type:text" json:"description"`
	Type             string     `gorm:"size:40;not null;index" json:"type"`
	Status           string     `gorm:"size:20;not null;index" json:"status"`
	RiskLevel        string     `gorm:"size:20;not null;index" json:"riskLevel"`
	Priority         string     `gorm:"size:20;not null" json:"priority"`
	Value            *float64   `gorm:"type:decimal(15,2)" json:"value"`
	Currency         string     `gorm:"size:3;not null" json:"currency"`
	StartDate        time.Time  `gorm:"not null" json:"startDate"`
	EndDate          *time.Time `gorm:"index" json:"endDate"`
	RenewalTerms     *string    `gorm:"type:text" json:"renewalTerms"`
	TagsJSON         string     `gorm:"column:tags;type:text;not null" json:"-"` // JSON array of tags
	Tags             []string   `gorm:"-" json:"tags"`
	ClientID         string     `gorm:"type:varchar(36);not null;index" json:"clientId"`
	AssignedLawyerID string     `gorm:"type:varchar(36);not null;index" json:"assignedLawyerId"`
	CreatedAt        time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`

	// Associations
	Client         Client             `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	AssignedLawyer User               `gorm:"foreignKey:AssignedLawyerID" json:"-"`
	Documents      []Document         `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"-"`
	Analyses       []ContractAnalysis `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE" json:"-"`

	// Filled by detail lookups, not persisted
	DocumentCount int64 `gorm:"-" json:"-"`
	AnalysisCount int64 `gorm:"-" json:"-"`
}

// TableName specifies the table name for Contract
func (Contract) TableName() string {
	return "contracts"
}

// Contract status constants
const (
	ContractStatusDraft       = "DRAFT"
	ContractStatusUnderReview = "UNDER_REVIEW"
	ContractStatusApproved    = "APPROVED"
	ContractStatusExecuted    = "EXECUTED"
	ContractStatusTerminated  = "TERMINATED"
	ContractStatusExpired     = "EXPIRED"
)

// ContractStatuses lists every status in lifecycle order
var ContractStatuses = []string{
	ContractStatusDraft,
	ContractStatusUnderReview,
	ContractStatusApproved,
	ContractStatusExecuted,
	ContractStatusTerminated,
	ContractStatusExpired,
}

// ActiveContractStatuses are the statuses counted as "active" in statistics
var ActiveContractStatuses = []string{ContractStatusExecuted}

// Contract type constants
const (
	ContractTypeServiceAgreement  = "SERVICE_AGREEMENT"
	ContractTypeEmployment        = "EMPLOYMENT"
	ContractTypeNDA               = "NDA"
	ContractTypePurchaseAgreement = "PURCHASE_AGREEMENT"
	ContractTypeLease             = "LEASE"
	ContractTypePartnership       = "PARTNERSHIP"
	ContractTypeLicensing         = "LICENSING"
	ContractTypeConsulting        = "CONSULTING"
	ContractTypeOther             = "OTHER"
)

var ContractTypes = []string{
	ContractTypeServiceAgreement,
	ContractTypeEmployment,
	ContractTypeNDA,
	ContractTypePurchaseAgreement,
	ContractTypeLease,
	ContractTypePartnership,
	ContractTypeLicensing,
	ContractTypeConsulting,
	ContractTypeOther,
}

// Risk level constants
const (
	RiskLevelLow      = "LOW"
	RiskLevelMedium   = "MEDIUM"
	RiskLevelHigh     = "HIGH"
	RiskLevelCritical = "CRITICAL"
)

var RiskLevels = []string{RiskLevelLow, RiskLevelMedium, RiskLevelHigh, RiskLevelCritical}

// Priority constants
const (
	PriorityLow    = "LOW"
	PriorityMedium = "MEDIUM"
	PriorityHigh   = "HIGH"
	PriorityUrgent = "URGENT"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// DefaultCurrency is used when a contract is created without one
const DefaultCurrency = "USD"

// BeforeCreate assigns the id and lifecycle defaults
func (c *Contract) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	if c.Status == "" {
		c.Status = ContractStatusDraft
	}
	if c.RiskLevel == "" {
		c.RiskLevel = RiskLevelMedium
	}
	if c.Priority == "" {
		c.Priority = PriorityMedium
	}
	if c.Currency == "" {
		c.Currency = DefaultCurrency
	}
	return nil
}

// BeforeSave serializes Tags into the tags column
func (c *Contract) BeforeSave(tx *gorm.DB) error {
	encoded, err := EncodeTags(c.Tags)
	if err != nil {
		return err
	}
	c.TagsJSON = encoded
	return nil
}

// AfterFind restores Tags from the tags column
func (c *Contract) AfterFind(tx *gorm.DB) error {
	tags, err := DecodeTags(c.TagsJSON)
	if err != nil {
		return fmt.Errorf("contract %s: %w", c.ID, err)
	}
	c.Tags = tags
	return nil
}

// EncodeTags serializes a tag list; nil encodes as an empty list
func EncodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeTags parses the stored tag list; an empty column yields an empty list
func DecodeTags(raw string) ([]string, error) {
	tags := []string{}
	if raw == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		return nil, fmt.Errorf("invalid tags column: %w", err)
	}
	return tags, nil
}

// IsActive returns true if the contract is in force
func (c *Contract) IsActive() bool {
	for _, s := range ActiveContractStatuses {
		if c.Status == s {
			return true
		}
	}
	return false
}

// ExpiresWithin reports whether the contract ends between now and now+window
func (c *Contract) ExpiresWithin(now time.Time, window time.Duration) bool {
	if c.EndDate == nil {
		return false
	}
	return !c.EndDate.Before(now) && !c.EndDate.After(now.Add(window))
}

// Duplicate returns an unsaved copy titled "<title> (Copy)" starting at startDate
func (c *Contract) Duplicate(startDate time.Time) *Contract {
	tags := make([]string, len(c.Tags))
	copy(tags, c.Tags)

	return &Contract{
		Title:            c.Title + " (Copy)",
		Description:      copyString(c.Description),
		Type:             c.Type,
		Status:           ContractStatusDraft,
		RiskLevel:        c.RiskLevel,
		Priority:         c.Priority,
		Value:            copyFloat(c.Value),
		Currency:         c.Currency,
		StartDate:        startDate,
		EndDate:          copyTime(c.EndDate),
		RenewalTerms:     copyString(c.RenewalTerms),
		Tags:             tags,
		ClientID:         c.ClientID,
		AssignedLawyerID: c.AssignedLawyerID,
	}
}

// ContractResponse is the JSON response format for contracts
type ContractResponse struct {
	ID               string                 `json:"id"`
	Title            string                 `json:"title"`
	Description      *string                `json:"description"`
	Type             string                 `json:"type"`
	Status           string                 `json:"status"`
	RiskLevel        string                 `json:"riskLevel"`
	Priority         string                 `json:"priority"`
	Value            *float64               `json:"value"`
	Currency         string                 `json:"currency"`
	StartDate        time.Time              `json:"startDate"`
	EndDate          *time.Time             `json:"endDate"`
	RenewalTerms     *string                `json:"renewalTerms"`
	Tags             []string               `json:"tags"`
	ClientID         string                 `json:"clientId"`
	AssignedLawyerID string                 `json:"assignedLawyerId"`
	Client           *ClientSummary         `json:"client,omitempty"`
	AssignedLawyer   *UserSummary           `json:"assignedLawyer,omitempty"`
	Count            *ContractRelationCount `json:"_count,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
	UpdatedAt        time.Time              `json:"updatedAt"`
}

// ContractRelationCount holds the number of dependent records
type ContractRelationCount struct {
	Documents int64 `json:"documents"`
	Analyses  int64 `json:"analyses"`
}

// ToResponse converts Contract to ContractResponse.
// Client and lawyer summaries are included only when the association was loaded.
func (c *Contract) ToResponse() ContractResponse {
	tags := c.Tags
	if tags == nil {
		tags = []string{}
	}
	resp := ContractResponse{
		ID:               c.ID,
		Title:            c.Title,
		Description:      c.Description,
		Type:             c.Type,
		Status:           c.Status,
		RiskLevel:        c.RiskLevel,
		Priority:         c.Priority,
		Value:            c.Value,
		Currency:         c.Currency,
		StartDate:        c.StartDate,
		EndDate:          c.EndDate,
		RenewalTerms:     c.RenewalTerms,
		Tags:             tags,
		ClientID:         c.ClientID,
		AssignedLawyerID: c.AssignedLawyerID,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
	}

	if c.Client.ID != "" {
		summary := c.Client.ToSummary()
		resp.Client = &summary
	}
	if c.AssignedLawyer.ID != "" {
		summary := c.AssignedLawyer.ToSummary()
		resp.AssignedLawyer = &summary
	}

	return resp
}

// ToDetailResponse is ToResponse plus dependent record counts
func (c *Contract) ToDetailResponse() ContractResponse {
	resp := c.ToResponse()
	resp.Count = &ContractRelationCount{
		Documents: c.DocumentCount,
		Analyses:  c.AnalysisCount,
	}
	return resp
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func copyFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	v := *f
	return &v
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
