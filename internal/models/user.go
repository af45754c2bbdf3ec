package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a lawyer or staff member of the firm
type User struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	FullName  string    `gorm:"not null" json:"fullName"`
	Role      string    `gorm:"size:20;not null" json:"role"`
	Status    string    `gorm:"size:20;not null" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Associations
	Clients   []Client   `gorm:"foreignKey:AssignedLawyerID" json:"-"`
	Contracts []Contract `gorm:"foreignKey:AssignedLawyerID" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if u.Role == "" {
		u.Role = RoleAssociate
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// Role constants
const (
	RoleAdmin     = "ADMIN"
	RolePartner   = "PARTNER"
	RoleAssociate = "ASSOCIATE"
	RoleParalegal = "PARALEGAL"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// UserSummary is the embedded representation of a user in other responses
type UserSummary struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

// ToSummary converts User to UserSummary
func (u *User) ToSummary() UserSummary {
	return UserSummary{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	}
}
