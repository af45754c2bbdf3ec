package models

import (
	"time"

	"gorm.io/gorm"
)

// Client represents a client of the firm; contracts always belong to one
type Client struct {
	ID               string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name             string    `gorm:"not null;index" json:"name"`
	Email            *string   `json:"email"`
	Company          *string   `json:"company"`
	AssignedLawyerID string    `gorm:"type:varchar(36);not null;index" json:"assignedLawyerId"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`

	// Associations
	AssignedLawyer User       `gorm:"foreignKey:AssignedLawyerID" json:"-"`
	Contracts      []Contract `gorm:"foreignKey:ClientID" json:"-"`
}

// TableName specifies the table name for Client
func (Client) TableName() string {
	return "clients"
}

func (c *Client) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

// ClientSummary is the embedded representation of a client in contract responses
type ClientSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (c *Client) ToSummary() ClientSummary {
	return ClientSummary{ID: c.ID, Name: c.Name}
}
