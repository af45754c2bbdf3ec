// Package testutil provides in-memory databases and fixtures for package tests.
package testutil

import (
	"strings"
	"testing"
	"time"

	"github.com/counselflow/counselflow-api/internal/database"
	"github.com/counselflow/counselflow-api/internal/models"
	"gorm.io/gorm"
)

// NewDB opens a migrated in-memory SQLite database private to t
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Use a unique in-memory database per test to avoid cross-test collisions.
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := database.Connect("file:" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// CreateUser inserts a user with role
func CreateUser(t *testing.T, db *gorm.DB, name, role string) *models.User {
	t.Helper()
	u := &models.User{
		Email:    strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@firm.test",
		FullName: name,
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateClient inserts a client assigned to lawyerID
func CreateClient(t *testing.T, db *gorm.DB, name, lawyerID string) *models.Client {
	t.Helper()
	c := &models.Client{Name: name, AssignedLawyerID: lawyerID}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create client: %v", err)
	}
	return c
}

// ContractOption customizes a fixture contract
type ContractOption func(*models.Contract)

func WithStatus(status string) ContractOption {
	return func(c *models.Contract) { c.Status = status }
}

func WithType(contractType string) ContractOption {
	return func(c *models.Contract) { c.Type = contractType }
}

func WithValue(v float64) ContractOption {
	return func(c *models.Contract) { c.Value = &v }
}

func WithEndDate(t time.Time) ContractOption {
	return func(c *models.Contract) { c.EndDate = &t }
}

func WithCreatedAt(t time.Time) ContractOption {
	return func(c *models.Contract) { c.CreatedAt = t }
}

func WithDescription(d string) ContractOption {
	return func(c *models.Contract) { c.Description = &d }
}

func WithTags(tags ...string) ContractOption {
	return func(c *models.Contract) { c.Tags = tags }
}

// CreateContract inserts a DRAFT service agreement for client, assigned to the client's lawyer
func CreateContract(t *testing.T, db *gorm.DB, title string, client *models.Client, opts ...ContractOption) *models.Contract {
	t.Helper()
	c := &models.Contract{
		Title:            title,
		Type:             models.ContractTypeServiceAgreement,
		Status:           models.ContractStatusDraft,
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		ClientID:         client.ID,
		AssignedLawyerID: client.AssignedLawyerID,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := db.Create(c).Error; err != nil {
		t.Fatalf("create contract: %v", err)
	}
	return c
}
