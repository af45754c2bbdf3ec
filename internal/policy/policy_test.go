package policy

import (
	"testing"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanAccess(t *testing.T) {
	tests := []struct {
		name    string
		caller  Caller
		ownerID string
		want    bool
	}{
		{"owner", Caller{UserID: "u1", Role: models.RoleAssociate}, "u1", true},
		{"other associate", Caller{UserID: "u2", Role: models.RoleAssociate}, "u1", false},
		{"paralegal not owner", Caller{UserID: "u2", Role: models.RoleParalegal}, "u1", false},
		{"admin", Caller{UserID: "u3", Role: models.RoleAdmin}, "u1", true},
		{"partner", Caller{UserID: "u4", Role: models.RolePartner}, "u1", true},
		{"anonymous", Caller{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanAccess(tt.caller, tt.ownerID))
		})
	}
}

func TestIsElevated(t *testing.T) {
	assert.True(t, IsElevated(models.RoleAdmin))
	assert.True(t, IsElevated(models.RolePartner))
	assert.False(t, IsElevated(models.RoleAssociate))
	assert.False(t, IsElevated("admin"))
}
