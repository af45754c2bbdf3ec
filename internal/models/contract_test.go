package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTags_RoundTrip(t *testing.T) {
	encoded, err := EncodeTags([]string{"a", "b, c", "a"})
	require.NoError(t, err)
	assert.Equal(t, `["a","b, c","a"]`, encoded)

	decoded, err := DecodeTags(encoded)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b, c", "a"}, decoded)
}

func TestTags_EmptyValues(t *testing.T) {
	encoded, err := EncodeTags(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", encoded)

	decoded, err := DecodeTags("")
	require.NoError(t, err)
	assert.NotNil(t, decoded)
	assert.Empty(t, decoded)

	_, err = DecodeTags("a,b")
	assert.Error(t, err)
}

func TestContract_Duplicate(t *testing.T) {
	desc := "Master services"
	value := 1200.5
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := &Contract{
		ID:               "c-1",
		Title:            "MSA",
		Description:      &desc,
		Type:             ContractTypeServiceAgreement,
		Status:           ContractStatusExecuted,
		RiskLevel:        RiskLevelHigh,
		Priority:         PriorityUrgent,
		Value:            &value,
		Currency:         "EUR",
		StartDate:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          &end,
		Tags:             []string{"a", "b"},
		ClientID:         "client-1",
		AssignedLawyerID: "lawyer-1",
	}
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	dup := src.Duplicate(now)

	assert.Empty(t, dup.ID)
	assert.Equal(t, "MSA (Copy)", dup.Title)
	assert.Equal(t, ContractStatusDraft, dup.Status)
	assert.Equal(t, now, dup.StartDate)
	assert.Equal(t, src.Type, dup.Type)
	assert.Equal(t, src.RiskLevel, dup.RiskLevel)
	assert.Equal(t, src.Priority, dup.Priority)
	assert.Equal(t, src.Currency, dup.Currency)
	assert.Equal(t, src.ClientID, dup.ClientID)
	assert.Equal(t, src.AssignedLawyerID, dup.AssignedLawyerID)
	assert.Equal(t, *src.Value, *dup.Value)
	assert.Equal(t, *src.EndDate, *dup.EndDate)
	assert.Equal(t, src.Tags, dup.Tags)

	// The copy must not alias the source
	dup.Tags[0] = "changed"
	*dup.Description = "changed"
	assert.Equal(t, "a", src.Tags[0])
	assert.Equal(t, "Master services", *src.Description)
}

func TestContract_ExpiresWithin(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour
	at := func(days int) *time.Time {
		d := now.AddDate(0, 0, days)
		return &d
	}

	assert.False(t, (&Contract{}).ExpiresWithin(now, window))
	assert.True(t, (&Contract{EndDate: at(0)}).ExpiresWithin(now, window))
	assert.True(t, (&Contract{EndDate: at(30)}).ExpiresWithin(now, window))
	assert.False(t, (&Contract{EndDate: at(31)}).ExpiresWithin(now, window))
	assert.False(t, (&Contract{EndDate: at(-1)}).ExpiresWithin(now, window))
}

func TestContract_IsActive(t *testing.T) {
	assert.True(t, (&Contract{Status: ContractStatusExecuted}).IsActive())
	assert.False(t, (&Contract{Status: ContractStatusApproved}).IsActive())
}

func TestContract_ToResponse(t *testing.T) {
	c := &Contract{ID: "c-1", Title: "NDA", Status: ContractStatusDraft}

	resp := c.ToResponse()
	assert.Equal(t, []string{}, resp.Tags)
	assert.Nil(t, resp.Client)
	assert.Nil(t, resp.AssignedLawyer)
	assert.Nil(t, resp.Count)

	c.Client = Client{ID: "cl-1", Name: "Acme"}
	c.AssignedLawyer = User{ID: "u-1", FullName: "Dana Reyes", Email: "dana@firm.test"}
	c.DocumentCount = 2
	c.AnalysisCount = 1

	detail := c.ToDetailResponse()
	require.NotNil(t, detail.Client)
	assert.Equal(t, ClientSummary{ID: "cl-1", Name: "Acme"}, *detail.Client)
	assert.Equal(t, "Dana Reyes", detail.AssignedLawyer.FullName)

	raw, err := json.Marshal(detail)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"_count":{"documents":2,"analyses":1}`)
}
