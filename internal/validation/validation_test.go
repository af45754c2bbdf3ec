package validation

import (
	"encoding/json"
	"errors"
	"io"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	verr, ok := AsError(err)
	require.True(t, ok, "expected *validation.Error, got %v", err)
	out := map[string]string{}
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestCreateContractRequest_Defaults(t *testing.T) {
	req := &CreateContractRequest{
		Title:     "  MSA  ",
		Type:      models.ContractTypeServiceAgreement,
		StartDate: "2024-01-01",
		ClientID:  "c1",
	}
	require.NoError(t, req.Validate())

	assert.Equal(t, "MSA", req.Title)
	assert.Equal(t, "USD", req.Currency)
	assert.Equal(t, models.RiskLevelMedium, req.RiskLevel)
	assert.Equal(t, models.PriorityMedium, req.Priority)
	assert.Equal(t, []string{}, req.Tags)

	c := req.ToModel("lawyer-1")
	assert.Equal(t, models.ContractStatusDraft, c.Status)
	assert.Equal(t, "lawyer-1", c.AssignedLawyerID)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), c.StartDate)
	assert.Nil(t, c.EndDate)
}

func TestCreateContractRequest_ReportsEveryViolation(t *testing.T) {
	zero := 0.0
	req := &CreateContractRequest{
		Title:     "   ",
		Type:      "WHATEVER",
		Value:     &zero,
		StartDate: "01/02/2024",
		RiskLevel: "EXTREME",
	}
	err := req.Validate()
	require.Error(t, err)

	msgs := fieldMessages(t, err)
	assert.Equal(t, "is required", msgs["title"])
	assert.Contains(t, msgs["type"], "must be one of: SERVICE_AGREEMENT")
	assert.Equal(t, "must be greater than 0", msgs["value"])
	assert.Contains(t, msgs["startDate"], "must be a valid date")
	assert.Equal(t, "is required", msgs["clientId"])
	assert.Contains(t, msgs["riskLevel"], "must be one of: LOW, MEDIUM, HIGH, CRITICAL")
	assert.Len(t, msgs, 6)
}

func TestCreateContractRequest_EndBeforeStart(t *testing.T) {
	req := &CreateContractRequest{
		Title:     "Lease",
		Type:      models.ContractTypeLease,
		StartDate: "2024-06-01",
		EndDate:   strPtr("2024-05-01"),
		ClientID:  "c1",
	}
	msgs := fieldMessages(t, req.Validate())
	assert.Equal(t, "must not be before startDate", msgs["endDate"])
}

func TestUpdateContractRequest_PartialPatch(t *testing.T) {
	var req UpdateContractRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Renamed","tags":["a","b"],"status":"EXECUTED"}`), &req))
	require.NoError(t, req.Validate())
	assert.False(t, req.IsEmpty())

	desc := "keep me"
	c := &models.Contract{
		Title:       "Original",
		Description: &desc,
		Type:        models.ContractTypeNDA,
		Status:      models.ContractStatusDraft,
		Currency:    "EUR",
	}
	req.ApplyTo(c)

	assert.Equal(t, "Renamed", c.Title)
	assert.Equal(t, []string{"a", "b"}, c.Tags)
	assert.Equal(t, models.ContractStatusExecuted, c.Status)
	assert.Equal(t, "keep me", *c.Description)
	assert.Equal(t, models.ContractTypeNDA, c.Type)
	assert.Equal(t, "EUR", c.Currency)
}

func TestUpdateContractRequest_RejectsZeroValueAndBlankTitle(t *testing.T) {
	var req UpdateContractRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"  ","value":0,"status":"SIGNED"}`), &req))

	msgs := fieldMessages(t, req.Validate())
	assert.Equal(t, "must be at least 1 characters", msgs["title"])
	assert.Equal(t, "must be greater than 0", msgs["value"])
	assert.Contains(t, msgs["status"], "must be one of: DRAFT")
}

func TestUpdateContractRequest_Empty(t *testing.T) {
	req := &UpdateContractRequest{}
	assert.NoError(t, req.Validate())
	assert.True(t, req.IsEmpty())
}

func TestStatusUpdateRequest(t *testing.T) {
	assert.NoError(t, (&StatusUpdateRequest{Status: "APPROVED"}).Validate())

	msgs := fieldMessages(t, (&StatusUpdateRequest{}).Validate())
	assert.Equal(t, "is required", msgs["status"])

	msgs = fieldMessages(t, (&StatusUpdateRequest{Status: "approved"}).Validate())
	assert.Contains(t, msgs["status"], "must be one of")
}

func TestParseContractQuery_Defaults(t *testing.T) {
	q, err := ParseContractQuery(url.Values{})
	require.NoError(t, err)
	assert.Equal(t, &ContractQuery{
		Page:      1,
		Limit:     10,
		SortBy:    "createdAt",
		SortOrder: "desc",
	}, q)
}

func TestParseContractQuery_Invalid(t *testing.T) {
	values := url.Values{
		"page":      {"0"},
		"limit":     {"abc"},
		"status":    {"OPEN"},
		"sortBy":    {"password"},
		"sortOrder": {"sideways"},
	}
	_, err := ParseContractQuery(values)
	msgs := fieldMessages(t, err)

	assert.Equal(t, "must be at least 1", msgs["page"])
	assert.Equal(t, "must be a positive integer", msgs["limit"])
	assert.Contains(t, msgs["status"], "must be one of")
	assert.Contains(t, msgs["sortBy"], "must be one of: createdAt")
	assert.Equal(t, "must be one of: asc, desc", msgs["sortOrder"])
}

func TestParseContractQuery_LimitUpperBound(t *testing.T) {
	_, err := ParseContractQuery(url.Values{"limit": {"101"}})
	assert.Equal(t, "must be at most 100", fieldMessages(t, err)["limit"])
}

func TestParseSearchQuery(t *testing.T) {
	q, err := ParseSearchQuery(url.Values{"q": {" acme "}})
	require.NoError(t, err)
	assert.Equal(t, "acme", q.Q)
	assert.Equal(t, DefaultSearchLimit, q.Limit)

	_, err = ParseSearchQuery(url.Values{"limit": {"5"}})
	assert.Equal(t, "is required", fieldMessages(t, err)["q"])
}

func TestParseStatsQuery(t *testing.T) {
	q, err := ParseStatsQuery(url.Values{})
	require.NoError(t, err)
	assert.Nil(t, q.StartDate)
	assert.Nil(t, q.CompareStartDate)

	q, err = ParseStatsQuery(url.Values{"startDate": {"2024-03-01"}, "endDate": {"2024-03-31"}})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *q.StartDate)
	assert.Equal(t, time.Date(2024, 3, 31, 23, 59, 59, 999999999, time.UTC), *q.EndDate)

	_, err = ParseStatsQuery(url.Values{"compareStartDate": {"2024-02-01"}, "startDate": {"nope"}})
	msgs := fieldMessages(t, err)
	assert.Equal(t, "is required when compareStartDate is set", msgs["compareEndDate"])
	assert.Contains(t, msgs["startDate"], "must be a valid date")
}

func TestFromBindError(t *testing.T) {
	var req CreateContractRequest

	err := json.Unmarshal([]byte(`{"value":"lots"}`), &req)
	msgs := fieldMessages(t, FromBindError(err))
	assert.Equal(t, "must be of type number", msgs["value"])

	err = json.NewDecoder(strings.NewReader("")).Decode(&req)
	require.True(t, errors.Is(err, io.EOF))
	msgs = fieldMessages(t, FromBindError(err))
	assert.Equal(t, "request body is required", msgs["body"])

	err = json.Unmarshal([]byte(`{"title":`), &req)
	msgs = fieldMessages(t, FromBindError(err))
	assert.Equal(t, "must be a valid JSON object", msgs["body"])
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2024-01-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 1, 8, 30, 0, 0, time.UTC), d)

	_, err = ParseDate("yesterday")
	assert.Error(t, err)
}
