package validation

import (
	"strings"
	"time"

	"github.com/counselflow/counselflow-api/internal/models"
)

// CreateContractRequest is the body of POST /contracts
type CreateContractRequest struct {
	Title        string   `json:"title" validate:"required,max=255"`
	Description  *string  `json:"description" validate:"omitnil,max=10000"`
	Type         string   `json:"type" validate:"required,contract_type"`
	Value        *float64 `json:"value" validate:"omitnil,gt=0"`
	Currency     string   `json:"currency" validate:"omitempty,len=3"`
	StartDate    string   `json:"startDate" validate:"required,isodate"`
	EndDate      *string  `json:"endDate" validate:"omitnil,isodate"`
	RenewalTerms *string  `json:"renewalTerms" validate:"omitnil,max=10000"`
	Tags         []string `json:"tags" validate:"max=50,dive,max=100"`
	RiskLevel    string   `json:"riskLevel" validate:"omitempty,risk_level"`
	Priority     string   `json:"priority" validate:"omitempty,priority"`
	ClientID     string   `json:"clientId" validate:"required"`
}

// Validate normalizes the request, applies defaults and checks every constraint
func (r *CreateContractRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Currency = strings.ToUpper(strings.TrimSpace(r.Currency))
	if r.Currency == "" {
		r.Currency = models.DefaultCurrency
	}
	if r.RiskLevel == "" {
		r.RiskLevel = models.RiskLevelMedium
	}
	if r.Priority == "" {
		r.Priority = models.PriorityMedium
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}

	verr := &Error{}
	if err := Struct(r); err != nil {
		e, ok := AsError(err)
		if !ok {
			return err
		}
		verr = e
	}
	checkDateOrder(verr, r.StartDate, r.EndDate)
	return verr.OrNil()
}

// ToModel builds an unsaved contract assigned to lawyerID. Validate must have passed.
func (r *CreateContractRequest) ToModel(lawyerID string) *models.Contract {
	start, _ := ParseDate(r.StartDate)
	c := &models.Contract{
		Title:            r.Title,
		Description:      r.Description,
		Type:             r.Type,
		Status:           models.ContractStatusDraft,
		RiskLevel:        r.RiskLevel,
		Priority:         r.Priority,
		Value:            r.Value,
		Currency:         r.Currency,
		StartDate:        start,
		EndDate:          parseOptionalDate(r.EndDate),
		RenewalTerms:     r.RenewalTerms,
		Tags:             r.Tags,
		ClientID:         r.ClientID,
		AssignedLawyerID: lawyerID,
	}
	return c
}

// UpdateContractRequest is the body of PUT /contracts/:id. Absent fields are left untouched.
type UpdateContractRequest struct {
	Title            *string   `json:"title" validate:"omitnil,min=1,max=255"`
	Description      *string   `json:"description" validate:"omitnil,max=10000"`
	Type             *string   `json:"type" validate:"omitnil,contract_type"`
	Status           *string   `json:"status" validate:"omitnil,contract_status"`
	Value            *float64  `json:"value" validate:"omitnil,gt=0"`
	Currency         *string   `json:"currency" validate:"omitnil,len=3"`
	StartDate        *string   `json:"startDate" validate:"omitnil,isodate"`
	EndDate          *string   `json:"endDate" validate:"omitnil,isodate"`
	RenewalTerms     *string   `json:"renewalTerms" validate:"omitnil,max=10000"`
	Tags             *[]string `json:"tags" validate:"omitnil,max=50,dive,max=100"`
	RiskLevel        *string   `json:"riskLevel" validate:"omitnil,risk_level"`
	Priority         *string   `json:"priority" validate:"omitnil,priority"`
	ClientID         *string   `json:"clientId" validate:"omitnil,min=1"`
	AssignedLawyerID *string   `json:"assignedLawyerId" validate:"omitnil,min=1"`
}

// Validate normalizes and checks the patch
func (r *UpdateContractRequest) Validate() error {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
	if r.Currency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*r.Currency))
		r.Currency = &cur
	}
	if r.ClientID != nil {
		id := strings.TrimSpace(*r.ClientID)
		r.ClientID = &id
	}

	verr := &Error{}
	if err := Struct(r); err != nil {
		e, ok := AsError(err)
		if !ok {
			return err
		}
		verr = e
	}
	if r.StartDate != nil {
		checkDateOrder(verr, *r.StartDate, r.EndDate)
	}
	return verr.OrNil()
}

// IsEmpty reports whether the patch changes nothing
func (r *UpdateContractRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Type == nil && r.Status == nil &&
		r.Value == nil && r.Currency == nil && r.StartDate == nil && r.EndDate == nil &&
		r.RenewalTerms == nil && r.Tags == nil && r.RiskLevel == nil && r.Priority == nil &&
		r.ClientID == nil && r.AssignedLawyerID == nil
}

// ApplyTo copies every present field onto c. Validate must have passed.
func (r *UpdateContractRequest) ApplyTo(c *models.Contract) {
	if r.Title != nil {
		c.Title = *r.Title
	}
	if r.Description != nil {
		c.Description = r.Description
	}
	if r.Type != nil {
		c.Type = *r.Type
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	if r.Value != nil {
		c.Value = r.Value
	}
	if r.Currency != nil {
		c.Currency = *r.Currency
	}
	if r.StartDate != nil {
		c.StartDate, _ = ParseDate(*r.StartDate)
	}
	if r.EndDate != nil {
		c.EndDate = parseOptionalDate(r.EndDate)
	}
	if r.RenewalTerms != nil {
		c.RenewalTerms = r.RenewalTerms
	}
	if r.Tags != nil {
		c.Tags = *r.Tags
	}
	if r.RiskLevel != nil {
		c.RiskLevel = *r.RiskLevel
	}
	if r.Priority != nil {
		c.Priority = *r.Priority
	}
	if r.ClientID != nil {
		c.ClientID = *r.ClientID
	}
	if r.AssignedLawyerID != nil {
		c.AssignedLawyerID = *r.AssignedLawyerID
	}
}

// StatusUpdateRequest is the body of PATCH /contracts/:id/status
type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required,contract_status"`
}

func (r *StatusUpdateRequest) Validate() error {
	r.Status = strings.TrimSpace(r.Status)
	return Struct(r)
}

func checkDateOrder(verr *Error, start string, end *string) {
	if end == nil {
		return
	}
	s, err1 := ParseDate(start)
	e, err2 := ParseDate(*end)
	if err1 != nil || err2 != nil {
		return
	}
	if e.Before(s) {
		verr.Add("endDate", "must not be before startDate")
	}
}

func parseOptionalDate(s *string) *time.Time {
	if s == nil {
		return nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil
	}
	return &t
}
