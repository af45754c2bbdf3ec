package validation

import (
	"net/url"
	"strconv"
	"strings"
	"time"
)

// List defaults and bounds
const (
	DefaultPage        = 1
	DefaultLimit       = 10
	MaxLimit           = 100
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	DefaultSortBy      = "createdAt"
	DefaultSortOrder   = "desc"
)

// SortFields is the allow-list of sortable contract fields
func SortFields() []string {
	return []string{
		"createdAt", "updatedAt", "title", "startDate", "endDate",
		"value", "status", "riskLevel", "priority",
	}
}

// ContractQuery is the validated query string of GET /contracts
type ContractQuery struct {
	Page      int    `json:"page" validate:"gte=1"`
	Limit     int    `json:"limit" validate:"gte=1,lte=100"`
	Search    string `json:"search" validate:"max=200"`
	Status    string `json:"status" validate:"omitempty,contract_status"`
	ClientID  string `json:"clientId" validate:"max=36"`
	Type      string `json:"type" validate:"omitempty,contract_type"`
	RiskLevel string `json:"riskLevel" validate:"omitempty,risk_level"`
	SortBy    string `json:"sortBy" validate:"sort_field"`
	SortOrder string `json:"sortOrder" validate:"oneof=asc desc"`
}

// ParseContractQuery reads, defaults and validates list parameters
func ParseContractQuery(values url.Values) (*ContractQuery, error) {
	verr := &Error{}
	q := &ContractQuery{
		Page:      parseInt(verr, values, "page", DefaultPage),
		Limit:     parseInt(verr, values, "limit", DefaultLimit),
		Search:    strings.TrimSpace(values.Get("search")),
		Status:    strings.TrimSpace(values.Get("status")),
		ClientID:  strings.TrimSpace(values.Get("clientId")),
		Type:      strings.TrimSpace(values.Get("type")),
		RiskLevel: strings.TrimSpace(values.Get("riskLevel")),
		SortBy:    defaultString(values.Get("sortBy"), DefaultSortBy),
		SortOrder: strings.ToLower(defaultString(values.Get("sortOrder"), DefaultSortOrder)),
	}

	if err := mergeStruct(verr, q); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return q, nil
}

// SearchQuery is the validated query string of GET /contracts/search
type SearchQuery struct {
	Q     string `json:"q" validate:"required,max=200"`
	Limit int    `json:"limit" validate:"gte=1,lte=50"`
}

func ParseSearchQuery(values url.Values) (*SearchQuery, error) {
	verr := &Error{}
	q := &SearchQuery{
		Q:     strings.TrimSpace(values.Get("q")),
		Limit: parseInt(verr, values, "limit", DefaultSearchLimit),
	}
	if err := mergeStruct(verr, q); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return q, nil
}

// StatsQuery holds the optional windows of GET /contracts/stats.
// Each window is either fully specified or absent.
type StatsQuery struct {
	StartDate        *time.Time
	EndDate          *time.Time
	CompareStartDate *time.Time
	CompareEndDate   *time.Time
}

func ParseStatsQuery(values url.Values) (*StatsQuery, error) {
	verr := &Error{}
	q := &StatsQuery{
		StartDate:        parseDateParam(verr, values, "startDate"),
		EndDate:          parseEndDateParam(verr, values, "endDate"),
		CompareStartDate: parseDateParam(verr, values, "compareStartDate"),
		CompareEndDate:   parseEndDateParam(verr, values, "compareEndDate"),
	}

	checkWindow(verr, q.StartDate, q.EndDate, "startDate", "endDate")
	checkWindow(verr, q.CompareStartDate, q.CompareEndDate, "compareStartDate", "compareEndDate")

	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	return q, nil
}

func checkWindow(verr *Error, start, end *time.Time, startName, endName string) {
	switch {
	case start != nil && end == nil:
		verr.Add(endName, "is required when "+startName+" is set")
	case start == nil && end != nil:
		verr.Add(startName, "is required when "+endName+" is set")
	case start != nil && end != nil && end.Before(*start):
		verr.Add(endName, "must not be before "+startName)
	}
}

func parseDateParam(verr *Error, values url.Values, key string) *time.Time {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil
	}
	t, err := ParseDate(raw)
	if err != nil {
		verr.Add(key, "must be a valid date (YYYY-MM-DD or RFC 3339)")
		return nil
	}
	return &t
}

// parseEndDateParam treats a bare calendar date as inclusive of the whole day
func parseEndDateParam(verr *Error, values url.Values, key string) *time.Time {
	t := parseDateParam(verr, values, key)
	if t == nil {
		return nil
	}
	if len(strings.TrimSpace(values.Get(key))) == len(dateLayout) {
		end := t.Add(24*time.Hour - time.Nanosecond)
		return &end
	}
	return t
}

func parseInt(verr *Error, values url.Values, key string, def int) int {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(key, "must be a positive integer")
		return def
	}
	return n
}

func mergeStruct(verr *Error, v any) error {
	err := Struct(v)
	if err == nil {
		return nil
	}
	e, ok := AsError(err)
	if !ok {
		return err
	}
	verr.Fields = append(verr.Fields, e.Fields...)
	return nil
}

func defaultString(s, def string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}
