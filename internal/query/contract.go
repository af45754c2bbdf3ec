package query

import (
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/validation"
)

// Contract columns, qualified so they stay unambiguous when clients is joined
const (
	ColID               = "contracts.id"
	ColTitle            = "contracts.title"
	ColDescription      = "contracts.description"
	ColType             = "contracts.type"
	ColStatus           = "contracts.status"
	ColRiskLevel        = "contracts.risk_level"
	ColValue            = "contracts.value"
	ColEndDate          = "contracts.end_date"
	ColClientID         = "contracts.client_id"
	ColAssignedLawyerID = "contracts.assigned_lawyer_id"
	ColCreatedAt        = "contracts.created_at"
	ColClientName       = "clients.name"
)

// JoinClients makes the client name searchable
const JoinClients = "LEFT JOIN clients ON clients.id = contracts.client_id"

// MaxExportRows caps a single export
const MaxExportRows = 1000

var sortColumns = map[string]string{
	"createdAt": "contracts.created_at",
	"updatedAt": "contracts.updated_at",
	"title":     "contracts.title",
	"startDate": "contracts.start_date",
	"endDate":   "contracts.end_date",
	"value":     "contracts.value",
	"status":    "contracts.status",
	"riskLevel": "contracts.risk_level",
	"priority":  "contracts.priority",
}

// SortColumn maps an allow-listed API sort field to its column; unknown fields fall back to created_at
func SortColumn(field string) string {
	if col, ok := sortColumns[field]; ok {
		return col
	}
	return ColCreatedAt
}

// Visibility restricts contracts to those assigned to the caller unless the caller is elevated
func Visibility(caller policy.Caller) Filter {
	if caller.IsElevated() {
		return Filter{}
	}
	return Filter{Eq(ColAssignedLawyerID, caller.UserID)}
}

// Search matches term against title, description and client name
func Search(term string) Clause {
	return Or(
		Contains(ColTitle, term),
		Contains(ColDescription, term),
		Contains(ColClientName, term),
	)
}

// ContractFilter is the visibility predicate plus the search and equality filters of q
func ContractFilter(caller policy.Caller, q *validation.ContractQuery) (Filter, []string) {
	where := Visibility(caller)
	var joins []string

	if q.Search != "" {
		joins = append(joins, JoinClients)
		where = where.And(Search(q.Search))
	}
	if q.Status != "" {
		where = where.And(Eq(ColStatus, q.Status))
	}
	if q.ClientID != "" {
		where = where.And(Eq(ColClientID, q.ClientID))
	}
	if q.Type != "" {
		where = where.And(Eq(ColType, q.Type))
	}
	if q.RiskLevel != "" {
		where = where.And(Eq(ColRiskLevel, q.RiskLevel))
	}
	return where, joins
}

// ContractList builds the paged list read for GET /contracts
func ContractList(caller policy.Caller, q *validation.ContractQuery) Spec {
	where, joins := ContractFilter(caller, q)
	return Spec{
		Joins: joins,
		Where: where,
		Sort:  Sort{Column: SortColumn(q.SortBy), Desc: q.SortOrder == "desc"},
		Page:  Page{Number: q.Page, Size: q.Limit},
	}
}

// ContractExport is ContractList without paging, capped at MaxExportRows
func ContractExport(caller policy.Caller, q *validation.ContractQuery) Spec {
	spec := ContractList(caller, q)
	spec.Page = Page{Number: 1, Size: MaxExportRows}
	return spec
}

// ContractSearch builds the newest-first search read for GET /contracts/search
func ContractSearch(caller policy.Caller, q *validation.SearchQuery) Spec {
	return Spec{
		Joins: []string{JoinClients},
		Where: Visibility(caller).And(Search(q.Q)),
		Sort:  Sort{Column: ColCreatedAt, Desc: true},
		Page:  Page{Number: 1, Size: q.Limit},
	}
}
