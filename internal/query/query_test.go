package query

import (
	"testing"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/policy"
	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Clause(t *testing.T) {
	f := Filter{}.And(Eq("a", 1), Clause{}, Or(Eq("b", 2), Eq("c", 3)))
	c := f.Clause()

	assert.Equal(t, "(a = ?) AND ((b = ?) OR (c = ?))", c.SQL)
	assert.Equal(t, []any{1, 2, 3}, c.Args)
	assert.True(t, Filter{}.Clause().IsZero())
}

func TestFilter_AndDoesNotAlias(t *testing.T) {
	base := Filter{Eq("a", 1)}
	left := base.And(Eq("b", 2))
	right := base.And(Eq("c", 3))

	assert.Len(t, base, 1)
	assert.Equal(t, "b = ?", left[1].SQL)
	assert.Equal(t, "c = ?", right[1].SQL)
}

func TestContains_EscapesWildcards(t *testing.T) {
	c := Contains("contracts.title", "50%_Off")
	assert.Equal(t, `LOWER(contracts.title) LIKE ? ESCAPE '\'`, c.SQL)
	assert.Equal(t, []any{`%50\%\_off%`}, c.Args)
}

func TestPage(t *testing.T) {
	assert.Equal(t, 0, Page{Number: 1, Size: 10}.Offset())
	assert.Equal(t, 40, Page{Number: 5, Size: 10}.Offset())
	assert.Equal(t, 0, Page{}.Offset())
	assert.Equal(t, 10, Page{Number: 5, Size: 10}.Limit())
}

func TestSort_String(t *testing.T) {
	assert.Equal(t, "contracts.title ASC", Sort{Column: "contracts.title"}.String())
	assert.Equal(t, "contracts.title DESC", Sort{Column: "contracts.title", Desc: true}.String())
	assert.Equal(t, "", Sort{}.String())
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		limit int
		total int64
		want  Pagination
	}{
		{"empty", 1, 10, 0, Pagination{Page: 1, Limit: 10, Total: 0, Pages: 0}},
		{"exact", 1, 10, 20, Pagination{Page: 1, Limit: 10, Total: 20, Pages: 2, HasNext: true}},
		{"partial last", 3, 10, 21, Pagination{Page: 3, Limit: 10, Total: 21, Pages: 3, HasPrev: true}},
		{"beyond last", 9, 10, 21, Pagination{Page: 9, Limit: 10, Total: 21, Pages: 3, HasPrev: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPagination(tt.page, tt.limit, tt.total)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, int64(tt.page)*int64(tt.limit) < tt.total, got.HasNext)
		})
	}
}

func TestVisibility(t *testing.T) {
	associate := policy.Caller{UserID: "u1", Role: models.RoleAssociate}
	assert.Equal(t, Filter{Eq(ColAssignedLawyerID, "u1")}, Visibility(associate))

	partner := policy.Caller{UserID: "u2", Role: models.RolePartner}
	assert.Empty(t, Visibility(partner))
}

func TestContractList(t *testing.T) {
	caller := policy.Caller{UserID: "u1", Role: models.RoleParalegal}
	q := &validation.ContractQuery{
		Page:      2,
		Limit:     25,
		Search:    "acme",
		Status:    models.ContractStatusDraft,
		RiskLevel: models.RiskLevelHigh,
		SortBy:    "title",
		SortOrder: "asc",
	}

	spec := ContractList(caller, q)

	assert.Equal(t, []string{JoinClients}, spec.Joins)
	assert.Equal(t, Sort{Column: "contracts.title"}, spec.Sort)
	assert.Equal(t, 25, spec.Page.Offset())

	where := spec.Where.Clause()
	assert.Equal(t,
		"(contracts.assigned_lawyer_id = ?) AND "+
			"((LOWER(contracts.title) LIKE ? ESCAPE '\\') OR (LOWER(contracts.description) LIKE ? ESCAPE '\\') OR (LOWER(clients.name) LIKE ? ESCAPE '\\')) AND "+
			"(contracts.status = ?) AND (contracts.risk_level = ?)",
		where.SQL)
	assert.Equal(t, []any{"u1", "%acme%", "%acme%", "%acme%", "DRAFT", "HIGH"}, where.Args)
}

func TestContractList_NoSearchSkipsJoin(t *testing.T) {
	caller := policy.Caller{UserID: "admin", Role: models.RoleAdmin}
	q := &validation.ContractQuery{Page: 1, Limit: 10, ClientID: "c1", Type: models.ContractTypeNDA, SortBy: "createdAt", SortOrder: "desc"}

	spec := ContractList(caller, q)

	assert.Empty(t, spec.Joins)
	assert.Equal(t, Sort{Column: ColCreatedAt, Desc: true}, spec.Sort)
	assert.Equal(t, []any{"c1", "NDA"}, spec.Where.Clause().Args)
}

func TestContractSearchAndExport(t *testing.T) {
	caller := policy.Caller{UserID: "u1", Role: models.RoleAssociate}

	search := ContractSearch(caller, &validation.SearchQuery{Q: "lease", Limit: 5})
	assert.Equal(t, 5, search.Page.Limit())
	assert.Equal(t, 0, search.Page.Offset())
	assert.True(t, search.Sort.Desc)
	assert.Len(t, search.Where, 2)

	export := ContractExport(caller, &validation.ContractQuery{Page: 4, Limit: 10, SortBy: "value", SortOrder: "asc"})
	assert.Equal(t, MaxExportRows, export.Page.Limit())
	assert.Equal(t, 0, export.Page.Offset())
	assert.Equal(t, "contracts.value ASC", export.Sort.String())
}

func TestSortColumn_Fallback(t *testing.T) {
	assert.Equal(t, ColCreatedAt, SortColumn("password"))
	for _, f := range validation.SortFields() {
		assert.NotEmpty(t, sortColumns[f], f)
	}
}
