// Package query composes the filter, sort and pagination of contract reads as plain values.
// Nothing here touches a database; the repository layer turns a Spec into SQL.
package query

import (
	"math"
	"strings"
)

// Clause is a single SQL predicate with its positional arguments
type Clause struct {
	SQL  string
	Args []any
}

// IsZero reports whether the clause is empty
func (c Clause) IsZero() bool {
	return c.SQL == ""
}

// Eq matches column = value
func Eq(column string, value any) Clause {
	return Clause{SQL: column + " = ?", Args: []any{value}}
}

// In matches column IN (values)
func In(column string, values []string) Clause {
	return Clause{SQL: column + " IN ?", Args: []any{values}}
}

// Gte matches column >= value
func Gte(column string, value any) Clause {
	return Clause{SQL: column + " >= ?", Args: []any{value}}
}

// Lte matches column <= value
func Lte(column string, value any) Clause {
	return Clause{SQL: column + " <= ?", Args: []any{value}}
}

// Between matches lo <= column <= hi
func Between(column string, lo, hi any) Clause {
	return Clause{SQL: column + " >= ? AND " + column + " <= ?", Args: []any{lo, hi}}
}

// NotNull matches rows where column has a value
func NotNull(column string) Clause {
	return Clause{SQL: column + " IS NOT NULL"}
}

// Contains is a case-insensitive substring match. LIKE wildcards in term are matched literally.
func Contains(column, term string) Clause {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return Clause{SQL: "LOWER(" + column + ") LIKE ? ESCAPE '\\'", Args: []any{pattern}}
}

// Or groups clauses into one disjunction
func Or(clauses ...Clause) Clause {
	return join(" OR ", clauses)
}

// Filter is a conjunction of clauses
type Filter []Clause

// And returns a new filter with the extra clauses appended; zero clauses are dropped
func (f Filter) And(clauses ...Clause) Filter {
	out := make(Filter, 0, len(f)+len(clauses))
	out = append(out, f...)
	for _, c := range clauses {
		if !c.IsZero() {
			out = append(out, c)
		}
	}
	return out
}

// Clause collapses the filter into a single predicate
func (f Filter) Clause() Clause {
	return join(" AND ", f)
}

func join(sep string, clauses []Clause) Clause {
	var parts []string
	var args []any
	for _, c := range clauses {
		if c.IsZero() {
			continue
		}
		parts = append(parts, "("+c.SQL+")")
		args = append(args, c.Args...)
	}
	if len(parts) == 0 {
		return Clause{}
	}
	return Clause{SQL: strings.Join(parts, sep), Args: args}
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Sort orders by one column
type Sort struct {
	Column string
	Desc   bool
}

// String renders the ORDER BY expression
func (s Sort) String() string {
	if s.Column == "" {
		return ""
	}
	if s.Desc {
		return s.Column + " DESC"
	}
	return s.Column + " ASC"
}

// Page is a 1-based page of Size rows
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.Size
}

func (p Page) Limit() int {
	return p.Size
}

// Spec is everything a paged read needs: joins, predicate, ordering and window.
// A zero Page means "no pagination".
type Spec struct {
	Joins []string
	Where Filter
	Sort  Sort
	Page  Page
}

// Pagination is the metadata returned alongside a page of results
type Pagination struct {
	Page    int   `json:"page"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasNext bool  `json:"hasNext"`
	HasPrev bool  `json:"hasPrev"`
}

// NewPagination derives page metadata from the requested window and the total match count
func NewPagination(page, limit int, total int64) Pagination {
	pages := 0
	if limit > 0 {
		pages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return Pagination{
		Page:    page,
		Limit:   limit,
		Total:   total,
		Pages:   pages,
		HasNext: int64(page)*int64(limit) < total,
		HasPrev: page > 1,
	}
}
