package postgrest

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Query describes a read against a single table using PostgREST's
// URL grammar: select lists, horizontal filters, ordering and an
// offset/limit window.
type Query struct {
	table   string
	columns []string
	filters []filter
	order   []string
	offset  int
	limit   int
}

type filter struct {
	column string
	op     string
	value  string
}

// NewQuery starts a query against table.
func NewQuery(table string) *Query {
	return &Query{table: table, offset: -1, limit: -1}
}

// Table returns the target table name.
func (q *Query) Table() string {
	return q.table
}

// Select restricts the returned columns. No columns selects all.
func (q *Query) Select(columns ...string) *Query {
	q.columns = append(q.columns, columns...)
	return q
}

// Eq adds a column equality filter.
func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column: column, op: "eq", value: fmt.Sprint(value)})
	return q
}

// Order appends an ORDER BY term.
func (q *Query) Order(column string, descending bool) *Query {
	dir := "asc"
	if descending {
		dir = "desc"
	}
	q.order = append(q.order, column+"."+dir)
	return q
}

// Range restricts the window to limit rows starting at offset.
func (q *Query) Range(offset, limit int) *Query {
	q.offset = offset
	q.limit = limit
	return q
}

// Limit caps the number of rows returned.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

// Values renders the query as URL parameters.
func (q *Query) Values() url.Values {
	v := url.Values{}
	if len(q.columns) > 0 {
		v.Set("select", strings.Join(q.columns, ","))
	}
	for _, f := range q.filters {
		v.Add(f.column, f.op+"."+f.value)
	}
	if len(q.order) > 0 {
		v.Set("order", strings.Join(q.order, ","))
	}
	if q.offset >= 0 {
		v.Set("offset", strconv.Itoa(q.offset))
	}
	if q.limit >= 0 {
		v.Set("limit", strconv.Itoa(q.limit))
	}
	return v
}
