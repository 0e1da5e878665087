// Package query provides SQL query building utilities with projection mapping.
package query

import (
	"strings"

	"github.com/jackc/pgx/v5"
)

// ProjectionMap maps view property names to qualified column references
// (alias."column"). Identifiers are quoted so column names that are not
// plain SQL identifiers, such as "curio-id", survive intact.
type ProjectionMap struct {
	schema     string
	table      string
	alias      string
	columns    map[string]string
	columnList []string
}

// NewProjectionMap creates a ProjectionMap for the given schema, table, and alias.
func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema:     schema,
		table:      table,
		alias:      alias,
		columns:    make(map[string]string),
		columnList: make([]string, 0),
	}
}

// Project adds a column mapping from database column to view property name.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + Quote(column)
	p.columns[viewName] = qualified
	p.columnList = append(p.columnList, qualified)
	return p
}

// Name returns the quoted schema-qualified table name without alias.
func (p *ProjectionMap) Name() string {
	return pgx.Identifier{p.schema, p.table}.Sanitize()
}

// Table returns the fully qualified table reference with alias ("schema"."table" alias).
func (p *ProjectionMap) Table() string {
	return p.Name() + " " + p.alias
}

// Column returns the qualified column for a view property name, or the input if not mapped.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.columns[viewName]; ok {
		return col
	}
	return viewName
}

// Columns returns all mapped columns as a comma-separated string.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.columnList, ", ")
}

// Quote returns name as a quoted SQL identifier.
func Quote(name string) string {
	return pgx.Identifier{name}.Sanitize()
}
