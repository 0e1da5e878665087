package query

import (
	"fmt"
	"strings"
)

// Upsert builds multi-row INSERT ... ON CONFLICT DO UPDATE statements.
// The first column is the conflict key; the remaining columns are
// overwritten on conflict.
type Upsert struct {
	table   string
	key     string
	columns []string
}

// NewUpsert creates an Upsert for schema.table keyed on key, writing key
// followed by columns.
func NewUpsert(schema, table, key string, columns ...string) *Upsert {
	return &Upsert{
		table:   NewProjectionMap(schema, table, "").Name(),
		key:     key,
		columns: append([]string{key}, columns...),
	}
}

// Build returns the statement and flattened arguments for rows. Each row
// must supply one value per column in declaration order. The statement
// returns the key of every written row.
func (u *Upsert) Build(rows [][]any) (string, []any, error) {
	if len(rows) == 0 {
		return "", nil, fmt.Errorf("no rows to upsert")
	}

	cols := make([]string, len(u.columns))
	for i, c := range u.columns {
		cols[i] = Quote(c)
	}

	width := len(u.columns)
	values := make([]string, len(rows))
	args := make([]any, 0, len(rows)*width)
	param := 1

	for i, row := range rows {
		if len(row) != width {
			return "", nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), width)
		}
		placeholders := make([]string, width)
		for j := range row {
			placeholders[j] = fmt.Sprintf("$%d", param)
			param++
		}
		values[i] = "(" + strings.Join(placeholders, ", ") + ")"
		args = append(args, row...)
	}

	sets := make([]string, 0, width-1)
	for _, c := range cols[1:] {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	action := "DO NOTHING"
	if len(sets) > 0 {
		action = "DO UPDATE SET " + strings.Join(sets, ", ")
	}

	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) %s RETURNING %s",
		u.table,
		strings.Join(cols, ", "),
		strings.Join(values, ", "),
		cols[0],
		action,
		cols[0],
	)

	return sql, args, nil
}
