package domain

import (
	"context"
	"strings"
)

// CatalogQuery is a read-only select against one archive table.
type CatalogQuery struct {
	Table   string
	Columns []Column
	Where   string
}

// SQL renders the query as a single ADQL/SQL select statement.
func (q CatalogQuery) SQL() string {
	names := make([]string, len(q.Columns))
	for i, c := range q.Columns {
		names[i] = c.Name()
	}
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(names, ","))
	b.WriteString(" FROM ")
	b.WriteString(q.Table)
	if strings.TrimSpace(q.Where) != "" {
		b.WriteString(" WHERE ")
		b.WriteString(q.Where)
	}
	return b.String()
}

// CatalogSource executes catalog queries against an upstream store.
type CatalogSource interface {
	// Name identifies the source in logs and errors.
	Name() string
	Query(ctx context.Context, q CatalogQuery) (*Table, error)
}
