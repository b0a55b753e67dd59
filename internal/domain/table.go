package domain

// Table is a column-ordered collection of records. A table returned by the
// fetcher is shared and must be treated as read-only.
type Table struct {
	Columns []Column
	Rows    []Record
}

// NewTable returns an empty table with the given column order.
func NewTable(cols []Column) *Table {
	return &Table{Columns: cols}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// HasColumn reports whether c is part of the table's column list.
func (t *Table) HasColumn(c Column) bool {
	for _, col := range t.Columns {
		if col == c {
			return true
		}
	}
	return false
}

// Subset returns a new table with the same columns holding the rows for
// which keep returns true, in their original order.
func (t *Table) Subset(keep func(*Record) bool) *Table {
	out := &Table{Columns: t.Columns, Rows: make([]Record, 0, len(t.Rows))}
	for i := range t.Rows {
		if keep(&t.Rows[i]) {
			out.Rows = append(out.Rows, t.Rows[i])
		}
	}
	return out
}

// Page returns the rows in [offset, offset+limit) as a table sharing t's
// columns. Out of range offsets yield an empty table.
func (t *Table) Page(offset, limit int) *Table {
	n := t.Len()
	lo := min(max(offset, 0), n)
	hi := min(lo+max(limit, 0), n)
	return &Table{Columns: t.Columns, Rows: t.Rows[lo:hi]}
}
