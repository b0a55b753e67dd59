package archive

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"exodash/internal/domain"
)

// DecodeCSV reads a header-prefixed CSV stream into a table with the given
// column order. Header names are matched case-insensitively; extra columns
// are ignored and missing requested columns are an error. Empty fields are
// nulls.
func DecodeCSV(r io.Reader, cols []domain.Column) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.ReuseRecord = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty response")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	positions := make(map[domain.Column]int, len(header))
	for i, name := range header {
		c, err := domain.ColumnByName(strings.TrimPrefix(name, "\ufeff"))
		if err != nil {
			continue
		}
		positions[c] = i
	}
	index := make([]int, len(cols))
	for i, c := range cols {
		pos, ok := positions[c]
		if !ok {
			return nil, fmt.Errorf("column %q missing from header %v", c.Name(), header)
		}
		index[i] = pos
	}

	table := domain.NewTable(cols)
	line := 1
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		var rec domain.Record
		for i, c := range cols {
			if index[i] >= len(fields) {
				return nil, fmt.Errorf("line %d: expected at least %d fields, got %d", line, index[i]+1, len(fields))
			}
			v, err := parseField(c, fields[index[i]])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec.Set(c, v)
		}
		table.Rows = append(table.Rows, rec)
	}
	return table, nil
}

func parseField(c domain.Column, raw string) (domain.Value, error) {
	raw = strings.TrimSpace(raw)
	if c.Kind() == domain.KindText {
		return domain.TextValue(raw), nil
	}
	if raw == "" || strings.EqualFold(raw, "nan") || strings.EqualFold(raw, "null") {
		return domain.NullNumber(), nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return domain.Value{}, fmt.Errorf("column %s: invalid number %q", c.Name(), raw)
	}
	return domain.NumberValue(f), nil
}

// EncodeCSV writes t with a header row of archive column names.
func EncodeCSV(w io.Writer, t *domain.Table) error {
	writer := csv.NewWriter(w)
	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name()
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for i := range t.Rows {
		for j, c := range t.Columns {
			record[j] = t.Rows[i].Value(c).String()
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
