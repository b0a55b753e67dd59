package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"exodash/internal/archive"
	"exodash/internal/domain"
)

var outputFormats = []string{"table", "csv", "json", "md"}

// getOutputFormat returns the effective output format from the root command's persistent flags.
func getOutputFormat(cmd *cobra.Command) string {
	v, _ := cmd.Root().PersistentFlags().GetString("output")
	return v
}

func validateOutputFormat(output string) error {
	if output == "" {
		return nil
	}
	for _, f := range outputFormats {
		if output == f {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q: use 'table', 'csv', 'json' or 'md'", output)
}

// resolveOutputFormat picks table for terminals and csv for pipes when no
// format was requested.
func resolveOutputFormat(cmd *cobra.Command, w io.Writer) string {
	if f := getOutputFormat(cmd); f != "" {
		return f
	}
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		return "table"
	}
	return "csv"
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// renderTable writes t in the given format.
func renderTable(w io.Writer, t *domain.Table, format string) error {
	switch format {
	case "csv":
		return archive.EncodeCSV(w, t)
	case "json":
		rows := make([]map[string]any, 0, t.Len())
		for i := range t.Rows {
			row := make(map[string]any, len(t.Columns))
			for _, c := range t.Columns {
				row[c.Name()] = t.Rows[i].Value(c).Interface()
			}
			rows = append(rows, row)
		}
		return printJSON(w, rows)
	}

	if t.Len() == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Name()
	}
	tw.AppendHeader(header)
	for i := range t.Rows {
		row := make(table.Row, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = t.Rows[i].Value(c).String()
		}
		tw.AppendRow(row)
	}

	if format == "md" {
		tw.RenderMarkdown()
	} else {
		tw.Render()
	}
	_, _ = fmt.Fprintf(w, "(%d rows)\n", t.Len())
	return nil
}
