package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"phisweep/internal/privacy"
	"phisweep/internal/store"
)

// WriteCSV writes a header and one record per row.
func WriteCSV(w io.Writer, kind privacy.FileKind, rows []store.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(kind)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(Fields(kind, row)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the CSV report to path, creating parent directories. The
// file is replaced atomically.
func WriteFile(path string, kind privacy.FileKind, rows []store.Entry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".phisweep-report-*.csv")
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := WriteCSV(tmp, kind, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("write report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace report: %w", err)
	}
	return nil
}

// RenderTable renders rows for a terminal.
func RenderTable(kind privacy.FileKind, rows []store.Entry) string {
	header := Header(kind)
	tw := table.NewWriter()
	style := table.StyleRounded
	style.Format.Header = text.FormatDefault
	style.Format.Footer = text.FormatDefault
	tw.SetStyle(style)
	headerRow := make(table.Row, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	tw.AppendHeader(headerRow)
	for _, row := range rows {
		fields := Fields(kind, row)
		r := make(table.Row, len(fields))
		for i, f := range fields {
			r[i] = f
		}
		tw.AppendRow(r)
	}
	tw.AppendFooter(table.Row{fmt.Sprintf("%d rows", len(rows))})
	return tw.Render()
}
