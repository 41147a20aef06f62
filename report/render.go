package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	textSeparator = " | "
	reportTitle   = "NETWORK SECURITY REPORT"
)

// RenderText writes the report as a pipe-separated text table: a fixed
// header block, a column header row and one row per device. Free-text fields
// can contain the separator (vendor names, nicknames), so every field goes
// through escapeField instead of naive concatenation.
func RenderText(w io.Writer, r Report) error {
	var b strings.Builder
	b.WriteString(reportTitle + "\n")
	b.WriteString("Generated: " + r.GeneratedAt.Format("2006-01-02 15:04:05") + "\n")
	fmt.Fprintf(&b, "Total Devices: %d\n", r.Summary.TotalDevices)
	fmt.Fprintf(&b, "Quarantined Devices: %d\n", r.Summary.BlockedDevices)
	fmt.Fprintf(&b, "Critical Threats: %d\n", r.Summary.CriticalThreats)
	b.WriteString("\n")

	writeTextRow(&b, columnHeaders)
	for _, row := range r.Rows {
		writeTextRow(&b, row.fields())
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTextRow(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(textSeparator)
		}
		b.WriteString(escapeField(f))
	}
	b.WriteString("\n")
}

// escapeField quotes a field that embeds the separator character, a quote or
// a line break, doubling any embedded quotes (CSV quoting rule applied to the
// pipe-separated layout).
func escapeField(s string) string {
	if !strings.ContainsAny(s, "|\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// RenderCSV writes the same rows as RFC 4180 CSV, summary in a comment-free
// preamble block.
func RenderCSV(w io.Writer, r Report) error {
	cw := csv.NewWriter(w)
	preamble := [][]string{
		{reportTitle},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Devices", fmt.Sprintf("%d", r.Summary.TotalDevices)},
		{"Quarantined Devices", fmt.Sprintf("%d", r.Summary.BlockedDevices)},
		{"Critical Threats", fmt.Sprintf("%d", r.Summary.CriticalThreats)},
		{},
	}
	for _, rec := range preamble {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	if err := cw.Write(columnHeaders); err != nil {
		return err
	}
	for _, row := range r.Rows {
		if err := cw.Write(row.fields()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderXLSX writes the report as a single-sheet workbook.
func RenderXLSX(w io.Writer, r Report) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()
	const sheet = "Report"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	preamble := [][]any{
		{reportTitle},
		{"Generated", r.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Total Devices", r.Summary.TotalDevices},
		{"Quarantined Devices", r.Summary.BlockedDevices},
		{"Critical Threats", r.Summary.CriticalThreats},
		{},
	}
	rowNum := 1
	for _, rec := range preamble {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rec); err != nil {
			return err
		}
		rowNum++
	}

	header := make([]any, len(columnHeaders))
	for i, h := range columnHeaders {
		header[i] = h
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &header); err != nil {
		return err
	}
	rowNum++

	for _, row := range r.Rows {
		values := []any{
			row.DisplayName, row.IP, row.MAC, row.OSType, row.DeviceType,
			row.RiskPercent, row.OpenPorts, row.Latency, row.Status,
		}
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
		rowNum++
	}

	_, err = f.WriteTo(w)
	return err
}
