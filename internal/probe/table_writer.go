// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteSummary renders one row per request of the report.
func WriteSummary(w io.Writer, report *Report, format string) error {
	if format == "" || format == "none" {
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "name", "method", "path", "status", "duration", "bytes"})
	for i, r := range report.Results() {
		t.AppendRow(table.Row{i + 1, r.Name, r.Method, r.Path, r.StatusCode, r.Duration.Round(time.Millisecond), r.Size})
	}

	switch format {
	case "table":
		t.SetStyle(table.StyleLight)
		t.Render()
	case "csv":
		t.RenderCSV()
	case "markdown":
		t.RenderMarkdown()
	case "html":
		t.RenderHTML()
	default:
		return fmt.Errorf("format option %s is not supported", format)
	}

	return nil
}
