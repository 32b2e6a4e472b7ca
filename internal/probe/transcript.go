// SPDX-FileCopyrightText: Copyright 2025 SAP SE or an SAP affiliate company
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/sapcc/apiprobe/internal/client"
	"github.com/sapcc/apiprobe/internal/config"
)

// Transcript prints the human readable record of a run.
type Transcript struct {
	w           io.Writer
	format      string
	showHeaders bool
}

// NewTranscript writes in config.FormatFull or config.FormatShort layout.
func NewTranscript(w io.Writer, format string, showHeaders bool) *Transcript {
	return &Transcript{w: w, format: format, showHeaders: showHeaders}
}

// Response writes one block:
//
//	===== ME RESPONSE =====
//	Status: 200
//	Headers: {Content-Type: application/json}
//	Content: {"id":1}
//
// or in short layout:
//
//	ME response status: 200
//	ME response headers: {Content-Type: application/json}
//	ME response content: {"id":1}
func (t *Transcript) Response(name string, resp *client.Response) {
	if t.format == config.FormatShort {
		fmt.Fprintf(t.w, "%s response status: %d\n", name, resp.StatusCode)
		if t.showHeaders {
			fmt.Fprintf(t.w, "%s response headers: %s\n", name, FormatHeaders(resp.Header))
		}
		fmt.Fprintf(t.w, "%s response content: %s\n", name, resp.Text())
		return
	}

	fmt.Fprintf(t.w, "\n===== %s RESPONSE =====\n", name)
	fmt.Fprintf(t.w, "Status: %d\n", resp.StatusCode)
	if t.showHeaders {
		fmt.Fprintf(t.w, "Headers: %s\n", FormatHeaders(resp.Header))
	}
	fmt.Fprintf(t.w, "Content: %s\n", resp.Text())
}

func (t *Transcript) Token(token string) {
	if t.format == config.FormatShort {
		fmt.Fprintf(t.w, "Token: %s\n", token)
		return
	}
	fmt.Fprintf(t.w, "\nToken: %s\n", token)
}

// FormatHeaders renders headers sorted by name on a single line.
func FormatHeaders(h http.Header) string {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+": "+strings.Join(h[k], ", "))
	}
	return "{" + strings.Join(pairs, ", ") + "}"
}
