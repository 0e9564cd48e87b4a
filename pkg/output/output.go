// Package output renders triagectl results for terminals.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/vetlink-systems/vetlink-triage/pkg/color"
)

// Stdout and Stderr are variables so tests can capture command output.
var (
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgWhite, color.Bold)
)

// Success prints a green check line for a completed action.
func Success(format string, a ...any) {
	successColor.Fprintf(Stdout, "✓ "+format+"\n", a...)
}

// Error prints a red cross line to stderr.
func Error(format string, a ...any) {
	errorColor.Fprintf(Stderr, "✗ "+format+"\n", a...)
}

// Info prints an informational line.
func Info(format string, a ...any) {
	infoColor.Fprintf(Stdout, format+"\n", a...)
}

// JSON writes v indented to stdout, for the json output format.
func JSON(v any) error {
	enc := json.NewEncoder(Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Table accumulates rows for the listing commands and prints them as
// padded columns under a dashed header rule.
type Table struct {
	headers []string
	rows    [][]string
	widths  []int
}

func NewTable(headers ...string) *Table {
	t := &Table{headers: headers, widths: make([]int, len(headers))}
	for i, h := range headers {
		t.widths[i] = len(h)
	}
	return t
}

func (t *Table) AddRow(cells ...string) {
	for i, cell := range cells {
		if i < len(t.widths) && len(cell) > t.widths[i] {
			t.widths[i] = len(cell)
		}
	}
	t.rows = append(t.rows, cells)
}

func (t *Table) Render() {
	for i, h := range t.headers {
		headerColor.Fprintf(Stdout, "%-*s  ", t.widths[i], h)
	}
	fmt.Fprintln(Stdout)

	for _, w := range t.widths {
		fmt.Fprint(Stdout, strings.Repeat("-", w), "  ")
	}
	fmt.Fprintln(Stdout)

	for _, row := range t.rows {
		for i, cell := range row {
			fmt.Fprintf(Stdout, "%-*s  ", t.widths[i], cell)
		}
		fmt.Fprintln(Stdout)
	}
}
