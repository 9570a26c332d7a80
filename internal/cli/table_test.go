package cli

import (
	"strings"
	"testing"

	"github.com/jmylchreest/colorvibe/internal/colour"
)

func TestNewTable(t *testing.T) {
	table := NewTable([]string{"Role", "Hex", "HSL"})
	if len(table.headers) != 3 {
		t.Errorf("Expected 3 headers, got %d", len(table.headers))
	}
	if table.padding != 2 {
		t.Errorf("Expected padding of 2, got %d", table.padding)
	}
}

func TestTableAddRow(t *testing.T) {
	table := NewTable([]string{"Role", "Hex"})

	table.AddRow([]string{"primary", "#3b82f6"})
	table.AddRow([]string{"accent"})
	table.AddRow([]string{"text", "#111827", "extra"})

	if len(table.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(table.rows))
	}
	for i, row := range table.rows {
		if len(row) != 2 {
			t.Errorf("row %d has %d columns, want 2", i, len(row))
		}
	}
	if table.rows[1][1] != "" {
		t.Errorf("Expected empty string for padded column, got %q", table.rows[1][1])
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Role", "Hex"})
	table.AddRow([]string{"background", "#f9fafb"})
	table.AddRow([]string{"text", "#111827"})

	lines := strings.Split(strings.TrimSuffix(table.Render(), "\n"), "\n")
	want := []string{
		"Role        Hex",
		"----------  -------",
		"background  #f9fafb",
		"text        #111827",
	}
	if len(lines) != len(want) {
		t.Fatalf("Render() produced %d lines, want %d:\n%s", len(lines), len(want), strings.Join(lines, "\n"))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if got := NewTable(nil).Render(); got != "" {
		t.Errorf("Render() with no headers = %q, want empty", got)
	}
}

func TestTableAlignsStyledCells(t *testing.T) {
	table := NewTable([]string{"Swatch", "Role"})
	table.AddRow([]string{swatch(colour.RGB{R: 59, G: 130, B: 246}), "primary"})

	lines := strings.Split(table.Render(), "\n")
	// The swatch is the hex plus one cell of padding on each side.
	if want := strings.Repeat("-", 9) + "  " + strings.Repeat("-", 7); lines[1] != want {
		t.Errorf("rule line = %q, want %q", lines[1], want)
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input string
		width int
		want  string
	}{
		{input: "abc", width: 5, want: "abc  "},
		{input: "abcdef", width: 3, want: "abcdef"},
		{input: "", width: 2, want: "  "},
	}
	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.want {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
		}
	}
}
