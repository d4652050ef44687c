// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package markdown

import (
	"strings"
)

// Row is one data row of a pipe table. Values line up with Columns.
type Row struct {
	Columns []string
	Values  []string
}

// Get returns the cell under column. Column names are matched exactly. When a
// header repeats a name the rightmost column wins.
func (r Row) Get(column string) (string, bool) {
	for i := len(r.Columns) - 1; i >= 0; i-- {
		if r.Columns[i] == column {
			return r.Values[i], true
		}
	}
	return "", false
}

// Table is a parsed pipe table. Skipped counts data lines dropped because
// their cell count did not match the header.
type Table struct {
	Columns []string
	Rows    []Row
	Skipped int
}

// HasColumn reports whether the header contains column.
func (t Table) HasColumn(column string) bool {
	for _, c := range t.Columns {
		if c == column {
			return true
		}
	}
	return false
}

// ParseTable parses a pipe table: a header line, a separator line, and data
// lines. Blank lines are ignored. Empty input, fewer than three lines, or a
// header without any named column yields an empty Table.
func ParseTable(text string) Table {
	var lines []string
	for _, l := range splitLines(text) {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 3 {
		return Table{}
	}

	columns := splitRow(lines[0])
	named := false
	for _, c := range columns {
		if c != "" {
			named = true
			break
		}
	}
	if !named {
		return Table{}
	}

	t := Table{Columns: columns}
	for _, line := range lines[2:] {
		values := splitRow(line)
		if len(values) != len(columns) {
			t.Skipped++
			continue
		}
		t.Rows = append(t.Rows, Row{Columns: columns, Values: values})
	}
	return t
}

// FindTables returns the text of every pipe table in doc, in document order.
// A table starts at a line containing "|" that is followed by a separator
// line, and runs until the first line without a "|".
func FindTables(doc string) []string {
	lines := splitLines(doc)
	var tables []string

	for i := 0; i+1 < len(lines); i++ {
		if !isPipeLine(lines[i]) || !isSeparatorLine(lines[i+1]) {
			continue
		}
		j := i + 2
		for j < len(lines) && isPipeLine(lines[j]) {
			j++
		}
		tables = append(tables, strings.Join(lines[i:j], "\n"))
		i = j - 1
	}

	return tables
}

// splitRow removes one leading and one trailing pipe, splits on unescaped
// pipes, and trims each cell.
func splitRow(line string) []string {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "|")
	if strings.HasSuffix(s, "|") && !strings.HasSuffix(s, `\|`) {
		s = s[:len(s)-1]
	}

	var (
		cells []string
		cell  strings.Builder
	)
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == '|':
			cell.WriteByte('|')
			i++
		case s[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(s[i])
		}
	}
	return append(cells, strings.TrimSpace(cell.String()))
}

func isPipeLine(line string) bool {
	return strings.TrimSpace(line) != "" && strings.Contains(line, "|")
}

// isSeparatorLine reports whether line is a header separator such as
// "| --- | :---: |".
func isSeparatorLine(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.Contains(t, "|") || !strings.Contains(t, "-") {
		return false
	}
	for _, r := range t {
		switch r {
		case '|', '-', ':', ' ', '\t':
		default:
			return false
		}
	}
	return true
}
