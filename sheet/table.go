package sheet

import "strings"

// Table is a header row plus data rows, as read from a sheet.
// Rows may be shorter than Header when trailing cells are empty.
type Table struct {
	Header []string
	Rows   [][]string
}

// NewTable splits raw sheet values into header and data rows.
func NewTable(values [][]string) Table {
	if len(values) == 0 {
		return Table{}
	}
	return Table{Header: values[0], Rows: values[1:]}
}

// Column returns the index of the header matching name case-insensitively
// after trimming, or -1.
func (t Table) Column(name string) int {
	key := normalizeHeader(name)
	for i, header := range t.Header {
		if normalizeHeader(header) == key {
			return i
		}
	}
	return -1
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) Empty() bool {
	return len(t.Header) == 0 && len(t.Rows) == 0
}

// Cell returns row[index] and whether the row is long enough to hold it.
func Cell(row []string, index int) (string, bool) {
	if index < 0 || index >= len(row) {
		return "", false
	}
	return row[index], true
}

func normalizeHeader(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}
