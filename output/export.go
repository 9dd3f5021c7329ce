package output

import (
	"strconv"
	"strings"

	"servicedesk/filter"
	"servicedesk/servicerequest"
	"servicedesk/sheet"
)

// BuildExport renumbers matches for export: any existing sequence and request
// ID columns are dropped and regenerated as the first two columns from each
// row's position in the filtered set and its created date. Remaining columns
// keep their original header order; short rows are padded.
func BuildExport(header []string, matches []filter.Match) sheet.Table {
	keep := make([]int, 0, len(header))
	for i, name := range header {
		if isRegeneratedColumn(name) {
			continue
		}
		keep = append(keep, i)
	}

	outHeader := make([]string, 0, len(keep)+2)
	outHeader = append(outHeader, servicerequest.HeaderSlNo, servicerequest.HeaderRequestID)
	for _, i := range keep {
		outHeader = append(outHeader, header[i])
	}

	rows := make([][]string, 0, len(matches))
	for i, match := range matches {
		position := i + 1
		row := make([]string, 0, len(outHeader))
		row = append(row, strconv.Itoa(position), servicerequest.GenerateRequestID(position, match.Date))
		for _, col := range keep {
			value, _ := sheet.Cell(match.Row, col)
			row = append(row, value)
		}
		rows = append(rows, row)
	}

	return sheet.Table{Header: outHeader, Rows: rows}
}

func isRegeneratedColumn(name string) bool {
	key := strings.ToLower(strings.TrimSpace(name))
	return key == strings.ToLower(servicerequest.HeaderSlNo) ||
		key == strings.ToLower(servicerequest.HeaderRequestID)
}

// ExportFilename names a download for the given ISO date range.
func ExportFilename(start, end, format string) string {
	ext := ".xlsx"
	if normalizeFormat(format) == "csv" {
		ext = ".csv"
	}
	return "SheetData_" + strings.TrimSpace(start) + "_to_" + strings.TrimSpace(end) + ext
}
