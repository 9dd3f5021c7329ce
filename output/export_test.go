package output

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"servicedesk/filter"
	"servicedesk/sheet"
)

func march(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.Local)
}

func TestBuildExport_RegeneratesSequenceAndRequestIDs(t *testing.T) {
	t.Parallel()

	header := []string{"Sl No", "Request/Complaint ID", "Created Date", "Technician Name", "Remarks"}
	matches := []filter.Match{
		{Row: []string{"14", `SR\Mar\014`, "02/03/2024", "Alice", "Printer"}, Date: march(2)},
		{Row: []string{"20", `SR\Apr\020`, "28/03/2024", "Alice"}, Date: march(28)},
	}

	table := BuildExport(header, matches)

	assert.Equal(t, []string{"Sl No", "Request/Complaint ID", "Created Date", "Technician Name", "Remarks"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", `SR\Mar\001`, "02/03/2024", "Alice", "Printer"}, table.Rows[0])
	assert.Equal(t, []string{"2", `SR\Mar\002`, "28/03/2024", "Alice", ""}, table.Rows[1])
}

func TestBuildExport_MovesRegeneratedColumnsToFront(t *testing.T) {
	t.Parallel()

	header := []string{"Created Date", " sl no ", "Technician Name", "REQUEST/COMPLAINT ID", "Status"}
	matches := []filter.Match{
		{Row: []string{"07/03/2024", "99", "Bob", "x", "CLOSED"}, Date: march(7)},
	}

	table := BuildExport(header, matches)

	assert.Equal(t, []string{"Sl No", "Request/Complaint ID", "Created Date", "Technician Name", "Status"}, table.Header)
	assert.Equal(t, []string{"1", `SR\Mar\001`, "07/03/2024", "Bob", "CLOSED"}, table.Rows[0])
}

func TestBuildExport_HeaderWithoutRegeneratedColumns(t *testing.T) {
	t.Parallel()

	table := BuildExport([]string{"Created Date"}, []filter.Match{{Row: []string{"07/03/2024"}, Date: march(7)}})
	assert.Equal(t, []string{"Sl No", "Request/Complaint ID", "Created Date"}, table.Header)
	assert.Equal(t, []string{"1", `SR\Mar\001`, "07/03/2024"}, table.Rows[0])
}

func TestExcelWriter_EmptyExportIsHeaderOnly(t *testing.T) {
	t.Parallel()

	table := BuildExport([]string{"Sl No", "Request/Complaint ID", "Created Date", "Technician Name"}, nil)

	var buf bytes.Buffer
	require.NoError(t, (&ExcelWriter{}).Write(&buf, table))

	file, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer file.Close()

	assert.Equal(t, ExportSheetName, file.GetSheetName(0))
	rows, err := file.GetRows(ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Sl No", "Request/Complaint ID", "Created Date", "Technician Name"}, rows[0])
}

func TestExcelWriter_WritesRows(t *testing.T) {
	t.Parallel()

	table := BuildExport(
		[]string{"Created Date", "Technician Name"},
		[]filter.Match{{Row: []string{"01/03/2024", "Alice"}, Date: march(1)}},
	)

	var buf bytes.Buffer
	require.NoError(t, (&ExcelWriter{}).Write(&buf, table))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer file.Close()

	rows, err := file.GetRows(ExportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", `SR\Mar\001`, "01/03/2024", "Alice"}, rows[1])
}

func TestCSVWriter_WritesHeaderAndRows(t *testing.T) {
	t.Parallel()

	table := sheet.Table{
		Header: []string{"Sl No", "Remarks"},
		Rows:   [][]string{{"1", "needs, quoting"}},
	}

	var buf bytes.Buffer
	require.NoError(t, (&CSVWriter{}).Write(&buf, table))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Sl No", "Remarks"}, {"1", "needs, quoting"}}, records)
}

func TestWriterForFormat(t *testing.T) {
	t.Parallel()

	for _, format := range []string{"", "excel", "XLSX", " xlsx "} {
		writer, err := WriterForFormat(format)
		require.NoError(t, err, format)
		assert.IsType(t, &ExcelWriter{}, writer)
	}

	writer, err := WriterForFormat("csv")
	require.NoError(t, err)
	assert.IsType(t, &CSVWriter{}, writer)

	_, err = WriterForFormat("pdf")
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestExportFilename(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "SheetData_2024-03-01_to_2024-03-10.xlsx", ExportFilename("2024-03-01", "2024-03-10", "excel"))
	assert.Equal(t, "SheetData_2024-03-01_to_2024-03-10.csv", ExportFilename("2024-03-01", "2024-03-10", "CSV"))
}
