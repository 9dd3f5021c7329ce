package output

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"servicedesk/sheet"
)

// ExportSheetName is the worksheet title of exported workbooks.
const ExportSheetName = "Filtered Data"

type ExcelWriter struct{}

func (w *ExcelWriter) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

func (w *ExcelWriter) Write(out io.Writer, table sheet.Table) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), ExportSheetName); err != nil {
		return fmt.Errorf("rename excel sheet: %w", err)
	}

	for col, header := range table.Header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(ExportSheetName, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, values := range table.Rows {
		row := i + 2
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := file.SetCellValue(ExportSheetName, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if _, err := file.WriteTo(out); err != nil {
		return fmt.Errorf("write excel output: %w", err)
	}

	return nil
}
