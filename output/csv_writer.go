package output

import (
	"encoding/csv"
	"fmt"
	"io"

	"servicedesk/sheet"
)

type CSVWriter struct{}

func (w *CSVWriter) ContentType() string {
	return "text/csv; charset=utf-8"
}

func (w *CSVWriter) Write(out io.Writer, table sheet.Table) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(table.Header); err != nil {
		return fmt.Errorf("write csv headers: %w", err)
	}

	for _, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}

	return nil
}
