package output

import (
	"fmt"
	"io"
	"strings"

	"servicedesk/sheet"
)

type Writer interface {
	Write(w io.Writer, table sheet.Table) error
	ContentType() string
}

func WriterForFormat(format string) (Writer, error) {
	switch normalizeFormat(format) {
	case "csv":
		return &CSVWriter{}, nil
	case "", "excel", "xlsx":
		return &ExcelWriter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

func normalizeFormat(value string) string {
	return strings.TrimSpace(strings.ToLower(value))
}
