package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"servicedesk/config"
	"servicedesk/filter"
	"servicedesk/intake"
	"servicedesk/output"
	"servicedesk/sheet"
)

var (
	exportFrom       string
	exportTo         string
	exportTechnician string
	exportFormat     string
	exportMode       string
	exportOutput     string
)

type exportOptions struct {
	From       string
	To         string
	Technician string
	Format     string
	Mode       string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export filtered service requests from the sheet to Excel/CSV",
	Long: `Read the request sheet, keep the rows created within --from..--to (inclusive) and,
optionally, logged by one technician, and write them to a file.

Modes:
- rows: the matching rows, renumbered 1..N with regenerated request IDs
- summary: request count and effort hours per day and technician

Output format can be selected explicitly via --format or inferred from --output extension.
When --output is omitted the file is named SheetData_<from>_to_<to>.xlsx (or .csv).`,
	Example: `
  # Export March for one technician to Excel
  servicedesk export --from 2024-03-01 --to 2024-03-31 --technician Alice

  # Export all technicians to CSV
  servicedesk export --from 2024-03-01 --to 2024-03-31 --output ./march.csv

  # Export per-day effort totals
  servicedesk export --from 2024-03-01 --to 2024-03-31 --mode summary --format excel
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		opts := exportOptions{
			From:       exportFrom,
			To:         exportTo,
			Technician: exportTechnician,
			Format:     exportFormat,
			Mode:       exportMode,
		}
		if strings.TrimSpace(opts.Format) == "" {
			opts.Format = detectExportFormat(exportOutput)
		}
		path := exportOutput
		if strings.TrimSpace(path) == "" {
			path = output.ExportFilename(opts.From, opts.To, opts.Format)
		}

		gateway, err := sheet.NewGoogleSheet(cmd.Context(), googleConfig(*cfg))
		if err != nil {
			return err
		}

		file, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		rows, err := runExport(cmd.Context(), gateway, opts, file)
		if closeErr := file.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("close output file: %w", closeErr)
		}
		if err != nil {
			_ = os.Remove(path)
			return err
		}

		fmt.Printf("Export completed. Rows: %d, Mode: %s, Format: %s, File: %s\n", rows, normalizeExportMode(opts.Mode), opts.Format, path)
		return nil
	},
}

// runExport filters the sheet and writes the export to out. It returns the
// number of data rows written.
func runExport(ctx context.Context, gateway sheet.Gateway, opts exportOptions, out io.Writer) (int, error) {
	from, to, err := filter.ParseRange(opts.From, opts.To)
	if err != nil {
		return 0, err
	}
	writer, err := output.WriterForFormat(opts.Format)
	if err != nil {
		return 0, err
	}

	table, err := gateway.ReadAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", intake.ErrSheetUnavailable, err)
	}
	matches := filter.Records(table, from, to, strings.TrimSpace(opts.Technician))

	var export sheet.Table
	switch normalizeExportMode(opts.Mode) {
	case "rows":
		export = output.BuildExport(table.Header, matches)
	case "summary":
		export = output.SummaryTable(output.BuildEffortSummaries(table.Header, matches))
	default:
		return 0, fmt.Errorf("unsupported export mode: %s (supported: rows, summary)", opts.Mode)
	}

	if err := writer.Write(out, export); err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{"matches": len(matches), "rows": export.Len()}).Debug("export written")
	return export.Len(), nil
}

func normalizeExportMode(mode string) string {
	mode = strings.TrimSpace(strings.ToLower(mode))
	if mode == "" {
		return "rows"
	}
	return mode
}

func detectExportFormat(path string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "csv":
		return "csv"
	default:
		return "excel"
	}
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Start date, format YYYY-MM-DD (inclusive)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "End date, format YYYY-MM-DD (inclusive)")
	exportCmd.Flags().StringVar(&exportTechnician, "technician", "", "Only export rows logged by this technician (default: all)")
	exportCmd.Flags().StringVar(&exportMode, "mode", "rows", "Export mode: rows|summary")
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "Output format: excel|csv (optional, inferred from output extension)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file path (default: SheetData_<from>_to_<to>.<ext>)")

	_ = exportCmd.MarkFlagRequired("from")
	_ = exportCmd.MarkFlagRequired("to")
}
