package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"servicedesk/config"
	"servicedesk/intake"
	"servicedesk/servicerequest"
	"servicedesk/sheet"
)

var (
	submitForm       intake.Form
	submitTechnician string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Log one service request from the command line",
	Long: `Append one service request to the sheet, the same way the web form does.

Sequence number, request ID, priority, status and effort time are derived
automatically. The technician defaults to defaults.technician.`,
	Example: `
  # Log a request for today
  servicedesk submit --start 09:10 --end 09:42 --user "ravi kumar" --category hardware

  # Log a past request for another technician
  servicedesk submit --date 05/03/2024 --start 23:30 --end 00:15 --user ravi --category network --technician Alice
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		gateway, err := sheet.NewGoogleSheet(cmd.Context(), googleConfig(*cfg))
		if err != nil {
			return err
		}

		record, err := runSubmit(cmd.Context(), intake.NewService(gateway, cfg.Defaults), submitForm, submitTechnician)
		if err != nil {
			return err
		}

		fmt.Printf("Request logged. ID: %s, Sl No: %d, Effort: %s\n", record.RequestID, record.SlNo, record.EffortTime)
		return nil
	},
}

func runSubmit(ctx context.Context, service *intake.Service, form intake.Form, technician string) (servicerequest.Record, error) {
	if strings.TrimSpace(form.CreatedDate) == "" {
		form.CreatedDate = time.Now().Format("2006-01-02")
	}
	return service.Submit(ctx, form, technician)
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitForm.CreatedDate, "date", "", "Created date, YYYY-MM-DD or DD/MM/YYYY (default: today)")
	submitCmd.Flags().StringVar(&submitForm.StartTime, "start", "", "Start time HH:MM")
	submitCmd.Flags().StringVar(&submitForm.EndTime, "end", "", "End time HH:MM")
	submitCmd.Flags().StringVar(&submitForm.UserName, "user", "", "Name of the user who raised the request")
	submitCmd.Flags().StringVar(&submitForm.Process, "process", "", "Process or department")
	submitCmd.Flags().StringVar(&submitForm.ReportedBy, "reported-by", "", "Who reported the request")
	submitCmd.Flags().StringVar(&submitForm.IssueCategory, "category", "", "Issue category")
	submitCmd.Flags().StringVar(&submitForm.SubCategory, "sub-category", "", "Issue sub category")
	submitCmd.Flags().StringVar(&submitForm.Remarks, "remarks", "", "Free-text remarks")
	submitCmd.Flags().StringVar(&submitTechnician, "technician", "", "Technician name (default: defaults.technician)")

	_ = submitCmd.MarkFlagRequired("start")
	_ = submitCmd.MarkFlagRequired("end")
	_ = submitCmd.MarkFlagRequired("user")
	_ = submitCmd.MarkFlagRequired("category")
}
