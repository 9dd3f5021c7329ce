package servicerequest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Sheet column headers, in the order rows are appended.
const (
	HeaderSlNo          = "Sl No"
	HeaderRequestID     = "Request/Complaint ID"
	HeaderCreatedDate   = "Created Date"
	HeaderStartTime     = "Start Time"
	HeaderEndTime       = "End Time"
	HeaderUserName      = "User Name"
	HeaderProcess       = "Process"
	HeaderReportedBy    = "Reported By"
	HeaderPriority      = "Priority"
	HeaderTechnician    = "Technician Name"
	HeaderIssueCategory = "Issue Category"
	HeaderSubCategory   = "Sub Category"
	HeaderEffortTime    = "Effort Time"
	HeaderStatus        = "Status"
	HeaderRemarks       = "Remarks"
)

// Headers is the canonical header row of the request sheet.
var Headers = []string{
	HeaderSlNo,
	HeaderRequestID,
	HeaderCreatedDate,
	HeaderStartTime,
	HeaderEndTime,
	HeaderUserName,
	HeaderProcess,
	HeaderReportedBy,
	HeaderPriority,
	HeaderTechnician,
	HeaderIssueCategory,
	HeaderSubCategory,
	HeaderEffortTime,
	HeaderStatus,
	HeaderRemarks,
}

// Record is one logged service request as stored in the sheet.
type Record struct {
	SlNo          int
	RequestID     string
	CreatedDate   string
	StartTime     string
	EndTime       string
	UserName      string
	Process       string
	ReportedBy    string
	Priority      string
	Technician    string
	IssueCategory string
	SubCategory   string
	EffortTime    string
	Status        string
	Remarks       string
}

// Row returns the record cells aligned with Headers.
func (r Record) Row() []string {
	return []string{
		strconv.Itoa(r.SlNo),
		r.RequestID,
		r.CreatedDate,
		r.StartTime,
		r.EndTime,
		r.UserName,
		r.Process,
		r.ReportedBy,
		r.Priority,
		r.Technician,
		r.IssueCategory,
		r.SubCategory,
		r.EffortTime,
		r.Status,
		r.Remarks,
	}
}

// GenerateRequestID formats SR\<Mon>\<NNN> from a 1-based position and the
// month of referenceDate. The value is positional, not a durable key.
func GenerateRequestID(position int, referenceDate time.Time) string {
	return fmt.Sprintf(`SR\%s\%03d`, referenceDate.Format("Jan"), position)
}

// CapitalizeFirst trims text and uppercases its first character only.
func CapitalizeFirst(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(text)
	return string(unicode.ToUpper(first)) + text[size:]
}
