package output

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"servicedesk/filter"
	"servicedesk/internal/timeutil"
	"servicedesk/servicerequest"
	"servicedesk/sheet"
)

// EffortSummary aggregates requests handled by one technician on one day.
type EffortSummary struct {
	Date          string
	Technician    string
	RequestCount  int
	EffortHours   float64
	UnknownEffort int
}

var summaryHeaders = []string{"Date", "Technician Name", "Requests", "EffortHours", "UnknownEffort"}

type summaryKey struct {
	date       string
	technician string
}

// BuildEffortSummaries groups matches by created date and technician and sums
// the effort column. Effort cells that are empty or the N/A sentinel are
// counted separately instead of being treated as zero.
func BuildEffortSummaries(header []string, matches []filter.Match) []EffortSummary {
	if len(matches) == 0 {
		return []EffortSummary{}
	}

	table := sheet.Table{Header: header}
	techCol := table.Column(servicerequest.HeaderTechnician)
	effortCol := table.Column(servicerequest.HeaderEffortTime)

	byKey := make(map[summaryKey]*EffortSummary)
	minutesByKey := make(map[summaryKey]int)
	for _, match := range matches {
		technician, _ := sheet.Cell(match.Row, techCol)
		key := summaryKey{
			date:       timeutil.FormatISODate(match.Date),
			technician: strings.TrimSpace(technician),
		}
		summary, ok := byKey[key]
		if !ok {
			summary = &EffortSummary{Date: key.date, Technician: key.technician}
			byKey[key] = summary
		}
		summary.RequestCount++

		effort, _ := sheet.Cell(match.Row, effortCol)
		minutes, err := parseEffortMinutes(effort)
		if err != nil {
			summary.UnknownEffort++
			continue
		}
		minutesByKey[key] += minutes
	}

	keys := make([]summaryKey, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].date != keys[j].date {
			return keys[i].date < keys[j].date
		}
		return keys[i].technician < keys[j].technician
	})

	out := make([]EffortSummary, 0, len(keys))
	for _, key := range keys {
		summary := byKey[key]
		summary.EffortHours = roundHours(float64(minutesByKey[key]) / 60.0)
		out = append(out, *summary)
	}
	return out
}

// SummaryTable renders summaries in the row layout shared by all writers.
func SummaryTable(summaries []EffortSummary) sheet.Table {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, []string{
			summary.Date,
			summary.Technician,
			strconv.Itoa(summary.RequestCount),
			fmt.Sprintf("%.2f", summary.EffortHours),
			strconv.Itoa(summary.UnknownEffort),
		})
	}
	return sheet.Table{Header: append([]string(nil), summaryHeaders...), Rows: rows}
}

func parseEffortMinutes(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" || timeutil.IsEffortNA(value) {
		return 0, fmt.Errorf("no effort recorded")
	}
	hours, minutes, found := strings.Cut(value, ":")
	if !found {
		return 0, fmt.Errorf("parse effort %q: expected HH:MM", value)
	}
	h, err := strconv.Atoi(hours)
	if err != nil || h < 0 {
		return 0, fmt.Errorf("parse effort hours %q", value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse effort minutes %q", value)
	}
	return h*60 + m, nil
}

func roundHours(value float64) float64 {
	return math.Round(value*100) / 100
}
