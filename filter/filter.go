// Package filter selects request rows by created date and technician.
package filter

import (
	"fmt"
	"strings"
	"time"

	"servicedesk/internal/timeutil"
	"servicedesk/servicerequest"
	"servicedesk/sheet"
)

// Match is a selected row together with its parsed created date.
type Match struct {
	Row  []string
	Date time.Time
}

// Records returns the rows whose created date lies in [from, to] (by calendar
// day). A non-empty technician additionally requires an exact match on the
// technician column. Missing columns yield no matches; rows too short for a
// required column or with unparseable dates are skipped. Input order is kept.
func Records(table sheet.Table, from, to time.Time, technician string) []Match {
	dateCol := table.Column(servicerequest.HeaderCreatedDate)
	if dateCol < 0 {
		return nil
	}
	techCol := -1
	if technician != "" {
		techCol = table.Column(servicerequest.HeaderTechnician)
		if techCol < 0 {
			return nil
		}
	}

	from = timeutil.StartOfDay(from)
	to = timeutil.StartOfDay(to)

	out := make([]Match, 0)
	for _, row := range table.Rows {
		dateCell, ok := sheet.Cell(row, dateCol)
		if !ok {
			continue
		}
		if techCol >= 0 {
			techCell, ok := sheet.Cell(row, techCol)
			if !ok || techCell != technician {
				continue
			}
		}

		day, err := timeutil.NormalizeDate(dateCell)
		if err != nil {
			continue
		}
		if day.Before(from) || day.After(to) {
			continue
		}
		out = append(out, Match{Row: row, Date: day})
	}
	return out
}

// Rows strips the parsed dates from matches.
func Rows(matches []Match) [][]string {
	out := make([][]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.Row)
	}
	return out
}

// ParseRange parses ISO start/end dates as submitted by the filter form.
func ParseRange(start, end string) (time.Time, time.Time, error) {
	from, err := parseISODate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start date (expected YYYY-MM-DD)")
	}
	to, err := parseISODate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end date (expected YYYY-MM-DD)")
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, fmt.Errorf("start date must be on or before end date")
	}
	return from, to, nil
}

func parseISODate(value string) (time.Time, error) {
	parsed, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(value), time.Local)
	if err != nil {
		return time.Time{}, err
	}
	return timeutil.StartOfDay(parsed), nil
}
