package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// EffortNA is returned by ComputeEffort when either clock value cannot be parsed.
const EffortNA = "N/A"

const (
	sheetDateLayout  = "02/01/2006"
	isoDateLayout    = "2006-01-02"
	sheetClockLayout = "15:04:05"
)

// dateLayouts are tried in order; day-first wins over month-first for ambiguous input.
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"2-1-2006",
	"1/2/2006",
}

const formClockLayout = "15:04"

var clockLayouts = []string{
	formClockLayout,
	"15:04:05",
}

// DateFormatError reports a date string that matched none of the supported layouts.
type DateFormatError struct {
	Input string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("unsupported date format: %q", e.Input)
}

func StartOfDay(value time.Time) time.Time {
	return time.Date(value.Year(), value.Month(), value.Day(), 0, 0, 0, 0, value.Location())
}

func MinutesFromMidnight(value time.Time) int {
	return value.Hour()*60 + value.Minute()
}

// NormalizeDate parses a loosely formatted date (ISO, DD/MM/YYYY, DD-MM-YYYY or
// MM/DD/YYYY) into local midnight. Combined "date time" values are retried with
// the part before the first space.
func NormalizeDate(input string) (time.Time, error) {
	value := strings.TrimSpace(input)
	if parsed, ok := parseDateLayouts(value); ok {
		return parsed, nil
	}
	if head, _, found := strings.Cut(value, " "); found {
		if parsed, ok := parseDateLayouts(head); ok {
			return parsed, nil
		}
	}
	return time.Time{}, &DateFormatError{Input: input}
}

func parseDateLayouts(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return StartOfDay(parsed), true
		}
	}
	return time.Time{}, false
}

// FormatSheetDate renders the DD/MM/YYYY form stored in the sheet.
func FormatSheetDate(value time.Time) string {
	return value.Format(sheetDateLayout)
}

func FormatISODate(value time.Time) string {
	return value.Format(isoDateLayout)
}

// ParseClock accepts HH:MM or HH:MM:SS and returns minutes from midnight.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	for _, layout := range clockLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return MinutesFromMidnight(parsed), nil
		}
	}
	return 0, fmt.Errorf("unsupported clock format: %q", value)
}

// ParseFormClock accepts HH:MM only, the resolution requests are logged at.
func ParseFormClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse(formClockLayout, value)
	if err != nil {
		return 0, fmt.Errorf("unsupported clock format: %q (expected HH:MM)", value)
	}
	return MinutesFromMidnight(parsed), nil
}

// FormatSheetClock renders minutes from midnight as HH:MM:SS.
func FormatSheetClock(minutes int) string {
	return time.Date(0, 1, 1, 0, minutes, 0, 0, time.UTC).Format(sheetClockLayout)
}

// ComputeEffort returns the elapsed time between two clock values as HH:MM.
// An end before start is treated as crossing midnight. Unparseable input
// yields EffortNA.
func ComputeEffort(start, end string) string {
	startMinutes, err := ParseClock(start)
	if err != nil {
		return EffortNA
	}
	endMinutes, err := ParseClock(end)
	if err != nil {
		return EffortNA
	}

	elapsed := endMinutes - startMinutes
	if elapsed < 0 {
		elapsed += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", elapsed/60, elapsed%60)
}

func IsEffortNA(value string) bool {
	return value == EffortNA
}
