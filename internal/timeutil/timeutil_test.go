package timeutil

import (
	"errors"
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 14, 37, 9, 123, time.Local)
	got := StartOfDay(input)

	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 1 {
		t.Fatalf("unexpected date: %v", got)
	}
	if got.Hour() != 0 || got.Minute() != 0 || got.Second() != 0 || got.Nanosecond() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestNormalizeDate_AcceptsAllFormatsForSameDay(t *testing.T) {
	t.Parallel()

	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)
	inputs := []string{
		"2024-03-05",
		"05/03/2024",
		"05-03-2024",
		"5/3/2024",
		" 2024-3-5 ",
		"05/03/2024 14:22:10",
		"2024-03-05 08:00",
	}

	for _, input := range inputs {
		input := input
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizeDate(input)
			if err != nil {
				t.Fatalf("unexpected error for %q: %v", input, err)
			}
			if !got.Equal(want) {
				t.Fatalf("unexpected date for %q: want %v, got %v", input, want, got)
			}
		})
	}
}

func TestNormalizeDate_FallsBackToMonthFirst(t *testing.T) {
	t.Parallel()

	got, err := NormalizeDate("03/25/2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Month() != time.March || got.Day() != 25 {
		t.Fatalf("expected 25 March, got %v", got)
	}
}

func TestNormalizeDate_IsIdempotentOnCanonicalOutput(t *testing.T) {
	t.Parallel()

	first, err := NormalizeDate("15/11/2025")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, canonical := range []string{FormatSheetDate(first), FormatISODate(first)} {
		again, err := NormalizeDate(canonical)
		if err != nil {
			t.Fatalf("re-normalize %q: %v", canonical, err)
		}
		if !again.Equal(first) {
			t.Fatalf("expected %v after re-normalizing %q, got %v", first, canonical, again)
		}
	}
}

func TestNormalizeDate_RejectsUnknownFormats(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "yesterday", "2024/13/45", "32-01-2024"} {
		_, err := NormalizeDate(input)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		var formatErr *DateFormatError
		if !errors.As(err, &formatErr) {
			t.Fatalf("expected DateFormatError for %q, got %T", input, err)
		}
		if formatErr.Input != input {
			t.Fatalf("expected error input %q, got %q", input, formatErr.Input)
		}
	}
}

func TestComputeEffort(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		start string
		end   string
		want  string
	}{
		{name: "same hour", start: "09:10", end: "09:42", want: "00:32"},
		{name: "multi hour", start: "08:00", end: "17:45", want: "09:45"},
		{name: "zero", start: "12:00", end: "12:00", want: "00:00"},
		{name: "crosses midnight", start: "23:00", end: "01:00", want: "02:00"},
		{name: "sheet clock format", start: "10:00:00", end: "11:30:00", want: "01:30"},
		{name: "bad start", start: "x", end: "10:00", want: EffortNA},
		{name: "bad end", start: "10:00", end: "25:99", want: EffortNA},
		{name: "empty", start: "", end: "", want: EffortNA},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeEffort(tc.start, tc.end)
			if got != tc.want {
				t.Fatalf("unexpected effort for %s-%s: want %q, got %q", tc.start, tc.end, tc.want, got)
			}
		})
	}
}

func TestComputeEffort_MatchesElapsedMinutesForAllPairs(t *testing.T) {
	t.Parallel()

	for start := 0; start < 24*60; start += 37 {
		for end := 0; end < 24*60; end += 41 {
			got := ComputeEffort(FormatSheetClock(start)[:5], FormatSheetClock(end)[:5])
			elapsed := end - start
			if elapsed < 0 {
				elapsed += 24 * 60
			}
			if got != FormatSheetClock(elapsed)[:5] {
				t.Fatalf("start=%d end=%d: expected %s, got %s", start, end, FormatSheetClock(elapsed)[:5], got)
			}
		}
	}
}

func TestMinutesFromMidnight(t *testing.T) {
	t.Parallel()

	input := time.Date(2026, 3, 1, 13, 25, 0, 0, time.Local)
	if got := MinutesFromMidnight(input); got != 805 {
		t.Fatalf("expected 805, got %d", got)
	}
}

func TestFormatSheetClock(t *testing.T) {
	t.Parallel()

	if got := FormatSheetClock(9*60 + 5); got != "09:05:00" {
		t.Fatalf("expected 09:05:00, got %s", got)
	}
	if !IsEffortNA(ComputeEffort("nope", "10:00")) {
		t.Fatalf("expected N/A sentinel")
	}
}

func TestParseFormClock(t *testing.T) {
	t.Parallel()

	got, err := ParseFormClock(" 09:42 ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 9*60+42 {
		t.Fatalf("expected 582 minutes, got %d", got)
	}

	for _, input := range []string{"09:42:30", "", "9am", "24:00"} {
		if _, err := ParseFormClock(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
	if _, err := ParseClock("09:42:30"); err != nil {
		t.Fatalf("sheet clock values must still parse: %v", err)
	}
}
