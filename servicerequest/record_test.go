package servicerequest

import (
	"testing"
	"time"
)

func TestGenerateRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		position int
		date     time.Time
		want     string
	}{
		{name: "march", position: 7, date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.Local), want: `SR\Mar\007`},
		{name: "first", position: 1, date: time.Date(2025, 10, 1, 0, 0, 0, 0, time.Local), want: `SR\Oct\001`},
		{name: "wide position", position: 1234, date: time.Date(2025, 12, 31, 0, 0, 0, 0, time.Local), want: `SR\Dec\1234`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := GenerateRequestID(tc.position, tc.date); got != tc.want {
				t.Fatalf("want %s, got %s", tc.want, got)
			}
		})
	}
}

func TestCapitalizeFirst(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":                "",
		"   ":             "",
		"printer jam":     "Printer jam",
		"  vPN down  ":    "VPN down",
		"émile":           "Émile",
		"Already Capital": "Already Capital",
	}
	for input, want := range tests {
		if got := CapitalizeFirst(input); got != want {
			t.Fatalf("CapitalizeFirst(%q): want %q, got %q", input, want, got)
		}
	}
}

func TestRecordRowAlignsWithHeaders(t *testing.T) {
	t.Parallel()

	record := Record{
		SlNo:          3,
		RequestID:     `SR\Mar\003`,
		CreatedDate:   "05/03/2024",
		Technician:    "Alice",
		EffortTime:    "00:30",
		Remarks:       "Done",
		IssueCategory: "Hardware",
	}
	row := record.Row()
	if len(row) != len(Headers) {
		t.Fatalf("expected %d cells, got %d", len(Headers), len(row))
	}

	byHeader := make(map[string]string, len(row))
	for i, header := range Headers {
		byHeader[header] = row[i]
	}
	if byHeader[HeaderSlNo] != "3" || byHeader[HeaderTechnician] != "Alice" || byHeader[HeaderRemarks] != "Done" {
		t.Fatalf("unexpected row alignment: %v", byHeader)
	}
	if byHeader[HeaderIssueCategory] != "Hardware" || byHeader[HeaderEffortTime] != "00:30" {
		t.Fatalf("unexpected row alignment: %v", byHeader)
	}
}
