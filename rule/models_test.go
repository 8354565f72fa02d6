package rule_test

import (
	"testing"
	"time"

	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/rule"
	"github.com/xraph/cadence/types"
)

func date(s string) types.Date { return types.MustParseDate(s) }

func TestFrequencyNext(t *testing.T) {
	tests := []struct {
		name string
		freq rule.Frequency
		from string
		want string
	}{
		{"weekly", rule.FrequencyWeekly, "2024-01-01", "2024-01-08"},
		{"weekly across month", rule.FrequencyWeekly, "2024-01-29", "2024-02-05"},
		{"biweekly", rule.FrequencyBiweekly, "2024-01-01", "2024-01-15"},
		{"biweekly across year", rule.FrequencyBiweekly, "2023-12-25", "2024-01-08"},
		{"monthly", rule.FrequencyMonthly, "2024-06-15", "2024-07-15"},
		{"monthly jan 31 leap year", rule.FrequencyMonthly, "2024-01-31", "2024-02-29"},
		{"monthly jan 31 non-leap", rule.FrequencyMonthly, "2023-01-31", "2023-02-28"},
		{"monthly mar 31", rule.FrequencyMonthly, "2024-03-31", "2024-04-30"},
		{"monthly dec rollover", rule.FrequencyMonthly, "2024-12-10", "2025-01-10"},
		{"quarterly", rule.FrequencyQuarterly, "2024-01-15", "2024-04-15"},
		{"quarterly nov 30", rule.FrequencyQuarterly, "2023-11-30", "2024-02-29"},
		{"quarterly oct 31", rule.FrequencyQuarterly, "2023-10-31", "2024-01-31"},
		{"yearly", rule.FrequencyYearly, "2024-06-15", "2025-06-15"},
		{"yearly leap day", rule.FrequencyYearly, "2024-02-29", "2025-02-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.freq.Next(date(tt.from))
			if err != nil {
				t.Fatalf("Next(%s): %v", tt.from, err)
			}
			if got.String() != tt.want {
				t.Errorf("%s.Next(%s): got %s, want %s", tt.freq, tt.from, got, tt.want)
			}
			if !got.After(date(tt.from)) {
				t.Errorf("Next must move strictly forward: %s -> %s", tt.from, got)
			}
		})
	}
}

func TestFrequencyNextUnknown(t *testing.T) {
	_, err := rule.Frequency("daily").Next(date("2024-01-01"))
	if err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestParseFrequency(t *testing.T) {
	for _, f := range rule.Frequencies() {
		parsed, err := rule.ParseFrequency(string(f))
		if err != nil {
			t.Errorf("ParseFrequency(%q): %v", f, err)
		}
		if parsed != f {
			t.Errorf("ParseFrequency(%q): got %q", f, parsed)
		}
	}

	if _, err := rule.ParseFrequency("fortnightly"); err == nil {
		t.Error("expected error for unsupported frequency")
	}
}

func TestFrequencyDescription(t *testing.T) {
	tests := []struct {
		freq rule.Frequency
		want string
	}{
		{rule.FrequencyWeekly, "Every week"},
		{rule.FrequencyBiweekly, "Every 2 weeks"},
		{rule.FrequencyMonthly, "Every month"},
		{rule.FrequencyQuarterly, "Every 3 months"},
		{rule.FrequencyYearly, "Every year"},
	}

	for _, tt := range tests {
		if got := tt.freq.Description(); got != tt.want {
			t.Errorf("%s.Description(): got %q, want %q", tt.freq, got, tt.want)
		}
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		name  string
		start string
		freq  rule.Frequency
		n     int
		want  []string
	}{
		{
			"monthly includes start",
			"2024-01-31", rule.FrequencyMonthly, 4,
			[]string{"2024-01-31", "2024-02-29", "2024-03-31", "2024-04-30"},
		},
		{
			"weekly",
			"2024-01-01", rule.FrequencyWeekly, 3,
			[]string{"2024-01-01", "2024-01-08", "2024-01-15"},
		},
		{
			"yearly over leap day",
			"2024-02-29", rule.FrequencyYearly, 3,
			[]string{"2024-02-29", "2025-02-28", "2026-02-28"},
		},
		{"zero count", "2024-01-01", rule.FrequencyWeekly, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rule.Preview(date(tt.start), tt.freq, tt.n)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d dates, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].String() != tt.want[i] {
					t.Errorf("dates[%d]: got %s, want %s", i, got[i], tt.want[i])
				}
			}
		})
	}

	if _, err := rule.Preview(date("2024-01-01"), "daily", 3); err == nil {
		t.Error("expected error for unknown frequency")
	}
}

func TestRuleIsDue(t *testing.T) {
	asOf := date("2024-06-15")

	tests := []struct {
		name string
		r    rule.Rule
		want bool
	}{
		{"due today", rule.Rule{Active: true, NextDueDate: asOf}, true},
		{"overdue", rule.Rule{Active: true, NextDueDate: date("2024-06-01")}, true},
		{"future", rule.Rule{Active: true, NextDueDate: date("2024-06-16")}, false},
		{"paused", rule.Rule{Active: false, NextDueDate: asOf}, false},
		{"no due date", rule.Rule{Active: true}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.IsDue(asOf); got != tt.want {
				t.Errorf("IsDue: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleIsExpired(t *testing.T) {
	asOf := date("2024-06-15")

	tests := []struct {
		name string
		end  types.Date
		want bool
	}{
		{"no end date", types.Date{}, false},
		{"ends today", asOf, false},
		{"ended yesterday", date("2024-06-14"), true},
		{"ends tomorrow", date("2024-06-16"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rule.Rule{Active: true, EndDate: tt.end}
			if got := r.IsExpired(asOf); got != tt.want {
				t.Errorf("IsExpired: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuleAdvance(t *testing.T) {
	r := rule.Rule{
		Frequency:   rule.FrequencyMonthly,
		NextDueDate: date("2024-01-31"),
	}

	// Advance works from the stored due date, not from today.
	steps := []string{"2024-02-29", "2024-03-31", "2024-04-30"}
	for _, want := range steps {
		if err := r.Advance(); err != nil {
			t.Fatal(err)
		}
		if r.NextDueDate.String() != want {
			t.Fatalf("NextDueDate: got %s, want %s", r.NextDueDate, want)
		}
	}

	r.Frequency = "bogus"
	if err := r.Advance(); err == nil {
		t.Error("expected error advancing with unknown frequency")
	}
}

func TestRuleRecordGeneration(t *testing.T) {
	r := rule.Rule{}
	docA := id.NewDocumentID()
	docB := id.NewDocumentID()
	now := time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

	r.RecordGeneration(docA, now)
	r.RecordGeneration(docB, now.Add(time.Hour))

	if len(r.GeneratedDocumentIDs) != 2 {
		t.Fatalf("expected 2 recorded documents, got %d", len(r.GeneratedDocumentIDs))
	}
	if r.GeneratedDocumentIDs[0] != docA || r.GeneratedDocumentIDs[1] != docB {
		t.Error("generated document history must be append-only in order")
	}
	if r.LastGeneratedAt == nil || !r.LastGeneratedAt.Equal(now.Add(time.Hour)) {
		t.Errorf("LastGeneratedAt: got %v", r.LastGeneratedAt)
	}
}
