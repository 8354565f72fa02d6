package types

import (
	"testing"
	"time"
)

func TestDateParseAndString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Date
		wantErr bool
	}{
		{"valid", "2024-01-31", Date{2024, time.January, 31}, false},
		{"leap day", "2024-02-29", Date{2024, time.February, 29}, false},
		{"invalid leap day", "2023-02-29", Date{}, true},
		{"garbage", "not-a-date", Date{}, true},
		{"wrong format", "31/01/2024", Date{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q): expected error, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q): %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q): got %v, want %v", tt.input, got, tt.want)
			}
			if got.String() != tt.input {
				t.Errorf("String: got %q, want %q", got.String(), tt.input)
			}
		})
	}
}

func TestDateZeroValue(t *testing.T) {
	var d Date
	if !d.IsZero() {
		t.Error("zero Date should report IsZero")
	}
	if d.String() != "" {
		t.Errorf("zero Date String: got %q, want empty", d.String())
	}
	if MustParseDate("2024-06-15").IsZero() {
		t.Error("non-zero Date should not report IsZero")
	}
}

func TestDateAddMonthsClampsToMonthEnd(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		months int
		want   string
	}{
		{"jan 31 to leap feb", "2024-01-31", 1, "2024-02-29"},
		{"jan 31 to non-leap feb", "2023-01-31", 1, "2023-02-28"},
		{"jan 31 plus two months", "2024-01-31", 2, "2024-03-31"},
		{"mar 31 to apr 30", "2024-03-31", 1, "2024-04-30"},
		{"oct 31 quarterly to jan 31", "2023-10-31", 3, "2024-01-31"},
		{"nov 30 quarterly to feb 29", "2023-11-30", 3, "2024-02-29"},
		{"leap feb 29 yearly", "2024-02-29", 12, "2025-02-28"},
		{"mid-month unaffected", "2024-06-15", 1, "2024-07-15"},
		{"year rollover", "2024-12-15", 1, "2025-01-15"},
		{"backwards one month", "2024-03-31", -1, "2024-02-29"},
		{"backwards across year", "2024-01-15", -2, "2023-11-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustParseDate(tt.start).AddMonths(tt.months)
			if got.String() != tt.want {
				t.Errorf("%s + %dm: got %s, want %s", tt.start, tt.months, got, tt.want)
			}
		})
	}
}

func TestDateAddDays(t *testing.T) {
	tests := []struct {
		name  string
		start string
		days  int
		want  string
	}{
		{"weekly", "2024-01-01", 7, "2024-01-08"},
		{"biweekly across month", "2024-01-25", 14, "2024-02-08"},
		{"across leap day", "2024-02-28", 1, "2024-02-29"},
		{"across year end", "2023-12-30", 7, "2024-01-06"},
		{"negative", "2024-03-01", -1, "2024-02-29"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MustParseDate(tt.start).AddDays(tt.days)
			if got.String() != tt.want {
				t.Errorf("%s + %dd: got %s, want %s", tt.start, tt.days, got, tt.want)
			}
		})
	}
}

func TestDateComparison(t *testing.T) {
	a := MustParseDate("2024-01-15")
	b := MustParseDate("2024-02-01")

	if !a.Before(b) {
		t.Error("Before: 2024-01-15 should be before 2024-02-01")
	}
	if !b.After(a) {
		t.Error("After: 2024-02-01 should be after 2024-01-15")
	}
	if a.Compare(a) != 0 {
		t.Error("Compare: date should equal itself")
	}
	if a.After(b) || b.Before(a) {
		t.Error("comparison is not antisymmetric")
	}
}

func TestDateTextRoundTrip(t *testing.T) {
	orig := MustParseDate("2024-02-29")
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatal(err)
	}

	var parsed Date
	if err := parsed.UnmarshalText(data); err != nil {
		t.Fatal(err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("round trip: got %v, want %v", parsed, orig)
	}

	var zero Date
	if err := zero.UnmarshalText(nil); err != nil {
		t.Fatal(err)
	}
	if !zero.IsZero() {
		t.Error("empty text should unmarshal to zero Date")
	}
}

func TestDateScan(t *testing.T) {
	tests := []struct {
		name string
		src  any
		want Date
	}{
		{"string", "2024-05-01", MustParseDate("2024-05-01")},
		{"bytes", []byte("2024-05-01"), MustParseDate("2024-05-01")},
		{"time", time.Date(2024, time.May, 1, 13, 45, 0, 0, time.UTC), MustParseDate("2024-05-01")},
		{"nil", nil, Date{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			if err := d.Scan(tt.src); err != nil {
				t.Fatal(err)
			}
			if !d.Equal(tt.want) {
				t.Errorf("Scan(%v): got %v, want %v", tt.src, d, tt.want)
			}
		})
	}

	var d Date
	if err := d.Scan(42); err == nil {
		t.Error("Scan(int) should fail")
	}
}
