package rule

import (
	"fmt"
	"time"

	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

// Frequency is how often a recurring rule fires.
type Frequency string

const (
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Frequencies lists all supported frequencies in display order.
func Frequencies() []Frequency {
	return []Frequency{
		FrequencyWeekly,
		FrequencyBiweekly,
		FrequencyMonthly,
		FrequencyQuarterly,
		FrequencyYearly,
	}
}

// ParseFrequency validates and returns a Frequency from its string form.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("rule: unknown frequency %q", s)
	}
	return f, nil
}

// Valid reports whether f is one of the supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	default:
		return false
	}
}

// Next returns the occurrence after d. Week-based frequencies advance by a
// fixed day count; month-based frequencies advance by calendar months with
// the end-of-month clamp (Jan 31 + monthly = Feb 29 in a leap year, Feb 28
// otherwise). It never consults day-of-week or day-of-month hints.
func (f Frequency) Next(d types.Date) (types.Date, error) {
	switch f {
	case FrequencyWeekly:
		return d.AddDays(7), nil
	case FrequencyBiweekly:
		return d.AddDays(14), nil
	case FrequencyMonthly:
		return d.AddMonths(1), nil
	case FrequencyQuarterly:
		return d.AddMonths(3), nil
	case FrequencyYearly:
		return d.AddYears(1), nil
	default:
		return types.Date{}, fmt.Errorf("rule: unknown frequency %q", f)
	}
}

// Description returns the human-readable display string.
func (f Frequency) Description() string {
	switch f {
	case FrequencyWeekly:
		return "Every week"
	case FrequencyBiweekly:
		return "Every 2 weeks"
	case FrequencyMonthly:
		return "Every month"
	case FrequencyQuarterly:
		return "Every 3 months"
	case FrequencyYearly:
		return "Every year"
	default:
		return string(f)
	}
}

// Preview returns n consecutive occurrence dates starting at (and including)
// start.
func Preview(start types.Date, f Frequency, n int) ([]types.Date, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("rule: unknown frequency %q", f)
	}
	if n <= 0 {
		return nil, nil
	}

	dates := make([]types.Date, 0, n)
	d := start
	for i := 0; i < n; i++ {
		dates = append(dates, d)
		next, err := f.Next(d)
		if err != nil {
			return nil, err
		}
		d = next
	}
	return dates, nil
}

// Rule is a recurring schedule that generates a document from a template
// each time its next due date arrives.
//
// DayOfWeek and DayOfMonth are display hints carried from input; the date
// advance is driven entirely by Frequency and NextDueDate.
type Rule struct {
	types.Entity
	ID                   id.RuleID       `json:"id"`
	TemplateID           id.TemplateID   `json:"template_id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description,omitempty"`
	Frequency            Frequency       `json:"frequency"`
	DayOfWeek            int             `json:"day_of_week,omitempty"`
	DayOfMonth           int             `json:"day_of_month,omitempty"`
	StartDate            types.Date      `json:"start_date"`
	EndDate              types.Date      `json:"end_date,omitempty"`
	NextDueDate          types.Date      `json:"next_due_date"`
	AutoNumbering        bool            `json:"auto_numbering"`
	Active               bool            `json:"active"`
	LastGeneratedAt      *time.Time      `json:"last_generated_at,omitempty"`
	GeneratedDocumentIDs []id.DocumentID `json:"generated_document_ids,omitempty"`
}

// IsDue reports whether the rule should fire as of the given date. The due
// date itself counts as due.
func (r *Rule) IsDue(asOf types.Date) bool {
	return r.Active && !r.NextDueDate.IsZero() && !r.NextDueDate.After(asOf)
}

// IsExpired reports whether the rule's end date has passed. A rule with no
// end date never expires.
func (r *Rule) IsExpired(asOf types.Date) bool {
	return !r.EndDate.IsZero() && r.EndDate.Before(asOf)
}

// RecordGeneration appends a generated document to the rule's history and
// stamps the generation time.
func (r *Rule) RecordGeneration(docID id.DocumentID, at time.Time) {
	r.GeneratedDocumentIDs = append(r.GeneratedDocumentIDs, docID)
	t := at
	r.LastGeneratedAt = &t
	r.Touch()
}

// Advance moves NextDueDate one occurrence forward from its current value.
// It always advances from the stored due date, never from "today", so a rule
// processed late keeps its original cadence.
func (r *Rule) Advance() error {
	next, err := r.Frequency.Next(r.NextDueDate)
	if err != nil {
		return err
	}
	r.NextDueDate = next
	r.Touch()
	return nil
}

// Stats summarizes the rule collection for dashboards.
//
// GeneratedThisMonth is an approximation: it counts rules whose last
// generation falls in the current month, not documents. A rule that fired
// several times this month still counts once, and a document log scan would
// be needed for the exact figure.
type Stats struct {
	Total              int               `json:"total"`
	Active             int               `json:"active"`
	Paused             int               `json:"paused"`
	Due                int               `json:"due"`
	TotalGenerated     int               `json:"total_generated"`
	GeneratedThisMonth int               `json:"generated_this_month"`
	ByFrequency        map[Frequency]int `json:"by_frequency"`
	NextDue            types.Date        `json:"next_due,omitempty"`
}
