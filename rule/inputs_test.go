package rule_test

import (
	"testing"

	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/rule"
	"github.com/xraph/cadence/types"
)

func validCreateInput() rule.CreateInput {
	return rule.CreateInput{
		TemplateID: id.NewTemplateID(),
		Name:       "Monthly retainer",
		Frequency:  rule.FrequencyMonthly,
		StartDate:  date("2024-01-31"),
	}
}

func TestCreateInputValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*rule.CreateInput)
		wantErr bool
	}{
		{"valid", func(in *rule.CreateInput) {}, false},
		{"missing template", func(in *rule.CreateInput) { in.TemplateID = id.Nil }, true},
		{"missing name", func(in *rule.CreateInput) { in.Name = "" }, true},
		{"bad frequency", func(in *rule.CreateInput) { in.Frequency = "daily" }, true},
		{"missing start date", func(in *rule.CreateInput) { in.StartDate = types.Date{} }, true},
		{"end before start", func(in *rule.CreateInput) { in.EndDate = date("2023-12-31") }, true},
		{"end equals start", func(in *rule.CreateInput) { in.EndDate = date("2024-01-31") }, false},
		{"next due before start", func(in *rule.CreateInput) { in.NextDueDate = date("2024-01-01") }, true},
		{"day of week out of range", func(in *rule.CreateInput) { in.DayOfWeek = 7 }, true},
		{"day of month out of range", func(in *rule.CreateInput) { in.DayOfMonth = 32 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput()
			tt.mutate(&in)
			err := in.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateInputRuleDefaults(t *testing.T) {
	in := validCreateInput()
	r := in.Rule()

	if r.ID.IsNil() || r.ID.Prefix() != id.PrefixRule {
		t.Errorf("expected fresh rule ID, got %q", r.ID)
	}
	if !r.NextDueDate.Equal(in.StartDate) {
		t.Errorf("NextDueDate should default to StartDate, got %s", r.NextDueDate)
	}
	if !r.Active {
		t.Error("rules should default to active")
	}
	if !r.AutoNumbering {
		t.Error("auto numbering should default to on")
	}
	if r.CreatedAt.IsZero() || r.UpdatedAt.IsZero() {
		t.Error("timestamps should be set")
	}

	off := false
	in.Active = &off
	in.AutoNumbering = &off
	in.NextDueDate = date("2024-03-15")
	r = in.Rule()
	if r.Active || r.AutoNumbering {
		t.Error("explicit false flags should be honored")
	}
	if r.NextDueDate.String() != "2024-03-15" {
		t.Errorf("explicit NextDueDate should be honored, got %s", r.NextDueDate)
	}
}

func TestUpdateInputValidate(t *testing.T) {
	emptyName := ""
	badFreq := rule.Frequency("daily")
	goodFreq := rule.FrequencyWeekly
	nilID := id.Nil
	badDay := 9

	tests := []struct {
		name    string
		in      rule.UpdateInput
		wantErr bool
	}{
		{"empty patch", rule.UpdateInput{}, false},
		{"valid frequency", rule.UpdateInput{Frequency: &goodFreq}, false},
		{"empty name", rule.UpdateInput{Name: &emptyName}, true},
		{"bad frequency", rule.UpdateInput{Frequency: &badFreq}, true},
		{"nil template", rule.UpdateInput{TemplateID: &nilID}, true},
		{"bad day of week", rule.UpdateInput{DayOfWeek: &badDay}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateInputApply(t *testing.T) {
	r := validCreateInput().Rule()

	name := "Quarterly retainer"
	freq := rule.FrequencyQuarterly
	active := false
	if err := (rule.UpdateInput{Name: &name, Frequency: &freq, Active: &active}).Apply(r); err != nil {
		t.Fatal(err)
	}
	if r.Name != name || r.Frequency != freq || r.Active {
		t.Errorf("patch not applied: %+v", r)
	}
	if r.Description != "" {
		t.Error("untouched fields must be preserved")
	}

	// Cross-field constraint checked against the resulting state. A rejected
	// patch must leave the rule exactly as it was, even the fields it set.
	badEnd := date("2023-06-01")
	newName := "Should not stick"
	before := *r
	if err := (rule.UpdateInput{EndDate: &badEnd, Name: &newName}).Apply(r); err == nil {
		t.Error("expected error for end_date before start_date")
	}
	if r.Name != before.Name || !r.EndDate.Equal(before.EndDate) || !r.UpdatedAt.Equal(before.UpdatedAt) {
		t.Errorf("rejected patch must not modify the rule: got %+v", r)
	}
	badNext := date("2023-01-01")
	if err := (rule.UpdateInput{NextDueDate: &badNext}).Apply(r); err == nil {
		t.Error("expected error for next_due_date before start_date")
	}
	if !r.NextDueDate.Equal(before.NextDueDate) {
		t.Errorf("rejected patch must not move NextDueDate: got %s", r.NextDueDate)
	}

	// Clearing the end date with a zero value.
	goodEnd := date("2025-01-31")
	if err := (rule.UpdateInput{EndDate: &goodEnd}).Apply(r); err != nil {
		t.Fatal(err)
	}
	var clear types.Date
	if err := (rule.UpdateInput{EndDate: &clear}).Apply(r); err != nil {
		t.Fatal(err)
	}
	if !r.EndDate.IsZero() {
		t.Error("zero EndDate should clear the end date")
	}
}
