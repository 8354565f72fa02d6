package rule

import (
	"errors"
	"fmt"

	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

// CreateInput is the validated shape for creating a rule. Callers never hand
// the engine a raw Rule.
type CreateInput struct {
	TemplateID    id.TemplateID `json:"template_id"`
	Name          string        `json:"name"`
	Description   string        `json:"description,omitempty"`
	Frequency     Frequency     `json:"frequency"`
	DayOfWeek     int           `json:"day_of_week,omitempty"`
	DayOfMonth    int           `json:"day_of_month,omitempty"`
	StartDate     types.Date    `json:"start_date"`
	EndDate       types.Date    `json:"end_date,omitempty"`
	NextDueDate   types.Date    `json:"next_due_date,omitempty"` // defaults to StartDate
	AutoNumbering *bool         `json:"auto_numbering,omitempty"`
	Active        *bool         `json:"active,omitempty"` // defaults to true
}

// Validate checks the input against the rule schema.
func (in CreateInput) Validate() error {
	var errs []error

	if in.TemplateID.IsNil() {
		errs = append(errs, errors.New("template_id is required"))
	}
	if in.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if !in.Frequency.Valid() {
		errs = append(errs, fmt.Errorf("frequency %q is not one of %v", in.Frequency, Frequencies()))
	}
	if in.StartDate.IsZero() {
		errs = append(errs, errors.New("start_date is required"))
	}
	if !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate) {
		errs = append(errs, errors.New("end_date must not be before start_date"))
	}
	if !in.NextDueDate.IsZero() && in.NextDueDate.Before(in.StartDate) {
		errs = append(errs, errors.New("next_due_date must not be before start_date"))
	}
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		errs = append(errs, errors.New("day_of_week must be in 0..6"))
	}
	if in.DayOfMonth < 0 || in.DayOfMonth > 31 {
		errs = append(errs, errors.New("day_of_month must be in 0..31"))
	}

	return errors.Join(errs...)
}

// Rule materializes a new Rule from the input with a fresh ID and timestamps.
// Call Validate first.
func (in CreateInput) Rule() *Rule {
	next := in.NextDueDate
	if next.IsZero() {
		next = in.StartDate
	}

	autoNumbering := true
	if in.AutoNumbering != nil {
		autoNumbering = *in.AutoNumbering
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}

	return &Rule{
		Entity:        types.NewEntity(),
		ID:            id.NewRuleID(),
		TemplateID:    in.TemplateID,
		Name:          in.Name,
		Description:   in.Description,
		Frequency:     in.Frequency,
		DayOfWeek:     in.DayOfWeek,
		DayOfMonth:    in.DayOfMonth,
		StartDate:     in.StartDate,
		EndDate:       in.EndDate,
		NextDueDate:   next,
		AutoNumbering: autoNumbering,
		Active:        active,
	}
}

// UpdateInput is a partial update: nil fields are left unchanged. A non-nil
// zero EndDate clears the end date.
type UpdateInput struct {
	TemplateID    *id.TemplateID `json:"template_id,omitempty"`
	Name          *string        `json:"name,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Frequency     *Frequency     `json:"frequency,omitempty"`
	DayOfWeek     *int           `json:"day_of_week,omitempty"`
	DayOfMonth    *int           `json:"day_of_month,omitempty"`
	StartDate     *types.Date    `json:"start_date,omitempty"`
	EndDate       *types.Date    `json:"end_date,omitempty"`
	NextDueDate   *types.Date    `json:"next_due_date,omitempty"`
	AutoNumbering *bool          `json:"auto_numbering,omitempty"`
	Active        *bool          `json:"active,omitempty"`
}

// Validate checks the fields that are present.
func (in UpdateInput) Validate() error {
	var errs []error

	if in.TemplateID != nil && in.TemplateID.IsNil() {
		errs = append(errs, errors.New("template_id must not be empty"))
	}
	if in.Name != nil && *in.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if in.Frequency != nil && !in.Frequency.Valid() {
		errs = append(errs, fmt.Errorf("frequency %q is not one of %v", *in.Frequency, Frequencies()))
	}
	if in.StartDate != nil && in.StartDate.IsZero() {
		errs = append(errs, errors.New("start_date must not be empty"))
	}
	if in.DayOfWeek != nil && (*in.DayOfWeek < 0 || *in.DayOfWeek > 6) {
		errs = append(errs, errors.New("day_of_week must be in 0..6"))
	}
	if in.DayOfMonth != nil && (*in.DayOfMonth < 0 || *in.DayOfMonth > 31) {
		errs = append(errs, errors.New("day_of_month must be in 0..31"))
	}

	return errors.Join(errs...)
}

// Apply writes the present fields onto r and checks cross-field constraints
// against the resulting state. The update is staged on a copy so a rejected
// input leaves r untouched; callers may hand in a rule aliased by a store.
func (in UpdateInput) Apply(r *Rule) error {
	next := *r
	if in.TemplateID != nil {
		next.TemplateID = *in.TemplateID
	}
	if in.Name != nil {
		next.Name = *in.Name
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.Frequency != nil {
		next.Frequency = *in.Frequency
	}
	if in.DayOfWeek != nil {
		next.DayOfWeek = *in.DayOfWeek
	}
	if in.DayOfMonth != nil {
		next.DayOfMonth = *in.DayOfMonth
	}
	if in.StartDate != nil {
		next.StartDate = *in.StartDate
	}
	if in.EndDate != nil {
		next.EndDate = *in.EndDate
	}
	if in.NextDueDate != nil {
		next.NextDueDate = *in.NextDueDate
	}
	if in.AutoNumbering != nil {
		next.AutoNumbering = *in.AutoNumbering
	}
	if in.Active != nil {
		next.Active = *in.Active
	}

	if !next.EndDate.IsZero() && next.EndDate.Before(next.StartDate) {
		return errors.New("end_date must not be before start_date")
	}
	if next.NextDueDate.Before(next.StartDate) {
		return errors.New("next_due_date must not be before start_date")
	}

	next.Touch()
	*r = next
	return nil
}
