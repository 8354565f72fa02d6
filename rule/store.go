package rule

import (
	"context"

	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

type Store interface {
	Create(ctx context.Context, r *Rule) error
	Get(ctx context.Context, ruleID id.RuleID) (*Rule, error)
	List(ctx context.Context, opts ListOpts) ([]*Rule, error)
	Update(ctx context.Context, r *Rule) error
	Delete(ctx context.Context, ruleID id.RuleID) error

	// Due returns active rules with next_due_date <= asOf, ordered by
	// next_due_date ascending then id ascending.
	Due(ctx context.Context, asOf types.Date) ([]*Rule, error)
}

// SortKey selects the rule list ordering.
type SortKey string

const (
	SortByName            SortKey = "name"
	SortByNextDueDate     SortKey = "next_due_date"
	SortByLastGeneratedAt SortKey = "last_generated_at"
	SortByCreatedAt       SortKey = "created_at"
)

// ListOpts filters and orders rule listings. Zero values mean "no filter".
// Sort defaults to next_due_date; Ascending defaults to false (newest or
// soonest last is the caller's choice via the flag).
type ListOpts struct {
	TemplateID id.TemplateID
	Frequency  Frequency
	Active     *bool
	DueBefore  types.Date // inclusive
	DueAfter   types.Date // inclusive
	Search     string     // case-insensitive substring over name and description
	SortBy     SortKey
	Ascending  bool
	Limit      int
	Offset     int
}
