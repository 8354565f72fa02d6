// Package plugin provides an extensible plugin system for Cadence.
// Plugins can hook into various lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, engine interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Rule lifecycle hooks
// ──────────────────────────────────────────────────

// OnRuleCreated is called when a new recurring rule is created.
type OnRuleCreated interface {
	Plugin
	OnRuleCreated(ctx context.Context, rule interface{}) error
}

// OnRuleUpdated is called when a rule is updated.
type OnRuleUpdated interface {
	Plugin
	OnRuleUpdated(ctx context.Context, rule interface{}) error
}

// OnRuleDeleted is called when a rule is deleted.
type OnRuleDeleted interface {
	Plugin
	OnRuleDeleted(ctx context.Context, ruleID string) error
}

// OnRulePaused is called when a rule is paused.
type OnRulePaused interface {
	Plugin
	OnRulePaused(ctx context.Context, rule interface{}) error
}

// OnRuleResumed is called when a paused rule is reactivated.
type OnRuleResumed interface {
	Plugin
	OnRuleResumed(ctx context.Context, rule interface{}) error
}

// OnRuleExpired is called when a due rule is found past its end date and
// auto-paused.
type OnRuleExpired interface {
	Plugin
	OnRuleExpired(ctx context.Context, rule interface{}) error
}

// ──────────────────────────────────────────────────
// Generation hooks
// ──────────────────────────────────────────────────

// OnDocumentGenerated is called when a rule generates a document.
type OnDocumentGenerated interface {
	Plugin
	OnDocumentGenerated(ctx context.Context, doc interface{}) error
}

// OnGenerationFailed is called when generating from a rule fails.
type OnGenerationFailed interface {
	Plugin
	OnGenerationFailed(ctx context.Context, ruleID string, reason string) error
}

// OnBatchCompleted is called when a due-rule processing batch finishes.
type OnBatchCompleted interface {
	Plugin
	OnBatchCompleted(ctx context.Context, batch interface{}) error
}

// OnCatchUpCompleted is called when a catch-up run over a single rule
// finishes.
type OnCatchUpCompleted interface {
	Plugin
	OnCatchUpCompleted(ctx context.Context, ruleID string, generated int) error
}

// OnTemplateUsed is called after a template's usage counter is bumped.
type OnTemplateUsed interface {
	Plugin
	OnTemplateUsed(ctx context.Context, templateID string, usedAt time.Time) error
}

// ──────────────────────────────────────────────────
// Document formatters
// ──────────────────────────────────────────────────

// DocumentFormatter renders generated documents for export.
type DocumentFormatter interface {
	Plugin
	Format() string                                                   // "pdf", "html", "csv", etc.
	Render(ctx context.Context, doc interface{}, w interface{}) error // w is io.Writer
}

// ──────────────────────────────────────────────────
// Number formatters
// ──────────────────────────────────────────────────

// NumberFormatter provides custom document number formatting on top of the
// profile's counters.
type NumberFormatter interface {
	Plugin
	FormatNumber(docType string, prefix string, seq int64) string
}

// ──────────────────────────────────────────────────
// Tax calculators
// ──────────────────────────────────────────────────

// TaxCalculator calculates tax for generated documents.
type TaxCalculator interface {
	Plugin
	CalculateTax(ctx context.Context, subtotal interface{}, taxRateBps int64) (interface{}, error) // Returns Money
}
