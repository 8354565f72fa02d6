// Package observability provides a metrics extension for Cadence that records
// lifecycle event counts via go-utils MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/cadence/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnRuleCreated       = (*MetricsExtension)(nil)
	_ plugin.OnRuleUpdated       = (*MetricsExtension)(nil)
	_ plugin.OnRuleDeleted       = (*MetricsExtension)(nil)
	_ plugin.OnRulePaused        = (*MetricsExtension)(nil)
	_ plugin.OnRuleResumed       = (*MetricsExtension)(nil)
	_ plugin.OnRuleExpired       = (*MetricsExtension)(nil)
	_ plugin.OnDocumentGenerated = (*MetricsExtension)(nil)
	_ plugin.OnGenerationFailed  = (*MetricsExtension)(nil)
	_ plugin.OnBatchCompleted    = (*MetricsExtension)(nil)
	_ plugin.OnCatchUpCompleted  = (*MetricsExtension)(nil)
	_ plugin.OnTemplateUsed      = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Cadence plugin to automatically track scheduling metrics.
type MetricsExtension struct {
	factory MetricFactory

	// Rule metrics
	RuleCreated Counter
	RuleUpdated Counter
	RuleDeleted Counter
	RulePaused  Counter
	RuleResumed Counter
	RuleExpired Counter

	// Generation metrics
	DocumentsGenerated Counter
	GenerationFailures Counter
	BatchesCompleted   Counter
	CatchUpRuns        Counter
	CatchUpGenerated   Counter

	// Template metrics
	TemplateUsed Counter
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Rule metrics
		RuleCreated: factory.Counter("cadence.rule.created"),
		RuleUpdated: factory.Counter("cadence.rule.updated"),
		RuleDeleted: factory.Counter("cadence.rule.deleted"),
		RulePaused:  factory.Counter("cadence.rule.paused"),
		RuleResumed: factory.Counter("cadence.rule.resumed"),
		RuleExpired: factory.Counter("cadence.rule.expired"),

		// Generation metrics
		DocumentsGenerated: factory.Counter("cadence.document.generated"),
		GenerationFailures: factory.Counter("cadence.generation.failures"),
		BatchesCompleted:   factory.Counter("cadence.batch.completed"),
		CatchUpRuns:        factory.Counter("cadence.catchup.runs"),
		CatchUpGenerated:   factory.Counter("cadence.catchup.generated"),

		// Template metrics
		TemplateUsed: factory.Counter("cadence.template.used"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Rule lifecycle hooks
// ──────────────────────────────────────────────────

// OnRuleCreated implements plugin.OnRuleCreated.
func (m *MetricsExtension) OnRuleCreated(_ context.Context, _ interface{}) error {
	m.RuleCreated.Inc()
	return nil
}

// OnRuleUpdated implements plugin.OnRuleUpdated.
func (m *MetricsExtension) OnRuleUpdated(_ context.Context, _ interface{}) error {
	m.RuleUpdated.Inc()
	return nil
}

// OnRuleDeleted implements plugin.OnRuleDeleted.
func (m *MetricsExtension) OnRuleDeleted(_ context.Context, _ string) error {
	m.RuleDeleted.Inc()
	return nil
}

// OnRulePaused implements plugin.OnRulePaused.
func (m *MetricsExtension) OnRulePaused(_ context.Context, _ interface{}) error {
	m.RulePaused.Inc()
	return nil
}

// OnRuleResumed implements plugin.OnRuleResumed.
func (m *MetricsExtension) OnRuleResumed(_ context.Context, _ interface{}) error {
	m.RuleResumed.Inc()
	return nil
}

// OnRuleExpired implements plugin.OnRuleExpired.
func (m *MetricsExtension) OnRuleExpired(_ context.Context, _ interface{}) error {
	m.RuleExpired.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Generation hooks
// ──────────────────────────────────────────────────

// OnDocumentGenerated implements plugin.OnDocumentGenerated.
func (m *MetricsExtension) OnDocumentGenerated(_ context.Context, _ interface{}) error {
	m.DocumentsGenerated.Inc()
	return nil
}

// OnGenerationFailed implements plugin.OnGenerationFailed.
func (m *MetricsExtension) OnGenerationFailed(_ context.Context, _, _ string) error {
	m.GenerationFailures.Inc()
	return nil
}

// OnBatchCompleted implements plugin.OnBatchCompleted.
func (m *MetricsExtension) OnBatchCompleted(_ context.Context, _ interface{}) error {
	m.BatchesCompleted.Inc()
	return nil
}

// OnCatchUpCompleted implements plugin.OnCatchUpCompleted.
func (m *MetricsExtension) OnCatchUpCompleted(_ context.Context, _ string, generated int) error {
	m.CatchUpRuns.Inc()
	m.CatchUpGenerated.Add(float64(generated))
	return nil
}

// ──────────────────────────────────────────────────
// Template hooks
// ──────────────────────────────────────────────────

// OnTemplateUsed implements plugin.OnTemplateUsed.
func (m *MetricsExtension) OnTemplateUsed(_ context.Context, _ string, _ time.Time) error {
	m.TemplateUsed.Inc()
	return nil
}
