// Package audithook bridges Cadence lifecycle events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/cadence/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnRuleCreated       = (*Extension)(nil)
	_ plugin.OnRuleUpdated       = (*Extension)(nil)
	_ plugin.OnRuleDeleted       = (*Extension)(nil)
	_ plugin.OnRulePaused        = (*Extension)(nil)
	_ plugin.OnRuleResumed       = (*Extension)(nil)
	_ plugin.OnRuleExpired       = (*Extension)(nil)
	_ plugin.OnDocumentGenerated = (*Extension)(nil)
	_ plugin.OnGenerationFailed  = (*Extension)(nil)
	_ plugin.OnBatchCompleted    = (*Extension)(nil)
	_ plugin.OnCatchUpCompleted  = (*Extension)(nil)
	_ plugin.OnTemplateUsed      = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audithook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Cadence lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Rule lifecycle hooks
// ──────────────────────────────────────────────────

// OnRuleCreated implements plugin.OnRuleCreated.
func (e *Extension) OnRuleCreated(ctx context.Context, _ interface{}) error {
	// Would extract rule details from the interface
	return e.record(ctx, ActionRuleCreated, SeverityInfo, OutcomeSuccess,
		ResourceRule, "", CategoryScheduling, nil,
		"event", "rule_created",
	)
}

// OnRuleUpdated implements plugin.OnRuleUpdated.
func (e *Extension) OnRuleUpdated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionRuleUpdated, SeverityInfo, OutcomeSuccess,
		ResourceRule, "", CategoryScheduling, nil,
		"event", "rule_updated",
	)
}

// OnRuleDeleted implements plugin.OnRuleDeleted.
func (e *Extension) OnRuleDeleted(ctx context.Context, ruleID string) error {
	return e.record(ctx, ActionRuleDeleted, SeverityInfo, OutcomeSuccess,
		ResourceRule, ruleID, CategoryScheduling, nil,
		"rule_id", ruleID,
	)
}

// OnRulePaused implements plugin.OnRulePaused.
func (e *Extension) OnRulePaused(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionRulePaused, SeverityInfo, OutcomeSuccess,
		ResourceRule, "", CategoryScheduling, nil,
		"event", "rule_paused",
	)
}

// OnRuleResumed implements plugin.OnRuleResumed.
func (e *Extension) OnRuleResumed(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionRuleResumed, SeverityInfo, OutcomeSuccess,
		ResourceRule, "", CategoryScheduling, nil,
		"event", "rule_resumed",
	)
}

// OnRuleExpired implements plugin.OnRuleExpired.
func (e *Extension) OnRuleExpired(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionRuleExpired, SeverityWarning, OutcomeSuccess,
		ResourceRule, "", CategoryScheduling, nil,
		"event", "rule_expired",
	)
}

// ──────────────────────────────────────────────────
// Generation hooks
// ──────────────────────────────────────────────────

// OnDocumentGenerated implements plugin.OnDocumentGenerated.
func (e *Extension) OnDocumentGenerated(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionDocumentGenerated, SeverityInfo, OutcomeSuccess,
		ResourceDocument, "", CategoryGeneration, nil,
		"event", "document_generated",
	)
}

// OnGenerationFailed implements plugin.OnGenerationFailed.
func (e *Extension) OnGenerationFailed(ctx context.Context, ruleID, reason string) error {
	return e.record(ctx, ActionGenerationFailed, SeverityCritical, OutcomeFailure,
		ResourceRule, ruleID, CategoryGeneration, nil,
		"event", "generation_failed",
		"rule_id", ruleID,
		"failure_reason", reason,
	)
}

// OnBatchCompleted implements plugin.OnBatchCompleted.
func (e *Extension) OnBatchCompleted(ctx context.Context, _ interface{}) error {
	return e.record(ctx, ActionBatchCompleted, SeverityInfo, OutcomeSuccess,
		ResourceRule, "", CategoryGeneration, nil,
		"event", "batch_completed",
	)
}

// OnCatchUpCompleted implements plugin.OnCatchUpCompleted.
func (e *Extension) OnCatchUpCompleted(ctx context.Context, ruleID string, generated int) error {
	return e.record(ctx, ActionCatchUpCompleted, SeverityInfo, OutcomeSuccess,
		ResourceRule, ruleID, CategoryGeneration, nil,
		"rule_id", ruleID,
		"generated", generated,
	)
}

// ──────────────────────────────────────────────────
// Template hooks
// ──────────────────────────────────────────────────

// OnTemplateUsed implements plugin.OnTemplateUsed.
func (e *Extension) OnTemplateUsed(ctx context.Context, templateID string, usedAt time.Time) error {
	return e.record(ctx, ActionTemplateUsed, SeverityInfo, OutcomeSuccess,
		ResourceTemplate, templateID, CategoryTemplate, nil,
		"template_id", templateID,
		"used_at", usedAt,
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
