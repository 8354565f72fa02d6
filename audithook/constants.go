package audithook

// Action constants for audit events.
const (
	// Rule actions
	ActionRuleCreated = "rule.created"
	ActionRuleUpdated = "rule.updated"
	ActionRuleDeleted = "rule.deleted"
	ActionRulePaused  = "rule.paused"
	ActionRuleResumed = "rule.resumed"
	ActionRuleExpired = "rule.expired"

	// Generation actions
	ActionDocumentGenerated = "document.generated"
	ActionGenerationFailed  = "generation.failed"
	ActionBatchCompleted    = "batch.completed"
	ActionCatchUpCompleted  = "catchup.completed"

	// Template actions
	ActionTemplateUsed = "template.used"
)

// Resource constants for audit events.
const (
	ResourceRule     = "rule"
	ResourceTemplate = "template"
	ResourceClient   = "client"
	ResourceDocument = "document"
	ResourceProfile  = "profile"
)

// Category constants for audit events.
const (
	CategoryScheduling = "scheduling"
	CategoryGeneration = "generation"
	CategoryTemplate   = "template"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
