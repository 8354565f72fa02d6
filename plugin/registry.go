package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit              []OnInit
	onShutdown          []OnShutdown
	onRuleCreated       []OnRuleCreated
	onRuleUpdated       []OnRuleUpdated
	onRuleDeleted       []OnRuleDeleted
	onRulePaused        []OnRulePaused
	onRuleResumed       []OnRuleResumed
	onRuleExpired       []OnRuleExpired
	onDocumentGenerated []OnDocumentGenerated
	onGenerationFailed  []OnGenerationFailed
	onBatchCompleted    []OnBatchCompleted
	onCatchUpCompleted  []OnCatchUpCompleted
	onTemplateUsed      []OnTemplateUsed
	documentFormatters  map[string]DocumentFormatter
	numberFormatters    []NumberFormatter
	taxCalculators      []TaxCalculator
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger:             slog.Default(),
		documentFormatters: make(map[string]DocumentFormatter),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnRuleCreated); ok {
		r.onRuleCreated = append(r.onRuleCreated, v)
	}
	if v, ok := p.(OnRuleUpdated); ok {
		r.onRuleUpdated = append(r.onRuleUpdated, v)
	}
	if v, ok := p.(OnRuleDeleted); ok {
		r.onRuleDeleted = append(r.onRuleDeleted, v)
	}
	if v, ok := p.(OnRulePaused); ok {
		r.onRulePaused = append(r.onRulePaused, v)
	}
	if v, ok := p.(OnRuleResumed); ok {
		r.onRuleResumed = append(r.onRuleResumed, v)
	}
	if v, ok := p.(OnRuleExpired); ok {
		r.onRuleExpired = append(r.onRuleExpired, v)
	}
	if v, ok := p.(OnDocumentGenerated); ok {
		r.onDocumentGenerated = append(r.onDocumentGenerated, v)
	}
	if v, ok := p.(OnGenerationFailed); ok {
		r.onGenerationFailed = append(r.onGenerationFailed, v)
	}
	if v, ok := p.(OnBatchCompleted); ok {
		r.onBatchCompleted = append(r.onBatchCompleted, v)
	}
	if v, ok := p.(OnCatchUpCompleted); ok {
		r.onCatchUpCompleted = append(r.onCatchUpCompleted, v)
	}
	if v, ok := p.(OnTemplateUsed); ok {
		r.onTemplateUsed = append(r.onTemplateUsed, v)
	}
	if v, ok := p.(DocumentFormatter); ok {
		r.documentFormatters[v.Format()] = v
	}
	if v, ok := p.(NumberFormatter); ok {
		r.numberFormatters = append(r.numberFormatters, v)
	}
	if v, ok := p.(TaxCalculator); ok {
		r.taxCalculators = append(r.taxCalculators, v)
	}

	r.logger.Info("plugin registered",
		"name", p.Name(),
		"interfaces", r.getImplementedInterfaces(p),
	)

	return nil
}

// getImplementedInterfaces returns a list of interfaces implemented by the plugin.
func (r *Registry) getImplementedInterfaces(p Plugin) []string {
	var interfaces []string
	v := reflect.TypeOf(p)

	// Check each interface
	checkInterface := func(iface reflect.Type, name string) {
		if v.Implements(iface) {
			interfaces = append(interfaces, name)
		}
	}

	// List all interfaces to check
	checkInterface(reflect.TypeOf((*OnInit)(nil)).Elem(), "OnInit")
	checkInterface(reflect.TypeOf((*OnShutdown)(nil)).Elem(), "OnShutdown")
	checkInterface(reflect.TypeOf((*OnRuleCreated)(nil)).Elem(), "OnRuleCreated")
	checkInterface(reflect.TypeOf((*OnRuleExpired)(nil)).Elem(), "OnRuleExpired")
	checkInterface(reflect.TypeOf((*OnDocumentGenerated)(nil)).Elem(), "OnDocumentGenerated")
	checkInterface(reflect.TypeOf((*OnGenerationFailed)(nil)).Elem(), "OnGenerationFailed")
	checkInterface(reflect.TypeOf((*OnBatchCompleted)(nil)).Elem(), "OnBatchCompleted")
	checkInterface(reflect.TypeOf((*DocumentFormatter)(nil)).Elem(), "DocumentFormatter")
	checkInterface(reflect.TypeOf((*NumberFormatter)(nil)).Elem(), "NumberFormatter")
	checkInterface(reflect.TypeOf((*TaxCalculator)(nil)).Elem(), "TaxCalculator")

	return interfaces
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, engine interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, engine)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRuleCreated emits a rule created event.
func (r *Registry) EmitRuleCreated(ctx context.Context, rule interface{}) {
	r.mu.RLock()
	plugins := r.onRuleCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRuleCreated(ctx, rule)
		}); err != nil {
			r.logger.Warn("plugin OnRuleCreated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRuleUpdated emits a rule updated event.
func (r *Registry) EmitRuleUpdated(ctx context.Context, rule interface{}) {
	r.mu.RLock()
	plugins := r.onRuleUpdated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRuleUpdated(ctx, rule)
		}); err != nil {
			r.logger.Warn("plugin OnRuleUpdated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRuleDeleted emits a rule deleted event.
func (r *Registry) EmitRuleDeleted(ctx context.Context, ruleID string) {
	r.mu.RLock()
	plugins := r.onRuleDeleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRuleDeleted(ctx, ruleID)
		}); err != nil {
			r.logger.Warn("plugin OnRuleDeleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRulePaused emits a rule paused event.
func (r *Registry) EmitRulePaused(ctx context.Context, rule interface{}) {
	r.mu.RLock()
	plugins := r.onRulePaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRulePaused(ctx, rule)
		}); err != nil {
			r.logger.Warn("plugin OnRulePaused failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRuleResumed emits a rule resumed event.
func (r *Registry) EmitRuleResumed(ctx context.Context, rule interface{}) {
	r.mu.RLock()
	plugins := r.onRuleResumed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRuleResumed(ctx, rule)
		}); err != nil {
			r.logger.Warn("plugin OnRuleResumed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitRuleExpired emits a rule expired event.
func (r *Registry) EmitRuleExpired(ctx context.Context, rule interface{}) {
	r.mu.RLock()
	plugins := r.onRuleExpired
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnRuleExpired(ctx, rule)
		}); err != nil {
			r.logger.Warn("plugin OnRuleExpired failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitDocumentGenerated emits a document generated event.
func (r *Registry) EmitDocumentGenerated(ctx context.Context, doc interface{}) {
	r.mu.RLock()
	plugins := r.onDocumentGenerated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnDocumentGenerated(ctx, doc)
		}); err != nil {
			r.logger.Warn("plugin OnDocumentGenerated failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitGenerationFailed emits a generation failed event.
func (r *Registry) EmitGenerationFailed(ctx context.Context, ruleID, reason string) {
	r.mu.RLock()
	plugins := r.onGenerationFailed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnGenerationFailed(ctx, ruleID, reason)
		}); err != nil {
			r.logger.Warn("plugin OnGenerationFailed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitBatchCompleted emits a batch completed event.
func (r *Registry) EmitBatchCompleted(ctx context.Context, batch interface{}) {
	r.mu.RLock()
	plugins := r.onBatchCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBatchCompleted(ctx, batch)
		}); err != nil {
			r.logger.Warn("plugin OnBatchCompleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitCatchUpCompleted emits a catch-up completed event.
func (r *Registry) EmitCatchUpCompleted(ctx context.Context, ruleID string, generated int) {
	r.mu.RLock()
	plugins := r.onCatchUpCompleted
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnCatchUpCompleted(ctx, ruleID, generated)
		}); err != nil {
			r.logger.Warn("plugin OnCatchUpCompleted failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// EmitTemplateUsed emits a template used event.
func (r *Registry) EmitTemplateUsed(ctx context.Context, templateID string, usedAt time.Time) {
	r.mu.RLock()
	plugins := r.onTemplateUsed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTemplateUsed(ctx, templateID, usedAt)
		}); err != nil {
			r.logger.Warn("plugin OnTemplateUsed failed",
				"plugin", p.Name(),
				"error", err,
			)
		}
	}
}

// GetDocumentFormatter returns a document formatter by format name.
func (r *Registry) GetDocumentFormatter(format string) DocumentFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.documentFormatters[format]
}

// GetNumberFormatters returns all registered number formatters.
func (r *Registry) GetNumberFormatters() []NumberFormatter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]NumberFormatter, len(r.numberFormatters))
	copy(result, r.numberFormatters)
	return result
}

// GetTaxCalculators returns all registered tax calculators.
func (r *Registry) GetTaxCalculators() []TaxCalculator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]TaxCalculator, len(r.taxCalculators))
	copy(result, r.taxCalculators)
	return result
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the scheduling pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
