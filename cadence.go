package cadence

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/cadence/client"
	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/plugin"
	"github.com/xraph/cadence/profile"
	"github.com/xraph/cadence/rule"
	"github.com/xraph/cadence/store"
	"github.com/xraph/cadence/template"
	"github.com/xraph/cadence/types"
)

// Engine is the recurring-invoice scheduler. It owns rule lifecycle and turns
// due rules into generated documents.
type Engine struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	now     func() time.Time

	// Background processing
	processInterval time.Duration
	stopChan        chan struct{}
	wg              sync.WaitGroup
}

// New creates a new Engine instance.
func New(s store.Store, opts ...Option) *Engine {
	e := &Engine{
		store:    s,
		plugins:  plugin.NewRegistry(),
		logger:   slog.Default(),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Option configures an Engine instance.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
		e.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(e *Engine) {
		_ = e.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock overrides the engine's time source. Tests pin "today" with this.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithProcessInterval enables the background worker that processes due rules
// on a fixed interval. Zero (the default) leaves processing entirely to
// explicit ProcessDueRules calls.
func WithProcessInterval(interval time.Duration) Option {
	return func(e *Engine) {
		e.processInterval = interval
	}
}

// Today returns the engine clock's current civil date in UTC.
func (e *Engine) Today() types.Date {
	return types.DateOf(e.now().UTC())
}

// Start migrates the store, initializes plugins, and launches the optional
// background processor.
func (e *Engine) Start(ctx context.Context) error {
	if err := e.store.Migrate(ctx); err != nil {
		return err
	}

	e.plugins.EmitInit(ctx, e)

	if e.processInterval > 0 {
		e.wg.Add(1)
		go e.processWorker(ctx)
	}

	e.logger.Info("cadence started",
		"process_interval", e.processInterval,
		"plugins", e.plugins.Count(),
	)

	return nil
}

// Stop shuts down the Engine.
func (e *Engine) Stop() error {
	close(e.stopChan)
	e.wg.Wait()

	ctx := context.Background()
	e.plugins.EmitShutdown(ctx)

	return e.store.Close()
}

// processWorker runs ProcessDueRules on a ticker until Stop.
func (e *Engine) processWorker(ctx context.Context) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.processInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			return
		case <-ticker.C:
			batch, err := e.ProcessDueRules(ctx, types.Date{})
			if err != nil {
				e.logger.Error("scheduled processing failed", "error", err)
				continue
			}
			if batch.Processed > 0 {
				e.logger.Info("scheduled processing completed",
					"processed", batch.Processed,
					"succeeded", batch.Succeeded,
					"failed", batch.Failed,
				)
			}
		}
	}
}

// ──────────────────────────────────────────────────
// Rule Management
// ──────────────────────────────────────────────────

// CreateRule validates the input and creates a new recurring rule.
func (e *Engine) CreateRule(ctx context.Context, in rule.CreateInput) (*rule.Rule, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	r := in.Rule()
	if err := e.store.CreateRule(ctx, r); err != nil {
		return nil, err
	}

	e.plugins.EmitRuleCreated(ctx, r)
	return r, nil
}

// GetRule retrieves a rule by ID.
func (e *Engine) GetRule(ctx context.Context, ruleID id.RuleID) (*rule.Rule, error) {
	return e.store.GetRule(ctx, ruleID)
}

// ListRules lists rules with filtering and sorting.
func (e *Engine) ListRules(ctx context.Context, opts rule.ListOpts) ([]*rule.Rule, error) {
	return e.store.ListRules(ctx, opts)
}

// UpdateRule applies a partial update to a rule.
func (e *Engine) UpdateRule(ctx context.Context, ruleID id.RuleID, in rule.UpdateInput) (*rule.Rule, error) {
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	r, err := e.store.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if err := in.Apply(r); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := e.store.UpdateRule(ctx, r); err != nil {
		return nil, err
	}

	e.plugins.EmitRuleUpdated(ctx, r)
	return r, nil
}

// DeleteRule deletes a rule. Documents it generated are kept.
func (e *Engine) DeleteRule(ctx context.Context, ruleID id.RuleID) error {
	if err := e.store.DeleteRule(ctx, ruleID); err != nil {
		return err
	}

	e.plugins.EmitRuleDeleted(ctx, ruleID.String())
	return nil
}

// PauseRule deactivates a rule. Pausing an already paused rule is a no-op.
func (e *Engine) PauseRule(ctx context.Context, ruleID id.RuleID) (*rule.Rule, error) {
	return e.setRuleActive(ctx, ruleID, false)
}

// ResumeRule reactivates a paused rule. The next due date is left where it
// was, so a long-paused rule becomes immediately due.
func (e *Engine) ResumeRule(ctx context.Context, ruleID id.RuleID) (*rule.Rule, error) {
	return e.setRuleActive(ctx, ruleID, true)
}

func (e *Engine) setRuleActive(ctx context.Context, ruleID id.RuleID, active bool) (*rule.Rule, error) {
	r, err := e.store.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	if r.Active == active {
		return r, nil
	}

	r.Active = active
	r.Touch()
	if err := e.store.UpdateRule(ctx, r); err != nil {
		return nil, err
	}

	if active {
		e.plugins.EmitRuleResumed(ctx, r)
	} else {
		e.plugins.EmitRulePaused(ctx, r)
	}
	return r, nil
}

// DeleteRules deletes the given rules. Ids that do not exist are skipped, so
// the call is idempotent.
func (e *Engine) DeleteRules(ctx context.Context, ids []id.RuleID) error {
	for _, ruleID := range ids {
		if err := e.DeleteRule(ctx, ruleID); err != nil {
			return err
		}
	}
	return nil
}

// PauseRules pauses the given rules and returns how many changed. Ids that do
// not exist and rules already paused are skipped.
func (e *Engine) PauseRules(ctx context.Context, ids []id.RuleID) (int, error) {
	return e.setRulesActive(ctx, ids, false)
}

// ResumeRules resumes the given rules and returns how many changed. Ids that
// do not exist and rules already active are skipped.
func (e *Engine) ResumeRules(ctx context.Context, ids []id.RuleID) (int, error) {
	return e.setRulesActive(ctx, ids, true)
}

func (e *Engine) setRulesActive(ctx context.Context, ids []id.RuleID, active bool) (int, error) {
	changed := 0
	for _, ruleID := range ids {
		r, err := e.store.GetRule(ctx, ruleID)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return changed, err
		}
		if r.Active == active {
			continue
		}
		if _, err := e.setRuleActive(ctx, ruleID, active); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// PauseAllRules pauses every active rule and returns how many changed.
func (e *Engine) PauseAllRules(ctx context.Context) (int, error) {
	return e.setAllRulesActive(ctx, false)
}

// ResumeAllRules resumes every paused rule and returns how many changed.
func (e *Engine) ResumeAllRules(ctx context.Context) (int, error) {
	return e.setAllRulesActive(ctx, true)
}

func (e *Engine) setAllRulesActive(ctx context.Context, active bool) (int, error) {
	current := !active
	rules, err := e.store.ListRules(ctx, rule.ListOpts{Active: &current})
	if err != nil {
		return 0, err
	}

	changed := 0
	for _, r := range rules {
		if _, err := e.setRuleActive(ctx, r.ID, active); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// RuleStats computes summary statistics over all rules as of the engine
// clock's today.
func (e *Engine) RuleStats(ctx context.Context) (*rule.Stats, error) {
	rules, err := e.store.ListRules(ctx, rule.ListOpts{})
	if err != nil {
		return nil, err
	}

	today := e.Today()
	year, month := e.now().UTC().Year(), e.now().UTC().Month()
	stats := &rule.Stats{ByFrequency: make(map[rule.Frequency]int)}
	for _, r := range rules {
		stats.Total++
		stats.ByFrequency[r.Frequency]++
		stats.TotalGenerated += len(r.GeneratedDocumentIDs)
		if at := r.LastGeneratedAt; at != nil && at.UTC().Year() == year && at.UTC().Month() == month {
			stats.GeneratedThisMonth++
		}

		if !r.Active {
			stats.Paused++
			continue
		}
		stats.Active++
		if r.IsDue(today) {
			stats.Due++
		}
		if stats.NextDue.IsZero() || r.NextDueDate.Before(stats.NextDue) {
			stats.NextDue = r.NextDueDate
		}
	}
	return stats, nil
}

// ExportRules returns all rules for backup.
func (e *Engine) ExportRules(ctx context.Context) ([]*rule.Rule, error) {
	return e.store.ListRules(ctx, rule.ListOpts{SortBy: rule.SortByCreatedAt, Ascending: true})
}

// ImportRules appends previously exported rules. Rules are stored verbatim,
// ids included; importing an id that already exists fails on that rule and
// stops. Returns how many rules were imported.
func (e *Engine) ImportRules(ctx context.Context, rules []*rule.Rule) (int, error) {
	for i, r := range rules {
		if r.ID.IsNil() || !r.Frequency.Valid() || r.StartDate.IsZero() {
			return i, fmt.Errorf("%w: rule %d is not importable", ErrInvalidInput, i)
		}
		if err := e.store.CreateRule(ctx, r); err != nil {
			return i, err
		}
	}
	return len(rules), nil
}

// ──────────────────────────────────────────────────
// Schedule math
// ──────────────────────────────────────────────────

// NextDueDate returns the occurrence after d for the given frequency.
func (e *Engine) NextDueDate(d types.Date, freq rule.Frequency) (types.Date, error) {
	next, err := freq.Next(d)
	if err != nil {
		return types.Date{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
	return next, nil
}

// PreviewNextDueDates returns n upcoming occurrence dates starting at start.
func (e *Engine) PreviewNextDueDates(start types.Date, freq rule.Frequency, n int) ([]types.Date, error) {
	dates, err := rule.Preview(start, freq, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
	return dates, nil
}

// FrequencyDescription returns the display string for a frequency.
func (e *Engine) FrequencyDescription(freq rule.Frequency) string {
	return freq.Description()
}

// ──────────────────────────────────────────────────
// Generation
// ──────────────────────────────────────────────────

// ProcessDueRules generates documents for every rule due as of the given
// date (zero means the engine clock's today). Failures are isolated per
// rule: one bad rule never stops the batch, it just shows up as a failed
// Result. A due rule past its end date is paused instead of generated.
func (e *Engine) ProcessDueRules(ctx context.Context, asOf types.Date) (*BatchResult, error) {
	if asOf.IsZero() {
		asOf = e.Today()
	}

	due, err := e.store.DueRules(ctx, asOf)
	if err != nil {
		return nil, err
	}

	batch := &BatchResult{Results: make([]Result, 0, len(due))}
	for _, r := range due {
		if r.IsExpired(asOf) {
			batch.add(e.expireRule(ctx, r))
			continue
		}
		batch.add(e.generateOne(ctx, r))
	}
	batch.CompletedAt = e.now().UTC()

	e.plugins.EmitBatchCompleted(ctx, batch)
	e.logger.Info("processed due rules",
		"as_of", asOf.String(),
		"processed", batch.Processed,
		"succeeded", batch.Succeeded,
		"failed", batch.Failed,
	)

	return batch, nil
}

// GenerateMissed catches a single rule up: it generates one document per
// occurrence strictly before today. An occurrence landing exactly on today is
// left for ProcessDueRules, which owns the inclusive boundary. The loop stops
// at the first failure; a failed occurrence never advances the due date, so
// continuing would retry the same occurrence forever. An inactive rule is
// reported as a single failed result so callers can tell it apart from a rule
// that is fully caught up.
func (e *Engine) GenerateMissed(ctx context.Context, ruleID id.RuleID) (*BatchResult, error) {
	r, err := e.store.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}

	today := e.Today()
	batch := &BatchResult{}
	if !r.Active {
		batch.add(Result{
			RuleID:    r.ID,
			RuleName:  r.Name,
			Reason:    "rule inactive",
			Timestamp: e.now().UTC(),
		})
		batch.CompletedAt = e.now().UTC()
		return batch, nil
	}
	for !r.NextDueDate.IsZero() && r.NextDueDate.Before(today) {
		if r.IsExpired(today) {
			batch.add(e.expireRule(ctx, r))
			break
		}

		res := e.generateOne(ctx, r)
		batch.add(res)
		if !res.Success {
			break
		}
	}
	batch.CompletedAt = e.now().UTC()

	e.plugins.EmitCatchUpCompleted(ctx, ruleID.String(), batch.Succeeded)
	e.logger.Info("catch-up completed",
		"rule_id", ruleID.String(),
		"generated", batch.Succeeded,
		"failed", batch.Failed,
	)

	return batch, nil
}

// expireRule pauses a rule whose end date has passed and reports it as a
// failed occurrence.
func (e *Engine) expireRule(ctx context.Context, r *rule.Rule) Result {
	res := Result{
		RuleID:    r.ID,
		RuleName:  r.Name,
		Reason:    "rule expired",
		Timestamp: e.now().UTC(),
	}

	r.Active = false
	r.Touch()
	if err := e.store.UpdateRule(ctx, r); err != nil {
		e.logger.Error("failed to pause expired rule",
			"rule_id", r.ID.String(),
			"error", err,
		)
		res.Reason = "rule expired (pause failed: " + err.Error() + ")"
		return res
	}

	e.plugins.EmitRuleExpired(ctx, r)
	return res
}

// generateOne runs the full generation sequence for one occurrence of one
// rule: template lookup, optional client lookup, numbering, totals, persist,
// then advance. There is no rollback; a failure after the document is
// persisted leaves the document in place and the rule unadvanced, so the
// next run may generate it again (at-least-once).
func (e *Engine) generateOne(ctx context.Context, r *rule.Rule) Result {
	res := Result{
		RuleID:    r.ID,
		RuleName:  r.Name,
		Timestamp: e.now().UTC(),
	}
	fail := func(reason string, err error) Result {
		res.Reason = reason
		if err != nil {
			res.Reason = reason + ": " + err.Error()
		}
		e.plugins.EmitGenerationFailed(ctx, r.ID.String(), res.Reason)
		e.logger.Warn("generation failed",
			"rule_id", r.ID.String(),
			"rule", r.Name,
			"reason", res.Reason,
		)
		return res
	}

	tpl, err := e.store.GetTemplate(ctx, r.TemplateID)
	if err != nil {
		return fail("template lookup", err)
	}

	// A missing client is display data we can live without; only lookups
	// that fail for another reason abort the occurrence.
	var cli *client.Client
	if !tpl.ClientID.IsNil() {
		cli, err = e.store.GetClient(ctx, tpl.ClientID)
		if err != nil && !IsNotFound(err) {
			return fail("client lookup", err)
		}
	}

	// Numbering consumes a ticket before the document exists. If persisting
	// fails afterwards the number is burned, which is the accepted price for
	// never reissuing one.
	number := ""
	if r.AutoNumbering {
		switch tpl.Type {
		case document.TypeQuote:
			number, err = e.store.NextQuoteNumber(ctx)
		default:
			number, err = e.store.NextInvoiceNumber(ctx)
		}
		if err != nil {
			return fail("numbering", err)
		}
	}

	doc := e.buildDocument(r, tpl, cli, number)
	if err := e.store.CreateDocument(ctx, doc); err != nil {
		return fail("persist document", err)
	}

	r.RecordGeneration(doc.ID, e.now().UTC())
	if err := r.Advance(); err != nil {
		return fail("advance due date", err)
	}
	if err := e.store.UpdateRule(ctx, r); err != nil {
		// Document already persisted. Next run sees the old due date and
		// generates again.
		return fail("save rule", err)
	}

	usedAt := e.now().UTC()
	if err := e.store.RecordTemplateUsage(ctx, tpl.ID, usedAt); err != nil {
		e.logger.Warn("failed to record template usage",
			"template_id", tpl.ID.String(),
			"error", err,
		)
	} else {
		e.plugins.EmitTemplateUsed(ctx, tpl.ID.String(), usedAt)
	}

	e.plugins.EmitDocumentGenerated(ctx, doc)
	e.logger.Info("document generated",
		"rule_id", r.ID.String(),
		"document_id", doc.ID.String(),
		"number", doc.Number,
		"total", doc.Total.String(),
	)

	res.Success = true
	res.DocumentID = doc.ID
	return res
}

// buildDocument snapshots the template, client, and totals into a document
// issued at the rule's current due date.
func (e *Engine) buildDocument(r *rule.Rule, tpl *template.Template, cli *client.Client, number string) *document.Document {
	doc := &document.Document{
		Entity:     types.NewEntity(),
		ID:         id.NewDocumentID(),
		Type:       tpl.Type,
		Number:     number,
		IssueDate:  r.NextDueDate,
		TemplateID: tpl.ID,
		RuleID:     r.ID,
		Currency:   tpl.Currency,
		TaxName:    tpl.TaxName,
		Notes:      tpl.Notes,
		Subtotal:   tpl.Subtotal(),
		Tax:        tpl.TaxAmount(),
		Total:      tpl.Total(),
	}

	doc.LineItems = make([]document.LineItem, 0, len(tpl.LineItems))
	for _, li := range tpl.LineItems {
		doc.LineItems = append(doc.LineItems, document.LineItem{
			ID:          id.NewLineItemID(),
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   li.UnitPrice,
			Total:       li.Amount(),
		})
	}

	if cli != nil {
		doc.ClientID = cli.ID
		doc.ClientName = cli.Name
		doc.ClientTaxID = cli.TaxID
		doc.ClientEmail = cli.Email
		doc.ClientAddress = cli.Address
	}

	return doc
}

// ──────────────────────────────────────────────────
// Template Management
// ──────────────────────────────────────────────────

// CreateTemplate creates a new template.
func (e *Engine) CreateTemplate(ctx context.Context, t *template.Template) error {
	if t.ID.IsNil() {
		t.ID = id.NewTemplateID()
	}
	if !t.Type.Valid() {
		return fmt.Errorf("%w: document type %q", ErrInvalidInput, t.Type)
	}
	for i := range t.LineItems {
		if t.LineItems[i].ID.IsNil() {
			t.LineItems[i].ID = id.NewLineItemID()
		}
	}
	t.Entity = types.NewEntity()

	return e.store.CreateTemplate(ctx, t)
}

// GetTemplate retrieves a template by ID.
func (e *Engine) GetTemplate(ctx context.Context, templateID id.TemplateID) (*template.Template, error) {
	return e.store.GetTemplate(ctx, templateID)
}

// ListTemplates lists templates.
func (e *Engine) ListTemplates(ctx context.Context, opts template.ListOpts) ([]*template.Template, error) {
	return e.store.ListTemplates(ctx, opts)
}

// UpdateTemplate updates a template.
func (e *Engine) UpdateTemplate(ctx context.Context, t *template.Template) error {
	t.Touch()
	return e.store.UpdateTemplate(ctx, t)
}

// DeleteTemplate deletes a template unless rules still reference it.
func (e *Engine) DeleteTemplate(ctx context.Context, templateID id.TemplateID) error {
	refs, err := e.store.ListRules(ctx, rule.ListOpts{TemplateID: templateID, Limit: 1})
	if err != nil {
		return err
	}
	if len(refs) > 0 {
		return ErrTemplateInUse
	}
	return e.store.DeleteTemplate(ctx, templateID)
}

// ──────────────────────────────────────────────────
// Client Management
// ──────────────────────────────────────────────────

// CreateClient creates a new client.
func (e *Engine) CreateClient(ctx context.Context, c *client.Client) error {
	if c.ID.IsNil() {
		c.ID = id.NewClientID()
	}
	c.Entity = types.NewEntity()

	return e.store.CreateClient(ctx, c)
}

// GetClient retrieves a client by ID.
func (e *Engine) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	return e.store.GetClient(ctx, clientID)
}

// ListClients lists clients.
func (e *Engine) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	return e.store.ListClients(ctx, opts)
}

// UpdateClient updates a client. Already generated documents keep the
// display fields they were issued with.
func (e *Engine) UpdateClient(ctx context.Context, c *client.Client) error {
	c.Touch()
	return e.store.UpdateClient(ctx, c)
}

// DeleteClient deletes a client.
func (e *Engine) DeleteClient(ctx context.Context, clientID id.ClientID) error {
	return e.store.DeleteClient(ctx, clientID)
}

// ──────────────────────────────────────────────────
// Documents & Profile
// ──────────────────────────────────────────────────

// GetDocument retrieves a generated document by ID.
func (e *Engine) GetDocument(ctx context.Context, docID id.DocumentID) (*document.Document, error) {
	return e.store.GetDocument(ctx, docID)
}

// ListDocuments lists generated documents.
func (e *Engine) ListDocuments(ctx context.Context, opts document.ListOpts) ([]*document.Document, error) {
	return e.store.ListDocuments(ctx, opts)
}

// DeleteDocument deletes a generated document. The source rule's history
// still references the id.
func (e *Engine) DeleteDocument(ctx context.Context, docID id.DocumentID) error {
	return e.store.DeleteDocument(ctx, docID)
}

// GetProfile returns the business profile.
func (e *Engine) GetProfile(ctx context.Context) (*profile.Profile, error) {
	return e.store.GetProfile(ctx)
}

// SaveProfile creates or replaces the business profile.
func (e *Engine) SaveProfile(ctx context.Context, p *profile.Profile) error {
	if p.ID.IsNil() {
		p.ID = id.NewProfileID()
	}
	if p.CreatedAt.IsZero() {
		p.Entity = types.NewEntity()
	} else {
		p.Touch()
	}
	return e.store.SaveProfile(ctx, p)
}

// Plugins exposes the plugin registry.
func (e *Engine) Plugins() *plugin.Registry {
	return e.plugins
}
