package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	cadence "github.com/xraph/cadence"
	"github.com/xraph/cadence/client"
	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/profile"
	"github.com/xraph/cadence/rule"
	cadencestore "github.com/xraph/cadence/store"
	"github.com/xraph/cadence/template"
	"github.com/xraph/cadence/types"
)

// compile-time interface check
var _ cadencestore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("cadence/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("cadence/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Rule Store ====================

func (s *Store) CreateRule(ctx context.Context, r *rule.Rule) error {
	m := toRuleModel(r)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetRule(ctx context.Context, ruleID id.RuleID) (*rule.Rule, error) {
	m := new(ruleModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", ruleID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, cadence.ErrRuleNotFound
		}
		return nil, err
	}
	return fromRuleModel(m)
}

func (s *Store) ListRules(ctx context.Context, opts rule.ListOpts) ([]*rule.Rule, error) {
	var models []ruleModel
	q := s.sdb.NewSelect(&models)

	if !opts.TemplateID.IsNil() {
		q = q.Where("template_id = ?", opts.TemplateID.String())
	}
	if opts.Frequency != "" {
		q = q.Where("frequency = ?", string(opts.Frequency))
	}
	if opts.Active != nil {
		q = q.Where("active = ?", *opts.Active)
	}
	if !opts.DueBefore.IsZero() {
		q = q.Where("next_due_date <= ?", opts.DueBefore)
	}
	if !opts.DueAfter.IsZero() {
		q = q.Where("next_due_date >= ?", opts.DueAfter)
	}
	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr(ruleOrderExpr(opts.SortBy, opts.Ascending))

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*rule.Rule, len(models))
	for i := range models {
		r, err := fromRuleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

func (s *Store) UpdateRule(ctx context.Context, r *rule.Rule) error {
	m := toRuleModel(r)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return cadence.ErrRuleNotFound
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, ruleID id.RuleID) error {
	_, err := s.sdb.NewDelete((*ruleModel)(nil)).
		Where("id = ?", ruleID.String()).
		Exec(ctx)
	return err
}

func (s *Store) DueRules(ctx context.Context, asOf types.Date) ([]*rule.Rule, error) {
	var models []ruleModel
	err := s.sdb.NewSelect(&models).
		Where("active = ?", true).
		Where("next_due_date IS NOT NULL").
		Where("next_due_date <= ?", asOf).
		OrderExpr("next_due_date ASC, id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*rule.Rule, len(models))
	for i := range models {
		r, err := fromRuleModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = r
	}
	return result, nil
}

// ruleOrderExpr maps a sort key and direction to an ORDER BY expression.
// The id tiebreak keeps listings stable across equal keys.
func ruleOrderExpr(key rule.SortKey, ascending bool) string {
	col := "next_due_date"
	switch key {
	case rule.SortByName:
		col = "LOWER(name)"
	case rule.SortByLastGeneratedAt:
		col = "last_generated_at"
	case rule.SortByCreatedAt:
		col = "created_at"
	}
	dir := "DESC"
	if ascending {
		dir = "ASC"
	}
	return col + " " + dir + ", id ASC"
}

// ==================== Template Store ====================

func (s *Store) CreateTemplate(ctx context.Context, t *template.Template) error {
	m := toTemplateModel(t)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetTemplate(ctx context.Context, templateID id.TemplateID) (*template.Template, error) {
	m := new(templateModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", templateID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, cadence.ErrTemplateNotFound
		}
		return nil, err
	}
	return fromTemplateModel(m)
}

func (s *Store) ListTemplates(ctx context.Context, opts template.ListOpts) ([]*template.Template, error) {
	var models []templateModel
	q := s.sdb.NewSelect(&models)

	if opts.Type != "" {
		q = q.Where("type = ?", string(opts.Type))
	}
	if !opts.ClientID.IsNil() {
		q = q.Where("client_id = ?", opts.ClientID.String())
	}
	if opts.Search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(opts.Search)+"%")
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("LOWER(name) ASC, id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*template.Template, len(models))
	for i := range models {
		t, err := fromTemplateModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = t
	}
	return result, nil
}

func (s *Store) UpdateTemplate(ctx context.Context, t *template.Template) error {
	m := toTemplateModel(t)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return cadence.ErrTemplateNotFound
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, templateID id.TemplateID) error {
	_, err := s.sdb.NewDelete((*templateModel)(nil)).
		Where("id = ?", templateID.String()).
		Exec(ctx)
	return err
}

func (s *Store) RecordTemplateUsage(ctx context.Context, templateID id.TemplateID, usedAt time.Time) error {
	res, err := s.sdb.NewUpdate((*templateModel)(nil)).
		Set("usage_count = usage_count + 1").
		Set("last_used_at = ?", usedAt).
		Set("updated_at = ?", now()).
		Where("id = ?", templateID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return cadence.ErrTemplateNotFound
	}
	return nil
}

// ==================== Client Store ====================

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	m := toClientModel(c)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	m := new(clientModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", clientID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, cadence.ErrClientNotFound
		}
		return nil, err
	}
	return fromClientModel(m)
}

func (s *Store) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	var models []clientModel
	q := s.sdb.NewSelect(&models)

	if opts.Search != "" {
		pattern := "%" + strings.ToLower(opts.Search) + "%"
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ?)", pattern, pattern)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("LOWER(name) ASC, id ASC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*client.Client, len(models))
	for i := range models {
		c, err := fromClientModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	m := toClientModel(c)
	m.UpdatedAt = now()
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return cadence.ErrClientNotFound
	}
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, clientID id.ClientID) error {
	_, err := s.sdb.NewDelete((*clientModel)(nil)).
		Where("id = ?", clientID.String()).
		Exec(ctx)
	return err
}

// ==================== Document Store ====================

func (s *Store) CreateDocument(ctx context.Context, d *document.Document) error {
	m := toDocumentModel(d)
	_, err := s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetDocument(ctx context.Context, docID id.DocumentID) (*document.Document, error) {
	m := new(documentModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", docID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, cadence.ErrDocumentNotFound
		}
		return nil, err
	}
	return fromDocumentModel(m)
}

func (s *Store) ListDocuments(ctx context.Context, opts document.ListOpts) ([]*document.Document, error) {
	var models []documentModel
	q := s.sdb.NewSelect(&models)

	if opts.Type != "" {
		q = q.Where("type = ?", string(opts.Type))
	}
	if !opts.RuleID.IsNil() {
		q = q.Where("rule_id = ?", opts.RuleID.String())
	}
	if !opts.TemplateID.IsNil() {
		q = q.Where("template_id = ?", opts.TemplateID.String())
	}
	if !opts.ClientID.IsNil() {
		q = q.Where("client_id = ?", opts.ClientID.String())
	}
	if !opts.IssuedBefore.IsZero() {
		q = q.Where("issue_date <= ?", opts.IssuedBefore)
	}
	if !opts.IssuedAfter.IsZero() {
		q = q.Where("issue_date >= ?", opts.IssuedAfter)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("issue_date DESC, id DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*document.Document, len(models))
	for i := range models {
		d, err := fromDocumentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = d
	}
	return result, nil
}

func (s *Store) DeleteDocument(ctx context.Context, docID id.DocumentID) error {
	_, err := s.sdb.NewDelete((*documentModel)(nil)).
		Where("id = ?", docID.String()).
		Exec(ctx)
	return err
}

// ==================== Profile Store ====================

func (s *Store) GetProfile(ctx context.Context) (*profile.Profile, error) {
	m := new(profileModel)
	err := s.sdb.NewSelect(m).
		OrderExpr("created_at ASC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, cadence.ErrProfileNotFound
		}
		return nil, err
	}
	return fromProfileModel(m)
}

func (s *Store) SaveProfile(ctx context.Context, p *profile.Profile) error {
	m := toProfileModel(p)
	m.UpdatedAt = now()
	_, err := s.sdb.NewInsert(m).
		OnConflict("(id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("tax_id = EXCLUDED.tax_id").
		Set("email = EXCLUDED.email").
		Set("phone = EXCLUDED.phone").
		Set("address = EXCLUDED.address").
		Set("currency = EXCLUDED.currency").
		Set("invoice_prefix = EXCLUDED.invoice_prefix").
		Set("quote_prefix = EXCLUDED.quote_prefix").
		Set("next_invoice_seq = EXCLUDED.next_invoice_seq").
		Set("next_quote_seq = EXCLUDED.next_quote_seq").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// NextInvoiceNumber consumes the next invoice sequence value and returns it
// formatted. The increment and the read happen in a single statement, so two
// concurrent callers can never be handed the same number.
func (s *Store) NextInvoiceNumber(ctx context.Context) (string, error) {
	return s.nextNumber(ctx, "next_invoice_seq", "invoice_prefix", profile.DefaultInvoicePrefix)
}

// NextQuoteNumber consumes the next quote sequence value and returns it
// formatted.
func (s *Store) NextQuoteNumber(ctx context.Context) (string, error) {
	return s.nextNumber(ctx, "next_quote_seq", "quote_prefix", profile.DefaultQuotePrefix)
}

func (s *Store) nextNumber(ctx context.Context, seqCol, prefixCol, defaultPrefix string) (string, error) {
	var prefix string
	var seq int64
	err := s.sdb.NewRaw(`
		UPDATE cadence_profile
		SET `+seqCol+` = `+seqCol+` + 1, updated_at = ?
		RETURNING `+prefixCol+`, `+seqCol+` - 1
	`, now()).Scan(ctx, &prefix, &seq)
	if err != nil {
		if isNoRows(err) {
			return "", cadence.ErrProfileNotFound
		}
		return "", err
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return fmt.Sprintf("%s%04d", prefix, seq), nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
