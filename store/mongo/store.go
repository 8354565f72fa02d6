package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

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

// Collection name constants.
const (
	colRules     = "cadence_rules"
	colTemplates = "cadence_templates"
	colClients   = "cadence_clients"
	colDocuments = "cadence_documents"
	colProfile   = "cadence_profile"
)

// compile-time interface check
var _ cadencestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all cadence collections.
func (s *Store) Migrate(ctx context.Context) error {
	indexes := migrationIndexes()

	for col, models := range indexes {
		if len(models) == 0 {
			continue
		}
		_, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("cadence/mongo: migrate %s indexes: %w", col, err)
		}
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
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: create rule: %w", err)
	}
	return nil
}

func (s *Store) GetRule(ctx context.Context, ruleID id.RuleID) (*rule.Rule, error) {
	var m ruleModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": ruleID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, cadence.ErrRuleNotFound
		}
		return nil, fmt.Errorf("cadence/mongo: get rule: %w", err)
	}
	return fromRuleModel(&m)
}

func (s *Store) ListRules(ctx context.Context, opts rule.ListOpts) ([]*rule.Rule, error) {
	var models []ruleModel

	filter := bson.M{}
	if !opts.TemplateID.IsNil() {
		filter["template_id"] = opts.TemplateID.String()
	}
	if opts.Frequency != "" {
		filter["frequency"] = string(opts.Frequency)
	}
	if opts.Active != nil {
		filter["active"] = *opts.Active
	}
	if !opts.DueBefore.IsZero() || !opts.DueAfter.IsZero() {
		due := bson.M{"$gt": ""}
		if !opts.DueBefore.IsZero() {
			due["$lte"] = opts.DueBefore.String()
		}
		if !opts.DueAfter.IsZero() {
			due["$gte"] = opts.DueAfter.String()
		}
		filter["next_due_date"] = due
	}
	if opts.Search != "" {
		pattern := regexp.QuoteMeta(opts.Search)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(ruleSort(opts.SortBy, opts.Ascending))

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("cadence/mongo: list rules: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: update rule: %w", err)
	}
	if res.MatchedCount() == 0 {
		return cadence.ErrRuleNotFound
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, ruleID id.RuleID) error {
	_, err := s.mdb.NewDelete((*ruleModel)(nil)).
		Filter(bson.M{"_id": ruleID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: delete rule: %w", err)
	}
	return nil
}

func (s *Store) DueRules(ctx context.Context, asOf types.Date) ([]*rule.Rule, error) {
	var models []ruleModel

	err := s.mdb.NewFind(&models).
		Filter(bson.M{
			"active":        true,
			"next_due_date": bson.M{"$gt": "", "$lte": asOf.String()},
		}).
		Sort(bson.D{{Key: "next_due_date", Value: 1}, {Key: "_id", Value: 1}}).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("cadence/mongo: due rules: %w", err)
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

// ruleSort maps a sort key and direction to a mongo sort document. The _id
// tiebreak keeps listings stable across equal keys.
func ruleSort(key rule.SortKey, ascending bool) bson.D {
	col := "next_due_date"
	switch key {
	case rule.SortByName:
		col = "name"
	case rule.SortByLastGeneratedAt:
		col = "last_generated_at"
	case rule.SortByCreatedAt:
		col = "created_at"
	}
	dir := -1
	if ascending {
		dir = 1
	}
	return bson.D{{Key: col, Value: dir}, {Key: "_id", Value: 1}}
}

// ==================== Template Store ====================

func (s *Store) CreateTemplate(ctx context.Context, t *template.Template) error {
	m := toTemplateModel(t)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: create template: %w", err)
	}
	return nil
}

func (s *Store) GetTemplate(ctx context.Context, templateID id.TemplateID) (*template.Template, error) {
	var m templateModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": templateID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, cadence.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("cadence/mongo: get template: %w", err)
	}
	return fromTemplateModel(&m)
}

func (s *Store) ListTemplates(ctx context.Context, opts template.ListOpts) ([]*template.Template, error) {
	var models []templateModel

	filter := bson.M{}
	if opts.Type != "" {
		filter["type"] = string(opts.Type)
	}
	if !opts.ClientID.IsNil() {
		filter["client_id"] = opts.ClientID.String()
	}
	if opts.Search != "" {
		filter["name"] = bson.M{"$regex": regexp.QuoteMeta(opts.Search), "$options": "i"}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("cadence/mongo: list templates: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: update template: %w", err)
	}
	if res.MatchedCount() == 0 {
		return cadence.ErrTemplateNotFound
	}
	return nil
}

func (s *Store) DeleteTemplate(ctx context.Context, templateID id.TemplateID) error {
	_, err := s.mdb.NewDelete((*templateModel)(nil)).
		Filter(bson.M{"_id": templateID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: delete template: %w", err)
	}
	return nil
}

func (s *Store) RecordTemplateUsage(ctx context.Context, templateID id.TemplateID, usedAt time.Time) error {
	res, err := s.mdb.NewUpdate((*templateModel)(nil)).
		Filter(bson.M{"_id": templateID.String()}).
		SetUpdate(bson.M{
			"$inc": bson.M{"usage_count": 1},
			"$set": bson.M{"last_used_at": usedAt, "updated_at": now()},
		}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: record template usage: %w", err)
	}
	if res.MatchedCount() == 0 {
		return cadence.ErrTemplateNotFound
	}
	return nil
}

// ==================== Client Store ====================

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	m := toClientModel(c)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: create client: %w", err)
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	var m clientModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": clientID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, cadence.ErrClientNotFound
		}
		return nil, fmt.Errorf("cadence/mongo: get client: %w", err)
	}
	return fromClientModel(&m)
}

func (s *Store) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	var models []clientModel

	filter := bson.M{}
	if opts.Search != "" {
		pattern := regexp.QuoteMeta(opts.Search)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": pattern, "$options": "i"}},
			bson.M{"email": bson.M{"$regex": pattern, "$options": "i"}},
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("cadence/mongo: list clients: %w", err)
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

	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: update client: %w", err)
	}
	if res.MatchedCount() == 0 {
		return cadence.ErrClientNotFound
	}
	return nil
}

func (s *Store) DeleteClient(ctx context.Context, clientID id.ClientID) error {
	_, err := s.mdb.NewDelete((*clientModel)(nil)).
		Filter(bson.M{"_id": clientID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: delete client: %w", err)
	}
	return nil
}

// ==================== Document Store ====================

func (s *Store) CreateDocument(ctx context.Context, d *document.Document) error {
	m := toDocumentModel(d)
	_, err := s.mdb.NewInsert(m).Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: create document: %w", err)
	}
	return nil
}

func (s *Store) GetDocument(ctx context.Context, docID id.DocumentID) (*document.Document, error) {
	var m documentModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": docID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, cadence.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("cadence/mongo: get document: %w", err)
	}
	return fromDocumentModel(&m)
}

func (s *Store) ListDocuments(ctx context.Context, opts document.ListOpts) ([]*document.Document, error) {
	var models []documentModel

	filter := bson.M{}
	if opts.Type != "" {
		filter["type"] = string(opts.Type)
	}
	if !opts.RuleID.IsNil() {
		filter["rule_id"] = opts.RuleID.String()
	}
	if !opts.TemplateID.IsNil() {
		filter["template_id"] = opts.TemplateID.String()
	}
	if !opts.ClientID.IsNil() {
		filter["client_id"] = opts.ClientID.String()
	}
	if !opts.IssuedBefore.IsZero() || !opts.IssuedAfter.IsZero() {
		issued := bson.M{}
		if !opts.IssuedBefore.IsZero() {
			issued["$lte"] = opts.IssuedBefore.String()
		}
		if !opts.IssuedAfter.IsZero() {
			issued["$gte"] = opts.IssuedAfter.String()
		}
		filter["issue_date"] = issued
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "issue_date", Value: -1}, {Key: "_id", Value: -1}})

	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}

	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("cadence/mongo: list documents: %w", err)
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
	_, err := s.mdb.NewDelete((*documentModel)(nil)).
		Filter(bson.M{"_id": docID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: delete document: %w", err)
	}
	return nil
}

// ==================== Profile Store ====================

func (s *Store) GetProfile(ctx context.Context) (*profile.Profile, error) {
	var m profileModel
	err := s.mdb.NewFind(&m).
		Sort(bson.D{{Key: "created_at", Value: 1}}).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, cadence.ErrProfileNotFound
		}
		return nil, fmt.Errorf("cadence/mongo: get profile: %w", err)
	}
	return fromProfileModel(&m)
}

func (s *Store) SaveProfile(ctx context.Context, p *profile.Profile) error {
	m := toProfileModel(p)
	m.UpdatedAt = now()

	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"_id":              m.ID,
			"name":             m.Name,
			"tax_id":           m.TaxID,
			"email":            m.Email,
			"phone":            m.Phone,
			"address":          m.Address,
			"currency":         m.Currency,
			"invoice_prefix":   m.InvoicePrefix,
			"quote_prefix":     m.QuotePrefix,
			"next_invoice_seq": m.NextInvoiceSeq,
			"next_quote_seq":   m.NextQuoteSeq,
			"created_at":       m.CreatedAt,
			"updated_at":       m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("cadence/mongo: save profile: %w", err)
	}
	return nil
}

// NextInvoiceNumber consumes the next invoice sequence value and returns it
// formatted. The findAndModify increment is atomic, so two concurrent
// callers can never be handed the same number.
func (s *Store) NextInvoiceNumber(ctx context.Context) (string, error) {
	var m profileModel
	err := s.mdb.Collection(colProfile).FindOneAndUpdate(ctx,
		bson.M{},
		bson.M{
			"$inc": bson.M{"next_invoice_seq": 1},
			"$set": bson.M{"updated_at": now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return "", cadence.ErrProfileNotFound
		}
		return "", fmt.Errorf("cadence/mongo: next invoice number: %w", err)
	}

	p, err := fromProfileModel(&m)
	if err != nil {
		return "", err
	}
	return p.FormatInvoiceNumber(p.NextInvoiceSeq), nil
}

// NextQuoteNumber consumes the next quote sequence value and returns it
// formatted.
func (s *Store) NextQuoteNumber(ctx context.Context) (string, error) {
	var m profileModel
	err := s.mdb.Collection(colProfile).FindOneAndUpdate(ctx,
		bson.M{},
		bson.M{
			"$inc": bson.M{"next_quote_seq": 1},
			"$set": bson.M{"updated_at": now()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.Before),
	).Decode(&m)
	if err != nil {
		if isNoDocuments(err) {
			return "", cadence.ErrProfileNotFound
		}
		return "", fmt.Errorf("cadence/mongo: next quote number: %w", err)
	}

	p, err := fromProfileModel(&m)
	if err != nil {
		return "", err
	}
	return p.FormatQuoteNumber(p.NextQuoteSeq), nil
}

// ==================== Helpers ====================

// now returns the current UTC time.
func now() time.Time {
	return time.Now().UTC()
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all cadence collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colRules: {
			{Keys: bson.D{{Key: "template_id", Value: 1}}},
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "next_due_date", Value: 1}, {Key: "_id", Value: 1}}},
		},
		colTemplates: {
			{Keys: bson.D{{Key: "type", Value: 1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colClients: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
		},
		colDocuments: {
			{Keys: bson.D{{Key: "rule_id", Value: 1}}},
			{Keys: bson.D{{Key: "template_id", Value: 1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "issue_date", Value: -1}}},
			{
				Keys: bson.D{{Key: "type", Value: 1}, {Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"number": bson.M{"$gt": ""}}),
			},
		},
		colProfile: {},
	}
}
