package store

import (
	"context"
	"time"

	"github.com/xraph/cadence/client"
	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/profile"
	"github.com/xraph/cadence/rule"
	"github.com/xraph/cadence/template"
	"github.com/xraph/cadence/types"
)

// Store is the unified storage interface for all Cadence entities.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
type Store interface {
	// Rule methods
	CreateRule(ctx context.Context, r *rule.Rule) error
	GetRule(ctx context.Context, ruleID id.RuleID) (*rule.Rule, error)
	ListRules(ctx context.Context, opts rule.ListOpts) ([]*rule.Rule, error)
	UpdateRule(ctx context.Context, r *rule.Rule) error
	DeleteRule(ctx context.Context, ruleID id.RuleID) error
	DueRules(ctx context.Context, asOf types.Date) ([]*rule.Rule, error)

	// Template methods
	CreateTemplate(ctx context.Context, t *template.Template) error
	GetTemplate(ctx context.Context, templateID id.TemplateID) (*template.Template, error)
	ListTemplates(ctx context.Context, opts template.ListOpts) ([]*template.Template, error)
	UpdateTemplate(ctx context.Context, t *template.Template) error
	DeleteTemplate(ctx context.Context, templateID id.TemplateID) error
	RecordTemplateUsage(ctx context.Context, templateID id.TemplateID, usedAt time.Time) error

	// Client methods
	CreateClient(ctx context.Context, c *client.Client) error
	GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error)
	ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error)
	UpdateClient(ctx context.Context, c *client.Client) error
	DeleteClient(ctx context.Context, clientID id.ClientID) error

	// Document methods
	CreateDocument(ctx context.Context, d *document.Document) error
	GetDocument(ctx context.Context, docID id.DocumentID) (*document.Document, error)
	ListDocuments(ctx context.Context, opts document.ListOpts) ([]*document.Document, error)
	DeleteDocument(ctx context.Context, docID id.DocumentID) error

	// Profile and numbering methods
	GetProfile(ctx context.Context) (*profile.Profile, error)
	SaveProfile(ctx context.Context, p *profile.Profile) error
	NextInvoiceNumber(ctx context.Context) (string, error)
	NextQuoteNumber(ctx context.Context) (string, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
