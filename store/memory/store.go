package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xraph/cadence"
	"github.com/xraph/cadence/client"
	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/profile"
	"github.com/xraph/cadence/rule"
	"github.com/xraph/cadence/template"
	"github.com/xraph/cadence/types"
)

type Store struct {
	mu sync.RWMutex

	// Rule storage
	rules map[string]*rule.Rule

	// Template storage
	templates map[string]*template.Template

	// Client storage
	clients map[string]*client.Client

	// Document storage
	documents map[string]*document.Document

	// Business profile (single record)
	profile *profile.Profile
}

func New() *Store {
	return &Store{
		rules:     make(map[string]*rule.Rule),
		templates: make(map[string]*template.Template),
		clients:   make(map[string]*client.Client),
		documents: make(map[string]*document.Document),
	}
}

// Rule Store implementation
func (s *Store) CreateRule(_ context.Context, r *rule.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[r.ID.String()]; exists {
		return cadence.ErrAlreadyExists
	}
	s.rules[r.ID.String()] = r
	return nil
}

func (s *Store) GetRule(_ context.Context, ruleID id.RuleID) (*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if r, ok := s.rules[ruleID.String()]; ok {
		return r, nil
	}
	return nil, cadence.ErrRuleNotFound
}

func (s *Store) ListRules(_ context.Context, opts rule.ListOpts) ([]*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*rule.Rule, 0)
	for _, r := range s.rules {
		if ruleMatches(r, opts) {
			result = append(result, r)
		}
	}

	sortRules(result, opts.SortBy, opts.Ascending)

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateRule(_ context.Context, r *rule.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.rules[r.ID.String()]; !exists {
		return cadence.ErrRuleNotFound
	}
	s.rules[r.ID.String()] = r
	return nil
}

func (s *Store) DeleteRule(_ context.Context, ruleID id.RuleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.rules, ruleID.String())
	return nil
}

func (s *Store) DueRules(_ context.Context, asOf types.Date) ([]*rule.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*rule.Rule, 0)
	for _, r := range s.rules {
		if r.IsDue(asOf) {
			result = append(result, r)
		}
	}

	// Fixed processing order: due date first, id as tie-break.
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].NextDueDate.Compare(result[j].NextDueDate); c != 0 {
			return c < 0
		}
		return result[i].ID.String() < result[j].ID.String()
	})

	return result, nil
}

func ruleMatches(r *rule.Rule, opts rule.ListOpts) bool {
	if !opts.TemplateID.IsNil() && r.TemplateID != opts.TemplateID {
		return false
	}
	if opts.Frequency != "" && r.Frequency != opts.Frequency {
		return false
	}
	if opts.Active != nil && r.Active != *opts.Active {
		return false
	}
	if !opts.DueBefore.IsZero() && r.NextDueDate.After(opts.DueBefore) {
		return false
	}
	if !opts.DueAfter.IsZero() && r.NextDueDate.Before(opts.DueAfter) {
		return false
	}
	if opts.Search != "" {
		needle := strings.ToLower(opts.Search)
		if !strings.Contains(strings.ToLower(r.Name), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			return false
		}
	}
	return true
}

func sortRules(rules []*rule.Rule, key rule.SortKey, ascending bool) {
	less := func(a, b *rule.Rule) int {
		switch key {
		case rule.SortByName:
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case rule.SortByLastGeneratedAt:
			return timePtrCompare(a.LastGeneratedAt, b.LastGeneratedAt)
		case rule.SortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		default:
			return a.NextDueDate.Compare(b.NextDueDate)
		}
	}

	sort.Slice(rules, func(i, j int) bool {
		c := less(rules[i], rules[j])
		if c == 0 {
			// Stable tie-break regardless of direction.
			return rules[i].ID.String() < rules[j].ID.String()
		}
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

func timePtrCompare(a, b *time.Time) int {
	var at, bt time.Time
	if a != nil {
		at = *a
	}
	if b != nil {
		bt = *b
	}
	return at.Compare(bt)
}

// Template Store implementation
func (s *Store) CreateTemplate(_ context.Context, t *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.templates[t.ID.String()]; exists {
		return cadence.ErrAlreadyExists
	}
	s.templates[t.ID.String()] = t
	return nil
}

func (s *Store) GetTemplate(_ context.Context, templateID id.TemplateID) (*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if t, ok := s.templates[templateID.String()]; ok {
		return t, nil
	}
	return nil, cadence.ErrTemplateNotFound
}

func (s *Store) ListTemplates(_ context.Context, opts template.ListOpts) ([]*template.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*template.Template, 0)
	for _, t := range s.templates {
		if opts.Type != "" && t.Type != opts.Type {
			continue
		}
		if !opts.ClientID.IsNil() && t.ClientID != opts.ClientID {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(opts.Search)) {
			continue
		}
		result = append(result, t)
	}

	sort.Slice(result, func(i, j int) bool {
		if c := strings.Compare(strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)); c != 0 {
			return c < 0
		}
		return result[i].ID.String() < result[j].ID.String()
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateTemplate(_ context.Context, t *template.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.templates[t.ID.String()]; !exists {
		return cadence.ErrTemplateNotFound
	}
	s.templates[t.ID.String()] = t
	return nil
}

func (s *Store) DeleteTemplate(_ context.Context, templateID id.TemplateID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.templates, templateID.String())
	return nil
}

func (s *Store) RecordTemplateUsage(_ context.Context, templateID id.TemplateID, usedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[templateID.String()]
	if !ok {
		return cadence.ErrTemplateNotFound
	}
	t.UsageCount++
	used := usedAt
	t.LastUsedAt = &used
	t.Touch()
	return nil
}

// Client Store implementation
func (s *Store) CreateClient(_ context.Context, c *client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[c.ID.String()]; exists {
		return cadence.ErrAlreadyExists
	}
	s.clients[c.ID.String()] = c
	return nil
}

func (s *Store) GetClient(_ context.Context, clientID id.ClientID) (*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.clients[clientID.String()]; ok {
		return c, nil
	}
	return nil, cadence.ErrClientNotFound
}

func (s *Store) ListClients(_ context.Context, opts client.ListOpts) ([]*client.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*client.Client, 0)
	for _, c := range s.clients {
		if opts.Search != "" {
			needle := strings.ToLower(opts.Search)
			if !strings.Contains(strings.ToLower(c.Name), needle) &&
				!strings.Contains(strings.ToLower(c.Email), needle) {
				continue
			}
		}
		result = append(result, c)
	}

	sort.Slice(result, func(i, j int) bool {
		if c := strings.Compare(strings.ToLower(result[i].Name), strings.ToLower(result[j].Name)); c != 0 {
			return c < 0
		}
		return result[i].ID.String() < result[j].ID.String()
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) UpdateClient(_ context.Context, c *client.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.clients[c.ID.String()]; !exists {
		return cadence.ErrClientNotFound
	}
	s.clients[c.ID.String()] = c
	return nil
}

func (s *Store) DeleteClient(_ context.Context, clientID id.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.clients, clientID.String())
	return nil
}

// Document Store implementation
func (s *Store) CreateDocument(_ context.Context, d *document.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[d.ID.String()]; exists {
		return cadence.ErrAlreadyExists
	}
	s.documents[d.ID.String()] = d
	return nil
}

func (s *Store) GetDocument(_ context.Context, docID id.DocumentID) (*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if d, ok := s.documents[docID.String()]; ok {
		return d, nil
	}
	return nil, cadence.ErrDocumentNotFound
}

func (s *Store) ListDocuments(_ context.Context, opts document.ListOpts) ([]*document.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*document.Document, 0)
	for _, d := range s.documents {
		if opts.Type != "" && d.Type != opts.Type {
			continue
		}
		if !opts.RuleID.IsNil() && d.RuleID != opts.RuleID {
			continue
		}
		if !opts.TemplateID.IsNil() && d.TemplateID != opts.TemplateID {
			continue
		}
		if !opts.ClientID.IsNil() && d.ClientID != opts.ClientID {
			continue
		}
		if !opts.IssuedBefore.IsZero() && d.IssueDate.After(opts.IssuedBefore) {
			continue
		}
		if !opts.IssuedAfter.IsZero() && d.IssueDate.Before(opts.IssuedAfter) {
			continue
		}
		result = append(result, d)
	}

	// Newest first.
	sort.Slice(result, func(i, j int) bool {
		if c := result[i].IssueDate.Compare(result[j].IssueDate); c != 0 {
			return c > 0
		}
		return result[i].ID.String() > result[j].ID.String()
	})

	return paginate(result, opts.Offset, opts.Limit), nil
}

func (s *Store) DeleteDocument(_ context.Context, docID id.DocumentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, docID.String())
	return nil
}

// Profile and numbering
func (s *Store) GetProfile(_ context.Context) (*profile.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.profile == nil {
		return nil, cadence.ErrProfileNotFound
	}
	return s.profile, nil
}

func (s *Store) SaveProfile(_ context.Context, p *profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile = p
	return nil
}

func (s *Store) NextInvoiceNumber(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return "", cadence.ErrProfileNotFound
	}
	number := s.profile.FormatInvoiceNumber(s.profile.NextInvoiceSeq)
	s.profile.NextInvoiceSeq++
	s.profile.Touch()
	return number, nil
}

func (s *Store) NextQuoteNumber(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.profile == nil {
		return "", cadence.ErrProfileNotFound
	}
	number := s.profile.FormatQuoteNumber(s.profile.NextQuoteSeq)
	s.profile.NextQuoteSeq++
	s.profile.Touch()
	return number, nil
}

// Store management
func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}

// Helper functions
func paginate[T any](items []T, offset, limit int) []T {
	start := offset
	if start > len(items) {
		start = len(items)
	}
	end := start + limit
	if limit == 0 || end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
