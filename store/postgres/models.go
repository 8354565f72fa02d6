package postgres

import (
	"encoding/json"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/cadence/client"
	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/profile"
	"github.com/xraph/cadence/rule"
	"github.com/xraph/cadence/template"
	"github.com/xraph/cadence/types"
)

// ==================== Rule models ====================

type ruleModel struct {
	grove.BaseModel `grove:"table:cadence_rules"`

	ID              string          `grove:"id,pk"`
	TemplateID      string          `grove:"template_id"`
	Name            string          `grove:"name"`
	Description     string          `grove:"description"`
	Frequency       string          `grove:"frequency"`
	DayOfWeek       int             `grove:"day_of_week"`
	DayOfMonth      int             `grove:"day_of_month"`
	StartDate       types.Date      `grove:"start_date"`
	EndDate         types.Date      `grove:"end_date"`
	NextDueDate     types.Date      `grove:"next_due_date"`
	AutoNumbering   bool            `grove:"auto_numbering"`
	Active          bool            `grove:"active"`
	LastGeneratedAt *time.Time      `grove:"last_generated_at"`
	GeneratedDocIDs json.RawMessage `grove:"generated_document_ids,type:jsonb"`
	CreatedAt       time.Time       `grove:"created_at"`
	UpdatedAt       time.Time       `grove:"updated_at"`
}

func toRuleModel(r *rule.Rule) *ruleModel {
	docIDs, _ := json.Marshal(r.GeneratedDocumentIDs) //nolint:errcheck // best-effort

	return &ruleModel{
		ID:              r.ID.String(),
		TemplateID:      r.TemplateID.String(),
		Name:            r.Name,
		Description:     r.Description,
		Frequency:       string(r.Frequency),
		DayOfWeek:       r.DayOfWeek,
		DayOfMonth:      r.DayOfMonth,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		NextDueDate:     r.NextDueDate,
		AutoNumbering:   r.AutoNumbering,
		Active:          r.Active,
		LastGeneratedAt: r.LastGeneratedAt,
		GeneratedDocIDs: docIDs,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func fromRuleModel(m *ruleModel) (*rule.Rule, error) {
	ruleID, err := id.ParseRuleID(m.ID)
	if err != nil {
		return nil, err
	}
	templateID, err := id.ParseTemplateID(m.TemplateID)
	if err != nil {
		return nil, err
	}

	var docIDs []id.DocumentID
	if len(m.GeneratedDocIDs) > 0 {
		_ = json.Unmarshal(m.GeneratedDocIDs, &docIDs) //nolint:errcheck // best-effort
	}

	return &rule.Rule{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:                   ruleID,
		TemplateID:           templateID,
		Name:                 m.Name,
		Description:          m.Description,
		Frequency:            rule.Frequency(m.Frequency),
		DayOfWeek:            m.DayOfWeek,
		DayOfMonth:           m.DayOfMonth,
		StartDate:            m.StartDate,
		EndDate:              m.EndDate,
		NextDueDate:          m.NextDueDate,
		AutoNumbering:        m.AutoNumbering,
		Active:               m.Active,
		LastGeneratedAt:      m.LastGeneratedAt,
		GeneratedDocumentIDs: docIDs,
	}, nil
}

// ==================== Template models ====================

type templateModel struct {
	grove.BaseModel `grove:"table:cadence_templates"`

	ID         string          `grove:"id,pk"`
	Name       string          `grove:"name"`
	Type       string          `grove:"type"`
	Currency   string          `grove:"currency"`
	ClientID   string          `grove:"client_id"`
	LineItems  json.RawMessage `grove:"line_items,type:jsonb"`
	TaxRateBps int64           `grove:"tax_rate_bps"`
	TaxName    string          `grove:"tax_name"`
	Notes      string          `grove:"notes"`
	UsageCount int64           `grove:"usage_count"`
	LastUsedAt *time.Time      `grove:"last_used_at"`
	CreatedAt  time.Time       `grove:"created_at"`
	UpdatedAt  time.Time       `grove:"updated_at"`
}

func toTemplateModel(t *template.Template) *templateModel {
	lineItems, _ := json.Marshal(t.LineItems) //nolint:errcheck // best-effort

	var clientID string
	if !t.ClientID.IsNil() {
		clientID = t.ClientID.String()
	}

	return &templateModel{
		ID:         t.ID.String(),
		Name:       t.Name,
		Type:       string(t.Type),
		Currency:   t.Currency,
		ClientID:   clientID,
		LineItems:  lineItems,
		TaxRateBps: t.TaxRateBps,
		TaxName:    t.TaxName,
		Notes:      t.Notes,
		UsageCount: t.UsageCount,
		LastUsedAt: t.LastUsedAt,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func fromTemplateModel(m *templateModel) (*template.Template, error) {
	templateID, err := id.ParseTemplateID(m.ID)
	if err != nil {
		return nil, err
	}

	var clientID id.ClientID
	if m.ClientID != "" {
		clientID, err = id.ParseClientID(m.ClientID)
		if err != nil {
			return nil, err
		}
	}

	var lineItems []template.LineItem
	if len(m.LineItems) > 0 {
		_ = json.Unmarshal(m.LineItems, &lineItems) //nolint:errcheck // best-effort
	}

	return &template.Template{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:         templateID,
		Name:       m.Name,
		Type:       document.Type(m.Type),
		Currency:   m.Currency,
		ClientID:   clientID,
		LineItems:  lineItems,
		TaxRateBps: m.TaxRateBps,
		TaxName:    m.TaxName,
		Notes:      m.Notes,
		UsageCount: m.UsageCount,
		LastUsedAt: m.LastUsedAt,
	}, nil
}

// ==================== Client models ====================

type clientModel struct {
	grove.BaseModel `grove:"table:cadence_clients"`

	ID        string    `grove:"id,pk"`
	Name      string    `grove:"name"`
	TaxID     string    `grove:"tax_id"`
	Email     string    `grove:"email"`
	Phone     string    `grove:"phone"`
	Address   string    `grove:"address"`
	CreatedAt time.Time `grove:"created_at"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toClientModel(c *client.Client) *clientModel {
	return &clientModel{
		ID:        c.ID.String(),
		Name:      c.Name,
		TaxID:     c.TaxID,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func fromClientModel(m *clientModel) (*client.Client, error) {
	clientID, err := id.ParseClientID(m.ID)
	if err != nil {
		return nil, err
	}

	return &client.Client{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:      clientID,
		Name:    m.Name,
		TaxID:   m.TaxID,
		Email:   m.Email,
		Phone:   m.Phone,
		Address: m.Address,
	}, nil
}

// ==================== Document models ====================

type documentModel struct {
	grove.BaseModel `grove:"table:cadence_documents"`

	ID            string          `grove:"id,pk"`
	Type          string          `grove:"type"`
	Number        string          `grove:"number"`
	IssueDate     types.Date      `grove:"issue_date"`
	TemplateID    string          `grove:"template_id"`
	RuleID        string          `grove:"rule_id"`
	ClientID      string          `grove:"client_id"`
	ClientName    string          `grove:"client_name"`
	ClientTaxID   string          `grove:"client_tax_id"`
	ClientEmail   string          `grove:"client_email"`
	ClientAddress string          `grove:"client_address"`
	Currency      string          `grove:"currency"`
	LineItems     json.RawMessage `grove:"line_items,type:jsonb"`
	SubtotalCents int64           `grove:"subtotal_cents"`
	TaxCents      int64           `grove:"tax_cents"`
	TaxName       string          `grove:"tax_name"`
	TotalCents    int64           `grove:"total_cents"`
	Notes         string          `grove:"notes"`
	PDFRef        string          `grove:"pdf_ref"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toDocumentModel(d *document.Document) *documentModel {
	lineItems, _ := json.Marshal(d.LineItems) //nolint:errcheck // best-effort

	var ruleID string
	if !d.RuleID.IsNil() {
		ruleID = d.RuleID.String()
	}
	var clientID string
	if !d.ClientID.IsNil() {
		clientID = d.ClientID.String()
	}

	return &documentModel{
		ID:            d.ID.String(),
		Type:          string(d.Type),
		Number:        d.Number,
		IssueDate:     d.IssueDate,
		TemplateID:    d.TemplateID.String(),
		RuleID:        ruleID,
		ClientID:      clientID,
		ClientName:    d.ClientName,
		ClientTaxID:   d.ClientTaxID,
		ClientEmail:   d.ClientEmail,
		ClientAddress: d.ClientAddress,
		Currency:      d.Currency,
		LineItems:     lineItems,
		SubtotalCents: d.Subtotal.Amount,
		TaxCents:      d.Tax.Amount,
		TaxName:       d.TaxName,
		TotalCents:    d.Total.Amount,
		Notes:         d.Notes,
		PDFRef:        d.PDFRef,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func fromDocumentModel(m *documentModel) (*document.Document, error) {
	docID, err := id.ParseDocumentID(m.ID)
	if err != nil {
		return nil, err
	}
	templateID, err := id.ParseTemplateID(m.TemplateID)
	if err != nil {
		return nil, err
	}

	var ruleID id.RuleID
	if m.RuleID != "" {
		ruleID, err = id.ParseRuleID(m.RuleID)
		if err != nil {
			return nil, err
		}
	}
	var clientID id.ClientID
	if m.ClientID != "" {
		clientID, err = id.ParseClientID(m.ClientID)
		if err != nil {
			return nil, err
		}
	}

	var lineItems []document.LineItem
	if len(m.LineItems) > 0 {
		_ = json.Unmarshal(m.LineItems, &lineItems) //nolint:errcheck // best-effort
	}

	return &document.Document{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            docID,
		Type:          document.Type(m.Type),
		Number:        m.Number,
		IssueDate:     m.IssueDate,
		TemplateID:    templateID,
		RuleID:        ruleID,
		ClientID:      clientID,
		ClientName:    m.ClientName,
		ClientTaxID:   m.ClientTaxID,
		ClientEmail:   m.ClientEmail,
		ClientAddress: m.ClientAddress,
		Currency:      m.Currency,
		LineItems:     lineItems,
		Subtotal:      types.Money{Amount: m.SubtotalCents, Currency: m.Currency},
		Tax:           types.Money{Amount: m.TaxCents, Currency: m.Currency},
		TaxName:       m.TaxName,
		Total:         types.Money{Amount: m.TotalCents, Currency: m.Currency},
		Notes:         m.Notes,
		PDFRef:        m.PDFRef,
	}, nil
}

// ==================== Profile models ====================

type profileModel struct {
	grove.BaseModel `grove:"table:cadence_profile"`

	ID             string    `grove:"id,pk"`
	Name           string    `grove:"name"`
	TaxID          string    `grove:"tax_id"`
	Email          string    `grove:"email"`
	Phone          string    `grove:"phone"`
	Address        string    `grove:"address"`
	Currency       string    `grove:"currency"`
	InvoicePrefix  string    `grove:"invoice_prefix"`
	QuotePrefix    string    `grove:"quote_prefix"`
	NextInvoiceSeq int64     `grove:"next_invoice_seq"`
	NextQuoteSeq   int64     `grove:"next_quote_seq"`
	CreatedAt      time.Time `grove:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"`
}

func toProfileModel(p *profile.Profile) *profileModel {
	return &profileModel{
		ID:             p.ID.String(),
		Name:           p.Name,
		TaxID:          p.TaxID,
		Email:          p.Email,
		Phone:          p.Phone,
		Address:        p.Address,
		Currency:       p.Currency,
		InvoicePrefix:  p.InvoicePrefix,
		QuotePrefix:    p.QuotePrefix,
		NextInvoiceSeq: p.NextInvoiceSeq,
		NextQuoteSeq:   p.NextQuoteSeq,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func fromProfileModel(m *profileModel) (*profile.Profile, error) {
	profileID, err := id.ParseProfileID(m.ID)
	if err != nil {
		return nil, err
	}

	return &profile.Profile{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:             profileID,
		Name:           m.Name,
		TaxID:          m.TaxID,
		Email:          m.Email,
		Phone:          m.Phone,
		Address:        m.Address,
		Currency:       m.Currency,
		InvoicePrefix:  m.InvoicePrefix,
		QuotePrefix:    m.QuotePrefix,
		NextInvoiceSeq: m.NextInvoiceSeq,
		NextQuoteSeq:   m.NextQuoteSeq,
	}, nil
}
