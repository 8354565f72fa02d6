package mongo

import (
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

// Dates are stored as ISO "2006-01-02" strings. Lexicographic order equals
// chronological order for that format, so range filters work without
// converting to native timestamps. The empty string stands for "no date".

// ==================== Rule models ====================

type ruleModel struct {
	grove.BaseModel `grove:"table:cadence_rules"`

	ID              string     `grove:"id,pk"                  bson:"_id"`
	TemplateID      string     `grove:"template_id"            bson:"template_id"`
	Name            string     `grove:"name"                   bson:"name"`
	Description     string     `grove:"description"            bson:"description"`
	Frequency       string     `grove:"frequency"              bson:"frequency"`
	DayOfWeek       int        `grove:"day_of_week"            bson:"day_of_week"`
	DayOfMonth      int        `grove:"day_of_month"           bson:"day_of_month"`
	StartDate       string     `grove:"start_date"             bson:"start_date"`
	EndDate         string     `grove:"end_date"               bson:"end_date"`
	NextDueDate     string     `grove:"next_due_date"          bson:"next_due_date"`
	AutoNumbering   bool       `grove:"auto_numbering"         bson:"auto_numbering"`
	Active          bool       `grove:"active"                 bson:"active"`
	LastGeneratedAt *time.Time `grove:"last_generated_at"      bson:"last_generated_at,omitempty"`
	GeneratedDocIDs []string   `grove:"generated_document_ids" bson:"generated_document_ids"`
	CreatedAt       time.Time  `grove:"created_at"             bson:"created_at"`
	UpdatedAt       time.Time  `grove:"updated_at"             bson:"updated_at"`
}

func toRuleModel(r *rule.Rule) *ruleModel {
	docIDs := make([]string, len(r.GeneratedDocumentIDs))
	for i, docID := range r.GeneratedDocumentIDs {
		docIDs[i] = docID.String()
	}

	return &ruleModel{
		ID:              r.ID.String(),
		TemplateID:      r.TemplateID.String(),
		Name:            r.Name,
		Description:     r.Description,
		Frequency:       string(r.Frequency),
		DayOfWeek:       r.DayOfWeek,
		DayOfMonth:      r.DayOfMonth,
		StartDate:       r.StartDate.String(),
		EndDate:         r.EndDate.String(),
		NextDueDate:     r.NextDueDate.String(),
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

	startDate, err := parseDate(m.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(m.EndDate)
	if err != nil {
		return nil, err
	}
	nextDueDate, err := parseDate(m.NextDueDate)
	if err != nil {
		return nil, err
	}

	docIDs := make([]id.DocumentID, 0, len(m.GeneratedDocIDs))
	for _, raw := range m.GeneratedDocIDs {
		docID, err := id.ParseDocumentID(raw)
		if err != nil {
			return nil, err
		}
		docIDs = append(docIDs, docID)
	}
	if len(docIDs) == 0 {
		docIDs = nil
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
		StartDate:            startDate,
		EndDate:              endDate,
		NextDueDate:          nextDueDate,
		AutoNumbering:        m.AutoNumbering,
		Active:               m.Active,
		LastGeneratedAt:      m.LastGeneratedAt,
		GeneratedDocumentIDs: docIDs,
	}, nil
}

// ==================== Template models ====================

type templateModel struct {
	grove.BaseModel `grove:"table:cadence_templates"`

	ID         string          `grove:"id,pk"        bson:"_id"`
	Name       string          `grove:"name"         bson:"name"`
	Type       string          `grove:"type"         bson:"type"`
	Currency   string          `grove:"currency"     bson:"currency"`
	ClientID   string          `grove:"client_id"    bson:"client_id"`
	LineItems  []lineItemModel `grove:"line_items"   bson:"line_items"`
	TaxRateBps int64           `grove:"tax_rate_bps" bson:"tax_rate_bps"`
	TaxName    string          `grove:"tax_name"     bson:"tax_name"`
	Notes      string          `grove:"notes"        bson:"notes"`
	UsageCount int64           `grove:"usage_count"  bson:"usage_count"`
	LastUsedAt *time.Time      `grove:"last_used_at" bson:"last_used_at,omitempty"`
	CreatedAt  time.Time       `grove:"created_at"   bson:"created_at"`
	UpdatedAt  time.Time       `grove:"updated_at"   bson:"updated_at"`
}

type lineItemModel struct {
	ID                string `bson:"id"`
	Description       string `bson:"description"`
	Quantity          int64  `bson:"quantity"`
	UnitPriceCents    int64  `bson:"unit_price_cents"`
	UnitPriceCurrency string `bson:"unit_price_currency"`
	TotalCents        int64  `bson:"total_cents,omitempty"`
}

func toTemplateModel(t *template.Template) *templateModel {
	lineItems := make([]lineItemModel, len(t.LineItems))
	for i, li := range t.LineItems {
		lineItems[i] = lineItemModel{
			ID:                li.ID.String(),
			Description:       li.Description,
			Quantity:          li.Quantity,
			UnitPriceCents:    li.UnitPrice.Amount,
			UnitPriceCurrency: li.UnitPrice.Currency,
		}
	}

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

	lineItems := make([]template.LineItem, len(m.LineItems))
	for i, li := range m.LineItems {
		liID, err := id.ParseLineItemID(li.ID)
		if err != nil {
			return nil, err
		}
		lineItems[i] = template.LineItem{
			ID:          liID,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   types.Money{Amount: li.UnitPriceCents, Currency: li.UnitPriceCurrency},
		}
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

	ID        string    `grove:"id,pk"      bson:"_id"`
	Name      string    `grove:"name"       bson:"name"`
	TaxID     string    `grove:"tax_id"     bson:"tax_id"`
	Email     string    `grove:"email"      bson:"email"`
	Phone     string    `grove:"phone"      bson:"phone"`
	Address   string    `grove:"address"    bson:"address"`
	CreatedAt time.Time `grove:"created_at" bson:"created_at"`
	UpdatedAt time.Time `grove:"updated_at" bson:"updated_at"`
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

	ID            string          `grove:"id,pk"          bson:"_id"`
	Type          string          `grove:"type"           bson:"type"`
	Number        string          `grove:"number"         bson:"number"`
	IssueDate     string          `grove:"issue_date"     bson:"issue_date"`
	TemplateID    string          `grove:"template_id"    bson:"template_id"`
	RuleID        string          `grove:"rule_id"        bson:"rule_id"`
	ClientID      string          `grove:"client_id"      bson:"client_id"`
	ClientName    string          `grove:"client_name"    bson:"client_name"`
	ClientTaxID   string          `grove:"client_tax_id"  bson:"client_tax_id"`
	ClientEmail   string          `grove:"client_email"   bson:"client_email"`
	ClientAddress string          `grove:"client_address" bson:"client_address"`
	Currency      string          `grove:"currency"       bson:"currency"`
	LineItems     []lineItemModel `grove:"line_items"     bson:"line_items"`
	SubtotalCents int64           `grove:"subtotal_cents" bson:"subtotal_cents"`
	TaxCents      int64           `grove:"tax_cents"      bson:"tax_cents"`
	TaxName       string          `grove:"tax_name"       bson:"tax_name"`
	TotalCents    int64           `grove:"total_cents"    bson:"total_cents"`
	Notes         string          `grove:"notes"          bson:"notes"`
	PDFRef        string          `grove:"pdf_ref"        bson:"pdf_ref"`
	CreatedAt     time.Time       `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"     bson:"updated_at"`
}

func toDocumentModel(d *document.Document) *documentModel {
	lineItems := make([]lineItemModel, len(d.LineItems))
	for i, li := range d.LineItems {
		lineItems[i] = lineItemModel{
			ID:                li.ID.String(),
			Description:       li.Description,
			Quantity:          li.Quantity,
			UnitPriceCents:    li.UnitPrice.Amount,
			UnitPriceCurrency: li.UnitPrice.Currency,
			TotalCents:        li.Total.Amount,
		}
	}

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
		IssueDate:     d.IssueDate.String(),
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

	issueDate, err := parseDate(m.IssueDate)
	if err != nil {
		return nil, err
	}

	lineItems := make([]document.LineItem, len(m.LineItems))
	for i, li := range m.LineItems {
		liID, err := id.ParseLineItemID(li.ID)
		if err != nil {
			return nil, err
		}
		lineItems[i] = document.LineItem{
			ID:          liID,
			Description: li.Description,
			Quantity:    li.Quantity,
			UnitPrice:   types.Money{Amount: li.UnitPriceCents, Currency: li.UnitPriceCurrency},
			Total:       types.Money{Amount: li.TotalCents, Currency: li.UnitPriceCurrency},
		}
	}

	return &document.Document{
		Entity: types.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:            docID,
		Type:          document.Type(m.Type),
		Number:        m.Number,
		IssueDate:     issueDate,
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

	ID             string    `grove:"id,pk"            bson:"_id"`
	Name           string    `grove:"name"             bson:"name"`
	TaxID          string    `grove:"tax_id"           bson:"tax_id"`
	Email          string    `grove:"email"            bson:"email"`
	Phone          string    `grove:"phone"            bson:"phone"`
	Address        string    `grove:"address"          bson:"address"`
	Currency       string    `grove:"currency"         bson:"currency"`
	InvoicePrefix  string    `grove:"invoice_prefix"   bson:"invoice_prefix"`
	QuotePrefix    string    `grove:"quote_prefix"     bson:"quote_prefix"`
	NextInvoiceSeq int64     `grove:"next_invoice_seq" bson:"next_invoice_seq"`
	NextQuoteSeq   int64     `grove:"next_quote_seq"   bson:"next_quote_seq"`
	CreatedAt      time.Time `grove:"created_at"       bson:"created_at"`
	UpdatedAt      time.Time `grove:"updated_at"       bson:"updated_at"`
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

// parseDate converts a stored ISO date string back to a Date. The empty
// string maps to the zero Date.
func parseDate(s string) (types.Date, error) {
	if s == "" {
		return types.Date{}, nil
	}
	return types.ParseDate(s)
}
