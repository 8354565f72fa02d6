package document

import (
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

// Type distinguishes the two document kinds Cadence generates.
type Type string

const (
	TypeInvoice Type = "invoice"
	TypeQuote   Type = "quote"
)

// Valid reports whether t is a supported document type.
func (t Type) Valid() bool {
	return t == TypeInvoice || t == TypeQuote
}

// Document is a generated invoice or quote. It is a point-in-time snapshot:
// client fields and line items are copied from their sources at generation
// time and never updated afterwards.
type Document struct {
	types.Entity
	ID            id.DocumentID `json:"id"`
	Type          Type          `json:"type"`
	Number        string        `json:"number,omitempty"`
	IssueDate     types.Date    `json:"issue_date"`
	TemplateID    id.TemplateID `json:"template_id"`
	RuleID        id.RuleID     `json:"rule_id,omitempty"`
	ClientID      id.ClientID   `json:"client_id,omitempty"`
	ClientName    string        `json:"client_name,omitempty"`
	ClientTaxID   string        `json:"client_tax_id,omitempty"`
	ClientEmail   string        `json:"client_email,omitempty"`
	ClientAddress string        `json:"client_address,omitempty"`
	Currency      string        `json:"currency"`
	LineItems     []LineItem    `json:"line_items"`
	Subtotal      types.Money   `json:"subtotal"`
	Tax           types.Money   `json:"tax"`
	TaxName       string        `json:"tax_name,omitempty"`
	Total         types.Money   `json:"total"`
	Notes         string        `json:"notes,omitempty"`
	PDFRef        string        `json:"pdf_ref,omitempty"` // empty until rendered out of band
}

// LineItem is a billed line frozen into the document.
type LineItem struct {
	ID          id.LineItemID `json:"id"`
	Description string        `json:"description"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   types.Money   `json:"unit_price"`
	Total       types.Money   `json:"total"`
}
