package template

import (
	"time"

	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

// Template is a reusable blueprint for an invoice or quote. A recurring rule
// references a template and stamps out documents from it.
type Template struct {
	types.Entity
	ID         id.TemplateID `json:"id"`
	Name       string        `json:"name"`
	Type       document.Type `json:"type"`
	Currency   string        `json:"currency"`
	ClientID   id.ClientID   `json:"client_id,omitempty"` // optional default client
	LineItems  []LineItem    `json:"line_items"`
	TaxRateBps int64         `json:"tax_rate_bps"` // 2100 = 21%
	TaxName    string        `json:"tax_name,omitempty"`
	Notes      string        `json:"notes,omitempty"`
	UsageCount int64         `json:"usage_count"`
	LastUsedAt *time.Time    `json:"last_used_at,omitempty"`
}

// LineItem is a billable line carried by a template.
type LineItem struct {
	ID          id.LineItemID `json:"id"`
	Description string        `json:"description"`
	Quantity    int64         `json:"quantity"`
	UnitPrice   types.Money   `json:"unit_price"`
}

// Amount returns the line total, quantity times unit price.
func (li LineItem) Amount() types.Money {
	return li.UnitPrice.Multiply(li.Quantity)
}

// Subtotal sums the line amounts in the template's currency.
func (t *Template) Subtotal() types.Money {
	sum := types.Zero(t.Currency)
	for _, li := range t.LineItems {
		sum = sum.Add(li.Amount())
	}
	return sum
}

// TaxAmount applies the template's tax rate to the already-summed subtotal.
// Rounding happens here, once, not per line.
func (t *Template) TaxAmount() types.Money {
	return t.Subtotal().ApplyBps(t.TaxRateBps)
}

// Total is subtotal plus tax.
func (t *Template) Total() types.Money {
	return t.Subtotal().Add(t.TaxAmount())
}
