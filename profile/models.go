package profile

import (
	"fmt"

	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

// Default numbering prefixes used when the profile leaves them blank.
const (
	DefaultInvoicePrefix = "INV-"
	DefaultQuotePrefix   = "QUO-"
)

// Profile is the single business profile. It carries the letterhead fields
// stamped onto documents plus the document numbering counters.
//
// NextInvoiceSeq/NextQuoteSeq are the counters behind auto numbering: the
// store hands out the current value and increments, take-a-ticket style, so
// a number once issued is never issued again even when the document it was
// minted for fails to persist.
type Profile struct {
	types.Entity
	ID             id.ProfileID `json:"id"`
	Name           string       `json:"name"`
	TaxID          string       `json:"tax_id,omitempty"`
	Email          string       `json:"email,omitempty"`
	Phone          string       `json:"phone,omitempty"`
	Address        string       `json:"address,omitempty"`
	Currency       string       `json:"currency,omitempty"`
	InvoicePrefix  string       `json:"invoice_prefix,omitempty"`
	QuotePrefix    string       `json:"quote_prefix,omitempty"`
	NextInvoiceSeq int64        `json:"next_invoice_seq"`
	NextQuoteSeq   int64        `json:"next_quote_seq"`
}

// New returns a profile with a fresh ID and counters starting at 1.
func New(name string) *Profile {
	return &Profile{
		Entity:         types.NewEntity(),
		ID:             id.NewProfileID(),
		Name:           name,
		NextInvoiceSeq: 1,
		NextQuoteSeq:   1,
	}
}

// FormatInvoiceNumber renders a sequence value as a display number,
// e.g. "INV-0042".
func (p *Profile) FormatInvoiceNumber(seq int64) string {
	prefix := p.InvoicePrefix
	if prefix == "" {
		prefix = DefaultInvoicePrefix
	}
	return fmt.Sprintf("%s%04d", prefix, seq)
}

// FormatQuoteNumber renders a sequence value as a display number,
// e.g. "QUO-0007".
func (p *Profile) FormatQuoteNumber(seq int64) string {
	prefix := p.QuotePrefix
	if prefix == "" {
		prefix = DefaultQuotePrefix
	}
	return fmt.Sprintf("%s%04d", prefix, seq)
}
