package profile_test

import (
	"testing"

	"github.com/xraph/cadence/profile"
)

func TestFormatNumbers(t *testing.T) {
	tests := []struct {
		name        string
		p           profile.Profile
		invoiceSeq  int64
		wantInvoice string
		quoteSeq    int64
		wantQuote   string
	}{
		{"defaults", profile.Profile{}, 42, "INV-0042", 7, "QUO-0007"},
		{
			"custom prefixes",
			profile.Profile{InvoicePrefix: "ACME/", QuotePrefix: "Q"},
			1, "ACME/0001", 123, "Q0123",
		},
		{"wide sequence", profile.Profile{}, 12345, "INV-12345", 99999, "QUO-99999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.FormatInvoiceNumber(tt.invoiceSeq); got != tt.wantInvoice {
				t.Errorf("FormatInvoiceNumber(%d): got %q, want %q", tt.invoiceSeq, got, tt.wantInvoice)
			}
			if got := tt.p.FormatQuoteNumber(tt.quoteSeq); got != tt.wantQuote {
				t.Errorf("FormatQuoteNumber(%d): got %q, want %q", tt.quoteSeq, got, tt.wantQuote)
			}
		})
	}
}

func TestNew(t *testing.T) {
	p := profile.New("Acme Studio")
	if p.ID.IsNil() {
		t.Error("expected fresh profile ID")
	}
	if p.NextInvoiceSeq != 1 || p.NextQuoteSeq != 1 {
		t.Errorf("counters should start at 1, got %d/%d", p.NextInvoiceSeq, p.NextQuoteSeq)
	}
}
