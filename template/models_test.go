package template_test

import (
	"testing"

	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/template"
	"github.com/xraph/cadence/types"
)

func TestTemplateTotals(t *testing.T) {
	tests := []struct {
		name     string
		tpl      template.Template
		subtotal types.Money
		tax      types.Money
		total    types.Money
	}{
		{
			"two lines with 21% tax",
			template.Template{
				Currency:   "eur",
				TaxRateBps: 2100,
				LineItems: []template.LineItem{
					{Description: "Consulting", Quantity: 10, UnitPrice: types.EUR(9500)},
					{Description: "Hosting", Quantity: 1, UnitPrice: types.EUR(2500)},
				},
			},
			types.EUR(97500), types.EUR(20475), types.EUR(117975),
		},
		{
			"tax rounds once on the subtotal",
			template.Template{
				Currency:   "usd",
				TaxRateBps: 2100,
				// Per-line tax would be 5.25 + 5.25 -> 5 + 5 = 10 with
				// half-up rounding; on the summed subtotal it is 10.5 -> 11.
				LineItems: []template.LineItem{
					{Quantity: 1, UnitPrice: types.USD(25)},
					{Quantity: 1, UnitPrice: types.USD(25)},
				},
			},
			types.USD(50), types.USD(11), types.USD(61),
		},
		{
			"no lines",
			template.Template{Currency: "usd", TaxRateBps: 1600},
			types.USD(0), types.USD(0), types.USD(0),
		},
		{
			"zero tax rate",
			template.Template{
				Currency:  "mxn",
				LineItems: []template.LineItem{{Quantity: 3, UnitPrice: types.MXN(1000)}},
			},
			types.MXN(3000), types.MXN(0), types.MXN(3000),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.tpl.Subtotal(); !got.Equal(tt.subtotal) {
				t.Errorf("Subtotal: got %v, want %v", got, tt.subtotal)
			}
			if got := tt.tpl.TaxAmount(); !got.Equal(tt.tax) {
				t.Errorf("TaxAmount: got %v, want %v", got, tt.tax)
			}
			if got := tt.tpl.Total(); !got.Equal(tt.total) {
				t.Errorf("Total: got %v, want %v", got, tt.total)
			}
		})
	}
}

func TestLineItemAmount(t *testing.T) {
	li := template.LineItem{
		ID:          id.NewLineItemID(),
		Description: "Design work",
		Quantity:    4,
		UnitPrice:   types.USD(12500),
	}
	if got := li.Amount(); !got.Equal(types.USD(50000)) {
		t.Errorf("Amount: got %v, want %v", got, types.USD(50000))
	}
}

func TestDocumentTypeValid(t *testing.T) {
	if !document.TypeInvoice.Valid() || !document.TypeQuote.Valid() {
		t.Error("invoice and quote must be valid types")
	}
	if document.Type("receipt").Valid() {
		t.Error("unknown type must be invalid")
	}
}
