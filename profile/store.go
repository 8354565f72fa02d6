package profile

import "context"

type Store interface {
	Get(ctx context.Context) (*Profile, error)
	Save(ctx context.Context, p *Profile) error

	// NextInvoiceNumber and NextQuoteNumber return the current formatted
	// number and advance the counter in the same call. Not an idempotent
	// peek: every call consumes a number.
	NextInvoiceNumber(ctx context.Context) (string, error)
	NextQuoteNumber(ctx context.Context) (string, error)
}
