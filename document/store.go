package document

import (
	"context"

	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

type Store interface {
	Create(ctx context.Context, d *Document) error
	Get(ctx context.Context, docID id.DocumentID) (*Document, error)
	List(ctx context.Context, opts ListOpts) ([]*Document, error)
	Delete(ctx context.Context, docID id.DocumentID) error
}

// ListOpts filters document listings. Zero values mean "no filter".
// Results are ordered by issue date descending, newest first.
type ListOpts struct {
	Type         Type
	RuleID       id.RuleID
	TemplateID   id.TemplateID
	ClientID     id.ClientID
	IssuedBefore types.Date // inclusive
	IssuedAfter  types.Date // inclusive
	Limit        int
	Offset       int
}
