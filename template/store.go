package template

import (
	"context"
	"time"

	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
)

type Store interface {
	Create(ctx context.Context, t *Template) error
	Get(ctx context.Context, templateID id.TemplateID) (*Template, error)
	List(ctx context.Context, opts ListOpts) ([]*Template, error)
	Update(ctx context.Context, t *Template) error
	Delete(ctx context.Context, templateID id.TemplateID) error

	// RecordUsage increments the usage counter and stamps last_used_at.
	RecordUsage(ctx context.Context, templateID id.TemplateID, usedAt time.Time) error
}

// ListOpts filters template listings. Zero values mean "no filter".
type ListOpts struct {
	Type     document.Type
	ClientID id.ClientID
	Search   string // case-insensitive substring over name
	Limit    int
	Offset   int
}
