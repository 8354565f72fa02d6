package client

import (
	"context"

	"github.com/xraph/cadence/id"
)

type Store interface {
	Create(ctx context.Context, c *Client) error
	Get(ctx context.Context, clientID id.ClientID) (*Client, error)
	List(ctx context.Context, opts ListOpts) ([]*Client, error)
	Update(ctx context.Context, c *Client) error
	Delete(ctx context.Context, clientID id.ClientID) error
}

// ListOpts filters client listings. Zero values mean "no filter".
type ListOpts struct {
	Search string // case-insensitive substring over name and email
	Limit  int
	Offset int
}
