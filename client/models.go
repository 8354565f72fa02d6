package client

import (
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/types"
)

// Client holds the display fields copied onto generated documents. A missing
// client never blocks generation; documents simply carry empty fields.
type Client struct {
	types.Entity
	ID      id.ClientID `json:"id"`
	Name    string      `json:"name"`
	TaxID   string      `json:"tax_id,omitempty"`
	Email   string      `json:"email,omitempty"`
	Phone   string      `json:"phone,omitempty"`
	Address string      `json:"address,omitempty"`
}
