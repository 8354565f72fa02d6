package cadence

import "github.com/xraph/cadence/types"

// Re-export common types for convenience so users don't have to import types package.

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Date is re-exported from types package.
type Date = types.Date

// Re-export Money constructors
var (
	USD  = types.USD
	EUR  = types.EUR
	GBP  = types.GBP
	MXN  = types.MXN
	JPY  = types.JPY
	Zero = types.Zero
	Sum  = types.Sum
)

// Re-export Date constructors
var (
	NewDate       = types.NewDate
	DateOf        = types.DateOf
	ParseDate     = types.ParseDate
	MustParseDate = types.MustParseDate
)

// Re-export Entity constructor
var NewEntity = types.NewEntity
