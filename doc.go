// Package cadence provides a composable recurring-invoicing engine for Go applications.
//
// Cadence is designed as a library, not a service. Import it directly into your Go
// application and drive it from your own scheduler or its built-in ticker. It provides:
//
//   - Recurring rules with weekly, biweekly, monthly, quarterly, and yearly cadences
//   - Calendar-aware date math (Jan 31 + 1 month = Feb 29 in a leap year, never Mar 2)
//   - Document generation from templates with integer-money totals and single-pass tax
//   - Take-a-ticket invoice and quote numbering that never reissues a number
//   - Catch-up generation for rules that missed occurrences while the app was closed
//   - Pluggable hooks for every lifecycle event, plus audit and metrics plugins
//
// # Quick Start
//
// Create an engine with your preferred store:
//
//	import (
//	    "github.com/xraph/cadence"
//	    "github.com/xraph/cadence/store/sqlite"
//	)
//
//	// Initialize store
//	store, err := sqlite.New("file:invoices.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create engine
//	eng := cadence.New(store)
//
//	// Start (runs migrations, initializes plugins)
//	if err := eng.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Stop()
//
// # Core Concepts
//
// Templates describe what gets billed:
//
//	tpl := &template.Template{
//	    Name:       "Monthly retainer",
//	    Type:       document.TypeInvoice,
//	    Currency:   "eur",
//	    TaxRateBps: 2100, // 21%
//	    LineItems: []template.LineItem{
//	        {Description: "Consulting", Quantity: 10, UnitPrice: types.EUR(9500)},
//	    },
//	}
//
// Rules describe when:
//
//	r, err := eng.CreateRule(ctx, rule.CreateInput{
//	    TemplateID: tpl.ID,
//	    Name:       "Acme retainer",
//	    Frequency:  rule.FrequencyMonthly,
//	    StartDate:  types.MustParseDate("2024-01-31"),
//	})
//
// Processing turns "it is now time T" into documents:
//
//	batch, err := eng.ProcessDueRules(ctx, types.Date{}) // zero date = today
//
// Failures are isolated per rule: a broken rule produces a failed Result in
// the batch, never an aborted run. Generation is at-least-once; there is no
// rollback across the number/persist/advance sequence.
//
// # Money
//
// All monetary calculations use integer arithmetic to avoid floating-point
// precision issues. The Money type represents amounts in the smallest currency
// unit (cents for EUR, centavos for MXN, etc). Tax rates are basis points and
// are applied exactly once, to the already-summed subtotal.
//
// # TypeID
//
// All entities use TypeID for globally unique, type-safe identifiers:
//
//	rule_01h2xcejqtf2nbrexx3vqjhp41  // Rule ID
//	tpl_01h2xcejqtf2nbrexx3vqjhp41   // Template ID
//	doc_01h455vb4pex5vsknk084sn02q   // Document ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of entities.
package cadence
