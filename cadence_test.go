package cadence_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/xraph/cadence"
	"github.com/xraph/cadence/document"
	"github.com/xraph/cadence/id"
	"github.com/xraph/cadence/profile"
	"github.com/xraph/cadence/rule"
	"github.com/xraph/cadence/store/memory"
	"github.com/xraph/cadence/template"
	"github.com/xraph/cadence/types"
)

func date(s string) types.Date { return types.MustParseDate(s) }

// fixedNow is the engine clock for all tests: 2024-06-15.
var fixedNow = time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

type fixture struct {
	engine *cadence.Engine
	store  *memory.Store
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	s := memory.New()
	e := cadence.New(s,
		cadence.WithLogger(slog.New(slog.DiscardHandler)),
		cadence.WithClock(func() time.Time { return fixedNow }),
	)
	if err := e.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := s.SaveProfile(context.Background(), profile.New("Acme Studio")); err != nil {
		t.Fatal(err)
	}

	return &fixture{engine: e, store: s}
}

func (f *fixture) template(t *testing.T, docType document.Type) *template.Template {
	t.Helper()

	tpl := &template.Template{
		Name:       "Standard",
		Type:       docType,
		Currency:   "eur",
		TaxRateBps: 2100,
		TaxName:    "VAT",
		LineItems: []template.LineItem{
			{Description: "Consulting", Quantity: 10, UnitPrice: types.EUR(9500)},
			{Description: "Hosting", Quantity: 1, UnitPrice: types.EUR(2500)},
		},
	}
	if err := f.engine.CreateTemplate(context.Background(), tpl); err != nil {
		t.Fatal(err)
	}
	return tpl
}

func (f *fixture) rule(t *testing.T, tpl *template.Template, nextDue string) *rule.Rule {
	t.Helper()

	r, err := f.engine.CreateRule(context.Background(), rule.CreateInput{
		TemplateID:  tpl.ID,
		Name:        "Retainer " + nextDue,
		Frequency:   rule.FrequencyMonthly,
		StartDate:   date("2024-01-01"),
		NextDueDate: date(nextDue),
	})
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestProcessDueRulesGeneratesDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	r := f.rule(t, tpl, "2024-06-01")

	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}

	if batch.Processed != 1 || batch.Succeeded != 1 || batch.Failed != 0 {
		t.Fatalf("batch: %+v", batch)
	}
	res := batch.Results[0]
	if !res.Success || res.DocumentID.IsNil() {
		t.Fatalf("result: %+v", res)
	}

	doc, err := f.engine.GetDocument(ctx, res.DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Number != "INV-0001" {
		t.Errorf("Number: got %q, want INV-0001", doc.Number)
	}
	if doc.IssueDate.String() != "2024-06-01" {
		t.Errorf("IssueDate: got %s, want the occurrence date", doc.IssueDate)
	}
	if !doc.Subtotal.Equal(types.EUR(97500)) || !doc.Tax.Equal(types.EUR(20475)) || !doc.Total.Equal(types.EUR(117975)) {
		t.Errorf("totals: subtotal=%v tax=%v total=%v", doc.Subtotal, doc.Tax, doc.Total)
	}
	if len(doc.LineItems) != 2 {
		t.Errorf("line items: got %d, want 2", len(doc.LineItems))
	}
	if doc.RuleID != r.ID || doc.TemplateID != tpl.ID {
		t.Error("document must reference its source rule and template")
	}

	// Rule advanced from its own due date, not from today.
	got, err := f.engine.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NextDueDate.String() != "2024-07-01" {
		t.Errorf("NextDueDate: got %s, want 2024-07-01", got.NextDueDate)
	}
	if len(got.GeneratedDocumentIDs) != 1 || got.GeneratedDocumentIDs[0] != doc.ID {
		t.Error("generation must be recorded on the rule")
	}
	if got.LastGeneratedAt == nil {
		t.Error("LastGeneratedAt must be stamped")
	}

	// Template usage recorded.
	gotTpl, err := f.engine.GetTemplate(ctx, tpl.ID)
	if err != nil {
		t.Fatal(err)
	}
	if gotTpl.UsageCount != 1 {
		t.Errorf("UsageCount: got %d, want 1", gotTpl.UsageCount)
	}
}

func TestProcessDueRulesInclusiveBoundary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	f.rule(t, tpl, "2024-06-15") // due exactly today
	f.rule(t, tpl, "2024-06-16") // due tomorrow

	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Processed != 1 {
		t.Errorf("processed: got %d, want 1 (due date itself counts, tomorrow does not)", batch.Processed)
	}
}

func TestProcessDueRulesFailureIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)

	broken := f.rule(t, tpl, "2024-05-01") // earlier, processed first
	healthy := f.rule(t, tpl, "2024-06-01")

	// Break the first rule by pointing it at a template that is gone.
	ghost := id.NewTemplateID()
	if _, err := f.engine.UpdateRule(ctx, broken.ID, rule.UpdateInput{TemplateID: &ghost}); err != nil {
		t.Fatal(err)
	}

	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}

	if batch.Processed != 2 || batch.Succeeded != 1 || batch.Failed != 1 {
		t.Fatalf("batch: %+v", batch)
	}
	if batch.Results[0].Success || batch.Results[0].RuleID != broken.ID {
		t.Errorf("first result should be the broken rule's failure: %+v", batch.Results[0])
	}
	if !batch.Results[1].Success {
		t.Errorf("healthy rule must not be affected: %+v", batch.Results[1])
	}

	// The failed rule keeps its due date for the next run.
	got, err := f.engine.GetRule(ctx, broken.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NextDueDate.String() != "2024-05-01" {
		t.Errorf("failed rule must not advance: got %s", got.NextDueDate)
	}
	if _, err := f.engine.GetRule(ctx, healthy.ID); err != nil {
		t.Fatal(err)
	}
}

func TestProcessDueRulesExpiredRulePaused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	r := f.rule(t, tpl, "2024-05-01")

	end := date("2024-05-31")
	if _, err := f.engine.UpdateRule(ctx, r.ID, rule.UpdateInput{EndDate: &end}); err != nil {
		t.Fatal(err)
	}

	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}

	if batch.Processed != 1 || batch.Failed != 1 {
		t.Fatalf("batch: %+v", batch)
	}
	if batch.Results[0].Success || batch.Results[0].Reason != "rule expired" {
		t.Errorf("result: %+v", batch.Results[0])
	}

	got, err := f.engine.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Active {
		t.Error("expired rule must be paused")
	}

	docs, err := f.engine.ListDocuments(ctx, document.ListOpts{RuleID: r.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Error("expired rule must not generate a document")
	}
}

func TestGenerateMissedCatchesUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	r := f.rule(t, tpl, "2024-04-01") // three occurrences behind

	batch, err := f.engine.GenerateMissed(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}

	if batch.Succeeded != 3 || batch.Failed != 0 {
		t.Fatalf("batch: %+v", batch)
	}

	got, err := f.engine.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NextDueDate.String() != "2024-07-01" {
		t.Errorf("NextDueDate after catch-up: got %s, want 2024-07-01", got.NextDueDate)
	}

	docs, err := f.engine.ListDocuments(ctx, document.ListOpts{RuleID: r.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 3 {
		t.Fatalf("documents: got %d, want 3", len(docs))
	}
	// Newest first: each missed occurrence keeps its own issue date and the
	// numbers were taken in order.
	wantDates := []string{"2024-06-01", "2024-05-01", "2024-04-01"}
	wantNumbers := []string{"INV-0003", "INV-0002", "INV-0001"}
	for i, d := range docs {
		if d.IssueDate.String() != wantDates[i] {
			t.Errorf("docs[%d].IssueDate: got %s, want %s", i, d.IssueDate, wantDates[i])
		}
		if d.Number != wantNumbers[i] {
			t.Errorf("docs[%d].Number: got %s, want %s", i, d.Number, wantNumbers[i])
		}
	}

	// Running again generates nothing.
	batch, err = f.engine.GenerateMissed(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Processed != 0 {
		t.Errorf("second catch-up should be empty, got %+v", batch)
	}
}

func TestGenerateMissedStopsOnFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	r := f.rule(t, tpl, "2024-04-01")

	ghost := id.NewTemplateID()
	if _, err := f.engine.UpdateRule(ctx, r.ID, rule.UpdateInput{TemplateID: &ghost}); err != nil {
		t.Fatal(err)
	}

	batch, err := f.engine.GenerateMissed(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Processed != 1 || batch.Failed != 1 {
		t.Fatalf("catch-up must stop at the first failure: %+v", batch)
	}
}

func TestGenerateMissedStopsBeforeToday(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)

	// Weekly from 2024-04-20: eight occurrences fall strictly before today
	// (2024-06-15). The ninth lands exactly on today and belongs to the
	// inclusive ProcessDueRules boundary, not to catch-up.
	r, err := f.engine.CreateRule(ctx, rule.CreateInput{
		TemplateID: tpl.ID,
		Name:       "Weekly retainer",
		Frequency:  rule.FrequencyWeekly,
		StartDate:  date("2024-04-20"),
	})
	if err != nil {
		t.Fatal(err)
	}

	batch, err := f.engine.GenerateMissed(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Succeeded != 8 || batch.Failed != 0 {
		t.Fatalf("batch: %+v", batch)
	}

	got, err := f.engine.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NextDueDate.String() != "2024-06-15" {
		t.Errorf("NextDueDate after catch-up: got %s, want 2024-06-15", got.NextDueDate)
	}

	// Today's occurrence is still picked up by the batch run.
	proc, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if proc.Succeeded != 1 {
		t.Errorf("today's occurrence must come from ProcessDueRules: %+v", proc)
	}
}

func TestGenerateMissedPausedRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	r := f.rule(t, tpl, "2024-04-01")

	if _, err := f.engine.PauseRule(ctx, r.ID); err != nil {
		t.Fatal(err)
	}

	// A paused rule reports a single failure so the caller can tell it apart
	// from a rule that is fully caught up.
	batch, err := f.engine.GenerateMissed(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if batch.Processed != 1 || batch.Failed != 1 {
		t.Fatalf("batch: %+v", batch)
	}
	if batch.Results[0].Success || batch.Results[0].Reason != "rule inactive" {
		t.Errorf("result: %+v", batch.Results[0])
	}

	docs, err := f.engine.ListDocuments(ctx, document.ListOpts{RuleID: r.ID})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 0 {
		t.Error("paused rule must not generate")
	}

	if _, err := f.engine.GenerateMissed(ctx, id.NewRuleID()); !errors.Is(err, cadence.ErrRuleNotFound) {
		t.Errorf("missing rule: got %v, want ErrRuleNotFound", err)
	}
}

func TestAutoNumberingOff(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)

	off := false
	if _, err := f.engine.CreateRule(ctx, rule.CreateInput{
		TemplateID:    tpl.ID,
		Name:          "Unnumbered",
		Frequency:     rule.FrequencyWeekly,
		StartDate:     date("2024-06-01"),
		AutoNumbering: &off,
	}); err != nil {
		t.Fatal(err)
	}

	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Succeeded != 1 {
		t.Fatalf("batch: %+v", batch)
	}

	doc, err := f.engine.GetDocument(ctx, batch.Results[0].DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Number != "" {
		t.Errorf("Number: got %q, want empty", doc.Number)
	}

	// No ticket was consumed.
	p, err := f.engine.GetProfile(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if p.NextInvoiceSeq != 1 {
		t.Errorf("NextInvoiceSeq: got %d, want 1", p.NextInvoiceSeq)
	}
}

func TestQuoteNumbering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeQuote)
	f.rule(t, tpl, "2024-06-01")

	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := f.engine.GetDocument(ctx, batch.Results[0].DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Number != "QUO-0001" {
		t.Errorf("Number: got %q, want QUO-0001", doc.Number)
	}
	if doc.Type != document.TypeQuote {
		t.Errorf("Type: got %q", doc.Type)
	}
}

func TestMissingClientDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tpl := f.template(t, document.TypeInvoice)
	tpl.ClientID = id.NewClientID() // never stored
	if err := f.engine.UpdateTemplate(ctx, tpl); err != nil {
		t.Fatal(err)
	}
	f.rule(t, tpl, "2024-06-01")

	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Succeeded != 1 {
		t.Fatalf("generation must tolerate a missing client: %+v", batch)
	}

	doc, err := f.engine.GetDocument(ctx, batch.Results[0].DocumentID)
	if err != nil {
		t.Fatal(err)
	}
	if doc.ClientName != "" || !doc.ClientID.IsNil() {
		t.Errorf("client fields must be empty: %+v", doc)
	}
}

func TestCreateRuleValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.engine.CreateRule(ctx, rule.CreateInput{Name: "incomplete"})
	if !errors.Is(err, cadence.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestUpdateRuleRejectedKeepsStoredRule(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)

	r, err := f.engine.CreateRule(ctx, rule.CreateInput{
		TemplateID: tpl.ID,
		Name:       "June retainer",
		Frequency:  rule.FrequencyMonthly,
		StartDate:  date("2024-06-01"),
	})
	if err != nil {
		t.Fatal(err)
	}

	bad := date("2024-01-01")
	if _, err := f.engine.UpdateRule(ctx, r.ID, rule.UpdateInput{NextDueDate: &bad}); !errors.Is(err, cadence.ErrInvalidInput) {
		t.Fatalf("got %v, want ErrInvalidInput", err)
	}

	// The rejected update must not leak into the store, even with a backend
	// that hands out the stored object itself.
	got, err := f.engine.GetRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NextDueDate.String() != "2024-06-01" {
		t.Errorf("NextDueDate: got %s, want 2024-06-01", got.NextDueDate)
	}
}

func TestPauseResume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	r := f.rule(t, tpl, "2024-06-01")

	paused, err := f.engine.PauseRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if paused.Active {
		t.Error("rule should be paused")
	}

	// Paused rules are skipped entirely.
	batch, err := f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Processed != 0 {
		t.Errorf("paused rule processed: %+v", batch)
	}

	// Resume leaves the due date where it was, so the rule is due again.
	resumed, err := f.engine.ResumeRule(ctx, r.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !resumed.Active || resumed.NextDueDate.String() != "2024-06-01" {
		t.Errorf("resumed: %+v", resumed)
	}

	batch, err = f.engine.ProcessDueRules(ctx, types.Date{})
	if err != nil {
		t.Fatal(err)
	}
	if batch.Succeeded != 1 {
		t.Errorf("resumed rule must generate: %+v", batch)
	}
}

func TestBulkPauseResume(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	f.rule(t, tpl, "2024-06-01")
	f.rule(t, tpl, "2024-07-01")
	f.rule(t, tpl, "2024-08-01")

	n, err := f.engine.PauseAllRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("paused: got %d, want 3", n)
	}

	n, err = f.engine.ResumeAllRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("resumed: got %d, want 3", n)
	}
}

func TestBulkRulesByID(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	a := f.rule(t, tpl, "2024-06-01")
	b := f.rule(t, tpl, "2024-07-01")
	c := f.rule(t, tpl, "2024-08-01")

	ids := []id.RuleID{a.ID, b.ID, id.NewRuleID()} // last one does not exist

	n, err := f.engine.PauseRules(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("paused: got %d, want 2 (absent ids are skipped)", n)
	}

	// Pausing the same set again changes nothing.
	n, err = f.engine.PauseRules(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("second pause: got %d, want 0", n)
	}

	n, err = f.engine.ResumeRules(ctx, ids)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("resumed: got %d, want 2", n)
	}

	if err := f.engine.DeleteRules(ctx, []id.RuleID{a.ID, id.NewRuleID()}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.engine.GetRule(ctx, a.ID); !errors.Is(err, cadence.ErrRuleNotFound) {
		t.Errorf("deleted rule: got %v, want ErrRuleNotFound", err)
	}
	if _, err := f.engine.GetRule(ctx, c.ID); err != nil {
		t.Errorf("unlisted rule must survive: %v", err)
	}

	// Deleting an already deleted rule is a no-op.
	if err := f.engine.DeleteRules(ctx, []id.RuleID{a.ID}); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestRuleStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)

	f.rule(t, tpl, "2024-06-01") // due
	f.rule(t, tpl, "2024-08-01")
	late := f.rule(t, tpl, "2024-05-01")
	if _, err := f.engine.PauseRule(ctx, late.ID); err != nil {
		t.Fatal(err)
	}

	stats, err := f.engine.RuleStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Total != 3 || stats.Active != 2 || stats.Paused != 1 || stats.Due != 1 {
		t.Errorf("stats: %+v", stats)
	}
	if stats.ByFrequency[rule.FrequencyMonthly] != 3 {
		t.Errorf("ByFrequency: %+v", stats.ByFrequency)
	}
	if stats.NextDue.String() != "2024-06-01" {
		t.Errorf("NextDue: got %s (paused rules are excluded)", stats.NextDue)
	}
	if stats.GeneratedThisMonth != 0 {
		t.Errorf("GeneratedThisMonth: got %d, want 0 before any generation", stats.GeneratedThisMonth)
	}
}

func TestRuleStatsGeneratedThisMonth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	f.rule(t, tpl, "2024-06-01")
	f.rule(t, tpl, "2024-08-01") // not due, never generates

	if _, err := f.engine.ProcessDueRules(ctx, types.Date{}); err != nil {
		t.Fatal(err)
	}

	stats, err := f.engine.RuleStats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.GeneratedThisMonth != 1 {
		t.Errorf("GeneratedThisMonth: got %d, want 1", stats.GeneratedThisMonth)
	}
	if stats.TotalGenerated != 1 {
		t.Errorf("TotalGenerated: got %d, want 1", stats.TotalGenerated)
	}
}

func TestExportImportRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	f.rule(t, tpl, "2024-06-01")
	f.rule(t, tpl, "2024-07-01")

	exported, err := f.engine.ExportRules(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(exported) != 2 {
		t.Fatalf("exported: got %d, want 2", len(exported))
	}

	// Round-trip into a fresh engine.
	g := newFixture(t)
	n, err := g.engine.ImportRules(ctx, exported)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("imported: got %d, want 2", n)
	}

	// Importing again collides on ids and stops.
	if _, err := g.engine.ImportRules(ctx, exported); !errors.Is(err, cadence.ErrAlreadyExists) {
		t.Errorf("duplicate import: got %v, want ErrAlreadyExists", err)
	}
}

func TestScheduleMath(t *testing.T) {
	f := newFixture(t)

	next, err := f.engine.NextDueDate(date("2024-01-31"), rule.FrequencyMonthly)
	if err != nil {
		t.Fatal(err)
	}
	if next.String() != "2024-02-29" {
		t.Errorf("NextDueDate: got %s, want 2024-02-29", next)
	}

	if _, err := f.engine.NextDueDate(date("2024-01-31"), "daily"); !errors.Is(err, cadence.ErrUnknownFrequency) {
		t.Errorf("got %v, want ErrUnknownFrequency", err)
	}

	dates, err := f.engine.PreviewNextDueDates(date("2024-01-31"), rule.FrequencyMonthly, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(dates) != 3 || dates[0].String() != "2024-01-31" || dates[2].String() != "2024-03-31" {
		t.Errorf("PreviewNextDueDates: %v", dates)
	}

	if got := f.engine.FrequencyDescription(rule.FrequencyBiweekly); got != "Every 2 weeks" {
		t.Errorf("FrequencyDescription: got %q", got)
	}
}

func TestDeleteTemplateInUse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	tpl := f.template(t, document.TypeInvoice)
	r := f.rule(t, tpl, "2024-06-01")

	if err := f.engine.DeleteTemplate(ctx, tpl.ID); !errors.Is(err, cadence.ErrTemplateInUse) {
		t.Errorf("got %v, want ErrTemplateInUse", err)
	}

	if err := f.engine.DeleteRule(ctx, r.ID); err != nil {
		t.Fatal(err)
	}
	if err := f.engine.DeleteTemplate(ctx, tpl.ID); err != nil {
		t.Errorf("unreferenced template should delete: %v", err)
	}
}
