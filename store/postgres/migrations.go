package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Cadence store (PostgreSQL).
var Migrations = migrate.NewGroup("cadence")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_cadence_templates",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cadence_templates (
    id           TEXT PRIMARY KEY,
    name         TEXT NOT NULL DEFAULT '',
    type         TEXT NOT NULL DEFAULT 'invoice',
    currency     TEXT NOT NULL DEFAULT '',
    client_id    TEXT NOT NULL DEFAULT '',
    line_items   JSONB NOT NULL DEFAULT '[]',
    tax_rate_bps BIGINT NOT NULL DEFAULT 0,
    tax_name     TEXT NOT NULL DEFAULT '',
    notes        TEXT NOT NULL DEFAULT '',
    usage_count  BIGINT NOT NULL DEFAULT 0,
    last_used_at TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cadence_templates_type ON cadence_templates (type);
CREATE INDEX IF NOT EXISTS idx_cadence_templates_client ON cadence_templates (client_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS cadence_templates`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_cadence_rules",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cadence_rules (
    id                     TEXT PRIMARY KEY,
    template_id            TEXT NOT NULL DEFAULT '',
    name                   TEXT NOT NULL DEFAULT '',
    description            TEXT NOT NULL DEFAULT '',
    frequency              TEXT NOT NULL DEFAULT 'monthly',
    day_of_week            INTEGER NOT NULL DEFAULT 0,
    day_of_month           INTEGER NOT NULL DEFAULT 0,
    start_date             DATE NOT NULL,
    end_date               DATE,
    next_due_date          DATE,
    auto_numbering         BOOLEAN NOT NULL DEFAULT TRUE,
    active                 BOOLEAN NOT NULL DEFAULT TRUE,
    last_generated_at      TIMESTAMPTZ,
    generated_document_ids JSONB NOT NULL DEFAULT '[]',
    created_at             TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cadence_rules_template ON cadence_rules (template_id);
CREATE INDEX IF NOT EXISTS idx_cadence_rules_due ON cadence_rules (active, next_due_date, id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS cadence_rules`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_cadence_clients",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cadence_clients (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL DEFAULT '',
    tax_id     TEXT NOT NULL DEFAULT '',
    email      TEXT NOT NULL DEFAULT '',
    phone      TEXT NOT NULL DEFAULT '',
    address    TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cadence_clients_name ON cadence_clients (name);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS cadence_clients`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_cadence_documents",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cadence_documents (
    id             TEXT PRIMARY KEY,
    type           TEXT NOT NULL DEFAULT 'invoice',
    number         TEXT NOT NULL DEFAULT '',
    issue_date     DATE NOT NULL,
    template_id    TEXT NOT NULL DEFAULT '',
    rule_id        TEXT NOT NULL DEFAULT '',
    client_id      TEXT NOT NULL DEFAULT '',
    client_name    TEXT NOT NULL DEFAULT '',
    client_tax_id  TEXT NOT NULL DEFAULT '',
    client_email   TEXT NOT NULL DEFAULT '',
    client_address TEXT NOT NULL DEFAULT '',
    currency       TEXT NOT NULL DEFAULT '',
    line_items     JSONB NOT NULL DEFAULT '[]',
    subtotal_cents BIGINT NOT NULL DEFAULT 0,
    tax_cents      BIGINT NOT NULL DEFAULT 0,
    tax_name       TEXT NOT NULL DEFAULT '',
    total_cents    BIGINT NOT NULL DEFAULT 0,
    notes          TEXT NOT NULL DEFAULT '',
    pdf_ref        TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cadence_documents_rule ON cadence_documents (rule_id);
CREATE INDEX IF NOT EXISTS idx_cadence_documents_template ON cadence_documents (template_id);
CREATE INDEX IF NOT EXISTS idx_cadence_documents_client ON cadence_documents (client_id);
CREATE INDEX IF NOT EXISTS idx_cadence_documents_issued ON cadence_documents (type, issue_date);
CREATE UNIQUE INDEX IF NOT EXISTS idx_cadence_documents_number ON cadence_documents (type, number) WHERE number != '';
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS cadence_documents`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_cadence_profile",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS cadence_profile (
    id               TEXT PRIMARY KEY,
    name             TEXT NOT NULL DEFAULT '',
    tax_id           TEXT NOT NULL DEFAULT '',
    email            TEXT NOT NULL DEFAULT '',
    phone            TEXT NOT NULL DEFAULT '',
    address          TEXT NOT NULL DEFAULT '',
    currency         TEXT NOT NULL DEFAULT '',
    invoice_prefix   TEXT NOT NULL DEFAULT '',
    quote_prefix     TEXT NOT NULL DEFAULT '',
    next_invoice_seq BIGINT NOT NULL DEFAULT 1,
    next_quote_seq   BIGINT NOT NULL DEFAULT 1,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS cadence_profile`)
				return err
			},
		},
	)
}
