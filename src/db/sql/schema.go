package db

import (
	"context"
	"fmt"
	"strings"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password_hash BYTEA NOT NULL,
		gemini_api_key TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		category TEXT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		date DATE NOT NULL,
		currency TEXT NOT NULL,
		receipt_text TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS expenses_user_date_idx ON expenses (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS incomes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		source TEXT NOT NULL,
		date DATE NOT NULL,
		currency TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS incomes_user_date_idx ON incomes (user_id, date)`,
	`CREATE TABLE IF NOT EXISTS budgets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		category TEXT NOT NULL,
		monthly_limit NUMERIC(14,2) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, category)
	)`,
	`CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		amount NUMERIC(14,2) NOT NULL,
		due_date DATE NOT NULL,
		category TEXT NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		paid_at TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS debts (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		creditor_name TEXT NOT NULL,
		total_amount NUMERIC(14,2) NOT NULL,
		remaining_amount NUMERIC(14,2) NOT NULL,
		interest_rate NUMERIC(7,3) NOT NULL,
		minimum_payment NUMERIC(14,2) NOT NULL,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		target_amount NUMERIC(14,2) NOT NULL,
		current_amount NUMERIC(14,2) NOT NULL,
		target_date DATE NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		is_achieved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS group_expenses (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		description TEXT NOT NULL,
		total_amount NUMERIC(14,2) NOT NULL,
		split_type TEXT NOT NULL,
		members JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shares (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		member_email TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (user_id, member_email)
	)`,
	`CREATE INDEX IF NOT EXISTS shares_member_idx ON shares (member_email)`,
}

// sqliteTypes rewrites Postgres column types for sqlite. Amounts are kept as
// TEXT so decimals round-trip exactly.
var sqliteTypes = strings.NewReplacer(
	"BYTEA", "BLOB",
	"NUMERIC(14,2)", "TEXT",
	"NUMERIC(7,3)", "TEXT",
	"TIMESTAMPTZ", "DATETIME",
	"JSONB", "BLOB",
)

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	for _, ddl := range tables {
		if s.dialect == SQLite {
			ddl = sqliteTypes.Replace(ddl)
		}
		if _, err := s.c.exec(ctx, ddl); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
