package crm

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `
CREATE TABLE crm_leads (
	id TEXT PRIMARY KEY, name TEXT, lastname TEXT, company TEXT, stage TEXT, annual_revenue TEXT,
	owner TEXT, origin TEXT, mkt_canal TEXT, created_at DATETIME, last_activity_date DATETIME,
	score REAL, email TEXT, phone TEXT, segment TEXT, is_active BOOLEAN, score_label TEXT,
	qualification_progress REAL, tags TEXT, is_deleted BOOLEAN NOT NULL DEFAULT 0
);
CREATE TABLE crm_opportunities (
	id TEXT PRIMARY KEY, name TEXT, account TEXT, company TEXT, stage TEXT, value REAL, owner TEXT,
	close_date DATETIME, created_at DATETIME, score REAL, origin TEXT, tipo TEXT, decisor TEXT,
	last_activity TEXT, tag TEXT
);
CREATE TABLE crm_activities (
	id TEXT PRIMARY KEY, type TEXT, subject TEXT, label TEXT, entity_id TEXT, entity_type TEXT,
	related_to_name TEXT, contact_name TEXT, owner TEXT, assigned_to TEXT, due_date DATETIME,
	date TEXT, created_at DATETIME, completed_at DATETIME, status TEXT, priority TEXT, description TEXT
);
CREATE TABLE crm_accounts (
	id TEXT PRIMARY KEY, name TEXT, sector TEXT, annual_revenue TEXT, employees INTEGER, owner TEXT,
	billing_city TEXT, billing_state TEXT, phone TEXT, email TEXT, website TEXT, cnpj TEXT, type TEXT,
	stage TEXT, contacts INTEGER, created_at DATETIME, is_deleted BOOLEAN NOT NULL DEFAULT 0
);
CREATE TABLE crm_contacts (
	id TEXT PRIMARY KEY, name TEXT, last_name TEXT, role TEXT, company TEXT, account TEXT, email TEXT,
	phone TEXT, mobile TEXT, stage TEXT, owner TEXT, origin TEXT, created_at DATETIME,
	is_deleted BOOLEAN NOT NULL DEFAULT 0
);
`

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	db.MustExec(testSchema)
	return db
}

func TestSQLSourceSoftDeleteAndOrder(t *testing.T) {
	db := setupTestDB(t)
	older := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	newer := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)

	db.MustExec(`INSERT INTO crm_leads (id, name, annual_revenue, created_at, score, is_deleted) VALUES (?, ?, ?, ?, ?, ?)`, "l1", "Old", "100", older, 20.0, false)
	db.MustExec(`INSERT INTO crm_leads (id, name, annual_revenue, created_at, score, is_deleted) VALUES (?, ?, ?, ?, ?, ?)`, "l2", "New", "200", newer, 70.0, false)
	db.MustExec(`INSERT INTO crm_leads (id, name, created_at, is_deleted) VALUES (?, ?, ?, ?)`, "l3", "Gone", newer, true)
	db.MustExec(`INSERT INTO crm_opportunities (id, name, stage, value, created_at) VALUES (?, ?, ?, ?, ?)`, "o1", "Deal", "Proposta", 1500.0, newer)
	db.MustExec(`INSERT INTO crm_accounts (id, name, employees, is_deleted) VALUES (?, ?, ?, ?)`, "a1", "Acme", 12, true)
	db.MustExec(`INSERT INTO crm_contacts (id, name, created_at) VALUES (?, ?, ?)`, "c1", "Maria", newer)

	src := NewSQLSource(db)
	ctx := context.Background()

	leads, err := src.Leads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "l2", leads[0].ID)
	assert.Equal(t, "l1", leads[1].ID)
	assert.Equal(t, 200.0, ToNumber(leads[0].AnnualRevenue))
	require.NotNil(t, leads[0].CreatedAt)
	assert.True(t, leads[0].CreatedAt.Equal(newer))

	opps, err := src.Opportunities(ctx)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, 1500.0, ToNumber(opps[0].Value))

	accounts, err := src.Accounts(ctx)
	require.NoError(t, err)
	assert.Empty(t, accounts)

	contacts, err := src.Contacts(ctx)
	require.NoError(t, err)
	assert.Len(t, contacts, 1)
}

func TestFetchCollection(t *testing.T) {
	db := setupTestDB(t)
	db.MustExec(`INSERT INTO crm_activities (id, type, status) VALUES (?, ?, ?)`, "a1", "call", "done")
	src := NewSQLSource(db)

	rows, n, err := Fetch(context.Background(), src, CollectionActivities)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NotNil(t, rows)

	_, _, err = Fetch(context.Background(), src, "invoices")
	assert.Error(t, err)
}

func TestSelectErrorWrapsTable(t *testing.T) {
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewSQLSource(db).Leads(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crm_leads")
}

func TestOpenRejectsEmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "sqlite3", "", 0)
	assert.Error(t, err)
}
