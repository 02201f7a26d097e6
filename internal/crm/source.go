package crm

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/AngelCh415/zenite-dash/internal/models"
	"github.com/AngelCh415/zenite-dash/internal/utils"
)

// Collection names, also used as route segments and metric labels.
const (
	CollectionLeads         = "leads"
	CollectionOpportunities = "opportunities"
	CollectionActivities    = "activities"
	CollectionAccounts      = "accounts"
	CollectionContacts      = "contacts"
)

var Collections = []string{
	CollectionLeads, CollectionOpportunities, CollectionActivities, CollectionAccounts, CollectionContacts,
}

// Source fetches the five CRM collections.
type Source interface {
	Leads(ctx context.Context) ([]models.LeadRow, error)
	Opportunities(ctx context.Context) ([]models.OpportunityRow, error)
	Activities(ctx context.Context) ([]models.ActivityRow, error)
	Accounts(ctx context.Context) ([]models.AccountRow, error)
	Contacts(ctx context.Context) ([]models.ContactRow, error)
}

type table struct {
	name        string
	cols        []string
	softDeleted bool
}

var (
	leadsTable = table{"crm_leads", []string{
		"id", "name", "lastname", "company", "stage", "annual_revenue", "owner", "origin", "mkt_canal",
		"created_at", "last_activity_date", "score", "email", "phone", "segment", "is_active",
		"score_label", "qualification_progress", "tags",
	}, true}
	opportunitiesTable = table{"crm_opportunities", []string{
		"id", "name", "account", "company", "stage", "value", "owner", "close_date", "created_at",
		"score", "origin", "tipo", "decisor", "last_activity", "tag",
	}, false}
	activitiesTable = table{"crm_activities", []string{
		"id", "type", "subject", "label", "entity_id", "entity_type", "related_to_name", "contact_name",
		"owner", "assigned_to", "due_date", "date", "created_at", "completed_at", "status", "priority",
		"description",
	}, false}
	accountsTable = table{"crm_accounts", []string{
		"id", "name", "sector", "annual_revenue", "employees", "owner", "billing_city", "billing_state",
		"phone", "email", "website", "cnpj", "type", "stage", "contacts", "created_at",
	}, true}
	contactsTable = table{"crm_contacts", []string{
		"id", "name", "last_name", "role", "company", "account", "email", "phone", "mobile", "stage",
		"owner", "origin", "created_at",
	}, true}
)

// SQLSource reads the CRM tables through database/sql.
type SQLSource struct {
	db *sqlx.DB
	sb sq.StatementBuilderType
}

func NewSQLSource(db *sqlx.DB) *SQLSource {
	var ph sq.PlaceholderFormat = sq.Question
	if db.DriverName() == "pgx" || db.DriverName() == "postgres" {
		ph = sq.Dollar
	}
	return &SQLSource{db: db, sb: sq.StatementBuilder.PlaceholderFormat(ph)}
}

// Open connects to the CRM database and pings it with backoff.
func Open(ctx context.Context, driver, dsn string, retries int) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("open %s: empty dsn", driver)
	}
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	err = utils.NewBackoff(200*time.Millisecond, retries).Do(ctx, func(int) error {
		return db.PingContext(ctx)
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

func (s *SQLSource) query(t table) (string, []any, error) {
	q := s.sb.Select(t.cols...).From(t.name).OrderBy("created_at DESC")
	if t.softDeleted {
		q = q.Where(sq.Eq{"is_deleted": false})
	}
	return q.ToSql()
}

func selectAll[T any](ctx context.Context, s *SQLSource, t table) ([]T, error) {
	query, args, err := s.query(t)
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", t.name, err)
	}
	out := []T{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select %s: %w", t.name, err)
	}
	return out, nil
}

func (s *SQLSource) Leads(ctx context.Context) ([]models.LeadRow, error) {
	return selectAll[models.LeadRow](ctx, s, leadsTable)
}

func (s *SQLSource) Opportunities(ctx context.Context) ([]models.OpportunityRow, error) {
	return selectAll[models.OpportunityRow](ctx, s, opportunitiesTable)
}

func (s *SQLSource) Activities(ctx context.Context) ([]models.ActivityRow, error) {
	return selectAll[models.ActivityRow](ctx, s, activitiesTable)
}

func (s *SQLSource) Accounts(ctx context.Context) ([]models.AccountRow, error) {
	return selectAll[models.AccountRow](ctx, s, accountsTable)
}

func (s *SQLSource) Contacts(ctx context.Context) ([]models.ContactRow, error) {
	return selectAll[models.ContactRow](ctx, s, contactsTable)
}

// Fetch returns the raw rows of one named collection, for passthrough endpoints.
func Fetch(ctx context.Context, src Source, name string) (any, int, error) {
	switch name {
	case CollectionLeads:
		rows, err := src.Leads(ctx)
		return rows, len(rows), err
	case CollectionOpportunities:
		rows, err := src.Opportunities(ctx)
		return rows, len(rows), err
	case CollectionActivities:
		rows, err := src.Activities(ctx)
		return rows, len(rows), err
	case CollectionAccounts:
		rows, err := src.Accounts(ctx)
		return rows, len(rows), err
	case CollectionContacts:
		rows, err := src.Contacts(ctx)
		return rows, len(rows), err
	}
	return nil, 0, fmt.Errorf("unknown collection %q", name)
}
