package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/AngelCh415/zenite-dash/internal/crm"
	"github.com/AngelCh415/zenite-dash/internal/models"
)

// FetchObserver is told about every failed collection fetch.
type FetchObserver func(collection string, err error)

// Service recomputes the whole dashboard payload on every call. It keeps no state
// between requests.
type Service struct {
	src     crm.Source
	log     *slog.Logger
	now     func() time.Time
	closed  ClosedStages
	onError FetchObserver
}

type Option func(*Service)

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }
func WithClosedStages(c ClosedStages) Option { return func(s *Service) { s.closed = c } }
func WithFetchObserver(f FetchObserver) Option { return func(s *Service) { s.onError = f } }

func NewService(src crm.Source, log *slog.Logger, opts ...Option) *Service {
	s := &Service{src: src, log: log, now: time.Now, closed: DefaultClosedStages}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

type rawData struct {
	leads      []models.LeadRow
	opps       []models.OpportunityRow
	activities []models.ActivityRow
	accounts   []models.AccountRow
	contacts   []models.ContactRow
}

// fetchAll runs the five fetches concurrently. A failed fetch is logged and left empty;
// it never cancels the others.
func (s *Service) fetchAll(ctx context.Context) rawData {
	var (
		raw rawData
		g   errgroup.Group
	)
	run := func(name string, fn func() error) {
		g.Go(func() error {
			if err := fn(); err != nil {
				s.log.Warn("fetch failed", slog.String("collection", name), slog.String("err", err.Error()))
				if s.onError != nil {
					s.onError(name, err)
				}
			}
			return nil
		})
	}
	run(crm.CollectionLeads, func() (err error) { raw.leads, err = s.src.Leads(ctx); return })
	run(crm.CollectionOpportunities, func() (err error) { raw.opps, err = s.src.Opportunities(ctx); return })
	run(crm.CollectionActivities, func() (err error) { raw.activities, err = s.src.Activities(ctx); return })
	run(crm.CollectionAccounts, func() (err error) { raw.accounts, err = s.src.Accounts(ctx); return })
	run(crm.CollectionContacts, func() (err error) { raw.contacts, err = s.src.Contacts(ctx); return })
	_ = g.Wait()
	return raw
}

// Build fetches every collection and derives the dashboard payload. Partial fetch
// failures still produce a payload; only a failure while deriving returns an error.
func (s *Service) Build(ctx context.Context) (data *models.DashData, err error) {
	raw := s.fetchAll(ctx)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			data, err = nil, fmt.Errorf("derive dashboard: %v", r)
		}
	}()
	return s.derive(raw, s.now()), nil
}

func (s *Service) derive(raw rawData, now time.Time) *models.DashData {
	d := &models.DashData{
		Leads:         make([]models.Lead, 0, len(raw.leads)),
		Opportunities: make([]models.Opportunity, 0, len(raw.opps)),
		Activities:    make([]models.Activity, 0, len(raw.activities)),
		Accounts:      make([]models.Account, 0, len(raw.accounts)),
		Contacts:      make([]models.Contact, 0, len(raw.contacts)),
		Reports:       []models.Report{},
	}
	for _, r := range raw.leads {
		d.Leads = append(d.Leads, crm.NormalizeLead(r))
	}
	for _, r := range raw.opps {
		d.Opportunities = append(d.Opportunities, crm.NormalizeOpportunity(r))
	}
	for _, r := range raw.activities {
		d.Activities = append(d.Activities, crm.NormalizeActivity(r, now))
	}
	for _, r := range raw.accounts {
		d.Accounts = append(d.Accounts, crm.NormalizeAccount(r))
	}
	for _, r := range raw.contacts {
		d.Contacts = append(d.Contacts, crm.NormalizeContact(r))
	}

	d.MonthlyRevenue = MonthlyRevenue(raw.leads, raw.opps, now)
	d.PipelineByStage = PipelineByStage(d.Opportunities, s.closed)
	d.LeadsBySource = LeadsBySource(d.Leads)
	d.ActivityByType = ActivityByType(d.Activities)
	d.WeeklyActivities = WeeklyActivities(raw.activities, now)
	d.ConversionFunnel = ConversionFunnel(raw.leads, raw.opps)
	d.Meta = models.Meta{
		TotalLeads:         len(raw.leads),
		TotalOpportunities: len(raw.opps),
		TotalActivities:    len(raw.activities),
		TotalAccounts:      len(raw.accounts),
		TotalContacts:      len(raw.contacts),
		FetchedAt:          now.UTC(),
	}
	return d
}

// Collection returns the raw rows of one collection. Unlike Build, a fetch error is returned.
func (s *Service) Collection(ctx context.Context, name string) (any, int, error) {
	return crm.Fetch(ctx, s.src, name)
}
