package filter

import "github.com/AngelCh415/zenite-dash/internal/models"

// Entity is the projection of a CRM record that filters look at. Empty fields mean
// "unknown" and pass every filter on that field.
type Entity struct {
	Owner     string
	Stage     string
	Source    string
	Origin    string
	Segment   string
	CreatedAt string
	// Fields carries extra dimensions reachable by a cross-filter.
	Fields map[string]string
}

// Field looks up a cross-filter dimension by its JSON name.
func (e Entity) Field(dim string) string {
	switch dim {
	case "owner":
		return e.Owner
	case "stage":
		return e.Stage
	case "source":
		return e.Source
	case "origin":
		return e.Origin
	case "segment":
		return e.Segment
	case "createdAt":
		return e.CreatedAt
	}
	return e.Fields[dim]
}

// known drops the "-" placeholder the normalizer writes for missing values.
func known(v string) string {
	if v == "-" {
		return ""
	}
	return v
}

func FromLead(l models.Lead) Entity {
	return Entity{
		Owner:     known(l.Owner),
		Stage:     known(l.Stage),
		Source:    known(l.Source),
		Segment:   known(l.Segment),
		CreatedAt: known(l.CreatedAt),
		Fields:    map[string]string{"company": known(l.Company), "name": l.Name},
	}
}

// FromOpportunity exposes owner, stage and creation date only; source and segment filters
// do not apply to opportunities.
func FromOpportunity(o models.Opportunity) Entity {
	return Entity{
		Owner:     known(o.Owner),
		Stage:     known(o.Stage),
		CreatedAt: known(o.CreatedAt),
	}
}

// FromActivity exposes the owner and the activity date as creation date.
func FromActivity(a models.Activity) Entity {
	return Entity{
		Owner:     known(a.Owner),
		CreatedAt: known(a.Date),
	}
}

func FromContact(c models.Contact) Entity {
	return Entity{
		Owner:     known(c.Owner),
		Stage:     known(c.Stage),
		Origin:    known(c.Origin),
		CreatedAt: known(c.CreatedAt),
	}
}

func FromAccount(a models.Account) Entity {
	return Entity{
		Owner:     known(a.Owner),
		Stage:     known(a.AccountStage),
		CreatedAt: known(a.CreatedAt),
		Fields:    map[string]string{"industry": known(a.Industry)},
	}
}

// Apply returns a copy of data whose entity lists keep only the records matching s.
// Derived views and meta are copied unchanged.
func Apply(s State, data models.DashData) models.DashData {
	out := data
	out.Leads = keep(data.Leads, s, FromLead)
	out.Opportunities = keep(data.Opportunities, s, FromOpportunity)
	out.Activities = keep(data.Activities, s, FromActivity)
	out.Accounts = keep(data.Accounts, s, FromAccount)
	out.Contacts = keep(data.Contacts, s, FromContact)
	return out
}

func keep[T any](in []T, s State, project func(T) Entity) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if s.MatchesFilters(project(v)) {
			out = append(out, v)
		}
	}
	return out
}
