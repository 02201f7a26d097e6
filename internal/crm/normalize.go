package crm

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/AngelCh415/zenite-dash/internal/models"
)

const (
	placeholder = "-"
	noName      = "Sem nome"
	noTitle     = "Sem título"
	dayLayout   = "2006-01-02"
)

// fold lowercases s and strips diacritics so "Ligação" matches "ligacao".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func containsAny(s string, keys ...string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

type probabilityRule struct {
	keys []string
	p    float64
}

// El orden importa: la primera coincidencia gana.
var probabilityRules = []probabilityRule{
	{[]string{"ganho", "ganha", "won"}, 100},
	{[]string{"perdid", "lost"}, 0},
	{[]string{"negoci", "negoti"}, 75},
	{[]string{"proposta", "proposal"}, 55},
	{[]string{"demo"}, 50},
	{[]string{"apresenta"}, 45},
	{[]string{"qualific"}, 35},
	{[]string{"descoberta", "discovery"}, 30},
	{[]string{"contato", "contact"}, 20},
	{[]string{"prospec", "prospect"}, 15},
}

// ProbabilityFromStage derives a win probability from free-text stage and lead score.
func ProbabilityFromStage(stage string, score float64) float64 {
	if strings.TrimSpace(stage) == "" {
		return 10
	}
	s := fold(stage)
	for _, r := range probabilityRules {
		if containsAny(s, r.keys...) {
			return r.p
		}
	}
	if score > 0 {
		return math.Min(score, 100)
	}
	return 10
}

var wonKeys = []string{"ganho", "ganha", "won"}

// IsWon reports whether a stage denotes a won deal.
func IsWon(stage string) bool { return containsAny(fold(stage), wonKeys...) }

type typeRule struct {
	keys []string
	t    models.ActivityType
}

var activityTypeRules = []typeRule{
	{[]string{"tarefa", "task"}, models.ActivityTask},
	{[]string{"compromisso", "evento", "event", "reuniao", "meeting", "calendar"}, models.ActivityAppointment},
	{[]string{"ligacao", "call", "telefone"}, models.ActivityCall},
	{[]string{"email", "e-mail"}, models.ActivityEmail},
	{[]string{"nota", "note", "anotacao"}, models.ActivityNote},
	{[]string{"mensagem", "message", "whatsapp", "sms", "chat"}, models.ActivityMessage},
}

// ActivityType maps a raw CRM activity type onto the closed set; unknown values are tasks.
func ActivityType(raw string) models.ActivityType {
	t := fold(raw)
	if t == "" {
		return models.ActivityTask
	}
	for _, r := range activityTypeRules {
		if containsAny(t, r.keys...) {
			return r.t
		}
	}
	return models.ActivityTask
}

// ActivityStatus resolves exactly one status. A completion timestamp always wins,
// then status text, then the due date.
func ActivityStatus(status string, completedAt, dueDate *time.Time, now time.Time) models.ActivityStatus {
	if completedAt != nil {
		return models.StatusCompleted
	}
	if s := fold(status); s != "" {
		switch {
		case containsAny(s, "concluid", "complet", "done", "finished"):
			return models.StatusCompleted
		case containsAny(s, "atrasad", "overdue", "late"):
			return models.StatusOverdue
		case containsAny(s, "cancelad", "cancel"):
			return models.StatusCompleted
		case containsAny(s, "pendent", "pending", "aberto", "open", "agendad", "schedul"):
			return models.StatusPending
		case containsAny(s, "em andamento", "in progress"):
			return models.StatusPending
		}
	}
	if dueDate != nil && dueDate.Before(now) {
		return models.StatusOverdue
	}
	return models.StatusPending
}

// ToNumber coerces a textual number; missing or non-numeric is 0.
func ToNumber(s *string) float64 {
	if s == nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(*s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// coalesce returns the first non-empty value, or def.
func coalesce(def string, vals ...*string) string {
	for _, v := range vals {
		if s := str(v); s != "" {
			return s
		}
	}
	return def
}

func num(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

func day(t *time.Time) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.UTC().Format(dayLayout)
}

// ActivityDate is the effective date of an activity: due date, then the date field, then creation.
func ActivityDate(r models.ActivityRow) (time.Time, bool) {
	if r.DueDate != nil {
		return *r.DueDate, true
	}
	if d := str(r.Date); d != "" {
		if t, err := parseDate(d); err == nil {
			return t, true
		}
	}
	if r.CreatedAt != nil {
		return *r.CreatedAt, true
	}
	return time.Time{}, false
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse(dayLayout, s[:min(len(s), len(dayLayout))])
}

func NormalizeLead(r models.LeadRow) models.Lead {
	name := str(r.Name)
	if name == "" {
		name = strings.TrimSpace(str(r.Name) + " " + str(r.Lastname))
	}
	if name == "" {
		name = noName
	}
	return models.Lead{
		ID:                    r.ID,
		Name:                  name,
		Company:               coalesce(placeholder, r.Company),
		Stage:                 coalesce("Novo", r.Stage),
		Value:                 ToNumber(r.AnnualRevenue),
		Owner:                 coalesce(placeholder, r.Owner),
		Source:                coalesce(placeholder, r.Origin, r.MktCanal),
		CreatedAt:             day(r.CreatedAt),
		LastActivity:          day(r.LastActivityDate),
		Score:                 num(r.Score),
		Email:                 str(r.Email),
		Phone:                 str(r.Phone),
		Segment:               coalesce(placeholder, r.Segment),
		IsActive:              r.IsActive == nil || *r.IsActive,
		ScoreLabel:            coalesce(placeholder, r.ScoreLabel),
		QualificationProgress: num(r.QualificationProgress),
		Tags:                  str(r.Tags),
	}
}

func NormalizeOpportunity(r models.OpportunityRow) models.Opportunity {
	return models.Opportunity{
		ID:           r.ID,
		Name:         coalesce(noName, r.Name),
		Account:      coalesce(placeholder, r.Account, r.Company),
		Company:      coalesce(placeholder, r.Company),
		Stage:        coalesce("Novo", r.Stage),
		Value:        ToNumber(r.Value),
		Probability:  ProbabilityFromStage(str(r.Stage), num(r.Score)),
		Owner:        coalesce(placeholder, r.Owner),
		CloseDate:    day(r.CloseDate),
		CreatedAt:    day(r.CreatedAt),
		Score:        num(r.Score),
		Origin:       coalesce(placeholder, r.Origin),
		Type:         coalesce(placeholder, r.Tipo),
		Decisor:      coalesce(placeholder, r.Decisor),
		LastActivity: coalesce(placeholder, r.LastActivity),
		Tag:          str(r.Tag),
	}
}

func NormalizeActivity(r models.ActivityRow, now time.Time) models.Activity {
	date := placeholder
	if t, ok := ActivityDate(r); ok {
		date = day(&t)
	}
	return models.Activity{
		ID:            r.ID,
		Type:          ActivityType(str(r.Type)),
		Title:         coalesce(noTitle, r.Subject, r.Label),
		RelatedTo:     coalesce(placeholder, r.EntityID),
		RelatedToName: coalesce(placeholder, r.RelatedToName, r.ContactName),
		EntityType:    coalesce(placeholder, r.EntityType),
		Owner:         coalesce(placeholder, r.Owner, r.AssignedTo),
		Date:          date,
		Status:        ActivityStatus(str(r.Status), r.CompletedAt, r.DueDate, now),
		Priority:      coalesce("normal", r.Priority),
		Description:   str(r.Description),
	}
}

func NormalizeAccount(r models.AccountRow) models.Account {
	a := models.Account{
		ID:           r.ID,
		Name:         coalesce(noName, r.Name),
		Industry:     coalesce(placeholder, r.Sector),
		Revenue:      ToNumber(r.AnnualRevenue),
		Owner:        coalesce(placeholder, r.Owner),
		City:         coalesce(placeholder, r.BillingCity),
		State:        coalesce(placeholder, r.BillingState),
		Phone:        coalesce(placeholder, r.Phone),
		Email:        coalesce(placeholder, r.Email),
		Website:      coalesce(placeholder, r.Website),
		CNPJ:         coalesce(placeholder, r.CNPJ),
		Type:         coalesce(placeholder, r.Type),
		AccountStage: coalesce(placeholder, r.Stage),
		CreatedAt:    day(r.CreatedAt),
	}
	if r.Employees != nil {
		a.Employees = *r.Employees
	}
	if r.Contacts != nil {
		a.Contacts = *r.Contacts
	}
	return a
}

func NormalizeContact(r models.ContactRow) models.Contact {
	name := strings.TrimSpace(str(r.Name) + " " + str(r.LastName))
	if name == "" {
		name = noName
	}
	return models.Contact{
		ID:        r.ID,
		Name:      name,
		Role:      coalesce(placeholder, r.Role),
		Company:   coalesce(placeholder, r.Company),
		Account:   coalesce(placeholder, r.Account),
		Email:     coalesce(placeholder, r.Email),
		Phone:     coalesce(placeholder, r.Phone, r.Mobile),
		Stage:     coalesce(placeholder, r.Stage),
		Owner:     coalesce(placeholder, r.Owner),
		Origin:    coalesce(placeholder, r.Origin),
		CreatedAt: day(r.CreatedAt),
	}
}
