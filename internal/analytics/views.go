package analytics

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/AngelCh415/zenite-dash/internal/crm"
	"github.com/AngelCh415/zenite-dash/internal/models"
)

const (
	trailingMonths = 6
	// VisitorMultiplier approximates visitors from captured leads. Not a measured value.
	VisitorMultiplier = 5
	mqlScore          = 30
	sqlScore          = 60
	otherSource       = "Outros"
)

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

func monthKey(t time.Time) int { return t.Year()*12 + int(t.Month()) - 1 }

// MonthlyRevenue buckets leads and opportunities by creation month over the trailing
// six months ending at now's month, oldest first.
func MonthlyRevenue(leads []models.LeadRow, opps []models.OpportunityRow, now time.Time) []models.MonthlyRevenue {
	last := monthKey(now)
	first := last - trailingMonths + 1
	buckets := make([]models.MonthlyRevenue, trailingMonths)
	revenue := make([]float64, trailingMonths)
	for i := range buckets {
		buckets[i].Month = monthLabels[(first+i)%12]
	}
	idx := func(t *time.Time) int {
		if t == nil {
			return -1
		}
		k := monthKey(t.In(now.Location()))
		if k < first || k > last {
			return -1
		}
		return k - first
	}
	for _, l := range leads {
		if i := idx(l.CreatedAt); i >= 0 {
			buckets[i].Leads++
		}
	}
	for _, o := range opps {
		if i := idx(o.CreatedAt); i >= 0 {
			buckets[i].Opportunities++
			revenue[i] += crm.ToNumber(o.Value)
		}
	}
	for i := range buckets {
		buckets[i].Revenue = int64(math.Round(revenue[i]))
		if buckets[i].Leads > 0 {
			buckets[i].Conversion = int(math.Round(float64(buckets[i].Opportunities) / float64(buckets[i].Leads) * 100))
		}
	}
	return buckets
}

// ClosedStages decides which stages are excluded from the open pipeline.
type ClosedStages struct {
	Prefixes []string
	Exact    []string
}

// DefaultClosedStages matches "Fechad..." and the lost labels.
var DefaultClosedStages = ClosedStages{Prefixes: []string{"Fechad"}, Exact: []string{"Perdida", "Perdido"}}

func (c ClosedStages) Match(stage string) bool {
	for _, p := range c.Prefixes {
		if p != "" && strings.HasPrefix(stage, p) {
			return true
		}
	}
	for _, e := range c.Exact {
		if stage == e {
			return true
		}
	}
	return false
}

type total struct {
	count int
	value float64
}

// PipelineByStage groups open opportunities by stage, sorted by value desc.
func PipelineByStage(opps []models.Opportunity, closed ClosedStages) []models.StageTotal {
	m := map[string]*total{}
	for _, o := range opps {
		if closed.Match(o.Stage) {
			continue
		}
		stage := o.Stage
		if stage == "" {
			stage = otherSource
		}
		t, ok := m[stage]
		if !ok {
			t = &total{}
			m[stage] = t
		}
		t.count++
		t.value += o.Value
	}
	out := make([]models.StageTotal, 0, len(m))
	for stage, t := range m {
		out = append(out, models.StageTotal{Stage: stage, Count: t.count, Value: int64(math.Round(t.value))})
	}
	// orden determinista
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Stage < out[j].Stage
	})
	return out
}

// LeadsBySource groups leads by normalized source, sorted by count desc.
func LeadsBySource(leads []models.Lead) []models.SourceTotal {
	m := map[string]*total{}
	for _, l := range leads {
		src := l.Source
		if src == "" || src == "-" {
			src = otherSource
		}
		t, ok := m[src]
		if !ok {
			t = &total{}
			m[src] = t
		}
		t.count++
		t.value += l.Value
	}
	out := make([]models.SourceTotal, 0, len(m))
	for src, t := range m {
		out = append(out, models.SourceTotal{Source: src, Count: t.count, Value: int64(math.Round(t.value))})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Source < out[j].Source
	})
	return out
}

type typeStyle struct{ label, color string }

var activityStyles = map[models.ActivityType]typeStyle{
	models.ActivityTask:        {"Tarefas", "#0483AB"},
	models.ActivityAppointment: {"Compromissos", "#3CCEA7"},
	models.ActivityCall:        {"Ligações", "#917822"},
	models.ActivityEmail:       {"Emails", "#ED5200"},
	models.ActivityNote:        {"Notas", "#6868B1"},
	models.ActivityMessage:     {"Mensagens", "#07ABDE"},
}

// ActivityByType counts activities per type with fixed label and color, sorted by count desc.
func ActivityByType(acts []models.Activity) []models.ActivityTypeTotal {
	counts := map[models.ActivityType]int{}
	for _, a := range acts {
		t := a.Type
		if t == "" {
			t = models.ActivityTask
		}
		counts[t]++
	}
	out := make([]models.ActivityTypeTotal, 0, len(counts))
	for t, n := range counts {
		st, ok := activityStyles[t]
		if !ok {
			st = typeStyle{string(t), "#4E6987"}
		}
		out = append(out, models.ActivityTypeTotal{Type: st.label, Key: string(t), Count: n, Color: st.color})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}

// calendarDays counts date changes from a to b in b's location, ignoring clock time, so
// 23 and 25 hour days still count as one.
func calendarDays(a, b time.Time) int {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours()) / 24
}

// Seg..Dom, indexed by time.Weekday in weekdayRow.
var weekDays = [7]string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb", "Dom"}

func weekdayRow(d time.Weekday) int { return (int(d) + 6) % 7 }

// WeeklyActivities counts, per weekday, activities whose effective date falls in the
// trailing 7 days including today. Future and older dates are skipped.
func WeeklyActivities(acts []models.ActivityRow, now time.Time) []models.WeeklyActivity {
	rows := make([]models.WeeklyActivity, 7)
	for i := range rows {
		rows[i].Day = weekDays[i]
	}
	for _, a := range acts {
		d, ok := crm.ActivityDate(a)
		if !ok {
			continue
		}
		d = d.In(now.Location())
		diff := calendarDays(d, now)
		if d.After(now) || diff < 0 || diff >= 7 {
			continue
		}
		r := &rows[weekdayRow(d.Weekday())]
		switch crm.ActivityType(deref(a.Type)) {
		case models.ActivityTask:
			r.Tasks++
		case models.ActivityAppointment:
			r.Appointments++
		case models.ActivityCall:
			r.Calls++
		case models.ActivityEmail:
			r.Emails++
		case models.ActivityNote:
			r.Notes++
		case models.ActivityMessage:
			r.Messages++
		}
	}
	return rows
}

// ConversionFunnel builds the six ordered funnel stages. Monotonic decrease is a property
// of the data and is not enforced.
func ConversionFunnel(leads []models.LeadRow, opps []models.OpportunityRow) []models.FunnelStage {
	var mqls, sqls, customers int
	for _, l := range leads {
		s := 0.0
		if l.Score != nil {
			s = *l.Score
		}
		if s >= mqlScore {
			mqls++
		}
		if s >= sqlScore {
			sqls++
		}
	}
	for _, o := range opps {
		if crm.IsWon(deref(o.Stage)) {
			customers++
		}
	}
	return []models.FunnelStage{
		{Stage: "Visitantes", Value: max(len(leads)*VisitorMultiplier, 1)},
		{Stage: "Leads Captados", Value: len(leads)},
		{Stage: "MQLs", Value: mqls},
		{Stage: "SQLs", Value: sqls},
		{Stage: "Oportunidades", Value: len(opps)},
		{Stage: "Clientes", Value: customers},
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
