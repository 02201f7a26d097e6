package crm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/AngelCh415/zenite-dash/internal/models"
)

func sp(s string) *string { return &s }

func TestProbabilityFromStage(t *testing.T) {
	cases := []struct {
		stage string
		score float64
		want  float64
	}{
		{"Fechado Ganho", 0, 100},
		{"Closed Won", 0, 100},
		{"Perdido", 90, 0},
		{"Negociação Final", 5, 75},
		{"Negociação Final", 99, 75},
		{"Proposta enviada", 0, 55},
		{"Demo agendada", 0, 50},
		{"Apresentação", 0, 45},
		{"Qualificação", 0, 35},
		{"Descoberta", 0, 30},
		{"Primeiro contato", 0, 20},
		{"Prospecção", 0, 15},
		{"Algo novo", 42, 42},
		{"Algo novo", 250, 100},
		{"Algo novo", 0, 10},
		{"", 80, 10},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ProbabilityFromStage(c.stage, c.score), "stage=%q score=%v", c.stage, c.score)
	}
}

func TestProbabilityPriorityOrder(t *testing.T) {
	// ganho is checked before proposta
	assert.Equal(t, 100.0, ProbabilityFromStage("Proposta ganha", 0))
	// perdid before negoci
	assert.Equal(t, 0.0, ProbabilityFromStage("Negociação perdida", 0))
	// pure function
	assert.Equal(t, ProbabilityFromStage("demo", 12), ProbabilityFromStage("demo", 12))
}

func TestActivityType(t *testing.T) {
	cases := map[string]models.ActivityType{
		"":              models.ActivityTask,
		"Tarefa":        models.ActivityTask,
		"Reunião":       models.ActivityAppointment,
		"calendar_sync": models.ActivityAppointment,
		"Ligação":       models.ActivityCall,
		"phone call":    models.ActivityCall,
		"E-mail":        models.ActivityEmail,
		"Nota":          models.ActivityNote,
		"WhatsApp":      models.ActivityMessage,
		"desconhecido":  models.ActivityTask,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ActivityType(raw), raw)
	}
}

func TestActivityStatus(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	t.Run("completion wins", func(t *testing.T) {
		for _, s := range []string{"", "Atrasada", "pendente", "whatever"} {
			assert.Equal(t, models.StatusCompleted, ActivityStatus(s, &now, &yesterday, now))
		}
	})
	t.Run("scheduled text beats past due date", func(t *testing.T) {
		assert.Equal(t, models.StatusPending, ActivityStatus("Agendada", nil, &yesterday, now))
	})
	t.Run("text", func(t *testing.T) {
		assert.Equal(t, models.StatusCompleted, ActivityStatus("Concluída", nil, nil, now))
		assert.Equal(t, models.StatusCompleted, ActivityStatus("Cancelada", nil, nil, now))
		assert.Equal(t, models.StatusOverdue, ActivityStatus("overdue", nil, &tomorrow, now))
		assert.Equal(t, models.StatusPending, ActivityStatus("Em andamento", nil, &yesterday, now))
	})
	t.Run("date fallback", func(t *testing.T) {
		assert.Equal(t, models.StatusOverdue, ActivityStatus("", nil, &yesterday, now))
		assert.Equal(t, models.StatusOverdue, ActivityStatus("sem match", nil, &yesterday, now))
		assert.Equal(t, models.StatusPending, ActivityStatus("", nil, &tomorrow, now))
		assert.Equal(t, models.StatusPending, ActivityStatus("", nil, nil, now))
	})
}

func TestNormalizeLead(t *testing.T) {
	created := time.Date(2026, 9, 3, 15, 0, 0, 0, time.UTC)
	l := NormalizeLead(models.LeadRow{
		ID:            "l1",
		AnnualRevenue: sp("abc"),
		MktCanal:      sp("Google Ads"),
		CreatedAt:     &created,
	})
	assert.Equal(t, 0.0, l.Value)
	assert.Equal(t, "Google Ads", l.Source)
	assert.Equal(t, "Sem nome", l.Name)
	assert.Equal(t, "Novo", l.Stage)
	assert.Equal(t, "2026-09-03", l.CreatedAt)
	assert.Equal(t, "-", l.LastActivity)
	assert.True(t, l.IsActive)

	l = NormalizeLead(models.LeadRow{ID: "l2", AnnualRevenue: sp(" 1500.5 "), Origin: sp("Indicação"), MktCanal: sp("x")})
	assert.Equal(t, 1500.5, l.Value)
	assert.Equal(t, "Indicação", l.Source)

	l = NormalizeLead(models.LeadRow{ID: "l3"})
	assert.Equal(t, "-", l.Source)
}

func TestNormalizeActivityDateFallback(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	created := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	a := NormalizeActivity(models.ActivityRow{ID: "a1", Date: sp("2026-10-10"), CreatedAt: &created}, now)
	assert.Equal(t, "2026-10-10", a.Date)
	assert.Equal(t, "Sem título", a.Title)
	assert.Equal(t, "normal", a.Priority)

	a = NormalizeActivity(models.ActivityRow{ID: "a2", CreatedAt: &created, AssignedTo: sp("Ana")}, now)
	assert.Equal(t, "2026-10-01", a.Date)
	assert.Equal(t, "Ana", a.Owner)

	a = NormalizeActivity(models.ActivityRow{ID: "a3"}, now)
	assert.Equal(t, "-", a.Date)
}

func TestNormalizeContactAndAccount(t *testing.T) {
	c := NormalizeContact(models.ContactRow{ID: "c1", Name: sp("Maria"), LastName: sp("Silva"), Mobile: sp("119999")})
	assert.Equal(t, "Maria Silva", c.Name)
	assert.Equal(t, "119999", c.Phone)

	emp := int64(40)
	a := NormalizeAccount(models.AccountRow{ID: "acc", AnnualRevenue: sp("2000000"), Employees: &emp})
	assert.Equal(t, 2000000.0, a.Revenue)
	assert.Equal(t, int64(40), a.Employees)
	assert.Equal(t, "-", a.City)
}
