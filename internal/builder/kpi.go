package builder

import (
	"math"
	"strings"

	"github.com/AngelCh415/zenite-dash/internal/models"
)

// KPIValues feeds the four KPI widgets.
type KPIValues struct {
	TotalPipeline float64 `json:"totalPipeline"`
	WonValue      float64 `json:"wonValue"`
	ActiveLeads   int     `json:"activeLeads"`
	WinRate       int     `json:"winRate"`
}

func isWon(stage string) bool {
	s := strings.ToLower(stage)
	return strings.Contains(s, "ganho") || strings.Contains(s, "ganha")
}

func isClosed(stage string) bool {
	s := strings.ToLower(stage)
	return isWon(s) || strings.Contains(s, "fechad") || strings.Contains(s, "perdid")
}

// KPIs computes the KPI widget values over already filtered leads and opportunities.
func KPIs(leads []models.Lead, opps []models.Opportunity) KPIValues {
	var k KPIValues
	won := 0
	for _, o := range opps {
		if !isClosed(o.Stage) {
			k.TotalPipeline += o.Value
		}
		if isWon(o.Stage) {
			k.WonValue += o.Value
			won++
		}
	}
	for _, l := range leads {
		if !isClosed(l.Stage) {
			k.ActiveLeads++
		}
	}
	if len(opps) > 0 {
		k.WinRate = int(math.Round(float64(won) / float64(len(opps)) * 100))
	}
	return k
}
