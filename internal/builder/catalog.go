package builder

import (
	"errors"
	"strings"
)

type WidgetType string

const (
	KPIPipeline        WidgetType = "kpi-pipeline"
	KPIReceita         WidgetType = "kpi-receita"
	KPILeads           WidgetType = "kpi-leads"
	KPIWinRate         WidgetType = "kpi-winrate"
	ChartRevenue       WidgetType = "chart-revenue"
	ChartPipelineDonut WidgetType = "chart-pipeline-donut"
	ChartLeadsSource   WidgetType = "chart-leads-source"
	ChartActivitiesBar WidgetType = "chart-activities-bar"
	ChartFunnel        WidgetType = "chart-funnel"
	GaugeMetaMensal    WidgetType = "gauge-meta-mensal"
	GaugeMetaLeads     WidgetType = "gauge-meta-leads"
	GaugeMetaPipeline  WidgetType = "gauge-meta-pipeline"
	TableLeads         WidgetType = "table-leads"
	TableOpps          WidgetType = "table-opps"
	TableActivities    WidgetType = "table-activities"
	HeatmapActivities  WidgetType = "heatmap-activities"
)

var ErrUnknownWidgetType = errors.New("unknown widget type")

// CatalogItem describes a widget type that can be added to a dashboard. Sizes are grid units.
type CatalogItem struct {
	Type     WidgetType `json:"type"`
	Label    string     `json:"label"`
	Category string     `json:"category"`
	DefaultW int        `json:"defaultW"`
	DefaultH int        `json:"defaultH"`
	MinW     int        `json:"minW"`
	MinH     int        `json:"minH"`
}

var catalog = []CatalogItem{
	{KPIPipeline, "Pipeline Total", "KPIs", 3, 2, 2, 2},
	{KPIReceita, "Receita Fechada", "KPIs", 3, 2, 2, 2},
	{KPILeads, "Leads Ativos", "KPIs", 3, 2, 2, 2},
	{KPIWinRate, "Win Rate", "KPIs", 3, 2, 2, 2},
	{ChartRevenue, "Receita Mensal", "Gráficos", 8, 5, 4, 3},
	{ChartPipelineDonut, "Pipeline (Donut)", "Gráficos", 4, 5, 3, 3},
	{ChartLeadsSource, "Leads por Origem", "Gráficos", 6, 5, 3, 3},
	{ChartActivitiesBar, "Atividades (Barra)", "Gráficos", 6, 5, 3, 3},
	{ChartFunnel, "Funil de Conversão", "Gráficos", 6, 5, 3, 3},
	{GaugeMetaMensal, "Meta Mensal", "Metas", 4, 4, 3, 3},
	{GaugeMetaLeads, "Meta de Leads", "Metas", 4, 4, 3, 3},
	{GaugeMetaPipeline, "Meta Pipeline", "Metas", 4, 4, 3, 3},
	{TableLeads, "Tabela de Leads", "Tabelas", 12, 6, 6, 4},
	{TableOpps, "Tabela de Opps", "Tabelas", 12, 6, 6, 4},
	{TableActivities, "Tabela de Atividades", "Tabelas", 12, 6, 6, 4},
	{HeatmapActivities, "Heatmap Atividades", "Especiais", 6, 5, 4, 4},
}

// Catalog returns every widget type in display order.
func Catalog() []CatalogItem {
	out := make([]CatalogItem, len(catalog))
	copy(out, catalog)
	return out
}

func Lookup(t WidgetType) (CatalogItem, bool) {
	for _, c := range catalog {
		if c.Type == t {
			return c, true
		}
	}
	return CatalogItem{}, false
}

// Categories returns the distinct categories in first-seen order.
func Categories() []string {
	var out []string
	seen := map[string]bool{}
	for _, c := range catalog {
		if !seen[c.Category] {
			seen[c.Category] = true
			out = append(out, c.Category)
		}
	}
	return out
}

// SearchCatalog keeps the items whose label or category contains q, case-insensitively.
// An empty query returns the whole catalog.
func SearchCatalog(q string) []CatalogItem {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return Catalog()
	}
	var out []CatalogItem
	for _, c := range catalog {
		if strings.Contains(strings.ToLower(c.Label), q) || strings.Contains(strings.ToLower(c.Category), q) {
			out = append(out, c)
		}
	}
	return out
}
