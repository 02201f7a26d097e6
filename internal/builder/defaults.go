package builder

// DefaultWidgets is the dashboard shown before anything is saved.
func DefaultWidgets() []Widget {
	return []Widget{
		{"w1", KPIPipeline, "Pipeline Total"},
		{"w2", KPIReceita, "Receita Fechada"},
		{"w3", KPILeads, "Leads Ativos"},
		{"w4", KPIWinRate, "Win Rate"},
		{"w5", ChartRevenue, "Receita Mensal"},
		{"w6", ChartPipelineDonut, "Pipeline por Estágio"},
		{"w7", GaugeMetaMensal, "Meta Mensal"},
		{"w8", ChartLeadsSource, "Leads por Origem"},
		{"w9", ChartFunnel, "Funil de Conversão"},
		{"w10", HeatmapActivities, "Heatmap Semanal"},
		{"w11", TableOpps, "Oportunidades"},
	}
}

// DefaultLayouts only defines lg; the grid derives the smaller breakpoints.
func DefaultLayouts() Layouts {
	return Layouts{LG: []LayoutEntry{
		{I: "w1", X: 0, Y: 0, W: 3, H: 2},
		{I: "w2", X: 3, Y: 0, W: 3, H: 2},
		{I: "w3", X: 6, Y: 0, W: 3, H: 2},
		{I: "w4", X: 9, Y: 0, W: 3, H: 2},
		{I: "w5", X: 0, Y: 2, W: 8, H: 5},
		{I: "w6", X: 8, Y: 2, W: 4, H: 5},
		{I: "w7", X: 0, Y: 7, W: 4, H: 4},
		{I: "w8", X: 4, Y: 7, W: 4, H: 4},
		{I: "w9", X: 8, Y: 7, W: 4, H: 4},
		{I: "w10", X: 0, Y: 11, W: 6, H: 5},
		{I: "w11", X: 6, Y: 11, W: 6, H: 6},
	}}
}
