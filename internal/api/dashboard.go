package api

import (
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleTriggerScatter renders a scatter of recent triggers' BayesianSum
// against Count, one series per web name, grounded on
// internal/lidar/monitor/echarts_handlers.go's handleBackgroundGridPolar
// (charts.NewScatter + WithGlobalOptions, then per-category series).
func (s *Server) handleTriggerScatter(w http.ResponseWriter, r *http.Request) {
	recent := s.Recorder.Recent()

	byWeb := make(map[string][]opts.ScatterData)
	order := make([]string, 0)
	for _, rt := range recent {
		if _, ok := byWeb[rt.WebName]; !ok {
			order = append(order, rt.WebName)
		}
		byWeb[rt.WebName] = append(byWeb[rt.WebName], opts.ScatterData{
			Value: []interface{}{rt.Count, rt.BayesianSum},
		})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Recent Triggers", Theme: "dark"}),
		charts.WithTitleOpts(opts.Title{Title: "Recent Triggers", Subtitle: fmt.Sprintf("count=%d", len(recent))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Pick Count", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Bayesian Sum", NameLocation: "middle", NameGap: 30}),
	)

	for _, web := range order {
		scatter.AddSeries(web, byWeb[web])
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := scatter.Render(w); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
