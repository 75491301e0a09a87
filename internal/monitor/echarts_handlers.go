package monitor

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/mmarfinetz/3dTetris/internal/httputil"
)

// handleStabilityTimeline renders a line chart (HTML) of the smoothed
// and raw stability scores over the runner's in-memory history.
// Query params:
//   - max_points (optional; default 600) to reduce payload size
func (m *Monitor) handleStabilityTimeline(w http.ResponseWriter, r *http.Request) {
	history := m.runner.History()
	if len(history) == 0 {
		httputil.WriteJSONError(w, http.StatusNotFound, "no stability samples yet")
		return
	}

	maxPoints := 600
	if mp := r.URL.Query().Get("max_points"); mp != "" {
		if v, err := strconv.Atoi(mp); err == nil && v > 10 && v <= 10000 {
			maxPoints = v
		}
	}
	if len(history) > maxPoints {
		history = history[len(history)-maxPoints:]
	}

	x := make([]string, 0, len(history))
	smoothed := make([]opts.LineData, 0, len(history))
	raw := make([]opts.LineData, 0, len(history))
	for _, info := range history {
		x = append(x, info.Tick.Format("15:04:05.000"))
		smoothed = append(smoothed, opts.LineData{Value: info.Score})
		raw = append(raw, opts.LineData{Value: info.Target})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Stability Timeline", Theme: "dark", Width: "1200px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Stability Score", Subtitle: fmt.Sprintf("samples=%d latest=%.1f", len(history), history[len(history)-1].Score)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100, Name: "Score"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	line.SetXAxis(x).
		AddSeries("smoothed", smoothed).
		AddSeries("raw", raw, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(false)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleScoreBreakdown renders a bar chart of the latest sub-scores so
// an operator can see which factor is dragging the total down.
func (m *Monitor) handleScoreBreakdown(w http.ResponseWriter, r *http.Request) {
	info := m.runner.Latest()
	if info.Tick.IsZero() {
		httputil.WriteJSONError(w, http.StatusNotFound, "no stability samples yet")
		return
	}

	x := []string{"Mass Position", "Contact Quality", "Oscillation", "Tilt", "Combined"}
	y := []opts.BarData{
		{Value: info.MassPosition},
		{Value: info.ContactQuality},
		{Value: info.Oscillation},
		{Value: info.Tilt},
		{Value: info.Score},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "720px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Stability Breakdown", Subtitle: info.Tick.Format(time.RFC3339)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 100}),
	)
	bar.SetXAxis(x).
		AddSeries("scores", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(bar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("render error: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleTrainingFitness renders best/mean fitness per generation for a
// training run.
// Query params:
//   - run_id (optional; defaults to the most recent run)
func (m *Monitor) handleTrainingFitness(w http.ResponseWriter, r *http.Request) {
	if m.store == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "training DB not configured")
		return
	}

	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		runs, err := m.store.TrainingRuns(1)
		if err != nil {
			httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to list runs: %v", err))
			return
		}
		if len(runs) == 0 {
			httputil.WriteJSONError(w, http.StatusNotFound, "no training runs recorded")
			return
		}
		runID = runs[0].RunID
	}

	gens, err := m.store.Generations(runID)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to get generations: %v", err))
		return
	}
	if len(gens) == 0 {
		httputil.WriteJSONError(w, http.StatusNotFound, "no generations for run")
		return
	}

	x := make([]string, 0, len(gens))
	best := make([]opts.LineData, 0, len(gens))
	mean := make([]opts.LineData, 0, len(gens))
	for _, g := range gens {
		x = append(x, strconv.Itoa(g.Generation))
		best = append(best, opts.LineData{Value: g.BestFitness})
		mean = append(mean, opts.LineData{Value: g.MeanFitness})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Training Fitness", Theme: "dark", Width: "1200px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Fitness by Generation", Subtitle: fmt.Sprintf("run=%s generations=%d", runID, len(gens))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Generation"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Fitness"}),
	)
	line.SetXAxis(x).
		AddSeries("best", best).
		AddSeries("mean", mean)

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleDebugDashboard renders a simple dashboard with iframes to the
// debug charts.
func (m *Monitor) handleDebugDashboard(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(debugDashboardHTML))
}

const debugDashboardHTML = `<!DOCTYPE html>
<html>
<head>
<title>Stacking Debug Charts</title>
<style>
body { background: #111; color: #ddd; font-family: sans-serif; margin: 1em; }
iframe { border: 1px solid #333; width: 100%; height: 640px; margin-bottom: 1em; }
</style>
</head>
<body>
<h1>Stacking Debug Charts</h1>
<iframe src="/debug/charts/stability"></iframe>
<iframe src="/debug/charts/scores"></iframe>
<iframe src="/debug/charts/training"></iframe>
</body>
</html>
`
