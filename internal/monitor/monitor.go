// Package monitor provides debugging-only HTTP chart endpoints and a
// PNG plot exporter for stacking runs. None of the endpoints here are
// authenticated; they exist so an operator can eyeball the stability
// pipeline without the game UI.
package monitor

import (
	"net/http"

	"github.com/mmarfinetz/3dTetris/internal/sim"
	"github.com/mmarfinetz/3dTetris/internal/store"
)

// echartsAssetsPrefix points chart pages at the hosted echarts bundle
// so debug charts work without shipping JS assets in the binary.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// Monitor exposes debug chart handlers over a running simulation and,
// optionally, the persistence store for training history.
type Monitor struct {
	runner *sim.Runner
	store  *store.Store

	plotter      *RunPlotter
	plotsBaseDir string
}

// NewMonitor creates a monitor. The store may be nil; training charts
// then return 503.
func NewMonitor(runner *sim.Runner, st *store.Store) *Monitor {
	return &Monitor{runner: runner, store: st}
}

// EnablePlots attaches a run plotter so the /debug/plots endpoints can
// start and stop PNG export. Run directories are created under baseDir.
func (m *Monitor) EnablePlots(rp *RunPlotter, baseDir string) {
	m.plotter = rp
	m.plotsBaseDir = baseDir
}

// AttachRoutes registers the debug chart endpoints on mux.
func (m *Monitor) AttachRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/charts", m.handleDebugDashboard)
	mux.HandleFunc("/debug/charts/stability", m.handleStabilityTimeline)
	mux.HandleFunc("/debug/charts/scores", m.handleScoreBreakdown)
	mux.HandleFunc("/debug/charts/training", m.handleTrainingFitness)
	mux.HandleFunc("/debug/plots/start", m.handlePlotsStart)
	mux.HandleFunc("/debug/plots/stop", m.handlePlotsStop)
}
