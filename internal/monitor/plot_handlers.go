package monitor

import (
	"net/http"

	"github.com/mmarfinetz/3dTetris/internal/httputil"
	"github.com/mmarfinetz/3dTetris/internal/monitoring"
)

// handlePlotsStart begins a PNG capture in a fresh timestamped
// directory under the configured base dir.
func (m *Monitor) handlePlotsStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if m.plotter == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "plot export disabled; start the server with -plots")
		return
	}
	if m.plotter.IsEnabled() {
		httputil.WriteJSONError(w, http.StatusConflict, "plot capture already running")
		return
	}

	outputDir := MakePlotOutputDir(m.plotsBaseDir)
	if err := m.plotter.Start(outputDir); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, "failed to start plot capture: "+err.Error())
		return
	}
	monitoring.Logf("plot capture started, output: %s", outputDir)
	httputil.WriteJSONOK(w, map[string]string{
		"status":     "recording",
		"output_dir": outputDir,
	})
}

// handlePlotsStop ends the capture and writes the PNG files.
func (m *Monitor) handlePlotsStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.WriteJSONError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if m.plotter == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "plot export disabled; start the server with -plots")
		return
	}
	if !m.plotter.IsEnabled() {
		httputil.WriteJSONError(w, http.StatusConflict, "no plot capture running")
		return
	}

	m.plotter.Stop()
	count, err := m.plotter.GeneratePlots()
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, "failed to generate plots: "+err.Error())
		return
	}
	monitoring.Logf("generated %d plots in %s", count, m.plotter.OutputDir())
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":     "stopped",
		"plots":      count,
		"output_dir": m.plotter.OutputDir(),
	})
}
