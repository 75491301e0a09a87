package monitor

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/mmarfinetz/3dTetris/internal/game"
	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// RunPlotter records stability analysis over a run for offline
// visualization. Wire Record as the runner's sampler; after the run,
// GeneratePlots writes PNG time series to the output directory.
type RunPlotter struct {
	mu        sync.Mutex
	enabled   bool
	outputDir string

	samples   []runSample
	startTime time.Time
}

type runSample struct {
	Elapsed        float64 // seconds since first sample
	Score          float64
	Target         float64
	MassPosition   float64
	ContactQuality float64
	Oscillation    float64
	Tilt           float64
	PiecesPlaced   int
	StackHeight    float64
}

// NewRunPlotter creates a plotter. It records nothing until Start is
// called.
func NewRunPlotter() *RunPlotter {
	return &RunPlotter{}
}

// Start initializes the plotter for a new run.
// outputDir should be a timestamped directory (e.g., "plots/20260831_140000")
func (rp *RunPlotter) Start(outputDir string) error {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	rp.outputDir = outputDir
	rp.enabled = true
	rp.startTime = time.Time{}
	rp.samples = nil
	return nil
}

// MakePlotOutputDir returns a timestamped run directory under baseDir
// so successive captures never overwrite each other.
func MakePlotOutputDir(baseDir string) string {
	return filepath.Join(baseDir, "run_"+time.Now().Format("20060102_150405"))
}

// OutputDir returns the directory plots are written to.
func (rp *RunPlotter) OutputDir() string {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.outputDir
}

// Stop disables sampling. Call GeneratePlots() to produce output files.
func (rp *RunPlotter) Stop() {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	rp.enabled = false
}

// IsEnabled returns true if the plotter is currently recording.
func (rp *RunPlotter) IsEnabled() bool {
	rp.mu.Lock()
	defer rp.mu.Unlock()
	return rp.enabled
}

// Record captures one analysis result. It matches sim.Sampler so it
// can be handed straight to the runner.
func (rp *RunPlotter) Record(info stability.Info, snap game.Snapshot) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if !rp.enabled {
		return
	}
	if rp.startTime.IsZero() {
		rp.startTime = info.Tick
	}

	rp.samples = append(rp.samples, runSample{
		Elapsed:        info.Tick.Sub(rp.startTime).Seconds(),
		Score:          info.Score,
		Target:         info.Target,
		MassPosition:   info.MassPosition,
		ContactQuality: info.ContactQuality,
		Oscillation:    info.Oscillation,
		Tilt:           info.Tilt,
		PiecesPlaced:   snap.PiecesPlaced,
		StackHeight:    snap.StackHeight,
	})
}

// GeneratePlots creates PNG files for the recorded run: one for the
// score timeline with its sub-score breakdown, one for game progress.
// Returns the number of plots generated and any error.
func (rp *RunPlotter) GeneratePlots() (int, error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	if rp.outputDir == "" {
		return 0, fmt.Errorf("no output directory configured")
	}
	if len(rp.samples) == 0 {
		return 0, nil
	}

	if err := rp.generateScorePlot(); err != nil {
		return 0, fmt.Errorf("score plot: %w", err)
	}
	if err := rp.generateProgressPlot(); err != nil {
		return 1, fmt.Errorf("progress plot: %w", err)
	}
	return 2, nil
}

func (rp *RunPlotter) generateScorePlot() error {
	p := plot.New()
	p.Title.Text = "Stability Score Timeline"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Score"
	p.Y.Min = 0
	p.Y.Max = 100

	series := []struct {
		name  string
		color color.Color
		value func(s runSample) float64
	}{
		{"smoothed", color.RGBA{R: 0x1f, G: 0x9e, B: 0x89, A: 255}, func(s runSample) float64 { return s.Score }},
		{"raw", color.RGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 255}, func(s runSample) float64 { return s.Target }},
		{"mass position", color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 255}, func(s runSample) float64 { return s.MassPosition }},
		{"contact quality", color.RGBA{R: 0xb5, G: 0xde, B: 0x2b, A: 255}, func(s runSample) float64 { return s.ContactQuality }},
		{"oscillation", color.RGBA{R: 0xff, G: 0x52, B: 0x52, A: 255}, func(s runSample) float64 { return s.Oscillation }},
		{"tilt", color.RGBA{R: 0x48, G: 0x27, B: 0x77, A: 255}, func(s runSample) float64 { return s.Tilt }},
	}

	for _, sr := range series {
		pts := make(plotter.XYs, 0, len(rp.samples))
		for _, s := range rp.samples {
			pts = append(pts, plotter.XY{X: s.Elapsed, Y: sr.value(s)})
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return err
		}
		line.Color = sr.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(sr.name, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	out := filepath.Join(rp.outputDir, "stability_timeline.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("save score plot: %w", err)
	}
	return nil
}

func (rp *RunPlotter) generateProgressPlot() error {
	p := plot.New()
	p.Title.Text = "Game Progress"
	p.X.Label.Text = "Time (s)"
	p.Y.Label.Text = "Value"

	placedPts := make(plotter.XYs, 0, len(rp.samples))
	heightPts := make(plotter.XYs, 0, len(rp.samples))
	for _, s := range rp.samples {
		placedPts = append(placedPts, plotter.XY{X: s.Elapsed, Y: float64(s.PiecesPlaced)})
		heightPts = append(heightPts, plotter.XY{X: s.Elapsed, Y: s.StackHeight})
	}

	placedLine, err := plotter.NewLine(placedPts)
	if err != nil {
		return err
	}
	placedLine.Color = color.RGBA{R: 0x35, G: 0xb7, B: 0x79, A: 255}
	placedLine.Width = vg.Points(1)
	p.Add(placedLine)
	p.Legend.Add("pieces placed", placedLine)

	heightLine, err := plotter.NewLine(heightPts)
	if err != nil {
		return err
	}
	heightLine.Color = color.RGBA{R: 0x26, G: 0x82, B: 0x8e, A: 255}
	heightLine.Width = vg.Points(1)
	p.Add(heightLine)
	p.Legend.Add("stack height", heightLine)

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	out := filepath.Join(rp.outputDir, "game_progress.png")
	if err := p.Save(14*vg.Inch, 6*vg.Inch, out); err != nil {
		return fmt.Errorf("save progress plot: %w", err)
	}
	return nil
}
