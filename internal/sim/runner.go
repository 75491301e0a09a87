// Package sim drives the game and analysis clocks. The Runner owns the
// single goroutine that mutates game state; HTTP readers get copies
// through the accessor methods.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/mmarfinetz/3dTetris/internal/game"
	"github.com/mmarfinetz/3dTetris/internal/monitoring"
	"github.com/mmarfinetz/3dTetris/internal/stability"
	"github.com/mmarfinetz/3dTetris/internal/timeutil"
)

// Sampler receives each published stability result, for persistence.
// It runs on the simulation goroutine and must return quickly.
type Sampler func(info stability.Info, snap game.Snapshot)

// Config holds the runner clocks.
type Config struct {
	// StepInterval is the fixed physics timestep.
	StepInterval time.Duration
	// AnalysisInterval is the wall-clock cadence of stability analysis,
	// independent of the physics step rate.
	AnalysisInterval time.Duration
	// HistoryLimit caps the in-memory ring of recent analysis results.
	HistoryLimit int
	// Clock defaults to the real clock; tests inject a mock.
	Clock timeutil.Clock
}

// DefaultConfig returns production runner defaults: 120Hz physics,
// 10Hz analysis.
func DefaultConfig() Config {
	return Config{
		StepInterval:     time.Second / 120,
		AnalysisInterval: 100 * time.Millisecond,
		HistoryLimit:     600,
	}
}

// Runner ticks the game at a fixed timestep and the analyzer on its own
// wall-clock cadence.
type Runner struct {
	cfg      Config
	analyzer *stability.Analyzer
	sampler  Sampler

	mu      sync.RWMutex
	game    *game.Game
	paused  bool
	latest  stability.Info
	history []stability.Info
}

// NewRunner wires a runner over the given game and analyzer. sampler
// may be nil.
func NewRunner(cfg Config, g *game.Game, analyzer *stability.Analyzer, sampler Sampler) *Runner {
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Runner{
		cfg:      cfg,
		game:     g,
		analyzer: analyzer,
		sampler:  sampler,
	}
}

// Run blocks, ticking the simulation until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) error {
	ticker := r.cfg.Clock.NewTicker(r.cfg.StepInterval)
	defer ticker.Stop()

	nextAnalysis := r.cfg.Clock.Now()
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("simulation runner stopped")
			return ctx.Err()
		case now := <-ticker.C():
			r.tick(now, &nextAnalysis)
		}
	}
}

func (r *Runner) tick(now time.Time, nextAnalysis *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.paused {
		return
	}

	r.game.Tick(r.cfg.StepInterval)

	if now.Before(*nextAnalysis) {
		return
	}
	*nextAnalysis = now.Add(r.cfg.AnalysisInterval)

	info := r.analyzer.Tick(now, r.game.World().Snapshot())
	r.game.ObserveStability(info)
	r.latest = info
	r.history = append(r.history, info)
	if limit := r.cfg.HistoryLimit; limit > 0 && len(r.history) > limit {
		r.history = r.history[len(r.history)-limit:]
	}
	if r.sampler != nil {
		r.sampler(info, r.game.Snapshot())
	}
}

// Latest returns the most recent analysis result.
func (r *Runner) Latest() stability.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest
}

// History returns a copy of the recent analysis results, oldest first.
func (r *Runner) History() []stability.Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]stability.Info, len(r.history))
	copy(out, r.history)
	return out
}

// Snapshot returns the current game snapshot.
func (r *Runner) Snapshot() game.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game.Snapshot()
}

// SetPaused pauses or resumes the simulation clock.
func (r *Runner) SetPaused(paused bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = paused
}

// Paused reports whether the simulation is paused.
func (r *Runner) Paused() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.paused
}

// Nudge forwards lateral control input to the active piece.
func (r *Runner) Nudge(dx, dz float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.game.Nudge(dx, dz)
}

// Reset restarts the run and clears the analyzer history and the
// sample ring together, so the oscillation window cannot leak across
// towers.
func (r *Runner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.game.Reset()
	r.analyzer.Reset()
	r.latest = stability.Info{}
	r.history = nil
}
