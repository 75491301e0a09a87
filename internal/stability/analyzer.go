package stability

import (
	"math"
	"time"
)

// Analyzer runs the full analysis pipeline on a fixed wall-clock
// cadence: support polygon, centroid history, sub-scores, combination,
// and exponential smoothing of the published score.
//
// Analyzer is single-threaded by design; the simulation runner is the
// only caller of Tick. It holds no references into the game's live
// objects, only the snapshots passed to each Tick.
type Analyzer struct {
	cfg     Config
	history *CentroidHistory

	smoothed   float64
	hasSample  bool
	lastSample time.Time
}

// NewAnalyzer creates an Analyzer with the given configuration.
func NewAnalyzer(cfg Config) *Analyzer {
	return &Analyzer{
		cfg:     cfg,
		history: NewCentroidHistory(cfg.HistoryCapacity),
	}
}

// Config returns the analyzer's configuration.
func (a *Analyzer) Config() Config { return a.cfg }

// Reset clears the centroid history and smoothing state, for tower
// reset.
func (a *Analyzer) Reset() {
	a.history.Reset()
	a.smoothed = 0
	a.hasSample = false
}

// Tick recomputes the stability analysis from the given body snapshots
// and returns the published Info. An empty stack is trivially stable
// and scores 100 with an empty polygon. Tick never fails; degenerate
// geometry maps to the sentinel sub-scores.
func (a *Analyzer) Tick(now time.Time, bodies []Body) Info {
	info := Info{Tick: now}

	if len(bodies) == 0 {
		info.MassPosition = 100
		info.ContactQuality = 100
		info.Oscillation = 100
		info.Tilt = 100
		info.Target = 100
		info.Score = a.smooth(now, 100)
		info.Stable = info.Score >= a.cfg.CriticalThreshold
		return info
	}

	centroid, ok := WeightedCentroid(bodies)
	if ok {
		a.history.Push(centroid)
	}
	info.Centroid = centroid

	info.Polygon = SupportPolygon(bodies, a.cfg.ContactMergeDistance, a.cfg.MinContactPoints)
	info.OscillationMag = a.history.Oscillation()

	pieces := 0
	for _, b := range bodies {
		if b.Role == RolePiece {
			pieces++
		}
	}

	info.MassPosition = MassPositionScore(centroid, info.Polygon, a.cfg)
	info.ContactQuality = ContactQualityScore(info.Polygon, pieces, a.cfg)
	info.Oscillation = OscillationScore(info.OscillationMag, a.cfg)
	info.Tilt = TiltScore(bodies, a.cfg)

	info.Target = CombineScores(info.MassPosition, info.ContactQuality, info.Oscillation, info.Tilt)
	info.Score = a.smooth(now, info.Target)
	info.Stable = info.Score >= a.cfg.CriticalThreshold
	return info
}

// smooth moves the published score toward target with half-life
// cfg.SmoothingHalfLife. The first sample snaps directly to target so
// a fresh analyzer does not fade in from zero.
func (a *Analyzer) smooth(now time.Time, target float64) float64 {
	if !a.hasSample || a.cfg.SmoothingHalfLife <= 0 {
		a.smoothed = target
		a.hasSample = true
		a.lastSample = now
		return a.smoothed
	}

	dt := now.Sub(a.lastSample).Seconds()
	a.lastSample = now
	if dt <= 0 {
		return a.smoothed
	}

	alpha := 1 - math.Exp(-math.Ln2*dt/a.cfg.SmoothingHalfLife)
	a.smoothed += (target - a.smoothed) * alpha
	return a.smoothed
}
