package evolve

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/mmarfinetz/3dTetris/internal/game"
	"github.com/mmarfinetz/3dTetris/internal/monitoring"
	"github.com/mmarfinetz/3dTetris/internal/physics"
	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// Options configures a training run.
type Options struct {
	Population     int
	Generations    int
	Seed           int64
	TournamentSize int
	MutationRate   float64
	// MaxPieces ends a fitness game after this many placements.
	MaxPieces int
	// MaxSteps caps a fitness game's physics steps, so a pathological
	// policy cannot stall the run.
	MaxSteps int
}

// DefaultOptions returns sensible training defaults.
func DefaultOptions() Options {
	return Options{
		Population:     24,
		Generations:    40,
		Seed:           1,
		TournamentSize: 3,
		MutationRate:   0.25,
		MaxPieces:      15,
		MaxSteps:       120 * 120, // two simulated minutes at 120Hz
	}
}

// GenerationStats summarizes one generation for persistence and the
// dashboards.
type GenerationStats struct {
	Generation    int
	BestFitness   float64
	MeanFitness   float64
	StddevFitness float64
	Best          Genome
}

// Recorder receives each generation's summary. It runs on the training
// goroutine.
type Recorder func(stats GenerationStats)

// Trainer runs the genetic algorithm.
type Trainer struct {
	opts Options
	rng  *rand.Rand
}

// NewTrainer creates a trainer. Zero or negative option fields fall
// back to defaults.
func NewTrainer(opts Options) *Trainer {
	def := DefaultOptions()
	if opts.Population < 2 {
		opts.Population = def.Population
	}
	if opts.Generations < 1 {
		opts.Generations = def.Generations
	}
	if opts.TournamentSize < 2 {
		opts.TournamentSize = def.TournamentSize
	}
	if opts.MutationRate <= 0 {
		opts.MutationRate = def.MutationRate
	}
	if opts.MaxPieces < 1 {
		opts.MaxPieces = def.MaxPieces
	}
	if opts.MaxSteps < 1 {
		opts.MaxSteps = def.MaxSteps
	}
	return &Trainer{
		opts: opts,
		rng:  rand.New(rand.NewSource(opts.Seed)),
	}
}

type scored struct {
	genome  Genome
	fitness float64
}

// Run executes the GA until the generation budget is spent or ctx is
// cancelled, returning the best genome found and its fitness.
func (t *Trainer) Run(ctx context.Context, record Recorder) (Genome, float64, error) {
	population := make([]scored, t.opts.Population)
	for i := range population {
		population[i] = scored{genome: randomGenome(t.rng)}
	}

	var best scored
	for gen := 0; gen < t.opts.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return best.genome, best.fitness, err
		}

		for i := range population {
			population[i].fitness = t.Evaluate(population[i].genome)
		}
		sort.Slice(population, func(i, j int) bool {
			return population[i].fitness > population[j].fitness
		})
		if population[0].fitness > best.fitness || gen == 0 {
			best = population[0]
		}

		fitnesses := make([]float64, len(population))
		for i, s := range population {
			fitnesses[i] = s.fitness
		}
		stats := GenerationStats{
			Generation:    gen,
			BestFitness:   population[0].fitness,
			MeanFitness:   stat.Mean(fitnesses, nil),
			StddevFitness: stat.StdDev(fitnesses, nil),
			Best:          population[0].genome,
		}
		monitoring.Debugf("generation %d: best=%.1f mean=%.1f", gen, stats.BestFitness, stats.MeanFitness)
		if record != nil {
			record(stats)
		}

		population = t.nextGeneration(population)
	}
	return best.genome, best.fitness, nil
}

// nextGeneration breeds a new population: elitism keeps the best
// genome unchanged, the rest come from tournament-selected parents.
func (t *Trainer) nextGeneration(population []scored) []scored {
	next := make([]scored, 0, len(population))
	next = append(next, scored{genome: population[0].genome})
	for len(next) < len(population) {
		a := t.tournament(population)
		b := t.tournament(population)
		child := crossover(t.rng, a, b)
		child = mutate(t.rng, child, t.opts.MutationRate)
		next = append(next, scored{genome: child})
	}
	return next
}

func (t *Trainer) tournament(population []scored) Genome {
	best := population[t.rng.Intn(len(population))]
	for i := 1; i < t.opts.TournamentSize; i++ {
		c := population[t.rng.Intn(len(population))]
		if c.fitness > best.fitness {
			best = c
		}
	}
	return best.genome
}

// Evaluate plays one headless game with the genome's policy and
// returns its fitness. The world seed is fixed per trainer, so two
// genomes face the same piece sequence.
func (t *Trainer) Evaluate(genome Genome) float64 {
	world := physics.NewWorld(physics.DefaultWorldConfig())
	g := game.New(game.DefaultConfig(), world, t.opts.Seed)
	analyzer := stability.NewAnalyzer(stability.DefaultConfig())

	const dt = time.Second / 120
	const analysisEvery = 12 // 10Hz analysis at a 120Hz step

	// Synthetic clock: fitness games run as fast as the CPU allows.
	now := time.Unix(0, 0)
	var info stability.Info
	haveInfo := false

	for step := 0; step < t.opts.MaxSteps; step++ {
		now = now.Add(dt)
		g.Tick(dt)
		if g.State() == game.StateGameOver || g.PiecesPlaced() >= t.opts.MaxPieces {
			break
		}

		if step%analysisEvery == 0 {
			info = analyzer.Tick(now, g.World().Snapshot())
			g.ObserveStability(info)
			haveInfo = true
		}
		// Steering runs at the analysis cadence, not every step, so the
		// control authority is bounded regardless of gain.
		if haveInfo && step%analysisEvery == 0 {
			t.steer(g, genome, info)
		}
	}

	// Placements carry most of the fitness so early policies that keep
	// anything on the base at all outrank ones that do not.
	return g.Score() + float64(g.PiecesPlaced())*10
}

// steer applies the genome's control law to the falling piece.
func (t *Trainer) steer(g *game.Game, genome Genome, info stability.Info) {
	if info.Score < genome.CautionFloor {
		return // let the stack settle
	}
	snap := g.Snapshot()
	if snap.ActivePieceID == "" {
		return
	}
	var piecePos stability.Vec3
	found := false
	for _, b := range snap.Bodies {
		if b.ID == snap.ActivePieceID {
			piecePos = b.Bounds.Center()
			found = true
			break
		}
	}
	if !found {
		return
	}

	targetX := info.Centroid.X*genome.CenterPull + genome.LateralBias
	targetZ := info.Centroid.Z * genome.CenterPull
	dx := clampUnit((targetX - piecePos.X) * genome.NudgeGain)
	dz := clampUnit((targetZ - piecePos.Z) * genome.NudgeGain)
	g.Nudge(dx, dz)
}

func clampUnit(v float64) float64 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
