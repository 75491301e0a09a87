// Package evolve trains piece-placement policies for the stacking game
// with a small genetic algorithm. Fitness is the final score of a
// headless game played with the candidate policy against a seeded
// world, so runs are reproducible end to end.
package evolve

import (
	"math/rand"
)

// Genome is one placement policy: the control gains the policy uses to
// steer the falling piece.
type Genome struct {
	// CenterPull pulls the falling piece toward the stack centroid.
	CenterPull float64 `json:"center_pull"`
	// LateralBias is a constant x-offset preference, letting policies
	// learn asymmetric footprints.
	LateralBias float64 `json:"lateral_bias"`
	// NudgeGain scales the corrective velocity applied per analysis
	// tick.
	NudgeGain float64 `json:"nudge_gain"`
	// CautionFloor is the stability score below which the policy stops
	// steering and lets the stack settle.
	CautionFloor float64 `json:"caution_floor"`
}

// genomeBounds clamps each gene to a sane control range.
var genomeBounds = [4][2]float64{
	{0, 2},   // CenterPull
	{-1, 1},  // LateralBias
	{0, 3},   // NudgeGain
	{0, 100}, // CautionFloor
}

func (g Genome) genes() [4]float64 {
	return [4]float64{g.CenterPull, g.LateralBias, g.NudgeGain, g.CautionFloor}
}

func fromGenes(genes [4]float64) Genome {
	for i := range genes {
		lo, hi := genomeBounds[i][0], genomeBounds[i][1]
		if genes[i] < lo {
			genes[i] = lo
		}
		if genes[i] > hi {
			genes[i] = hi
		}
	}
	return Genome{
		CenterPull:   genes[0],
		LateralBias:  genes[1],
		NudgeGain:    genes[2],
		CautionFloor: genes[3],
	}
}

// randomGenome draws each gene uniformly from its bounds.
func randomGenome(rng *rand.Rand) Genome {
	var genes [4]float64
	for i := range genes {
		lo, hi := genomeBounds[i][0], genomeBounds[i][1]
		genes[i] = lo + rng.Float64()*(hi-lo)
	}
	return fromGenes(genes)
}

// crossover mixes two parents gene by gene (uniform crossover).
func crossover(rng *rand.Rand, a, b Genome) Genome {
	ga, gb := a.genes(), b.genes()
	var child [4]float64
	for i := range child {
		if rng.Float64() < 0.5 {
			child[i] = ga[i]
		} else {
			child[i] = gb[i]
		}
	}
	return fromGenes(child)
}

// mutate perturbs each gene with probability rate by Gaussian noise
// scaled to a tenth of the gene's range.
func mutate(rng *rand.Rand, g Genome, rate float64) Genome {
	genes := g.genes()
	for i := range genes {
		if rng.Float64() >= rate {
			continue
		}
		span := genomeBounds[i][1] - genomeBounds[i][0]
		genes[i] += rng.NormFloat64() * span * 0.1
	}
	return fromGenes(genes)
}
