package evolve

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomGenomeWithinBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 100; i++ {
		g := randomGenome(rng)
		genes := g.genes()
		for j, v := range genes {
			assert.GreaterOrEqual(t, v, genomeBounds[j][0])
			assert.LessOrEqual(t, v, genomeBounds[j][1])
		}
	}
}

func TestCrossoverMixesParents(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	a := Genome{CenterPull: 0, LateralBias: -1, NudgeGain: 0, CautionFloor: 0}
	b := Genome{CenterPull: 2, LateralBias: 1, NudgeGain: 3, CautionFloor: 100}

	for i := 0; i < 50; i++ {
		child := crossover(rng, a, b)
		ga, gb, gc := a.genes(), b.genes(), child.genes()
		for j := range gc {
			assert.True(t, gc[j] == ga[j] || gc[j] == gb[j],
				"gene %d value %f came from neither parent", j, gc[j])
		}
	}
}

func TestMutateRespectsBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	g := Genome{CenterPull: 2, LateralBias: 1, NudgeGain: 3, CautionFloor: 100}
	for i := 0; i < 200; i++ {
		m := mutate(rng, g, 1.0)
		genes := m.genes()
		for j, v := range genes {
			require.GreaterOrEqual(t, v, genomeBounds[j][0])
			require.LessOrEqual(t, v, genomeBounds[j][1])
		}
	}
}

func TestMutateZeroRateIsIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	g := randomGenome(rng)
	assert.Equal(t, g, mutate(rng, g, 0))
}

func TestEvaluateDeterministic(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxPieces = 3
	opts.MaxSteps = 120 * 30
	tr := NewTrainer(opts)

	g := Genome{CenterPull: 0.5, NudgeGain: 0.5, CautionFloor: 10}
	first := tr.Evaluate(g)
	second := tr.Evaluate(g)
	assert.Equal(t, first, second, "same genome and seed must score identically")
	assert.Greater(t, first, 0.0, "a sane policy should place at least one piece")
}

func TestTrainerRunRecordsGenerations(t *testing.T) {
	if testing.Short() {
		t.Skip("training loop is slow")
	}
	opts := Options{
		Population:  4,
		Generations: 2,
		Seed:        5,
		MaxPieces:   2,
		MaxSteps:    120 * 20,
	}
	tr := NewTrainer(opts)

	var seen []GenerationStats
	best, fitness, err := tr.Run(context.Background(), func(stats GenerationStats) {
		seen = append(seen, stats)
	})
	require.NoError(t, err)
	require.Len(t, seen, 2)
	assert.Equal(t, 0, seen[0].Generation)
	assert.Equal(t, 1, seen[1].Generation)
	assert.GreaterOrEqual(t, seen[0].BestFitness, seen[0].MeanFitness)
	assert.Greater(t, fitness, 0.0)
	genes := best.genes()
	for j, v := range genes {
		assert.GreaterOrEqual(t, v, genomeBounds[j][0])
		assert.LessOrEqual(t, v, genomeBounds[j][1])
	}
}

func TestTrainerRunHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tr := NewTrainer(Options{Population: 4, Generations: 100, Seed: 1, MaxPieces: 1, MaxSteps: 100})
	_, _, err := tr.Run(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
