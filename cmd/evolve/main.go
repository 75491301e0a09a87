// Command evolve runs the genetic-algorithm tuner for piece-placement
// policies against a headless game and records each generation to the
// stacking database.
//
// Usage:
//
//	evolve -population 24 -generations 40 -seed 7 -db stacking.db
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmarfinetz/3dTetris/internal/evolve"
	"github.com/mmarfinetz/3dTetris/internal/monitoring"
	"github.com/mmarfinetz/3dTetris/internal/store"
)

var (
	population  = flag.Int("population", 24, "Population size")
	generations = flag.Int("generations", 40, "Number of generations")
	seed        = flag.Int64("seed", 1, "Training seed; fixes the piece sequence")
	maxPieces   = flag.Int("max-pieces", 15, "Pieces per fitness game")
	dbFile      = flag.String("db", "stacking.db", "SQLite database path; empty disables persistence")
	verbose     = flag.Bool("verbose", false, "Enable debug logging")
)

func main() {
	flag.Parse()
	monitoring.SetVerbose(*verbose)

	opts := evolve.DefaultOptions()
	opts.Population = *population
	opts.Generations = *generations
	opts.Seed = *seed
	opts.MaxPieces = *maxPieces

	var db *store.Store
	var runID string
	if *dbFile != "" {
		var err error
		db, err = store.Open(*dbFile)
		if err != nil {
			log.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		runID, err = db.BeginTrainingRun(opts.Population, opts.Generations, opts.Seed)
		if err != nil {
			log.Fatalf("failed to begin training run: %v", err)
		}
		log.Printf("training run %s: population=%d generations=%d seed=%d",
			runID, opts.Population, opts.Generations, opts.Seed)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	record := func(stats evolve.GenerationStats) {
		log.Printf("generation %3d: best=%.1f mean=%.1f stddev=%.1f",
			stats.Generation, stats.BestFitness, stats.MeanFitness, stats.StddevFitness)
		if db == nil {
			return
		}
		genome, err := json.Marshal(stats.Best)
		if err != nil {
			log.Printf("failed to marshal genome: %v", err)
			return
		}
		rec := store.GenerationRecord{
			RunID:         runID,
			Generation:    stats.Generation,
			BestFitness:   stats.BestFitness,
			MeanFitness:   stats.MeanFitness,
			StddevFitness: stats.StddevFitness,
			BestGenome:    genome,
		}
		if err := db.RecordGeneration(rec); err != nil {
			log.Printf("failed to record generation: %v", err)
		}
	}

	trainer := evolve.NewTrainer(opts)
	best, fitness, err := trainer.Run(ctx, record)
	if err != nil {
		log.Printf("training interrupted: %v", err)
	}

	if db != nil && runID != "" {
		if err := db.EndTrainingRun(runID, fitness); err != nil {
			log.Printf("failed to end training run: %v", err)
		}
	}

	out, err := json.MarshalIndent(best, "", "  ")
	if err != nil {
		log.Fatalf("failed to marshal best genome: %v", err)
	}
	fmt.Printf("best fitness: %.1f\nbest genome:\n%s\n", fitness, out)
	if ctx.Err() != nil {
		os.Exit(1)
	}
}
