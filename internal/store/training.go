package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TrainingRun is one persisted genetic-algorithm run.
type TrainingRun struct {
	RunID       string  `json:"run_id"`
	StartedAt   int64   `json:"started_at"`
	EndedAt     int64   `json:"ended_at,omitempty"`
	Population  int     `json:"population"`
	Generations int     `json:"generations"`
	Seed        int64   `json:"seed"`
	BestFitness float64 `json:"best_fitness"`
}

// GenerationRecord is the persisted summary of one GA generation.
type GenerationRecord struct {
	RunID         string          `json:"run_id"`
	Generation    int             `json:"generation"`
	BestFitness   float64         `json:"best_fitness"`
	MeanFitness   float64         `json:"mean_fitness"`
	StddevFitness float64         `json:"stddev_fitness"`
	BestGenome    json.RawMessage `json:"best_genome"`
	CreatedAt     int64           `json:"created_at"`
}

// BeginTrainingRun records a new run and returns its ID.
func (s *Store) BeginTrainingRun(population, generations int, seed int64) (string, error) {
	id := uuid.New().String()
	err := retryOnBusy(func() error {
		_, err := s.db.Exec(
			`INSERT INTO training_runs (run_id, started_at, population, generations, seed) VALUES (?, ?, ?, ?, ?)`,
			id, time.Now().UnixNano(), population, generations, seed,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to begin training run: %w", err)
	}
	return id, nil
}

// EndTrainingRun finalizes a run with the best fitness achieved.
func (s *Store) EndTrainingRun(id string, bestFitness float64) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(
			`UPDATE training_runs SET ended_at = ?, best_fitness = ? WHERE run_id = ?`,
			time.Now().UnixNano(), bestFitness, id,
		)
		return err
	})
}

// RecordGeneration persists one generation summary.
func (s *Store) RecordGeneration(rec GenerationRecord) error {
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO training_generations (
				run_id, generation, best_fitness, mean_fitness,
				stddev_fitness, best_genome, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			rec.RunID, rec.Generation, rec.BestFitness, rec.MeanFitness,
			rec.StddevFitness, string(rec.BestGenome), rec.CreatedAt,
		)
		return err
	})
}

// TrainingRuns returns recent runs, newest first.
func (s *Store) TrainingRuns(limit int) ([]TrainingRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT run_id, started_at, COALESCE(ended_at, 0),
		       population, generations, seed, best_fitness
		FROM training_runs
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query training runs: %w", err)
	}
	defer rows.Close()

	var out []TrainingRun
	for rows.Next() {
		var run TrainingRun
		if err := rows.Scan(
			&run.RunID, &run.StartedAt, &run.EndedAt,
			&run.Population, &run.Generations, &run.Seed, &run.BestFitness,
		); err != nil {
			return nil, fmt.Errorf("failed to scan training run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// TrainingRunByID returns one run, or nil when absent.
func (s *Store) TrainingRunByID(id string) (*TrainingRun, error) {
	var run TrainingRun
	err := s.db.QueryRow(`
		SELECT run_id, started_at, COALESCE(ended_at, 0),
		       population, generations, seed, best_fitness
		FROM training_runs WHERE run_id = ?`, id).Scan(
		&run.RunID, &run.StartedAt, &run.EndedAt,
		&run.Population, &run.Generations, &run.Seed, &run.BestFitness,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query training run: %w", err)
	}
	return &run, nil
}

// Generations returns a run's generation summaries in order.
func (s *Store) Generations(runID string) ([]GenerationRecord, error) {
	rows, err := s.db.Query(`
		SELECT run_id, generation, best_fitness, mean_fitness,
		       stddev_fitness, best_genome, created_at
		FROM training_generations
		WHERE run_id = ?
		ORDER BY generation ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var rec GenerationRecord
		var genome string
		if err := rows.Scan(
			&rec.RunID, &rec.Generation, &rec.BestFitness, &rec.MeanFitness,
			&rec.StddevFitness, &genome, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan generation: %w", err)
		}
		rec.BestGenome = json.RawMessage(genome)
		out = append(out, rec)
	}
	return out, rows.Err()
}
