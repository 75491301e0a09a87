package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmarfinetz/3dTetris/internal/game"
	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// Session is a persisted game run.
type Session struct {
	SessionID    string  `json:"session_id"`
	StartedAt    int64   `json:"started_at"`
	EndedAt      int64   `json:"ended_at,omitempty"`
	FinalScore   float64 `json:"final_score"`
	PiecesPlaced int     `json:"pieces_placed"`
	PiecesLost   int     `json:"pieces_lost"`
	Seed         int64   `json:"seed"`
}

// Sample is one persisted stability analysis result.
type Sample struct {
	SessionID      string  `json:"session_id"`
	TickUnixNanos  int64   `json:"tick_unix_nanos"`
	Score          float64 `json:"score"`
	Target         float64 `json:"target"`
	MassPosition   float64 `json:"mass_position"`
	ContactQuality float64 `json:"contact_quality"`
	Oscillation    float64 `json:"oscillation"`
	Tilt           float64 `json:"tilt"`
	OscillationMag float64 `json:"oscillation_magnitude"`
	Stable         bool    `json:"stable"`
	PiecesPlaced   int     `json:"pieces_placed"`
}

// BeginSession records a new game session and returns its ID.
func (s *Store) BeginSession(seed int64) (string, error) {
	id := uuid.New().String()
	err := retryOnBusy(func() error {
		_, err := s.db.Exec(
			`INSERT INTO game_sessions (session_id, started_at, seed) VALUES (?, ?, ?)`,
			id, time.Now().UnixNano(), seed,
		)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("failed to begin session: %w", err)
	}
	return id, nil
}

// EndSession finalizes a session with its closing totals.
func (s *Store) EndSession(id string, finalScore float64, piecesPlaced, piecesLost int) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(
			`UPDATE game_sessions SET ended_at = ?, final_score = ?, pieces_placed = ?, pieces_lost = ? WHERE session_id = ?`,
			time.Now().UnixNano(), finalScore, piecesPlaced, piecesLost, id,
		)
		return err
	})
}

// RecordSample persists one stability analysis result for a session.
func (s *Store) RecordSample(sessionID string, info stability.Info, snap game.Snapshot) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO stability_samples (
				session_id, tick_unix_nanos, score, target,
				mass_position, contact_quality, oscillation, tilt,
				oscillation_mag, stable, pieces_placed
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID, info.Tick.UnixNano(), info.Score, info.Target,
			info.MassPosition, info.ContactQuality, info.Oscillation, info.Tilt,
			info.OscillationMag, boolToInt(info.Stable), snap.PiecesPlaced,
		)
		return err
	})
}

// Samples returns up to limit samples for a session, oldest first.
func (s *Store) Samples(sessionID string, limit int) ([]Sample, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := s.db.Query(`
		SELECT session_id, tick_unix_nanos, score, target,
		       mass_position, contact_quality, oscillation, tilt,
		       oscillation_mag, stable, pieces_placed
		FROM stability_samples
		WHERE session_id = ?
		ORDER BY tick_unix_nanos ASC
		LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var sm Sample
		var stable int
		if err := rows.Scan(
			&sm.SessionID, &sm.TickUnixNanos, &sm.Score, &sm.Target,
			&sm.MassPosition, &sm.ContactQuality, &sm.Oscillation, &sm.Tilt,
			&sm.OscillationMag, &stable, &sm.PiecesPlaced,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		sm.Stable = stable != 0
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Sessions returns the most recent sessions, newest first.
func (s *Store) Sessions(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT session_id, started_at, COALESCE(ended_at, 0),
		       final_score, pieces_placed, pieces_lost, seed
		FROM game_sessions
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(
			&sess.SessionID, &sess.StartedAt, &sess.EndedAt,
			&sess.FinalScore, &sess.PiecesPlaced, &sess.PiecesLost, &sess.Seed,
		); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		out = append(out, sess)
	}
	return out, rows.Err()
}

// Session returns one session by ID.
func (s *Store) Session(id string) (*Session, error) {
	var sess Session
	err := s.db.QueryRow(`
		SELECT session_id, started_at, COALESCE(ended_at, 0),
		       final_score, pieces_placed, pieces_lost, seed
		FROM game_sessions WHERE session_id = ?`, id).Scan(
		&sess.SessionID, &sess.StartedAt, &sess.EndedAt,
		&sess.FinalScore, &sess.PiecesPlaced, &sess.PiecesLost, &sess.Seed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &sess, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
