package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/mmarfinetz/3dTetris/internal/game"
	"github.com/mmarfinetz/3dTetris/internal/physics"
	"github.com/mmarfinetz/3dTetris/internal/sim"
	"github.com/mmarfinetz/3dTetris/internal/stability"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for tuning parameters.
// Fields are pointers so a partial JSON file only overrides what it
// names; the Get* accessors supply defaults for everything else.
type TuningConfig struct {
	// Stability analysis params
	ContactMergeDistance  *float64 `json:"contact_merge_distance,omitempty"`
	MinContactPoints      *int     `json:"min_contact_points,omitempty"`
	CenterOfMassThreshold *float64 `json:"center_of_mass_threshold,omitempty"`
	ExpectedAreaPerPiece  *float64 `json:"expected_area_per_piece,omitempty"`
	HistoryCapacity       *int     `json:"history_capacity,omitempty"`
	MaxAllowedOscillation *float64 `json:"max_allowed_oscillation,omitempty"`
	MaxAllowedTiltDegrees *float64 `json:"max_allowed_tilt_degrees,omitempty"`
	CriticalThreshold     *float64 `json:"critical_threshold,omitempty"`
	SmoothingHalfLife     *float64 `json:"smoothing_half_life,omitempty"`

	// Clock params
	StepInterval     *string `json:"step_interval,omitempty"`     // duration string like "8.33ms"
	AnalysisInterval *string `json:"analysis_interval,omitempty"` // duration string like "100ms"
	HistoryLimit     *int    `json:"history_limit,omitempty"`

	// World params
	Gravity       *float64 `json:"gravity,omitempty"`
	SettleSpeed   *float64 `json:"settle_speed,omitempty"`
	SettleSteps   *int     `json:"settle_steps,omitempty"`
	SettleDamping *float64 `json:"settle_damping,omitempty"`

	// Game params
	SpawnJitter   *float64 `json:"spawn_jitter,omitempty"`
	GameOverGrace *string  `json:"game_over_grace,omitempty"` // duration string like "2s"
	HeightBonus   *float64 `json:"height_bonus,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under
// the max file size. Fields omitted from the JSON file retain their
// default values, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ContactMergeDistance != nil && *c.ContactMergeDistance < 0 {
		return fmt.Errorf("contact_merge_distance must be non-negative, got %f", *c.ContactMergeDistance)
	}
	if c.MinContactPoints != nil && *c.MinContactPoints < 1 {
		return fmt.Errorf("min_contact_points must be positive, got %d", *c.MinContactPoints)
	}
	if c.CriticalThreshold != nil {
		if *c.CriticalThreshold < 0 || *c.CriticalThreshold > 100 {
			return fmt.Errorf("critical_threshold must be between 0 and 100, got %f", *c.CriticalThreshold)
		}
	}
	if c.MaxAllowedTiltDegrees != nil {
		if *c.MaxAllowedTiltDegrees <= 0 || *c.MaxAllowedTiltDegrees > 90 {
			return fmt.Errorf("max_allowed_tilt_degrees must be in (0, 90], got %f", *c.MaxAllowedTiltDegrees)
		}
	}
	for name, v := range map[string]*string{
		"step_interval":     c.StepInterval,
		"analysis_interval": c.AnalysisInterval,
		"game_over_grace":   c.GameOverGrace,
	} {
		if v != nil && *v != "" {
			if _, err := time.ParseDuration(*v); err != nil {
				return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
			}
		}
	}
	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

// GetAnalysisInterval parses and returns the analysis cadence.
func (c *TuningConfig) GetAnalysisInterval() time.Duration {
	return durationOr(c.AnalysisInterval, 100*time.Millisecond)
}

// GetStepInterval parses and returns the physics timestep.
func (c *TuningConfig) GetStepInterval() time.Duration {
	return durationOr(c.StepInterval, time.Second/120)
}

// GetGameOverGrace parses and returns the instability grace duration.
func (c *TuningConfig) GetGameOverGrace() time.Duration {
	return durationOr(c.GameOverGrace, 2*time.Second)
}

// StabilityConfig materializes the analysis configuration, starting
// from stability.DefaultConfig and overriding the set fields.
func (c *TuningConfig) StabilityConfig() stability.Config {
	cfg := stability.DefaultConfig()
	if c.ContactMergeDistance != nil {
		cfg.ContactMergeDistance = *c.ContactMergeDistance
	}
	if c.MinContactPoints != nil {
		cfg.MinContactPoints = *c.MinContactPoints
	}
	if c.CenterOfMassThreshold != nil {
		cfg.CenterOfMassThreshold = *c.CenterOfMassThreshold
	}
	if c.ExpectedAreaPerPiece != nil {
		cfg.ExpectedAreaPerPiece = *c.ExpectedAreaPerPiece
	}
	if c.HistoryCapacity != nil {
		cfg.HistoryCapacity = *c.HistoryCapacity
	}
	if c.MaxAllowedOscillation != nil {
		cfg.MaxAllowedOscillation = *c.MaxAllowedOscillation
	}
	if c.MaxAllowedTiltDegrees != nil {
		cfg.MaxAllowedTilt = *c.MaxAllowedTiltDegrees * math.Pi / 180
	}
	if c.CriticalThreshold != nil {
		cfg.CriticalThreshold = *c.CriticalThreshold
	}
	if c.SmoothingHalfLife != nil {
		cfg.SmoothingHalfLife = *c.SmoothingHalfLife
	}
	return cfg
}

// WorldConfig materializes the physics world configuration.
func (c *TuningConfig) WorldConfig() physics.WorldConfig {
	cfg := physics.DefaultWorldConfig()
	if c.Gravity != nil {
		cfg.Gravity = *c.Gravity
	}
	if c.SettleSpeed != nil {
		cfg.SettleSpeed = *c.SettleSpeed
	}
	if c.SettleSteps != nil {
		cfg.SettleSteps = *c.SettleSteps
	}
	if c.SettleDamping != nil {
		cfg.SettleDamping = *c.SettleDamping
	}
	return cfg
}

// GameConfig materializes the game configuration.
func (c *TuningConfig) GameConfig() game.Config {
	cfg := game.DefaultConfig()
	if c.SpawnJitter != nil {
		cfg.SpawnJitter = *c.SpawnJitter
	}
	if c.HeightBonus != nil {
		cfg.HeightBonus = *c.HeightBonus
	}
	cfg.GameOverGrace = c.GetGameOverGrace()
	return cfg
}

// RunnerConfig materializes the simulation clock configuration.
func (c *TuningConfig) RunnerConfig() sim.Config {
	cfg := sim.DefaultConfig()
	cfg.StepInterval = c.GetStepInterval()
	cfg.AnalysisInterval = c.GetAnalysisInterval()
	if c.HistoryLimit != nil {
		cfg.HistoryLimit = *c.HistoryLimit
	}
	return cfg
}
