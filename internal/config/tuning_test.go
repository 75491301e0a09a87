package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tuning.json")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadTuningConfigPartial(t *testing.T) {
	path := writeConfig(t, `{"min_contact_points": 4, "analysis_interval": "50ms"}`)
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	sc := cfg.StabilityConfig()
	if sc.MinContactPoints != 4 {
		t.Errorf("MinContactPoints = %d, want 4", sc.MinContactPoints)
	}
	if sc.ContactMergeDistance != 0.1 {
		t.Errorf("unset field should keep default, got %f", sc.ContactMergeDistance)
	}
	if got := cfg.GetAnalysisInterval(); got != 50*time.Millisecond {
		t.Errorf("GetAnalysisInterval = %v, want 50ms", got)
	}
}

func TestLoadTuningConfigRejectsNonJSON(t *testing.T) {
	if _, err := LoadTuningConfig("tuning.yaml"); err == nil {
		t.Error("expected extension error")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		wantErr bool
	}{
		{"valid", `{"critical_threshold": 20}`, false},
		{"threshold too high", `{"critical_threshold": 150}`, true},
		{"negative merge distance", `{"contact_merge_distance": -1}`, true},
		{"zero contact points", `{"min_contact_points": 0}`, true},
		{"bad duration", `{"game_over_grace": "soon"}`, true},
		{"tilt out of range", `{"max_allowed_tilt_degrees": 120}`, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.json)
			_, err := LoadTuningConfig(path)
			if (err != nil) != tc.wantErr {
				t.Errorf("LoadTuningConfig error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestTiltDegreesConversion(t *testing.T) {
	path := writeConfig(t, `{"max_allowed_tilt_degrees": 45}`)
	cfg, err := LoadTuningConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.StabilityConfig().MaxAllowedTilt; math.Abs(got-math.Pi/4) > 1e-9 {
		t.Errorf("MaxAllowedTilt = %f, want pi/4", got)
	}
}

func TestDefaultsFileRoundTrip(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	sc := cfg.StabilityConfig()
	if sc.MinContactPoints != 3 || sc.CriticalThreshold != 15 {
		t.Errorf("defaults file disagrees with documented defaults: %+v", sc)
	}
	if got := cfg.RunnerConfig().AnalysisInterval; got != 100*time.Millisecond {
		t.Errorf("analysis interval default = %v", got)
	}
	if got := cfg.GameConfig().GameOverGrace; got != 2*time.Second {
		t.Errorf("game over grace default = %v", got)
	}
	if got := cfg.WorldConfig().Gravity; got != 9.81 {
		t.Errorf("gravity default = %f", got)
	}
}
