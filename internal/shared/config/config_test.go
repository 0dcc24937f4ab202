package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "party-bet")
	cfg := Load()

	if cfg.HTTPPort != "8080" || cfg.MetricsPort != "9095" {
		t.Errorf("ports = %s/%s, want 8080/9095", cfg.HTTPPort, cfg.MetricsPort)
	}
	if cfg.ScoresKey != "sportsBetHighScores" {
		t.Errorf("scores key = %q", cfg.ScoresKey)
	}
	want := []time.Duration{10 * time.Second, 50 * time.Second}
	if len(cfg.RoundOffsets) != len(want) || cfg.RoundOffsets[0] != want[0] || cfg.RoundOffsets[1] != want[1] {
		t.Errorf("round offsets = %v, want %v", cfg.RoundOffsets, want)
	}
	if cfg.ResultDelay != 5*time.Second {
		t.Errorf("result delay = %v", cfg.ResultDelay)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVICE_NAME", "round-history-worker")
	t.Setenv("ROUND_OFFSETS", "1s, 2s,3s")
	t.Setenv("RESULT_DELAY", "250ms")
	t.Setenv("EVENT_SOURCE_COUNT", "5")

	cfg := Load()
	if cfg.HTTPPort != "" || cfg.MetricsPort != "9097" {
		t.Errorf("ports = %q/%q", cfg.HTTPPort, cfg.MetricsPort)
	}
	if len(cfg.RoundOffsets) != 3 || cfg.RoundOffsets[2] != 3*time.Second {
		t.Errorf("round offsets = %v", cfg.RoundOffsets)
	}
	if cfg.ResultDelay != 250*time.Millisecond {
		t.Errorf("result delay = %v", cfg.ResultDelay)
	}
	if cfg.EventSourceCount != 5 {
		t.Errorf("event source count = %d", cfg.EventSourceCount)
	}
}

func TestLoadInvalidOffsetsKeepDefault(t *testing.T) {
	t.Setenv("ROUND_OFFSETS", "10s,banana")
	cfg := Load()
	if len(cfg.RoundOffsets) != 2 {
		t.Errorf("round offsets = %v, want default", cfg.RoundOffsets)
	}
}
