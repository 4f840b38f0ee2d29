package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/san-kum/musclemesh/internal/config"
	"github.com/san-kum/musclemesh/internal/dynamo"
)

func newRunCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile, holds = "", "", nil
	cmd := &cobra.Command{Use: "run"}
	addSimFlags(cmd)
	cmd.Flags().StringArrayVar(&holds, "hold", nil, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	return cmd
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newRunCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	def := config.DefaultConfig()
	if cfg.Run.Ticks != def.Run.Ticks || cfg.Swarm.Mode != def.Swarm.Mode {
		t.Errorf("unexpected config %+v", cfg.Run)
	}
}

func TestLoadConfigFlagsOverridePreset(t *testing.T) {
	cmd := newRunCmd(t, "--ticks", "42", "--partition", "--hold", "g:1:5")
	preset = "scatter"

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "scatter" || cfg.Swarm.Mode != "scatter" {
		t.Errorf("preset not applied: %s %s", cfg.Name, cfg.Swarm.Mode)
	}
	if cfg.Run.Ticks != 42 {
		t.Errorf("ticks = %d, want 42", cfg.Run.Ticks)
	}
	if !cfg.Partition.Enabled {
		t.Error("partition flag not applied")
	}
	if len(cfg.Script) != 2 || cfg.Script[1].Tick != 5 {
		t.Errorf("script = %+v", cfg.Script)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("run:\n  ticks: 7\nswarm:\n  mode: scatter\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := newRunCmd(t, "--mode", "anchor")
	configFile = path

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Run.Ticks != 7 {
		t.Errorf("ticks = %d, want 7 from file", cfg.Run.Ticks)
	}
	if cfg.Swarm.Mode != "anchor" {
		t.Errorf("mode = %s, flag should win", cfg.Swarm.Mode)
	}
}

func TestLoadConfigPresetThenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte("run:\n  ticks: 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := newRunCmd(t)
	preset, configFile = "bloom", path

	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Run.Ticks != 7 {
		t.Errorf("ticks = %d, want 7 from file", cfg.Run.Ticks)
	}
	if cfg.Name != "bloom" || !cfg.Tissue.Enabled || cfg.Swarm.Mode != "scatter" {
		t.Errorf("preset dropped under config file: %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	cmd := newRunCmd(t)
	preset = "nope"
	if _, err := loadConfig(cmd); !errors.Is(err, dynamo.ErrUnknownPreset) {
		t.Errorf("expected ErrUnknownPreset, got %v", err)
	}

	cmd = newRunCmd(t, "--fps", "0")
	if _, err := loadConfig(cmd); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("expected ErrParameterBounds, got %v", err)
	}

	cmd = newRunCmd(t, "--hold", "bad")
	if _, err := loadConfig(cmd); err == nil {
		t.Error("expected error for bad hold")
	}
}

func TestParseGrid(t *testing.T) {
	name, values, err := parseGrid("grid.damping=0.8:0.9:3")
	if err != nil {
		t.Fatal(err)
	}
	if name != "grid.damping" || len(values) != 3 || values[0] != 0.8 || values[2] != 0.9 {
		t.Errorf("got %s %v", name, values)
	}
	for _, bad := range []string{"grid.damping", "grid.damping=1:2", "grid.damping=a:2:3", "grid.damping=1:b:3", "grid.damping=1:2:0"} {
		if _, _, err := parseGrid(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestWithHolds(t *testing.T) {
	cfg := config.DefaultConfig()
	if err := withHolds(cfg, []string{"a:0:5", "b:2"}); err != nil {
		t.Fatal(err)
	}
	if len(cfg.Script) != 3 {
		t.Errorf("expected 3 events, got %d", len(cfg.Script))
	}
	if err := withHolds(cfg, []string{"ab:1"}); err == nil {
		t.Error("expected error for bad hold")
	}
}
