package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestValidateWeights(t *testing.T) {
	c := Default()
	c.OpcodeWeight = 0.5
	if err := c.Validate(); err == nil {
		t.Error("weights not summing to 1 accepted")
	}
	c.DegreeWeight = 0.5
	if err := c.Validate(); err != nil {
		t.Errorf("0.5/0.5 rejected: %v", err)
	}
}

func TestLoadOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphmat.yml")
	body := "min-score: 0.5\nmatch-callers: false\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if c.MinScore != 0.5 {
		t.Errorf("MinScore = %v, want 0.5", c.MinScore)
	}
	if c.MatchCallers {
		t.Error("MatchCallers not overridden")
	}
	// Untouched fields keep defaults.
	if c.OpcodeWeight != 0.8 {
		t.Errorf("OpcodeWeight = %v, want default 0.8", c.OpcodeWeight)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphmat.yml")
	if err := os.WriteFile(path, []byte("minscore: 0.5\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("unknown key accepted")
	}
}
