package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-gamma/measure/mda"
)

func TestEnvOr(t *testing.T) {
	t.Setenv("GAMMA_TEST_STR", `  "nai"  `)
	if got := EnvOr("GAMMA_TEST_STR", "x"); got != "nai" {
		t.Fatalf("EnvOr = %q", got)
	}
	if got := EnvOr("GAMMA_TEST_UNSET", "x"); got != "x" {
		t.Fatalf("EnvOr default = %q", got)
	}
}

func TestEnvNumeric(t *testing.T) {
	t.Setenv("GAMMA_TEST_INT", "2048")
	t.Setenv("GAMMA_TEST_FLOAT", "630.5")
	t.Setenv("GAMMA_TEST_BOOL", "true")
	t.Setenv("GAMMA_TEST_BAD", "abc")

	if got := EnvIntOr("GAMMA_TEST_INT", 1); got != 2048 {
		t.Errorf("EnvIntOr = %d", got)
	}
	if got := EnvIntOr("GAMMA_TEST_BAD", 7); got != 7 {
		t.Errorf("EnvIntOr fallback = %d", got)
	}
	if got := EnvFloatOr("GAMMA_TEST_FLOAT", 1); got != 630.5 {
		t.Errorf("EnvFloatOr = %v", got)
	}
	if got := EnvFloatOr("GAMMA_TEST_BAD", 1.5); got != 1.5 {
		t.Errorf("EnvFloatOr fallback = %v", got)
	}
	if got := EnvBoolOr("GAMMA_TEST_BOOL", false); !got {
		t.Errorf("EnvBoolOr = %v", got)
	}
	if got := EnvBoolOr("GAMMA_TEST_BAD", true); !got {
		t.Errorf("EnvBoolOr fallback = %v", got)
	}
}

func TestLoadExperimentFile(t *testing.T) {
	exp, err := LoadExperiment("testdata/am241.json", nil)
	if err != nil {
		t.Fatalf("LoadExperiment: %v", err)
	}

	def := mda.DefaultSetup()
	want := mda.Setup{
		BackgroundCounts:    12000,
		AcquisitionTime:     3600,
		Radius:              def.Radius,
		EmissionProbability: 0.359,
		Coverage:            def.Coverage,
	}
	if exp.Setup != want {
		t.Fatalf("setup = %+v, want %+v", exp.Setup, want)
	}
	if len(exp.Points) != 2 || exp.Points[1].PeakCounts != 850 {
		t.Fatalf("points = %+v", exp.Points)
	}
}

func TestLoadExperimentDefaultsPoints(t *testing.T) {
	exp, err := LoadExperiment("", []byte(`{"radius_m": 2}`))
	if err != nil {
		t.Fatal(err)
	}
	if exp.Setup.Radius != 2 {
		t.Fatalf("radius = %v", exp.Setup.Radius)
	}
	if len(exp.Points) != len(mda.ReferenceCs137()) {
		t.Fatalf("expected reference points, got %d", len(exp.Points))
	}
}

func TestLoadExperimentErrors(t *testing.T) {
	if _, err := LoadExperiment("", nil); !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
	if _, err := LoadExperiment("", []byte(`{"unknown": 1}`)); err == nil {
		t.Fatal("expected unknown field error")
	}
	if _, err := LoadExperiment("", []byte(`{"radius_m": -1}`)); !errors.Is(err, mda.ErrInvalidSetup) {
		t.Fatalf("expected ErrInvalidSetup, got %v", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.json")
	if _, err := LoadExperiment(missing, nil); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
