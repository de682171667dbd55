package mda

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-gamma/internal/testutil"
)

func TestVolume(t *testing.T) {
	testutil.RequireNearlyEqual(t, "volume", DefaultSetup().Volume(), 261.79938779914943, 1e-9)
}

func TestEvaluateReferenceSeries(t *testing.T) {
	res, err := Evaluate(ReferenceCs137(), DefaultSetup())
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(res.Rows) != 6 {
		t.Fatalf("rows: got %d", len(res.Rows))
	}

	wantEff := []float64{
		3.962170916556886e-05, 3.9129842677491836e-05, 3.480780853117825e-05,
		3.981511718133203e-05, 3.57202938718231e-05, 3.667718503713781e-05,
	}
	wantLimit := []float64{
		11.009286664651096, 11.14767462630498, 12.531864910612223,
		10.955807372374233, 12.211734760986115, 11.893136125509534,
	}
	for i, row := range res.Rows {
		testutil.RequireRelNearlyEqual(t, "efficiency", row.Efficiency, wantEff[i], 1e-12)
		testutil.RequireRelNearlyEqual(t, "limit", row.DetectionLimit, wantLimit[i], 1e-12)
	}

	testutil.RequireRelNearlyEqual(t, "eff mean", res.Efficiency.Mean, 3.7628659410755315e-05, 1e-12)
	testutil.RequireRelNearlyEqual(t, "eff std", res.Efficiency.StdDev, 2.1684445257673965e-06, 1e-9)
	testutil.RequireNearlyEqual(t, "eff rel", res.Efficiency.RelativeError, 5.762747224387152, 1e-6)
	testutil.RequireRelNearlyEqual(t, "limit mean", res.DetectionLimit.Mean, 11.62491741007303, 1e-12)
	testutil.RequireRelNearlyEqual(t, "limit std", res.DetectionLimit.StdDev, 0.6772473378750302, 1e-9)
	testutil.RequireNearlyEqual(t, "limit rel", res.DetectionLimit.RelativeError, 5.825824941243825, 1e-6)

	if res.DetectionLimit.Min != res.Rows[3].DetectionLimit || res.DetectionLimit.Max != res.Rows[2].DetectionLimit {
		t.Fatalf("limit range: %v..%v", res.DetectionLimit.Min, res.DetectionLimit.Max)
	}
}

func TestDetectionLimitScaling(t *testing.T) {
	c, err := NewCalculator(DefaultSetup())
	if err != nil {
		t.Fatal(err)
	}
	a, _ := c.DetectionLimit(1e-5)
	b, _ := c.DetectionLimit(2e-5)
	testutil.RequireNearlyEqual(t, "inverse proportional", a/b, 2, 1e-12)

	s := DefaultSetup()
	s.BackgroundCounts *= 4
	c4, err := NewCalculator(s)
	if err != nil {
		t.Fatal(err)
	}
	d, _ := c4.DetectionLimit(1e-5)
	testutil.RequireNearlyEqual(t, "sqrt background", d/a, 2, 1e-12)
}

func TestEvaluateErrors(t *testing.T) {
	if _, err := Evaluate(nil, DefaultSetup()); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := Evaluate([]Point{{Activity: 1, PeakCounts: 5}}, DefaultSetup()); !errors.Is(err, ErrZeroEvents) {
		t.Fatalf("expected ErrZeroEvents, got %v", err)
	}
	if _, err := Evaluate([]Point{{Activity: 1, TotalEvents: 5}}, DefaultSetup()); !errors.Is(err, ErrZeroPeak) {
		t.Fatalf("expected ErrZeroPeak, got %v", err)
	}
}

func TestSetupValidate(t *testing.T) {
	mutate := []func(*Setup){
		func(s *Setup) { s.BackgroundCounts = -1 },
		func(s *Setup) { s.BackgroundCounts = math.NaN() },
		func(s *Setup) { s.AcquisitionTime = 0 },
		func(s *Setup) { s.Radius = -5 },
		func(s *Setup) { s.EmissionProbability = 1.2 },
		func(s *Setup) { s.EmissionProbability = 0 },
		func(s *Setup) { s.Coverage = math.Inf(1) },
	}
	for i, m := range mutate {
		s := DefaultSetup()
		m(&s)
		if _, err := NewCalculator(s); !errors.Is(err, ErrInvalidSetup) {
			t.Errorf("case %d: expected ErrInvalidSetup, got %v", i, err)
		}
	}
	if err := DefaultSetup().Validate(); err != nil {
		t.Fatalf("default setup invalid: %v", err)
	}
}
