package chart

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/plot"

	"github.com/cwbudde/algo-gamma/internal/testutil"
	"github.com/cwbudde/algo-gamma/measure/mda"
	"github.com/cwbudde/algo-gamma/measure/roi"
	"github.com/cwbudde/algo-gamma/n42"
	"github.com/cwbudde/algo-gamma/stats/energy"
	"github.com/cwbudde/algo-gamma/stats/hist"
)

func testDocument(calibrated bool) *n42.Document {
	counts := testutil.RoundCounts(testutil.GammaSpectrum(1024, 800, 200,
		testutil.Peak{Center: 550, Sigma: 12, Area: 40000}))
	doc := &n42.Document{
		Counts: counts,
		Info: n42.Metadata{
			Detector:     "NaI(Tl) 3x3",
			StartTime:    "2024-05-01T10:00:00",
			LiveTime:     "PT3200S",
			RealTime:     n42.Unknown,
			ChannelCount: len(counts),
		},
	}
	if calibrated {
		doc.Calibration = n42.NewCalibration([]float64{0, 1.2})
	}
	return doc
}

func requireFile(t *testing.T, path string) {
	t.Helper()
	fi, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	if fi.Size() == 0 {
		t.Fatalf("%s is empty", path)
	}
}

func TestNewSpectrumAxes(t *testing.T) {
	tests := []struct {
		calibrated bool
		title      string
		xlabel     string
	}{
		{true, "Gamma Spectrum - Energy Scale", "Energy (keV)"},
		{false, "Gamma Spectrum - Channel Scale", "Channel Number"},
	}
	for _, tt := range tests {
		p, err := NewSpectrum(testDocument(tt.calibrated), SpectrumOptions{})
		if err != nil {
			t.Fatalf("calibrated=%v: %v", tt.calibrated, err)
		}
		if p.Title.Text != tt.title || p.X.Label.Text != tt.xlabel || p.Y.Label.Text != "Counts" {
			t.Errorf("calibrated=%v: title=%q x=%q y=%q", tt.calibrated, p.Title.Text, p.X.Label.Text, p.Y.Label.Text)
		}
		if _, ok := p.Y.Scale.(plot.LogScale); !ok {
			t.Errorf("calibrated=%v: expected log y scale, got %T", tt.calibrated, p.Y.Scale)
		}
		if !(p.Y.Min > 0) {
			t.Errorf("calibrated=%v: log axis minimum %v", tt.calibrated, p.Y.Min)
		}
	}
}

func TestNewSpectrumErrors(t *testing.T) {
	if _, err := NewSpectrum(nil, SpectrumOptions{}); !errors.Is(err, ErrNilInput) {
		t.Fatalf("expected ErrNilInput, got %v", err)
	}
	doc := testDocument(false)
	bad := &roi.Result{Window: roi.Window{Lo: 10, Hi: 5000}}
	if _, err := NewSpectrum(doc, SpectrumOptions{ROI: bad}); err == nil {
		t.Fatal("expected error for region outside the spectrum")
	}
}

func TestNewSpectrumWithoutCounts(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		xmin   float64
		xmax   float64
	}{
		{"zero counts", []int{0, 0, 0, 0}, 0, 3},
		{"single channel", []int{0}, 0, 1},
		{"no channels", nil, 0, 1},
	}

	dir := t.TempDir()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &n42.Document{Counts: tt.counts, Info: n42.Metadata{Detector: "NaI", ChannelCount: len(tt.counts)}}
			p, err := NewSpectrum(doc, SpectrumOptions{})
			if err != nil {
				t.Fatalf("NewSpectrum: %v", err)
			}
			if p.X.Min != tt.xmin || p.X.Max != tt.xmax {
				t.Errorf("x range [%v %v], want [%v %v]", p.X.Min, p.X.Max, tt.xmin, tt.xmax)
			}
			if p.Y.Min != 1 || p.Y.Max != 10 {
				t.Errorf("y range [%v %v], want [1 10]", p.Y.Min, p.Y.Max)
			}

			path := filepath.Join(dir, strings.ReplaceAll(tt.name, " ", "_")+".png")
			if err := SaveSpectrum(doc, path, SpectrumOptions{}); err != nil {
				t.Fatalf("SaveSpectrum: %v", err)
			}
			requireFile(t, path)
		})
	}
}

func TestMetadataLines(t *testing.T) {
	lines := MetadataLines(testDocument(true).Info)
	want := []string{
		"Detector: NaI(Tl) 3x3",
		"Start Time: 2024-05-01T10:00:00",
		"Live Time: PT3200S",
		"Channels: 1024",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %q", lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSaveSpectrum(t *testing.T) {
	doc := testDocument(true)
	counts := doc.Float64()
	res, err := roi.Analyze(counts, roi.Window{Lo: 500, Hi: 600}, roi.Config{})
	if err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, name := range []string{"spectrum.png", "spectrum.svg"} {
		path := filepath.Join(dir, name)
		if err := SaveSpectrum(doc, path, SpectrumOptions{Smoothed: counts, ROI: &res}); err != nil {
			t.Fatalf("SaveSpectrum(%s): %v", name, err)
		}
		requireFile(t, path)
	}

	if err := SaveSpectrum(doc, filepath.Join(dir, "spectrum"), SpectrumOptions{}); err == nil {
		t.Fatal("expected error for a path without extension")
	}
}

func TestSaveHistogram(t *testing.T) {
	keV := testutil.EnergyDeposits(7, 5000, 0.662, 0.3)
	for i := range keV {
		keV[i] *= 1000
	}
	h, err := hist.New(keV, 300, 0, 700)
	if err != nil {
		t.Fatal(err)
	}
	st, err := energy.Calculate(keV, 630)
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewHistogram(h, HistogramOptions{Stats: &st})
	if err != nil {
		t.Fatal(err)
	}
	if p.Title.Text != "Gamma Spectrum (keV, log scale)" || p.X.Label.Text != "Energy Deposit (keV)" {
		t.Fatalf("title=%q x=%q", p.Title.Text, p.X.Label.Text)
	}

	dir := t.TempDir()
	for _, opts := range []HistogramOptions{
		{Stats: &st},
		{Threshold: 630, Title: "Threshold"},
		{Markers: []float64{}},
	} {
		path := filepath.Join(dir, "hist.png")
		if err := SaveHistogram(h, path, opts); err != nil {
			t.Fatalf("SaveHistogram(%+v): %v", opts, err)
		}
		requireFile(t, path)
	}
}

func TestNewHistogramErrors(t *testing.T) {
	if _, err := NewHistogram(nil, HistogramOptions{}); !errors.Is(err, ErrNilInput) {
		t.Fatalf("expected ErrNilInput, got %v", err)
	}
	h, err := hist.New(nil, 10, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewHistogram(h, HistogramOptions{}); !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestEfficiencyLimit(t *testing.T) {
	res, err := mda.Evaluate(mda.ReferenceCs137(), mda.DefaultSetup())
	if err != nil {
		t.Fatal(err)
	}

	eff, limit, err := NewEfficiencyLimit(res)
	if err != nil {
		t.Fatal(err)
	}
	if eff.Y.Label.Text != "Detection Efficiency" || limit.Y.Label.Text != "Detection Limit (Bq/m³)" {
		t.Fatalf("labels: %q / %q", eff.Y.Label.Text, limit.Y.Label.Text)
	}
	if eff.X.Min != limit.X.Min || eff.X.Max != limit.X.Max {
		t.Fatalf("panels do not share the x range: [%v %v] vs [%v %v]",
			eff.X.Min, eff.X.Max, limit.X.Min, limit.X.Max)
	}
	if _, ok := eff.Y.Scale.(plot.LogScale); !ok {
		t.Fatalf("efficiency panel should be log scaled, got %T", eff.Y.Scale)
	}

	path := filepath.Join(t.TempDir(), "limits.png")
	if err := SaveEfficiencyLimit(res, path, Size{}); err != nil {
		t.Fatalf("SaveEfficiencyLimit: %v", err)
	}
	requireFile(t, path)

	if _, _, err := NewEfficiencyLimit(mda.Result{}); !errors.Is(err, mda.ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}
