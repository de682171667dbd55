// Command edephist histograms the energy deposits of a simulated event list
// and reports how many events exceed a threshold.
//
// Usage:
//
//	edephist [flags] events.csv
//
// The input is a Geant4 CSV ntuple with EnergyDeposit (MeV), EventID, X, Y
// and Z columns. Lines starting with '#' are skipped.
//
// Examples:
//
//	edephist nai_simulation_nt_GammaSpectrum.csv
//	edephist -bins 700 -max 1400 -lines reference events.csv.zst
//	edephist -threshold 600 -nonzero -parquet hist.parquet events.csv
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-gamma/chart"
	"github.com/cwbudde/algo-gamma/events"
	"github.com/cwbudde/algo-gamma/export"
	"github.com/cwbudde/algo-gamma/internal/config"
	"github.com/cwbudde/algo-gamma/internal/logging"
	"github.com/cwbudde/algo-gamma/stats/energy"
	"github.com/cwbudde/algo-gamma/stats/hist"
)

const (
	linesThreshold = "threshold"
	linesReference = "reference"
	linesNone      = "none"
)

type options struct {
	input     string
	output    string
	noPlot    bool
	bins      int
	lo, hi    float64
	threshold float64
	lines     string
	nonZero   bool
	title     string
	parquet   string
	logLevel  string
	dev       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("edephist", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.output, "o", "gamma_spectrum.png", "chart file; extension selects the format")
	fs.BoolVar(&o.noPlot, "no-plot", false, "print the statistics only")
	fs.IntVar(&o.bins, "bins", config.EnvIntOr("GAMMA_HIST_BINS", 300), "number of histogram bins")
	fs.Float64Var(&o.lo, "min", 0, "histogram lower edge in keV")
	fs.Float64Var(&o.hi, "max", config.EnvFloatOr("GAMMA_HIST_MAX_KEV", 700), "histogram upper edge in keV")
	fs.Float64Var(&o.threshold, "threshold", config.EnvFloatOr("GAMMA_THRESHOLD_KEV", 630), "count events strictly above this energy in keV")
	fs.StringVar(&o.lines, "lines", linesThreshold, "marker lines: threshold, reference or none")
	fs.BoolVar(&o.nonZero, "nonzero", false, "drop events without an energy deposit")
	fs.StringVar(&o.title, "title", "", "chart title")
	fs.StringVar(&o.parquet, "parquet", "", "also write the histogram as a Parquet file")
	fs.StringVar(&o.logLevel, "log-level", config.EnvOr("GAMMA_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.BoolVar(&o.dev, "dev", config.EnvBoolOr("GAMMA_LOG_DEV", false), "human-readable log output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: edephist [flags] events.csv\n\n")
		fmt.Fprintf(stderr, "Histograms simulated energy deposits and counts events above a threshold.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  edephist nai_simulation_nt_GammaSpectrum.csv\n")
		fmt.Fprintf(stderr, "  edephist -bins 700 -max 1400 -lines reference events.csv.zst\n")
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("expected exactly one event file")
	}
	o.input = fs.Arg(0)

	switch o.lines = strings.ToLower(o.lines); o.lines {
	case linesThreshold, linesReference, linesNone:
	default:
		return o, fmt.Errorf("unknown -lines value %q", o.lines)
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	log := logging.New(logging.WithLevel(o.logLevel), logging.WithDevelopment(o.dev))
	defer func() { _ = log.Sync() }()

	if err := run(o, os.Stdout, log); err != nil {
		log.Error("edephist failed", zap.String("file", o.input), zap.Error(err))
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer, log *zap.Logger) error {
	h, err := hist.NewEmpty(o.bins, o.lo, o.hi)
	if err != nil {
		return err
	}
	acc := energy.NewAccumulator(o.threshold)

	var read, kept int
	err = events.ScanFile(o.input, events.DefaultBatchSize, func(batch []events.Event) error {
		read += len(batch)
		if o.nonZero {
			batch = events.NonZero(batch)
		}
		kept += len(batch)

		keV := events.EnergiesKeV(batch)
		acc.Update(keV)
		h.Add(keV...)
		return nil
	})
	if err != nil {
		return err
	}
	log.Debug("read events", zap.String("file", o.input), zap.Int("read", read), zap.Int("kept", kept))

	st, err := acc.Result()
	if err != nil {
		return err
	}
	if h.Underflow+h.Overflow > 0 {
		log.Warn("events outside histogram range",
			zap.Int("underflow", h.Underflow),
			zap.Int("overflow", h.Overflow),
			zap.Float64("min_kev", o.lo),
			zap.Float64("max_kev", o.hi))
	}

	if err := printStats(stdout, st, h); err != nil {
		return err
	}

	if o.parquet != "" {
		if err := writeParquet(o.parquet, h); err != nil {
			return err
		}
		log.Info("wrote parquet", zap.String("path", o.parquet), zap.Int("rows", h.Len()))
	}

	if o.noPlot {
		return nil
	}

	opts := chart.HistogramOptions{Title: o.title, Stats: &st}
	switch o.lines {
	case linesThreshold:
		opts.Threshold = o.threshold
	case linesNone:
		opts.Markers = []float64{}
	}
	if err := chart.SaveHistogram(h, o.output, opts); err != nil {
		return err
	}
	log.Info("wrote chart", zap.String("path", o.output))
	return nil
}

func printStats(w io.Writer, st energy.Stats, h *hist.Histogram) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	rows := [][2]string{
		{"Total events", fmt.Sprint(st.Count)},
		{fmt.Sprintf("Events > %g keV", st.Threshold), fmt.Sprint(st.Above)},
		{"Fraction", fmt.Sprintf("%.2f%%", st.AbovePercent)},
		{"Mean energy", fmt.Sprintf("%.2f keV", st.Mean)},
		{"Std deviation", fmt.Sprintf("%.2f keV", st.StdDev)},
		{"Energy range", fmt.Sprintf("%.2f - %.2f keV", st.Min, st.Max)},
		{"Histogram", fmt.Sprintf("%d bins, %.0f in range, %d below, %d above", h.Len(), h.Total(), h.Underflow, h.Overflow)},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func writeParquet(path string, h *hist.Histogram) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteHistogram(f, h); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
