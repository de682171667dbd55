// Command n42plot parses an N42.42 spectrum file, prints its metadata and
// plots counts on a logarithmic axis.
//
// Usage:
//
//	n42plot [flags] spectrum.xml
//
// The file may be gzip (.gz) or zstd (.zst) compressed. Peak areas are
// measured with -roi-lo/-roi-hi, in keV for calibrated spectra and channels
// otherwise.
//
// Examples:
//
//	n42plot background/rs250.xml
//	n42plot -o cs137.svg -roi-lo 600 -roi-hi 720 spectrum.xml.gz
//	n42plot -smooth 2 -parquet spectrum.parquet spectrum.xml
//	n42plot -no-plot spectrum.xml
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-gamma/chart"
	"github.com/cwbudde/algo-gamma/dsp/smooth"
	"github.com/cwbudde/algo-gamma/export"
	"github.com/cwbudde/algo-gamma/internal/config"
	"github.com/cwbudde/algo-gamma/internal/logging"
	"github.com/cwbudde/algo-gamma/measure/roi"
	"github.com/cwbudde/algo-gamma/n42"
)

type options struct {
	input     string
	output    string
	noPlot    bool
	roiLo     float64
	roiHi     float64
	edge      int
	sigma     float64
	parquet   string
	namespace string
	logLevel  string
	dev       bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("n42plot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.output, "o", "", "chart file; extension selects the format (default <input>.png)")
	fs.BoolVar(&o.noPlot, "no-plot", false, "print the summary only")
	fs.Float64Var(&o.roiLo, "roi-lo", math.NaN(), "region of interest start (keV when calibrated, else channel)")
	fs.Float64Var(&o.roiHi, "roi-hi", math.NaN(), "region of interest end (keV when calibrated, else channel)")
	fs.IntVar(&o.edge, "edge", config.EnvIntOr("GAMMA_ROI_EDGE", 3), "channels per side for the background estimate; negative disables it")
	fs.Float64Var(&o.sigma, "smooth", 0, "overlay a Gaussian smoothing with this sigma in channels")
	fs.StringVar(&o.parquet, "parquet", "", "also write the spectrum as a Parquet file")
	fs.StringVar(&o.namespace, "namespace", config.EnvOr("GAMMA_N42_NAMESPACE", n42.Namespace), "XML namespace of the spectrum elements")
	fs.StringVar(&o.logLevel, "log-level", config.EnvOr("GAMMA_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.BoolVar(&o.dev, "dev", config.EnvBoolOr("GAMMA_LOG_DEV", false), "human-readable log output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: n42plot [flags] spectrum.xml\n\n")
		fmt.Fprintf(stderr, "Parses an N42.42 spectrum, prints its metadata and plots it.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  n42plot background/rs250.xml\n")
		fmt.Fprintf(stderr, "  n42plot -o cs137.svg -roi-lo 600 -roi-hi 720 spectrum.xml.gz\n")
		fmt.Fprintf(stderr, "  n42plot -no-plot spectrum.xml\n")
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return o, errors.New("expected exactly one spectrum file")
	}
	o.input = fs.Arg(0)
	if o.output == "" {
		o.output = chartPath(o.input)
	}
	return o, nil
}

// chartPath replaces the compression and document extensions of input with
// .png.
func chartPath(input string) string {
	base := input
	for _, ext := range []string{".gz", ".zst", ".xml", ".n42"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base + ".png"
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
		log.Error("n42plot failed", zap.String("file", o.input), zap.Error(err))
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer, log *zap.Logger) error {
	doc, err := n42.ReadFile(o.input, n42.WithNamespace(o.namespace))
	if err != nil {
		return err
	}
	log.Debug("parsed spectrum",
		zap.String("file", o.input),
		zap.Int("channels", doc.Info.ChannelCount),
		zap.Bool("calibrated", doc.Calibrated()))

	if err := printSummary(stdout, o.input, doc); err != nil {
		return err
	}

	var region *roi.Result
	if !math.IsNaN(o.roiLo) || !math.IsNaN(o.roiHi) {
		res, err := measure(doc, o)
		if err != nil {
			return err
		}
		region = &res
		if err := printROI(stdout, doc, res); err != nil {
			return err
		}
		log.Info("region of interest",
			zap.Int("lo", res.Window.Lo),
			zap.Int("hi", res.Window.Hi),
			zap.Float64("net", res.Net),
			zap.Float64("net_sigma", res.NetSigma))
	}

	var smoothed []float64
	if o.sigma > 0 {
		smoothed, err = smooth.Gaussian(doc.Float64(), o.sigma)
		if err != nil {
			return err
		}
	}

	if o.parquet != "" {
		if err := writeParquet(o.parquet, doc); err != nil {
			return err
		}
		log.Info("wrote parquet", zap.String("path", o.parquet), zap.Int("rows", len(doc.Counts)))
	}

	if o.noPlot {
		return nil
	}
	if err := chart.SaveSpectrum(doc, o.output, chart.SpectrumOptions{Smoothed: smoothed, ROI: region}); err != nil {
		return err
	}
	log.Info("wrote chart", zap.String("path", o.output))
	return nil
}

func measure(doc *n42.Document, o options) (roi.Result, error) {
	if math.IsNaN(o.roiLo) || math.IsNaN(o.roiHi) {
		return roi.Result{}, fmt.Errorf("%w: both -roi-lo and -roi-hi are required", roi.ErrInvalidWindow)
	}

	var w roi.Window
	if doc.Calibration != nil {
		var err error
		w, err = roi.EnergyWindow(doc.Calibration, o.roiLo, o.roiHi, len(doc.Counts))
		if err != nil {
			return roi.Result{}, err
		}
	} else {
		w = roi.Window{Lo: int(math.Ceil(o.roiLo)), Hi: int(math.Floor(o.roiHi))}
	}
	return roi.Analyze(doc.Float64(), w, roi.Config{EdgeChannels: o.edge})
}

func printSummary(w io.Writer, path string, doc *n42.Document) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	info := doc.Info

	cal := "none"
	if c := doc.Calibration; c != nil {
		cal = fmt.Sprintf("E = %g + %g*ch keV", c.Offset, c.Slope)
	}
	rate := "-"
	if r, ok := doc.CountRate(); ok {
		rate = fmt.Sprintf("%.2f cps", r)
	}
	dead := "-"
	if d, ok := info.DeadTimeFraction(); ok {
		dead = fmt.Sprintf("%.2f%%", 100*d)
	}

	rows := [][2]string{
		{"File", path},
		{"Detector", info.Detector},
		{"Start Time", info.StartTime},
		{"Live Time", info.LiveTime},
		{"Real Time", info.RealTime},
		{"Channels", fmt.Sprint(info.ChannelCount)},
		{"Total Counts", fmt.Sprint(doc.TotalCounts())},
		{"Count Rate", rate},
		{"Dead Time", dead},
		{"Calibration", cal},
	}
	for _, r := range rows {
		if _, err := fmt.Fprintf(tw, "%s:\t%s\n", r[0], r[1]); err != nil {
			return err
		}
	}
	return tw.Flush()
}

func printROI(w io.Writer, doc *n42.Document, r roi.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "\nROI\tGross\tBackground\tNet\tSigma\tCentroid\n"); err != nil {
		return err
	}

	span := fmt.Sprintf("ch %d-%d", r.Window.Lo, r.Window.Hi)
	centroid := fmt.Sprintf("ch %.2f", r.Centroid)
	if c := doc.Calibration; c != nil {
		span = fmt.Sprintf("%.1f-%.1f keV", c.Energy(float64(r.Window.Lo)), c.Energy(float64(r.Window.Hi)))
		centroid = fmt.Sprintf("%.2f keV", c.Energy(r.Centroid))
	}
	if _, err := fmt.Fprintf(tw, "%s\t%.0f\t%.1f\t%.1f\t%.1f\t%s\n",
		span, r.Gross, r.Background, r.Net, r.NetSigma, centroid); err != nil {
		return err
	}
	return tw.Flush()
}

func writeParquet(path string, doc *n42.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteSpectrum(f, doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
