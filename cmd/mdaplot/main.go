// Command mdaplot tabulates detection efficiency and the Currie detection
// limit for a series of simulated activity concentrations and plots both.
//
// Usage:
//
//	mdaplot [flags]
//
// Without -setup it evaluates the reference Cs-137 NaI(Tl) series. A setup
// file is JSON; every field is optional and overrides the reference value:
//
//	{
//	  "background_counts": 4979,
//	  "acquisition_time_s": 3200,
//	  "radius_m": 5,
//	  "emission_probability": 0.8998,
//	  "coverage": 4.66,
//	  "points": [{"activity_bq_m3": 10, "peak_counts": 386, "total_events": 9742134}]
//	}
//
// Examples:
//
//	mdaplot
//	mdaplot -setup am241.json -o am241.svg
//	mdaplot -no-plot -parquet limits.parquet
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-gamma/chart"
	"github.com/cwbudde/algo-gamma/export"
	"github.com/cwbudde/algo-gamma/internal/config"
	"github.com/cwbudde/algo-gamma/internal/logging"
	"github.com/cwbudde/algo-gamma/measure/mda"
	"github.com/cwbudde/algo-gamma/stats/series"
)

type options struct {
	setup    string
	output   string
	noPlot   bool
	parquet  string
	logLevel string
	dev      bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("mdaplot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.setup, "setup", config.EnvOr("GAMMA_MDA_SETUP", ""), "JSON setup file (default: reference Cs-137 series)")
	fs.StringVar(&o.output, "o", "detection_efficiency_and_limit.png", "chart file; extension selects the format")
	fs.BoolVar(&o.noPlot, "no-plot", false, "print the table only")
	fs.StringVar(&o.parquet, "parquet", "", "also write the table as a Parquet file")
	fs.StringVar(&o.logLevel, "log-level", config.EnvOr("GAMMA_LOG_LEVEL", "info"), "debug, info, warn or error")
	fs.BoolVar(&o.dev, "dev", config.EnvBoolOr("GAMMA_LOG_DEV", false), "human-readable log output")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: mdaplot [flags]\n\n")
		fmt.Fprintf(stderr, "Tabulates detection efficiency and detection limit per activity concentration.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  mdaplot\n")
		fmt.Fprintf(stderr, "  mdaplot -setup am241.json -o am241.svg\n")
	}
	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return o, fmt.Errorf("unexpected arguments: %v", fs.Args())
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
		log.Error("mdaplot failed", zap.String("setup", o.setup), zap.Error(err))
		os.Exit(1)
	}
}

func run(o options, stdout io.Writer, log *zap.Logger) error {
	exp := config.DefaultExperiment()
	if o.setup != "" {
		var err error
		if exp, err = config.LoadExperiment(o.setup, nil); err != nil {
			return err
		}
	}
	log.Debug("setup",
		zap.Float64("background_counts", exp.Setup.BackgroundCounts),
		zap.Float64("acquisition_time_s", exp.Setup.AcquisitionTime),
		zap.Float64("radius_m", exp.Setup.Radius),
		zap.Float64("emission_probability", exp.Setup.EmissionProbability),
		zap.Int("points", len(exp.Points)))

	res, err := mda.Evaluate(exp.Points, exp.Setup)
	if err != nil {
		return err
	}

	if err := printTable(stdout, res); err != nil {
		return err
	}

	if o.parquet != "" {
		if err := writeParquet(o.parquet, res); err != nil {
			return err
		}
		log.Info("wrote parquet", zap.String("path", o.parquet), zap.Int("rows", len(res.Rows)))
	}

	if o.noPlot {
		return nil
	}
	if err := chart.SaveEfficiencyLimit(res, o.output, chart.Size{}); err != nil {
		return err
	}
	log.Info("wrote chart", zap.String("path", o.output))
	return nil
}

func printTable(w io.Writer, res mda.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Activity [Bq/m3]\tPeak Counts\tTotal Events\tEfficiency\tDetection Limit [Bq/m3]\n"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(tw, "----------------\t-----------\t------------\t----------\t-----------------------\n"); err != nil {
		return err
	}
	for _, r := range res.Rows {
		if _, err := fmt.Fprintf(tw, "%.0f\t%.0f\t%.0f\t%.2e\t%.3f\n",
			r.Activity, r.PeakCounts, r.TotalEvents, r.Efficiency, r.DetectionLimit); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "\nVolume: %.3f m3\n", res.Volume); err != nil {
		return err
	}
	if err := printSummary(w, "Detection efficiency", "%.3e", res.Efficiency); err != nil {
		return err
	}
	return printSummary(w, "Detection limit [Bq/m3]", "%.3f", res.DetectionLimit)
}

func printSummary(w io.Writer, name, valueFmt string, s series.Summary) error {
	_, err := fmt.Fprintf(w, "\n%s:\n  mean:      "+valueFmt+"\n  std:       "+valueFmt+
		"\n  rel. err.: %.2f%%\n  range:     "+valueFmt+" - "+valueFmt+"\n",
		name, s.Mean, s.StdDev, s.RelativeError, s.Min, s.Max)
	return err
}

func writeParquet(path string, res mda.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteLimits(f, res); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
