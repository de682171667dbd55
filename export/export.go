// Package export writes spectra, histograms and detection-limit tables as
// Parquet files for downstream analysis.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parquet "github.com/parquet-go/parquet-go"

	"github.com/cwbudde/algo-gamma/measure/mda"
	"github.com/cwbudde/algo-gamma/n42"
	"github.com/cwbudde/algo-gamma/stats/hist"
)

var (
	ErrNilInput           = errors.New("export: nil input")
	ErrUnknownCompression = errors.New("export: unknown compression")
)

// SpectrumRow is one channel of a spectrum. EnergyKeV is null for
// uncalibrated spectra.
type SpectrumRow struct {
	Channel   int32    `parquet:"channel"`
	EnergyKeV *float64 `parquet:"energy_kev,optional"`
	Counts    int64    `parquet:"counts"`
}

// HistogramRow is one histogram bin.
type HistogramRow struct {
	Lo     float64 `parquet:"lo"`
	Hi     float64 `parquet:"hi"`
	Center float64 `parquet:"center"`
	Count  float64 `parquet:"count"`
}

// LimitRow is one evaluated activity concentration.
type LimitRow struct {
	Activity       float64 `parquet:"activity_bq_m3"`
	PeakCounts     float64 `parquet:"peak_counts"`
	TotalEvents    float64 `parquet:"total_events"`
	Efficiency     float64 `parquet:"efficiency"`
	DetectionLimit float64 `parquet:"detection_limit_bq_m3"`
}

type config struct {
	compression parquet.WriterOption
}

// Option configures a writer.
type Option func(*config) error

// WithCompression selects the page codec: zstd (default), gzip, snappy,
// brotli, lz4 or none.
func WithCompression(name string) Option {
	return func(cfg *config) error {
		switch strings.ToLower(name) {
		case "zstd", "":
			cfg.compression = parquet.Compression(&parquet.Zstd)
		case "gzip", "gz":
			cfg.compression = parquet.Compression(&parquet.Gzip)
		case "snappy":
			cfg.compression = parquet.Compression(&parquet.Snappy)
		case "brotli":
			cfg.compression = parquet.Compression(&parquet.Brotli)
		case "lz4":
			cfg.compression = parquet.Compression(&parquet.Lz4Raw)
		case "none", "uncompressed":
			cfg.compression = parquet.Compression(&parquet.Uncompressed)
		default:
			return fmt.Errorf("%w: %q", ErrUnknownCompression, name)
		}
		return nil
	}
}

func applyOptions(opts []Option) (config, error) {
	cfg := config{compression: parquet.Compression(&parquet.Zstd)}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return config{}, err
		}
	}
	return cfg, nil
}

// SpectrumRows flattens doc into one row per channel.
func SpectrumRows(doc *n42.Document) []SpectrumRow {
	rows := make([]SpectrumRow, len(doc.Counts))
	for i, c := range doc.Counts {
		rows[i] = SpectrumRow{Channel: int32(i), Counts: int64(c)}
		if doc.Calibration != nil {
			e := doc.Calibration.Energy(float64(i))
			rows[i].EnergyKeV = &e
		}
	}
	return rows
}

// HistogramRows flattens h into one row per bin.
func HistogramRows(h *hist.Histogram) []HistogramRow {
	centers := h.Centers()
	rows := make([]HistogramRow, h.Len())
	for i := range rows {
		rows[i] = HistogramRow{
			Lo:     h.Edges[i],
			Hi:     h.Edges[i+1],
			Center: centers[i],
			Count:  h.Counts[i],
		}
	}
	return rows
}

// LimitRows flattens the rows of res.
func LimitRows(res mda.Result) []LimitRow {
	rows := make([]LimitRow, len(res.Rows))
	for i, r := range res.Rows {
		rows[i] = LimitRow{
			Activity:       r.Activity,
			PeakCounts:     r.PeakCounts,
			TotalEvents:    r.TotalEvents,
			Efficiency:     r.Efficiency,
			DetectionLimit: r.DetectionLimit,
		}
	}
	return rows
}

// WriteSpectrum writes doc to w as a Parquet file.
func WriteSpectrum(w io.Writer, doc *n42.Document, opts ...Option) error {
	if doc == nil {
		return ErrNilInput
	}
	return writeRows(w, SpectrumRows(doc), opts)
}

// WriteHistogram writes h to w as a Parquet file.
func WriteHistogram(w io.Writer, h *hist.Histogram, opts ...Option) error {
	if h == nil {
		return ErrNilInput
	}
	return writeRows(w, HistogramRows(h), opts)
}

// WriteLimits writes the evaluated rows of res to w as a Parquet file.
func WriteLimits(w io.Writer, res mda.Result, opts ...Option) error {
	return writeRows(w, LimitRows(res), opts)
}

func writeRows[T any](w io.Writer, rows []T, opts []Option) error {
	cfg, err := applyOptions(opts)
	if err != nil {
		return err
	}

	pw := parquet.NewGenericWriter[T](w, cfg.compression)
	if _, err := pw.Write(rows); err != nil {
		_ = pw.Close()
		return fmt.Errorf("export: write rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("export: close writer: %w", err)
	}
	return nil
}

// ReadRows reads every row of a Parquet file written by this package.
func ReadRows[T any](ra io.ReaderAt) ([]T, error) {
	gr := parquet.NewGenericReader[T](ra)
	defer gr.Close()

	out := make([]T, 0, 1024)
	batch := make([]T, 1024)
	for {
		n, err := gr.Read(batch)
		if n > 0 {
			out = append(out, batch[:n]...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("export: read rows: %w", err)
		}
	}
	return out, nil
}
