// Package events reads per-event energy deposits written by the Geant4
// CSV ntuple writer.
//
// Each record is "EnergyDeposit,EventID,X,Y,Z" with the deposit in MeV.
// Lines starting with '#' carry the ntuple header and are skipped. Only the
// energy column is required; missing trailing columns read as zero.
package events

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-gamma/internal/compressio"
)

// Column names in file order.
var Columns = []string{"EnergyDeposit", "EventID", "X", "Y", "Z"}

// MeVToKeV converts deposit energies to keV.
const MeVToKeV = 1000.0

// Event is one row of the ntuple.
type Event struct {
	EnergyDeposit float64 // MeV
	EventID       int64
	X, Y, Z       float64
}

// RowError reports a record that could not be parsed.
type RowError struct {
	Line   int
	Column string
	Err    error
}

func (e *RowError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("events: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("events: line %d: column %s: %v", e.Line, e.Column, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

var errEmptyRecord = errors.New("empty record")

// DefaultBatchSize is the batch size [Scan] uses when given a size below one.
const DefaultBatchSize = 4096

// ReadFile reads all events from path. Files ending in .gz or .zst are
// decompressed.
func ReadFile(path string) ([]Event, error) {
	var out []Event
	err := ScanFile(path, DefaultBatchSize, func(batch []Event) error {
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Decode reads all events from r.
func Decode(r io.Reader) ([]Event, error) {
	var out []Event
	err := Scan(r, DefaultBatchSize, func(batch []Event) error {
		out = append(out, batch...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ScanFile streams the events in path to fn like [Scan].
func ScanFile(path string, size int, fn func([]Event) error) error {
	rc, err := compressio.Open(path)
	if err != nil {
		return fmt.Errorf("events: %w", err)
	}
	defer rc.Close()

	return Scan(rc, size, fn)
}

// Scan reads events from r and hands them to fn in batches of at most size
// events, so files of any length can be processed in bounded memory. The
// batch is reused between calls and must not be retained. Scanning stops at
// the first malformed row or the first error returned by fn.
func Scan(r io.Reader, size int, fn func([]Event) error) error {
	if size < 1 {
		size = DefaultBatchSize
	}

	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	batch := make([]Event, 0, size)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return &RowError{Line: pe.Line, Err: pe.Err}
			}
			return fmt.Errorf("events: %w", err)
		}

		line, _ := reader.FieldPos(0)
		ev, err := parseRecord(record, line)
		if err != nil {
			return err
		}

		batch = append(batch, ev)
		if len(batch) == size {
			if err := fn(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		return fn(batch)
	}
	return nil
}

func parseRecord(record []string, line int) (Event, error) {
	if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
		return Event{}, &RowError{Line: line, Err: errEmptyRecord}
	}

	var ev Event
	floats := []*float64{&ev.EnergyDeposit, nil, &ev.X, &ev.Y, &ev.Z}

	for i, field := range record {
		if i >= len(Columns) {
			break
		}
		field = strings.TrimSpace(field)
		if i == 1 {
			id, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return Event{}, &RowError{Line: line, Column: Columns[i], Err: err}
			}
			ev.EventID = id
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return Event{}, &RowError{Line: line, Column: Columns[i], Err: err}
		}
		*floats[i] = v
	}

	return ev, nil
}

// EnergiesKeV returns the deposit of every event in keV.
func EnergiesKeV(evs []Event) []float64 {
	out := make([]float64, len(evs))
	for i, ev := range evs {
		out[i] = ev.EnergyDeposit * MeVToKeV
	}
	return out
}

// NonZero drops events that deposited no energy in the detector.
func NonZero(evs []Event) []Event {
	out := make([]Event, 0, len(evs))
	for _, ev := range evs {
		if ev.EnergyDeposit > 0 {
			out = append(out, ev)
		}
	}
	return out
}
