package events

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-gamma/internal/testutil"
)

func TestReadFile(t *testing.T) {
	evs, err := ReadFile(filepath.Join("testdata", "nai_simulation_nt_GammaSpectrum.csv"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(evs) != 5 {
		t.Fatalf("got %d events, want 5", len(evs))
	}

	first := evs[0]
	if first.EventID != 0 || first.X != 1.5 || first.Y != -2.25 || first.Z != 30 {
		t.Fatalf("first event: %+v", first)
	}
	if evs[3].EventID != 3 {
		t.Fatalf("event id: got %d", evs[3].EventID)
	}

	kev := EnergiesKeV(evs)
	testutil.RequireSliceNearlyEqual(t, kev, []float64{661.657, 200, 0, 650, 31}, 1e-9)

	if got := len(NonZero(evs)); got != 4 {
		t.Fatalf("NonZero: got %d events, want 4", got)
	}
}

func TestDecodeOptionalColumns(t *testing.T) {
	evs, err := Decode(strings.NewReader("0.5\n0.25, 7\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(evs) != 2 || evs[0].EnergyDeposit != 0.5 || evs[1].EventID != 7 {
		t.Fatalf("got %+v", evs)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column string
	}{
		{"bad energy", "0.1,1\nabc,2\n", 2, "EnergyDeposit"},
		{"bad event id", "#c\n0.1,x\n", 2, "EventID"},
		{"bad position", "0.1,1,0,zz,0\n", 1, "Y"},
		{"empty energy", "0.1\n ,3\n", 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			var re *RowError
			if !errors.As(err, &re) {
				t.Fatalf("expected RowError, got %v", err)
			}
			if re.Line != tt.line || re.Column != tt.column {
				t.Fatalf("got line %d column %q, want %d %q", re.Line, re.Column, tt.line, tt.column)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	evs, err := Decode(strings.NewReader("#only comments\n"))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(evs) != 0 {
		t.Fatalf("got %d events", len(evs))
	}
}

func TestReadFileMissing(t *testing.T) {
	if _, err := ReadFile(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error")
	}
}

func TestScanBatches(t *testing.T) {
	var input strings.Builder
	input.WriteString("# EnergyDeposit,EventID,X,Y,Z\n")
	for i := range 10 {
		fmt.Fprintf(&input, "0.%d,%d,0,0,0\n", i, i)
	}

	tests := []struct {
		size  int
		sizes []int
	}{
		{3, []int{3, 3, 3, 1}},
		{5, []int{5, 5}},
		{20, []int{10}},
		{0, []int{10}},
	}

	for _, tt := range tests {
		var sizes []int
		var ids []int64
		err := Scan(strings.NewReader(input.String()), tt.size, func(batch []Event) error {
			sizes = append(sizes, len(batch))
			for _, ev := range batch {
				ids = append(ids, ev.EventID)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("size %d: %v", tt.size, err)
		}
		if !slices.Equal(sizes, tt.sizes) {
			t.Errorf("size %d: batches %v, want %v", tt.size, sizes, tt.sizes)
		}
		if len(ids) != 10 || ids[0] != 0 || ids[9] != 9 {
			t.Errorf("size %d: event ids %v", tt.size, ids)
		}
	}
}

func TestScanStops(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := Scan(strings.NewReader("0.1\n0.2\n0.3\n0.4\n"), 2, func([]Event) error {
		calls++
		return stop
	})
	if !errors.Is(err, stop) || calls != 1 {
		t.Fatalf("got err %v after %d calls", err, calls)
	}

	calls = 0
	err = Scan(strings.NewReader("0.1\n0.2\nbad\n0.4\n"), 2, func([]Event) error {
		calls++
		return nil
	})
	var re *RowError
	if !errors.As(err, &re) || re.Line != 3 || calls != 1 {
		t.Fatalf("got err %v after %d calls", err, calls)
	}
}

func TestScanFileMatchesReadFile(t *testing.T) {
	path := filepath.Join("testdata", "nai_simulation_nt_GammaSpectrum.csv")
	want, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var got []Event
	if err := ScanFile(path, 2, func(batch []Event) error {
		got = append(got, batch...)
		return nil
	}); err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}
