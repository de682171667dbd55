package n42

import "time"

// Document is the result of parsing one spectrum file. It is not modified
// after construction.
type Document struct {
	// Counts holds one entry per detector channel in channel order.
	Counts []int
	// Calibration is nil when the file carries no usable energy calibration.
	Calibration *Calibration
	Info        Metadata
}

// Metadata describes the measurement. String fields are [Unknown] when the
// file does not provide them.
type Metadata struct {
	Detector     string
	StartTime    string
	LiveTime     string
	RealTime     string
	ChannelCount int
}

// LiveDuration parses LiveTime as an xsd:duration.
func (m Metadata) LiveDuration() (time.Duration, bool) {
	return ParseDuration(m.LiveTime)
}

// RealDuration parses RealTime as an xsd:duration.
func (m Metadata) RealDuration() (time.Duration, bool) {
	return ParseDuration(m.RealTime)
}

// DeadTimeFraction returns 1 - live/real, or false when either time is
// unavailable or real time is zero.
func (m Metadata) DeadTimeFraction() (float64, bool) {
	live, ok := m.LiveDuration()
	if !ok {
		return 0, false
	}
	rt, ok := m.RealDuration()
	if !ok || rt <= 0 {
		return 0, false
	}
	return 1 - live.Seconds()/rt.Seconds(), true
}

// AxisKind tells whether an x axis is in energy or channel units.
type AxisKind int

const (
	// AxisChannel is the raw channel index.
	AxisChannel AxisKind = iota
	// AxisEnergy is calibrated energy in keV.
	AxisEnergy
)

// Label returns the axis caption.
func (k AxisKind) Label() string {
	if k == AxisEnergy {
		return "Energy (keV)"
	}
	return "Channel Number"
}

// Calibrated reports whether an energy calibration is present.
func (d *Document) Calibrated() bool {
	return d.Calibration != nil
}

// Axis returns the x coordinate of every channel: energies when the document
// is calibrated, channel indices otherwise.
func (d *Document) Axis() ([]float64, AxisKind) {
	if d.Calibration != nil {
		return d.Calibration.Energies(len(d.Counts)), AxisEnergy
	}
	x := make([]float64, len(d.Counts))
	for i := range x {
		x[i] = float64(i)
	}
	return x, AxisChannel
}

// Float64 returns the counts as float64 values.
func (d *Document) Float64() []float64 {
	out := make([]float64, len(d.Counts))
	for i, c := range d.Counts {
		out[i] = float64(c)
	}
	return out
}

// TotalCounts returns the sum over all channels.
func (d *Document) TotalCounts() int64 {
	var sum int64
	for _, c := range d.Counts {
		sum += int64(c)
	}
	return sum
}

// CountRate returns total counts per second of live time.
func (d *Document) CountRate() (float64, bool) {
	live, ok := d.Info.LiveDuration()
	if !ok || live <= 0 {
		return 0, false
	}
	return float64(d.TotalCounts()) / live.Seconds(), true
}
