package n42

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strconv"
	"strings"

	"github.com/cwbudde/algo-gamma/internal/compressio"
)

// Namespace is the XML namespace of the N42.42 2005 schema.
const Namespace = "http://physics.nist.gov/Divisions/Div846/Gp4/ANSIN4242/2005/ANSIN4242"

// Unknown is the value assigned to metadata fields missing from the file.
const Unknown = "Unknown"

const (
	elemSpectrum     = "Spectrum"
	elemChannelData  = "ChannelData"
	elemCoefficients = "Coefficients"

	calibrationEnergy = "Energy"
	countedZeroes     = "CountedZeroes"
)

// DefaultMaxChannels bounds the spectrum a CountedZeroes run may expand to.
const DefaultMaxChannels = 1 << 16

type config struct {
	namespace   string
	maxChannels int
}

// Option configures the reader.
type Option func(*config)

// WithNamespace matches elements against ns instead of [Namespace].
// An empty ns matches unqualified elements.
func WithNamespace(ns string) Option {
	return func(cfg *config) {
		cfg.namespace = ns
	}
}

// WithMaxChannels limits the number of channels a CountedZeroes spectrum may
// expand to. Values below one select [DefaultMaxChannels].
func WithMaxChannels(n int) Option {
	return func(cfg *config) {
		if n < 1 {
			n = DefaultMaxChannels
		}
		cfg.maxChannels = n
	}
}

func applyOptions(opts []Option) config {
	cfg := config{namespace: Namespace, maxChannels: DefaultMaxChannels}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// ReadFile parses the spectrum file at path.
func ReadFile(path string, opts ...Option) (*Document, error) {
	rc, err := compressio.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s: %w", ErrNotFound, path, err)
		}
		if errors.Is(err, ErrCorruptInput) {
			return nil, &ParseError{Path: path, Err: err}
		}
		return nil, fmt.Errorf("n42: open %s: %w", path, err)
	}
	defer rc.Close()

	doc, err := Decode(rc, opts...)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) && pe.Path == "" {
			pe.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Decode parses a spectrum document from r. The whole document must be
// well-formed, even past the spectrum that is returned.
func Decode(r io.Reader, opts ...Option) (*Document, error) {
	cfg := applyOptions(opts)
	dec := xml.NewDecoder(r)

	var (
		raw     *spectrumElement
		sawRoot bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if raw != nil || !cfg.matches(start.Name, elemSpectrum) {
			continue
		}

		var el spectrumElement
		if err := dec.DecodeElement(&el, &start); err != nil {
			return nil, &ParseError{Err: err}
		}
		raw = &el
	}

	if !sawRoot {
		return nil, &ParseError{Err: errNoRootElement}
	}
	if raw == nil {
		return nil, &MissingDataError{Element: elemSpectrum}
	}

	return raw.document(cfg)
}

func (cfg config) matches(name xml.Name, local string) bool {
	return name.Local == local && name.Space == cfg.namespace
}

type textElement struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Text    string     `xml:",chardata"`
}

type equationElement struct {
	XMLName      xml.Name
	Coefficients []textElement `xml:"Coefficients"`
}

type calibrationElement struct {
	XMLName  xml.Name
	Type     string            `xml:"Type,attr"`
	Equation []equationElement `xml:"Equation"`
}

type spectrumElement struct {
	Attrs        []xml.Attr           `xml:",any,attr"`
	ChannelData  []textElement        `xml:"ChannelData"`
	Calibrations []calibrationElement `xml:"Calibration"`
	RealTime     []textElement        `xml:"RealTime"`
	LiveTime     []textElement        `xml:"LiveTime"`
	StartTime    []textElement        `xml:"StartTime"`
}

func (s *spectrumElement) document(cfg config) (*Document, error) {
	data := firstText(cfg, s.ChannelData, elemChannelData)
	if data == nil {
		return nil, &MissingDataError{Element: elemChannelData}
	}

	zeroRuns := attrValue(data.Attrs, "Compression") == countedZeroes
	counts, err := parseCounts(data.Text, zeroRuns, cfg.maxChannels)
	if err != nil {
		return nil, err
	}

	cal, err := s.calibration(cfg)
	if err != nil {
		return nil, err
	}

	detector, ok := lookupAttr(s.Attrs, "Detector")
	if !ok {
		detector = Unknown
	}

	return &Document{
		Counts:      counts,
		Calibration: cal,
		Info: Metadata{
			Detector:     detector,
			StartTime:    textOrUnknown(firstText(cfg, s.StartTime, "StartTime")),
			LiveTime:     textOrUnknown(firstText(cfg, s.LiveTime, "LiveTime")),
			RealTime:     textOrUnknown(firstText(cfg, s.RealTime, "RealTime")),
			ChannelCount: len(counts),
		},
	}, nil
}

// calibration returns the first energy calibration carrying at least two
// coefficients, or nil.
func (s *spectrumElement) calibration(cfg config) (*Calibration, error) {
	for _, c := range s.Calibrations {
		if !cfg.matches(c.XMLName, "Calibration") || c.Type != calibrationEnergy {
			continue
		}
		for _, eq := range c.Equation {
			if !cfg.matches(eq.XMLName, "Equation") {
				continue
			}
			text := firstText(cfg, eq.Coefficients, elemCoefficients)
			if text == nil {
				continue
			}
			coeffs, err := parseCoefficients(text.Text)
			if err != nil {
				return nil, err
			}
			if cal := NewCalibration(coeffs); cal != nil {
				return cal, nil
			}
		}
	}
	return nil, nil
}

func firstText(cfg config, elems []textElement, local string) *textElement {
	for i := range elems {
		if cfg.matches(elems[i].XMLName, local) {
			return &elems[i]
		}
	}
	return nil
}

func textOrUnknown(el *textElement) string {
	if el == nil {
		return Unknown
	}
	if v := strings.TrimSpace(el.Text); v != "" {
		return v
	}
	return Unknown
}

// lookupAttr looks up an unqualified attribute.
func lookupAttr(attrs []xml.Attr, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == local {
			return a.Value, true
		}
	}
	return "", false
}

func attrValue(attrs []xml.Attr, local string) string {
	v, _ := lookupAttr(attrs, local)
	return v
}

// parseCounts splits text on any run of whitespace. With zeroRuns set, a zero
// token is followed by the number of consecutive zero channels it stands for,
// and the expanded spectrum may hold at most maxChannels channels.
func parseCounts(text string, zeroRuns bool, maxChannels int) ([]int, error) {
	fields := strings.Fields(text)
	counts := make([]int, 0, len(fields))

	for i := 0; i < len(fields); i++ {
		v, err := parseCount(fields[i], i)
		if err != nil {
			return nil, err
		}
		if !zeroRuns || v != 0 {
			counts = append(counts, v)
			continue
		}

		if i+1 >= len(fields) {
			return nil, &MalformedDataError{Element: elemChannelData, Index: i, Token: fields[i], Err: errZeroRunLength}
		}
		i++
		run, err := parseCount(fields[i], i)
		if err != nil {
			return nil, err
		}
		if run > maxChannels-len(counts) {
			return nil, &MalformedDataError{Element: elemChannelData, Index: i, Token: fields[i], Err: errZeroRunTooLong}
		}
		n := len(counts)
		counts = slices.Grow(counts, run)[:n+run]
		clear(counts[n:])
	}

	return counts, nil
}

func parseCount(tok string, idx int) (int, error) {
	v, err := strconv.Atoi(tok)
	if err != nil {
		return 0, &MalformedDataError{Element: elemChannelData, Index: idx, Token: tok, Err: err}
	}
	if v < 0 {
		return 0, &MalformedDataError{Element: elemChannelData, Index: idx, Token: tok, Err: errNegativeCount}
	}
	return v, nil
}

func parseCoefficients(text string) ([]float64, error) {
	fields := strings.Fields(text)
	coeffs := make([]float64, len(fields))
	for i, tok := range fields {
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return nil, &MalformedDataError{Element: elemCoefficients, Index: i, Token: tok, Err: err}
		}
		coeffs[i] = v
	}
	return coeffs, nil
}
