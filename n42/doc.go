// Package n42 reads gamma spectra stored in the ANSI N42.42-2006 (2005 schema)
// XML dialect used by handheld and portal radiation detectors.
//
// A file holds one or more Spectrum records. The reader extracts the first
// one it meets in document order:
//
//	<Spectrum Detector="RS250">
//	  <RealTime>PT3600S</RealTime>
//	  <LiveTime>PT3597.2S</LiveTime>
//	  <Calibration Type="Energy">
//	    <Equation><Coefficients>0.5 1.2 0</Coefficients></Equation>
//	  </Calibration>
//	  <ChannelData>5 10 15 20</ChannelData>
//	</Spectrum>
//
// # Usage
//
//	doc, err := n42.ReadFile("RS250_19207_20170218_135001_BG.xml")
//	if err != nil {
//	    var missing *n42.MissingDataError
//	    if errors.As(err, &missing) { ... }
//	}
//	x, kind := doc.Axis() // keV when calibrated, channel index otherwise
//
// The energy calibration is linear, E(ch) = c0 + c1*ch. Higher-order
// coefficients are kept on [Calibration.Coefficients] but not evaluated.
//
// Files ending in .gz or .zst are decompressed on the fly.
package n42
