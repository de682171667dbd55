// Package mda computes detection efficiency and the minimum detectable
// activity concentration for an airborne or ground source simulated around a
// detector.
//
// For every simulated activity concentration the detection efficiency is the
// ratio of full-energy peak counts to the number of simulated decays:
//
//	eff = peak / events
//
// The detection limit follows Currie's formula with coverage factor k
// (4.66 for 5% false-positive and false-negative rates):
//
//	L = k * sqrt(B) / (T * V * eff * p)
//
// where B is the background count in the peak region, T the acquisition time,
// V the source volume (a hemisphere of radius r around the detector) and p the
// gamma emission probability. With T in s and V in m^3, L is in Bq/m^3.
//
// # Usage
//
//	res, err := mda.Evaluate(mda.ReferenceCs137(), mda.DefaultSetup())
//	fmt.Printf("%.3e +- %.3e\n", res.Efficiency.Mean, res.Efficiency.StdDev)
package mda
