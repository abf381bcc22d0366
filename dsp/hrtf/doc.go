// Package hrtf renders a mono sample stream binaurally from a direction that
// may change over time.
//
// A [Set] holds head-related impulse responses (HRIRs) measured, or
// synthesized, at a ring of azimuths in the horizontal plane. Each
// [Measurement] separates the interaural time difference (a per-ear
// fractional delay) from the spectral shaping (a per-ear FIR), so that
// neighbouring measurements can be blended coefficient by coefficient without
// comb-filtering.
//
// [Spatializer] keeps per-ear FIR histories and delay lines that persist for
// the lifetime of the stream. When the position changes it interpolates the
// two nearest measurements into a target and ramps the live coefficients
// towards it over a fixed number of samples, so motion never produces a step.
//
// [SphericalHead] synthesizes a Set from the Brown–Duda spherical-head model
// (one-pole/one-zero head shadow and Woodworth ITD).
//
// Included providers:
//   - SphericalHead: analytic spherical-head model, any sample rate.
//
// Loading published HRTF datasets is out of scope; implement [Provider] to
// supply one.
package hrtf
