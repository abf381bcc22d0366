// Package interp provides the interpolation primitives used by the fractional
// interaural delay and the HRIR coefficient blend.
//
//   - [Lerp]:     2-point linear interpolation (coefficient blending)
//   - [Hermite4]: 4-point cubic Hermite (fractional delay reads)
package interp
