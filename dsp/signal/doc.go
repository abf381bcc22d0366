// Package signal provides streaming test-signal sources for the render path.
//
// [Noise] is pulled one sample at a time from inside the audio callback, so
// it owns its generator state and never allocates after construction.
package signal
