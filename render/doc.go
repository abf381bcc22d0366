// Package render drives the rotating binaural noise scene from an audio
// host's data callback.
//
// A [Renderer] owns one noise source and one HRTF spatializer. On every
// callback it derives elapsed playback time from the host timestamp, places
// the source once for the whole buffer, and writes interleaved frames. The
// first callback carrying a valid timestamp latches the playback origin.
//
// The render path never allocates, locks or returns errors. Degenerate
// timestamps collapse to zero elapsed time.
package render
