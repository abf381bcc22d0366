// Package host defines the boundary between the renderer and a platform audio
// layer: device capabilities, configuration negotiation, the per-callback
// buffer and timestamp contract, and the error taxonomy.
//
// A host owns the audio thread. It calls a [DataCallback] with an interleaved,
// frame-major [Data] buffer and an [OutputCallbackInfo] carrying a monotonic
// [StreamInstant]. Faults during streaming go to an [ErrorCallback]; they
// never stop the data callback from being invoked.
//
// Implementations live in sub-packages:
//   - otohost: real output through github.com/ebitengine/oto/v3
//   - virtual: deterministic headless device for tests and dry runs
//   - wavfile: offline rendering into a WAV file
package host
