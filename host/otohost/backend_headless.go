//go:build headless

package otohost

import "errors"

// ErrHeadless is returned by every build in headless binaries.
var ErrHeadless = errors.New("otohost: built without audio output (headless)")

var openBackend = func(contextConfig) (backend, error) {
	return nil, ErrHeadless
}
