// Package mocks provides in-memory implementations of the driven ports
// for tests. Providers generate deterministic output so retrieval tests
// are reproducible; failure injection uses ErrSimulated so callers can
// tell an injected failure apart from a real timeout or cancellation.
package mocks

import "errors"

// ErrSimulated is returned by every mock whose next call was set to fail.
var ErrSimulated = errors.New("simulated failure")
