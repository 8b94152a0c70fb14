// Package audit archives raw payment-callback payloads. The payloads are the
// evidence trail for disputes and fraud investigation; archival is
// best-effort and never blocks verification.
package audit

import "context"

// Archiver persists a raw callback payload under a key.
type Archiver interface {
	Archive(ctx context.Context, key string, payload []byte) error
}

// NopArchiver discards payloads. Used in tests.
type NopArchiver struct{}

func (NopArchiver) Archive(ctx context.Context, key string, payload []byte) error {
	return nil
}
