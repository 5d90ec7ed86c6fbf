package ingest

import (
	"fmt"

	"datajobs/internal/database/postgres"
)

// TransientStoreError marks a store failure worth retrying with backoff.
// Everything else that comes out of the coordinator is terminal for the
// record that caused it.
type TransientStoreError struct {
	Op  string
	Err error
}

func (e *TransientStoreError) Error() string {
	return fmt.Sprintf("transient store failure during %s: %v", e.Op, e.Err)
}

func (e *TransientStoreError) Unwrap() error { return e.Err }

// classifyStoreErr wraps connection-level failures so the batch layer can
// tell a retryable outage apart from a bad record.
func classifyStoreErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if postgres.IsTransient(err) {
		return &TransientStoreError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}
