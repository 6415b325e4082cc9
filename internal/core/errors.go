package core

import "errors"

// Failure taxonomy shared by both pipelines. Call sites wrap these with
// fmt.Errorf("...: %w", ...) and classify with errors.Is.
var (
	// ErrNotFound marks a missing source file.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks empty documents, unsupported file types and
	// chunk/embedding count mismatches.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented marks a format recognized by extension but not yet
	// supported by a loader.
	ErrNotImplemented = errors.New("not implemented")

	// ErrUpstream marks an error originating from an external provider
	// (embedding, generation, vector store) rather than from this system.
	ErrUpstream = errors.New("upstream failure")

	// ErrNotificationFailed marks exhausted or rejected callback delivery.
	// Always swallowed at the notifier boundary, never propagated.
	ErrNotificationFailed = errors.New("notification failed")
)
