/*
Copyright 2018-2026 Ruohang Feng <rh@vonng.com>

Error kinds shared across the backup engine packages (spec.md §7). These
are sentinel values, not exception classes: callers wrap them with
fmt.Errorf("...: %w", errs.ErrX) and classify with errors.Is at the CLI
boundary.
*/
package errs

import "errors"

var (
	ErrChecksum          = errors.New("backup: checksum verification failed")
	ErrConfig            = errors.New("backup: invalid configuration")
	ErrParam             = errors.New("backup: invalid parameter")
	ErrPathNotEmpty      = errors.New("backup: path not empty")
	ErrPostmasterRunning = errors.New("backup: postmaster is running")
	ErrProtocol          = errors.New("backup: protocol error")
	// ErrAssert marks an invariant violation internal to the engine: it
	// should never surface in normal operation and is fatal wherever it
	// is raised.
	ErrAssert = errors.New("backup: internal assertion failed")
)
