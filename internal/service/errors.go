package service

import (
	"errors"
	"time"
)

// Error taxonomy surfaced to the transport layer. Store errors are wrapped
// with fmt.Errorf and propagate unchanged; everything else maps to one of
// these sentinels via errors.Is.
var (
	// ErrValidation rejects malformed input (inverted range, empty batch)
	// before any store call.
	ErrValidation = errors.New("validation failed")

	// ErrConflict signals that a write would create an overlapping time
	// log. Never silently auto-resolved.
	ErrConflict = errors.New("conflicting time log")

	// ErrTimerNotRunning is returned when a stop is requested but no open
	// session exists.
	ErrTimerNotRunning = errors.New("timer is not running")

	// ErrTrackingDisabled is returned when time tracking has been switched
	// off for the employee.
	ErrTrackingDisabled = errors.New("time tracking is disabled for this employee")

	// ErrPermissionDenied is returned when the caller's scope lacks the
	// permission an operation demands.
	ErrPermissionDenied = errors.New("permission denied")
)

// MergeReport summarizes a merge pass. Bucket failures do not abort
// siblings; the caller retries by re-running merge over the same range.
type MergeReport struct {
	Buckets       int
	Merged        int
	Failed        int
	FailedBuckets []time.Time
}

// Partial reports whether some buckets failed while others succeeded.
func (r *MergeReport) Partial() bool {
	return r.Failed > 0 && r.Merged > 0
}
