// Package reminder defines the reminder record exchanged with the scheduling service,
// the draft payload used for create and edit, and the local validation that runs
// before any mutation is sent.
//
// Validation failures are reported as *ValidationError values that match
// ErrValidation with errors.Is, so callers can surface them inline without
// treating them as network failures.
package reminder
