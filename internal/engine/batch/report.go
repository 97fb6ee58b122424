package batch

import (
	"errors"
	"fmt"
	"slices"
)

// ItemError is the failure of one item.
type ItemError struct {
	Index int
	Err   error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index+1, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }

// Report is the outcome of a batch run.
type Report struct {
	Total     int
	Succeeded int
	Failures  []ItemError
}

func (r *Report) record(index int, err error) {
	if err == nil {
		r.Succeeded++
		return
	}
	r.Failures = append(r.Failures, ItemError{Index: index, Err: err})
}

func (r *Report) sort() {
	slices.SortFunc(r.Failures, func(a, b ItemError) int { return a.Index - b.Index })
}

// OK reports whether every item succeeded.
func (r *Report) OK() bool {
	return r.Succeeded == r.Total
}

// Err joins the item failures, or returns nil.
func (r *Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Summary renders e.g. "Created 2 of 3 reminders" or "Deleted 1 reminder".
func (r *Report) Summary(verb string) string {
	noun := "reminders"
	if r.Total == 1 {
		noun = "reminder"
	}
	if r.OK() {
		return fmt.Sprintf("%s %d %s", verb, r.Total, noun)
	}
	return fmt.Sprintf("%s %d of %d %s", verb, r.Succeeded, r.Total, noun)
}
