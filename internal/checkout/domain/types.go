package domain

import (
	"fmt"
	"strings"
)

// PurchaseResult is the outcome of one buy call within a batch. Left
// is the server-reported remaining stock, nil when it was absent.
type PurchaseResult struct {
	OK      bool
	ID      string
	Message string
	Left    *int
}

type Outcome int

const (
	AllFailed Outcome = iota
	Partial
	AllSucceeded
)

func (o Outcome) String() string {
	switch o {
	case AllFailed:
		return "all_failed"
	case Partial:
		return "partial"
	case AllSucceeded:
		return "all_succeeded"
	default:
		return "unknown"
	}
}

// maxReportedFailures bounds the failure list quoted back to the user
// on a partial outcome.
const maxReportedFailures = 3

// Summary is what one checkout attempt boils down to for the caller.
type Summary struct {
	Outcome     Outcome
	Results     []PurchaseResult
	Message     string
	CartCleared bool
}

// Failed returns the failing results in original batch order.
func (s Summary) Failed() []PurchaseResult {
	var out []PurchaseResult
	for _, r := range s.Results {
		if !r.OK {
			out = append(out, r)
		}
	}
	return out
}

// Summarize classifies a completed batch and builds the user-facing
// message. Results keep their original order, so "first failure" is
// deterministic.
func Summarize(results []PurchaseResult) Summary {
	var failed, succeeded []PurchaseResult
	for _, r := range results {
		if r.OK {
			succeeded = append(succeeded, r)
		} else {
			failed = append(failed, r)
		}
	}

	s := Summary{Results: results}
	switch {
	case len(succeeded) == 0:
		s.Outcome = AllFailed
		s.Message = "Purchase could not be completed."
		if len(failed) > 0 && failed[0].Message != "" {
			s.Message = failed[0].Message
		}
	case len(failed) > 0:
		s.Outcome = Partial
		s.Message = "Some items could not be purchased: " + joinFailures(failed)
	default:
		s.Outcome = AllSucceeded
		s.Message = "Order placed!"
		if len(succeeded) == 1 && succeeded[0].Left != nil {
			s.Message = fmt.Sprintf("Order placed! Remaining stock: %d", *succeeded[0].Left)
		}
	}
	return s
}

func joinFailures(failed []PurchaseResult) string {
	n := len(failed)
	if n > maxReportedFailures {
		n = maxReportedFailures
	}

	parts := make([]string, 0, n)
	for _, f := range failed[:n] {
		msg := f.Message
		if msg == "" {
			msg = f.ID
		}
		parts = append(parts, msg)
	}
	return strings.Join(parts, ", ")
}
