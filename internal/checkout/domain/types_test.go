package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(n int) *int { return &n }

func TestSummarize(t *testing.T) {
	t.Run("all failed quotes first failure", func(t *testing.T) {
		s := Summarize([]PurchaseResult{
			{OK: false, ID: "a", Message: "sold out"},
			{OK: false, ID: "b", Message: "HTTP 500"},
		})
		assert.Equal(t, AllFailed, s.Outcome)
		assert.Equal(t, "sold out", s.Message)
	})

	t.Run("all failed without messages uses generic text", func(t *testing.T) {
		s := Summarize([]PurchaseResult{{OK: false, ID: "a"}})
		assert.Equal(t, "Purchase could not be completed.", s.Message)
	})

	t.Run("partial lists at most three failures", func(t *testing.T) {
		s := Summarize([]PurchaseResult{
			{OK: true, ID: "ok"},
			{OK: false, ID: "a", Message: "m1"},
			{OK: false, ID: "b", Message: "m2"},
			{OK: false, ID: "c", Message: "m3"},
			{OK: false, ID: "d", Message: "m4"},
		})
		assert.Equal(t, Partial, s.Outcome)
		assert.Equal(t, "Some items could not be purchased: m1, m2, m3", s.Message)
	})

	t.Run("partial falls back to ids when a message is missing", func(t *testing.T) {
		s := Summarize([]PurchaseResult{
			{OK: true, ID: "ok"},
			{OK: false, ID: "b"},
		})
		assert.Contains(t, s.Message, "b")
	})

	t.Run("single success includes remaining stock", func(t *testing.T) {
		s := Summarize([]PurchaseResult{{OK: true, ID: "a", Left: intp(7)}})
		assert.Equal(t, AllSucceeded, s.Outcome)
		assert.Equal(t, "Order placed! Remaining stock: 7", s.Message)
	})

	t.Run("multiple successes omit stock note", func(t *testing.T) {
		s := Summarize([]PurchaseResult{
			{OK: true, ID: "a", Left: intp(7)},
			{OK: true, ID: "b", Left: intp(2)},
		})
		assert.Equal(t, "Order placed!", s.Message)
	})
}

func TestSummaryFailedKeepsOrder(t *testing.T) {
	s := Summarize([]PurchaseResult{
		{OK: false, ID: "x"},
		{OK: true, ID: "y"},
		{OK: false, ID: "z"},
	})
	failed := s.Failed()
	assert.Equal(t, "x", failed[0].ID)
	assert.Equal(t, "z", failed[1].ID)
}
