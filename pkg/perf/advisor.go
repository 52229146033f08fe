// Package perf selects geometry generation budgets from model size.
//
// Both knobs are step functions of the model's instance count: a thread
// budget for the tessellation worker pool and a deflection (detail)
// value passed opaquely to the model store. Lower deflection means
// finer geometry and slower generation.
package perf

import (
	"fmt"
	"runtime"
)

// DetailClass describes a deflection value for display purposes
type DetailClass int

const (
	DetailHigh DetailClass = iota
	DetailMediumHigh
	DetailMedium
	DetailMediumLow
	DetailLow
)

func (d DetailClass) String() string {
	switch d {
	case DetailHigh:
		return "high"
	case DetailMediumHigh:
		return "medium-high"
	case DetailMedium:
		return "medium"
	case DetailMediumLow:
		return "medium-low"
	default:
		return "low"
	}
}

// ThreadBudget returns the number of tessellation threads to use for a
// model with the given instance count. The tiered result is capped at
// max(1, NumCPU-2) so the host process is never starved.
func ThreadBudget(instanceCount int) int {
	return threadBudget(instanceCount, runtime.NumCPU())
}

func threadBudget(instanceCount, cores int) int {
	if instanceCount < 0 {
		panic(fmt.Sprintf("perf: negative instance count %d", instanceCount))
	}

	var threads int
	switch {
	case instanceCount < 500:
		threads = 2
	case instanceCount < 2000:
		threads = 3
	case instanceCount < 10000:
		threads = 4
	default:
		threads = 6
	}

	limit := cores - 2
	if limit < 1 {
		limit = 1
	}
	if threads > limit {
		threads = limit
	}
	return threads
}

// DetailLevel returns the tessellation deflection for a model with the
// given instance count. Small models get fine geometry (0.01), very
// large ones coarse geometry (0.25).
func DetailLevel(instanceCount int) float64 {
	if instanceCount < 0 {
		panic(fmt.Sprintf("perf: negative instance count %d", instanceCount))
	}

	switch {
	case instanceCount < 1000:
		return 0.01
	case instanceCount < 5000:
		return 0.05
	case instanceCount < 10000:
		return 0.10
	case instanceCount < 20000:
		return 0.15
	default:
		return 0.25
	}
}

// DescribeDetail maps a deflection value back to its display class
// using the same thresholds as DetailLevel
func DescribeDetail(deflection float64) DetailClass {
	switch {
	case deflection <= 0.01:
		return DetailHigh
	case deflection <= 0.05:
		return DetailMediumHigh
	case deflection <= 0.10:
		return DetailMedium
	case deflection <= 0.15:
		return DetailMediumLow
	default:
		return DetailLow
	}
}
