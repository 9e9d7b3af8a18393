package valuation

import (
	"math"

	"github.com/tharwatech/mahfaza/internal/models"
)

// allocationTolerance is how far a percentage sum may drift from 100 before
// renormalization kicks in.
const allocationTolerance = 1e-6

// NormalizeAllocations enforces the sum-to-100 contract on generator output.
// The generator is instructed to return percentages summing to 100 but is
// not contractually reliable, so this pass clamps negative percentages to
// zero and rescales the rest. Returns the normalized slice and whether any
// adjustment was applied. An all-zero allocation cannot be rescaled and is
// returned unchanged.
func NormalizeAllocations(allocations []models.CategoryAllocation) ([]models.CategoryAllocation, bool) {
	if len(allocations) == 0 {
		return allocations, false
	}

	out := make([]models.CategoryAllocation, len(allocations))
	copy(out, allocations)

	adjusted := false
	total := 0.0
	for i := range out {
		if out[i].Percentage < 0 {
			out[i].Percentage = 0
			adjusted = true
		}
		total += out[i].Percentage
	}

	if total <= 0 {
		return out, adjusted
	}

	if math.Abs(total-100) > allocationTolerance {
		scale := 100 / total
		for i := range out {
			out[i].Percentage *= scale
		}
		adjusted = true
	}

	return out, adjusted
}

// AllocationSum returns the percentage sum of an allocation list.
func AllocationSum(allocations []models.CategoryAllocation) float64 {
	total := 0.0
	for _, a := range allocations {
		total += a.Percentage
	}
	return total
}
