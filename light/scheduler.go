// Scheduler implements the skipping-bisection policy of spec.md §4.2,
// grounded on the teacher's fetchAndVerifyToHeightBisecting
// (lite/client.go), which computes `mid := (start + end) / 2` when
// trust-overlap fails.
package light

import "github.com/coinexchain/tm-light-client/types"

// ScheduleNextHeight returns the next height the Client should fetch,
// given the currently verified height and the overall target.
//
// If current already equals target, callers should simply terminate; this
// function assumes current < target.
func ScheduleNextHeight(current, target types.Height) types.Height {
	pivot := current + (target-current)/2
	if pivot == current {
		return target
	}
	return pivot
}
