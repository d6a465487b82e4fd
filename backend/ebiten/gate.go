package ebiten

import (
	"time"

	"github.com/joeycumines/go-winloop"
)

// shouldStep reports whether a tick should run a loop iteration, given the
// plan from the previous iteration. Ticks are skipped while the plan says to
// wait and there is nothing to deliver.
func shouldStep(plan winloop.WaitPlan, now time.Time, pending, woken bool) bool {
	switch {
	case plan.Mode == winloop.WaitNone, pending, woken:
		return true
	default:
		return plan.Expired(now)
	}
}
