package drift

import "time"

// Clock returns the current time. Systems accept one so tests can control
// the soft time budgets.
type Clock func() time.Time

// Default soft budgets.
const (
	DefaultTickBudget     = 16 * time.Millisecond
	DefaultPairwiseBudget = 8 * time.Millisecond

	// budgetCheckStride is how many outer-loop iterations pass between
	// clock reads in the pairwise force loops.
	budgetCheckStride = 50
)

// budget is a soft deadline. A zero limit never expires.
type budget struct {
	start time.Time
	limit time.Duration
	now   Clock
}

func startBudget(limit time.Duration, now Clock) budget {
	if now == nil {
		now = time.Now
	}
	return budget{start: now(), limit: limit, now: now}
}

func (b budget) exceeded() bool {
	return b.limit > 0 && b.now().Sub(b.start) > b.limit
}

func (b budget) elapsed() time.Duration {
	return b.now().Sub(b.start)
}
