package progress

import (
	"time"
)

// eta.go extrapolates remaining time from elapsed time and progress.

// warmupFraction is the minimum completed fraction before the linear
// estimate is trusted. Early samples swing wildly, so below it the
// placeholder is reported instead.
const warmupFraction = 0.001

// placeholderSeconds sits just under the formatter bound so an untrusted
// estimate reads as "still estimating" instead of implying
// near-completion.
const placeholderSeconds = maxFormatSeconds - 1

// etaSeconds picks the second count for the ETA field. While running it
// is the linear extrapolation remaining = elapsed/value*(max-value),
// assuming uniform throughput; once complete it switches to the total
// elapsed time. An extrapolation past the representable bound is
// returned as the bound itself so the formatter rejects it.
func etaSeconds(elapsed time.Duration, value, max int64, complete bool) int64 {
	if complete {
		return int64(elapsed / time.Second)
	}
	if elapsed <= 0 || value <= 0 || max <= 0 {
		return placeholderSeconds
	}
	if float64(value)/float64(max) <= warmupFraction {
		return placeholderSeconds
	}

	remaining := elapsed.Seconds() / float64(value) * float64(max-value)
	if remaining >= float64(maxFormatSeconds) {
		return maxFormatSeconds
	}
	return int64(remaining)
}
