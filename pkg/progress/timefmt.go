package progress

import (
	"fmt"
)

// timefmt.go renders second counts as the fixed-width ETA field.

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400

	// maxFormatSeconds is the upper representable bound of the ETA field
	// (100 days). A count at or past it means the estimate upstream is
	// broken, so it is rejected rather than clamped.
	maxFormatSeconds = 100 * secondsPerDay

	// minDayWidth is the narrowest day field that holds every count the
	// formatter accepts: the range tops out at 99 days, two digits. A
	// narrower field would outgrow its budgeted columns mid-run.
	minDayWidth = 2

	defaultDayWidth = minDayWidth
)

// timeParts is a second count split into display components.
type timeParts struct {
	days    int64
	hours   int64
	minutes int64
	seconds int64
}

// splitSeconds breaks a second count into days, hours, minutes, and
// seconds. Counts outside [0, maxFormatSeconds) are rejected.
func splitSeconds(total int64) (timeParts, error) {
	if total < 0 {
		return timeParts{}, fmt.Errorf("negative second count %d", total)
	}
	if total >= maxFormatSeconds {
		return timeParts{}, fmt.Errorf("second count %d at or above representable bound %d", total, maxFormatSeconds)
	}

	return timeParts{
		days:    total / secondsPerDay,
		hours:   (total % secondsPerDay) / secondsPerHour,
		minutes: (total % secondsPerHour) / secondsPerMinute,
		seconds: total % secondsPerMinute,
	}, nil
}

// formatETA renders a second count as "ETA:DDdHHhMMmSSs" with the day
// field zero-padded to dayWidth. The width is stable across ticks, which
// keeps in-place redraws flicker-free.
func formatETA(total int64, dayWidth int) (string, error) {
	parts, err := splitSeconds(total)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ETA:%0*dd%02dh%02dm%02ds",
		dayWidth, parts.days, parts.hours, parts.minutes, parts.seconds), nil
}

// etaWidth is the column count of the formatted ETA field for a given
// day-field width.
func etaWidth(dayWidth int) int {
	return len("ETA:") + dayWidth + len("d00h00m00s")
}
