package progress

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
)

// render.go drives the redraw cadence and composes each frame. While the
// render loop runs it is the only goroutine writing to the terminal.

const (
	stateRunning int32 = iota
	stateStopping
	stateStopped
)

// loop redraws on a fixed cadence until the bar completes, then paints
// one last frame, terminates the line, and exits. The stop condition is
// sampled before the draw so the final frame always reflects the
// completed state.
func (b *Bar) loop() {
	for {
		stopping := b.done.Load() || b.value.Load() >= b.max.Load()
		b.draw(time.Now())
		if stopping {
			b.state.Store(stateStopping)
			break
		}
		time.Sleep(b.tick())
	}
	b.finishLine()
	b.state.Store(stateStopped)
	close(b.loopDone)
}

// draw samples the shared state once and paints a single frame from the
// snapshot, so a frame never mixes two generations of progress.
func (b *Bar) draw(now time.Time) {
	value := b.value.Load()
	max := b.max.Load()
	complete := b.done.Load() || value >= max

	left := ""
	if lp := b.label.Load(); lp != nil && *lp != "" {
		left = *lp
	} else {
		left = fmt.Sprintf("%3d%%", value*100/max)
	}

	eta := b.etaField(now, value, max, complete)

	screen := b.widthFn()
	if screen < 1 {
		screen = b.fallbackWidth
	}
	geo := computeGeometry(screen, runewidth.StringWidth(left), etaWidth(b.dayWidth))

	var frame strings.Builder
	if geo.labelWidth > 0 {
		frame.WriteString(truncateLabel(left, geo.labelWidth))
		frame.WriteByte(' ')
	}
	b.writeBar(&frame, geo.barWidth, value, max)
	frame.WriteByte(' ')
	frame.WriteString(eta)

	b.writeFrame(frame.String())
}

// writeBar renders the bordered bar. Empty cells pad to the fill glyph's
// display width so the bar occupies the same columns at every fill
// level.
func (b *Bar) writeBar(frame *strings.Builder, barWidth int, value, max int64) {
	cells := interiorCells(barWidth, b.format)
	filled := filledCells(cells, value, max)

	frame.WriteRune(b.format.begin)
	for i := 0; i < filled; i++ {
		frame.WriteRune(b.format.fill)
	}
	if empty := cells - filled; empty > 0 {
		frame.WriteString(strings.Repeat(" ", empty*b.format.fillCols()))
	}
	frame.WriteRune(b.format.end)
}

// etaField formats the right-hand time field. A duration past the
// representable range is a contract violation and aborts the process.
func (b *Bar) etaField(now time.Time, value, max int64, complete bool) string {
	secs := etaSeconds(now.Sub(b.start), value, max, complete)
	field, err := formatETA(secs, b.dayWidth)
	if err != nil {
		b.logger.Fatal().Err(err).Msg("Progress duration exceeds the displayable range")
	}
	return field
}

// writeFrame paints one frame in place: carriage return, no newline.
// When the new frame is narrower than the previous one the difference is
// blanked so stale glyphs never linger.
func (b *Bar) writeFrame(line string) {
	cols := runewidth.StringWidth(line)
	if cols < b.lastCols {
		line += strings.Repeat(" ", b.lastCols-cols)
	}
	b.lastCols = cols
	_, _ = io.WriteString(b.out, line+"\r")
	b.flush()
}

// finishLine terminates the redraw line, leaving the cursor where
// ordinary output can resume. It runs exactly once per bar, which makes
// it the natural place to log the lifecycle end.
func (b *Bar) finishLine() {
	_, _ = io.WriteString(b.out, "\n")
	b.flush()
	b.logger.Debug().
		Int64("value", b.value.Load()).
		Dur("elapsed", time.Since(b.start)).
		Msg("Progress bar finished")
}

// flush pushes the frame through whatever buffering the sink has, so a
// frame is on screen before the next tick rather than whenever the
// buffer happens to fill.
func (b *Bar) flush() {
	switch w := b.out.(type) {
	case interface{ Sync() error }:
		_ = w.Sync()
	case interface{ Flush() error }:
		_ = w.Flush()
	}
}
