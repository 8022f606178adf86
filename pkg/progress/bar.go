// Package progress renders a live single-line progress indicator to a
// terminal: a bounded bar, a label or completion percentage, and an
// estimated time remaining, redrawn in place while the caller does the
// work.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/mecolosimo/progressbar/internal/console"
	"github.com/mecolosimo/progressbar/internal/logger"
)

// bar.go holds the shared progress state and the control API the owning
// goroutine calls.

// DefaultFormat is the bar glyph triple used when none is configured:
// left border, fill, right border.
const DefaultFormat = "|=|"

const defaultUpdateInterval = 500 * time.Millisecond

// Format is the parsed bar glyph triple.
type Format struct {
	begin rune
	fill  rune
	end   rune
}

// parseFormat validates that a format string is exactly three glyphs.
func parseFormat(s string) (Format, error) {
	glyphs := []rune(s)
	if len(glyphs) != 3 {
		return Format{}, fmt.Errorf("format %q must be exactly three glyphs (begin, fill, end)", s)
	}
	return Format{begin: glyphs[0], fill: glyphs[1], end: glyphs[2]}, nil
}

// borderCols is the display width of the two border glyphs.
func (f Format) borderCols() int {
	return runewidth.RuneWidth(f.begin) + runewidth.RuneWidth(f.end)
}

// fillCols is the display width of one fill cell, never below one.
func (f Format) fillCols() int {
	w := runewidth.RuneWidth(f.fill)
	if w < 1 {
		w = 1
	}
	return w
}

// Bar is a single-line terminal progress indicator. The owning goroutine
// mutates it through the control API while a background render loop
// samples it on a fixed cadence, so the two never block each other.
// value and done are the only fields both sides touch hot, which is why
// they are atomics rather than lock-guarded memory.
type Bar struct {
	value atomic.Int64
	max   atomic.Int64
	done  atomic.Bool
	label atomic.Pointer[string]

	start      time.Time
	format     Format
	formatSpec string
	interval   time.Duration
	dayWidth   int

	out           io.Writer
	fallbackWidth int
	widthFn       func() int

	syncMode bool
	throttle *rate.Limiter

	state    atomic.Int32
	loopDone chan struct{}

	// lastCols is only ever touched by whichever side renders, so it
	// needs no synchronization.
	lastCols int

	logger    zerolog.Logger
	loggerSet bool
}

// Option configures a Bar at construction.
type Option func(*Bar)

// WithLabel sets the descriptive text shown left of the bar. Without a
// label the field shows the completion percentage instead.
func WithLabel(label string) Option {
	return func(b *Bar) {
		b.label.Store(&label)
	}
}

// WithFormat sets the bar glyphs as a three-glyph string: left border,
// fill, right border. Anything else is a fatal configuration error.
func WithFormat(format string) Option {
	return func(b *Bar) {
		b.formatSpec = format
	}
}

// WithOutput redirects the redraw stream. The default is standard
// error, keeping progress output separable from a program's data on
// standard output.
func WithOutput(w io.Writer) Option {
	return func(b *Bar) {
		b.out = w
	}
}

// WithUpdateInterval sets the base period the redraw cadence is derived
// from.
func WithUpdateInterval(d time.Duration) Option {
	return func(b *Bar) {
		b.interval = d
	}
}

// WithFallbackWidth sets the terminal width assumed when the live query
// is unavailable, such as when output is piped.
func WithFallbackWidth(cols int) Option {
	return func(b *Bar) {
		b.fallbackWidth = cols
	}
}

// WithWidthFunc replaces the terminal width collaborator. Mainly useful
// in tests and for exotic sinks.
func WithWidthFunc(fn func() int) Option {
	return func(b *Bar) {
		b.widthFn = fn
	}
}

// WithDayWidth sets the digit width of the ETA day field. The day
// count runs to 99, so widths below two are ignored.
func WithDayWidth(n int) Option {
	return func(b *Bar) {
		if n >= minDayWidth {
			b.dayWidth = n
		}
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(l zerolog.Logger) Option {
	return func(b *Bar) {
		b.logger = l
		b.loggerSet = true
	}
}

// WithoutRenderLoop disables the background render goroutine. Redraws
// then happen on Update and Increment, throttled to the tick cadence,
// and Finish emits the trailing newline itself.
func WithoutRenderLoop() Option {
	return func(b *Bar) {
		b.syncMode = true
	}
}

// New creates a Bar tracking max units of work and renders its first
// frame immediately; unless WithoutRenderLoop is given it also starts
// the background render loop. A max below one is clamped to one.
//
// The caller must end the bar with Finish (or Close), even on early
// abort paths: it is what leaves the terminal on a fresh line instead
// of a dangling partial redraw, and without it the render loop never
// exits.
func New(max int64, opts ...Option) *Bar {
	b := &Bar{
		start:         time.Now(),
		formatSpec:    DefaultFormat,
		interval:      defaultUpdateInterval,
		dayWidth:      defaultDayWidth,
		out:           os.Stderr,
		fallbackWidth: defaultFallbackWidth,
		loopDone:      make(chan struct{}),
	}
	if max < 1 {
		max = 1
	}
	b.max.Store(max)

	for _, opt := range opts {
		opt(b)
	}

	if !b.loggerSet {
		b.logger = logger.New("progress")
	}

	format, err := parseFormat(b.formatSpec)
	if err != nil {
		b.logger.Fatal().Err(err).Msg("Invalid progress bar format")
	}
	b.format = format

	if b.interval <= 0 {
		b.interval = defaultUpdateInterval
	}
	if b.fallbackWidth < 1 {
		b.fallbackWidth = defaultFallbackWidth
	}
	if b.widthFn == nil {
		b.widthFn = func() int {
			return console.Width(b.out, b.fallbackWidth)
		}
	}

	b.logger.Debug().
		Int64("max", max).
		Dur("interval", b.interval).
		Bool("sync", b.syncMode).
		Msg("Progress bar started")

	if b.syncMode {
		b.throttle = rate.NewLimiter(rate.Every(b.tick()), 1)
		b.draw(time.Now())
	} else {
		go b.loop()
	}

	return b
}

// tick is the redraw cadence: a fraction of the configured base
// interval.
func (b *Bar) tick() time.Duration {
	return b.interval / 2
}

// Update sets the current progress value, clamped silently to [0, max].
// Display timing is the render loop's business; the write itself never
// blocks.
func (b *Bar) Update(value int64) {
	max := b.max.Load()
	if value < 0 {
		value = 0
	}
	if value > max {
		value = max
	}
	b.value.Store(value)
	b.maybeDraw()
}

// Increment advances progress by one unit, never past max.
func (b *Bar) Increment() {
	b.Update(b.value.Load() + 1)
}

// UpdateLabel replaces the label text. The change shows up on the next
// natural redraw; no redraw is forced.
func (b *Bar) UpdateLabel(label string) {
	b.label.Store(&label)
}

// UpdateMax resizes the total unit count. Setting it below the current
// value is a contract violation and aborts the process.
func (b *Bar) UpdateMax(max int64) {
	if err := b.setMax(max); err != nil {
		b.logger.Fatal().Err(err).Msg("Invalid progress bar max")
	}
}

func (b *Bar) setMax(max int64) error {
	if value := b.value.Load(); max < value {
		return fmt.Errorf("new max %d below current value %d", max, value)
	}
	if max < 1 {
		max = 1
	}
	b.max.Store(max)
	return nil
}

// Value returns the current progress count.
func (b *Bar) Value() int64 {
	return b.value.Load()
}

// Max returns the current total unit count.
func (b *Bar) Max() int64 {
	return b.max.Load()
}

// Finish forces the bar to completion and blocks until the final frame
// and the trailing newline are on the terminal, leaving the cursor on a
// fresh line for whatever the program prints next. It is idempotent and
// must be called even on early abort paths.
func (b *Bar) Finish() {
	b.value.Store(b.max.Load())
	b.done.Store(true)

	if b.syncMode {
		if b.state.CompareAndSwap(stateRunning, stateStopping) {
			b.draw(time.Now())
			b.finishLine()
			b.state.Store(stateStopped)
			close(b.loopDone)
		}
		return
	}

	// The loop is the sole writer to the terminal; wait for it to paint
	// the final frame and exit.
	<-b.loopDone
}

// Close finishes the bar. It exists so a Bar can ride an io.Closer,
// typically as defer bar.Close().
func (b *Bar) Close() error {
	b.Finish()
	return nil
}

// Write advances the bar by len(p), so an io.Copy can report transfer
// progress straight through it.
func (b *Bar) Write(p []byte) (int, error) {
	b.Update(b.value.Load() + int64(len(p)))
	return len(p), nil
}

// maybeDraw redraws in synchronous mode, rate-limited to the tick
// cadence. With the render loop running it is a no-op: the loop owns
// the terminal.
func (b *Bar) maybeDraw() {
	if !b.syncMode || b.state.Load() != stateRunning {
		return
	}
	if b.throttle.Allow() {
		b.draw(time.Now())
	}
}
