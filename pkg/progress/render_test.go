package progress

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// render_test.go verifies frame composition and line termination. The
// synchronous tests use a nanosecond interval, which disables the
// redraw throttle and makes every update paint exactly one frame.

func fixedWidth(cols int) func() int {
	return func() int { return cols }
}

// frames splits captured output into its carriage-return terminated
// frames, checking the single trailing newline on the way.
func frames(t *testing.T, out string) []string {
	t.Helper()
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("output does not end with the line terminator: %q", out)
	}
	if got := strings.Count(out, "\n"); got != 1 {
		t.Fatalf("newline count = %d, want 1 (%q)", got, out)
	}

	split := strings.Split(strings.TrimSuffix(out, "\n"), "\r")
	if split[len(split)-1] != "" {
		t.Fatalf("final frame not terminated by a carriage return: %q", out)
	}
	return split[:len(split)-1]
}

func TestRenderSync_LifecycleFrames(t *testing.T) {
	var buf bytes.Buffer
	bar := New(100,
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(60)),
		WithUpdateInterval(time.Nanosecond),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	bar.Update(50)
	bar.Finish()

	got := frames(t, buf.String())
	if len(got) != 3 {
		t.Fatalf("frame count = %d, want 3 (%q)", len(got), got)
	}

	// 60 columns leave a 38-column bar: 4 for the percentage, 16 for
	// the ETA, 2 separators.
	if want := "  0% |" + strings.Repeat(" ", 36) + "| ETA:99d23h59m59s"; got[0] != want {
		t.Fatalf("construction frame = %q, want %q", got[0], want)
	}
	if want := " 50% |" + strings.Repeat("=", 18) + strings.Repeat(" ", 18) + "| ETA:00d00h00m00s"; got[1] != want {
		t.Fatalf("midway frame = %q, want %q", got[1], want)
	}
	if want := "100% |" + strings.Repeat("=", 36) + "| ETA:00d00h00m00s"; got[2] != want {
		t.Fatalf("completion frame = %q, want %q", got[2], want)
	}
}

func TestRenderSync_ImmediateFinish(t *testing.T) {
	var buf bytes.Buffer
	bar := New(10,
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(40)),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	bar.Finish()

	got := frames(t, buf.String())
	if len(got) != 2 {
		t.Fatalf("frame count = %d, want 2 (%q)", len(got), got)
	}
	if want := "100% |" + strings.Repeat("=", 16) + "| ETA:00d00h00m00s"; got[1] != want {
		t.Fatalf("completion frame = %q, want %q", got[1], want)
	}
}

func TestRenderSync_LabelAndRelabel(t *testing.T) {
	var buf bytes.Buffer
	bar := New(10,
		WithLabel("copying"),
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(50)),
		WithUpdateInterval(time.Nanosecond),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	bar.Update(5)
	bar.UpdateLabel("verifying")
	bar.Update(6)
	bar.Finish()

	got := frames(t, buf.String())

	// The label swap alone does not redraw; it rides the next update.
	if len(got) != 4 {
		t.Fatalf("frame count = %d, want 4 (%q)", len(got), got)
	}
	if !strings.HasPrefix(got[1], "copying |") {
		t.Fatalf("midway frame = %q, want the original label", got[1])
	}
	if !strings.HasPrefix(got[2], "verifying |") {
		t.Fatalf("relabeled frame = %q, want the new label", got[2])
	}
	if want := "verifying |" + strings.Repeat("=", 21) + "| ETA:00d00h00m00s"; got[3] != want {
		t.Fatalf("completion frame = %q, want %q", got[3], want)
	}
}

func TestRenderSync_NarrowTerminalDropsLabel(t *testing.T) {
	var buf bytes.Buffer
	bar := New(100,
		WithLabel("a label far too long to fit"),
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(28)),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	bar.Finish()

	got := frames(t, buf.String())
	final := got[len(got)-1]

	// 28 columns hold only the 10-column bar floor and the ETA field.
	if want := "|" + strings.Repeat("=", 8) + "| ETA:00d00h00m00s"; final != want {
		t.Fatalf("narrow frame = %q, want %q", final, want)
	}
}

func TestRenderSync_NarrowDayWidthKeepsLineWidth(t *testing.T) {
	var buf bytes.Buffer
	bar := New(100,
		WithDayWidth(1),
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(40)),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	bar.Finish()

	got := frames(t, buf.String())
	if len(got) != 2 {
		t.Fatalf("frame count = %d, want 2 (%q)", len(got), got)
	}

	// The construction frame carries the two-digit placeholder day
	// count; with a one-digit field it would spill past 40 columns and
	// wrap on an exact-fit terminal.
	if want := "  0% |" + strings.Repeat(" ", 16) + "| ETA:99d23h59m59s"; got[0] != want {
		t.Fatalf("construction frame = %q, want %q", got[0], want)
	}
	if want := "100% |" + strings.Repeat("=", 16) + "| ETA:00d00h00m00s"; got[1] != want {
		t.Fatalf("completion frame = %q, want %q", got[1], want)
	}
}

func TestRenderSync_ThrottleCoalescesUpdates(t *testing.T) {
	var buf bytes.Buffer
	bar := New(1000,
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(40)),
		WithUpdateInterval(time.Hour),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	for i := 0; i < 500; i++ {
		bar.Increment()
	}
	bar.Finish()

	got := frames(t, buf.String())

	// Construction, one throttled redraw for the burst, completion.
	if len(got) != 3 {
		t.Fatalf("frame count = %d, want 3 (%q)", len(got), got)
	}
}

func TestRenderLoop_FinishPaintsCompletionAndJoins(t *testing.T) {
	var buf bytes.Buffer
	bar := New(40,
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(40)),
		WithUpdateInterval(4*time.Millisecond),
		WithLogger(zerolog.Nop()),
	)

	bar.Update(20)
	time.Sleep(10 * time.Millisecond)
	bar.Finish()
	bar.Finish() // idempotent: no second newline

	got := frames(t, buf.String())
	if len(got) < 1 {
		t.Fatalf("no frames rendered")
	}

	final := got[len(got)-1]
	if !strings.Contains(final, "100%") {
		t.Fatalf("final frame does not show completion: %q", final)
	}
	if strings.Contains(final, "ETA:99d") {
		t.Fatalf("final frame still shows the placeholder: %q", final)
	}
}

func TestRenderLoop_SelfStopsAtMax(t *testing.T) {
	var buf bytes.Buffer
	bar := New(8,
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(40)),
		WithUpdateInterval(2*time.Millisecond),
		WithLogger(zerolog.Nop()),
	)

	bar.Update(8)

	select {
	case <-bar.loopDone:
	case <-time.After(2 * time.Second):
		t.Fatalf("render loop did not stop after the value reached max")
	}

	frames(t, buf.String())
}

func TestClose_FinishesBar(t *testing.T) {
	var buf bytes.Buffer
	bar := New(5,
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(40)),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	if err := bar.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := bar.Value(); got != 5 {
		t.Fatalf("Value after Close = %d, want 5", got)
	}
	frames(t, buf.String())
}

func TestWriteFrame_BlanksShrinkage(t *testing.T) {
	var buf bytes.Buffer
	bar := New(10,
		WithOutput(&buf),
		WithWidthFunc(fixedWidth(40)),
		WithoutRenderLoop(),
		WithLogger(zerolog.Nop()),
	)

	buf.Reset()
	bar.writeFrame("a frame this wide")
	bar.writeFrame("narrow")

	want := "narrow" + strings.Repeat(" ", len("a frame this wide")-len("narrow")) + "\r"
	if out := buf.String(); !strings.HasSuffix(out, want) {
		t.Fatalf("shrunk frame not blanked: %q", out)
	}
}
