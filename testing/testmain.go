// Package testing provides utilities for tests driving a display on the
// in-memory device.
package testing

import (
	"log/slog"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clktmr/vsyncfb/drivers/display"
	"github.com/clktmr/vsyncfb/framebuffer"
	"github.com/clktmr/vsyncfb/hal/sim"
)

// Timeout for a single render cycle. The sim device has no latency, so this
// is only ever reached if a test fails.
const Timeout = 5 * time.Second

// TestMain should be used as TestMain for tests of displays. Set
// VSYNCFB_DEBUG to get the display's debug log on stderr.
func TestMain(m *testing.M) {
	if os.Getenv("VSYNCFB_DEBUG") != "" {
		display.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}
	os.Exit(m.Run())
}

// Step triggers a vsync and waits until d completed the resulting cycle.
func Step(t testing.TB, dev *sim.Device, d *display.Display) {
	t.Helper()
	want := d.Frames() + 1
	dev.Vsync()
	require.Eventually(t, func() bool { return d.Frames() >= want },
		Timeout, time.Millisecond, "cycle %d not completed", want)
}

// Exit triggers a vsync and waits until d's render loop exited. After Stop,
// that vsync runs the last cycle.
func Exit(t testing.TB, dev *sim.Device, d *display.Display) error {
	t.Helper()
	dev.Vsync()
	select {
	case <-d.Done():
	case <-time.After(Timeout):
		t.Fatal("render loop didn't exit")
	}
	return d.Wait()
}

// Recorder is a DrawFunc recording the surface index of each call. Each call
// paints a vertical bar at the column equal to the call number, so frames
// can be told apart by their upload checksum.
type Recorder struct {
	mu   sync.Mutex
	next []int
}

func (r *Recorder) Draw(fb *framebuffer.CI8, next int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next = append(r.next, next)

	fb.Clear(framebuffer.Background)
	x := fb.Rect.Max.X - 1 - len(r.next)%fb.Rect.Dx()
	for y := fb.Rect.Min.Y; y < fb.Rect.Max.Y; y++ {
		fb.SetColorIndex(x, y, framebuffer.Foreground)
	}
}

// Indices returns the recorded surface indices.
func (r *Recorder) Indices() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.next)
}
