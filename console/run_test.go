package console_test

import (
	"errors"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clktmr/vsyncfb/console"
	"github.com/clktmr/vsyncfb/drivers/display"
	"github.com/clktmr/vsyncfb/framebuffer"
	"github.com/clktmr/vsyncfb/hal"
	"github.com/clktmr/vsyncfb/hal/sim"
	vfbtesting "github.com/clktmr/vsyncfb/testing"
)

func TestMain(m *testing.M) { vfbtesting.TestMain(m) }

var errQuit = errors.New("quit")

type game struct {
	frames  int
	quitAt  int
	next    []int
	screens map[*display.Screen]bool
}

func (g *game) Update() error {
	g.frames++
	if g.frames == g.quitAt {
		return errQuit
	}
	return nil
}

func (g *game) Draw(s *display.Screen) {
	if g.screens == nil {
		g.screens = make(map[*display.Screen]bool)
	}
	g.screens[s] = true
	g.next = append(g.next, s.Next())
	s.ClearBackground(color.Black)
	s.Framebuffer().SetColorIndex(g.frames, 0, framebuffer.Foreground)
}

// run runs console.Run in the background and delivers vsyncs until it
// returns.
func run(t *testing.T, dev *sim.Device, g console.Gamelooper, opts ...display.Option) error {
	t.Helper()
	errc := make(chan error, 1)
	go func() {
		errc <- console.Run(dev, 32, 4, g, opts...)
	}()

	timeout := time.After(vfbtesting.Timeout)
	for {
		select {
		case err := <-errc:
			return err
		case <-timeout:
			t.Fatal("game loop didn't exit")
		case <-time.After(time.Millisecond):
			dev.Vsync()
		}
	}
}

func TestRun(t *testing.T) {
	dev := sim.New()
	g := &game{quitAt: 5}

	err := run(t, dev, g, display.WithDelay(0))
	require.ErrorIs(t, err, errQuit)

	assert.Equal(t, 5, g.frames, "no updates after the game quit")
	assert.Equal(t, []int{1, 0, 1, 0}, g.next)
	assert.Len(t, g.screens, 1, "screen is reused")

	displays, resources, elements := dev.Allocated()
	assert.Zero(t, displays+resources+elements)
}

func TestRunSetupFault(t *testing.T) {
	dev := sim.New()
	dev.FailAfter("CreateResource", 1)

	err := console.Run(dev, 32, 4, &game{})
	assert.Equal(t, hal.StatusFailed, hal.StatusOf(err))
	assert.Zero(t, dev.Count("SetVsyncCallback"))
}

func TestRunFault(t *testing.T) {
	dev := sim.New()
	g := &game{}
	dev.FailAfter("WritePixels", 4)

	var faults int
	err := run(t, dev, g, display.WithDelay(0), display.WithFaultHandler(func(error) {
		faults++
	}))

	var fault *display.Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "WritePixels", fault.Op)
	assert.Equal(t, uint64(3), fault.Cycle)
	assert.Equal(t, 1, faults)
}
