package sim_test

import (
	"sync/atomic"
	"testing"

	"github.com/sigurn/crc8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clktmr/vsyncfb/hal"
	"github.com/clktmr/vsyncfb/hal/sim"
)

func TestWritePixelsPitch(t *testing.T) {
	dev := sim.New()
	r, err := dev.CreateResource(hal.Image8BPP, 4, 3)
	require.NoError(t, err)

	// 4 pixels wide with a pitch of 8, rows filled with their number and
	// padding with 0xff
	data := []byte{
		1, 1, 1, 1, 0xff, 0xff, 0xff, 0xff,
		2, 2, 2, 2, 0xff, 0xff, 0xff, 0xff,
		3, 3, 3, 3, 0xff, 0xff, 0xff, 0xff,
	}
	rect := hal.Rect{X: 1, Y: 0, Width: 3, Height: 3}
	require.NoError(t, dev.WritePixels(r, hal.Image8BPP, 8, data, rect))

	s := dev.Surface(r)
	assert.Equal(t, []byte{
		0, 1, 1, 1,
		0, 2, 2, 2,
		0, 3, 3, 3,
	}, s.Pix)

	table := crc8.MakeTable(crc8.Params{0x07, 0x00, false, false, 0x00, 0xF4, "CRC-8/SMBUS"})
	uploads := dev.Uploads()
	require.Len(t, uploads, 1)
	assert.Equal(t, crc8.Checksum([]byte{1, 1, 1, 2, 2, 2, 3, 3, 3}, table), uploads[0].CRC)
	assert.Equal(t, rect, uploads[0].Rect)
}

func TestWritePixelsRange(t *testing.T) {
	dev := sim.New()
	r, err := dev.CreateResource(hal.Image8BPP, 4, 4)
	require.NoError(t, err)
	data := make([]byte, 16)

	for _, rect := range []hal.Rect{
		{X: 1, Width: 4, Height: 1},
		{Y: 3, Width: 4, Height: 2},
		{Width: 0, Height: 1},
	} {
		err := dev.WritePixels(r, hal.Image8BPP, 4, data, rect)
		assert.Equal(t, hal.StatusRange, hal.StatusOf(err), "%v", rect)
	}
	err = dev.WritePixels(r, hal.Image8BPP, 2, data, hal.Rect{Width: 4, Height: 1})
	assert.Equal(t, hal.StatusRange, hal.StatusOf(err), "pitch smaller than width")
	err = dev.WritePixels(r, hal.Image8BPP, 4, data[:15], hal.Rect{Width: 4, Height: 4})
	assert.Equal(t, hal.StatusRange, hal.StatusOf(err), "short data")
	err = dev.WritePixels(r+100, hal.Image8BPP, 4, data, hal.Rect{Width: 4, Height: 4})
	assert.Equal(t, hal.StatusInvalid, hal.StatusOf(err))
}

func TestFailAfter(t *testing.T) {
	dev := sim.New()
	dev.FailAfter("CreateResource", 1)

	_, err := dev.CreateResource(hal.Image8BPP, 1, 1)
	require.NoError(t, err)
	_, err = dev.CreateResource(hal.Image8BPP, 1, 1)
	var herr *hal.Error
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, "CreateResource", herr.Op)
	_, err = dev.CreateResource(hal.Image8BPP, 1, 1)
	require.NoError(t, err, "only a single call fails")

	assert.Equal(t, 3, dev.Count("CreateResource"))
	assert.Len(t, dev.Resources(), 2)
}

func TestUpdates(t *testing.T) {
	dev := sim.New()
	d, err := dev.OpenDisplay(0)
	require.NoError(t, err)
	r0, _ := dev.CreateResource(hal.Image8BPP, 8, 8)
	r1, _ := dev.CreateResource(hal.Image8BPP, 8, 8)
	rect := hal.Rect{Width: 8, Height: 8}

	u, err := dev.BeginUpdate(10)
	require.NoError(t, err)
	e, err := dev.AddElement(u, d, 7, rect, rect, r0)
	require.NoError(t, err)
	assert.Zero(t, dev.Shown(7), "not applied before submit")
	require.NoError(t, dev.SubmitUpdate(u, nil))
	assert.Equal(t, r0, dev.Shown(7))

	var applied atomic.Int32
	u, _ = dev.BeginUpdate(10)
	require.NoError(t, dev.ChangeSource(u, e, r1))
	require.NoError(t, dev.SubmitUpdate(u, func(hal.Update) { applied.Add(1) }))
	dev.Flush()
	assert.Equal(t, r1, dev.Shown(7))
	assert.Equal(t, int32(1), applied.Load())

	err = dev.SubmitUpdate(u, nil)
	assert.Equal(t, hal.StatusInvalid, hal.StatusOf(err), "update can't be submitted twice")

	u, _ = dev.BeginUpdate(10)
	require.NoError(t, dev.RemoveElement(u, e))
	require.NoError(t, dev.SubmitUpdate(u, nil))
	_, _, elements := dev.Allocated()
	assert.Zero(t, elements)
}

func TestVsync(t *testing.T) {
	dev := sim.New()
	d, err := dev.OpenDisplay(0)
	require.NoError(t, err)
	assert.Equal(t, d, dev.Display())

	var n atomic.Int32
	dev.Vsync()
	require.NoError(t, dev.SetVsyncCallback(d, func() { n.Add(1) }))
	assert.True(t, dev.VsyncRegistered(d))
	dev.Vsync()
	dev.Vsync()
	require.NoError(t, dev.SetVsyncCallback(d, nil))
	assert.False(t, dev.VsyncRegistered(d))
	dev.Vsync()
	assert.Equal(t, int32(2), n.Load())

	require.NoError(t, dev.CloseDisplay(d))
	assert.Equal(t, hal.StatusInvalid, hal.StatusOf(dev.SetVsyncCallback(d, nil)))
}
