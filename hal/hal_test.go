package hal_test

import (
	"fmt"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/clktmr/vsyncfb/hal"
)

func TestRect(t *testing.T) {
	r := hal.Rect{X: 20, Y: 0, Width: 172, Height: 64}
	assert.Equal(t, image.Rect(20, 0, 192, 64), r.Rectangle())
	assert.Equal(t, r, hal.RectOf(r.Rectangle()))
	assert.False(t, r.Empty())
	assert.True(t, hal.Rect{Width: 10}.Empty())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, hal.StatusOK, hal.StatusOf(nil))
	err := fmt.Errorf("surface 1: %w", &hal.Error{Op: "WritePixels", Status: hal.StatusRange})
	assert.Equal(t, hal.StatusRange, hal.StatusOf(err))
	assert.Equal(t, hal.StatusFailed, hal.StatusOf(hal.ErrNoHandle))
	assert.EqualError(t, &hal.Error{Op: "BeginUpdate", Status: -1}, "hal: BeginUpdate failed with status -1")
}

func TestImageType(t *testing.T) {
	assert.Equal(t, 1, hal.Image8BPP.BytesPerPixel())
	assert.Equal(t, 0, hal.ImageNone.BytesPerPixel())
	assert.Equal(t, "8BPP", hal.Image8BPP.String())
}
