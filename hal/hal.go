package hal

import "image"

// Handles returned by a Device. The zero value never refers to a valid
// object.
type (
	Display  uint32
	Element  uint32
	Resource uint32
	Update   uint32
)

// ImageType is the pixel format of a Resource.
type ImageType uint32

const (
	ImageNone ImageType = iota
	Image8BPP           // palette indexed, one byte per pixel
)

// BytesPerPixel returns the size of a single pixel in memory.
func (t ImageType) BytesPerPixel() int {
	switch t {
	case Image8BPP:
		return 1
	}
	return 0
}

func (t ImageType) String() string {
	switch t {
	case Image8BPP:
		return "8BPP"
	}
	return "none"
}

// Rect is a rectangle in pixels as used by the compositor.
type Rect struct {
	X, Y          int
	Width, Height int
}

// RectOf converts an image.Rectangle into a Rect.
func RectOf(r image.Rectangle) Rect {
	return Rect{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rectangle returns r as an image.Rectangle.
func (r Rect) Rectangle() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Empty reports whether r contains no pixels.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// UpdateFunc is called by the Device once a submitted update was applied.
// It runs in the Device's callback context and must not block.
type UpdateFunc func(u Update)

// VsyncFunc is called by the Device on every vertical sync. It runs in the
// Device's callback context and must not block.
type VsyncFunc func()

// Device is the compositor. Every method that returns an error reports a
// non-success status from the hardware, the state of the affected objects is
// undefined afterwards.
type Device interface {
	OpenDisplay(id uint32) (Display, error)
	CloseDisplay(d Display) error

	// CreateResource allocates an off-screen pixel buffer.
	CreateResource(typ ImageType, width, height int) (Resource, error)
	DeleteResource(r Resource) error
	// SetPalette replaces the first len(entries) palette entries of r.
	// Entries are RGB565 words.
	SetPalette(r Resource, entries []uint16) error
	// WritePixels copies rect from data into the same rect of r. Rows in
	// data are pitch bytes apart.
	WritePixels(r Resource, typ ImageType, pitch int, data []byte, rect Rect) error

	// BeginUpdate starts a transaction. Higher priorities are applied
	// first if multiple updates are pending.
	BeginUpdate(priority int) (Update, error)
	AddElement(u Update, d Display, layer int, dst, src Rect, r Resource) (Element, error)
	RemoveElement(u Update, e Element) error
	// ChangeSource makes e show resource r once u is applied.
	ChangeSource(u Update, e Element, r Resource) error
	// SubmitUpdate queues u and returns without waiting for it to be
	// applied. The callback is optional.
	SubmitUpdate(u Update, done UpdateFunc) error

	// SetVsyncCallback registers fn to be called on each vertical sync of
	// d. A nil fn revokes the registration.
	SetVsyncCallback(d Display, fn VsyncFunc) error
}
