// Package ebitenhw implements hal.Device in a desktop window.
//
// Surfaces are composed in software and shown through ebiten, which calls
// Draw once per vertical sync of the monitor when vsync is enabled. Each
// Draw latches all updates submitted since the last one, which is when their
// completion callbacks run, and then calls the vsync callback. Both run on
// ebiten's goroutine.
package ebitenhw

import (
	"image/color"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/clktmr/vsyncfb/framebuffer"
	"github.com/clktmr/vsyncfb/hal"
)

type surface struct {
	width, height int
	pix           []byte
	lut           [256]color.RGBA
}

type element struct {
	handle   hal.Element
	layer    int
	dst, src hal.Rect
	source   hal.Resource
}

type update struct {
	ops []func(scene []element) []element
}

// state is a submitted scene. seq increases with every SubmitUpdate.
type state struct {
	seq   uint64
	scene []element
}

type completion struct {
	seq uint64
	fn  func()
}

type layer struct {
	el element
	s  surface
}

// Device is a single display of a fixed size. Only display id 0 exists.
type Device struct {
	width, height int

	mu        sync.Mutex
	handle    uint32
	display   hal.Display
	vsync     hal.VsyncFunc
	resources map[hal.Resource]*surface
	updates   map[hal.Update]*update
	staged    []element    // scene with all submitted updates applied
	seq       uint64       // of the last submitted update
	callbacks []completion // of updates not latched yet, by seq

	scene   hal.Mailbox[state]
	latched state // owned by Refresh

	quit atomic.Bool
}

// New returns a device with a screen of width x height pixels.
func New(width, height int) *Device {
	return &Device{
		width:     width,
		height:    height,
		resources: make(map[hal.Resource]*surface),
		updates:   make(map[hal.Update]*update),
	}
}

// Size returns the screen size in pixels.
func (p *Device) Size() (width, height int) { return p.width, p.height }

// Shutdown makes Run return after the current frame.
func (p *Device) Shutdown() { p.quit.Store(true) }

func (p *Device) newHandle() uint32 {
	p.handle++
	return p.handle
}

func invalid(op string) error {
	return &hal.Error{Op: op, Status: hal.StatusInvalid}
}

func outOfRange(op string) error {
	return &hal.Error{Op: op, Status: hal.StatusRange}
}

func (p *Device) OpenDisplay(id uint32) (hal.Display, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if id != 0 || p.display != 0 {
		return 0, invalid("OpenDisplay")
	}
	p.display = hal.Display(p.newHandle())
	return p.display, nil
}

func (p *Device) CloseDisplay(d hal.Display) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d == 0 || d != p.display {
		return invalid("CloseDisplay")
	}
	p.display, p.vsync = 0, nil
	return nil
}

func (p *Device) CreateResource(typ hal.ImageType, width, height int) (hal.Resource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if typ != hal.Image8BPP {
		return 0, invalid("CreateResource")
	}
	if width <= 0 || height <= 0 {
		return 0, outOfRange("CreateResource")
	}
	r := hal.Resource(p.newHandle())
	s := &surface{width: width, height: height, pix: make([]byte, width*height)}
	for i := range s.lut {
		s.lut[i] = color.RGBA{A: 0xff}
	}
	p.resources[r] = s
	return r, nil
}

func (p *Device) DeleteResource(r hal.Resource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.resources[r]; !ok {
		return invalid("DeleteResource")
	}
	delete(p.resources, r)
	return nil
}

func (p *Device) SetPalette(r hal.Resource, entries []uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.resources[r]
	if !ok {
		return invalid("SetPalette")
	}
	if len(entries) > len(s.lut) {
		return outOfRange("SetPalette")
	}
	for i, w := range entries {
		s.lut[i] = color.RGBAModel.Convert(framebuffer.RGB565(w)).(color.RGBA)
	}
	return nil
}

func (p *Device) WritePixels(r hal.Resource, typ hal.ImageType, pitch int, data []byte, rect hal.Rect) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.resources[r]
	if !ok || typ != hal.Image8BPP {
		return invalid("WritePixels")
	}
	if rect.Empty() || rect.X < 0 || rect.Y < 0 ||
		rect.X+rect.Width > s.width || rect.Y+rect.Height > s.height ||
		pitch < rect.X+rect.Width ||
		len(data) < (rect.Y+rect.Height-1)*pitch+rect.X+rect.Width {
		return outOfRange("WritePixels")
	}
	for y := rect.Y; y < rect.Y+rect.Height; y++ {
		copy(s.pix[y*s.width+rect.X:], data[y*pitch+rect.X:y*pitch+rect.X+rect.Width])
	}
	return nil
}

// BeginUpdate starts a new update. Updates are applied in submission order,
// so priority is ignored.
func (p *Device) BeginUpdate(priority int) (hal.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	u := hal.Update(p.newHandle())
	p.updates[u] = &update{}
	return u, nil
}

func (p *Device) AddElement(u hal.Update, d hal.Display, layer int, dst, src hal.Rect, r hal.Resource) (hal.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	upd, ok := p.updates[u]
	if !ok || d == 0 || d != p.display {
		return 0, invalid("AddElement")
	}
	s, ok := p.resources[r]
	if !ok {
		return 0, invalid("AddElement")
	}
	if dst.Empty() || src.Empty() || src.X < 0 || src.Y < 0 ||
		src.X+src.Width > s.width || src.Y+src.Height > s.height {
		return 0, outOfRange("AddElement")
	}

	e := element{
		handle: hal.Element(p.newHandle()),
		layer:  layer,
		dst:    dst,
		src:    src,
		source: r,
	}
	upd.ops = append(upd.ops, func(scene []element) []element {
		return append(scene, e)
	})
	return e.handle, nil
}

func (p *Device) RemoveElement(u hal.Update, e hal.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	upd, ok := p.updates[u]
	if !ok {
		return invalid("RemoveElement")
	}
	upd.ops = append(upd.ops, func(scene []element) []element {
		return slices.DeleteFunc(scene, func(el element) bool { return el.handle == e })
	})
	return nil
}

func (p *Device) ChangeSource(u hal.Update, e hal.Element, r hal.Resource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	upd, ok := p.updates[u]
	if !ok {
		return invalid("ChangeSource")
	}
	if _, ok := p.resources[r]; !ok {
		return invalid("ChangeSource")
	}
	upd.ops = append(upd.ops, func(scene []element) []element {
		for i := range scene {
			if scene[i].handle == e {
				scene[i].source = r
			}
		}
		return scene
	})
	return nil
}

// SubmitUpdate stages u. It becomes visible with the next Refresh, which
// also calls done.
func (p *Device) SubmitUpdate(u hal.Update, done hal.UpdateFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	upd, ok := p.updates[u]
	if !ok {
		return invalid("SubmitUpdate")
	}
	delete(p.updates, u)

	for _, op := range upd.ops {
		p.staged = op(p.staged)
	}
	scene := slices.Clone(p.staged)
	slices.SortStableFunc(scene, func(a, b element) int { return a.layer - b.layer })
	p.seq++
	p.scene.Store(state{seq: p.seq, scene: scene})

	if done != nil {
		p.callbacks = append(p.callbacks, completion{seq: p.seq, fn: func() { done(u) }})
	}
	return nil
}

func (p *Device) SetVsyncCallback(d hal.Display, fn hal.VsyncFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d == 0 || d != p.display {
		return invalid("SetVsyncCallback")
	}
	p.vsync = fn
	return nil
}

// Refresh latches all submitted updates and composes the screen into frame,
// which is resized to width*height*4 bytes of RGBA if needed and returned.
// Afterwards the completion callbacks of the latched updates and the vsync
// callback are called. Must be called from a single goroutine only.
//
// The lock is held only while the shown surfaces are copied.
func (p *Device) Refresh(frame []byte) []byte {
	size := p.width * p.height * 4
	if len(frame) != size {
		frame = make([]byte, size)
	}

	if st, updated := p.scene.Load(); updated {
		p.latched = st
	}

	p.mu.Lock()
	layers := make([]layer, 0, len(p.latched.scene))
	for _, el := range p.latched.scene {
		if s, ok := p.resources[el.source]; ok {
			snap := *s
			snap.pix = slices.Clone(s.pix)
			layers = append(layers, layer{el: el, s: snap})
		}
	}
	n := 0
	for n < len(p.callbacks) && p.callbacks[n].seq <= p.latched.seq {
		n++
	}
	due := slices.Clone(p.callbacks[:n])
	p.callbacks = slices.Delete(p.callbacks, 0, n)
	vsync := p.vsync
	p.mu.Unlock()

	clear(frame)
	for i := 0; i < len(frame); i += 4 {
		frame[i+3] = 0xff
	}
	for i := range layers {
		p.compose(frame, &layers[i].s, layers[i].el)
	}

	for _, c := range due {
		c.fn()
	}
	if vsync != nil {
		vsync()
	}
	return frame
}

// compose scales the source rect of el to its destination rect with nearest
// neighbour sampling.
func (p *Device) compose(frame []byte, s *surface, el element) {
	src, dst := el.src, el.dst
	clip := dst.Rectangle().Intersect(hal.Rect{Width: p.width, Height: p.height}.Rectangle())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		sy := src.Y + (y-dst.Y)*src.Height/dst.Height
		row := s.pix[sy*s.width:]
		for x := clip.Min.X; x < clip.Max.X; x++ {
			sx := src.X + (x-dst.X)*src.Width/dst.Width
			c := s.lut[row[sx]]
			i := (y*p.width + x) * 4
			frame[i], frame[i+1], frame[i+2], frame[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

var _ hal.Device = (*Device)(nil)
