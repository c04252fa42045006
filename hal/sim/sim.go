// Package sim implements hal.Device in memory.
//
// Nothing is ever shown. Vertical syncs are only generated by calling Vsync,
// which makes the device suitable for driving a render loop step by step in
// tests. Every call is recorded and any operation can be made to fail.
package sim

import (
	"slices"
	"sync"

	"github.com/sigurn/crc8"

	"github.com/clktmr/vsyncfb/hal"
)

var crcTable = crc8.MakeTable(crc8.Params{0x07, 0x00, false, false, 0x00, 0xF4, "CRC-8/SMBUS"})

// Call is a recorded device call.
type Call struct {
	Op       string
	Display  hal.Display
	Resource hal.Resource
	Element  hal.Element
	Update   hal.Update
}

// Surface is a snapshot of a resource.
type Surface struct {
	Type          hal.ImageType
	Width, Height int
	Pix           []byte // Width bytes per row
	Palette       []uint16
}

// Upload records a successful WritePixels.
type Upload struct {
	Resource hal.Resource
	Pitch    int
	Rect     hal.Rect
	CRC      uint8 // over the written rect, row by row
}

type element struct {
	display hal.Display
	layer   int
	dst     hal.Rect
	src     hal.Rect
	source  hal.Resource
}

type update struct {
	priority int
	apply    []func()
}

// Device is an in-memory compositor. The zero value is not usable, use New.
type Device struct {
	mu sync.Mutex

	handle    uint32
	displays  map[hal.Display]hal.VsyncFunc
	resources map[hal.Resource]*Surface
	elements  map[hal.Element]*element
	updates   map[hal.Update]*update
	order     []hal.Resource

	calls   []Call
	uploads []Upload
	fail    map[string]int

	pending sync.WaitGroup
}

func New() *Device {
	return &Device{
		displays:  make(map[hal.Display]hal.VsyncFunc),
		resources: make(map[hal.Resource]*Surface),
		elements:  make(map[hal.Element]*element),
		updates:   make(map[hal.Update]*update),
		fail:      make(map[string]int),
	}
}

// FailAfter makes the call to op after n more successful ones fail with
// status hal.StatusFailed. n == 0 fails the next call.
func (p *Device) FailAfter(op string, n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fail[op] = n
}

// Vsync calls every registered vsync callback from the calling goroutine.
func (p *Device) Vsync() {
	p.mu.Lock()
	var fns []hal.VsyncFunc
	for _, fn := range p.displays {
		if fn != nil {
			fns = append(fns, fn)
		}
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Flush waits for all completion callbacks of submitted updates.
func (p *Device) Flush() {
	p.pending.Wait()
}

// Calls returns all recorded calls in order.
func (p *Device) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.calls)
}

// Count returns the number of recorded calls to op.
func (p *Device) Count(op string) (n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.calls {
		if c.Op == op {
			n++
		}
	}
	return
}

// Uploads returns all successful WritePixels calls in order.
func (p *Device) Uploads() []Upload {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.uploads)
}

// Resources returns all live resources in creation order.
func (p *Device) Resources() []hal.Resource {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.order)
}

// Surface returns a snapshot of r, or nil if r doesn't exist.
func (p *Device) Surface(r hal.Resource) *Surface {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.resources[r]
	if !ok {
		return nil
	}
	c := *s
	c.Pix = slices.Clone(s.Pix)
	c.Palette = slices.Clone(s.Palette)
	return &c
}

// Shown returns the resource shown by the element on layer, or zero if
// there's no such element.
func (p *Device) Shown(layer int) hal.Resource {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, e := range p.elements {
		if e.layer == layer {
			return e.source
		}
	}
	return 0
}

// VsyncRegistered reports whether a callback is registered for d.
func (p *Device) VsyncRegistered(d hal.Display) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.displays[d] != nil
}

// Allocated returns the number of live objects.
func (p *Device) Allocated() (displays, resources, elements int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.displays), len(p.resources), len(p.elements)
}

// Display returns the open display with the lowest handle, or zero.
func (p *Device) Display() hal.Display {
	p.mu.Lock()
	defer p.mu.Unlock()
	var first hal.Display
	for d := range p.displays {
		if first == 0 || d < first {
			first = d
		}
	}
	return first
}
