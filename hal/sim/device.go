package sim

import (
	"slices"

	"github.com/sigurn/crc8"

	"github.com/clktmr/vsyncfb/hal"
)

// begin records a call and returns the injected error, if any. Must be
// called with p.mu held.
func (p *Device) begin(c Call) error {
	p.calls = append(p.calls, c)
	if n, ok := p.fail[c.Op]; ok {
		if n == 0 {
			delete(p.fail, c.Op)
			return &hal.Error{Op: c.Op, Status: hal.StatusFailed}
		}
		p.fail[c.Op] = n - 1
	}
	return nil
}

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
	if err := p.begin(Call{Op: "OpenDisplay"}); err != nil {
		return 0, err
	}
	d := hal.Display(p.newHandle())
	p.displays[d] = nil
	return d, nil
}

func (p *Device) CloseDisplay(d hal.Display) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "CloseDisplay", Display: d}); err != nil {
		return err
	}
	if _, ok := p.displays[d]; !ok {
		return invalid("CloseDisplay")
	}
	delete(p.displays, d)
	return nil
}

func (p *Device) CreateResource(typ hal.ImageType, width, height int) (hal.Resource, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "CreateResource"}); err != nil {
		return 0, err
	}
	if typ != hal.Image8BPP {
		return 0, invalid("CreateResource")
	}
	if width <= 0 || height <= 0 {
		return 0, outOfRange("CreateResource")
	}
	r := hal.Resource(p.newHandle())
	p.resources[r] = &Surface{
		Type:   typ,
		Width:  width,
		Height: height,
		Pix:    make([]byte, width*height),
	}
	p.order = append(p.order, r)
	return r, nil
}

func (p *Device) DeleteResource(r hal.Resource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "DeleteResource", Resource: r}); err != nil {
		return err
	}
	if _, ok := p.resources[r]; !ok {
		return invalid("DeleteResource")
	}
	delete(p.resources, r)
	p.order = slices.DeleteFunc(p.order, func(o hal.Resource) bool { return o == r })
	return nil
}

func (p *Device) SetPalette(r hal.Resource, entries []uint16) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "SetPalette", Resource: r}); err != nil {
		return err
	}
	s, ok := p.resources[r]
	if !ok {
		return invalid("SetPalette")
	}
	if len(entries) > 256 {
		return outOfRange("SetPalette")
	}
	if len(s.Palette) < len(entries) {
		s.Palette = append(s.Palette, make([]uint16, len(entries)-len(s.Palette))...)
	}
	copy(s.Palette, entries)
	return nil
}

func (p *Device) WritePixels(r hal.Resource, typ hal.ImageType, pitch int, data []byte, rect hal.Rect) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "WritePixels", Resource: r}); err != nil {
		return err
	}
	s, ok := p.resources[r]
	if !ok || typ != s.Type {
		return invalid("WritePixels")
	}
	if rect.Empty() || rect.X < 0 || rect.Y < 0 ||
		rect.X+rect.Width > s.Width || rect.Y+rect.Height > s.Height ||
		pitch < rect.X+rect.Width ||
		len(data) < (rect.Y+rect.Height-1)*pitch+rect.X+rect.Width {
		return outOfRange("WritePixels")
	}

	csum := crc8.Init(crcTable)
	for y := rect.Y; y < rect.Y+rect.Height; y++ {
		src := data[y*pitch+rect.X : y*pitch+rect.X+rect.Width]
		copy(s.Pix[y*s.Width+rect.X:], src)
		csum = crc8.Update(csum, src, crcTable)
	}
	csum = crc8.Complete(csum, crcTable)

	p.uploads = append(p.uploads, Upload{Resource: r, Pitch: pitch, Rect: rect, CRC: csum})
	return nil
}

func (p *Device) BeginUpdate(priority int) (hal.Update, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "BeginUpdate"}); err != nil {
		return 0, err
	}
	u := hal.Update(p.newHandle())
	p.updates[u] = &update{priority: priority}
	return u, nil
}

func (p *Device) AddElement(u hal.Update, d hal.Display, layer int, dst, src hal.Rect, r hal.Resource) (hal.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "AddElement", Display: d, Resource: r, Update: u}); err != nil {
		return 0, err
	}
	upd, ok := p.updates[u]
	if !ok {
		return 0, invalid("AddElement")
	}
	if _, ok := p.displays[d]; !ok {
		return 0, invalid("AddElement")
	}
	if _, ok := p.resources[r]; !ok {
		return 0, invalid("AddElement")
	}
	if dst.Empty() || src.Empty() {
		return 0, outOfRange("AddElement")
	}

	e := hal.Element(p.newHandle())
	upd.apply = append(upd.apply, func() {
		p.elements[e] = &element{display: d, layer: layer, dst: dst, src: src, source: r}
	})
	return e, nil
}

func (p *Device) RemoveElement(u hal.Update, e hal.Element) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "RemoveElement", Element: e, Update: u}); err != nil {
		return err
	}
	upd, ok := p.updates[u]
	if !ok {
		return invalid("RemoveElement")
	}
	if _, ok := p.elements[e]; !ok {
		return invalid("RemoveElement")
	}
	upd.apply = append(upd.apply, func() {
		delete(p.elements, e)
	})
	return nil
}

func (p *Device) ChangeSource(u hal.Update, e hal.Element, r hal.Resource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "ChangeSource", Element: e, Resource: r, Update: u}); err != nil {
		return err
	}
	upd, ok := p.updates[u]
	if !ok {
		return invalid("ChangeSource")
	}
	if _, ok := p.elements[e]; !ok {
		return invalid("ChangeSource")
	}
	if _, ok := p.resources[r]; !ok {
		return invalid("ChangeSource")
	}
	upd.apply = append(upd.apply, func() {
		if el, ok := p.elements[e]; ok {
			el.source = r
		}
	})
	return nil
}

// SubmitUpdate applies u right away. The callback is called from a new
// goroutine, see Flush.
func (p *Device) SubmitUpdate(u hal.Update, done hal.UpdateFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "SubmitUpdate", Update: u}); err != nil {
		return err
	}
	upd, ok := p.updates[u]
	if !ok {
		return invalid("SubmitUpdate")
	}
	delete(p.updates, u)
	for _, apply := range upd.apply {
		apply()
	}

	if done != nil {
		p.pending.Add(1)
		go func() {
			defer p.pending.Done()
			done(u)
		}()
	}
	return nil
}

func (p *Device) SetVsyncCallback(d hal.Display, fn hal.VsyncFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.begin(Call{Op: "SetVsyncCallback", Display: d}); err != nil {
		return err
	}
	if _, ok := p.displays[d]; !ok {
		return invalid("SetVsyncCallback")
	}
	p.displays[d] = fn
	return nil
}

var _ hal.Device = (*Device)(nil)
