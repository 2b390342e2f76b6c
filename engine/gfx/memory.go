package gfx

// CycleWindow is one registered color-cycle range on a plane palette.
type CycleWindow struct {
	Plane      Plane
	Start, End int
	DelayTicks int
}

// MemoryRenderer renders into plain memory: the reference Renderer for the
// headless drivers and for tests. The debug UI reads its surfaces and
// palettes back out to display engine state.
type MemoryRenderer struct {
	fore, back *Surface
	palettes   [2][256 * 3]byte
	cycles     map[int]CycleWindow
	fade       float64
	dirty      bool
	cycleDrops int
}

// NewMemoryRenderer allocates both planes at the given size.
func NewMemoryRenderer(w, h int) *MemoryRenderer {
	return &MemoryRenderer{
		fore:   NewSurface(w, h),
		back:   NewSurface(w, h),
		cycles: make(map[int]CycleWindow),
		fade:   1,
	}
}

func (m *MemoryRenderer) ClearPlane(p Plane) {
	m.PlaneSurface(p).Clear(0)
	m.dirty = true
}

func (m *MemoryRenderer) PlaneSurface(p Plane) *Surface {
	if p == PlaneFore {
		return m.fore
	}
	return m.back
}

func (m *MemoryRenderer) MarkDirty() { m.dirty = true }

func (m *MemoryRenderer) SetPlanePalette(p Plane, first int, rgb []byte) {
	pal := &m.palettes[p]
	copy(pal[first*3:], rgb)
	m.dirty = true
}

func (m *MemoryRenderer) ResetColorCycles() {
	if len(m.cycles) > 0 {
		m.cycles = make(map[int]CycleWindow)
	}
	m.cycleDrops++
}

func (m *MemoryRenderer) SetColorCycle(slot int, p Plane, start, end, delayTicks int) {
	m.cycles[slot] = CycleWindow{Plane: p, Start: start, End: end, DelayTicks: delayTicks}
}

func (m *MemoryRenderer) SetFade(level float64) {
	m.fade = level
	m.dirty = true
}

// Fade reports the current fade level.
func (m *MemoryRenderer) Fade() float64 { return m.fade }

// Dirty reports and Clear-on-read is left to the presenter via ClearDirty.
func (m *MemoryRenderer) Dirty() bool { return m.dirty }

// ClearDirty acknowledges a presented frame.
func (m *MemoryRenderer) ClearDirty() { m.dirty = false }

// Palette returns count RGB triples of a plane palette starting at first.
func (m *MemoryRenderer) Palette(p Plane, first, count int) []byte {
	pal := &m.palettes[p]
	return pal[first*3 : (first+count)*3]
}

// Cycles returns the registered cycle windows keyed by slot.
func (m *MemoryRenderer) Cycles() map[int]CycleWindow { return m.cycles }

// CycleResets counts ResetColorCycles calls; transition code is expected to
// reset cycling between segments.
func (m *MemoryRenderer) CycleResets() int { return m.cycleDrops }

// NullRenderer discards everything. Used when driving the engine purely for
// its state transitions, where even memory surfaces are waste.
type NullRenderer struct {
	scratch *Surface
}

// NewNullRenderer returns a renderer whose single scratch surface absorbs
// all drawing.
func NewNullRenderer() *NullRenderer {
	return &NullRenderer{scratch: NewSurface(1, 1)}
}

func (n *NullRenderer) ClearPlane(Plane)                        {}
func (n *NullRenderer) PlaneSurface(Plane) *Surface             { return n.scratch }
func (n *NullRenderer) MarkDirty()                              {}
func (n *NullRenderer) SetPlanePalette(Plane, int, []byte)      {}
func (n *NullRenderer) ResetColorCycles()                       {}
func (n *NullRenderer) SetColorCycle(int, Plane, int, int, int) {}
func (n *NullRenderer) SetFade(float64)                         {}
