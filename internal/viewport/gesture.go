package viewport

// DefaultTapThreshold is the net movement, in screen pixels, under which a
// press-and-release counts as a tap.
const DefaultTapThreshold = 6.0

// State is the gesture state of a Tracker.
type State int

const (
	// Idle: no pointer is down.
	Idle State = iota
	// Pressed: one pointer is down in pan mode and has not moved past the
	// tap threshold yet.
	Pressed
	// Dragging: one pointer is panning the view.
	Dragging
	// Drawing: one pointer is drawing a stroke.
	Drawing
	// Pinching: two pointers are zooming. The state lasts until every
	// pointer is up.
	Pinching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Dragging:
		return "dragging"
	case Drawing:
		return "drawing"
	case Pinching:
		return "pinching"
	}
	return "unknown"
}

// Mode selects what a single-pointer drag does.
type Mode int

const (
	// PanMode: drags pan the view and taps are forwarded to the tool.
	PanMode Mode = iota
	// DrawMode: a press starts a stroke immediately.
	DrawMode
)

// Handler receives the interpreted gestures. All points are in screen space.
type Handler interface {
	Tap(p Point)
	StrokeBegin(p Point)
	StrokeMove(p Point)
	StrokeEnd()
	ViewChanged()
}

type pinch struct {
	active     bool
	a, b       int
	d0         float64
	mid0       Point
	k0, x0, y0 float64
}

// Tracker turns pointer down/move/up/cancel events from mouse or touch into
// gestures on a Transform. Pointer ids distinguish touches; a mouse uses a
// single id.
type Tracker struct {
	Mode         Mode
	TapThreshold float64

	view *Transform
	h    Handler

	state    State
	pointers map[int]Point
	primary  int
	start    Point
	last     Point
	startX   float64
	startY   float64
	pinch    pinch
}

// NewTracker returns an idle tracker in pan mode.
func NewTracker(view *Transform, h Handler) *Tracker {
	return &Tracker{
		TapThreshold: DefaultTapThreshold,
		view:         view,
		h:            h,
		pointers:     make(map[int]Point),
	}
}

// State returns the current gesture state.
func (g *Tracker) State() State { return g.state }

// Down handles a pointer press.
func (g *Tracker) Down(id int, p Point) {
	if _, dup := g.pointers[id]; dup {
		return
	}
	g.pointers[id] = p

	switch g.state {
	case Idle:
		g.primary = id
		g.start, g.last = p, p
		g.startX, g.startY = g.view.X, g.view.Y
		if g.Mode == DrawMode {
			g.state = Drawing
			g.h.StrokeBegin(p)
			return
		}
		g.state = Pressed
	case Pressed, Dragging, Drawing:
		if g.state == Drawing {
			g.h.StrokeEnd()
		}
		g.beginPinch(g.primary, id)
	case Pinching:
		// Extra fingers do not take part in the pinch.
	}
}

func (g *Tracker) beginPinch(a, b int) {
	pa, pb := g.pointers[a], g.pointers[b]
	d := Dist(pa, pb)
	if d < 1 {
		d = 1
	}
	g.pinch = pinch{
		active: true,
		a:      a,
		b:      b,
		d0:     d,
		mid0:   Mid(pa, pb),
		k0:     g.view.K,
		x0:     g.view.X,
		y0:     g.view.Y,
	}
	g.state = Pinching
}

// Move handles pointer motion. Unknown pointer ids are ignored.
func (g *Tracker) Move(id int, p Point) {
	if _, ok := g.pointers[id]; !ok {
		return
	}
	g.pointers[id] = p

	switch g.state {
	case Pressed:
		if id != g.primary || Dist(p, g.start) <= g.TapThreshold {
			return
		}
		g.state = Dragging
		g.pan(p)
	case Dragging:
		if id == g.primary {
			g.pan(p)
		}
	case Drawing:
		if id == g.primary {
			g.h.StrokeMove(p)
		}
	case Pinching:
		if g.pinch.active && (id == g.pinch.a || id == g.pinch.b) {
			g.applyPinch()
		}
	}
}

func (g *Tracker) pan(p Point) {
	g.view.Pan(p.X-g.last.X, p.Y-g.last.Y)
	g.last = p
	g.h.ViewChanged()
}

func (g *Tracker) applyPinch() {
	pa, pb := g.pointers[g.pinch.a], g.pointers[g.pinch.b]
	d := Dist(pa, pb)
	g.view.K, g.view.X, g.view.Y = g.pinch.k0, g.pinch.x0, g.pinch.y0
	g.view.ScaleAbout(g.pinch.k0*d/g.pinch.d0, g.pinch.mid0, Mid(pa, pb))
	g.h.ViewChanged()
}

// Up handles a pointer release.
func (g *Tracker) Up(id int, p Point) {
	if _, ok := g.pointers[id]; !ok {
		return
	}
	delete(g.pointers, id)

	switch g.state {
	case Pressed:
		if id == g.primary {
			g.state = Idle
			g.h.Tap(g.start)
		}
	case Dragging:
		if id != g.primary {
			return
		}
		g.state = Idle
		if Dist(p, g.start) <= g.TapThreshold {
			g.view.X, g.view.Y = g.startX, g.startY
			g.h.ViewChanged()
			g.h.Tap(g.start)
		}
	case Drawing:
		if id == g.primary {
			g.state = Idle
			g.h.StrokeEnd()
		}
	case Pinching:
		if id == g.pinch.a || id == g.pinch.b {
			g.pinch.active = false
		}
		if len(g.pointers) == 0 {
			g.state = Idle
		}
	}
}

// Cancel aborts the gesture, for example when the pointer leaves the
// element. A stroke in progress is finished, not discarded.
func (g *Tracker) Cancel() {
	if g.state == Drawing {
		g.h.StrokeEnd()
	}
	clear(g.pointers)
	g.pinch = pinch{}
	g.state = Idle
}
