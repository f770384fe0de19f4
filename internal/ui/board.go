package ui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"ColoringBoard/internal/editor"
)

// mousePointer is the pointer id used for the desktop mouse.
const mousePointer = 1

// scrollNotch is the scroll distance fyne reports for one wheel notch.
const scrollNotch = 10

var backdrop = color.NRGBA{R: 245, G: 246, B: 248, A: 255}

// BoardWidget displays an editor session and forwards mouse input to it.
// The canvas element is the largest rectangle with the buffer's aspect
// ratio centered in the widget; pointer positions are reported relative to
// its top-left corner.
type BoardWidget struct {
	widget.BaseWidget

	session *editor.Session
	// OnState is called after every session change.
	OnState func(editor.State)

	raster *canvas.Raster

	mu     sync.Mutex
	frame  *image.NRGBA
	rev    uint64
	size   fyne.Size
	ox, oy float64
	ew, eh float64
	k      float64
	px, py float64

	down bool
	last fyne.Position
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ fyne.Scrollable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)

// NewBoardWidget returns a widget showing s. It takes over s's change
// callback.
func NewBoardWidget(s *editor.Session) *BoardWidget {
	b := &BoardWidget{session: s, k: 1}
	b.raster = canvas.NewRaster(b.draw)
	b.raster.ScaleMode = canvas.ImageScalePixels
	b.ExtendBaseWidget(b)
	s.OnChange(b.stateChanged)
	return b
}

// Session returns the displayed session.
func (b *BoardWidget) Session() *editor.Session { return b.session }

func (b *BoardWidget) stateChanged(st editor.State) {
	b.mu.Lock()
	stale := b.frame == nil || b.rev != st.Revision
	b.mu.Unlock()

	var frame *image.NRGBA
	if stale {
		frame = b.session.Composite()
	}
	ew, eh := b.session.Viewport().ElementSize()

	b.mu.Lock()
	if frame != nil {
		b.frame, b.rev = frame, st.Revision
	}
	b.k, b.px, b.py = st.Zoom, st.PanX, st.PanY
	b.ew, b.eh = ew, eh
	size := b.size
	b.mu.Unlock()

	if stale && b.fit(size) {
		// Resize notified again with the new element size.
		return
	}
	b.raster.Refresh()
	if b.OnState != nil {
		b.OnState(st)
	}
}

// fit centers the canvas element in size and reports whether the session
// had to be told about a new element size.
func (b *BoardWidget) fit(size fyne.Size) bool {
	if size.Width <= 0 || size.Height <= 0 {
		return false
	}
	buf := b.session.Buffer()
	bw, bh := float64(buf.Width()), float64(buf.Height())
	scale := min(float64(size.Width)/bw, float64(size.Height)/bh)
	ew, eh := bw*scale, bh*scale

	b.mu.Lock()
	b.size = size
	b.ox, b.oy = (float64(size.Width)-ew)/2, (float64(size.Height)-eh)/2
	b.mu.Unlock()

	if w, h := b.session.Viewport().ElementSize(); w != ew || h != eh {
		b.session.Resize(ew, eh)
		return true
	}
	return false
}

// draw renders the latest frame through the view transform at the raster's
// pixel size.
func (b *BoardWidget) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(backdrop), image.Point{}, xdraw.Src)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.frame == nil || b.size.Width <= 0 {
		return dst
	}
	fb := b.frame.Bounds()
	f := float64(w) / float64(b.size.Width)
	m := f64.Aff3{
		f * b.k * b.ew / float64(fb.Dx()), 0, f * (b.ox + b.px),
		0, f * b.k * b.eh / float64(fb.Dy()), f * (b.oy + b.py),
	}
	xdraw.ApproxBiLinear.Transform(dst, m, b.frame, fb, xdraw.Over, nil)
	return dst
}

func (b *BoardWidget) local(p fyne.Position) (x, y float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(p.X) - b.ox, float64(p.Y) - b.oy
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.down, b.last = true, e.Position
	x, y := b.local(e.Position)
	b.session.PointerDown(mousePointer, x, y)
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.release(e.Position)
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if !b.down {
		return
	}
	b.last = e.Position
	x, y := b.local(e.Position)
	b.session.PointerMove(mousePointer, x, y)
}

// DragEnd releases the pointer when the button comes up outside the widget.
func (b *BoardWidget) DragEnd() { b.release(b.last) }

func (b *BoardWidget) release(p fyne.Position) {
	if !b.down {
		return
	}
	b.down = false
	x, y := b.local(p)
	b.session.PointerUp(mousePointer, x, y)
}

func (b *BoardWidget) Scrolled(e *fyne.ScrollEvent) {
	x, y := b.local(e.Position)
	b.session.Wheel(float64(e.Scrolled.DY)/scrollNotch, x, y)
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b}
	r.background = canvas.NewRectangle(backdrop)
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.background, r.board.raster}
}

func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	r.background.Resize(size)
	r.board.raster.Resize(size)
	r.board.fit(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size { return fyne.NewSize(300, 300) }

func (r *boardWidgetRenderer) Refresh() { r.board.raster.Refresh() }

func (r *boardWidgetRenderer) Destroy() {}
