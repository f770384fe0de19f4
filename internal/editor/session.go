// Package editor holds the per-user editing session: the drawing buffer, its
// undo history, the viewport and the active tool. Front ends translate their
// input events into Session calls and redraw from Composite.
//
// A Session is single-threaded; callers serialize access.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"ColoringBoard/internal/fill"
	"ColoringBoard/internal/history"
	"ColoringBoard/internal/logging"
	"ColoringBoard/internal/raster"
	"ColoringBoard/internal/shape"
	"ColoringBoard/internal/state"
	"ColoringBoard/internal/stroke"
	"ColoringBoard/internal/viewport"
)

// ErrNotReady is returned by drawing commands while no page is loaded, a
// page is still loading, or the last load failed.
var ErrNotReady = errors.New("editor not ready")

// Mode is what the session is editing.
type Mode int

const (
	// PageMode colors a catalog page.
	PageMode Mode = iota
	// DoodleMode draws on a blank layer over a generated shape.
	DoodleMode
)

func (m Mode) String() string {
	if m == DoodleMode {
		return "doodle"
	}
	return "page"
}

// Tool is the active tool: the fill bucket or one of the stroke tools.
type Tool int

const (
	FillTool Tool = iota
	PenTool
	BrushTool
	PaintbrushTool
	SprayTool
	EraserTool
)

var toolNames = [...]string{"fill", "pen", "brush", "paintbrush", "spray", "eraser"}

func (t Tool) String() string {
	if t < 0 || int(t) >= len(toolNames) {
		return fmt.Sprintf("tool(%d)", int(t))
	}
	return toolNames[t]
}

// ParseTool returns the tool with the given name.
func ParseTool(name string) (Tool, error) {
	for i, n := range toolNames {
		if strings.EqualFold(n, name) {
			return Tool(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool %q", name)
}

func (t Tool) stroke() stroke.Tool {
	switch t {
	case BrushTool:
		return stroke.Brush
	case PaintbrushTool:
		return stroke.Paintbrush
	case SprayTool:
		return stroke.Spray
	case EraserTool:
		return stroke.Eraser
	}
	return stroke.Pen
}

// Options configures a Session.
type Options struct {
	// PageWidth and PageHeight size the buffer of catalog pages.
	PageWidth, PageHeight int
	// DoodleWidth and DoodleHeight size the blank canvas.
	DoodleWidth, DoodleHeight int
	// FitRatio is the share of the buffer a page image may cover.
	FitRatio float64

	Fill            fill.Options
	HistoryCapacity int

	MinScale, MaxScale float64
	TapThreshold       float64

	BrushSize  float64
	BrushColor raster.Color

	// Seed drives the spray pattern and shape generation. Zero picks a
	// random seed.
	Seed int64
}

// DefaultOptions returns the stock session configuration.
func DefaultOptions() Options {
	return Options{
		PageWidth:       1024,
		PageHeight:      1024,
		DoodleWidth:     850,
		DoodleHeight:    600,
		FitRatio:        0.85,
		Fill:            fill.DefaultOptions(),
		HistoryCapacity: history.DefaultCapacity,
		MinScale:        viewport.DefaultMinScale,
		MaxScale:        viewport.DefaultMaxScale,
		TapThreshold:    viewport.DefaultTapThreshold,
		BrushSize:       8,
		BrushColor:      raster.MustParseHex(raster.Palette[0]),
	}
}

// Session is one editing session.
type Session struct {
	ID string

	opts Options
	log  *slog.Logger

	page    state.Page
	mode    Mode
	ready   bool
	loading bool
	loadErr error

	buf   *raster.Buffer
	base  []byte
	shape shape.Shape
	rng   *rand.Rand

	hist    *history.Stack
	view    *viewport.Transform
	tracker *viewport.Tracker
	pen     *stroke.Renderer
	engine  *fill.Engine
	active  *stroke.Stroke

	tool  Tool
	color raster.Color
	size  float64

	// rev counts visible content changes: pixels or the doodle shape.
	rev uint64

	sound    Sound
	onChange func(State)
}

// New returns an empty, not yet ready session. A nil sound disables
// feedback sounds.
func New(opts Options, sound Sound) *Session {
	if opts.Seed == 0 {
		opts.Seed = rand.Int63()
	}
	if sound == nil {
		sound = NopSound{}
	}
	id := uuid.NewString()
	s := &Session{
		ID:     id,
		opts:   opts,
		log:    logging.For("editor").With("session", id[:8]),
		rng:    rand.New(rand.NewSource(opts.Seed)),
		hist:   history.New(opts.HistoryCapacity),
		pen:    stroke.NewRenderer(opts.Seed),
		engine: fill.New(opts.Fill),
		color:  opts.BrushColor,
		size:   opts.BrushSize,
		sound:  sound,
	}
	s.setBuffer(raster.NewBuffer(max(1, opts.PageWidth), max(1, opts.PageHeight)))
	return s
}

// setBuffer installs buf and a fresh viewport and gesture tracker sized to
// it, keeping the element size known from the front end.
func (s *Session) setBuffer(buf *raster.Buffer) {
	elemW, elemH := float64(buf.Width()), float64(buf.Height())
	if s.view != nil {
		elemW, elemH = s.view.ElementSize()
	}
	s.buf = buf
	s.view = viewport.New(buf.Width(), buf.Height())
	s.view.SetLimits(s.opts.MinScale, s.opts.MaxScale)
	s.view.SetElementSize(elemW, elemH)
	s.tracker = viewport.NewTracker(s.view, gestures{s})
	if s.opts.TapThreshold > 0 {
		s.tracker.TapThreshold = s.opts.TapThreshold
	}
	s.syncGestureMode()
}

func (s *Session) syncGestureMode() {
	if s.tool == FillTool {
		s.tracker.Mode = viewport.PanMode
	} else {
		s.tracker.Mode = viewport.DrawMode
	}
}

// OnChange registers fn to be called with the new state after every change.
func (s *Session) OnChange(fn func(State)) { s.onChange = fn }

// touched records a content change and notifies.
func (s *Session) touched() {
	s.rev++
	s.changed()
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange(s.State())
	}
}

// Buffer returns the live drawing buffer.
func (s *Session) Buffer() *raster.Buffer { return s.buf }

// Viewport returns the session's view transform.
func (s *Session) Viewport() *viewport.Transform { return s.view }

// Shape returns the doodle background shape.
func (s *Session) Shape() shape.Shape { return s.shape }

// Page returns the loaded page.
func (s *Session) Page() state.Page { return s.page }

// Ready reports whether drawing input is accepted.
func (s *Session) Ready() bool { return s.ready }

// State is a snapshot of the session for front ends.
type State struct {
	ID         string  `json:"id"`
	PageID     string  `json:"page"`
	Title      string  `json:"title"`
	Mode       string  `json:"mode"`
	Ready      bool    `json:"ready"`
	Loading    bool    `json:"loading"`
	Error      string  `json:"error,omitempty"`
	Tool       string  `json:"tool"`
	Color      string  `json:"color"`
	BrushSize  float64 `json:"size"`
	CanUndo    bool    `json:"canUndo"`
	CanRedo    bool    `json:"canRedo"`
	History    int     `json:"history"`
	Zoom       float64 `json:"zoom"`
	PanX       float64 `json:"panX"`
	PanY       float64 `json:"panY"`
	Gesture    string  `json:"gesture"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	ShapeColor string  `json:"shapeColor,omitempty"`
	Revision   uint64  `json:"revision"`
}

// State returns the current session state.
func (s *Session) State() State {
	st := State{
		ID:        s.ID,
		PageID:    s.page.ID,
		Title:     s.page.Title,
		Mode:      s.mode.String(),
		Ready:     s.ready,
		Loading:   s.loading,
		Tool:      s.tool.String(),
		Color:     s.color.Hex(),
		BrushSize: s.size,
		CanUndo:   s.hist.CanUndo(),
		CanRedo:   s.hist.CanRedo(),
		History:   s.hist.Len(),
		Zoom:      s.view.K,
		PanX:      s.view.X,
		PanY:      s.view.Y,
		Gesture:   s.tracker.State().String(),
		Width:     s.buf.Width(),
		Height:    s.buf.Height(),
		Revision:  s.rev,
	}
	if s.loadErr != nil {
		st.Error = s.loadErr.Error()
	}
	if s.mode == DoodleMode && !s.shape.Empty() {
		st.ShapeColor = s.shape.Color.Hex()
	}
	return st
}
