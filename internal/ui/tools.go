package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/raster"
	"ColoringBoard/internal/shape"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	Color    color.Color
	OnTapped func(hex string)

	border *canvas.Rectangle
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	c := raster.MustParseHex(hex)
	s := &colorSwatch{Hex: hex, Color: c.NRGBA(255), OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(s.Color)
	rect.SetMinSize(fyne.NewSize(24, 24))

	s.border = canvas.NewRectangle(color.Transparent)
	s.border.StrokeColor = color.Gray{Y: 150}
	s.border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, s.border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// setSelected thickens the border of the active swatch.
func (s *colorSwatch) setSelected(on bool) {
	if s.border == nil {
		return
	}
	if on {
		s.border.StrokeColor = color.Black
		s.border.StrokeWidth = 3
	} else {
		s.border.StrokeColor = color.Gray{Y: 150}
		s.border.StrokeWidth = 1
	}
	s.border.Refresh()
}

// Toolbar holds the drawing controls for one board.
type Toolbar struct {
	board *BoardWidget

	tools    *widget.Select
	swatches []*colorSwatch
	size     *widget.Slider
	undo     *widget.Button
	redo     *widget.Button
	shapes   *fyne.Container
	palette  *fyne.Container
	mode     string

	// OnError reports a rejected command.
	OnError func(error)
}

// NewToolbar returns the controls for board.
func NewToolbar(board *BoardWidget) *Toolbar {
	t := &Toolbar{board: board}
	s := board.Session()

	names := make([]string, 0, 6)
	for _, tool := range []editor.Tool{editor.FillTool, editor.PenTool, editor.BrushTool,
		editor.PaintbrushTool, editor.SprayTool, editor.EraserTool} {
		names = append(names, tool.String())
	}
	t.tools = widget.NewSelect(names, func(name string) {
		tool, err := editor.ParseTool(name)
		if err != nil {
			t.fail(err)
			return
		}
		if s.Tool() != tool {
			s.SetTool(tool)
		}
	})

	t.size = widget.NewSlider(1, 50)
	t.size.OnChanged = func(v float64) { s.SetBrushSize(v) }

	t.undo = widget.NewButtonWithIcon("", theme.ContentUndoIcon(), func() { s.Undo() })
	t.redo = widget.NewButtonWithIcon("", theme.ContentRedoIcon(), func() { s.Redo() })

	t.shapes = container.NewHBox(
		widget.NewButtonWithIcon("Blob", theme.ViewRefreshIcon(), func() { t.newShape(shape.Organic) }),
		widget.NewButtonWithIcon("Geo", theme.ViewRefreshIcon(), func() { t.newShape(shape.Geometric) }),
		widget.NewButton("Rotate", s.RotateShape),
		widget.NewButton("Flip", s.FlipShape),
	)
	t.shapes.Hide()
	t.palette = container.NewHBox()
	return t
}

func (t *Toolbar) newShape(kind shape.Kind) {
	if err := t.board.Session().NewShape(kind); err != nil {
		t.fail(err)
	}
}

func (t *Toolbar) pick(hex string) {
	if err := t.board.Session().SetColor(hex); err != nil {
		t.fail(err)
	}
}

func (t *Toolbar) fail(err error) {
	if t.OnError != nil {
		t.OnError(err)
	}
}

// setPalette replaces the swatches, used when switching between page and
// doodle mode.
func (t *Toolbar) setPalette(hexes []string) {
	t.swatches = t.swatches[:0]
	objs := make([]fyne.CanvasObject, 0, len(hexes))
	for _, h := range hexes {
		sw := newColorSwatch(h, t.pick)
		t.swatches = append(t.swatches, sw)
		objs = append(objs, sw)
	}
	t.palette.Objects = objs
	t.palette.Refresh()
}

// Update mirrors the session state in the controls.
func (t *Toolbar) Update(st editor.State) {
	if st.Mode != t.mode {
		t.mode = st.Mode
		if st.Mode == editor.DoodleMode.String() {
			t.setPalette(raster.DoodlePalette)
			t.shapes.Show()
		} else {
			t.setPalette(raster.Palette)
			t.shapes.Hide()
		}
	}
	if t.tools.Selected != st.Tool {
		t.tools.SetSelected(st.Tool)
	}
	if t.size.Value != st.BrushSize {
		t.size.SetValue(st.BrushSize)
	}
	for _, sw := range t.swatches {
		c, err := raster.ParseHex(sw.Hex)
		sw.setSelected(err == nil && c.Hex() == st.Color)
	}
	setEnabled(t.undo, st.CanUndo)
	setEnabled(t.redo, st.CanRedo)
}

func setEnabled(w fyne.Disableable, on bool) {
	if on {
		w.Enable()
	} else {
		w.Disable()
	}
}

// Object assembles the toolbar row; extra is appended after the spacer.
func (t *Toolbar) Object(extra ...fyne.CanvasObject) fyne.CanvasObject {
	sizeBox := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), t.size)
	row := []fyne.CanvasObject{
		widget.NewLabel("Tool:"),
		t.tools,
		t.undo,
		t.redo,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sizeBox,
		t.shapes,
		layout.NewSpacer(),
	}
	row = append(row, extra...)
	return container.NewVBox(
		container.NewHBox(row...),
		container.NewHScroll(t.palette),
	)
}
