package ui

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/shape"
	"ColoringBoard/internal/state"
)

func testSession() *editor.Session {
	opts := editor.DefaultOptions()
	opts.PageWidth, opts.PageHeight = 100, 100
	opts.FitRatio = 1
	opts.Seed = 1
	return editor.New(opts, nil)
}

// boxArt is a white square with a black outline from 20 to 80.
func boxArt() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 100, 100))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	black := color.NRGBA{A: 255}
	for i := 20; i <= 80; i++ {
		for w := 0; w < 3; w++ {
			img.Set(i, 20+w, black)
			img.Set(i, 78+w, black)
			img.Set(20+w, i, black)
			img.Set(78+w, i, black)
		}
	}
	return img
}

func click(b *BoardWidget, x, y float32) {
	ev := &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
	b.MouseDown(ev)
	b.MouseUp(ev)
}

func loadedBoard(t *testing.T, size fyne.Size) *BoardWidget {
	t.Helper()
	test.NewApp()
	s := testSession()
	b := NewBoardWidget(s)
	b.Resize(size)
	require.NoError(t, s.LoadPage(state.Page{ID: "box", Title: "Box"}, boxArt()))
	require.NoError(t, s.SetColor("#FF0000"))
	return b
}

func TestBoardTapFillsUnderPointer(t *testing.T) {
	b := loadedBoard(t, fyne.NewSize(200, 200))

	w, h := b.Session().Viewport().ElementSize()
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 200.0, h)

	click(b, 100, 100)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, b.Session().Buffer().At(50, 50))
	assert.True(t, b.Session().State().CanUndo)

	out := b.draw(200, 200).(*image.RGBA)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, out.RGBAAt(100, 100))
}

func TestBoardLetterboxesElement(t *testing.T) {
	b := loadedBoard(t, fyne.NewSize(300, 200))

	w, h := b.Session().Viewport().ElementSize()
	assert.Equal(t, 200.0, w)
	assert.Equal(t, 200.0, h)

	// Left of the element: outside the buffer, no fill.
	click(b, 20, 100)
	assert.False(t, b.Session().State().CanUndo)

	click(b, 150, 100)
	assert.Equal(t, color.NRGBA{R: 255, A: 255}, b.Session().Buffer().At(50, 50))

	out := b.draw(300, 200).(*image.RGBA)
	assert.Equal(t, color.RGBA{R: 245, G: 246, B: 248, A: 255}, out.RGBAAt(10, 100))
}

func TestBoardDragPansWithFillTool(t *testing.T) {
	b := loadedBoard(t, fyne.NewSize(200, 200))

	b.MouseDown(&desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)},
		Button:     desktop.MouseButtonPrimary,
	})
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(140, 120)}})
	b.DragEnd()

	st := b.Session().State()
	assert.InDelta(t, 40, st.PanX, 1e-9)
	assert.InDelta(t, 20, st.PanY, 1e-9)
	assert.False(t, st.CanUndo)
}

func TestBoardScrollZooms(t *testing.T) {
	b := loadedBoard(t, fyne.NewSize(200, 200))

	b.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(0, 0)},
		Scrolled:   fyne.NewDelta(0, scrollNotch),
	})
	assert.InDelta(t, editor.WheelStep, b.Session().State().Zoom, 1e-9)
}

func TestBoardIgnoresSecondaryButton(t *testing.T) {
	b := loadedBoard(t, fyne.NewSize(200, 200))
	ev := &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)},
		Button:     desktop.MouseButtonSecondary,
	}
	b.MouseDown(ev)
	b.MouseUp(ev)
	assert.False(t, b.Session().State().CanUndo)
}

func TestToolbarFollowsSession(t *testing.T) {
	b := loadedBoard(t, fyne.NewSize(200, 200))
	tb := NewToolbar(b)
	s := b.Session()

	tb.Update(s.State())
	assert.Equal(t, "fill", tb.tools.Selected)
	assert.True(t, tb.shapes.Hidden)
	assert.True(t, tb.undo.Disabled())

	tb.tools.SetSelected("pen")
	assert.Equal(t, editor.PenTool, s.Tool())

	s.LoadBlank(shape.Organic)
	tb.Update(s.State())
	assert.False(t, tb.shapes.Hidden)
	assert.Len(t, tb.swatches, 9)
}

func TestPageTree(t *testing.T) {
	cats := []state.Category{
		{ID: "animals", Title: "Animals", Pages: []state.Page{
			{ID: "animals/cat", Title: "Cat"},
			{ID: "animals/dog", Title: "Dog"},
		}},
	}
	c := state.NewCatalog("", cats)
	tree := buildPageTree(cats, []string{"animals/dog", "gone"}, c.Page)

	root := tree.children[""]
	require.Len(t, root, 3)
	assert.Equal(t, state.BlankPageID, root[0])
	assert.Equal(t, "Favorites", tree.title(root[1]))
	assert.Equal(t, "Animals", tree.title(root[2]))

	favs := tree.children[favoritesNode]
	require.Len(t, favs, 1)
	assert.Equal(t, "Dog", tree.title(favs[0]))
	assert.Equal(t, "animals/dog", pageID(favs[0]))
	assert.True(t, tree.branch(root[2]))
	assert.False(t, tree.branch("animals/cat"))
	assert.Equal(t, []string{"animals/cat", "animals/dog"}, tree.children[root[2]])
}

func TestPreferencesStore(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	fav, err := state.NewFavorites(PreferencesStore{Prefs: a.Preferences()})
	require.NoError(t, err)
	on, err := fav.Toggle("animals/cat")
	require.NoError(t, err)
	assert.True(t, on)

	again, err := state.NewFavorites(PreferencesStore{Prefs: a.Preferences()})
	require.NoError(t, err)
	assert.True(t, again.Has("animals/cat"))
}
