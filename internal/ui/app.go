package ui

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/logging"
	boardnet "ColoringBoard/internal/net"
	"ColoringBoard/internal/pageload"
	"ColoringBoard/internal/shape"
	"ColoringBoard/internal/state"
)

// AppID identifies the application to fyne's preferences storage.
const AppID = "io.coloringboard.desktop"

// Deps are the services the desktop window works with.
type Deps struct {
	Catalog   *state.Catalog
	Favorites *state.Favorites
	Loader    *pageload.Loader
	Editor    editor.Options
	// Server enables the share dialog when set.
	Server *boardnet.HTTPServer
	// Page is opened first; empty opens the blank canvas.
	Page string
}

// NewApp returns the fyne application. Its preferences can back the
// favorites store before the window exists.
func NewApp() fyne.App { return app.NewWithID(AppID) }

// App is the desktop front end: one window with the page picker, the board
// and its toolbar.
type App struct {
	fyne fyne.App
	win  fyne.Window
	deps Deps
	log  *slog.Logger

	board   *BoardWidget
	toolbar *Toolbar
	status  *widget.Label
	fav     *widget.Button
	tree    *widget.Tree
	nodes   pageTree

	ctx     context.Context
	cancel  context.CancelFunc
	loadSeq int
}

// RunApp builds the window and blocks until it is closed.
func RunApp(a fyne.App, d Deps) {
	u := NewWindow(a, d)
	u.win.ShowAndRun()
}

// NewWindow builds the main window without showing it.
func NewWindow(a fyne.App, d Deps) *App {
	u := &App{
		fyne: a,
		deps: d,
		log:  logging.For("ui"),
	}
	u.ctx, u.cancel = context.WithCancel(context.Background())

	u.win = a.NewWindow("Coloring Board")
	u.win.Resize(fyne.NewSize(1200, 820))
	u.win.SetOnClosed(u.cancel)

	session := editor.New(d.Editor, editor.SoundFunc(bell))
	u.board = NewBoardWidget(session)
	u.toolbar = NewToolbar(u.board)
	u.toolbar.OnError = u.showError
	u.status = widget.NewLabel("Ready")
	u.fav = widget.NewButtonWithIcon("Favorite", theme.ContentAddIcon(), u.toggleFavorite)
	u.fav.Disable()
	u.board.OnState = u.stateChanged

	u.tree = widget.NewTree(
		func(id widget.TreeNodeID) []widget.TreeNodeID { return u.nodes.children[id] },
		func(id widget.TreeNodeID) bool { return u.nodes.branch(id) },
		func(bool) fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TreeNodeID, _ bool, o fyne.CanvasObject) { o.(*widget.Label).SetText(u.nodes.title(id)) },
	)
	u.tree.OnSelected = func(id widget.TreeNodeID) {
		if u.nodes.branch(id) {
			u.tree.ToggleBranch(id)
			return
		}
		u.Open(pageID(id))
	}
	u.rebuildTree()
	if d.Catalog != nil {
		d.Catalog.OnChange(func() { fyne.Do(u.rebuildTree) })
	}

	extra := []fyne.CanvasObject{
		widget.NewButtonWithIcon("", theme.DeleteIcon(), func() { session.Clear() }),
		widget.NewButtonWithIcon("", theme.ZoomFitIcon(), session.ResetView),
		u.fav,
		widget.NewButtonWithIcon("", theme.DocumentSaveIcon(), u.save),
		widget.NewButtonWithIcon("", theme.DocumentPrintIcon(), u.print),
	}
	if d.Server != nil {
		extra = append(extra, widget.NewButtonWithIcon("Share", theme.ComputerIcon(), u.share))
	}

	split := container.NewHSplit(u.tree, u.board)
	split.Offset = 0.2
	u.win.SetContent(container.NewBorder(u.toolbar.Object(extra...), u.status, nil, nil, split))
	u.win.SetMainMenu(u.menu())
	u.addShortcuts()

	u.toolbar.Update(session.State())
	u.Open(d.Page)
	return u
}

// Window returns the main window.
func (u *App) Window() fyne.Window { return u.win }

// Board returns the board widget.
func (u *App) Board() *BoardWidget { return u.board }

func (u *App) menu() *fyne.MainMenu {
	s := u.board.Session()
	file := fyne.NewMenu("File",
		fyne.NewMenuItem("Doodle", func() { u.Open(state.BlankPageID) }),
		fyne.NewMenuItem("Save PNG…", u.save),
		fyne.NewMenuItem("Print…", u.print),
	)
	if u.deps.Server != nil {
		file.Items = append(file.Items, fyne.NewMenuItem("Share…", u.share))
	}
	edit := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Undo", func() { s.Undo() }),
		fyne.NewMenuItem("Redo", func() { s.Redo() }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Clear", func() { s.Clear() }),
	)
	view := fyne.NewMenu("View",
		fyne.NewMenuItem("Reset view", s.ResetView),
	)
	return fyne.NewMainMenu(file, edit, view)
}

func (u *App) addShortcuts() {
	s := u.board.Session()
	add := func(key fyne.KeyName, mod fyne.KeyModifier, fn func()) {
		u.win.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: key, Modifier: mod}, func(fyne.Shortcut) { fn() })
	}
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault, func() { s.Undo() })
	add(fyne.KeyZ, fyne.KeyModifierShortcutDefault|fyne.KeyModifierShift, func() { s.Redo() })
	add(fyne.KeyY, fyne.KeyModifierShortcutDefault, func() { s.Redo() })
	add(fyne.KeyS, fyne.KeyModifierShortcutDefault, u.save)
	add(fyne.KeyP, fyne.KeyModifierShortcutDefault, u.print)
	add(fyne.Key0, fyne.KeyModifierShortcutDefault, s.ResetView)
}

// Open switches the board to the page with the given id. Images load off
// the event goroutine; a newer Open supersedes a pending load.
func (u *App) Open(id string) {
	s := u.board.Session()
	if id == "" {
		id = state.BlankPageID
	}
	page, err := u.lookup(id)
	if err != nil {
		u.showError(err)
		return
	}
	u.loadSeq++
	if page.Blank() {
		s.LoadBlank(shape.Organic)
		return
	}

	seq := u.loadSeq
	s.BeginLoad(page)
	go func() {
		img, err := u.deps.Loader.Load(u.ctx, page.Image)
		fyne.Do(func() {
			if seq != u.loadSeq {
				return
			}
			if err != nil {
				s.FailLoad(err)
				return
			}
			if err := s.LoadPage(page, img); err != nil {
				u.log.Warn("install page", "page", page.ID, "err", err)
			}
		})
	}()
}

func (u *App) lookup(id string) (state.Page, error) {
	if u.deps.Catalog == nil {
		return state.NewCatalog("", nil).Page(id)
	}
	return u.deps.Catalog.Page(id)
}

func (u *App) stateChanged(st editor.State) {
	u.toolbar.Update(st)

	switch {
	case st.Loading:
		u.status.SetText(fmt.Sprintf("Loading %s…", st.Title))
	case st.Error != "":
		u.status.SetText("Could not load page: " + st.Error)
	default:
		u.status.SetText(fmt.Sprintf("%s · %s · %.0f%%", st.Title, st.Tool, st.Zoom*100))
	}

	page := u.board.Session().Page()
	if page.Blank() || u.deps.Favorites == nil {
		u.fav.Disable()
		return
	}
	u.fav.Enable()
	if u.deps.Favorites.Has(page.ID) {
		u.fav.SetText("Unfavorite")
		u.fav.SetIcon(theme.ContentRemoveIcon())
	} else {
		u.fav.SetText("Favorite")
		u.fav.SetIcon(theme.ContentAddIcon())
	}
}

func (u *App) toggleFavorite() {
	page := u.board.Session().Page()
	if page.Blank() || u.deps.Favorites == nil {
		return
	}
	if _, err := u.deps.Favorites.Toggle(page.ID); err != nil {
		u.showError(err)
	}
	u.rebuildTree()
	u.stateChanged(u.board.Session().State())
}

func (u *App) rebuildTree() {
	var favs []string
	if u.deps.Favorites != nil {
		favs = u.deps.Favorites.List()
	}
	var cats []state.Category
	if u.deps.Catalog != nil {
		cats = u.deps.Catalog.Categories()
	}
	u.nodes = buildPageTree(cats, favs, u.lookup)
	u.tree.Refresh()
}

func (u *App) share() {
	if u.deps.Server == nil {
		return
	}
	link, err := u.deps.Server.ShareURL()
	if err != nil {
		u.showError(err)
		return
	}
	img, err := boardnet.QRCode(link, 256)
	if err != nil {
		u.showError(err)
		return
	}
	dialog.ShowCustom("Color on another device", "Close", shareContent(img, link), u.win)
}

func (u *App) showError(err error) {
	u.log.Warn("ui error", "err", err)
	dialog.ShowError(err, u.win)
}

// bell rings the terminal bell as feedback for fills and strokes.
func bell(string) error {
	_, err := os.Stderr.WriteString("\a")
	return err
}

const (
	favoritesNode  = "\x00favorites"
	categoryPrefix = "\x00cat:"
	favoritePrefix = "\x00fav:"
)

// pageTree is the widget.Tree data: the blank canvas, favorites and one
// branch per category.
type pageTree struct {
	children map[string][]string
	titles   map[string]string
}

func buildPageTree(cats []state.Category, favs []string, lookup func(string) (state.Page, error)) pageTree {
	t := pageTree{children: map[string][]string{}, titles: map[string]string{}}
	root := []string{state.BlankPageID}
	t.titles[state.BlankPageID] = "Doodle"

	if len(favs) > 0 {
		root = append(root, favoritesNode)
		t.titles[favoritesNode] = "Favorites"
		for _, id := range favs {
			p, err := lookup(id)
			if err != nil {
				continue
			}
			node := favoritePrefix + id
			t.children[favoritesNode] = append(t.children[favoritesNode], node)
			t.titles[node] = p.Title
		}
	}
	for _, c := range cats {
		node := categoryPrefix + c.ID
		root = append(root, node)
		t.titles[node] = c.Title
		for _, p := range c.Pages {
			t.children[node] = append(t.children[node], p.ID)
			t.titles[p.ID] = p.Title
		}
	}
	t.children[""] = root
	return t
}

func (t pageTree) branch(id string) bool {
	return id == "" || id == favoritesNode || strings.HasPrefix(id, categoryPrefix)
}

func (t pageTree) title(id string) string {
	if s, ok := t.titles[id]; ok {
		return s
	}
	return id
}

// pageID maps a tree node back to the page it shows.
func pageID(node string) string { return strings.TrimPrefix(node, favoritePrefix) }
