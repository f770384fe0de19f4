package ui

import (
	"fmt"
	"image"
	"io"
	"net/url"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"ColoringBoard/internal/editor"
	"ColoringBoard/internal/export"
)

// save asks where to put the PNG export of the board.
func (u *App) save() {
	s := u.board.Session()
	if !s.Ready() {
		u.showError(editor.ErrNotReady)
		return
	}
	u.saveAs(s.FileName(time.Now()), ".png", s.ExportPNG, nil)
}

// print writes a one-page PDF of the board and hands it to the system
// viewer for printing.
func (u *App) print() {
	s := u.board.Session()
	if !s.Ready() {
		u.showError(editor.ErrNotReady)
		return
	}
	page := s.Page()
	name := export.PDFName(page.Slug(), page.Blank(), time.Now())
	u.saveAs(name, ".pdf", s.Print, func(uri fyne.URI) {
		if err := u.fyne.OpenURL(&url.URL{Scheme: "file", Path: uri.Path()}); err != nil {
			u.log.Warn("open print file", "path", uri.Path(), "err", err)
		}
	})
}

func (u *App) saveAs(name, ext string, render func(io.Writer) (string, error), done func(fyne.URI)) {
	d := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil {
			u.showError(err)
			return
		}
		if wc == nil {
			return
		}
		uri := wc.URI()
		_, err = render(wc)
		if cerr := wc.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			u.showError(fmt.Errorf("write %s: %w", uri.Name(), err))
			return
		}
		u.status.SetText("Saved " + uri.Name())
		u.log.Info("exported", "path", uri.Path())
		if done != nil {
			done(uri)
		}
	}, u.win)
	d.SetFileName(name)
	d.SetFilter(storage.NewExtensionFileFilter([]string{ext}))
	d.Show()
}

// shareContent shows the QR code of the share link above the link itself.
func shareContent(qr image.Image, link string) fyne.CanvasObject {
	img := canvas.NewImageFromImage(qr)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScalePixels
	img.SetMinSize(fyne.NewSize(256, 256))

	text := widget.NewLabel(link)
	text.Alignment = fyne.TextAlignCenter
	return container.NewVBox(img, text)
}
