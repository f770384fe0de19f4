package state

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"

	"github.com/nfnt/resize"
)

// DefaultThumbnailEdge bounds the longer side of generated thumbnails.
const DefaultThumbnailEdge = 256

// LoadFunc fetches and decodes an image source.
type LoadFunc func(ctx context.Context, src string) (image.Image, error)

// Thumbnails produces PNG thumbnails for catalog pages and caches them by
// page id. Pages with their own thumbnail source are scaled from that.
type Thumbnails struct {
	load LoadFunc
	edge uint

	mu    sync.Mutex
	cache map[string][]byte
}

// NewThumbnails returns a thumbnail cache backed by load.
func NewThumbnails(load LoadFunc, edge uint) *Thumbnails {
	if edge == 0 {
		edge = DefaultThumbnailEdge
	}
	return &Thumbnails{load: load, edge: edge, cache: make(map[string][]byte)}
}

// Get returns the PNG thumbnail for p.
func (t *Thumbnails) Get(ctx context.Context, p Page) ([]byte, error) {
	t.mu.Lock()
	data, ok := t.cache[p.ID]
	t.mu.Unlock()
	if ok {
		return data, nil
	}

	src := p.Thumbnail
	if src == "" {
		src = p.Image
	}
	img, err := t.load(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("thumbnail %s: %w", p.ID, err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, Thumbnail(img, t.edge)); err != nil {
		return nil, fmt.Errorf("thumbnail %s: %w", p.ID, err)
	}

	t.mu.Lock()
	t.cache[p.ID] = buf.Bytes()
	t.mu.Unlock()
	return buf.Bytes(), nil
}

// Invalidate drops every cached thumbnail.
func (t *Thumbnails) Invalidate() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.cache)
}

// Thumbnail scales img to fit an edge by edge square, keeping the aspect
// ratio. Images that already fit are returned unchanged.
func Thumbnail(img image.Image, edge uint) image.Image {
	b := img.Bounds()
	if uint(b.Dx()) <= edge && uint(b.Dy()) <= edge {
		return img
	}
	return resize.Thumbnail(edge, edge, img, resize.Lanczos3)
}
