// Package pageload fetches and decodes coloring page artwork from files,
// data URIs and http(s) URLs.
package pageload

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"ColoringBoard/internal/logging"
)

// ErrUnsupported is returned for sources or image formats that cannot be
// loaded.
var ErrUnsupported = errors.New("unsupported image source")

const (
	defaultSVGSize  = 1024
	defaultMaxBytes = 32 << 20
)

// Loader resolves image sources. The zero value is not usable; call New.
type Loader struct {
	// BaseDir resolves relative file paths.
	BaseDir string
	// SVGSize is the edge of the square an SVG is rasterized into.
	SVGSize  int
	MaxBytes int64
	Client   *http.Client
}

// New returns a loader with a 30 second http timeout.
func New(baseDir string) *Loader {
	return &Loader{
		BaseDir:  baseDir,
		SVGSize:  defaultSVGSize,
		MaxBytes: defaultMaxBytes,
		Client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// Load fetches src and decodes it.
func (l *Loader) Load(ctx context.Context, src string) (image.Image, error) {
	data, err := l.Fetch(ctx, src)
	if err != nil {
		return nil, err
	}
	img, format, err := Decode(data, l.SVGSize)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", shortName(src), err)
	}
	b := img.Bounds()
	logging.For("pageload").Debug("image loaded", "source", shortName(src), "format", format, "w", b.Dx(), "h", b.Dy())
	return img, nil
}

// Fetch returns the raw bytes behind src.
func (l *Loader) Fetch(ctx context.Context, src string) ([]byte, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return decodeDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return l.fetchHTTP(ctx, src)
	case strings.HasPrefix(src, "file://"):
		u, err := url.Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", src, err)
		}
		return l.readFile(u.Path)
	case strings.Contains(src, "://"):
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, src)
	default:
		return l.readFile(src)
	}
}

func (l *Loader) readFile(path string) ([]byte, error) {
	if !filepath.IsAbs(path) && l.BaseDir != "" {
		path = filepath.Join(l.BaseDir, path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page image: %w", err)
	}
	defer f.Close()
	return l.readAll(f)
}

func (l *Loader) fetchHTTP(ctx context.Context, src string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", src, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %s", src, resp.Status)
	}
	return l.readAll(resp.Body)
}

func (l *Loader) readAll(r io.Reader) ([]byte, error) {
	limit := l.MaxBytes
	if limit <= 0 {
		limit = defaultMaxBytes
	}
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read page image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("page image larger than %d bytes", limit)
	}
	return data, nil
}

// decodeDataURI handles data:[<mediatype>][;base64],<data>.
func decodeDataURI(src string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data uri", ErrUnsupported)
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data uri: %w", err)
		}
		return data, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data uri: %w", err)
	}
	return []byte(s), nil
}

// Decode decodes PNG, JPEG, GIF, BMP, WebP and SVG data. SVG documents are
// rasterized to fit a svgSize square.
func Decode(data []byte, svgSize int) (image.Image, string, error) {
	if isSVG(data) {
		img, err := rasterizeSVG(data, svgSize)
		return img, "svg", err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, "", ErrUnsupported
	}
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

func isSVG(data []byte) bool {
	head := data[:min(len(data), 1024)]
	head = bytes.TrimSpace(head)
	return bytes.HasPrefix(head, []byte("<svg")) ||
		(bytes.HasPrefix(head, []byte("<?xml")) || bytes.HasPrefix(head, []byte("<!--"))) && bytes.Contains(head, []byte("<svg"))
}

func rasterizeSVG(data []byte, size int) (image.Image, error) {
	if size <= 0 {
		size = defaultSVGSize
	}
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.WarnErrorMode)
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	vw, vh := icon.ViewBox.W, icon.ViewBox.H
	if vw <= 0 || vh <= 0 {
		vw, vh = float64(size), float64(size)
	}
	k := float64(size) / math.Max(vw, vh)
	w, h := max(1, int(math.Round(vw*k))), max(1, int(math.Round(vh*k)))

	icon.SetTarget(0, 0, float64(w), float64(h))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1)
	return img, nil
}

func shortName(src string) string {
	if strings.HasPrefix(src, "data:") {
		meta, _, _ := strings.Cut(src, ",")
		return meta
	}
	return src
}
