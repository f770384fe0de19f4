// Package state holds the page catalog and the favorites list shared by the
// desktop and browser front ends.
package state

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"unicode"
)

// BlankPageID selects the blank doodle canvas instead of a catalog page.
const BlankPageID = "blank"

// ErrUnknownPage is returned when a page id is not in the catalog.
var ErrUnknownPage = errors.New("unknown page")

// Page is one coloring page.
type Page struct {
	ID        string `toml:"id" json:"id"`
	Title     string `toml:"title" json:"title"`
	Image     string `toml:"image" json:"image"`
	Thumbnail string `toml:"thumbnail,omitempty" json:"thumbnail,omitempty"`
}

// Blank reports whether p is the blank canvas.
func (p Page) Blank() bool { return p.ID == BlankPageID }

// Slug returns the title lowercased with runs of whitespace replaced by a
// dash, as used in export file names.
func (p Page) Slug() string {
	title := p.Title
	if title == "" {
		title = p.ID
	}
	var b strings.Builder
	space := false
	for _, r := range strings.TrimSpace(title) {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space {
			b.WriteByte('-')
			space = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// Category groups pages under a title.
type Category struct {
	ID    string `toml:"id" json:"id"`
	Title string `toml:"title" json:"title"`
	Pages []Page `toml:"pages" json:"pages"`
}

// Catalog is the set of available pages. It is safe for concurrent use and
// may be replaced wholesale when the catalog source changes on disk.
type Catalog struct {
	mu         sync.RWMutex
	categories []Category
	index      map[string]Page
	baseDir    string
	listeners  []func()
}

// NewCatalog returns a catalog over cats. Relative image paths resolve
// against baseDir.
func NewCatalog(baseDir string, cats []Category) *Catalog {
	c := &Catalog{baseDir: baseDir}
	c.set(cats)
	return c
}

func (c *Catalog) set(cats []Category) {
	index := make(map[string]Page)
	for _, cat := range cats {
		for _, p := range cat.Pages {
			index[p.ID] = p
		}
	}
	c.categories = cats
	c.index = index
}

// BaseDir returns the directory relative image paths resolve against.
func (c *Catalog) BaseDir() string { return c.baseDir }

// Replace swaps in a new set of categories and notifies listeners.
func (c *Catalog) Replace(cats []Category) {
	c.mu.Lock()
	c.set(cats)
	listeners := slices.Clone(c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// OnChange registers fn to run after every Replace.
func (c *Catalog) OnChange(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Categories returns a copy of the categories.
func (c *Catalog) Categories() []Category {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		cat.Pages = slices.Clone(cat.Pages)
		out[i] = cat
	}
	return out
}

// Page looks up a page by id. The blank page always exists.
func (c *Catalog) Page(id string) (Page, error) {
	if id == BlankPageID {
		return Page{ID: BlankPageID, Title: "Doodle"}, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.index[id]
	if !ok {
		return Page{}, fmt.Errorf("%w: %q", ErrUnknownPage, id)
	}
	return p, nil
}

// Len returns the number of pages.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.index)
}
