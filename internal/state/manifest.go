package state

import (
	"embed"
	"encoding/base64"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type manifest struct {
	Categories []Category `toml:"categories"`
}

// LoadManifest reads a TOML catalog:
//
//	[[categories]]
//	id = "animals"
//	title = "Animals"
//	  [[categories.pages]]
//	  id = "cat"
//	  title = "Cat"
//	  image = "animals/cat.png"
func LoadManifest(file string) ([]Category, error) {
	var m manifest
	if _, err := toml.DecodeFile(file, &m); err != nil {
		return nil, fmt.Errorf("read catalog manifest: %w", err)
	}
	seen := make(map[string]bool)
	for ci, cat := range m.Categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("catalog manifest: category %d has no id", ci)
		}
		for _, p := range cat.Pages {
			switch {
			case p.ID == "" || p.Image == "":
				return nil, fmt.Errorf("catalog manifest: page in %q needs id and image", cat.ID)
			case p.ID == BlankPageID:
				return nil, fmt.Errorf("catalog manifest: page id %q is reserved", p.ID)
			case seen[p.ID]:
				return nil, fmt.Errorf("catalog manifest: duplicate page id %q", p.ID)
			}
			seen[p.ID] = true
		}
	}
	return m.Categories, nil
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".webp": true, ".svg": true,
}

// ScanDir builds a catalog from a directory tree: one category per
// subdirectory, one page per image file in it. Files named *.thumb.* are
// used as thumbnails for the page with the same base name.
func ScanDir(dir string) ([]Category, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scan catalog: %w", err)
	}
	var cats []Category
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		cat, err := scanCategory(dir, e.Name())
		if err != nil {
			return nil, err
		}
		if len(cat.Pages) > 0 {
			cats = append(cats, cat)
		}
	}
	return cats, nil
}

func scanCategory(root, name string) (Category, error) {
	files, err := os.ReadDir(filepath.Join(root, name))
	if err != nil {
		return Category{}, fmt.Errorf("scan catalog: %w", err)
	}
	catID := strings.ToLower(name)
	cat := Category{ID: catID, Title: titleCase(name)}
	thumbs := make(map[string]string)
	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f.Name()))
		if f.IsDir() || !imageExts[ext] {
			continue
		}
		base := strings.TrimSuffix(f.Name(), filepath.Ext(f.Name()))
		rel := path.Join(name, f.Name())
		if stem, ok := strings.CutSuffix(base, ".thumb"); ok {
			thumbs[stem] = rel
			continue
		}
		cat.Pages = append(cat.Pages, Page{
			ID:    catID + "/" + strings.ToLower(base),
			Title: titleCase(base),
			Image: rel,
		})
	}
	for i, p := range cat.Pages {
		base := strings.TrimSuffix(path.Base(p.Image), path.Ext(p.Image))
		cat.Pages[i].Thumbnail = thumbs[base]
	}
	sort.Slice(cat.Pages, func(i, j int) bool { return cat.Pages[i].ID < cat.Pages[j].ID })
	return cat, nil
}

// titleCase turns a file or directory name like "big_cat" into "Big Cat".
func titleCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	return cases.Title(language.English).String(strings.Join(words, " "))
}

//go:embed pages/*.svg
var builtinPages embed.FS

// Builtin returns the small catalog of line art compiled into the binary.
func Builtin() []Category {
	names, _ := fs.Glob(builtinPages, "pages/*.svg")
	cat := Category{ID: "starter", Title: "Starter Pages"}
	for _, n := range names {
		data, err := builtinPages.ReadFile(n)
		if err != nil {
			continue
		}
		base := strings.TrimSuffix(path.Base(n), ".svg")
		cat.Pages = append(cat.Pages, Page{
			ID:    "starter/" + base,
			Title: titleCase(base),
			Image: "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(data),
		})
	}
	return []Category{cat}
}

// Source describes where the catalog comes from. A manifest wins over a
// directory; with neither, the built-in pages are used.
type Source struct {
	Manifest string
	Dir      string
}

// BaseDir is the directory relative image paths resolve against.
func (s Source) BaseDir() string {
	if s.Manifest != "" {
		return filepath.Dir(s.Manifest)
	}
	return s.Dir
}

// Read loads the categories from the source.
func (s Source) Read() ([]Category, error) {
	switch {
	case s.Manifest != "":
		return LoadManifest(s.Manifest)
	case s.Dir != "":
		return ScanDir(s.Dir)
	}
	return Builtin(), nil
}

// Open reads the source into a new catalog.
func Open(src Source) (*Catalog, error) {
	cats, err := src.Read()
	if err != nil {
		return nil, err
	}
	return NewCatalog(src.BaseDir(), cats), nil
}
