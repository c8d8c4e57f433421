package assets

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"regexp"
	"sync"
	"time"

	"golang.org/x/image/font/sfnt"
)

// Descriptor describes the face a registered file provides.
type Descriptor struct {
	Style  string `json:"style"`  // "normal" or "italic"
	Weight int    `json:"weight"` // CSS weight, 400 when unset
}

// Registration is one face known to the registry.
type Registration struct {
	Family       string     `json:"family"`
	URL          string     `json:"url"`
	Path         string     `json:"path"`
	Descriptor   Descriptor `json:"descriptor"`
	NameInFile   string     `json:"name_in_file,omitempty"`
	RegisteredAt time.Time  `json:"registered_at"`
}

// Registrar makes a font file available for rendering.
type Registrar interface {
	RegisterFont(ctx context.Context, family, url string, d Descriptor) error
}

// Registry downloads font files into the cache, checks that they really are
// fonts and remembers them by family.
type Registry struct {
	cache *Cache

	mu    sync.RWMutex
	fonts map[string][]Registration
}

// NewRegistry creates a registry that stores files in cache.
func NewRegistry(cache *Cache) *Registry {
	return &Registry{cache: cache, fonts: make(map[string][]Registration)}
}

// RegisterFont fetches url, verifies the payload and records the face. A face
// already registered for the same family and url is not fetched again.
func (r *Registry) RegisterFont(ctx context.Context, family, url string, d Descriptor) error {
	if family == "" {
		return fmt.Errorf("family is required")
	}
	if d.Weight == 0 {
		d.Weight = 400
	}
	if d.Style == "" {
		d.Style = "normal"
	}

	if r.has(family, url) {
		return nil
	}

	path, err := r.cache.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", family, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	// Stylesheet URLs (Google Fonts CSS) point at the real file.
	if src, ok := stylesheetSource(data); ok {
		path, err = r.cache.Get(ctx, src)
		if err != nil {
			return fmt.Errorf("fetch %s from stylesheet: %w", family, err)
		}
		if data, err = os.ReadFile(path); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}

	name, err := inspectFont(data)
	if err != nil {
		_ = r.cache.Invalidate(url)
		return fmt.Errorf("font %s: %w", family, err)
	}

	r.mu.Lock()
	r.fonts[family] = append(r.fonts[family], Registration{
		Family:       family,
		URL:          url,
		Path:         path,
		Descriptor:   d,
		NameInFile:   name,
		RegisteredAt: time.Now(),
	})
	r.mu.Unlock()

	return nil
}

func (r *Registry) has(family, url string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, reg := range r.fonts[family] {
		if reg.URL == url {
			return true
		}
	}
	return false
}

// Registered reports whether any face of family has been registered.
func (r *Registry) Registered(family string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fonts[family]) > 0
}

// Faces returns the registered faces of family.
func (r *Registry) Faces(family string) []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Registration(nil), r.fonts[family]...)
}

// Count returns the number of registered families.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fonts)
}

var fontFaceSrc = regexp.MustCompile(`url\(\s*['"]?([^'")]+)['"]?\s*\)`)

// stylesheetSource returns the first font url of an @font-face stylesheet.
func stylesheetSource(data []byte) (string, bool) {
	if !bytes.Contains(data, []byte("@font-face")) {
		return "", false
	}
	m := fontFaceSrc.FindSubmatch(data)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

var (
	woffMagic  = []byte("wOFF")
	woff2Magic = []byte("wOF2")
)

// inspectFont verifies data is a font and returns its family name when the
// container can be parsed directly. WOFF containers are accepted on their
// signature alone.
func inspectFont(data []byte) (string, error) {
	if bytes.HasPrefix(data, woffMagic) || bytes.HasPrefix(data, woff2Magic) {
		return "", nil
	}

	f, err := sfnt.Parse(data)
	if err != nil {
		return "", fmt.Errorf("not a font file: %w", err)
	}

	var buf sfnt.Buffer
	name, err := f.Name(&buf, sfnt.NameIDFamily)
	if err != nil {
		return "", nil
	}
	return name, nil
}
