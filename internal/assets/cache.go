package assets

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Cache handles local caching of font binaries.
type Cache struct {
	cacheDir   string
	httpClient *http.Client
}

// NewCache creates a new font cache at the specified directory.
func NewCache(cacheDir string) (*Cache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	return &Cache{
		cacheDir: cacheDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Get returns the local path of the font at fontURL, downloading it first if
// it is not cached yet. Local paths and file:// URLs are returned as-is once
// they are known to exist.
func (c *Cache) Get(ctx context.Context, fontURL string) (string, error) {
	if fontURL == "" {
		return "", fmt.Errorf("empty font url")
	}

	if local, ok := localPath(fontURL); ok {
		if _, err := os.Stat(local); err != nil {
			return "", fmt.Errorf("local font: %w", err)
		}
		return local, nil
	}

	cachePath := filepath.Join(c.cacheDir, c.fontFilename(fontURL))

	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, nil
	}

	if err := c.fetchAndCache(ctx, fontURL, cachePath); err != nil {
		return "", err
	}

	return cachePath, nil
}

// Invalidate removes the cached copy of fontURL.
func (c *Cache) Invalidate(fontURL string) error {
	err := os.Remove(filepath.Join(c.cacheDir, c.fontFilename(fontURL)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// fontFilename generates a stable filename from the URL hash, keeping the
// original extension so the content type can be derived later.
func (c *Cache) fontFilename(fontURL string) string {
	hash := sha256.Sum256([]byte(fontURL))
	ext := ".bin"
	if u, err := url.Parse(fontURL); err == nil {
		if e := path.Ext(u.Path); e != "" && len(e) <= 6 {
			ext = strings.ToLower(e)
		}
	}
	return fmt.Sprintf("font_%x%s", hash[:12], ext)
}

// fetchAndCache downloads a font and saves it to the cache.
func (c *Cache) fetchAndCache(ctx context.Context, fontURL, cachePath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fontURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Wordmark/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch font: status %d", resp.StatusCode)
	}

	// Create temp file in same directory for atomic write
	tmpFile, err := os.CreateTemp(c.cacheDir, "font_tmp_")
	if err != nil {
		return err
	}
	tmpPath := tmpFile.Name()
	defer func() {
		tmpFile.Close()
		os.Remove(tmpPath) // Clean up if we didn't rename
	}()

	if _, err = io.Copy(tmpFile, resp.Body); err != nil {
		return err
	}

	tmpFile.Close()

	return os.Rename(tmpPath, cachePath)
}

// CacheDir returns the cache directory path.
func (c *Cache) CacheDir() string {
	return c.cacheDir
}

func localPath(fontURL string) (string, bool) {
	if strings.HasPrefix(fontURL, "file://") {
		return strings.TrimPrefix(fontURL, "file://"), true
	}
	if strings.Contains(fontURL, "://") {
		return "", false
	}
	return fontURL, true
}
