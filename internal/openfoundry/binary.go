package openfoundry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"
)

// ErrInvalidFontID is returned for ids that are not kebab-case.
var ErrInvalidFontID = errors.New("invalid font id")

// UpstreamError is a non-200 response from the foundry.
type UpstreamError struct {
	URL        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream %s returned %d", e.URL, e.StatusCode)
}

// StatusCode returns the HTTP status that mirrors err: the upstream code when
// there is one, 400 for bad ids and 502 otherwise.
func StatusCode(err error) int {
	var upstream *UpstreamError
	switch {
	case errors.As(err, &upstream):
		return upstream.StatusCode
	case errors.Is(err, ErrInvalidFontID):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

// FontFile is an open font binary. Body must be closed.
type FontFile struct {
	Body          io.ReadCloser
	ContentType   string
	ContentLength int64
	Filename      string
}

// FetchFont opens the binary for fontID. When the primary file fails the
// .ttf sibling is tried once.
func (s *Scraper) FetchFont(ctx context.Context, fontID string) (*FontFile, error) {
	if !fontIDPattern.MatchString(fontID) {
		return nil, ErrInvalidFontID
	}

	filename := s.filename(fontID)
	file, err := s.open(ctx, filename)
	if err == nil {
		return file, nil
	}

	sibling := strings.TrimSuffix(filename, path.Ext(filename)) + fallbackExtension
	if sibling == filename {
		return nil, err
	}
	return s.open(ctx, sibling)
}

func (s *Scraper) open(ctx context.Context, filename string) (*FontFile, error) {
	url := s.cfg.FilesURL + filename
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Wordmark/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, &UpstreamError{URL: url, StatusCode: resp.StatusCode}
	}

	return &FontFile{
		Body:          resp.Body,
		ContentType:   ContentType(filename),
		ContentLength: resp.ContentLength,
		Filename:      filename,
	}, nil
}

// ContentType maps a font file extension to its media type.
func ContentType(filename string) string {
	switch strings.ToLower(path.Ext(filename)) {
	case ".otf":
		return "font/otf"
	case ".ttf":
		return "font/ttf"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	}
	return "application/octet-stream"
}
