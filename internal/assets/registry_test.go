package assets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"
)

func newFontServer(t *testing.T, body []byte) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		_, _ = w.Write(body)
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestRegistry_RegisterTrueType(t *testing.T) {
	server, hits := newFontServer(t, goregular.TTF)
	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	registry := NewRegistry(cache)

	err = registry.RegisterFont(context.Background(), "Go", server.URL+"/go.ttf", Descriptor{})
	require.NoError(t, err)

	assert.True(t, registry.Registered("Go"))
	faces := registry.Faces("Go")
	require.Len(t, faces, 1)
	assert.Equal(t, "Go", faces[0].NameInFile)
	assert.Equal(t, 400, faces[0].Descriptor.Weight)
	assert.Equal(t, "normal", faces[0].Descriptor.Style)

	// Registering the same face again does not refetch.
	require.NoError(t, registry.RegisterFont(context.Background(), "Go", server.URL+"/go.ttf", Descriptor{}))
	assert.Equal(t, 1, *hits)
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_AcceptsWOFF2(t *testing.T) {
	server, _ := newFontServer(t, []byte("wOF2\x00\x01rest-of-font"))
	cache, _ := NewCache(t.TempDir())
	registry := NewRegistry(cache)

	err := registry.RegisterFont(context.Background(), "Inter", server.URL+"/inter.woff2", Descriptor{Weight: 700})
	require.NoError(t, err)
	assert.True(t, registry.Registered("Inter"))
}

func TestRegistry_RejectsGarbage(t *testing.T) {
	server, _ := newFontServer(t, []byte("<html>not a font</html>"))
	cache, _ := NewCache(t.TempDir())
	registry := NewRegistry(cache)

	err := registry.RegisterFont(context.Background(), "Broken", server.URL+"/broken.ttf", Descriptor{})
	assert.Error(t, err)
	assert.False(t, registry.Registered("Broken"))
}

func TestRegistry_RequiresFamily(t *testing.T) {
	cache, _ := NewCache(t.TempDir())
	registry := NewRegistry(cache)

	assert.Error(t, registry.RegisterFont(context.Background(), "", "x.ttf", Descriptor{}))
}

func TestRegistry_FollowsStylesheet(t *testing.T) {
	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	mux.HandleFunc("/css2", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/css")
		_, _ = w.Write([]byte("@font-face {\n  font-family: 'Go';\n  src: url(" + server.URL + "/files/go.ttf) format('truetype');\n}\n"))
	})
	mux.HandleFunc("/files/go.ttf", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(goregular.TTF)
	})

	cache, err := NewCache(t.TempDir())
	require.NoError(t, err)
	registry := NewRegistry(cache)

	err = registry.RegisterFont(context.Background(), "Go", server.URL+"/css2?family=Go", Descriptor{})
	require.NoError(t, err)

	faces := registry.Faces("Go")
	require.Len(t, faces, 1)
	assert.Equal(t, "Go", faces[0].NameInFile)
}
