package providers

import (
	"context"
	"fmt"
	"html"
	"sync"

	"github.com/mrlokans/wordmark/internal/entities"
)

// Adobe is an extension point for Adobe Fonts kits. It has no catalog of its
// own; the client injects the kit loader script and the kit's families become
// usable by name.
type Adobe struct {
	kitID string

	mu       sync.Mutex
	injected bool
}

// NewAdobe creates the adapter for kitID, which may be empty.
func NewAdobe(kitID string) *Adobe {
	return &Adobe{kitID: kitID}
}

func (a *Adobe) Name() entities.ProviderName { return entities.ProviderAdobe }

func (a *Adobe) Fetch(context.Context) []entities.FontRecord { return nil }

// Load marks the kit script as handed out to the client.
func (a *Adobe) Load(context.Context) {
	a.mu.Lock()
	a.injected = a.kitID != ""
	a.mu.Unlock()
}

func (a *Adobe) Snapshot() []entities.FontRecord { return nil }

func (a *Adobe) Status() (loaded, loading bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.injected, false
}

// KitID returns the configured kit id.
func (a *Adobe) KitID() string { return a.kitID }

// KitScript returns the script tags that load the kit, or "" when no kit is
// configured.
func (a *Adobe) KitScript() string {
	if a.kitID == "" {
		return ""
	}
	id := html.EscapeString(a.kitID)
	return fmt.Sprintf(`<script src="https://use.typekit.net/%s.js"></script>`+
		`<script>try{Typekit.load({ async: true });}catch(e){}</script>`, id)
}
