// Package history keeps the bounded, append-only list of design snapshots
// behind undo, restore and favorites.
//
// Edits are applied to the live design at once and committed as snapshots
// after a per-group quiet period. Discrete selections (icon, font, layout)
// commit immediately.
package history

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/mrlokans/wordmark/internal/entities"
)

// DefaultCapacity is the number of versions kept.
const DefaultCapacity = 30

const captureTimeout = 5 * time.Second

var (
	ErrNoCurrentVersion  = errors.New("no current version")
	ErrFavoritesDisabled = errors.New("favorites store not configured")
)

// Capturer renders a thumbnail of a design. An error means the snapshot is
// committed without one.
type Capturer interface {
	Capture(ctx context.Context, d entities.Design) (string, error)
}

// FavoritesStore persists favorites.
type FavoritesStore interface {
	ListFavorites(ctx context.Context) ([]entities.FavoriteVersion, error)
	AddFavorite(ctx context.Context, fv entities.FavoriteVersion) error
	DeleteFavorite(ctx context.Context, favoriteID string) error
	RenameFavorite(ctx context.Context, favoriteID, name string) error
}

// Config configures an Engine.
type Config struct {
	Capacity int
	Windows  Windows
	Initial  entities.Design
}

// Engine owns the live design, the version list and the current pointer.
type Engine struct {
	capacity  int
	windows   Windows
	debouncer *Debouncer
	capturer  Capturer
	favorites FavoritesStore

	mu          sync.Mutex
	state       entities.Design
	versions    []entities.DesignVersion
	pointer     int
	lastID      int
	initialized bool
	closed      bool

	idMu    sync.Mutex
	entropy io.Reader

	now func() time.Time
}

// NewEngine creates an engine. capturer and favorites may be nil.
func NewEngine(cfg Config, capturer Capturer, favorites FavoritesStore) *Engine {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	windows := DefaultWindows()
	for g, d := range cfg.Windows {
		windows[g] = d
	}
	return &Engine{
		capacity:  cfg.Capacity,
		windows:   windows,
		debouncer: NewDebouncer(),
		capturer:  capturer,
		favorites: favorites,
		state:     cfg.Initial,
		pointer:   -1,
		entropy:   ulid.Monotonic(rand.Reader, 0),
		now:       time.Now,
	}
}

// Init commits the initial state. Only the first call has an effect.
func (e *Engine) Init(ctx context.Context) {
	e.mu.Lock()
	if e.initialized || e.closed {
		e.mu.Unlock()
		return
	}
	e.initialized = true
	e.mu.Unlock()

	e.commit(ctx)
}

// Apply writes change into the live design and schedules the commits of the
// groups it touches.
func (e *Engine) Apply(ctx context.Context, change Change) (entities.Design, error) {
	if err := change.Validate(); err != nil {
		return entities.Design{}, err
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return entities.Design{}, errors.New("history engine closed")
	}
	change.applyTo(&e.state)
	state := e.state
	e.mu.Unlock()

	immediate := false
	for _, g := range change.Groups() {
		if e.windows[g] <= 0 {
			immediate = true
		}
	}
	if immediate {
		// The snapshot already includes anything still pending.
		e.debouncer.CancelAll()
		e.commit(ctx)
		return state, nil
	}

	for _, g := range change.Groups() {
		e.debouncer.Schedule(string(g), e.windows[g], func() {
			e.commit(context.Background())
		})
	}
	return state, nil
}

// Flush commits every pending debounced change now.
func (e *Engine) Flush() {
	e.debouncer.Flush()
}

// Pending reports whether group has an uncommitted change.
func (e *Engine) Pending(g Group) bool {
	return e.debouncer.Pending(string(g))
}

// commit snapshots the live design, capturing a thumbnail first.
func (e *Engine) commit(ctx context.Context) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	design := e.state
	e.mu.Unlock()

	thumbnail := e.capture(ctx, design)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.lastID++
	e.appendLocked(entities.NewDesignVersion(e.lastID, e.now(), design, thumbnail))
}

func (e *Engine) appendLocked(v entities.DesignVersion) {
	if len(e.versions) >= e.capacity {
		e.versions = append(e.versions[:0:0], e.versions[len(e.versions)-e.capacity+1:]...)
	}
	e.versions = append(e.versions, v)
	e.pointer = len(e.versions) - 1
}

func (e *Engine) capture(ctx context.Context, d entities.Design) string {
	if e.capturer == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, captureTimeout)
	defer cancel()

	thumbnail, err := e.capturer.Capture(ctx, d)
	if err != nil {
		logrus.WithError(err).Warn("Thumbnail capture failed, committing without thumbnail")
		return ""
	}
	return thumbnail
}

// Restore makes versions[index] the live design and the current version. It
// never appends. Out-of-range indexes are ignored and reported as false.
func (e *Engine) Restore(index int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || index < 0 || index >= len(e.versions) {
		return false
	}
	// Edits still waiting to commit belong to the state being replaced.
	e.debouncer.CancelAll()
	e.state = e.versions[index].Design()
	e.pointer = index
	return true
}

// Undo restores the version before the current one.
func (e *Engine) Undo() bool {
	return e.Restore(e.Pointer() - 1)
}

// Redo restores the version after the current one.
func (e *Engine) Redo() bool {
	return e.Restore(e.Pointer() + 1)
}

// State returns the live design.
func (e *Engine) State() entities.Design {
	e.mu.Lock()
	defer e.mu.Unlock()
	d := e.state
	d.Font = e.state.Font.Clone()
	return d
}

// Versions returns a copy of the version list, oldest first.
func (e *Engine) Versions() []entities.DesignVersion {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]entities.DesignVersion(nil), e.versions...)
}

// Pointer returns the index of the current version, -1 when empty.
func (e *Engine) Pointer() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pointer
}

// Current returns the current version.
func (e *Engine) Current() (entities.DesignVersion, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pointer < 0 || e.pointer >= len(e.versions) {
		return entities.DesignVersion{}, false
	}
	return e.versions[e.pointer], true
}

// ReplaceHistory discards the version list and substitutes versions. The next
// commit continues from the highest incoming id, or from 1 when empty.
func (e *Engine) ReplaceHistory(versions []entities.DesignVersion) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.versions = nil
	e.pointer = -1
	e.lastID = 0
	for _, v := range versions {
		if v.ID > e.lastID {
			e.lastID = v.ID
		}
		e.appendLocked(v)
	}
}

// MergeHistory appends the versions whose id is not already present and
// returns how many were added.
func (e *Engine) MergeHistory(versions []entities.DesignVersion) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	existing := make(map[int]bool, len(e.versions))
	for _, v := range e.versions {
		existing[v.ID] = true
	}

	added := 0
	for _, v := range versions {
		if existing[v.ID] {
			continue
		}
		existing[v.ID] = true
		if v.ID > e.lastID {
			e.lastID = v.ID
		}
		e.appendLocked(v)
		added++
	}
	return added
}

// Load makes d the live design and commits it as a new version.
func (e *Engine) Load(ctx context.Context, d entities.Design) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.debouncer.CancelAll()
	e.state = d
	e.mu.Unlock()

	e.commit(ctx)
}

// Favorites lists the persisted favorites.
func (e *Engine) Favorites(ctx context.Context) ([]entities.FavoriteVersion, error) {
	if e.favorites == nil {
		return nil, ErrFavoritesDisabled
	}
	return e.favorites.ListFavorites(ctx)
}

// AddToFavorites pins the current version. Pending edits are committed first
// so the favorite matches what is on screen.
func (e *Engine) AddToFavorites(ctx context.Context, name string) (entities.FavoriteVersion, error) {
	if e.favorites == nil {
		return entities.FavoriteVersion{}, ErrFavoritesDisabled
	}
	e.Flush()

	current, ok := e.Current()
	if !ok {
		return entities.FavoriteVersion{}, ErrNoCurrentVersion
	}

	if name == "" {
		existing, err := e.favorites.ListFavorites(ctx)
		if err != nil {
			return entities.FavoriteVersion{}, fmt.Errorf("list favorites: %w", err)
		}
		name = fmt.Sprintf("Favorite #%d", len(existing)+1)
	}

	fv := entities.FavoriteVersion{
		DesignVersion: current,
		FavoriteID:    e.newFavoriteID(),
		Name:          name,
	}
	if err := e.favorites.AddFavorite(ctx, fv); err != nil {
		return entities.FavoriteVersion{}, fmt.Errorf("save favorite: %w", err)
	}
	return fv, nil
}

func (e *Engine) newFavoriteID() string {
	e.idMu.Lock()
	defer e.idMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(e.now()), e.entropy).String()
}

// RemoveFavorite deletes a favorite by id.
func (e *Engine) RemoveFavorite(ctx context.Context, favoriteID string) error {
	if e.favorites == nil {
		return ErrFavoritesDisabled
	}
	return e.favorites.DeleteFavorite(ctx, favoriteID)
}

// RenameFavorite changes a favorite's name.
func (e *Engine) RenameFavorite(ctx context.Context, favoriteID, name string) error {
	if e.favorites == nil {
		return ErrFavoritesDisabled
	}
	return e.favorites.RenameFavorite(ctx, favoriteID, name)
}

// favoriteKey is what two designs must share to count as the same favorite.
// Ids, timestamps and thumbnails are ignored, and of the font only the family.
type favoriteKey struct {
	Text       entities.Text
	Card       entities.Card
	Icon       entities.Icon
	Layout     entities.Layout
	FontFamily string
}

func keyOf(d entities.Design) favoriteKey {
	k := favoriteKey{Text: d.Text, Card: d.Card, Icon: d.Icon, Layout: d.Layout}
	if d.Font != nil {
		k.FontFamily = d.Font.Family
	}
	return k
}

// IsFavorited reports whether the live design matches a favorite.
func (e *Engine) IsFavorited(ctx context.Context) (bool, error) {
	if e.favorites == nil {
		return false, nil
	}
	favorites, err := e.favorites.ListFavorites(ctx)
	if err != nil {
		return false, fmt.Errorf("list favorites: %w", err)
	}

	current := keyOf(e.State())
	for _, fv := range favorites {
		if cmp.Equal(current, keyOf(fv.Design())) {
			return true, nil
		}
	}
	return false, nil
}

// Close stops pending commits. The engine ignores edits afterwards.
func (e *Engine) Close() {
	e.debouncer.Stop()
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
