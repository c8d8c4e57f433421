package assets

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mrlokans/wordmark/internal/entities"
)

// ChunkScheduler runs a deferred preload chunk after delay. The default
// scheduler uses timers; the task queue provides a persistent one.
type ChunkScheduler interface {
	ScheduleChunk(families []string, delay time.Duration) error
}

// PreloaderConfig tunes the three preload tiers.
type PreloaderConfig struct {
	ImmediateCount int // first N records preloaded right away
	ChunkSize      int // records per deferred chunk
	Concurrency    int // parallel downloads within a tier
}

// Preloader loads font assets in three tiers: immediate, when the family
// becomes visible in the client, and deferred in small paced chunks.
type Preloader struct {
	registrar Registrar
	network   *NetworkQuality
	cfg       PreloaderConfig

	mu        sync.Mutex
	known     map[string]entities.FontRecord
	groups    map[entities.Category]map[string]bool
	done      map[string]bool
	inFlight  map[string]bool
	scheduler ChunkScheduler
}

// NewPreloader creates a preloader that registers fonts through registrar.
func NewPreloader(registrar Registrar, network *NetworkQuality, cfg PreloaderConfig) *Preloader {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 5
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if network == nil {
		network = NewNetworkQuality(0)
	}
	p := &Preloader{
		registrar: registrar,
		network:   network,
		cfg:       cfg,
		known:     make(map[string]entities.FontRecord),
		groups:    make(map[entities.Category]map[string]bool),
		done:      make(map[string]bool),
		inFlight:  make(map[string]bool),
	}
	p.scheduler = &timerScheduler{p: p}
	return p
}

// SetScheduler replaces the deferred chunk scheduler.
func (p *Preloader) SetScheduler(s ChunkScheduler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduler = s
}

// Network returns the tracker used for pacing.
func (p *Preloader) Network() *NetworkQuality {
	return p.network
}

// Plan splits records into the three tiers: the popular families plus the
// first ImmediateCount records load now, everything is observed for
// visibility by category, and the remainder is deferred.
func (p *Preloader) Plan(ctx context.Context, records []entities.FontRecord, popular []string) {
	popularSet := make(map[string]bool, len(popular))
	for _, f := range popular {
		popularSet[f] = true
	}

	var immediate, rest []entities.FontRecord
	for i, r := range records {
		if popularSet[r.Family] || i < p.cfg.ImmediateCount {
			immediate = append(immediate, r)
		} else {
			rest = append(rest, r)
		}
	}

	p.Observe(records)
	p.Immediate(ctx, immediate)
	p.Defer(rest)
}

// Immediate loads records now and waits for them.
func (p *Preloader) Immediate(ctx context.Context, records []entities.FontRecord) {
	p.remember(records)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for _, r := range records {
		r := r
		g.Go(func() error {
			p.load(ctx, r)
			return nil
		})
	}
	_ = g.Wait()
}

// Observe registers records for visibility-triggered loading, grouped by
// category so the client needs one observer per category.
func (p *Preloader) Observe(records []entities.FontRecord) {
	p.remember(records)

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range records {
		group, ok := p.groups[r.Category]
		if !ok {
			group = make(map[string]bool)
			p.groups[r.Category] = group
		}
		group[r.Family] = true
	}
}

// ObserverGroups returns the number of category groups being observed.
func (p *Preloader) ObserverGroups() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.groups)
}

// Visible loads the observed families the client reports as on screen.
// Families that were never observed are ignored. It returns the number of
// loads started.
func (p *Preloader) Visible(ctx context.Context, category entities.Category, families []string) int {
	var toLoad []entities.FontRecord

	p.mu.Lock()
	for _, f := range families {
		observed := false
		if category != "" {
			observed = p.groups[category][f]
		} else {
			for _, g := range p.groups {
				if g[f] {
					observed = true
					break
				}
			}
		}
		if !observed {
			continue
		}
		if rec, ok := p.known[f]; ok && !p.done[f] && !p.inFlight[f] {
			toLoad = append(toLoad, rec)
		}
	}
	p.mu.Unlock()

	if len(toLoad) > 0 {
		p.Immediate(ctx, toLoad)
	}
	return len(toLoad)
}

// Defer queues records for background loading in paced chunks.
func (p *Preloader) Defer(records []entities.FontRecord) {
	p.remember(records)

	p.mu.Lock()
	scheduler := p.scheduler
	p.mu.Unlock()

	pace := p.network.Pace()
	for i, start := 0, 0; start < len(records); i, start = i+1, start+p.cfg.ChunkSize {
		end := start + p.cfg.ChunkSize
		if end > len(records) {
			end = len(records)
		}
		families := make([]string, 0, end-start)
		for _, r := range records[start:end] {
			families = append(families, r.Family)
		}
		if err := scheduler.ScheduleChunk(families, time.Duration(i+1)*pace); err != nil {
			logrus.WithError(err).Warn("Failed to schedule deferred font preload")
		}
	}
}

// LoadFamilies loads known families that are not loaded yet. Deferred chunk
// schedulers call this when a chunk is due.
func (p *Preloader) LoadFamilies(ctx context.Context, families []string) int {
	var toLoad []entities.FontRecord
	p.mu.Lock()
	for _, f := range families {
		if rec, ok := p.known[f]; ok && !p.done[f] && !p.inFlight[f] {
			toLoad = append(toLoad, rec)
		}
	}
	p.mu.Unlock()

	p.Immediate(ctx, toLoad)
	return len(toLoad)
}

// Loaded reports whether family has been preloaded.
func (p *Preloader) Loaded(family string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done[family]
}

func (p *Preloader) remember(records []entities.FontRecord) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, r := range records {
		if _, ok := p.known[r.Family]; !ok {
			p.known[r.Family] = r
		}
	}
}

func (p *Preloader) load(ctx context.Context, r entities.FontRecord) {
	p.mu.Lock()
	if p.done[r.Family] || p.inFlight[r.Family] {
		p.mu.Unlock()
		return
	}
	p.inFlight[r.Family] = true
	p.mu.Unlock()

	err := p.registrar.RegisterFont(ctx, r.Family, r.Files[entities.VariantRegular], Descriptor{Style: "normal", Weight: 400})

	p.mu.Lock()
	delete(p.inFlight, r.Family)
	if err == nil {
		p.done[r.Family] = true
	}
	p.mu.Unlock()

	if err != nil {
		logrus.WithFields(logrus.Fields{
			"family":   r.Family,
			"provider": r.Provider,
			"error":    err,
		}).Debug("Font preload failed")
	}
}

// timerScheduler runs chunks on timers in the current process.
type timerScheduler struct {
	p *Preloader
}

func (s *timerScheduler) ScheduleChunk(families []string, delay time.Duration) error {
	time.AfterFunc(delay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		s.p.LoadFamilies(ctx, families)
	})
	return nil
}
