package assets

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/wordmark/internal/entities"
)

type fakeRegistrar struct {
	mu       sync.Mutex
	families []string
	fail     map[string]bool
}

func (f *fakeRegistrar) RegisterFont(_ context.Context, family, _ string, _ Descriptor) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[family] {
		return fmt.Errorf("boom")
	}
	f.families = append(f.families, family)
	return nil
}

func (f *fakeRegistrar) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.families)
}

type recordingScheduler struct {
	chunks [][]string
	delays []time.Duration
}

func (s *recordingScheduler) ScheduleChunk(families []string, delay time.Duration) error {
	s.chunks = append(s.chunks, families)
	s.delays = append(s.delays, delay)
	return nil
}

func records(n int) []entities.FontRecord {
	out := make([]entities.FontRecord, n)
	for i := range out {
		cat := entities.CategorySansSerif
		if i%2 == 1 {
			cat = entities.CategorySerif
		}
		out[i] = entities.FontRecord{
			Family:   fmt.Sprintf("Font %d", i),
			Category: cat,
			Files:    map[entities.Variant]string{entities.VariantRegular: fmt.Sprintf("https://example.com/%d.woff2", i)},
		}
	}
	return out
}

func TestPreloader_Plan(t *testing.T) {
	reg := &fakeRegistrar{}
	sched := &recordingScheduler{}
	p := NewPreloader(reg, NewNetworkQuality(100*time.Millisecond), PreloaderConfig{ImmediateCount: 2, ChunkSize: 3})
	p.SetScheduler(sched)

	recs := records(10)
	p.Plan(context.Background(), recs, []string{"Font 7"})

	// Font 0, Font 1 (first N) and Font 7 (popular).
	assert.Equal(t, 3, reg.count())
	assert.True(t, p.Loaded("Font 7"))
	assert.Equal(t, 2, p.ObserverGroups())

	// Remaining 7 records in chunks of 3, paced.
	require.Len(t, sched.chunks, 3)
	assert.Equal(t, []string{"Font 2", "Font 3", "Font 4"}, sched.chunks[0])
	assert.Len(t, sched.chunks[2], 1)
	assert.Equal(t, []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 300 * time.Millisecond}, sched.delays)
}

func TestPreloader_Visible(t *testing.T) {
	reg := &fakeRegistrar{}
	p := NewPreloader(reg, nil, PreloaderConfig{})
	p.SetScheduler(&recordingScheduler{})

	p.Observe(records(4))

	started := p.Visible(context.Background(), entities.CategorySerif, []string{"Font 1", "Font 0", "Unknown"})
	assert.Equal(t, 1, started, "only observed serif families load")

	started = p.Visible(context.Background(), "", []string{"Font 0", "Font 1"})
	assert.Equal(t, 1, started, "Font 1 is already loaded")
	assert.Equal(t, 2, reg.count())
}

func TestPreloader_LoadFamiliesSkipsLoaded(t *testing.T) {
	reg := &fakeRegistrar{fail: map[string]bool{"Font 1": true}}
	p := NewPreloader(reg, nil, PreloaderConfig{})
	p.SetScheduler(&recordingScheduler{})
	p.Defer(records(3))

	p.LoadFamilies(context.Background(), []string{"Font 0", "Font 1", "Font 2"})
	assert.Equal(t, 2, reg.count())
	assert.False(t, p.Loaded("Font 1"))

	// Failed families are retried on the next request, loaded ones are not.
	loaded := p.LoadFamilies(context.Background(), []string{"Font 0", "Font 1"})
	assert.Equal(t, 1, loaded)
}

func TestNetworkQuality_Pace(t *testing.T) {
	n := NewNetworkQuality(100 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, n.Pace())

	n.Report(ParseEffectiveType("3G"), false)
	assert.Equal(t, 300*time.Millisecond, n.Pace())

	n.Report(ParseEffectiveType("slow-2g"), true)
	assert.Equal(t, 1600*time.Millisecond, n.Pace())

	n.Report(ParseEffectiveType("bogus"), false)
	assert.Equal(t, EffectiveSlow2G, n.Current())
	assert.Equal(t, 800*time.Millisecond, n.Pace())
}
