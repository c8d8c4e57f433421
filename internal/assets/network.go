package assets

import (
	"strings"
	"sync"
	"time"
)

// EffectiveType is the Network Information API's connection class, as sent
// by browsers in the ECT client hint.
type EffectiveType string

const (
	EffectiveSlow2G  EffectiveType = "slow-2g"
	Effective2G      EffectiveType = "2g"
	Effective3G      EffectiveType = "3g"
	Effective4G      EffectiveType = "4g"
	EffectiveUnknown EffectiveType = ""
)

// ParseEffectiveType normalises an ECT header value.
func ParseEffectiveType(s string) EffectiveType {
	switch t := EffectiveType(strings.ToLower(strings.TrimSpace(s))); t {
	case EffectiveSlow2G, Effective2G, Effective3G, Effective4G:
		return t
	}
	return EffectiveUnknown
}

// NetworkQuality tracks the most recent connection signal reported by the
// client and turns it into a pause between deferred preload chunks.
type NetworkQuality struct {
	mu       sync.RWMutex
	current  EffectiveType
	saveData bool
	base     time.Duration
}

// NewNetworkQuality creates a tracker with the pause used when the network
// class is 4g or unknown.
func NewNetworkQuality(base time.Duration) *NetworkQuality {
	if base <= 0 {
		base = 250 * time.Millisecond
	}
	return &NetworkQuality{base: base}
}

// Report records a new signal. Unknown values leave the previous one in place.
func (n *NetworkQuality) Report(t EffectiveType, saveData bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if t != EffectiveUnknown {
		n.current = t
	}
	n.saveData = saveData
}

// Current returns the last reported connection class.
func (n *NetworkQuality) Current() EffectiveType {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.current
}

// Pace returns how long to wait between deferred chunks.
func (n *NetworkQuality) Pace() time.Duration {
	n.mu.RLock()
	defer n.mu.RUnlock()

	pace := n.base
	switch n.current {
	case EffectiveSlow2G, Effective2G:
		pace = n.base * 8
	case Effective3G:
		pace = n.base * 3
	}
	if n.saveData {
		pace *= 2
	}
	return pace
}
