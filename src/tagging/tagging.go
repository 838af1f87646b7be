// Package tagging marks a sparse, deterministic subset of counting graph
// nodes during sequence ingestion. Tags seed the neighborhood partition, so
// placement must be reproducible: it depends only on position along each
// input sequence, never on k-mer content or worker scheduling.
package tagging

import (
	"sort"
	"sync"
)

// DefaultDensity is the default tag spacing (in consumed k-mers) along a sequence
const DefaultDensity = 200

// Tracker decides tag placement along a single sequence. The first consumed
// k-mer is always tagged, so no sequence is ever left untagged, then one tag
// is placed per density window.
type Tracker struct {
	density   int
	sinceLast int
	consumed  int
}

// NewTracker is the Tracker constructor
func NewTracker(density int) *Tracker {
	if density < 1 {
		density = 1
	}
	return &Tracker{density: density}
}

// Next reports whether the next consumed k-mer should be tagged
func (tracker *Tracker) Next() bool {
	tag := false
	if tracker.consumed == 0 || tracker.sinceLast == tracker.density {
		tag = true
		tracker.sinceLast = 0
	}
	tracker.consumed++
	tracker.sinceLast++
	return tag
}

// Consumed returns the number of k-mers seen by the tracker
func (tracker *Tracker) Consumed() int {
	return tracker.consumed
}

// tagSite records where a tag was placed
type tagSite struct {
	code     uint64
	seqID    int
	position int
}

// Store collects tags from ingestion workers. Add is safe for concurrent
// use; Tags orders the collected sites by (sequence, position) so the final
// tag order matches input order no matter how sequences were scheduled
// across workers.
type Store struct {
	mu    sync.Mutex
	sites []tagSite
}

// NewStore is the Store constructor
func NewStore() *Store {
	return &Store{}
}

// Add records a tagged node
func (store *Store) Add(code uint64, seqID, position int) {
	store.mu.Lock()
	store.sites = append(store.sites, tagSite{code: code, seqID: seqID, position: position})
	store.mu.Unlock()
}

// Count returns the number of tag sites recorded, including duplicates
func (store *Store) Count() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.sites)
}

// Tags returns the tagged node codes in input order, deduplicated so a node
// tagged at several sites keeps only its first encounter.
func (store *Store) Tags() []uint64 {
	store.mu.Lock()
	defer store.mu.Unlock()
	sorted := make([]tagSite, len(store.sites))
	copy(sorted, store.sites)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].seqID != sorted[j].seqID {
			return sorted[i].seqID < sorted[j].seqID
		}
		return sorted[i].position < sorted[j].position
	})
	seen := make(map[uint64]struct{}, len(sorted))
	tags := make([]uint64, 0, len(sorted))
	for _, site := range sorted {
		if _, ok := seen[site.code]; ok {
			continue
		}
		seen[site.code] = struct{}{}
		tags = append(tags, site.code)
	}
	return tags
}
