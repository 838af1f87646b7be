// Package countgraph implements an approximate k-mer counting graph. Counts
// are held in a fixed number of array backed tables, each sized to a distinct
// prime, so memory use is bounded no matter how many distinct k-mers are
// seen. Hash collisions can only ever inflate a count, never lower it, which
// is what makes the structure safe to use as a lossy abundance filter.
//
// The graph stores no edges: two nodes are adjacent iff one can be made from
// the other by dropping a symbol at one end and appending one at the other,
// and both have been observed. Adjacency queries generate the candidate
// extensions on demand and check presence.
package countgraph

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"github.com/spaolacci/murmur3"

	"github.com/mhi-bio/mhi/src/kmercodec"
	"github.com/mhi-bio/mhi/src/tagging"
)

// DefaultTableSize is the default number of counters per table (the khmer-era 5e8 constant)
const DefaultTableSize = 500000000

// DefaultNumTables is the default number of counting tables
const DefaultNumTables = 2

// hashSeed is the fixed murmur3 seed used to derive table indices
const hashSeed = 42

// maxFalsePositiveRate is the collision rate above which CheckLoad complains
const maxFalsePositiveRate = 0.2

// ResourceExhaustedError reports that the counting tables are too small for
// the data. It is warning grade: counts stay usable, just increasingly
// inflated.
type ResourceExhaustedError struct {
	FalsePositiveRate float64
}

// Error satisfies the error interface
func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("counting tables overloaded (estimated false positive rate %.3f) - increase the table size", e.FalsePositiveRate)
}

// Graph is the approximate k-mer counting graph
type Graph struct {
	codec      *kmercodec.Codec
	tableSizes []uint64 // one distinct prime per table
	tables     [][]uint32
	occupied   []uint64 // per table count of non zero slots, updated atomically
}

// New is the Graph constructor. Each table is sized to a distinct prime at or
// below the requested size so one hash value yields independent indices.
func New(codec *kmercodec.Codec, tableSize uint64, numTables int) (*Graph, error) {
	if codec == nil {
		return nil, fmt.Errorf("no codec provided")
	}
	if tableSize < uint64(numTables)*2 || numTables < 1 {
		return nil, fmt.Errorf("bad table configuration (size %d, %d tables)", tableSize, numTables)
	}
	sizes, err := primesAtOrBelow(tableSize, numTables)
	if err != nil {
		return nil, err
	}
	graph := &Graph{
		codec:      codec,
		tableSizes: sizes,
		tables:     make([][]uint32, numTables),
		occupied:   make([]uint64, numTables),
	}
	for i, size := range sizes {
		graph.tables[i] = make([]uint32, size)
	}
	return graph, nil
}

// Codec returns the codec the graph was built with
func (graph *Graph) Codec() *kmercodec.Codec {
	return graph.codec
}

// hash derives the shared table hash for a node code
func hash(code uint64) uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], code)
	return murmur3.Sum64WithSeed(buf[:], hashSeed)
}

// Increment bumps the approximate count of a node. Safe for concurrent use
// by ingestion workers; each counter update is a single atomic add.
func (graph *Graph) Increment(code uint64) {
	h := hash(code)
	for i := range graph.tables {
		idx := h % graph.tableSizes[i]
		if atomic.AddUint32(&graph.tables[i][idx], 1) == 1 {
			atomic.AddUint64(&graph.occupied[i], 1)
		}
	}
}

// Get returns the approximate count of a node: the minimum over all tables,
// so it is bounded below by the true count and above by collisions. A zero
// means the node was never observed.
func (graph *Graph) Get(code uint64) uint32 {
	h := hash(code)
	min := uint32(0)
	for i := range graph.tables {
		count := atomic.LoadUint32(&graph.tables[i][h%graph.tableSizes[i]])
		if i == 0 || count < min {
			min = count
		}
	}
	return min
}

// Consume slides a k sized window across a sequence and counts every valid
// k-mer. Sequences shorter than k are a no-op. Returns the number of k-mers
// consumed.
func (graph *Graph) Consume(seq []byte) int {
	consumed := 0
	graph.codec.ForEachKmer(seq, func(code uint64) {
		graph.Increment(code)
		consumed++
	})
	return consumed
}

// ConsumeAndTag counts every valid k-mer in a sequence and records sparse
// tags in the supplied store: the first k-mer of the sequence, then one per
// density window. Returns the number of k-mers consumed.
func (graph *Graph) ConsumeAndTag(seq []byte, seqID, density int, tags *tagging.Store) int {
	tracker := tagging.NewTracker(density)
	position := 0
	graph.codec.ForEachKmer(seq, func(code uint64) {
		graph.Increment(code)
		if tracker.Next() {
			tags.Add(code, seqID, position)
		}
		position++
	})
	return tracker.Consumed()
}

// Neighbors returns the observed nodes adjacent to a code, keeping only
// those with an approximate count of at least minCount. The result is
// deduplicated and in a deterministic order.
func (graph *Graph) Neighbors(code uint64, minCount uint32) []uint64 {
	candidates := graph.codec.Neighbors(code)
	neighbors := make([]uint64, 0, len(candidates))
	seen := make(map[uint64]struct{}, len(candidates))
	for _, candidate := range candidates {
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		if graph.Get(candidate) >= minCount {
			neighbors = append(neighbors, candidate)
		}
	}
	return neighbors
}

// FalsePositiveRate estimates the chance that an unseen k-mer reports a non
// zero count, from the occupancy of each table.
func (graph *Graph) FalsePositiveRate() float64 {
	rate := 1.0
	for i := range graph.tables {
		rate *= float64(atomic.LoadUint64(&graph.occupied[i])) / float64(graph.tableSizes[i])
	}
	return rate
}

// CheckLoad returns a ResourceExhaustedError if the tables look too full to
// trust. Callers treat it as a warning, not a failure.
func (graph *Graph) CheckLoad() error {
	if rate := graph.FalsePositiveRate(); rate > maxFalsePositiveRate {
		return &ResourceExhaustedError{FalsePositiveRate: rate}
	}
	return nil
}
