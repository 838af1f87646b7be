// Package nbhd partitions a counting graph into tag rooted neighborhoods. A
// neighborhood is the region reachable from one tag by breadth first
// traversal of the implicit adjacency relation, bounded by a traversal
// radius and stopping at nodes already claimed by an earlier tag. The first
// tag (in input order) to reach a node claims it, so the partition is
// deterministic for a given input.
package nbhd

import (
	"sync"

	"github.com/mhi-bio/mhi/src/countgraph"
)

// DefaultMinAbundance is the default minimum approximate count a node needs
// to be claimed; it filters likely sequencing error k-mers
const DefaultMinAbundance = 1

// DefaultMaxRadius is the default traversal radius (in graph edges from the
// tag). It matches the default tag density, so the tagged regions of a
// sequence always cover it
const DefaultMaxRadius = 200

// DefaultMaxSize is the default hard cap on nodes per neighborhood, bounding
// memory in highly connected or repetitive regions
const DefaultMaxSize = 65536

// Neighborhood is a tag rooted, connected set of graph nodes. Members hold
// node codes only, so a neighborhood stays valid after the graph is gone.
type Neighborhood struct {
	Tag     uint64   // the tag node the traversal started from
	Order   int      // tag encounter order, used to keep output deterministic
	Members []uint64 // every node claimed by this neighborhood, including the tag
	Partial bool     // set when the traversal hit the size cap and was truncated
}

// claimMap records which neighborhood owns each node. Claiming is a
// check-and-set so concurrent traversals can never double claim.
type claimMap struct {
	mu     sync.Mutex
	owners map[uint64]int
}

// newClaimMap is the claimMap constructor
func newClaimMap() *claimMap {
	return &claimMap{owners: make(map[uint64]int)}
}

// claim marks a node as owned by a neighborhood, returning false if an
// earlier traversal got there first
func (cm *claimMap) claim(code uint64, owner int) bool {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if _, taken := cm.owners[code]; taken {
		return false
	}
	cm.owners[code] = owner
	return true
}

// Partitioner expands tags into neighborhoods over a read-only graph. It must
// only be run after ingestion has fully finished.
type Partitioner struct {
	graph        *countgraph.Graph
	minAbundance uint32
	maxRadius    int
	maxSize      int
}

// NewPartitioner is the Partitioner constructor
func NewPartitioner(graph *countgraph.Graph, minAbundance uint32, maxRadius, maxSize int) *Partitioner {
	if minAbundance < 1 {
		minAbundance = DefaultMinAbundance
	}
	if maxRadius < 1 {
		maxRadius = DefaultMaxRadius
	}
	if maxSize < 1 {
		maxSize = DefaultMaxSize
	}
	return &Partitioner{
		graph:        graph,
		minAbundance: minAbundance,
		maxRadius:    maxRadius,
		maxSize:      maxSize,
	}
}

// Partition expands every tag, in input order, to the region it can reach
// within the traversal radius. Tags whose node was already claimed by an
// earlier neighborhood are degenerate and emit nothing; tags whose node fell
// below the abundance threshold are skipped the same way. Neighborhoods come
// back in tag encounter order.
//
// Tags are processed one at a time: the first-come claiming rule is an
// ordering dependent policy, and racing traversals would trade determinism
// for speed. The claim map is still safe for concurrent use, which keeps the
// door open for partitioning disjoint tag sets in parallel.
func (partitioner *Partitioner) Partition(tags []uint64) []*Neighborhood {
	claims := newClaimMap()
	neighborhoods := make([]*Neighborhood, 0, len(tags))
	for _, tag := range tags {
		if neighborhood := partitioner.expand(tag, len(neighborhoods), claims); neighborhood != nil {
			neighborhoods = append(neighborhoods, neighborhood)
		}
	}
	return neighborhoods
}

// frontierNode tracks how far a traversal has come from its tag
type frontierNode struct {
	code  uint64
	depth int
}

// expand runs one bounded breadth first traversal from a tag
func (partitioner *Partitioner) expand(tag uint64, order int, claims *claimMap) *Neighborhood {
	if partitioner.graph.Get(tag) < partitioner.minAbundance {
		return nil
	}
	if !claims.claim(tag, order) {
		return nil
	}
	neighborhood := &Neighborhood{
		Tag:     tag,
		Order:   order,
		Members: []uint64{tag},
	}
	frontier := []frontierNode{{code: tag}}
	for len(frontier) > 0 {
		next := frontier[0]
		frontier = frontier[1:]
		if next.depth == partitioner.maxRadius {
			continue
		}
		for _, neighbor := range partitioner.graph.Neighbors(next.code, partitioner.minAbundance) {
			if len(neighborhood.Members) >= partitioner.maxSize {
				// hard resource cap: truncate and carry on
				neighborhood.Partial = true
				return neighborhood
			}
			if !claims.claim(neighbor, order) {
				continue
			}
			neighborhood.Members = append(neighborhood.Members, neighbor)
			frontier = append(frontier, frontierNode{code: neighbor, depth: next.depth + 1})
		}
	}
	return neighborhood
}
