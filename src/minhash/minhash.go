// Package minhash computes bottom-N MinHash sketches for graph neighborhoods.
// Nucleotide k-mers up to 31 bases are hashed with ntHash; longer nucleotide
// k-mers and protein k-mers are hashed with murmur3 over the canonical window
// (so sketches stay strand independent either way). Every hash is reduced by
// a large prime modulus before the N smallest values are kept.
package minhash

import (
	"container/heap"
	"fmt"
	"sort"

	"github.com/spaolacci/murmur3"
	"github.com/will-rowe/ntHash"

	"github.com/mhi-bio/mhi/src/kmercodec"
	"github.com/mhi-bio/mhi/src/nbhd"
)

// CANONICAL tells ntHash to return the canonical k-mer hash
const CANONICAL bool = true

// maxNtHashK is the largest k-mer size ntHash accepts
const maxNtHashK = 31

// DefaultSketchSize is the default number of minimum hash values kept per neighborhood
const DefaultSketchSize = 20

// DefaultHashModulus is the default large prime the k-mer hashes are reduced by
const DefaultHashModulus = uint64(9999999967)

// hashSeed is the fixed murmur3 seed for k-mers ntHash can't handle
const hashSeed = 42

// Sketch is the bottom-N MinHash signature of one neighborhood. It holds no
// reference to the graph, so it stays valid after the graph is discarded.
type Sketch struct {
	Tag      uint64   // the neighborhood's representative identity
	NumKmers int      // number of distinct k-mers the neighborhood held
	Partial  bool     // carried over from a truncated traversal
	Values   []uint64 // the sketch itself, sorted ascending
}

// Undersized reports whether the neighborhood held fewer distinct k-mers
// than the sketch size; comparison logic must not treat such a sketch as
// equal length.
func (sketch *Sketch) Undersized(sketchSize int) bool {
	return len(sketch.Values) < sketchSize
}

// Sketcher computes sketches with a fixed size and modulus
type Sketcher struct {
	codec      *kmercodec.Codec
	sketchSize int
	modulus    uint64
}

// NewSketcher is the Sketcher constructor
func NewSketcher(codec *kmercodec.Codec, sketchSize int, modulus uint64) (*Sketcher, error) {
	if codec == nil {
		return nil, fmt.Errorf("no codec provided")
	}
	if sketchSize < 1 {
		return nil, fmt.Errorf("sketch size must be positive, got %d", sketchSize)
	}
	if modulus < 2 {
		return nil, fmt.Errorf("hash modulus must be at least 2, got %d", modulus)
	}
	return &Sketcher{
		codec:      codec,
		sketchSize: sketchSize,
		modulus:    modulus,
	}, nil
}

// hashKmer maps a node code to its sketch hash value. The decoded window is
// the canonical form of the k-mer, so hashing it directly is strand
// independent whichever hash function runs; murmur3 covers the protein
// alphabet and the nucleotide k-mer sizes beyond ntHash's 31 base limit.
func (sketcher *Sketcher) hashKmer(code uint64) (uint64, error) {
	window := sketcher.codec.Decode(code)
	if sketcher.codec.Alphabet() == kmercodec.Protein || sketcher.codec.KmerSize() > maxNtHashK {
		return murmur3.Sum64WithSeed(window, hashSeed) % sketcher.modulus, nil
	}
	hasher, err := ntHash.New(&window, uint(sketcher.codec.KmerSize()))
	if err != nil {
		return 0, err
	}
	var hv uint64
	for h := range hasher.Hash(CANONICAL) {
		hv = h
	}
	return hv % sketcher.modulus, nil
}

// Sketch computes the bottom-N signature of a neighborhood: the sketchSize
// smallest distinct hash values over all member k-mers, sorted ascending.
// Neighborhoods with fewer distinct k-mers than the sketch size yield a
// shorter sketch, no padding.
func (sketcher *Sketcher) Sketch(neighborhood *nbhd.Neighborhood) (*Sketch, error) {
	minimums := &minsHeap{}
	heap.Init(minimums)
	seen := make(map[uint64]struct{}, len(neighborhood.Members))
	for _, member := range neighborhood.Members {
		hv, err := sketcher.hashKmer(member)
		if err != nil {
			return nil, fmt.Errorf("could not hash k-mer %d: %v", member, err)
		}
		// a hash collision between distinct members collapses to one value
		if _, ok := seen[hv]; ok {
			continue
		}
		seen[hv] = struct{}{}

		// if the heap isn't full yet, go ahead and add the hash
		if minimums.Len() < sketcher.sketchSize {
			heap.Push(minimums, hv)
			heap.Fix(minimums, 0)

			// or replace the largest retained value if this one is smaller
		} else if hv < (*minimums)[0] {
			(*minimums)[0] = hv
			heap.Fix(minimums, 0)
		}
	}
	values := make([]uint64, minimums.Len())
	copy(values, *minimums)
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
	return &Sketch{
		Tag:      neighborhood.Tag,
		NumKmers: len(neighborhood.Members),
		Partial:  neighborhood.Partial,
		Values:   values,
	}, nil
}

// Similarity estimates the Jaccard similarity of the k-mer sets behind two
// sketches from their shared minimums. Undersized sketches are legal input;
// callers wanting strict equal-length comparison should check Undersized
// first.
func Similarity(a, b *Sketch) float64 {
	if len(a.Values) == 0 || len(b.Values) == 0 {
		return 0.0
	}
	mins := make(map[uint64]struct{}, len(a.Values))
	for _, v := range a.Values {
		mins[v] = struct{}{}
	}
	intersect := 0
	for _, v := range b.Values {
		if _, ok := mins[v]; ok {
			intersect++
		}
	}
	maxLength := len(a.Values)
	if maxLength < len(b.Values) {
		maxLength = len(b.Values)
	}
	return float64(intersect) / float64(maxLength)
}
