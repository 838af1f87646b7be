// Package kmercodec encodes k-mer windows into fixed-width integer codes.
// Nucleotide k-mers are stored canonically (the smaller of the forward and
// reverse complement encodings), so both strands map to the same code.
package kmercodec

import "fmt"

// Alphabet selects the symbol set used by a Codec
type Alphabet int

const (
	// DNA is the 4 letter nucleotide alphabet (2 bits per symbol)
	DNA Alphabet = iota

	// Protein is the 20 letter amino acid alphabet (5 bits per symbol)
	Protein
)

// dnaSymbols and proteinSymbols map symbol codes back to bytes
const dnaSymbols = "ACGT"
const proteinSymbols = "ACDEFGHIKLMNPQRSTVWY"

// MaxK returns the largest k-mer size that fits a uint64 for this alphabet
func (alpha Alphabet) MaxK() int {
	if alpha == Protein {
		return 12
	}
	return 32
}

// String satisfies the Stringer interface
func (alpha Alphabet) String() string {
	if alpha == Protein {
		return "protein"
	}
	return "dna"
}

// InvalidSymbolError reports a symbol outside the declared alphabet.
// Callers recover by skipping the offending window, never by aborting
// the sequence.
type InvalidSymbolError struct {
	Symbol byte
	Pos    int
}

// Error satisfies the error interface
func (e *InvalidSymbolError) Error() string {
	return fmt.Sprintf("invalid symbol '%c' at position %d", e.Symbol, e.Pos)
}

// Codec encodes and decodes k-mers for a fixed k and alphabet
type Codec struct {
	kSize   int
	alpha   Alphabet
	bits    uint      // bits used per symbol
	mask    uint64    // masks a full k-mer code
	symMask uint64    // masks a single symbol code
	shift   uint      // offset of the leftmost symbol in a code
	lut     [256]byte // symbol -> code (0xFF marks invalid symbols)
	symbols string    // code -> symbol
}

// New is the Codec constructor
func New(kSize int, alpha Alphabet) (*Codec, error) {
	if kSize < 1 || kSize > alpha.MaxK() {
		return nil, fmt.Errorf("k-mer size for %v alphabet must be between 1 and %d, got %d", alpha, alpha.MaxK(), kSize)
	}
	codec := &Codec{
		kSize: kSize,
		alpha: alpha,
	}
	switch alpha {
	case Protein:
		codec.bits = 5
		codec.symbols = proteinSymbols
	default:
		codec.bits = 2
		codec.symbols = dnaSymbols
	}
	codec.mask = ^uint64(0) >> uint(64 - codec.bits*uint(kSize))
	codec.symMask = (uint64(1) << codec.bits) - 1
	codec.shift = codec.bits * uint(kSize-1)

	// build the symbol lookup table (case insensitive)
	for i := range codec.lut {
		codec.lut[i] = 0xFF
	}
	for code, symbol := range []byte(codec.symbols) {
		codec.lut[symbol] = byte(code)
		codec.lut[symbol|0x20] = byte(code)
	}
	return codec, nil
}

// KmerSize returns the k-mer size the codec was built for
func (codec *Codec) KmerSize() int {
	return codec.kSize
}

// Alphabet returns the alphabet the codec was built for
func (codec *Codec) Alphabet() Alphabet {
	return codec.alpha
}

// Encode converts a single window of kSize symbols to its canonical code.
// It fails with an InvalidSymbolError if the window holds a symbol outside
// the alphabet.
func (codec *Codec) Encode(window []byte) (uint64, error) {
	if len(window) != codec.kSize {
		return 0, fmt.Errorf("window length (%d) does not match k-mer size (%d)", len(window), codec.kSize)
	}
	var fwd, rc uint64
	for i := 0; i < codec.kSize; i++ {
		c := codec.lut[window[i]]
		if c == 0xFF {
			return 0, &InvalidSymbolError{Symbol: window[i], Pos: i}
		}
		fwd = (fwd << codec.bits) | uint64(c)
		if codec.alpha == DNA {
			rc = (rc >> codec.bits) | (uint64(3)-uint64(c))<<codec.shift
		}
	}

	// protein sequences are single stranded, no canonical step
	if codec.alpha == Protein {
		return fwd, nil
	}
	if rc < fwd {
		return rc, nil
	}
	return fwd, nil
}

// Decode converts a code back to its canonical symbol window
func (codec *Codec) Decode(code uint64) []byte {
	window := make([]byte, codec.kSize)
	for i := codec.kSize - 1; i >= 0; i-- {
		window[i] = codec.symbols[code&codec.symMask]
		code >>= codec.bits
	}
	return window
}

// ForEachKmer slides a k sized window along a sequence and calls fn with the
// canonical code of every valid window, in sequence order. Windows holding a
// symbol outside the alphabet are skipped and the rolling encoder restarts
// after the bad symbol. Sequences shorter than k produce no calls.
func (codec *Codec) ForEachKmer(seq []byte, fn func(code uint64)) {
	var fwd, rc uint64
	run := 0
	for i := 0; i < len(seq); i++ {
		c := codec.lut[seq[i]]
		if c == 0xFF {
			// restart the window after the offending symbol
			fwd, rc, run = 0, 0, 0
			continue
		}
		fwd = ((fwd << codec.bits) | uint64(c)) & codec.mask
		if codec.alpha == DNA {
			rc = (rc >> codec.bits) | (uint64(3)-uint64(c))<<codec.shift
		}
		run++
		if run < codec.kSize {
			continue
		}
		if codec.alpha == DNA && rc < fwd {
			fn(rc)
		} else {
			fn(fwd)
		}
	}
}

// revComp returns the code of the reverse complement of a nucleotide code
func (codec *Codec) revComp(code uint64) uint64 {
	var rc uint64
	for i := 0; i < codec.kSize; i++ {
		rc = (rc << codec.bits) | (uint64(3) - (code & codec.symMask))
		code >>= codec.bits
	}
	return rc
}

// canonical maps a forward code to the canonical code for the node
func (codec *Codec) canonical(code uint64) uint64 {
	if codec.alpha == Protein {
		return code
	}
	if rc := codec.revComp(code); rc < code {
		return rc
	}
	return code
}

// Neighbors returns the canonical codes of every k-mer reachable from the
// given code by dropping a symbol from one end and appending one at the
// other (a k-1 overlap). Adjacency is computed on demand, never stored;
// the returned slice may contain duplicates and the query code itself
// (palindromic extensions), callers are expected to track visited nodes.
func (codec *Codec) Neighbors(code uint64) []uint64 {
	numSymbols := uint64(len(codec.symbols))
	neighbors := make([]uint64, 0, 2*numSymbols)
	for c := uint64(0); c < numSymbols; c++ {
		right := ((code << codec.bits) | c) & codec.mask
		neighbors = append(neighbors, codec.canonical(right))
		left := (code >> codec.bits) | c<<codec.shift
		neighbors = append(neighbors, codec.canonical(left))
	}
	return neighbors
}
