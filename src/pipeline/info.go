package pipeline

import (
	"github.com/mhi-bio/mhi/src/kmercodec"
)

// Info stores the runtime information for one indexing run
type Info struct {
	Version         string
	NumProc         int
	KmerSize        int
	SketchSize      int
	HashModulus     uint64
	Protein         bool
	TagDensity      int
	TableSize       uint64
	NumTables       int
	MinAbundance    uint32
	MaxRadius       int
	MaxNeighborhood int
	InputFile       string
	OutFile         string
	Plot            bool
}

// Alphabet returns the codec alphabet matching the runtime flags
func (info *Info) Alphabet() kmercodec.Alphabet {
	if info.Protein {
		return kmercodec.Protein
	}
	return kmercodec.DNA
}
