// Package index holds the ordered collection of neighborhood sketches
// produced by one run and its on-disk format. The build parameters are
// stored once per index so comparison tooling can validate compatibility
// before comparing two indexes.
package index

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"gopkg.in/vmihailenco/msgpack.v2"

	"github.com/mhi-bio/mhi/src/minhash"
)

// FileExtension is the suffix used for saved indexes
const FileExtension = ".mhi"

// Index is the write-once collection of sketches for one run
type Index struct {
	Version     string
	KmerSize    int
	SketchSize  int
	HashModulus uint64
	Protein     bool
	Sketches    []*minhash.Sketch
}

// New is the Index constructor
func New(version string, kmerSize, sketchSize int, hashModulus uint64, protein bool) *Index {
	return &Index{
		Version:     version,
		KmerSize:    kmerSize,
		SketchSize:  sketchSize,
		HashModulus: hashModulus,
		Protein:     protein,
	}
}

// Add appends a sketch; insertion order is preserved on disk
func (index *Index) Add(sketch *minhash.Sketch) {
	index.Sketches = append(index.Sketches, sketch)
}

// Dump is a method to write the index to file. The data lands in a temporary
// file first and is renamed into place, so a crashed or interrupted run never
// leaves a partial index behind.
func (index *Index) Dump(path string) error {
	data, err := msgpack.Marshal(index)
	if err != nil {
		return err
	}
	tmp, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path)+".tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Load is a method to read an index from file
func (index *Index) Load(path string) error {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return err
	}
	return index.LoadFromBytes(data)
}

// LoadFromBytes is a method to populate an Index from a byte slice
func (index *Index) LoadFromBytes(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("no data received to load the index from")
	}
	if err := msgpack.Unmarshal(data, index); err != nil {
		return err
	}

	// some quick sanity checks
	if index.KmerSize < 1 || index.SketchSize < 1 || index.HashModulus < 2 {
		return fmt.Errorf("index is corrupted (k=%d, sketch size=%d, modulus=%d)", index.KmerSize, index.SketchSize, index.HashModulus)
	}
	for _, sketch := range index.Sketches {
		if len(sketch.Values) > index.SketchSize {
			return fmt.Errorf("index is corrupted (sketch longer than sketch size)")
		}
	}
	return nil
}

// CompatibleWith checks that two indexes were built with the same parameters
// and can be meaningfully compared
func (index *Index) CompatibleWith(other *Index) error {
	if index.KmerSize != other.KmerSize {
		return fmt.Errorf("k-mer size mismatch: %d vs %d", index.KmerSize, other.KmerSize)
	}
	if index.SketchSize != other.SketchSize {
		return fmt.Errorf("sketch size mismatch: %d vs %d", index.SketchSize, other.SketchSize)
	}
	if index.HashModulus != other.HashModulus {
		return fmt.Errorf("hash modulus mismatch: %d vs %d", index.HashModulus, other.HashModulus)
	}
	if index.Protein != other.Protein {
		return fmt.Errorf("alphabet mismatch: protein vs nucleotide")
	}
	return nil
}
