/*
	the seqio package is the sequence source for MHI: it streams named
	sequence records from FASTA files (plain or gzipped) using biogo
*/
package seqio

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/biogo/biogo/alphabet"
	bioseqio "github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// Sequence is one input record. Names are carried for diagnostics only; the
// core pipeline consumes the symbols.
type Sequence struct {
	Name  string
	SeqID int // position of the record in the input, used to keep tag order stable
	Seq   []byte
}

// Reader streams sequence records from a FASTA file. Records are produced
// lazily and the stream is not restartable without reopening.
type Reader struct {
	fh      *os.File
	gz      *gzip.Reader
	scanner *bioseqio.Scanner
	seqID   int
}

// NewReader opens a FASTA file (gzipped input is detected by extension) and
// prepares a record stream over the requested alphabet
func NewReader(path string, protein bool) (*Reader, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	reader := &Reader{fh: fh}
	var src io.Reader = fh
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			fh.Close()
			return nil, err
		}
		reader.gz = gz
		src = gz
	}
	var template *linear.Seq
	if protein {
		template = linear.NewSeq("", nil, alphabet.Protein)
	} else {
		template = linear.NewSeq("", nil, alphabet.DNA)
	}
	reader.scanner = bioseqio.NewScanner(fasta.NewReader(src, template))
	return reader, nil
}

// Read returns the next record, or io.EOF once the stream is finished
func (reader *Reader) Read() (*Sequence, error) {
	if !reader.scanner.Next() {
		if err := reader.scanner.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	s := reader.scanner.Seq().(*linear.Seq)
	symbols := make([]byte, len(s.Seq))
	for i, letter := range s.Seq {
		symbols[i] = byte(letter)
	}
	record := &Sequence{
		Name:  s.Name(),
		SeqID: reader.seqID,
		Seq:   symbols,
	}
	reader.seqID++
	return record, nil
}

// Close releases the underlying file handles
func (reader *Reader) Close() error {
	if reader.gz != nil {
		reader.gz.Close()
	}
	return reader.fh.Close()
}
