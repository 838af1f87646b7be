package pipeline

import (
	"io"
	"log"

	"github.com/mhi-bio/mhi/src/misc"
	"github.com/mhi-bio/mhi/src/seqio"
)

// SeqStreamer is a pipeline process that streams sequence records from the
// input file. An unreadable input is fatal before any output is produced.
type SeqStreamer struct {
	info   *Info
	output chan *seqio.Sequence
}

// NewSeqStreamer is the constructor
func NewSeqStreamer(info *Info) *SeqStreamer {
	return &SeqStreamer{info: info, output: make(chan *seqio.Sequence, BUFFERSIZE)}
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SeqStreamer) Run() {
	defer close(proc.output)
	reader, err := seqio.NewReader(proc.info.InputFile, proc.info.Protein)
	misc.ErrorCheck(err)
	defer reader.Close()
	records := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		misc.ErrorCheck(err)
		records++
		proc.output <- record
	}
	log.Printf("\tsequence records streamed: %d", records)
}
