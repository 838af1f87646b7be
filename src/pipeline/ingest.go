package pipeline

import (
	"log"
	"sync"

	"github.com/mhi-bio/mhi/src/countgraph"
	"github.com/mhi-bio/mhi/src/kmercodec"
	"github.com/mhi-bio/mhi/src/misc"
	"github.com/mhi-bio/mhi/src/seqio"
	"github.com/mhi-bio/mhi/src/tagging"
)

// ingestResult carries the loaded graph and the ordered tag set over the
// barrier between ingestion and partitioning
type ingestResult struct {
	graph *countgraph.Graph
	tags  []uint64
}

// GraphBuilder is a pipeline process that consumes sequence records into the
// counting graph and places tags. Sequences are split across NumProc workers;
// counter updates are atomic and tag order is restored from record ids, so
// the result does not depend on scheduling. The graph and tags are only
// emitted once every worker has finished (the ingestion barrier).
type GraphBuilder struct {
	info   *Info
	input  chan *seqio.Sequence
	output chan *ingestResult
}

// NewGraphBuilder is the constructor
func NewGraphBuilder(info *Info) *GraphBuilder {
	return &GraphBuilder{info: info, output: make(chan *ingestResult, 1)}
}

// Connect is the method to connect the GraphBuilder to the sequence streamer
func (proc *GraphBuilder) Connect(previous *SeqStreamer) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *GraphBuilder) Run() {
	defer close(proc.output)
	codec, err := kmercodec.New(proc.info.KmerSize, proc.info.Alphabet())
	misc.ErrorCheck(err)
	graph, err := countgraph.New(codec, proc.info.TableSize, proc.info.NumTables)
	misc.ErrorCheck(err)
	tags := tagging.NewStore()

	// launch the ingestion workers
	var wg sync.WaitGroup
	var mu sync.Mutex
	totalKmers, shortSeqs := 0, 0
	for i := 0; i < proc.info.NumProc; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			kmers, short := 0, 0
			for record := range proc.input {
				consumed := graph.ConsumeAndTag(record.Seq, record.SeqID, proc.info.TagDensity, tags)
				if consumed == 0 {
					short++
				}
				kmers += consumed
			}
			mu.Lock()
			totalKmers += kmers
			shortSeqs += short
			mu.Unlock()
		}()
	}
	wg.Wait()

	// ingestion is done: report and hand the read-only graph over
	log.Printf("\tk-mers consumed: %d", totalKmers)
	if shortSeqs != 0 {
		log.Printf("\tsequences shorter than k (skipped): %d", shortSeqs)
	}
	log.Printf("\ttag sites placed: %d", tags.Count())
	log.Printf("\testimated false positive rate: %.4f", graph.FalsePositiveRate())
	if err := graph.CheckLoad(); err != nil {
		// overloaded tables inflate counts but do not invalidate the run
		log.Printf("\tWARNING: %v", err)
	}
	proc.output <- &ingestResult{graph: graph, tags: tags.Tags()}
}
