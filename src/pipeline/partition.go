package pipeline

import (
	"log"

	"github.com/mhi-bio/mhi/src/nbhd"
)

// NbhdPartitioner is a pipeline process that expands the tag set into
// neighborhoods once ingestion has finished. Traversal is read-only over the
// graph and neighborhoods are streamed out in tag encounter order.
type NbhdPartitioner struct {
	info   *Info
	input  chan *ingestResult
	output chan *nbhd.Neighborhood
}

// NewNbhdPartitioner is the constructor
func NewNbhdPartitioner(info *Info) *NbhdPartitioner {
	return &NbhdPartitioner{info: info, output: make(chan *nbhd.Neighborhood, BUFFERSIZE)}
}

// Connect is the method to connect the NbhdPartitioner to the graph builder
func (proc *NbhdPartitioner) Connect(previous *GraphBuilder) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *NbhdPartitioner) Run() {
	defer close(proc.output)
	for result := range proc.input {
		log.Printf("partitioning graph from %d tags...", len(result.tags))
		partitioner := nbhd.NewPartitioner(result.graph, proc.info.MinAbundance, proc.info.MaxRadius, proc.info.MaxNeighborhood)
		neighborhoods := partitioner.Partition(result.tags)
		truncated := 0
		for _, neighborhood := range neighborhoods {
			if neighborhood.Partial {
				truncated++
			}
			proc.output <- neighborhood
		}
		log.Printf("\tneighborhoods: %d", len(neighborhoods))
		if truncated != 0 {
			log.Printf("\tneighborhoods truncated at the traversal bound: %d", truncated)
		}
	}
}
