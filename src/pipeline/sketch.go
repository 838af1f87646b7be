package pipeline

import (
	"log"
	"sort"
	"sync"

	"github.com/mhi-bio/mhi/src/index"
	"github.com/mhi-bio/mhi/src/kmercodec"
	"github.com/mhi-bio/mhi/src/minhash"
	"github.com/mhi-bio/mhi/src/misc"
	"github.com/mhi-bio/mhi/src/nbhd"
	"github.com/mhi-bio/mhi/src/reporting"
)

// orderedSketch pairs a sketch with its neighborhood's tag encounter order so
// the output order survives parallel sketching
type orderedSketch struct {
	order  int
	sketch *minhash.Sketch
}

// SketchMaker is a pipeline process that computes the MinHash sketch of each
// neighborhood. Sketching has no shared mutable state, so neighborhoods are
// spread across NumProc workers.
type SketchMaker struct {
	info   *Info
	input  chan *nbhd.Neighborhood
	output chan *orderedSketch
}

// NewSketchMaker is the constructor
func NewSketchMaker(info *Info) *SketchMaker {
	return &SketchMaker{info: info, output: make(chan *orderedSketch, BUFFERSIZE)}
}

// Connect is the method to connect the SketchMaker to the partitioner
func (proc *SketchMaker) Connect(previous *NbhdPartitioner) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *SketchMaker) Run() {
	defer close(proc.output)
	codec, err := kmercodec.New(proc.info.KmerSize, proc.info.Alphabet())
	misc.ErrorCheck(err)
	sketcher, err := minhash.NewSketcher(codec, proc.info.SketchSize, proc.info.HashModulus)
	misc.ErrorCheck(err)
	var wg sync.WaitGroup
	for i := 0; i < proc.info.NumProc; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for neighborhood := range proc.input {
				sketch, err := sketcher.Sketch(neighborhood)
				misc.ErrorCheck(err)
				proc.output <- &orderedSketch{order: neighborhood.Order, sketch: sketch}
			}
		}()
	}
	wg.Wait()
}

// IndexWriter is the final pipeline process: it collects the sketches,
// restores tag encounter order and writes the index file. The file is only
// written after the whole pipeline has completed, via an atomic rename, so an
// interrupted run leaves nothing behind.
type IndexWriter struct {
	info  *Info
	input chan *orderedSketch
}

// NewIndexWriter is the constructor
func NewIndexWriter(info *Info) *IndexWriter {
	return &IndexWriter{info: info}
}

// Connect is the method to connect the IndexWriter to the sketch maker
func (proc *IndexWriter) Connect(previous *SketchMaker) {
	proc.input = previous.output
}

// Run is the method to run this process, which satisfies the pipeline interface
func (proc *IndexWriter) Run() {
	var collected []*orderedSketch
	for sketch := range proc.input {
		collected = append(collected, sketch)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].order < collected[j].order })

	newIndex := index.New(proc.info.Version, proc.info.KmerSize, proc.info.SketchSize, proc.info.HashModulus, proc.info.Protein)
	undersized := 0
	for _, entry := range collected {
		if entry.sketch.Undersized(proc.info.SketchSize) {
			undersized++
		}
		newIndex.Add(entry.sketch)
	}
	log.Printf("writing index to \"%v\"...", proc.info.OutFile)
	log.Printf("\tsketches: %d", len(newIndex.Sketches))
	if undersized != 0 {
		log.Printf("\tundersized sketches: %d", undersized)
	}
	misc.ErrorCheck(newIndex.Dump(proc.info.OutFile))
	log.Printf("\tsaved")

	if proc.info.Plot {
		plotFile := proc.info.OutFile + ".png"
		misc.ErrorCheck(reporting.PlotNeighborhoodSizes(newIndex.Sketches, plotFile))
		log.Printf("\tneighborhood size histogram saved to \"%v\"", plotFile)
	}
}
