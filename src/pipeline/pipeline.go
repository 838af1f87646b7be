// Package pipeline wires the indexing stages (stream, ingest, partition,
// sketch, write) into a composable channel pipeline, following the pattern
// from S. Lampa's Gopher Academy article on composable concurrent pipelines
// (https://blog.gopheracademy.com/advent-2015/composable-pipelines-improvements/)
package pipeline

// BUFFERSIZE is the buffer size of the channels connecting pipeline stages
const BUFFERSIZE int = 64

// process is one runnable pipeline stage
type process interface {
	Run()
}

// Pipeline runs an ordered set of connected processes
type Pipeline struct {
	processes []process
}

// NewPipeline is the Pipeline constructor
func NewPipeline() *Pipeline {
	return &Pipeline{}
}

// AddProcess registers a single process with the pipeline
func (pl *Pipeline) AddProcess(proc process) {
	pl.processes = append(pl.processes, proc)
}

// AddProcesses registers multiple processes with the pipeline
func (pl *Pipeline) AddProcesses(procs ...process) {
	for _, proc := range procs {
		pl.AddProcess(proc)
	}
}

// Run starts the pipeline. Every process runs in its own goroutine except
// the last, which runs in the foreground so Run returns only once the whole
// pipeline has drained.
func (pl *Pipeline) Run() {
	for i, proc := range pl.processes {
		if i < len(pl.processes)-1 {
			go proc.Run()
		} else {
			proc.Run()
		}
	}
}

// GetNumProcesses returns the number of registered processes
func (pl *Pipeline) GetNumProcesses() int {
	return len(pl.processes)
}
