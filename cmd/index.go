// Copyright © 2019 the mhi authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"fmt"
	"log"
	"path/filepath"
	"runtime"

	"github.com/mhi-bio/mhi/src/countgraph"
	"github.com/mhi-bio/mhi/src/index"
	"github.com/mhi-bio/mhi/src/kmercodec"
	"github.com/mhi-bio/mhi/src/minhash"
	"github.com/mhi-bio/mhi/src/misc"
	"github.com/mhi-bio/mhi/src/nbhd"
	"github.com/mhi-bio/mhi/src/pipeline"
	"github.com/mhi-bio/mhi/src/tagging"
	"github.com/mhi-bio/mhi/src/version"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
)

// the command line arguments
var (
	seqFile    *string // the FASTA file to index
	outFile    *string // file to save the index to
	kmerSize   *int    // size of k-mer
	protein    *bool   // treat the input as protein sequence
	tagDensity *int    // number of consumed k-mers between tag sites
	tableSize  *uint64 // upper bound on the size of each counting table
	numTables  *int    // number of counting tables
	sketchSize *int    // size of the bottom sketch kept per neighborhood
	minAbund   *uint32 // minimum k-mer count needed during traversal
	nbhdRadius *int    // traversal radius around each tag
	maxNbhd    *int    // hard cap on the number of k-mers per neighborhood
	plotNbhds  *bool   // write a histogram of neighborhood sizes
)

// the index command (used by cobra)
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index a set of sequences using tagged neighborhood sketches",
	Long:  `Index a set of sequences using tagged neighborhood sketches`,
	Run: func(cmd *cobra.Command, args []string) {
		runIndex()
	},
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return misc.CheckRequiredFlags(cmd.Flags())
	},
}

// a function to initialise the command line arguments
func init() {
	seqFile = indexCmd.Flags().StringP("seqFile", "f", "", "FASTA file to index (gzipped FASTA also accepted) - required")
	outFile = indexCmd.Flags().StringP("outFile", "o", "", "file to save the index to (default: input basename + "+index.FileExtension+")")
	kmerSize = indexCmd.Flags().IntP("kmerSize", "k", 32, "size of k-mer")
	protein = indexCmd.Flags().Bool("protein", false, "treat the input sequences as protein")
	tagDensity = indexCmd.Flags().IntP("tagDensity", "d", tagging.DefaultDensity, "number of consumed k-mers between tag sites")
	tableSize = indexCmd.Flags().Uint64("tableSize", countgraph.DefaultTableSize, "upper bound on the size of each counting table")
	numTables = indexCmd.Flags().Int("numTables", countgraph.DefaultNumTables, "number of counting tables")
	sketchSize = indexCmd.Flags().IntP("sketchSize", "s", minhash.DefaultSketchSize, "number of hash values kept per neighborhood sketch")
	minAbund = indexCmd.Flags().Uint32("minAbund", nbhd.DefaultMinAbundance, "minimum k-mer count needed during neighborhood traversal")
	nbhdRadius = indexCmd.Flags().Int("nbhdRadius", nbhd.DefaultMaxRadius, "traversal radius around each tag")
	maxNbhd = indexCmd.Flags().Int("maxNbhd", nbhd.DefaultMaxSize, "hard cap on the number of k-mers per neighborhood")
	plotNbhds = indexCmd.Flags().Bool("plot", false, "write a histogram of neighborhood sizes next to the index")
	indexCmd.MarkFlagRequired("seqFile")
	RootCmd.AddCommand(indexCmd)
}

// defaultOutFile names the index after the input file: the input basename
// with the index suffix appended, written to the working directory
func defaultOutFile(seqFile string) string {
	return filepath.Base(seqFile) + index.FileExtension
}

//  a function to check user supplied parameters
func indexParamCheck() error {
	// check the input sequences
	if err := misc.CheckFile(*seqFile); err != nil {
		return err
	}
	if err := misc.CheckExt(*seqFile, []string{"fasta", "fa", "fna", "faa"}); err != nil {
		return err
	}
	// the k-mer size must fit the alphabet encoding
	alpha := kmercodec.DNA
	if *protein {
		alpha = kmercodec.Protein
	}
	if *kmerSize < 1 || *kmerSize > alpha.MaxK() {
		return fmt.Errorf("k-mer size must be between 1 and %d for %v sequences", alpha.MaxK(), alpha)
	}
	if *tagDensity < 1 {
		return fmt.Errorf("tag density must be a positive number of k-mers")
	}
	if *numTables < 1 {
		return fmt.Errorf("need at least one counting table")
	}
	if *sketchSize < 1 {
		return fmt.Errorf("sketch size must be greater than 0")
	}
	if *nbhdRadius < 1 || *maxNbhd < 1 {
		return fmt.Errorf("neighborhood radius and size cap must be greater than 0")
	}
	// set the default output file from the input basename
	if *outFile == "" {
		*outFile = defaultOutFile(*seqFile)
	}
	// set number of processors to use
	if *proc <= 0 || *proc > runtime.NumCPU() {
		*proc = runtime.NumCPU()
	}
	runtime.GOMAXPROCS(*proc)
	return nil
}

/*
  The main function for the index command
*/
func runIndex() {
	// set up profiling
	if *profiling == true {
		defer profile.Start(profile.ProfilePath("./")).Stop()
	}
	// start logging
	logFH := misc.StartLogging(*logFile)
	defer logFH.Close()
	log.SetOutput(logFH)
	log.Printf("this is mhi (version %s)", version.GetVersion())
	log.Printf("starting the index subcommand")
	// check the supplied files and then log some stuff
	log.Printf("checking parameters...")
	misc.ErrorCheck(indexParamCheck())
	log.Printf("\tprocessors: %d", *proc)
	log.Printf("\tinput file: %v", *seqFile)
	log.Printf("\toutput file: %v", *outFile)
	log.Printf("\tk-mer size: %d", *kmerSize)
	if *protein {
		log.Printf("\talphabet: protein")
	} else {
		log.Printf("\talphabet: DNA")
	}
	log.Printf("\ttag density: %d", *tagDensity)
	log.Printf("\tcounting tables: %d x %d", *numTables, *tableSize)
	log.Printf("\tsketch size: %d", *sketchSize)
	log.Printf("\tneighborhood radius: %d", *nbhdRadius)
	// record the runtime info and build the pipeline
	info := &pipeline.Info{
		Version:         version.GetVersion(),
		NumProc:         *proc,
		KmerSize:        *kmerSize,
		SketchSize:      *sketchSize,
		HashModulus:     minhash.DefaultHashModulus,
		Protein:         *protein,
		TagDensity:      *tagDensity,
		TableSize:       *tableSize,
		NumTables:       *numTables,
		MinAbundance:    *minAbund,
		MaxRadius:       *nbhdRadius,
		MaxNeighborhood: *maxNbhd,
		InputFile:       *seqFile,
		OutFile:         *outFile,
		Plot:            *plotNbhds,
	}
	indexPipeline := pipeline.NewPipeline()
	streamer := pipeline.NewSeqStreamer(info)
	builder := pipeline.NewGraphBuilder(info)
	partitioner := pipeline.NewNbhdPartitioner(info)
	sketcher := pipeline.NewSketchMaker(info)
	writer := pipeline.NewIndexWriter(info)
	builder.Connect(streamer)
	partitioner.Connect(builder)
	sketcher.Connect(partitioner)
	writer.Connect(sketcher)
	indexPipeline.AddProcesses(streamer, builder, partitioner, sketcher, writer)
	log.Printf("building the index...")
	indexPipeline.Run()
	log.Printf("saved index to \"%v\"", *outFile)
	log.Println("finished")
}
