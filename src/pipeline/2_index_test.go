package pipeline

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/mhi-bio/mhi/src/index"
	"github.com/mhi-bio/mhi/src/minhash"
	"github.com/mhi-bio/mhi/src/misc"
	"github.com/mhi-bio/mhi/src/nbhd"
	"github.com/mhi-bio/mhi/src/tagging"
)

// a fixed 500 base synthetic sequence: with k=32 and a tag density of 200 it
// carries tags at k-mer positions 0, 200 and 400
var seq500 = "TAAAAAAGCAAAGTTCACAATCATAAAGAGTGGCCTAAAGCTTCAATCACCAGACGTATGACGCGCTATGTGTTATCTTGGACTTAATTGCGACGCGTAATCAGACAGGTAGATCATCTCGCTCCGAGCTTGCCACCAGCAAACCATTGCTGGTGCAGGTTGATGCGTAGTCTCTGAATTGTTCTTCGGGCCTTATAAGTACGGGGGGCGACGGGTGAACGGCATAACCGGTAGGTCGAAGCCTTCACCCTGCTAGAGTAAGCCGTTAATAGTGCTCAGGTCAACCCCGATGGGTTGCGAGGAACGCGGGGCTCATCCTGCGTTTTTGATCATTACGCAGTGGTCTTGTATAACCGCTGCGACGAAAGTGGGTCTTAGGGCCCTTTGGTTGTGCGCCTCACGCTTATAAACTTTCGGTAGACCCTTCCGATGCGTTGGCATCTCAGCGCTCCCCGTAGCCAAGTCATTTTGCTGTAAGATCTTCATTATCCAGCCATACG"

// a 120 base sequence and its exact reverse complement
var seq120 = "AGAGAATTAGCCTAGCTTCGCTGAGGCCAGTATCTGGAATGATTCTAGCATAGCAGTGAATAGACATCAGTGAGGCACAGAAAAGGTATTACAGGGTGAACCTGCAAGCAGTATGATGCC"
var seq120rc = "GGCATCATACTGCTTGCAGGTTCACCCTGTAATACCTTTTCTGTGCCTCACTGATGTCTATTCACTGCTATGCTAGAATCATTCCAGATACTGGCCTCAGCGAAGCTAGGCTAATTCTCT"

// testInfo returns runtime info sized for the test fixtures
func testInfo(inputFile, outFile string) *Info {
	return &Info{
		Version:         "0.0.0-test",
		NumProc:         2,
		KmerSize:        32,
		SketchSize:      minhash.DefaultSketchSize,
		HashModulus:     minhash.DefaultHashModulus,
		Protein:         false,
		TagDensity:      tagging.DefaultDensity,
		TableSize:       100000,
		NumTables:       2,
		MinAbundance:    nbhd.DefaultMinAbundance,
		MaxRadius:       nbhd.DefaultMaxRadius,
		MaxNeighborhood: nbhd.DefaultMaxSize,
		InputFile:       inputFile,
		OutFile:         outFile,
	}
}

// runIndexPipeline wires up and runs the full pipeline, then loads the
// resulting index back from disk
func runIndexPipeline(t *testing.T, info *Info) *index.Index {
	indexPipeline := NewPipeline()
	streamer := NewSeqStreamer(info)
	builder := NewGraphBuilder(info)
	partitioner := NewNbhdPartitioner(info)
	sketcher := NewSketchMaker(info)
	writer := NewIndexWriter(info)
	builder.Connect(streamer)
	partitioner.Connect(builder)
	sketcher.Connect(partitioner)
	writer.Connect(sketcher)
	indexPipeline.AddProcesses(streamer, builder, partitioner, sketcher, writer)
	if indexPipeline.GetNumProcesses() != 5 {
		t.Fatal("pipeline did not register all processes")
	}
	indexPipeline.Run()

	loaded := &index.Index{}
	if err := loaded.Load(info.OutFile); err != nil {
		t.Fatal(err)
	}
	return loaded
}

// writeFasta is a helper writing sequences to a FASTA fixture
func writeFasta(t *testing.T, dir, name string, seqs ...string) string {
	path := filepath.Join(dir, name)
	fasta := ""
	for i, seq := range seqs {
		fasta += ">seq" + string(rune('A'+i)) + "\n" + seq + "\n"
	}
	if err := ioutil.WriteFile(path, []byte(fasta), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestEndToEndIndexing(t *testing.T) {
	dir, err := ioutil.TempDir("", "mhi-pipeline-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	info := testInfo(writeFasta(t, dir, "synthetic.fasta", seq500), filepath.Join(dir, "synthetic.mhi"))
	loaded := runIndexPipeline(t, info)

	// 3 tags land on one connected path; the middle tag falls inside the
	// first tag's radius, leaving 2 neighborhoods
	if len(loaded.Sketches) != 2 {
		t.Fatalf("expected 2 sketches from the 500 base fixture, got %d", len(loaded.Sketches))
	}
	for _, sketch := range loaded.Sketches {
		if len(sketch.Values) == 0 || len(sketch.Values) > info.SketchSize {
			t.Fatalf("sketch length %d outside (0, %d]", len(sketch.Values), info.SketchSize)
		}
		if sketch.Partial {
			t.Fatal("no neighborhood should hit the size cap in this fixture")
		}
		if sketch.NumKmers == 0 {
			t.Fatal("every neighborhood should be non-empty")
		}
	}
	if loaded.KmerSize != info.KmerSize || loaded.HashModulus != info.HashModulus {
		t.Fatal("build parameters not recorded in the index")
	}

	// the whole sequence is covered by the two neighborhoods (counting table
	// false positives can add the odd spurious member, so no upper bound)
	totalKmers := 0
	for _, sketch := range loaded.Sketches {
		totalKmers += sketch.NumKmers
	}
	if totalKmers < len(seq500)-info.KmerSize+1 {
		t.Fatalf("neighborhoods cover %d k-mers, expected at least %d", totalKmers, len(seq500)-info.KmerSize+1)
	}

	// re-running on identical input reproduces the index exactly
	again := runIndexPipeline(t, testInfo(info.InputFile, filepath.Join(dir, "again.mhi")))
	if len(again.Sketches) != len(loaded.Sketches) {
		t.Fatal("re-run produced a different number of sketches")
	}
	for i := range loaded.Sketches {
		if loaded.Sketches[i].Tag != again.Sketches[i].Tag || !misc.Uint64SliceEqual(loaded.Sketches[i].Values, again.Sketches[i].Values) {
			t.Fatal("re-run on identical input did not reproduce the index")
		}
	}
}

func TestReverseComplementInvariance(t *testing.T) {
	dir, err := ioutil.TempDir("", "mhi-pipeline-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	fwd := runIndexPipeline(t, testInfo(
		writeFasta(t, dir, "fwd.fasta", seq120),
		filepath.Join(dir, "fwd.mhi"),
	))
	rev := runIndexPipeline(t, testInfo(
		writeFasta(t, dir, "rev.fasta", seq120rc),
		filepath.Join(dir, "rev.mhi"),
	))

	// both strands hold one tagged neighborhood over the same canonical
	// k-mer set, so the sketch sets must be equal
	if len(fwd.Sketches) != 1 || len(rev.Sketches) != 1 {
		t.Fatalf("expected 1 sketch per strand, got %d and %d", len(fwd.Sketches), len(rev.Sketches))
	}
	if !misc.Uint64SliceEqual(fwd.Sketches[0].Values, rev.Sketches[0].Values) {
		t.Fatal("reverse complement input changed the sketch values")
	}
	if fwd.Sketches[0].NumKmers != rev.Sketches[0].NumKmers {
		t.Fatal("reverse complement input changed the neighborhood size")
	}
}
