package countgraph

import (
	"testing"

	"github.com/mhi-bio/mhi/src/kmercodec"
	"github.com/mhi-bio/mhi/src/tagging"
)

var (
	kSize     = 7
	tableSize = uint64(10000)
	numTables = 2
	seqA      = []byte("ACTGCGTGCGTGAAACGTGCACGTGACGTG")
	seqArc    = []byte("CACGTCACGTGCACGTTTCACGCACGCAGT")
)

// testGraph is a helper returning a small graph for the fixtures
func testGraph(t *testing.T) *Graph {
	codec, err := kmercodec.New(kSize, kmercodec.DNA)
	if err != nil {
		t.Fatal(err)
	}
	graph, err := New(codec, tableSize, numTables)
	if err != nil {
		t.Fatal(err)
	}
	return graph
}

func TestPrimeSizedTables(t *testing.T) {
	primes, err := primesAtOrBelow(10000, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(primes) != 2 || primes[0] == primes[1] {
		t.Fatalf("expected 2 distinct primes, got %v", primes)
	}
	for _, p := range primes {
		if p > 10000 || !isPrime(p) {
			t.Fatalf("%d is not a prime at or below the ceiling", p)
		}
	}
	if _, err := primesAtOrBelow(3, 4); err == nil {
		t.Fatal("expected an error when not enough primes fit below the ceiling")
	}
}

func TestCountingNeverUndercounts(t *testing.T) {
	graph := testGraph(t)
	code, err := graph.Codec().Encode(seqA[:kSize])
	if err != nil {
		t.Fatal(err)
	}
	occurrences := uint32(25)
	for i := uint32(0); i < occurrences; i++ {
		graph.Increment(code)
	}
	if count := graph.Get(code); count < occurrences {
		t.Fatalf("count %d is below the true occurrence count %d", count, occurrences)
	}
}

func TestConsume(t *testing.T) {
	graph := testGraph(t)
	consumed := graph.Consume(seqA)
	if consumed != len(seqA)-kSize+1 {
		t.Fatalf("expected %d k-mers consumed, got %d", len(seqA)-kSize+1, consumed)
	}
	// every window of the sequence must now be present
	for i := 0; i <= len(seqA)-kSize; i++ {
		code, err := graph.Codec().Encode(seqA[i : i+kSize])
		if err != nil {
			t.Fatal(err)
		}
		if graph.Get(code) == 0 {
			t.Fatalf("k-mer at offset %d missing after consume", i)
		}
	}
	// counts are strand independent
	rcGraph := testGraph(t)
	rcGraph.Consume(seqArc)
	code, err := graph.Codec().Encode(seqA[:kSize])
	if err != nil {
		t.Fatal(err)
	}
	if rcGraph.Get(code) == 0 {
		t.Fatal("consuming the reverse complement should count the same nodes")
	}
	// short sequences are a no-op
	if graph.Consume(seqA[:kSize-1]) != 0 {
		t.Fatal("sequences shorter than k should consume nothing")
	}
}

func TestConsumeAndTag(t *testing.T) {
	graph := testGraph(t)
	tags := tagging.NewStore()
	consumed := graph.ConsumeAndTag(seqA, 0, 10, tags)
	if consumed != len(seqA)-kSize+1 {
		t.Fatalf("expected %d k-mers consumed, got %d", len(seqA)-kSize+1, consumed)
	}
	// 24 k-mers with density 10 puts tags at positions 0, 10 and 20
	if len(tags.Tags()) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags.Tags()))
	}
	// the first tag is the first k-mer of the sequence
	first, err := graph.Codec().Encode(seqA[:kSize])
	if err != nil {
		t.Fatal(err)
	}
	if tags.Tags()[0] != first {
		t.Fatal("the first tag should be the first k-mer of the sequence")
	}
}

func TestNeighbors(t *testing.T) {
	graph := testGraph(t)
	graph.Consume(seqA)
	code, err := graph.Codec().Encode(seqA[1 : kSize+1])
	if err != nil {
		t.Fatal(err)
	}
	neighbors := graph.Neighbors(code, 1)
	if len(neighbors) == 0 {
		t.Fatal("an interior k-mer should have observed neighbors")
	}
	predecessor, err := graph.Codec().Encode(seqA[:kSize])
	if err != nil {
		t.Fatal(err)
	}
	successor, err := graph.Codec().Encode(seqA[2 : kSize+2])
	if err != nil {
		t.Fatal(err)
	}
	foundPredecessor, foundSuccessor := false, false
	for _, neighbor := range neighbors {
		if neighbor == predecessor {
			foundPredecessor = true
		}
		if neighbor == successor {
			foundSuccessor = true
		}
	}
	if !foundPredecessor || !foundSuccessor {
		t.Fatal("adjacent observed k-mers missing from neighbor query")
	}
	// a high abundance threshold filters the single copy neighbors out
	if len(graph.Neighbors(code, 100)) != 0 {
		t.Fatal("abundance threshold not applied to neighbor query")
	}
}

func TestCheckLoad(t *testing.T) {
	codec, err := kmercodec.New(kSize, kmercodec.DNA)
	if err != nil {
		t.Fatal(err)
	}
	// a tiny graph overloads quickly
	graph, err := New(codec, 11, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := graph.CheckLoad(); err != nil {
		t.Fatal("an empty graph should not report exhaustion")
	}
	graph.Consume(seqA)
	graph.Consume(seqArc)
	err = graph.CheckLoad()
	if err == nil {
		t.Fatal("an overloaded graph should report exhaustion")
	}
	if _, ok := err.(*ResourceExhaustedError); !ok {
		t.Fatalf("expected ResourceExhaustedError, got %T", err)
	}
}
