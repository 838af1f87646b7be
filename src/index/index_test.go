package index

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mhi-bio/mhi/src/minhash"
	"github.com/mhi-bio/mhi/src/misc"
)

func testIndex() *Index {
	idx := New("0.0.0-test", 7, 4, 9999999967, false)
	idx.Add(&minhash.Sketch{Tag: 11, NumKmers: 9, Values: []uint64{1, 2, 3, 4}})
	idx.Add(&minhash.Sketch{Tag: 22, NumKmers: 2, Partial: true, Values: []uint64{5, 6}})
	return idx
}

func TestDumpLoadRoundTrip(t *testing.T) {
	dir, err := ioutil.TempDir("", "mhi-index-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "test"+FileExtension)

	idx := testIndex()
	if err := idx.Dump(path); err != nil {
		t.Fatal(err)
	}

	loaded := &Index{}
	if err := loaded.Load(path); err != nil {
		t.Fatal(err)
	}
	if loaded.KmerSize != idx.KmerSize || loaded.SketchSize != idx.SketchSize || loaded.HashModulus != idx.HashModulus || loaded.Protein != idx.Protein {
		t.Fatal("build parameters lost in the round trip")
	}
	if len(loaded.Sketches) != 2 {
		t.Fatalf("expected 2 sketches, got %d", len(loaded.Sketches))
	}
	if loaded.Sketches[0].Tag != 11 || !misc.Uint64SliceEqual(loaded.Sketches[0].Values, idx.Sketches[0].Values) {
		t.Fatal("first sketch changed in the round trip")
	}
	if !loaded.Sketches[1].Partial {
		t.Fatal("partial flag lost in the round trip")
	}

	// no temp file should be left behind after the rename
	entries, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.Contains(entry.Name(), ".tmp") {
			t.Fatalf("temporary file left behind: %v", entry.Name())
		}
	}
}

func TestLoadFromBytesRejectsGarbage(t *testing.T) {
	empty := &Index{}
	if err := empty.LoadFromBytes(nil); err == nil {
		t.Fatal("expected an error loading from no data")
	}
	if err := empty.LoadFromBytes([]byte("not msgpack")); err == nil {
		t.Fatal("expected an error loading from garbage")
	}
}

func TestCompatibility(t *testing.T) {
	a := testIndex()
	b := testIndex()
	if err := a.CompatibleWith(b); err != nil {
		t.Fatalf("identical parameters reported incompatible: %v", err)
	}
	b.KmerSize = 9
	if err := a.CompatibleWith(b); err == nil {
		t.Fatal("k-mer size mismatch not reported")
	}
	b.KmerSize = a.KmerSize
	b.Protein = true
	if err := a.CompatibleWith(b); err == nil {
		t.Fatal("alphabet mismatch not reported")
	}
}
