package minhash

// minsHeap holds the hash values retained for one sketch. It satisfies
// container/heap with an inverted Less, keeping the LARGEST retained value at
// the root so a smaller incoming hash can evict it in one Fix.
type minsHeap []uint64

func (mh minsHeap) Less(i, j int) bool { return mh[i] > mh[j] }
func (mh minsHeap) Swap(i, j int)      { mh[i], mh[j] = mh[j], mh[i] }
func (mh minsHeap) Len() int           { return len(mh) }

// Push appends a hash value; container/heap sifts it into place
func (mh *minsHeap) Push(x interface{}) {
	*mh = append(*mh, x.(uint64))
}

// Pop removes the last element (container/heap has already swapped the root
// there)
func (mh *minsHeap) Pop() interface{} {
	old := *mh
	n := len(old)
	x := old[n-1]
	*mh = old[0 : n-1]
	return x
}
