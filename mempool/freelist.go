package mempool

// freelist is an array-backed stack of free chunk indexes. Pop/push order is
// unspecified as far as clients are concerned; in practice it is LIFO.
type freelist struct {
	slots []int
	count int
}

// newFreelist builds a freelist referencing every chunk in address order, so
// the pool starts out fully free.
func newFreelist(chunkCount int) freelist {
	f := freelist{
		slots: make([]int, chunkCount),
		count: chunkCount,
	}
	for i := range f.slots {
		f.slots[i] = i
	}
	return f
}

func (f *freelist) empty() bool {
	return f.count == 0
}

func (f *freelist) full() bool {
	return f.count >= len(f.slots)
}

func (f *freelist) pop() int {
	f.count--
	return f.slots[f.count]
}

func (f *freelist) push(idx int) {
	f.slots[f.count] = idx
	f.count++
}

// contains scans the live portion of the stack for idx. This is the
// double-free check: O(current occupancy), traded deliberately for keeping
// the allocation path free of bookkeeping.
func (f *freelist) contains(idx int) bool {
	for _, v := range f.slots[:f.count] {
		if v == idx {
			return true
		}
	}
	return false
}
