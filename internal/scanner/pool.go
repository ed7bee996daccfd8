package scanner

import "sync"

var carryPool = sync.Pool{
	New: func() interface{} {
		return NewCarry()
	},
}

// GetCarry returns a pooled, freshly-reset Carry.
func GetCarry() *Carry {
	c := carryPool.Get().(*Carry)
	c.Reset()
	return c
}

// PutCarry returns a Carry to the pool.
func PutCarry(c *Carry) {
	carryPool.Put(c)
}

var indexPool = sync.Pool{
	New: func() interface{} {
		s := make([]uint32, 0, 4096)
		return &s
	},
}

// GetIndexSlice returns a pooled []uint32 with at least capacity n.
func GetIndexSlice(n int) []uint32 {
	p := indexPool.Get().(*[]uint32)
	s := *p
	if cap(s) < n {
		s = make([]uint32, n)
	} else {
		s = s[:n]
	}
	return s
}

// PutIndexSlice returns an index slice to the pool.
func PutIndexSlice(s []uint32) {
	if cap(s) > 1<<20 {
		return
	}
	s = s[:0]
	indexPool.Put(&s)
}
