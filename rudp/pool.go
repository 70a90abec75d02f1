package rudp

import "sync"

// PoolAllocator is the default Allocator, backed by sync.Pool buckets sized
// in powers of two. Each instance owns its own buckets rather than sharing
// a process-wide singleton, so multiple connections never contend on one
// pool or leak buffers into each other's buckets.
type PoolAllocator struct {
	mu      sync.Mutex
	buckets map[int]*sync.Pool
}

// NewPoolAllocator returns a ready-to-use PoolAllocator.
func NewPoolAllocator() *PoolAllocator {
	return &PoolAllocator{buckets: make(map[int]*sync.Pool)}
}

func bucketSize(n int) int {
	size := 64
	for size < n {
		size *= 2
	}
	return size
}

func (p *PoolAllocator) bucket(size int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buckets[size]
	if !ok {
		b = &sync.Pool{New: func() any {
			buf := make([]byte, size)
			return &buf
		}}
		p.buckets[size] = b
	}
	return b
}

// Allocate returns a buffer of length exactly size, drawn from the pool
// bucket for the next power of two ≥ size (the smallest bucket is 64).
func (p *PoolAllocator) Allocate(size int) ([]byte, error) {
	bs := bucketSize(size)
	buf := *p.bucket(bs).Get().(*[]byte)
	return buf[:size], nil
}

// Release returns buf to the bucket matching its capacity. Double-release
// of the same backing array is the caller's responsibility to avoid, same
// as any sync.Pool user — this package's own bookkeeping never does it
// (see the alive-flag discipline in channel.go/sequenced.go).
func (p *PoolAllocator) Release(buf []byte) {
	bs := cap(buf)
	full := buf[:bs]
	p.bucket(bs).Put(&full)
}
