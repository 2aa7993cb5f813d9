package frame

import "sync"

// sizeClasses mirrors typical video frame payload sizes (QVGA BGRA up
// through 4K BGRA) so a small number of sync.Pool buckets cover most
// capture/scale/convert traffic without fragmenting into one class per
// resolution.
var sizeClasses = []int{
	320 * 240 * 4,
	640 * 480 * 4,
	1280 * 720 * 4,
	1920 * 1080 * 4,
	3840 * 2160 * 4,
}

type classPool struct {
	size int
	pool *sync.Pool
}

// Pool hands out reusable byte buffers for frame payloads, sized to the
// nearest fitting class, to cut GC churn in a pipeline running at 30-60fps.
// Buffers that don't fit any class allocate fresh and are not pooled.
type Pool struct {
	pools []classPool
}

// NewPool creates a frame buffer pool with the package's default size
// classes.
func NewPool() *Pool {
	p := &Pool{pools: make([]classPool, len(sizeClasses))}
	for i, sz := range sizeClasses {
		size := sz
		p.pools[i] = classPool{
			size: size,
			pool: &sync.Pool{New: func() any { return make([]byte, size) }},
		}
	}
	return p
}

// Get returns a []byte of length n, backed by the smallest size class that
// fits, or a fresh allocation if n exceeds every class.
func (p *Pool) Get(n int) []byte {
	if p == nil || n <= 0 {
		return make([]byte, n)
	}
	for i := range p.pools {
		c := &p.pools[i]
		if n <= c.size {
			buf := c.pool.Get().([]byte)
			return buf[:n]
		}
	}
	return make([]byte, n)
}

// NewFrame allocates an n-byte payload from the pool and wraps it as a
// video Frame whose Release returns the buffer to this pool.
func (p *Pool) NewFrame(format Format, width, height, n, stride int) *Frame {
	return fromPool(p, format, width, height, p.Get(n), stride)
}

func (p *Pool) put(buf []byte) {
	if p == nil || buf == nil {
		return
	}
	capBuf := cap(buf)
	for i := range p.pools {
		c := &p.pools[i]
		if capBuf == c.size {
			full := buf[:c.size]
			clear(full)
			c.pool.Put(full)
			return
		}
	}
}
