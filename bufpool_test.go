package miniasync

import "testing"

func TestBufferPoolRoundTripsCapacity(t *testing.T) {
	p := NewBufferPool()
	buf := p.Get(200 * 1024) // routes to the 256k bucket
	if cap(buf) != bufSize256k {
		t.Fatalf("expected capacity %d, got %d", bufSize256k, cap(buf))
	}
	if len(buf) != 200*1024 {
		t.Fatalf("expected length 200k, got %d", len(buf))
	}
	p.Put(buf)

	again := p.Get(50 * 1024)
	if cap(again) != bufSize128k {
		t.Fatalf("expected smallest-bucket capacity %d, got %d", bufSize128k, cap(again))
	}
}

func TestBufferPoolOversizedFallsThrough(t *testing.T) {
	p := NewBufferPool()
	buf := p.Get(4 * 1024 * 1024)
	if len(buf) != 4*1024*1024 {
		t.Fatalf("expected a plain 4MB allocation, got len %d", len(buf))
	}
	p.Put(buf) // should be a no-op, not a panic
}
