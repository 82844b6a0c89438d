package lifecycle_test

import (
	"testing"
	"unsafe"

	"github.com/rfield/rfield/lifecycle"
)

func TestTyped_ConstructAndCopy(t *testing.T) {
	typ := lifecycle.Of(int32(0))
	var a, b int32 = 42, 0
	typ.Construct(unsafe.Pointer(&a))
	if a != 0 {
		t.Fatalf("Construct should zero-initialize, got %d", a)
	}
	a = 7
	typ.CopyFrom(unsafe.Pointer(&b), unsafe.Pointer(&a))
	if b != 7 {
		t.Fatalf("CopyFrom: got %d, want 7", b)
	}
}

func TestTyped_DestroyClearsPointerData(t *testing.T) {
	typ := lifecycle.Of("")
	s := "hello"
	typ.Destroy(unsafe.Pointer(&s))
	if s != "" {
		t.Fatalf("Destroy should clear string to empty, got %q", s)
	}
}

func TestResizer_GrowAndElementAddr(t *testing.T) {
	r := lifecycle.NewResizer(lifecycle.Of(int32(0)))
	addr, owner := r.Grow(4)
	if owner == nil {
		t.Fatalf("Grow must return a non-nil owner to keep the backing array alive")
	}
	for i := 0; i < 4; i++ {
		e := (*int32)(r.ElementAddr(addr, i))
		*e = int32(i * 10)
	}
	for i := 0; i < 4; i++ {
		e := (*int32)(r.ElementAddr(addr, i))
		if *e != int32(i*10) {
			t.Fatalf("element %d = %d, want %d", i, *e, i*10)
		}
	}
}

func TestResizer_GrowZero(t *testing.T) {
	r := lifecycle.NewResizer(lifecycle.Of(int32(0)))
	addr, owner := r.Grow(0)
	if addr != nil || owner != nil {
		t.Fatalf("Grow(0) should return nil,nil")
	}
}
