package kinds_test

import (
	"testing"
	"unsafe"

	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/kinds"
)

// variantLayout replicates kinds.Variant's value layout (largest alternative's
// bytes, followed by a one-byte tag, rounded up to the widest alignment) so
// the test can poke the tag/payload directly without exported accessors.
func variantLayout(altSizes, altAligns []uintptr) (tagOffset, valueSize uintptr) {
	var maxSize, maxAlign uintptr = 0, 1
	for i := range altSizes {
		if altSizes[i] > maxSize {
			maxSize = altSizes[i]
		}
		if altAligns[i] > maxAlign {
			maxAlign = altAligns[i]
		}
	}
	tagOffset = maxSize
	valueSize = (tagOffset + 1 + maxAlign - 1) / maxAlign * maxAlign
	return
}

func TestVariant_TagTransitionsAndAbsent(t *testing.T) {
	store := newStore()
	altSizes := []uintptr{4, 8}
	altAligns := []uintptr{4, 8}
	tagOffset, valueSize := variantLayout(altSizes, altAligns)

	intChild := mustField(t, "_0", "i32", field.StructureLeaf, 0, kinds.NewInt32())
	f64Child := mustField(t, "_1", "f64", field.StructureLeaf, 0, kinds.NewFloat64())

	wf := mustField(t, "u", "std::variant<i32,f64>", field.StructureVariant, 0, kinds.NewVariant(altSizes, altAligns))
	wf.Attach(intChild)
	wf.Attach(f64Child)
	connectWrite(t, wf, store)

	buf := make([]byte, valueSize)
	addr := unsafe.Pointer(&buf[0])
	tagAddr := (*int8)(unsafe.Add(addr, tagOffset))

	setInt := func(v int32) {
		*tagAddr = 0
		*(*int32)(addr) = v
	}
	setFloat := func(v float64) {
		*tagAddr = 1
		*(*float64)(addr) = v
	}
	setAbsent := func() {
		*tagAddr = -1
	}

	setInt(42)
	if _, err := wf.Append(addr); err != nil {
		t.Fatalf("Append(int): %v", err)
	}
	setFloat(3.5)
	if _, err := wf.Append(addr); err != nil {
		t.Fatalf("Append(float): %v", err)
	}
	setAbsent()
	if _, err := wf.Append(addr); err != nil {
		t.Fatalf("Append(absent): %v", err)
	}
	setInt(7)
	if _, err := wf.Append(addr); err != nil {
		t.Fatalf("Append(int again): %v", err)
	}

	rf := connectRead(t, wf, store)

	dst := make([]byte, valueSize)
	dstAddr := unsafe.Pointer(&dst[0])
	dstTag := (*int8)(unsafe.Add(dstAddr, tagOffset))

	if err := rf.Read(0, dstAddr); err != nil {
		t.Fatalf("Read(0): %v", err)
	}
	if *dstTag != 0 || *(*int32)(dstAddr) != 42 {
		t.Errorf("entry 0: tag=%d payload=%d, want tag=0 payload=42", *dstTag, *(*int32)(dstAddr))
	}

	if err := rf.Read(1, dstAddr); err != nil {
		t.Fatalf("Read(1): %v", err)
	}
	if *dstTag != 1 || *(*float64)(dstAddr) != 3.5 {
		t.Errorf("entry 1: tag=%d payload=%v, want tag=1 payload=3.5", *dstTag, *(*float64)(dstAddr))
	}

	// on-disk tag 0 is a documented no-op: the destination (still holding
	// entry 1's state) must be left completely untouched.
	if err := rf.Read(2, dstAddr); err != nil {
		t.Fatalf("Read(2): %v", err)
	}
	if *dstTag != 1 || *(*float64)(dstAddr) != 3.5 {
		t.Errorf("entry 2 (absent): destination changed, tag=%d payload=%v", *dstTag, *(*float64)(dstAddr))
	}

	if err := rf.Read(3, dstAddr); err != nil {
		t.Fatalf("Read(3): %v", err)
	}
	if *dstTag != 0 || *(*int32)(dstAddr) != 7 {
		t.Errorf("entry 3: tag=%d payload=%d, want tag=0 payload=7", *dstTag, *(*int32)(dstAddr))
	}
}
