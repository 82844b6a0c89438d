package concurrent_test

import (
	"context"
	"testing"
	"unsafe"

	"github.com/rfield/rfield/columnstore"
	"github.com/rfield/rfield/concurrent"
	"github.com/rfield/rfield/field"
	"github.com/rfield/rfield/introspect"
)

func TestBuildAndConnectWrite_Concurrent(t *testing.T) {
	svc := introspect.NewRegistry()
	store := columnstore.NewStore(field.WriteOptions{})

	tasks := []concurrent.WriteTask{
		{Name: "a", TypeName: "i32", FirstID: 1, Sink: store.Sink()},
		{Name: "b", TypeName: "std::vector<f64>", FirstID: 100, Sink: store.Sink()},
		{Name: "c", TypeName: "std::string", FirstID: 200, Sink: store.Sink()},
	}
	fields, err := concurrent.BuildAndConnectWrite(context.Background(), svc, tasks)
	if err != nil {
		t.Fatalf("BuildAndConnectWrite: %v", err)
	}
	if len(fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(fields))
	}
	for i, f := range fields {
		if f.Name() != tasks[i].Name {
			t.Errorf("fields[%d].Name() = %q, want %q", i, f.Name(), tasks[i].Name)
		}
	}

	v := int32(9)
	if _, err := fields[0].Append(unsafe.Pointer(&v)); err != nil {
		t.Fatalf("Append on task 0's tree: %v", err)
	}
}

func TestBuildAndConnectWrite_PropagatesError(t *testing.T) {
	svc := introspect.NewRegistry()
	store := columnstore.NewStore(field.WriteOptions{})

	tasks := []concurrent.WriteTask{
		{Name: "good", TypeName: "i32", FirstID: 1, Sink: store.Sink()},
		{Name: "bad", TypeName: "NoSuchType", FirstID: 10, Sink: store.Sink()},
	}
	if _, err := concurrent.BuildAndConnectWrite(context.Background(), svc, tasks); err == nil {
		t.Fatalf("expected error from the unknown-type task")
	}
}

func TestBuildAndConnectReplayRead_Concurrent(t *testing.T) {
	svc := introspect.NewRegistry()
	store := columnstore.NewStore(field.WriteOptions{})

	writeFields, err := concurrent.BuildAndConnectWrite(context.Background(), svc, []concurrent.WriteTask{
		{Name: "a", TypeName: "i32", FirstID: 1, Sink: store.Sink()},
		{Name: "b", TypeName: "f64", FirstID: 2, Sink: store.Sink()},
	})
	if err != nil {
		t.Fatalf("BuildAndConnectWrite: %v", err)
	}

	vi := int32(11)
	if _, err := writeFields[0].Append(unsafe.Pointer(&vi)); err != nil {
		t.Fatalf("Append i32: %v", err)
	}
	vf := float64(3.5)
	if _, err := writeFields[1].Append(unsafe.Pointer(&vf)); err != nil {
		t.Fatalf("Append f64: %v", err)
	}

	readFields, err := concurrent.BuildAndConnectReplayRead(context.Background(), []concurrent.ReadTask{
		{WriteField: writeFields[0], Source: store.Source()},
		{WriteField: writeFields[1], Source: store.Source()},
	})
	if err != nil {
		t.Fatalf("BuildAndConnectReplayRead: %v", err)
	}

	var gotI int32
	if err := readFields[0].Read(0, unsafe.Pointer(&gotI)); err != nil {
		t.Fatalf("Read i32: %v", err)
	}
	if gotI != 11 {
		t.Errorf("got %d, want 11", gotI)
	}

	var gotF float64
	if err := readFields[1].Read(0, unsafe.Pointer(&gotF)); err != nil {
		t.Fatalf("Read f64: %v", err)
	}
	if gotF != 3.5 {
		t.Errorf("got %v, want 3.5", gotF)
	}
}
