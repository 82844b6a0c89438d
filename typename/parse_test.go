package typename_test

import (
	"testing"

	"github.com/rfield/rfield/typename"
)

func TestSplitTemplateArgs(t *testing.T) {
	args, err := typename.SplitTemplateArgs("i32,std::vector<f64>,std::pair<i32,i64>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"i32", "std::vector<f64>", "std::pair<i32,i64>"}
	if len(args) != len(want) {
		t.Fatalf("got %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg[%d] = %q, want %q", i, args[i], want[i])
		}
	}
}

func TestSplitTemplateArgs_Empty(t *testing.T) {
	args, err := typename.SplitTemplateArgs("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 0 {
		t.Fatalf("expected 0 args for empty body, got %v", args)
	}
}

func TestSplitTemplateArgs_Unbalanced(t *testing.T) {
	if _, err := typename.SplitTemplateArgs("std::vector<i32"); err == nil {
		t.Fatalf("expected error for unbalanced '<'")
	}
	if _, err := typename.SplitTemplateArgs("i32>"); err == nil {
		t.Fatalf("expected error for unbalanced '>'")
	}
}

func TestParseArraySuffix(t *testing.T) {
	base, sizes, err := typename.ParseArraySuffix("i32[3]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base != "i32" || len(sizes) != 1 || sizes[0] != 3 {
		t.Fatalf("got base=%q sizes=%v, want i32 [3]", base, sizes)
	}
}

func TestParseArraySuffix_MultiDimRejected(t *testing.T) {
	if _, _, err := typename.ParseArraySuffix("i32[3][4]"); err == nil {
		t.Fatalf("expected error for multi-dimensional array")
	}
}

func TestParseArraySuffix_NonNumericRejected(t *testing.T) {
	if _, _, err := typename.ParseArraySuffix("i32[n]"); err == nil {
		t.Fatalf("expected error for non-numeric array size")
	}
}

func TestParseArraySuffix_Malformed(t *testing.T) {
	if _, _, err := typename.ParseArraySuffix("i32]"); err == nil {
		t.Fatalf("expected error for malformed brackets (unmatched ']')")
	}
}
