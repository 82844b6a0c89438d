package field

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes for the recoverable error channel (spec §7).
const (
	CodeEmptyTypeName        = "empty_type_name"
	CodeUnknownType          = "unknown_type"
	CodeMalformedTemplate    = "malformed_template"
	CodeMultiDimArray        = "multi_dim_array"
	CodeInvalidCardinality   = "invalid_cardinality_arg"
	CodeInvalidVariantArgs   = "invalid_variant_args"
	CodeInvalidPairArity     = "invalid_pair_arity"
	CodeInvalidTupleArity    = "invalid_tuple_arity"
	CodeInvalidFieldName     = "invalid_field_name"
	CodeInvalidArraySize     = "invalid_array_size"
	CodeUnsupportedClassKind = "unsupported_class_kind"
)

// Issue represents a single recoverable error entry. When a field is
// involved, its qualified name is carried in Path (spec §7).
type Issue struct {
	Path    string // qualified field name ("a.b.c"), or "" when not field-scoped
	Code    string
	Message string
	Hint    string
	Cause   error
}

// Issues is a collection of Issue that implements error.
type Issues []Issue

func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		fmt.Fprintf(b, "%s at %q", it.Code, it.Path)
		if it.Message != "" {
			fmt.Fprintf(b, ": %s", it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends more issues to dst, allocating if necessary.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	return append(dst, more...)
}

// AsIssues extracts Issues from err using errors.As.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

func singleIssue(path, code, msg string) Issues {
	return Issues{{Path: path, Code: code, Message: msg}}
}

// FatalError is raised (panicked) for the fatal error channel (spec §7):
// setting a column representative after connecting, setting an invalid
// representative, connecting to a source without an onDiskId, or failing to
// match on-disk column types against any accepted deserialization row.
type FatalError struct {
	FieldName string
	Message   string
}

func (e *FatalError) Error() string {
	if e.FieldName != "" {
		return fmt.Sprintf("rfield: %s: %s", e.FieldName, e.Message)
	}
	return fmt.Sprintf("rfield: %s", e.Message)
}

// Fatalf panics with a *FatalError built from the qualified field name and a
// formatted message.
func Fatalf(fieldName, format string, args ...any) {
	panic(&FatalError{FieldName: fieldName, Message: fmt.Sprintf(format, args...)})
}
