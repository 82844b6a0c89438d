// Package typename implements the TypeName Normalizer and Type Parser
// (spec §4.1, §4.2): canonicalizing/normalizing user-supplied type strings
// and tokenizing their template argument lists and array suffixes.
//
// There is no direct teacher analogue (goskema has no C-style type-name
// grammar); this package is grounded on field_token.go's ResolveStructKey,
// which is the teacher's own closest precedent for "resolve one external
// name spelling to a canonical internal one" name resolution.
package typename

import "strings"

// platformAliases maps legacy/platform integer spellings to the engine's
// fixed-width names (spec §4.1). Keys are already const/volatile-stripped
// and whitespace-collapsed.
var platformAliases = map[string]string{
	"signed char":         "i8",
	"unsigned char":        "u8",
	"short":                "i16",
	"short int":            "i16",
	"unsigned short":       "u16",
	"unsigned short int":   "u16",
	"int":                  "i32",
	"signed":               "i32",
	"signed int":           "i32",
	"unsigned":             "u32",
	"unsigned int":         "u32",
	"long":                 "i64",
	"long int":             "i64",
	"unsigned long":        "u64",
	"unsigned long int":    "u64",
	"long long":            "i64",
	"long long int":        "i64",
	"unsigned long long":   "u64",
	"unsigned long long int": "u64",
	"float":                "f32",
	"double":               "f64",
	// engine legacy typedefs
	"Int_t":    "i32",
	"UInt_t":   "u32",
	"Long_t":   "i64",
	"ULong64_t": "u64",
	"Long64_t": "i64",
	"Short_t":  "i16",
	"UShort_t": "u16",
	"Float_t":  "f32",
	"Double_t": "f64",
	"Bool_t":   "bool",
	"Char_t":   "char",
	"UChar_t":  "u8",
}

// bareTemplateNames are the standard-library template names the normalizer
// rewrites to their fully qualified "std::" form (spec §4.1).
var bareTemplateNames = map[string]bool{
	"vector":     true,
	"array":      true,
	"variant":    true,
	"pair":       true,
	"tuple":      true,
	"bitset":     true,
	"unique_ptr": true,
}

// Normalize canonicalizes spelling: strips const/volatile, rewrites
// platform-integer and legacy-typedef spellings to fixed-width names, and
// rewrites bare standard-library template names to their fully qualified
// form, recursively into template arguments. Normalize is idempotent.
func Normalize(s string) string {
	base, suffix := splitTrailingArraySuffix(s)
	base = stripConstVolatile(base)

	if mapped, ok := platformAliases[base]; ok {
		return mapped + suffix
	}

	if tmplBase, argsStr, ok := splitTemplate(base); ok {
		args, err := SplitTemplateArgs(argsStr)
		if err != nil {
			return s
		}
		normArgs := make([]string, len(args))
		for i, a := range args {
			normArgs[i] = Normalize(strings.TrimSpace(a))
		}
		qualified := qualifyTemplateBase(tmplBase)
		return qualified + "<" + strings.Join(normArgs, ",") + ">" + suffix
	}

	return base + suffix
}

// stripConstVolatile removes "const"/"volatile" qualifier tokens and
// collapses surrounding whitespace.
func stripConstVolatile(s string) string {
	fields := strings.Fields(s)
	out := fields[:0:0]
	for _, f := range fields {
		if f == "const" || f == "volatile" {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

// splitTrailingArraySuffix peels off any trailing "[...]" groups (verbatim,
// unvalidated) so Normalize can recurse into the element base type; the
// Type Parser is the authority on validating/parsing those groups.
func splitTrailingArraySuffix(s string) (base, suffix string) {
	s = strings.TrimSpace(s)
	end := len(s)
	for end > 0 && s[end-1] == ']' {
		open := strings.LastIndexByte(s[:end], '[')
		if open < 0 {
			break
		}
		end = open
	}
	return s[:end], s[end:]
}

// splitTemplate splits "name<args>" into ("name", "args", true). It returns
// ok=false when s is not template-shaped (no top-level "<...>" spanning to
// the end of the string).
func splitTemplate(s string) (base, args string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ">") {
		return "", "", false
	}
	open := strings.IndexByte(s, '<')
	if open < 0 {
		return "", "", false
	}
	return s[:open], s[open+1 : len(s)-1], true
}

// qualifyTemplateBase rewrites a bare standard-library template name (or an
// already "std::"-qualified one) to its canonical "std::name" spelling;
// any other base (a user class template) is left untouched.
func qualifyTemplateBase(base string) string {
	name := strings.TrimPrefix(base, "std::")
	if bareTemplateNames[name] {
		return "std::" + name
	}
	return base
}

// AliasResolver resolves a user-defined type alias (C++ typedef/using, or a
// Go type alias registered with the introspection service) to its
// underlying spelling. Implemented by introspect.Service.
type AliasResolver interface {
	ResolveAlias(name string) (underlying string, ok bool)
}

// IsKnownCanonical reports whether s is already canonical without
// consulting an AliasResolver: the cardinality generic and anything in the
// engine-reserved ("ROOT::") or standard-library ("std::") namespace are
// assumed canonical (spec §4.1).
func IsKnownCanonical(s string) bool {
	if s == "cardinality" || strings.HasPrefix(s, "cardinality<") {
		return true
	}
	if strings.HasPrefix(s, "std::") || strings.HasPrefix(s, "ROOT::") {
		return true
	}
	return false
}

// Canonicalize resolves typedef aliases to their underlying type, except
// for names IsKnownCanonical already accepts (spec §4.1).
func Canonicalize(s string, resolver AliasResolver) string {
	if IsKnownCanonical(s) {
		return s
	}
	if resolver != nil {
		if underlying, ok := resolver.ResolveAlias(s); ok {
			return underlying
		}
	}
	return s
}
