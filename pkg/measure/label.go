package measure

import (
	"reflect"
	"runtime"
	"strings"
)

const unknownName = "unknown"

// ResolveLabel returns custom when it is set, else declared.
func ResolveLabel(custom, declared string) string {
	if custom != "" {
		return custom
	}
	return declared
}

// DeclaredName returns the identifier fn was declared with, recovered from
// the runtime symbol table. Methods resolve to the method name and anonymous
// functions keep their enclosing identifier, e.g. "handler.func1".
func DeclaredName(fn any) string {
	if fn == nil {
		return unknownName
	}
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return unknownName
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return unknownName
	}
	return identifier(f.Name())
}

// identifier trims a fully qualified symbol such as
// "github.com/org/repo/pkg.(*Server).handle.func1" down to its declared name.
func identifier(symbol string) string {
	if i := strings.LastIndexByte(symbol, '/'); i >= 0 {
		symbol = symbol[i+1:]
	}
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		symbol = symbol[i+1:]
	}
	symbol = strings.TrimSuffix(symbol, "-fm")
	symbol = strings.ReplaceAll(symbol, "[...]", "")

	var parts []string
	for _, p := range strings.Split(symbol, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return unknownName
	}

	for i, p := range parts {
		if i > 0 && isClosure(p) {
			return strings.Join(parts[i-1:], ".")
		}
	}
	return parts[len(parts)-1]
}

// isClosure reports whether a symbol segment is compiler generated, like
// "func1" or the "2" in "func1.2".
func isClosure(segment string) bool {
	digits := strings.TrimPrefix(segment, "func")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
