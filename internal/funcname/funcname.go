// Package funcname resolves short, human-readable function names from
// runtime symbol names.
package funcname

import (
	"reflect"
	"runtime"
	"strings"
)

// Short trims a runtime symbol name to "Func" or "Type.Method".
// Package path, pointer receiver markers, generic instantiation brackets and
// method value suffixes are removed, so every instantiation of a generic
// function reports under the same name.
func Short(full string) string {
	name := full
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	name = stripBrackets(name)
	name = strings.TrimSuffix(name, "-fm")
	name = strings.ReplaceAll(name, "(*", "")
	name = strings.ReplaceAll(name, ")", "")
	return name
}

func stripBrackets(s string) string {
	if !strings.ContainsRune(s, '[') {
		return s
	}
	var b strings.Builder
	depth := 0
	for _, r := range s {
		switch {
		case r == '[':
			depth++
		case r == ']' && depth > 0:
			depth--
		case depth == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Of returns the short name of the function value fn, or "" if fn is not a
// non-nil function.
func Of(fn any) string {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return ""
	}
	f := runtime.FuncForPC(v.Pointer())
	if f == nil {
		return ""
	}
	return Short(f.Name())
}

// Caller returns the short name of the function skip frames above the
// caller of Caller.
func Caller(skip int) string {
	pcs := make([]uintptr, 1)
	if runtime.Callers(skip+2, pcs) == 0 {
		return ""
	}
	frame, _ := runtime.CallersFrames(pcs).Next()
	return Short(frame.Function)
}
