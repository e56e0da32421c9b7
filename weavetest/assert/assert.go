// Package assert holds the few test assertions used across the module
// without pulling a full assertion library into every package.
package assert

import "reflect"

// Tester is the part of testing.TB the assertions need.
type Tester interface {
	Helper()
	Fatal(...interface{})
	Fatalf(string, ...interface{})
}

// Nil fails when value is neither nil nor a nil pointer, map, slice,
// channel, func or interface. Errors print with %+v to show their stack.
func Nil(t Tester, value interface{}) {
	t.Helper()
	if !isNil(value) {
		t.Fatalf("want nil, got %+v", value)
	}
}

func isNil(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface, reflect.Map, reflect.Ptr, reflect.Slice:
		return v.IsNil()
	default:
		return false
	}
}

// Equal fails unless want and got are deeply equal, types included.
func Equal(t Tester, want, got interface{}) {
	t.Helper()
	if reflect.DeepEqual(want, got) {
		return
	}
	t.Fatalf("not equal\nwant %T %v\n got %T %v", want, want, got, got)
}

// Panics fails unless fn panics.
func Panics(t Tester, fn func()) {
	t.Helper()
	if !panics(fn) {
		t.Fatal("want a panic")
	}
}

func panics(fn func()) (ok bool) {
	defer func() { ok = recover() != nil }()
	fn()
	return false
}

// IsErr fails unless got is want or, when want has an Is method (every
// registered error does), want.Is(got) holds.
func IsErr(t Tester, want, got error) {
	t.Helper()
	if want == got {
		return
	}
	if k, ok := want.(interface{ Is(error) bool }); ok && k.Is(got) {
		return
	}
	t.Fatalf("want %q, got %+v", want, got)
}
