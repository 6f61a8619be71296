package cache

import "reflect"

// isNilArg reports whether v is a nil-like value: a nil pointer,
// interface, map, slice, channel, or function. For value kinds (ints,
// strings, structs, ...) nothing is ever nil and this always returns
// false — the same way the Java source's null-check degenerates to a
// no-op when K/V is instantiated with a primitive type.
func isNilArg(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return rv.IsNil()
	default:
		return false
	}
}
