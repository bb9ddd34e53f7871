package ordr

import (
	"reflect"
	"time"
)

// clone produces a deep copy of an arbitrary value so that a node's
// prepare step can hand its producer an owned value instead of a borrowed
// reference into the scheduler's shared results table: slices, maps and
// pointers are walked recursively; structs are copied whole, then each
// exported field is replaced by its own deep copy (unexported fields keep
// the shallow copy); everything else (including time.Time, which is
// conventionally treated as immutable) is returned as-is.
func clone[T any](v T) T {
	return cloneAny(v).(T)
}

func cloneAny(value any) any {
	if value == nil {
		return nil
	}
	if t, ok := value.(time.Time); ok {
		return t
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return value
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Cap())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(reflect.ValueOf(cloneAny(rv.Index(i).Interface())))
		}
		return out.Interface()

	case reflect.Map:
		if rv.IsNil() {
			return value
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(
				reflect.ValueOf(cloneAny(iter.Key().Interface())),
				reflect.ValueOf(cloneAny(iter.Value().Interface())),
			)
		}
		return out.Interface()

	case reflect.Ptr:
		if rv.IsNil() {
			return value
		}
		out := reflect.New(rv.Elem().Type())
		out.Elem().Set(reflect.ValueOf(cloneAny(rv.Elem().Interface())))
		return out.Interface()

	case reflect.Struct:
		out := reflect.New(rv.Type()).Elem()
		out.Set(rv)
		for i := 0; i < rv.NumField(); i++ {
			if out.Field(i).CanSet() {
				out.Field(i).Set(reflect.ValueOf(cloneAny(rv.Field(i).Interface())))
			}
		}
		return out.Interface()

	default:
		return value
	}
}
