package character

import "reflect"

// Merge combines b into a copy of a and returns the copy. Neither argument
// is modified. Per field:
//
//   - zero in b: a's value is kept
//   - zero in a: b's value is copied
//   - integers: the larger value wins
//   - lists: set union in order of first appearance
//   - maps: merged per key; integer values are summed, list values are
//     unioned, keys missing from a are copied
//   - anything else, including strings and score arrays: a's value is kept
//
// A type-incompatible pair can only arise inside a map value and keeps a's
// value.
func Merge(a, b *Character) *Character {
	out := a.Clone()
	dst := reflect.ValueOf(out).Elem()
	src := reflect.ValueOf(b.Clone()).Elem()
	for i := 0; i < dst.NumField(); i++ {
		mergeValue(dst.Field(i), src.Field(i))
	}
	return out
}

func mergeValue(dst, src reflect.Value) {
	if src.IsZero() {
		return
	}
	if dst.IsZero() {
		dst.Set(src)
		return
	}
	switch dst.Kind() {
	case reflect.Int:
		if src.Int() > dst.Int() {
			dst.SetInt(src.Int())
		}
	case reflect.Slice:
		dst.Set(union(dst, src))
	case reflect.Map:
		iter := src.MapRange()
		for iter.Next() {
			k, v := iter.Key(), iter.Value()
			cur := dst.MapIndex(k)
			if !cur.IsValid() {
				dst.SetMapIndex(k, v)
				continue
			}
			dst.SetMapIndex(k, mergeLeaf(cur, v))
		}
	}
}

func mergeLeaf(a, b reflect.Value) reflect.Value {
	if a.Kind() != b.Kind() {
		return a
	}
	switch a.Kind() {
	case reflect.Int:
		return reflect.ValueOf(a.Int() + b.Int()).Convert(a.Type())
	case reflect.Slice:
		return union(a, b)
	}
	return a
}

func union(a, b reflect.Value) reflect.Value {
	out := reflect.MakeSlice(a.Type(), 0, a.Len()+b.Len())
	seen := make(map[any]bool, a.Len()+b.Len())
	for _, s := range []reflect.Value{a, b} {
		for i := 0; i < s.Len(); i++ {
			e := s.Index(i)
			if seen[e.Interface()] {
				continue
			}
			seen[e.Interface()] = true
			out = reflect.Append(out, e)
		}
	}
	return out
}
