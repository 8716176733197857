package optic

import "github.com/danslapman/stubbery/internal/jsn"

// GetAll walks root along o and returns every value reached. A Field step
// yields the field's value when root is an object and the field is present,
// and nothing otherwise. An Index step yields the element at that position
// when root is an array in range, and nothing otherwise. A Traverse step
// expands into every element of an array, and nothing when root isn't an
// array. The walk is breadth-preserving: each step is applied to every
// value produced by the previous step.
func GetAll(root jsn.Jsn, o JsonOptic) []jsn.Jsn {
	cur := []jsn.Jsn{root}
	for _, p := range o.Parts {
		cur = stepAll(cur, p)
		if len(cur) == 0 {
			return cur
		}
	}
	return cur
}

func stepAll(vals []jsn.Jsn, p PathPart) []jsn.Jsn {
	var out []jsn.Jsn
	for _, v := range vals {
		switch p.Kind {
		case PartField:
			if child, ok := v.Get(p.Field); ok {
				out = append(out, child)
			}
		case PartIndex:
			if child, ok := v.Index(p.Index); ok {
				out = append(out, child)
			}
		case PartTraverse:
			if arr, ok := v.AsArray(); ok {
				out = append(out, arr...)
			}
		}
	}
	return out
}

// GetFirst returns the first value GetAll would produce, or (Null, false)
// when the walk yields nothing. This is the resolution spec.md gives for
// "multi-target" reads: take the first element in walk order.
func GetFirst(root jsn.Jsn, o JsonOptic) (jsn.Jsn, bool) {
	all := GetAll(root, o)
	if len(all) == 0 {
		return jsn.Null(), false
	}
	return all[0], true
}

// Validate reports whether o resolves to anything meaningful within root.
// For a pure wildcard optic ("$" alone) this is special-cased to
// is_array(root) rather than non-emptiness of the traversal, preserving a
// quirk of the original implementation this spec keeps deliberately: an
// empty array is still a valid traversal target, even though GetAll would
// report zero results for it.
func Validate(root jsn.Jsn, o JsonOptic) bool {
	if o.IsPureTraverse() {
		return root.IsArray()
	}
	return len(GetAll(root, o)) > 0
}

// Set returns a copy of root with the value(s) at o replaced by val,
// creating any missing intermediate structure along the way. The walk is
// recursive rather than a linear descend-then-ascend, because a Traverse
// step fans out into every array element and each branch must be set
// independently: setRec(cur, parts, val) returns cur's own replacement,
// and for a Traverse step that replacement is built by recursing into
// every element of cur (when cur is an array) or wrapping a single
// recursively-set value in a new one-element array (when it isn't).
func Set(root jsn.Jsn, o JsonOptic, val jsn.Jsn) jsn.Jsn {
	return setRec(root, o.Parts, val)
}

func setRec(cur jsn.Jsn, parts []PathPart, val jsn.Jsn) jsn.Jsn {
	if len(parts) == 0 {
		return val
	}
	part, rest := parts[0], parts[1:]

	switch part.Kind {
	case PartField:
		keys, vals := copyObjectOrEmpty(cur)
		child, exists := vals[part.Field]
		if !exists {
			child = jsn.Null()
			keys = append(keys, part.Field)
		}
		vals[part.Field] = setRec(child, rest, val)
		return jsn.Object(keys, vals)

	case PartIndex:
		arr := copyArrayOrEmpty(cur)
		for len(arr) <= part.Index {
			arr = append(arr, jsn.Null())
		}
		arr[part.Index] = setRec(arr[part.Index], rest, val)
		return jsn.Array(arr)

	case PartTraverse:
		if arr, ok := cur.AsArray(); ok {
			out := make([]jsn.Jsn, len(arr))
			for i, elem := range arr {
				out[i] = setRec(elem, rest, val)
			}
			return jsn.Array(out)
		}
		return jsn.Array([]jsn.Jsn{setRec(jsn.Null(), rest, val)})

	default:
		return cur
	}
}

// SetOpt is Set, but leaves root untouched (returning it as-is) when o
// resolves to nothing within root — i.e. it never creates missing
// structure, only overwrites what's already there.
func SetOpt(root jsn.Jsn, o JsonOptic, val jsn.Jsn) jsn.Jsn {
	if !Validate(root, o) {
		return root
	}
	return Set(root, o, val)
}

// Prune removes the value(s) at o from root, leaving everything else
// intact, and is a no-op when o doesn't resolve to anything in root.
// Like Set, the walk is recursive: pruneRec(cur, parts) returns cur's own
// replacement after applying the remaining path, so that when a Traverse
// step isn't the path's final step, pruning fans out across every array
// element independently instead of only ever touching one branch. At the
// final step a Field removes the key, an Index removes the element
// (shifting later ones down), and a Traverse replaces the addressed array
// itself with null.
func Prune(root jsn.Jsn, o JsonOptic) jsn.Jsn {
	if len(o.Parts) == 0 {
		return jsn.Null()
	}
	if !Validate(root, o) {
		return root
	}
	return pruneRec(root, o.Parts)
}

func pruneRec(cur jsn.Jsn, parts []PathPart) jsn.Jsn {
	part, rest := parts[0], parts[1:]

	if len(rest) == 0 {
		switch part.Kind {
		case PartField:
			if !cur.IsObject() {
				return cur
			}
			keys, vals := copyObjectOrEmpty(cur)
			delete(vals, part.Field)
			filtered := keys[:0:0]
			for _, k := range keys {
				if k != part.Field {
					filtered = append(filtered, k)
				}
			}
			return jsn.Object(filtered, vals)

		case PartIndex:
			if !cur.IsArray() {
				return cur
			}
			arr := copyArrayOrEmpty(cur)
			if part.Index < 0 || part.Index >= len(arr) {
				return jsn.Array(arr)
			}
			out := make([]jsn.Jsn, 0, len(arr)-1)
			out = append(out, arr[:part.Index]...)
			out = append(out, arr[part.Index+1:]...)
			return jsn.Array(out)

		case PartTraverse:
			if !cur.IsArray() {
				return cur
			}
			return jsn.Null()

		default:
			return cur
		}
	}

	switch part.Kind {
	case PartField:
		child, ok := cur.Get(part.Field)
		if !ok {
			return cur
		}
		keys, vals := copyObjectOrEmpty(cur)
		vals[part.Field] = pruneRec(child, rest)
		return jsn.Object(keys, vals)

	case PartIndex:
		child, ok := cur.Index(part.Index)
		if !ok {
			return cur
		}
		arr := copyArrayOrEmpty(cur)
		arr[part.Index] = pruneRec(child, rest)
		return jsn.Array(arr)

	case PartTraverse:
		arr, ok := cur.AsArray()
		if !ok {
			return cur
		}
		out := make([]jsn.Jsn, len(arr))
		for i, elem := range arr {
			out[i] = pruneRec(elem, rest)
		}
		return jsn.Array(out)

	default:
		return cur
	}
}

func copyObjectOrEmpty(v jsn.Jsn) ([]string, map[string]jsn.Jsn) {
	vals, keys, ok := v.AsObject()
	if !ok {
		return []string{}, map[string]jsn.Jsn{}
	}
	newKeys := append([]string(nil), keys...)
	newVals := make(map[string]jsn.Jsn, len(vals))
	for k, val := range vals {
		newVals[k] = val
	}
	return newKeys, newVals
}

func copyArrayOrEmpty(v jsn.Jsn) []jsn.Jsn {
	arr, ok := v.AsArray()
	if !ok {
		return []jsn.Jsn{}
	}
	return append([]jsn.Jsn(nil), arr...)
}
