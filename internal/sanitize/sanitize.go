// Package sanitize rewrites document keys containing characters that MongoDB
// rejects or mishandles as field names ('%', '\', '$', '.').
//
// Two schemes are provided. SafeCopy applies a reversible percent-style
// escaping and is paired with Unescape for exact round-trips; it is used for
// documents that may need their original keys back, such as job loads.
// RemoveDots is a lossy dot-flattening used only for archival copies where
// round-tripping is not required.
package sanitize

import "strings"

// SafeCopy returns a copy of v with every map key percent-escaped. '%' is
// escaped first so the escape sequences introduced for the other characters
// are not themselves re-escaped. Maps and slices are descended recursively;
// scalars are returned unchanged.
func SafeCopy(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[escapeKey(k)] = SafeCopy(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = SafeCopy(elem)
		}
		return out
	}
	return v
}

// Unescape is the inverse of SafeCopy. Substitutions run in the reverse
// order of escaping, with '%' restored last.
func Unescape(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[unescapeKey(k)] = Unescape(elem)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Unescape(elem)
		}
		return out
	}
	return v
}

// RemoveDots replaces '.' with '-' in map keys. The substitution is lossy:
// keys that already contain '-' can collide with flattened ones. Only map
// values are descended; sequences are left untouched, so a document nested
// inside a list keeps its original keys. Applying RemoveDots twice yields
// the same result as applying it once.
func RemoveDots(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, elem := range m {
		out[strings.ReplaceAll(k, ".", "-")] = RemoveDots(elem)
	}
	return out
}

func escapeKey(k string) string {
	k = strings.ReplaceAll(k, "%", "%25")
	k = strings.ReplaceAll(k, "\\", "%5c")
	k = strings.ReplaceAll(k, "$", "%24")
	k = strings.ReplaceAll(k, ".", "%2e")
	return k
}

func unescapeKey(k string) string {
	k = strings.ReplaceAll(k, "%2e", ".")
	k = strings.ReplaceAll(k, "%24", "$")
	k = strings.ReplaceAll(k, "%5c", "\\")
	k = strings.ReplaceAll(k, "%25", "%")
	return k
}
