package docs

import (
	"strconv"
	"strings"
)

// Tree is a nested mapping of document data. Values are the usual
// JSON-decoded shapes: map[string]any, []any, string, float64, bool, nil.
type Tree map[string]any

// Resolve walks a dotted field path through the tree and returns the value
// it points at. The second return value is false when the path cannot be
// resolved; a missing intermediate key is never an error.
//
// Bracket indexes are supported on list values: "documents[0].date".
func (t Tree) Resolve(path string) (any, bool) {
	if path == "" {
		return nil, false
	}

	var current any = map[string]any(t)

	for _, segment := range splitPath(path) {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[segment.key]
			if !ok {
				return nil, false
			}
			current = value

		case Tree:
			value, ok := node[segment.key]
			if !ok {
				return nil, false
			}
			current = value

		default:
			// Scalar or list hit in the middle of a keyed segment.
			return nil, false
		}

		// Apply index steps for this segment, if any.
		for _, idx := range segment.indexes {
			list, ok := current.([]any)
			if !ok {
				return nil, false
			}
			if idx < 0 || idx >= len(list) {
				return nil, false
			}
			current = list[idx]
		}
	}

	return current, true
}

// ResolveString resolves a path and coerces the value to a string.
// Non-string scalars are not coerced; absent and non-string values both
// report false.
func (t Tree) ResolveString(path string) (string, bool) {
	value, ok := t.Resolve(path)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

// Has reports whether the path resolves to a non-nil value.
func (t Tree) Has(path string) bool {
	value, ok := t.Resolve(path)
	return ok && value != nil
}

// pathSegment is one dot-separated component of a field path, with any
// bracket indexes that follow the key ("line_items[0][1]").
type pathSegment struct {
	key     string
	indexes []int
}

// splitPath parses a dotted path into segments. Malformed bracket
// expressions are kept as part of the key so resolution fails cleanly
// instead of panicking.
func splitPath(path string) []pathSegment {
	parts := strings.Split(path, ".")
	segments := make([]pathSegment, 0, len(parts))

	for _, part := range parts {
		seg := pathSegment{key: part}

		if open := strings.IndexByte(part, '['); open >= 0 {
			key := part[:open]
			rest := part[open:]
			indexes, ok := parseIndexes(rest)
			if ok {
				seg.key = key
				seg.indexes = indexes
			}
		}

		segments = append(segments, seg)
	}

	return segments
}

// parseIndexes parses a run of bracket expressions like "[0][2]".
func parseIndexes(s string) ([]int, bool) {
	var indexes []int

	for s != "" {
		if s[0] != '[' {
			return nil, false
		}
		close := strings.IndexByte(s, ']')
		if close < 0 {
			return nil, false
		}
		idx, err := strconv.Atoi(s[1:close])
		if err != nil {
			return nil, false
		}
		indexes = append(indexes, idx)
		s = s[close+1:]
	}

	return indexes, true
}
