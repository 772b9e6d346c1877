package query

import "strings"

// Record is a nested view of a row, addressed by dotted paths such as
// "request.priority".
type Record map[string]any

// Lookup resolves a dotted path. Nil values count as missing.
func (r Record) Lookup(path string) (any, bool) {
	var cur any = r
	for _, part := range strings.Split(path, ".") {
		switch m := cur.(type) {
		case Record:
			cur = m[part]
		case map[string]any:
			cur = m[part]
		default:
			return nil, false
		}
		if cur == nil {
			return nil, false
		}
	}
	if p, ok := cur.(*string); ok {
		if p == nil {
			return nil, false
		}
		return *p, true
	}
	return cur, true
}
