package query

import (
	"cmp"
	"strings"
	"time"
)

// Comparator orders two present values, ascending.
type Comparator func(a, b any) int

var dateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04:05", "2006-01-02"}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// DateComparator compares values as parsed dates. Unparseable values go last.
func DateComparator(a, b any) int {
	at, aok := toTime(a)
	bt, bok := toTime(b)
	switch {
	case aok && bok:
		return at.Compare(bt)
	case aok:
		return -1
	case bok:
		return 1
	}
	return DefaultComparator(a, b)
}

// OrderComparator ranks values by their position in order, matched
// case-insensitively. Values not in order rank after all listed ones.
func OrderComparator(order ...string) Comparator {
	rank := make(map[string]int, len(order))
	for i, v := range order {
		rank[strings.ToLower(v)] = i
	}
	rankOf := func(v any) int {
		if r, ok := rank[strings.ToLower(stringify(v))]; ok {
			return r
		}
		return len(order)
	}
	return func(a, b any) int {
		return cmp.Compare(rankOf(a), rankOf(b))
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// DefaultComparator compares numbers numerically, times chronologically,
// booleans false first and everything else as case-insensitive text.
func DefaultComparator(a, b any) int {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return cmp.Compare(af, bf)
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			default:
				return 1
			}
		}
	}
	as, bs := stringify(a), stringify(b)
	if c := strings.Compare(strings.ToLower(as), strings.ToLower(bs)); c != 0 {
		return c
	}
	return strings.Compare(as, bs)
}
