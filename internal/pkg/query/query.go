// Package query filters, sorts and groups in-memory result sets the same way
// for every dashboard table.
package query

import (
	"fmt"
	"slices"
	"strings"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// GroupNone disables grouping. GroupAll is the key of the single ungrouped group.
const (
	GroupNone = "none"
	GroupAll  = "all"
)

// SortState is the active sort column and direction.
type SortState struct {
	Key       string
	Direction Direction
}

// Select returns the state after a user picks key: a repeated key flips the
// direction, a new key starts ascending.
func (s SortState) Select(key string) SortState {
	if s.Key == key {
		if s.Direction == Asc {
			return SortState{Key: key, Direction: Desc}
		}
		return SortState{Key: key, Direction: Asc}
	}
	return SortState{Key: key, Direction: Asc}
}

type Options struct {
	SearchTerm   string
	SearchFields []string
	Sort         SortState
	GroupKey     string
}

type Group[T any] struct {
	Key   string
	Items []T
}

type Result[T any] struct {
	Groups []Group[T]
	Total  int
}

// Engine projects rows of T. record exposes each row as a nested Record so
// sort, search and group keys can be dotted paths.
type Engine[T any] struct {
	record      func(T) Record
	comparators map[string]Comparator
}

// NewEngine builds an Engine. comparators overrides the default comparison for
// specific sort keys.
func NewEngine[T any](record func(T) Record, comparators map[string]Comparator) *Engine[T] {
	if comparators == nil {
		comparators = map[string]Comparator{}
	}
	return &Engine[T]{record: record, comparators: comparators}
}

type row[T any] struct {
	item T
	rec  Record
}

// Project filters, sorts then groups items. items is not modified.
func (e *Engine[T]) Project(items []T, opts Options) Result[T] {
	rows := make([]row[T], 0, len(items))
	term := strings.ToLower(strings.TrimSpace(opts.SearchTerm))
	for _, item := range items {
		r := row[T]{item: item, rec: e.record(item)}
		if term != "" && !matches(r.rec, opts.SearchFields, term) {
			continue
		}
		rows = append(rows, r)
	}

	if opts.Sort.Key != "" {
		cmp := e.comparator(opts.Sort.Key)
		desc := opts.Sort.Direction == Desc
		slices.SortStableFunc(rows, func(a, b row[T]) int {
			av, aok := a.rec.Lookup(opts.Sort.Key)
			bv, bok := b.rec.Lookup(opts.Sort.Key)
			// Missing values sort last in either direction.
			switch {
			case !aok && !bok:
				return 0
			case !aok:
				return 1
			case !bok:
				return -1
			}
			c := cmp(av, bv)
			if desc {
				return -c
			}
			return c
		})
	}

	return Result[T]{Groups: group(rows, opts.GroupKey), Total: len(rows)}
}

func (e *Engine[T]) comparator(key string) Comparator {
	if c, ok := e.comparators[key]; ok {
		return c
	}
	return DefaultComparator
}

func matches(rec Record, fields []string, term string) bool {
	for _, field := range fields {
		v, ok := rec.Lookup(field)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(stringify(v)), term) {
			return true
		}
	}
	return false
}

func group[T any](rows []row[T], key string) []Group[T] {
	if key == "" || key == GroupNone {
		items := make([]T, len(rows))
		for i, r := range rows {
			items[i] = r.item
		}
		return []Group[T]{{Key: GroupAll, Items: items}}
	}

	var groups []Group[T]
	index := map[string]int{}
	for _, r := range rows {
		k := ""
		if v, ok := r.rec.Lookup(key); ok {
			k = stringify(v)
		}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group[T]{Key: k})
		}
		groups[i].Items = append(groups[i].Items, r.item)
	}
	return groups
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case *string:
		if t == nil {
			return ""
		}
		return *t
	case fmt.Stringer:
		return t.String()
	}
	return fmt.Sprint(v)
}
