package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID       string
	Priority string
	Category string
	Start    string
	Team     string
	Name     *string
	Days     int
}

func itemRecord(i item) Record {
	return Record{
		"id": i.ID,
		"request": Record{
			"priority":             i.Priority,
			"category":             i.Category,
			"requested_start_date": i.Start,
			"days":                 i.Days,
		},
		"team_owner": map[string]any{"id": i.Team},
		"employee":   Record{"name": i.Name},
	}
}

func newTestEngine() *Engine[item] {
	return NewEngine(itemRecord, map[string]Comparator{
		"request.priority":             OrderComparator("HIGH", "MODERATE", "LOW"),
		"request.category":             OrderComparator("Medical", "Family Medical", "Maternity", "Permanent", "Personal", "Project Demand"),
		"request.requested_start_date": DateComparator,
	})
}

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func strPtr(s string) *string { return &s }

func TestProject_PriorityAscendingIsStable(t *testing.T) {
	items := []item{
		{ID: "1", Priority: "LOW"},
		{ID: "2", Priority: "HIGH"},
		{ID: "3", Priority: "MODERATE"},
		{ID: "4", Priority: "LOW"},
		{ID: "5", Priority: "HIGH"},
	}

	result := newTestEngine().Project(items, Options{Sort: SortState{Key: "request.priority", Direction: Asc}})

	require.Len(t, result.Groups, 1)
	assert.Equal(t, GroupAll, result.Groups[0].Key)
	assert.Equal(t, 5, result.Total)
	assert.Equal(t, []string{"2", "5", "3", "1", "4"}, ids(result.Groups[0].Items))

	// input untouched
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(items))
}

func TestProject_PriorityDescending(t *testing.T) {
	items := []item{
		{ID: "1", Priority: "LOW"},
		{ID: "2", Priority: "HIGH"},
		{ID: "3", Priority: "MODERATE"},
		{ID: "4", Priority: "LOW"},
	}

	result := newTestEngine().Project(items, Options{Sort: SortState{Key: "request.priority", Direction: Desc}})

	assert.Equal(t, []string{"1", "4", "3", "2"}, ids(result.Groups[0].Items))
}

func TestProject_CategoryUsesDomainOrder(t *testing.T) {
	items := []item{
		{ID: "a", Category: "Project Demand"},
		{ID: "b", Category: "Personal"},
		{ID: "c", Category: "Medical"},
		{ID: "d", Category: "Sabbatical"},
		{ID: "e", Category: "Family Medical"},
	}

	result := newTestEngine().Project(items, Options{Sort: SortState{Key: "request.category", Direction: Asc}})

	assert.Equal(t, []string{"c", "e", "b", "a", "d"}, ids(result.Groups[0].Items))
}

func TestProject_DateSort(t *testing.T) {
	items := []item{
		{ID: "a", Start: "2026-11-10"},
		{ID: "b", Start: "2026-10-20"},
		{ID: "c", Start: "2026-12-01"},
	}

	asc := newTestEngine().Project(items, Options{Sort: SortState{Key: "request.requested_start_date", Direction: Asc}})
	desc := newTestEngine().Project(items, Options{Sort: SortState{Key: "request.requested_start_date", Direction: Desc}})

	assert.Equal(t, []string{"b", "a", "c"}, ids(asc.Groups[0].Items))
	assert.Equal(t, []string{"c", "a", "b"}, ids(desc.Groups[0].Items))
}

func TestProject_MissingValuesSortLast(t *testing.T) {
	items := []item{
		{ID: "a"},
		{ID: "b", Name: strPtr("Bob")},
		{ID: "c", Name: strPtr("alice")},
	}

	for _, dir := range []Direction{Asc, Desc} {
		result := newTestEngine().Project(items, Options{Sort: SortState{Key: "employee.name", Direction: dir}})
		got := ids(result.Groups[0].Items)
		assert.Equal(t, "a", got[2], "direction %s", dir)
	}

	asc := newTestEngine().Project(items, Options{Sort: SortState{Key: "employee.name", Direction: Asc}})
	assert.Equal(t, []string{"c", "b", "a"}, ids(asc.Groups[0].Items))
}

func TestProject_NumericDefaultSort(t *testing.T) {
	items := []item{{ID: "a", Days: 10}, {ID: "b", Days: 2}, {ID: "c", Days: 5}}

	result := newTestEngine().Project(items, Options{Sort: SortState{Key: "request.days", Direction: Asc}})

	assert.Equal(t, []string{"b", "c", "a"}, ids(result.Groups[0].Items))
}

func TestProject_SearchIsCaseInsensitive(t *testing.T) {
	items := []item{
		{ID: "req-1", Category: "Medical", Name: strPtr("Alice Smith")},
		{ID: "req-2", Category: "Personal", Name: strPtr("Bob Jones")},
		{ID: "req-3", Category: "Family Medical", Name: nil},
	}
	fields := []string{"id", "request.category", "employee.name"}

	result := newTestEngine().Project(items, Options{SearchTerm: "  MEDICAL ", SearchFields: fields})
	assert.Equal(t, []string{"req-1", "req-3"}, ids(result.Groups[0].Items))
	assert.Equal(t, 2, result.Total)

	result = newTestEngine().Project(items, Options{SearchTerm: "jones", SearchFields: fields})
	assert.Equal(t, []string{"req-2"}, ids(result.Groups[0].Items))

	result = newTestEngine().Project(items, Options{SearchTerm: "nobody", SearchFields: fields})
	require.Len(t, result.Groups, 1)
	assert.Empty(t, result.Groups[0].Items)
	assert.Equal(t, 0, result.Total)
}

func TestProject_GroupingPreservesSortedOrder(t *testing.T) {
	items := []item{
		{ID: "1", Team: "t2", Priority: "LOW"},
		{ID: "2", Team: "t1", Priority: "HIGH"},
		{ID: "3", Team: "t2", Priority: "HIGH"},
		{ID: "4", Team: "t1", Priority: "MODERATE"},
	}

	result := newTestEngine().Project(items, Options{
		Sort:     SortState{Key: "request.priority", Direction: Asc},
		GroupKey: "team_owner.id",
	})

	require.Len(t, result.Groups, 2)
	assert.Equal(t, "t1", result.Groups[0].Key)
	assert.Equal(t, []string{"2", "4"}, ids(result.Groups[0].Items))
	assert.Equal(t, "t2", result.Groups[1].Key)
	assert.Equal(t, []string{"3", "1"}, ids(result.Groups[1].Items))
	assert.Equal(t, 4, result.Total)
}

func TestProject_GroupNoneReturnsSingleGroup(t *testing.T) {
	items := []item{{ID: "1", Team: "t1"}, {ID: "2", Team: "t2"}}

	for _, key := range []string{"", GroupNone} {
		result := newTestEngine().Project(items, Options{GroupKey: key})
		require.Len(t, result.Groups, 1)
		assert.Equal(t, GroupAll, result.Groups[0].Key)
		assert.Equal(t, []string{"1", "2"}, ids(result.Groups[0].Items))
	}
}

func TestProject_Deterministic(t *testing.T) {
	items := []item{
		{ID: "1", Priority: "LOW", Team: "t1"},
		{ID: "2", Priority: "HIGH", Team: "t2"},
		{ID: "3", Priority: "HIGH", Team: "t1"},
	}
	opts := Options{Sort: SortState{Key: "request.priority", Direction: Asc}, GroupKey: "team_owner.id"}

	engine := newTestEngine()
	assert.Equal(t, engine.Project(items, opts), engine.Project(items, opts))
}

func TestSortState_Select(t *testing.T) {
	var s SortState

	s = s.Select("request.priority")
	assert.Equal(t, SortState{Key: "request.priority", Direction: Asc}, s)

	s = s.Select("request.priority")
	assert.Equal(t, Desc, s.Direction)

	s = s.Select("request.priority")
	assert.Equal(t, Asc, s.Direction)

	s = s.Select("request.category")
	assert.Equal(t, SortState{Key: "request.category", Direction: Asc}, s)
}

func TestRecord_Lookup(t *testing.T) {
	rec := itemRecord(item{ID: "x", Priority: "HIGH", Team: "t9"})

	v, ok := rec.Lookup("request.priority")
	assert.True(t, ok)
	assert.Equal(t, "HIGH", v)

	v, ok = rec.Lookup("team_owner.id")
	assert.True(t, ok)
	assert.Equal(t, "t9", v)

	_, ok = rec.Lookup("employee.name")
	assert.False(t, ok, "nil pointer is missing")

	_, ok = rec.Lookup("request.priority.deeper")
	assert.False(t, ok)

	_, ok = rec.Lookup("unknown")
	assert.False(t, ok)
}

func TestComparators(t *testing.T) {
	order := OrderComparator("HIGH", "MODERATE", "LOW")
	assert.Negative(t, order("high", "LOW"))
	assert.Positive(t, order("unknown", "LOW"))
	assert.Zero(t, order("MODERATE", "moderate"))

	assert.Negative(t, DateComparator("2026-01-02", "2026-01-10"))
	assert.Negative(t, DateComparator("2026-01-02", "not a date"))
	assert.Positive(t, DateComparator("garbage", "2026-01-02"))

	assert.Negative(t, DefaultComparator(2, 10))
	assert.Negative(t, DefaultComparator("apple", "Banana"))
	assert.Negative(t, DefaultComparator(false, true))
}
