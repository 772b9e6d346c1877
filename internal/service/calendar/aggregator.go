package calendar

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/calendar"
	"github.com/cmlabs-hris/wfh-backend-go/internal/domain/wfh"
	"github.com/cmlabs-hris/wfh-backend-go/internal/pkg/validator"
)

// Aggregate folds requests visible in scope into one DayAggregate per date of
// [from, to], keyed by YYYY-MM-DD. Every date in the range has an entry.
// Each request counts once per overlapping date under its current overall status.
func Aggregate(requests []wfh.Request, scope wfh.Scope, from, to time.Time) map[string]calendar.DayAggregate {
	from, to = wfh.DateOnly(from), wfh.DateOnly(to)
	days := make(map[string]calendar.DayAggregate)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days[d.Format(validator.DateLayout)] = calendar.DayAggregate{
			Date:   d,
			Counts: map[calendar.Bucket]int{},
			Teams:  map[string]map[calendar.Bucket]int{},
		}
	}

	for _, r := range requests {
		if !scope.Includes(r) {
			continue
		}
		start, end := wfh.DateOnly(r.StartDate), wfh.DateOnly(r.EndDate)
		if end.Before(from) || start.After(to) {
			continue
		}
		if start.Before(from) {
			start = from
		}
		if end.After(to) {
			end = to
		}

		bucket := calendar.BucketFor(r.Overall())
		for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
			key := d.Format(validator.DateLayout)
			day := days[key]
			day.Counts[bucket]++
			team, ok := day.Teams[r.TeamOwnerID]
			if !ok {
				team = map[calendar.Bucket]int{}
				day.Teams[r.TeamOwnerID] = team
			}
			team[bucket]++
			day.RequestIDs = append(day.RequestIDs, r.ID)
			days[key] = day
		}
	}

	for key, day := range days {
		day.Badge = calendar.BadgeFor(day.Counts)
		days[key] = day
	}
	return days
}

// Sorted returns the aggregates in date order.
func Sorted(days map[string]calendar.DayAggregate) []calendar.DayAggregate {
	out := make([]calendar.DayAggregate, 0, len(days))
	for _, day := range days {
		out = append(out, day)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// MonthRange returns the first and last day of month.
func MonthRange(month time.Time) (time.Time, time.Time) {
	y, m, _ := month.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, -1)
}
