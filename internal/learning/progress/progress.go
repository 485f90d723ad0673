// Package progress aggregates completion records into the numbers the course
// viewer and sidebar display. Everything here is pure; fetching lives in
// services.ProgressService.
package progress

import (
	"sort"
	"time"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

// RecentLimit is the number of completions returned by Recent.
const RecentLimit = 5

// Percent returns round-half-up(100*completed/total), and 0 when total is 0.
func Percent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	if completed > total {
		completed = total
	}
	return (200*completed + total) / (2 * total)
}

// CompletedSet holds every resource id with at least one completed record.
func CompletedSet(records []learning.StudentProgress) map[int64]struct{} {
	set := make(map[int64]struct{}, len(records))
	for _, r := range records {
		if r.IsCompleted {
			set[r.Resource] = struct{}{}
		}
	}
	return set
}

// SortedIDs returns the set in ascending order.
func SortedIDs(set map[int64]struct{}) []int64 {
	out := make([]int64, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Tally counts distinct resources and how many of them are completed.
func Tally(resources []learning.Resource, completed map[int64]struct{}) learning.CourseProgress {
	seen := make(map[int64]struct{}, len(resources))
	var cp learning.CourseProgress
	for _, r := range resources {
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		cp.Total++
		if _, ok := completed[r.ID]; ok {
			cp.Completed++
		}
	}
	cp.Percent = Percent(cp.Completed, cp.Total)
	return cp
}

// StreakDays counts distinct calendar days, in loc, on which something was
// completed. Days need not be consecutive. Records with an unparseable
// timestamp are ignored.
func StreakDays(records []learning.StudentProgress, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	days := map[string]struct{}{}
	for _, r := range records {
		if !r.IsCompleted {
			continue
		}
		at, ok := r.AccessedAt()
		if !ok {
			continue
		}
		days[at.In(loc).Format("2006-01-02")] = struct{}{}
	}
	return len(days)
}

// Recent returns up to limit completions, newest first, one per resource.
func Recent(records []learning.StudentProgress, limit int) []learning.RecentCompletion {
	latest := map[int64]time.Time{}
	for _, r := range records {
		if !r.IsCompleted {
			continue
		}
		at, ok := r.AccessedAt()
		if !ok {
			continue
		}
		if prev, seen := latest[r.Resource]; !seen || at.After(prev) {
			latest[r.Resource] = at
		}
	}
	out := make([]learning.RecentCompletion, 0, len(latest))
	for id, at := range latest {
		out = append(out, learning.RecentCompletion{Resource: id, LastAccessed: at})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastAccessed.Equal(out[j].LastAccessed) {
			return out[i].LastAccessed.After(out[j].LastAccessed)
		}
		return out[i].Resource < out[j].Resource
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Summarize builds the sidebar summary from the raw progress records.
func Summarize(records []learning.StudentProgress, loc *time.Location) learning.ProgressSummary {
	return learning.ProgressSummary{
		CompletedResourceIDs: SortedIDs(CompletedSet(records)),
		StreakDays:           StreakDays(records, loc),
		Recent:               Recent(records, RecentLimit),
	}
}

// ApplyCompletion returns a copy of resources with IsCompleted merged from the set.
func ApplyCompletion(resources []learning.Resource, completed map[int64]struct{}) []learning.Resource {
	out := make([]learning.Resource, len(resources))
	for i, r := range resources {
		_, r.IsCompleted = completed[r.ID]
		out[i] = r
	}
	return out
}
