package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/qubitgyan-student/internal/domain/learning"
)

func TestPercent(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 0, 0},
		{5, 0, 0},
		{1, 3, 33},
		{2, 3, 67},
		{1, 2, 50},
		{1, 8, 13},
		{3, 3, 100},
		{0, 7, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Percent(tc.completed, tc.total), "%d/%d", tc.completed, tc.total)
	}
}

func TestPercentBounds(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for c := 0; c <= total; c++ {
			p := Percent(c, total)
			require.GreaterOrEqual(t, p, 0)
			require.LessOrEqual(t, p, 100)
		}
	}
}

func TestCompletedSetAnyTrueRecordCounts(t *testing.T) {
	set := CompletedSet([]learning.StudentProgress{
		{Resource: 10, IsCompleted: false},
		{Resource: 10, IsCompleted: true},
		{Resource: 11, IsCompleted: false},
	})
	require.Equal(t, []int64{10}, SortedIDs(set))
}

func TestTallyDedupsResources(t *testing.T) {
	completed := map[int64]struct{}{10: {}}
	cp := Tally([]learning.Resource{{ID: 10}, {ID: 11}, {ID: 10}}, completed)
	require.Equal(t, learning.CourseProgress{Total: 2, Completed: 1, Percent: 50}, cp)

	empty := Tally(nil, completed)
	require.Equal(t, 0, empty.Percent)
}

func TestStreakDaysCountsDistinctDays(t *testing.T) {
	records := []learning.StudentProgress{
		{Resource: 1, IsCompleted: true, LastAccessed: "2024-03-01T09:00:00Z"},
		{Resource: 2, IsCompleted: true, LastAccessed: "2024-03-01T18:30:00Z"},
		{Resource: 3, IsCompleted: true, LastAccessed: "2024-03-04T07:00:00Z"},
		{Resource: 4, IsCompleted: false, LastAccessed: "2024-03-05T07:00:00Z"},
		{Resource: 5, IsCompleted: true, LastAccessed: "not a date"},
	}
	require.Equal(t, 2, StreakDays(records, time.UTC))

	kolkata := time.FixedZone("IST", 5*3600+1800)
	// 18:30Z on the 1st is already the 2nd in IST.
	require.Equal(t, 3, StreakDays(records, kolkata))
	require.Equal(t, 0, StreakDays(nil, nil))
}

func TestRecentNewestFirst(t *testing.T) {
	var records []learning.StudentProgress
	for i := 1; i <= 7; i++ {
		records = append(records, learning.StudentProgress{
			Resource:     int64(i),
			IsCompleted:  true,
			LastAccessed: time.Date(2024, 3, i, 12, 0, 0, 0, time.UTC).Format(time.RFC3339),
		})
	}
	records = append(records, learning.StudentProgress{Resource: 1, IsCompleted: true, LastAccessed: "2024-03-20T00:00:00Z"})

	got := Recent(records, RecentLimit)
	require.Len(t, got, RecentLimit)
	ids := []int64{}
	for _, r := range got {
		ids = append(ids, r.Resource)
	}
	require.Equal(t, []int64{1, 7, 6, 5, 4}, ids)
}

func TestSummarize(t *testing.T) {
	s := Summarize([]learning.StudentProgress{
		{Resource: 12, IsCompleted: true, LastAccessed: "2024-05-02"},
		{Resource: 10, IsCompleted: true, LastAccessed: "2024-05-01 10:00:00"},
	}, time.UTC)
	require.Equal(t, []int64{10, 12}, s.CompletedResourceIDs)
	require.Equal(t, 2, s.StreakDays)
	require.Len(t, s.Recent, 2)
	require.Equal(t, int64(12), s.Recent[0].Resource)
}

func TestApplyCompletionDoesNotMutateInput(t *testing.T) {
	in := []learning.Resource{{ID: 1}, {ID: 2, IsCompleted: true}}
	out := ApplyCompletion(in, map[int64]struct{}{1: {}})
	require.True(t, out[0].IsCompleted)
	require.False(t, out[1].IsCompleted)
	require.False(t, in[0].IsCompleted)
}
