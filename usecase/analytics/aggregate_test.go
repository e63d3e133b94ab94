package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
)

var (
	jakarta = localtime.Default()
	now     = time.Date(2026, 10, 15, 20, 0, 0, 0, jakarta) // a Thursday
)

func ptr(t time.Time) *time.Time { return &t }

func daysAgo(d int, hour int) time.Time {
	base := now.AddDate(0, 0, -d)
	return time.Date(base.Year(), base.Month(), base.Day(), hour, 0, 0, 0, jakarta)
}

func TestDailyTaskCompletionEmptyWindow(t *testing.T) {
	got := DailyTaskCompletion(nil, 7, now, jakarta)

	require.Len(t, got, 7)
	for _, day := range got {
		assert.Zero(t, day.Completed)
		assert.Zero(t, day.Total)
		assert.Zero(t, day.Percentage)
	}
	assert.Equal(t, "2026-10-09", got[0].Date)
	assert.Equal(t, "2026-10-15", got[6].Date)
	assert.Equal(t, "Thu", got[6].Day)
}

func TestDailyTaskCompletionUsesMaxOfCreatedAndCompleted(t *testing.T) {
	tasks := []domain.Task{
		// created three days ago, completed today
		{CreatedAt: daysAgo(3, 9), Completed: true, CompletedAt: ptr(daysAgo(0, 10))},
		// created today, completed today
		{CreatedAt: daysAgo(0, 8), Completed: true, CompletedAt: ptr(daysAgo(0, 11))},
		// created today, open
		{CreatedAt: daysAgo(0, 9)},
		// created yesterday, open
		{CreatedAt: daysAgo(1, 9)},
	}

	got := DailyTaskCompletion(tasks, 7, now, jakarta)
	today := got[6]
	assert.Equal(t, 2, today.Completed)
	assert.Equal(t, 2, today.Created)
	assert.Equal(t, 2, today.Total)
	assert.Equal(t, 100, today.Percentage)

	yesterday := got[5]
	assert.Equal(t, 0, yesterday.Completed)
	assert.Equal(t, 1, yesterday.Total)
	assert.Equal(t, 0, yesterday.Percentage)

	threeDaysAgo := got[3]
	assert.Equal(t, 1, threeDaysAgo.Created)
	assert.Equal(t, 0, threeDaysAgo.Percentage)
}

func TestDailyTaskCompletionRoundsPercentage(t *testing.T) {
	tasks := []domain.Task{
		{CreatedAt: daysAgo(0, 8), Completed: true, CompletedAt: ptr(daysAgo(0, 9))},
		{CreatedAt: daysAgo(0, 8)},
		{CreatedAt: daysAgo(0, 8)},
	}
	got := DailyTaskCompletion(tasks, 1, now, jakarta)
	require.Len(t, got, 1)
	assert.Equal(t, 33, got[0].Percentage)
}

func TestDailyMoodTrend(t *testing.T) {
	journals := []domain.Journal{
		{Mood: domain.MoodHappy, CreatedAt: daysAgo(0, 8)},
		{Mood: domain.MoodSad, CreatedAt: daysAgo(0, 12)},
		{Mood: domain.MoodHappy, CreatedAt: daysAgo(0, 18)},
		{Mood: domain.MoodAngry, CreatedAt: daysAgo(1, 9)},
	}

	got := DailyMoodTrend(journals, 3, now, jakarta)
	require.Len(t, got, 3)

	assert.Equal(t, 0, got[0].Entries)
	assert.Equal(t, domain.MoodNeutral, got[0].DominantMood)
	assert.Zero(t, got[0].AverageScore)

	assert.Equal(t, domain.MoodAngry, got[1].DominantMood)
	assert.Equal(t, -1.0, got[1].AverageScore)

	assert.Equal(t, domain.MoodHappy, got[2].DominantMood)
	assert.Equal(t, 3, got[2].Entries)
	assert.Equal(t, 2.7, got[2].AverageScore) // (4+0+4)/3
}

func TestDominantMoodTieBreaksLexicographically(t *testing.T) {
	journals := []domain.Journal{
		{Mood: domain.MoodTired, CreatedAt: daysAgo(0, 8)},
		{Mood: domain.MoodCalm, CreatedAt: daysAgo(0, 9)},
	}
	for i := 0; i < 20; i++ {
		got := DailyMoodTrend(journals, 1, now, jakarta)
		assert.Equal(t, domain.MoodCalm, got[0].DominantMood)
	}
}

func TestMoodDistribution(t *testing.T) {
	journals := []domain.Journal{
		{Mood: domain.MoodHappy, CreatedAt: daysAgo(1, 8)},
		{Mood: domain.MoodSad, CreatedAt: daysAgo(2, 8)},
		{Mood: domain.MoodHappy, CreatedAt: daysAgo(3, 8)},
		{Mood: domain.MoodHappy, CreatedAt: daysAgo(4, 8)},
		// outside the window
		{Mood: domain.MoodAngry, CreatedAt: daysAgo(40, 8)},
	}

	got := MoodDistribution(journals, 30, now, func(m domain.Mood) string { return string(m) + "!" })

	require.Len(t, got, 2)
	assert.Equal(t, domain.MoodHappy, got[0].Mood)
	assert.Equal(t, 3, got[0].Count)
	assert.Equal(t, 75, got[0].Percentage)
	assert.Equal(t, "happy!", got[0].Label)
	assert.Equal(t, domain.MoodSad, got[1].Mood)
	assert.Equal(t, 25, got[1].Percentage)
}

func TestMoodDistributionEmptyWindow(t *testing.T) {
	got := MoodDistribution([]domain.Journal{{Mood: domain.MoodHappy, CreatedAt: daysAgo(90, 8)}}, 30, now, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMoodDistributionRoundsIndependently(t *testing.T) {
	journals := []domain.Journal{
		{Mood: domain.MoodHappy, CreatedAt: daysAgo(1, 8)},
		{Mood: domain.MoodSad, CreatedAt: daysAgo(1, 9)},
		{Mood: domain.MoodCalm, CreatedAt: daysAgo(1, 10)},
	}
	got := MoodDistribution(journals, 7, now, nil)
	require.Len(t, got, 3)
	// equal counts: ordered by name
	assert.Equal(t, []domain.Mood{domain.MoodCalm, domain.MoodHappy, domain.MoodSad},
		[]domain.Mood{got[0].Mood, got[1].Mood, got[2].Mood})
	for _, share := range got {
		assert.Equal(t, 33, share.Percentage)
	}
}

func TestHourlyProductivity(t *testing.T) {
	tasks := []domain.Task{
		{Completed: true, CompletedAt: ptr(daysAgo(1, 9))},
		{Completed: true, CompletedAt: ptr(daysAgo(2, 9))},
		{Completed: true, CompletedAt: ptr(daysAgo(60, 9))},
		{CreatedAt: daysAgo(1, 9)},
	}
	journals := []domain.Journal{
		{Mood: domain.MoodCalm, CreatedAt: daysAgo(1, 9)},
		{Mood: domain.MoodCalm, CreatedAt: daysAgo(3, 22)},
	}

	got := HourlyProductivity(tasks, journals, 30, now, jakarta)

	require.Len(t, got, 24)
	assert.Equal(t, HourlyActivity{Hour: 9, Tasks: 2, Journals: 1, Productivity: 3}, got[9])
	assert.Equal(t, HourlyActivity{Hour: 22, Tasks: 0, Journals: 1, Productivity: 1}, got[22])
	assert.Equal(t, HourlyActivity{Hour: 0}, got[0])
}

func weekWindows() (Window, Window) {
	current := Window{Range: localtime.Trailing(now, 7)}
	previous := Window{Range: localtime.Range{From: now.AddDate(0, 0, -14), To: current.Range.From.Add(-time.Nanosecond)}}
	return current, previous
}

func tasksCreated(n int, daysBack int, completed int) []domain.Task {
	out := make([]domain.Task, n)
	for i := range out {
		out[i].CreatedAt = daysAgo(daysBack, 9)
		if i < completed {
			out[i].Completed = true
			out[i].CompletedAt = ptr(daysAgo(daysBack, 10))
		}
	}
	return out
}

func TestSummarizeTaskChange(t *testing.T) {
	current, previous := weekWindows()
	current.Tasks = tasksCreated(15, 1, 0)
	previous.Tasks = tasksCreated(10, 9, 0)

	summary := Summarize(current, previous, jakarta)

	assert.Equal(t, 15, summary.TaskCount)
	assert.Equal(t, 10, summary.PreviousTaskCount)
	assert.Equal(t, "50%", summary.TaskChange)
}

func TestSummarizeTaskChangeWithoutPreviousTasks(t *testing.T) {
	current, previous := weekWindows()
	current.Tasks = tasksCreated(4, 1, 0)

	summary := Summarize(current, previous, jakarta)

	assert.Equal(t, NotAvailable, summary.TaskChange)
	assert.Equal(t, NotAvailable, summary.MostProductiveDay)
}

func TestSummarizeNegativeChange(t *testing.T) {
	current, previous := weekWindows()
	current.Tasks = tasksCreated(8, 1, 0)
	previous.Tasks = tasksCreated(10, 9, 0)

	assert.Equal(t, "-20%", Summarize(current, previous, jakarta).TaskChange)
}

func TestSummarizeRatesMoodAndBestDay(t *testing.T) {
	current, previous := weekWindows()
	// 4 created two days ago (Tuesday), 3 completed the same day
	current.Tasks = tasksCreated(4, 2, 3)
	// 1 created and completed yesterday (Wednesday)
	current.Tasks = append(current.Tasks, tasksCreated(1, 1, 1)...)
	previous.Tasks = tasksCreated(2, 10, 1)
	current.Journals = []domain.Journal{
		{Mood: domain.MoodExcited, CreatedAt: daysAgo(1, 8)},
		{Mood: domain.MoodCalm, CreatedAt: daysAgo(2, 8)},
	}
	previous.Journals = []domain.Journal{{Mood: domain.MoodSad, CreatedAt: daysAgo(9, 8)}}

	summary := Summarize(current, previous, jakarta)

	assert.Equal(t, 80, summary.CompletionRate)
	assert.Equal(t, 50, summary.PreviousCompletionRate)
	assert.Equal(t, 30, summary.CompletionRateChange)
	assert.Equal(t, 4.0, summary.AverageMood)
	assert.Equal(t, 0.0, summary.PreviousAverageMood)
	assert.Equal(t, 4.0, summary.MoodChange)
	assert.Equal(t, "Tuesday", summary.MostProductiveDay)
	// 80*0.6 + ((4+1)/6*100)*0.4 = 48 + 33.3
	assert.Equal(t, 81, summary.ProductivityScore)
}

func TestSummarizeWithoutJournalsScoresCompletionOnly(t *testing.T) {
	current, previous := weekWindows()
	// 4 created, 3 completed, no journal entries
	current.Tasks = tasksCreated(4, 2, 3)

	summary := Summarize(current, previous, jakarta)

	assert.Equal(t, 75, summary.CompletionRate)
	assert.Equal(t, 0.0, summary.AverageMood)
	assert.Equal(t, 75, summary.ProductivityScore)

	assert.Equal(t, 0, Summarize(previous, previous, jakarta).ProductivityScore)
}

func TestProductivityScoreClamps(t *testing.T) {
	assert.Equal(t, 100, ProductivityScore(100, 5))
	assert.Equal(t, 0, ProductivityScore(0, -1))
	assert.Equal(t, 100, ProductivityScore(150, 5))
	assert.Equal(t, 0, ProductivityScore(-50, -1))
}
