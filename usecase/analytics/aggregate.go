// Package analytics buckets already-fetched tasks and journals into daily,
// hourly and weekly summaries. All bucketing happens in memory.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
)

// NotAvailable is reported where a value cannot be computed.
const NotAvailable = "N/A"

type DailyCompletion struct {
	Date       string `json:"date"`
	Day        string `json:"day"`
	Completed  int    `json:"completed"`
	Created    int    `json:"created"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
}

type DailyMood struct {
	Date         string      `json:"date"`
	Day          string      `json:"day"`
	AverageScore float64     `json:"average_score"`
	DominantMood domain.Mood `json:"dominant_mood"`
	Entries      int         `json:"entries"`
}

type MoodShare struct {
	Mood       domain.Mood `json:"mood"`
	Label      string      `json:"label"`
	Glyph      string      `json:"glyph"`
	Count      int         `json:"count"`
	Percentage int         `json:"percentage"`
}

type HourlyActivity struct {
	Hour         int `json:"hour"`
	Tasks        int `json:"tasks"`
	Journals     int `json:"journals"`
	Productivity int `json:"productivity"`
}

// DailyTaskCompletion buckets the last days local days, oldest first.
// A day's total is max(created, completed): completions of tasks created on an
// earlier day must not push the percentage above 100.
func DailyTaskCompletion(tasks []domain.Task, days int, now time.Time, loc *time.Location) []DailyCompletion {
	if days <= 0 {
		return []DailyCompletion{}
	}
	out := make([]DailyCompletion, 0, days)
	for i := 0; i < days; i++ {
		day := localtime.Day(now, -(days - 1 - i), loc)
		entry := DailyCompletion{
			Date: localtime.DateKey(day.From, loc),
			Day:  day.From.Weekday().String()[:3],
		}
		for _, t := range tasks {
			if t.CompletedAt != nil && day.Contains(*t.CompletedAt) {
				entry.Completed++
			}
			if !t.CreatedAt.IsZero() && day.Contains(t.CreatedAt) {
				entry.Created++
			}
		}
		entry.Total = max(entry.Created, entry.Completed)
		entry.Percentage = percent(entry.Completed, entry.Total)
		out = append(out, entry)
	}
	return out
}

// DailyMoodTrend averages mood scores per local day, oldest first.
// Days without entries score 0 and report neutral as the dominant mood.
func DailyMoodTrend(journals []domain.Journal, days int, now time.Time, loc *time.Location) []DailyMood {
	if days <= 0 {
		return []DailyMood{}
	}
	out := make([]DailyMood, 0, days)
	for i := 0; i < days; i++ {
		day := localtime.Day(now, -(days - 1 - i), loc)
		counts := make(map[domain.Mood]int)
		sum, n := 0, 0
		for _, j := range journals {
			if j.CreatedAt.IsZero() || !day.Contains(j.CreatedAt) {
				continue
			}
			counts[j.Mood]++
			sum += j.Mood.Score()
			n++
		}
		entry := DailyMood{
			Date:         localtime.DateKey(day.From, loc),
			Day:          day.From.Weekday().String()[:3],
			DominantMood: domain.MoodNeutral,
			Entries:      n,
		}
		if n > 0 {
			entry.AverageScore = round1(float64(sum) / float64(n))
			entry.DominantMood = dominant(counts)
		}
		out = append(out, entry)
	}
	return out
}

// dominant picks the most frequent mood; ties go to the lexicographically smallest name.
func dominant(counts map[domain.Mood]int) domain.Mood {
	best, bestCount := domain.MoodNeutral, 0
	for mood, c := range counts {
		if c > bestCount || (c == bestCount && mood < best) {
			best, bestCount = mood, c
		}
	}
	return best
}

// MoodDistribution counts moods inside the trailing window, most frequent first.
// An empty window yields an empty slice, not a list of zeroes. Percentages are
// rounded independently and need not sum to 100.
func MoodDistribution(journals []domain.Journal, windowDays int, now time.Time, labels func(domain.Mood) string) []MoodShare {
	window := localtime.Trailing(now, windowDays)
	counts := make(map[domain.Mood]int)
	total := 0
	for _, j := range journals {
		if j.CreatedAt.IsZero() || !window.Contains(j.CreatedAt) {
			continue
		}
		counts[j.Mood]++
		total++
	}
	out := make([]MoodShare, 0, len(counts))
	if total == 0 {
		return out
	}
	for mood, c := range counts {
		share := MoodShare{
			Mood:       mood,
			Glyph:      mood.Glyph(),
			Count:      c,
			Percentage: percent(c, total),
		}
		if labels != nil {
			share.Label = labels(mood)
		}
		out = append(out, share)
	}
	sort.Slice(out, func(i, k int) bool {
		if out[i].Count != out[k].Count {
			return out[i].Count > out[k].Count
		}
		return out[i].Mood < out[k].Mood
	})
	return out
}

// HourlyProductivity counts task completions and journal entries per local hour
// of day over the trailing window. Counts are not normalized.
func HourlyProductivity(tasks []domain.Task, journals []domain.Journal, windowDays int, now time.Time, loc *time.Location) []HourlyActivity {
	if loc == nil {
		loc = localtime.Default()
	}
	window := localtime.Trailing(now, windowDays)
	out := make([]HourlyActivity, 24)
	for h := range out {
		out[h].Hour = h
	}
	for _, t := range tasks {
		if t.CompletedAt == nil || !window.Contains(*t.CompletedAt) {
			continue
		}
		out[t.CompletedAt.In(loc).Hour()].Tasks++
	}
	for _, j := range journals {
		if j.CreatedAt.IsZero() || !window.Contains(j.CreatedAt) {
			continue
		}
		out[j.CreatedAt.In(loc).Hour()].Journals++
	}
	for h := range out {
		out[h].Productivity = out[h].Tasks + out[h].Journals
	}
	return out
}

// Window is one period of rows compared by Summarize.
type Window struct {
	Range    localtime.Range
	Tasks    []domain.Task
	Journals []domain.Journal
}

type WeeklySummary struct {
	TaskCount              int     `json:"task_count"`
	PreviousTaskCount      int     `json:"previous_task_count"`
	TaskChange             string  `json:"task_change"`
	CompletedCount         int     `json:"completed_count"`
	CompletionRate         int     `json:"completion_rate"`
	PreviousCompletionRate int     `json:"previous_completion_rate"`
	CompletionRateChange   int     `json:"completion_rate_change"`
	AverageMood            float64 `json:"average_mood"`
	PreviousAverageMood    float64 `json:"previous_average_mood"`
	MoodChange             float64 `json:"mood_change"`
	MostProductiveDay      string  `json:"most_productive_day"`
	ProductivityScore      int     `json:"productivity_score"`
}

type periodStats struct {
	created     int
	completed   int
	rate        int
	entries     int
	averageMood float64
}

func statsFor(w Window) periodStats {
	var s periodStats
	for _, t := range w.Tasks {
		if t.CreatedAt.IsZero() || !w.Range.Contains(t.CreatedAt) {
			continue
		}
		s.created++
		if t.Completed {
			s.completed++
		}
	}
	s.rate = percent(s.completed, s.created)

	sum, n := 0, 0
	for _, j := range w.Journals {
		if j.CreatedAt.IsZero() || !w.Range.Contains(j.CreatedAt) {
			continue
		}
		sum += j.Mood.Score()
		n++
	}
	s.entries = n
	if n > 0 {
		s.averageMood = float64(sum) / float64(n)
	}
	return s
}

// Summarize compares the current window with the previous one.
//
// TaskChange is NotAvailable whenever the previous window had no tasks, which
// also hides genuine growth from zero. A window without journal entries
// reports an AverageMood of 0 and its ProductivityScore is the completion
// rate alone.
func Summarize(current, previous Window, loc *time.Location) WeeklySummary {
	cur, prev := statsFor(current), statsFor(previous)

	summary := WeeklySummary{
		TaskCount:              cur.created,
		PreviousTaskCount:      prev.created,
		TaskChange:             NotAvailable,
		CompletedCount:         cur.completed,
		CompletionRate:         cur.rate,
		PreviousCompletionRate: prev.rate,
		CompletionRateChange:   cur.rate - prev.rate,
		AverageMood:            round1(cur.averageMood),
		PreviousAverageMood:    round1(prev.averageMood),
		MoodChange:             round1(cur.averageMood - prev.averageMood),
		MostProductiveDay:      mostProductiveDay(current, loc),
	}
	if prev.created > 0 {
		change := int(math.Round(float64(cur.created-prev.created) / float64(prev.created) * 100))
		summary.TaskChange = fmt.Sprintf("%d%%", change)
	}
	summary.ProductivityScore = min(max(cur.rate, 0), 100)
	if cur.entries > 0 {
		summary.ProductivityScore = ProductivityScore(cur.rate, cur.averageMood)
	}
	return summary
}

// ProductivityScore blends completion rate (60%) with the mood average rescaled
// from [-1, 5] to [0, 100] (40%), clamped to [0, 100].
func ProductivityScore(completionRate int, averageMood float64) int {
	normalizedMood := (averageMood - domain.MinMoodScore) / (domain.MaxMoodScore - domain.MinMoodScore) * 100
	score := int(math.Round(float64(completionRate)*0.6 + normalizedMood*0.4))
	return min(max(score, 0), 100)
}

// mostProductiveDay names the weekday with most completions; ties go to the earlier weekday (Sunday first).
func mostProductiveDay(w Window, loc *time.Location) string {
	if loc == nil {
		loc = localtime.Default()
	}
	var perDay [7]int
	total := 0
	for _, t := range w.Tasks {
		if t.CompletedAt == nil || !w.Range.Contains(*t.CompletedAt) {
			continue
		}
		perDay[t.CompletedAt.In(loc).Weekday()]++
		total++
	}
	if total == 0 {
		return NotAvailable
	}
	best := time.Sunday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if perDay[d] > perDay[best] {
			best = d
		}
	}
	return best.String()
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
