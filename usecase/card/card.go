// Package card projects tasks and journals into display-ready views.
// Transforms never fail: bad dates and unknown enum values degrade to fallbacks.
package card

import (
	"time"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/pkg/translator"
)

// InvalidDate is rendered in place of a missing or unparsable timestamp.
const InvalidDate = "Invalid date"

// DateLayout is the long "day month year" form used on cards.
const DateLayout = "2 January 2006"

// Labeler resolves display labels for enum codes.
type Labeler interface {
	PriorityLabel(domain.Priority) string
	MoodLabel(domain.Mood) string
}

type SubTaskView struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type TaskCardView struct {
	ID             string        `json:"id"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	Priority       string        `json:"priority"`
	PriorityLabel  string        `json:"priority_label"`
	Completed      bool          `json:"completed"`
	Deadline       string        `json:"deadline,omitempty"`
	DeadlineISO    string        `json:"deadline_iso,omitempty"`
	CompletedAt    string        `json:"completed_at,omitempty"`
	CreatedAt      string        `json:"created_at"`
	CompletedCount *int          `json:"completed_count,omitempty"`
	TotalCount     *int          `json:"total_count,omitempty"`
	SubTasks       []SubTaskView `json:"sub_tasks"`
	Version        int           `json:"version"`
}

type JournalCardView struct {
	ID        string   `json:"id"`
	Mood      string   `json:"mood"`
	MoodLabel string   `json:"mood_label"`
	MoodGlyph string   `json:"mood_glyph"`
	Content   string   `json:"content"`
	Date      string   `json:"date"`
	CreatedAt string   `json:"created_at"`
	Images    []string `json:"images"`
	Tags      []string `json:"tags"`
	Version   int      `json:"version"`
}

// Transformer carries the label set and timezone used for rendering.
type Transformer struct {
	labels Labeler
	loc    *time.Location
}

// New returns a Transformer. Nil arguments select English labels and the default zone.
func New(labels Labeler, loc *time.Location) Transformer {
	if labels == nil {
		labels = translator.English
	}
	if loc == nil {
		loc = localtime.Default()
	}
	return Transformer{labels: labels, loc: loc}
}

// Default renders with canonical English labels in the application zone.
var Default = New(nil, nil)

func ToTaskCard(t domain.Task) TaskCardView { return Default.Task(t) }

func ToJournalCard(j domain.Journal) JournalCardView { return Default.Journal(j) }

func (tr Transformer) Task(t domain.Task) TaskCardView {
	priority := t.Priority
	if !priority.Valid() {
		priority = domain.PriorityMedium
	}
	view := TaskCardView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Priority:      string(priority),
		PriorityLabel: tr.labels.PriorityLabel(priority),
		Completed:     t.Completed,
		CreatedAt:     FormatDate(t.CreatedAt, tr.loc),
		SubTasks:      make([]SubTaskView, 0, len(t.SubTasks)),
		Version:       t.Version,
	}
	if t.Deadline != nil {
		view.Deadline = FormatDate(*t.Deadline, tr.loc)
		if !t.Deadline.IsZero() {
			view.DeadlineISO = t.Deadline.In(tr.loc).Format(time.RFC3339)
		}
	}
	if t.CompletedAt != nil {
		view.CompletedAt = FormatDate(*t.CompletedAt, tr.loc)
	}
	for _, st := range t.SubTasks {
		view.SubTasks = append(view.SubTasks, SubTaskView{ID: st.ID, Title: st.Title, Completed: st.Completed})
	}
	if done, total, ok := t.SubTaskProgress(); ok {
		view.CompletedCount = &done
		view.TotalCount = &total
	}
	return view
}

func (tr Transformer) Journal(j domain.Journal) JournalCardView {
	view := JournalCardView{
		ID:        j.ID,
		Mood:      string(j.Mood),
		MoodLabel: tr.labels.MoodLabel(j.Mood),
		MoodGlyph: j.Mood.Glyph(),
		Content:   j.Content,
		Date:      FormatDate(j.CreatedAt, tr.loc),
		Images:    make([]string, 0, len(j.Images)),
		Tags:      make([]string, 0, len(j.Tags)),
		Version:   j.Version,
	}
	if !j.CreatedAt.IsZero() {
		view.CreatedAt = j.CreatedAt.In(tr.loc).Format(time.RFC3339)
	}
	for _, img := range j.Images {
		if img.URL != "" {
			view.Images = append(view.Images, img.URL)
		}
	}
	for _, tag := range j.Tags {
		if tag.Label != "" {
			view.Tags = append(view.Tags, "#"+tag.Label)
		}
	}
	return view
}

func (tr Transformer) Tasks(tasks []domain.Task) []TaskCardView {
	out := make([]TaskCardView, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, tr.Task(t))
	}
	return out
}

func (tr Transformer) Journals(journals []domain.Journal) []JournalCardView {
	out := make([]JournalCardView, 0, len(journals))
	for _, j := range journals {
		out = append(out, tr.Journal(j))
	}
	return out
}

// FormatDate renders t as "15 October 2026" in loc, or InvalidDate for the zero time.
func FormatDate(t time.Time, loc *time.Location) string {
	if t.IsZero() {
		return InvalidDate
	}
	if loc == nil {
		loc = localtime.Default()
	}
	return t.In(loc).Format(DateLayout)
}

// FormatDateString parses an RFC 3339 timestamp and formats it like FormatDate.
func FormatDateString(raw string, loc *time.Location) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return InvalidDate
	}
	return FormatDate(t, loc)
}
