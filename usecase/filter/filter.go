// Package filter turns the named list filters shown in the app into concrete
// predicates. Date-bounded filters use the application timezone.
package filter

import (
	"strings"
	"time"

	"github.com/fastygo/daybook/domain"
	"github.com/fastygo/daybook/pkg/localtime"
	"github.com/fastygo/daybook/repository"
)

// Task filter names.
const (
	TaskAll    = "all"
	TaskActive = "active"
	TaskDone   = "done"
	TaskToday  = "today"
)

// Journal filter names.
const (
	JournalAll       = "all"
	JournalToday     = "today"
	JournalThisWeek  = "this-week"
	JournalThisMonth = "this-month"
)

// Field names the timestamp a date-bounded predicate looks at.
type Field string

const (
	FieldNone     Field = ""
	FieldDeadline Field = "deadline"
	FieldCreated  Field = "created"
)

// Predicate is the resolved form of a filter name.
type Predicate struct {
	Name      string
	Completed *bool
	Field     Field
	Range     *localtime.Range
}

func boolPtr(b bool) *bool { return &b }

// ResolveTaskFilter maps a task filter name to a predicate. Unknown names resolve to "all".
func ResolveTaskFilter(name string, now time.Time, loc *time.Location) Predicate {
	switch normalize(name) {
	case TaskActive:
		return Predicate{Name: TaskActive, Completed: boolPtr(false)}
	case TaskDone:
		return Predicate{Name: TaskDone, Completed: boolPtr(true)}
	case TaskToday:
		day := localtime.Today(now, loc)
		return Predicate{Name: TaskToday, Field: FieldDeadline, Range: &day}
	default:
		return Predicate{Name: TaskAll}
	}
}

// ResolveJournalFilter maps a journal filter name to a predicate. Unknown names resolve to "all".
// "this-week" is the rolling last 7 days, not the calendar week.
func ResolveJournalFilter(name string, now time.Time, loc *time.Location) Predicate {
	var r localtime.Range
	switch normalize(name) {
	case JournalToday:
		r = localtime.Today(now, loc)
		return Predicate{Name: JournalToday, Field: FieldCreated, Range: &r}
	case JournalThisWeek:
		r = localtime.Trailing(now, 7)
		return Predicate{Name: JournalThisWeek, Field: FieldCreated, Range: &r}
	case JournalThisMonth:
		r = localtime.Month(now, loc)
		return Predicate{Name: JournalThisMonth, Field: FieldCreated, Range: &r}
	default:
		return Predicate{Name: JournalAll}
	}
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// MatchTask evaluates the predicate in memory. Tasks without a deadline never match a date range.
func (p Predicate) MatchTask(t domain.Task) bool {
	if p.Completed != nil && t.Completed != *p.Completed {
		return false
	}
	if p.Range != nil {
		var at *time.Time
		switch p.Field {
		case FieldDeadline:
			at = t.Deadline
		case FieldCreated:
			at = &t.CreatedAt
		}
		return inRange(at, *p.Range)
	}
	return true
}

// MatchJournal evaluates the predicate in memory.
func (p Predicate) MatchJournal(j domain.Journal) bool {
	if p.Range == nil {
		return true
	}
	return inRange(&j.CreatedAt, *p.Range)
}

func inRange(at *time.Time, r localtime.Range) bool {
	if at == nil || at.IsZero() {
		return false
	}
	return r.Contains(*at)
}

// ApplyTask pushes the predicate into a repository query.
func (p Predicate) ApplyTask(f *repository.TaskFilter) {
	f.Completed = p.Completed
	if p.Range != nil && p.Field == FieldDeadline {
		from, to := p.Range.From, p.Range.To
		f.DeadlineFrom, f.DeadlineTo = &from, &to
	}
}

// ApplyJournal pushes the predicate into a repository query.
func (p Predicate) ApplyJournal(f *repository.JournalFilter) {
	if p.Range != nil {
		from, to := p.Range.From, p.Range.To
		f.CreatedFrom, f.CreatedTo = &from, &to
	}
}
