package domain

import (
	"strings"
	"time"
)

// Mood is the fixed set of feelings a journal entry can be tagged with.
type Mood string

const (
	MoodHappy   Mood = "happy"
	MoodExcited Mood = "excited"
	MoodCalm    Mood = "calm"
	MoodNeutral Mood = "neutral"
	MoodTired   Mood = "tired"
	MoodSad     Mood = "sad"
	MoodAngry   Mood = "angry"
)

// DefaultMoodGlyph is shown for moods outside the known set.
const DefaultMoodGlyph = "😶"

// Moods lists every known mood, best score first.
var Moods = []Mood{MoodExcited, MoodHappy, MoodCalm, MoodNeutral, MoodTired, MoodSad, MoodAngry}

var moodScores = map[Mood]int{
	MoodExcited: 5,
	MoodHappy:   4,
	MoodCalm:    3,
	MoodNeutral: 2,
	MoodTired:   1,
	MoodSad:     0,
	MoodAngry:   -1,
}

var moodGlyphs = map[Mood]string{
	MoodHappy:   "😊",
	MoodExcited: "🤩",
	MoodCalm:    "😌",
	MoodNeutral: "😐",
	MoodTired:   "😴",
	MoodSad:     "😢",
	MoodAngry:   "😠",
}

const (
	MinMoodScore = -1
	MaxMoodScore = 5
)

func ParseMood(raw string) (Mood, error) {
	m := Mood(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", NewError(ErrCodeInvalid, "invalid mood")
	}
	return m, nil
}

func (m Mood) Valid() bool {
	_, ok := moodScores[m]
	return ok
}

// Score maps the mood onto the -1..5 scale used for averages. Unknown moods score as neutral.
func (m Mood) Score() int {
	if s, ok := moodScores[m]; ok {
		return s
	}
	return moodScores[MoodNeutral]
}

func (m Mood) Glyph() string {
	if g, ok := moodGlyphs[m]; ok {
		return g
	}
	return DefaultMoodGlyph
}

// Journal is a dated free-text entry with optional photos and tags.
type Journal struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Mood      Mood           `json:"mood"`
	Content   string         `json:"content"`
	Version   int            `json:"version"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Images    []JournalImage `json:"images,omitempty"`
	Tags      []JournalTag   `json:"tags,omitempty"`
}

type JournalImage struct {
	ID        string `json:"id"`
	JournalID string `json:"journal_id"`
	URL       string `json:"url"`
}

type JournalTag struct {
	ID        string `json:"id"`
	JournalID string `json:"journal_id"`
	Label     string `json:"label"`
}

// NormalizeTags trims, strips a leading '#', lower-cases and de-duplicates tag labels.
func NormalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, tag := range raw {
		label := strings.ToLower(strings.TrimLeft(strings.TrimSpace(tag), "#"))
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	return out
}
