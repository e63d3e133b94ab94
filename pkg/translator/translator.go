// Package translator resolves display labels for priorities and moods.
// English is the canonical label set; other languages come from TOML message files.
package translator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/fastygo/daybook/domain"
)

const (
	LanguageEn = "en"
	LanguageID = "id"
)

type Config struct {
	TranslationFolder string
	DefaultLanguage   string
}

// Translator owns the message bundle. It is safe for concurrent use once built.
type Translator struct {
	bundle   *i18n.Bundle
	fallback string
}

var canonicalPriority = map[domain.Priority]string{
	domain.PriorityHigh:   "High",
	domain.PriorityMedium: "Medium",
	domain.PriorityLow:    "Low",
}

// New builds a bundle seeded with the canonical English labels and overlays
// every *.toml file found in cfg.TranslationFolder. A missing folder is logged, not fatal.
func New(cfg Config, logger *zap.Logger) *Translator {
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	_ = bundle.AddMessages(language.English, canonicalMessages()...)

	fallback := cfg.DefaultLanguage
	if fallback == "" {
		fallback = LanguageEn
	}
	t := &Translator{bundle: bundle, fallback: fallback}

	if cfg.TranslationFolder == "" {
		return t
	}
	files, err := os.ReadDir(cfg.TranslationFolder)
	if err != nil {
		logger.Error("failed to list translation folder", zap.String("folder", cfg.TranslationFolder), zap.Error(err))
		return t
	}
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != ".toml" {
			continue
		}
		if _, err := bundle.LoadMessageFile(filepath.Join(cfg.TranslationFolder, f.Name())); err != nil {
			logger.Warn("failed to load translation file", zap.String("file", f.Name()), zap.Error(err))
		}
	}
	return t
}

func canonicalMessages() []*i18n.Message {
	msgs := make([]*i18n.Message, 0, len(canonicalPriority)+len(domain.Moods))
	for p, label := range canonicalPriority {
		msgs = append(msgs, &i18n.Message{ID: priorityID(p), Other: label})
	}
	for _, m := range domain.Moods {
		msgs = append(msgs, &i18n.Message{ID: moodID(m), Other: titleCase(string(m))})
	}
	return msgs
}

// For returns a Labels bound to the preferred languages (Accept-Language values or tags).
func (t *Translator) For(langs ...string) Labels {
	if t == nil {
		return English
	}
	prefs := append(append([]string(nil), langs...), t.fallback, LanguageEn)
	return Labels{localizer: i18n.NewLocalizer(t.bundle, prefs...)}
}

// Labels implements the label lookups used by card transforms.
// The zero value returns canonical English labels.
type Labels struct {
	localizer *i18n.Localizer
}

// English is the canonical label set.
var English = Labels{}

func (l Labels) PriorityLabel(p domain.Priority) string {
	if !p.Valid() {
		p = domain.PriorityMedium
	}
	return l.localize(priorityID(p), canonicalPriority[p])
}

func (l Labels) MoodLabel(m domain.Mood) string {
	if !m.Valid() {
		return titleCase(string(m))
	}
	return l.localize(moodID(m), titleCase(string(m)))
}

func (l Labels) localize(id, fallback string) string {
	if l.localizer == nil {
		return fallback
	}
	msg, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil || msg == "" {
		return fallback
	}
	return msg
}

func priorityID(p domain.Priority) string { return fmt.Sprintf("priority.%s", p) }

func moodID(m domain.Mood) string { return fmt.Sprintf("mood.%s", m) }

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
