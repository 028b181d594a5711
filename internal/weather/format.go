package weather

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/locales"
	"github.com/go-playground/locales/de"
	"github.com/go-playground/locales/en"
	"github.com/go-playground/locales/en_GB"
	"github.com/go-playground/locales/es"
	"github.com/go-playground/locales/fr"
	"github.com/go-playground/locales/it"
	"github.com/go-playground/locales/nl"
	"github.com/go-playground/locales/pt"
	"github.com/go-playground/locales/ro"
)

var translators = map[string]func() locales.Translator{
	"en":    en.New,
	"en_gb": en_GB.New,
	"de":    de.New,
	"es":    es.New,
	"fr":    fr.New,
	"it":    it.New,
	"nl":    nl.New,
	"pt":    pt.New,
	"ro":    ro.New,
}

// SupportedLocales returns the locale identifiers accepted by NewFormatter.
func SupportedLocales() []string {
	out := make([]string, 0, len(translators))
	for k := range translators {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Formatter renders dates for the caller's locale.
type Formatter struct {
	tr locales.Translator
}

// NewFormatter accepts identifiers like "en", "en-GB" or "fr_FR"; a region that is
// not supported falls back to the language.
func NewFormatter(locale string) (*Formatter, error) {
	key := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(locale), "-", "_"))
	if key == "" {
		key = "en"
	}

	newTr, ok := translators[key]
	if !ok {
		lang, _, _ := strings.Cut(key, "_")
		newTr, ok = translators[lang]
	}
	if !ok {
		return nil, fmt.Errorf("unsupported locale %q", locale)
	}

	return &Formatter{tr: newTr()}, nil
}

func (f *Formatter) Locale() string {
	return f.tr.Locale()
}

// ObservedLabel is the full weekday name followed by the short local time.
func (f *Formatter) ObservedLabel(t time.Time) string {
	return f.tr.WeekdayWide(t.Weekday()) + " " + f.tr.FmtTimeShort(t)
}

// ShortDayName is the abbreviated weekday of a calendar date.
func (f *Formatter) ShortDayName(date time.Time) string {
	return f.tr.WeekdayAbbreviated(date.Weekday())
}
