// Package locale translates the fixed labels used by renderers: month names
// and a handful of table headings. English and French are bundled.
package locale

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// DefaultLanguage is used when no language is requested.
const DefaultLanguage = "en"

// Message IDs for labels.
const (
	LabelSupport    = "label.support"
	LabelRows       = "label.rows"
	LabelPeak       = "label.peak"
	LabelTotal      = "label.total"
	LabelBookings   = "label.bookings"
	LabelYear       = "label.year"
	LabelUnassigned = "label.unassigned"
	LabelEmpty      = "label.empty"
	LabelAll        = "label.all"
	LabelCity       = "label.city"
	LabelClient     = "label.client"
	LabelVendor     = "label.vendor"
	LabelStatus     = "label.status"
	LabelCalendar   = "label.calendar"
	LabelBusiest    = "label.busiest"
)

var (
	bundleOnce sync.Once
	bundle     *i18n.Bundle
	languages  []string
	bundleErr  error
)

func loadBundle() {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		bundleErr = err
		return
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			continue
		}
		if _, err := b.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			bundleErr = fmt.Errorf("load %s: %w", name, err)
			return
		}
		languages = append(languages, strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json"))
	}
	sort.Strings(languages)
	bundle = b
}

// Languages returns the bundled language codes.
func Languages() []string {
	bundleOnce.Do(loadBundle)
	return append([]string(nil), languages...)
}

// Supported reports whether lang is one of the bundled languages.
func Supported(lang string) bool {
	for _, l := range Languages() {
		if l == lang {
			return true
		}
	}
	return false
}

// Localizer resolves labels for one language. Missing messages fall back to
// English, then to the message ID.
type Localizer struct {
	lang string
	loc  *i18n.Localizer
}

// New returns a localizer for lang ("" means DefaultLanguage).
func New(lang string) *Localizer {
	bundleOnce.Do(loadBundle)
	if lang == "" {
		lang = DefaultLanguage
	}
	l := &Localizer{lang: lang}
	if bundleErr == nil {
		l.loc = i18n.NewLocalizer(bundle, lang, DefaultLanguage)
	}
	return l
}

// Lang returns the requested language code.
func (l *Localizer) Lang() string { return l.lang }

// T translates a message ID.
func (l *Localizer) T(id string) string {
	if l == nil || l.loc == nil {
		return id
	}
	msg, err := l.loc.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return msg
}

// MonthShort returns the abbreviated name of month index m (0 = January).
func (l *Localizer) MonthShort(m int) string {
	return l.T(fmt.Sprintf("month.short.%d", m))
}

// Month returns the full name of month index m (0 = January).
func (l *Localizer) Month(m int) string {
	return l.T(fmt.Sprintf("month.long.%d", m))
}

// SectionLabel returns the display label of a section key.
func (l *Localizer) SectionLabel(key string) string {
	if key == "" {
		return l.T(LabelUnassigned)
	}
	return key
}

// GroupLabel returns the heading for a group attribute name.
func (l *Localizer) GroupLabel(attr string) string {
	switch attr {
	case "city":
		return l.T(LabelCity)
	case "client":
		return l.T(LabelClient)
	case "vendor":
		return l.T(LabelVendor)
	case "status":
		return l.T(LabelStatus)
	default:
		return l.T(LabelAll)
	}
}
