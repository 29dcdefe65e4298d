package i18n

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"
)

//go:embed locales/*.json
var localesFS embed.FS

// DefaultLanguage is used when a user has no supported preference.
const DefaultLanguage = "en"

// Languages lists the supported interface languages.
var Languages = []string{"en", "es"} //nolint:gochecknoglobals // fixed set of embedded locales

// Localizer handles translation for different languages.
type Localizer struct {
	translations map[string]map[string]string
	mu           sync.RWMutex
}

// NewLocalizer creates a new Localizer instance and loads all translations.
func NewLocalizer() (*Localizer, error) {
	locale := &Localizer{
		translations: make(map[string]map[string]string),
	}

	for _, lang := range Languages {
		if err := locale.loadLanguage(lang); err != nil {
			return nil, fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	return locale, nil
}

// loadLanguage loads translations for a specific language from embedded JSON files.
func (l *Localizer) loadLanguage(lang string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)
	data, err := localesFS.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read locale file %s: %w", filename, err)
	}

	var translations map[string]string
	if err = jsoniter.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to unmarshal locale file %s: %w", filename, err)
	}

	l.mu.Lock()
	l.translations[lang] = translations
	l.mu.Unlock()

	return nil
}

// Get returns the translation for the given key in the specified language.
// Missing keys fall back to English, then to the key itself.
func (l *Localizer) Get(lang, key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if translation, ok := l.translations[lang][key]; ok {
		return translation
	}
	if lang != DefaultLanguage {
		if translation, ok := l.translations[DefaultLanguage][key]; ok {
			return translation
		}
	}

	return key
}

// GetWithData returns the translation for the given key with {placeholder} replacement.
// Example: GetWithData("en", "status.created", map[string]any{"entity": "Employee"}).
func (l *Localizer) GetWithData(lang, key string, data map[string]any) string {
	translation := l.Get(lang, key)
	if len(data) == 0 {
		return translation
	}

	pairs := make([]string, 0, len(data)*2) //nolint:mnd // old/new pairs
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", fmt.Sprint(v))
	}

	return strings.NewReplacer(pairs...).Replace(translation)
}

// Has reports whether key is translated in lang, without fallback.
func (l *Localizer) Has(lang, key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.translations[lang][key]
	return ok
}

// NormalizeLanguageCode maps Telegram language codes like "es-AR" to a supported language.
func NormalizeLanguageCode(telegramLang string) string {
	const langCodeShortLength = 2
	if len(telegramLang) < langCodeShortLength {
		return DefaultLanguage
	}

	switch strings.ToLower(telegramLang[:langCodeShortLength]) {
	case "es":
		return "es"
	default:
		return DefaultLanguage
	}
}
