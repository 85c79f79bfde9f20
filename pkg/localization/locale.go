package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"sync"
)

//go:embed locales/*.json
var bundled embed.FS

// Languages lists the bundled translations.
var Languages = []string{"en", "ru"}

// Locale translates UI strings. A key without a translation is returned as is.
type Locale struct {
	mu           sync.RWMutex
	lang         string
	translations map[string]string
}

// NewLocale loads the bundled translation for lang.
func NewLocale(lang string) (*Locale, error) {
	l := &Locale{}
	if err := l.SetLanguage(lang); err != nil {
		return nil, err
	}
	return l, nil
}

// NewLocaleFromFile loads a JSON key/value file from disk.
func NewLocaleFromFile(filePath string) (*Locale, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	translations, err := decode(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filePath, err)
	}
	return &Locale{translations: translations}, nil
}

// Identity returns a locale that echoes every key.
func Identity() *Locale {
	return &Locale{lang: "en", translations: map[string]string{}}
}

// SetLanguage swaps in the bundled translation for lang. The current
// translation is kept when lang is not bundled.
func (l *Locale) SetLanguage(lang string) error {
	file, err := bundled.Open(path.Join("locales", lang+".json"))
	if err != nil {
		return fmt.Errorf("language %q not available: %w", lang, err)
	}
	defer file.Close()

	translations, err := decode(file)
	if err != nil {
		return fmt.Errorf("language %q: %w", lang, err)
	}

	l.mu.Lock()
	l.lang = lang
	l.translations = translations
	l.mu.Unlock()
	return nil
}

func (l *Locale) Language() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lang
}

func (l *Locale) Translate(key string) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if translation, ok := l.translations[key]; ok {
		return translation
	}
	return key
}

func decode(r io.Reader) (map[string]string, error) {
	var translations map[string]string
	if err := json.NewDecoder(r).Decode(&translations); err != nil {
		return nil, err
	}
	if translations == nil {
		translations = map[string]string{}
	}
	return translations, nil
}
