package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

//go:embed locales/*.json
var localeFiles embed.FS

// Message keys shared by the transports
const (
	KeyNewGame            = "game.new"
	KeyWon                = "game.won"
	KeyOver               = "game.over"
	KeyContinue           = "game.continue"
	KeyInvalidMessage     = "error.invalid_message"
	KeyUnknownMessage     = "error.unknown_message"
	KeyInvalidDirection   = "error.invalid_direction"
	KeyInvalidMove        = "error.invalid_move"
	KeyInvalidLeaderboard = "error.invalid_leaderboard"
	KeyLeaderboardFailed  = "error.leaderboard_failed"
	KeyBusy               = "error.busy"
)

// I18n represents the internationalization manager
type I18n struct {
	defaultLang string
	languages   map[string]map[string]string
	mu          sync.RWMutex
}

// New creates a new I18n instance loading the given languages
func New(defaultLang string, supported []string) *I18n {
	i18n := &I18n{
		defaultLang: defaultLang,
		languages:   make(map[string]map[string]string),
	}

	for _, lang := range supported {
		if err := i18n.LoadLanguage(lang); err != nil {
			log.Warn().Err(err).Str("lang", lang).Msg("skipping language")
		}
	}
	if _, ok := i18n.languages[defaultLang]; !ok {
		if err := i18n.LoadLanguage(defaultLang); err != nil {
			// Keys are returned untranslated
			i18n.languages[defaultLang] = make(map[string]string)
		}
	}

	return i18n
}

// LoadLanguage loads a specific language file
func (i *I18n) LoadLanguage(lang string) error {
	filename := fmt.Sprintf("locales/%s.json", lang)

	data, err := localeFiles.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read language file %s: %w", filename, err)
	}

	var translations map[string]string
	if err := json.Unmarshal(data, &translations); err != nil {
		return fmt.Errorf("failed to parse language file %s: %w", filename, err)
	}

	i.mu.Lock()
	i.languages[lang] = translations
	i.mu.Unlock()
	return nil
}

// T translates a key for the given language
func (i *I18n) T(lang, key string) string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	// Try the requested language first
	if translations, ok := i.languages[lang]; ok {
		if translation, exists := translations[key]; exists {
			return translation
		}
	}

	// Fallback to default language
	if lang != i.defaultLang {
		if translations, ok := i.languages[i.defaultLang]; ok {
			if translation, exists := translations[key]; exists {
				return translation
			}
		}
	}

	// Return the key itself if no translation found
	return key
}

// GetSupportedLanguages returns all loaded languages, sorted
func (i *I18n) GetSupportedLanguages() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()

	langs := make([]string, 0, len(i.languages))
	for lang := range i.languages {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Supports reports whether lang has been loaded
func (i *I18n) Supports(lang string) bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.languages[lang]
	return ok
}

// DetectLanguage detects language from Accept-Language header
func (i *I18n) DetectLanguage(acceptLang string) string {
	if acceptLang == "" {
		return i.defaultLang
	}

	supported := i.GetSupportedLanguages()

	// Find the first supported language
	for _, lang := range parseAcceptLanguage(acceptLang) {
		for _, s := range supported {
			if strings.EqualFold(s, lang) {
				return s
			}
		}

		// Try language without region (e.g., "zh" from "zh-TW")
		baseLang, _, _ := strings.Cut(lang, "-")
		for _, s := range supported {
			if strings.EqualFold(s, baseLang) || strings.HasPrefix(strings.ToLower(s), strings.ToLower(baseLang)+"-") {
				return s
			}
		}
	}

	return i.defaultLang
}

// parseAcceptLanguage parses the Accept-Language header
func parseAcceptLanguage(acceptLang string) []string {
	var languages []string

	parts := strings.Split(acceptLang, ",")
	for _, part := range parts {
		lang := strings.TrimSpace(part)
		if idx := strings.Index(lang, ";"); idx != -1 {
			lang = lang[:idx]
		}
		lang = strings.TrimSpace(lang)
		if lang != "" && lang != "*" {
			languages = append(languages, lang)
		}
	}

	return languages
}
