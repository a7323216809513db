// Package i18n містить таблицю двомовних (англійська/гінді) рядків
// інтерфейсу, ключем якої є пара (ключ, мова).
package i18n

import (
	_ "embed"
	"fmt"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

type Language string

const (
	English Language = "en"
	Hindi   Language = "hi"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Catalog - незмінна таблиця рядків
type Catalog struct {
	entries map[string]map[Language]string
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default повертає вбудований каталог. Паніка при зіпсованому YAML -
// помилка збірки, а не часу виконання.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(fmt.Sprintf("i18n: embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse розбирає YAML виду `key: {en: "...", hi: "..."}`
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	entries := make(map[string]map[Language]string, len(raw))
	for key, pair := range raw {
		if _, ok := pair[string(English)]; !ok {
			return nil, fmt.Errorf("catalog key %q has no English text", key)
		}
		entries[key] = make(map[Language]string, len(pair))
		for lang, text := range pair {
			entries[key][Language(lang)] = text
		}
	}

	return &Catalog{entries: entries}, nil
}

// T повертає рядок для мови. Відсутній переклад - англійський текст,
// невідомий ключ - сам ключ. Аргументи підставляються через fmt.Sprintf.
func (c *Catalog) T(lang Language, key string, args ...interface{}) string {
	pair, ok := c.entries[key]
	if !ok {
		return key
	}

	text, ok := pair[lang]
	if !ok || text == "" {
		text = pair[English]
	}

	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Has перевіряє наявність ключа
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// T - скорочення для Default().T
func T(lang Language, key string, args ...interface{}) string {
	return Default().T(lang, key, args...)
}

// Порядок збігається з supportedTags
var (
	supported     = []Language{English, Hindi}
	supportedTags = []language.Tag{language.English, language.Hindi}
	matcher       = language.NewMatcher(supportedTags)
)

// ParseLanguage приймає "en", "hi", "hi-IN" або повний Accept-Language
// з q-вагами ("en;q=0.1, hi;q=0.9")
func ParseLanguage(value string) (Language, bool) {
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return "", false
	}

	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return "", false
	}
	return supported[index], true
}
