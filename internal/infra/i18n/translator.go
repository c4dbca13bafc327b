package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator holds one flat key/format table per language.
type Translator struct {
	translations map[string]map[string]string
	defaultLang  string
}

// NewTranslator loads every locales/<lang>.yaml in fsys. defaultLang must be among them.
func NewTranslator(fsys fs.FS, defaultLang string) (*Translator, error) {
	files, err := fs.Glob(fsys, "locales/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to list translation files: %w", err)
	}

	t := &Translator{translations: map[string]map[string]string{}, defaultLang: defaultLang}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("failed to read translation file %s: %w", f, err)
		}
		var table map[string]string
		if err := yaml.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("failed to parse translation file %s: %w", f, err)
		}
		t.translations[strings.TrimSuffix(path.Base(f), ".yaml")] = table
	}

	if _, ok := t.translations[defaultLang]; !ok {
		return nil, fmt.Errorf("no translation file for default language %q", defaultLang)
	}
	return t, nil
}

// T translates key for lang, falling back to the default language and then to the key itself.
func (t *Translator) T(lang, key string, args ...interface{}) string {
	format, ok := t.translations[lang][key]
	if !ok {
		format, ok = t.translations[t.defaultLang][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Match picks the best supported language from an Accept-Language header.
func (t *Translator) Match(acceptLanguage string) string {
	for _, part := range strings.Split(acceptLanguage, ",") {
		tag := strings.ToLower(strings.TrimSpace(strings.SplitN(part, ";", 2)[0]))
		if tag == "" {
			continue
		}
		if _, ok := t.translations[tag]; ok {
			return tag
		}
		if base := strings.SplitN(tag, "-", 2)[0]; base != tag {
			if _, ok := t.translations[base]; ok {
				return base
			}
		}
	}
	return t.defaultLang
}

func (t *Translator) DefaultLang() string { return t.defaultLang }
