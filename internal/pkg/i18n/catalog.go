package i18n

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// DefaultNamespace holds keys without a dot
const DefaultNamespace = "messages"

type catalogFile struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// Catalog holds the messages of every locale, keyed by full key
type Catalog struct {
	mu         sync.RWMutex
	dir        string
	baseLocale string
	locales    map[string]map[string]string
}

// NewCatalog creates an empty catalog rooted at dir with the given locales
func NewCatalog(dir, baseLocale string, locales ...string) *Catalog {
	c := &Catalog{
		dir:        dir,
		baseLocale: baseLocale,
		locales:    map[string]map[string]string{baseLocale: {}},
	}
	for _, l := range locales {
		if _, ok := c.locales[l]; !ok {
			c.locales[l] = map[string]string{}
		}
	}
	return c
}

// Load reads <dir>/<locale>/<namespace>.yaml for every configured locale. Missing
// locale directories load as empty locales.
func Load(dir, baseLocale string, locales ...string) (*Catalog, error) {
	c := NewCatalog(dir, baseLocale, locales...)

	for locale := range c.locales {
		paths, err := filepath.Glob(filepath.Join(dir, locale, "*.yaml"))
		if err != nil {
			return nil, fmt.Errorf("glob catalogs of %s: %w", locale, err)
		}
		sort.Strings(paths)
		for _, path := range paths {
			if err := c.loadFile(locale, path); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

func (c *Catalog) loadFile(locale, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog %s: %w", path, err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse catalog %s: %w", path, err)
	}

	namespace := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if file.Locale != "" && file.Locale != locale {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", path, file.Locale, locale)
	}
	if file.Namespace != "" && file.Namespace != namespace {
		return fmt.Errorf("catalog %s: namespace %q must match file name", path, file.Namespace)
	}

	for key, value := range file.Messages {
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if Namespace(key) != namespace {
			return fmt.Errorf("catalog %s: key %q belongs to namespace %s", path, key, Namespace(key))
		}
		c.locales[locale][key] = value
	}
	return nil
}

// Namespace returns the namespace of key
func Namespace(key string) string {
	if i := strings.Index(key, "."); i > 0 {
		return key[:i]
	}
	return DefaultNamespace
}

// BaseLocale returns the fallback locale
func (c *Catalog) BaseLocale() string {
	return c.baseLocale
}

// Locales returns the locales in order, base locale first
func (c *Catalog) Locales() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]string, 0, len(c.locales))
	for l := range c.locales {
		if l != c.baseLocale {
			out = append(out, l)
		}
	}
	sort.Strings(out)
	return append([]string{c.baseLocale}, out...)
}

// Keys returns the sorted keys of locale
func (c *Catalog) Keys(locale string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.locales[locale]))
	for k := range c.locales[locale] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Lookup returns the exact message of locale
func (c *Catalog) Lookup(locale, key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v, ok := c.locales[locale][key]
	return v, ok
}

// Set stores a message
func (c *Catalog) Set(locale, key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.locales[locale]; !ok {
		c.locales[locale] = map[string]string{}
	}
	c.locales[locale][key] = value
}

// Delete removes a message
func (c *Catalog) Delete(locale, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.locales[locale], key)
}

// Translate returns the message of key in locale, falling back to the base locale
// and then to the key itself. ":name" placeholders are replaced from params.
func (c *Catalog) Translate(locale, key string, params map[string]string) string {
	msg, ok := c.Lookup(locale, key)
	if !ok && locale != c.baseLocale {
		msg, ok = c.Lookup(c.baseLocale, key)
	}
	if !ok {
		msg = key
	}
	return ReplacePlaceholders(msg, params)
}

// ReplacePlaceholders replaces ":name" with params["name"]. Longer names are
// replaced first so ":user_name" is not clobbered by ":user".
func ReplacePlaceholders(msg string, params map[string]string) string {
	if len(params) == 0 {
		return msg
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		msg = strings.ReplaceAll(msg, ":"+name, params[name])
	}
	return msg
}

// Register registers every message with x/text/message so message.Printer can
// print them
func (c *Catalog) Register() error {
	for _, locale := range c.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		for _, key := range c.Keys(locale) {
			msg, _ := c.Lookup(locale, key)
			if err := message.SetString(tag, key, msg); err != nil {
				return fmt.Errorf("register %s/%s: %w", locale, key, err)
			}
		}
	}
	return nil
}

// Save writes every locale back to <dir>/<locale>/<namespace>.yaml. Namespaces
// left without keys are removed.
func (c *Catalog) Save() error {
	for _, locale := range c.Locales() {
		byNamespace := make(map[string]map[string]string)
		for _, key := range c.Keys(locale) {
			ns := Namespace(key)
			if byNamespace[ns] == nil {
				byNamespace[ns] = map[string]string{}
			}
			byNamespace[ns][key], _ = c.Lookup(locale, key)
		}

		localeDir := filepath.Join(c.dir, locale)
		if err := os.MkdirAll(localeDir, 0o750); err != nil {
			return fmt.Errorf("create %s: %w", localeDir, err)
		}

		existing, err := filepath.Glob(filepath.Join(localeDir, "*.yaml"))
		if err != nil {
			return fmt.Errorf("glob catalogs of %s: %w", locale, err)
		}
		for _, path := range existing {
			ns := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			if _, keep := byNamespace[ns]; !keep {
				if err := os.Remove(path); err != nil {
					return fmt.Errorf("remove %s: %w", path, err)
				}
			}
		}

		for ns, messages := range byNamespace {
			data, err := yaml.Marshal(catalogFile{Locale: locale, Namespace: ns, Messages: messages})
			if err != nil {
				return fmt.Errorf("encode %s/%s: %w", locale, ns, err)
			}
			path := filepath.Join(localeDir, ns+".yaml")
			if err := os.WriteFile(path, data, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
	}
	return nil
}
