package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Request sources of a locale, in order of precedence
const (
	LangParam  = "lang"
	LangCookie = "locale"
)

// Negotiator picks a supported locale for a request
type Negotiator struct {
	supported []string
	matcher   language.Matcher
}

// NewNegotiator creates a Negotiator over locales; the first one is the default
func NewNegotiator(locales []string) *Negotiator {
	tags := make([]language.Tag, 0, len(locales))
	supported := make([]string, 0, len(locales))
	for _, l := range locales {
		tag, err := language.Parse(l)
		if err != nil {
			continue
		}
		tags = append(tags, tag)
		supported = append(supported, l)
	}
	if len(tags) == 0 {
		tags = []language.Tag{language.English}
		supported = []string{"en"}
	}
	return &Negotiator{supported: supported, matcher: language.NewMatcher(tags)}
}

// Default returns the default locale
func (n *Negotiator) Default() string {
	return n.supported[0]
}

// Match maps one locale string to the closest supported locale
func (n *Negotiator) Match(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	tag, err := language.Parse(value)
	if err != nil {
		return "", false
	}
	_, index, confidence := n.matcher.Match(tag)
	if confidence == language.No {
		return "", false
	}
	return n.supported[index], true
}

// Negotiate resolves the query parameter, then the cookie, then the Accept-Language
// header, then the default
func (n *Negotiator) Negotiate(query, cookie, acceptLanguage string) string {
	if l, ok := n.Match(query); ok {
		return l
	}
	if l, ok := n.Match(cookie); ok {
		return l
	}
	if accept := strings.TrimSpace(acceptLanguage); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			_, index, confidence := n.matcher.Match(tags...)
			if confidence != language.No {
				return n.supported[index]
			}
		}
	}
	return n.Default()
}
