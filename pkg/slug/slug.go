package slug

import (
	"crypto/rand"
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength    int
	suffixLength int
}

// MaxLength caps the generated slug at n runes, suffix included.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// WithSuffix appends a random alphanumeric suffix of the given length,
// separated by a hyphen. Used where similar names must not collide.
func WithSuffix(length int) Option {
	return func(c *config) {
		c.suffixLength = length
	}
}

// Make converts the input into a lowercase URL-safe slug: letters and
// digits pass through, common Latin diacritics fold to ASCII, and runs of
// anything else collapse into single hyphens.
func Make(s string, opts ...Option) string {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // avoid a leading hyphen
	for _, r := range s {
		r = unicode.ToLower(r)
		if folded, ok := diacritics[r]; ok {
			r = folded
		}
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastWasSep = false
			continue
		}
		if !lastWasSep {
			b.WriteByte('-')
			lastWasSep = true
		}
	}

	result := strings.TrimSuffix(b.String(), "-")

	if cfg.suffixLength > 0 {
		suffix := randomSuffix(cfg.suffixLength)
		if result == "" {
			result = suffix
		} else {
			result = result + "-" + suffix
		}
	}

	if cfg.maxLength > 0 {
		runes := []rune(result)
		if len(runes) > cfg.maxLength {
			result = strings.TrimSuffix(string(runes[:cfg.maxLength]), "-")
		}
	}

	return result
}

// diacritics folds common Latin diacritics to ASCII. Not exhaustive; covers
// the major European languages.
var diacritics = map[rune]rune{
	'à': 'a', 'á': 'a', 'â': 'a', 'ã': 'a', 'ä': 'a', 'å': 'a', 'ā': 'a', 'ą': 'a', 'æ': 'a',
	'ç': 'c', 'ć': 'c', 'č': 'c',
	'đ': 'd', 'ď': 'd',
	'è': 'e', 'é': 'e', 'ê': 'e', 'ë': 'e', 'ē': 'e', 'ė': 'e', 'ę': 'e', 'ě': 'e',
	'ì': 'i', 'í': 'i', 'î': 'i', 'ï': 'i', 'ī': 'i', 'į': 'i',
	'ł': 'l',
	'ñ': 'n', 'ń': 'n', 'ň': 'n',
	'ò': 'o', 'ó': 'o', 'ô': 'o', 'õ': 'o', 'ö': 'o', 'ø': 'o', 'ō': 'o', 'œ': 'o',
	'ř': 'r',
	'ś': 's', 'š': 's', 'ș': 's', 'ß': 's',
	'ť': 't', 'ț': 't',
	'ù': 'u', 'ú': 'u', 'û': 'u', 'ü': 'u', 'ū': 'u', 'ů': 'u', 'ų': 'u',
	'ý': 'y', 'ÿ': 'y',
	'ź': 'z', 'ž': 'z', 'ż': 'z',
}

func randomSuffix(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// Deterministic fallback; collisions become more likely but
		// generation never fails.
		for i := range b {
			b[i] = charset[i%len(charset)]
		}
		return string(b)
	}
	for i := range b {
		b[i] = charset[b[i]%byte(len(charset))]
	}
	return string(b)
}
