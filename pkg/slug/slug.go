// Package slug encodes business names and numeric identifiers into
// URL-safe path segments and decodes them back. The name portion is a
// lossy, human-readable hint; only the trailing numeric id is
// authoritative and must survive a round trip.
package slug

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultFallback is substituted when a name normalizes to nothing.
const DefaultFallback = "business"

var (
	nonSlugLower = regexp.MustCompile(`[^a-z0-9]+`)
	nonSlugAny   = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// Options configure Encode behavior.
type Options struct {
	// Fallback replaces names that normalize to the empty string.
	// Defaults to DefaultFallback.
	Fallback string

	// Lowercase controls whether the name portion is lowercased.
	// Defaults to true.
	Lowercase bool
}

// DefaultOptions returns the options used by Encode.
func DefaultOptions() Options {
	return Options{Fallback: DefaultFallback, Lowercase: true}
}

// Normalize converts a name to its URL-safe form: lowercase (when
// enabled), punctuation and whitespace runs collapsed to single hyphens,
// leading and trailing hyphens trimmed. Returns "" for names with no
// usable characters.
func Normalize(name string, opts Options) string {
	s := strings.TrimSpace(name)

	pattern := nonSlugAny
	if opts.Lowercase {
		s = strings.ToLower(s)
		pattern = nonSlugLower
	}

	s = pattern.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	for strings.Contains(s, "--") {
		s = strings.ReplaceAll(s, "--", "-")
	}

	return s
}

// Encode builds the slug "<normalized-name>-<id>" with default options.
// A pure function: identical inputs always yield the identical slug.
// Negative ids clamp to 0 so Encode never fails.
func Encode(name string, id int64) string {
	return EncodeWith(name, id, DefaultOptions())
}

// EncodeWith is Encode with explicit options.
func EncodeWith(name string, id int64, opts Options) string {
	if opts.Fallback == "" {
		opts.Fallback = DefaultFallback
	}
	if id < 0 {
		id = 0
	}

	base := Normalize(name, opts)
	if base == "" {
		base = opts.Fallback
	}

	return base + "-" + strconv.FormatInt(id, 10)
}

// Decode splits a slug into its name portion and trailing numeric id.
// The id is always the final hyphen-delimited digit group; digit groups
// earlier in the slug belong to the name ("cafe-24-7" decodes to name
// "cafe-24", id 7). Slugs without such a suffix decode to id 0 with the
// whole input as the name. Decode never fails on malformed input.
func Decode(s string) (name string, id int64) {
	i := len(s)
	for i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
		i--
	}

	// A valid id suffix needs at least one digit preceded by a hyphen.
	if i == len(s) || i == 0 || s[i-1] != '-' {
		return s, 0
	}

	id, err := strconv.ParseInt(s[i:], 10, 64)
	if err != nil {
		// Digit run too long for int64; treat the whole input as a name.
		return s, 0
	}

	return s[:i-1], id
}

// ExtractID returns the id encoded in the first of the given slugs.
// Routing layers hand over raw path values that may be absent or
// repeated, so ExtractID accepts any number of values and never fails:
// no values, or a first value without an id suffix, yield 0.
func ExtractID(values ...string) int64 {
	if len(values) == 0 {
		return 0
	}
	_, id := Decode(values[0])
	return id
}
