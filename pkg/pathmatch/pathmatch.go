// Package pathmatch matches slash-separated paths against find -path style globs.
//
// Unlike filepath.Match, wildcards cross directory separators:
//   - * matches any run of characters, including /
//   - ? matches exactly one character, including /
//   - [...] matches one character from the set, [!...] negates it
//   - \ escapes the next character
package pathmatch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrTrailingEscape is returned for a pattern ending in a lone backslash.
	ErrTrailingEscape = errors.New("trailing backslash")
	// ErrUnclosedClass is returned for a character class without a closing bracket.
	ErrUnclosedClass = errors.New("unclosed character class")
)

// Pattern is a compiled glob.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// Compile translates a glob into a Pattern.
func Compile(glob string) (*Pattern, error) {
	expr, err := translate(glob)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", glob, err)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", glob, err)
	}

	return &Pattern{source: glob, re: re}, nil
}

// Match reports whether path matches the glob.
func Match(glob, path string) (bool, error) {
	p, err := Compile(glob)
	if err != nil {
		return false, err
	}

	return p.Match(path), nil
}

// Match reports whether path matches the pattern.
func (p *Pattern) Match(path string) bool {
	return p.re.MatchString(path)
}

// String returns the glob the pattern was compiled from.
func (p *Pattern) String() string {
	return p.source
}

// Set is an ordered collection of patterns. The zero Set matches nothing.
type Set []*Pattern

// NewSet compiles every glob into a Set.
func NewSet(globs []string) (Set, error) {
	set := make(Set, 0, len(globs))

	for _, glob := range globs {
		p, err := Compile(glob)
		if err != nil {
			return nil, err
		}

		set = append(set, p)
	}

	return set, nil
}

// MatchAny reports whether path matches at least one pattern in the set.
func (s Set) MatchAny(path string) bool {
	for _, p := range s {
		if p.Match(path) {
			return true
		}
	}

	return false
}

// translate converts a glob into an anchored regular expression.
func translate(glob string) (string, error) {
	var expr strings.Builder

	expr.WriteString("^")

	for i := 0; i < len(glob); i++ {
		switch c := glob[i]; c {
		case '*':
			expr.WriteString(".*")
		case '?':
			expr.WriteString(".")
		case '\\':
			if i+1 == len(glob) {
				return "", ErrTrailingEscape
			}

			i++
			expr.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		case '[':
			end := classEnd(glob, i)
			if end < 0 {
				return "", ErrUnclosedClass
			}

			class := glob[i+1 : end]
			if strings.HasPrefix(class, "!") {
				class = "^" + class[1:]
			}

			expr.WriteString("[" + class + "]")

			i = end
		default:
			expr.WriteString(regexp.QuoteMeta(glob[i : i+1]))
		}
	}

	expr.WriteString("$")

	return expr.String(), nil
}

// classEnd returns the index of the bracket closing the class opened at start, or -1.
// A ] directly after the opening bracket (or its negation) is a literal member.
func classEnd(glob string, start int) int {
	i := start + 1

	if i < len(glob) && glob[i] == '!' {
		i++
	}

	if i < len(glob) && glob[i] == ']' {
		i++
	}

	if end := strings.IndexByte(glob[i:], ']'); end >= 0 {
		return i + end
	}

	return -1
}
