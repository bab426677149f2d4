package coupling

import (
	"regexp"
	"strings"

	"github.com/jasontalley/pact/errors"
)

// CompilePattern translates a glob into an anchored regexp over the
// slash-separated relative path:
//
//	*  matches any run of non-separator characters
//	** matches any run of characters including separators
//	?  matches one non-separator character
//
// A leading "**/" is optional in the match, so the pattern also covers
// root-level files. All other characters match literally.
func CompilePattern(glob string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")

	rest := glob
	if strings.HasPrefix(rest, "**/") {
		sb.WriteString("(.*/)?")
		rest = strings.TrimPrefix(rest, "**/")
	}

	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '*':
			if i+1 < len(rest) && rest[i+1] == '*' {
				sb.WriteString(".*")
				i++
			} else {
				sb.WriteString("[^/]*")
			}
		case '?':
			sb.WriteString("[^/]")
		default:
			sb.WriteString(regexp.QuoteMeta(string(rest[i])))
		}
	}
	sb.WriteString("$")

	re, err := regexp.Compile(sb.String())
	if err != nil {
		return nil, errors.Wrapf(err, "compile glob %q", glob)
	}
	return re, nil
}

// compilePatterns compiles a pattern list, failing on the first bad glob.
func compilePatterns(globs []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(globs))
	for _, g := range globs {
		re, err := CompilePattern(g)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// matchesAny reports whether path matches at least one compiled pattern.
func matchesAny(patterns []*regexp.Regexp, path string) bool {
	for _, re := range patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}
