package gitversion

import (
	"path"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/bmatcuk/doublestar"
)

const (
	// DefaultHashLength is the abbreviated commit hash length used when
	// Config.HashLength is zero.
	DefaultHashLength = 7

	minHashLength = 4
	maxHashLength = 40
)

// prefixPattern is the accepted shape of Config.Prefix, e.g. "my-lib@" or
// "@scope/pkg-".
var prefixPattern = regexp.MustCompile(`^[/@]?([A-Za-z]+[/@-])+$`)

// Config controls which tags participate in version derivation and how the
// resulting version is rendered.
type Config struct {
	// Prefix restricts derivation to tags starting with this string. The
	// prefix is removed from LastTag and Version.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// Match holds glob patterns (doublestar syntax) a tag must satisfy after
	// the prefix has been removed. Empty means every tag matches.
	Match []string `json:"match,omitempty" yaml:"match,omitempty"`

	// SemverOnly ignores tags that do not parse as semantic versions.
	SemverOnly bool `json:"semverOnly,omitempty" yaml:"semverOnly,omitempty"`

	// HashLength is the length of the abbreviated commit hash. Zero selects
	// DefaultHashLength.
	HashLength int `json:"hashLength,omitempty" yaml:"hashLength,omitempty"`
}

// Validate checks the configuration and returns an ErrInvalidConfig error
// describing the first problem found.
func (c Config) Validate() error {
	if c.Prefix != "" && !prefixPattern.MatchString(c.Prefix) {
		return newConfigError("tag prefix %q must match %s", c.Prefix, prefixPattern)
	}

	if c.HashLength != 0 && (c.HashLength < minHashLength || c.HashLength > maxHashLength) {
		return newConfigError("hash length %d out of range [%d, %d]", c.HashLength, minHashLength, maxHashLength)
	}

	// doublestar syntax is a superset of path.Match; malformed character
	// classes are rejected by both.
	for _, pattern := range c.Match {
		if _, err := path.Match(pattern, ""); err != nil {
			return newConfigError("invalid tag pattern %q: %v", pattern, err)
		}
	}

	return nil
}

func (c Config) hashLength() int {
	if c.HashLength == 0 {
		return DefaultHashLength
	}
	return c.HashLength
}

// matchTag reports whether the tag participates in derivation and returns its
// name with the prefix removed.
func (c Config) matchTag(tag string) (string, bool) {
	if !strings.HasPrefix(tag, c.Prefix) {
		return "", false
	}

	name := strings.TrimPrefix(tag, c.Prefix)
	if name == "" {
		return "", false
	}

	if len(c.Match) > 0 && !c.matchesAnyPattern(name) {
		return "", false
	}

	if c.SemverOnly {
		if _, err := semver.NewVersion(name); err != nil {
			return "", false
		}
	}

	return name, true
}

func (c Config) matchesAnyPattern(name string) bool {
	for _, pattern := range c.Match {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
