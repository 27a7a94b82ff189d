package semver

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRange is returned when a version range cannot be parsed.
var ErrInvalidRange = errors.New("invalid version range")

// Range is a NuGet version interval. A zero bound is open.
type Range struct {
	min, max       Version
	minInc, maxInc bool
	raw            string
}

// ParseRange parses NuGet interval notation. A bare version means
// "at least this version".
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Range{}, fmt.Errorf("%w: empty string", ErrInvalidRange)
	}

	first, last := s[0], s[len(s)-1]
	if first != '[' && first != '(' {
		v, err := Parse(s)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		return Range{min: v, minInc: true, raw: s}, nil
	}
	if last != ']' && last != ')' {
		return Range{}, fmt.Errorf("%w: %q: unterminated interval", ErrInvalidRange, s)
	}

	r := Range{minInc: first == '[', maxInc: last == ']', raw: s}
	body := strings.TrimSpace(s[1 : len(s)-1])
	lo, hi, hasComma := strings.Cut(body, ",")
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)

	if !hasComma {
		// [1.0] pins an exact version; (1.0) is meaningless.
		if !r.minInc || !r.maxInc || lo == "" {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		v, err := Parse(lo)
		if err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
		r.min, r.max = v, v
		return r, nil
	}

	var err error
	if lo != "" {
		if r.min, err = Parse(lo); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
	}
	if hi != "" {
		if r.max, err = Parse(hi); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, s)
		}
	}
	if lo == "" && hi == "" {
		return Range{}, fmt.Errorf("%w: %q: no bounds", ErrInvalidRange, s)
	}
	if !r.min.IsZero() && !r.max.IsZero() && r.min.Compare(r.max) > 0 {
		return Range{}, fmt.Errorf("%w: %q: lower bound above upper bound", ErrInvalidRange, s)
	}
	return r, nil
}

// Min returns the lower bound, or the zero version if the range is open below.
func (r Range) Min() Version { return r.min }

// Max returns the upper bound, or the zero version if the range is open above.
func (r Range) Max() Version { return r.max }

// String returns the range as it was parsed.
func (r Range) String() string { return r.raw }

// Contains reports whether v lies within the range.
func (r Range) Contains(v Version) bool {
	if !r.min.IsZero() {
		c := v.Compare(r.min)
		if c < 0 || (c == 0 && !r.minInc) {
			return false
		}
	}
	if !r.max.IsZero() {
		c := v.Compare(r.max)
		if c > 0 || (c == 0 && !r.maxInc) {
			return false
		}
	}
	return true
}
