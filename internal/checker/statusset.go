package checker

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// RangeSpecError reports the token that made a status spec unparsable.
type RangeSpecError struct {
	Spec   string
	Token  string
	Reason string
}

func (e *RangeSpecError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("invalid range spec %q: %s", e.Spec, e.Reason)
	}
	return fmt.Sprintf("invalid range spec %q: token %q %s", e.Spec, e.Token, e.Reason)
}

func (e *RangeSpecError) Unwrap() error {
	return errs.ErrInvalidRangeSpec
}

type interval struct {
	lo, hi int
}

// StatusSet is an immutable set of HTTP status codes. Values are kept as
// merged, sorted, inclusive intervals.
type StatusSet struct {
	ranges []interval
}

// ParseStatusSet parses a comma separated list of codes and inclusive a-b
// ranges, e.g. "200-399,201". Whitespace around tokens and bounds is
// trimmed; anything else that is not a non-negative integer is rejected.
func ParseStatusSet(spec string) (StatusSet, error) {
	if strings.TrimSpace(spec) == "" {
		return StatusSet{}, &RangeSpecError{Spec: spec, Reason: "is empty"}
	}

	var ranges []interval
	for _, raw := range strings.Split(spec, ",") {
		token := strings.TrimSpace(raw)
		if token == "" {
			return StatusSet{}, &RangeSpecError{Spec: spec, Token: raw, Reason: "is empty"}
		}

		bounds := strings.Split(token, "-")
		switch len(bounds) {
		case 1:
			v, err := parseStatusCode(bounds[0])
			if err != nil {
				return StatusSet{}, &RangeSpecError{Spec: spec, Token: token, Reason: err.Error()}
			}
			ranges = append(ranges, interval{lo: v, hi: v})
		case 2:
			lo, err := parseStatusCode(bounds[0])
			if err != nil {
				return StatusSet{}, &RangeSpecError{Spec: spec, Token: token, Reason: "lower bound " + err.Error()}
			}
			hi, err := parseStatusCode(bounds[1])
			if err != nil {
				return StatusSet{}, &RangeSpecError{Spec: spec, Token: token, Reason: "upper bound " + err.Error()}
			}
			if lo > hi {
				return StatusSet{}, &RangeSpecError{Spec: spec, Token: token, Reason: "is descending"}
			}
			ranges = append(ranges, interval{lo: lo, hi: hi})
		default:
			return StatusSet{}, &RangeSpecError{Spec: spec, Token: token, Reason: "has more than one dash"}
		}
	}

	return StatusSet{ranges: mergeIntervals(ranges)}, nil
}

// MustParseStatusSet panics on an invalid spec. Intended for constants and tests.
func MustParseStatusSet(spec string) StatusSet {
	set, err := ParseStatusSet(spec)
	if err != nil {
		panic(err)
	}
	return set
}

func parseStatusCode(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("is missing")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("is not an integer")
		}
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("is out of range")
	}
	return v, nil
}

func mergeIntervals(in []interval) []interval {
	if len(in) == 0 {
		return nil
	}
	sorted := append([]interval(nil), in...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].lo < sorted[j].lo })

	out := []interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		// adjacent ranges merge too: 200-299,300-399 -> 200-399
		if iv.lo <= last.hi+1 {
			if iv.hi > last.hi {
				last.hi = iv.hi
			}
			continue
		}
		out = append(out, iv)
	}
	return out
}

// Contains reports whether code is in the set.
func (s StatusSet) Contains(code int) bool {
	i := sort.Search(len(s.ranges), func(i int) bool { return s.ranges[i].hi >= code })
	return i < len(s.ranges) && s.ranges[i].lo <= code
}

// Len returns the number of distinct codes in the set.
func (s StatusSet) Len() int {
	n := 0
	for _, iv := range s.ranges {
		n += iv.hi - iv.lo + 1
	}
	return n
}

// IsEmpty reports whether the set holds no codes.
func (s StatusSet) IsEmpty() bool {
	return len(s.ranges) == 0
}

// String renders the canonical spec, e.g. "200-399".
func (s StatusSet) String() string {
	parts := make([]string, 0, len(s.ranges))
	for _, iv := range s.ranges {
		if iv.lo == iv.hi {
			parts = append(parts, strconv.Itoa(iv.lo))
			continue
		}
		parts = append(parts, fmt.Sprintf("%d-%d", iv.lo, iv.hi))
	}
	return strings.Join(parts, ",")
}
