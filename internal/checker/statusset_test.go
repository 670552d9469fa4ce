package checker

import (
	"errors"
	"reflect"
	"testing"

	errs "github.com/fivexl/terraform-aws-ssl-checker/internal/shared/errors"
)

// expand lists every code in s in ascending order.
func expand(s StatusSet) []int {
	out := make([]int, 0, s.Len())
	for _, iv := range s.ranges {
		for v := iv.lo; v <= iv.hi; v++ {
			out = append(out, v)
		}
	}
	return out
}

func TestParseStatusSet_DefaultMatcher(t *testing.T) {
	set, err := ParseStatusSet("200-399,201")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.Len() != 200 {
		t.Fatalf("expected 200 distinct codes, got %d", set.Len())
	}
	for _, code := range []int{200, 201, 302, 399} {
		if !set.Contains(code) {
			t.Errorf("expected %d to be accepted", code)
		}
	}
	for _, code := range []int{199, 400, 500} {
		if set.Contains(code) {
			t.Errorf("expected %d to be rejected", code)
		}
	}
	if set.String() != "200-399" {
		t.Errorf("String() = %q, want %q", set.String(), "200-399")
	}
}

func TestParseStatusSet_Valid(t *testing.T) {
	tests := []struct {
		name string
		spec string
		want []int
	}{
		{name: "single value", spec: "7", want: []int{7}},
		{name: "degenerate range", spec: "204-204", want: []int{204}},
		{name: "duplicates collapse", spec: "200,200,200-201", want: []int{200, 201}},
		{name: "unordered tokens", spec: "404,200-201", want: []int{200, 201, 404}},
		{name: "adjacent ranges", spec: "200-201,202-203", want: []int{200, 201, 202, 203}},
		{name: "whitespace trimmed", spec: " 200 - 202 , 404 ", want: []int{200, 201, 202, 404}},
		{name: "tabs trimmed", spec: "\t301\t", want: []int{301}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseStatusSet(tt.spec)
			if err != nil {
				t.Fatalf("ParseStatusSet(%q) returned error: %v", tt.spec, err)
			}
			if got := expand(set); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseStatusSet(%q) = %v, want %v", tt.spec, got, tt.want)
			}
		})
	}
}

func TestParseStatusSet_Invalid(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{name: "descending range", spec: "5-3"},
		{name: "empty", spec: ""},
		{name: "blank", spec: "   "},
		{name: "empty token", spec: "200,,300"},
		{name: "trailing comma", spec: "200,"},
		{name: "not a number", spec: "ok"},
		{name: "negative", spec: "-5"},
		{name: "missing upper bound", spec: "200-"},
		{name: "two dashes", spec: "200-300-400"},
		{name: "inner whitespace", spec: "2 00"},
		{name: "sign prefix", spec: "+200"},
		{name: "float", spec: "200.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStatusSet(tt.spec)
			if err == nil {
				t.Fatalf("ParseStatusSet(%q) expected error", tt.spec)
			}
			if !errors.Is(err, errs.ErrInvalidRangeSpec) {
				t.Fatalf("ParseStatusSet(%q) error %v does not wrap ErrInvalidRangeSpec", tt.spec, err)
			}
			var specErr *RangeSpecError
			if !errors.As(err, &specErr) {
				t.Fatalf("ParseStatusSet(%q) error is %T, want *RangeSpecError", tt.spec, err)
			}
		})
	}
}

func TestStatusSet_LargeRangeStaysCompact(t *testing.T) {
	set := MustParseStatusSet("0-999999999")
	if !set.Contains(123456789) {
		t.Fatal("expected large range to contain inner value")
	}
	if set.Len() != 1000000000 {
		t.Fatalf("unexpected length %d", set.Len())
	}
}

func TestStatusSet_ZeroValueIsEmpty(t *testing.T) {
	var set StatusSet
	if !set.IsEmpty() || set.Contains(200) || set.Len() != 0 {
		t.Fatal("expected zero StatusSet to be empty")
	}
}
