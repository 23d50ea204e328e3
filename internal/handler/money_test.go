package handler

import "testing"

func TestConvertAmountToCent(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"0.01", 1},
		{"1", 100},
		{"12.34", 1234},
		{"100.5", 10050},
		{"2000", 200000},
	}

	for _, tc := range cases {
		got, err := convertAmountToCent(tc.in)
		if err != nil {
			t.Errorf("convertAmountToCent(%q) error = %v, want nil", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("convertAmountToCent(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestConvertAmountToCent_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12,34", "-5"} {
		if _, err := convertAmountToCent(in); err == nil {
			t.Errorf("convertAmountToCent(%q) error = nil, want error", in)
		}
	}
}

func TestFormatCentToAmount(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0.00"},
		{1, "0.01"},
		{1234, "12.34"},
		{-50000, "-500.00"},
	}

	for _, tc := range cases {
		if got := formatCentToAmount(tc.in); got != tc.want {
			t.Errorf("formatCentToAmount(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
