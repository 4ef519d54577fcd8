package utils

import (
	"math"
	"testing"
)

func TestCheckBodyMetrics(t *testing.T) {
	if err := CheckBodyMetrics(27, 169, 64); err != nil {
		t.Fatalf("CheckBodyMetrics: unexpected error %v", err)
	}
	if err := CheckBodyMetrics(27, 20, 64); err == nil {
		t.Fatalf("expected error for implausible height")
	}
	if err := CheckBodyMetrics(0, 169, 64); err == nil {
		t.Fatalf("expected error for zero age")
	}
}

func TestCalculateBMI(t *testing.T) {
	got := CalculateBMI(180, 81)
	if math.Abs(got-25) > 1e-9 {
		t.Fatalf("CalculateBMI: want=25 got=%v", got)
	}
}

func TestParseDayStart(t *testing.T) {
	cases := map[string]int{"": 0, "00:00": 0, "04:00": 240, "23:59": 1439}
	for in, want := range cases {
		got, err := ParseDayStart(in)
		if err != nil {
			t.Fatalf("ParseDayStart(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("ParseDayStart(%q): want=%d got=%d", in, want, got)
		}
	}
	for _, bad := range []string{"4am", "25:00", "12:7"} {
		if _, err := ParseDayStart(bad); err == nil {
			t.Fatalf("ParseDayStart(%q): expected error", bad)
		}
	}
}
