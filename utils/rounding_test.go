package utils

import "testing"

func TestRound(t *testing.T) {
	cases := []struct {
		name     string
		in       float64
		decimals int
		want     float64
	}{
		{"tie rounds up", 0.25, 1, 0.3},
		{"shortest repr tie", 4.05, 1, 4.1},
		{"product noise", 2.7 * 1.5, 1, 4.1},
		{"below tie", 191.609, 1, 191.6},
		{"carry into integer", 9.96, 1, 10.0},
		{"already short", 3.2, 1, 3.2},
		{"whole tie", 2554.5, 0, 2555},
		{"whole", 2554.7875, 0, 2555},
		{"negative tie away from zero", -2.5, 0, -3},
		{"small fraction", 0.04, 1, 0.0},
		{"small fraction up", 0.05, 1, 0.1},
		{"two decimals", 1.005, 2, 1.01},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Round(tc.in, tc.decimals); got != tc.want {
				t.Fatalf("Round(%v, %d): want=%v got=%v", tc.in, tc.decimals, tc.want, got)
			}
		})
	}
}

func TestRoundMacroAndWhole(t *testing.T) {
	if got := RoundMacro(70.96631944); got != 71.0 {
		t.Fatalf("RoundMacro: want=71.0 got=%v", got)
	}
	if got := RoundWhole(149.5); got != 150 {
		t.Fatalf("RoundWhole: want=150 got=%v", got)
	}
}
