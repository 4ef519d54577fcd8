package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEffectiveDate(t *testing.T) {
	cases := []struct {
		now      time.Time
		dayStart string
		want     string
	}{
		{time.Date(2026, 3, 10, 3, 59, 0, 0, time.UTC), "04:00", "2026-03-09"},
		{time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC), "04:00", "2026-03-10"},
		{time.Date(2026, 3, 1, 0, 30, 0, 0, time.UTC), "01:00", "2026-02-28"},
		{time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), "", "2026-03-10"},
	}
	for _, tc := range cases {
		got, err := EffectiveDate(tc.now, tc.dayStart)
		if err != nil {
			t.Fatalf("EffectiveDate(%v, %q): %v", tc.now, tc.dayStart, err)
		}
		if got != tc.want {
			t.Fatalf("EffectiveDate(%v, %q): want=%q got=%q", tc.now, tc.dayStart, tc.want, got)
		}
	}
}

func TestCurrentDayIsIdempotentWithinEffectiveDate(t *testing.T) {
	p := &Profile{ID: uuid.New(), DayStart: "04:00"}
	morning := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	d1, err := p.CurrentDay(morning)
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	d1.ApplyConsumption(10, 0, 0, 40)

	d2, err := p.CurrentDay(morning.Add(10 * time.Hour))
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	if len(p.Days) != 1 {
		t.Fatalf("days: want=1 got=%d", len(p.Days))
	}
	if d2.Protein != 10 || d2.DayStart != "04:00" || d2.ProfileID != p.ID {
		t.Fatalf("second lookup returned a different day: %+v", d2)
	}

	// 02:00 the next calendar day still belongs to 2026-03-10.
	d3, _ := p.CurrentDay(time.Date(2026, 3, 11, 2, 0, 0, 0, time.UTC))
	if d3.Date != "2026-03-10" || len(p.Days) != 1 {
		t.Fatalf("before day start: date=%q days=%d", d3.Date, len(p.Days))
	}

	d4, _ := p.CurrentDay(time.Date(2026, 3, 11, 4, 0, 0, 0, time.UTC))
	if d4.Date != "2026-03-11" || len(p.Days) != 2 || d4.Protein != 0 {
		t.Fatalf("after day start: %+v days=%d", d4, len(p.Days))
	}
}

func TestApplyConsumptionRoundsMacrosOnly(t *testing.T) {
	var d NutritionDay
	d.ApplyConsumption(4.05, 1.04, 0.25, 36.25)
	d.ApplyConsumption(1, 1, 1, 17)
	if d.Protein != 5.1 || d.Carb != 2.0 || d.Fat != 1.3 {
		t.Fatalf("macros: %+v", d.Consumed())
	}
	if d.Calories != 53.25 {
		t.Fatalf("calories: want=53.25 got=%v", d.Calories)
	}
}

func TestOnboardingProgressComplete(t *testing.T) {
	all := OnboardingProgress{Basics: true, Activity: true, Objective: true, Preferences: true}
	if !all.Complete() {
		t.Fatalf("all steps set: expected complete")
	}
	partial := all
	partial.Activity = false
	if partial.Complete() {
		t.Fatalf("one step unset: expected incomplete")
	}
}

func TestApplyGoalsRounding(t *testing.T) {
	var p Profile
	p.ApplyGoals(2554.7875, Macros{Protein: 191.6090625, Carb: 287.41359375, Fat: 70.96631944})
	if p.TargetCalories != 2555 {
		t.Fatalf("calories: want=2555 got=%d", p.TargetCalories)
	}
	if p.TargetMacros != (Macros{Protein: 191.6, Carb: 287.4, Fat: 71.0}) {
		t.Fatalf("macros: %+v", p.TargetMacros)
	}
}
