package services

import (
	"math"
	"testing"

	"macrolog/models"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestGoalPipelineModerateMaintenance(t *testing.T) {
	basal := BasalRate(64, 169, 27, SexMale)
	if !approx(basal, 1566.25) {
		t.Fatalf("BasalRate: want=1566.25 got=%v", basal)
	}
	exp := Expenditure(basal, ActivityModerate)
	if !approx(exp, 2427.6875) {
		t.Fatalf("Expenditure: want=2427.6875 got=%v", exp)
	}
	target := TargetCalories(exp, ObjectiveMaintain)
	if !approx(target, exp) {
		t.Fatalf("TargetCalories: maintenance should not change calories, got=%v", target)
	}

	p := &models.Profile{
		Age: 27, Sex: "male", HeightCm: 169, WeightKg: 64,
		ActivityLevel: "moderada", Objective: "MANTENER",
	}
	if err := ComputeGoals(p); err != nil {
		t.Fatalf("ComputeGoals: %v", err)
	}
	if p.TargetCalories != 2428 {
		t.Fatalf("TargetCalories: want=2428 got=%d", p.TargetCalories)
	}
	want := models.Macros{Protein: 182.1, Carb: 273.1, Fat: 67.4}
	if p.TargetMacros != want {
		t.Fatalf("TargetMacros: want=%+v got=%+v", want, p.TargetMacros)
	}
}

func TestBasalRateFemale(t *testing.T) {
	got := BasalRate(60, 165, 30, SexFemale)
	if !approx(got, 600+1031.25-150-161) {
		t.Fatalf("BasalRate female: got=%v", got)
	}
}

func TestMacroSplitSharesAddUp(t *testing.T) {
	m := MacroSplit(2000)
	if !approx(CaloriesFromMacros(m.Protein, m.Carb, m.Fat), 2000) {
		t.Fatalf("macro split kcal: got=%v", CaloriesFromMacros(m.Protein, m.Carb, m.Fat))
	}
	if !approx(m.Protein, 150) || !approx(m.Fat, 500.0/9) || !approx(m.Carb, 225) {
		t.Fatalf("MacroSplit(2000): got=%+v", m)
	}
}

func TestActivityAndObjectiveFactors(t *testing.T) {
	cases := map[string]float64{"muy_baja": 1.20, "BAJA": 1.35, "Moderada": 1.55, "ALTA": 1.725, "MUY_ALTA": 1.90, "extrema": 2.20}
	for in, want := range cases {
		l, err := ParseActivityLevel(in)
		if err != nil {
			t.Fatalf("ParseActivityLevel(%q): %v", in, err)
		}
		if l.Factor() != want {
			t.Fatalf("factor(%q): want=%v got=%v", in, want, l.Factor())
		}
	}
	if _, err := ParseActivityLevel("couch"); err == nil {
		t.Fatalf("ParseActivityLevel: expected error for unknown level")
	}

	o, err := ParseObjective("cut_agresivo")
	if err != nil || o.Factor() != 0.75 {
		t.Fatalf("ParseObjective(cut_agresivo): %v %v", o, err)
	}
	o, err = ParseObjective("BULK_AGRESIVO")
	if err != nil || o.Factor() != 1.15 {
		t.Fatalf("ParseObjective(BULK_AGRESIVO): %v %v", o, err)
	}
	if _, err := ParseObjective("shred"); err == nil {
		t.Fatalf("ParseObjective: expected error for unknown objective")
	}
}

func TestComputeGoalsRequiresMetrics(t *testing.T) {
	p := &models.Profile{Sex: "F", ActivityLevel: "ALTA", Objective: "MANTENER"}
	if err := ComputeGoals(p); err == nil {
		t.Fatalf("ComputeGoals: expected error without body metrics")
	}
}
