package services

import (
	"strings"

	"macrolog/apierr"
	"macrolog/models"
)

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "male", "masculino", "hombre":
		return SexMale, nil
	case "f", "female", "femenino", "mujer":
		return SexFemale, nil
	}
	return "", apierr.Invalid("unknown sex %q", s)
}

type ActivityLevel string

const (
	ActivitySedentary ActivityLevel = "MUY_BAJA"
	ActivityLight     ActivityLevel = "BAJA"
	ActivityModerate  ActivityLevel = "MODERADA"
	ActivityHigh      ActivityLevel = "ALTA"
	ActivityVeryHigh  ActivityLevel = "MUY_ALTA"
	ActivityExtreme   ActivityLevel = "EXTREMA"
)

var activityFactors = map[ActivityLevel]float64{
	ActivitySedentary: 1.20,
	ActivityLight:     1.35,
	ActivityModerate:  1.55,
	ActivityHigh:      1.725,
	ActivityVeryHigh:  1.90,
	ActivityExtreme:   2.20,
}

func ParseActivityLevel(s string) (ActivityLevel, error) {
	l := ActivityLevel(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := activityFactors[l]; !ok {
		return "", apierr.Invalid("unknown activity level %q", s)
	}
	return l, nil
}

func (l ActivityLevel) Factor() float64 { return activityFactors[l] }

type Objective string

const (
	ObjectiveCutAggressive  Objective = "CUT_AGRESIVO"
	ObjectiveCutMedium      Objective = "CUT_MEDIO"
	ObjectiveCutLight       Objective = "CUT_LIGERO"
	ObjectiveMaintain       Objective = "MANTENER"
	ObjectiveBulkLight      Objective = "BULK_CONSERVADOR"
	ObjectiveBulkStandard   Objective = "BULK_ESTANDAR"
	ObjectiveBulkAggressive Objective = "BULK_AGRESIVO"
)

var objectiveFactors = map[Objective]float64{
	ObjectiveCutAggressive:  0.75,
	ObjectiveCutMedium:      0.80,
	ObjectiveCutLight:       0.90,
	ObjectiveMaintain:       1.00,
	ObjectiveBulkLight:      1.05,
	ObjectiveBulkStandard:   1.10,
	ObjectiveBulkAggressive: 1.15,
}

func ParseObjective(s string) (Objective, error) {
	o := Objective(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := objectiveFactors[o]; !ok {
		return "", apierr.Invalid("unknown objective %q", s)
	}
	return o, nil
}

func (o Objective) Factor() float64 { return objectiveFactors[o] }

const (
	kcalPerGramProtein = 4
	kcalPerGramCarb    = 4
	kcalPerGramFat     = 9

	proteinShare = 0.30
	fatShare     = 0.25
)

// BasalRate is the Mifflin–St Jeor basal metabolic rate in kcal/day.
func BasalRate(weightKg, heightCm float64, age int, sex Sex) float64 {
	bmr := 10*weightKg + 6.25*heightCm - 5*float64(age)
	if sex == SexFemale {
		return bmr - 161
	}
	return bmr + 5
}

func Expenditure(basal float64, level ActivityLevel) float64 {
	return basal * level.Factor()
}

func TargetCalories(expenditure float64, objective Objective) float64 {
	return expenditure * objective.Factor()
}

// MacroSplit divides calories 30% protein, 25% fat and the remainder carbs.
// Values are unrounded; Profile.ApplyGoals rounds them for storage.
func MacroSplit(calories float64) models.Macros {
	proteinKcal := calories * proteinShare
	fatKcal := calories * fatShare
	carbKcal := calories - proteinKcal - fatKcal
	return models.Macros{
		Protein: proteinKcal / kcalPerGramProtein,
		Fat:     fatKcal / kcalPerGramFat,
		Carb:    carbKcal / kcalPerGramCarb,
	}
}

func CaloriesFromMacros(protein, carb, fat float64) float64 {
	return protein*kcalPerGramProtein + carb*kcalPerGramCarb + fat*kcalPerGramFat
}

// ComputeGoals runs the whole pipeline from stored profile data and writes
// the rounded goals onto the profile.
func ComputeGoals(p *models.Profile) error {
	sex, err := ParseSex(p.Sex)
	if err != nil {
		return err
	}
	level, err := ParseActivityLevel(p.ActivityLevel)
	if err != nil {
		return err
	}
	objective, err := ParseObjective(p.Objective)
	if err != nil {
		return err
	}
	if p.WeightKg <= 0 || p.HeightCm <= 0 || p.Age <= 0 {
		return apierr.Invalid("body metrics are required before goals can be computed")
	}
	target := TargetCalories(Expenditure(BasalRate(p.WeightKg, p.HeightCm, p.Age, sex), level), objective)
	p.ApplyGoals(target, MacroSplit(target))
	return nil
}
