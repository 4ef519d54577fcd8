package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"macrolog/utils"
)

const DefaultDayStart = "00:00"

// Macros are grams of each macronutrient.
type Macros struct {
	Protein float64 `json:"protein"`
	Carb    float64 `json:"carb"`
	Fat     float64 `json:"fat"`
}

// OnboardingProgress holds one slot per onboarding step.
type OnboardingProgress struct {
	Basics      bool `json:"basics"`
	Activity    bool `json:"activity"`
	Objective   bool `json:"objective"`
	Preferences bool `json:"preferences"`
}

// Complete is the only source of the profile's derived completeness flag.
func (o OnboardingProgress) Complete() bool {
	return o.Basics && o.Activity && o.Objective && o.Preferences
}

// Profile is one user's body data, onboarding state, goals and day ledger.
type Profile struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email string    `gorm:"index" json:"email"`

	// basics
	Name     string  `json:"name"`
	Age      int     `json:"age"`
	Sex      string  `gorm:"size:16" json:"sex"`
	HeightCm float64 `json:"height_cm"`
	WeightKg float64 `json:"weight_kg"`
	DayStart string  `gorm:"size:5" json:"day_start"`

	ActivityLevel string `gorm:"size:32" json:"activity_level"`
	Objective     string `gorm:"size:32" json:"objective"`

	Preferences datatypes.JSONSlice[string] `json:"preferences"`
	Allergies   datatypes.JSONSlice[string] `json:"allergies"`
	RecipeIDs   datatypes.JSONSlice[string] `json:"recipe_ids"`

	Steps           OnboardingProgress `gorm:"embedded;embeddedPrefix:step_" json:"steps"`
	ProfileComplete bool               `json:"profile_complete"`

	TargetCalories int    `json:"target_calories"`
	TargetMacros   Macros `gorm:"embedded;embeddedPrefix:target_" json:"target_macros"`

	Days []NutritionDay `gorm:"foreignKey:ProfileID" json:"-"`

	Version   int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveDate is the nutrition day "now" belongs to: today when the time of
// day is at or after dayStart, otherwise yesterday.
func EffectiveDate(now time.Time, dayStart string) (string, error) {
	startMin, err := utils.ParseDayStart(dayStart)
	if err != nil {
		return "", err
	}
	if now.Hour()*60+now.Minute() < startMin {
		now = now.AddDate(0, 0, -1)
	}
	return now.Format(DateLayout), nil
}

func (p *Profile) dayStartOrDefault() string {
	if p.DayStart == "" {
		return DefaultDayStart
	}
	return p.DayStart
}

// CurrentDay returns the day record for now's effective date, appending a
// zeroed one when this date has not been seen yet.
func (p *Profile) CurrentDay(now time.Time) (*NutritionDay, error) {
	start := p.dayStartOrDefault()
	date, err := EffectiveDate(now, start)
	if err != nil {
		return nil, err
	}
	if d := p.DayByDate(date); d != nil {
		return d, nil
	}
	p.Days = append(p.Days, NutritionDay{
		ID:        uuid.New(),
		ProfileID: p.ID,
		Date:      date,
		DayStart:  start,
	})
	return &p.Days[len(p.Days)-1], nil
}

func (p *Profile) DayByDate(date string) *NutritionDay {
	for i := range p.Days {
		if p.Days[i].Date == date {
			return &p.Days[i]
		}
	}
	return nil
}

// ApplyGoals stores calories as a whole number and macros at 1 decimal.
func (p *Profile) ApplyGoals(calories float64, m Macros) {
	p.TargetCalories = int(utils.RoundWhole(calories))
	p.TargetMacros = Macros{
		Protein: utils.RoundMacro(m.Protein),
		Carb:    utils.RoundMacro(m.Carb),
		Fat:     utils.RoundMacro(m.Fat),
	}
}
