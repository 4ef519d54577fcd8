package models

import (
	"time"

	"github.com/google/uuid"

	"macrolog/utils"
)

const DateLayout = "2006-01-02"

// NutritionDay accumulates one rolling nutrition cycle of a profile.
type NutritionDay struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ProfileID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_profile_day" json:"-"`
	Date      string    `gorm:"size:10;not null;uniqueIndex:idx_profile_day" json:"date"` // effective date, YYYY-MM-DD
	DayStart  string    `gorm:"size:5" json:"day_start"`

	Protein  float64 `json:"protein"`
	Carb     float64 `json:"carb"`
	Fat      float64 `json:"fat"`
	Calories float64 `json:"calories"`

	AdviceCount int `json:"advice_count"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// ApplyConsumption adds macros rounded to 1 decimal; calories are added as
// given and only rounded when summarized.
func (d *NutritionDay) ApplyConsumption(protein, carb, fat, calories float64) {
	d.Protein += utils.RoundMacro(protein)
	d.Carb += utils.RoundMacro(carb)
	d.Fat += utils.RoundMacro(fat)
	d.Calories += calories
}

func (d *NutritionDay) Consumed() Macros {
	return Macros{Protein: d.Protein, Carb: d.Carb, Fat: d.Fat}
}
