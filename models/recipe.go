package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Ingredient struct {
	Name  string  `json:"name"`
	Grams float64 `json:"grams"`
}

// RecipeMacros are whole grams, as recipes are displayed.
type RecipeMacros struct {
	Protein int `json:"protein"`
	Carb    int `json:"carb"`
	Fat     int `json:"fat"`
}

// Recipe is a saved recipe in the shared recipe catalog; profiles keep
// references to it by id.
type Recipe struct {
	ID           uuid.UUID                       `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string                          `gorm:"not null" json:"title"`
	TitleKey     string                          `gorm:"size:255;uniqueIndex;not null" json:"-"`
	Calories     int                             `json:"calories"`
	Ingredients  datatypes.JSONSlice[Ingredient] `json:"ingredients"`
	Instructions string                          `gorm:"type:text" json:"instructions"`
	Macros       RecipeMacros                    `gorm:"embedded;embeddedPrefix:macro_" json:"macros"`
	CreatedAt    time.Time                       `json:"created_at"`
}
