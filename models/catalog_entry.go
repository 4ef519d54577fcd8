package models

import (
	"strings"
	"time"
)

// CatalogEntry is a food normalized to a 100 g basis, shared by all users.
type CatalogEntry struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Name    string `gorm:"not null" json:"name"`
	NameKey string `gorm:"size:255;uniqueIndex;not null" json:"-"`

	CaloriesPer100g float64 `gorm:"column:calories_per_100g" json:"calories_per_100g"`
	ProteinPer100g  float64 `gorm:"column:protein_per_100g" json:"protein_per_100g"`
	CarbPer100g     float64 `gorm:"column:carb_per_100g" json:"carb_per_100g"`
	FatPer100g      float64 `gorm:"column:fat_per_100g" json:"fat_per_100g"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NameKey is the case-insensitive identity of a catalog name.
func NameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
