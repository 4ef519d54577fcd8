package models

import (
	"time"

	"github.com/google/uuid"
)

type Credential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	Role         string    `gorm:"size:32;default:ROLE_USER"`
	ProfileID    uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt    time.Time
}
