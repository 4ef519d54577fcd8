package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"macrolog/logger"
	"macrolog/models"
)

type CredentialRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCredentialRepo(db *gorm.DB, baseLog *logger.Logger) *CredentialRepo {
	return &CredentialRepo{db: db, log: baseLog.With("repo", "CredentialRepo")}
}

func (r *CredentialRepo) FindByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var c models.Credential
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CredentialRepo) Create(ctx context.Context, c *models.Credential) error {
	return r.db.WithContext(ctx).Create(c).Error
}
