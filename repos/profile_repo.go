package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"macrolog/logger"
	"macrolog/models"
)

type ProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) *ProfileRepo {
	return &ProfileRepo{db: db, log: baseLog.With("repo", "ProfileRepo")}
}

func (r *ProfileRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProfileRepo) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// Save writes the profile only if its stored version still equals
// p.Version, then upserts its days in the same transaction. On success
// p.Version is advanced.
func (r *ProfileRepo) Save(ctx context.Context, p *models.Profile) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		next := *p
		next.Version = p.Version + 1
		next.Days = nil

		res := tx.Model(&models.Profile{}).
			Where("id = ? AND version = ?", p.ID, p.Version).
			Select("*").
			Omit("id", "created_at", "Days").
			Updates(&next)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(&models.Profile{}).Where("id = ?", p.ID).Count(&n).Error; err != nil {
				return err
			}
			if n == 0 {
				return models.ErrNotFound
			}
			return models.ErrVersionConflict
		}

		for i := range p.Days {
			day := &p.Days[i]
			day.ProfileID = p.ID
			if day.ID == uuid.Nil {
				day.ID = uuid.New()
			}
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(day).Error
			if err != nil {
				return fmt.Errorf("save day %s: %w", day.Date, err)
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrVersionConflict) {
			r.log.Debug("profile version conflict", "profile_id", p.ID, "version", p.Version)
		}
		return err
	}
	p.Version++
	return nil
}
