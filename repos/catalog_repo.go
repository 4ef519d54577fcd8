package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"macrolog/logger"
	"macrolog/models"
)

type CatalogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCatalogRepo(db *gorm.DB, baseLog *logger.Logger) *CatalogRepo {
	return &CatalogRepo{db: db, log: baseLog.With("repo", "CatalogRepo")}
}

func (r *CatalogRepo) FindByName(ctx context.Context, name string) (*models.CatalogEntry, error) {
	var e models.CatalogEntry
	err := r.db.WithContext(ctx).Where("name_key = ?", models.NameKey(name)).First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// InsertIfAbsent relies on the unique name_key index, so two racing inserts
// of the same food both succeed and read back the single stored row.
func (r *CatalogRepo) InsertIfAbsent(ctx context.Context, e *models.CatalogEntry) (*models.CatalogEntry, bool, error) {
	if e.NameKey == "" {
		e.NameKey = models.NameKey(e.Name)
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name_key"}}, DoNothing: true}).
		Create(e)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return e, true, nil
	}
	stored, err := r.FindByName(ctx, e.NameKey)
	if err != nil {
		return nil, false, err
	}
	return stored, false, nil
}

func (r *CatalogRepo) List(ctx context.Context) ([]models.CatalogEntry, error) {
	var out []models.CatalogEntry
	if err := r.db.WithContext(ctx).Order("name_key ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepo) Replace(ctx context.Context, e *models.CatalogEntry) error {
	res := r.db.WithContext(ctx).Model(&models.CatalogEntry{}).
		Where("id = ?", e.ID).
		Updates(map[string]interface{}{
			"calories_per_100g": e.CaloriesPer100g,
			"protein_per_100g":  e.ProteinPer100g,
			"carb_per_100g":     e.CarbPer100g,
			"fat_per_100g":      e.FatPer100g,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}
