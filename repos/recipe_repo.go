package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"macrolog/logger"
	"macrolog/models"
)

type RecipeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecipeRepo(db *gorm.DB, baseLog *logger.Logger) *RecipeRepo {
	return &RecipeRepo{db: db, log: baseLog.With("repo", "RecipeRepo")}
}

// InsertIfAbsent returns the stored recipe with the same title when there is one.
func (r *RecipeRepo) InsertIfAbsent(ctx context.Context, rec *models.Recipe) (*models.Recipe, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "title_key"}}, DoNothing: true}).
		Create(rec)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return rec, nil
	}
	var stored models.Recipe
	if err := r.db.WithContext(ctx).Where("title_key = ?", rec.TitleKey).First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (r *RecipeRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	var out []models.Recipe
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
