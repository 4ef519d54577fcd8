package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"macrolog/apierr"
	"macrolog/logger"
	"macrolog/models"
	"macrolog/utils"
)

type CatalogService struct {
	store CatalogStore
	log   *logger.Logger
}

func NewCatalogService(store CatalogStore, log *logger.Logger) *CatalogService {
	return &CatalogService{store: store, log: log.With("service", "CatalogService")}
}

// FindByName is a case-insensitive exact lookup; a miss returns (nil, nil).
func (s *CatalogService) FindByName(ctx context.Context, name string) (*models.CatalogEntry, error) {
	e, err := s.store.FindByName(ctx, name)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("catalog lookup %q: %w", name, err)
	}
	return e, nil
}

// InsertIfAbsent never overwrites: on a name collision the stored entry is
// returned unchanged.
func (s *CatalogService) InsertIfAbsent(ctx context.Context, e *models.CatalogEntry) (*models.CatalogEntry, error) {
	if strings.TrimSpace(e.Name) == "" {
		return nil, apierr.Invalid("catalog entry name is required")
	}
	e.Name = strings.TrimSpace(e.Name)
	e.NameKey = models.NameKey(e.Name)
	stored, created, err := s.store.InsertIfAbsent(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("catalog insert %q: %w", e.Name, err)
	}
	if created {
		s.log.Debug("catalog entry created", "name", stored.Name)
	}
	return stored, nil
}

// InsertSample stores a consumed sample normalized to 100 g unless the name
// is already cataloged. Samples without a positive weight cannot be
// normalized and are skipped.
func (s *CatalogService) InsertSample(ctx context.Context, name string, grams, protein, carb, fat float64) (*models.CatalogEntry, error) {
	if existing, err := s.FindByName(ctx, name); err != nil || existing != nil {
		return existing, err
	}
	entry, err := FromConsumedSample(name, grams, protein, carb, fat)
	if err != nil {
		return nil, err
	}
	return s.InsertIfAbsent(ctx, entry)
}

func (s *CatalogService) ListAll(ctx context.Context) ([]models.CatalogEntry, error) {
	return s.store.List(ctx)
}

// Import inserts already-normalized entries, keeping existing ones.
func (s *CatalogService) Import(ctx context.Context, entries []models.CatalogEntry) ([]models.CatalogEntry, error) {
	out := make([]models.CatalogEntry, 0, len(entries))
	for i := range entries {
		e := entries[i]
		e.ID = 0
		stored, err := s.InsertIfAbsent(ctx, &e)
		if err != nil {
			return nil, err
		}
		out = append(out, *stored)
	}
	s.log.Info("catalog import finished", "count", len(out))
	return out, nil
}

// Override replaces the per-100g values of an existing entry.
func (s *CatalogService) Override(ctx context.Context, name string, values models.CatalogEntry) (*models.CatalogEntry, error) {
	existing, err := s.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apierr.NotFound("catalog_entry_not_found", fmt.Sprintf("food %q is not cataloged", name))
	}
	existing.CaloriesPer100g = utils.RoundMacro(values.CaloriesPer100g)
	existing.ProteinPer100g = utils.RoundMacro(values.ProteinPer100g)
	existing.CarbPer100g = utils.RoundMacro(values.CarbPer100g)
	existing.FatPer100g = utils.RoundMacro(values.FatPer100g)
	if err := s.store.Replace(ctx, existing); err != nil {
		return nil, fmt.Errorf("catalog override %q: %w", name, err)
	}
	s.log.Info("catalog entry overridden", "name", existing.Name)
	return existing, nil
}

// FromConsumedSample scales a consumed portion to a 100 g basis, rounding
// each field to 1 decimal. grams must be positive.
func FromConsumedSample(name string, grams, protein, carb, fat float64) (*models.CatalogEntry, error) {
	if grams <= 0 {
		return nil, apierr.Invalid("cannot normalize %q: grams must be positive, got %v", name, grams)
	}
	factor := 100.0 / grams
	calories := CaloriesFromMacros(protein, carb, fat)
	return &models.CatalogEntry{
		Name:            strings.TrimSpace(name),
		NameKey:         models.NameKey(name),
		CaloriesPer100g: utils.RoundMacro(calories * factor),
		ProteinPer100g:  utils.RoundMacro(protein * factor),
		CarbPer100g:     utils.RoundMacro(carb * factor),
		FatPer100g:      utils.RoundMacro(fat * factor),
	}, nil
}
