package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"macrolog/apierr"
	"macrolog/logger"
	"macrolog/models"
)

type RecipeService struct {
	recipes  RecipeStore
	profiles ProfileStore
	log      *logger.Logger
}

func NewRecipeService(recipes RecipeStore, profiles ProfileStore, log *logger.Logger) *RecipeService {
	return &RecipeService{recipes: recipes, profiles: profiles, log: log.With("service", "RecipeService")}
}

// Save stores each recipe in the shared catalog, reusing one with the same
// title, and adds it to the profile's saved list.
func (s *RecipeService) Save(ctx context.Context, profileID uuid.UUID, recipes []models.Recipe) ([]models.Recipe, error) {
	if len(recipes) == 0 {
		return nil, apierr.Invalid("at least one recipe is required")
	}
	stored := make([]models.Recipe, 0, len(recipes))
	for i := range recipes {
		r := recipes[i]
		r.Title = strings.TrimSpace(r.Title)
		if r.Title == "" {
			return nil, apierr.Invalid("recipe title is required")
		}
		r.TitleKey = models.NameKey(r.Title)
		r.ID = uuid.New()
		got, err := s.recipes.InsertIfAbsent(ctx, &r)
		if err != nil {
			return nil, fmt.Errorf("save recipe %q: %w", r.Title, err)
		}
		stored = append(stored, *got)
	}

	_, err := mutateProfile(ctx, s.profiles, profileID, func(p *models.Profile) error {
		have := make(map[string]bool, len(p.RecipeIDs))
		for _, id := range p.RecipeIDs {
			have[id] = true
		}
		for _, r := range stored {
			if id := r.ID.String(); !have[id] {
				p.RecipeIDs = append(p.RecipeIDs, id)
				have[id] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("recipes saved", "profile_id", profileID, "count", len(stored))
	return stored, nil
}

// List returns the profile's saved recipes in the order they were saved.
func (s *RecipeService) List(ctx context.Context, profileID uuid.UUID) ([]models.Recipe, error) {
	p, err := loadProfile(ctx, s.profiles, profileID)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(p.RecipeIDs))
	for _, raw := range p.RecipeIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.log.Warn("bad recipe reference", "profile_id", profileID, "recipe_id", raw)
			continue
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return []models.Recipe{}, nil
	}
	found, err := s.recipes.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	byID := make(map[uuid.UUID]models.Recipe, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	out := make([]models.Recipe, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

// Remove drops the reference from the profile; the recipe itself stays in
// the shared catalog.
func (s *RecipeService) Remove(ctx context.Context, profileID, recipeID uuid.UUID) error {
	_, err := mutateProfile(ctx, s.profiles, profileID, func(p *models.Profile) error {
		kept := p.RecipeIDs[:0:0]
		for _, id := range p.RecipeIDs {
			if id != recipeID.String() {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(p.RecipeIDs) {
			return apierr.NotFound("recipe_not_found", "recipe is not saved on this profile")
		}
		p.RecipeIDs = kept
		return nil
	})
	return err
}
