package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"macrolog/apierr"
	"macrolog/models"
)

// ProfileStore persists profiles together with their nutrition days.
// Save is compare-and-swap on Profile.Version and returns
// models.ErrVersionConflict when another writer got there first.
type ProfileStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, p *models.Profile) error
	Save(ctx context.Context, p *models.Profile) error
	ExistsByID(ctx context.Context, id uuid.UUID) (bool, error)
}

// CatalogStore holds the shared per-100g food catalog.
type CatalogStore interface {
	FindByName(ctx context.Context, name string) (*models.CatalogEntry, error)
	// InsertIfAbsent returns the stored entry and whether this call created it.
	InsertIfAbsent(ctx context.Context, e *models.CatalogEntry) (*models.CatalogEntry, bool, error)
	List(ctx context.Context) ([]models.CatalogEntry, error)
	Replace(ctx context.Context, e *models.CatalogEntry) error
}

type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*models.Credential, error)
	Create(ctx context.Context, c *models.Credential) error
}

type RecipeStore interface {
	InsertIfAbsent(ctx context.Context, r *models.Recipe) (*models.Recipe, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Recipe, error)
}

// maxSaveAttempts bounds the reload-and-retry loop on version conflicts.
const maxSaveAttempts = 5

func profileNotFound() *apierr.Error {
	return apierr.NotFound("profile_not_found", "profile not found")
}

func loadProfile(ctx context.Context, store ProfileStore, id uuid.UUID) (*models.Profile, error) {
	p, err := store.FindByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, profileNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// mutateProfile reloads the profile, applies fn and saves it, retrying when
// a concurrent save bumped the version in between.
func mutateProfile(ctx context.Context, store ProfileStore, id uuid.UUID, fn func(p *models.Profile) error) (*models.Profile, error) {
	for attempt := 1; ; attempt++ {
		p, err := loadProfile(ctx, store, id)
		if err != nil {
			return nil, err
		}
		if err := fn(p); err != nil {
			return nil, err
		}
		err = store.Save(ctx, p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, models.ErrVersionConflict) {
			return nil, fmt.Errorf("save profile: %w", err)
		}
		if attempt >= maxSaveAttempts {
			return nil, apierr.Conflict("concurrent_update", err)
		}
	}
}
