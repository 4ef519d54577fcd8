package repos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"macrolog/config"
	applog "macrolog/logger"
	"macrolog/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := config.Migrate(db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestProfileRepoSaveIsCompareAndSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepo(openTestDB(t), applog.Nop())

	p := &models.Profile{ID: uuid.New(), Email: "ana@example.com", DayStart: "00:00"}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	a, _ := repo.FindByID(ctx, p.ID)
	b, _ := repo.FindByID(ctx, p.ID)

	day, err := a.CurrentDay(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CurrentDay: %v", err)
	}
	day.ApplyConsumption(10, 20, 5, 165)
	a.Name = "Ana"
	if err := repo.Save(ctx, a); err != nil {
		t.Fatalf("Save a: %v", err)
	}
	if a.Version != 1 {
		t.Fatalf("Version: want=1 got=%d", a.Version)
	}

	b.Name = "stale"
	if err := repo.Save(ctx, b); !errors.Is(err, models.ErrVersionConflict) {
		t.Fatalf("Save stale: want ErrVersionConflict, got %v", err)
	}

	got, err := repo.FindByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name != "Ana" || len(got.Days) != 1 || got.Days[0].Protein != 10 || got.Days[0].Calories != 165 {
		t.Fatalf("stored: name=%q days=%+v", got.Name, got.Days)
	}

	// updating the same day again must not create a second row
	d, _ := got.CurrentDay(time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC))
	d.AdviceCount = 3
	if err := repo.Save(ctx, got); err != nil {
		t.Fatalf("Save again: %v", err)
	}
	again, _ := repo.FindByID(ctx, p.ID)
	if len(again.Days) != 1 || again.Days[0].AdviceCount != 3 {
		t.Fatalf("days after resave: %+v", again.Days)
	}
}

func TestProfileRepoMissing(t *testing.T) {
	ctx := context.Background()
	repo := NewProfileRepo(openTestDB(t), applog.Nop())

	if _, err := repo.FindByID(ctx, uuid.New()); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("FindByID: want ErrNotFound, got %v", err)
	}
	if err := repo.Save(ctx, &models.Profile{ID: uuid.New()}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Save: want ErrNotFound, got %v", err)
	}
	ok, err := repo.ExistsByID(ctx, uuid.New())
	if err != nil || ok {
		t.Fatalf("ExistsByID: want false,nil got %v,%v", ok, err)
	}
}

func TestCatalogRepoInsertIfAbsent(t *testing.T) {
	ctx := context.Background()
	repo := NewCatalogRepo(openTestDB(t), applog.Nop())

	first, created, err := repo.InsertIfAbsent(ctx, &models.CatalogEntry{Name: "Arroz", ProteinPer100g: 2.7})
	if err != nil || !created {
		t.Fatalf("InsertIfAbsent: created=%v err=%v", created, err)
	}
	second, created, err := repo.InsertIfAbsent(ctx, &models.CatalogEntry{Name: "ARROZ ", NameKey: "arroz", ProteinPer100g: 5})
	if err != nil || created {
		t.Fatalf("InsertIfAbsent again: created=%v err=%v", created, err)
	}
	if second.ID != first.ID || second.ProteinPer100g != 2.7 {
		t.Fatalf("second: got %+v", second)
	}

	found, err := repo.FindByName(ctx, "  arroz")
	if err != nil || found.ID != first.ID {
		t.Fatalf("FindByName: got %+v, %v", found, err)
	}

	found.ProteinPer100g = 3.1
	if err := repo.Replace(ctx, found); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	list, _ := repo.List(ctx)
	if len(list) != 1 || list[0].ProteinPer100g != 3.1 {
		t.Fatalf("List: got %+v", list)
	}
	if err := repo.Replace(ctx, &models.CatalogEntry{ID: 999}); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("Replace missing: want ErrNotFound, got %v", err)
	}
}

func TestCredentialAndRecipeRepos(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	creds := NewCredentialRepo(db, applog.Nop())
	recipes := NewRecipeRepo(db, applog.Nop())

	c := &models.Credential{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "x", Role: "ROLE_USER", ProfileID: uuid.New()}
	if err := creds.Create(ctx, c); err != nil {
		t.Fatalf("Create credential: %v", err)
	}
	if err := creds.Create(ctx, &models.Credential{ID: uuid.New(), Email: "ana@example.com", PasswordHash: "y", ProfileID: uuid.New()}); err == nil {
		t.Fatalf("duplicate email: expected error")
	}
	got, err := creds.FindByEmail(ctx, "ana@example.com")
	if err != nil || got.ProfileID != c.ProfileID {
		t.Fatalf("FindByEmail: got %+v, %v", got, err)
	}

	r := &models.Recipe{ID: uuid.New(), Title: "Bowl", TitleKey: "bowl", Ingredients: []models.Ingredient{{Name: "arroz", Grams: 100}}}
	if _, err := recipes.InsertIfAbsent(ctx, r); err != nil {
		t.Fatalf("InsertIfAbsent: %v", err)
	}
	dup, err := recipes.InsertIfAbsent(ctx, &models.Recipe{ID: uuid.New(), Title: "BOWL", TitleKey: "bowl"})
	if err != nil || dup.ID != r.ID {
		t.Fatalf("InsertIfAbsent dup: got %+v, %v", dup, err)
	}
	list, err := recipes.FindByIDs(ctx, []uuid.UUID{r.ID})
	if err != nil || len(list) != 1 || list[0].Ingredients[0].Grams != 100 {
		t.Fatalf("FindByIDs: got %+v, %v", list, err)
	}
}
