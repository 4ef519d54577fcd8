package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"macrolog/logger"
	"macrolog/models"
)

type memProfileStore struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*models.Profile
	saves    int
	// conflicts forces this many Save calls to fail with a version conflict.
	conflicts int
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[uuid.UUID]*models.Profile)}
}

func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	c.Days = append([]models.NutritionDay(nil), p.Days...)
	c.Preferences = append([]string(nil), p.Preferences...)
	c.Allergies = append([]string(nil), p.Allergies...)
	c.RecipeIDs = append([]string(nil), p.RecipeIDs...)
	return &c
}

func (s *memProfileStore) FindByID(_ context.Context, id uuid.UUID) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (s *memProfileStore) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = cloneProfile(p)
	return nil
}

func (s *memProfileStore) Save(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.profiles[p.ID]
	if !ok {
		return models.ErrNotFound
	}
	if s.conflicts > 0 {
		s.conflicts--
		cur.Version++
		return models.ErrVersionConflict
	}
	if cur.Version != p.Version {
		return models.ErrVersionConflict
	}
	p.Version++
	s.saves++
	s.profiles[p.ID] = cloneProfile(p)
	return nil
}

func (s *memProfileStore) ExistsByID(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.profiles[id]
	return ok, nil
}

func (s *memProfileStore) put(p *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = cloneProfile(p)
}

type memCatalogStore struct {
	mu      sync.Mutex
	entries map[string]models.CatalogEntry
	order   []string
	nextID  uint
}

func newMemCatalogStore(seed ...models.CatalogEntry) *memCatalogStore {
	s := &memCatalogStore{entries: make(map[string]models.CatalogEntry)}
	for i := range seed {
		e := seed[i]
		e.NameKey = models.NameKey(e.Name)
		_, _, _ = s.InsertIfAbsent(context.Background(), &e)
	}
	return s
}

func (s *memCatalogStore) FindByName(_ context.Context, name string) (*models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[models.NameKey(name)]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &e, nil
}

func (s *memCatalogStore) InsertIfAbsent(_ context.Context, e *models.CatalogEntry) (*models.CatalogEntry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.entries[e.NameKey]; ok {
		return &cur, false, nil
	}
	s.nextID++
	stored := *e
	stored.ID = s.nextID
	s.entries[e.NameKey] = stored
	s.order = append(s.order, e.NameKey)
	return &stored, true, nil
}

func (s *memCatalogStore) List(_ context.Context) ([]models.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CatalogEntry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.entries[k])
	}
	return out, nil
}

func (s *memCatalogStore) Replace(_ context.Context, e *models.CatalogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[e.NameKey]; !ok {
		return models.ErrNotFound
	}
	s.entries[e.NameKey] = *e
	return nil
}

func (s *memCatalogStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

type memCredentialStore struct {
	mu    sync.Mutex
	creds map[string]models.Credential
}

func newMemCredentialStore() *memCredentialStore {
	return &memCredentialStore{creds: make(map[string]models.Credential)}
}

func (s *memCredentialStore) FindByEmail(_ context.Context, email string) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.creds[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &c, nil
}

func (s *memCredentialStore) Create(_ context.Context, c *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[c.Email] = *c
	return nil
}

type memRecipeStore struct {
	mu      sync.Mutex
	byTitle map[string]models.Recipe
}

func newMemRecipeStore() *memRecipeStore {
	return &memRecipeStore{byTitle: make(map[string]models.Recipe)}
}

func (s *memRecipeStore) InsertIfAbsent(_ context.Context, r *models.Recipe) (*models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.byTitle[r.TitleKey]; ok {
		return &cur, nil
	}
	s.byTitle[r.TitleKey] = *r
	out := *r
	return &out, nil
}

func (s *memRecipeStore) FindByIDs(_ context.Context, ids []uuid.UUID) ([]models.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []models.Recipe
	for _, r := range s.byTitle {
		if want[r.ID] {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeOracle struct {
	mu    sync.Mutex
	calls [][]OracleItem
	reply *OracleReply
	err   error
}

func (o *fakeOracle) EstimateMacros(_ context.Context, items []OracleItem) (*OracleReply, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, append([]OracleItem(nil), items...))
	if o.err != nil {
		return nil, o.err
	}
	return o.reply, nil
}

func (o *fakeOracle) callCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.calls)
}

type recordingQueue struct {
	mu    sync.Mutex
	tasks []PersistTask
}

func (q *recordingQueue) Enqueue(task PersistTask) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, task)
}

// fixedClock returns a Clock frozen at the given wall time in UTC.
func fixedClock(layout, value string) Clock {
	t, err := time.Parse(layout, value)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func testLogger() *logger.Logger { return logger.Nop() }

// seedProfile stores a finished profile with goals set.
func seedProfile(store *memProfileStore, mutate ...func(p *models.Profile)) *models.Profile {
	p := &models.Profile{
		ID:             uuid.New(),
		Email:          "ana@example.com",
		Age:            30,
		Sex:            string(SexMale),
		HeightCm:       180,
		WeightKg:       80,
		DayStart:       models.DefaultDayStart,
		ActivityLevel:  string(ActivityModerate),
		Objective:      string(ObjectiveMaintain),
		TargetCalories: 2759,
		TargetMacros:   models.Macros{Protein: 206.9, Carb: 310.4, Fat: 76.6},
	}
	for _, m := range mutate {
		m(p)
	}
	store.put(p)
	return p
}
