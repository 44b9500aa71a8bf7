package service

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

// ─── Fakes ──────────────────────────────────────────────────────────────

type fakeModules struct {
	nextID  int
	modules map[int]*model.Module
}

func newFakeModules() *fakeModules {
	return &fakeModules{modules: make(map[int]*model.Module)}
}

func (f *fakeModules) GetByID(_ context.Context, id int) (*model.Module, error) {
	m, ok := f.modules[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeModules) Catalogue(_ context.Context) ([]model.Module, error) {
	var out []model.Module
	for _, m := range f.modules {
		out = append(out, *m)
	}
	return out, nil
}

func (f *fakeModules) Create(_ context.Context, m *model.Module, _ []int) error {
	f.nextID++
	m.ID = f.nextID
	cp := *m
	f.modules[m.ID] = &cp
	return nil
}

func (f *fakeModules) Update(_ context.Context, m *model.Module, _ []int) error {
	if _, ok := f.modules[m.ID]; !ok {
		return ErrNotFound
	}
	cp := *m
	f.modules[m.ID] = &cp
	return nil
}

type fakeEngagement struct {
	nextID  int
	records map[int]*model.UserModule // keyed by record ID
	byPair  map[[2]int]int
	modules *fakeModules
}

func newFakeEngagement(modules *fakeModules) *fakeEngagement {
	return &fakeEngagement{
		records: make(map[int]*model.UserModule),
		byPair:  make(map[[2]int]int),
		modules: modules,
	}
}

func (f *fakeEngagement) FindOrCreate(_ context.Context, userID, moduleID int) (*model.UserModule, error) {
	if id, ok := f.byPair[[2]int{userID, moduleID}]; ok {
		cp := *f.records[id]
		return &cp, nil
	}
	f.nextID++
	um := &model.UserModule{ID: f.nextID, UserID: userID, ModuleID: moduleID}
	f.records[um.ID] = um
	f.byPair[[2]int{userID, moduleID}] = um.ID
	cp := *um
	return &cp, nil
}

func (f *fakeEngagement) SetStarred(_ context.Context, id int, starred bool) error {
	rec, ok := f.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.Starred = starred
	return nil
}

func (f *fakeEngagement) SaveVote(_ context.Context, um *model.UserModule, moduleVotes int) error {
	rec, ok := f.records[um.ID]
	if !ok {
		return ErrNotFound
	}
	rec.Vote = um.Vote
	if m, ok := f.modules.modules[um.ModuleID]; ok {
		m.Votes = moduleVotes
	}
	return nil
}

func (f *fakeEngagement) StarCount(_ context.Context, moduleID int) (int, error) {
	count := 0
	for _, rec := range f.records {
		if rec.ModuleID == moduleID && rec.Starred {
			count++
		}
	}
	return count, nil
}

// ─── Fixture ────────────────────────────────────────────────────────────

type moduleFixture struct {
	svc        *ModuleService
	modules    *fakeModules
	engagement *fakeEngagement
	graph      *fakeGraph
}

// deadRedis returns a client pointed at nothing. Cache, queue and publish
// operations fail and the service is expected to carry on regardless.
func deadRedis() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
}

func newModuleFixture() *moduleFixture {
	modules := newFakeModules()
	engagement := newFakeEngagement(modules)
	graph := newFakeGraph()
	return &moduleFixture{
		svc:        NewModuleService(modules, engagement, graph, deadRedis(), zerolog.Nop()),
		modules:    modules,
		engagement: engagement,
		graph:      graph,
	}
}

func (fx *moduleFixture) seedModule(votes int) *model.Module {
	fx.modules.nextID++
	m := &model.Module{
		ID:             fx.modules.nextID,
		Name:           "Differentiation from first principles",
		AuthorID:       testUser.ID,
		SubjectID:      1,
		MaterialSource: model.MaterialSourceYoutube,
		MaterialPath:   "https://www.youtube.com/embed/abc123?rel=0",
		Votes:          votes,
	}
	fx.modules.modules[m.ID] = m
	return m
}

// ─── Material paths ─────────────────────────────────────────────────────

func TestNormalizeMaterialPath(t *testing.T) {
	cases := []struct {
		name   string
		source model.MaterialSource
		in     string
		want   string
	}{
		{"youtube gets rel suffix", model.MaterialSourceYoutube, "https://www.youtube.com/embed/abc", "https://www.youtube.com/embed/abc?rel=0"},
		{"youtube already suffixed", model.MaterialSourceYoutube, "https://www.youtube.com/embed/abc?rel=0", "https://www.youtube.com/embed/abc?rel=0"},
		{"upload untouched", model.MaterialSourceUpload, "lectures/calc-01.mp4", "lectures/calc-01.mp4"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeMaterialPath(tc.source, tc.in); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

// ─── Authoring ──────────────────────────────────────────────────────────

func TestCreateModuleResolvesObjectives(t *testing.T) {
	fx := newModuleFixture()
	fx.graph.Create(context.Background(), &model.Objective{Name: "Algebra", SubjectID: 1, CreatedByID: testAdmin.ID}, nil)

	module, err := fx.svc.Create(context.Background(), model.CreateModuleRequest{
		Name:           "Intro to Algebra",
		SubjectID:      1,
		MaterialSource: model.MaterialSourceYoutube,
		MaterialPath:   "https://www.youtube.com/embed/xyz",
		Objectives:     []string{"Algebra"},
	}, testAdmin)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if len(module.Objectives) != 1 || module.Objectives[0] != "Algebra" {
		t.Fatalf("expected [Algebra], got %v", module.Objectives)
	}
	if module.MaterialPath != "https://www.youtube.com/embed/xyz?rel=0" {
		t.Fatalf("material path not normalized: %q", module.MaterialPath)
	}
}

func TestCreateModuleRejectsUnknownObjective(t *testing.T) {
	fx := newModuleFixture()

	_, err := fx.svc.Create(context.Background(), model.CreateModuleRequest{
		Name:           "Mystery",
		SubjectID:      1,
		MaterialSource: model.MaterialSourceUpload,
		MaterialPath:   "lectures/mystery.mp4",
		Objectives:     []string{"Nonexistent"},
	}, testAdmin)

	if msg := fieldError(t, err, "objectives"); msg != "unavailable: Nonexistent" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUpdateModuleRequiresAuthorOrAdmin(t *testing.T) {
	fx := newModuleFixture()
	module := fx.seedModule(0)

	req := model.UpdateModuleRequest{
		Name:           "Renamed",
		MaterialSource: model.MaterialSourceUpload,
		MaterialPath:   "lectures/renamed.mp4",
	}

	stranger := &model.User{ID: 99, SubjectID: 1}
	if _, err := fx.svc.Update(context.Background(), module.ID, req, stranger); !errors.Is(err, ErrNotAuthorised) {
		t.Fatalf("expected ErrNotAuthorised, got %v", err)
	}

	// The author may edit.
	if _, err := fx.svc.Update(context.Background(), module.ID, req, testUser); err != nil {
		t.Fatalf("author update: %v", err)
	}

	// So may an administrator.
	if _, err := fx.svc.Update(context.Background(), module.ID, req, testAdmin); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

// ─── Engagement ─────────────────────────────────────────────────────────

func TestVoteAdjustsTotalByDelta(t *testing.T) {
	fx := newModuleFixture()
	module := fx.seedModule(10)
	ctx := context.Background()

	updated, err := fx.svc.Vote(ctx, module.ID, 5, testUser)
	if err != nil {
		t.Fatalf("first vote: %v", err)
	}
	if updated.Votes != 15 {
		t.Fatalf("expected 15 votes, got %d", updated.Votes)
	}

	// Revoting replaces the previous vote rather than stacking.
	updated, err = fx.svc.Vote(ctx, module.ID, 2, testUser)
	if err != nil {
		t.Fatalf("second vote: %v", err)
	}
	if updated.Votes != 12 {
		t.Fatalf("expected 12 votes, got %d", updated.Votes)
	}
}

func TestToggleStarFlips(t *testing.T) {
	fx := newModuleFixture()
	module := fx.seedModule(0)
	ctx := context.Background()

	um, err := fx.svc.ToggleStar(ctx, module.ID, testUser)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !um.Starred {
		t.Fatal("expected starred after first toggle")
	}

	um, err = fx.svc.ToggleStar(ctx, module.ID, testUser)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if um.Starred {
		t.Fatal("expected unstarred after second toggle")
	}
}

func TestViewCreatesEngagementRecord(t *testing.T) {
	fx := newModuleFixture()
	module := fx.seedModule(0)
	ctx := context.Background()

	// The view event enqueue fails against the dead Redis; views must
	// still succeed.
	gotModule, um, err := fx.svc.View(ctx, module.ID, testUser)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if gotModule.ID != module.ID {
		t.Fatalf("expected module %d, got %d", module.ID, gotModule.ID)
	}
	if um.UserID != testUser.ID || um.ModuleID != module.ID {
		t.Fatalf("unexpected engagement record %+v", um)
	}

	// A second view reuses the record.
	_, again, err := fx.svc.View(ctx, module.ID, testUser)
	if err != nil {
		t.Fatalf("second view: %v", err)
	}
	if again.ID != um.ID {
		t.Fatalf("expected record %d, got %d", um.ID, again.ID)
	}
}

// ─── Catalogue ──────────────────────────────────────────────────────────

func TestCatalogueFallsBackWhenCacheUnavailable(t *testing.T) {
	fx := newModuleFixture()
	fx.seedModule(3)

	modules, err := fx.svc.Catalogue(context.Background())
	if err != nil {
		t.Fatalf("catalogue: %v", err)
	}
	if len(modules) != 1 {
		t.Fatalf("expected 1 module, got %d", len(modules))
	}
}

func TestCatalogueReturnsEmptySliceNotNil(t *testing.T) {
	fx := newModuleFixture()

	modules, err := fx.svc.Catalogue(context.Background())
	if err != nil {
		t.Fatalf("catalogue: %v", err)
	}
	if modules == nil {
		t.Fatal("expected empty slice, got nil")
	}
}
