package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

// ─── Fakes ──────────────────────────────────────────────────────────────

// fakeGraph is an in-memory ObjectiveStore. Creator visibility follows the
// admins set: an objective is visible when its creator is in admins or is
// the asking user.
type fakeGraph struct {
	nextID     int
	objectives map[int]*model.Objective
	edges      []model.PrerequisiteEdge
	admins     map[int]bool
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{
		objectives: make(map[int]*model.Objective),
		admins:     map[int]bool{1: true},
	}
}

func (f *fakeGraph) GetByID(_ context.Context, id int) (*model.Objective, error) {
	o, ok := f.objectives[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	cp.Prerequisites = nil
	for _, e := range f.edges {
		if e.ObjectiveID == id {
			cp.Prerequisites = append(cp.Prerequisites, *f.objectives[e.PrerequisiteID])
		}
	}
	return &cp, nil
}

func (f *fakeGraph) GetByName(_ context.Context, name string) (*model.Objective, error) {
	for _, o := range f.objectives {
		if o.Name == name {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeGraph) AvailableTo(_ context.Context, user *model.User, matchingNames []string) ([]model.Objective, error) {
	wanted := make(map[string]bool, len(matchingNames))
	for _, n := range matchingNames {
		wanted[n] = true
	}

	var out []model.Objective
	for _, o := range f.objectives {
		if o.SubjectID != user.SubjectID {
			continue
		}
		if !f.admins[o.CreatedByID] && o.CreatedByID != user.ID {
			continue
		}
		if len(matchingNames) > 0 && !wanted[o.Name] {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeGraph) SelectableFor(_ context.Context, _, _ int) ([]model.Objective, error) {
	return nil, nil
}

func (f *fakeGraph) AssessableFor(_ context.Context, _, _, _ int) ([]model.Objective, error) {
	return nil, nil
}

func (f *fakeGraph) AllEdges(_ context.Context) ([]model.PrerequisiteEdge, error) {
	return append([]model.PrerequisiteEdge(nil), f.edges...), nil
}

func (f *fakeGraph) Create(_ context.Context, o *model.Objective, prerequisiteIDs []int) error {
	f.nextID++
	o.ID = f.nextID
	cp := *o
	cp.Prerequisites = nil
	f.objectives[o.ID] = &cp
	for _, pid := range prerequisiteIDs {
		f.edges = append(f.edges, model.PrerequisiteEdge{ObjectiveID: o.ID, PrerequisiteID: pid})
	}
	return nil
}

func (f *fakeGraph) Update(_ context.Context, o *model.Objective, prerequisiteIDs []int) error {
	stored, ok := f.objectives[o.ID]
	if !ok {
		return ErrNotFound
	}
	stored.Name = o.Name
	stored.TopicID = o.TopicID
	stored.LastUpdated = o.LastUpdated

	kept := f.edges[:0]
	for _, e := range f.edges {
		if e.ObjectiveID != o.ID {
			kept = append(kept, e)
		}
	}
	f.edges = kept
	for _, pid := range prerequisiteIDs {
		f.edges = append(f.edges, model.PrerequisiteEdge{ObjectiveID: o.ID, PrerequisiteID: pid})
	}
	return nil
}

func (f *fakeGraph) Delete(_ context.Context, id int) error {
	delete(f.objectives, id)
	kept := f.edges[:0]
	for _, e := range f.edges {
		if e.ObjectiveID != id && e.PrerequisiteID != id {
			kept = append(kept, e)
		}
	}
	f.edges = kept
	return nil
}

type fakeTopics struct {
	topics map[int]*model.Topic
}

func (f *fakeTopics) GetByID(_ context.Context, id int) (*model.Topic, error) {
	t, ok := f.topics[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

type fakeAdoptions struct {
	records map[[3]int]*model.UserObjective
}

func newFakeAdoptions() *fakeAdoptions {
	return &fakeAdoptions{records: make(map[[3]int]*model.UserObjective)}
}

func (f *fakeAdoptions) key(studentID, tutorID, objectiveID int) [3]int {
	return [3]int{studentID, tutorID, objectiveID}
}

func (f *fakeAdoptions) Assign(_ context.Context, rec *model.UserObjective) error {
	rec.ID = len(f.records) + 1
	f.records[f.key(rec.StudentID, rec.TutorID, rec.ObjectiveID)] = rec
	return nil
}

func (f *fakeAdoptions) Assess(_ context.Context, studentID, tutorID, objectiveID, level int) error {
	rec, ok := f.records[f.key(studentID, tutorID, objectiveID)]
	if !ok {
		return ErrNotFound
	}
	rec.Assessment = level
	return nil
}

func (f *fakeAdoptions) IgnoreOrDelete(_ context.Context, studentID, tutorID, objectiveID int) error {
	delete(f.records, f.key(studentID, tutorID, objectiveID))
	return nil
}

// ─── Fixture ────────────────────────────────────────────────────────────

var (
	testAdmin = &model.User{ID: 1, Name: "Admin", SubjectID: 1, IsAdmin: true}
	testUser  = &model.User{ID: 2, Name: "Student", SubjectID: 1}
)

type fixture struct {
	svc       *ObjectiveService
	graph     *fakeGraph
	topics    *fakeTopics
	adoptions *fakeAdoptions
}

func newFixture() *fixture {
	graph := newFakeGraph()
	topics := &fakeTopics{topics: make(map[int]*model.Topic)}
	adoptions := newFakeAdoptions()
	return &fixture{
		svc:       NewObjectiveService(graph, topics, adoptions, zerolog.Nop()),
		graph:     graph,
		topics:    topics,
		adoptions: adoptions,
	}
}

func (fx *fixture) mustCreate(t *testing.T, actor *model.User, name string, prerequisites ...string) *model.Objective {
	t.Helper()
	o, err := fx.svc.Create(context.Background(), model.CreateObjectiveRequest{
		Name:          name,
		SubjectID:     actor.SubjectID,
		Prerequisites: prerequisites,
	}, actor)
	if err != nil {
		t.Fatalf("create %q: %v", name, err)
	}
	return o
}

func fieldError(t *testing.T, err error, field string) string {
	t.Helper()
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg, ok := ve.Fields[field]
	if !ok {
		t.Fatalf("expected error on field %q, got %v", field, ve.Fields)
	}
	return msg
}

// ─── Create ─────────────────────────────────────────────────────────────

func TestCreateResolvesPrerequisites(t *testing.T) {
	fx := newFixture()
	fx.mustCreate(t, testAdmin, "Algebra")
	calculus := fx.mustCreate(t, testAdmin, "Calculus", "Algebra")

	got, err := fx.svc.GetByID(context.Background(), calculus.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Prerequisites) != 1 || got.Prerequisites[0].Name != "Algebra" {
		t.Fatalf("expected [Algebra] prerequisites, got %v", got.PrerequisiteNames())
	}
}

func TestCreateRejectsUnknownPrerequisite(t *testing.T) {
	fx := newFixture()
	fx.mustCreate(t, testAdmin, "Algebra")

	_, err := fx.svc.Create(context.Background(), model.CreateObjectiveRequest{
		Name:          "Calculus",
		SubjectID:     1,
		Prerequisites: []string{"Algebra", "Nonexistent"},
	}, testAdmin)

	if msg := fieldError(t, err, "prerequisites"); msg != "unavailable: Nonexistent" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestCreateRejectsInvisiblePrerequisite(t *testing.T) {
	fx := newFixture()
	// Created by a regular user, so invisible to everyone else.
	fx.mustCreate(t, testUser, "Private")

	_, err := fx.svc.Create(context.Background(), model.CreateObjectiveRequest{
		Name:          "Dependent",
		SubjectID:     1,
		Prerequisites: []string{"Private"},
	}, testAdmin)

	if msg := fieldError(t, err, "prerequisites"); msg != "unavailable: Private" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	fx := newFixture()
	fx.mustCreate(t, testAdmin, "Algebra")

	_, err := fx.svc.Create(context.Background(), model.CreateObjectiveRequest{
		Name:      "Algebra",
		SubjectID: 1,
	}, testAdmin)

	if msg := fieldError(t, err, "name"); msg != "Objective with this name already exists" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestCreateRejectsForeignTopic(t *testing.T) {
	fx := newFixture()
	topicID := 7
	fx.topics.topics[topicID] = &model.Topic{ID: topicID, Name: "Mechanics", SubjectID: 2}

	_, err := fx.svc.Create(context.Background(), model.CreateObjectiveRequest{
		Name:      "Kinematics",
		SubjectID: 1,
		TopicID:   &topicID,
	}, testAdmin)

	if msg := fieldError(t, err, "topic_id"); msg != "Topic's subject must match Objective's" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

// ─── Update ─────────────────────────────────────────────────────────────

func TestUpdateRejectsDirectCycle(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")
	fx.mustCreate(t, testAdmin, "Calculus", "Algebra")

	_, err := fx.svc.Update(context.Background(), model.UpdateObjectiveRequest{
		ID:            algebra.ID,
		Name:          "Algebra",
		Prerequisites: []string{"Calculus"},
	}, testAdmin)

	if msg := fieldError(t, err, "prerequisites"); msg != "cyclic: Calculus" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUpdateRejectsTransitiveCycle(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")
	fx.mustCreate(t, testAdmin, "Calculus", "Algebra")
	fx.mustCreate(t, testAdmin, "Analysis", "Calculus")

	_, err := fx.svc.Update(context.Background(), model.UpdateObjectiveRequest{
		ID:            algebra.ID,
		Name:          "Algebra",
		Prerequisites: []string{"Analysis"},
	}, testAdmin)

	if msg := fieldError(t, err, "prerequisites"); msg != "cyclic: Analysis" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUpdateAllowsSelfRename(t *testing.T) {
	fx := newFixture()
	fx.mustCreate(t, testAdmin, "Algebra")
	calculus := fx.mustCreate(t, testAdmin, "Calculus", "Algebra")

	// Keeping the current name must not trip the uniqueness check.
	updated, err := fx.svc.Update(context.Background(), model.UpdateObjectiveRequest{
		ID:            calculus.ID,
		Name:          "Calculus",
		Prerequisites: []string{"Algebra"},
	}, testAdmin)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Calculus" {
		t.Fatalf("unexpected name %q", updated.Name)
	}
}

func TestUpdateRejectsRenameToExisting(t *testing.T) {
	fx := newFixture()
	fx.mustCreate(t, testAdmin, "Algebra")
	calculus := fx.mustCreate(t, testAdmin, "Calculus")

	_, err := fx.svc.Update(context.Background(), model.UpdateObjectiveRequest{
		ID:   calculus.ID,
		Name: "Algebra",
	}, testAdmin)

	if msg := fieldError(t, err, "name"); msg != "Objective with this name already exists" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestUpdateRequiresAdmin(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")

	_, err := fx.svc.Update(context.Background(), model.UpdateObjectiveRequest{
		ID:   algebra.ID,
		Name: "Linear Algebra",
	}, testUser)
	if !errors.Is(err, ErrNotAuthorised) {
		t.Fatalf("expected ErrNotAuthorised, got %v", err)
	}
}

func TestUpdateValidatesBeforeAuthorization(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")

	// An unauthorized editor submitting an invalid change gets the
	// validation failure, not the authorization failure.
	_, err := fx.svc.Update(context.Background(), model.UpdateObjectiveRequest{
		ID:            algebra.ID,
		Name:          "Algebra",
		Prerequisites: []string{"Nonexistent"},
	}, testUser)

	if msg := fieldError(t, err, "prerequisites"); msg != "unavailable: Nonexistent" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

// ─── Delete ─────────────────────────────────────────────────────────────

func TestDeletePrunesEdges(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")
	calculus := fx.mustCreate(t, testAdmin, "Calculus", "Algebra")

	if err := fx.svc.Delete(context.Background(), algebra.ID, testAdmin); err != nil {
		t.Fatalf("delete: %v", err)
	}

	got, err := fx.svc.GetByID(context.Background(), calculus.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Prerequisites) != 0 {
		t.Fatalf("expected no prerequisites after delete, got %v", got.PrerequisiteNames())
	}

	if _, err := fx.svc.GetByID(context.Background(), algebra.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteRequiresAdmin(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")

	if err := fx.svc.Delete(context.Background(), algebra.ID, testUser); !errors.Is(err, ErrNotAuthorised) {
		t.Fatalf("expected ErrNotAuthorised, got %v", err)
	}
}

// ─── Remove ─────────────────────────────────────────────────────────────

func TestRemoveIsIdempotent(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")

	tutor := testAdmin
	if _, err := fx.svc.Assign(context.Background(), model.AssignObjectiveRequest{
		ObjectiveID: algebra.ID,
		StudentID:   testUser.ID,
	}, tutor); err != nil {
		t.Fatalf("assign: %v", err)
	}

	req := model.RemoveObjectiveRequest{
		ObjectiveID: algebra.ID,
		StudentID:   testUser.ID,
		TutorID:     tutor.ID,
	}
	if err := fx.svc.Remove(context.Background(), req, tutor); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	// Removing again must succeed silently.
	if err := fx.svc.Remove(context.Background(), req, tutor); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestRemoveRequiresActingTutor(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")

	err := fx.svc.Remove(context.Background(), model.RemoveObjectiveRequest{
		ObjectiveID: algebra.ID,
		StudentID:   testUser.ID,
		TutorID:     testAdmin.ID,
	}, testUser)
	if !errors.Is(err, ErrNotAuthorised) {
		t.Fatalf("expected ErrNotAuthorised, got %v", err)
	}
}

func TestRemoveValidatesIDs(t *testing.T) {
	fx := newFixture()

	err := fx.svc.Remove(context.Background(), model.RemoveObjectiveRequest{
		ObjectiveID: 0,
		StudentID:   -3,
		TutorID:     testAdmin.ID,
	}, testAdmin)

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"objective_id", "student_id"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Errorf("expected error on field %q, got %v", field, ve.Fields)
		}
	}
	if _, ok := ve.Fields["tutor_id"]; ok {
		t.Errorf("tutor_id was valid, got %v", ve.Fields)
	}
}

// ─── Listing ────────────────────────────────────────────────────────────

func TestListVisibleOrdersByPrerequisiteDepth(t *testing.T) {
	fx := newFixture()
	fx.mustCreate(t, testAdmin, "Calculus")
	fx.mustCreate(t, testAdmin, "Algebra")
	fx.mustCreate(t, testAdmin, "Analysis", "Calculus")
	fx.mustCreate(t, testAdmin, "Topology", "Analysis")

	listed, err := fx.svc.ListVisible(context.Background(), testAdmin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	var names []string
	for _, o := range listed {
		names = append(names, o.Name)
	}
	want := []string{"Algebra", "Calculus", "Analysis", "Topology"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
}

// ─── Assessment ─────────────────────────────────────────────────────────

func TestAssessUpdatesAdoption(t *testing.T) {
	fx := newFixture()
	algebra := fx.mustCreate(t, testAdmin, "Algebra")

	rec, err := fx.svc.Assign(context.Background(), model.AssignObjectiveRequest{
		ObjectiveID: algebra.ID,
		StudentID:   testUser.ID,
	}, testAdmin)
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if err := fx.svc.Assess(context.Background(), model.AssessObjectiveRequest{
		ObjectiveID: algebra.ID,
		StudentID:   testUser.ID,
		Level:       3,
	}, testAdmin); err != nil {
		t.Fatalf("assess: %v", err)
	}

	stored := fx.adoptions.records[fx.adoptions.key(testUser.ID, testAdmin.ID, algebra.ID)]
	if stored == nil || stored.ID != rec.ID {
		t.Fatalf("adoption record missing")
	}
	if stored.Assessment != 3 {
		t.Fatalf("expected assessment 3, got %d", stored.Assessment)
	}
}
