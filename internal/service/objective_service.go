package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

type (
	// ObjectiveStore is the persistence seam for the objective graph. All
	// multi-statement writes (row plus prerequisite edges) must be atomic:
	// either everything commits or nothing does.
	ObjectiveStore interface {
		// GetByID returns the objective with its direct prerequisites
		// populated, or ErrNotFound.
		GetByID(ctx context.Context, id int) (*model.Objective, error)
		// GetByName returns (nil, nil) when no objective has the name.
		GetByName(ctx context.Context, name string) (*model.Objective, error)
		// AvailableTo lists objectives in the user's subject whose creator
		// is an administrator or the user themself. A non-empty
		// matchingNames further restricts the result by name.
		AvailableTo(ctx context.Context, user *model.User, matchingNames []string) ([]model.Objective, error)
		// SelectableFor lists the system objectives for the subject joined
		// with the objectives the user has adoption records for.
		// subjectID == 0 disables the subject filter.
		SelectableFor(ctx context.Context, userID, subjectID int) ([]model.Objective, error)
		// AssessableFor lists the objectives the student has adoption
		// records for under the given tutor. subjectID == 0 disables the
		// subject filter.
		AssessableFor(ctx context.Context, tutorID, studentID, subjectID int) ([]model.Objective, error)
		// AllEdges returns the committed prerequisite edge set.
		AllEdges(ctx context.Context) ([]model.PrerequisiteEdge, error)
		Create(ctx context.Context, o *model.Objective, prerequisiteIDs []int) error
		Update(ctx context.Context, o *model.Objective, prerequisiteIDs []int) error
		// Delete removes the objective and every edge referencing it in
		// either direction. Dependent objectives themselves remain.
		Delete(ctx context.Context, id int) error
	}

	// TopicStore resolves topics for the subject-consistency check.
	TopicStore interface {
		GetByID(ctx context.Context, id int) (*model.Topic, error)
	}

	// AdoptionStore manages UserObjective records. IgnoreOrDelete is
	// idempotent: removing an absent adoption is not an error.
	AdoptionStore interface {
		Assign(ctx context.Context, rec *model.UserObjective) error
		Assess(ctx context.Context, studentID, tutorID, objectiveID, level int) error
		IgnoreOrDelete(ctx context.Context, studentID, tutorID, objectiveID int) error
	}
)

// ObjectiveService validates and applies changes to the objective
// dependency graph: acyclicity, name uniqueness, subject scoping and
// authorization are enforced here, before anything is written.
type ObjectiveService struct {
	objectives ObjectiveStore
	topics     TopicStore
	adoptions  AdoptionStore
	log        zerolog.Logger
}

// NewObjectiveService creates a new ObjectiveService.
func NewObjectiveService(objectives ObjectiveStore, topics TopicStore, adoptions AdoptionStore, log zerolog.Logger) *ObjectiveService {
	return &ObjectiveService{
		objectives: objectives,
		topics:     topics,
		adoptions:  adoptions,
		log:        log.With().Str("component", "objective_service").Logger(),
	}
}

// GetByID retrieves a single objective with its direct prerequisites.
func (s *ObjectiveService) GetByID(ctx context.Context, id int) (*model.Objective, error) {
	return s.objectives.GetByID(ctx, id)
}

// AvailableTo lists the objectives the user may reference as prerequisites:
// same subject, created by an administrator or by the user themself.
// matchingNames, when non-empty, restricts the result to those names.
//
// TODO: matching is by name because that is what the objective editor
// submits; switch to IDs once the frontend sends them.
func (s *ObjectiveService) AvailableTo(ctx context.Context, user *model.User, matchingNames []string) ([]model.Objective, error) {
	return s.objectives.AvailableTo(ctx, user, matchingNames)
}

// SelectableFor lists the objectives shown in the objective picker: the
// system objectives for the subject plus any the user has self-assessment
// records for. A zero subjectID applies no subject filter.
func (s *ObjectiveService) SelectableFor(ctx context.Context, user *model.User, subjectID int) ([]model.Objective, error) {
	return s.objectives.SelectableFor(ctx, user.ID, subjectID)
}

// AssessableFor lists the objectives the given student has adoption records
// for under the acting tutor. A zero subjectID applies no subject filter.
func (s *ObjectiveService) AssessableFor(ctx context.Context, actor *model.User, studentID, subjectID int) ([]model.Objective, error) {
	return s.objectives.AssessableFor(ctx, actor.ID, studentID, subjectID)
}

// ListVisible returns the user's available objectives ordered by score
// (prerequisite depth), so foundational objectives sort first.
func (s *ObjectiveService) ListVisible(ctx context.Context, user *model.User) ([]model.Objective, error) {
	visible, err := s.objectives.AvailableTo(ctx, user, nil)
	if err != nil {
		return nil, err
	}

	edges, err := s.objectives.AllEdges(ctx)
	if err != nil {
		return nil, err
	}
	depth := prerequisiteDepths(edges)

	sort.SliceStable(visible, func(i, j int) bool {
		di, dj := depth[visible[i].ID], depth[visible[j].ID]
		if di != dj {
			return di < dj
		}
		return visible[i].Name < visible[j].Name
	})
	return visible, nil
}

// Create validates and persists a new objective. All checks run before the
// single atomic write; on any failure nothing is persisted. A brand-new
// node cannot already be required by anything, so no cycle check is needed.
func (s *ObjectiveService) Create(ctx context.Context, req model.CreateObjectiveRequest, actor *model.User) (*model.Objective, error) {
	if err := s.validateTopic(ctx, req.TopicID, req.SubjectID); err != nil {
		return nil, err
	}
	if err := s.validateName(ctx, req.Name, ""); err != nil {
		return nil, err
	}

	prerequisites, err := s.resolvePrerequisites(ctx, req.Prerequisites, actor, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	objective := &model.Objective{
		Name:          req.Name,
		SubjectID:     req.SubjectID,
		TopicID:       req.TopicID,
		CreatedByID:   actor.ID,
		TimeCreated:   now,
		LastUpdated:   now,
		Prerequisites: prerequisites,
	}

	if err := s.objectives.Create(ctx, objective, objectiveIDs(prerequisites)); err != nil {
		return nil, fmt.Errorf("create objective: %w", err)
	}

	s.log.Info().
		Int("objective_id", objective.ID).
		Str("name", objective.Name).
		Int("created_by", actor.ID).
		Msg("Objective created")
	return objective, nil
}

// Update validates and persists changes to an objective's name, topic and
// prerequisite set. The owning subject is immutable. Candidate
// prerequisites that already require this objective, directly or
// transitively, are rejected as cyclic. Validation runs before the
// authorization check, so an unauthorized editor still learns whether the
// proposed change would have been valid.
func (s *ObjectiveService) Update(ctx context.Context, req model.UpdateObjectiveRequest, actor *model.User) (*model.Objective, error) {
	objective, err := s.objectives.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if err := s.validateTopic(ctx, req.TopicID, objective.SubjectID); err != nil {
		return nil, err
	}
	if err := s.validateName(ctx, req.Name, objective.Name); err != nil {
		return nil, err
	}

	prerequisites, err := s.resolvePrerequisites(ctx, req.Prerequisites, actor, objective)
	if err != nil {
		return nil, err
	}

	if !CanUpdateObjective(actor) {
		return nil, ErrNotAuthorised
	}

	objective.Name = req.Name
	objective.TopicID = req.TopicID
	objective.Prerequisites = prerequisites
	objective.LastUpdated = time.Now().UTC()

	if err := s.objectives.Update(ctx, objective, objectiveIDs(prerequisites)); err != nil {
		return nil, fmt.Errorf("update objective: %w", err)
	}

	s.log.Info().
		Int("objective_id", objective.ID).
		Str("name", objective.Name).
		Msg("Objective updated")
	return objective, nil
}

// Delete removes an objective and prunes every prerequisite edge that
// references it; objectives that depended on it remain, minus the edge.
func (s *ObjectiveService) Delete(ctx context.Context, id int, actor *model.User) error {
	objective, err := s.objectives.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !CanDeleteObjective(actor) {
		return ErrNotAuthorised
	}

	if err := s.objectives.Delete(ctx, objective.ID); err != nil {
		return fmt.Errorf("delete objective: %w", err)
	}

	s.log.Info().
		Int("objective_id", objective.ID).
		Str("name", objective.Name).
		Msg("Objective deleted")
	return nil
}

// Remove drops an objective from a student's adopted set. The acting user
// must be the named tutor. Removing an adoption that does not exist is not
// an error.
func (s *ObjectiveService) Remove(ctx context.Context, req model.RemoveObjectiveRequest, actor *model.User) error {
	fields := map[string]string{}
	if req.ObjectiveID < 1 {
		fields["objective_id"] = "must be a positive integer"
	}
	if req.StudentID < 1 {
		fields["student_id"] = "must be a positive integer"
	}
	if req.TutorID < 1 {
		fields["tutor_id"] = "must be a positive integer"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	if err := AssertSameUser(req.TutorID, actor); err != nil {
		return err
	}

	return s.adoptions.IgnoreOrDelete(ctx, req.StudentID, req.TutorID, req.ObjectiveID)
}

// Assign records an adoption of an objective for a student, managed by the
// acting tutor. The objective must be selectable by the tutor.
func (s *ObjectiveService) Assign(ctx context.Context, req model.AssignObjectiveRequest, actor *model.User) (*model.UserObjective, error) {
	if _, err := s.objectives.GetByID(ctx, req.ObjectiveID); err != nil {
		return nil, err
	}

	rec := &model.UserObjective{
		StudentID:   req.StudentID,
		TutorID:     actor.ID,
		ObjectiveID: req.ObjectiveID,
	}
	if err := s.adoptions.Assign(ctx, rec); err != nil {
		return nil, fmt.Errorf("assign objective: %w", err)
	}
	return rec, nil
}

// Assess records an assessment level on an adoption. The acting user must
// be the managing tutor.
func (s *ObjectiveService) Assess(ctx context.Context, req model.AssessObjectiveRequest, actor *model.User) error {
	return s.adoptions.Assess(ctx, req.StudentID, actor.ID, req.ObjectiveID, req.Level)
}

// ─── Validation helpers ─────────────────────────────────────────────────

// validateTopic enforces that an objective's topic, when set, belongs to
// the objective's own subject.
func (s *ObjectiveService) validateTopic(ctx context.Context, topicID *int, subjectID int) error {
	if topicID == nil {
		return nil
	}
	topic, err := s.topics.GetByID(ctx, *topicID)
	if err != nil {
		return err
	}
	if topic.SubjectID != subjectID {
		return NewValidationError("topic_id", "Topic's subject must match Objective's")
	}
	return nil
}

// validateName enforces name uniqueness. A self-rename (name unchanged) is
// always legal. The storage layer's unique constraint remains the
// authoritative guard against concurrent creates; this check exists to
// produce a friendly field error first.
func (s *ObjectiveService) validateName(ctx context.Context, name, oldName string) error {
	if name == oldName {
		return nil
	}
	existing, err := s.objectives.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil {
		return NewValidationError("name", "Objective with this name already exists")
	}
	return nil
}

// resolvePrerequisites maps prerequisite names onto objectives the user is
// allowed to see. Unknown or invisible names fail validation. When
// checkCyclicAgainst is set (update path), each candidate is additionally
// tested for a directed path back to the target through the committed
// graph; any such candidate would close a cycle and fails validation.
func (s *ObjectiveService) resolvePrerequisites(ctx context.Context, names []string, user *model.User, checkCyclicAgainst *model.Objective) ([]model.Objective, error) {
	if len(names) == 0 {
		return nil, nil
	}

	available, err := s.objectives.AvailableTo(ctx, user, names)
	if err != nil {
		return nil, err
	}

	availableNames := make(map[string]bool, len(available))
	for _, o := range available {
		availableNames[o.Name] = true
	}

	var missing []string
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if !availableNames[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, NewValidationError("prerequisites", "unavailable: "+strings.Join(missing, ", "))
	}

	if checkCyclicAgainst != nil {
		edges, err := s.objectives.AllEdges(ctx)
		if err != nil {
			return nil, err
		}
		adjacency := buildAdjacency(edges)

		var cyclic []string
		for _, p := range available {
			if pathExists(adjacency, p.ID, checkCyclicAgainst.ID) {
				cyclic = append(cyclic, p.Name)
			}
		}
		if len(cyclic) > 0 {
			sort.Strings(cyclic)
			return nil, NewValidationError("prerequisites", "cyclic: "+strings.Join(cyclic, ", "))
		}
	}

	return available, nil
}

// ─── Graph traversal ────────────────────────────────────────────────────

// buildAdjacency indexes the edge set as objective id → prerequisite ids.
func buildAdjacency(edges []model.PrerequisiteEdge) map[int][]int {
	adjacency := make(map[int][]int, len(edges))
	for _, e := range edges {
		adjacency[e.ObjectiveID] = append(adjacency[e.ObjectiveID], e.PrerequisiteID)
	}
	return adjacency
}

// pathExists reports whether target is reachable from start by following
// prerequisite edges. Iterative depth-first search over the committed
// graph; the visited set guards against revisits so traversal terminates
// even if storage ever held a cycle.
func pathExists(adjacency map[int][]int, start, target int) bool {
	if start == target {
		return true
	}
	visited := map[int]bool{start: true}
	stack := []int{start}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, next := range adjacency[node] {
			if next == target {
				return true
			}
			if !visited[next] {
				visited[next] = true
				stack = append(stack, next)
			}
		}
	}
	return false
}

// prerequisiteDepths computes, per objective, the length of its longest
// prerequisite chain. Objectives with no prerequisites score zero.
func prerequisiteDepths(edges []model.PrerequisiteEdge) map[int]int {
	adjacency := buildAdjacency(edges)
	depths := make(map[int]int, len(adjacency))

	var walk func(id int, onPath map[int]bool) int
	walk = func(id int, onPath map[int]bool) int {
		if d, ok := depths[id]; ok {
			return d
		}
		if onPath[id] {
			return 0 // cycle guard; committed graphs are acyclic
		}
		onPath[id] = true
		max := 0
		for _, p := range adjacency[id] {
			if d := walk(p, onPath) + 1; d > max {
				max = d
			}
		}
		delete(onPath, id)
		depths[id] = max
		return max
	}

	for id := range adjacency {
		walk(id, map[int]bool{})
	}
	return depths
}

func objectiveIDs(objectives []model.Objective) []int {
	ids := make([]int, len(objectives))
	for i, o := range objectives {
		ids[i] = o.ID
	}
	return ids
}
