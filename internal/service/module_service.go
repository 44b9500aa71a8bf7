package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/BigPoppaG/CourseMe/internal/config"
	"github.com/BigPoppaG/CourseMe/internal/model"
)

// catalogueTTL bounds staleness if an invalidation is ever missed.
const catalogueTTL = 5 * time.Minute

type (
	// ModuleStore is the persistence seam for lecture modules.
	ModuleStore interface {
		// GetByID returns the module with its objective names populated,
		// or ErrNotFound.
		GetByID(ctx context.Context, id int) (*model.Module, error)
		Catalogue(ctx context.Context) ([]model.Module, error)
		Create(ctx context.Context, m *model.Module, objectiveIDs []int) error
		Update(ctx context.Context, m *model.Module, objectiveIDs []int) error
	}

	// EngagementStore persists per-user module engagement records.
	// SaveVote writes the user's vote and the module's recomputed vote
	// total in one transaction.
	EngagementStore interface {
		FindOrCreate(ctx context.Context, userID, moduleID int) (*model.UserModule, error)
		SetStarred(ctx context.Context, id int, starred bool) error
		SaveVote(ctx context.Context, um *model.UserModule, moduleVotes int) error
		StarCount(ctx context.Context, moduleID int) (int, error)
	}
)

// ModuleService handles lecture module authoring, the cached catalogue and
// user engagement (stars, votes, views).
type ModuleService struct {
	modules    ModuleStore
	engagement EngagementStore
	objectives ObjectiveStore
	rdb        *redis.Client
	log        zerolog.Logger
}

// NewModuleService creates a new ModuleService.
func NewModuleService(modules ModuleStore, engagement EngagementStore, objectives ObjectiveStore, rdb *redis.Client, log zerolog.Logger) *ModuleService {
	return &ModuleService{
		modules:    modules,
		engagement: engagement,
		objectives: objectives,
		rdb:        rdb,
		log:        log.With().Str("component", "module_service").Logger(),
	}
}

// Catalogue returns all modules for the home page listing, served from the
// Redis cache when possible.
func (s *ModuleService) Catalogue(ctx context.Context) ([]model.Module, error) {
	key := config.CacheKey.CatalogueKey()

	if data, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
		var modules []model.Module
		if err := json.Unmarshal(data, &modules); err == nil {
			return modules, nil
		}
		s.rdb.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Catalogue cache read failed")
	}

	modules, err := s.modules.Catalogue(ctx)
	if err != nil {
		return nil, err
	}
	if modules == nil {
		modules = []model.Module{}
	}

	if data, err := json.Marshal(modules); err == nil {
		if err := s.rdb.Set(ctx, key, data, catalogueTTL).Err(); err != nil {
			s.log.Debug().Err(err).Msg("Catalogue cache write failed")
		}
	}

	return modules, nil
}

// GetByID retrieves a single module.
func (s *ModuleService) GetByID(ctx context.Context, id int) (*model.Module, error) {
	return s.modules.GetByID(ctx, id)
}

// Create validates and persists a new lecture module authored by the actor.
func (s *ModuleService) Create(ctx context.Context, req model.CreateModuleRequest, actor *model.User) (*model.Module, error) {
	covered, err := s.resolveObjectives(ctx, req.Objectives, actor)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	module := &model.Module{
		Name:           req.Name,
		Description:    req.Description,
		Notes:          req.Notes,
		AuthorID:       actor.ID,
		SubjectID:      req.SubjectID,
		MaterialSource: req.MaterialSource,
		MaterialPath:   NormalizeMaterialPath(req.MaterialSource, req.MaterialPath),
		TimeCreated:    now,
		LastUpdated:    now,
		Objectives:     objectiveNames(covered),
	}

	if err := s.modules.Create(ctx, module, objectiveIDs(covered)); err != nil {
		return nil, fmt.Errorf("create module: %w", err)
	}

	s.invalidateCatalogue(ctx)
	s.log.Info().Int("module_id", module.ID).Str("name", module.Name).Msg("Module created")
	return module, nil
}

// Update validates and persists changes to a module. Only the author or an
// administrator may edit.
func (s *ModuleService) Update(ctx context.Context, id int, req model.UpdateModuleRequest, actor *model.User) (*model.Module, error) {
	module, err := s.modules.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if module.AuthorID != actor.ID && !actor.IsAdmin {
		return nil, ErrNotAuthorised
	}

	covered, err := s.resolveObjectives(ctx, req.Objectives, actor)
	if err != nil {
		return nil, err
	}

	module.Name = req.Name
	module.Description = req.Description
	module.Notes = req.Notes
	module.MaterialSource = req.MaterialSource
	module.MaterialPath = NormalizeMaterialPath(req.MaterialSource, req.MaterialPath)
	module.LastUpdated = time.Now().UTC()
	module.Objectives = objectiveNames(covered)

	if err := s.modules.Update(ctx, module, objectiveIDs(covered)); err != nil {
		return nil, fmt.Errorf("update module: %w", err)
	}

	s.invalidateCatalogue(ctx)
	return module, nil
}

// View returns a module together with the viewer's engagement record,
// creating the record on first contact, and queues a view event for the
// engagement worker. Queue failures are logged, never surfaced.
func (s *ModuleService) View(ctx context.Context, moduleID int, viewer *model.User) (*model.Module, *model.UserModule, error) {
	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, nil, err
	}

	um, err := s.engagement.FindOrCreate(ctx, viewer.ID, module.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("engagement record: %w", err)
	}

	event := model.ModuleViewEvent{
		UserID:   viewer.ID,
		ModuleID: module.ID,
		ViewedAt: time.Now().UTC(),
	}
	if data, err := json.Marshal(event); err == nil {
		if err := s.rdb.RPush(ctx, config.WorkerKey.ModuleViewsQueue, data).Err(); err != nil {
			s.log.Warn().Err(err).Int("module_id", module.ID).Msg("View event enqueue failed")
		}
	}

	return module, um, nil
}

// ToggleStar flips the viewer's star on a module and returns the updated
// engagement record.
func (s *ModuleService) ToggleStar(ctx context.Context, moduleID int, viewer *model.User) (*model.UserModule, error) {
	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	um, err := s.engagement.FindOrCreate(ctx, viewer.ID, module.ID)
	if err != nil {
		return nil, fmt.Errorf("engagement record: %w", err)
	}

	um.Starred = !um.Starred
	if err := s.engagement.SetStarred(ctx, um.ID, um.Starred); err != nil {
		return nil, fmt.Errorf("save star: %w", err)
	}

	s.publishEngagement(ctx, module.ID, module.Votes)
	return um, nil
}

// Vote records the viewer's vote on a module, adjusting the module's vote
// total by the difference from their previous vote.
func (s *ModuleService) Vote(ctx context.Context, moduleID, vote int, viewer *model.User) (*model.Module, error) {
	module, err := s.modules.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}

	um, err := s.engagement.FindOrCreate(ctx, viewer.ID, module.ID)
	if err != nil {
		return nil, fmt.Errorf("engagement record: %w", err)
	}

	module.Votes = module.Votes - um.Vote + vote
	um.Vote = vote

	if err := s.engagement.SaveVote(ctx, um, module.Votes); err != nil {
		return nil, fmt.Errorf("save vote: %w", err)
	}

	s.invalidateCatalogue(ctx)
	s.publishEngagement(ctx, module.ID, module.Votes)
	return module, nil
}

// NormalizeMaterialPath appends the rel=0 query to youtube embeds so the
// player does not suggest unrelated follow-on videos.
func NormalizeMaterialPath(source model.MaterialSource, path string) string {
	if source == model.MaterialSourceYoutube && !strings.Contains(path, "?rel=0") {
		return path + "?rel=0"
	}
	return path
}

// resolveObjectives maps objective names onto objectives visible to the
// author, mirroring prerequisite resolution on the objective editor.
func (s *ModuleService) resolveObjectives(ctx context.Context, names []string, actor *model.User) ([]model.Objective, error) {
	if len(names) == 0 {
		return nil, nil
	}

	visible, err := s.objectives.AvailableTo(ctx, actor, names)
	if err != nil {
		return nil, err
	}

	visibleNames := make(map[string]bool, len(visible))
	for _, o := range visible {
		visibleNames[o.Name] = true
	}

	var missing []string
	for _, name := range names {
		if !visibleNames[name] {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, NewValidationError("objectives", "unavailable: "+strings.Join(missing, ", "))
	}

	return visible, nil
}

// publishEngagement pushes the module's current star and vote counts onto
// its engagement channel for any open WebSocket streams. Best effort.
func (s *ModuleService) publishEngagement(ctx context.Context, moduleID, votes int) {
	stars, err := s.engagement.StarCount(ctx, moduleID)
	if err != nil {
		s.log.Warn().Err(err).Int("module_id", moduleID).Msg("Star count failed")
		return
	}

	update := model.EngagementUpdate{ModuleID: moduleID, Votes: votes, Stars: stars}
	data, err := json.Marshal(update)
	if err != nil {
		return
	}

	channel := config.CacheKey.ModuleEngagementChannel(moduleID)
	if err := s.rdb.Publish(ctx, channel, data).Err(); err != nil {
		s.log.Debug().Err(err).Int("module_id", moduleID).Msg("Engagement publish failed")
	}
}

func (s *ModuleService) invalidateCatalogue(ctx context.Context) {
	if err := s.rdb.Del(ctx, config.CacheKey.CatalogueKey()).Err(); err != nil {
		s.log.Debug().Err(err).Msg("Catalogue invalidation failed")
	}
}

func objectiveNames(objectives []model.Objective) []string {
	names := make([]string, len(objectives))
	for i, o := range objectives {
		names[i] = o.Name
	}
	return names
}
