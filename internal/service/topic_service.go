package service

import (
	"context"

	"github.com/BigPoppaG/CourseMe/internal/model"
	"github.com/BigPoppaG/CourseMe/internal/repository"
)

// TopicService handles topic management.
type TopicService struct {
	topicRepo   *repository.TopicRepository
	subjectRepo *repository.SubjectRepository
}

// NewTopicService creates a new TopicService.
func NewTopicService(topicRepo *repository.TopicRepository, subjectRepo *repository.SubjectRepository) *TopicService {
	return &TopicService{topicRepo: topicRepo, subjectRepo: subjectRepo}
}

// GetByID retrieves a topic by its ID.
func (s *TopicService) GetByID(ctx context.Context, id int) (*model.Topic, error) {
	return s.topicRepo.GetByID(ctx, id)
}

// ListBySubject retrieves all topics for a subject.
func (s *TopicService) ListBySubject(ctx context.Context, subjectID int) ([]model.Topic, error) {
	return s.topicRepo.ListBySubject(ctx, subjectID)
}

// Create creates a new topic after confirming the subject exists.
func (s *TopicService) Create(ctx context.Context, topic *model.Topic) error {
	if _, err := s.subjectRepo.GetByID(ctx, topic.SubjectID); err != nil {
		return err
	}
	return s.topicRepo.Create(ctx, topic)
}

// Update renames a topic.
func (s *TopicService) Update(ctx context.Context, topic *model.Topic) error {
	return s.topicRepo.Update(ctx, topic)
}

// Delete removes a topic.
func (s *TopicService) Delete(ctx context.Context, id int) error {
	return s.topicRepo.Delete(ctx, id)
}
