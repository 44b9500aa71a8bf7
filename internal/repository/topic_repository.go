package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

// TopicRepository handles topic data access.
type TopicRepository struct {
	pool *pgxpool.Pool
}

// NewTopicRepository creates a new TopicRepository.
func NewTopicRepository(pool *pgxpool.Pool) *TopicRepository {
	return &TopicRepository{pool: pool}
}

// GetByID retrieves a topic by its ID.
func (r *TopicRepository) GetByID(ctx context.Context, id int) (*model.Topic, error) {
	t := &model.Topic{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, subject_id, created_at, updated_at FROM topics WHERE id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.SubjectID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// ListBySubject retrieves all topics for a subject, ordered by name.
func (r *TopicRepository) ListBySubject(ctx context.Context, subjectID int) ([]model.Topic, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, subject_id, created_at, updated_at
		 FROM topics WHERE subject_id = $1 ORDER BY name ASC`, subjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var topics []model.Topic
	for rows.Next() {
		var t model.Topic
		if err := rows.Scan(&t.ID, &t.Name, &t.SubjectID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		topics = append(topics, t)
	}
	return topics, rows.Err()
}

// Create inserts a new topic.
func (r *TopicRepository) Create(ctx context.Context, t *model.Topic) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO topics (name, subject_id) VALUES ($1, $2) RETURNING id, created_at, updated_at`,
		t.Name, t.SubjectID).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update renames a topic.
func (r *TopicRepository) Update(ctx context.Context, t *model.Topic) error {
	_, err := r.pool.Exec(ctx, `UPDATE topics SET name = $1, updated_at = NOW() WHERE id = $2`, t.Name, t.ID)
	return err
}

// Delete removes a topic.
func (r *TopicRepository) Delete(ctx context.Context, id int) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM topics WHERE id = $1`, id)
	return err
}
