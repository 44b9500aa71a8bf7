package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

// UserObjectiveRepository handles adoption records linking students, tutors
// and objectives.
type UserObjectiveRepository struct {
	pool *pgxpool.Pool
}

// NewUserObjectiveRepository creates a new UserObjectiveRepository.
func NewUserObjectiveRepository(pool *pgxpool.Pool) *UserObjectiveRepository {
	return &UserObjectiveRepository{pool: pool}
}

// Assign records an adoption, reactivating the existing row when the triple
// was adopted before.
func (r *UserObjectiveRepository) Assign(ctx context.Context, rec *model.UserObjective) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return r.pool.QueryRow(ctx,
		`INSERT INTO user_objectives (student_id, tutor_id, objective_id, assessment, created_at, updated_at)
		 VALUES ($1, $2, $3, 0, $4, $4)
		 ON CONFLICT (student_id, tutor_id, objective_id)
		 DO UPDATE SET updated_at = EXCLUDED.updated_at
		 RETURNING id, assessment, created_at`,
		rec.StudentID, rec.TutorID, rec.ObjectiveID, now,
	).Scan(&rec.ID, &rec.Assessment, &rec.CreatedAt)
}

// Assess stores the assessment level on an adoption, or ErrNotFound when
// the triple has no record.
func (r *UserObjectiveRepository) Assess(ctx context.Context, studentID, tutorID, objectiveID, level int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE user_objectives SET assessment = $1, updated_at = $2
		 WHERE student_id = $3 AND tutor_id = $4 AND objective_id = $5`,
		level, time.Now().UTC(), studentID, tutorID, objectiveID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// IgnoreOrDelete removes the adoption for the triple. Deleting an absent
// adoption is a no-op.
func (r *UserObjectiveRepository) IgnoreOrDelete(ctx context.Context, studentID, tutorID, objectiveID int) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM user_objectives
		 WHERE student_id = $1 AND tutor_id = $2 AND objective_id = $3`,
		studentID, tutorID, objectiveID)
	return err
}
