package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

const objectiveColumns = `id, name, subject_id, topic_id, created_by_id, time_created, last_updated`

// ObjectiveRepository handles objective and prerequisite-edge data access.
// Writes that touch both the objectives table and the edge table run in a
// single transaction.
type ObjectiveRepository struct {
	pool *pgxpool.Pool
}

// NewObjectiveRepository creates a new ObjectiveRepository.
func NewObjectiveRepository(pool *pgxpool.Pool) *ObjectiveRepository {
	return &ObjectiveRepository{pool: pool}
}

// GetByID retrieves an objective with its direct prerequisites populated.
func (r *ObjectiveRepository) GetByID(ctx context.Context, id int) (*model.Objective, error) {
	o := &model.Objective{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+objectiveColumns+` FROM objectives WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name, &o.SubjectID, &o.TopicID, &o.CreatedByID, &o.TimeCreated, &o.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	prerequisites, err := r.queryObjectives(ctx,
		`SELECT p.id, p.name, p.subject_id, p.topic_id, p.created_by_id, p.time_created, p.last_updated
		 FROM objective_prerequisites e
		 JOIN objectives p ON p.id = e.prerequisite_id
		 WHERE e.objective_id = $1
		 ORDER BY p.name`, id)
	if err != nil {
		return nil, err
	}
	o.Prerequisites = prerequisites
	return o, nil
}

// GetByName retrieves an objective by its name, or (nil, nil) when no
// objective has the name.
func (r *ObjectiveRepository) GetByName(ctx context.Context, name string) (*model.Objective, error) {
	o := &model.Objective{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+objectiveColumns+` FROM objectives WHERE name = $1`, name,
	).Scan(&o.ID, &o.Name, &o.SubjectID, &o.TopicID, &o.CreatedByID, &o.TimeCreated, &o.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return o, nil
}

// AvailableTo lists objectives in the user's subject created by an
// administrator or by the user themself, optionally restricted by name.
func (r *ObjectiveRepository) AvailableTo(ctx context.Context, user *model.User, matchingNames []string) ([]model.Objective, error) {
	query := `SELECT o.id, o.name, o.subject_id, o.topic_id, o.created_by_id, o.time_created, o.last_updated
		 FROM objectives o
		 JOIN users c ON c.id = o.created_by_id
		 WHERE o.subject_id = $1 AND (c.is_admin OR o.created_by_id = $2)`
	args := []interface{}{user.SubjectID, user.ID}

	if len(matchingNames) > 0 {
		query += ` AND o.name = ANY($3)`
		args = append(args, matchingNames)
	}
	query += ` ORDER BY o.name`

	return r.queryObjectives(ctx, query, args...)
}

// SelectableFor lists the system objectives (admin-created) joined with
// the objectives the user has adoption records for. subjectID == 0
// disables the subject filter.
func (r *ObjectiveRepository) SelectableFor(ctx context.Context, userID, subjectID int) ([]model.Objective, error) {
	query := `SELECT DISTINCT o.id, o.name, o.subject_id, o.topic_id, o.created_by_id, o.time_created, o.last_updated
		 FROM objectives o
		 JOIN users c ON c.id = o.created_by_id
		 LEFT JOIN user_objectives uo ON uo.objective_id = o.id AND uo.student_id = $1
		 WHERE (c.is_admin OR uo.id IS NOT NULL)`
	args := []interface{}{userID}

	if subjectID != 0 {
		query += ` AND o.subject_id = $2`
		args = append(args, subjectID)
	}
	query += ` ORDER BY o.name`

	return r.queryObjectives(ctx, query, args...)
}

// AssessableFor lists the objectives the student has adoption records for
// under the given tutor. subjectID == 0 disables the subject filter.
func (r *ObjectiveRepository) AssessableFor(ctx context.Context, tutorID, studentID, subjectID int) ([]model.Objective, error) {
	query := `SELECT o.id, o.name, o.subject_id, o.topic_id, o.created_by_id, o.time_created, o.last_updated
		 FROM objectives o
		 JOIN user_objectives uo ON uo.objective_id = o.id
		 WHERE uo.student_id = $1 AND uo.tutor_id = $2`
	args := []interface{}{studentID, tutorID}

	if subjectID != 0 {
		query += ` AND o.subject_id = $3`
		args = append(args, subjectID)
	}
	query += ` ORDER BY o.name`

	return r.queryObjectives(ctx, query, args...)
}

// AllEdges returns the full committed prerequisite edge set.
func (r *ObjectiveRepository) AllEdges(ctx context.Context) ([]model.PrerequisiteEdge, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT objective_id, prerequisite_id FROM objective_prerequisites`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var edges []model.PrerequisiteEdge
	for rows.Next() {
		var e model.PrerequisiteEdge
		if err := rows.Scan(&e.ObjectiveID, &e.PrerequisiteID); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Create inserts an objective and its prerequisite edges atomically.
func (r *ObjectiveRepository) Create(ctx context.Context, o *model.Objective, prerequisiteIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO objectives (name, subject_id, topic_id, created_by_id, time_created, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		o.Name, o.SubjectID, o.TopicID, o.CreatedByID, o.TimeCreated, o.LastUpdated,
	).Scan(&o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateObjective
		}
		return err
	}

	if err := insertEdges(ctx, tx, o.ID, prerequisiteIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update rewrites an objective's row and replaces its outgoing edge set
// atomically.
func (r *ObjectiveRepository) Update(ctx context.Context, o *model.Objective, prerequisiteIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE objectives SET name = $1, topic_id = $2, last_updated = $3 WHERE id = $4`,
		o.Name, o.TopicID, o.LastUpdated, o.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateObjective
		}
		return err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM objective_prerequisites WHERE objective_id = $1`, o.ID); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, o.ID, prerequisiteIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes an objective and every edge referencing it in either
// direction, atomically. Dependent objectives themselves are untouched.
func (r *ObjectiveRepository) Delete(ctx context.Context, id int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`DELETE FROM objective_prerequisites WHERE objective_id = $1 OR prerequisite_id = $1`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM objectives WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertEdges(ctx context.Context, tx pgx.Tx, objectiveID int, prerequisiteIDs []int) error {
	for _, pid := range prerequisiteIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO objective_prerequisites (objective_id, prerequisite_id) VALUES ($1, $2)`,
			objectiveID, pid); err != nil {
			return err
		}
	}
	return nil
}

func (r *ObjectiveRepository) queryObjectives(ctx context.Context, query string, args ...interface{}) ([]model.Objective, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var objectives []model.Objective
	for rows.Next() {
		var o model.Objective
		if err := rows.Scan(&o.ID, &o.Name, &o.SubjectID, &o.TopicID, &o.CreatedByID, &o.TimeCreated, &o.LastUpdated); err != nil {
			return nil, err
		}
		objectives = append(objectives, o)
	}
	return objectives, rows.Err()
}
