package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

const moduleColumns = `id, name, description, notes, author_id, subject_id, material_source, material_path, votes, time_created, last_updated`

// ModuleRepository handles lecture module data access. The covered
// objectives live in the module_objectives link table and are returned as
// names on the module.
type ModuleRepository struct {
	pool *pgxpool.Pool
}

// NewModuleRepository creates a new ModuleRepository.
func NewModuleRepository(pool *pgxpool.Pool) *ModuleRepository {
	return &ModuleRepository{pool: pool}
}

// GetByID retrieves a module with its covered objective names populated.
func (r *ModuleRepository) GetByID(ctx context.Context, id int) (*model.Module, error) {
	m := &model.Module{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+moduleColumns+` FROM modules WHERE id = $1`, id,
	).Scan(&m.ID, &m.Name, &m.Description, &m.Notes, &m.AuthorID, &m.SubjectID,
		&m.MaterialSource, &m.MaterialPath, &m.Votes, &m.TimeCreated, &m.LastUpdated)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	names, err := r.objectiveNames(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	m.Objectives = names
	return m, nil
}

// Catalogue lists all modules ordered by vote total for the home page.
func (r *ModuleRepository) Catalogue(ctx context.Context) ([]model.Module, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+moduleColumns+` FROM modules ORDER BY votes DESC, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var modules []model.Module
	for rows.Next() {
		var m model.Module
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Notes, &m.AuthorID, &m.SubjectID,
			&m.MaterialSource, &m.MaterialPath, &m.Votes, &m.TimeCreated, &m.LastUpdated); err != nil {
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, rows.Err()
}

// Create inserts a module and its objective links atomically.
func (r *ModuleRepository) Create(ctx context.Context, m *model.Module, objectiveIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO modules (name, description, notes, author_id, subject_id, material_source, material_path, votes, time_created, last_updated)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, $9)
		 RETURNING id`,
		m.Name, m.Description, m.Notes, m.AuthorID, m.SubjectID,
		m.MaterialSource, m.MaterialPath, m.TimeCreated, m.LastUpdated,
	).Scan(&m.ID)
	if err != nil {
		return err
	}

	if err := insertModuleObjectives(ctx, tx, m.ID, objectiveIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Update rewrites a module's row and replaces its objective links
// atomically.
func (r *ModuleRepository) Update(ctx context.Context, m *model.Module, objectiveIDs []int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`UPDATE modules SET name = $1, description = $2, notes = $3, material_source = $4, material_path = $5, last_updated = $6
		 WHERE id = $7`,
		m.Name, m.Description, m.Notes, m.MaterialSource, m.MaterialPath, m.LastUpdated, m.ID)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM module_objectives WHERE module_id = $1`, m.ID); err != nil {
		return err
	}
	if err := insertModuleObjectives(ctx, tx, m.ID, objectiveIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertModuleObjectives(ctx context.Context, tx pgx.Tx, moduleID int, objectiveIDs []int) error {
	for _, oid := range objectiveIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO module_objectives (module_id, objective_id) VALUES ($1, $2)`,
			moduleID, oid); err != nil {
			return err
		}
	}
	return nil
}

func (r *ModuleRepository) objectiveNames(ctx context.Context, moduleID int) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.name
		 FROM module_objectives mo
		 JOIN objectives o ON o.id = mo.objective_id
		 WHERE mo.module_id = $1
		 ORDER BY o.name`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
