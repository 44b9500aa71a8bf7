package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BigPoppaG/CourseMe/internal/model"
)

// UserModuleRepository handles per-user module engagement records.
type UserModuleRepository struct {
	pool *pgxpool.Pool
}

// NewUserModuleRepository creates a new UserModuleRepository.
func NewUserModuleRepository(pool *pgxpool.Pool) *UserModuleRepository {
	return &UserModuleRepository{pool: pool}
}

// FindOrCreate returns the engagement record for the (user, module) pair,
// inserting a fresh one on first contact.
func (r *UserModuleRepository) FindOrCreate(ctx context.Context, userID, moduleID int) (*model.UserModule, error) {
	um := &model.UserModule{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, module_id, starred, vote, last_viewed
		 FROM user_modules WHERE user_id = $1 AND module_id = $2`,
		userID, moduleID,
	).Scan(&um.ID, &um.UserID, &um.ModuleID, &um.Starred, &um.Vote, &um.LastViewed)
	if err == nil {
		return um, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	um = &model.UserModule{
		UserID:     userID,
		ModuleID:   moduleID,
		LastViewed: time.Now().UTC(),
	}
	err = r.pool.QueryRow(ctx,
		`INSERT INTO user_modules (user_id, module_id, starred, vote, last_viewed)
		 VALUES ($1, $2, false, 0, $3)
		 RETURNING id`,
		um.UserID, um.ModuleID, um.LastViewed,
	).Scan(&um.ID)
	if err != nil {
		return nil, err
	}
	return um, nil
}

// SetStarred updates the starred flag on an engagement record.
func (r *UserModuleRepository) SetStarred(ctx context.Context, id int, starred bool) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE user_modules SET starred = $1 WHERE id = $2`, starred, id)
	return err
}

// SaveVote writes the user's vote and the module's recomputed vote total in
// one transaction, so the two never drift apart.
func (r *UserModuleRepository) SaveVote(ctx context.Context, um *model.UserModule, moduleVotes int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE user_modules SET vote = $1 WHERE id = $2`, um.Vote, um.ID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE modules SET votes = $1 WHERE id = $2`, moduleVotes, um.ModuleID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// StarCount returns how many users have starred the module.
func (r *UserModuleRepository) StarCount(ctx context.Context, moduleID int) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_modules WHERE module_id = $1 AND starred`, moduleID,
	).Scan(&count)
	return count, err
}

// TouchLastViewed stamps the engagement record for the pair, creating it if
// missing. Used by the engagement worker when draining view events.
func (r *UserModuleRepository) TouchLastViewed(ctx context.Context, userID, moduleID int, viewedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO user_modules (user_id, module_id, starred, vote, last_viewed)
		 VALUES ($1, $2, false, 0, $3)
		 ON CONFLICT (user_id, module_id) DO UPDATE SET last_viewed = EXCLUDED.last_viewed`,
		userID, moduleID, viewedAt)
	return err
}
