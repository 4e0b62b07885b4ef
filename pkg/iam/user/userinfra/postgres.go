package userinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/kernel"
	"github.com/jmoiron/sqlx"
)

const userColumns = `id, subject_id, federated_id, display_name, avatar_url, created_at, updated_at`

// PostgresUserRepository implements user.Repository on sqlx. Queries are
// written with ? placeholders and rebound for the driver in use.
type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) user.Repository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) FindByID(ctx context.Context, id kernel.UserID) (*user.User, error) {
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)

	var u user.User
	if err := r.db.GetContext(ctx, &u, query, int64(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound().WithDetail("user_id", id.String())
		}
		return nil, errx.Wrap(err, "failed to find user by id", errx.TypeInternal).
			WithDetail("user_id", id.String())
	}
	return &u, nil
}

func (r *PostgresUserRepository) FindBySubjectID(ctx context.Context, subjectID string) (*user.User, error) {
	return findBySubject(ctx, r.db, subjectID)
}

// Upsert runs insert-or-refresh and the read-back in one transaction.
func (r *PostgresUserRepository) Upsert(ctx context.Context, u user.User) (*user.User, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errx.Wrap(err, "failed to begin user upsert", errx.TypeInternal)
	}
	defer tx.Rollback()

	query := tx.Rebind(`
		INSERT INTO users (subject_id, federated_id, display_name, avatar_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (subject_id) DO UPDATE SET
			federated_id = excluded.federated_id,
			display_name = excluded.display_name,
			avatar_url = excluded.avatar_url,
			updated_at = excluded.updated_at`)

	if _, err := tx.ExecContext(ctx, query,
		u.SubjectID, u.FederatedID, u.DisplayName, u.AvatarURL, u.CreatedAt, u.UpdatedAt,
	); err != nil {
		return nil, errx.Wrap(err, "failed to upsert user", errx.TypeInternal)
	}

	saved, err := findBySubject(ctx, tx, u.SubjectID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, errx.Wrap(err, "failed to commit user upsert", errx.TypeInternal)
	}
	return saved, nil
}

func findBySubject(ctx context.Context, q sqlx.ExtContext, subjectID string) (*user.User, error) {
	query := q.Rebind(`SELECT ` + userColumns + ` FROM users WHERE subject_id = ?`)

	var u user.User
	if err := sqlx.GetContext(ctx, q, &u, query, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrUserNotFound()
		}
		return nil, errx.Wrap(err, "failed to find user by subject", errx.TypeInternal)
	}
	return &u, nil
}
