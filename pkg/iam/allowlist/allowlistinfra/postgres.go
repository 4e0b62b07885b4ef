package allowlistinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresAllowListRepository stores entries in allowlist_entries.
type PostgresAllowListRepository struct {
	db *sqlx.DB
}

func NewPostgresAllowListRepository(db *sqlx.DB) allowlist.Repository {
	return &PostgresAllowListRepository{db: db}
}

func (r *PostgresAllowListRepository) Exists(ctx context.Context, subjectID string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM allowlist_entries WHERE subject_id = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, subjectID); err != nil {
		return false, errx.Wrap(err, "failed to check allow-list", errx.TypeInternal)
	}
	return count > 0, nil
}

// InsertIfAbsent relies on ON CONFLICT DO NOTHING; a unique violation from a
// racing insert is treated the same way.
func (r *PostgresAllowListRepository) InsertIfAbsent(ctx context.Context, e allowlist.Entry) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO allowlist_entries (subject_id, note, created_at)
		VALUES (?, ?, ?)
		ON CONFLICT (subject_id) DO NOTHING`)

	result, err := r.db.ExecContext(ctx, query, e.SubjectID, e.Note, e.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, errx.Wrap(err, "failed to insert allow-list entry", errx.TypeInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errx.Wrap(err, "failed to read insert result", errx.TypeInternal)
	}
	return rows > 0, nil
}

func (r *PostgresAllowListRepository) FindBySubjectID(ctx context.Context, subjectID string) (*allowlist.Entry, error) {
	query := r.db.Rebind(`SELECT subject_id, note, created_at FROM allowlist_entries WHERE subject_id = ?`)

	var e allowlist.Entry
	if err := r.db.GetContext(ctx, &e, query, subjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errx.Wrap(err, "failed to find allow-list entry", errx.TypeInternal)
	}
	return &e, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
