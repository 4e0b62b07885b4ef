package invitationinfra

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// PostgresInvitationRepository stores invite codes in the invite_codes table.
type PostgresInvitationRepository struct {
	db *sqlx.DB
}

func NewPostgresInvitationRepository(db *sqlx.DB) invitation.Repository {
	return &PostgresInvitationRepository{
		db: db,
	}
}

// FindByCode busca un código por su valor exacto
func (r *PostgresInvitationRepository) FindByCode(ctx context.Context, code string) (*invitation.InviteCode, error) {
	query := r.db.Rebind(`
		SELECT
			code, status, note, claimed_by_subject_id, claimed_at, created_at, updated_at
		FROM invite_codes
		WHERE code = ?`)

	var c invitation.InviteCode
	err := r.db.GetContext(ctx, &c, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invitation.ErrInvalidOrUsedCode()
		}
		return nil, errx.Wrap(err, "failed to find invite code", errx.TypeInternal)
	}

	return &c, nil
}

func (r *PostgresInvitationRepository) ExistsUnused(ctx context.Context, code string) (bool, error) {
	query := r.db.Rebind(`SELECT COUNT(*) FROM invite_codes WHERE code = ? AND status = ?`)

	var count int
	if err := r.db.GetContext(ctx, &count, query, code, string(invitation.StatusUnused)); err != nil {
		return false, errx.Wrap(err, "failed to check invite code", errx.TypeInternal)
	}
	return count > 0, nil
}

// Claim is a single conditional UPDATE; the status predicate makes it the
// compare-and-set, so no row lock or transaction is needed.
func (r *PostgresInvitationRepository) Claim(ctx context.Context, code, claimantSubjectID string, at time.Time) error {
	query := r.db.Rebind(`
		UPDATE invite_codes SET
			status = ?,
			claimed_by_subject_id = ?,
			claimed_at = ?,
			updated_at = ?
		WHERE code = ? AND status = ?`)

	result, err := r.db.ExecContext(ctx, query,
		string(invitation.StatusUsed), claimantSubjectID, at, at,
		code, string(invitation.StatusUnused),
	)
	if err != nil {
		return errx.Wrap(err, "failed to claim invite code", errx.TypeInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errx.Wrap(err, "failed to read claim result", errx.TypeInternal)
	}
	if rows == 0 {
		return invitation.ErrInvalidOrUsedCode()
	}
	return nil
}

func (r *PostgresInvitationRepository) CreateIfAbsent(ctx context.Context, c invitation.InviteCode) (bool, error) {
	query := r.db.Rebind(`
		INSERT INTO invite_codes (code, status, note, claimed_by_subject_id, claimed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO NOTHING`)

	result, err := r.db.ExecContext(ctx, query,
		c.Code, string(c.Status), c.Note, c.ClaimedBySubjectID, c.ClaimedAt, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return false, nil
		}
		return false, errx.Wrap(err, "failed to create invite code", errx.TypeInternal)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errx.Wrap(err, "failed to read insert result", errx.TypeInternal)
	}
	return rows > 0, nil
}
