package invitationinfra

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation"
	"github.com/Abraxas-365/chatgate/pkg/sqltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seededAt = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func repositories(t *testing.T) map[string]invitation.Repository {
	return map[string]invitation.Repository{
		"sql":    NewPostgresInvitationRepository(sqltest.Open(t)),
		"memory": NewInMemoryInvitationRepository(),
	}
}

func seed(t *testing.T, repo invitation.Repository, code string) {
	t.Helper()
	created, err := repo.CreateIfAbsent(context.Background(), invitation.NewInviteCode(code, "test", seededAt))
	require.NoError(t, err)
	require.True(t, created)
}

func TestClaim_FlipsUnusedToUsed(t *testing.T) {
	claimedAt := seededAt.Add(time.Hour)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, repo, "WELCOME-1")

			ok, err := repo.ExistsUnused(ctx, "WELCOME-1")
			require.NoError(t, err)
			assert.True(t, ok)

			require.NoError(t, repo.Claim(ctx, "WELCOME-1", "subject-a", claimedAt))

			c, err := repo.FindByCode(ctx, "WELCOME-1")
			require.NoError(t, err)
			assert.Equal(t, invitation.StatusUsed, c.Status)
			assert.Equal(t, "subject-a", c.ClaimedBySubjectID)
			require.NotNil(t, c.ClaimedAt)
			assert.True(t, claimedAt.Equal(*c.ClaimedAt))

			ok, err = repo.ExistsUnused(ctx, "WELCOME-1")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestClaim_UsedCodeFailsForAnyClaimant(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, repo, "ONCE")

			require.NoError(t, repo.Claim(ctx, "ONCE", "first", seededAt))

			for _, claimant := range []string{"first", "second"} {
				err := repo.Claim(ctx, "ONCE", claimant, seededAt)
				assert.True(t, errx.IsCode(err, invitation.CodeInvalidOrUsedCode), "claimant %s", claimant)
			}

			c, err := repo.FindByCode(ctx, "ONCE")
			require.NoError(t, err)
			assert.Equal(t, "first", c.ClaimedBySubjectID)
		})
	}
}

func TestClaim_UnknownAndCaseMismatch(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, repo, "Beta-Code")

			err := repo.Claim(ctx, "nope", "s", seededAt)
			assert.True(t, errx.IsCode(err, invitation.CodeInvalidOrUsedCode))

			err = repo.Claim(ctx, "beta-code", "s", seededAt)
			assert.True(t, errx.IsCode(err, invitation.CodeInvalidOrUsedCode))

			_, err = repo.FindByCode(ctx, "nope")
			assert.True(t, errx.IsCode(err, invitation.CodeInvalidOrUsedCode))
		})
	}
}

// The "sql" repository shares one connection, so its claims run in turn;
// "sql-pooled" gives every claimant its own connection to the same file.
func TestClaim_ConcurrentClaimsHaveOneWinner(t *testing.T) {
	const claimants = 16

	repos := repositories(t)
	repos["sql-pooled"] = NewPostgresInvitationRepository(sqltest.OpenFile(t, claimants))

	for name, repo := range repos {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, repo, "RACE")

			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
				lost int
			)
			start := make(chan struct{})
			for i := 0; i < claimants; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					<-start
					err := repo.Claim(ctx, "RACE", "subject-"+string(rune('a'+i)), seededAt)
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						wins++
					case errx.IsCode(err, invitation.CodeInvalidOrUsedCode):
						lost++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}(i)
			}
			close(start)
			wg.Wait()

			assert.Equal(t, 1, wins)
			assert.Equal(t, claimants-1, lost)
		})
	}
}

func TestCreateIfAbsent_KeepsExisting(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			seed(t, repo, "KEEP")
			require.NoError(t, repo.Claim(ctx, "KEEP", "s", seededAt))

			created, err := repo.CreateIfAbsent(ctx, invitation.NewInviteCode("KEEP", "again", seededAt))
			require.NoError(t, err)
			assert.False(t, created)

			c, err := repo.FindByCode(ctx, "KEEP")
			require.NoError(t, err)
			assert.Equal(t, invitation.StatusUsed, c.Status, "re-seeding must not revive a used code")
			assert.Equal(t, "test", c.Note)
		})
	}
}

func TestClaim_PooledDatabaseRecordsSingleClaimant(t *testing.T) {
	const claimants = 8
	ctx := context.Background()
	db := sqltest.OpenFile(t, claimants)
	repo := NewPostgresInvitationRepository(db)
	seed(t, repo, "POOL")

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_ = repo.Claim(ctx, "POOL", fmt.Sprintf("subject-%d", i), seededAt)
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, claimants, db.Stats().MaxOpenConnections)

	var used int
	require.NoError(t, db.Get(&used, `SELECT COUNT(*) FROM invite_codes WHERE code = 'POOL' AND status = 'USED'`))
	assert.Equal(t, 1, used)

	got, err := repo.FindByCode(ctx, "POOL")
	require.NoError(t, err)
	assert.Contains(t, got.ClaimedBySubjectID, "subject-")
}
