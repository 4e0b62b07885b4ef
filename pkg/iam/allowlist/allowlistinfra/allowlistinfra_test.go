package allowlistinfra

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist"
	"github.com/Abraxas-365/chatgate/pkg/sqltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func repositories(t *testing.T) map[string]allowlist.Repository {
	return map[string]allowlist.Repository{
		"sql":    NewPostgresAllowListRepository(sqltest.Open(t)),
		"memory": NewInMemoryAllowListRepository(),
	}
}

func TestInsertIfAbsent_SecondInsertKeepsOriginal(t *testing.T) {
	first := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	second := first.Add(24 * time.Hour)

	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := repo.InsertIfAbsent(ctx, allowlist.NewEntry("subject-x", "first", first))
			require.NoError(t, err)
			assert.True(t, created)

			created, err = repo.InsertIfAbsent(ctx, allowlist.NewEntry("subject-x", "second", second))
			require.NoError(t, err)
			assert.False(t, created)

			e, err := repo.FindBySubjectID(ctx, "subject-x")
			require.NoError(t, err)
			require.NotNil(t, e)
			assert.Equal(t, "first", e.Note)
			assert.True(t, first.Equal(e.CreatedAt))
		})
	}
}

func TestExists(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ok, err := repo.Exists(ctx, "subject-y")
			require.NoError(t, err)
			assert.False(t, ok)

			_, err = repo.InsertIfAbsent(ctx, allowlist.NewEntry("subject-y", "", time.Now().UTC()))
			require.NoError(t, err)

			ok, err = repo.Exists(ctx, "subject-y")
			require.NoError(t, err)
			assert.True(t, ok)

			e, err := repo.FindBySubjectID(ctx, "someone-else")
			require.NoError(t, err)
			assert.Nil(t, e)
		})
	}
}
