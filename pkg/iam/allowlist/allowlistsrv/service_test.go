package allowlistsrv

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/iam/allowlist/allowlistinfra"
	"github.com/Abraxas-365/chatgate/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddMember_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := allowlistinfra.NewInMemoryAllowListRepository()
	svc := NewAllowListService(repo)

	t0 := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return t0 }
	require.NoError(t, svc.AddMember(ctx, "openid-abcdef", "first"))

	svc.now = func() time.Time { return t0.Add(time.Hour) }
	require.NoError(t, svc.AddMember(ctx, "openid-abcdef", "second"))

	ok, err := svc.IsMember(ctx, "openid-abcdef")
	require.NoError(t, err)
	assert.True(t, ok)

	e, err := repo.FindBySubjectID(ctx, "openid-abcdef")
	require.NoError(t, err)
	assert.Equal(t, t0, e.CreatedAt)
	assert.Equal(t, "first", e.Note)
}

func TestAddMember_ConcurrentAddsSucceed(t *testing.T) {
	ctx := context.Background()
	svc := NewAllowListService(allowlistinfra.NewInMemoryAllowListRepository())

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.AddMember(ctx, "same-subject", "race")
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
}

func TestIsMember_Unknown(t *testing.T) {
	svc := NewAllowListService(allowlistinfra.NewInMemoryAllowListRepository())

	ok, err := svc.IsMember(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsMember(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSeed(t *testing.T) {
	svc := NewAllowListService(allowlistinfra.NewInMemoryAllowListRepository())

	n, err := svc.Seed(context.Background(), []string{"a", "", "b", "a"}, "bootstrap")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, id := range []string{"a", "b"} {
		ok, err := svc.IsMember(context.Background(), id)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestAddMember_RequiresSubject(t *testing.T) {
	svc := NewAllowListService(allowlistinfra.NewInMemoryAllowListRepository())
	assert.Error(t, svc.AddMember(context.Background(), "", "x"))
}

func TestAddMember_LogsNeitherNoteNorFullSubject(t *testing.T) {
	var buf bytes.Buffer
	cfg := logx.DefaultConfig()
	cfg.Format = logx.FormatJSON
	cfg.Output = &buf
	logx.SetDefaultLogger(logx.NewLogger(cfg))
	t.Cleanup(func() { logx.SetDefaultLogger(logx.NewLogger(logx.LoadFromEnv())) })

	svc := NewAllowListService(allowlistinfra.NewInMemoryAllowListRepository())
	require.NoError(t, svc.AddMember(context.Background(), "openid-abcdef", "redeemed via code SECRET-INV-42"))

	assert.Contains(t, buf.String(), "subject added to allow-list")
	assert.NotContains(t, buf.String(), "SECRET-INV-42")
	assert.NotContains(t, buf.String(), "openid-abcdef")
}
