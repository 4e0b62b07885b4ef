package usersrv

import (
	"context"
	"testing"
	"time"

	"github.com/Abraxas-365/chatgate/pkg/iam/identity"
	"github.com/Abraxas-365/chatgate/pkg/iam/user"
	"github.com/Abraxas-365/chatgate/pkg/iam/user/userinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*UserService, *time.Time) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := NewUserService(userinfra.NewInMemoryUserRepository())
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestCreateOrUpdate_CreatesThenRefreshes(t *testing.T) {
	svc, now := newService()
	ctx := context.Background()

	first, err := svc.CreateOrUpdate(ctx, identity.ExternalIdentity{
		SubjectID:   "openid-0001",
		DisplayName: "Old Name",
	})
	require.NoError(t, err)

	*now = now.Add(time.Hour)
	second, err := svc.CreateOrUpdate(ctx, identity.ExternalIdentity{
		SubjectID:   "openid-0001",
		FederatedID: "union-9",
		DisplayName: "New Name",
		AvatarURL:   "https://img.example/new.png",
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "New Name", second.DisplayName)
	assert.Equal(t, "union-9", second.FederatedID)
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.Equal(t, *now, second.UpdatedAt)

	loaded, err := svc.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "New Name", loaded.DisplayName)
}

func TestCreateOrUpdate_RejectsEmptySubject(t *testing.T) {
	svc, _ := newService()

	_, err := svc.CreateOrUpdate(context.Background(), identity.ExternalIdentity{DisplayName: "nobody"})
	require.Error(t, err)
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newService()

	_, err := svc.GetByID(context.Background(), 42)
	require.Error(t, err)
	assert.ErrorContains(t, err, user.CodeUserNotFound.Code)
}
