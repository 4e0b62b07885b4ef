package invitationsrv

import (
	"context"
	"testing"

	"github.com/Abraxas-365/chatgate/pkg/errx"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation"
	"github.com/Abraxas-365/chatgate/pkg/iam/invitation/invitationinfra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedAndClaim(t *testing.T) {
	ctx := context.Background()
	svc := NewInvitationService(invitationinfra.NewInMemoryInvitationRepository())

	n, err := svc.Seed(ctx, []string{"A1", " ", "B2", "A1"}, "launch")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	ok, err := svc.IsRedeemable(ctx, "A1")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, svc.Claim(ctx, "A1", "subject-1"))

	ok, err = svc.IsRedeemable(ctx, "A1")
	require.NoError(t, err)
	assert.False(t, ok)

	err = svc.Claim(ctx, "A1", "subject-2")
	assert.True(t, errx.IsCode(err, invitation.CodeInvalidOrUsedCode))
}

func TestIsRedeemable_DoesNotConsume(t *testing.T) {
	ctx := context.Background()
	svc := NewInvitationService(invitationinfra.NewInMemoryInvitationRepository())
	_, err := svc.Seed(ctx, []string{"PROBE"}, "")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		ok, err := svc.IsRedeemable(ctx, "PROBE")
		require.NoError(t, err)
		assert.True(t, ok)
	}
	require.NoError(t, svc.Claim(ctx, "PROBE", "s"))
}

func TestClaim_EmptyCode(t *testing.T) {
	svc := NewInvitationService(invitationinfra.NewInMemoryInvitationRepository())

	err := svc.Claim(context.Background(), "", "s")
	assert.True(t, errx.IsCode(err, invitation.CodeInvalidOrUsedCode))

	ok, err := svc.IsRedeemable(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, ok)
}
