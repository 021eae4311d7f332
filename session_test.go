package accounts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueSessionAppendsToRegistry(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	user := registerTestUser(t, s, "foobar", "foobar@test.com", "Test!@#")

	first, err := s.session.IssueSession(ctx, user)
	require.NoError(t, err)
	second, err := s.session.IssueSession(ctx, user)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	records, err := s.repo.Users().ListTokens(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// insertion order reflects issuance order
	assert.Equal(t, first, records[0].Token)
	assert.Equal(t, second, records[1].Token)
}

func TestRevokeCurrentRemovesOnlyPresentedToken(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	user := registerTestUser(t, s, "foobar", "foobar@test.com", "Test!@#")

	first, err := s.session.IssueSession(ctx, user)
	require.NoError(t, err)
	second, err := s.session.IssueSession(ctx, user)
	require.NoError(t, err)

	require.NoError(t, s.session.RevokeCurrent(ctx, user, first))

	has, err := s.repo.Users().HasToken(ctx, user.ID, first)
	require.NoError(t, err)
	assert.False(t, has)

	has, err = s.repo.Users().HasToken(ctx, user.ID, second)
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRevokeCurrentAbsentTokenIsNoop(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	user := registerTestUser(t, s, "foobar", "foobar@test.com", "Test!@#")

	assert.NoError(t, s.session.RevokeCurrent(ctx, user, "never-issued"))
}

func TestRevokeAllClearsRegistry(t *testing.T) {
	s := newTestStack(t)
	ctx := context.Background()

	user := registerTestUser(t, s, "foobar", "foobar@test.com", "Test!@#")

	for i := 0; i < 3; i++ {
		_, err := s.session.IssueSession(ctx, user)
		require.NoError(t, err)
	}

	require.NoError(t, s.session.RevokeAll(ctx, user))

	records, err := s.repo.Users().ListTokens(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}
