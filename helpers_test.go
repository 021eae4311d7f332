package accounts_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var testDBSeq atomic.Int64

const testSigningKey = "test-signing-key"

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb%d?mode=memory&cache=shared", testDBSeq.Add(1))

	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	require.NoError(t, err)

	// Keep the shared in-memory database alive for the whole test.
	sqldb.SetMaxIdleConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	require.NoError(t, accounts.CreateSchema(context.Background(), db))

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

type testStack struct {
	db      *bun.DB
	repo    accounts.RepositoryManager
	tokens  accounts.TokenService
	session *accounts.SessionManager
	auther  *accounts.Auther
	gate    *accounts.RequestGate
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db := newTestDB(t)
	repo := accounts.NewRepositoryManager(db)
	tokens := accounts.NewTokenService([]byte(testSigningKey), "", nil)
	session := accounts.NewSessionManager(tokens, repo.Users())
	auther := accounts.NewAuthenticator(repo.Users(), session)
	gate := accounts.NewRequestGate(tokens, repo.Users())

	return &testStack{
		db:      db,
		repo:    repo,
		tokens:  tokens,
		session: session,
		auther:  auther,
		gate:    gate,
	}
}

func registerTestUser(t *testing.T, s *testStack, name, email, password string) *accounts.User {
	t.Helper()

	hash, err := accounts.HashPassword(password)
	require.NoError(t, err)

	user, err := s.repo.Users().Register(context.Background(), &accounts.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	})
	require.NoError(t, err)

	return user
}
