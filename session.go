package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// SessionManager is the session registry over a user's token rows. A token is
// honored only while its row exists, which is what makes logout effective
// even though the signature stays cryptographically valid.
type SessionManager struct {
	tokens TokenService
	users  Users
	logger Logger
}

var _ SessionRegistry = (*SessionManager)(nil)

// NewSessionManager returns a new SessionManager
func NewSessionManager(tokens TokenService, users Users) *SessionManager {
	return &SessionManager{
		tokens: tokens,
		users:  users,
		logger: defLogger{},
	}
}

func (s *SessionManager) WithLogger(logger Logger) *SessionManager {
	s.logger = logger
	return s
}

// IssueSession mints a fresh token for the user and appends it to the
// registry. Used by registration and login.
func (s *SessionManager) IssueSession(ctx context.Context, user *User) (string, error) {
	if user == nil {
		return "", errors.New("user is required", errors.CategoryBadInput)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		s.logger.Error("issue session token failed", "error", err, "user_id", user.ID.String())
		return "", err
	}

	if err := s.users.AppendToken(ctx, user.ID, token); err != nil {
		s.logger.Error("persist session token failed", "error", err, "user_id", user.ID.String())
		return "", err
	}

	return token, nil
}

// RevokeCurrent removes the exact presented token from the registry. Other
// sessions for the same user stay valid.
func (s *SessionManager) RevokeCurrent(ctx context.Context, user *User, token string) error {
	if user == nil {
		return errors.New("user is required", errors.CategoryBadInput)
	}

	return s.users.RemoveToken(ctx, user.ID, token)
}

// RevokeAll clears every session for the user.
func (s *SessionManager) RevokeAll(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user is required", errors.CategoryBadInput)
	}

	return s.users.ClearTokens(ctx, user.ID)
}
