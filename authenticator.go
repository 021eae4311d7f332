package accounts

import (
	"context"

	"github.com/goliatone/go-errors"
)

// Auther verifies credentials and opens sessions.
type Auther struct {
	users    Users
	registry SessionRegistry
	logger   Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(users Users, registry SessionRegistry) *Auther {
	return &Auther{
		users:    users,
		registry: registry,
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.logger = logger
	return s
}

// FindByCredentials looks the user up by email and verifies the password.
// Unknown email and wrong password return the same generic error so the
// response cannot be used to enumerate accounts.
func (s *Auther) FindByCredentials(ctx context.Context, email, password string) (*User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("credential lookup failed", "error", err)
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve user during verification")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// Login verifies credentials and issues a fresh session token.
func (s *Auther) Login(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := s.registry.IssueSession(ctx, user)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}
