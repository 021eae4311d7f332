package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Error(format string, args ...any)
}

// Authenticator holds methods to deal with credential verification
type Authenticator interface {
	FindByCredentials(ctx context.Context, email, password string) (*User, error)
	Login(ctx context.Context, email, password string) (*User, string, error)
}

// SessionRegistry manages the per-user set of honored tokens
type SessionRegistry interface {
	IssueSession(ctx context.Context, user *User) (string, error)
	RevokeCurrent(ctx context.Context, user *User, token string) error
	RevokeAll(ctx context.Context, user *User) error
}

// Mailer delivers transactional notifications. Implementations are
// best-effort collaborators; send failures never reach the request path.
type Mailer interface {
	SendWelcomeEmail(ctx context.Context, email, name string) error
	SendCancelationEmail(ctx context.Context, email, name string) error
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
