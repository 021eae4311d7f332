package accounts

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	// LocalsUserKey is where the gate stores the resolved user.
	LocalsUserKey = "auth_user"
	// LocalsTokenKey is where the gate stores the raw bearer token.
	LocalsTokenKey = "auth_token"

	authScheme = "Bearer"
)

// RequestGate authenticates incoming requests. A request passes only when the
// bearer token verifies against the signing key AND is still a member of the
// user's session registry. The two checks stay separate on purpose: a revoked
// token still verifies, and a verified token for a deleted user resolves to
// nothing.
type RequestGate struct {
	tokens TokenService
	users  Users
	logger Logger
}

// NewRequestGate returns a new RequestGate
func NewRequestGate(tokens TokenService, users Users) *RequestGate {
	return &RequestGate{
		tokens: tokens,
		users:  users,
		logger: defLogger{},
	}
}

func (g *RequestGate) WithLogger(logger Logger) *RequestGate {
	g.logger = logger
	return g
}

// RequireAuth is the authentication middleware for protected routes. Every
// failure mode maps to a bare 401.
func (g *RequestGate) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerFromHeader(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		claims, err := g.tokens.Validate(raw)
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		userID, err := claims.UserID()
		if err != nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		member, err := g.users.HasToken(c.UserContext(), userID, raw)
		if err != nil {
			g.logger.Error("request gate membership check failed", "error", err)
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		if !member {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		user, err := g.users.GetByID(c.UserContext(), userID.String())
		if err != nil || user == nil {
			return c.SendStatus(fiber.StatusUnauthorized)
		}

		c.Locals(LocalsUserKey, user)
		c.Locals(LocalsTokenKey, raw)
		c.SetUserContext(WithTokenContext(WithUserContext(c.UserContext(), user), raw))

		return c.Next()
	}
}

// CurrentUser returns the user the gate resolved for this request.
func CurrentUser(c *fiber.Ctx) (*User, bool) {
	user, ok := c.Locals(LocalsUserKey).(*User)
	return user, ok
}

// CurrentToken returns the raw bearer token the gate accepted.
func CurrentToken(c *fiber.Ctx) (string, bool) {
	token, ok := c.Locals(LocalsTokenKey).(string)
	return token, ok
}

func bearerFromHeader(header string) (string, error) {
	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) {
		token := strings.TrimSpace(header[l:])
		if token != "" {
			return token, nil
		}
	}
	return "", ErrUnauthenticated
}
