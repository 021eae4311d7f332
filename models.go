package accounts

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account record. PasswordHash, Tokens, and Avatar never make it
// into an external representation.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID       `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string          `bun:"name,notnull" json:"name"`
	Email         string          `bun:"email,notnull,unique" json:"email"`
	Age           int             `bun:"age,notnull,default:0" json:"age"`
	PasswordHash  string          `bun:"password_hash,notnull" json:"-"`
	Avatar        []byte          `bun:"avatar,nullzero" json:"-"`
	Tokens        []*SessionToken `bun:"rel:has-many,join:id=user_id" json:"-"`
	CreatedAt     *time.Time      `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time      `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// HasAvatar reports whether the user has stored avatar bytes.
func (u *User) HasAvatar() bool {
	return u != nil && len(u.Avatar) > 0
}

// SessionToken is one entry in a user's session registry. Rows are appended
// on login and removed on logout; insertion order is issuance order.
type SessionToken struct {
	bun.BaseModel `bun:"table:session_tokens,alias:stk"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Token         string     `bun:"token,notnull" json:"token"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// NormalizeEmail puts an email address in its canonical stored form. Lookups
// and the unique index both operate on this form, which is what makes email
// uniqueness case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	record.Name = strings.TrimSpace(record.Name)
	record.Email = NormalizeEmail(record.Email)

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

// CreateSchema creates the tables the package persists to. Safe to call on
// every boot.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.NewCreateTable().
		Model((*User)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return err
	}

	if _, err := db.NewCreateTable().
		Model((*SessionToken)(nil)).
		IfNotExists().
		WithForeignKeys().
		ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`).
		Exec(ctx); err != nil {
		return err
	}

	return nil
}
