package accounts

import (
	"context"
	"database/sql"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users is the credential store. It persists account records and the session
// registry rows hanging off them.
type Users interface {
	repository.Repository[*User]

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)

	Register(ctx context.Context, record *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)

	DeleteWithTokens(ctx context.Context, id uuid.UUID) error

	AppendToken(ctx context.Context, userID uuid.UUID, token string) error
	RemoveToken(ctx context.Context, userID uuid.UUID, token string) error
	ClearTokens(ctx context.Context, userID uuid.UUID) error
	HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error)
	ListTokens(ctx context.Context, userID uuid.UUID) ([]*SessionToken, error)

	SetAvatar(ctx context.Context, userID uuid.UUID, data []byte) error
	ClearAvatar(ctx context.Context, userID uuid.UUID) error
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, record *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	return a.CreateTx(ctx, tx, record)
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)

	created, err := a.Repository.CreateTx(ctx, tx, record, criteria...)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return created, nil
}

func (a *users) Update(ctx context.Context, record *User, criteria ...repository.UpdateCriteria) (*User, error) {
	return a.UpdateTx(ctx, a.db, record, criteria...)
}

func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.UpdateCriteria) (*User, error) {
	if record != nil && record.Email != "" {
		record.Email = NormalizeEmail(record.Email)
	}
	if record != nil {
		now := time.Now()
		record.UpdatedAt = &now
	}

	updated, err := a.Repository.UpdateTx(ctx, tx, record, criteria...)
	if err != nil {
		if IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return updated, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", NormalizeEmail(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) || err == sql.ErrNoRows {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"email": NormalizeEmail(email),
				})
		}
		return nil, err
	}

	return record, nil
}

// DeleteWithTokens removes the account and its session registry in one
// transaction. Every token that was honored for this user stops resolving the
// moment the row is gone.
func (a *users) DeleteWithTokens(ctx context.Context, id uuid.UUID) error {
	return a.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*SessionToken)(nil)).
			Where("user_id = ?", id).
			Exec(ctx); err != nil {
			return err
		}

		res, err := tx.NewDelete().
			Model((*User)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return err
		}

		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}

		return nil
	})
}

func (a *users) AppendToken(ctx context.Context, userID uuid.UUID, token string) error {
	now := time.Now()
	record := &SessionToken{
		ID:        uuid.New(),
		UserID:    userID,
		Token:     token,
		CreatedAt: &now,
	}

	_, err := a.db.NewInsert().Model(record).Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to persist session token")
	}

	return nil
}

// RemoveToken deletes the exact matching registry entry. Removing a token
// that is already gone is a no-op, not an error.
func (a *users) RemoveToken(ctx context.Context, userID uuid.UUID, token string) error {
	_, err := a.db.NewDelete().
		Model((*SessionToken)(nil)).
		Where("user_id = ?", userID).
		Where("token = ?", token).
		Exec(ctx)

	return err
}

func (a *users) ClearTokens(ctx context.Context, userID uuid.UUID) error {
	_, err := a.db.NewDelete().
		Model((*SessionToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	return err
}

func (a *users) HasToken(ctx context.Context, userID uuid.UUID, token string) (bool, error) {
	return a.db.NewSelect().
		Model((*SessionToken)(nil)).
		Where("user_id = ?", userID).
		Where("token = ?", token).
		Exists(ctx)
}

// ListTokens returns the registry entries in issuance order.
func (a *users) ListTokens(ctx context.Context, userID uuid.UUID) ([]*SessionToken, error) {
	var records []*SessionToken

	err := a.db.NewSelect().
		Model(&records).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *users) SetAvatar(ctx context.Context, userID uuid.UUID, data []byte) error {
	now := time.Now()
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("avatar = ?", data).
		Set("updated_at = ?", now).
		Where("id = ?", userID).
		Exec(ctx)

	return err
}

func (a *users) ClearAvatar(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	_, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("avatar = NULL").
		Set("updated_at = ?", now).
		Where("id = ?", userID).
		Exec(ctx)

	return err
}
