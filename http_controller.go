package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// MaxAvatarSize is the upload ceiling for avatar images, in bytes.
const MaxAvatarSize = 1000000

// AvatarFormField is the multipart field name clients upload avatars under.
const AvatarFormField = "x-file-upload"

var allowedAvatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// UserController serves the account HTTP surface.
type UserController struct {
	Repo    RepositoryManager
	Auther  Authenticator
	Session SessionRegistry
	Mailer  Mailer
	Logger  Logger
}

type UserControllerOption func(*UserController) *UserController

func NewUserController(opts ...UserControllerOption) *UserController {
	c := &UserController{
		Logger: defLogger{},
		Mailer: NoopMailer{},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in user controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in user controller...")
	}

	if c.Session == nil {
		panic("Missing SessionRegistry in user controller...")
	}

	return c
}

// RegisterRoutes mounts the account routes on the app. Routes that mutate or
// read the authenticated account sit behind the request gate.
func RegisterRoutes(app *fiber.App, controller *UserController, gate *RequestGate) {
	protected := gate.RequireAuth()

	app.Post("/users", controller.Create)
	app.Post("/users/login", controller.Login)
	app.Post("/users/logout", protected, controller.Logout)
	app.Post("/users/logout_all", protected, controller.LogoutAll)

	app.Get("/users/me", protected, controller.Me)
	app.Patch("/users/me", protected, controller.UpdateMe)
	app.Delete("/users/me", protected, controller.DeleteMe)

	app.Post("/users/me/avatar", protected, controller.UploadAvatar)
	app.Delete("/users/me/avatar", protected, controller.DeleteAvatar)
	app.Get("/users/:id/avatar", controller.GetAvatar)
}

// CreateUserRequest is the registration payload
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Age      int    `json:"age"`
}

// Validate will run validation rules
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.By(notBlank)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Age, validation.Min(0)),
	)
}

func notBlank(value any) error {
	s, _ := value.(string)
	if strings.TrimSpace(s) == "" {
		return errors.New("cannot be blank", errors.CategoryValidation)
	}
	return nil
}

// AuthResponse is the body returned by registration and login
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (a *UserController) Create(c *fiber.Ctx) error {
	payload := new(CreateUserRequest)

	if err := c.BodyParser(payload); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	record := &User{
		Name:         payload.Name,
		Email:        payload.Email,
		Age:          payload.Age,
		PasswordHash: hash,
	}

	user, err := a.Repo.Users().Register(c.UserContext(), record)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return sendError(c, fiber.StatusBadRequest, ErrDuplicateEmail.Message)
		}
		a.Logger.Error("user create failed", "error", err)
		return sendError(c, fiber.StatusBadRequest, "unable to create user")
	}

	a.notify(func(ctx context.Context) error {
		return a.Mailer.SendWelcomeEmail(ctx, user.Email, user.Name)
	})

	token, err := a.Session.IssueSession(c.UserContext(), user)
	if err != nil {
		a.Logger.Error("issue session after registration failed", "error", err)
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusCreated).JSON(AuthResponse{User: user, Token: token})
}

// LoginRequest is the credential payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

func (a *UserController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)

	if err := c.BodyParser(payload); err != nil {
		return sendError(c, fiber.StatusBadRequest, ErrInvalidCredentials.Message)
	}

	if err := payload.Validate(); err != nil {
		return sendError(c, fiber.StatusBadRequest, ErrInvalidCredentials.Message)
	}

	user, token, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		if IsInvalidCredentials(err) {
			return sendError(c, fiber.StatusBadRequest, ErrInvalidCredentials.Message)
		}
		a.Logger.Error("login failed", "error", err)
		return sendError(c, fiber.StatusBadRequest, ErrInvalidCredentials.Message)
	}

	return c.JSON(AuthResponse{User: user, Token: token})
}

func (a *UserController) Logout(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	token, tok := CurrentToken(c)
	if !ok || !tok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := a.Session.RevokeCurrent(c.UserContext(), user, token); err != nil {
		a.Logger.Error("logout failed", "error", err, "user_id", user.ID.String())
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (a *UserController) LogoutAll(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := a.Session.RevokeAll(c.UserContext(), user); err != nil {
		a.Logger.Error("logout all failed", "error", err, "user_id", user.ID.String())
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (a *UserController) Me(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	return c.JSON(user)
}

// UpdateUserRequest carries the allow-listed profile fields. Any other field
// in the body fails at decode time, before any value is inspected.
type UpdateUserRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Age      *int    `json:"age"`
}

// Validate will run validation rules on the fields that are present
func (r UpdateUserRequest) Validate() error {
	rules := []*validation.FieldRules{}

	if r.Name != nil {
		rules = append(rules, validation.Field(&r.Name, validation.By(func(any) error {
			return notBlank(*r.Name)
		})))
	}
	if r.Email != nil {
		rules = append(rules, validation.Field(&r.Email, validation.By(func(any) error {
			return is.Email.Validate(*r.Email)
		})))
	}
	if r.Password != nil {
		rules = append(rules, validation.Field(&r.Password, validation.By(func(any) error {
			return notBlank(*r.Password)
		})))
	}
	if r.Age != nil {
		rules = append(rules, validation.Field(&r.Age, validation.By(func(any) error {
			return validation.Min(0).Validate(*r.Age)
		})))
	}

	return validation.ValidateStruct(&r, rules...)
}

func (a *UserController) UpdateMe(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	payload := new(UpdateUserRequest)

	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return sendError(c, fiber.StatusBadRequest, ErrInvalidUpdateFields.Message)
	}

	if err := payload.Validate(); err != nil {
		return sendError(c, fiber.StatusBadRequest, err.Error())
	}

	if payload.Name != nil {
		user.Name = strings.TrimSpace(*payload.Name)
	}
	if payload.Email != nil {
		user.Email = NormalizeEmail(*payload.Email)
	}
	if payload.Age != nil {
		user.Age = *payload.Age
	}
	if payload.Password != nil {
		hash, err := HashPassword(*payload.Password)
		if err != nil {
			return sendError(c, fiber.StatusBadRequest, err.Error())
		}
		user.PasswordHash = hash
	}

	updated, err := a.Repo.Users().Update(c.UserContext(), user)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			return sendError(c, fiber.StatusBadRequest, ErrDuplicateEmail.Message)
		}
		a.Logger.Error("user update failed", "error", err, "user_id", user.ID.String())
		return sendError(c, fiber.StatusBadRequest, "unable to update user")
	}

	return c.JSON(updated)
}

func (a *UserController) DeleteMe(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := a.Repo.Users().DeleteWithTokens(c.UserContext(), user.ID); err != nil {
		a.Logger.Error("user delete failed", "error", err, "user_id", user.ID.String())
		return sendError(c, fiber.StatusBadRequest, "unable to delete user")
	}

	a.notify(func(ctx context.Context) error {
		return a.Mailer.SendCancelationEmail(ctx, user.Email, user.Name)
	})

	return c.JSON(user)
}

func (a *UserController) UploadAvatar(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	header, err := c.FormFile(AvatarFormField)
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "missing avatar upload")
	}

	if header.Size > MaxAvatarSize {
		return sendError(c, fiber.StatusBadRequest, "file too large")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedAvatarExts[ext] {
		return sendError(c, fiber.StatusBadRequest, "File must be jpeg, jpg or png")
	}

	file, err := header.Open()
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "unable to read upload")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarSize+1))
	if err != nil {
		return sendError(c, fiber.StatusBadRequest, "unable to read upload")
	}
	if len(data) > MaxAvatarSize {
		return sendError(c, fiber.StatusBadRequest, "file too large")
	}

	if err := a.Repo.Users().SetAvatar(c.UserContext(), user.ID, data); err != nil {
		a.Logger.Error("avatar upload failed", "error", err, "user_id", user.ID.String())
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (a *UserController) DeleteAvatar(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	if err := a.Repo.Users().ClearAvatar(c.UserContext(), user.ID); err != nil {
		a.Logger.Error("avatar clear failed", "error", err, "user_id", user.ID.String())
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (a *UserController) GetAvatar(c *fiber.Ctx) error {
	user, err := a.Repo.Users().GetByID(c.UserContext(), c.Params("id"))
	if err != nil || !user.HasAvatar() {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	c.Set(fiber.HeaderContentType, "image/jpg")
	return c.Send(user.Avatar)
}

// notify dispatches a best-effort notification. The request never waits on
// it, and a transport failure only ever shows up in the logs.
func (a *UserController) notify(send func(context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := send(ctx); err != nil {
			a.Logger.Error("notification send failed", "error", err)
		}
	}()
}

func sendError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}
