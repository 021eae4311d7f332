package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	accounts "github.com/goliatone/go-accounts"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func main() {
	cfg, err := accounts.NewConfigFromEnv()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := NewZapLogger()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx := context.Background()

	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if err := accounts.CreateSchema(ctx, db); err != nil {
		log.Fatal(err)
	}

	repo := accounts.NewRepositoryManager(db)
	repo.MustValidate()

	tokens := accounts.NewTokenService([]byte(cfg.SigningKey), cfg.Issuer, logger.Named("tokens"))
	session := accounts.NewSessionManager(tokens, repo.Users()).
		WithLogger(logger.Named("session"))
	auther := accounts.NewAuthenticator(repo.Users(), session).
		WithLogger(logger.Named("auth"))
	gate := accounts.NewRequestGate(tokens, repo.Users()).
		WithLogger(logger.Named("gate"))

	var mailer accounts.Mailer = accounts.NoopMailer{}
	if cfg.SendgridAPIKey != "" {
		mailer = accounts.NewSendgridMailer(cfg.SendgridAPIKey, cfg.MailFrom).
			WithLogger(logger.Named("mailer"))
	} else {
		logger.Info("no mail API key configured, notifications disabled")
	}

	controller := accounts.NewUserController(func(c *accounts.UserController) *accounts.UserController {
		c.Repo = repo
		c.Auther = auther
		c.Session = session
		c.Mailer = mailer
		c.Logger = logger.Named("http")
		return c
	})

	app := fiber.New(fiber.Config{
		AppName:   "accountsd",
		BodyLimit: 2 * accounts.MaxAvatarSize,
	})

	accounts.RegisterRoutes(app, controller, gate)

	go func() {
		if err := app.Listen(cfg.Addr()); err != nil {
			logger.Error("server stopped", "error", err)
		}
	}()

	logger.Info("accountsd listening", "addr", cfg.Addr())

	WaitExitSignal()

	if err := app.Shutdown(); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("db close error", "error", err)
	}
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
