package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"airdrop-go/internal/config"
	"airdrop-go/internal/db"
	"airdrop-go/internal/httpapi"
	"airdrop-go/internal/llm"
	"airdrop-go/internal/repositories"
	"airdrop-go/internal/repositories/sqlrepo"
	"airdrop-go/internal/scheduler"
	"airdrop-go/internal/services/assistant"
	"airdrop-go/internal/services/catalog"
	"airdrop-go/internal/services/loading"
	"airdrop-go/internal/telegram"
)

type Builder struct {
	cfg          *config.Config
	log          *slog.Logger
	ensureSchema bool

	db        *sqlx.DB
	repo      repositories.ProjectRepository
	chat      assistant.ChatModel
	scheduler *scheduler.Scheduler
	server    *http.Server
	bot       *telegram.Bot
}

type BuilderOption func(*Builder)

func NewBuilder(cfg *config.Config, options ...BuilderOption) *Builder {
	builder := &Builder{
		cfg:          cfg,
		ensureSchema: true,
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

func WithLogger(log *slog.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = log
	}
}

func WithEnsureSchema(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.ensureSchema = enabled
	}
}

func WithDB(conn *sqlx.DB) BuilderOption {
	return func(b *Builder) {
		b.db = conn
	}
}

func WithRepository(repo repositories.ProjectRepository) BuilderOption {
	return func(b *Builder) {
		b.repo = repo
	}
}

func WithChatModel(chat assistant.ChatModel) BuilderOption {
	return func(b *Builder) {
		b.chat = chat
	}
}

func WithScheduler(scheduler *scheduler.Scheduler) BuilderOption {
	return func(b *Builder) {
		b.scheduler = scheduler
	}
}

func WithHTTPServer(server *http.Server) BuilderOption {
	return func(b *Builder) {
		b.server = server
	}
}

func WithTelegramBot(bot *telegram.Bot) BuilderOption {
	return func(b *Builder) {
		b.bot = bot
	}
}

func (b *Builder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, errors.New("config is required")
	}
	if b.log == nil {
		b.log = slog.Default()
	}

	app := &App{Config: b.cfg, log: b.log}
	if b.db == nil {
		conn, err := db.Open(ctx, *b.cfg)
		if err != nil {
			return nil, err
		}
		b.db = conn
		app.ownsDB = true
	}
	app.DB = b.db

	if b.ensureSchema {
		if err := db.EnsureSchema(ctx, b.db); err != nil {
			app.Close()
			return nil, err
		}
	}

	if b.repo == nil {
		b.repo = sqlrepo.NewProjectRepository(b.db)
	}
	app.Repo = b.repo

	app.Loader = loading.NewService(app.Repo, b.log.With("component", "loader"), b.cfg.DataFile)
	app.Catalog = catalog.NewService(app.Repo, b.log.With("component", "catalog"))

	if b.chat == nil {
		b.chat = llm.NewClient(llm.Options{
			APIKey:      b.cfg.OpenAIKey,
			BaseURL:     b.cfg.OpenAIBaseURL,
			Model:       b.cfg.Model,
			Temperature: b.cfg.Temperature,
		})
	}
	app.Assistant = assistant.NewDispatcher(
		assistant.NewContextBuilder(app.Catalog),
		b.chat,
		b.log.With("component", "assistant"),
		b.cfg.RequestTimeout,
	)

	if b.scheduler == nil && b.cfg.ReloadCron != "" {
		b.scheduler = scheduler.New(b.cfg.ReloadCron, app.Loader, b.log.With("component", "scheduler"))
	}
	app.Scheduler = b.scheduler

	if b.bot == nil && b.cfg.TelegramToken != "" {
		b.bot = telegram.NewBot(b.cfg.TelegramToken, app.Assistant, b.log.With("component", "telegram"))
	}
	app.Bot = b.bot

	if b.server == nil {
		handler := httpapi.NewHandler(app.Catalog, app.Assistant, app.Loader, b.log.With("component", "http"))
		b.server = &http.Server{
			Addr:              ":" + b.cfg.HTTPPort,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	app.Server = b.server

	return app, nil
}
