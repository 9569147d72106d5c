package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	googleauth "resume-review/internal/auth"
	"resume-review/internal/convert"
	"resume-review/internal/events"
	"resume-review/internal/llm"
	"resume-review/internal/llm/gemini"
	"resume-review/internal/llm/openai"
	"resume-review/internal/maintenance"
	"resume-review/internal/platform"
	"resume-review/internal/review"
	"resume-review/internal/shared/auth"
	"resume-review/internal/shared/config"
	"resume-review/internal/shared/server"
	"resume-review/internal/shared/server/middleware"
	"resume-review/internal/shared/storage/db"
	"resume-review/internal/shared/storage/kv"
	"resume-review/internal/shared/storage/object"
	localstore "resume-review/internal/shared/storage/object/local"
	s3store "resume-review/internal/shared/storage/object/s3"
)

// App holds shared dependencies and the router built from them.
type App struct {
	Config      config.Config
	Router      *gin.Engine
	DB          *sql.DB
	Files       object.Store
	KV          kv.Store
	AI          llm.Client
	Events      events.Publisher
	Platform    *platform.Client
	Review      *review.Service
	Maintenance *maintenance.Service
	GoogleAuth  *googleauth.GoogleService

	closers []func(context.Context) error
}

// Build prepares every backend named by cfg and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()
	app := &App{Config: cfg}

	files, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Files = files

	if err := app.buildKV(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	ai, err := buildAI(ctx, cfg, files)
	if err != nil {
		app.Close(ctx)
		return nil, err
	}
	app.AI = ai

	if err := app.buildEvents(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	denylist := auth.NewKVDenylist(app.KV)
	app.Platform = platform.New(app.Files, app.KV, app.AI)
	app.Review = &review.Service{
		Files:     app.Files,
		KV:        app.KV,
		AI:        app.AI,
		Converter: convert.New(cfg.PreviewScale),
		Tracker:   review.NewTracker(),
		Events:    app.Events,
	}
	app.Maintenance = &maintenance.Service{Files: app.Files, KV: app.KV}
	app.GoogleAuth = googleauth.NewGoogleService(
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.UIRedirectURL,
		denylist,
	)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             cfg,
		Platform:           app.Platform,
		Denylist:           denylist,
		ReviewHandler:      review.NewHandler(app.Review),
		MaintenanceHandler: maintenance.NewHandler(app.Maintenance),
		GoogleAuth:         app.GoogleAuth,
		Limiter:            middleware.NewRateLimiter(time.Now),
	})

	return app, nil
}

// Close releases connections opened by Build, newest first.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

func buildStore(ctx context.Context, cfg config.Config) (object.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		if strings.TrimSpace(cfg.S3Bucket) == "" {
			return nil, fmt.Errorf("OBJECT_STORE=s3 requires S3_BUCKET")
		}
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func (a *App) buildKV(ctx context.Context) error {
	cfg := a.Config
	switch cfg.KVStoreType {
	case "postgres":
		return a.buildSQLKV(ctx, db.DialectPostgres, cfg.DatabaseURL)
	case "sqlite":
		if dir := filepath.Dir(cfg.SQLitePath); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create sqlite dir: %w", err)
			}
		}
		return a.buildSQLKV(ctx, db.DialectSQLite, cfg.SQLitePath)
	case "redis":
		store, err := kv.NewRedisStore(cfg.RedisURL)
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { return store.Close() })
		a.KV = store
	case "mongo":
		store, err := kv.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return err
		}
		a.onClose(store.Close)
		a.KV = store
	default:
		a.KV = kv.NewMemoryStore()
	}
	return nil
}

func (a *App) buildSQLKV(ctx context.Context, dialect db.Dialect, dsn string) error {
	if strings.TrimSpace(dsn) == "" {
		return fmt.Errorf("KV_STORE=%s requires a connection string", dialect)
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	switch {
	case dialect == db.DialectSQLite:
		sqlDB, err = db.Connect(ctx, dialect, dsn, db.OptionsFromEnv(db.DefaultSQLiteOptions()))
	case db.IsLambdaRuntime():
		sqlDB, err = db.GetSingleton(ctx, dialect, dsn, db.OptionsFromEnv(db.DefaultLambdaOptions()))
	default:
		sqlDB, err = db.Connect(ctx, dialect, dsn, db.OptionsFromEnv(db.DefaultServerOptions()))
	}
	if err != nil {
		return fmt.Errorf("connect %s: %w", dialect, err)
	}
	if !db.IsLambdaRuntime() {
		a.onClose(func(context.Context) error { return sqlDB.Close() })
	}

	if err := db.RunMigrations(ctx, sqlDB, dialect); err != nil {
		return fmt.Errorf("migrate %s: %w", dialect, err)
	}
	a.DB = sqlDB
	a.KV = &kv.SQLStore{DB: sqlDB, Dialect: dialect}
	return nil
}

func buildAI(ctx context.Context, cfg config.Config, files object.Store) (llm.Client, error) {
	switch cfg.AIProvider {
	case "openai":
		return openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, files)
	case "gemini":
		model := cfg.GeminiModel
		if strings.TrimSpace(cfg.LLMModel) != "" {
			model = cfg.LLMModel
		}
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, model, files)
	default:
		if !cfg.IsDevLike() {
			log.Printf("bootstrap: AI_PROVIDER=none; submissions will fail at analysis")
		}
		return llm.PlaceholderClient{}, nil
	}
}

func (a *App) buildEvents(ctx context.Context) error {
	cfg := a.Config
	switch cfg.EventsBackend {
	case "sqs":
		pub, err := events.NewSQSPublisher(ctx, cfg.AWSRegion, cfg.SQSQueueURL)
		if err != nil {
			return err
		}
		a.Events = pub
	case "amqp":
		pub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		a.onClose(func(context.Context) error { return pub.Close() })
		a.Events = pub
	default:
		a.Events = events.Noop{}
	}
	return nil
}
