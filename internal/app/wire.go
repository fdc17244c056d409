package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oddskit/surebet/internal/arb"
	s3blob "github.com/oddskit/surebet/internal/blob/s3"
	"github.com/oddskit/surebet/internal/cache/redis"
	"github.com/oddskit/surebet/internal/config"
	"github.com/oddskit/surebet/internal/crypto"
	"github.com/oddskit/surebet/internal/domain"
	"github.com/oddskit/surebet/internal/engine"
	"github.com/oddskit/surebet/internal/feed"
	"github.com/oddskit/surebet/internal/guard"
	"github.com/oddskit/surebet/internal/notify"
	"github.com/oddskit/surebet/internal/pipeline"
	"github.com/oddskit/surebet/internal/provider"
	"github.com/oddskit/surebet/internal/provider/alpha"
	"github.com/oddskit/surebet/internal/provider/beta"
	"github.com/oddskit/surebet/internal/store/postgres"
)

// Dependencies bundles everything the run modes need. It is constructed by
// Wire and torn down by the returned cleanup function.
type Dependencies struct {
	ExecutionStore domain.ExecutionStore
	HedgeStore     domain.HedgeStore

	Lock      *guard.ExecutionLock
	Engine    *engine.Engine
	Processor *pipeline.Processor

	// WS is non-nil only for the websocket feed; its Run loop must be
	// started alongside the processor.
	WS *feed.WSSource

	Archiver domain.Archiver
	Notifier *notify.Notifier
}

// pgProbe reports readiness from database connectivity. Placement without a
// reachable audit store would leave money movements unrecorded.
type pgProbe struct {
	pool *pgxpool.Pool
}

func (p pgProbe) Ready(ctx context.Context) bool {
	return p.pool.Ping(ctx) == nil
}

// Wire constructs all concrete dependency implementations from the given
// configuration and returns them together with a cleanup function that
// should be called on shutdown to release resources.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- PostgreSQL ---
	pgClient, err := postgres.New(ctx, postgres.ClientConfig{
		DSN:      cfg.Postgres.DSN,
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		Database: cfg.Postgres.Database,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		SSLMode:  cfg.Postgres.SSLMode,
		MaxConns: cfg.Postgres.PoolMaxConns,
		MinConns: cfg.Postgres.PoolMinConns,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: postgres: %w", err)
	}
	closers = append(closers, pgClient.Close)

	if cfg.Postgres.RunMigrations {
		if err := pgClient.Migrate(ctx); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres migrations: %w", err)
		}
	}

	pool := pgClient.Pool()
	execStore := postgres.NewExecutionStore(pool)
	hedgeStore := postgres.NewHedgeStore(pool)
	deps.ExecutionStore = execStore
	deps.HedgeStore = hedgeStore

	// --- Feed source ---
	var source domain.FeedSource
	switch strings.ToLower(cfg.Feed.Source) {
	case "redis":
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })

		source, err = feed.NewBusSource(ctx, redis.NewOddsBus(redisClient), cfg.Feed.Channel, logger)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: feed subscribe: %w", err)
		}
	case "websocket":
		ws := feed.NewWSSource(cfg.Feed.WSURL, logger)
		deps.WS = ws
		source = ws
	default:
		cleanup()
		return nil, nil, fmt.Errorf("wire: unknown feed source %q", cfg.Feed.Source)
	}
	closers = append(closers, func() { _ = source.Close() })

	// --- S3 audit archiver ---
	if cfg.S3.Enabled {
		s3Client, err := s3blob.New(ctx, s3blob.ClientConfig{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			ForcePathStyle: cfg.S3.ForcePathStyle,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: s3: %w", err)
		}
		deps.Archiver = s3blob.NewArchiver(s3Client, execStore)
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewNotifier(senders, cfg.Notify.Events, logger)

	// --- Placement accounts ---
	alphaCfg, err := resolveProvider(alpha.Name, cfg.Alpha)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: alpha credentials: %w", err)
	}
	betaCfg, err := resolveProvider(beta.Name, cfg.Beta)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: beta credentials: %w", err)
	}

	accounts := map[string]engine.Account{
		alpha.Name: {
			ID:     alphaCfg.AccountID,
			Placer: alpha.NewClient(alphaCfg, cfg.Execution.DriftTolerance, logger),
		},
		beta.Name: {
			ID:     betaCfg.AccountID,
			Placer: beta.NewClient(betaCfg, logger),
		},
	}

	// --- Guard chain and engine ---
	// The engine doubles as the guard's leg authorizer; the indirection
	// breaks the construction cycle between the two.
	var eng *engine.Engine
	auth := guard.LegAuthorizerFunc(func(ctx context.Context, leg domain.Leg) error {
		return eng.AuthorizeLeg(ctx, leg)
	})

	g := guard.NewGuard(guard.Mode(strings.ToLower(cfg.Mode)), pgProbe{pool: pool}, auth, logger)
	cooldown := guard.NewCooldown(cfg.Execution.CooldownInterval.Duration)
	lock := guard.NewExecutionLock(logger)
	exposure := guard.NewExposureTracker(guard.ExposureConfig{
		PerMatchLimit:   cfg.Exposure.PerMatchLimit,
		PerAccountLimit: cfg.Exposure.PerAccountLimit,
		Enforce:         cfg.Exposure.Enforce,
	}, logger)
	hedge := engine.NewHedgeService(hedgeStore, logger)

	eng = engine.NewEngine(g, cooldown, lock, exposure, accounts, execStore, hedge, deps.Notifier, logger)
	deps.Lock = lock
	deps.Engine = eng

	// --- Pipeline ---
	detector := arb.NewDetector(cfg.Detection.TotalStake, alpha.Name, beta.Name)
	deps.Processor = pipeline.NewProcessor(
		source,
		detector,
		eng,
		deps.Notifier,
		alpha.Name,
		beta.Name,
		cfg.Detection.QueueSize,
		logger,
	)

	return deps, cleanup, nil
}

// resolveProvider merges plain-config provider settings with the encrypted
// credentials file when one is configured. File entries win over the TOML
// values.
func resolveProvider(name string, pc config.ProviderConfig) (provider.Config, error) {
	out := provider.Config{
		BaseURL:   pc.BaseURL,
		APIToken:  pc.APIToken,
		AccountID: pc.AccountID,
		Timeout:   pc.Timeout.Duration,
	}
	if pc.CredentialsPath == "" {
		return out, nil
	}
	creds, err := crypto.LoadCredentials(pc.CredentialsPath, pc.CredentialsPass)
	if err != nil {
		return out, err
	}
	if c, ok := creds[name]; ok {
		if c.APIToken != "" {
			out.APIToken = c.APIToken
		}
		if c.AccountID != "" {
			out.AccountID = c.AccountID
		}
	}
	return out, nil
}
