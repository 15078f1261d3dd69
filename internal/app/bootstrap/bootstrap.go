// Package bootstrap builds the infrastructure clients and services shared by
// the api, worker and portalctl binaries.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/minio/minio-go/v7"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/config"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/domain/enums"
	"github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/infra/mail"
	s3infra "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/infra/s3"
	tginfra "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/infra/telegram"
	pgrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/postgres"
	redrepo "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/repo/redis"
	authsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/auth"
	directorysvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/directory"
	gamificationsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/gamification"
	marketplacesvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/marketplace"
	modsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/moderation"
	notifysvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/notifications"
	proposalsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/proposals"
	ratesvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/rate"
	tutoringsvc "github.com/v4codeit/prato-rinaldo-webapp-sub003/internal/services/tutoring"
)

type Container struct {
	Postgres *pgxpool.Pool
	Redis    *goredis.Client
	S3       *minio.Client

	Memberships *pgrepo.MembershipRepo
	Badges      *pgrepo.BadgeRepo
	Events      *redrepo.EventsRepo

	Auth          *authsvc.Service
	Moderation    *modsvc.Service
	Marketplace   *marketplacesvc.Service
	Directory     *directorysvc.Service
	Proposals     *proposalsvc.Service
	Tutoring      *tutoringsvc.Service
	Gamification  *gamificationsvc.Service
	Notifications *notifysvc.Service

	logger *zap.Logger
}

// Open connects to every backing service. Postgres is required; Redis, object
// storage and the notification channels degrade with a warning.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Container, error) {
	if log == nil {
		return nil, fmt.Errorf("logger is nil")
	}

	pool, err := pgrepo.NewPool(ctx, pgrepo.PoolConfig{
		DSN:             cfg.Postgres.DSN,
		MaxConns:        cfg.Postgres.MaxConns,
		MaxConnLifetime: cfg.Postgres.MaxConnLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		log.Warn("postgres ping failed, requests will error until it is reachable", zap.Error(err))
	}

	c := &Container{Postgres: pool, logger: log}

	c.Redis = redrepo.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err := redrepo.Ping(ctx, c.Redis); err != nil {
		log.Warn("redis unreachable, sessions and listing cache will fail until it recovers", zap.Error(err))
	}

	if client, err := s3infra.NewClient(s3infra.Config{
		Endpoint:  cfg.S3.Endpoint,
		AccessKey: cfg.S3.AccessKey,
		SecretKey: cfg.S3.SecretKey,
		Region:    cfg.S3.Region,
		UseSSL:    cfg.S3.UseSSL,
	}); err != nil {
		log.Warn("s3 init failed, image uploads are disabled", zap.Error(err))
	} else {
		c.S3 = client
		if err := s3infra.EnsureBucket(ctx, client, cfg.S3.Bucket, cfg.S3.Region); err != nil {
			log.Warn("s3 bucket is not ready, uploads will fail until it exists", zap.Error(err))
		}
	}

	if err := c.wire(cfg); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wire(cfg config.Config) error {
	log := c.logger

	txManager := pgrepo.NewTxManager(c.Postgres)
	moderationRepo := pgrepo.NewModerationRepo(c.Postgres)
	c.Memberships = pgrepo.NewMembershipRepo(c.Postgres)
	c.Badges = pgrepo.NewBadgeRepo(c.Postgres)

	registry := modsvc.NewRegistry()
	for _, itemType := range enums.AllItemTypes() {
		store, err := pgrepo.NewContentRepo(c.Postgres, itemType)
		if err != nil {
			return err
		}
		if err := registry.Register(itemType, store); err != nil {
			return fmt.Errorf("register %s: %w", itemType, err)
		}
	}

	sessionRepo := redrepo.NewSessionRepo(c.Redis)
	cacheRepo := redrepo.NewCacheRepo(c.Redis)
	limiter := ratesvc.NewLimiter(redrepo.NewRateRepo(c.Redis), cfg.Moderation.ReportsPerWindow, cfg.Moderation.ReportWindow)

	jwtManager := authsvc.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTAccessTTL)
	c.Auth = authsvc.NewService(jwtManager, sessionRepo, cfg.Auth.RefreshTTL)
	if cfg.Auth.PlatformSecret != "" {
		c.Auth.AttachPlatform(authsvc.NewPlatformVerifier(cfg.Auth.PlatformSecret), c.Memberships)
	} else {
		log.Warn("platform secret is empty, session exchange is disabled")
	}

	c.Events = redrepo.NewEventsRepo(c.Redis)
	c.Notifications = notifysvc.NewService(
		c.Events,
		newMailer(cfg.Notify, log),
		newAlerter(cfg.Notify, log),
		c.Memberships,
		notifysvc.Config{BaseURL: cfg.Notify.PublicBaseURL, ModeratorChatID: cfg.Notify.TelegramChatID},
		log,
	)

	c.Moderation = modsvc.NewService(modsvc.Dependencies{
		Tx:          txManager,
		Queue:       moderationRepo,
		Actions:     moderationRepo,
		Memberships: c.Memberships,
		Registry:    registry,
		Limiter:     limiter,
		Cache:       cacheRepo,
		Notifier:    c.Notifications,
		Logger:      log,
		PageSize:    cfg.Moderation.QueuePageSize,
	})

	var storage marketplacesvc.ObjectStorage
	if c.S3 != nil {
		storage = marketplacesvc.NewS3Storage(c.S3, cfg.S3.Bucket)
	}

	ttl := cfg.Cache.ListingTTL
	c.Marketplace = marketplacesvc.NewService(pgrepo.NewMarketplaceRepo(c.Postgres), c.Moderation, storage, cacheRepo, ttl, log)
	c.Directory = directorysvc.NewService(pgrepo.NewServiceProfileRepo(c.Postgres), c.Moderation, cacheRepo, ttl, log)
	c.Proposals = proposalsvc.NewService(pgrepo.NewProposalRepo(c.Postgres), c.Moderation, cacheRepo, ttl, log)
	c.Tutoring = tutoringsvc.NewService(pgrepo.NewTutorialRequestRepo(c.Postgres), c.Moderation, cacheRepo, ttl, log)
	c.Gamification = gamificationsvc.NewService(c.Badges, c.Memberships, cfg.Jobs.SweepPageSize, log)

	return nil
}

// newMailer returns an untyped nil when SendGrid is not configured so the
// notifications service sees the channel as absent.
func newMailer(cfg config.NotifyConfig, log *zap.Logger) notifysvc.Mailer {
	if cfg.SendGridAPIKey == "" {
		log.Warn("sendgrid api key is empty, decision emails are disabled")
		return nil
	}
	sender, err := mail.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFromName, cfg.MailFromAddress)
	if err != nil {
		log.Warn("sendgrid init failed, decision emails are disabled", zap.Error(err))
		return nil
	}
	return sender
}

func newAlerter(cfg config.NotifyConfig, log *zap.Logger) notifysvc.Alerter {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		log.Warn("telegram is not configured, moderator alerts are disabled")
		return nil
	}
	bot, err := tginfra.NewBot(cfg.TelegramToken)
	if err != nil {
		log.Warn("telegram init failed, moderator alerts are disabled", zap.Error(err))
		return nil
	}
	return bot
}

func (c *Container) Close() {
	if c.Postgres != nil {
		c.Postgres.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Warn("close redis", zap.Error(err))
		}
	}
}
