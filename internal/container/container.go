package container

import (
	"context"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-auth-service/config"
	"github.com/oksasatya/go-auth-service/internal/application"
	"github.com/oksasatya/go-auth-service/internal/domain/repository"
	esinfra "github.com/oksasatya/go-auth-service/internal/infrastructure/elasticsearch"
	pginfra "github.com/oksasatya/go-auth-service/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/go-auth-service/internal/interface/http"
	"github.com/oksasatya/go-auth-service/pkg/helpers"
	"github.com/oksasatya/go-auth-service/pkg/mailer"
	tpl "github.com/oksasatya/go-auth-service/pkg/mailer/templates"
)

// Container holds the components built at startup. Infrastructure fields
// are optional except Users; Wire builds the services on top of them.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	PG     *pgxpool.Pool
	Redis  *redis.Client
	GCS    *storage.Client
	ES     *elasticsearch.Client
	Rabbit *helpers.RabbitPublisher

	Users   repository.UserRepository
	Mailer  mailer.Sender
	Avatars application.AvatarStore
	Audit   application.AuditLogger

	JWT          *helpers.JWTManager
	Hasher       *helpers.PasswordHasher
	Cookies      *helpers.Manager
	Auth         *application.AuthService
	Verification *application.VerificationService
	AuthHandler  *handlers.AuthHandler

	closers []func()
}

// Build connects to every configured backend and wires the services.
// Postgres and Redis are required; GCS, Elasticsearch and RabbitMQ are
// skipped when not configured.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}

	pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
		DSN:         cfg.PostgresDSN(),
		MaxConns:    cfg.DBMaxConns,
		MinConns:    cfg.DBMinConns,
		MaxConnLife: cfg.DBMaxConnLife,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	c.PG = pool
	c.onClose(pool.Close)
	c.Users = pginfra.NewUserRepository(pool)

	rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("redis: %w", err)
	}
	c.Redis = rdb
	c.onClose(func() { _ = rdb.Close() })

	if cfg.GCSBucket != "" {
		gcs, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("gcs: %w", err)
		}
		c.GCS = gcs
		c.onClose(func() { _ = gcs.Close() })
		c.Avatars = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
	}

	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := esinfra.NewClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("elasticsearch: %w", err)
		}
		c.ES = es
		c.Audit = esinfra.NewAuditLog(es, cfg.ESAuditIndex, logger)
	}

	switch {
	case !cfg.MailSendEnabled:
		c.Mailer = mailer.LogSender{Logger: logger}
	case cfg.MailQueueEnabled:
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		c.Rabbit = pub
		c.onClose(pub.Close)
		c.Mailer = mailer.NewQueueSender(pub)
	default:
		c.Mailer = mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	}

	c.Wire()
	return c, nil
}

// Wire builds services and handlers from the fields already set.
func (c *Container) Wire() {
	cfg := c.Config
	if c.Audit == nil {
		c.Audit = esinfra.NopAudit{}
	}
	if c.Mailer == nil {
		c.Mailer = mailer.LogSender{Logger: c.Logger}
	}

	c.JWT = helpers.NewJWTManager(cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	c.Hasher = helpers.NewPasswordHasher(cfg.BcryptCost)
	c.Cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecureFlag(), cfg.RefreshCookieMaxAge)

	c.Verification = application.NewVerificationService(
		c.Users,
		c.Hasher,
		c.Mailer,
		application.Links{VerifyEmailURL: cfg.VerifyEmailURL, ResetPasswordURL: cfg.ResetPasswordURL},
		tpl.Branding{AppName: cfg.AppName, CompanyName: cfg.CompanyName, SupportURL: cfg.SupportURL},
		cfg.VerificationTTL,
		c.Logger,
		c.Audit,
	)
	c.Auth = application.NewAuthService(c.Users, c.JWT, c.Hasher, c.Verification, c.Avatars, c.Logger, c.Audit)
	c.AuthHandler = handlers.NewAuthHandler(c.Auth, c.Verification, c.Cookies, c.Logger)
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
