package dependency_container

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/PromptGuard/pkg/app/chat"
	appDecision "github.com/NeuralTrust/PromptGuard/pkg/app/decision"
	"github.com/NeuralTrust/PromptGuard/pkg/app/firewall"
	appSession "github.com/NeuralTrust/PromptGuard/pkg/app/session"
	"github.com/NeuralTrust/PromptGuard/pkg/app/telemetry"
	"github.com/NeuralTrust/PromptGuard/pkg/config"
	"github.com/NeuralTrust/PromptGuard/pkg/domain/decision"
	domainSession "github.com/NeuralTrust/PromptGuard/pkg/domain/session"
	handlers "github.com/NeuralTrust/PromptGuard/pkg/handlers/http"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/channel"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/event"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/cache/subscriber"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/database"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/metrics"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/prompts"
	providersFactory "github.com/NeuralTrust/PromptGuard/pkg/infra/providers/factory"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/redact"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/repository"
	infraTelemetry "github.com/NeuralTrust/PromptGuard/pkg/infra/telemetry"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/telemetry/decisionlog"
	"github.com/NeuralTrust/PromptGuard/pkg/infra/telemetry/kafka"
	"github.com/NeuralTrust/PromptGuard/pkg/middleware"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type Container struct {
	Cache               cache.Client
	RedisListener       cache.EventListener
	RedisPublisher      cache.EventPublisher
	DB                  *database.DB
	Sessions            *cache.TTLMap
	SessionRepository   domainSession.Repository
	DecisionRepository  decision.Repository
	MetricsWorker       metrics.Worker
	Checker             firewall.Checker
	Chatter             chat.Chatter
	HandlerTransport    *handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
	InstanceID          string
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// DB is optional; without it decisions go to the in-memory ring.
	DB *database.DB
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg, logger := di.Cfg, di.Logger
	c := &Container{
		DB:         di.DB,
		InstanceID: uuid.NewString(),
	}

	httpClient := httpx.NewFastHTTPClient(httpClientOptions(cfg)...)
	providerLocator := providersFactory.NewProviderLocator(httpClient)
	promptStore := prompts.NewStore(logger, cfg.Firewall.PromptsDir)

	// tiers
	tier1, err := newTierSettings(logger, "tier1", cfg.Firewall.Tier1, cfg.Firewall.Breaker, providerLocator, promptStore)
	if err != nil {
		return nil, err
	}
	tier2, err := newTierSettings(logger, "tier2", cfg.Firewall.Tier2, cfg.Firewall.Breaker, providerLocator, promptStore)
	if err != nil {
		return nil, err
	}

	// sessions
	policy := domainSession.Policy{
		WindowSize:     cfg.Firewall.Escalation.WindowSize,
		AlertThreshold: cfg.Firewall.Escalation.AlertThreshold,
	}
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid escalation policy: %w", err)
	}
	if err := c.initSessions(cfg, logger, policy); err != nil {
		return nil, err
	}

	// decisions
	if di.DB != nil {
		c.DecisionRepository = repository.NewDecisionRepository(di.DB.DB)
	} else {
		c.DecisionRepository = repository.NewMemoryDecisionRepository(cfg.Telemetry.RingSize)
	}

	// telemetry
	exporterLocator := infraTelemetry.NewExporterLocator(
		infraTelemetry.WithExporter(decisionlog.ExporterName, decisionlog.NewDecisionLogExporter(c.DecisionRepository)),
		infraTelemetry.WithExporter(kafka.ExporterName, kafka.NewKafkaExporter()),
	)
	if err := telemetry.NewTelemetryExportersValidator(exporterLocator).Validate(cfg.Telemetry.Exporters); err != nil {
		return nil, fmt.Errorf("invalid telemetry config: %w", err)
	}
	exporters, err := telemetry.NewTelemetryExportersBuilder(exporterLocator).Build(cfg.Telemetry.Exporters)
	if err != nil {
		return nil, err
	}
	c.MetricsWorker = metrics.NewWorker(logger, exporters, metrics.WithQueueSize(cfg.Telemetry.QueueSize))

	// firewall
	router := firewall.NewRouter(
		logger,
		firewall.NewClassifier(tier1),
		firewall.NewAnalyzer(tier2),
		firewall.WithTier1Timeout(cfg.Firewall.Tier1.Timeout),
		firewall.WithTier2Timeout(cfg.Firewall.Tier2.Timeout),
		firewall.WithRepository(c.SessionRepository),
	)
	var checkerOpts []firewall.CheckerOption
	if cfg.Telemetry.RedactPrompts {
		checkerOpts = append(checkerOpts, firewall.WithPromptRedaction(redact.New().Redact))
	}
	c.Checker = firewall.NewChecker(logger, c.SessionRepository, router, c.MetricsWorker, checkerOpts...)

	var downstream *chat.Downstream
	if cfg.Downstream.Enabled {
		client, err := providerLocator.Get(cfg.Downstream.Provider)
		if err != nil {
			return nil, fmt.Errorf("downstream: %w", err)
		}
		downstream = &chat.Downstream{
			Client:  client,
			Config:  providerConfig(cfg.Downstream.TierConfig),
			Timeout: cfg.Downstream.Timeout,
		}
	}
	c.Chatter = chat.NewChatter(logger, c.Checker, downstream)

	decisionFinder := appDecision.NewFinder(c.DecisionRepository)

	c.HandlerTransport = &handlers.HandlerTransport{
		CheckHandler:           handlers.NewCheckHandler(logger, c.Checker),
		ChatHandler:            handlers.NewChatHandler(logger, c.Chatter),
		GetSessionStatsHandler: handlers.NewGetSessionStatsHandler(logger, appSession.NewStatsFinder(c.SessionRepository)),
		ListDecisionsHandler:   handlers.NewListDecisionsHandler(logger, decisionFinder),
		GetStatsHandler:        handlers.NewGetStatsHandler(logger, decisionFinder),
		GetVersionHandler:      handlers.NewGetVersionHandler(logger),
	}

	c.MiddlewareTransport = &middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(logger),
		CORSGlobalMiddleware: middleware.NewCORSGlobalMiddleware(
			[]string{"*"},
			[]string{"GET", "POST", "OPTIONS"},
			[]string{"X-Session-Id", "X-Request-Id"},
			86400,
		),
		SecurityMiddleware: middleware.NewSecurityMiddleware(),
		SessionMiddleware:  middleware.NewSessionMiddleware(),
	}
	if cfg.Metrics.Enabled {
		c.MiddlewareTransport.MetricsMiddleware = middleware.NewMetricsMiddleware()
	}

	return c, nil
}

func (c *Container) initSessions(cfg *config.Config, logger *logrus.Logger, policy domainSession.Policy) error {
	ttl := cfg.Sessions.TTL
	if ttl <= 0 {
		ttl = repository.DefaultSessionTTL
	}

	if cfg.Sessions.Store != config.SessionStoreRedis {
		c.Sessions = repository.NewSessionMap(repository.SessionStoreConfig{
			TTL:        ttl,
			MaxEntries: cfg.Sessions.MaxEntries,
		})
		c.SessionRepository = repository.NewMemorySessionRepository(c.Sessions, policy)
		return nil
	}

	cacheInstance, err := cache.NewClient(cache.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		TLS:      cfg.Redis.TLS,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	c.Cache = cacheInstance
	c.Sessions = cacheInstance.CreateTTLMap(cache.SessionTTLName, ttl, repository.SessionMapOptions(cfg.Sessions.MaxEntries)...)
	c.RedisPublisher = cache.NewRedisEventPublisher(cacheInstance, channel.SessionEventsChannel)
	c.RedisListener = cache.NewRedisEventListener(logger, cacheInstance, event.Registry)
	cache.RegisterEventSubscriber[event.SessionUpdatedEvent](
		c.RedisListener,
		subscriber.NewSessionUpdatedEventSubscriber(logger, c.Sessions, c.InstanceID),
	)

	c.SessionRepository = repository.NewRedisSessionRepository(repository.RedisSessionRepositoryParams{
		Logger:     logger,
		Cache:      cacheInstance,
		Publisher:  c.RedisPublisher,
		Sessions:   c.Sessions,
		Policy:     policy,
		TTL:        ttl,
		InstanceID: c.InstanceID,
	})
	return nil
}

// Start launches the background parts: the session janitor, the decision
// workers and, with the redis store, the session event listener.
func (c *Container) Start(ctx context.Context, cfg *config.Config) {
	interval := cfg.Sessions.CleanupInterval
	if interval <= 0 {
		interval = time.Minute
	}
	c.Sessions.StartJanitor(ctx, interval)

	workers := cfg.Telemetry.Workers
	if workers <= 0 {
		workers = 1
	}
	c.MetricsWorker.StartWorkers(workers)

	if c.RedisListener != nil {
		go c.RedisListener.Listen(ctx, channel.SessionEventsChannel)
	}
}

func (c *Container) Close() {
	if c.MetricsWorker != nil {
		c.MetricsWorker.Shutdown()
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	if c.Cache != nil {
		_ = c.Cache.RedisClient().Close()
	}
}
