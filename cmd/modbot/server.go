package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/cachestore"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/command"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/docstore"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/engine"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/groups"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/keyword"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/ledger"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/oracle"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/automod/setstore"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/transport/telegram"
	"github.com/Sidhanth-Mandal/Whatsapp-Content-Classification-and-Moderation-Bot/util/cliutil"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

// Source of inbound chat messages. Listen blocks until ctx is done.
type Listener interface {
	Listen(ctx context.Context, handle func(ctx context.Context, in *automod.Inbound) error) error
}

type Server struct {
	logger          *slog.Logger
	listener        Listener
	queue           *engine.Queue
	engine          *engine.Engine
	router          *engine.Router
	shutdownTimeout time.Duration
}

type Config struct {
	Logger           *slog.Logger
	TelegramToken    string
	OracleAPIKey     string
	OracleBaseURL    string
	OracleModel      string
	OracleTimeout    time.Duration
	Spacing          time.Duration
	SetsFileJSON     string
	StatsPath        string
	GroupsPath       string
	RedisURL         string
	DatabaseURL      string
	MaxDBConnections int
	DBTracing        bool
	AdminCacheTTL    time.Duration
	SlackWebhookURL  string
	ShutdownTimeout  time.Duration
}

func NewServer(ctx context.Context, config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tr, err := telegram.NewTransport(ctx, config.TelegramToken, logger)
	if err != nil {
		return nil, fmt.Errorf("connecting to telegram: %w", err)
	}
	return buildServer(ctx, config, tr, tr)
}

func loadDenylist(ctx context.Context, setsFileJSON string) (*keyword.Denylist, error) {
	sets := setstore.NewMemSetStore()
	if setsFileJSON != "" {
		if err := sets.LoadFromFileJSON(setsFileJSON); err != nil {
			return nil, fmt.Errorf("initializing in-process setstore: %w", err)
		}
		slog.Info("loaded set config from JSON", "path", setsFileJSON)
	}
	return oracle.LoadDenylist(ctx, sets, oracle.DenylistSetName)
}

// Wires every component around the given transport. Split out of NewServer so tests can supply a mock transport.
func buildServer(ctx context.Context, config Config, transport automod.Transport, listener Listener) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var statsDocs, groupDocs docstore.DocStore
	var cache cachestore.CacheStore
	if config.RedisURL != "" {
		sd, err := docstore.NewRedisDocStore(config.RedisURL, "user_stats")
		if err != nil {
			return nil, fmt.Errorf("initializing redis stats docstore: %w", err)
		}
		statsDocs = sd
		gd, err := docstore.NewRedisDocStore(config.RedisURL, "enabled_groups")
		if err != nil {
			return nil, fmt.Errorf("initializing redis groups docstore: %w", err)
		}
		groupDocs = gd
		csh, err := cachestore.NewRedisCacheStore(config.RedisURL, config.AdminCacheTTL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %w", err)
		}
		cache = csh
	} else {
		sd, err := docstore.NewFileDocStore(config.StatsPath)
		if err != nil {
			return nil, fmt.Errorf("initializing stats file: %w", err)
		}
		statsDocs = sd
		gd, err := docstore.NewFileDocStore(config.GroupsPath)
		if err != nil {
			return nil, fmt.Errorf("initializing groups file: %w", err)
		}
		groupDocs = gd
		cache = cachestore.NewMemCacheStore(1_000, config.AdminCacheTTL)
	}

	led, err := ledger.New(ctx, statsDocs, logger)
	if err != nil {
		return nil, err
	}

	var registry groups.Registry
	if config.DatabaseURL != "" {
		db, err := cliutil.SetupDatabase(config.DatabaseURL, cliutil.DatabaseOptions{
			MaxConnections: config.MaxDBConnections,
			Tracing:        config.DBTracing,
			Logger:         logger,
		})
		if err != nil {
			return nil, err
		}
		gr, err := groups.NewGormRegistry(db)
		if err != nil {
			return nil, fmt.Errorf("initializing group registry: %w", err)
		}
		registry = gr
	} else {
		dr, err := groups.NewDocRegistry(ctx, groupDocs, logger)
		if err != nil {
			return nil, fmt.Errorf("initializing group registry: %w", err)
		}
		registry = dr
	}

	dl, err := loadDenylist(ctx, config.SetsFileJSON)
	if err != nil {
		return nil, err
	}
	if config.OracleAPIKey == "" {
		logger.Warn("no oracle API key configured, classifications will be degraded")
	}
	adapter := &oracle.Adapter{
		Completer: oracle.NewOpenAIClient(oracle.ClientConfig{
			APIKey:  config.OracleAPIKey,
			BaseURL: config.OracleBaseURL,
			Model:   config.OracleModel,
			Logger:  logger,
		}),
		Denylist: dl,
		Timeout:  config.OracleTimeout,
		Logger:   logger.With("component", "oracle"),
	}

	queue := engine.NewQueue(adapter, engine.QueueConfig{
		Spacing: config.Spacing,
		Logger:  logger,
	})

	eng := &engine.Engine{
		Logger:    logger.With("component", "engine"),
		Transport: transport,
		Ledger:    led,
	}
	if config.SlackWebhookURL != "" {
		logger.Info("configuring slack operator alerts")
		eng.Notifier = engine.NewSlackNotifier(config.SlackWebhookURL, logger)
	}

	admins := &command.AdminChecker{
		Transport: transport,
		Cache:     cache,
		Logger:    logger.With("component", "admins"),
	}
	handler := command.NewHandler(logger, transport, led, registry, admins)

	router := &engine.Router{
		Logger:   logger.With("component", "router"),
		Groups:   registry,
		Commands: handler,
		Queue:    queue,
	}

	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}

	return &Server{
		logger:          logger,
		listener:        listener,
		queue:           queue,
		engine:          eng,
		router:          router,
		shutdownTimeout: shutdownTimeout,
	}, nil
}

func (s *Server) RunMetrics(listen string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, mux)
}

func (s *Server) handleInbound(ctx context.Context, in *automod.Inbound) error {
	ctx, span := tracer.Start(ctx, "handleInbound")
	defer span.End()

	messagesReceived.Inc()
	route, err := s.router.Route(ctx, in)
	if err != nil {
		messagesFailed.Inc()
		return err
	}
	s.logger.Debug("routed message", "chat", in.ChatID, "message", in.MessageID, "route", route)
	return nil
}

// Receives and moderates messages until SIGINT/SIGTERM or ctx is done.
//
// On shutdown the listener stops first, then queued messages are drained (up to the shutdown timeout) and their outcomes applied before returning.
func (s *Server) Run(ctx context.Context) error {
	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var g errgroup.Group

	g.Go(func() error {
		// keeps consuming after the signal; returns when the queue closes the outcome channel
		return s.engine.Run(context.WithoutCancel(ctx), s.queue.Outcomes())
	})

	g.Go(func() error {
		lerr := s.listener.Listen(sigCtx, s.handleInbound)
		s.logger.Info("stopped receiving messages, draining queue", "pending", s.queue.Len())

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
		defer cancel()
		if err := s.queue.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("queue did not drain before shutdown timeout, pending messages dropped", "err", err)
		}

		if lerr != nil && !errors.Is(lerr, context.Canceled) {
			return lerr
		}
		return nil
	})

	return g.Wait()
}
