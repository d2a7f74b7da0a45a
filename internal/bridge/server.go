package bridge

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/chat"
	"github.com/GriffinCanCode/BizMate/core/internal/client"
	"github.com/GriffinCanCode/BizMate/core/internal/content"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/config"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/resilience"
	"github.com/GriffinCanCode/BizMate/core/internal/profile"
	"github.com/GriffinCanCode/BizMate/core/internal/schedule"
	"github.com/GriffinCanCode/BizMate/core/internal/session"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// LoginPath is where the UI sends users whose session ended.
const LoginPath = "/auth/login"

// Options configures a Server.
type Options struct {
	Config *config.Config
	Logger *logging.Logger
	// Registry collects metrics. A fresh registry is used when nil.
	Registry *prometheus.Registry
	// Store overrides the store built from Config.Session.
	Store *session.Store
}

// Server wraps the HTTP server and dependencies
type Server struct {
	cfg       *config.Config
	logger    *logging.Logger
	registry  *prometheus.Registry
	metrics   *monitoring.Metrics
	store     *session.Store
	api       *client.Client
	hub       *Hub
	sanitizer *bluemonday.Policy
	router    *gin.Engine
	http      *http.Server

	profile *profile.Workflow
	board   *schedule.Board

	mu          sync.RWMutex
	chat        *chat.Session
	content     *content.Workflow
	unsubscribe func()
}

// New creates a new server instance
func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.OrNop(opts.Logger)

	registry := opts.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	metrics := monitoring.New(registry)

	store := opts.Store
	if store == nil {
		var err error
		store, err = NewStore(cfg.Session, logger, metrics)
		if err != nil {
			return nil, err
		}
	}

	breaker := NewBreakerFromConfig(cfg.Breaker, logger, metrics)
	api := client.New(store, client.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		UserAgent:         cfg.API.UserAgent,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Breaker:           breaker,
		Logger:            logger,
		Metrics:           metrics,
	})

	s := &Server{
		cfg:       cfg,
		logger:    logger.Named("bridge"),
		registry:  registry,
		metrics:   metrics,
		store:     store,
		api:       api,
		hub:       NewHub(cfg.Bridge.AllowOrigins, logger, metrics),
		sanitizer: newSanitizer(cfg.Bridge.Sanitize),
	}
	s.profile = profile.New(api, profile.Options{
		Session:    store,
		OnRedirect: s.redirect,
		Logger:     logger,
		Metrics:    metrics,
	})
	s.board = schedule.New(api, schedule.Options{
		Platform:   cfg.Content.Platform,
		Session:    store,
		OnRedirect: s.redirect,
		Logger:     logger,
		Metrics:    metrics,
	})
	s.chat, s.content = s.newScreens()
	s.unsubscribe = store.Subscribe(s.onSessionEvent)

	s.router = s.routes(cfg, logger)
	s.http = &http.Server{
		Addr:              cfg.BridgeAddr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.logger.Info("Bridge initialized",
		zap.String("api", cfg.API.BaseURL),
		zap.String("session_backend", cfg.Session.Backend),
		zap.Bool("breaker", cfg.Breaker.Enabled))
	return s, nil
}

// NewStore builds the session store selected by cfg.
func NewStore(cfg config.SessionConfig, logger *logging.Logger, metrics *monitoring.Metrics) (*session.Store, error) {
	var backend session.Backend
	switch cfg.Backend {
	case config.SessionBackendMemory, "":
		backend = session.NewMemoryBackend()
	case config.SessionBackendFile:
		backend = session.NewFileBackend(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
	return session.NewStore(session.Options{Backend: backend, Logger: logger, Metrics: metrics}), nil
}

// NewBreakerFromConfig returns nil when the breaker is disabled.
func NewBreakerFromConfig(cfg config.BreakerConfig, logger *logging.Logger, metrics *monitoring.Metrics) *resilience.Breaker {
	if !cfg.Enabled {
		return nil
	}
	return client.NewBreaker(cfg.ConsecutiveFailures, cfg.Timeout, logger, metrics)
}

func (s *Server) routes(cfg *config.Config, logger *logging.Logger) *gin.Engine {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(AccessLog(logger))
	router.Use(monitoring.Middleware(s.metrics))
	router.Use(CORS(CORSConfigFor(cfg.Bridge.AllowOrigins)))
	if cfg.RateLimit.Enabled {
		s.logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst))
		router.Use(RateLimit(RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	router.GET("/health", s.health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))
	router.GET("/ws", s.hub.HandleConnection)

	api := router.Group("/api")

	// Session
	api.POST("/session/login", s.login)
	api.POST("/session/signup", s.signup)
	api.POST("/session/logout", s.logout)
	api.GET("/session", s.sessionStatus)

	// Business profile
	api.GET("/profile", s.getProfile)
	api.POST("/profile", s.saveProfile)

	// Chat
	api.GET("/chat", s.getChat)
	api.POST("/chat", s.sendChat)

	// Marketing content
	api.GET("/content", s.getContent)
	api.POST("/content/generate", s.generateContent)
	api.POST("/content/save", s.saveContent)

	// Scheduler
	api.GET("/posts", s.listPosts)
	api.POST("/posts", s.createPost)
	api.DELETE("/posts/:id", s.deletePost)
	api.POST("/posts/:id/publish", s.publishPost)
	api.POST("/drafts", s.draftPost)
	api.GET("/history", s.postHistory)

	return router
}

func (s *Server) newScreens() (*chat.Session, *content.Workflow) {
	chatSession := chat.New(s.api, chat.Options{
		Platform:   s.cfg.Chat.Platform,
		Greeting:   s.cfg.Chat.Greeting,
		Session:    s.store,
		OnRedirect: s.redirect,
		Logger:     s.logger,
		Metrics:    s.metrics,
	})
	contentWorkflow := content.New(s.api, content.Options{
		Platform:       s.cfg.Content.Platform,
		SchedulePolicy: content.SchedulePolicy(s.cfg.Content.ScheduleDefault),
		Session:        s.store,
		OnRedirect:     s.redirect,
		Logger:         s.logger,
		Metrics:        s.metrics,
	})
	return chatSession, contentWorkflow
}

// onSessionEvent starts fresh chat and content screens for every new
// session and tells connected UIs about the change.
func (s *Server) onSessionEvent(e session.Event) {
	if e == session.EventSet {
		chatSession, contentWorkflow := s.newScreens()
		s.mu.Lock()
		oldChat, oldContent := s.chat, s.content
		s.chat, s.content = chatSession, contentWorkflow
		s.mu.Unlock()
		oldChat.Close()
		oldContent.Close()
	}
	s.hub.Broadcast(Event{Type: EventSession, Session: e.String()})
}

func (s *Server) redirect(workflow string) {
	s.hub.Broadcast(Event{Type: EventRedirect, Workflow: workflow, Redirect: LoginPath})
}

func (s *Server) currentChat() *chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chat
}

func (s *Server) currentContent() *content.Workflow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until Shutdown is called.
func (s *Server) Run() error {
	s.logger.Info("Starting bridge", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones and closes
// the workflows.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down bridge...")
	err := s.http.Shutdown(ctx)
	s.Close()
	return err
}

// Close releases the workflows and websocket connections.
func (s *Server) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.mu.Lock()
	chatSession, contentWorkflow := s.chat, s.content
	s.mu.Unlock()
	chatSession.Close()
	contentWorkflow.Close()
	s.profile.Close()
	s.board.Close()
	s.hub.Close()
}

func (s *Server) health(c *gin.Context) {
	_, authenticated := s.store.Get()
	c.JSON(http.StatusOK, gin.H{
		"status":        "healthy",
		"authenticated": authenticated,
		"ws_clients":    s.hub.Count(),
	})
}
