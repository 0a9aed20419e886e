package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "chatbot/docs"
	"chatbot/internal/ai"
	"chatbot/internal/config"
	"chatbot/internal/handler"
	authHandler "chatbot/internal/handler/auth"
	chatHandler "chatbot/internal/handler/chat"
	"chatbot/internal/pkg/cache"
	"chatbot/internal/pkg/mongodb"
	"chatbot/internal/repository"
	authRepo "chatbot/internal/repository/auth"
	"chatbot/internal/repository/memory"
	"chatbot/internal/server/middleware"
	"chatbot/internal/service"
)

const (
	defaultJWTSecret   = "default-secret-key-change-in-production"
	defaultTokenExpiry = 24 * time.Hour
	threadTTL          = 30 * 24 * time.Hour
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache

	adapter   ai.Adapter
	storeKind string
	chatSvc   service.ChatService
	authSvc   *service.AuthService
}

// New 创建服务器实例
// MongoDB 与 Redis 均为可选：未配置或连接失败时分别退化为内存存储和无缓存
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	srv := &Server{
		cfg:    cfg,
		engine: gin.New(),
	}

	// 初始化 MongoDB (可选)
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, falling back to in-memory store")
		} else {
			srv.mongo = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			if err := mongodb.EnsureIndexes(client.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选)
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			srv.redis = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	if err := srv.initServices(context.Background()); err != nil {
		srv.closeClients(context.Background())
		return nil, err
	}

	srv.setupRoutes()
	return srv, nil
}

// initServices 组装存储、适配器与服务
func (s *Server) initServices(ctx context.Context) error {
	var (
		convStore repository.ConversationStore
		userStore authRepo.UserStore
		threads   ai.ThreadStore
	)

	if s.mongo != nil {
		s.storeKind = "mongo"
		convStore = repository.NewConversationRepo(s.mongo.Database())
		userStore = authRepo.NewUserRepo(s.mongo.Database())
	} else {
		s.storeKind = "memory"
		convStore = memory.NewConversationStore()
		userStore = memory.NewUserStore()
		log.Warn().Msg("MongoDB not configured, data will not survive restart")
	}

	if s.redis != nil {
		convStore = repository.NewCachedConversationStore(convStore, s.redis)
		threads = ai.NewRedisThreadStore(s.redis.Client(), threadTTL)
	} else {
		threads = ai.NewMemoryThreadStore()
	}

	adapter, err := ai.NewAdapter(ctx, &s.cfg.AI, threads)
	if err != nil {
		return err
	}
	s.adapter = adapter

	poller := ai.NewPoller(s.cfg.Chat.MaxPollAttempts, s.cfg.Chat.PollInterval)
	s.chatSvc = service.NewChatService(convStore, adapter, poller, s.cfg.Chat.SendTimeout)

	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = defaultJWTSecret
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}
	tokenExpiry := s.cfg.Auth.TokenExpiry
	if tokenExpiry == 0 {
		tokenExpiry = defaultTokenExpiry
	}
	s.authSvc = service.NewAuthService(userStore, jwtSecret, tokenExpiry)

	// 内存模式下没有持久化的账号，启动时写入测试账号
	if s.mongo == nil {
		if _, _, err := service.SeedTestUser(ctx, s.authSvc); err != nil {
			return err
		}
		log.Info().Str("email", service.SeedUserEmail).Msg("seeded test user into in-memory store")
	}

	log.Info().
		Str("ai_mode", string(adapter.Mode())).
		Str("store", s.storeKind).
		Bool("cache", s.redis != nil).
		Dur("poll_interval", poller.Interval).
		Int("max_poll_attempts", poller.MaxAttempts).
		Msg("chat services initialized")

	return nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS(s.cfg.CORS.AllowOrigins))

	s.engine.GET("/", handler.Home)
	s.engine.NoRoute(handler.NotFound)

	// 健康检查
	deps := make(map[string]handler.Pinger)
	if s.mongo != nil {
		deps["mongo"] = s.mongo
	}
	if s.redis != nil {
		deps["redis"] = s.redis
	}
	healthHandler := handler.NewHealthHandler(string(s.adapter.Mode()), s.storeKind, deps)
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	requireAuth := middleware.Auth(s.authSvc, s.cookieName())
	authHdl := authHandler.NewHandler(s.authSvc, s.cfg.Auth)
	chatHdl := chatHandler.NewHandler(s.chatSvc)

	api := s.engine.Group("/api")
	{
		// 认证接口（公开）
		api.POST("/auth/login", authHdl.Login)
		api.POST("/auth/logout", authHdl.Logout)

		api.GET("/dashboard/home", requireAuth, authHdl.Dashboard)

		chat := api.Group("/chat", requireAuth)
		{
			chat.POST("/conversation", chatHdl.CreateConversation)
			chat.GET("/conversations", chatHdl.ListConversations)
			chat.POST("/conversation/:id/message", chatHdl.SendMessage)
			chat.GET("/conversation/:id/messages", chatHdl.ListMessages)
		}
	}
}

func (s *Server) cookieName() string {
	if s.cfg.Auth.CookieName == "" {
		return "token"
	}
	return s.cfg.Auth.CookieName
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.closeClients(shutdownCtx)
		return err
	case err := <-errCh:
		s.closeClients(context.Background())
		return err
	}
}

// closeClients 关闭外部连接
func (s *Server) closeClients(ctx context.Context) {
	if s.mongo != nil {
		if err := s.mongo.Close(ctx); err != nil {
			log.Error().Err(err).Msg("failed to close MongoDB connection")
		}
	}
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close Redis connection")
		}
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
