package handler

import (
	"net/http"

	"github.com/garasindo/voice-crm-service/internal/callctx"
	"github.com/garasindo/voice-crm-service/internal/config"
	"github.com/garasindo/voice-crm-service/internal/dialogue"
	"github.com/garasindo/voice-crm-service/internal/repository"
	callsvc "github.com/garasindo/voice-crm-service/internal/services/call"
	"github.com/garasindo/voice-crm-service/internal/telephony"
	"github.com/garasindo/voice-crm-service/pkg/logger"
	"github.com/garasindo/voice-crm-service/pkg/redis"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// HandlerManager manages all handlers and their initialization
type HandlerManager struct {
	config      *config.ServiceConfig
	service     *callsvc.Service
	repoManager repository.RepositoryManager
	contexts    callctx.Store
}

// NewHandlerManager creates and initializes all handlers and services
func NewHandlerManager(cfg *config.ServiceConfig) (*HandlerManager, error) {
	// Initialize database connection
	repoManager, err := repository.NewRepositoryManager()
	if err != nil {
		logger.Base().Error("failed to connect to database", zap.Error(err))
		return nil, err
	}

	// Call contexts live in Redis when configured, so any pod can serve a
	// webhook for a call another pod initiated. The in-process store is the
	// single-pod fallback.
	var contexts callctx.Store
	if cfg.RedisHost != "" {
		redisSvc, err := redis.NewRedisService(&redis.RedisConfig{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			logger.Base().Warn("failed to initialize redis, falling back to in-process context store", zap.Error(err))
			contexts = callctx.NewMemoryStore()
		} else {
			contexts = callctx.NewRedisStore(redisSvc, cfg.ContextTTL)
			logger.Base().Info("redis context store initialized",
				zap.String("host", cfg.RedisHost),
				zap.Duration("ttl", cfg.ContextTTL))
		}
	} else {
		contexts = callctx.NewMemoryStore()
		logger.Base().Info("using in-process context store")
	}

	provider := telephony.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken)

	engine := dialogue.NewOpenAIEngine(dialogue.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})

	service := callsvc.NewService(callsvc.Config{
		FromNumber:      cfg.TwilioFromNumber,
		PublicBaseURL:   cfg.PublicBaseURL,
		DialogueTimeout: cfg.DialogueTimeout,
	}, repoManager, contexts, provider, engine)

	return &HandlerManager{
		config:      cfg,
		service:     service,
		repoManager: repoManager,
		contexts:    contexts,
	}, nil
}

// SetupAllRoutes sets up all routes with middleware
func (hm *HandlerManager) SetupAllRoutes(router *mux.Router) {
	// Apply global middleware
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", hm.HealthCheck).Methods("GET")

	// Provider webhooks are registered on the root router: the provider
	// authenticates calls by SID, not by JWT.
	voiceHandler := NewVoiceWebhookHandler(hm.service)
	voiceHandler.SetupVoiceWebhookRoutes(router)

	hm.SetupAPIRoutes(router)

	router.PathPrefix("/api/").HandlerFunc(handleCORSPreflight).Methods("OPTIONS")

	logger.Base().Info("all application routes registered")
}

// SetupAPIRoutes sets up the JSON management API routes and middleware
func (hm *HandlerManager) SetupAPIRoutes(router *mux.Router) {
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.Use(JWTAuthMiddleware(hm.config.JWTSecret))

	crmHandler := NewCRMHandler(hm.repoManager)
	crmHandler.SetupCRMRoutes(apiRouter)

	callHandler := NewCallHandler(hm.service, hm.repoManager)
	callHandler.SetupCallRoutes(apiRouter)

	if hm.config.JWTSecret == "" {
		logger.Base().Warn("AUTH_JWT_SECRET not set, management api is unauthenticated")
	}
}

// HealthCheck reports liveness and database connectivity.
// GET /health
func (hm *HandlerManager) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := hm.repoManager.Ping(r.Context()); err != nil {
		logger.Base().Error("health check failed", zap.Error(err))
		http.Error(w, `{"status": "unhealthy"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}

// GetService exposes the call service for tests and embedding callers.
func (hm *HandlerManager) GetService() *callsvc.Service {
	return hm.service
}
