package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/troikatech/call-bridge/internal/api/handlers"
	"github.com/troikatech/call-bridge/internal/engagement"
	"github.com/troikatech/call-bridge/internal/routing"
	"github.com/troikatech/call-bridge/pkg/env"
	"github.com/troikatech/call-bridge/pkg/hubspot"
	"github.com/troikatech/call-bridge/pkg/logger"
	"github.com/troikatech/call-bridge/pkg/middleware"
	"github.com/troikatech/call-bridge/pkg/mongo"
	"github.com/troikatech/call-bridge/pkg/otel"
	"github.com/troikatech/call-bridge/pkg/twilio"
)

type server struct {
	cfg     *env.Config
	handler *handlers.Handler
}

func main() {
	cfg, err := env.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.LogLevel, cfg.AppEnv); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if cfg.OTELEnabled {
		shutdown, err := otel.InitTracing("call-bridge", "1.0.0", cfg.OTELEndpoint)
		if err != nil {
			logger.Log.Warn("Failed to initialize OpenTelemetry", zap.Error(err))
		} else {
			defer shutdown()
			logger.Log.Info("OpenTelemetry tracing enabled", zap.String("endpoint", cfg.OTELEndpoint))
		}
	}

	logger.Log.Info("Starting Call Bridge",
		zap.String("env", cfg.AppEnv),
		zap.String("port", cfg.AppPort),
	)

	// Redis backs engagement deduplication and is required
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Log.Fatal("Failed to parse Redis URL", zap.Error(err))
	}
	redisClient := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	// MongoDB is optional: when configured it contributes agents to the
	// directory alongside the AGENT_DIRECTORY env entries
	var mongoClient *mongo.Client
	if cfg.MongoURI != "" {
		mongoClient, err = mongo.NewClient(cfg.MongoURI, cfg.DBName)
		if err != nil {
			logger.Log.Fatal("Failed to connect to MongoDB", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(ctx); err != nil {
				logger.Log.Warn("Failed to disconnect MongoDB", zap.Error(err))
			}
		}()
	}

	directory, err := buildDirectory(ctx, cfg, mongoClient)
	if err != nil {
		logger.Log.Fatal("Invalid agent directory", zap.Error(err))
	}
	if directory.Len() == 0 {
		logger.Log.Warn("Agent directory is empty, every call will be unroutable")
	}
	logger.Log.Info("Agent directory loaded", zap.Int("agents", directory.Len()))

	twilioClient := twilio.NewClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	hubspotClient := hubspot.NewClient(
		cfg.HubSpotBaseURL,
		cfg.HubSpotAccessToken,
		time.Duration(cfg.HubSpotTimeoutMs)*time.Millisecond,
		logger.Log,
	)
	if !hubspotClient.IsConfigured() {
		logger.Log.Warn("HubSpot access token not configured, calls will not be logged to the CRM")
	}

	recorder := engagement.NewRecorder(
		hubspotClient,
		engagement.NewRedisDedup(redisClient),
		logger.Log,
	)

	handler := handlers.NewHandler(cfg, directory, recorder, twilioClient, hubspotClient, redisClient, mongoClient, logger.Log)

	s := &server{cfg: cfg, handler: handler}
	router := s.setupRouter()

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Log.Info("Call Bridge listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exited")
}

// buildDirectory merges the env-configured agents with the optional
// "agents" collection. Env entries win on conflict so a bad database row
// can always be overridden without a deploy.
func buildDirectory(ctx context.Context, cfg *env.Config, mongoClient *mongo.Client) (*routing.Directory, error) {
	entries := make(map[string]string)

	if mongoClient != nil {
		rows, err := mongoClient.NewQuery("agents").
			Select("identity", "caller_number").
			Eq("enabled", true).
			Find(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load agents collection: %w", err)
		}
		for _, row := range rows {
			identity, _ := row["identity"].(string)
			number, _ := row["caller_number"].(string)
			if identity != "" && number != "" {
				entries[identity] = number
			}
		}
	}

	envEntries, err := routing.ParseDirectorySpec(cfg.AgentDirectory)
	if err != nil {
		return nil, err
	}
	for identity, number := range envEntries {
		entries[identity] = number
	}

	return routing.NewDirectory(entries)
}

func (s *server) setupRouter() *gin.Engine {
	if s.cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceMiddleware())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestSizeLimit(1 << 20)) // 1 MB limit

	if s.cfg.OTELEnabled {
		router.Use(otel.GinMiddleware())
	}

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		return fmt.Sprintf("[%s] %s %s %d %s\n",
			param.TimeStamp.Format(time.RFC3339),
			param.Method,
			param.Path,
			param.StatusCode,
			param.Latency,
		)
	}))

	// CORS for the CRM-embedded softphone widget
	corsConfig := cors.DefaultConfig()
	if s.cfg.CORSAllowedOrigins == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = strings.Split(s.cfg.CORSAllowedOrigins, ",")
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/ping", s.handler.Ping)
	router.GET("/health", s.handler.Health)
	router.GET("/metrics", s.handler.GetMetrics)
	router.GET("/metrics/prometheus", s.handler.GetPrometheusMetrics)

	// Softphone endpoints, called from the CRM widget
	router.GET("/token", s.handler.Token)
	router.POST("/click-to-call", s.handler.ClickToCall)

	// Telephony platform webhooks (public, signature verified)
	router.POST("/voice", s.handler.Voice)
	router.POST("/call-status", s.handler.CallStatus)
	router.POST("/recording-callback", s.handler.RecordingCallback)

	return router
}
