package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jobhuntboard/jobhuntboard/handlers"
	"github.com/jobhuntboard/jobhuntboard/internal/board/handler"
	"github.com/jobhuntboard/jobhuntboard/internal/board/repository"
	"github.com/jobhuntboard/jobhuntboard/internal/board/service"
	"github.com/jobhuntboard/jobhuntboard/internal/config"
	"github.com/jobhuntboard/jobhuntboard/internal/database"
	"github.com/jobhuntboard/jobhuntboard/internal/identity"
	"github.com/jobhuntboard/jobhuntboard/internal/sessions"
	"github.com/jobhuntboard/jobhuntboard/internal/users"
	"github.com/jobhuntboard/jobhuntboard/pkg/logger"
	"github.com/jobhuntboard/jobhuntboard/pkg/metrics"
	"github.com/jobhuntboard/jobhuntboard/pkg/middleware"
)

var startTime = time.Now()

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: keycloak=%v mongo=%v redis=%v",
		cfg.Keycloak.URL != "", cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// permissive CORS for the dashboard frontend; tighten per deployment
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	ctx := context.Background()

	// Redis backs the local board cache, refresh sessions, the access token
	// blacklist and the optional rate limiter
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("Redis unreachable (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			sessions.SetBlacklistClient(redisClient)
			middleware.RevocationCheck = sessions.IsAccessTokenBlacklisted
			logger.Infof("Connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// local cache store: Redis, or in-process when Redis is down
	var cache repository.Cache
	if redisClient != nil {
		cache = repository.NewRedisCache(redisClient, cfg.Sync.CacheKey)
	} else {
		logger.Warnf("using in-process board cache; edits will not survive restarts while signed out")
		cache = repository.NewMemoryCache()
	}
	store := service.NewStore(ctx, cache)

	// MongoDB backs the per-user remote board record and the user profiles,
	// with a retry loop to tolerate startup races
	var mongoClient *mongo.Client
	var userSvc *users.Service
	var sessionsSvc *sessions.Service
	var remote repository.Remote
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
			mongoClient = nil
		}
	}
	if mongoClient != nil {
		defer func() { _ = mongoClient.Disconnect(ctx) }()
		db := mongoClient.Database(cfg.MongoDB.Database)
		userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")))
		remote = repository.NewMongoRemote(db.Collection("boards"))
		sessionsSvc = sessions.NewService(sessions.NewMongoRepository(db.Collection("sessions")))
	} else {
		logger.Warnf("MongoDB unavailable; board records are kept in memory only")
		remote = repository.NewMemoryRemote()
	}

	// Redis sessions take precedence over the Mongo fallback
	if redisClient != nil {
		sessionsSvc = sessions.NewService(sessions.NewRedisRepository(redisClient, "jobhunt:session:"))
	}

	// sync engine: identity changes drive the Idle/Resolving/Synced lifecycle
	provider := identity.NewProvider()
	syncer := service.NewSyncer(store, remote, cfg.Sync.Debounce)
	provider.Subscribe(syncer.HandleIdentity)

	// OIDC verifier for the protected profile endpoint
	var verifier middleware.Verifier
	if cfg.Keycloak.URL != "" && cfg.Keycloak.ClientID != "" && cfg.Keycloak.Realm != "" {
		issuer := strings.TrimRight(cfg.Keycloak.URL, "/") + "/realms/" + cfg.Keycloak.Realm
		if ver, err := identity.NewVerifier(ctx, issuer, cfg.Keycloak.ClientID); err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifier = ver
		}
	}
	if verifier == nil && strings.EqualFold(strings.TrimSpace(os.Getenv("ALLOW_INSECURE_TOKEN")), "true") {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		verifier = identity.NewInsecureVerifier()
	}

	if userSvc != nil && sessionsSvc != nil {
		h := handlers.NewAuthHandler(cfg, userSvc, sessionsSvc, provider)
		h.Register(r.Group("/"))
	} else {
		logger.Warnf("auth handlers not registered because user/sessions services are unavailable")
	}

	handler.RegisterBoardRoutes(r, store, syncer)
	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{
			"cache":    cache != nil,
			"remote":   mongoClient != nil,
			"sessions": sessionsSvc != nil,
			"users":    userSvc != nil,
		}
		if sessionsSvc == nil {
			ready = false
		}
		if cfg.Keycloak.URL != "" {
			deps["oidc"] = verifier != nil
			if verifier == nil {
				ready = false
			}
		}
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	api := r.Group("/api/v1")
	if verifier != nil {
		api.GET("/me", middleware.AuthMiddleware(verifier), func(c *gin.Context) {
			claims, _ := c.Get("claims")
			if userSvc != nil {
				if cm, ok := claims.(map[string]interface{}); ok {
					if u, err := userSvc.UpsertFromClaims(c.Request.Context(), cm); err == nil && u != nil {
						c.JSON(http.StatusOK, gin.H{"user": u})
						return
					}
				}
			}
			c.JSON(http.StatusOK, gin.H{"claims": claims})
		})
	} else {
		api.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "OIDC not configured"})
		})
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("Starting jobhuntboard service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
