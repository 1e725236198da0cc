package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/docvault/docvault/handlers"
	"github.com/docvault/docvault/internal/categories"
	"github.com/docvault/docvault/internal/config"
	"github.com/docvault/docvault/internal/database"
	"github.com/docvault/docvault/internal/document/handler"
	"github.com/docvault/docvault/internal/document/service"
	"github.com/docvault/docvault/internal/storage"
	"github.com/docvault/docvault/internal/store"
	"github.com/docvault/docvault/internal/users"
	"github.com/docvault/docvault/pkg/logger"
	"github.com/docvault/docvault/pkg/metrics"
	"github.com/docvault/docvault/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: backend=%s mongo=%v redis=%v", cfg.Store.Backend, cfg.MongoDB.URI != "", cfg.Redis.Host != "")

	r := gin.New()

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	// (Keep this intentionally simple — production should use a stricter policy.)
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	})

	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())

	ctx := context.Background()

	// Connect to Redis early so the rate-limiter can use it when configured
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		} else {
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	// Optional global per-IP rate limiter
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	// Record store: pick the backend from config. Object and wide-column
	// backends are remote; their construction can fail at startup.
	var backend store.Backend
	var minioStorage *storage.MinIOStorage
	switch cfg.Store.Backend {
	case config.BackendFile:
		backend = store.NewFileBackend(cfg.Store.FilePath)
	case config.BackendObject:
		minioStorage, err = storage.NewMinIOStorage(storage.LoadMinIOConfig())
		if err != nil {
			logger.Fatalf("failed to initialize object storage: %v", err)
		}
		backend = store.NewObjectBackend(minioStorage.Object(cfg.Store.ObjectKey), cfg.Store.CachePath)
	case config.BackendWideColumn:
		// Retry/backoff to tolerate startup races with the database container
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
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
			logger.Fatalf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		}
		defer func() { _ = client.Disconnect(ctx) }()
		backend = store.NewWideColumnBackend(store.NewMongoRow(database.DumpCollection(client, cfg.MongoDB)))
	}
	st := store.Open(backend, cfg.Store.Timeout)
	logger.Infof("record store opened: backend=%s", backend.Name())

	// Rebuild the in-memory search index from the store before serving.
	// A failure here means search results could silently miss documents,
	// so it is fatal.
	idx, err := service.Rehydrate(ctx, st)
	if err != nil {
		logger.Fatalf("failed to rehydrate search index: %v", err)
	}
	logger.Infof("search index rehydrated: users=%d", len(idx.Users()))

	docSvc := service.New(st, idx)
	userSvc := users.NewService(st)
	catSvc := categories.NewService(st)

	// Uploaded file content goes to MinIO regardless of the record store
	// backend. When MinIO is unreachable the upload endpoint still records
	// and indexes documents, it just skips blob persistence.
	var blobs handler.BlobStore
	if minioStorage == nil {
		if ms, err := storage.NewMinIOStorage(storage.LoadMinIOConfig()); err != nil {
			logger.Warnf("blob storage unavailable, uploads will not be persisted: %v", err)
		} else {
			blobs = ms
		}
	} else {
		blobs = minioStorage
	}

	handler.RegisterDocumentRoutes(r, docSvc, blobs)
	handlers.RegisterUserRoutes(r, userSvc)
	handlers.RegisterCategoryRoutes(r, catSvc)
	handlers.RegisterSwagger(r)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when the store answers and (when rate limiting
	// depends on it) Redis is reachable
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		if _, err := st.Table("documents").All(c.Request.Context()); err != nil {
			deps["store"] = false
			ready = false
		} else {
			deps["store"] = true
		}

		if cfg.RateLimit.Enabled && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil && redisClient.Ping(c.Request.Context()).Err() == nil
			if !deps["redis"] {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting docvault on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
