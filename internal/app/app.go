// Package app wires configuration into the repository, storage, recorder and
// HTTP router used by the docserve commands.
package app

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gogotex/docserve/handlers"
	"github.com/gogotex/docserve/internal/config"
	"github.com/gogotex/docserve/internal/database"
	"github.com/gogotex/docserve/internal/document/handler"
	"github.com/gogotex/docserve/internal/document/repository"
	"github.com/gogotex/docserve/internal/document/serve"
	"github.com/gogotex/docserve/internal/document/service"
	"github.com/gogotex/docserve/internal/oidc"
	"github.com/gogotex/docserve/internal/stats"
	"github.com/gogotex/docserve/internal/storage"
	"github.com/gogotex/docserve/pkg/logger"
	"github.com/gogotex/docserve/pkg/metrics"
	"github.com/gogotex/docserve/pkg/middleware"
)

var (
	startTime    = time.Now()
	registerOnce sync.Once
)

// App holds the long-lived dependencies of a running process.
type App struct {
	Config   *config.Config
	Service  *service.Service
	Store    storage.Backend
	Redis    *redis.Client
	Mongo    *mongo.Client
	Verifier middleware.Verifier
}

// Build connects to the configured backends. MongoDB and Redis are optional:
// without MongoDB documents live in memory, without Redis deliveries are not
// counted and rate limiting stays in-process.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	if !cfg.Documents.ServeMethod.Known() {
		logger.Warnf("DOCS_SERVE_METHOD=%q is not recognised; every document request will return 404", string(cfg.Documents.ServeMethod))
	}

	store, err := storage.New(ctx, &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	a.Store = store
	logger.Infof("storage backend: %s", store.Name())
	if cfg.Documents.ServeMethod == serve.MethodUnset && store.Name() == storage.BackendFilesystem && cfg.Storage.BaseURL == "" {
		logger.Warnf("STORAGE_BASE_URL is empty; with DOCS_SERVE_METHOD unset every document request will return 404")
	}

	var rec stats.Recorder = stats.Nop{}
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			_ = client.Close()
		} else {
			a.Redis = client
			rec = stats.NewRedisRecorder(client, "docserve:served:")
			logger.Infof("connected to Redis %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	var repo repository.Repository
	if cfg.MongoDB.URI != "" {
		client, err := connectMongo(ctx, cfg.MongoDB)
		if err != nil {
			logger.Warnf("could not connect to MongoDB, using memory-backed repo: %v", err)
		} else {
			mrepo, err := repository.NewMongoRepo(ctx, client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection))
			if err != nil {
				_ = client.Disconnect(ctx)
				return nil, fmt.Errorf("mongo index: %w", err)
			}
			a.Mongo = client
			repo = mrepo
		}
	}
	if repo == nil {
		repo = repository.NewMemoryRepo()
	}

	a.Verifier = buildVerifier(ctx, cfg.Keycloak)

	a.Service = service.New(repo, store, rec, service.Options{
		ServeMethod:        cfg.Documents.ServeMethod,
		InlineContentTypes: cfg.Documents.InlineContentTypes,
	})
	return a, nil
}

// connectMongo retries with backoff to tolerate startup races.
func connectMongo(ctx context.Context, cfg config.MongoDBConfig) (*mongo.Client, error) {
	const maxAttempts = 5
	backoff := time.Second
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		client, err := database.ConnectMongo(ctx, cfg.URI, cfg.Timeout)
		if err == nil {
			return client, nil
		}
		lastErr = err
		logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, err)
		if attempt < maxAttempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}

func buildVerifier(ctx context.Context, kc config.KeycloakConfig) middleware.Verifier {
	if kc.URL != "" && kc.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, oidc.IssuerURL(kc.URL, kc.Realm), kc.ClientID)
		if err == nil {
			return ver
		}
		logger.Warnf("failed to initialize OIDC verifier: %v", err)
	}
	if kc.AllowInsecure {
		logger.Warn("enabling insecure token verifier (integration mode)")
		return oidc.NewInsecureVerifier()
	}
	return nil
}

// Router builds the gin engine with every route and middleware.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if a.Config.RateLimit.Enabled {
		rl := a.Config.RateLimit
		if rl.UseRedis && a.Redis != nil {
			r.Use(middleware.RedisRateLimitMiddleware(a.Redis, rl.RPS, rl.Burst, time.Duration(rl.WindowSeconds)*time.Second))
		} else {
			r.Use(middleware.RateLimitMiddleware(rl.RPS, rl.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})
	r.GET("/ready", a.ready)

	var auth gin.HandlerFunc
	if a.Verifier != nil {
		auth = middleware.AuthMiddleware(a.Verifier)
	} else {
		logger.Warnf("no token verifier configured; management API is unauthenticated")
	}
	handler.RegisterDocumentRoutes(r, a.Service, handler.Options{
		BlockEmbeddedContent: a.Config.Documents.BlockEmbeddedContent,
		Auth:                 auth,
	})
	handlers.RegisterSwagger(r)

	registerOnce.Do(func() { metrics.RegisterCollectors(prometheus.DefaultRegisterer) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// ready returns 200 only when every configured dependency is reachable.
func (a *App) ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	ready := true
	deps := map[string]bool{"storage": a.Store != nil}
	if a.Config.MongoDB.URI != "" {
		deps["mongo"] = a.Mongo != nil && a.Mongo.Ping(ctx, nil) == nil
	}
	if a.Config.Redis.Host != "" {
		deps["redis"] = a.Redis != nil && a.Redis.Ping(ctx).Err() == nil
	}
	if a.Config.Keycloak.URL != "" {
		deps["oidc"] = a.Verifier != nil
	}
	for _, ok := range deps {
		ready = ready && ok
	}

	uptime := time.Since(startTime).String()
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
}

// Close releases backend connections.
func (a *App) Close(ctx context.Context) {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Mongo != nil {
		_ = a.Mongo.Disconnect(ctx)
	}
}
