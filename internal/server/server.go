package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/beduldjakurra/stockproduksi/internal/api"
	"github.com/beduldjakurra/stockproduksi/internal/config"
	"github.com/beduldjakurra/stockproduksi/internal/exporter"
	"github.com/beduldjakurra/stockproduksi/internal/importer"
	"github.com/beduldjakurra/stockproduksi/internal/service/session"
	prodstore "github.com/beduldjakurra/stockproduksi/internal/service/store"
	"github.com/beduldjakurra/stockproduksi/internal/store"
	"github.com/beduldjakurra/stockproduksi/internal/swcache"
	"github.com/beduldjakurra/stockproduksi/internal/syncer"
)

//go:embed all:web
var staticFiles embed.FS

// Server is the HTTP server plus the background workers it owns.
type Server struct {
	router   *gin.Engine
	log      *zap.Logger
	db       *store.Store
	sessions *session.Manager
	sync     *syncer.Syncer
	cache    *swcache.Worker
	lists    swcache.InstallLists

	cancel context.CancelFunc
}

// NewServer wires the whole application from configuration.
func NewServer(cfg *config.AppConfig, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("menyiapkan direktori data: %w", err)
	}

	db, err := store.New(filepath.Join(dataDir, "sto.db"))
	if err != nil {
		return nil, fmt.Errorf("membuka database: %w", err)
	}

	production := prodstore.New()
	sessions, err := session.NewManager(filepath.Join(dataDir, "sessions"), production, log)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("memuat sesi: %w", err)
	}

	sync := syncer.New(db, sessions, log, syncer.Options{
		Interval:     cfg.SyncInterval(),
		RetryBackoff: cfg.RetryBackoff(),
	})

	exp := exporter.NewExporter(filepath.Join(dataDir, "exports"), log)
	imp := importer.NewImporter(production, log)

	shell, err := fs.Sub(staticFiles, "web")
	if err != nil {
		db.Close()
		return nil, err
	}
	cacheWorker := swcache.NewWorker(cfg.Cache.Version, swcache.NewRegistry(), embedFetcher(shell))

	s := &Server{
		router:   gin.New(),
		log:      log,
		db:       db,
		sessions: sessions,
		sync:     sync,
		cache:    cacheWorker,
		lists: swcache.InstallLists{
			Static:   cfg.Cache.StaticAssets,
			External: cfg.Cache.ExternalAssets,
			Icons:    cfg.Cache.Icons,
		},
	}

	handler := api.NewHandler(sessions, production, sync, exp, imp, log)
	s.setupRoutes(handler, cfg.Server.DevMode)
	return s, nil
}

func (s *Server) setupRoutes(handler *api.Handler, devMode bool) {
	s.router.Use(gin.Recovery())

	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		handler.RegisterRoutes(apiGroup)
	}

	if devMode {
		// Dev mode proxies the shell to the frontend dev server.
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:3000"+c.Request.URL.Path)
		})
		return
	}

	// Everything else goes through the versioned cache worker, the same
	// install/activate/fetch lifecycle the PWA ran in the browser.
	s.router.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Status(http.StatusMethodNotAllowed)
			return
		}
		path := c.Request.URL.Path
		res, err := s.cache.Do(c.Request.Context(), path)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if !res.OK() && res.ContentType == "" {
			c.Data(res.Status, "text/plain; charset=utf-8", res.Body)
			return
		}
		c.Data(res.Status, res.ContentType, res.Body)
	})
}

// Start launches the cache worker and the background sync loop.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.cache.Run(ctx, s.lists)
	go s.drainCacheEvents(ctx)
	go s.sync.Run(ctx)
}

func (s *Server) drainCacheEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-s.cache.Events():
			switch e.Type {
			case swcache.EventInstallSkip:
				s.log.Warn("cache install skipped resource", zap.String("url", e.URL))
			case swcache.EventPurged:
				s.log.Info("stale cache purged", zap.String("partition", e.Partition))
			default:
				s.log.Debug("cache event",
					zap.Int("type", int(e.Type)), zap.String("url", e.URL))
			}
		}
	}
}

// Run starts serving on addr, blocking until the listener fails.
func (s *Server) Run(addr string) error {
	s.Start()
	return s.router.Run(addr)
}

// SaveNow flushes the active session to disk.
func (s *Server) SaveNow() error {
	return s.sessions.SaveNow()
}

// Close stops the workers and releases the database.
func (s *Server) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	return s.db.Close()
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// embedFetcher serves cache fills from the embedded shell files.
func embedFetcher(shell fs.FS) swcache.Fetcher {
	return func(ctx context.Context, url string) (swcache.Response, error) {
		name := strings.TrimPrefix(url, "/")
		if name == "" {
			name = "index.html"
		}
		data, err := fs.ReadFile(shell, name)
		if err != nil {
			return swcache.Response{}, err
		}
		return swcache.Response{
			Status:      http.StatusOK,
			ContentType: contentTypeFor(name),
			Body:        data,
		}, nil
	}
}

func contentTypeFor(name string) string {
	switch filepath.Ext(name) {
	case ".html":
		return "text/html; charset=utf-8"
	case ".json":
		return "application/json"
	case ".png":
		return "image/png"
	case ".svg":
		return "image/svg+xml"
	case ".js":
		return "application/javascript"
	case ".css":
		return "text/css"
	default:
		return "application/octet-stream"
	}
}
