// Package server - Haupt-Router und Server-Setup fuer forge
// Beinhaltet: Server-Struct, Router-Registrierung, Middleware
package server

import (
	"net"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/semaphore"

	"github.com/chishi/forge/corrupt"
	"github.com/chishi/forge/envconfig"
	"github.com/chishi/forge/version"
	"github.com/chishi/forge/vision"
)

var mode string = gin.DebugMode

// Server verbindet die HTTP-Routen mit den Engines
type Server struct {
	addr net.Addr

	// registry und modelsDir beschreiben die bekannten Modelle,
	// models haelt die geladenen Sessions
	registry  *vision.Registry
	modelsDir string
	models    *vision.Cache

	// sem begrenzt gleichzeitige Engine-Laeufe (FORGE_NUM_PARALLEL)
	sem       *semaphore.Weighted
	corruptor *corrupt.Corruptor
}

func init() {
	switch mode {
	case gin.DebugMode:
	case gin.ReleaseMode:
	case gin.TestMode:
	default:
		mode = gin.DebugMode
	}

	gin.SetMode(mode)
}

// NewServer erstellt einen Server mit Konfiguration aus der Umgebung.
// Ohne Cache werden Modelle ueber die DefaultRegistry geladen.
func NewServer(addr net.Addr, models *vision.Cache) *Server {
	if models == nil {
		models = vision.NewCache(nil)
	}

	parallel := int64(envconfig.NumParallel())
	if parallel < 1 {
		parallel = 1
	}

	return &Server{
		addr:      addr,
		registry:  vision.DefaultRegistry,
		modelsDir: envconfig.Models(),
		models:    models,
		sem:       semaphore.NewWeighted(parallel),
		corruptor: corrupt.New(corrupt.Options{
			MinPercent: envconfig.CorruptMinPercent(),
			MaxPercent: envconfig.CorruptMaxPercent(),
			MaxSize:    int64(envconfig.MaxFileSize()),
		}),
	}
}

// GenerateRoutes erstellt und konfiguriert den HTTP-Router
func (s *Server) GenerateRoutes() (http.Handler, error) {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowWildcard = true
	corsConfig.AllowBrowserExtensions = true
	corsConfig.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"User-Agent",
		"Accept",
		"X-Requested-With",
	}
	corsConfig.AllowOrigins = envconfig.AllowedOrigins()

	r := gin.Default()
	r.HandleMethodNotAllowed = true
	r.Use(
		cors.New(corsConfig),
		newHostGuard(s.addr, envconfig.AllowedHosts()).handler(),
	)

	// General
	r.HEAD("/", func(c *gin.Context) { c.String(http.StatusOK, "forge is running") })
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "forge is running") })
	r.HEAD("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })
	r.GET("/api/version", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"version": version.Version}) })

	// Engines
	r.POST("/api/upscale", s.UpscaleHandler)
	r.POST("/api/corrupt", s.CorruptHandler)

	// Models
	r.HEAD("/api/models", s.ListHandler)
	r.GET("/api/models", s.ListHandler)

	return r, nil
}
