package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/novelquest/backend/internal/app"
	"github.com/novelquest/backend/internal/auth"
	"github.com/novelquest/backend/internal/fetch"
)

// Capabilities describes which optional dependencies are usable in this
// process. Computed once at startup and reported by the health route.
type Capabilities struct {
	IdentityProvider bool
	PDFParser        bool
}

// Server holds the handler set and its collaborators.
type Server struct {
	cfg      app.Config
	log      zerolog.Logger
	fetcher  *fetch.Client
	verifier *auth.Verifier
	caps     Capabilities
}

func New(cfg app.Config, log zerolog.Logger, fetcher *fetch.Client, verifier *auth.Verifier, caps Capabilities) *Server {
	return &Server{
		cfg:      cfg,
		log:      log,
		fetcher:  fetcher,
		verifier: verifier,
		caps:     caps,
	}
}

// Router builds the gin engine. Browser origins are accepted only from the
// configured development origin. CORS sits at the engine level: group
// middleware only runs on matched routes, and preflight OPTIONS requests
// have none, so a group-scoped policy would never answer them.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(s.requestLogger(), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{s.cfg.AllowOrigin},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/", s.handleIndex)

	api := router.Group("/api")
	api.Use(s.identity())

	api.GET("/", s.handleHealth)
	api.POST("/process-link", s.handleProcessLink)
	api.POST("/process-pdf", s.handleProcessPDF)

	return router
}

// identity decodes the request's bearer token, when one verifies, into the
// gin context. It never rejects: verification failure means anonymous
// access, and no route currently consults the claims.
func (s *Server) identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := s.verifier.ClaimsFromRequest(c.Request); claims != nil {
			c.Set("claims", claims)
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
