package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/novelquest/backend/internal/app"
	"github.com/novelquest/backend/internal/auth"
	"github.com/novelquest/backend/internal/fetch"
	"github.com/novelquest/backend/internal/server"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// .env values become plain environment variables before config is read
	_ = godotenv.Load()

	var (
		configPath   string
		addr         string
		origin       string
		project      string
		userAgent    string
		fetchTimeout time.Duration
		pdfPages     int
		disablePDF   bool
		verbose      bool
	)

	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Path to optional YAML or JSON config file")
	flag.StringVar(&addr, "addr", "", "Listen address, e.g. :5000")
	flag.StringVar(&origin, "cors.origin", "", "Browser origin allowed on /api routes")
	flag.StringVar(&project, "firebase.project", "", "Firebase project ID for ID token verification (empty disables)")
	flag.StringVar(&userAgent, "fetch.ua", "", "User agent for outbound page fetches")
	flag.DurationVar(&fetchTimeout, "fetch.timeout", 0, "Timeout for outbound page fetches")
	flag.IntVar(&pdfPages, "pdf.pages", 0, "Maximum PDF pages read per upload")
	flag.BoolVar(&disablePDF, "pdf.disable", false, "Disable the PDF extraction capability")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	cfg := app.Config{
		Addr:              addr,
		AllowOrigin:       origin,
		FirebaseProjectID: project,
		UserAgent:         userAgent,
		FetchTimeout:      fetchTimeout,
		PDFPages:          pdfPages,
		DisablePDF:        disablePDF,
		Verbose:           verbose,
	}
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", configPath).Msg("config file")
		}
		app.MergeFileConfig(&cfg, fc)
	}
	cfg.Normalize()

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Identity provider initialization runs once; the service serves
	// anonymously when it is skipped or fails.
	verifier := &auth.Verifier{ProjectID: cfg.FirebaseProjectID}
	initResult, err := verifier.Init(ctx)
	switch initResult {
	case auth.InitInitialized:
		log.Info().Str("project", cfg.FirebaseProjectID).Msg("identity provider initialized")
	case auth.InitFailed:
		log.Warn().Err(err).Msg("identity provider initialization failed; continuing without verification")
	default:
		log.Debug().Msg("identity provider not configured")
	}

	caps := server.Capabilities{
		IdentityProvider: initResult == auth.InitInitialized,
		PDFParser:        !cfg.DisablePDF,
	}
	fetcher := &fetch.Client{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
	}

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg, log.Logger, fetcher, verifier, caps)
	httpServer := &http.Server{
		Addr:    cfg.Addr,
		Handler: srv.Router(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().
		Str("addr", cfg.Addr).
		Bool("firebase_admin", caps.IdentityProvider).
		Bool("pdf_parser", caps.PDFParser).
		Msg("listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server error")
	}
	log.Info().Msg("stopped")
}
