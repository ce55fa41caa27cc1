package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/rundash/internal/activities"
	"github.com/2beens/rundash/internal/config"
	"github.com/2beens/rundash/internal/db"
	"github.com/2beens/rundash/internal/middleware"
	"github.com/2beens/rundash/internal/misc"
	"github.com/2beens/rundash/internal/photos"
	"github.com/2beens/rundash/internal/sheets"
	"github.com/2beens/rundash/internal/strava"
	"github.com/2beens/rundash/internal/telemetry/metrics"
	"github.com/2beens/rundash/internal/telemetry/tracing"
	"github.com/2beens/rundash/internal/training"
	"github.com/2beens/rundash/internal/utmb"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config        *config.Config
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	syncTokenHash string

	activitiesRepo *activities.Repo
	stravaAuth     *strava.Authenticator
	stravaSyncer   *strava.Syncer
	sheetsSyncer   *sheets.Syncer
	utmbApi        *utmb.Api
	photoFinder    photos.Finder

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config      *config.Config
	Secrets     *config.Secrets
	VersionInfo string
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	secrets := params.Secrets

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         cfg.PostgresUser,
		DBPassword:     secrets.PostgresPassword,
		SSLMode:        cfg.PostgresSSLMode,
		MaxConns:       cfg.PostgresMaxConns,
		TracingEnabled: secrets.HoneycombEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("rundash", "main", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: secrets.RedisPassword,
		DB:       0,
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	otelShutdown, err := tracing.HoneycombSetup(secrets.HoneycombEnabled, secrets.OtelServiceName, rdb)
	if err != nil {
		return nil, err
	}

	tracedHttpClient := &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   30 * time.Second,
	}

	activitiesRepo := activities.NewRepo(dbPool)
	if err := activitiesRepo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	stravaAuth := strava.NewAuthenticator(strava.AuthenticatorParams{
		ClientID:     secrets.StravaClientID,
		ClientSecret: secrets.StravaClientSecret,
		AuthURL:      cfg.StravaAuthURL,
		TokenURL:     cfg.StravaTokenURL,
		RedirectURL:  cfg.StravaRedirectURL,
		RefreshAhead: cfg.StravaRefreshAhead.Duration,
		TokenStore:   strava.NewRedisTokenStore(rdb),
		HttpClient:   tracedHttpClient,
	})

	stravaSyncer := strava.NewSyncer(strava.SyncerParams{
		Repo:             activitiesRepo,
		Tokens:           stravaAuth,
		Lister:           strava.NewClient(cfg.StravaBaseURL, tracedHttpClient),
		PerPage:          cfg.StravaPerPage,
		MaxPages:         cfg.StravaMaxPages,
		RaceWorkoutTypes: cfg.RaceWorkoutTypes,
		MetricsManager:   metricsManager,
	})

	photoFinder, err := photos.NewFinder(ctx, photos.FinderParams{
		DriveEnabled:    cfg.PhotosDriveEnabled,
		DriveFolderID:   secrets.GoogleDrivePhotosFolder,
		Bucket:          cfg.PhotosBucket,
		CredentialsFile: secrets.GoogleCredentialsFile,
	})
	if err != nil {
		log.Errorf("race photos disabled: %s", err)
		photoFinder = nil
	}

	var racesReader sheets.RowsReader
	sheetsReader, err := sheets.NewReader(ctx, sheets.ReaderParams{
		SpreadsheetID:   secrets.GoogleSpreadsheetID,
		SheetTitle:      cfg.RacesSheetTitle,
		CredentialsFile: secrets.GoogleCredentialsFile,
	})
	if err != nil {
		log.Warnf("races sheet not available: %s", err)
		racesReader = sheets.Unconfigured(err)
	} else {
		racesReader = sheetsReader
	}

	sheetsSyncer := sheets.NewSyncer(sheets.SyncerParams{
		Repo:           activitiesRepo,
		Reader:         racesReader,
		Photos:         photoFinder,
		MetricsManager: metricsManager,
	})

	utmbApi := utmb.NewApi(utmb.ApiParams{
		BaseURL:        cfg.UtmbBaseURL,
		RunnerID:       secrets.UtmbRunnerID,
		RunnerName:     secrets.UtmbRunnerName,
		CacheTTL:       cfg.UtmbCacheTTL.Duration,
		HttpClient:     tracedHttpClient,
		MetricsManager: metricsManager,
	})

	return &Server{
		config:        cfg,
		dbPool:        dbPool,
		redisClient:   rdb,
		syncTokenHash: secrets.SyncTokenHash,
		versionInfo:   params.VersionInfo,

		activitiesRepo: activitiesRepo,
		stravaAuth:     stravaAuth,
		stravaSyncer:   stravaSyncer,
		sheetsSyncer:   sheetsSyncer,
		utmbApi:        utmbApi,
		photoFinder:    photoFinder,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	activities.NewHandler(s.activitiesRepo).SetupRoutes(r)
	training.NewHandler(training.NewAnalyzer(s.activitiesRepo)).SetupRoutes(r)
	utmb.NewHandler(s.utmbApi).SetupRoutes(r)
	misc.NewHandler(s.versionInfo).SetupRoutes(r)

	stravaHandler := strava.NewHandler(s.stravaAuth, s.stravaSyncer)
	stravaHandler.SetupRoutes(r)

	// sync endpoints are rate limited and token guarded
	syncRouter := r.NewRoute().Subrouter()
	syncRouter.Use(middleware.RateLimit(
		redis_rate.NewLimiter(s.redisClient),
		s.metricsManager,
		"sync",
		s.config.SyncRateLimitPerMinute,
	))
	syncRouter.Use(middleware.SyncTokenCheck(s.syncTokenHash, s.metricsManager))
	stravaHandler.SetupSyncRoutes(syncRouter)
	sheets.NewHandler(s.sheetsSyncer).SetupSyncRoutes(syncRouter)

	// all the rest - static frontend, or not found
	if s.config.StaticFilesPath != "" {
		r.PathPrefix("/").
			Handler(http.FileServer(http.Dir(s.config.StaticFilesPath))).
			Methods("GET", "HEAD").
			Name("static")
	} else {
		r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}).Methods("GET", "POST", "PUT", "OPTIONS").Name("unknown")
	}

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(ctx context.Context, host string, port int) {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)

	if s.config.SyncOnStartup {
		go s.syncOnStartup(ctx)
	}
}

// syncOnStartup runs both syncs once. A Strava account that was never
// authorized is not an error here.
func (s *Server) syncOnStartup(ctx context.Context) {
	stravaRes, err := s.stravaSyncer.Sync(ctx)
	switch {
	case errors.Is(err, strava.ErrNotAuthenticated):
		log.Infoln("startup sync: strava not authorized yet, skipping")
	case err != nil:
		log.Errorf("startup sync, strava: %s", err)
	default:
		log.Infof("startup sync, strava: fetched %d, upserted %d, races %d, failed %d",
			stravaRes.Fetched, stravaRes.Upserted, stravaRes.Races, stravaRes.Failed)
	}

	sheetRes, err := s.sheetsSyncer.Sync(ctx)
	switch {
	case errors.Is(err, sheets.ErrMissingSpreadsheetID), errors.Is(err, sheets.ErrMissingCredentials):
		log.Infoln("startup sync: races sheet not configured, skipping")
	case err != nil:
		log.Errorf("startup sync, races sheet: %s", err)
	default:
		log.Infof("startup sync, races sheet: rows %d, upserted %d, photos %d, failed %d",
			sheetRes.Rows, sheetRes.Upserted, sheetRes.Photos, sheetRes.Failed)
	}
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if closer, ok := s.photoFinder.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Errorf("failed to close photos client: %s", err)
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
