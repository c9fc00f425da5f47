package internal

import (
	"context"
	"errors"
	"fmt"
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

	"github.com/mkovacevic/portfolioapi/internal/auth"
	"github.com/mkovacevic/portfolioapi/internal/blog"
	"github.com/mkovacevic/portfolioapi/internal/config"
	"github.com/mkovacevic/portfolioapi/internal/db"
	"github.com/mkovacevic/portfolioapi/internal/middleware"
	"github.com/mkovacevic/portfolioapi/internal/projects"
	"github.com/mkovacevic/portfolioapi/internal/services"
	"github.com/mkovacevic/portfolioapi/internal/skills"
	"github.com/mkovacevic/portfolioapi/internal/telemetry/metrics"
	"github.com/mkovacevic/portfolioapi/internal/telemetry/tracing"
	"github.com/mkovacevic/portfolioapi/internal/uploads"
	"github.com/mkovacevic/portfolioapi/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config       *config.Config
	dbPool       *pgxpool.Pool
	redisClient  *redis.Client
	tokenService *auth.TokenService
	uploadsStore *uploads.DiskStore

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	JWTSecret               string
	JWTRefreshSecret        string
	RedisPassword           string
	VersionInfo             string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	if params.JWTSecret == "" || params.JWTRefreshSecret == "" {
		return nil, errors.New("jwt secrets not set")
	}

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         params.Config.PostgresHost,
		DBPort:         params.Config.PostgresPort,
		DBName:         params.Config.PostgresDBName,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("portfolio", "backend", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0) // set to 1 when all is set and ran

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "portfolio-backend", rdb)
	if err != nil {
		return nil, err
	}

	accessTTL := time.Duration(params.Config.AccessTokenTTLHours) * time.Hour
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	refreshTTL := time.Duration(params.Config.RefreshTokenTTLHours) * time.Hour
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	tokenService := auth.NewTokenService(
		params.JWTSecret, params.JWTRefreshSecret,
		accessTTL, refreshTTL,
	)

	uploadsStore, err := uploads.NewDiskStore(params.Config.UploadsRootPath)
	if err != nil {
		return nil, fmt.Errorf("new uploads disk store: %w", err)
	}

	return &Server{
		versionInfo:  params.VersionInfo,
		config:       params.Config,
		dbPool:       dbPool,
		redisClient:  rdb,
		tokenService: tokenService,
		uploadsStore: uploadsStore,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("portfolio-router"))

	apiRouter := r.PathPrefix("/api").Subrouter()
	adminRouter := apiRouter.PathPrefix("/admin").Subrouter()

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.tokenService)
	requireAuth := authMiddleware.RequireAuth()
	requireAdmin := authMiddleware.RequireAdmin()
	adminRouter.Use(requireAuth, requireAdmin)

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	loginRateLimit := middleware.RateLimit(
		reqRateLimiter, "login",
		s.config.LoginRateLimitAllowedPerMin,
		s.metricsManager,
	)

	apiRouter.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS").Name("health")

	authHandler := auth.NewHandler(
		auth.NewRepo(s.dbPool),
		s.tokenService,
		s.metricsManager,
	)
	authHandler.SetupRoutes(apiRouter, requireAuth, loginRateLimit)

	blogHandler := blog.NewHandler(blog.NewRepo(s.dbPool), s.metricsManager)
	blogHandler.SetupRoutes(apiRouter, adminRouter)

	projectsHandler := projects.NewHandler(projects.NewRepo(s.dbPool))
	projectsHandler.SetupRoutes(apiRouter, adminRouter)

	skillsHandler := skills.NewHandler(skills.NewRepo(s.dbPool))
	skillsHandler.SetupRoutes(apiRouter, adminRouter)

	servicesHandler := services.NewHandler(services.NewRepo(s.dbPool))
	servicesHandler.SetupRoutes(apiRouter, adminRouter)

	uploadsHandler := uploads.NewHandler(s.uploadsStore, s.metricsManager)
	uploadsHandler.SetupRoutes(apiRouter, requireAuth, requireAdmin)

	// uploaded files are served as static content
	r.PathPrefix("/uploads/").Handler(
		http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadsStore.RootPath()))),
	).Methods("GET", "OPTIONS").Name("uploaded-files")

	// all the rest of /api - unhandled paths
	apiRouter.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteError(w, http.StatusNotFound, "API endpoint not found")
	}).Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(middleware.RateLimit(
		reqRateLimiter, "api",
		s.config.ApiRateLimitAllowedPerMin,
		s.metricsManager,
	))
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteResponse(w, http.StatusOK, pkg.ApiResponse{
		Success: true,
		Message: "Server is running",
		Data: map[string]string{
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   s.versionInfo,
		},
	})
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
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
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	s.otelShutdown()
	log.Trace("otel shut down ...")

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
