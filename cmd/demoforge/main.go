package main

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/demoforge/demoforge/internal/activity"
	agentapi "github.com/demoforge/demoforge/internal/agent/api"
	agentdb "github.com/demoforge/demoforge/internal/agent/database"
	agentservice "github.com/demoforge/demoforge/internal/agent/service"
	"github.com/demoforge/demoforge/internal/collector"
	"github.com/demoforge/demoforge/internal/config"
	contractorapi "github.com/demoforge/demoforge/internal/contractor/api"
	contractordb "github.com/demoforge/demoforge/internal/contractor/database"
	contractorservice "github.com/demoforge/demoforge/internal/contractor/service"
	contractorsync "github.com/demoforge/demoforge/internal/contractor/sync"
	"github.com/demoforge/demoforge/internal/database"
	demoapi "github.com/demoforge/demoforge/internal/demo/api"
	demodb "github.com/demoforge/demoforge/internal/demo/database"
	demoservice "github.com/demoforge/demoforge/internal/demo/service"
	"github.com/demoforge/demoforge/internal/metrics"
	"github.com/demoforge/demoforge/internal/middleware"
	monitoringapi "github.com/demoforge/demoforge/internal/monitoring/api"
	mdb "github.com/demoforge/demoforge/internal/monitoring/database"
	"github.com/demoforge/demoforge/internal/monitoring/model"
	"github.com/demoforge/demoforge/internal/monitoring/notify"
	"github.com/demoforge/demoforge/internal/monitoring/scheduler"
	monitoringservice "github.com/demoforge/demoforge/internal/monitoring/service"
)

func main() {
	_ = godotenv.Load()

	log.Info().Msg("Starting demoforge api server")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "trace":
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn", "warning":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	metrics.Init()

	// optional DB; without one the API answers SERVICE_UNAVAILABLE on
	// storage-backed routes instead of refusing to boot
	var db *database.Database
	if d, derr := database.New(cfg.Database.DSN()); derr == nil {
		db = d
		defer db.Close()
	} else {
		log.Error().Err(derr).Msg("database init failed; running degraded")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// optional Redis; without it the context manager falls back to memory
	// and the monitoring queue reports errors instead of blocking
	rdb := newRedisClient(cfg.Redis)
	if rdb != nil {
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error().Err(err).Msg("redis init failed; running degraded")
			_ = rdb.Close()
			rdb = nil
		}
	}

	// stores and services
	demoRepo := demodb.NewRepo(db)
	monitorStore := mdb.NewStore(db)
	contractorRepo := contractordb.NewRepo(db)
	contentRepo := agentdb.NewRepo(db)
	contexts := demoservice.NewContextManager(rdb)
	activityLog := activity.New(db, cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer activityLog.Close()

	scraper := collector.NewScraper(parseDuration(cfg.Collectors.ScrapeTimeout, 15*time.Second), cfg.Collectors.UserAgent)
	census := collector.NewCensusClient(cfg.Collectors.CensusBaseURL, cfg.Collectors.CensusAPIKey)
	metaAds := collector.NewMetaAdsClient(cfg.Collectors.MetaAdsBaseURL, cfg.Collectors.MetaAdsToken)

	// default alert configs installed on each new demo
	defaults, err := monitoringservice.LoadDefaults(cfg.Monitoring.BootstrapFile)
	if err != nil {
		log.Fatal().Err(err).Msg("loading alert defaults failed")
	}
	seed := func(ctx context.Context, demoID string) error {
		return monitoringservice.SeedDefaults(ctx, monitorStore, demoID, defaults)
	}

	// monitoring pipeline
	gatherers := map[model.Category]scheduler.Gatherer{
		model.CategoryRankings:    collector.NewRankingGatherer(cfg.Collectors.RankProviderURL),
		model.CategoryReviews:     collector.NewReviewGatherer(cfg.Collectors.ReviewProviderURL),
		model.CategoryCompetitors: collector.NewCompetitorGatherer(metaAds),
		model.CategoryLeads:       contractorservice.NewLeadGatherer(contractorRepo),
		model.CategoryQC:          contractorservice.NewQCGatherer(contractorRepo),
	}
	tickerDeps := scheduler.TickerDeps{
		Store:          monitorStore,
		Redis:          rdb,
		QueueKey:       cfg.Monitoring.QueueKey,
		HourlyInterval: parseDuration(cfg.Monitoring.HourlyInterval, time.Hour),
		DailyInterval:  parseDuration(cfg.Monitoring.DailyInterval, 24*time.Hour),
		WeeklyInterval: parseDuration(cfg.Monitoring.WeeklyInterval, 7*24*time.Hour),
	}
	go scheduler.StartScheduler(ctx, tickerDeps)
	scheduler.StartWorkers(ctx, scheduler.WorkerDeps{
		Store:       monitorStore,
		Demos:       demoRepo,
		Redis:       rdb,
		QueueKey:    cfg.Monitoring.QueueKey,
		Gatherers:   gatherers,
		Notifier:    notify.New(cfg.Notify.ResendAPIKey, cfg.Notify.FromEmail, cfg.Notify.SMSFrom),
		Activity:    activityLog,
		MaxAttempts: cfg.Monitoring.MaxAttempts,
	}, cfg.Monitoring.Workers)

	// contractor integration sync
	go contractorsync.StartScheduler(ctx, contractorsync.Deps{
		Repo:     contractorRepo,
		Interval: parseDuration(cfg.Monitoring.SyncInterval, 30*time.Minute),
		Workers:  cfg.Monitoring.SyncWorkers,
	})

	// agent dispatch
	agentSvc := &agentservice.Service{
		LLM:      agentservice.NewLLMClient(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model, parseDuration(cfg.LLM.Timeout, 60*time.Second)),
		Demos:    demoRepo,
		Content:  contentRepo,
		Contexts: contexts,
		Census:   census,
		Meta:     metaAds,
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID)
	router.Use(middleware.Authentication)

	demoapi.New(demoRepo, contexts, scraper, seed, activityLog).RegisterRoutes(router)
	monitoringapi.New(monitorStore, func(ctx context.Context, freq model.CheckFrequency, now time.Time) (int, error) {
		return scheduler.EnqueueAll(ctx, tickerDeps, freq, now)
	}).RegisterRoutes(router)
	contractorapi.New(contractorRepo, demoRepo).RegisterRoutes(router)
	agentapi.New(agentSvc).RegisterRoutes(router)
	activityLog.RegisterRoutes(router)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	log.Info().Msgf("Starting server on %s", cfg.Server.BindAddr)
	if err := router.Run(cfg.Server.BindAddr); err != nil {
		log.Fatal().Err(err).Msg("start demoforge api server failed.")
	}
	log.Info().Msg("demoforge api server exit...")
}

// newRedisClient returns nil when no address is configured so the degraded
// paths downstream can engage.
func newRedisClient(c config.RedisConfig) *redis.Client {
	if c.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     c.Addr,
		Password: c.Password,
		DB:       c.DB,
	})
}

func parseDuration(s string, d time.Duration) time.Duration {
	if s == "" {
		return d
	}
	if v, err := time.ParseDuration(s); err == nil {
		return v
	}
	return d
}
