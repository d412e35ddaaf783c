package main

import (
	"context"
	"strings"
	"time"

	"github.com/onemapl3/twitter-meme-analysis/internal/analyzer"
	"github.com/onemapl3/twitter-meme-analysis/internal/handlers"
	"github.com/onemapl3/twitter-meme-analysis/internal/ingest"
	"github.com/onemapl3/twitter-meme-analysis/internal/metrics"
	"github.com/onemapl3/twitter-meme-analysis/internal/scheduler"
	"github.com/onemapl3/twitter-meme-analysis/internal/store"
	"github.com/onemapl3/twitter-meme-analysis/pkg/config"
	"github.com/onemapl3/twitter-meme-analysis/pkg/database"
	schemasql "github.com/onemapl3/twitter-meme-analysis/pkg/database/sql"
	"github.com/onemapl3/twitter-meme-analysis/pkg/kafka"
	"github.com/onemapl3/twitter-meme-analysis/pkg/logging"
	"github.com/onemapl3/twitter-meme-analysis/pkg/monitoring"
	"github.com/onemapl3/twitter-meme-analysis/pkg/server"
	"github.com/onemapl3/twitter-meme-analysis/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("lookout")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Lookout (Social Analytics Engine)")

	dbURL := config.RequireEnv("DATABASE_URL")
	clickhouseHost := config.RequireEnv("CLICKHOUSE_HOST")
	clickhouseDB := config.RequireEnv("CLICKHOUSE_DB")
	clickhouseUser := config.RequireEnv("CLICKHOUSE_USER")
	clickhousePassword := config.RequireEnv("CLICKHOUSE_PASSWORD")
	kafkaBrokers := config.RequireEnv("KAFKA_BROKERS")

	// Postgres holds authors, edges, fingerprints, and derived results
	dbConfig := database.DefaultConfig()
	dbConfig.URL = dbURL
	pg := database.MustConnect(dbConfig, logger)
	defer func() { _ = pg.Close() }()

	// ClickHouse holds the raw post stream: database/sql for analysis
	// reads, native for batch ingest
	chConfig := database.DefaultClickHouseConfig()
	chConfig.Addr = []string{clickhouseHost}
	chConfig.Database = clickhouseDB
	chConfig.Username = clickhouseUser
	chConfig.Password = clickhousePassword
	clickhouse := database.MustConnectClickHouse(chConfig, logger)
	defer func() { _ = clickhouse.Close() }()
	clickhouseNative := database.MustConnectClickHouseNative(chConfig, logger)
	defer func() { _ = clickhouseNative.Close() }()

	if config.GetEnvBool("AUTO_MIGRATE", false) {
		if err := applySchemas(pg, clickhouse, logger); err != nil {
			logger.WithError(err).Fatal("Failed to apply database schema")
		}
	}

	// Analyzer configuration: defaults, then lexicon file, then env
	analyzerConfig := analyzer.DefaultConfig()
	if lexiconFile := config.GetEnv("LEXICON_FILE", ""); lexiconFile != "" {
		if err := analyzerConfig.LoadLexicon(lexiconFile); err != nil {
			logger.WithError(err).Fatal("Failed to load lexicon file")
		}
	}
	analyzerConfig.LoadFromEnv()

	pipeline, err := analyzer.NewPipeline(analyzerConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Invalid analyzer configuration")
	}

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("lookout", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("lookout", version.Version, version.GitCommit)

	healthChecker.AddCheck("postgres", monitoring.DatabaseHealthCheck(pg))
	healthChecker.AddCheck("clickhouse", monitoring.ClickHouseHealthCheck(clickhouse))
	healthChecker.AddCheck("clickhouse_native", monitoring.ClickHouseNativeHealthCheck(clickhouseNative))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL":    dbURL,
		"CLICKHOUSE_HOST": clickhouseHost,
		"CLICKHOUSE_DB":   clickhouseDB,
		"KAFKA_BROKERS":   kafkaBrokers,
	}))

	serviceMetrics := &metrics.Metrics{
		APIQueries:     metricsCollector.NewCounter("api_queries_total", "API queries executed", []string{"endpoint", "status"}),
		QueryDuration:  metricsCollector.NewHistogram("api_query_duration_seconds", "API query duration", []string{"endpoint"}, nil),
		AnalysisRuns:   metricsCollector.NewCounter("analysis_runs_total", "Analysis runs executed", []string{"status"}),
		AnalysisTime:   metricsCollector.NewHistogram("analysis_run_duration_seconds", "Analysis run duration", []string{"phase"}, nil),
		PostsProcessed: metricsCollector.NewCounter("posts_processed_total", "Posts folded into analysis", []string{"outcome"}),
		MemeCandidates: metricsCollector.NewGauge("meme_candidates", "Meme candidates in the latest run", []string{"bucket"}),
		KOLProfiles:    metricsCollector.NewGauge("kol_profiles", "KOL profiles in the latest run", []string{"status"}),
		GraphStats:     metricsCollector.NewGauge("graph_stats", "Graph structure of the latest run", []string{"stat"}),
	}

	dataStore := store.NewStore(pg, clickhouse, logger)

	// Kafka consumer for the collector stream
	ingestMetrics := &ingest.IngestMetrics{
		SocialEvents:      metricsCollector.NewCounter("social_events_total", "Social events consumed", []string{"event_type", "status"}),
		ClickHouseInserts: metricsCollector.NewCounter("clickhouse_inserts_total", "ClickHouse inserts", []string{"table", "status"}),
		ProcessingTime:    metricsCollector.NewHistogram("event_processing_duration_seconds", "Event processing duration", []string{"event_type"}, nil),
		KafkaMessages:     metricsCollector.NewCounter("kafka_messages_total", "Kafka messages received", []string{"topic", "status"}),
	}
	socialHandler := ingest.NewSocialHandler(clickhouseNative, dataStore, logger, ingestMetrics)

	brokers := strings.Split(kafkaBrokers, ",")
	groupID := config.GetEnv("KAFKA_GROUP_ID", "lookout-ingest")
	consumer, err := kafka.NewConsumer(brokers, groupID, "lookout", logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka consumer")
	}
	defer consumer.Close()

	consumer.AddHandler(kafka.TopicSocialPosts, socialHandler.HandleMessage)
	consumer.AddHandler(kafka.TopicSocialAuthors, socialHandler.HandleMessage)
	consumer.AddHandler(kafka.TopicSocialFollows, socialHandler.HandleMessage)

	healthChecker.AddCheck("kafka", monitoring.KafkaConsumerHealthCheck(consumer.GetClient()))

	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	defer cancelConsumer()
	go func() {
		if err := consumer.Start(consumerCtx); err != nil && consumerCtx.Err() == nil {
			logger.WithError(err).Fatal("Kafka consumer failed")
		}
	}()

	// Analysis runner shared by the scheduler and the manual trigger
	lookback := config.GetEnvDuration("ANALYSIS_LOOKBACK", 24*time.Hour)
	analysisRunner := handlers.NewAnalysisRunner(dataStore, pipeline, logger, serviceMetrics, lookback)

	producer, err := kafka.NewProducer(brokers, "lookout", logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create Kafka producer")
	}
	defer producer.Close()
	analysisRunner.SetProducer(producer)

	interval := config.GetEnvDuration("ANALYSIS_INTERVAL", 0)
	taskScheduler := scheduler.NewScheduler(analysisRunner, interval, logger)
	taskScheduler.Start()
	defer taskScheduler.Stop()

	// HTTP query surface plus health and metrics
	handlers.Init(dataStore, analysisRunner, logger, serviceMetrics)
	router := server.SetupServiceRouter(logger, "lookout", healthChecker, metricsCollector)

	api := router.Group("/")
	{
		api.GET("/kols", handlers.GetKOLs)
		api.GET("/memes", handlers.GetMemes)
		api.GET("/graph/summary", handlers.GetGraphSummary)
		api.GET("/runs/latest", handlers.GetLatestRun)
		api.POST("/analyze", handlers.TriggerAnalysis)
	}

	serverConfig := server.DefaultConfig("lookout", "18010")
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}

// applySchemas bootstraps both databases from the embedded DDL.
func applySchemas(pg database.PostgresConn, clickhouse database.ClickHouseConn, logger logging.Logger) error {
	pgStmts, err := schemasql.PostgresSchemas()
	if err != nil {
		return err
	}
	for _, stmt := range pgStmts {
		if _, err := pg.Exec(stmt); err != nil {
			return err
		}
	}

	chStmts, err := schemasql.ClickHouseSchemas()
	if err != nil {
		return err
	}
	for _, stmt := range chStmts {
		if _, err := clickhouse.Exec(stmt); err != nil {
			return err
		}
	}

	logger.WithFields(logging.Fields{
		"postgres_files":   len(pgStmts),
		"clickhouse_files": len(chStmts),
	}).Info("Database schema applied")
	return nil
}
