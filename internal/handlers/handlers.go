package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/onemapl3/twitter-meme-analysis/internal/metrics"
	"github.com/onemapl3/twitter-meme-analysis/internal/store"
	"github.com/onemapl3/twitter-meme-analysis/pkg/database"
	"github.com/onemapl3/twitter-meme-analysis/pkg/logging"
	"github.com/onemapl3/twitter-meme-analysis/pkg/models"
)

var (
	dataStore      *store.Store
	runner         *AnalysisRunner
	logger         logging.Logger
	serviceMetrics *metrics.Metrics
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Init initializes the handlers package with its collaborators
func Init(st *store.Store, r *AnalysisRunner, log logging.Logger, m *metrics.Metrics) {
	dataStore = st
	runner = r
	logger = log
	serviceMetrics = m
}

func observe(endpoint string, start time.Time) {
	if serviceMetrics != nil {
		serviceMetrics.QueryDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func countQuery(endpoint, outcome string) {
	if serviceMetrics != nil {
		serviceMetrics.APIQueries.WithLabelValues(endpoint, outcome).Inc()
	}
}

// GetKOLs returns the ranked influence profiles from the latest run,
// optionally filtered by tier and category.
func GetKOLs(c *gin.Context) {
	start := time.Now()
	defer observe("kols", start)

	tier := c.Query("tier")
	if tier != "" {
		switch tier {
		case models.TierT1, models.TierT2, models.TierT3, models.TierT4:
		default:
			countQuery("kols", "error")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid tier"})
			return
		}
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		countQuery("kols", "error")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
		return
	}

	kols, err := dataStore.ListKOLs(c.Request.Context(), tier, c.Query("category"), limit)
	if err != nil {
		logger.WithError(err).Error("Failed to list KOL profiles")
		countQuery("kols", "error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query KOL profiles"})
		return
	}

	countQuery("kols", "success")
	c.JSON(http.StatusOK, gin.H{
		"kols":  kols,
		"count": len(kols),
	})
}

// GetMemes returns the quality-ranked candidates from the latest run
// together with the count of noise-bucket rejects.
func GetMemes(c *gin.Context) {
	start := time.Now()
	defer observe("memes", start)

	detectionType := c.Query("detection_type")
	if detectionType != "" {
		switch detectionType {
		case models.DetectionExplicit, models.DetectionImplicit, models.DetectionBoth:
		default:
			countQuery("memes", "error")
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid detection_type"})
			return
		}
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 {
		countQuery("memes", "error")
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid limit"})
		return
	}

	memes, err := dataStore.ListMemes(c.Request.Context(), detectionType, limit)
	if err != nil {
		logger.WithError(err).Error("Failed to list meme candidates")
		countQuery("memes", "error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query meme candidates"})
		return
	}
	noiseCount, err := dataStore.NoiseCount(c.Request.Context())
	if err != nil {
		logger.WithError(err).Error("Failed to count noise candidates")
		countQuery("memes", "error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query meme candidates"})
		return
	}

	countQuery("memes", "success")
	c.JSON(http.StatusOK, gin.H{
		"memes":       memes,
		"count":       len(memes),
		"noise_count": noiseCount,
	})
}

// GetGraphSummary returns the graph structure summary of the latest run.
func GetGraphSummary(c *gin.Context) {
	start := time.Now()
	defer observe("graph_summary", start)

	summary, err := dataStore.LatestGraphSummary(c.Request.Context())
	if errors.Is(err, database.ErrNoRows) {
		countQuery("graph_summary", "not_found")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No completed analysis run"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to load graph summary")
		countQuery("graph_summary", "error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query graph summary"})
		return
	}

	countQuery("graph_summary", "success")
	c.JSON(http.StatusOK, summary)
}

// GetLatestRun returns the metadata and counters of the latest completed run.
func GetLatestRun(c *gin.Context) {
	start := time.Now()
	defer observe("latest_run", start)

	run, err := dataStore.LatestRun(c.Request.Context())
	if errors.Is(err, database.ErrNoRows) {
		countQuery("latest_run", "not_found")
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No completed analysis run"})
		return
	}
	if err != nil {
		logger.WithError(err).Error("Failed to load latest run")
		countQuery("latest_run", "error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to query latest run"})
		return
	}

	countQuery("latest_run", "success")
	c.JSON(http.StatusOK, run)
}

// TriggerAnalysis starts an analysis run in the background. A second
// trigger while one is running gets a 409.
func TriggerAnalysis(c *gin.Context) {
	start := time.Now()
	defer observe("trigger_analysis", start)

	if runner == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Analysis runner not configured"})
		return
	}

	done := make(chan error, 1)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		_, err := runner.RunOnce(ctx)
		done <- err
		if err != nil && !errors.Is(err, ErrRunInProgress) {
			logger.WithError(err).Error("Triggered analysis run failed")
		}
	}()

	// Only wait long enough to catch an immediate refusal.
	select {
	case err := <-done:
		if errors.Is(err, ErrRunInProgress) {
			countQuery("trigger_analysis", "conflict")
			c.JSON(http.StatusConflict, ErrorResponse{Error: "Analysis run already in progress"})
			return
		}
	case <-time.After(50 * time.Millisecond):
	}

	countQuery("trigger_analysis", "accepted")
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}
