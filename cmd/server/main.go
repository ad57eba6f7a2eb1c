package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/righthome-ai/property-analyzer/internal/adapters"
	"github.com/righthome-ai/property-analyzer/internal/bot"
	"github.com/righthome-ai/property-analyzer/internal/cache"
	"github.com/righthome-ai/property-analyzer/internal/database"
	"github.com/righthome-ai/property-analyzer/internal/errors"
	"github.com/righthome-ai/property-analyzer/internal/monitoring"
	"github.com/righthome-ai/property-analyzer/internal/ratelimit"
	"github.com/righthome-ai/property-analyzer/internal/resilience"
	"github.com/righthome-ai/property-analyzer/internal/scoring"
	"github.com/righthome-ai/property-analyzer/internal/security"
	"github.com/righthome-ai/property-analyzer/internal/types"
	"github.com/righthome-ai/property-analyzer/internal/viz"
)

const modelService = "huggingface-api"

// defaultRadarMetrics are the dotted metric paths charted when a comparison
// request does not name its own.
var defaultRadarMetrics = []string{
	"location.walkability_score",
	"location.transit_score",
	"features.construction_quality",
	"environmental.air_quality_index",
	"tech_features.tech_readiness_score",
	"developer.success_rate",
}

// application bundles the wired dependencies behind the HTTP handlers.
type application struct {
	bot      *bot.PropertyBot
	adapter  *adapters.HuggingFaceAdapter
	repo     *database.Repository
	db       *database.DB
	cache    *cache.Cache
	limiter  *ratelimit.RateLimiter
	registry *resilience.Registry
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	dataDir := getEnvOrDefault("DATA_DIR", "./data")
	hfToken := os.Getenv("HUGGINGFACE_API_TOKEN")
	hfModel := os.Getenv("HUGGINGFACE_MODEL")
	redisAddr := os.Getenv("REDIS_ADDR")
	redisPassword := os.Getenv("REDIS_PASSWORD")
	port := getEnvOrDefault("PORT", "8080")

	db, err := database.NewDB(dataDir)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	appMetrics := monitoring.NewMetrics()
	appLogger := monitoring.NewLogger()

	adapter := adapters.NewHuggingFaceAdapter(hfToken, hfModel)
	defer adapter.Close()

	redisClient, err := ratelimit.NewRedisClient(redisAddr, redisPassword, 0)
	if err != nil {
		slog.Warn("Redis unavailable, continuing with in-memory rate limiting", "error", err)
	}
	defer redisClient.Close()

	app := &application{
		bot:      bot.New(adapter, appLogger, appMetrics),
		adapter:  adapter,
		repo:     database.NewRepository(db),
		db:       db,
		cache:    cache.NewCache(15 * time.Minute),
		limiter:  ratelimit.NewRateLimiter(redisClient, ratelimit.DefaultConfig(), appMetrics),
		registry: resilience.NewRegistry(30 * time.Second),
		metrics:  appMetrics,
		logger:   appLogger,
	}

	app.registry.Register(modelService, func(ctx context.Context) error {
		// The inference API has no cheap health probe; availability is
		// tracked from real call outcomes instead.
		return nil
	})
	if redisClient.IsEnabled() {
		app.registry.Register("redis", redisClient.HealthCheck)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	app.registry.StartHealthChecks(ctx)

	r := app.setupRouter()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}

// setupRouter wires middleware and routes. Kept separate from main so
// handler tests can run against the real stack.
func (app *application) setupRouter() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.Middleware(app.metrics, app.logger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	sec := security.NewMiddleware(security.DefaultConfig())
	r.Use(sec.Headers())
	r.Use(sec.BodyLimit())
	r.Use(sec.ValidateContentType())
	r.Use(sec.RequestTimeout())

	r.Use(app.limiter.IPRateLimitMiddleware())
	r.Use(app.cache.Middleware(app.metrics))

	scored := r.Group("/", app.limiter.ScoringRateLimitMiddleware())
	scored.POST("/analyze", app.handleAnalyze)
	scored.POST("/compare", app.handleCompare)

	r.GET("/analyses", app.handleListAnalyses)
	r.GET("/analyses/:id", app.handleGetAnalysis)
	r.GET("/comparisons/:id", app.handleGetComparison)

	r.GET("/health", app.handleHealth)
	r.GET("/health/services", app.handleServiceHealth)

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.metrics.GetStats())
	})
	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.cache.Stats())
	})
	r.GET("/ratelimit/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, app.limiter.GetStats())
	})
	r.GET("/pools/database", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "database",
			"stats": app.db.GetPoolStats(),
		})
	})
	r.GET("/pools/model", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"pool":  "model",
			"stats": app.adapter.GetPoolStats(),
		})
	})

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func (app *application) handleAnalyze(c *gin.Context) {
	start := time.Now()

	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("invalid JSON format: " + err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	if err := req.Property.Validate(); err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	result, err := app.scoreWithModel(c.Request.Context(), func(ctx context.Context) (scoring.ScoreResult, error) {
		return app.bot.Recommend(ctx, &req.Property, req.Preferences)
	})
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	app.metrics.IncrementAnalysis()

	resp := types.AnalyzeResponse{
		ScoreResult: result,
		Charts: map[string]viz.Figure{
			"heatmap":  viz.Heatmap(result.Breakdown),
			"timeline": viz.Timeline(req.Property.Document(), nil),
		},
	}

	if saved, err := app.repo.SaveAnalysis(&req.Property, result); err != nil {
		slog.Error("Failed to persist analysis", "property_id", req.Property.ID, "error", err)
	} else {
		resp.AnalysisID = saved.ID
	}

	app.logger.AnalysisLogger(req.Property.ID, result.Score, result.Recommendation,
		time.Since(start), false)

	c.JSON(http.StatusOK, resp)
}

func (app *application) handleCompare(c *gin.Context) {
	start := time.Now()

	var req types.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := errors.NewValidationError("invalid JSON format: " + err.Error())
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	for i := range req.Properties {
		if err := req.Properties[i].Validate(); err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}
	}

	comparison, err := app.bot.CompareProperties(c.Request.Context(), req.Properties, req.Preferences)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	app.metrics.IncrementCompare()

	docs := make([]map[string]any, len(req.Properties))
	for i := range req.Properties {
		docs[i] = req.Properties[i].Document()
	}

	resp := types.CompareResponse{
		Comparison: comparison,
		Charts: map[string]viz.Figure{
			"radar": viz.RadarChart(docs, defaultRadarMetrics),
			"roi":   viz.BarComparison(docs, "financial.estimated_roi", "Estimated ROI Comparison"),
		},
	}

	if saved, err := app.repo.SaveComparison(comparison); err != nil {
		slog.Error("Failed to persist comparison", "error", err)
	} else {
		resp.ComparisonID = saved.ID
	}

	app.logger.ComparisonLogger(len(comparison.Results),
		comparison.BestMatch.Details.PropertyID, comparison.ScoreDifference,
		time.Since(start))

	c.JSON(http.StatusOK, resp)
}

// scoreWithModel runs scoring under the model service's breaker and health
// accounting. Scoring itself never fails because of the model; the registry
// only learns about the model call outcome through the bot's metrics, so this
// wrapper records the overall success instead.
func (app *application) scoreWithModel(ctx context.Context, fn func(context.Context) (scoring.ScoreResult, error)) (scoring.ScoreResult, error) {
	result, err := fn(ctx)
	app.registry.RecordRequest(modelService, err == nil)
	return result, err
}

func (app *application) handleGetAnalysis(c *gin.Context) {
	analysis, err := app.repo.GetAnalysis(c.Param("id"))
	if err != nil {
		appErr := analysisFetchError(c.Param("id"), err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, analysisPayload(analysis))
}

func (app *application) handleListAnalyses(c *gin.Context) {
	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	analyses, err := app.repo.ListAnalyses(limit)
	if err != nil {
		appErr := errors.ToAppError(err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	payloads := make([]gin.H, len(analyses))
	for i := range analyses {
		payloads[i] = analysisPayload(&analyses[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"analyses": payloads,
		"count":    len(payloads),
	})
}

func (app *application) handleGetComparison(c *gin.Context) {
	record, err := app.repo.GetComparison(c.Param("id"))
	if err != nil {
		appErr := comparisonFetchError(c.Param("id"), err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	var results []scoring.ScoreResult
	if err := json.Unmarshal([]byte(record.Results), &results); err != nil {
		appErr := errors.NewInternalError("failed to decode stored comparison", err)
		errors.LogError(c, appErr)
		c.JSON(appErr.HTTPStatus, appErr)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               record.ID,
		"property_count":   record.PropertyCount,
		"best_match_id":    record.BestMatchID,
		"score_difference": record.ScoreDifference,
		"summary":          record.Summary,
		"comparisons":      results,
		"created_at":       record.CreatedAt,
	})
}

func (app *application) handleHealth(c *gin.Context) {
	services := app.registry.AllServiceHealth()

	healthResponse := gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
		"model":     app.adapter.Model(),
		"services":  services,
		"metrics":   app.metrics.GetStats(),
	}

	for _, service := range services {
		if service.Level == resilience.LevelEmergency {
			healthResponse["status"] = "degraded"
			c.JSON(http.StatusServiceUnavailable, healthResponse)
			return
		}
	}

	c.JSON(http.StatusOK, healthResponse)
}

func (app *application) handleServiceHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"services":         app.registry.AllServiceHealth(),
		"circuit_breakers": app.registry.CircuitBreakerStats(),
		"timestamp":        time.Now().Format(time.RFC3339),
	})
}

// analysisPayload reshapes a stored row into the API response, decoding the
// JSON columns back into structures.
func analysisPayload(a *database.Analysis) gin.H {
	var breakdown map[string]float64
	if a.Breakdown != "" {
		_ = json.Unmarshal([]byte(a.Breakdown), &breakdown)
	}

	return gin.H{
		"id":             a.ID,
		"property_id":    a.PropertyID,
		"neighborhood":   a.Neighborhood,
		"score":          a.Score,
		"recommendation": a.Recommendation,
		"analysis":       a.Analysis,
		"breakdown":      breakdown,
		"created_at":     a.CreatedAt,
	}
}

func analysisFetchError(id string, err error) *errors.AppError {
	if stderrors.Is(err, database.ErrNotFound) {
		return errors.NewNotFoundError("analysis", id)
	}
	return errors.ToAppError(err)
}

func comparisonFetchError(id string, err error) *errors.AppError {
	if stderrors.Is(err, database.ErrNotFound) {
		return errors.NewNotFoundError("comparison", id)
	}
	return errors.ToAppError(err)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
