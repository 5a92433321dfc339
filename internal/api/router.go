package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ProfitPredictor/internal/collector"
	"ProfitPredictor/internal/logger"
	"ProfitPredictor/internal/metrics"
	"ProfitPredictor/internal/model"
	"ProfitPredictor/internal/recorder"
	"ProfitPredictor/internal/store"
	"ProfitPredictor/internal/strategy"
)

// Service is what the handlers need from the collector.
type Service interface {
	Assets() []model.Asset
	Asset(id string) (model.Asset, error)
	Evaluate(ctx context.Context, req collector.Request) (*model.Evaluation, error)
}

// Handler serves the JSON API.
type Handler struct {
	Service  Service
	Store    store.Store
	Recorder recorder.Recorder
	Policies []strategy.Policy
	Metrics  *metrics.Metrics
	Days     int
}

// NewRouter registers every route on a fresh engine.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/assets", h.assets)
	r.GET("/signals", h.signals)
	r.GET("/signals/:asset", h.signal)
	r.GET("/evaluate", h.evaluate)
	r.GET("/history", h.history)
	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics.Handler()))
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	log := logger.Named("http")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func errorJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
