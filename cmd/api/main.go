package main

import (
	"errors"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bagging/internal/data"
	"bagging/internal/features"
	"bagging/internal/models"
	"bagging/pkg/utils"
)

type server struct {
	mu       sync.RWMutex
	artifact *models.Artifact
	path     string
	logger   *zap.Logger
}

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	path := os.Getenv("MODEL_PATH")
	if path == "" {
		path = "models/bagging.gob"
	}
	s := &server{path: path, logger: logger}
	if err := s.load(); err != nil {
		logger.Warn("No model loaded, classify endpoints answer 503 until /reload succeeds", zap.String("path", path), zap.Error(err))
	}

	r := newRouter(s, os.Getenv("API_KEY"))
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	logger.Info("Listening", zap.String("port", port))
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
}

func newRouter(s *server, apiKey string) *gin.Engine {
	r := gin.Default()
	r.GET("/health", s.handleHealth)

	api := r.Group("/")
	api.Use(apiKeyMiddleware(apiKey))
	api.GET("/model", s.handleModel)
	api.POST("/classify", s.handleClassify)
	api.POST("/batch", s.handleBatch)
	api.POST("/reload", s.handleReload)
	return r
}

func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func (s *server) load() error {
	a, err := models.LoadArtifact(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.artifact = a
	s.mu.Unlock()
	s.logger.Info("Model loaded", zap.String("path", s.path), zap.String("model", a.Ensemble.Name()))
	return nil
}

func (s *server) current() *models.Artifact {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.artifact
}

type classifyReq struct {
	Features []float64 `json:"features" binding:"required,min=1"`
}

func classify(a *models.Artifact, x []float64) (models.Prediction, error) {
	v, err := a.Prepare(x)
	if err != nil {
		return models.Prediction{}, err
	}
	return a.Ensemble.Predict(data.Example{Features: v})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrDimensionMismatch), errors.Is(err, features.ErrDimensionMismatch):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUntrainedModel):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model_loaded": s.current() != nil})
}

func (s *server) handleModel(c *gin.Context) {
	a := s.current()
	if a == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"name":          a.Ensemble.Name(),
		"config":        a.Ensemble.Config(),
		"size":          a.Ensemble.Size(),
		"feature_names": a.FeatureNames,
		"scaled":        a.Scaler != nil,
	})
}

func (s *server) handleClassify(c *gin.Context) {
	a := s.current()
	if a == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}
	var req classifyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out, err := classify(a, req.Features)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) handleBatch(c *gin.Context) {
	a := s.current()
	if a == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}
	var items []classifyReq
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := make([]models.Prediction, len(items))
	for i, it := range items {
		r, err := classify(a, it.Features)
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error(), "index": i})
			return
		}
		out[i] = r
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) handleReload(c *gin.Context) {
	if err := s.load(); err != nil {
		s.logger.Error("Reload failed", zap.String("path", s.path), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"model": s.current().Ensemble.Name()})
}
