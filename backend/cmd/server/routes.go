package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"teamgraph/backend/internal/analysis"
	"teamgraph/backend/internal/graph"
	apperrors "teamgraph/backend/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// teamService is what the HTTP layer needs from *analysis.Service
type teamService interface {
	AnalyzeTeam(ctx context.Context, teamID string) (*analysis.Result, error)
	Layout(ctx context.Context, teamID string) ([]graph.LayoutRecord, error)
}

func newRouter(svc teamService, log *zap.Logger, production bool) *gin.Engine {
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		// Run an analysis pass and store the layout
		api.POST("/teams/:id/analyze", func(c *gin.Context) {
			teamID := c.Param("id")

			result, err := svc.AnalyzeTeam(c.Request.Context(), teamID)
			if err != nil {
				respondError(c, log, "Failed to analyze team", teamID, err)
				return
			}

			c.JSON(http.StatusOK, gin.H{
				"run_id":      result.RunID,
				"nodes":       result.Nodes,
				"edges":       result.Edges,
				"communities": result.Communities,
				"mean_score":  result.MeanScore,
				"duration_ms": result.Duration.Milliseconds(),
			})
		})

		// Last stored layout
		api.GET("/teams/:id/layout", func(c *gin.Context) {
			teamID := c.Param("id")

			records, err := svc.Layout(c.Request.Context(), teamID)
			if err != nil {
				respondError(c, log, "Failed to load layout", teamID, err)
				return
			}

			runID := ""
			var updatedAt time.Time
			nodes := make([]graph.Node, 0, len(records))
			for _, r := range records {
				nodes = append(nodes, r.Node)
				if r.UpdatedAt.After(updatedAt) {
					runID, updatedAt = r.RunID, r.UpdatedAt
				}
			}
			if runID == "" && len(records) > 0 {
				runID = records[0].RunID
			}

			c.JSON(http.StatusOK, gin.H{
				"team_id":    teamID,
				"run_id":     runID,
				"updated_at": updatedAt,
				"nodes":      nodes,
			})
		})
	}

	return router
}

func respondError(c *gin.Context, log *zap.Logger, msg, teamID string, err error) {
	var notFound *apperrors.ErrGraphTeamNotFound
	switch {
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Team not found"})
	case apperrors.IsErrorType(err, apperrors.ErrorTypeContext):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Request cancelled"})
	default:
		log.Error(msg, zap.String("team_id", teamID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
