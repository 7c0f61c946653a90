// Package server exposes the tracker over HTTP: import, search, batch
// enrichment, listing and export.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediatracker/internal/common"
	"mediatracker/internal/enrich"
	"mediatracker/internal/export"
	"mediatracker/internal/ingest"
	"mediatracker/internal/metadata"
	"mediatracker/internal/repository"
)

type Server struct {
	ingest  *ingest.Service
	search  *metadata.Service
	enrich  *enrich.Service
	export  *export.Service
	entries repository.EntryRepository
	logger  *slog.Logger

	// one enrichment run at a time; status is polled while it goes
	mu          sync.Mutex
	enrichState enrichState
}

type enrichState struct {
	Running      bool           `json:"running"`
	Current      int            `json:"current"`
	Total        int            `json:"total"`
	CurrentTitle string         `json:"current_title,omitempty"`
	LastReport   *enrich.Report `json:"last_report,omitempty"`
	LastError    string         `json:"last_error,omitempty"`
}

func New(ingestSvc *ingest.Service, searchSvc *metadata.Service, enrichSvc *enrich.Service,
	exportSvc *export.Service, entries repository.EntryRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		ingest:  ingestSvc,
		search:  searchSvc,
		enrich:  enrichSvc,
		export:  exportSvc,
		entries: entries,
		logger:  logger,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestID())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.POST("/import", s.importText)
	api.POST("/import/clean", s.cleanAndImport)
	api.GET("/search", s.searchTitles)
	api.POST("/enrich", s.startEnrich)
	api.GET("/enrich/status", s.enrichStatus)
	api.GET("/entries", s.listEntries)
	api.GET("/entries/:id", s.getEntry)
	api.GET("/export", s.exportXLSX)

	return router
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader("X-Request-ID")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), reqID))
		c.Header("X-Request-ID", reqID)
		c.Next()
	}
}

// fail renders an application error with the status and code it maps to,
// and logs it under the request id set by the middleware.
func (s *Server) fail(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	s.logger.Warn("http.request_failed",
		"req_id", common.RequestIDFromContext(c.Request.Context()),
		"path", c.FullPath(),
		"status", status,
		"code", common.ErrorCode(err),
		"error", err)
	c.JSON(status, gin.H{
		"code":  common.ErrorCode(err),
		"error": err.Error(),
	})
}
