package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mediatracker/internal/common"
	"mediatracker/internal/llm"
)

type importRequest struct {
	RawText       string `json:"raw_text"`
	DefaultMedium string `json:"default_medium"`
}

// maxImportChars bounds a pasted import body; anything larger than this is
// not a paste.
const maxImportChars = 1 << 20

func (r importRequest) validate() error {
	v := common.NewValidator()
	v.Field("raw_text", r.RawText, common.Required, common.MinLength(2), common.MaxLength(maxImportChars))
	return v.Error()
}

func (s *Server) importText(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewAppError("INPUT_ERROR", "invalid request body", common.ErrInvalidInput))
		return
	}
	if err := req.validate(); err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.ingest.ImportText(c.Request.Context(), req.RawText)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) cleanAndImport(c *gin.Context) {
	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, common.NewAppError("INPUT_ERROR", "invalid request body", common.ErrInvalidInput))
		return
	}
	if err := req.validate(); err != nil {
		s.fail(c, err)
		return
	}

	result, err := s.ingest.CleanAndImport(c.Request.Context(), llm.CleanRequest{
		RawText:       req.RawText,
		DefaultMedium: req.DefaultMedium,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) searchTitles(c *gin.Context) {
	results, err := s.search.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}

// startEnrich kicks off a background run. A second request while one is
// going gets 409 rather than a second worker.
func (s *Server) startEnrich(c *gin.Context) {
	s.mu.Lock()
	if s.enrichState.Running {
		s.mu.Unlock()
		c.JSON(http.StatusConflict, gin.H{"error": "enrichment already running"})
		return
	}
	s.enrichState = enrichState{Running: true}
	s.mu.Unlock()

	go s.runEnrich()
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

func (s *Server) runEnrich() {
	// Detached from the request: the run outlives the HTTP exchange.
	ctx, cancel := common.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := s.enrich.Run(ctx, func(current, total int, title string) {
		s.mu.Lock()
		s.enrichState.Current = current
		s.enrichState.Total = total
		s.enrichState.CurrentTitle = title
		s.mu.Unlock()
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrichState.Running = false
	s.enrichState.CurrentTitle = ""
	s.enrichState.LastReport = &report
	if err != nil {
		s.enrichState.LastError = err.Error()
	} else {
		s.enrichState.LastError = ""
	}
}

func (s *Server) enrichStatus(c *gin.Context) {
	s.mu.Lock()
	state := s.enrichState
	if state.LastReport != nil {
		reportCopy := *state.LastReport
		state.LastReport = &reportCopy
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, state)
}

func (s *Server) getEntry(c *gin.Context) {
	id := c.Param("id")
	v := common.NewValidator()
	v.Field("id", id, common.UUID)
	if err := v.Error(); err != nil {
		s.fail(c, err)
		return
	}

	entry, err := s.entries.GetByID(c.Request.Context(), uuid.MustParse(id))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (s *Server) listEntries(c *gin.Context) {
	entries, err := s.entries.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(entries), "entries": entries})
}

func (s *Server) exportXLSX(c *gin.Context) {
	data, err := s.export.ExportEntriesXLSX(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	filename := fmt.Sprintf("entries-%s.xlsx", time.Now().UTC().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
