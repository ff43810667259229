package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mobidist/backend/internal/application/etl"
)

// ETLHandler exposes operational triggers for the commission fact pipeline
type ETLHandler struct {
	BaseHandler
	etlService *etl.CommissionFactETLService
}

// NewETLHandler creates a new ETLHandler
func NewETLHandler(etlService *etl.CommissionFactETLService) *ETLHandler {
	return &ETLHandler{etlService: etlService}
}

// SyncRequest selects the sync window and run options
type SyncRequest struct {
	Mode      string `json:"mode" binding:"required,oneof=rebuild today recent range status"`
	Days      int    `json:"days" binding:"min=0"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Force     bool   `json:"force"`
	DryRun    bool   `json:"dry_run"`
	ChunkSize int    `json:"chunk_size" binding:"min=0"`
}

// Sync runs one fact pipeline pass synchronously and returns its summary
// POST /api/v1/etl/sync
func (h *ETLHandler) Sync(c *gin.Context) {
	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	opts := etl.RunOptions{
		Force:     req.Force,
		DryRun:    req.DryRun,
		ChunkSize: req.ChunkSize,
	}

	ctx := c.Request.Context()
	var summary *etl.RunSummary
	var err error
	switch req.Mode {
	case "rebuild":
		summary, err = h.etlService.Rebuild(ctx, opts)
	case "today":
		summary, err = h.etlService.SyncToday(ctx, opts)
	case "recent":
		days := req.Days
		if days <= 0 {
			days = 7
		}
		summary, err = h.etlService.SyncRecent(ctx, days, opts)
	case "range":
		from, parseErr := time.Parse("2006-01-02", req.StartDate)
		if parseErr != nil {
			h.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
			return
		}
		to, parseErr := time.Parse("2006-01-02", req.EndDate)
		if parseErr != nil {
			h.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
			return
		}
		if !to.After(from) {
			h.BadRequest(c, "end_date must be after start_date")
			return
		}
		summary, err = h.etlService.SyncRange(ctx, from, to, opts)
	case "status":
		summary, err = h.etlService.SyncSettlementStatus(ctx, opts)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, summary)
}
