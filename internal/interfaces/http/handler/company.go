package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	apporganization "github.com/mobidist/backend/internal/application/organization"
	"github.com/mobidist/backend/internal/application/settlement"
	"github.com/mobidist/backend/internal/domain/organization"
)

// CompanyHandler handles company hierarchy API endpoints
type CompanyHandler struct {
	BaseHandler
	companyService *apporganization.CompanyService
	summaryService *settlement.SummaryService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(companyService *apporganization.CompanyService, summaryService *settlement.SummaryService) *CompanyHandler {
	return &CompanyHandler{
		companyService: companyService,
		summaryService: summaryService,
	}
}

// ReparentRequest moves a company under a new parent
type ReparentRequest struct {
	ParentID string `json:"parent_id" binding:"required,uuid"`
}

// CompanyListQuery holds the list filter query parameters
type CompanyListQuery struct {
	Type     string `form:"type"`
	ParentID string `form:"parent_id"`
	IsActive *bool  `form:"is_active"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// SummaryQuery holds the date range for settlement summaries
type SummaryQuery struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// Create registers a company
// POST /api/v1/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req apporganization.CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	response, err := h.companyService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, response)
}

// Get returns one company
// GET /api/v1/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.companyService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// List returns companies matching the filter
// GET /api/v1/companies
func (h *CompanyHandler) List(c *gin.Context) {
	var query CompanyListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := organization.CompanyFilter{
		Search:   query.Search,
		IsActive: query.IsActive,
		Page:     query.Page,
		PageSize: query.PageSize,
	}
	if query.Type != "" {
		companyType := organization.CompanyType(query.Type)
		if !companyType.IsValid() {
			h.BadRequest(c, "Unknown company type: "+query.Type)
			return
		}
		filter.Type = &companyType
	}
	if query.ParentID != "" {
		parentID, err := parseUUID(query.ParentID)
		if err != nil {
			h.BadRequest(c, "Invalid parent_id")
			return
		}
		filter.ParentID = &parentID
	}

	responses, err := h.companyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// ListChildren returns the direct children of a company
// GET /api/v1/companies/:id/children
func (h *CompanyHandler) ListChildren(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.companyService.ListChildren(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// GetAncestry returns the ancestor chain of a company
// GET /api/v1/companies/:id/ancestry
func (h *CompanyHandler) GetAncestry(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	responses, err := h.companyService.GetAncestry(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, responses)
}

// Reparent moves a company under a new parent
// POST /api/v1/companies/:id/reparent
func (h *CompanyHandler) Reparent(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req ReparentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}
	parentID, err := parseUUID(req.ParentID)
	if err != nil {
		h.BadRequest(c, "Invalid parent_id")
		return
	}

	response, err := h.companyService.Reparent(c.Request.Context(), id, parentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Deactivate marks a company inactive
// POST /api/v1/companies/:id/deactivate
func (h *CompanyHandler) Deactivate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.companyService.Deactivate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// Activate marks a company active
// POST /api/v1/companies/:id/activate
func (h *CompanyHandler) Activate(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	response, err := h.companyService.Activate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}

// GetSettlementSummary totals a company's commissions per status over a
// date range. Defaults to the current month when no range is given.
// GET /api/v1/companies/:id/settlement-summary
func (h *CompanyHandler) GetSettlementSummary(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}

	var query SummaryQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	var err error
	if query.From != "" {
		from, err = time.Parse("2006-01-02", query.From)
		if err != nil {
			h.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
	}
	if query.To != "" {
		to, err = time.Parse("2006-01-02", query.To)
		if err != nil {
			h.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
	}
	if !to.After(from) {
		h.BadRequest(c, "to must be after from")
		return
	}

	response, err := h.summaryService.CompanySummary(c.Request.Context(), id, from, to)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, response)
}
