package handlers

import (
	"fmt"
	"net/http"

	"github.com/counselflow/counselflow-api/internal/models"
	"github.com/counselflow/counselflow-api/internal/services"
	"github.com/counselflow/counselflow-api/internal/validation"
	"github.com/gin-gonic/gin"
)

type ContractHandler struct {
	contractService *services.ContractService
	statsService    *services.ContractStatsService
	exportService   *services.ExportService
}

func NewContractHandler(contractService *services.ContractService, statsService *services.ContractStatsService, exportService *services.ExportService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		statsService:    statsService,
		exportService:   exportService,
	}
}

func toResponses(contracts []models.Contract) []models.ContractResponse {
	out := make([]models.ContractResponse, 0, len(contracts))
	for i := range contracts {
		out = append(out, contracts[i].ToResponse())
	}
	return out
}

// @Summary List Contracts
// @Description Paginated list of the contracts visible to the caller (all contracts for ADMIN and PARTNER)
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(10)
// @Param search query string false "Matches title, description or client name"
// @Param status query string false "Filter by status"
// @Param clientId query string false "Filter by client"
// @Param type query string false "Filter by contract type"
// @Param riskLevel query string false "Filter by risk level"
// @Param sortBy query string false "Sort field" default(createdAt)
// @Param sortOrder query string false "asc or desc" default(desc)
// @Success 200 {object} Response{data=[]models.ContractResponse}
// @Failure 400 {object} Response
// @Security BearerAuth
// @Router /contracts [get]
func (h *ContractHandler) Index(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	q, err := validation.ParseContractQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	contracts, pagination, err := h.contractService.List(c.Request.Context(), caller, q)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, toResponses(contracts), pagination, "Contracts retrieved successfully")
}

// @Summary Create Contract
// @Description Create a DRAFT contract assigned to the caller. The client must be visible to the caller.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param contract body validation.CreateContractRequest true "Contract"
// @Success 201 {object} Response{data=models.ContractResponse}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req validation.CreateContractRequest
	if err := bindBody(c, "contract", &req); err != nil {
		respondError(c, err)
		return
	}

	contract, err := h.contractService.Create(c.Request.Context(), caller, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, contract.ToDetailResponse(), "Contract created successfully")
}

// @Summary Contract Statistics
// @Description Period-over-period figures plus all-time totals. Each window is optional but must be given in full.
// @Tags Contracts
// @Produce json
// @Param startDate query string false "Current window start (YYYY-MM-DD)"
// @Param endDate query string false "Current window end, inclusive (YYYY-MM-DD)"
// @Param compareStartDate query string false "Comparison window start (YYYY-MM-DD)"
// @Param compareEndDate query string false "Comparison window end, inclusive (YYYY-MM-DD)"
// @Success 200 {object} Response{data=services.ContractStats}
// @Failure 400 {object} Response
// @Failure 500 {object} Response
// @Security BearerAuth
// @Router /contracts/stats [get]
func (h *ContractHandler) Stats(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	q, err := validation.ParseStatsQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	stats, err := h.statsService.Compute(c.Request.Context(), caller, q)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, stats, "Statistics retrieved successfully")
}

// @Summary Search Contracts
// @Description Case-insensitive search over title, description and client name, newest first
// @Tags Contracts
// @Produce json
// @Param q query string true "Search text"
// @Param limit query int false "Max results (max 50)" default(10)
// @Success 200 {object} Response{data=[]models.ContractResponse}
// @Failure 400 {object} Response
// @Security BearerAuth
// @Router /contracts/search [get]
func (h *ContractHandler) Search(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	q, err := validation.ParseSearchQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	contracts, err := h.contractService.Search(c.Request.Context(), caller, q)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, toResponses(contracts), fmt.Sprintf("Found %d contracts", len(contracts)))
}

// @Summary Export Contracts
// @Description Download the visible contracts under the list filters (at most 1000 rows)
// @Tags Contracts
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, xlsx or pdf" default(csv)
// @Success 200 {file} file
// @Failure 400 {object} Response
// @Security BearerAuth
// @Router /contracts/export [get]
func (h *ContractHandler) Export(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	q, err := validation.ParseContractQuery(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}

	export, err := h.exportService.ExportContracts(c.Request.Context(), caller, q, c.DefaultQuery("format", services.FormatCSV))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	c.Data(http.StatusOK, export.ContentType, export.Data)
}

// @Summary Get Contract
// @Description Contract with client, assigned lawyer and document/analysis counts
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} Response{data=models.ContractResponse}
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) Show(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	contract, err := h.contractService.Get(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, contract.ToDetailResponse(), "Contract retrieved successfully")
}

// @Summary Update Contract
// @Description Partial update; absent fields are left unchanged
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param contract body validation.UpdateContractRequest true "Fields to change"
// @Success 200 {object} Response{data=models.ContractResponse}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /contracts/{id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req validation.UpdateContractRequest
	if err := bindBody(c, "contract", &req); err != nil {
		respondError(c, err)
		return
	}

	contract, err := h.contractService.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, contract.ToDetailResponse(), "Contract updated successfully")
}

// @Summary Update Contract Status
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param status body validation.StatusUpdateRequest true "New status"
// @Success 200 {object} Response{data=models.ContractResponse}
// @Failure 400 {object} Response
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /contracts/{id}/status [patch]
func (h *ContractHandler) UpdateStatus(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	var req validation.StatusUpdateRequest
	if err := bindBody(c, "contract", &req); err != nil {
		respondError(c, err)
		return
	}

	contract, err := h.contractService.UpdateStatus(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusOK, contract.ToDetailResponse(), "Contract status updated successfully")
}

// @Summary Delete Contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /contracts/{id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	if err := h.contractService.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, Response{Success: true, Message: "Contract deleted successfully"})
}

// @Summary Duplicate Contract
// @Description Copy as a new DRAFT titled "<title> (Copy)" starting today
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 201 {object} Response{data=models.ContractResponse}
// @Failure 404 {object} Response
// @Security BearerAuth
// @Router /contracts/{id}/duplicate [post]
func (h *ContractHandler) Duplicate(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	contract, err := h.contractService.Duplicate(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, contract.ToDetailResponse(), "Contract duplicated successfully")
}
