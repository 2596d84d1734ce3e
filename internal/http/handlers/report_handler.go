package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/http/handlers/common"
	"github.com/dedicate-place/backend/internal/service"
)

// ReportHandler предоставляет HTTP слой для отчётов хранителей.
type ReportHandler struct {
	reports *service.ReportService
}

// NewReportHandler создаёт хэндлер.
func NewReportHandler(reports *service.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListMine обрабатывает GET /guardian/reports - отчёты текущего хранителя.
func (h *ReportHandler) ListMine(c *gin.Context) {
	guardianID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	page := common.PageFromQuery(c, "status_type")

	reports, meta, err := h.reports.ListByGuardian(c.Request.Context(), guardianID, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ReportListResponse{
		Reports: reports,
		Meta:    meta,
	})
}

// Create обрабатывает POST /guardian/reports.
func (h *ReportHandler) Create(c *gin.Context) {
	guardianID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var form dto.ReportForm
	if err := common.BindAndValidate(c, &form); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.Create(c.Request.Context(), guardianID, &form)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, report)
}

// Get обрабатывает GET /guardian/reports/:id.
func (h *ReportHandler) Get(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.GetByID(c.Request.Context(), actorID, role, id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, report)
}

// Update обрабатывает PUT /guardian/reports/:id.
func (h *ReportHandler) Update(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var form dto.ReportForm
	if err := common.BindAndValidate(c, &form); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	report, err := h.reports.Update(c.Request.Context(), actorID, role, id, &form)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, report)
}
