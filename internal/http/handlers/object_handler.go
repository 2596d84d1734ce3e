package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/http/handlers/common"
	"github.com/dedicate-place/backend/internal/service"
)

// ObjectHandler предоставляет HTTP слой для объектов спонсорства.
type ObjectHandler struct {
	objects *service.ObjectService
	reports *service.ReportService
}

// NewObjectHandler создаёт хэндлер.
func NewObjectHandler(objects *service.ObjectService, reports *service.ReportService) *ObjectHandler {
	return &ObjectHandler{objects: objects, reports: reports}
}

// ListPublic обрабатывает GET /objects - публичную витрину.
// Query: search, page, rows_per_page, status, type.
func (h *ObjectHandler) ListPublic(c *gin.Context) {
	page := common.PageFromQuery(c, "status", "type")

	objects, meta, err := h.objects.ListPublic(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ObjectListResponse{
		Objects: objects,
		Meta:    meta,
	})
}

// Get обрабатывает GET /objects/:id.
func (h *ObjectHandler) Get(c *gin.Context) {
	id, err := common.ParseInt64Param(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	object, err := h.objects.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, object)
}

// PublicReports обрабатывает GET /objects/:id/reports - публичные одобренные
// отчёты по объекту.
func (h *ObjectHandler) PublicReports(c *gin.Context) {
	id, err := common.ParseInt64Param(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	page := common.PageFromQuery(c, "status_type")

	reports, meta, err := h.reports.ListPublicByObject(c.Request.Context(), id, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ReportListResponse{
		Reports: reports,
		Meta:    meta,
	})
}

// ListMine обрабатывает GET /provider/objects - объекты текущего провайдера.
func (h *ObjectHandler) ListMine(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	page := common.PageFromQuery(c, "status", "type")

	objects, meta, err := h.objects.ListByProvider(c.Request.Context(), providerID, page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ObjectListResponse{
		Objects: objects,
		Meta:    meta,
	})
}

// Create обрабатывает POST /provider/objects.
func (h *ObjectHandler) Create(c *gin.Context) {
	providerID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var form dto.ObjectForm
	if err := common.BindAndValidate(c, &form); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	object, err := h.objects.Create(c.Request.Context(), providerID, &form)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusCreated, object)
}

// Update обрабатывает PUT /provider/objects/:id.
func (h *ObjectHandler) Update(c *gin.Context) {
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

	id, err := common.ParseInt64Param(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var form dto.ObjectForm
	if err := common.BindAndValidate(c, &form); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	object, err := h.objects.Update(c.Request.Context(), actorID, role, id, &form)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, object)
}

// UpdateStatus обрабатывает PATCH /provider/objects/:id/status.
func (h *ObjectHandler) UpdateStatus(c *gin.Context) {
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

	id, err := common.ParseInt64Param(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.objects.UpdateStatus(c.Request.Context(), actorID, role, id, req.Status); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "статус обновлён", nil)
}

// Delete обрабатывает DELETE /provider/objects/:id.
func (h *ObjectHandler) Delete(c *gin.Context) {
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

	id, err := common.ParseInt64Param(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.objects.Delete(c.Request.Context(), actorID, role, id); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "объект удалён", nil)
}

// Stats обрабатывает GET /stats/objects - публичную статистику витрины.
func (h *ObjectHandler) Stats(c *gin.Context) {
	stats, err := h.objects.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, stats)
}
