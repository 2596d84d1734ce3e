package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/http/handlers/common"
	"github.com/dedicate-place/backend/internal/service"
)

// AdminHandler предоставляет HTTP слой админки: пользователи, отчёты, объекты.
type AdminHandler struct {
	users   *service.UserService
	reports *service.ReportService
	objects *service.ObjectService
}

// NewAdminHandler создаёт хэндлер.
func NewAdminHandler(users *service.UserService, reports *service.ReportService, objects *service.ObjectService) *AdminHandler {
	return &AdminHandler{
		users:   users,
		reports: reports,
		objects: objects,
	}
}

// ListUsers обрабатывает GET /admin/users.
// Query: search (имя, фамилия, email), role, page, rows_per_page.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	page := common.PageFromQuery(c, "role")

	profiles, meta, err := h.users.List(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ProfileListResponse{
		Profiles: profiles,
		Meta:     meta,
	})
}

// UpdateUser обрабатывает PUT /admin/users/:id.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
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

	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var form dto.ProfileUpdateForm
	if err := common.BindAndValidate(c, &form); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), actorID, role, userID, &form)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, profile)
}

// DeleteUser обрабатывает DELETE /admin/users/:id.
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	actorID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	userID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.users.Delete(c.Request.Context(), actorID, userID); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "пользователь удалён", nil)
}

// ListReports обрабатывает GET /admin/reports.
// Query: search (место, примечание), status_type, page, rows_per_page.
func (h *AdminHandler) ListReports(c *gin.Context) {
	page := common.PageFromQuery(c, "status_type")

	reports, meta, err := h.reports.ListAll(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ReportListResponse{
		Reports: reports,
		Meta:    meta,
	})
}

// ApproveReport обрабатывает POST /admin/reports/:id/approve.
func (h *AdminHandler) ApproveReport(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	if err := h.reports.Approve(c.Request.Context(), id); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "отчёт одобрен", nil)
}

// ListObjects обрабатывает GET /admin/objects - все объекты без фильтра витрины.
func (h *AdminHandler) ListObjects(c *gin.Context) {
	page := common.PageFromQuery(c, "status", "type")

	objects, meta, err := h.objects.ListAll(c.Request.Context(), page)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, dto.ObjectListResponse{
		Objects: objects,
		Meta:    meta,
	})
}
