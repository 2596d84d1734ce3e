package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/http/handlers/common"
	"github.com/dedicate-place/backend/internal/service"
)

// ProfileHandler предоставляет HTTP слой для работы с собственным профилем.
type ProfileHandler struct {
	users *service.UserService
}

// NewProfileHandler создаёт хэндлер.
func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// Me обрабатывает GET /profile.
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	profile, err := h.users.GetProfile(c.Request.Context(), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, profile)
}

// Update обрабатывает PUT /profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	role, err := common.CurrentUserRole(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var form dto.ProfileUpdateForm
	if err := common.BindAndValidate(c, &form); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	// Свою роль через этот endpoint сменить нельзя
	form.Role = ""

	profile, err := h.users.UpdateProfile(c.Request.Context(), userID, role, userID, &form)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, profile)
}
