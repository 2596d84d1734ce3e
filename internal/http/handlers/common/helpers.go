package common

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/http/middleware"
	"github.com/dedicate-place/backend/internal/pagination"
)

var (
	// ErrUserNotFound is returned when user is not found in context
	ErrUserNotFound = errors.New("пользователь не найден в контексте")

	// ErrInvalidUUID is returned when UUID parsing fails
	ErrInvalidUUID = errors.New("неверный формат UUID")
)

// CurrentUserID extracts user ID from Gin context
func CurrentUserID(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get(middleware.ContextUserIDKey)
	if !exists {
		return uuid.Nil, ErrUserNotFound
	}

	userID, ok := raw.(uuid.UUID)
	if !ok {
		return uuid.Nil, ErrUserNotFound
	}

	return userID, nil
}

// CurrentUserRole extracts user role from Gin context
func CurrentUserRole(c *gin.Context) (string, error) {
	raw, exists := c.Get(middleware.ContextRoleKey)
	if !exists {
		return "", ErrUserNotFound
	}

	role, ok := raw.(string)
	if !ok {
		return "", ErrUserNotFound
	}

	return role, nil
}

// ParseUUIDParam parses UUID from URL parameter
func ParseUUIDParam(c *gin.Context, paramName string) (uuid.UUID, error) {
	param := c.Param(paramName)
	if param == "" {
		return uuid.Nil, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := uuid.Parse(param)
	if err != nil {
		return uuid.Nil, ErrInvalidUUID
	}

	return parsed, nil
}

// ParseInt64Param parses a numeric object ID from URL parameter
func ParseInt64Param(c *gin.Context, paramName string) (int64, error) {
	param := c.Param(paramName)
	if param == "" {
		return 0, fmt.Errorf("параметр %s отсутствует", paramName)
	}

	parsed, err := strconv.ParseInt(param, 10, 64)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("параметр %s должен быть положительным числом", paramName)
	}

	return parsed, nil
}

// BindAndValidate binds JSON request and returns properly formatted error
func BindAndValidate(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return fmt.Errorf("ошибка валидации запроса: %w", err)
	}
	return nil
}

// RespondError sends a standardized error response
func RespondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, dto.ErrorResponse{Error: message})
}

// RespondSuccess sends a standardized success response
func RespondSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, dto.SuccessResponse{
		Message: message,
		Data:    data,
	})
}

// RespondJSON sends a JSON response with the given status code and data
func RespondJSON(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

// RespondUnauthorized sends a 401 Unauthorized response
func RespondUnauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "требуется авторизация"
	}
	RespondError(c, http.StatusUnauthorized, message)
}

// RespondForbidden sends a 403 Forbidden response
func RespondForbidden(c *gin.Context, message string) {
	if message == "" {
		message = "доступ запрещён"
	}
	RespondError(c, http.StatusForbidden, message)
}

// RespondNotFound sends a 404 Not Found response
func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "ресурс не найден"
	}
	RespondError(c, http.StatusNotFound, message)
}

// RespondBadRequest sends a 400 Bad Request response
func RespondBadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "некорректный запрос"
	}
	RespondError(c, http.StatusBadRequest, message)
}

// RespondInternalError sends a 500 Internal Server Error response
func RespondInternalError(c *gin.Context, message string) {
	if message == "" {
		message = "внутренняя ошибка сервера"
	}
	RespondError(c, http.StatusInternalServerError, message)
}

// ParseIntQuery safely reads an integer query parameter with a fallback value
func ParseIntQuery(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// PageFromQuery собирает параметры списка из query: search, page, rows_per_page
// и перечисленные дискретные фильтры. Значение фильтра "all" равносильно его
// отсутствию. Если клиент прислал снимок предыдущего вида (prev_search,
// prev_rows_per_page, prev_<фильтр>), параметры проходят через pagination.Merge:
// смена поиска, размера страницы или любого фильтра сбрасывает страницу на
// первую, даже когда page в запросе остался от прежнего вида.
func PageFromQuery(c *gin.Context, filterNames ...string) pagination.Request {
	req := pagination.Request{
		Search:      c.Query("search"),
		Page:        ParseIntQuery(c, "page", 1),
		RowsPerPage: ParseIntQuery(c, "rows_per_page", pagination.DefaultRowsPerPage),
		Filters:     filtersFromQuery(c, "", filterNames),
	}

	if hasPrevView(c, filterNames) {
		prev := pagination.Request{
			Search:      c.Query("prev_search"),
			RowsPerPage: ParseIntQuery(c, "prev_rows_per_page", pagination.DefaultRowsPerPage),
			Filters:     filtersFromQuery(c, "prev_", filterNames),
		}
		return pagination.Merge(prev, req)
	}

	return req.Normalized()
}

func filtersFromQuery(c *gin.Context, prefix string, names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	filters := make(map[string]string, len(names))
	for _, name := range names {
		if v := c.Query(prefix + name); v != "" {
			filters[name] = v
		}
	}
	return filters
}

// hasPrevView определяет, передал ли клиент снимок предыдущего вида списка.
func hasPrevView(c *gin.Context, names []string) bool {
	query := c.Request.URL.Query()
	if _, ok := query["prev_search"]; ok {
		return true
	}
	if _, ok := query["prev_rows_per_page"]; ok {
		return true
	}
	for _, name := range names {
		if _, ok := query["prev_"+name]; ok {
			return true
		}
	}
	return false
}
