package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/h2non/filetype"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/http/handlers/common"
	"github.com/dedicate-place/backend/internal/storage"
)

// Разрешённые типы файлов для загрузки
var allowedMimeTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// Разрешённые расширения файлов
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// MediaHandler управляет загрузкой изображений в хранилище.
type MediaHandler struct {
	storage *storage.ImageStorage
}

// NewMediaHandler создаёт новый хэндлер.
func NewMediaHandler(storage *storage.ImageStorage) *MediaHandler {
	return &MediaHandler{storage: storage}
}

// Upload обрабатывает POST /media/images.
// Файл привязывается к объекту через query-параметр object_id; без него
// ключ получает префикс из метки времени.
func (h *MediaHandler) Upload(c *gin.Context) {
	if _, err := common.CurrentUserID(c); err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "поле file обязательно"})
		return
	}

	// Валидация размера файла
	if file.Size == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "файл не может быть пустым"})
		return
	}

	// Валидация расширения файла
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("неподдерживаемый формат файла. Разрешены: %s", strings.Join(sortedKeys(allowedExtensions), ", ")),
		})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer src.Close()

	// Читаем первые 512 байт для проверки магических байтов
	buffer := make([]byte, 512)
	n, err := src.Read(buffer)
	if err != nil && err != io.EOF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "не удалось прочитать файл"})
		return
	}

	// Проверяем магические байты (реальный тип файла)
	kind, err := filetype.Match(buffer[:n])
	if err != nil || kind == filetype.Unknown {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "не удалось определить тип файла. Разрешены только изображения",
		})
		return
	}

	contentType := kind.MIME.Value
	if !allowedMimeTypes[contentType] {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("неподдерживаемый тип файла (%s). Разрешены изображения: %s", contentType, strings.Join(sortedKeys(allowedMimeTypes), ", ")),
		})
		return
	}

	// Собираем файл обратно: прочитанный заголовок плюс остаток
	reader := io.MultiReader(strings.NewReader(string(buffer[:n])), src)

	key, err := h.storage.Save(c.Request.Context(), c.Query("object_id"), file.Filename, contentType, reader)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	common.RespondJSON(c, http.StatusCreated, dto.UploadResponse{
		Path: key,
		URL:  h.storage.PublicURL(key),
	})
}

// Delete обрабатывает DELETE /media/images.
func (h *MediaHandler) Delete(c *gin.Context) {
	if _, err := common.CurrentUserID(c); err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	key := strings.Trim(c.Query("path"), "/")
	if key == "" {
		common.RespondBadRequest(c, "параметр path обязателен")
		return
	}

	// Удалять можно только ключи из каталога изображений
	if !h.storage.ValidKey(key) {
		common.RespondBadRequest(c, "путь вне каталога изображений")
		return
	}

	if err := h.storage.Delete(c.Request.Context(), key); err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "файл удалён", nil)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
