package dto

import (
	"github.com/dedicate-place/backend/internal/models"
	"github.com/dedicate-place/backend/internal/pagination"
)

// ErrorResponse - стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SuccessResponse - стандартный ответ об успехе.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ObjectListResponse - страница объектов с метаданными пагинации.
type ObjectListResponse struct {
	Objects []models.Object `json:"objects"`
	Meta    pagination.Meta `json:"meta"`
}

// ReportListResponse - страница отчётов хранителей.
type ReportListResponse struct {
	Reports []models.ReportWithDetails `json:"reports"`
	Meta    pagination.Meta            `json:"meta"`
}

// ProfileListResponse - страница профилей пользователей.
type ProfileListResponse struct {
	Profiles []models.Profile `json:"profiles"`
	Meta     pagination.Meta  `json:"meta"`
}

// PaymentIntentResponse - ответ на создание платёжного intent.
type PaymentIntentResponse struct {
	PaymentID    string `json:"payment_id"`
	ClientSecret string `json:"client_secret"`
}

// UploadResponse - результат загрузки изображения.
type UploadResponse struct {
	Path string `json:"path"`
	URL  string `json:"url"`
}
