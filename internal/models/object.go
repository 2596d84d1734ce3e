package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Типы спонсируемых объектов.
const (
	ObjectTypeBench    = "bench"
	ObjectTypeTree     = "tree"
	ObjectTypeFountain = "fountain"
	ObjectTypeCustom   = "custom"
)

// Статусы объекта.
const (
	ObjectStatusAvailable   = "available"
	ObjectStatusReserved    = "reserved"
	ObjectStatusUnavailable = "unavailable"
)

// ValidObjectType проверяет тип объекта.
func ValidObjectType(t string) bool {
	switch t {
	case ObjectTypeBench, ObjectTypeTree, ObjectTypeFountain, ObjectTypeCustom:
		return true
	}
	return false
}

// ValidObjectStatus проверяет статус объекта.
func ValidObjectStatus(s string) bool {
	switch s {
	case ObjectStatusAvailable, ObjectStatusReserved, ObjectStatusUnavailable:
		return true
	}
	return false
}

// Object описывает физический объект, доступный для спонсорства.
// Удаление всегда жёсткое: строка убирается из таблицы целиком.
type Object struct {
	ID             int64          `db:"id" json:"id"`
	ProviderID     uuid.UUID      `db:"provider_id" json:"provider_id"`
	TitleDE        *string        `db:"title_de" json:"title_de,omitempty"`
	TitleEN        *string        `db:"title_en" json:"title_en,omitempty"`
	DescriptionDE  *string        `db:"description_de" json:"description_de,omitempty"`
	DescriptionEN  *string        `db:"description_en" json:"description_en,omitempty"`
	Type           string         `db:"type" json:"type"`
	CustomTypeName *string        `db:"custom_type_name" json:"custom_type_name,omitempty"`
	SpecialTag     *string        `db:"special_tag" json:"special_tag,omitempty"`
	Latitude       *float64       `db:"latitude" json:"latitude,omitempty"`
	Longitude      *float64       `db:"longitude" json:"longitude,omitempty"`
	LocationText   *string        `db:"location_text" json:"location_text,omitempty"`
	Price          *float64       `db:"price" json:"price,omitempty"`
	Status         string         `db:"status" json:"status"`
	PlaqueAllowed  bool           `db:"plaque_allowed" json:"plaque_allowed"`
	PlaqueMaxChars *int64         `db:"plaque_max_chars" json:"plaque_max_chars,omitempty"`
	ImageURLs      pq.StringArray `db:"image_urls" json:"image_urls"`
	BookingURL     *string        `db:"booking_url" json:"booking_url,omitempty"`
	ShareURL       *string        `db:"share_url" json:"share_url,omitempty"`
	MapURL         *string        `db:"map_url" json:"map_url,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// ObjectStats агрегированная статистика по объектам для публичной витрины.
type ObjectStats struct {
	Total     int `db:"total" json:"total"`
	Available int `db:"available" json:"available"`
}
