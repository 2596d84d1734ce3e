package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Статусы состояния объекта в отчёте хранителя.
const (
	ReportStatusOK          = "ok"
	ReportStatusDamaged     = "damaged"
	ReportStatusNeedsRepair = "needs_repair"
	ReportStatusOther       = "other"
)

// ValidReportStatus проверяет статус отчёта.
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusOK, ReportStatusDamaged, ReportStatusNeedsRepair, ReportStatusOther:
		return true
	}
	return false
}

// GuardianReport описывает отчёт хранителя о состоянии объекта.
// Поле Approved переходит только false -> true и только действием администратора.
// Отчёты никогда не удаляются.
type GuardianReport struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	GuardianID   uuid.UUID      `db:"guardian_id" json:"guardian_id"`
	ObjectID     int64          `db:"object_id" json:"object_id"`
	StatusType   string         `db:"status_type" json:"status_type"`
	StatusNote   *string        `db:"status_note" json:"status_note,omitempty"`
	LocationText *string        `db:"location_text" json:"location_text,omitempty"`
	ImageURLs    pq.StringArray `db:"image_urls" json:"image_urls"`
	IsPublic     bool           `db:"is_public" json:"is_public"`
	Approved     bool           `db:"approved" json:"approved"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// ReportWithDetails объединяет отчёт с данными хранителя и объекта для админских списков.
type ReportWithDetails struct {
	GuardianReport
	GuardianFirstName *string `db:"guardian_first_name" json:"guardian_first_name,omitempty"`
	GuardianLastName  *string `db:"guardian_last_name" json:"guardian_last_name,omitempty"`
	GuardianEmail     *string `db:"guardian_email" json:"guardian_email,omitempty"`
	ObjectTitleDE     *string `db:"object_title_de" json:"object_title_de,omitempty"`
	ObjectTitleEN     *string `db:"object_title_en" json:"object_title_en,omitempty"`
}
