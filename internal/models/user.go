package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли пользователей. Роль фиксированная: ровно одна на профиль.
const (
	RoleAdmin    = "admin"
	RoleProvider = "provider"
	RoleGuardian = "guardian"
	RoleUser     = "user"
)

// ValidRole проверяет, что роль входит в закрытый список.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleProvider, RoleGuardian, RoleUser:
		return true
	}
	return false
}

// User описывает учётную запись для аутентификации.
type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	IsActive     bool       `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// Profile описывает профиль пользователя. ID совпадает с ID учётной записи.
// Полям company_* есть смысл только для роли provider, guardian_* - для guardian.
type Profile struct {
	ID             uuid.UUID `db:"id" json:"id"`
	FirstName      string    `db:"first_name" json:"first_name"`
	LastName       string    `db:"last_name" json:"last_name"`
	Email          string    `db:"email" json:"email"`
	Role           string    `db:"role" json:"role"`
	CompanyName    *string   `db:"company_name" json:"company_name,omitempty"`
	CompanyWebsite *string   `db:"company_website" json:"company_website,omitempty"`
	GuardianArea   *string   `db:"guardian_area" json:"guardian_area,omitempty"`
	GuardianPhone  *string   `db:"guardian_phone" json:"guardian_phone,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Session представляет сохранённую сессию пользователя.
type Session struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UserID       uuid.UUID `db:"user_id" json:"user_id"`
	RefreshToken string    `db:"refresh_token" json:"refresh_token"`
	UserAgent    *string   `db:"user_agent" json:"user_agent,omitempty"`
	IPAddress    *string   `db:"ip_address" json:"ip_address,omitempty"`
	ExpiresAt    time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
