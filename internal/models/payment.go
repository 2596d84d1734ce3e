package models

import (
	"time"

	"github.com/google/uuid"
)

// Статусы платежа. Повторяют состояния платёжного сценария:
// intent создан -> форма готова -> подтверждение -> итог.
const (
	PaymentStatusRequested      = "requested"
	PaymentStatusFormReady      = "form_ready"
	PaymentStatusConfirmPending = "confirm_pending"
	PaymentStatusSucceeded      = "succeeded"
	PaymentStatusFailed         = "failed"
)

// Payment описывает попытку оплаты спонсорства объекта.
type Payment struct {
	ID               uuid.UUID `db:"id" json:"id"`
	ObjectID         int64     `db:"object_id" json:"object_id"`
	Amount           float64   `db:"amount" json:"amount"`
	Currency         string    `db:"currency" json:"currency"`
	ProviderIntentID *string   `db:"provider_intent_id" json:"provider_intent_id,omitempty"`
	ClientSecret     *string   `db:"client_secret" json:"client_secret,omitempty"`
	Status           string    `db:"status" json:"status"`
	ErrorCode        *string   `db:"error_code" json:"error_code,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}
