package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dedicate-place/backend/internal/dto"
	"github.com/dedicate-place/backend/internal/http/handlers/common"
	"github.com/dedicate-place/backend/internal/logger"
	"github.com/dedicate-place/backend/internal/payment"
	"github.com/dedicate-place/backend/internal/service"
)

// PaymentHandler предоставляет HTTP слой платёжного сценария.
type PaymentHandler struct {
	payments *service.PaymentService
	provider *payment.StripeProvider
}

// NewPaymentHandler создаёт хэндлер.
func NewPaymentHandler(payments *service.PaymentService, provider *payment.StripeProvider) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		provider: provider,
	}
}

// CreateIntent обрабатывает POST /payments/intent.
// Спонсорство доступно без регистрации, поэтому endpoint публичный.
func (h *PaymentHandler) CreateIntent(c *gin.Context) {
	var req dto.PaymentIntentRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	created, err := h.payments.CreateIntent(c.Request.Context(), req.ObjectID, req.Amount)
	if err != nil {
		_ = c.Error(err)
		return
	}

	clientSecret := ""
	if created.ClientSecret != nil {
		clientSecret = *created.ClientSecret
	}

	common.RespondJSON(c, http.StatusCreated, dto.PaymentIntentResponse{
		PaymentID:    created.ID.String(),
		ClientSecret: clientSecret,
	})
}

// Confirm обрабатывает POST /payments/:id/confirm.
func (h *PaymentHandler) Confirm(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	var req dto.PaymentConfirmRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	confirmed, err := h.payments.Confirm(c.Request.Context(), id, req.ReturnURL)
	if err != nil {
		// Платёж с ошибкой карты возвращается вместе с ошибкой:
		// клиенту нужен его статус для повторной попытки
		if confirmed != nil {
			c.JSON(http.StatusPaymentRequired, gin.H{
				"error":   "платёж не прошёл",
				"payment": confirmed,
			})
			return
		}
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, confirmed)
}

// Get обрабатывает GET /payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	found, err := h.payments.GetByID(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	common.RespondJSON(c, http.StatusOK, found)
}

// Webhook обрабатывает POST /webhooks/stripe.
// Stripe повторяет доставку при не-2xx ответе, поэтому ошибки обработки
// известных событий возвращают 500, а незнакомые события подтверждаются.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		common.RespondBadRequest(c, "не удалось прочитать тело запроса")
		return
	}

	event, err := h.provider.ParseWebhook(payload, c.Request.Header)
	if err != nil {
		common.RespondBadRequest(c, "подпись вебхука невалидна")
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		err = h.payments.HandleIntentSucceeded(c.Request.Context(), event.IntentID)
	case "payment_intent.payment_failed":
		err = h.payments.HandleIntentFailed(c.Request.Context(), event.IntentID)
	default:
		if logger.Log != nil {
			logger.Log.WithField("type", event.Type).Debug("stripe webhook: событие пропущено")
		}
	}

	if err != nil {
		common.RespondInternalError(c, "")
		return
	}

	c.Status(http.StatusOK)
}
