package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/paymentintent"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/dedicate-place/backend/internal/paymentflow"
)

// StripeProvider реализует платёжного провайдера поверх Stripe PaymentIntents.
type StripeProvider struct {
	webhookSecret string
}

// NewStripeProvider настраивает глобальный ключ Stripe и возвращает провайдера.
func NewStripeProvider(secretKey, webhookSecret string) *StripeProvider {
	stripe.Key = secretKey

	return &StripeProvider{
		webhookSecret: webhookSecret,
	}
}

// CreateIntent создаёт PaymentIntent на сумму в основной валюте.
// Stripe принимает суммы в минимальных единицах, поэтому евро переводятся в центы.
func (p *StripeProvider) CreateIntent(ctx context.Context, amount float64, currency string, objectID int64) (*paymentflow.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		Metadata: map[string]string{
			"object_id": fmt.Sprintf("%d", objectID),
		},
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return nil, classify(err)
	}

	return &paymentflow.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// ConfirmIntent подтверждает PaymentIntent.
func (p *StripeProvider) ConfirmIntent(ctx context.Context, intentID, returnURL string) error {
	params := &stripe.PaymentIntentConfirmParams{}
	if returnURL != "" {
		params.ReturnURL = stripe.String(returnURL)
	}
	params.Context = ctx

	if _, err := paymentintent.Confirm(intentID, params); err != nil {
		return classify(err)
	}

	return nil
}

// WebhookEvent - разобранное событие вебхука Stripe.
type WebhookEvent struct {
	Type     string
	IntentID string
}

// ParseWebhook проверяет подпись вебхука и возвращает событие.
func (p *StripeProvider) ParseWebhook(payload []byte, headers http.Header) (*WebhookEvent, error) {
	signature := headers.Get("Stripe-Signature")

	// Версии API Stripe обратно совместимы, несовпадение версии не ошибка
	event, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		p.webhookSecret,
		webhook.ConstructEventOptions{
			IgnoreAPIVersionMismatch: true,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("stripe: проверка подписи вебхука: %w", err)
	}

	parsed := &WebhookEvent{Type: string(event.Type)}
	if id, ok := event.Data.Object["id"].(string); ok {
		parsed.IntentID = id
	}

	return parsed, nil
}

// classify переводит ошибку Stripe в классифицированную ошибку сценария.
// Ошибки карты (отказ банка, неверный CVC) получают категорию card_error и
// позволяют пользователю повторить попытку.
func classify(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return &paymentflow.Error{
			Category: paymentflow.CategoryUnclassified,
			Err:      err,
		}
	}

	category := paymentflow.CategoryUnclassified
	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		category = paymentflow.CategoryCard
	case stripe.ErrorTypeInvalidRequest:
		category = paymentflow.CategoryValidation
	}

	return &paymentflow.Error{
		Category: category,
		Code:     string(stripeErr.Code),
		Err:      err,
	}
}
